package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"

	appuow "innkeeper/internal/app/uow"
	domainguest "innkeeper/internal/domain/guest"
	domainpayment "innkeeper/internal/domain/payment"
	domainproperty "innkeeper/internal/domain/property"
	domainreservation "innkeeper/internal/domain/reservation"
	domainroom "innkeeper/internal/domain/room"
	domaintenant "innkeeper/internal/domain/tenant"
)

// Factory hands out units of work over a shared set of collections. Writes are
// per-document atomic and guarded by optimistic versions plus unique indexes,
// so the unit does not open a server-side transaction; Commit and Rollback are
// transaction-boundary markers for the application layer.
type Factory struct {
	tenants      *TenantRepository
	properties   *PropertyRepository
	rooms        *RoomRepository
	guests       *GuestRepository
	reservations *ReservationRepository
	payments     *PaymentRepository
}

func NewFactory(db *mongo.Database) *Factory {
	return &Factory{
		tenants:      NewTenantRepository(db),
		properties:   NewPropertyRepository(db),
		rooms:        NewRoomRepository(db),
		guests:       NewGuestRepository(db),
		reservations: NewReservationRepository(db),
		payments:     NewPaymentRepository(db),
	}
}

func (f *Factory) Begin(ctx context.Context, opts appuow.TxOptions) (appuow.UnitOfWork, error) {
	return &unit{factory: f}, nil
}

type unit struct {
	factory *Factory
}

func (u *unit) Tenants() domaintenant.Repository            { return u.factory.tenants }
func (u *unit) Properties() domainproperty.Repository       { return u.factory.properties }
func (u *unit) Rooms() domainroom.Repository                { return u.factory.rooms }
func (u *unit) Guests() domainguest.Repository              { return u.factory.guests }
func (u *unit) Reservations() domainreservation.Repository  { return u.factory.reservations }
func (u *unit) Payments() domainpayment.Repository          { return u.factory.payments }

func (u *unit) Commit(ctx context.Context) error   { return nil }
func (u *unit) Rollback(ctx context.Context) error { return nil }

var _ appuow.Factory = (*Factory)(nil)

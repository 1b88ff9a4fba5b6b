package memory

import (
	"context"

	"innkeeper/internal/app/uow"
	domainguest "innkeeper/internal/domain/guest"
	domainpayment "innkeeper/internal/domain/payment"
	domainproperty "innkeeper/internal/domain/property"
	domainreservation "innkeeper/internal/domain/reservation"
	domainroom "innkeeper/internal/domain/room"
	domaintenant "innkeeper/internal/domain/tenant"
)

// Factory hands out units over shared in-memory repositories. Commit and
// Rollback are no-ops: memory writes apply immediately, which is acceptable
// for tests and the local demo mode.
type Factory struct {
	TenantRepo      *TenantRepository
	PropertyRepo    *PropertyRepository
	RoomRepo        *RoomRepository
	GuestRepo       *GuestRepository
	ReservationRepo *ReservationRepository
	PaymentRepo     *PaymentRepository
}

// NewFactory builds a factory with fresh empty repositories.
func NewFactory() Factory {
	return Factory{
		TenantRepo:      NewTenantRepository(),
		PropertyRepo:    NewPropertyRepository(),
		RoomRepo:        NewRoomRepository(),
		GuestRepo:       NewGuestRepository(),
		ReservationRepo: NewReservationRepository(),
		PaymentRepo:     NewPaymentRepository(),
	}
}

func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	return unit{factory: f}, nil
}

type unit struct {
	factory Factory
}

func (u unit) Tenants() domaintenant.Repository             { return u.factory.TenantRepo }
func (u unit) Properties() domainproperty.Repository        { return u.factory.PropertyRepo }
func (u unit) Rooms() domainroom.Repository                 { return u.factory.RoomRepo }
func (u unit) Guests() domainguest.Repository               { return u.factory.GuestRepo }
func (u unit) Reservations() domainreservation.Repository   { return u.factory.ReservationRepo }
func (u unit) Payments() domainpayment.Repository           { return u.factory.PaymentRepo }
func (u unit) Commit(ctx context.Context) error             { return nil }
func (u unit) Rollback(ctx context.Context) error           { return nil }

var _ uow.Factory = Factory{}

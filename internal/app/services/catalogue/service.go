package catalogue

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"innkeeper/internal/app/uow"
	domainguest "innkeeper/internal/domain/guest"
	domainproperty "innkeeper/internal/domain/property"
	domainroom "innkeeper/internal/domain/room"
	domaintenant "innkeeper/internal/domain/tenant"
)

var (
	ErrFactoryRequired  = errors.New("catalogue: unit of work factory is required")
	ErrUploaderRequired = errors.New("catalogue: document uploader is not configured")
)

// Uploader stores a document scan and returns its URL; satisfied by the
// object-storage client.
type Uploader interface {
	Upload(ctx context.Context, key string, reader io.Reader, contentType string) (string, error)
}

// Service covers the supporting catalogue around reservations: properties,
// their rooms and the guest register. Every operation is tenant scoped.
type Service struct {
	UoW      uow.Factory
	Uploader Uploader
	Logger   *slog.Logger
	Clock    func() time.Time
}

type CreatePropertyParams struct {
	TenantID      string
	Name          string
	Address       domainproperty.Address
	CheckInTime   string
	CheckOutTime  string
	BookingPolicy domainproperty.BookingPolicy
}

func (s *Service) CreateProperty(ctx context.Context, params CreatePropertyParams) (*domainproperty.Property, error) {
	if s.UoW == nil {
		return nil, ErrFactoryRequired
	}
	unit, err := s.UoW.Begin(ctx, uow.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer unit.Rollback(ctx)

	if err := s.requireActiveTenant(ctx, unit, params.TenantID); err != nil {
		return nil, err
	}
	prop, err := domainproperty.New(domainproperty.CreateParams{
		ID:            domainproperty.ID(uuid.NewString()),
		TenantID:      domaintenant.ID(params.TenantID),
		Name:          params.Name,
		Address:       params.Address,
		CheckInTime:   params.CheckInTime,
		CheckOutTime:  params.CheckOutTime,
		BookingPolicy: params.BookingPolicy,
		Now:           s.now(),
	})
	if err != nil {
		return nil, err
	}
	if err := unit.Properties().Save(ctx, prop); err != nil {
		return nil, err
	}
	return prop, unit.Commit(ctx)
}

func (s *Service) PropertyByID(ctx context.Context, tenantID, propertyID string) (*domainproperty.Property, error) {
	if s.UoW == nil {
		return nil, ErrFactoryRequired
	}
	unit, err := s.UoW.Begin(ctx, uow.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, err
	}
	defer unit.Rollback(ctx)
	prop, err := unit.Properties().ByID(ctx, domaintenant.ID(tenantID), domainproperty.ID(propertyID))
	if err != nil {
		return nil, err
	}
	if !prop.Active() {
		return nil, domainproperty.ErrPropertyNotFound
	}
	return prop, nil
}

func (s *Service) ListProperties(ctx context.Context, tenantID string) ([]*domainproperty.Property, error) {
	if s.UoW == nil {
		return nil, ErrFactoryRequired
	}
	unit, err := s.UoW.Begin(ctx, uow.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, err
	}
	defer unit.Rollback(ctx)
	return unit.Properties().ListByTenant(ctx, domaintenant.ID(tenantID))
}

type CreateRoomParams struct {
	TenantID     string
	PropertyID   string
	NameOrNumber string
	Type         domainroom.Type
	Capacity     domainroom.Capacity
	Rate         domainroom.Rate
	Fees         domainroom.Fees
}

func (s *Service) CreateRoom(ctx context.Context, params CreateRoomParams) (*domainroom.Room, error) {
	if s.UoW == nil {
		return nil, ErrFactoryRequired
	}
	unit, err := s.UoW.Begin(ctx, uow.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer unit.Rollback(ctx)

	prop, err := unit.Properties().ByID(ctx, domaintenant.ID(params.TenantID), domainproperty.ID(params.PropertyID))
	if err != nil {
		return nil, err
	}
	if !prop.Active() {
		return nil, domainproperty.ErrPropertyNotFound
	}
	rm, err := domainroom.New(domainroom.CreateParams{
		ID:           domainroom.ID(uuid.NewString()),
		TenantID:     domaintenant.ID(params.TenantID),
		PropertyID:   domainproperty.ID(params.PropertyID),
		NameOrNumber: params.NameOrNumber,
		Type:         params.Type,
		Capacity:     params.Capacity,
		Rate:         params.Rate,
		Fees:         params.Fees,
		Now:          s.now(),
	})
	if err != nil {
		return nil, err
	}
	if err := unit.Rooms().Save(ctx, rm); err != nil {
		return nil, err
	}
	return rm, unit.Commit(ctx)
}

func (s *Service) RoomByID(ctx context.Context, tenantID, roomID string) (*domainroom.Room, error) {
	if s.UoW == nil {
		return nil, ErrFactoryRequired
	}
	unit, err := s.UoW.Begin(ctx, uow.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, err
	}
	defer unit.Rollback(ctx)
	rm, err := unit.Rooms().ByID(ctx, domaintenant.ID(tenantID), domainroom.ID(roomID))
	if err != nil {
		return nil, err
	}
	if !rm.Active() {
		return nil, domainroom.ErrRoomNotFound
	}
	return rm, nil
}

func (s *Service) ListRooms(ctx context.Context, tenantID, propertyID string) ([]*domainroom.Room, error) {
	if s.UoW == nil {
		return nil, ErrFactoryRequired
	}
	unit, err := s.UoW.Begin(ctx, uow.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, err
	}
	defer unit.Rollback(ctx)
	return unit.Rooms().ListByProperty(ctx, domaintenant.ID(tenantID), domainproperty.ID(propertyID))
}

// SetRoomStatus handles the manual housekeeping transitions (maintenance,
// cleaning, back to available); occupied is driven by check-in.
func (s *Service) SetRoomStatus(ctx context.Context, tenantID, roomID string, status domainroom.Status) (*domainroom.Room, error) {
	if s.UoW == nil {
		return nil, ErrFactoryRequired
	}
	unit, err := s.UoW.Begin(ctx, uow.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer unit.Rollback(ctx)

	rm, err := unit.Rooms().ByID(ctx, domaintenant.ID(tenantID), domainroom.ID(roomID))
	if err != nil {
		return nil, err
	}
	if !rm.Active() {
		return nil, domainroom.ErrRoomNotFound
	}
	if err := rm.SetStatus(status, s.now()); err != nil {
		return nil, err
	}
	if err := unit.Rooms().Save(ctx, rm); err != nil {
		return nil, err
	}
	return rm, unit.Commit(ctx)
}

type CreateGuestParams struct {
	TenantID string
	Name     string
	Email    string
	Phone    string
	Document domainguest.Document
	Currency string
}

func (s *Service) CreateGuest(ctx context.Context, params CreateGuestParams) (*domainguest.Guest, error) {
	if s.UoW == nil {
		return nil, ErrFactoryRequired
	}
	unit, err := s.UoW.Begin(ctx, uow.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer unit.Rollback(ctx)

	if err := s.requireActiveTenant(ctx, unit, params.TenantID); err != nil {
		return nil, err
	}
	g, err := domainguest.New(domainguest.CreateParams{
		ID:       domainguest.ID(uuid.NewString()),
		TenantID: domaintenant.ID(params.TenantID),
		Name:     params.Name,
		Email:    params.Email,
		Phone:    params.Phone,
		Document: params.Document,
		Currency: params.Currency,
		Now:      s.now(),
	})
	if err != nil {
		return nil, err
	}
	if err := unit.Guests().Save(ctx, g); err != nil {
		return nil, err
	}
	return g, unit.Commit(ctx)
}

func (s *Service) GuestByID(ctx context.Context, tenantID, guestID string) (*domainguest.Guest, error) {
	if s.UoW == nil {
		return nil, ErrFactoryRequired
	}
	unit, err := s.UoW.Begin(ctx, uow.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, err
	}
	defer unit.Rollback(ctx)
	g, err := unit.Guests().ByID(ctx, domaintenant.ID(tenantID), domainguest.ID(guestID))
	if err != nil {
		return nil, err
	}
	if !g.Active() {
		return nil, domainguest.ErrGuestNotFound
	}
	return g, nil
}

func (s *Service) ListGuests(ctx context.Context, tenantID string) ([]*domainguest.Guest, error) {
	if s.UoW == nil {
		return nil, ErrFactoryRequired
	}
	unit, err := s.UoW.Begin(ctx, uow.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, err
	}
	defer unit.Rollback(ctx)
	return unit.Guests().ListByTenant(ctx, domaintenant.ID(tenantID))
}

type UploadDocumentParams struct {
	TenantID    string
	GuestID     string
	Filename    string
	ContentType string
	Content     io.Reader
}

// UploadGuestDocument stores the identification scan and records its URL on
// the guest.
func (s *Service) UploadGuestDocument(ctx context.Context, params UploadDocumentParams) (*domainguest.Guest, error) {
	if s.UoW == nil {
		return nil, ErrFactoryRequired
	}
	if s.Uploader == nil {
		return nil, ErrUploaderRequired
	}
	unit, err := s.UoW.Begin(ctx, uow.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer unit.Rollback(ctx)

	g, err := unit.Guests().ByID(ctx, domaintenant.ID(params.TenantID), domainguest.ID(params.GuestID))
	if err != nil {
		return nil, err
	}
	if !g.Active() {
		return nil, domainguest.ErrGuestNotFound
	}

	key := fmt.Sprintf("guests/%s/%s/%s-%s", params.TenantID, params.GuestID, uuid.NewString(), params.Filename)
	url, err := s.Uploader.Upload(ctx, key, params.Content, params.ContentType)
	if err != nil {
		return nil, err
	}

	g.AttachDocumentScan(url, s.now())
	if err := unit.Guests().Save(ctx, g); err != nil {
		return nil, err
	}
	return g, unit.Commit(ctx)
}

func (s *Service) requireActiveTenant(ctx context.Context, unit uow.UnitOfWork, tenantID string) error {
	t, err := unit.Tenants().ByID(ctx, domaintenant.ID(tenantID))
	if err != nil {
		return err
	}
	if !t.Active() {
		return domaintenant.ErrTenantInactive
	}
	return nil
}

func (s *Service) now() time.Time {
	if s.Clock != nil {
		return s.Clock()
	}
	return time.Now().UTC()
}

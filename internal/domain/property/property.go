package property

import (
	"context"
	"errors"
	"strings"
	"time"

	"innkeeper/internal/domain/tenant"
)

var (
	ErrPropertyNotFound = errors.New("property: not found")
	ErrNameRequired     = errors.New("property: name required")
	ErrTenantRequired   = errors.New("property: tenant id required")
)

type ID string

// Property is a physical site (hotel, guesthouse, rental building) owned by
// exactly one tenant.
type Property struct {
	ID            ID
	TenantID      tenant.ID
	Name          string
	Address       Address
	CheckInTime   string // "15:00" local wall-clock
	CheckOutTime  string // "11:00"
	BookingPolicy BookingPolicy
	CreatedAt     time.Time
	UpdatedAt     time.Time
	DeletedAt     *time.Time
}

type Address struct {
	Line1   string
	Line2   string
	City    string
	Country string
	Zip     string
}

// BookingPolicy bounds how far ahead and through which channels a stay can be booked.
type BookingPolicy struct {
	AdvanceBookingDays   int
	OnlineBookingAllowed bool
}

type Repository interface {
	ByID(ctx context.Context, tenantID tenant.ID, id ID) (*Property, error)
	Save(ctx context.Context, p *Property) error
	ListByTenant(ctx context.Context, tenantID tenant.ID) ([]*Property, error)
}

type CreateParams struct {
	ID            ID
	TenantID      tenant.ID
	Name          string
	Address       Address
	CheckInTime   string
	CheckOutTime  string
	BookingPolicy BookingPolicy
	Now           time.Time
}

func New(params CreateParams) (*Property, error) {
	if strings.TrimSpace(params.Name) == "" {
		return nil, ErrNameRequired
	}
	if params.TenantID == "" {
		return nil, ErrTenantRequired
	}
	now := params.Now.UTC()
	checkIn := params.CheckInTime
	if checkIn == "" {
		checkIn = "15:00"
	}
	checkOut := params.CheckOutTime
	if checkOut == "" {
		checkOut = "11:00"
	}
	return &Property{
		ID:            params.ID,
		TenantID:      params.TenantID,
		Name:          strings.TrimSpace(params.Name),
		Address:       params.Address,
		CheckInTime:   checkIn,
		CheckOutTime:  checkOut,
		BookingPolicy: params.BookingPolicy,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

func (p *Property) Active() bool {
	return p.DeletedAt == nil
}

func (p *Property) Deactivate(now time.Time) {
	if p.DeletedAt != nil {
		return
	}
	ts := now.UTC()
	p.DeletedAt = &ts
	p.UpdatedAt = ts
}

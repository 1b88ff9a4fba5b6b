package room

import (
	"context"
	"errors"
	"strings"
	"time"

	"innkeeper/internal/domain/property"
	"innkeeper/internal/domain/shared/money"
	"innkeeper/internal/domain/tenant"
)

var (
	ErrRoomNotFound     = errors.New("room: not found")
	ErrNameRequired     = errors.New("room: name or number required")
	ErrDuplicateName    = errors.New("room: name or number already used in property")
	ErrInvalidCapacity  = errors.New("room: capacity must allow at least one adult")
	ErrInvalidBaseRate  = errors.New("room: base rate must be positive")
	ErrUnknownType      = errors.New("room: unknown room type")
	ErrUnknownStatus    = errors.New("room: unknown room status")
	ErrPropertyRequired = errors.New("room: property id required")
)

type ID string

type Type string

const (
	TypeRoom      Type = "room"
	TypeSuite     Type = "suite"
	TypeApartment Type = "apartment"
)

// Status tracks the housekeeping lifecycle of the physical unit, separate from
// any reservation state.
type Status string

const (
	StatusAvailable   Status = "available"
	StatusOccupied    Status = "occupied"
	StatusMaintenance Status = "maintenance"
	StatusCleaning    Status = "cleaning"
)

// Room is a bookable unit within a property. NameOrNumber is unique per
// (tenant, property).
type Room struct {
	ID           ID
	TenantID     tenant.ID
	PropertyID   property.ID
	NameOrNumber string
	Type         Type
	Capacity     Capacity
	Rate         Rate
	Fees         Fees
	Status       Status
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    *time.Time
}

type Capacity struct {
	Adults   int
	Children int
}

// Total is the maximum number of guests of any kind.
func (c Capacity) Total() int {
	return c.Adults + c.Children
}

// Rate holds the tax-inclusive nightly price and per-night extra-guest surcharges.
type Rate struct {
	Base       money.Money
	ExtraAdult money.Money
	ExtraChild money.Money
}

// Fees are flat per-stay charges added on top of the room cost.
type Fees struct {
	Cleaning money.Money
	Service  money.Money
}

type Repository interface {
	ByID(ctx context.Context, tenantID tenant.ID, id ID) (*Room, error)
	Save(ctx context.Context, r *Room) error
	ListByProperty(ctx context.Context, tenantID tenant.ID, propertyID property.ID) ([]*Room, error)
}

type CreateParams struct {
	ID           ID
	TenantID     tenant.ID
	PropertyID   property.ID
	NameOrNumber string
	Type         Type
	Capacity     Capacity
	Rate         Rate
	Fees         Fees
	Now          time.Time
}

func New(params CreateParams) (*Room, error) {
	if strings.TrimSpace(params.NameOrNumber) == "" {
		return nil, ErrNameRequired
	}
	if params.PropertyID == "" {
		return nil, ErrPropertyRequired
	}
	if params.Capacity.Adults < 1 || params.Capacity.Children < 0 {
		return nil, ErrInvalidCapacity
	}
	if params.Rate.Base.Amount <= 0 || params.Rate.Base.Currency == "" {
		return nil, ErrInvalidBaseRate
	}
	switch params.Type {
	case TypeRoom, TypeSuite, TypeApartment:
	case "":
		params.Type = TypeRoom
	default:
		return nil, ErrUnknownType
	}
	now := params.Now.UTC()
	return &Room{
		ID:           params.ID,
		TenantID:     params.TenantID,
		PropertyID:   params.PropertyID,
		NameOrNumber: strings.TrimSpace(params.NameOrNumber),
		Type:         params.Type,
		Capacity:     params.Capacity,
		Rate:         params.Rate,
		Fees:         params.Fees,
		Status:       StatusAvailable,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

func (r *Room) Active() bool {
	return r.DeletedAt == nil
}

func (r *Room) Deactivate(now time.Time) {
	if r.DeletedAt != nil {
		return
	}
	ts := now.UTC()
	r.DeletedAt = &ts
	r.UpdatedAt = ts
}

// SetStatus moves the unit through its housekeeping lifecycle.
func (r *Room) SetStatus(status Status, now time.Time) error {
	switch status {
	case StatusAvailable, StatusOccupied, StatusMaintenance, StatusCleaning:
	default:
		return ErrUnknownStatus
	}
	r.Status = status
	r.UpdatedAt = now.UTC()
	return nil
}

// Fits reports whether the requested party can stay in the unit: at least one
// guest and no more than the total capacity.
func (r *Room) Fits(adults, children int) bool {
	if adults < 0 || children < 0 {
		return false
	}
	total := adults + children
	return total >= 1 && total <= r.Capacity.Total()
}

package reservations

import (
	"context"
	"time"

	"innkeeper/internal/app/uow"
	"innkeeper/internal/domain/pricing"
	domainproperty "innkeeper/internal/domain/property"
	domainreservation "innkeeper/internal/domain/reservation"
	domainroom "innkeeper/internal/domain/room"
	"innkeeper/internal/domain/shared/daterange"
	domaintenant "innkeeper/internal/domain/tenant"
)

type CheckAvailabilityParams struct {
	TenantID   string
	PropertyID string
	CheckIn    time.Time
	CheckOut   time.Time
	Adults     int
	Children   int
}

// RoomOffer is a free room annotated with the computed price for the stay.
type RoomOffer struct {
	Room  *domainroom.Room
	Quote pricing.Quote
}

// CheckAvailability lists the property's rooms that fit the party and have no
// conflicting reservation for the range, each priced for the stay. Read-only
// and idempotent: repeated calls without intervening writes return the same
// result.
func (s *Service) CheckAvailability(ctx context.Context, params CheckAvailabilityParams) ([]RoomOffer, error) {
	if s.UoW == nil {
		return nil, ErrFactoryRequired
	}
	stay, err := daterange.New(params.CheckIn, params.CheckOut)
	if err != nil {
		return nil, err
	}

	unit, err := s.UoW.Begin(ctx, uow.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, err
	}
	defer unit.Rollback(ctx)

	tenantID := domaintenant.ID(params.TenantID)
	prop, err := activeProperty(ctx, unit, tenantID, domainproperty.ID(params.PropertyID))
	if err != nil {
		return nil, err
	}
	rooms, err := unit.Rooms().ListByProperty(ctx, tenantID, prop.ID)
	if err != nil {
		return nil, err
	}

	checker := domainreservation.Checker{Reservations: unit.Reservations()}
	offers := make([]RoomOffer, 0, len(rooms))
	for _, rm := range rooms {
		if !rm.Active() || rm.Status == domainroom.StatusMaintenance {
			continue
		}
		if !rm.Fits(params.Adults, params.Children) {
			continue
		}
		verdict, err := checker.IsAvailable(ctx, domainreservation.AvailabilityQuery{
			TenantID: tenantID,
			RoomID:   rm.ID,
			CheckIn:  stay.CheckIn,
			CheckOut: stay.CheckOut,
		})
		if err != nil {
			return nil, err
		}
		if !verdict.Available {
			continue
		}
		quote, err := pricing.QuoteStay(rm, stay, params.Adults, params.Children, nil)
		if err != nil {
			return nil, err
		}
		offers = append(offers, RoomOffer{Room: rm, Quote: quote})
	}
	return offers, nil
}

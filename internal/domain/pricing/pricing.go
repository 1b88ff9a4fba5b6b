package pricing

import (
	"errors"

	"innkeeper/internal/domain/room"
	"innkeeper/internal/domain/shared/daterange"
	"innkeeper/internal/domain/shared/money"
)

var (
	ErrNoNights        = errors.New("pricing: stay must cover at least one night")
	ErrNegativeFee     = errors.New("pricing: fees cannot be negative")
	ErrNegativeGuests  = errors.New("pricing: guest counts cannot be negative")
	ErrMissingBaseRate = errors.New("pricing: room base rate is required")
)

// Fee is a named flat charge added to a stay (late checkout, pet fee, minibar).
type Fee struct {
	Name   string      `json:"name" bson:"name"`
	Amount money.Money `json:"amount" bson:"amount"`
}

// Quote is the immutable pricing snapshot persisted on a reservation.
// Room rates are tax-inclusive, so Taxes is always zero; it is kept in the
// breakdown so statements show the line explicitly.
type Quote struct {
	Nightly     money.Money `json:"nightly" bson:"nightly"`
	Nights      int         `json:"nights" bson:"nights"`
	Subtotal    money.Money `json:"subtotal" bson:"subtotal"`
	ExtraGuests money.Money `json:"extra_guests" bson:"extra_guests"`
	CleaningFee money.Money `json:"cleaning_fee" bson:"cleaning_fee"`
	ServiceFee  money.Money `json:"service_fee" bson:"service_fee"`
	ExtraFees   []Fee       `json:"extra_fees,omitempty" bson:"extra_fees,omitempty"`
	Taxes       money.Money `json:"taxes" bson:"taxes"`
	Total       money.Money `json:"total" bson:"total"`
}

// QuoteStay prices a stay in the given room. Pure and deterministic: no I/O.
//
// total = base*nights + extra-guest surcharges*nights + cleaning + service + extras.
// Guests beyond the room's adult/child capacity are charged the per-night
// surcharge for each extra guest.
func QuoteStay(rm *room.Room, stay daterange.DateRange, adults, children int, extras []Fee) (Quote, error) {
	if rm == nil || rm.Rate.Base.Currency == "" {
		return Quote{}, ErrMissingBaseRate
	}
	if adults < 0 || children < 0 {
		return Quote{}, ErrNegativeGuests
	}
	nights := stay.Nights()
	if nights < 1 {
		return Quote{}, ErrNoNights
	}

	currency := rm.Rate.Base.Currency
	subtotal := rm.Rate.Base.Multiply(int64(nights))

	extraGuests := money.Zero(currency)
	if over := adults - rm.Capacity.Adults; over > 0 && rm.Rate.ExtraAdult.Amount > 0 {
		extraGuests.Amount += rm.Rate.ExtraAdult.Amount * int64(over) * int64(nights)
	}
	if over := children - rm.Capacity.Children; over > 0 && rm.Rate.ExtraChild.Amount > 0 {
		extraGuests.Amount += rm.Rate.ExtraChild.Amount * int64(over) * int64(nights)
	}

	q := Quote{
		Nightly:     rm.Rate.Base,
		Nights:      nights,
		Subtotal:    subtotal,
		ExtraGuests: extraGuests,
		CleaningFee: normalizeFee(rm.Fees.Cleaning, currency),
		ServiceFee:  normalizeFee(rm.Fees.Service, currency),
		Taxes:       money.Zero(currency),
	}
	for _, fee := range extras {
		if fee.Amount.Amount < 0 {
			return Quote{}, ErrNegativeFee
		}
		q.ExtraFees = append(q.ExtraFees, Fee{Name: fee.Name, Amount: normalizeFee(fee.Amount, currency)})
	}
	if err := q.RecalculateTotal(); err != nil {
		return Quote{}, err
	}
	return q, nil
}

// RecalculateTotal re-derives Total from the components. Used after late
// charges are appended at check-out.
func (q *Quote) RecalculateTotal() error {
	total := q.Subtotal
	for _, component := range []money.Money{q.ExtraGuests, q.CleaningFee, q.ServiceFee, q.Taxes} {
		if component.Amount < 0 {
			return ErrNegativeFee
		}
		sum, err := total.Add(component)
		if err != nil {
			return err
		}
		total = sum
	}
	for _, fee := range q.ExtraFees {
		if fee.Amount.Amount < 0 {
			return ErrNegativeFee
		}
		sum, err := total.Add(fee.Amount)
		if err != nil {
			return err
		}
		total = sum
	}
	q.Total = total
	return nil
}

// AddFee appends a late charge and recomputes the total.
func (q *Quote) AddFee(fee Fee) error {
	if fee.Amount.Amount < 0 {
		return ErrNegativeFee
	}
	q.ExtraFees = append(q.ExtraFees, Fee{Name: fee.Name, Amount: normalizeFee(fee.Amount, q.Total.Currency)})
	return q.RecalculateTotal()
}

// Copy returns a deep copy safe to snapshot on an aggregate.
func (q Quote) Copy() Quote {
	clone := q
	clone.ExtraFees = append([]Fee(nil), q.ExtraFees...)
	return clone
}

func normalizeFee(m money.Money, currency string) money.Money {
	if m.Currency == "" {
		return money.Money{Amount: m.Amount, Currency: currency}
	}
	return m
}

package payment

import (
	"time"

	"innkeeper/internal/domain/reservation"
	"innkeeper/internal/domain/shared/money"
	"innkeeper/internal/domain/tenant"
)

type PaymentRecorded struct {
	PaymentID     ID
	TenantID      tenant.ID
	ReservationID reservation.ID
	Amount        money.Money
	Method        Method
	At            time.Time
}

func (e PaymentRecorded) EventName() string     { return "payment.recorded" }
func (e PaymentRecorded) AggregateID() string   { return string(e.PaymentID) }
func (e PaymentRecorded) OccurredAt() time.Time { return e.At }

type PaymentRefunded struct {
	PaymentID     ID
	TenantID      tenant.ID
	ReservationID reservation.ID
	Amount        money.Money
	Reason        string
	At            time.Time
}

func (e PaymentRefunded) EventName() string     { return "payment.refunded" }
func (e PaymentRefunded) AggregateID() string   { return string(e.PaymentID) }
func (e PaymentRefunded) OccurredAt() time.Time { return e.At }

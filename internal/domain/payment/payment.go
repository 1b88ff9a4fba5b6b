package payment

import (
	"context"
	"errors"
	"time"

	"innkeeper/internal/domain/reservation"
	"innkeeper/internal/domain/shared/events"
	"innkeeper/internal/domain/shared/money"
	"innkeeper/internal/domain/tenant"
)

var (
	ErrPaymentNotFound        = errors.New("payment: not found")
	ErrInvalidAmount          = errors.New("payment: amount must be positive")
	ErrNotRefundable          = errors.New("payment: only paid payments can be refunded")
	ErrAmountExceedsAvailable = errors.New("payment: refund exceeds refundable amount")
	ErrUnknownMethod          = errors.New("payment: unknown method")
	ErrCodeRequired           = errors.New("payment: transaction code required")
)

type ID string

// State is the payment-level status. It shares names with the reservation's
// rollup but is a distinct enum on purpose; never unify the two.
type State string

const (
	StatePending  State = "pending"
	StatePartial  State = "partial"
	StatePaid     State = "paid"
	StateRefunded State = "refunded"
)

type Method string

const (
	MethodCash     Method = "cash"
	MethodTransfer Method = "transfer"
	MethodCard     Method = "card"
)

// RefundDowngrade selects what a fully refunded payment becomes. The
// historical behavior reverts it to pending, which makes it eligible for
// re-payment logic elsewhere; the terminal refunded state is the safer
// alternative. Kept configurable pending a product decision.
type RefundDowngrade string

const (
	DowngradeToPending  RefundDowngrade = "pending"
	DowngradeToRefunded RefundDowngrade = "refunded"
)

// Fees breaks out what the processor and gateway keep from the amount.
type Fees struct {
	Processing money.Money
	Gateway    money.Money
}

// Refund tracks cumulative refunds against the payment; Amount never exceeds
// the payment amount.
type Refund struct {
	Refunded bool
	Amount   money.Money
	Reason   string
	By       string
	At       *time.Time
}

// Payment is one monetary transaction against a reservation. Paid payments are
// never hard-deleted, only soft-deactivated.
type Payment struct {
	ID              ID
	TenantID        tenant.ID
	ReservationID   reservation.ID
	TransactionCode string
	Amount          money.Money
	Method          Method
	Status          State
	Details         Details
	Fees            Fees
	NetAmount       money.Money
	PaidAt          *time.Time
	Refund          Refund
	CreatedAt       time.Time
	UpdatedAt       time.Time
	DeletedAt       *time.Time
	Version         int64
	events.EventRecorder
}

type Repository interface {
	ByID(ctx context.Context, tenantID tenant.ID, id ID) (*Payment, error)
	Save(ctx context.Context, p *Payment) error
	// ListByReservation returns all payments for the reservation, including
	// soft-deleted ones; the ledger filters on Active and Status itself.
	ListByReservation(ctx context.Context, tenantID tenant.ID, reservationID reservation.ID) ([]*Payment, error)
	TransactionCodeExists(ctx context.Context, code string) (bool, error)
}

type CreateParams struct {
	ID              ID
	TenantID        tenant.ID
	ReservationID   reservation.ID
	TransactionCode string
	Amount          money.Money
	Method          Method
	Details         Details
	Fees            Fees
	Now             time.Time
}

func NewPayment(params CreateParams) (*Payment, error) {
	if params.Amount.Amount <= 0 || params.Amount.Currency == "" {
		return nil, ErrInvalidAmount
	}
	if params.TransactionCode == "" {
		return nil, ErrCodeRequired
	}
	switch params.Method {
	case MethodCash, MethodTransfer, MethodCard:
	default:
		return nil, ErrUnknownMethod
	}
	if params.Details != nil && params.Details.MethodKind() != params.Method {
		return nil, ErrUnknownMethod
	}
	now := params.Now.UTC()
	net := params.Amount
	for _, fee := range []money.Money{params.Fees.Processing, params.Fees.Gateway} {
		if fee.Amount > 0 && fee.Currency == params.Amount.Currency {
			net = money.Money{Amount: net.Amount - fee.Amount, Currency: net.Currency}
		}
	}
	return &Payment{
		ID:              params.ID,
		TenantID:        params.TenantID,
		ReservationID:   params.ReservationID,
		TransactionCode: params.TransactionCode,
		Amount:          params.Amount,
		Method:          params.Method,
		Status:          StatePending,
		Details:         params.Details,
		Fees:            params.Fees,
		NetAmount:       net,
		Refund:          Refund{Amount: money.Zero(params.Amount.Currency)},
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

func (p *Payment) Active() bool {
	return p.DeletedAt == nil
}

// Deactivate soft-deletes a payment. Paid payments stay visible in the ledger
// history; they are only ever tombstoned, never removed.
func (p *Payment) Deactivate(now time.Time) {
	if p.DeletedAt != nil {
		return
	}
	ts := now.UTC()
	p.DeletedAt = &ts
	p.UpdatedAt = ts
}

// MarkPaid settles the payment and stamps the payment date.
func (p *Payment) MarkPaid(now time.Time) {
	ts := now.UTC()
	p.Status = StatePaid
	p.PaidAt = &ts
	p.UpdatedAt = ts
	p.Record(PaymentRecorded{
		PaymentID:     p.ID,
		TenantID:      p.TenantID,
		ReservationID: p.ReservationID,
		Amount:        p.Amount,
		Method:        p.Method,
		At:            ts,
	})
}

// AvailableToRefund is the amount not yet returned to the guest.
func (p *Payment) AvailableToRefund() money.Money {
	return money.Money{Amount: p.Amount.Amount - p.Refund.Amount.Amount, Currency: p.Amount.Currency}
}

// NetReceived is what this payment contributes to the reservation ledger:
// zero unless paid and active, otherwise amount minus cumulative refunds.
func (p *Payment) NetReceived() money.Money {
	if !p.Active() || (p.Status != StatePaid && p.Status != StateRefunded) {
		return money.Zero(p.Amount.Currency)
	}
	return p.AvailableToRefund()
}

// ApplyRefund returns part or all of a paid payment. A full refund downgrades
// the status per the configured policy.
func (p *Payment) ApplyRefund(amount money.Money, reason, actorID string, downgrade RefundDowngrade, now time.Time) error {
	if p.Status != StatePaid {
		return ErrNotRefundable
	}
	if amount.Amount <= 0 || !amount.SameCurrency(p.Amount) {
		return ErrInvalidAmount
	}
	if amount.Amount > p.AvailableToRefund().Amount {
		return ErrAmountExceedsAvailable
	}
	ts := now.UTC()
	p.Refund.Refunded = true
	p.Refund.Amount = money.Money{Amount: p.Refund.Amount.Amount + amount.Amount, Currency: p.Amount.Currency}
	p.Refund.Reason = reason
	p.Refund.By = actorID
	p.Refund.At = &ts
	if p.Refund.Amount.Amount >= p.Amount.Amount {
		switch downgrade {
		case DowngradeToRefunded:
			p.Status = StateRefunded
		default:
			p.Status = StatePending
		}
	}
	p.UpdatedAt = ts
	p.Record(PaymentRefunded{
		PaymentID:     p.ID,
		TenantID:      p.TenantID,
		ReservationID: p.ReservationID,
		Amount:        amount,
		Reason:        reason,
		At:            ts,
	})
	return nil
}

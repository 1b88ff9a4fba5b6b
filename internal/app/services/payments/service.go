package payments

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	appoutbox "innkeeper/internal/app/outbox"
	"innkeeper/internal/app/services/codes"
	"innkeeper/internal/app/uow"
	domainpayment "innkeeper/internal/domain/payment"
	domainreservation "innkeeper/internal/domain/reservation"
	"innkeeper/internal/domain/shared/money"
	domaintenant "innkeeper/internal/domain/tenant"
)

var (
	ErrExceedsRemainingBalance = errors.New("payments: amount exceeds remaining balance")
	ErrDuplicateResource       = errors.New("payments: could not allocate a unique transaction code")
	ErrFactoryRequired         = errors.New("payments: unit of work factory required")
)

const (
	transactionPrefix = "TXN"
	codeLength        = 10
	maxCodeAttempts   = 5
)

// Service records payments against reservations and keeps the reservation's
// payment summary reconciled with the ledger.
type Service struct {
	UoW     uow.Factory
	Outbox  appoutbox.Outbox
	Encoder appoutbox.EventEncoder
	Logger  *slog.Logger
	// RefundDowngrade selects what a fully refunded payment becomes;
	// defaults to the historical revert-to-pending behavior.
	RefundDowngrade domainpayment.RefundDowngrade
	Clock           func() time.Time
}

type RecordParams struct {
	TenantID      string
	ReservationID string
	Amount        int64
	Currency      string
	Method        domainpayment.Method
	Details       domainpayment.Details
	ProcessingFee int64
	GatewayFee    int64
	ActorID       string
}

// Record creates a paid payment for the reservation and reconciles the
// reservation summary. The amount may not exceed the remaining balance at
// submission time.
func (s *Service) Record(ctx context.Context, params RecordParams) (*domainpayment.Payment, error) {
	if s.UoW == nil {
		return nil, ErrFactoryRequired
	}
	now := s.now()
	unit, err := s.UoW.Begin(ctx, uow.TxOptions{})
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = unit.Rollback(ctx)
		}
	}()

	tenantID := domaintenant.ID(params.TenantID)
	rsv, err := unit.Reservations().ByID(ctx, tenantID, domainreservation.ID(params.ReservationID))
	if err != nil {
		return nil, err
	}
	if !rsv.Active() {
		return nil, domainreservation.ErrReservationNotFound
	}

	currency := params.Currency
	if currency == "" {
		currency = rsv.Pricing.Total.Currency
	}
	amount, err := money.New(params.Amount, currency)
	if err != nil {
		return nil, err
	}
	if amount.Amount <= 0 {
		return nil, domainpayment.ErrInvalidAmount
	}
	if amount.Currency == rsv.Payments.RemainingBalance.Currency &&
		amount.Amount > rsv.Payments.RemainingBalance.Amount {
		return nil, ErrExceedsRemainingBalance
	}

	code, err := s.uniqueTransactionCode(ctx, unit)
	if err != nil {
		return nil, err
	}
	pay, err := domainpayment.NewPayment(domainpayment.CreateParams{
		ID:              domainpayment.ID(uuid.NewString()),
		TenantID:        tenantID,
		ReservationID:   rsv.ID,
		TransactionCode: code,
		Amount:          amount,
		Method:          params.Method,
		Details:         params.Details,
		Fees: domainpayment.Fees{
			Processing: money.Money{Amount: params.ProcessingFee, Currency: currency},
			Gateway:    money.Money{Amount: params.GatewayFee, Currency: currency},
		},
		Now: now,
	})
	if err != nil {
		return nil, err
	}
	pay.MarkPaid(now)

	if err := unit.Payments().Save(ctx, pay); err != nil {
		return nil, err
	}
	if err := s.reconcile(ctx, unit, rsv, pay, now); err != nil {
		return nil, err
	}
	if err := s.drainEvents(ctx, pay); err != nil {
		return nil, err
	}
	if err := unit.Commit(ctx); err != nil {
		return nil, err
	}
	committed = true
	s.log().Info("payment recorded",
		"transaction_code", pay.TransactionCode,
		"reservation_id", rsv.ID,
		"amount", pay.Amount.String(),
	)
	return pay, nil
}

type RefundParams struct {
	TenantID  string
	PaymentID string
	Amount    int64
	Reason    string
	ActorID   string
}

// Refund returns part or all of a paid payment and reconciles the reservation
// summary against the updated ledger.
func (s *Service) Refund(ctx context.Context, params RefundParams) (*domainpayment.Payment, error) {
	if s.UoW == nil {
		return nil, ErrFactoryRequired
	}
	now := s.now()
	unit, err := s.UoW.Begin(ctx, uow.TxOptions{})
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = unit.Rollback(ctx)
		}
	}()

	tenantID := domaintenant.ID(params.TenantID)
	pay, err := unit.Payments().ByID(ctx, tenantID, domainpayment.ID(params.PaymentID))
	if err != nil {
		return nil, err
	}
	if !pay.Active() {
		return nil, domainpayment.ErrPaymentNotFound
	}

	amount := money.Money{Amount: params.Amount, Currency: pay.Amount.Currency}
	if err := pay.ApplyRefund(amount, params.Reason, params.ActorID, s.RefundDowngrade, now); err != nil {
		return nil, err
	}
	if err := unit.Payments().Save(ctx, pay); err != nil {
		return nil, err
	}

	rsv, err := unit.Reservations().ByID(ctx, tenantID, pay.ReservationID)
	if err != nil {
		return nil, err
	}
	if err := s.reconcile(ctx, unit, rsv, pay, now); err != nil {
		return nil, err
	}
	if err := s.drainEvents(ctx, pay); err != nil {
		return nil, err
	}
	if err := unit.Commit(ctx); err != nil {
		return nil, err
	}
	committed = true
	return pay, nil
}

// ListForReservation returns the reservation's active payments.
func (s *Service) ListForReservation(ctx context.Context, tenantID, reservationID string) ([]*domainpayment.Payment, error) {
	unit, err := s.UoW.Begin(ctx, uow.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, err
	}
	defer unit.Rollback(ctx)
	all, err := unit.Payments().ListByReservation(ctx, domaintenant.ID(tenantID), domainreservation.ID(reservationID))
	if err != nil {
		return nil, err
	}
	active := make([]*domainpayment.Payment, 0, len(all))
	for _, p := range all {
		if p.Active() {
			active = append(active, p)
		}
	}
	return active, nil
}

// reconcile sums net received amounts over the reservation's ledger (the
// just-written payment replaces its stale stored copy) and pushes the rollup
// into the reservation.
func (s *Service) reconcile(ctx context.Context, unit uow.UnitOfWork, rsv *domainreservation.Reservation, justWritten *domainpayment.Payment, now time.Time) error {
	ledger, err := unit.Payments().ListByReservation(ctx, rsv.TenantID, rsv.ID)
	if err != nil {
		return err
	}
	currency := rsv.Pricing.Total.Currency
	total := money.Zero(currency)
	seen := false
	for _, p := range ledger {
		if justWritten != nil && p.ID == justWritten.ID {
			p = justWritten
			seen = true
		}
		net := p.NetReceived()
		if net.Currency == currency {
			total.Amount += net.Amount
		}
	}
	if justWritten != nil && !seen {
		net := justWritten.NetReceived()
		if net.Currency == currency {
			total.Amount += net.Amount
		}
	}
	rsv.ReconcilePayments(total, now)
	return unit.Reservations().Save(ctx, rsv)
}

func (s *Service) uniqueTransactionCode(ctx context.Context, unit uow.UnitOfWork) (string, error) {
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code := codes.Generate(transactionPrefix, codeLength)
		exists, err := unit.Payments().TransactionCodeExists(ctx, code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}
	return "", ErrDuplicateResource
}

func (s *Service) drainEvents(ctx context.Context, pay *domainpayment.Payment) error {
	pending := pay.PendingEvents()
	pay.ClearEvents()
	return appoutbox.RecordDomainEvents(ctx, s.Outbox, s.Encoder, pending)
}

func (s *Service) now() time.Time {
	if s.Clock != nil {
		return s.Clock().UTC()
	}
	return time.Now().UTC()
}

func (s *Service) log() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

package payment

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"innkeeper/internal/domain/shared/money"
)

var testNow = time.Date(2026, time.May, 1, 10, 0, 0, 0, time.UTC)

func newTestPayment(t *testing.T, amountCents int64) *Payment {
	t.Helper()
	p, err := NewPayment(CreateParams{
		ID:              "pay-1",
		TenantID:        "tenant-1",
		ReservationID:   "rsv-1",
		TransactionCode: "TXN-TEST000001",
		Amount:          money.Must(amountCents, "USD"),
		Method:          MethodCash,
		Details:         CashDetails{ReceivedBy: "staff-1"},
		Now:             testNow,
	})
	require.NoError(t, err)
	return p
}

func TestNewPayment(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*CreateParams)
		wantErr error
	}{
		{
			name:   "valid cash payment",
			mutate: func(p *CreateParams) {},
		},
		{
			name:    "zero amount",
			mutate:  func(p *CreateParams) { p.Amount = money.Zero("USD") },
			wantErr: ErrInvalidAmount,
		},
		{
			name:    "negative amount",
			mutate:  func(p *CreateParams) { p.Amount = money.Money{Amount: -100, Currency: "USD"} },
			wantErr: ErrInvalidAmount,
		},
		{
			name:    "missing transaction code",
			mutate:  func(p *CreateParams) { p.TransactionCode = "" },
			wantErr: ErrCodeRequired,
		},
		{
			name:    "unknown method",
			mutate:  func(p *CreateParams) { p.Method = "crypto"; p.Details = nil },
			wantErr: ErrUnknownMethod,
		},
		{
			name:    "details disagree with method",
			mutate:  func(p *CreateParams) { p.Details = CardDetails{LastFour: "4242"} },
			wantErr: ErrUnknownMethod,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := CreateParams{
				ID:              "pay-1",
				TransactionCode: "TXN-TEST000001",
				Amount:          money.Must(100_00, "USD"),
				Method:          MethodCash,
				Details:         CashDetails{},
				Now:             testNow,
			}
			tt.mutate(&params)
			p, err := NewPayment(params)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, StatePending, p.Status)
		})
	}
}

func TestNetAmountSubtractsFees(t *testing.T) {
	p, err := NewPayment(CreateParams{
		ID:              "pay-card",
		TransactionCode: "TXN-TEST000002",
		Amount:          money.Must(200_00, "USD"),
		Method:          MethodCard,
		Details:         CardDetails{Brand: "visa", LastFour: "4242"},
		Fees: Fees{
			Processing: money.Must(3_00, "USD"),
			Gateway:    money.Must(2_00, "USD"),
		},
		Now: testNow,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(195_00), p.NetAmount.Amount)
	assert.Equal(t, int64(200_00), p.Amount.Amount, "gross amount untouched")
}

func TestMarkPaid(t *testing.T) {
	p := newTestPayment(t, 300_00)
	p.MarkPaid(testNow)

	assert.Equal(t, StatePaid, p.Status)
	require.NotNil(t, p.PaidAt)
	assert.Equal(t, int64(300_00), p.NetReceived().Amount)

	pending := p.PendingEvents()
	require.Len(t, pending, 1)
	assert.Equal(t, "payment.recorded", pending[0].EventName())
}

func TestNetReceived(t *testing.T) {
	t.Run("pending contributes nothing", func(t *testing.T) {
		p := newTestPayment(t, 100_00)
		assert.Equal(t, int64(0), p.NetReceived().Amount)
	})
	t.Run("soft-deleted contributes nothing", func(t *testing.T) {
		p := newTestPayment(t, 100_00)
		p.MarkPaid(testNow)
		p.Deactivate(testNow)
		assert.Equal(t, int64(0), p.NetReceived().Amount)
	})
	t.Run("partial refund reduces contribution", func(t *testing.T) {
		p := newTestPayment(t, 300_00)
		p.MarkPaid(testNow)
		require.NoError(t, p.ApplyRefund(money.Must(100_00, "USD"), "goodwill", "staff-1", DowngradeToPending, testNow))
		assert.Equal(t, int64(200_00), p.NetReceived().Amount)
	})
}

func TestApplyRefund(t *testing.T) {
	t.Run("only paid payments are refundable", func(t *testing.T) {
		p := newTestPayment(t, 100_00)
		err := p.ApplyRefund(money.Must(50_00, "USD"), "", "staff-1", DowngradeToPending, testNow)
		assert.ErrorIs(t, err, ErrNotRefundable)
	})
	t.Run("refund cannot exceed available", func(t *testing.T) {
		p := newTestPayment(t, 100_00)
		p.MarkPaid(testNow)
		err := p.ApplyRefund(money.Must(150_00, "USD"), "", "staff-1", DowngradeToPending, testNow)
		assert.ErrorIs(t, err, ErrAmountExceedsAvailable)
	})
	t.Run("cumulative refunds are capped at the amount", func(t *testing.T) {
		p := newTestPayment(t, 100_00)
		p.MarkPaid(testNow)
		require.NoError(t, p.ApplyRefund(money.Must(60_00, "USD"), "", "staff-1", DowngradeToPending, testNow))
		err := p.ApplyRefund(money.Must(50_00, "USD"), "", "staff-1", DowngradeToPending, testNow)
		assert.ErrorIs(t, err, ErrAmountExceedsAvailable)
	})
	t.Run("currency mismatch", func(t *testing.T) {
		p := newTestPayment(t, 100_00)
		p.MarkPaid(testNow)
		err := p.ApplyRefund(money.Must(50_00, "EUR"), "", "staff-1", DowngradeToPending, testNow)
		assert.ErrorIs(t, err, ErrInvalidAmount)
	})
	t.Run("full refund downgrades to pending by default", func(t *testing.T) {
		p := newTestPayment(t, 100_00)
		p.MarkPaid(testNow)
		require.NoError(t, p.ApplyRefund(money.Must(100_00, "USD"), "cancelled stay", "staff-1", DowngradeToPending, testNow))
		assert.Equal(t, StatePending, p.Status)
		assert.True(t, p.Refund.Refunded)
		assert.Equal(t, int64(0), p.AvailableToRefund().Amount)
	})
	t.Run("full refund can downgrade to refunded", func(t *testing.T) {
		p := newTestPayment(t, 100_00)
		p.MarkPaid(testNow)
		require.NoError(t, p.ApplyRefund(money.Must(100_00, "USD"), "", "staff-1", DowngradeToRefunded, testNow))
		assert.Equal(t, StateRefunded, p.Status)
		assert.Equal(t, int64(0), p.NetReceived().Amount)
	})
	t.Run("partial refund keeps paid status", func(t *testing.T) {
		p := newTestPayment(t, 100_00)
		p.MarkPaid(testNow)
		require.NoError(t, p.ApplyRefund(money.Must(30_00, "USD"), "", "staff-1", DowngradeToPending, testNow))
		assert.Equal(t, StatePaid, p.Status)
		assert.Equal(t, int64(70_00), p.AvailableToRefund().Amount)
	})
}

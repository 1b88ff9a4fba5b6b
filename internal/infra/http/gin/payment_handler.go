package ginserver

import (
	"log/slog"
	"net/http"
	"time"

	gin "github.com/gin-gonic/gin"

	"innkeeper/internal/app/services/payments"
	domainpayment "innkeeper/internal/domain/payment"
	"innkeeper/internal/domain/shared/money"
)

type PaymentHandler struct {
	Service *payments.Service
	Logger  *slog.Logger
}

type recordPaymentRequest struct {
	ReservationID string `json:"reservation_id" binding:"required"`
	Amount        int64  `json:"amount" binding:"required,gt=0"`
	Currency      string `json:"currency" binding:"required,currency"`
	Method        string `json:"method" binding:"required,oneof=cash transfer card"`
	ProcessingFee int64  `json:"processing_fee" binding:"min=0"`
	GatewayFee    int64  `json:"gateway_fee" binding:"min=0"`

	Card     *cardDetailsRequest     `json:"card"`
	Transfer *transferDetailsRequest `json:"transfer"`
	Cash     *cashDetailsRequest     `json:"cash"`
}

type cardDetailsRequest struct {
	Brand     string `json:"brand"`
	LastFour  string `json:"last_four"`
	AuthCode  string `json:"auth_code"`
	Reference string `json:"reference"`
}

type transferDetailsRequest struct {
	BankName  string `json:"bank_name"`
	Reference string `json:"reference"`
	IBAN      string `json:"iban"`
}

type cashDetailsRequest struct {
	ReceivedBy  string `json:"received_by"`
	ReceiptNote string `json:"receipt_note"`
}

func (r recordPaymentRequest) details() domainpayment.Details {
	switch domainpayment.Method(r.Method) {
	case domainpayment.MethodCard:
		var d cardDetailsRequest
		if r.Card != nil {
			d = *r.Card
		}
		return domainpayment.CardDetails{Brand: d.Brand, LastFour: d.LastFour, AuthCode: d.AuthCode, Reference: d.Reference}
	case domainpayment.MethodTransfer:
		var d transferDetailsRequest
		if r.Transfer != nil {
			d = *r.Transfer
		}
		return domainpayment.TransferDetails{BankName: d.BankName, Reference: d.Reference, IBAN: d.IBAN}
	case domainpayment.MethodCash:
		var d cashDetailsRequest
		if r.Cash != nil {
			d = *r.Cash
		}
		return domainpayment.CashDetails{ReceivedBy: d.ReceivedBy, ReceiptNote: d.ReceiptNote}
	default:
		return nil
	}
}

func (h PaymentHandler) Record(c *gin.Context) {
	p, ok := requirePermission(c, "payments:write")
	if !ok {
		return
	}
	var req recordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	pay, err := h.Service.Record(c.Request.Context(), payments.RecordParams{
		TenantID:      p.TenantID,
		ReservationID: req.ReservationID,
		Amount:        req.Amount,
		Currency:      req.Currency,
		Method:        domainpayment.Method(req.Method),
		Details:       req.details(),
		ProcessingFee: req.ProcessingFee,
		GatewayFee:    req.GatewayFee,
		ActorID:       p.Subject,
	})
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, newPaymentResponse(pay))
}

type refundPaymentRequest struct {
	Amount int64  `json:"amount" binding:"required,gt=0"`
	Reason string `json:"reason"`
}

func (h PaymentHandler) Refund(c *gin.Context) {
	p, ok := requirePermission(c, "payments:write")
	if !ok {
		return
	}
	var req refundPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	pay, err := h.Service.Refund(c.Request.Context(), payments.RefundParams{
		TenantID:  p.TenantID,
		PaymentID: c.Param("id"),
		Amount:    req.Amount,
		Reason:    req.Reason,
		ActorID:   p.Subject,
	})
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, newPaymentResponse(pay))
}

func (h PaymentHandler) ListForReservation(c *gin.Context) {
	p, ok := requirePermission(c, "payments:read")
	if !ok {
		return
	}
	matches, err := h.Service.ListForReservation(c.Request.Context(), p.TenantID, c.Param("id"))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	out := make([]paymentResponse, 0, len(matches))
	for _, pay := range matches {
		out = append(out, newPaymentResponse(pay))
	}
	c.JSON(http.StatusOK, gin.H{"payments": out})
}

type paymentResponse struct {
	ID              string          `json:"id"`
	ReservationID   string          `json:"reservation_id"`
	TransactionCode string          `json:"transaction_code"`
	Amount          money.Money     `json:"amount"`
	Method          string          `json:"method"`
	Status          string          `json:"status"`
	NetAmount       money.Money     `json:"net_amount"`
	PaidAt          *time.Time      `json:"paid_at,omitempty"`
	Refund          *refundResponse `json:"refund,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

type refundResponse struct {
	Amount money.Money `json:"amount"`
	Reason string      `json:"reason,omitempty"`
	By     string      `json:"by,omitempty"`
	At     *time.Time  `json:"at,omitempty"`
}

func newPaymentResponse(pay *domainpayment.Payment) paymentResponse {
	resp := paymentResponse{
		ID:              string(pay.ID),
		ReservationID:   string(pay.ReservationID),
		TransactionCode: pay.TransactionCode,
		Amount:          pay.Amount,
		Method:          string(pay.Method),
		Status:          string(pay.Status),
		NetAmount:       pay.NetAmount,
		PaidAt:          pay.PaidAt,
		CreatedAt:       pay.CreatedAt,
	}
	if pay.Refund.Refunded || pay.Refund.Amount.Amount > 0 {
		resp.Refund = &refundResponse{
			Amount: pay.Refund.Amount,
			Reason: pay.Refund.Reason,
			By:     pay.Refund.By,
			At:     pay.Refund.At,
		}
	}
	return resp
}

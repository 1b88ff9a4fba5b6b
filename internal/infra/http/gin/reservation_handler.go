package ginserver

import (
	"log/slog"
	"net/http"
	"time"

	gin "github.com/gin-gonic/gin"

	"innkeeper/internal/app/services/reservations"
	domainguest "innkeeper/internal/domain/guest"
	"innkeeper/internal/domain/pricing"
	domainreservation "innkeeper/internal/domain/reservation"
	domainroom "innkeeper/internal/domain/room"
	"innkeeper/internal/domain/shared/money"
)

const dateLayout = "2006-01-02"

type ReservationHandler struct {
	Service *reservations.Service
	Logger  *slog.Logger
}

type createReservationRequest struct {
	PropertyID       string   `json:"property_id" binding:"required"`
	RoomID           string   `json:"room_id" binding:"required"`
	GuestID          string   `json:"guest_id" binding:"required"`
	CheckIn          string   `json:"check_in" binding:"required"`
	CheckOut         string   `json:"check_out" binding:"required"`
	Adults           int      `json:"adults" binding:"min=0"`
	Children         int      `json:"children" binding:"min=0"`
	AdditionalGuests []string `json:"additional_guests"`
	Source           string   `json:"source"`
	Notes            string   `json:"notes"`
	DepositRequired  int64    `json:"deposit_required" binding:"min=0"`
	DirectCheckIn    bool     `json:"direct_check_in"`
}

func (h ReservationHandler) Create(c *gin.Context) {
	p, ok := requirePermission(c, "reservations:write")
	if !ok {
		return
	}
	var req createReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	checkIn, checkOut, err := parseStayDates(req.CheckIn, req.CheckOut)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rsv, err := h.Service.Create(c.Request.Context(), reservations.CreateParams{
		TenantID:         p.TenantID,
		PropertyID:       req.PropertyID,
		RoomID:           req.RoomID,
		GuestID:          req.GuestID,
		CheckIn:          checkIn,
		CheckOut:         checkOut,
		Adults:           req.Adults,
		Children:         req.Children,
		AdditionalGuests: req.AdditionalGuests,
		Source:           req.Source,
		Notes:            req.Notes,
		DepositRequired:  req.DepositRequired,
		DirectCheckIn:    req.DirectCheckIn,
		ActorID:          p.Subject,
	})
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, newReservationResponse(rsv))
}

type updateReservationRequest struct {
	CheckIn          *string  `json:"check_in"`
	CheckOut         *string  `json:"check_out"`
	RoomID           *string  `json:"room_id"`
	Adults           *int     `json:"adults"`
	Children         *int     `json:"children"`
	AdditionalGuests []string `json:"additional_guests"`
	Notes            *string  `json:"notes"`
}

func (h ReservationHandler) Update(c *gin.Context) {
	p, ok := requirePermission(c, "reservations:write")
	if !ok {
		return
	}
	var req updateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	params := reservations.UpdateParams{
		TenantID:         p.TenantID,
		ReservationID:    c.Param("id"),
		RoomID:           req.RoomID,
		Adults:           req.Adults,
		Children:         req.Children,
		AdditionalGuests: req.AdditionalGuests,
		Notes:            req.Notes,
		ActorID:          p.Subject,
	}
	if req.CheckIn != nil {
		t, err := time.Parse(dateLayout, *req.CheckIn)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "check_in must be YYYY-MM-DD"})
			return
		}
		params.CheckIn = &t
	}
	if req.CheckOut != nil {
		t, err := time.Parse(dateLayout, *req.CheckOut)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "check_out must be YYYY-MM-DD"})
			return
		}
		params.CheckOut = &t
	}
	rsv, err := h.Service.Update(c.Request.Context(), params)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, newReservationResponse(rsv))
}

func (h ReservationHandler) Get(c *gin.Context) {
	p, ok := requirePermission(c, "reservations:read")
	if !ok {
		return
	}
	rsv, err := h.Service.ByID(c.Request.Context(), p.TenantID, c.Param("id"))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, newReservationResponse(rsv))
}

func (h ReservationHandler) List(c *gin.Context) {
	p, ok := requirePermission(c, "reservations:read")
	if !ok {
		return
	}
	filter := domainreservation.Filter{
		Status:  domainreservation.Status(c.Query("status")),
		RoomID:  domainroom.ID(c.Query("room_id")),
		GuestID: domainguest.ID(c.Query("guest_id")),
	}
	matches, err := h.Service.List(c.Request.Context(), p.TenantID, filter)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	out := make([]reservationResponse, 0, len(matches))
	for _, rsv := range matches {
		out = append(out, newReservationResponse(rsv))
	}
	c.JSON(http.StatusOK, gin.H{"reservations": out})
}

func (h ReservationHandler) Confirm(c *gin.Context) {
	p, ok := requirePermission(c, "reservations:write")
	if !ok {
		return
	}
	rsv, err := h.Service.Confirm(c.Request.Context(), p.TenantID, c.Param("id"), p.Subject)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, newReservationResponse(rsv))
}

func (h ReservationHandler) CheckIn(c *gin.Context) {
	p, ok := requirePermission(c, "reservations:write")
	if !ok {
		return
	}
	rsv, err := h.Service.CheckIn(c.Request.Context(), p.TenantID, c.Param("id"), p.Subject)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, newReservationResponse(rsv))
}

type checkOutRequest struct {
	LateCharges []lateCharge `json:"late_charges"`
}

type lateCharge struct {
	Name     string `json:"name" binding:"required"`
	Amount   int64  `json:"amount" binding:"required,gt=0"`
	Currency string `json:"currency" binding:"required,len=3"`
}

func (h ReservationHandler) CheckOut(c *gin.Context) {
	p, ok := requirePermission(c, "reservations:write")
	if !ok {
		return
	}
	var req checkOutRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	charges := make([]pricing.Fee, 0, len(req.LateCharges))
	for _, lc := range req.LateCharges {
		amount, err := money.New(lc.Amount, lc.Currency)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		charges = append(charges, pricing.Fee{Name: lc.Name, Amount: amount})
	}
	rsv, err := h.Service.CheckOut(c.Request.Context(), p.TenantID, c.Param("id"), p.Subject, charges)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, newReservationResponse(rsv))
}

type cancelRequest struct {
	Reason       string `json:"reason"`
	RefundAmount int64  `json:"refund_amount" binding:"min=0"`
}

func (h ReservationHandler) Cancel(c *gin.Context) {
	p, ok := requirePermission(c, "reservations:write")
	if !ok {
		return
	}
	var req cancelRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	rsv, err := h.Service.Cancel(c.Request.Context(), p.TenantID, c.Param("id"), p.Subject, req.Reason, req.RefundAmount)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, newReservationResponse(rsv))
}

type reservationResponse struct {
	ID               string                 `json:"id"`
	ConfirmationCode string                 `json:"confirmation_code"`
	PropertyID       string                 `json:"property_id"`
	RoomID           string                 `json:"room_id"`
	GuestID          string                 `json:"guest_id"`
	CheckIn          string                 `json:"check_in"`
	CheckOut         string                 `json:"check_out"`
	Nights           int                    `json:"nights"`
	Adults           int                    `json:"adults"`
	Children         int                    `json:"children"`
	AdditionalGuests []string               `json:"additional_guests,omitempty"`
	Status           string                 `json:"status"`
	Source           string                 `json:"source"`
	Pricing          pricing.Quote          `json:"pricing"`
	Payments         paymentSummaryResponse `json:"payments"`
	Cancellation     *cancellationResponse  `json:"cancellation,omitempty"`
	ActualCheckIn    *time.Time             `json:"actual_check_in,omitempty"`
	ActualCheckOut   *time.Time             `json:"actual_check_out,omitempty"`
	ConfirmedAt      *time.Time             `json:"confirmed_at,omitempty"`
	Notes            string                 `json:"notes,omitempty"`
	CreatedAt        time.Time              `json:"created_at"`
	UpdatedAt        time.Time              `json:"updated_at"`
}

type paymentSummaryResponse struct {
	TotalPaid        money.Money `json:"total_paid"`
	RemainingBalance money.Money `json:"remaining_balance"`
	Status           string      `json:"status"`
	DepositRequired  money.Money `json:"deposit_required"`
	DepositPaid      bool        `json:"deposit_paid"`
}

type cancellationResponse struct {
	By           string      `json:"by"`
	At           time.Time   `json:"at"`
	Reason       string      `json:"reason,omitempty"`
	RefundAmount money.Money `json:"refund_amount"`
}

func newReservationResponse(rsv *domainreservation.Reservation) reservationResponse {
	resp := reservationResponse{
		ID:               string(rsv.ID),
		ConfirmationCode: rsv.ConfirmationCode,
		PropertyID:       string(rsv.PropertyID),
		RoomID:           string(rsv.RoomID),
		GuestID:          string(rsv.GuestID),
		CheckIn:          rsv.Stay.CheckIn.Format(dateLayout),
		CheckOut:         rsv.Stay.CheckOut.Format(dateLayout),
		Nights:           rsv.Stay.Nights(),
		Adults:           rsv.Adults,
		Children:         rsv.Children,
		AdditionalGuests: rsv.AdditionalGuests,
		Status:           string(rsv.Status),
		Source:           string(rsv.Source),
		Pricing:          rsv.Pricing,
		Payments: paymentSummaryResponse{
			TotalPaid:        rsv.Payments.TotalPaid,
			RemainingBalance: rsv.Payments.RemainingBalance,
			Status:           string(rsv.Payments.Status),
			DepositRequired:  rsv.Payments.DepositRequired,
			DepositPaid:      rsv.Payments.DepositPaid,
		},
		ActualCheckIn:  rsv.ActualCheckIn,
		ActualCheckOut: rsv.ActualCheckOut,
		ConfirmedAt:    rsv.ConfirmedAt,
		Notes:          rsv.Notes,
		CreatedAt:      rsv.CreatedAt,
		UpdatedAt:      rsv.UpdatedAt,
	}
	if rsv.Cancellation != nil {
		resp.Cancellation = &cancellationResponse{
			By:           rsv.Cancellation.By,
			At:           rsv.Cancellation.At,
			Reason:       rsv.Cancellation.Reason,
			RefundAmount: rsv.Cancellation.RefundAmount,
		}
	}
	return resp
}

func parseStayDates(checkIn, checkOut string) (time.Time, time.Time, error) {
	in, err := time.Parse(dateLayout, checkIn)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	out, err := time.Parse(dateLayout, checkOut)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return in, out, nil
}

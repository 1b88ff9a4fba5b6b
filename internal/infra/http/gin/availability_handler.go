package ginserver

import (
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"innkeeper/internal/app/services/reservations"
	"innkeeper/internal/domain/pricing"
)

type AvailabilityHandler struct {
	Service *reservations.Service
	Logger  *slog.Logger
}

type checkAvailabilityRequest struct {
	PropertyID string `json:"property_id" binding:"required"`
	CheckIn    string `json:"check_in" binding:"required"`
	CheckOut   string `json:"check_out" binding:"required"`
	Adults     int    `json:"adults" binding:"min=0"`
	Children   int    `json:"children" binding:"min=0"`
}

type roomOfferResponse struct {
	RoomID       string        `json:"room_id"`
	NameOrNumber string        `json:"name_or_number"`
	Type         string        `json:"type"`
	Quote        pricing.Quote `json:"quote"`
}

// Check lists the free rooms of a property for a date range, priced for the
// party. Read-only, so it only needs the read permission.
func (h AvailabilityHandler) Check(c *gin.Context) {
	p, ok := requirePermission(c, "reservations:read")
	if !ok {
		return
	}
	var req checkAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	checkIn, checkOut, err := parseStayDates(req.CheckIn, req.CheckOut)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	offers, err := h.Service.CheckAvailability(c.Request.Context(), reservations.CheckAvailabilityParams{
		TenantID:   p.TenantID,
		PropertyID: req.PropertyID,
		CheckIn:    checkIn,
		CheckOut:   checkOut,
		Adults:     req.Adults,
		Children:   req.Children,
	})
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	out := make([]roomOfferResponse, 0, len(offers))
	for _, offer := range offers {
		out = append(out, roomOfferResponse{
			RoomID:       string(offer.Room.ID),
			NameOrNumber: offer.Room.NameOrNumber,
			Type:         string(offer.Room.Type),
			Quote:        offer.Quote,
		})
	}
	c.JSON(http.StatusOK, gin.H{"rooms": out})
}

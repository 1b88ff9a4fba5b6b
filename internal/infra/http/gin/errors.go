package ginserver

import (
	"errors"
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	applocks "innkeeper/internal/app/locks"
	"innkeeper/internal/app/services/catalogue"
	"innkeeper/internal/app/services/payments"
	"innkeeper/internal/app/services/reservations"
	domainguest "innkeeper/internal/domain/guest"
	domainpayment "innkeeper/internal/domain/payment"
	domainproperty "innkeeper/internal/domain/property"
	domainreservation "innkeeper/internal/domain/reservation"
	domainroom "innkeeper/internal/domain/room"
	"innkeeper/internal/domain/shared/daterange"
	domaintenant "innkeeper/internal/domain/tenant"
	mongostore "innkeeper/internal/infra/db/mongo"
)

// writeError maps domain and application errors onto HTTP statuses. An
// availability conflict gets a structured body so the caller can show the
// clashing stay; anything unrecognized is a 500 with the detail kept
// server-side.
func writeError(c *gin.Context, logger *slog.Logger, err error) {
	var conflict *domainreservation.ConflictError
	if errors.As(err, &conflict) {
		c.JSON(http.StatusConflict, gin.H{
			"error": "room is not available for the requested dates",
			"conflict": gin.H{
				"confirmationNumber": conflict.ConfirmationCode,
				"checkIn":            conflict.CheckIn.Format("2006-01-02"),
				"checkOut":           conflict.CheckOut.Format("2006-01-02"),
				"status":             conflict.Status,
			},
		})
		return
	}

	switch {
	case errors.Is(err, domainreservation.ErrReservationNotFound),
		errors.Is(err, domainpayment.ErrPaymentNotFound),
		errors.Is(err, domainproperty.ErrPropertyNotFound),
		errors.Is(err, domainroom.ErrRoomNotFound),
		errors.Is(err, domainguest.ErrGuestNotFound),
		errors.Is(err, domaintenant.ErrTenantNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})

	case errors.Is(err, domainreservation.ErrInvalidStateTransition),
		errors.Is(err, domainpayment.ErrNotRefundable):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})

	case errors.Is(err, applocks.ErrRoomBusy),
		errors.Is(err, domainroom.ErrDuplicateName),
		errors.Is(err, reservations.ErrDuplicateResource),
		errors.Is(err, payments.ErrDuplicateResource),
		errors.Is(err, mongostore.ErrConcurrentUpdate):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})

	case errors.Is(err, daterange.ErrInvalidRange),
		errors.Is(err, daterange.ErrZeroDate),
		errors.Is(err, domainreservation.ErrCheckInInPast),
		errors.Is(err, domainreservation.ErrGuestRequired),
		errors.Is(err, domainreservation.ErrNoGuests),
		errors.Is(err, reservations.ErrCapacityExceeded),
		errors.Is(err, payments.ErrExceedsRemainingBalance),
		errors.Is(err, domainpayment.ErrInvalidAmount),
		errors.Is(err, domainpayment.ErrAmountExceedsAvailable),
		errors.Is(err, domainpayment.ErrUnknownMethod),
		errors.Is(err, domainguest.ErrBlacklisted),
		errors.Is(err, domainguest.ErrNameRequired),
		errors.Is(err, domainroom.ErrNameRequired),
		errors.Is(err, domainroom.ErrInvalidCapacity),
		errors.Is(err, domainroom.ErrInvalidBaseRate),
		errors.Is(err, domainroom.ErrUnknownType),
		errors.Is(err, domainroom.ErrUnknownStatus),
		errors.Is(err, domainproperty.ErrNameRequired),
		errors.Is(err, domaintenant.ErrTenantInactive):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

	case errors.Is(err, catalogue.ErrUploaderRequired):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})

	default:
		if logger != nil {
			logger.Error("request failed", "error", err, "path", c.FullPath())
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

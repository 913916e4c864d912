package handlers

import (
	"net/http"

	"tourops/internal/domain"
	"tourops/internal/domain/models"
	"tourops/internal/services"

	"github.com/gin-gonic/gin"
)

// POST /api/bookings
func CreateBooking(c *gin.Context) {
	var req services.CreateBookingRequest
	if !BindJSONOrError(c, &req) {
		return
	}

	booking, err := bookingSvc(c).CreateBooking(c.Request.Context(), req)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"booking": booking})
}

// GET /api/bookings/:id
func GetBooking(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	booking, err := bookingSvc(c).GetBooking(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": booking})
}

type cancelRequest struct {
	Reason string `json:"reason"`
}

// POST /api/bookings/:id/cancel
//
// A repeat cancel of an already-terminal booking is answered with the current
// state rather than an error; the caller cannot tell a retry from a first
// attempt and should not be punished for it.
func CancelBooking(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req cancelRequest
	if c.Request.Body != nil && c.Request.ContentLength > 0 {
		if !BindJSONOrError(c, &req) {
			return
		}
	}

	booking, err := cancelSvc(c).CancelByCustomer(c.Request.Context(), id, req.Reason)
	if err != nil {
		if domain.IsAlreadyProcessed(err) {
			current, getErr := bookingSvc(c).GetBooking(c.Request.Context(), id)
			if getErr == nil {
				c.JSON(http.StatusOK, gin.H{"booking": current, "message": "booking already cancelled"})
				return
			}
		}
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": booking})
}

// GET /api/bookings/:id/ops
//
// Admin view of which side effects have already run for a booking, useful when
// deciding whether a stuck Cancelling booking is safe to re-drive.
func GetBookingOps(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if _, err := bookingRepo().GetByID(c.Request.Context(), id); err != nil {
		RespondDomainError(c, err)
		return
	}

	ops := gin.H{}
	for _, kind := range []models.OpKind{
		models.OpCapacityRelease,
		models.OpRevenueHold,
		models.OpRevenueAdjust,
		models.OpRevenueSettle,
	} {
		claimed, err := opClaimRepo().Claimed(c.Request.Context(), id, kind)
		if err != nil {
			RespondDomainError(c, err)
			return
		}
		ops[string(kind)] = claimed
	}
	c.JSON(http.StatusOK, gin.H{"booking_id": id, "ops": ops})
}

// GET /api/bookings/:id/refund
func GetBookingRefund(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	rr, err := refundRepo().GetByBookingID(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"refund_request": rr})
}

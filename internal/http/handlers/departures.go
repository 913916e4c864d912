package handlers

import (
	"net/http"
	"strconv"
	"time"

	"tourops/internal/domain/models"
	"tourops/internal/services"
	"tourops/internal/utils"

	"github.com/gin-gonic/gin"
)

type createDepartureRequest struct {
	OperatorID     int64  `json:"operator_id"`
	TourName       string `json:"tour_name"`
	DepartureDate  string `json:"departure_date"`
	CompletionDate string `json:"completion_date"`
	MaxSeats       int    `json:"max_seats"`
	PricePerSeat   int64  `json:"price_per_seat"`
}

// POST /api/departures (admin)
func CreateDeparture(c *gin.Context) {
	var req createDepartureRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	if req.OperatorID <= 0 || req.TourName == "" || req.MaxSeats <= 0 || req.PricePerSeat <= 0 {
		RespondError(c, http.StatusBadRequest, "operator_id, tour_name, max_seats and price_per_seat are required", nil)
		return
	}
	depDate, err := utils.ParseDate(req.DepartureDate)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid departure_date", err)
		return
	}
	compDate, err := utils.ParseDate(req.CompletionDate)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid completion_date", err)
		return
	}
	if compDate.Before(depDate) {
		RespondError(c, http.StatusBadRequest, "completion_date precedes departure_date", nil)
		return
	}

	dep := models.Departure{
		OperatorID:     req.OperatorID,
		TourName:       req.TourName,
		DepartureDate:  depDate,
		CompletionDate: compDate,
		MaxSeats:       req.MaxSeats,
		PricePerSeat:   req.PricePerSeat,
		Status:         models.DepartureScheduled,
	}
	id, err := departureRepo().Create(c.Request.Context(), dep)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

// GET /api/departures/:id
func GetDeparture(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	dep, err := departureRepo().GetByID(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"departure":  dep,
		"seats_left": dep.SeatsLeft(),
	})
}

// GET /api/departures?operator_id=N
func ListDepartures(c *gin.Context) {
	operatorID, err := strconv.ParseInt(c.Query("operator_id"), 10, 64)
	if err != nil || operatorID <= 0 {
		RespondError(c, http.StatusBadRequest, "operator_id query parameter is required", err)
		return
	}
	deps, err := departureRepo().ListByOperator(c.Request.Context(), operatorID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"departures": deps})
}

// GET /api/departures/:id/bookings
func ListDepartureBookings(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	bookings, err := bookingSvc(c).ListByDeparture(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}

// POST /api/departures/:id/cancel (admin)
//
// Pulls the whole departure: every live booking is cancelled with full-refund
// treatment. Partial failures are reported in the summary and a re-run of the
// same request finishes the stragglers.
func CancelDeparture(c *gin.Context) {
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
	reason := req.Reason
	if reason == "" {
		reason = "departure cancelled by operator"
	}

	summary, err := cancelSvc(c).CancelDeparture(c.Request.Context(), id, reason)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	status := http.StatusOK
	if len(summary.Failed) > 0 {
		status = http.StatusMultiStatus
	}
	c.JSON(status, gin.H{"summary": summary})
}

// GET /api/departures/:id/refund-quote?amount=N
//
// Previews the refund a customer would get for cancelling today, without
// touching any state.
func QuoteRefund(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	amount, err := strconv.ParseInt(c.Query("amount"), 10, 64)
	if err != nil || amount < 0 {
		RespondError(c, http.StatusBadRequest, "amount query parameter is required", err)
		return
	}

	dep, err := departureRepo().GetByID(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	now := time.Now()
	policy, err := policySvc().Resolve(c.Request.Context(), models.CustomerCancel, dep.DaysBefore(now), now)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	breakdown := services.ComputeRefund(policy, amount)
	c.JSON(http.StatusOK, gin.H{
		"policy_id": policy.ID,
		"quote":     breakdown,
	})
}

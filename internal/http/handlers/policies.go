package handlers

import (
	"net/http"
	"time"

	"tourops/internal/domain/models"
	"tourops/internal/utils"

	"github.com/gin-gonic/gin"
)

type createPolicyRequest struct {
	Category      string `json:"category"`
	MinDaysBefore int    `json:"min_days_before"`
	MaxDaysBefore *int   `json:"max_days_before"`
	RefundPercent int    `json:"refund_percent"`
	FlatFee       int64  `json:"flat_fee"`
	FeePercent    int    `json:"fee_percent"`
	Priority      int    `json:"priority"`
	EffectiveFrom string `json:"effective_from"`
	EffectiveTo   string `json:"effective_to"`
}

// POST /api/policies (admin)
func CreatePolicy(c *gin.Context) {
	var req createPolicyRequest
	if !BindJSONOrError(c, &req) {
		return
	}

	effFrom := time.Now()
	if req.EffectiveFrom != "" {
		t, err := utils.ParseDateTime(req.EffectiveFrom)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "invalid effective_from", err)
			return
		}
		effFrom = t
	}
	var effTo *time.Time
	if req.EffectiveTo != "" {
		t, err := utils.ParseDateTime(req.EffectiveTo)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "invalid effective_to", err)
			return
		}
		effTo = &t
	}

	p := models.RefundPolicy{
		Category:      models.CancellationCategory(req.Category),
		MinDaysBefore: req.MinDaysBefore,
		MaxDaysBefore: req.MaxDaysBefore,
		RefundPercent: req.RefundPercent,
		FlatFee:       req.FlatFee,
		FeePercent:    req.FeePercent,
		Priority:      req.Priority,
		EffectiveFrom: effFrom,
		EffectiveTo:   effTo,
		Active:        true,
	}

	id, err := policySvc().CreatePolicy(c.Request.Context(), p)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

// GET /api/policies?category=customer_cancel
func ListPolicies(c *gin.Context) {
	category := models.CancellationCategory(c.Query("category"))
	if category == "" {
		category = models.CustomerCancel
	}
	policies, err := policyRepo().ListActive(c.Request.Context(), category)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"policies": policies})
}

// POST /api/policies/:id/expire (admin)
//
// Retires a policy by stamping effective_to; history stays queryable for
// bookings that were cancelled under it.
func ExpirePolicy(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := policySvc().ExpirePolicy(c.Request.Context(), id, time.Now()); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "policy expired"})
}

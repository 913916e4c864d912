package handlers

import (
	"net/http"

	"tourops/internal/domain"
	"tourops/internal/http/middleware"
	"tourops/internal/utils"

	"github.com/gin-gonic/gin"
)

// ErrorResponse standardizes error payloads.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

func respondError(c *gin.Context, status int, code, message string, details any) {
	if code == "" {
		code = http.StatusText(status)
	}
	resp := ErrorResponse{
		Error:   message,
		Code:    code,
		Details: details,
	}
	reqID := middleware.GetRequestID(c)
	if reqID != "" {
		c.JSON(status, gin.H{
			"error":      resp.Error,
			"code":       resp.Code,
			"details":    resp.Details,
			"request_id": reqID,
			"message":    message,
		})
		return
	}
	c.JSON(status, resp)
}

// RespondDomainError maps domain errors to HTTP responses.
func RespondDomainError(c *gin.Context, err error) {
	switch {
	case domain.IsValidation(err):
		respondError(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case domain.IsNotFound(err):
		respondError(c, http.StatusNotFound, "not_found", err.Error(), nil)
	case domain.IsCapacity(err):
		respondError(c, http.StatusConflict, "capacity_exceeded", err.Error(), nil)
	case domain.IsStateError(err):
		respondError(c, http.StatusConflict, "invalid_state", err.Error(), nil)
	case domain.IsAlreadyProcessed(err):
		respondError(c, http.StatusConflict, "already_processed", err.Error(), nil)
	case domain.IsConflict(err):
		respondError(c, http.StatusConflict, "conflict", err.Error(), nil)
	case domain.IsPolicyConflict(err):
		respondError(c, http.StatusUnprocessableEntity, "policy_conflict", err.Error(), nil)
	case domain.IsInsufficientHeld(err), domain.IsPartialAdjustment(err):
		respondError(c, http.StatusUnprocessableEntity, "ledger_shortfall", err.Error(), nil)
	case domain.IsAmbiguousPolicy(err):
		// Corrupted policy configuration needs an operator, not a retry.
		utils.LogEvent(middleware.GetRequestID(c), "policy", "ambiguous_config", err.Error())
		respondError(c, http.StatusInternalServerError, "policy_config_error", "refund policy configuration needs attention", nil)
	default:
		respondError(c, http.StatusInternalServerError, "internal_error", "something went wrong", nil)
	}
}

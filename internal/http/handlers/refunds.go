package handlers

import (
	"net/http"

	"tourops/internal/domain/models"

	"github.com/gin-gonic/gin"
)

// GET /api/refunds?status=pending (admin)
func ListRefundRequests(c *gin.Context) {
	status := models.RefundRequestStatus(c.Query("status"))
	if status == "" {
		status = models.RefundPending
	}
	refunds, err := refundRepo().ListByStatus(c.Request.Context(), status)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"refund_requests": refunds})
}

type approveRefundRequest struct {
	ApprovedAmount int64 `json:"approved_amount"`
}

// PUT /api/refunds/:id/approve (admin)
func ApproveRefundRequest(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req approveRefundRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	if req.ApprovedAmount < 0 {
		RespondError(c, http.StatusBadRequest, "approved_amount must not be negative", nil)
		return
	}
	if err := refundRepo().UpdateStatus(c.Request.Context(), id, req.ApprovedAmount, models.RefundApproved); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "refund request approved"})
}

// PUT /api/refunds/:id/reject (admin)
func RejectRefundRequest(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := refundRepo().UpdateStatus(c.Request.Context(), id, 0, models.RefundRejected); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "refund request rejected"})
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GET /api/bookings/:id/voucher returns the booking voucher PDF (inline).
func GetBookingVoucherPDF(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	pdfBytes, filename, err := docsSvc(c).GenerateVoucher(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Header("Content-Type", "application/pdf")
	c.Header("Content-Disposition", `inline; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", pdfBytes)
}

// GET /api/bookings/:id/refund-statement returns the refund statement PDF (inline).
func GetRefundStatementPDF(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	pdfBytes, filename, err := docsSvc(c).GenerateRefundStatement(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Header("Content-Type", "application/pdf")
	c.Header("Content-Disposition", `inline; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", pdfBytes)
}

package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// POST /api/admin/sweeps/settlement (admin)
//
// Runs the settlement sweep on demand. The scheduled ticker covers normal
// operation; this endpoint exists to re-drive after an incident or to verify
// a fix without waiting for the next tick.
func RunSettlementSweep(c *gin.Context) {
	summary, err := sweepSvc(c).RunSettlementSweep(c.Request.Context(), time.Now())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"summary": summary})
}

// POST /api/admin/sweeps/auto-cancel (admin)
func RunAutoCancelScan(c *gin.Context) {
	summaries, err := sweepSvc(c).RunAutoCancelScan(c.Request.Context(), time.Now())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"summaries": summaries})
}

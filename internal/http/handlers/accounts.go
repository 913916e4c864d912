package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GET /api/accounts/:id
//
// Operator wallet lookup: held balance still in escrow plus the matured
// withdrawable balance.
func GetOperatorAccount(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	acct, err := accountRepo().GetByID(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"account": acct})
}

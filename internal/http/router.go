package api

import (
	"log"
	stdhttp "net/http"

	"tourops/internal/config"
	h "tourops/internal/http/handlers"
	"tourops/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

func NewRouter(env config.Env) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(), gin.Recovery(), middleware.CORS())

	if err := r.SetTrustedProxies(nil); err != nil {
		log.Printf("warning: failed to set trusted proxies: %v", err)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(stdhttp.StatusNotFound, gin.H{
			"error":  "route not found",
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
	})

	authed := middleware.RequireAuth(env.JWTSecret)
	adminOnly := middleware.RequireRoles("admin", "operator")

	api := r.Group("/api")
	{
		api.GET("/health", h.Health)
		api.GET("/db-check", h.DBCheck)
		api.GET("/routes", h.Routes)

		// Auth
		auth := api.Group("/auth")
		auth.POST("/login", h.Login)
		auth.POST("/register", h.Register)

		// Bookings
		bookings := api.Group("/bookings")
		bookings.POST("", h.CreateBooking)
		bookings.GET("/:id", h.GetBooking)
		bookings.POST("/:id/cancel", h.CancelBooking)
		bookings.GET("/:id/refund", h.GetBookingRefund)
		bookings.GET("/:id/ops", authed, adminOnly, h.GetBookingOps)
		bookings.GET("/:id/voucher", h.GetBookingVoucherPDF)
		bookings.GET("/:id/refund-statement", h.GetRefundStatementPDF)

		// Departures
		departures := api.Group("/departures")
		departures.GET("", h.ListDepartures)
		departures.GET("/:id", h.GetDeparture)
		departures.GET("/:id/bookings", h.ListDepartureBookings)
		departures.GET("/:id/refund-quote", h.QuoteRefund)
		departures.POST("", authed, adminOnly, h.CreateDeparture)
		departures.POST("/:id/cancel", authed, adminOnly, h.CancelDeparture)

		// Refund policies
		policies := api.Group("/policies")
		policies.GET("", h.ListPolicies)
		policies.POST("", authed, adminOnly, h.CreatePolicy)
		policies.POST("/:id/expire", authed, adminOnly, h.ExpirePolicy)

		// Operator wallets
		accounts := api.Group("/accounts")
		accounts.GET("/:id", authed, h.GetOperatorAccount)

		// Refund request review
		refunds := api.Group("/refunds", authed, adminOnly)
		refunds.GET("", h.ListRefundRequests)
		refunds.PUT("/:id/approve", h.ApproveRefundRequest)
		refunds.PUT("/:id/reject", h.RejectRefundRequest)

		// Manual sweep re-drive
		sweeps := api.Group("/admin/sweeps", authed, adminOnly)
		sweeps.POST("/settlement", h.RunSettlementSweep)
		sweeps.POST("/auto-cancel", h.RunAutoCancelScan)
	}

	return r
}

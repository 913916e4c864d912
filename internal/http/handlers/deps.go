package handlers

import (
	"tourops/internal/config"
	"tourops/internal/db"
	"tourops/internal/http/middleware"
	"tourops/internal/notify"
	"tourops/internal/repositories"
	"tourops/internal/services"

	"github.com/gin-gonic/gin"
)

var (
	env      config.Env
	notifier notify.Notifier
)

// Setup hands the handler package its runtime configuration and the shared
// notifier. Called once from main before the router is mounted.
func Setup(e config.Env, n notify.Notifier) {
	env = e
	notifier = n
}

func departureRepo() repositories.DepartureRepository {
	return repositories.DepartureRepository{DB: config.DB}
}

func bookingRepo() repositories.BookingRepository {
	return repositories.BookingRepository{DB: config.DB}
}

func accountRepo() repositories.AccountRepository {
	return repositories.AccountRepository{DB: config.DB}
}

func policyRepo() repositories.PolicyRepository {
	return repositories.PolicyRepository{DB: config.DB}
}

func refundRepo() repositories.RefundRepository {
	return repositories.RefundRepository{DB: config.DB}
}

func opClaimRepo() repositories.OpClaimRepository {
	return repositories.OpClaimRepository{DB: config.DB}
}

func capacitySvc() services.CapacityService {
	return services.CapacityService{Departures: departureRepo(), MaxAttempts: db.DefaultMaxAttempts}
}

func revenueSvc() services.RevenueService {
	return services.RevenueService{Accounts: accountRepo(), MaxAttempts: db.DefaultMaxAttempts}
}

func policySvc() services.PolicyService {
	return services.PolicyService{Policies: policyRepo()}
}

func bookingSvc(c *gin.Context) services.BookingService {
	return services.BookingService{
		Bookings:   bookingRepo(),
		Departures: departureRepo(),
		Capacity:   capacitySvc(),
		Revenue:    revenueSvc(),
		Notifier:   notifier,
		RequestID:  middleware.GetRequestID(c),
	}
}

func cancelSvc(c *gin.Context) services.CancellationService {
	return services.CancellationService{
		Bookings:   bookingRepo(),
		Departures: departureRepo(),
		Capacity:   capacitySvc(),
		Policy:     policySvc(),
		Revenue:    revenueSvc(),
		Refunds:    refundRepo(),
		Notifier:   notifier,
		RequestID:  middleware.GetRequestID(c),
	}
}

func sweepSvc(c *gin.Context) services.SweepService {
	return services.SweepService{
		Bookings:       bookingRepo(),
		Departures:     departureRepo(),
		Revenue:        revenueSvc(),
		Cancel:         cancelSvc(c),
		Notifier:       notifier,
		RequestID:      middleware.GetRequestID(c),
		MaturityWindow: env.MaturityWindow,
		MinRatio:       env.AutoCancelMinRatio,
		Cutoff:         env.AutoCancelCutoff,
	}
}

func docsSvc(c *gin.Context) services.DocsService {
	return services.DocsService{
		Bookings:   bookingRepo(),
		Departures: departureRepo(),
		Refunds:    refundRepo(),
		RequestID:  middleware.GetRequestID(c),
	}
}

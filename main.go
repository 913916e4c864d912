package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tourops/internal/config"
	"tourops/internal/db"
	router "tourops/internal/http"
	"tourops/internal/http/handlers"
	"tourops/internal/notify"
	"tourops/internal/repositories"
	"tourops/internal/services"

	"github.com/gin-gonic/gin"
)

func main() {
	env := config.LoadEnv()
	if env.GinMode != "" {
		gin.SetMode(env.GinMode)
	}

	config.ConnectDB(env.DBDSN)
	defer config.CloseDB()

	if err := config.EnsureSchema(config.DB); err != nil {
		log.Fatalf("schema bootstrap failed: %v", err)
	}

	notifier := notify.NewLogNotifier(0)
	handlers.Setup(env, notifier)

	r := router.NewRouter(env)
	handlers.SetRouter(r)

	sweepCtx, stopSweeps := context.WithCancel(context.Background())
	go runSweeps(sweepCtx, env, notifier)

	srv := &http.Server{
		Addr:              env.AppAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       20 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("Server listening on http://localhost%s", env.AppAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	stopSweeps()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}

	log.Println("Server stopped cleanly.")
}

// runSweeps drives the settlement sweep and the auto-cancel scan on one
// shared ticker. Both runs are idempotent, so a tick that overlaps a manual
// re-drive settles each booking once regardless.
func runSweeps(ctx context.Context, env config.Env, notifier notify.Notifier) {
	ticker := time.NewTicker(env.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			svc := services.SweepService{
				Bookings:       repositories.BookingRepository{DB: config.DB},
				Departures:     repositories.DepartureRepository{DB: config.DB},
				Revenue:        services.RevenueService{Accounts: repositories.AccountRepository{DB: config.DB}, MaxAttempts: db.DefaultMaxAttempts},
				Cancel:         sweepCancelService(notifier),
				Notifier:       notifier,
				RequestID:      "sweep-" + now.UTC().Format("20060102T150405Z"),
				MaturityWindow: env.MaturityWindow,
				MinRatio:       env.AutoCancelMinRatio,
				Cutoff:         env.AutoCancelCutoff,
			}
			if _, err := svc.RunSettlementSweep(ctx, now); err != nil {
				log.Printf("settlement sweep failed: %v", err)
			}
			if _, err := svc.RunAutoCancelScan(ctx, now); err != nil {
				log.Printf("auto-cancel scan failed: %v", err)
			}
		}
	}
}

func sweepCancelService(notifier notify.Notifier) services.CancellationService {
	return services.CancellationService{
		Bookings:   repositories.BookingRepository{DB: config.DB},
		Departures: repositories.DepartureRepository{DB: config.DB},
		Capacity:   services.CapacityService{Departures: repositories.DepartureRepository{DB: config.DB}, MaxAttempts: db.DefaultMaxAttempts},
		Policy:     services.PolicyService{Policies: repositories.PolicyRepository{DB: config.DB}},
		Revenue:    services.RevenueService{Accounts: repositories.AccountRepository{DB: config.DB}, MaxAttempts: db.DefaultMaxAttempts},
		Refunds:    repositories.RefundRepository{DB: config.DB},
		Notifier:   notifier,
	}
}

package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Env struct {
	AppAddr   string
	GinMode   string
	DBDSN     string
	JWTSecret string

	// MaturityWindow is how long after tour completion held revenue stays
	// pending before the settlement sweep promotes it to withdrawable.
	MaturityWindow time.Duration

	// SweepInterval drives the in-process settlement and auto-cancel tickers.
	SweepInterval time.Duration

	// AutoCancelMinRatio is the minimum booked/max ratio a departure must
	// reach before the cutoff; below it the departure is auto-cancelled.
	AutoCancelMinRatio float64

	// AutoCancelCutoff is the lead time before departure at which the ratio
	// check fires.
	AutoCancelCutoff time.Duration
}

func LoadEnv() Env {
	appAddr := strings.TrimSpace(os.Getenv("APP_ADDR"))
	if appAddr == "" {
		appAddr = ":8080"
	}

	ginMode := strings.TrimSpace(os.Getenv("GIN_MODE"))

	dsn := strings.TrimSpace(os.Getenv("DB_DSN"))
	if dsn == "" {
		dsn = "root:@tcp(127.0.0.1:3306)/tourops?parseTime=true&loc=Local&charset=utf8mb4&timeout=5s&readTimeout=30s&writeTimeout=30s"
	}

	secret := strings.TrimSpace(os.Getenv("JWT_SECRET"))
	if secret == "" {
		secret = "super-secret-key-change-me"
	}

	return Env{
		AppAddr:            appAddr,
		GinMode:            ginMode,
		DBDSN:              dsn,
		JWTSecret:          secret,
		MaturityWindow:     envHours("MATURITY_WINDOW_HOURS", 72),
		SweepInterval:      envMinutes("SWEEP_INTERVAL_MINUTES", 60),
		AutoCancelMinRatio: envFloat("AUTOCANCEL_MIN_RATIO", 0.4),
		AutoCancelCutoff:   envHours("AUTOCANCEL_CUTOFF_HOURS", 48),
	}
}

func envHours(key string, def int) time.Duration {
	return time.Duration(envInt(key, def)) * time.Hour
}

func envMinutes(key string, def int) time.Duration {
	return time.Duration(envInt(key, def)) * time.Minute
}

func envInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func envFloat(key string, def float64) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f <= 0 || f > 1 {
		return def
	}
	return f
}

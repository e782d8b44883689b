package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

const (
	defaultSlotDuration = "30m"
	defaultMinLeadTime  = "24h"
	defaultExpiryGrace  = "1h"
	defaultJWTAccessTTL = "24h"
	defaultJWTSecret    = "change-me-jwt-secret"
)

// BookingRuntimeConfig holds the tunables of the booking engine. Slot duration
// and minimum lead time vary per deployment, so both come from the environment.
type BookingRuntimeConfig struct {
	AppEnv       string
	JWTSecret    string
	JWTAccessTTL time.Duration

	// SlotDuration is the fixed length every window is partitioned into.
	SlotDuration time.Duration
	// MinLeadTime is the minimum gap between now and a bookable slot's start.
	MinLeadTime time.Duration
	// ExpiryGrace is how long after a slot's start an unprogressed booking
	// survives before the sweep expires it.
	ExpiryGrace time.Duration
}

func LoadBookingRuntimeConfig() (*BookingRuntimeConfig, error) {
	cfg := &BookingRuntimeConfig{}

	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = "dev"
	}
	cfg.AppEnv = strings.ToLower(appEnv)

	cfg.JWTSecret = strings.TrimSpace(getEnv("JWT_SECRET", defaultJWTSecret))

	var err error
	cfg.JWTAccessTTL, err = parseDurationEnv("JWT_ACCESS_TTL", defaultJWTAccessTTL)
	if err != nil {
		return nil, err
	}
	cfg.SlotDuration, err = parseDurationEnv("SLOT_DURATION", defaultSlotDuration)
	if err != nil {
		return nil, err
	}
	cfg.MinLeadTime, err = parseDurationEnv("MIN_LEAD_TIME", defaultMinLeadTime)
	if err != nil {
		return nil, err
	}
	cfg.ExpiryGrace, err = parseDurationEnv("EXPIRY_GRACE", defaultExpiryGrace)
	if err != nil {
		return nil, err
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func validateConfig(cfg *BookingRuntimeConfig) error {
	if cfg.SlotDuration <= 0 {
		return fmt.Errorf("SLOT_DURATION must be > 0")
	}
	if cfg.MinLeadTime < 0 {
		return fmt.Errorf("MIN_LEAD_TIME must be >= 0")
	}
	if cfg.ExpiryGrace < 0 {
		return fmt.Errorf("EXPIRY_GRACE must be >= 0")
	}
	if cfg.JWTAccessTTL <= 0 {
		return fmt.Errorf("JWT_ACCESS_TTL must be > 0")
	}
	if isProdLike(cfg.AppEnv) && isEmptyOrDefault(cfg.JWTSecret, defaultJWTSecret) {
		return fmt.Errorf("in prod/release JWT_SECRET must be set and not default")
	}
	return nil
}

func isProdLike(env string) bool {
	env = strings.ToLower(strings.TrimSpace(env))
	return env == "prod" || env == "production" || env == "release"
}

func isEmptyOrDefault(v, def string) bool {
	trimmed := strings.TrimSpace(v)
	return trimmed == "" || trimmed == def
}

func parseDurationEnv(name, fallback string) (time.Duration, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return d, nil
}

func getEnv(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}

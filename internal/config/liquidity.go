package config

import (
	"errors"
	"os"
	"time"

	"github.com/zcombinatorio/swap-engine/internal/common"
)

type LiquidityConfig struct {
	// RequestTTL bounds how long a built transaction stays confirmable.
	RequestTTL time.Duration

	// RateLimitBudget requests per RateLimitWindow per client IP on the
	// liquidity mutation endpoints.
	RateLimitBudget int
	RateLimitWindow time.Duration

	// RedisURL switches the pending-request store to redis when set;
	// empty keeps the in-memory store.
	RedisURL string

	ConfirmAttempts int
	ConfirmInterval time.Duration
}

func (lc *LiquidityConfig) Key() string {
	return LIQUIDITY_CONFIG_KEY
}

func (lc *LiquidityConfig) Load() error {
	lc.RequestTTL = common.GetEnvOrDefaultDuration("LIQUIDITY_REQUEST_TTL", 10*time.Minute)
	lc.RateLimitBudget = common.GetEnvOrDefaultInt("LIQUIDITY_RATE_LIMIT", 30)
	lc.RateLimitWindow = common.GetEnvOrDefaultDuration("LIQUIDITY_RATE_WINDOW", 5*time.Minute)
	lc.RedisURL = os.Getenv("REDIS_URL")
	lc.ConfirmAttempts = common.GetEnvOrDefaultInt("CONFIRM_ATTEMPTS", 30)
	lc.ConfirmInterval = common.GetEnvOrDefaultDuration("CONFIRM_INTERVAL", 2*time.Second)
	return lc.Validate()
}

func (lc *LiquidityConfig) Validate() error {
	if lc.RequestTTL <= 0 || lc.RateLimitBudget <= 0 || lc.RateLimitWindow <= 0 {
		return errors.New("invalid liquidity config")
	}
	if lc.ConfirmAttempts <= 0 || lc.ConfirmInterval <= 0 {
		return errors.New("invalid confirm polling config")
	}
	return nil
}

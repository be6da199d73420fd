package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultHTTPAddr            = ":8080"
	defaultDatabaseURL         = "suryawash.db"
	defaultJWTSecret           = "change-me-jwt-secret"
	defaultChallengeSecret     = "change-me-challenge-secret"
	defaultSessionTTL          = "1h"
	defaultChallengeTTL        = "2m"
	defaultOTPTTL              = "5m"
	defaultOTPResendCooldown   = "30s"
	defaultOTPWindow           = "15m"
	defaultOTPMaxPerWindow     = "5"
	defaultCatalogFetchTimeout = "10s"
	defaultPaymentStepDelay    = "2s"
	defaultSMSBreakerFailures  = "3"
	defaultSMSBreakerTimeout   = "30s"
	defaultCORSAllowedOrigins  = "http://localhost:3000,http://localhost:5500,http://127.0.0.1:5500"
)

type Config struct {
	AppEnv      string
	HTTPAddr    string
	DatabaseURL string

	JWTSecret       string
	SessionTTL      time.Duration
	ChallengeSecret string
	ChallengeTTL    time.Duration

	OTPTTL            time.Duration
	OTPResendCooldown time.Duration
	OTPWindow         time.Duration
	OTPMaxPerWindow   int

	RedisAddrs    []string
	RedisPassword string
	RedisCluster  bool

	CatalogFetchTimeout time.Duration
	PaymentStepDelay    time.Duration

	SMSBreakerFailures int
	SMSBreakerTimeout  time.Duration

	CORSAllowedOrigins []string
}

func Load() (*Config, error) {
	cfg := &Config{}
	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = strings.TrimSpace(os.Getenv("ENV"))
	}
	if appEnv == "" {
		appEnv = "dev"
	}
	cfg.AppEnv = strings.ToLower(appEnv)

	cfg.HTTPAddr = strings.TrimSpace(getEnv("HTTP_ADDR", defaultHTTPAddr))
	cfg.DatabaseURL = strings.TrimSpace(getEnv("DATABASE_URL", defaultDatabaseURL))
	cfg.JWTSecret = strings.TrimSpace(getEnv("JWT_SECRET", defaultJWTSecret))
	cfg.ChallengeSecret = strings.TrimSpace(getEnv("CHALLENGE_SECRET", defaultChallengeSecret))
	cfg.RedisAddrs = splitList(os.Getenv("REDIS_ADDR"))
	cfg.RedisPassword = os.Getenv("REDIS_PASSWORD")
	cfg.RedisCluster = parseBoolEnv("REDIS_CLUSTER", "false")
	cfg.CORSAllowedOrigins = splitList(getEnv("CORS_ALLOWED_ORIGINS", defaultCORSAllowedOrigins))

	var err error
	durations := []struct {
		name     string
		fallback string
		dst      *time.Duration
	}{
		{"SESSION_TTL", defaultSessionTTL, &cfg.SessionTTL},
		{"CHALLENGE_TTL", defaultChallengeTTL, &cfg.ChallengeTTL},
		{"OTP_TTL", defaultOTPTTL, &cfg.OTPTTL},
		{"OTP_RESEND_COOLDOWN", defaultOTPResendCooldown, &cfg.OTPResendCooldown},
		{"OTP_WINDOW", defaultOTPWindow, &cfg.OTPWindow},
		{"CATALOG_FETCH_TIMEOUT", defaultCatalogFetchTimeout, &cfg.CatalogFetchTimeout},
		{"PAYMENT_STEP_DELAY", defaultPaymentStepDelay, &cfg.PaymentStepDelay},
		{"SMS_BREAKER_TIMEOUT", defaultSMSBreakerTimeout, &cfg.SMSBreakerTimeout},
	}
	for _, d := range durations {
		if *d.dst, err = parseDurationEnv(d.name, d.fallback); err != nil {
			return nil, err
		}
	}

	if cfg.OTPMaxPerWindow, err = parseIntEnv("OTP_MAX_PER_WINDOW", defaultOTPMaxPerWindow); err != nil {
		return nil, err
	}
	if cfg.SMSBreakerFailures, err = parseIntEnv("SMS_BREAKER_FAILURES", defaultSMSBreakerFailures); err != nil {
		return nil, err
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	log.Printf("config: env=%s addr=%s redis=%t", cfg.AppEnv, cfg.HTTPAddr, cfg.UseRedis())
	return cfg, nil
}

// UseRedis reports whether the OTP and challenge cache should live in redis.
func (c *Config) UseRedis() bool {
	return len(c.RedisAddrs) > 0
}

func (c *Config) IsProduction() bool {
	return isProdLike(c.AppEnv)
}

func validateConfig(cfg *Config) error {
	if cfg.HTTPAddr == "" {
		return fmt.Errorf("HTTP_ADDR must not be empty")
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL must not be empty")
	}
	if cfg.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be > 0")
	}
	if cfg.ChallengeTTL <= 0 {
		return fmt.Errorf("CHALLENGE_TTL must be > 0")
	}
	if cfg.OTPTTL <= 0 {
		return fmt.Errorf("OTP_TTL must be > 0")
	}
	if cfg.OTPResendCooldown < 0 {
		return fmt.Errorf("OTP_RESEND_COOLDOWN must be >= 0")
	}
	if cfg.OTPWindow <= 0 {
		return fmt.Errorf("OTP_WINDOW must be > 0")
	}
	if cfg.OTPMaxPerWindow <= 0 {
		return fmt.Errorf("OTP_MAX_PER_WINDOW must be > 0")
	}
	if cfg.CatalogFetchTimeout <= 0 {
		return fmt.Errorf("CATALOG_FETCH_TIMEOUT must be > 0")
	}
	if cfg.PaymentStepDelay < 0 {
		return fmt.Errorf("PAYMENT_STEP_DELAY must be >= 0")
	}
	if cfg.SMSBreakerFailures <= 0 {
		return fmt.Errorf("SMS_BREAKER_FAILURES must be > 0")
	}
	if cfg.SMSBreakerTimeout <= 0 {
		return fmt.Errorf("SMS_BREAKER_TIMEOUT must be > 0")
	}

	if isProdLike(cfg.AppEnv) {
		if isEmptyOrDefault(cfg.JWTSecret, defaultJWTSecret) {
			return fmt.Errorf("in prod/release JWT_SECRET must be set and not default")
		}
		if isEmptyOrDefault(cfg.ChallengeSecret, defaultChallengeSecret) {
			return fmt.Errorf("in prod/release CHALLENGE_SECRET must be set and not default")
		}
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

func parseIntEnv(name, fallback string) (int, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return n, nil
}

func parseBoolEnv(name, fallback string) bool {
	value := strings.ToLower(strings.TrimSpace(getEnv(name, fallback)))
	return value == "1" || value == "true" || value == "yes" || value == "on"
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnv(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}

package app

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/aussiebroadwan/tollgate/internal/auth/limiter"
	"github.com/aussiebroadwan/tollgate/internal/auth/session"
	"github.com/aussiebroadwan/tollgate/pkg/jwtx"
	"github.com/aussiebroadwan/tollgate/pkg/otpx"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	Issuer    string        // Issuer claim and TOTP issuer label (default: tollgate)
	TokenMode string        // signed or opaque (default: signed)
	TokenTTL  time.Duration // Lifetime of signed tokens (default: 15m)
	JWTSecret string        // HMAC secret for signed tokens, random per process when empty

	Require2FA   bool // Provision TOTP at registration and demand it at login (default: true)
	Hide2FAState bool // Report a missing TOTP secret as AUTH_FAILED (default: false)
	OTPSkew      uint // Accepted TOTP steps either side of now (default: 2)

	DBDriver     string // sqlite or postgres (default: sqlite)
	DatabaseFile string // SQLite database file (default: ./tollgate.db)
	DatabaseURL  string // Postgres DSN, built from DB_* when empty
	RedisURL     string // Optional: shared limiter counters and opaque sessions

	RegisterRule limiter.Rule // Attempts per client on /register (default: 3 per hour)
	LoginRule    limiter.Rule // Attempts per client on /login (default: 5 per 15m)
	TrustProxy   bool         // Key clients on X-Forwarded-For / X-Real-IP (default: false)

	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	LogFile              string        // Optional: daily rotated log file
	Port                 int           // HTTP server port (default: 3000)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Housekeeping interval (default: 1h)
}

// LoadConfig reads a .env file when one exists, then the environment.
// Variables already set in the environment win over the file.
func LoadConfig() Config {
	_ = godotenv.Load()

	defaults := limiter.DefaultRules()

	cfg := Config{
		Issuer:    getEnvOrDefault("AUTH_ISSUER", "tollgate"),
		TokenMode: getEnvOrDefault("AUTH_TOKEN_MODE", session.ModeSigned),
		TokenTTL:  getEnvDurationOrDefault("AUTH_TOKEN_TTL", jwtx.DefaultAccessTokenTTL),
		JWTSecret: os.Getenv("JWT_SECRET"),

		Require2FA:   getEnvBoolOrDefault("AUTH_REQUIRE_2FA", true),
		Hide2FAState: getEnvBoolOrDefault("AUTH_HIDE_2FA_STATE", false),
		OTPSkew:      uint(max(getEnvIntOrDefault("AUTH_OTP_SKEW", otpx.DefaultSkew), 0)),

		DBDriver:     getEnvOrDefault("DB_DRIVER", DriverSQLite),
		DatabaseFile: getEnvOrDefault("AUTH_DATABASE_FILE", "tollgate.db"),
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		RedisURL:     os.Getenv("REDIS_URL"),

		RegisterRule: limiter.Rule{
			Max:    getEnvIntOrDefault("RATELIMIT_REGISTER_MAX", defaults[limiter.ClassRegister].Max),
			Window: getEnvDurationOrDefault("RATELIMIT_REGISTER_WINDOW", defaults[limiter.ClassRegister].Window),
		},
		LoginRule: limiter.Rule{
			Max:    getEnvIntOrDefault("RATELIMIT_LOGIN_MAX", defaults[limiter.ClassLogin].Max),
			Window: getEnvDurationOrDefault("RATELIMIT_LOGIN_WINDOW", defaults[limiter.ClassLogin].Window),
		},
		TrustProxy: getEnvBoolOrDefault("TRUST_PROXY", false),

		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		LogFile:              os.Getenv("LOG_FILE"),
		Port:                 getEnvIntOrDefault("PORT", 3000),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
	}

	if cfg.DBDriver == DriverPostgres && cfg.DatabaseURL == "" {
		cfg.DatabaseURL = postgresURLFromEnv()
	}

	return cfg
}

// Validate reports the first setting the application cannot start with.
func (c Config) Validate() error {
	mode, err := session.ParseMode(c.TokenMode)
	if err != nil {
		return err
	}
	if mode == session.ModeSigned {
		if c.TokenTTL <= 0 {
			return fmt.Errorf("AUTH_TOKEN_TTL must be positive, got %s", c.TokenTTL)
		}
		if c.JWTSecret != "" && len(c.JWTSecret) < jwtx.MinSecretBytes {
			return fmt.Errorf("JWT_SECRET must be at least %d bytes", jwtx.MinSecretBytes)
		}
	}

	switch c.DBDriver {
	case DriverSQLite:
		if c.DatabaseFile == "" {
			return errors.New("AUTH_DATABASE_FILE is required for the sqlite driver")
		}
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL or DB_HOST is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unknown DB_DRIVER %q", c.DBDriver)
	}

	if err := c.Rules().Validate(); err != nil {
		return err
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("PORT out of range: %d", c.Port)
	}
	return nil
}

// Rules returns the attempt limiter rules.
func (c Config) Rules() limiter.Rules {
	return limiter.Rules{
		limiter.ClassRegister: c.RegisterRule,
		limiter.ClassLogin:    c.LoginRule,
	}
}

// postgresURLFromEnv builds a DSN from the discrete DB_* variables. An empty
// DB_HOST yields an empty string.
func postgresURLFromEnv() string {
	host := os.Getenv("DB_HOST")
	if host == "" {
		return ""
	}

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(getEnvOrDefault("DB_USER", "postgres"), os.Getenv("DB_PASSWORD")),
		Host:     net.JoinHostPort(host, getEnvOrDefault("DB_PORT", "5432")),
		Path:     "/" + getEnvOrDefault("DB_NAME", "tollgate"),
		RawQuery: "sslmode=" + getEnvOrDefault("DB_SSLMODE", "disable"),
	}
	return u.String()
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}

	if b, err := strconv.ParseBool(value); err == nil {
		return b
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Bare integers are minutes
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}

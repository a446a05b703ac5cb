package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultAppName         = "Lendly"
	defaultAppEnv          = "development"
	defaultPort            = "5000"
	defaultLogLevel        = "info"
	defaultMongoDatabase   = "lendly"
	defaultTokenTTL        = 7 * 24 * time.Hour
	defaultOTPTTL          = 10 * time.Minute
	defaultTestOTP         = "123456"
	defaultAdminEmail      = "admin@loanapp.com"
	defaultAdminPhone      = "0000000000"
	defaultRateLimitWindow = 15 * time.Minute
	defaultRateLimitMax    = 100
	defaultShutdownDelay   = 10 * time.Second
)

// OTP generation modes. In test mode the generator hands out the configured
// fixed code and responses echo it back for the frontend to display.
const (
	OTPModeTest = "test"
	OTPModeLive = "live"
)

// Config captures application runtime configuration loaded from environment variables.
type Config struct {
	AppName  string
	AppEnv   string
	Port     string
	LogLevel string

	MongoURL      string
	MongoDatabase string
	DatabaseURL   string
	RedisURL      string

	JWTSecret string
	TokenTTL  time.Duration

	OTPMode string
	OTPTTL  time.Duration
	TestOTP string

	AdminEmail string
	AdminPhone string

	CORSOrigin      string
	RateLimitWindow time.Duration
	RateLimitMax    int

	ShutdownPeriod time.Duration
}

// Load reads configuration values from the environment and populates a Config
// instance. A .env file in the working directory is honoured when present.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		AppName:         getEnv("APP_NAME", defaultAppName),
		AppEnv:          getEnv("APP_ENV", defaultAppEnv),
		Port:            getEnv("PORT", defaultPort),
		LogLevel:        strings.ToLower(getEnv("LOG_LEVEL", defaultLogLevel)),
		MongoURL:        os.Getenv("MONGO_URL"),
		MongoDatabase:   getEnv("MONGO_DB", defaultMongoDatabase),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		RedisURL:        os.Getenv("REDIS_URL"),
		JWTSecret:       os.Getenv("JWT_SECRET"),
		TokenTTL:        defaultTokenTTL,
		OTPMode:         strings.ToLower(getEnv("OTP_MODE", OTPModeTest)),
		OTPTTL:          defaultOTPTTL,
		TestOTP:         getEnv("TEST_OTP", defaultTestOTP),
		AdminEmail:      strings.ToLower(getEnv("ADMIN_EMAIL", defaultAdminEmail)),
		AdminPhone:      getEnv("ADMIN_PHONE", defaultAdminPhone),
		CORSOrigin:      getEnv("CORS_ORIGIN", "*"),
		RateLimitWindow: defaultRateLimitWindow,
		RateLimitMax:    defaultRateLimitMax,
		ShutdownPeriod:  defaultShutdownDelay,
	}

	var err error
	if cfg.TokenTTL, err = durationEnv("TOKEN_TTL", cfg.TokenTTL); err != nil {
		return Config{}, err
	}
	if cfg.OTPTTL, err = durationEnv("OTP_TTL", cfg.OTPTTL); err != nil {
		return Config{}, err
	}
	if v := os.Getenv("OTP_EXPIRY_MINUTES"); v != "" {
		minutes, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid OTP_EXPIRY_MINUTES: %w", err)
		}
		cfg.OTPTTL = time.Duration(minutes) * time.Minute
	}
	if cfg.RateLimitWindow, err = durationEnv("RATE_LIMIT_WINDOW", cfg.RateLimitWindow); err != nil {
		return Config{}, err
	}
	if v := os.Getenv("RATE_LIMIT_MAX"); v != "" {
		max, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid RATE_LIMIT_MAX: %w", err)
		}
		cfg.RateLimitMax = max
	}
	if cfg.ShutdownPeriod, err = durationEnv("SHUTDOWN_TIMEOUT", cfg.ShutdownPeriod); err != nil {
		return Config{}, err
	}

	switch cfg.OTPMode {
	case OTPModeTest, OTPModeLive:
	default:
		return Config{}, fmt.Errorf("invalid OTP_MODE %q: must be %q or %q", cfg.OTPMode, OTPModeTest, OTPModeLive)
	}

	if cfg.MongoURL == "" {
		return Config{}, fmt.Errorf("MONGO_URL must be set")
	}
	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("DATABASE_URL must be set")
	}
	if cfg.RedisURL == "" {
		return Config{}, fmt.Errorf("REDIS_URL must be set")
	}
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET must be set")
	}

	return cfg, nil
}

// Address returns the listen address in the format Fiber expects.
func (c Config) Address() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return fmt.Sprintf(":%s", c.Port)
}

// DevMode reports whether the app runs in a development-like environment.
func (c Config) DevMode() bool {
	switch strings.ToLower(c.AppEnv) {
	case "dev", "development", "local", "test":
		return true
	default:
		return false
	}
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

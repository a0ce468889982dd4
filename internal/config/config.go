package config

import (
	"os"
	"strconv"
)

// Config holds the core runtime configuration for the service.
// Values are primarily sourced from environment variables, with
// sensible defaults where appropriate.
type Config struct {
	ListenAddr  string
	DatabaseURL string

	AdminUser     string
	AdminPassword string

	// RateLimitWindow is the sliding-window horizon (seconds) over which
	// admitted readings are counted per device.
	RateLimitWindow int
	// RateLimitMax is the admission ceiling per device per window.
	RateLimitMax int

	// AnomalyWindow is the number of recent readings used as the
	// deviation baseline for each device.
	AnomalyWindow int
	// AnomalyTolerance is the maximum absolute temperature deviation
	// from the baseline mean before a reading is flagged.
	AnomalyTolerance float64

	// RetentionDays bounds how long readings and alerts are kept.
	// Zero disables retention cleanup entirely.
	RetentionDays int

	// Twilio credentials for SMS alert notification. SMS is skipped
	// when any of these are unset.
	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioFrom       string
	AdminPhone       string

	// BlockchainRPC and ContractAddress configure the optional on-chain
	// registration oracle. When BlockchainRPC is empty the oracle is
	// disabled and registration proceeds unconditionally.
	BlockchainRPC   string
	ContractAddress string
}

// Load reads configuration from environment variables and applies defaults.
func Load() *Config {
	cfg := &Config{
		ListenAddr:    getenv("APP_LISTEN_ADDR", ":8080"),
		DatabaseURL:   os.Getenv("APP_DATABASE_URL"),
		AdminUser:     getenv("APP_ADMIN_USER", "admin"),
		AdminPassword: getenv("APP_ADMIN_PASSWORD", "changeme"),

		RateLimitWindow:  60,
		RateLimitMax:     30,
		AnomalyWindow:    10,
		AnomalyTolerance: 8.0,

		TwilioAccountSID: os.Getenv("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:  os.Getenv("TWILIO_AUTH_TOKEN"),
		TwilioFrom:       os.Getenv("TWILIO_FROM"),
		AdminPhone:       os.Getenv("ADMIN_PHONE"),

		BlockchainRPC:   os.Getenv("BLOCKCHAIN_RPC"),
		ContractAddress: os.Getenv("CONTRACT_ADDRESS"),
	}

	if v := os.Getenv("RATE_LIMIT_WINDOW"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.RateLimitWindow = n
		}
	}
	if v := os.Getenv("RATE_LIMIT_MAX"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.RateLimitMax = n
		}
	}
	if v := os.Getenv("ANOMALY_WINDOW"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.AnomalyWindow = n
		}
	}
	if v := os.Getenv("ANOMALY_TOLERANCE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			cfg.AnomalyTolerance = f
		}
	}
	if v := os.Getenv("RETENTION_DAYS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.RetentionDays = n
		}
	}

	return cfg
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

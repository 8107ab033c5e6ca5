package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// Config captures runtime configuration sourced from environment variables.
type Config struct {
	Environment  string
	HTTPPort     string
	DatabasePath string
	JWTSecret    string

	// NotifyURL is an optional shoutrrr URL that receives critical security
	// events (bans, critical-severity detections). Empty disables pushes.
	NotifyURL string

	Defense DefenseConfig
}

// DefenseConfig holds the tunable thresholds of the detection and abuse
// guards. All values have working defaults so the range boots unconfigured.
type DefenseConfig struct {
	// Rate limit buckets: requests allowed per rolling window.
	LoginBucketMax      int64
	LoginBucketWindow   int // seconds
	APIBucketMax        int64
	APIBucketWindow     int
	GeneralBucketMax    int64
	GeneralBucketWindow int

	// Brute-force / credential stuffing.
	UsernameFailWindowSeconds    int
	UsernameFailThreshold        int
	IPWindowSeconds              int
	IPDistinctUsernamesThreshold int

	// Session fingerprint subnet tolerance: two IPv4 addresses within the
	// same /SubnetPrefixLen network are treated as the same client.
	SubnetPrefixLen int

	// Truncation limits applied before persisting attack logs.
	MaxPayloadLen int
	MaxFieldLen   int
}

// Load reads env vars and falls back to defaults so the server can boot with
// zero configuration.
func Load() (Config, error) {
	cfg := Config{
		Environment:  getEnv("BASTION_ENV", "development"),
		HTTPPort:     getEnv("BASTION_HTTP_PORT", "8080"),
		DatabasePath: getEnv("BASTION_DB_PATH", filepath.Join("data", "bastion.db")),
		JWTSecret:    getEnv("BASTION_JWT_SECRET", "bastion-dev-secret"),
		NotifyURL:    getEnv("BASTION_NOTIFY_URL", ""),
		Defense: DefenseConfig{
			LoginBucketMax:      int64(getEnvInt("BASTION_RL_LOGIN_MAX", 5)),
			LoginBucketWindow:   getEnvInt("BASTION_RL_LOGIN_WINDOW", 60),
			APIBucketMax:        int64(getEnvInt("BASTION_RL_API_MAX", 30)),
			APIBucketWindow:     getEnvInt("BASTION_RL_API_WINDOW", 60),
			GeneralBucketMax:    int64(getEnvInt("BASTION_RL_GENERAL_MAX", 100)),
			GeneralBucketWindow: getEnvInt("BASTION_RL_GENERAL_WINDOW", 60),

			UsernameFailWindowSeconds:    getEnvInt("BASTION_BF_USER_WINDOW", 120),
			UsernameFailThreshold:        getEnvInt("BASTION_BF_USER_THRESHOLD", 5),
			IPWindowSeconds:              getEnvInt("BASTION_BF_IP_WINDOW", 180),
			IPDistinctUsernamesThreshold: getEnvInt("BASTION_BF_IP_DISTINCT", 6),

			SubnetPrefixLen: getEnvInt("BASTION_FP_SUBNET_PREFIX", 24),

			MaxPayloadLen: getEnvInt("BASTION_LOG_PAYLOAD_MAX", 2000),
			MaxFieldLen:   getEnvInt("BASTION_LOG_FIELD_MAX", 500),
		},
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DatabasePath), 0o755); err != nil {
		return Config{}, fmt.Errorf("ensure data directory: %w", err)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}

	return fallback
}

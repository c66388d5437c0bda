package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds every knob of the client. Defaults are overridden first by
// an optional YAML file (CHARGEDOCS_CONFIG), then by environment
// variables, so a deployed environment always wins over a checked-in
// file.
type Config struct {
	GatewayPort string `yaml:"gateway_port"`
	LogLevel    string `yaml:"log_level"`

	BackendBaseURL string `yaml:"backend_base_url"`
	PushChannelURL string `yaml:"push_channel_url"`

	HTTPTimeoutSeconds int `yaml:"http_timeout_seconds"`

	// Pre-issued token and headless credentials for the export command.
	Token    string `yaml:"token"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`

	SearchThrottleRPS   float64 `yaml:"search_throttle_rps"`
	SearchThrottleBurst int     `yaml:"search_throttle_burst"`

	UploadJoinGraceSeconds int `yaml:"upload_join_grace_seconds"`

	ExportDir string `yaml:"export_dir"`

	BreakerEnabled            bool    `yaml:"breaker_enabled"`
	BreakerMinRequests        int     `yaml:"breaker_min_requests"`
	BreakerFailureRatio       float64 `yaml:"breaker_failure_ratio"`
	BreakerOpenTimeoutSeconds int     `yaml:"breaker_open_timeout_seconds"`
	BreakerHalfOpenMaxCalls   int     `yaml:"breaker_half_open_max_calls"`
}

func defaults() Config {
	return Config{
		GatewayPort: "8085",
		LogLevel:    "info",

		BackendBaseURL: "http://localhost:3000/api",
		PushChannelURL: "ws://localhost:3000/socket",

		HTTPTimeoutSeconds: 60,

		SearchThrottleRPS:   4,
		SearchThrottleBurst: 1,

		UploadJoinGraceSeconds: 5,

		ExportDir: ".",

		BreakerEnabled:            true,
		BreakerMinRequests:        10,
		BreakerFailureRatio:       0.5,
		BreakerOpenTimeoutSeconds: 30,
		BreakerHalfOpenMaxCalls:   2,
	}
}

// Load builds the configuration from defaults, the optional config file
// and the environment, in that order of precedence (lowest first).
func Load() (Config, error) {
	cfg := defaults()

	if path := os.Getenv("CHARGEDOCS_CONFIG"); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	cfg.GatewayPort = envStr("GATEWAY_PORT", cfg.GatewayPort)
	cfg.LogLevel = envStr("LOG_LEVEL", cfg.LogLevel)
	cfg.BackendBaseURL = envStr("BACKEND_BASE_URL", cfg.BackendBaseURL)
	cfg.PushChannelURL = envStr("PUSH_CHANNEL_URL", cfg.PushChannelURL)
	cfg.HTTPTimeoutSeconds = envInt("HTTP_TIMEOUT_SECONDS", cfg.HTTPTimeoutSeconds)
	cfg.Token = envStr("CHARGEDOCS_TOKEN", cfg.Token)
	cfg.Username = envStr("CHARGEDOCS_USERNAME", cfg.Username)
	cfg.Password = envStr("CHARGEDOCS_PASSWORD", cfg.Password)
	cfg.SearchThrottleRPS = envFloat("SEARCH_THROTTLE_RPS", cfg.SearchThrottleRPS)
	cfg.SearchThrottleBurst = envInt("SEARCH_THROTTLE_BURST", cfg.SearchThrottleBurst)
	cfg.UploadJoinGraceSeconds = envInt("UPLOAD_JOIN_GRACE_SECONDS", cfg.UploadJoinGraceSeconds)
	cfg.ExportDir = envStr("EXPORT_DIR", cfg.ExportDir)
	cfg.BreakerEnabled = envBool("BREAKER_ENABLED", cfg.BreakerEnabled)
	cfg.BreakerMinRequests = envInt("BREAKER_MIN_REQUESTS", cfg.BreakerMinRequests)
	cfg.BreakerFailureRatio = envFloat("BREAKER_FAILURE_RATIO", cfg.BreakerFailureRatio)
	cfg.BreakerOpenTimeoutSeconds = envInt("BREAKER_OPEN_TIMEOUT_SECONDS", cfg.BreakerOpenTimeoutSeconds)
	cfg.BreakerHalfOpenMaxCalls = envInt("BREAKER_HALF_OPEN_MAX_CALLS", cfg.BreakerHalfOpenMaxCalls)

	return cfg, nil
}

func envStr(key, current string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return current
}

func envInt(key string, current int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return current
}

func envFloat(key string, current float64) float64 {
	if v := os.Getenv(key); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err == nil {
			return f
		}
	}
	return current
}

func envBool(key string, current bool) bool {
	if v := os.Getenv(key); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err == nil {
			return parsed
		}
	}
	return current
}

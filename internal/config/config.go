package config

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Config holds all engine configuration
type Config struct {
	Database DatabaseConfig
	Redis    RedisConfig
	API      APIConfig
	Gateway  GatewayConfig
	Engine   EngineConfig
}

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// RedisConfig holds the dedup-cache configuration. An empty URL disables the
// cache; the ledger then goes straight to the database on every lookup.
type RedisConfig struct {
	URL string
}

// APIConfig holds the trigger/health HTTP server configuration
type APIConfig struct {
	Port int
}

// GatewayConfig holds chat-gateway connection configuration
type GatewayConfig struct {
	BaseURL     string
	APIKey      string
	CountryCode string
}

// EngineConfig holds sweep behavior configuration
type EngineConfig struct {
	Anchors          []int
	SendDelay        time.Duration
	PhasePause       time.Duration
	DedupPolicy      string
	OrganizationName string
	EmailSubject     string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	apiPort, err := strconv.Atoi(getEnv("API_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid API_PORT: %w", err)
	}

	anchors, err := parseAnchors(getEnv("SCHEDULER_ANCHORS", "8,11,14,17"))
	if err != nil {
		return nil, fmt.Errorf("invalid SCHEDULER_ANCHORS: %w", err)
	}

	sendDelaySec, err := strconv.Atoi(getEnv("SEND_DELAY_SECONDS", "3"))
	if err != nil {
		return nil, fmt.Errorf("invalid SEND_DELAY_SECONDS: %w", err)
	}

	phasePauseSec, err := strconv.Atoi(getEnv("PHASE_PAUSE_SECONDS", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid PHASE_PAUSE_SECONDS: %w", err)
	}

	dedupPolicy := getEnv("DEDUP_LOOKUP_POLICY", "fail_open")
	if dedupPolicy != "fail_open" && dedupPolicy != "fail_closed" {
		return nil, fmt.Errorf("invalid DEDUP_LOOKUP_POLICY: %s (must be 'fail_open' or 'fail_closed')", dedupPolicy)
	}

	return &Config{
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     dbPort,
			User:     getEnv("DB_USER", "reengage"),
			Password: getEnv("DB_PASSWORD", "reengage"),
			DBName:   getEnv("DB_NAME", "reengage"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			URL: getEnv("REDIS_URL", ""),
		},
		API: APIConfig{
			Port: apiPort,
		},
		Gateway: GatewayConfig{
			BaseURL:     getEnv("CHAT_GATEWAY_URL", ""),
			APIKey:      getEnv("CHAT_GATEWAY_API_KEY", ""),
			CountryCode: getEnv("PHONE_COUNTRY_CODE", "55"),
		},
		Engine: EngineConfig{
			Anchors:          anchors,
			SendDelay:        time.Duration(sendDelaySec) * time.Second,
			PhasePause:       time.Duration(phasePauseSec) * time.Second,
			DedupPolicy:      dedupPolicy,
			OrganizationName: getEnv("ORGANIZATION_NAME", ""),
			EmailSubject:     getEnv("EMAIL_SUBJECT", "Temos novidades para você"),
		},
	}, nil
}

// DSN returns the database connection string
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// parseAnchors parses a comma-separated list of daily anchor hours
func parseAnchors(raw string) ([]int, error) {
	parts := strings.Split(raw, ",")
	anchors := make([]int, 0, len(parts))
	for _, p := range parts {
		h, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("anchor %q is not a number", p)
		}
		if h < 0 || h > 23 {
			return nil, fmt.Errorf("anchor %d out of range [0,23]", h)
		}
		anchors = append(anchors, h)
	}
	if len(anchors) == 0 {
		return nil, fmt.Errorf("at least one anchor is required")
	}
	sort.Ints(anchors)
	return anchors, nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

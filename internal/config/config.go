package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Document-store backend
	Backend      string
	SQLiteDBPath string

	// Local identity provider
	UserEmail       string
	UserPassword    string
	UserDisplayName string

	// Engine
	SaveDebounce  time.Duration
	MatchStrategy string

	// AMQP (optional; empty URL disables publishing)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

func Load() *Config {
	return &Config{
		Backend:      getEnv("DATA_BACKEND", "memory"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/fincal.db"),

		UserEmail:       getEnv("FINCAL_EMAIL", ""),
		UserPassword:    getEnv("FINCAL_PASSWORD", ""),
		UserDisplayName: getEnv("FINCAL_DISPLAY_NAME", ""),

		SaveDebounce:  getEnvDuration("SAVE_DEBOUNCE", time.Second),
		MatchStrategy: getEnv("MATCH_STRATEGY", "content"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "fincal"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "snapshot_saved"),
	}
}

// Validate checks the configuration and returns every complaint at once.
func (c *Config) Validate() error {
	var errors []string

	validBackends := []string{"memory", "sqlite"}
	isValidBackend := false
	for _, backend := range validBackends {
		if c.Backend == backend {
			isValidBackend = true
			break
		}
	}
	if !isValidBackend {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.Backend, validBackends))
	}

	if c.Backend == "sqlite" {
		// The repository constructor creates the directory; Validate
		// only inspects.
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		}
		if c.UserEmail == "" {
			errors = append(errors, "FINCAL_EMAIL is required when using sqlite backend")
		}
		if c.UserPassword == "" {
			errors = append(errors, "FINCAL_PASSWORD is required when using sqlite backend")
		}
	}

	if c.SaveDebounce <= 0 {
		errors = append(errors, fmt.Sprintf("invalid save debounce %v: must be positive", c.SaveDebounce))
	} else if c.SaveDebounce > time.Minute {
		errors = append(errors, fmt.Sprintf("invalid save debounce %v: must be at most 1 minute", c.SaveDebounce))
	}

	switch c.MatchStrategy {
	case "content", "rule-key":
	default:
		errors = append(errors, fmt.Sprintf("invalid match strategy '%s': must be 'content' or 'rule-key'", c.MatchStrategy))
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvDuration accepts Go duration syntax or a bare millisecond count.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		if ms, err := strconv.Atoi(value); err == nil {
			return time.Duration(ms) * time.Millisecond
		}
	}
	return defaultValue
}

package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// HTTP Server
	Port string

	// Settings database
	SQLiteDBPath string

	// AMQP (optional event publishing)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Sheet ingestion
	SheetURL        string // optional initial source; persisted settings take precedence
	WebhookURL      string // optional initial write-back endpoint
	RefreshInterval time.Duration
	FetchTimeout    time.Duration
	WebhookTimeout  time.Duration
	DateOrder       string // "dmy" or "mdy" for ambiguous slash dates

	// Backend selection
	DataBackend string // "sheet" or "memory"
	SampleSize  int    // generated records for the memory backend
}

func Load() *Config {
	return &Config{
		Port:         getEnv("PORT", "8081"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/spendsheet.db"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "spendsheet"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "dashboard_events"),

		SheetURL:        getEnv("SHEET_URL", ""),
		WebhookURL:      getEnv("WEBHOOK_URL", ""),
		RefreshInterval: getEnvDuration("REFRESH_INTERVAL", time.Minute),
		FetchTimeout:    getEnvDuration("FETCH_TIMEOUT", 15*time.Second),
		WebhookTimeout:  getEnvDuration("WEBHOOK_TIMEOUT", 10*time.Second),
		DateOrder:       getEnv("DATE_ORDER", "dmy"),

		DataBackend: getEnv("DATA_BACKEND", "sheet"),
		SampleSize:  getEnvInt("SAMPLE_SIZE", 150),
	}
}

// Validate validates the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	switch c.DataBackend {
	case "sheet", "memory":
	default:
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be 'sheet' or 'memory'", c.DataBackend))
	}

	switch c.DateOrder {
	case "dmy", "mdy":
	default:
		errors = append(errors, fmt.Sprintf("invalid date order '%s': must be 'dmy' or 'mdy'", c.DateOrder))
	}

	if c.SQLiteDBPath == "" {
		errors = append(errors, "SQLite database path cannot be empty")
	} else {
		dir := filepath.Dir(c.SQLiteDBPath)
		if dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0755); err != nil {
					errors = append(errors, fmt.Sprintf("cannot create settings database directory '%s': %v", dir, err))
				}
			}
		}
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

	if c.RefreshInterval < time.Second {
		errors = append(errors, fmt.Sprintf("invalid refresh interval %v: must be at least 1 second", c.RefreshInterval))
	} else if c.RefreshInterval > 24*time.Hour {
		errors = append(errors, fmt.Sprintf("invalid refresh interval %v: must be at most 24 hours", c.RefreshInterval))
	}

	if c.FetchTimeout < time.Second {
		errors = append(errors, fmt.Sprintf("invalid fetch timeout %v: must be at least 1 second", c.FetchTimeout))
	} else if c.FetchTimeout > 5*time.Minute {
		errors = append(errors, fmt.Sprintf("invalid fetch timeout %v: must be at most 5 minutes", c.FetchTimeout))
	}

	if c.WebhookTimeout < time.Second {
		errors = append(errors, fmt.Sprintf("invalid webhook timeout %v: must be at least 1 second", c.WebhookTimeout))
	} else if c.WebhookTimeout > 5*time.Minute {
		errors = append(errors, fmt.Sprintf("invalid webhook timeout %v: must be at most 5 minutes", c.WebhookTimeout))
	}

	if c.SampleSize < 0 || c.SampleSize > 10000 {
		errors = append(errors, fmt.Sprintf("invalid sample size %d: must be between 0 and 10000", c.SampleSize))
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

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

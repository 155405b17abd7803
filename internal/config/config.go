package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	EventsNone  = "none"
	EventsKafka = "kafka"
	EventsNATS  = "nats"
)

type Config struct {
	Port           string
	DatabaseDriver string
	DatabaseURL    string
	MaxOpenConns   int
	LogLevel       string
	JaegerEndpoint string
	EventsDriver   string
	KafkaBrokers   []string
	KafkaTopic     string
	NATSURL        string
	NATSSubject    string
}

// Load reads the configuration from the environment. A .env file in the
// working directory is loaded first when present; variables already set in
// the environment win.
func Load() (*Config, error) {
	_ = godotenv.Load()

	maxOpen, err := intEnv("DB_MAX_OPEN_CONNS", 25)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Port:           stringEnv("PORT", "8080"),
		DatabaseDriver: strings.ToLower(stringEnv("DATABASE_DRIVER", DriverSQLite)),
		DatabaseURL:    stringEnv("DATABASE_URL", "payments.db"),
		MaxOpenConns:   maxOpen,
		LogLevel:       stringEnv("LOG_LEVEL", "info"),
		JaegerEndpoint: os.Getenv("JAEGER_ENDPOINT"),
		EventsDriver:   strings.ToLower(stringEnv("EVENTS_DRIVER", EventsNone)),
		KafkaBrokers:   splitList(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:     stringEnv("KAFKA_TOPIC", "payment.events"),
		NATSURL:        os.Getenv("NATS_URL"),
		NATSSubject:    stringEnv("NATS_SUBJECT", "payment.events"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.DatabaseDriver {
	case DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("unsupported DATABASE_DRIVER %q", c.DatabaseDriver)
	}
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	switch c.EventsDriver {
	case EventsNone:
	case EventsKafka:
		if len(c.KafkaBrokers) == 0 {
			return fmt.Errorf("KAFKA_BROKERS is required when EVENTS_DRIVER=kafka")
		}
	case EventsNATS:
		if c.NATSURL == "" {
			return fmt.Errorf("NATS_URL is required when EVENTS_DRIVER=nats")
		}
	default:
		return fmt.Errorf("unsupported EVENTS_DRIVER %q", c.EventsDriver)
	}
	return nil
}

func stringEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func intEnv(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

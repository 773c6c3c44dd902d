package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr string

	BackendURL     string
	BackendToken   string
	BackendTimeout time.Duration

	JWTSecret []byte

	LogLevel string

	Locale         string
	CurrencySymbol string

	KafkaBrokers []string
	EventsTopic  string

	ShutdownTimeout time.Duration
}

// Load reads the environment, seeded from a .env file when one exists.
func Load() (Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Notice: .env file not found: %v. Using system environment variables", err)
	}

	cfg := Config{
		Addr: EnvDefault("TERMINAL_ADDR", ":8080"),

		BackendURL:     getenv("BACKEND_URL"),
		BackendToken:   getenv("BACKEND_TOKEN"),
		BackendTimeout: EnvDurationDefault("BACKEND_TIMEOUT", 10*time.Second),

		JWTSecret: []byte(getenv("JWT_HS256_SECRET")),

		LogLevel: EnvDefault("LOG_LEVEL", "info"),

		Locale:         EnvDefault("LOCALE", "es-MX"),
		CurrencySymbol: EnvDefault("CURRENCY_SYMBOL", "$"),

		KafkaBrokers: CSV(getenv("KAFKA_BROKERS")),
		EventsTopic:  EnvDefault("EVENTS_TOPIC", "terminal_events"),

		ShutdownTimeout: EnvDurationDefault("SHUTDOWN_TIMEOUT", 10*time.Second),
	}

	if err := MustNonEmpty(cfg.BackendURL, "BACKEND_URL"); err != nil {
		return cfg, err
	}
	if err := MustNonEmptyBytes(cfg.JWTSecret, "JWT_HS256_SECRET"); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) String() string {
	return fmt.Sprintf("addr=%s backend=%s timeout=%s locale=%s kafka=%v topic=%s",
		c.Addr, c.BackendURL, c.BackendTimeout, c.Locale, c.KafkaBrokers, c.EventsTopic)
}

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/currency"
)

type Config struct {
	HTTPPort string

	// DatabaseURL empty means the in-memory store.
	DatabaseURL string

	RedisAddr     string
	RedisPassword string

	KafkaBrokers []string
	KafkaTopic   string

	DefaultCurrency currency.Unit

	IdempotencyTTL  time.Duration
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration

	// NotifyTimeout bounds publishing one checkout outcome.
	NotifyTimeout time.Duration

	SeedCatalog bool
}

func Load() (Config, error) {
	cur, err := currency.ParseISO(strings.ToUpper(getEnv("DEFAULT_CURRENCY", "USD")))
	if err != nil {
		return Config{}, fmt.Errorf("DEFAULT_CURRENCY: %w", err)
	}

	idempotencyTTL, err := getDuration("IDEMPOTENCY_TTL", 24*time.Hour)
	if err != nil {
		return Config{}, err
	}

	requestTimeout, err := getDuration("REQUEST_TIMEOUT", 5*time.Second)
	if err != nil {
		return Config{}, err
	}

	shutdownTimeout, err := getDuration("SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return Config{}, err
	}

	notifyTimeout, err := getDuration("NOTIFY_TIMEOUT", 2*time.Second)
	if err != nil {
		return Config{}, err
	}

	seed, err := strconv.ParseBool(getEnv("SEED_CATALOG", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("SEED_CATALOG: %w", err)
	}

	cfg := Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		DatabaseURL:     strings.TrimSpace(os.Getenv("DATABASE_URL")),
		RedisAddr:       strings.TrimSpace(os.Getenv("REDIS_ADDR")),
		RedisPassword:   os.Getenv("REDIS_PASSWORD"),
		KafkaBrokers:    splitList(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:      getEnv("KAFKA_TOPIC", "checkout-events"),
		DefaultCurrency: cur,
		IdempotencyTTL:  idempotencyTTL,
		RequestTimeout:  requestTimeout,
		ShutdownTimeout: shutdownTimeout,
		NotifyTimeout:   notifyTimeout,
		SeedCatalog:     seed,
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("cfg.Validate: %w", err)
	}

	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error

	if port, err := strconv.Atoi(c.HTTPPort); err != nil || port < 1 || port > 65535 {
		errs = append(errs, fmt.Errorf("HTTP_PORT %q is not a valid port", c.HTTPPort))
	}

	if c.IdempotencyTTL <= 0 {
		errs = append(errs, errors.New("IDEMPOTENCY_TTL must be positive"))
	}

	if c.RequestTimeout <= 0 {
		errs = append(errs, errors.New("REQUEST_TIMEOUT must be positive"))
	}

	if c.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("SHUTDOWN_TIMEOUT must be positive"))
	}

	if c.NotifyTimeout <= 0 {
		errs = append(errs, errors.New("NOTIFY_TIMEOUT must be positive"))
	}

	if len(c.KafkaBrokers) > 0 && c.KafkaTopic == "" {
		errs = append(errs, errors.New("KAFKA_TOPIC is empty"))
	}

	return errors.Join(errs...)
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue, nil
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}

	return d, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

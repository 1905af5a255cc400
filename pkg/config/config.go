// Package config reads the service configuration from the environment,
// with a default fallback for every key.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config carries all environment-provided settings.
type Config struct {
	HTTPAddr             string
	StorageDriver        string
	SQLiteFile           string
	DatabaseURL          string
	KafkaBootstrap       string
	OrdersTopic          string
	KafkaStartupRetries  int
	KafkaStartupDelay    time.Duration
	PublishFailurePolicy string
	RedisAddr            string
	AuthEnabled          bool
	OtelHost             string
}

// Load reads configuration from the environment.
func Load() (Config, error) {
	cfg := Config{
		HTTPAddr:             getEnv("HTTP_ADDR", ":8000"),
		StorageDriver:        getEnv("STORAGE_DRIVER", "sqlite"),
		SQLiteFile:           getEnv("SQLITE_DB_FILE", "orders.db"),
		DatabaseURL:          os.Getenv("DATABASE_URL"),
		KafkaBootstrap:       getEnv("KAFKA_BOOTSTRAP_SERVERS", "localhost:9092"),
		OrdersTopic:          getEnv("TOPIC_ORDERS", "orders.created"),
		PublishFailurePolicy: getEnv("PUBLISH_FAILURE_POLICY", "ignore"),
		RedisAddr:            getEnv("REDIS_ADDR", "localhost:6379"),
		OtelHost:             os.Getenv("OTEL_HOST"),
	}

	retries, err := getEnvInt("KAFKA_STARTUP_RETRIES", 10)
	if err != nil {
		return Config{}, err
	}
	cfg.KafkaStartupRetries = retries

	delay, err := getEnvDuration("KAFKA_STARTUP_DELAY", 2*time.Second)
	if err != nil {
		return Config{}, err
	}
	cfg.KafkaStartupDelay = delay

	auth, err := getEnvBool("AUTH_ENABLED", false)
	if err != nil {
		return Config{}, err
	}
	cfg.AuthEnabled = auth

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
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

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func getEnvBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.KafkaBootstrap != "localhost:9092" {
		t.Fatalf("unexpected kafka bootstrap: %s", cfg.KafkaBootstrap)
	}
	if cfg.OrdersTopic != "orders.created" {
		t.Fatalf("unexpected topic: %s", cfg.OrdersTopic)
	}
	if cfg.SQLiteFile != "orders.db" {
		t.Fatalf("unexpected sqlite file: %s", cfg.SQLiteFile)
	}
	if cfg.StorageDriver != "sqlite" {
		t.Fatalf("unexpected storage driver: %s", cfg.StorageDriver)
	}
	if cfg.KafkaStartupRetries != 10 || cfg.KafkaStartupDelay != 2*time.Second {
		t.Fatalf("unexpected startup retry settings: %d %v", cfg.KafkaStartupRetries, cfg.KafkaStartupDelay)
	}
	if cfg.AuthEnabled {
		t.Fatal("auth must default to disabled")
	}
	if cfg.PublishFailurePolicy != "ignore" {
		t.Fatalf("unexpected publish failure policy: %s", cfg.PublishFailurePolicy)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("TOPIC_ORDERS", "orders.test")
	t.Setenv("KAFKA_STARTUP_RETRIES", "3")
	t.Setenv("KAFKA_STARTUP_DELAY", "250ms")
	t.Setenv("AUTH_ENABLED", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.OrdersTopic != "orders.test" {
		t.Fatalf("unexpected topic: %s", cfg.OrdersTopic)
	}
	if cfg.KafkaStartupRetries != 3 || cfg.KafkaStartupDelay != 250*time.Millisecond {
		t.Fatalf("unexpected startup retry settings: %d %v", cfg.KafkaStartupRetries, cfg.KafkaStartupDelay)
	}
	if !cfg.AuthEnabled {
		t.Fatal("expected auth enabled")
	}
}

func TestLoadRejectsMalformedValues(t *testing.T) {
	t.Setenv("KAFKA_STARTUP_RETRIES", "ten")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for malformed retry count")
	}
}

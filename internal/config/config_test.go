package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("KAFKA_BROKERS", "")
	t.Setenv("KAFKA_BROKER", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "8080" || cfg.Server.Location != time.UTC || cfg.Store.Driver != StoreMemory || cfg.Store.Timeout != 10*time.Second {
		t.Fatalf("unexpected defaults %#v", cfg)
	}
	if cfg.Kafka.Enabled() {
		t.Fatal("kafka must be disabled without brokers")
	}
	if cfg.Inventory.LowStockThreshold != 5 || cfg.Websocket.SendBuffer != 16 {
		t.Fatalf("unexpected defaults %#v", cfg)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("STORE_DRIVER", "Mongo")
	t.Setenv("MONGO_TIMEOUT", "3s")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("KAFKA_EVENTS_TOPIC", "events")
	t.Setenv("KAFKA_TOPICS", "")
	t.Setenv("TRACING_ENABLED", "true")
	t.Setenv("LOW_STOCK_THRESHOLD", "2.5")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Store.Driver != StoreMongo || cfg.Store.Timeout != 3*time.Second || !cfg.Tracing {
		t.Fatalf("unexpected store config %#v", cfg.Store)
	}
	if len(cfg.Kafka.Brokers) != 2 || cfg.Kafka.Brokers[1] != "k2:9092" {
		t.Fatalf("unexpected brokers %v", cfg.Kafka.Brokers)
	}
	if len(cfg.Kafka.Topics) != 1 || cfg.Kafka.Topics[0] != "events" {
		t.Fatalf("topics must default to the events topic, got %v", cfg.Kafka.Topics)
	}
	if cfg.Inventory.LowStockThreshold != 2.5 {
		t.Fatalf("unexpected threshold %v", cfg.Inventory.LowStockThreshold)
	}
}

func TestLoadErrors(t *testing.T) {
	cases := []struct {
		name string
		env  map[string]string
	}{
		{name: "no jwt key", env: map[string]string{"JWT_SECRET": "", "JWT_PUBLIC_KEY": ""}},
		{name: "bad driver", env: map[string]string{"JWT_SECRET": "s", "STORE_DRIVER": "redis"}},
		{name: "bad timeout", env: map[string]string{"JWT_SECRET": "s", "MONGO_TIMEOUT": "soon"}},
		{name: "bad bool", env: map[string]string{"JWT_SECRET": "s", "TRACING_ENABLED": "maybe"}},
		{name: "bad timezone", env: map[string]string{"JWT_SECRET": "s", "APP_TIMEZONE": "Mars/Olympus"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

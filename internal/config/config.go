package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	StoreMemory = "memory"
	StoreMongo  = "mongo"
)

type Config struct {
	Server    ServerConfig
	Logging   LoggingConfig
	Store     StoreConfig
	Kafka     KafkaConfig
	Security  SecurityConfig
	Websocket WebsocketConfig
	Tracing   bool
	Inventory InventoryConfig
}

type ServerConfig struct {
	Port string
	// Location is the zone reservation and report days are read in.
	Location *time.Location
}

type LoggingConfig struct {
	Directory string
	Level     string
	Format    string
}

type StoreConfig struct {
	Driver   string
	MongoURI string
	Database string
	Timeout  time.Duration
}

// KafkaConfig is empty of brokers when events stay in-process.
type KafkaConfig struct {
	Brokers     []string
	GroupID     string
	EventsTopic string
	// Topics are the broker topics consumed and forwarded to websocket clients.
	Topics []string
}

func (k KafkaConfig) Enabled() bool { return len(k.Brokers) > 0 }

type SecurityConfig struct {
	JWTSecret    string
	JWTPublicKey string
}

type WebsocketConfig struct {
	AllowedActions []string
	SendBuffer     int
}

type InventoryConfig struct {
	LowStockThreshold float64
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{Port: env("SERVER_PORT", "8080")},
		Logging: LoggingConfig{
			Directory: env("LOG_DIRECTORY", "./logs"),
			Level:     env("LOG_LEVEL", "info"),
			Format:    env("LOG_FORMAT", "text"),
		},
		Store: StoreConfig{
			Driver:   strings.ToLower(env("STORE_DRIVER", StoreMemory)),
			MongoURI: env("MONGO_URI", "mongodb://localhost:27017"),
			Database: env("MONGO_DATABASE", "mesa"),
		},
		Kafka: KafkaConfig{
			Brokers:     list(env("KAFKA_BROKERS", os.Getenv("KAFKA_BROKER"))),
			GroupID:     env("KAFKA_GROUP_ID", "mesa-ops"),
			EventsTopic: env("KAFKA_EVENTS_TOPIC", "mesa.events"),
		},
		Security: SecurityConfig{
			JWTSecret:    os.Getenv("JWT_SECRET"),
			JWTPublicKey: strings.ReplaceAll(os.Getenv("JWT_PUBLIC_KEY"), `\n`, "\n"),
		},
		Websocket: WebsocketConfig{
			AllowedActions: list(env("WS_ALLOWED_ACTIONS", "created,updated,cancelled,low_stock")),
		},
	}
	cfg.Kafka.Topics = list(env("KAFKA_TOPICS", cfg.Kafka.EventsTopic))

	var err error
	if cfg.Server.Location, err = time.LoadLocation(env("APP_TIMEZONE", "UTC")); err != nil {
		return nil, fmt.Errorf("APP_TIMEZONE: %w", err)
	}
	if cfg.Store.Timeout, err = duration("MONGO_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.Tracing, err = boolean("TRACING_ENABLED", false); err != nil {
		return nil, err
	}
	if cfg.Inventory.LowStockThreshold, err = float("LOW_STOCK_THRESHOLD", 5); err != nil {
		return nil, err
	}
	buffer, err := float("WS_SEND_BUFFER", 16)
	if err != nil {
		return nil, err
	}
	cfg.Websocket.SendBuffer = int(buffer)

	switch cfg.Store.Driver {
	case StoreMemory, StoreMongo:
	default:
		return nil, fmt.Errorf("STORE_DRIVER must be %q or %q, got %q", StoreMemory, StoreMongo, cfg.Store.Driver)
	}
	if cfg.Security.JWTSecret == "" && cfg.Security.JWTPublicKey == "" {
		return nil, fmt.Errorf("JWT_SECRET or JWT_PUBLIC_KEY environment variable is required")
	}
	return cfg, nil
}

func env(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func list(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if v := strings.TrimSpace(part); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func duration(key string, fallback time.Duration) (time.Duration, error) {
	raw := env(key, "")
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func boolean(key string, fallback bool) (bool, error) {
	raw := env(key, "")
	if raw == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

func float(key string, fallback float64) (float64, error) {
	raw := env(key, "")
	if raw == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return f, nil
}

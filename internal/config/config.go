package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StateMemory = "memory"
	StateRedis  = "redis"
	StateMongo  = "mongo"
)

type Config struct {
	HTTPPort string
	GRPCPort string

	CatalogDriver  string
	SQLitePath     string
	Postgres       PostgresConfig
	MigrationsPath string
	SeedFile       string

	StateBackend  string
	RedisAddr     string
	RedisPassword string
	MongoURI      string
	MongoDBName   string

	KafkaBrokers []string

	CatalogCacheTTL time.Duration
	StateTTL        time.Duration
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
}

// Load reads the environment, after applying envFile when it exists.
// Variables already set in the environment win over the file.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	cfg := &Config{
		HTTPPort:       getEnv("HTTP_PORT", "8080"),
		GRPCPort:       getEnv("GRPC_PORT", "50051"),
		CatalogDriver:  getEnv("CATALOG_DRIVER", "sqlite"),
		SQLitePath:     getEnv("SQLITE_PATH", "storefront.db"),
		MigrationsPath: getEnv("MIGRATIONS_PATH", "internal/catalog/migrations"),
		SeedFile:       getEnv("SEED_FILE", "seed/catalog.yaml"),
		StateBackend:   getEnv("STATE_BACKEND", StateMemory),
		RedisAddr:      getEnv("REDIS_ADDR", ""),
		RedisPassword:  getEnv("REDIS_PASSWORD", ""),
		MongoURI:       getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDBName:    getEnv("MONGO_DB_NAME", "storefront"),
		KafkaBrokers:   splitList(getEnv("KAFKA_BROKERS", "")),
		Postgres: PostgresConfig{
			Host:     getEnv("POSTGRES_HOST", "localhost"),
			User:     getEnv("POSTGRES_USER", "postgres"),
			Password: getEnv("POSTGRES_PASSWORD", "postgres"),
			DBName:   getEnv("POSTGRES_DB", "storefront"),
		},
	}

	var err error
	if cfg.Postgres.Port, err = strconv.Atoi(getEnv("POSTGRES_PORT", "5432")); err != nil {
		return nil, fmt.Errorf("invalid POSTGRES_PORT: %w", err)
	}

	durations := []struct {
		key string
		def string
		dst *time.Duration
	}{
		{"CATALOG_CACHE_TTL", "15m", &cfg.CatalogCacheTTL},
		{"STATE_TTL", "0", &cfg.StateTTL},
		{"REQUEST_TIMEOUT", "10s", &cfg.RequestTimeout},
		{"SHUTDOWN_TIMEOUT", "15s", &cfg.ShutdownTimeout},
	}
	for _, d := range durations {
		if *d.dst, err = time.ParseDuration(getEnv(d.key, d.def)); err != nil {
			return nil, fmt.Errorf("invalid %s: %w", d.key, err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.CatalogDriver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("invalid CATALOG_DRIVER %q: want sqlite or postgres", c.CatalogDriver)
	}

	switch c.StateBackend {
	case StateMemory, StateMongo:
	case StateRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("STATE_BACKEND=redis requires REDIS_ADDR")
		}
	default:
		return fmt.Errorf("invalid STATE_BACKEND %q: want memory, redis or mongo", c.StateBackend)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
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

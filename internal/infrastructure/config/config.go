package config

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

// Storage drivers accepted by STORAGE_DRIVER.
const (
	DriverRedis  = "redis"
	DriverMongo  = "mongo"
	DriverMemory = "memory"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Backend BackendConfig
	Storage StorageConfig
	Session SessionConfig
	Gate    GateConfig
	Dev     DevConfig
}

type BackendConfig struct {
	URL     string        `env:"BACKEND_URL,     default=http://localhost:8081"`
	Timeout time.Duration `env:"BACKEND_TIMEOUT, default=10s"`
	Retries int           `env:"BACKEND_RETRIES, default=3"`
}

type StorageConfig struct {
	Driver string `env:"STORAGE_DRIVER, default=redis"`
	Prefix string `env:"STORAGE_PREFIX, default=console"`

	RedisAddr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB,       default=0"`

	MongoURI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	MongoDatabase string `env:"MONGO_DB,  default=admin_console"`
}

type SessionConfig struct {
	LogoutOnRefreshFailure bool   `env:"SESSION_LOGOUT_ON_REFRESH_FAILURE, default=false"`
	DeviceToken            string `env:"DEVICE_TOKEN"`
}

type GateConfig struct {
	EnforcePermissions bool `env:"GATE_ENFORCE_PERMISSIONS, default=true"`
}

// DevConfig configures the development auth backend.
type DevConfig struct {
	Port      string        `env:"DEV_PORT,       default=8081"`
	JWTSecret string        `env:"DEV_JWT_SECRET, default=dev-secret"`
	TokenTTL  time.Duration `env:"DEV_TOKEN_TTL,  default=15m"`
	// UserStore selects the dev user directory: memory or mongo.
	UserStore string `env:"DEV_USER_STORE, default=memory"`
}

// Load reads configuration from the environment, loading a .env file first
// when one exists.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return LoadWith(context.Background(), envconfig.OsLookuper())
}

// LoadWith reads configuration through lookuper and validates it.
func LoadWith(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.Port) == "" {
		return errors.New("PORT cannot be empty")
	}

	u, err := url.Parse(c.Backend.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("BACKEND_URL must be an absolute URL, got %q", c.Backend.URL)
	}
	if c.Backend.Timeout <= 0 {
		return errors.New("BACKEND_TIMEOUT must be positive")
	}
	if c.Backend.Retries < 0 {
		return errors.New("BACKEND_RETRIES cannot be negative")
	}

	switch c.Storage.Driver {
	case DriverRedis:
		if c.Storage.RedisAddr == "" {
			return errors.New("REDIS_ADDR is required for the redis driver")
		}
	case DriverMongo:
		if c.Storage.MongoURI == "" || c.Storage.MongoDatabase == "" {
			return errors.New("MONGO_URI and MONGO_DB are required for the mongo driver")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("STORAGE_DRIVER must be one of redis, mongo, memory, got %q", c.Storage.Driver)
	}

	return nil
}

// IsProduction reports whether the process runs with ENV=production.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

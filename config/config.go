package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	DriverMongo  = "mongo"
	DriverMemory = "memory"

	EnvDevelopment = "development"
)

var (
	ErrInvalidDriver = errors.New("invalid store driver")
	ErrMissingSecret = errors.New("JWT_SECRET must be set")
)

// Config is built once at startup and passed by value or pointer to the
// components that need it. Nothing reads the environment afterwards.
type Config struct {
	Port   string `envconfig:"PORT" default:"8080"`
	AppEnv string `envconfig:"APP_ENV" default:"development"`

	JWTSecret     string        `envconfig:"JWT_SECRET" required:"true"`
	TokenLifetime time.Duration `envconfig:"TOKEN_LIFETIME" default:"360h"`

	StoreDriver   string `envconfig:"STORE_DRIVER" default:"mongo"`
	MongoURI      string `envconfig:"MONGODB_URI" default:"mongodb://127.0.0.1:27017"`
	MongoDatabase string `envconfig:"MONGODB_DATABASE" default:"social"`

	CloudinaryURL string `envconfig:"CLOUDINARY_URL"`

	LogLevel    string   `envconfig:"LOG_LEVEL" default:"info"`
	GinMode     string   `envconfig:"GIN_MODE" default:"debug"`
	CORSOrigins []string `envconfig:"CORS_ORIGINS" default:"http://localhost:3000,http://127.0.0.1:3000,http://localhost:5173"`

	RateLimit  int           `envconfig:"RATE_LIMIT" default:"60"`
	RateWindow time.Duration `envconfig:"RATE_WINDOW" default:"1m"`
}

// Load reads an optional .env file and decodes the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}

	if cfg.JWTSecret == "" {
		return nil, ErrMissingSecret
	}

	switch cfg.StoreDriver {
	case DriverMongo, DriverMemory:
	default:
		return nil, fmt.Errorf("%w: %s", ErrInvalidDriver, cfg.StoreDriver)
	}

	if cfg.StoreDriver == DriverMemory {
		slog.Warn("using in-memory store, data will not survive a restart")
	}

	return &cfg, nil
}

// Development reports whether the process runs locally; session cookies are
// only marked Secure outside development.
func (c *Config) Development() bool {
	return c.AppEnv == EnvDevelopment
}

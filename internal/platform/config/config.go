// Package config loads the service configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"taskandtime_backend/internal/platform/db"
	"taskandtime_backend/internal/platform/redis"
)

// Config is the full service configuration.
type Config struct {
	AppEnv string `env:"APP_ENV" envDefault:"dev"`
	Port   string `env:"PORT" envDefault:"8080"`

	DB    db.Config
	Redis redis.Config

	JWT   JWTConfig
	Admin AdminConfig

	BcryptCost    int           `env:"BCRYPT_COST" envDefault:"10"`
	TokenCacheTTL time.Duration `env:"TOKEN_CACHE_TTL" envDefault:"5m"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:5173"`

	// OTLPEndpoint enables trace export when set.
	OTLPEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`

	// LoginRateLimit is the number of login/register requests allowed per minute per client IP.
	LoginRateLimit int `env:"LOGIN_RATE_LIMIT" envDefault:"20"`
}

// JWTConfig configures access token signing.
type JWTConfig struct {
	Secret     string        `env:"JWT_SECRET,required,notEmpty"`
	Expiration time.Duration `env:"JWT_EXPIRATION" envDefault:"24h"`
}

// AdminConfig describes the bootstrap administrator.
// An empty Password disables the bootstrap.
type AdminConfig struct {
	Name     string `env:"ADMIN_NAME" envDefault:"Admin"`
	Email    string `env:"ADMIN_EMAIL" envDefault:"admin@gmail.com"`
	Password string `env:"ADMIN_PASSWORD"`
	Contact  string `env:"ADMIN_CONTACT"`
}

// IsDev reports whether the service runs in the development environment.
func (c Config) IsDev() bool {
	return c.AppEnv == "dev"
}

// Load reads an optional .env file and then parses the environment.
// Variables already set in the environment win over the file.
func Load(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	} else if err != nil {
		slog.Debug(".env not found, using process environment")
	}

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.LoginRateLimit <= 0 {
		return Config{}, fmt.Errorf("parse env: LOGIN_RATE_LIMIT must be positive, got %d", cfg.LoginRateLimit)
	}
	return cfg, nil
}

package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const defaultJWTSecret = "change-me-jwt-secret"

type Config struct {
	AppEnv    string `env:"APP_ENV" envDefault:"dev"`
	Port      string `env:"PORT" envDefault:"8080"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`

	DatabaseURL string `env:"DATABASE_URL" envDefault:"atelier.db"`

	JWTSecret string        `env:"JWT_SECRET" envDefault:"change-me-jwt-secret"`
	JWTTTL    time.Duration `env:"JWT_TTL" envDefault:"24h"`

	UploadDir     string `env:"UPLOAD_DIR" envDefault:"./uploads"`
	MaxUploadSize int64  `env:"MAX_UPLOAD_SIZE" envDefault:"20971520"`

	MasterpieceLimit int `env:"MASTERPIECE_LIMIT" envDefault:"5"`

	RedisURL        string        `env:"REDIS_URL"`
	RankingCacheTTL time.Duration `env:"RANKING_CACHE_TTL" envDefault:"30s"`

	CORSOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000,http://localhost:5173"`

	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS" envDefault:"5"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST" envDefault:"10"`

	BlobGCGrace time.Duration `env:"BLOB_GC_GRACE" envDefault:"24h"`
}

// Load reads .env (when present) and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logrus.Debug("No .env file found. Using system environment variables.")
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: parse environment: %w", err)
	}
	cfg.AppEnv = strings.ToLower(strings.TrimSpace(cfg.AppEnv))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (cfg *Config) Validate() error {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		return fmt.Errorf("DATABASE_URL must not be empty")
	}
	if cfg.JWTTTL <= 0 {
		return fmt.Errorf("JWT_TTL must be > 0")
	}
	if cfg.MaxUploadSize <= 0 {
		return fmt.Errorf("MAX_UPLOAD_SIZE must be > 0")
	}
	if cfg.MasterpieceLimit <= 0 {
		return fmt.Errorf("MASTERPIECE_LIMIT must be > 0")
	}
	if cfg.RateLimitRPS <= 0 || cfg.RateLimitBurst <= 0 {
		return fmt.Errorf("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be > 0")
	}
	if cfg.RankingCacheTTL < 0 {
		return fmt.Errorf("RANKING_CACHE_TTL must not be negative")
	}

	if cfg.IsProdLike() && isEmptyOrDefault(cfg.JWTSecret, defaultJWTSecret) {
		return fmt.Errorf("in prod/release JWT_SECRET must be set and not default")
	}
	return nil
}

func (cfg *Config) IsProdLike() bool {
	appEnv := strings.ToLower(strings.TrimSpace(cfg.AppEnv))
	return appEnv == "prod" || appEnv == "production" || appEnv == "release"
}

func isEmptyOrDefault(v, def string) bool {
	trimmed := strings.TrimSpace(v)
	return trimmed == "" || trimmed == def
}

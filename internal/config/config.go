package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	DBFile            string        `env:"ACCORDION_DB" envDefault:"accordion.db"`
	AdminAddr         string        `env:"ADMIN_ADDR" envDefault:"localhost:8081"`
	APIAddr           string        `env:"API_ADDR" envDefault:":8080"`
	BaseURL           string        `env:"BASE_URL" envDefault:"http://localhost:8080"`
	UploadsPath       string        `env:"UPLOADS_PATH" envDefault:"uploads"`
	AdminUser         string        `env:"ADMIN_USER" envDefault:"admin"`
	AdminPasswordHash string        `env:"ADMIN_PASSWORD_HASH"`
	AdminPassword     string        `env:"ADMIN_PASSWORD"`
	RenderCacheTTL    time.Duration `env:"RENDER_CACHE_TTL" envDefault:"10m"`
	MaxUploadSize     int64         `env:"MAX_UPLOAD_SIZE" envDefault:"5242880"`
	LogLevel          string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat         string        `env:"LOG_FORMAT" envDefault:"text"`
	SeedDemo          bool          `env:"SEED_DEMO" envDefault:"false"`
}

// Load reads configuration from the environment, after merging a .env file
// from the working directory if one exists. cliMode is for commands that
// talk to a running server and need the plaintext ADMIN_PASSWORD.
func Load(cliMode bool) (*Config, error) {
	// Missing .env is fine.
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if err := cfg.Validate(cliMode); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate(cliMode bool) error {
	if c.AdminPassword == "" && cliMode {
		return fmt.Errorf("ADMIN_PASSWORD is required")
	}

	if c.RenderCacheTTL <= 0 {
		return fmt.Errorf("RENDER_CACHE_TTL must be greater than 0")
	}

	if c.MaxUploadSize <= 0 {
		return fmt.Errorf("MAX_UPLOAD_SIZE must be greater than 0")
	}

	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}

	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("LOG_FORMAT must be text or json, got %q", c.LogFormat)
	}

	return nil
}

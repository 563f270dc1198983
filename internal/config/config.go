package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v10"
)

const (
	StoreMongo    = "mongo"
	StorePostgres = "postgres"
)

// Config centraliza la configuración del servicio.
type Config struct {
	HTTPPort          string `env:"HTTP_PORT" envDefault:"8080"`
	StoreDriver       string `env:"STORE_DRIVER" envDefault:"mongo"`
	MongoURI          string `env:"MONGO_URI" envDefault:"mongodb://localhost:27017"`
	MongoDatabase     string `env:"MONGO_DATABASE" envDefault:"forum"`
	DatabaseURL       string `env:"DATABASE_URL"`
	AccessTokenSecret string `env:"ACCESS_TOKEN_SECRET,required"`
	BcryptCost        int    `env:"BCRYPT_COST" envDefault:"10"`
	SMTPHost          string `env:"SMTP_HOST"`
	SMTPPort          int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUser          string `env:"SMTP_USER"`
	SMTPPass          string `env:"SMTP_PASS"`
	SMTPFrom          string `env:"SMTP_FROM"`
	SMTPFromName      string `env:"SMTP_FROM_NAME"`
	SMTPUseTLS        bool   `env:"SMTP_USE_TLS" envDefault:"false"`
	RedisAddr         string `env:"REDIS_ADDR"`
	RedisPassword     string `env:"REDIS_PASSWORD"`
	RedisDB           int    `env:"REDIS_DB" envDefault:"0"`
	ForgotRateWindow  int    `env:"FORGOT_RATE_WINDOW_MINUTES" envDefault:"10"`
	ForgotRateMax     int    `env:"FORGOT_RATE_MAX" envDefault:"3"`
}

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate revisa combinaciones que env no puede expresar con tags.
func (c *Config) Validate() error {
	c.StoreDriver = strings.ToLower(strings.TrimSpace(c.StoreDriver))
	switch c.StoreDriver {
	case StoreMongo:
		if strings.TrimSpace(c.MongoURI) == "" {
			return fmt.Errorf("MONGO_URI is required for store driver %q", c.StoreDriver)
		}
	case StorePostgres:
		if strings.TrimSpace(c.DatabaseURL) == "" {
			return fmt.Errorf("DATABASE_URL is required for store driver %q", c.StoreDriver)
		}
	default:
		return fmt.Errorf("unknown store driver %q", c.StoreDriver)
	}
	if strings.TrimSpace(c.AccessTokenSecret) == "" {
		return fmt.Errorf("ACCESS_TOKEN_SECRET must not be blank")
	}
	return nil
}

package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App struct {
		Name    string `envconfig:"APP_NAME" default:"Deallock"`
		Port    int    `envconfig:"PORT" default:"8080"`
		BaseURL string `envconfig:"BASE_URL" default:"http://localhost:8080"`
	}

	DB struct {
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"deallock"`
	}

	Server struct {
		Timeout time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
	}

	Auth struct {
		JWTSecret  string        `envconfig:"JWT_SECRET" default:""`
		SessionTTL time.Duration `envconfig:"SESSION_TTL" default:"24h"`
	}

	Mail struct {
		// Empty From disables SES; outgoing mail is logged instead.
		From      string `envconfig:"MAIL_FROM" default:""`
		AWSRegion string `envconfig:"AWS_REGION" default:"eu-west-1"`
	}

	SMS struct {
		Enabled  bool   `envconfig:"SMS_ENABLED" default:"false"`
		SenderID string `envconfig:"SMS_SENDER_ID" default:"Deallock"`
	}

	Dispatch struct {
		Timeout time.Duration `envconfig:"DISPATCH_TIMEOUT" default:"15s"`
	}
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name)
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}

package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type DatabaseConfig struct {
	URL      string `yaml:"url"`
	MaxConns int32  `yaml:"max_conns"`
}

type RedisConfig struct {
	URL      string        `yaml:"url"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

type ServerConfig struct {
	Port int `yaml:"port"`
}

type PaymentConfig struct {
	ClickToPay struct {
		MerchantID string `yaml:"merchant_id"`
		APIKey     string `yaml:"api_key"`
		BaseURL    string `yaml:"base_url"`
		Sandbox    bool   `yaml:"sandbox"`
	} `yaml:"clicktopay"`
	Flouci struct {
		AppToken    string `yaml:"app_token"`
		AppSecret   string `yaml:"app_secret"`
		BaseURL     string `yaml:"base_url"`
		SuccessLink string `yaml:"success_link"`
		FailLink    string `yaml:"fail_link"`
		TimeoutSecs int    `yaml:"timeout_secs"`
	} `yaml:"flouci"`
	Currency string `yaml:"currency"`
}

type NotifierConfig struct {
	WebhookURL string `yaml:"webhook_url"`
}

type JobsConfig struct {
	SweepInterval   time.Duration `yaml:"sweep_interval"`
	RecountInterval time.Duration `yaml:"recount_interval"`
}

type Config struct {
	Log      LogConfig      `yaml:"log"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Server   ServerConfig   `yaml:"server"`
	Payment  PaymentConfig  `yaml:"payment"`
	Notifier NotifierConfig `yaml:"notifier"`
	Jobs     JobsConfig     `yaml:"jobs"`

	Runtime RuntimeConfig `yaml:"-"`
}

// LoadConfig reads and validates the YAML config file.
func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// defaults
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Database.MaxConns <= 0 {
		cfg.Database.MaxConns = 10
	}
	if cfg.Redis.TTL <= 0 {
		cfg.Redis.TTL = time.Hour
	}
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Payment.Currency == "" {
		cfg.Payment.Currency = "TND"
	}
	if cfg.Payment.Flouci.BaseURL == "" {
		cfg.Payment.Flouci.BaseURL = "https://developers.flouci.com/api"
	}
	if cfg.Payment.Flouci.TimeoutSecs <= 0 {
		cfg.Payment.Flouci.TimeoutSecs = 1200
	}
	if cfg.Jobs.SweepInterval <= 0 {
		cfg.Jobs.SweepInterval = 6 * time.Hour
	}
	if cfg.Jobs.RecountInterval <= 0 {
		cfg.Jobs.RecountInterval = time.Hour
	}

	// Minimal validation
	if cfg.Database.URL == "" {
		return nil, errors.New("database.url is required")
	}
	if cfg.Redis.URL == "" {
		return nil, errors.New("redis.url is required")
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}

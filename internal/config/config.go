// Package config содержит логику чтения конфигурации сервиса bakeshop.
package config

import (
	"flag"
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config содержит параметры конфигурации сервиса bakeshop.
type Config struct {
	RunAddress    string `env:"RUN_ADDRESS"`
	DatabaseURI   string `env:"DATABASE_URI"`
	SessionSecret string `env:"SESSION_SECRET"`
	OwnerUsername string `env:"OWNER_USERNAME"`
	OwnerPassword string `env:"OWNER_PASSWORD"`
}

// Parse считывает конфигурацию из флагов командной строки и переменных окружения.
func Parse() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	envRunAddress := cfg.RunAddress
	envDatabaseURI := cfg.DatabaseURI
	envSessionSecret := cfg.SessionSecret
	envOwnerUsername := cfg.OwnerUsername
	envOwnerPassword := cfg.OwnerPassword

	flag.StringVar(&cfg.RunAddress, "a", "localhost:8080", "address and port for HTTP server")
	flag.StringVar(&cfg.DatabaseURI, "d", "", "database URI")
	flag.StringVar(&cfg.SessionSecret, "s", "", "secret for signing session and visitor cookies")
	flag.StringVar(&cfg.OwnerUsername, "u", "owner", "username of the shop owner account seeded at startup")
	flag.StringVar(&cfg.OwnerPassword, "p", "owner12345", "password of the shop owner account seeded at startup")

	flag.Parse()

	if envRunAddress != "" {
		cfg.RunAddress = envRunAddress
	}
	if envDatabaseURI != "" {
		cfg.DatabaseURI = envDatabaseURI
	}
	if envSessionSecret != "" {
		cfg.SessionSecret = envSessionSecret
	}
	if envOwnerUsername != "" {
		cfg.OwnerUsername = envOwnerUsername
	}
	if envOwnerPassword != "" {
		cfg.OwnerPassword = envOwnerPassword
	}

	if cfg.RunAddress == "" {
		cfg.RunAddress = "localhost:8080"
	}

	return cfg, nil
}

package app

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/shrimpsizemoose/trekker/logger"
)

type Config struct {
	Server struct {
		Port       string `toml:"port"`
		EnableAuth bool   `toml:"enable_auth"`
	} `toml:"server"`

	Auth struct {
		RedisURL            string `toml:"redis_url"`
		TokenHeader         string `toml:"token_header"`
		SessionTTLMinutes   int    `toml:"session_ttl_minutes"`
		AdminPasswordBcrypt string `toml:"admin_password_bcrypt"`
	} `toml:"auth"`

	Database struct {
		DSN           string `toml:"dsn"`
		MigrationsDir string `toml:"migrations_dir"`
	} `toml:"database"`

	Cache struct {
		Enabled    bool `toml:"enabled"`
		TTLSeconds int  `toml:"ttl_seconds"`
	} `toml:"cache"`

	Export struct {
		OutputDir string `toml:"output_dir"`
		Schedule  string `toml:"schedule"`
	} `toml:"export"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf(
			"error reading config file %s\n> Error: %w\n> Content:\n%s",
			path,
			err,
			string(data),
		)
	}

	if config.Server.Port == "" {
		return nil, fmt.Errorf("Server port is not specified in config, use a value like :9999")
	}
	if config.Database.DSN == "" {
		return nil, fmt.Errorf("Database DSN is not specified in config")
	}
	if config.Database.MigrationsDir == "" {
		config.Database.MigrationsDir = "./migrations"
	}
	if config.Auth.TokenHeader == "" {
		config.Auth.TokenHeader = "Authorization"
	}
	if config.Auth.SessionTTLMinutes <= 0 {
		config.Auth.SessionTTLMinutes = 12 * 60
	}
	if config.Cache.TTLSeconds <= 0 {
		config.Cache.TTLSeconds = 60
	}
	// the summary cache rides on the auth redis connection
	if config.Cache.Enabled && !config.Server.EnableAuth {
		return nil, fmt.Errorf("cache.enabled requires server.enable_auth and auth.redis_url, the cache shares the auth redis connection")
	}

	logger.Debug.Printf(
		"Loaded config: server=%s auth=%v cache=%v",
		config.Server.Port,
		config.Server.EnableAuth,
		config.Cache.Enabled,
	)

	return &config, nil
}

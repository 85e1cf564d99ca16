package bot

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

type Config struct {
	Bot struct {
		Token        string  `toml:"token"`
		AdminIDs     []int64 `toml:"admin_ids"`
		ReminderCron string  `toml:"reminder_cron"`
	} `toml:"bot"`

	Database struct {
		DSN           string `toml:"dsn"`
		MigrationsDir string `toml:"migrations_dir"`
	} `toml:"database"`
}

func ReadConfig(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file %s: %w", path, err)
	}

	if cfg.Bot.Token == "" {
		return nil, fmt.Errorf("bot token is not specified in config")
	}
	if cfg.Database.MigrationsDir == "" {
		cfg.Database.MigrationsDir = "./migrations"
	}
	if cfg.Bot.ReminderCron == "" {
		// weekdays at 18:00
		cfg.Bot.ReminderCron = "0 18 * * 1-5"
	}

	return &cfg, nil
}

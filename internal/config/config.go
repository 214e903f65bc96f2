package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"SantaClicker/internal/clicker"
	"SantaClicker/internal/model"
)

// Config holds all application configuration.
type Config struct {
	HTTP struct {
		Addr string `yaml:"addr"`
	} `yaml:"http"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
	Schedule struct {
		TickCron     string `yaml:"tick_cron"`
		AutosaveCron string `yaml:"autosave_cron"`
		SnapshotCron string `yaml:"snapshot_cron"`
	} `yaml:"schedule"`
	Tick struct {
		Interval time.Duration `yaml:"interval"`
		// OfflineCap bounds the passive income credited for time the
		// process was not running. Zero disables offline income.
		OfflineCap time.Duration `yaml:"offline_cap"`
	} `yaml:"tick"`
	Session struct {
		StateFile string `yaml:"state_file"`
	} `yaml:"session"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Catalog struct {
		Path string `yaml:"path"`
	} `yaml:"catalog"`
	Clickers []ClickerConfig `yaml:"clickers"`
}

// ClickerConfig binds a click source name to a currency.
type ClickerConfig struct {
	Name     string  `yaml:"name"`
	Currency string  `yaml:"currency"`
	PerClick float64 `yaml:"per_click"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		cfg.HTTP.Addr = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("STATE_FILE"); v != "" {
		cfg.Session.StateFile = v
	}
	if v := os.Getenv("CATALOG_PATH"); v != "" {
		cfg.Catalog.Path = v
	}
	if v := os.Getenv("TICK_CRON"); v != "" {
		cfg.Schedule.TickCron = v
	}

	// Defaults
	if cfg.HTTP.Addr == "" {
		cfg.HTTP.Addr = ":8080"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Schedule.TickCron == "" {
		cfg.Schedule.TickCron = "@every 1s"
	}
	if cfg.Schedule.AutosaveCron == "" {
		cfg.Schedule.AutosaveCron = "@every 30s"
	}
	if cfg.Schedule.SnapshotCron == "" {
		cfg.Schedule.SnapshotCron = "@every 1m"
	}
	if cfg.Tick.Interval == 0 {
		cfg.Tick.Interval = time.Second
	}
	if cfg.Session.StateFile == "" {
		cfg.Session.StateFile = "data/session.json"
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/clicker.db"
	}
	if cfg.Catalog.Path == "" {
		cfg.Catalog.Path = "configs/upgrades.yaml"
	}
	if len(cfg.Clickers) == 0 {
		cfg.Clickers = []ClickerConfig{
			{Name: "Gingerbread", Currency: "GingerBread", PerClick: 1},
			{Name: "Candy Cane", Currency: "CandyCane", PerClick: 1},
			{Name: "Cookie", Currency: "Cookie", PerClick: 1},
		}
	}

	return cfg, nil
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	if c.Tick.Interval <= 0 {
		return fmt.Errorf("tick.interval must be positive")
	}
	if c.Tick.OfflineCap < 0 {
		return fmt.Errorf("tick.offline_cap must not be negative")
	}
	switch c.Log.Format {
	case "json", "text":
	default:
		return fmt.Errorf("log.format must be json or text, got %q", c.Log.Format)
	}
	if c.Catalog.Path == "" {
		return fmt.Errorf("catalog.path is required")
	}
	if _, err := c.Sources(); err != nil {
		return err
	}
	return nil
}

// Sources converts the clickers section into click sources.
func (c *Config) Sources() ([]clicker.Source, error) {
	out := make([]clicker.Source, 0, len(c.Clickers))
	for i, cc := range c.Clickers {
		if cc.Name == "" {
			return nil, fmt.Errorf("clickers[%d].name is required", i)
		}
		cur, err := model.ParseCurrency(cc.Currency)
		if err != nil {
			return nil, fmt.Errorf("clickers[%d].currency: %w", i, err)
		}
		if cc.PerClick < 0 {
			return nil, fmt.Errorf("clickers[%d].per_click must not be negative", i)
		}
		out = append(out, clicker.Source{Name: cc.Name, Currency: cur, BasePerClick: cc.PerClick})
	}
	return out, nil
}

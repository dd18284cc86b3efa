package config

import (
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Session  SessionConfig  `yaml:"session"`
	Logger   LoggerConfig   `yaml:"logger"`
	Jobs     JobsConfig     `yaml:"jobs"`
	Cache    CacheConfig    `yaml:"cache"`
}

type ServerConfig struct {
	Port            string        `yaml:"port"`
	Mode            string        `yaml:"mode"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Driver          string        `yaml:"driver"` // postgres or sqlite
	DSN             string        `yaml:"dsn"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

type SessionConfig struct {
	Name   string `yaml:"name"`
	Secret string `yaml:"secret"`
	MaxAge int    `yaml:"max_age"` // seconds
}

type LoggerConfig struct {
	Level string `yaml:"level"`
}

type JobsConfig struct {
	ReportSweepSchedule string `yaml:"report_sweep_schedule"`
}

type CacheConfig struct {
	Size int           `yaml:"size"`
	TTL  time.Duration `yaml:"ttl"`
}

// Default returns the configuration used when no file or env is present.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            "8080",
			Mode:            "debug",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			Driver:          "postgres",
			DSN:             "host=localhost user=postgres password=postgres dbname=noticeboard port=5432 sslmode=disable TimeZone=UTC",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Session: SessionConfig{
			Name:   "noticeboard_session",
			Secret: "secret_key_change_me",
			MaxAge: 7 * 24 * 3600,
		},
		Logger: LoggerConfig{Level: "info"},
		Jobs:   JobsConfig{ReportSweepSchedule: "@every 10m"},
		Cache:  CacheConfig{Size: 500, TTL: 10 * time.Minute},
	}
}

// Load reads path (if it exists) over the defaults, then applies env overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if data, err := os.ReadFile(path); err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, err
			}
		}
	}

	applyEnv(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if port := os.Getenv("PORT"); port != "" {
		cfg.Server.Port = port
	}
	if mode := os.Getenv("GIN_MODE"); mode != "" {
		cfg.Server.Mode = mode
	}
	if driver := os.Getenv("DB_DRIVER"); driver != "" {
		cfg.Database.Driver = driver
	}
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		cfg.Database.DSN = dsn
	}
	if n := os.Getenv("DB_MAX_OPEN_CONNS"); n != "" {
		if v, err := strconv.Atoi(n); err == nil {
			cfg.Database.MaxOpenConns = v
		}
	}
	if secret := os.Getenv("SESSION_SECRET"); secret != "" {
		cfg.Session.Secret = secret
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		cfg.Logger.Level = level
	}
	if schedule := os.Getenv("REPORT_SWEEP_SCHEDULE"); schedule != "" {
		cfg.Jobs.ReportSweepSchedule = schedule
	}
}

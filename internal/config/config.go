package config

import (
	"errors"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Bank struct {
		TTL  string `yaml:"ttl"`
		File string `yaml:"file"`
	} `yaml:"bank"`
	Exam struct {
		Duration      string  `yaml:"duration"`
		PassThreshold float64 `yaml:"passThreshold"`
		DailyTests    int     `yaml:"dailyTests"`
		IdleTimeout   string  `yaml:"idleTimeout"`
		SweepInterval string  `yaml:"sweepInterval"`
	} `yaml:"exam"`
	CORS struct {
		AllowedOrigins []string `yaml:"allowedOrigins"`
	} `yaml:"cors"`
}

// Defaults returns the configuration used when no file is present.
func Defaults() Config {
	cfg := Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads YAML config from path. A missing file yields Defaults.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Defaults(), nil
	}
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = "8080"
	}
	if c.Redis.TTL == "" {
		c.Redis.TTL = "2h"
	}
	if c.Bank.TTL == "" {
		c.Bank.TTL = "10m"
	}
	if c.Exam.Duration == "" {
		c.Exam.Duration = "90m"
	}
	if c.Exam.PassThreshold <= 0 || c.Exam.PassThreshold > 1 {
		c.Exam.PassThreshold = 0.5
	}
	if c.Exam.DailyTests <= 0 {
		c.Exam.DailyTests = 3
	}
	if c.Exam.IdleTimeout == "" {
		c.Exam.IdleTimeout = "2h"
	}
	if c.Exam.SweepInterval == "" {
		c.Exam.SweepInterval = "1m"
	}
	if len(c.CORS.AllowedOrigins) == 0 {
		c.CORS.AllowedOrigins = []string{"http://localhost:3000"}
	}
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App struct {
		Name string `yaml:"name" env:"APP_NAME"`
		Env  string `yaml:"env" env:"APP_ENV"`
	} `yaml:"app"`
	Server struct {
		Port string `yaml:"port" env:"PORT"`
	} `yaml:"server"`
	Redis struct {
		Addr     string `yaml:"addr" env:"REDIS_ADDR"`
		Password string `yaml:"password" env:"REDIS_PASSWORD"`
		DB       int    `yaml:"db" env:"REDIS_DB"`
		TTL      string `yaml:"ttl" env:"REDIS_TTL"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url" env:"POSTGRES_URL"`
	} `yaml:"postgres"`
	Quiz struct {
		TTL       string `yaml:"ttl" env:"QUIZ_TTL"`
		DefaultID string `yaml:"defaultId" env:"QUIZ_DEFAULT_ID"`
		// File optionally points at a YAML or JSON question set served alongside the bundled ones.
		File string `yaml:"file" env:"QUIZ_FILE"`
	} `yaml:"quiz"`
	Handoff struct {
		TTL string `yaml:"ttl" env:"HANDOFF_TTL"`
	} `yaml:"handoff"`
}

// Load reads YAML config from path, then applies environment overrides.
// A missing file is not an error; defaults and the environment still apply.
func Load(path string) (Config, error) {
	cfg := defaults()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return cfg, err
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// LoadDotEnv loads variables from a .env file if one exists; existing variables win.
func LoadDotEnv(filenames ...string) error {
	if len(filenames) == 0 {
		filenames = []string{".env"}
	}
	for _, name := range filenames {
		if err := godotenv.Load(name); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", name, err)
		}
	}
	return nil
}

func defaults() Config {
	var cfg Config
	cfg.App.Name = "timed-quiz-service"
	cfg.App.Env = "development"
	cfg.Server.Port = "8080"
	cfg.Quiz.TTL = "10m"
	cfg.Quiz.DefaultID = "quiz20"
	cfg.Handoff.TTL = "1h"
	return cfg
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

// Package config defines environment configuration structs and loaders.
package config

import (
	"runtime"

	"github.com/caarlos0/env/v11"
)

// AppConfig holds CLI settings. ENVIRONMENT is read by the logger, not here.
type AppConfig struct {
	ErrmagEnvConfig
}

func LoadConfig() (*AppConfig, error) {
	cfg := &AppConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	if cfg.Parallelism <= 0 {
		cfg.Parallelism = runtime.GOMAXPROCS(0)
	}
	return cfg, nil
}

// ErrmagEnvConfig configures the error magnitude CLI.
type ErrmagEnvConfig struct {
	InputPath   string `env:"ERRMAG_INPUT"`
	OutputPath  string `env:"ERRMAG_OUTPUT"`
	Parallelism int    `env:"ERRMAG_PARALLELISM" envDefault:"1"`
	Plot        bool   `env:"ERRMAG_PLOT" envDefault:"true"`
}

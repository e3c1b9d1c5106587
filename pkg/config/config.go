// Package config loads run settings from defaults, an optional YAML file and
// REVIEWML_* environment variables, in that order of precedence.
package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sethvargo/go-envconfig"
	"gopkg.in/yaml.v3"

	"reviewml/pkg/data"
	"reviewml/pkg/experiment"
	"reviewml/pkg/model"
	"reviewml/pkg/sampling"
)

// EnvPrefix prefixes every environment variable Load reads.
const EnvPrefix = "REVIEWML_"

// Config is the file and environment form of a run.
type Config struct {
	Input           string        `yaml:"input" env:"INPUT,overwrite"`
	Output          string        `yaml:"output" env:"OUTPUT,overwrite"`
	Dedupe          bool          `yaml:"dedupe" env:"DEDUPE,overwrite"`
	K               int           `yaml:"k" env:"K,overwrite" validate:"gte=2,lte=100"`
	Mode            string        `yaml:"mode" env:"MODE,overwrite" validate:"oneof=uniform balanced micro-balanced"`
	Seed            uint64        `yaml:"seed" env:"SEED,overwrite"`
	TestRatio       float64       `yaml:"test_ratio" env:"TEST_RATIO,overwrite" validate:"gt=0,lt=1"`
	Solver          string        `yaml:"solver" env:"SOLVER,overwrite" validate:"oneof=newton irls sgd"`
	Workers         int           `yaml:"workers" env:"WORKERS,overwrite" validate:"gte=0"`
	CellTimeout     time.Duration `yaml:"cell_timeout" env:"CELL_TIMEOUT,overwrite" validate:"gte=0"`
	ContinueOnError bool          `yaml:"continue_on_error" env:"CONTINUE_ON_ERROR,overwrite"`
	Log             Log           `yaml:"log" env:",prefix=LOG_"`
}

// Log selects the slog handler.
type Log struct {
	Level  string `yaml:"level" env:"LEVEL,overwrite" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" env:"FORMAT,overwrite" validate:"oneof=text json"`
}

// Default returns the settings used when nothing overrides them.
func Default() Config {
	return Config{
		K:         5,
		Mode:      "uniform",
		Seed:      1,
		TestRatio: 0.25,
		Solver:    "newton",
		Log:       Log{Level: "info", Format: "text"},
	}
}

var validate = validator.New()

// Load starts from Default, applies the YAML file at path when path is not
// empty, then REVIEWML_* variables from l (the process environment when l is
// nil), and validates the result.
func Load(ctx context.Context, path string, l envconfig.Lookuper) (*Config, error) {
	cfg := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return nil, fmt.Errorf("%w: parsing %s: %v", data.ErrInvalidConfig, path, err)
		}
	}
	if l == nil {
		l = envconfig.OsLookuper()
	}
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: envconfig.PrefixLookuper(EnvPrefix, l),
	}); err != nil {
		return nil, fmt.Errorf("%w: environment: %v", data.ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field ranges and enumerations.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return fmt.Errorf("%w: %s fails %q (got %v)", data.ErrInvalidConfig, fe.Namespace(), fe.Tag(), fe.Value())
	}
	return fmt.Errorf("%w: %v", data.ErrInvalidConfig, err)
}

// LoadOptions returns the CSV loader options c selects.
func (c *Config) LoadOptions() data.LoadOptions {
	return data.LoadOptions{DropDuplicates: c.Dedupe}
}

// Experiment converts c to a driver configuration.
func (c *Config) Experiment() (experiment.Config, error) {
	mode, err := sampling.ParseMode(c.Mode)
	if err != nil {
		return experiment.Config{}, err
	}
	solver, err := model.ParseSolver(c.Solver)
	if err != nil {
		return experiment.Config{}, err
	}
	return experiment.Config{
		K:               c.K,
		Mode:            mode,
		Seed:            c.Seed,
		TestRatio:       c.TestRatio,
		Solver:          solver,
		Workers:         c.Workers,
		CellTimeout:     c.CellTimeout,
		ContinueOnError: c.ContinueOnError,
	}, nil
}

// Package config loads run settings from an INI file.
package config

import (
	"fmt"
	"math"
	"strings"

	"gopkg.in/ini.v1"

	"genenet/internal/evo"
	"genenet/internal/nn"
)

// Config is the full set of run settings. Keys missing from the file keep their defaults.
type Config struct {
	Population PopulationConfig
	Rates      RatesConfig
	Run        RunConfig
	Store      StoreConfig
}

type PopulationConfig struct {
	Size     int   `ini:"size"`
	Topology []int `ini:"topology" delim:" "` // space-separated layer widths
}

type RatesConfig struct {
	Selection    float64 `ini:"selection"`
	Elitism      float64 `ini:"elitism"`
	Reproduction float64 `ini:"reproduction"`
	Mutation     float64 `ini:"mutation"`
}

type RunConfig struct {
	Scape       string  `ini:"scape"`
	Generations int     `ini:"generations"`
	Seed        int64   `ini:"seed"` // 0 derives a seed from the clock
	Workers     int     `ini:"workers"`
	FitnessGoal float64 `ini:"fitness_goal"`
	Words       string  `ini:"words"` // optional word list for text-similarity
}

type StoreConfig struct {
	Kind   string `ini:"kind"`
	DBPath string `ini:"db_path"`
}

// Default returns the settings used when no file is given.
func Default() Config {
	rates := evo.DefaultRates()
	return Config{
		Population: PopulationConfig{Size: 100},
		Rates: RatesConfig{
			Selection:    rates.Selection,
			Elitism:      rates.Elitism,
			Reproduction: rates.Reproduction,
			Mutation:     rates.Mutation,
		},
		Run: RunConfig{
			Scape:       "xor",
			Generations: 100,
			FitnessGoal: math.Inf(1),
		},
		Store: StoreConfig{Kind: "memory", DBPath: "genenet.db"},
	}
}

// Load maps each section of the INI file at path over Default and validates the result.
func Load(path string) (Config, error) {
	file, err := ini.LoadSources(ini.LoadOptions{
		IgnoreInlineComment:         true,
		UnescapeValueCommentSymbols: true,
	}, path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to load config file '%s': %w", path, err)
	}

	cfg := Default()
	sections := []struct {
		name   string
		target any
	}{
		{"population", &cfg.Population},
		{"rates", &cfg.Rates},
		{"run", &cfg.Run},
		{"store", &cfg.Store},
	}
	for _, s := range sections {
		if err := file.Section(s.name).MapTo(s.target); err != nil {
			return Config{}, fmt.Errorf("failed to map [%s] section: %w", s.name, err)
		}
	}

	cfg.Run.Scape = strings.TrimSpace(cfg.Run.Scape)
	cfg.Store.Kind = strings.ToLower(strings.TrimSpace(cfg.Store.Kind))
	if cfg.Run.Scape == "" {
		cfg.Run.Scape = "xor"
	}
	if cfg.Store.Kind == "" {
		cfg.Store.Kind = "memory"
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the settings that do not depend on the chosen scape.
// An empty topology means the scape's suggested one.
func (c Config) Validate() error {
	if len(c.Population.Topology) > 0 {
		if err := nn.ValidateTopology(c.Population.Topology); err != nil {
			return fmt.Errorf("config error: %w", err)
		}
	}
	if err := c.EvoRates().Validate(); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if c.Population.Size < 1 {
		return fmt.Errorf("config error: %w: population size must be positive", nn.ErrConfiguration)
	}
	if c.Run.Generations < 1 {
		return fmt.Errorf("config error: %w: generations must be positive", nn.ErrConfiguration)
	}
	if c.Run.Workers < 0 {
		return fmt.Errorf("config error: %w: workers cannot be negative", nn.ErrConfiguration)
	}
	switch c.Store.Kind {
	case "memory", "sqlite":
	default:
		return fmt.Errorf("config error: %w: unsupported store kind %q", nn.ErrConfiguration, c.Store.Kind)
	}
	return nil
}

func (c Config) EvoRates() evo.Rates {
	return evo.Rates{
		Selection:    c.Rates.Selection,
		Elitism:      c.Rates.Elitism,
		Reproduction: c.Rates.Reproduction,
		Mutation:     c.Rates.Mutation,
	}
}

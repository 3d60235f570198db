// Package config loads the optional routefinder.yaml configuration
// file via viper, layered beneath CLI flags: flags passed explicitly on
// the command line always win over the config file, which in turn wins
// over the built-in defaults below.
package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/spf13/viper"
)

// Search holds the tunables for the beam search engine and seed
// generation. Field names match routefinder.yaml keys.
type Search struct {
	BeamWidth       int     `mapstructure:"beam_width"`
	SampleStepM     float64 `mapstructure:"sample_step_m"`
	RevisitPenalty  float64 `mapstructure:"revisit_penalty"`
	DefaultRadiusM  float64 `mapstructure:"default_radius_m"`
	RequestTimeoutS float64 `mapstructure:"request_timeout_s"`
}

// Defaults returns the built-in configuration used when no config file
// is present and no flag overrides a field.
func Defaults() Search {
	return Search{
		BeamWidth:       64,
		SampleStepM:     0, // 0 means profile.Sample derives a step from the segment length
		RevisitPenalty:  0,
		DefaultRadiusM:  50,
		RequestTimeoutS: 30, // a wide beam width against a large graph can take tens of seconds
	}
}

// Load reads path (a YAML file) if it exists and merges it over
// Defaults. A missing path is not an error — the caller runs on
// defaults plus whatever flags it applies afterward.
func Load(path string) (Search, error) {
	cfg := Defaults()
	if path == "" {
		return cfg, nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		// An explicit path that does not exist surfaces as a wrapped
		// fs.ErrNotExist rather than viper.ConfigFileNotFoundError.
		if _, ok := err.(viper.ConfigFileNotFoundError); ok || errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}

	v.SetDefault("beam_width", cfg.BeamWidth)
	v.SetDefault("sample_step_m", cfg.SampleStepM)
	v.SetDefault("revisit_penalty", cfg.RevisitPenalty)
	v.SetDefault("default_radius_m", cfg.DefaultRadiusM)
	v.SetDefault("request_timeout_s", cfg.RequestTimeoutS)

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("config: unmarshal %s: %w", path, err)
	}
	return cfg, nil
}

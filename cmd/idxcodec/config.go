package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	idxcodec "github.com/reoring/idxcodec"
)

const (
	defaultFormat  = "cbor"
	defaultUnknown = "skip"
)

// Config holds the settings shared by all subcommands. Values come from
// flags, IDXCODEC_* environment variables, and idxcodec.yaml, in that order.
type Config struct {
	Format  string `mapstructure:"format"`
	Unknown string `mapstructure:"unknown"`
	Verbose bool   `mapstructure:"verbose"`
	Output  string `mapstructure:"output"`
}

// loadConfig reads idxcodec.yaml from the working directory, or path when
// set. A missing default config file is not an error.
func loadConfig(v *viper.Viper, path string) (Config, error) {
	v.SetDefault("format", defaultFormat)
	v.SetDefault("unknown", defaultUnknown)
	v.SetDefault("verbose", false)
	v.SetDefault("output", "")

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("idxcodec")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("IDXCODEC")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found - use defaults
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := validateConfig(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func validateConfig(cfg *Config) error {
	cfg.Format = strings.ToLower(strings.TrimSpace(cfg.Format))
	if _, ok := idxcodec.LookupFormat(cfg.Format); !ok {
		return fmt.Errorf("unknown format %q (available: %s)", cfg.Format, strings.Join(idxcodec.Formats(), ", "))
	}
	if _, ok := idxcodec.ParseUnknownPolicy(cfg.Unknown); !ok {
		return fmt.Errorf("unknown-key policy must be skip or strict, got %q", cfg.Unknown)
	}
	return nil
}

// format returns the configured wire format.
func (c Config) format() idxcodec.Format {
	f, _ := idxcodec.LookupFormat(c.Format)
	return f
}

// options returns codec options for the configured policy.
func (a *app) options() idxcodec.Options {
	p, _ := idxcodec.ParseUnknownPolicy(a.cfg.Unknown)
	return idxcodec.Options{Unknown: p, Logger: a.log}
}

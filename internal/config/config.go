// Copyright 2022 Sylvain Müller. All rights reserved.
// Mount of this source code is governed by a Apache-2.0 license that can be found
// at https://github.com/tigerwill90/roadrunner/blob/master/LICENSE.txt.

package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/tigerwill90/roadrunner"
)

// EnvPrefix is the prefix of the environment variables overriding the configuration, e.g. ROADRUNNER_LOG_LEVEL.
const EnvPrefix = "ROADRUNNER"

var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds the route table and the router settings.
type Config struct {
	Router   RouterConfig  `mapstructure:"router"`
	LogLevel string        `mapstructure:"log_level"`
	Strict   bool          `mapstructure:"strict"`
	Routes   []RouteConfig `mapstructure:"routes"`
}

// RouterConfig holds the global options of the router.
type RouterConfig struct {
	IgnoreTrailingSlash bool `mapstructure:"ignore_trailing_slash"`
	SegmentWildcards    bool `mapstructure:"segment_wildcards"`
	ChangingParamNames  bool `mapstructure:"changing_param_names"`
	MaxParams           int  `mapstructure:"max_params"`
	MaxParamKeyBytes    int  `mapstructure:"max_param_key_bytes"`
}

// RouteConfig is a single entry of the route table.
type RouteConfig struct {
	Bucket             string `mapstructure:"bucket"`
	Path               string `mapstructure:"path"`
	Value              string `mapstructure:"value"`
	AllowEmptyCatchAll bool   `mapstructure:"allow_empty_catch_all"`
}

// flagKeys maps command line flags to configuration keys.
var flagKeys = map[string]string{
	"ignore-trailing-slash": "router.ignore_trailing_slash",
	"segment-wildcards":     "router.segment_wildcards",
	"changing-param-names":  "router.changing_param_names",
	"strict":                "strict",
	"log-level":             "log_level",
}

// Load reads the configuration from path, environment variables and flags, in increasing order of precedence.
// An empty path skips the configuration file. Only the flags of fs that were explicitly set take precedence over the
// file. fs may be nil.
func Load(path string, fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if fs != nil {
		for name, key := range flagKeys {
			if f := fs.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("router.ignore_trailing_slash", false)
	v.SetDefault("router.segment_wildcards", false)
	v.SetDefault("router.changing_param_names", false)
	v.SetDefault("router.max_params", 255)
	v.SetDefault("router.max_param_key_bytes", 255)
	v.SetDefault("log_level", "info")
	v.SetDefault("strict", false)
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if _, err := c.Level(); err != nil {
		return err
	}
	if c.Router.MaxParams < 1 {
		return fmt.Errorf("%w: max_params must be greater than zero", ErrInvalidConfig)
	}
	if c.Router.MaxParamKeyBytes < 1 {
		return fmt.Errorf("%w: max_param_key_bytes must be greater than zero", ErrInvalidConfig)
	}
	for i, rte := range c.Routes {
		if rte.Bucket == "" {
			return fmt.Errorf("%w: route %d: bucket is required", ErrInvalidConfig, i)
		}
		if rte.Path == "" {
			return fmt.Errorf("%w: route %d: path is required", ErrInvalidConfig, i)
		}
	}
	return nil
}

// Level returns the parsed log level.
func (c *Config) Level() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("%w: unknown log level %q", ErrInvalidConfig, c.LogLevel)
	}
	return lvl, nil
}

// Options returns the router options derived from the configuration.
func (c *Config) Options() []roadrunner.Option {
	return []roadrunner.Option{
		roadrunner.IgnoreTrailingSlash(c.Router.IgnoreTrailingSlash),
		roadrunner.WithSegmentWildcards(c.Router.SegmentWildcards),
		roadrunner.WithChangingParamNames(c.Router.ChangingParamNames),
		roadrunner.WithMaxRouteParams(c.Router.MaxParams),
		roadrunner.WithMaxRouteParamKeyBytes(c.Router.MaxParamKeyBytes),
	}
}

// RouteOptions returns the per-route options of rte.
func (rte RouteConfig) RouteOptions() []roadrunner.RouteOption {
	if rte.AllowEmptyCatchAll {
		return []roadrunner.RouteOption{roadrunner.AllowEmptyCatchAll()}
	}
	return nil
}

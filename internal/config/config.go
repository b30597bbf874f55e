// Package config loads weaver settings from weaver.config.yml, a .env file
// and WEAVER_ environment variables, in rising order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/simonhull/firebird-suite/weaver/internal/harness"
	"github.com/simonhull/firebird-suite/weaver/internal/logger"
	"github.com/simonhull/firebird-suite/weaver/internal/merge"
)

const (
	// FileName is the config file looked up in the working directory.
	FileName = "weaver.config.yml"
	// EnvPrefix prefixes environment overrides, e.g. WEAVER_LOG_LEVEL.
	EnvPrefix = "WEAVER"
)

// Config is the resolved configuration.
type Config struct {
	Catalog string      `mapstructure:"catalog"`
	Output  string      `mapstructure:"output"`
	Log     LogConfig   `mapstructure:"log"`
	Merge   MergeConfig `mapstructure:"merge"`
	Build   BuildConfig `mapstructure:"build"`

	// File is the config file that was read, empty when none was found.
	File string `mapstructure:"-"`
}

// LogConfig selects the logger level and encoding.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// MergeConfig tunes the merge engine.
type MergeConfig struct {
	CommentLeaders []string `mapstructure:"comment_leaders"`
	StripAnchors   bool     `mapstructure:"strip_anchors"`
	CheckSyntax    bool     `mapstructure:"check_syntax"`
}

// BuildConfig drives the validation harness and batch runs.
type BuildConfig struct {
	Timeout     time.Duration       `mapstructure:"timeout"`
	Concurrency int                 `mapstructure:"concurrency"`
	Toolchains  []harness.Toolchain `mapstructure:"toolchains"`
}

// Options locate the configuration.
type Options struct {
	File string // explicit config file; must exist
	Dir  string // directory searched for FileName and .env; defaults to "."
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("catalog", "templates")
	v.SetDefault("output", ".")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("merge.comment_leaders", []string{})
	v.SetDefault("merge.strip_anchors", false)
	v.SetDefault("merge.check_syntax", false)
	v.SetDefault("build.timeout", harness.DefaultTimeout)
	v.SetDefault("build.concurrency", 4)
	v.SetDefault("build.toolchains", []harness.Toolchain{})
}

// Load reads the configuration described by opts.
func Load(opts Options) (*Config, error) {
	dir := opts.Dir
	if dir == "" {
		dir = "."
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if opts.File != "" {
		v.SetConfigFile(opts.File)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", opts.File, err)
		}
	} else {
		v.SetConfigFile(filepath.Join(dir, FileName))
		if err := v.ReadInConfig(); err != nil && !notFound(err) {
			return nil, fmt.Errorf("failed to read %s: %w", FileName, err)
		}
	}

	if err := applyDotEnv(v, filepath.Join(dir, ".env")); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}
	if used := v.ConfigFileUsed(); used != "" {
		if _, err := os.Stat(used); err == nil {
			cfg.File = used
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func notFound(err error) bool {
	var vErr viper.ConfigFileNotFoundError
	return errors.As(err, &vErr) || errors.Is(err, os.ErrNotExist)
}

// applyDotEnv layers WEAVER_ variables from a .env file under the real
// environment. The process environment is left untouched.
func applyDotEnv(v *viper.Viper, path string) error {
	vars, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	for _, key := range v.AllKeys() {
		name := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		val, ok := vars[name]
		if !ok {
			continue
		}
		if _, set := os.LookupEnv(name); set {
			continue
		}
		v.Set(key, val)
	}
	return nil
}

// Validate checks values that would fail later in confusing ways.
func (c *Config) Validate() error {
	var errs []error
	if c.Build.Concurrency < 1 {
		errs = append(errs, fmt.Errorf("build.concurrency must be at least 1, got %d", c.Build.Concurrency))
	}
	if c.Build.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("build.timeout must be positive, got %s", c.Build.Timeout))
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format must be console or json, got %q", c.Log.Format))
	}
	for i, tc := range c.Build.Toolchains {
		if tc.Platform == "" {
			errs = append(errs, fmt.Errorf("build.toolchains[%d]: platform is required", i))
		}
		if len(tc.Build) == 0 && len(tc.Test) == 0 {
			errs = append(errs, fmt.Errorf("build.toolchains[%d]: no build or test command", i))
		}
	}
	return errors.Join(errs...)
}

// Syntax returns the merge marker syntax; no leaders means the defaults.
func (c *Config) Syntax() merge.Syntax {
	return merge.SyntaxFromLeaders(c.Merge.CommentLeaders)
}

// Toolchains returns the default toolchains with configured ones layered on
// top, keyed by platform.
func (c *Config) Toolchains() *harness.Registry {
	r := harness.NewRegistry(harness.DefaultToolchains()...)
	for _, tc := range c.Build.Toolchains {
		r.Register(tc)
	}
	return r
}

// LoggerOptions converts the log settings.
func (c *Config) LoggerOptions() logger.Options {
	return logger.Options{Level: logger.ParseLevel(c.Log.Level), Format: c.Log.Format}
}

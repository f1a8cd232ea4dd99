package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ostafen/bootinfo/internal/digest"
	"github.com/ostafen/bootinfo/internal/env"
	"github.com/ostafen/bootinfo/pkg/util/format"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds the settings shared by all commands.
type Config struct {
	HashDir       string `mapstructure:"hash_dir"`
	HashChunkSize string `mapstructure:"hash_chunk_size"`
	NoHash        bool   `mapstructure:"no_hash"`
	Parallel      bool   `mapstructure:"parallel"`
	Mmap          bool   `mapstructure:"mmap"`
	Segmented     bool   `mapstructure:"segmented"`
	Progress      bool   `mapstructure:"progress"`
	LogLevel      string `mapstructure:"log_level"`
	Decompress    string `mapstructure:"decompress"`
	DFXML         string `mapstructure:"dfxml"`
}

// flagKeys maps command line flags to configuration keys.
var flagKeys = map[string]string{
	"hash-dir":        "hash_dir",
	"hash-chunk-size": "hash_chunk_size",
	"no-hash":         "no_hash",
	"parallel":        "parallel",
	"mmap":            "mmap",
	"segmented":       "segmented",
	"progress":        "progress",
	"log-level":       "log_level",
	"decompress":      "decompress",
	"dfxml":           "dfxml",
}

// New returns a viper instance with defaults, environment lookup and
// the standard config file locations set up.
func New() *viper.Viper {
	v := viper.New()

	v.SetConfigName(env.AppName)
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/." + env.AppName)
	v.AddConfigPath("/etc/" + env.AppName)

	// Set defaults
	v.SetDefault("hash_dir", ".")
	v.SetDefault("hash_chunk_size", "4KB")
	v.SetDefault("no_hash", false)
	v.SetDefault("parallel", false)
	v.SetDefault("mmap", false)
	v.SetDefault("segmented", true)
	v.SetDefault("progress", false)
	v.SetDefault("log_level", "INFO")
	v.SetDefault("decompress", digest.CompressionNone)
	v.SetDefault("dfxml", "")

	// Allow environment variables
	v.SetEnvPrefix(strings.ToUpper(env.AppName))
	v.AutomaticEnv()

	return v
}

// BindFlags makes flags explicitly set on the command line take precedence
// over the config file and the environment.
func BindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	var errs []error
	flags.VisitAll(func(f *pflag.Flag) {
		if key, ok := flagKeys[f.Name]; ok {
			errs = append(errs, v.BindPFlag(key, f))
		}
	})
	return errors.Join(errs...)
}

// Load reads the config file, if any, and decodes the settings. An empty
// file means searching the standard locations, where a missing file is not an error.
func Load(v *viper.Viper, file string) (*Config, error) {
	if file != "" {
		v.SetConfigFile(file)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if _, err := c.ChunkSize(); err != nil {
		return err
	}

	switch strings.ToUpper(c.LogLevel) {
	case "DEBUG", "INFO", "WARN", "ERROR":
	default:
		return fmt.Errorf("invalid log level: %q", c.LogLevel)
	}

	switch c.Decompress {
	case digest.CompressionNone, digest.CompressionAuto, digest.CompressionGzip,
		digest.CompressionZstd, digest.CompressionBzip2:
	default:
		return fmt.Errorf("invalid decompress format: %q", c.Decompress)
	}
	return nil
}

// ChunkSize returns the hashing chunk size in bytes.
func (c *Config) ChunkSize() (int, error) {
	n, err := format.ParseBytes(c.HashChunkSize)
	if err != nil {
		return 0, fmt.Errorf("hash_chunk_size: %w", err)
	}
	if n <= 0 || n > 1<<30 {
		return 0, fmt.Errorf("hash_chunk_size out of range: %s", c.HashChunkSize)
	}
	return int(n), nil
}

package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/metaws/metaws/pkg/metaws"
)

// ErrConfigNotFound is returned when the config file does not exist.
// Callers can check for this with errors.Is(err, config.ErrConfigNotFound).
var ErrConfigNotFound = errors.New("config file not found")

// Environment variables that override file settings.
const (
	EnvWorkspace = "METAWS_WORKSPACE"
	EnvAddr      = "METAWS_ADDR"
	EnvVerbose   = "METAWS_VERBOSE"
)

const ConfigFileName = metaws.ConfigFileName

type ServerConfig struct {
	Addr         string `yaml:"addr"`
	MaxBodyBytes int64  `yaml:"max_body_bytes"`

	// Confine resolves every command path beneath the workspace.
	Confine bool `yaml:"confine"`

	// AllowedOrigins lists the browser origins allowed to invoke commands.
	// Requests without an Origin header are always allowed.
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type Config struct {
	Workspace  string       `yaml:"workspace"`
	Extensions []string     `yaml:"extensions"`
	Server     ServerConfig `yaml:"server"`
	Verbose    bool         `yaml:"verbose"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Workspace:  ".",
		Extensions: append([]string(nil), metaws.DefaultExtensions...),
		Server: ServerConfig{
			Addr:         metaws.DefaultServerAddr,
			MaxBodyBytes: metaws.DefaultMaxBodyBytes,
			Confine:      true,
		},
	}
}

// Load reads metaws.yaml from dir on top of the defaults.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads the config file at path on top of the defaults.
// Keys absent from the file keep their default values.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", metaws.ErrInvalidConfig, path, err)
	}
	return cfg, nil
}

// Resolve builds the effective configuration: defaults, then the config file,
// then .env and process environment overrides.
// An explicit configPath must exist; otherwise a missing metaws.yaml in dir
// is not an error.
func Resolve(configPath, dir string) (*Config, error) {
	_ = godotenv.Load(filepath.Join(dir, ".env"))

	var (
		cfg *Config
		err error
	)
	if configPath != "" {
		cfg, err = LoadFile(configPath)
		if errors.Is(err, ErrConfigNotFound) {
			return nil, fmt.Errorf("%w: %s: %v", metaws.ErrInvalidConfig, configPath, err)
		}
	} else {
		cfg, err = Load(dir)
		if errors.Is(err, ErrConfigNotFound) {
			cfg, err = Default(), nil
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", ConfigFileName, err)
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides settings from environment variables found by lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvWorkspace); ok && v != "" {
		c.Workspace = v
	}
	if v, ok := lookup(EnvAddr); ok && v != "" {
		c.Server.Addr = v
	}
	if v, ok := lookup(EnvVerbose); ok && v != "" {
		verbose, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q is not a boolean", metaws.ErrInvalidConfig, EnvVerbose, v)
		}
		c.Verbose = verbose
	}
	return nil
}

// Validate rejects settings no operation can work with.
func (c *Config) Validate() error {
	if len(c.Extensions) == 0 {
		return fmt.Errorf("%w: extensions must not be empty", metaws.ErrInvalidConfig)
	}
	for _, ext := range c.Extensions {
		trimmed := strings.TrimPrefix(ext, ".")
		if trimmed == "" || strings.ContainsAny(trimmed, `./\`) {
			return fmt.Errorf("%w: invalid extension %q", metaws.ErrInvalidConfig, ext)
		}
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("%w: server.addr must not be empty", metaws.ErrInvalidConfig)
	}
	if c.Server.MaxBodyBytes <= 0 {
		return fmt.Errorf("%w: server.max_body_bytes must be positive", metaws.ErrInvalidConfig)
	}
	for _, origin := range c.Server.AllowedOrigins {
		u, err := url.Parse(origin)
		if err != nil || u.Scheme == "" || u.Host == "" || (u.Path != "" && u.Path != "/") {
			return fmt.Errorf("%w: invalid server.allowed_origins entry %q", metaws.ErrInvalidConfig, origin)
		}
	}
	return nil
}

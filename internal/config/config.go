package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config defines server configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Transport TransportConfig `yaml:"transport"`
	DB        DBConfig        `yaml:"db"`
	Log       LogConfig       `yaml:"log"`
	Registry  RegistryConfig  `yaml:"registry"`
	Auth      AuthConfig      `yaml:"auth"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// TransportConfig selects how the MCP server is exposed.
type TransportConfig struct {
	Mode string `yaml:"mode"` // "stdio" | "http"
}

type DBConfig struct {
	Path string `yaml:"path"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type RegistryConfig struct {
	// Admin is the only identity allowed to set the oracle. Empty allows any
	// authenticated caller to configure it.
	Admin string `yaml:"admin"`
}

type AuthConfig struct {
	Enabled bool `yaml:"enabled"`
	// LocalIdentity is the caller used when auth is disabled or over stdio.
	LocalIdentity string `yaml:"local_identity"`
	// Tokens maps sha256 hex digests of bearer tokens to identities.
	Tokens map[string]string `yaml:"tokens"`
}

const (
	TransportStdio = "stdio"
	TransportHTTP  = "http"
)

// Load reads configuration from the YAML file named by ESCROW_CONFIG_PATH, if any,
// and environment variables.
func Load() (Config, error) {
	return LoadFrom(os.Getenv("ESCROW_CONFIG_PATH"))
}

// LoadFrom reads configuration from an optional YAML file and environment variables.
// Environment variables take precedence over the file.
func LoadFrom(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if host := os.Getenv("ESCROW_SERVER_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if portStr := os.Getenv("ESCROW_SERVER_PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return Config{}, fmt.Errorf("invalid ESCROW_SERVER_PORT: %w", err)
		}
		cfg.Server.Port = port
	}
	if mode := os.Getenv("ESCROW_TRANSPORT"); mode != "" {
		cfg.Transport.Mode = mode
	}
	if dbPath := os.Getenv("ESCROW_DB_PATH"); dbPath != "" {
		cfg.DB.Path = dbPath
	}
	if level := os.Getenv("ESCROW_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	if adminID := os.Getenv("ESCROW_ADMIN"); adminID != "" {
		cfg.Registry.Admin = adminID
	}
	if local := os.Getenv("ESCROW_LOCAL_IDENTITY"); local != "" {
		cfg.Auth.LocalIdentity = local
	}
	if enabled := os.Getenv("ESCROW_AUTH_ENABLED"); enabled != "" {
		v, err := strconv.ParseBool(enabled)
		if err != nil {
			return Config{}, fmt.Errorf("invalid ESCROW_AUTH_ENABLED: %w", err)
		}
		cfg.Auth.Enabled = v
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Transport: TransportConfig{
			Mode: TransportStdio,
		},
		DB: DBConfig{
			Path: "escrow.db",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Validate rejects configurations the server cannot start with.
func (c Config) Validate() error {
	switch c.Transport.Mode {
	case TransportStdio, TransportHTTP:
	default:
		return fmt.Errorf("invalid transport mode %q: must be stdio or http", c.Transport.Mode)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q", c.Log.Level)
	}
	if c.DB.Path == "" {
		return fmt.Errorf("db path is required")
	}
	if c.Auth.Enabled && len(c.Auth.Tokens) == 0 {
		return fmt.Errorf("auth is enabled but no tokens are configured")
	}
	return nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

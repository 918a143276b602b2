// Package config resolves runtime settings from defaults, the config file,
// MEDSCORE_ environment variables, and bound flags.
package config

import (
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/dshills/medscore/internal/logging"
	"github.com/spf13/viper"
)

// Output formats.
const (
	OutputTable    = "table"
	OutputJSON     = "json"
	OutputMarkdown = "md"
)

// Color modes.
const (
	ColorAuto = "auto"
	ColorYes  = "yes"
	ColorNo   = "no"
)

// Defaults.
const (
	DefaultLogLevel    = "info"
	DefaultLogFormat   = "text"
	DefaultAddr        = ":8080"
	DefaultMetricsAddr = ":9090"
	EnvPrefix          = "MEDSCORE"
	FileName           = ".medscore"
)

// RawInput holds the resolved values before validation.
type RawInput struct {
	LogLevel  string         `mapstructure:"log-level"`
	LogFormat string         `mapstructure:"log-format"`
	Output    string         `mapstructure:"output"`
	Color     string         `mapstructure:"color"`
	Redact    bool           `mapstructure:"redact"`
	Server    ServerRawInput `mapstructure:"server"`
}

// ServerRawInput holds the API listener settings.
type ServerRawInput struct {
	Addr        string `mapstructure:"addr"`
	MetricsAddr string `mapstructure:"metrics-addr"`
}

// Config is the validated runtime configuration.
type Config struct {
	Logging logging.Config
	Output  string
	Color   string
	Redact  bool
	Server  Server
}

// Server holds the API listener addresses. An empty MetricsAddr disables
// the metrics listener.
type Server struct {
	Addr        string
	MetricsAddr string
}

// Init points v at the config file and environment.
// An empty file searches for .medscore.yaml in the working and home directories.
func Init(v *viper.Viper, file string) {
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	SetDefaults(v)
}

// SetDefaults registers every key with its default value.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("log-level", DefaultLogLevel)
	v.SetDefault("log-format", DefaultLogFormat)
	v.SetDefault("output", OutputTable)
	v.SetDefault("color", ColorAuto)
	v.SetDefault("redact", true)
	v.SetDefault("server.addr", DefaultAddr)
	v.SetDefault("server.metrics-addr", DefaultMetricsAddr)
}

// Load reads the config file if present, then unmarshals and validates.
func Load(v *viper.Viper) (*Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config.Load: reading config file: %w", err)
		}
	}

	var raw RawInput
	if err := v.Unmarshal(&raw); err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	return ProcessAndValidate(&raw)
}

// ProcessAndValidate normalizes raw values and rejects invalid ones.
func ProcessAndValidate(raw *RawInput) (*Config, error) {
	cfg := &Config{
		Logging: logging.Config{
			Level:  strings.ToLower(strings.TrimSpace(raw.LogLevel)),
			Format: strings.ToLower(strings.TrimSpace(raw.LogFormat)),
		},
		Output: strings.ToLower(strings.TrimSpace(raw.Output)),
		Color:  strings.ToLower(strings.TrimSpace(raw.Color)),
		Redact: raw.Redact,
		Server: Server{
			Addr:        strings.TrimSpace(raw.Server.Addr),
			MetricsAddr: strings.TrimSpace(raw.Server.MetricsAddr),
		},
	}

	if !logging.ValidLevel(cfg.Logging.Level) {
		return nil, fmt.Errorf("invalid log-level %q: must be debug, info, warn, or error", raw.LogLevel)
	}
	switch cfg.Logging.Format {
	case "text", "json":
	default:
		return nil, fmt.Errorf("invalid log-format %q: must be text or json", raw.LogFormat)
	}
	switch cfg.Output {
	case OutputTable, OutputJSON, OutputMarkdown:
	default:
		return nil, fmt.Errorf("invalid output %q: must be table, json, or md", raw.Output)
	}
	switch cfg.Color {
	case ColorAuto, ColorYes, ColorNo:
	default:
		return nil, fmt.Errorf("invalid color %q: must be auto, yes, or no", raw.Color)
	}
	if err := checkAddr("server.addr", cfg.Server.Addr, false); err != nil {
		return nil, err
	}
	if err := checkAddr("server.metrics-addr", cfg.Server.MetricsAddr, true); err != nil {
		return nil, err
	}
	if cfg.Server.MetricsAddr != "" && cfg.Server.MetricsAddr == cfg.Server.Addr {
		return nil, fmt.Errorf("server.metrics-addr must differ from server.addr (%s)", cfg.Server.Addr)
	}
	return cfg, nil
}

func checkAddr(key, addr string, optional bool) error {
	if addr == "" {
		if optional {
			return nil
		}
		return fmt.Errorf("%s is required", key)
	}
	if _, _, err := net.SplitHostPort(addr); err != nil {
		return fmt.Errorf("invalid %s %q: %w", key, addr, err)
	}
	return nil
}

// UseColor resolves the color mode; auto defers to whether output is a terminal.
func (c *Config) UseColor(isTerminal bool) bool {
	switch c.Color {
	case ColorYes:
		return true
	case ColorNo:
		return false
	default:
		return isTerminal
	}
}

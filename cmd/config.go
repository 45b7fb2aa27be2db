// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Kaz Walker, Thermoquad

package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// SerialConfig holds serial transport defaults
type SerialConfig struct {
	Port string `mapstructure:"port"`
	Baud int    `mapstructure:"baud"`
}

// WebSocketConfig holds WebSocket bridge defaults
type WebSocketConfig struct {
	URL         string `mapstructure:"url"`
	Username    string `mapstructure:"username"`
	NoSSLVerify bool   `mapstructure:"noSslVerify"`
}

// LumberjackConfig holds frame log rotation settings
type LumberjackConfig struct {
	Filename   string `mapstructure:"filename"`
	MaxSizeMB  int    `mapstructure:"maxSize"`
	MaxBackups int    `mapstructure:"maxBackups"`
	MaxAgeDays int    `mapstructure:"maxAge"`
	Compress   bool   `mapstructure:"compress"`
}

// LoggingConfig holds frame log settings
type LoggingConfig struct {
	Level  string           `mapstructure:"level"`
	Format string           `mapstructure:"format"`
	File   LumberjackConfig `mapstructure:"file"`
}

// MetricsConfig holds the Prometheus endpoint default
type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
}

// Config is the top level configuration
type Config struct {
	Serial    SerialConfig    `mapstructure:"serial"`
	WebSocket WebSocketConfig `mapstructure:"websocket"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

// appConfig is populated by initConfig before any command runs
var appConfig = defaultConfig()

func defaultConfig() *Config {
	return &Config{
		Serial: SerialConfig{Baud: 115200},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			File: LumberjackConfig{
				Filename:   "logs/ulescope-frames.log",
				MaxSizeMB:  50,
				MaxBackups: 5,
				MaxAgeDays: 14,
				Compress:   true,
			},
		},
	}
}

// loadConfig reads the config file and environment overrides. A missing
// config file is fine; defaults and ULESCOPE_* env variables still apply.
func loadConfig(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.SetConfigName("ulescope")
		v.SetConfigType("yaml")
	}

	setDefaults(v)

	v.SetEnvPrefix("ULESCOPE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("serial.port", "")
	v.SetDefault("serial.baud", 115200)

	v.SetDefault("websocket.url", "")
	v.SetDefault("websocket.username", "")
	v.SetDefault("websocket.noSslVerify", false)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.file.filename", "logs/ulescope-frames.log")
	v.SetDefault("logging.file.maxSize", 50)
	v.SetDefault("logging.file.maxBackups", 5)
	v.SetDefault("logging.file.maxAge", 14)
	v.SetDefault("logging.file.compress", true)

	v.SetDefault("metrics.addr", "")
}

// initConfig loads the config file and fills in connection flags the user
// did not set explicitly. Explicit flags always win.
func initConfig() {
	cfg, err := loadConfig(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(2)
	}
	appConfig = cfg

	flags := rootCmd.PersistentFlags()
	if portName == "" {
		portName = cfg.Serial.Port
	}
	if !flags.Changed("baud") && cfg.Serial.Baud > 0 {
		baudRate = cfg.Serial.Baud
	}
	if wsURL == "" {
		wsURL = cfg.WebSocket.URL
	}
	if wsUsername == "" {
		wsUsername = cfg.WebSocket.Username
	}
	if !flags.Changed("no-ssl-verify") {
		wsNoSSLVerify = cfg.WebSocket.NoSSLVerify
	}
}

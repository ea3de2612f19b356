// Package config provides functionality for managing configuration
// options for the client using command-line flags, an optional JSON
// config file, and environment variables. Precedence is flags, then
// file, then environment.
package config

import (
	"encoding/json"
	"flag"
	"log"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
)

// Options holds the configuration values for the client.
type Options struct {
	// BaseURL is the backend origin all API calls are made against.
	BaseURL string `json:"base_url" env:"GRUMPY_BASE_URL"`

	// Timeout bounds one request/response round-trip.
	Timeout time.Duration `json:"-" env:"GRUMPY_TIMEOUT"`

	// StorePath is where session credentials are persisted.
	StorePath string `json:"store_path" env:"GRUMPY_STORE_PATH"`

	// LogLevel sets the zap logging level.
	LogLevel string `json:"log_level" env:"GRUMPY_LOG_LEVEL"`

	// Config is the path to the config file.
	Config string `json:"-" env:"GRUMPY_CONFIG"`
}

// fileOptions mirrors Options for the JSON config file, with the
// timeout as a duration string.
type fileOptions struct {
	BaseURL   string `json:"base_url"`
	Timeout   string `json:"timeout"`
	StorePath string `json:"store_path"`
	LogLevel  string `json:"log_level"`
}

// options holds the current configuration values.
var options = &Options{}

// init initializes command-line flags and sets default values.
func init() {
	flag.StringVar(&options.BaseURL, "url", "http://127.0.0.1:8000", "backend base URL")
	flag.DurationVar(&options.Timeout, "timeout", 20*time.Second, "request timeout")
	flag.StringVar(&options.StorePath, "store", "grumpy-session.json", "path to the session file")
	flag.StringVar(&options.LogLevel, "log-level", "info", "log level (debug, info, warn, error)")
	flag.StringVar(&options.Config, "config", "", "path to config file")
	flag.StringVar(&options.Config, "c", "", "path to config file (shorthand)")
}

// Parse parses the command-line flags, config file, and environment
// variables and returns the resulting configuration.
func Parse() *Options {
	flag.Parse()
	if err := resolve(options); err != nil {
		log.Fatalf("error while resolving configuration: %v", err)
	}
	return options
}

// resolve applies the config file and environment overrides on top of
// the flag values already present in opts.
func resolve(opts *Options) error {
	if configPath := os.Getenv("GRUMPY_CONFIG"); configPath != "" {
		opts.Config = configPath
	}

	if opts.Config != "" {
		if _, err := os.Stat(opts.Config); err == nil {
			if err := applyFile(opts, opts.Config); err != nil {
				return err
			}
		}
	}

	return env.Parse(opts)
}

func applyFile(opts *Options, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var file fileOptions
	if err := json.Unmarshal(data, &file); err != nil {
		return err
	}
	if file.BaseURL != "" {
		opts.BaseURL = file.BaseURL
	}
	if file.StorePath != "" {
		opts.StorePath = file.StorePath
	}
	if file.LogLevel != "" {
		opts.LogLevel = file.LogLevel
	}
	if file.Timeout != "" {
		d, err := time.ParseDuration(file.Timeout)
		if err != nil {
			return err
		}
		opts.Timeout = d
	}
	return nil
}

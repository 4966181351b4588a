// Package config loads resumer settings from a YAML file.
//
// Example:
//
//	staging: ~/downloads/.staging
//	completed: ~/downloads
//	max_attempts: 20
//	retry_delay: 2s
//	timeout: 3m
//	headers:
//	  Authorization: Basic dXNlcjpwYXNz
//	urls:
//	  - https://example.com/a.bin
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/tanq16/resumer/internal/utils"
	"gopkg.in/yaml.v3"
)

const DefaultPath = "~/.config/resumer/config.yaml"

type Config struct {
	Staging       string            `yaml:"staging"`
	Completed     string            `yaml:"completed"`
	URLs          []string          `yaml:"urls"`
	URLList       string            `yaml:"urllist"`
	S3            string            `yaml:"s3"`
	S3Profile     string            `yaml:"s3_profile"`
	MaxAttempts   int               `yaml:"max_attempts"`
	RetryDelay    time.Duration     `yaml:"retry_delay"`
	MaxConcurrent int               `yaml:"max_concurrent"`
	Timeout       time.Duration     `yaml:"timeout"`
	UserAgent     string            `yaml:"user_agent"`
	Headers       map[string]string `yaml:"headers"`
	LogFile       string            `yaml:"log_file"`
}

func Default() Config {
	return Config{
		Staging:     utils.DefaultStagingDir,
		Completed:   utils.DefaultCompleteDir,
		MaxAttempts: utils.DefaultMaxAttempts,
		RetryDelay:  utils.DefaultRetryDelay,
		Timeout:     utils.DefaultTimeout,
		Headers:     map[string]string{},
	}
}

// Load reads path over the defaults. A missing file is only an error when
// required is set, so the default location can be probed silently.
func Load(path string, required bool) (Config, error) {
	cfg := Default()
	expanded, err := utils.ExpandPath(path)
	if err != nil {
		return cfg, err
	}
	data, err := os.ReadFile(expanded)
	if errors.Is(err, fs.ErrNotExist) && !required {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("error reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("error parsing config %s: %w", expanded, err)
	}
	return cfg, cfg.normalize()
}

func (c *Config) normalize() error {
	var err error
	if c.Staging, err = utils.ExpandPath(c.Staging); err != nil {
		return err
	}
	if c.Completed, err = utils.ExpandPath(c.Completed); err != nil {
		return err
	}
	if c.URLList, err = utils.ExpandPath(c.URLList); err != nil {
		return err
	}
	if c.LogFile, err = utils.ExpandPath(c.LogFile); err != nil {
		return err
	}
	return c.Validate()
}

func (c Config) Validate() error {
	if c.Staging == "" || c.Completed == "" {
		return errors.New("staging and completed directories are required")
	}
	if c.MaxAttempts < 1 {
		return fmt.Errorf("max_attempts must be at least 1, got %d", c.MaxAttempts)
	}
	if c.RetryDelay < 0 {
		return fmt.Errorf("retry_delay must not be negative, got %s", c.RetryDelay)
	}
	if c.MaxConcurrent < 0 {
		return fmt.Errorf("max_concurrent must not be negative, got %d", c.MaxConcurrent)
	}
	return nil
}

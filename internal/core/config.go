package core

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds runtime settings. Values come from Default, then the YAML
// file, then GARMIN_* environment variables, then command-line flags.
type Config struct {
	Upstream UpstreamConfig `yaml:"upstream"`
	Server   ServerConfig   `yaml:"server"`
	LogLevel string         `yaml:"log_level"`
	Timezone string         `yaml:"timezone"`
	TokenDB  string         `yaml:"token_db"`
}

// UpstreamConfig configures the Garmin Connect client.
type UpstreamConfig struct {
	APIBaseURL     string        `yaml:"api_base_url"`
	SSOBaseURL     string        `yaml:"sso_base_url"`
	ConsumerKey    string        `yaml:"consumer_key"`
	ConsumerSecret string        `yaml:"consumer_secret"`
	Timeout        time.Duration `yaml:"timeout"`
	MaxRetries     int           `yaml:"max_retries"`
}

// ServerConfig configures the MCP HTTP listener.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Upstream: UpstreamConfig{
			APIBaseURL:     APIBaseURL,
			SSOBaseURL:     SSOBaseURL,
			ConsumerKey:    "fc3e99d2-118c-44b8-8ae3-03370dde24c0",
			ConsumerSecret: "E08WAR897WEy2knn7aFBrvegVAf0AFdWBBF",
			Timeout:        60 * time.Second,
			MaxRetries:     3,
		},
		Server: ServerConfig{
			Host: DefaultHTTPHost,
			Port: DefaultHTTPPort,
		},
		LogLevel: "info",
		Timezone: DefaultTZ,
		TokenDB:  DefaultTokenDBPath(),
	}
}

// Load reads the YAML file at path on top of Default and applies environment
// overrides. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return Config{}, fmt.Errorf("reading config: %w", err)
	default:
		if cfg, err = Parse(data); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.applyEnv(os.Getenv); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Parse decodes YAML data on top of Default.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	strs := map[string]*string{
		"GARMIN_API_BASE_URL":    &c.Upstream.APIBaseURL,
		"GARMIN_SSO_BASE_URL":    &c.Upstream.SSOBaseURL,
		"GARMIN_CONSUMER_KEY":    &c.Upstream.ConsumerKey,
		"GARMIN_CONSUMER_SECRET": &c.Upstream.ConsumerSecret,
		"GARMIN_LOG_LEVEL":       &c.LogLevel,
		"GARMIN_TIMEZONE":        &c.Timezone,
		"GARMIN_TOKEN_DB":        &c.TokenDB,
		"GARMIN_MCP_HOST":        &c.Server.Host,
	}
	for key, dst := range strs {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}
	if v := getenv("GARMIN_MCP_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("GARMIN_MCP_PORT: %w", err)
		}
		c.Server.Port = port
	}
	if v := getenv("GARMIN_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("GARMIN_TIMEOUT: %w", err)
		}
		c.Upstream.Timeout = d
	}
	return nil
}

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Server ServerConfig
	Driver DriverConfig
	Log    LogConfig
}

// ServerConfig holds catalog server settings.
type ServerConfig struct {
	Host string
	Port int
}

// DriverConfig holds command interface settings.
type DriverConfig struct {
	Device         string // register device node
	RegisterBase   int64
	PollTimeoutMS  int
	Retries        int
	RetryBackoffMS int
}

// LogConfig holds logging settings.
type LogConfig struct {
	Path  string
	Level string
}

// Load reads configuration from file and env. Env var overrides use prefix A64BROWSE_.
func Load() (Config, error) {
	v := viper.New()

	v.SetDefault("server.host", "192.168.1.100")
	v.SetDefault("server.port", 6464)
	v.SetDefault("driver.device", "/dev/mem")
	v.SetDefault("driver.register_base", 0xDF1C)
	v.SetDefault("driver.poll_timeout_ms", 2000)
	v.SetDefault("driver.retries", 5)
	v.SetDefault("driver.retry_backoff_ms", 10)
	v.SetDefault("log.path", filepath.Join(os.Getenv("HOME"), ".local", "state", "a64browse", "a64browse.log"))
	v.SetDefault("log.level", "info")

	v.SetConfigType("toml")

	cfgPath := os.Getenv("A64BROWSE_CONFIG")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "a64browse"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("A64BROWSE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// read config file if present
	_ = v.ReadInConfig()

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return c, nil
}

// Save writes the provided config to disk, creating the config directory if
// needed. The settings view uses this to persist the server host.
func Save(cfg Config) error {
	path := os.Getenv("A64BROWSE_CONFIG")
	if path == "" {
		path = filepath.Join(os.Getenv("HOME"), ".config", "a64browse", "config.toml")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("server.host", cfg.Server.Host)
	v.Set("server.port", cfg.Server.Port)
	v.Set("driver.device", cfg.Driver.Device)
	v.Set("driver.register_base", cfg.Driver.RegisterBase)
	v.Set("driver.poll_timeout_ms", cfg.Driver.PollTimeoutMS)
	v.Set("driver.retries", cfg.Driver.Retries)
	v.Set("driver.retry_backoff_ms", cfg.Driver.RetryBackoffMS)
	v.Set("log.path", cfg.Log.Path)
	v.Set("log.level", cfg.Log.Level)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

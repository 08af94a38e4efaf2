package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/go-tangra/go-tangra-fingerprint/internal/probe"
)

// Config holds the fingerprint scanner configuration.
type Config struct {
	InventoryPath string          `mapstructure:"inventory"`
	Probe         ProbeConfig     `mapstructure:"probe"`
	SpeedTest     SpeedTestConfig `mapstructure:"speedtest"`
	Menu          MenuConfig      `mapstructure:"menu"`
	Log           LogConfig       `mapstructure:"log"`
}

// ProbeConfig controls the active port check.
type ProbeConfig struct {
	Ports   string        `mapstructure:"ports"`
	Timeout time.Duration `mapstructure:"timeout"`
	Workers int           `mapstructure:"workers"`
}

// SpeedTestConfig controls the internet throughput measurement.
type SpeedTestConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	Timeout   time.Duration `mapstructure:"timeout"`
	ServerIDs []int         `mapstructure:"server_ids"`
}

// MenuConfig controls the interactive menu.
type MenuConfig struct {
	MaxReprompts int           `mapstructure:"max_reprompts"`
	InvalidDelay time.Duration `mapstructure:"invalid_delay"`
}

// LogConfig controls diagnostic logging.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Load reads configuration from file and environment.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("fingerprint")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/fingerprint")
	}

	v.SetDefault("inventory", "Computer_Info.csv")
	v.SetDefault("probe.ports", "default")
	v.SetDefault("probe.timeout", "1s")
	v.SetDefault("probe.workers", 1)
	v.SetDefault("speedtest.enabled", true)
	v.SetDefault("speedtest.timeout", "60s")
	v.SetDefault("speedtest.server_ids", []int{})
	v.SetDefault("menu.max_reprompts", 5)
	v.SetDefault("menu.invalid_delay", "2s")
	v.SetDefault("log.level", "info")

	v.SetEnvPrefix("FINGERPRINT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// An explicit file must exist; the search path is optional.
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}

// Ports resolves the configured port specification.
func (c *Config) Ports() ([]int, error) {
	return probe.ParsePorts(c.Probe.Ports)
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.InventoryPath) == "" {
		return errors.New("inventory path is required")
	}
	if _, err := c.Ports(); err != nil {
		return fmt.Errorf("probe ports: %w", err)
	}
	if c.Probe.Timeout <= 0 {
		return fmt.Errorf("probe timeout must be positive, got %s", c.Probe.Timeout)
	}
	if c.Probe.Workers < 1 {
		return fmt.Errorf("probe workers must be at least 1, got %d", c.Probe.Workers)
	}
	if c.Menu.MaxReprompts < 0 {
		return fmt.Errorf("menu max_reprompts must not be negative, got %d", c.Menu.MaxReprompts)
	}
	return nil
}

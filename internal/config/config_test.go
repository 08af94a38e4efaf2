package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.InventoryPath != "Computer_Info.csv" {
		t.Fatalf("inventory = %q", cfg.InventoryPath)
	}
	if cfg.Probe.Timeout != time.Second || cfg.Probe.Workers != 1 {
		t.Fatalf("probe = %+v", cfg.Probe)
	}
	if !cfg.SpeedTest.Enabled || cfg.SpeedTest.Timeout != time.Minute {
		t.Fatalf("speedtest = %+v", cfg.SpeedTest)
	}
	if cfg.Menu.MaxReprompts != 5 || cfg.Menu.InvalidDelay != 2*time.Second {
		t.Fatalf("menu = %+v", cfg.Menu)
	}
	ports, err := cfg.Ports()
	if err != nil {
		t.Fatalf("Ports: %v", err)
	}
	if !reflect.DeepEqual(ports, []int{22, 80, 443, 3306, 8080}) {
		t.Fatalf("ports = %v", ports)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	content := strings.Join([]string{
		"inventory: /tmp/inv.csv",
		"probe:",
		"  ports: 22,8000-8001",
		"  timeout: 250ms",
		"  workers: 4",
		"speedtest:",
		"  enabled: false",
		"  server_ids: [1234, 5678]",
		"",
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("FINGERPRINT_LOG_LEVEL", "debug")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.InventoryPath != "/tmp/inv.csv" {
		t.Fatalf("inventory = %q", cfg.InventoryPath)
	}
	if cfg.Probe.Timeout != 250*time.Millisecond || cfg.Probe.Workers != 4 {
		t.Fatalf("probe = %+v", cfg.Probe)
	}
	if cfg.SpeedTest.Enabled {
		t.Fatalf("speedtest should be disabled")
	}
	if !reflect.DeepEqual(cfg.SpeedTest.ServerIDs, []int{1234, 5678}) {
		t.Fatalf("server ids = %v", cfg.SpeedTest.ServerIDs)
	}
	if cfg.Log.Level != "debug" {
		t.Fatalf("log level = %q", cfg.Log.Level)
	}
	ports, err := cfg.Ports()
	if err != nil {
		t.Fatalf("Ports: %v", err)
	}
	if !reflect.DeepEqual(ports, []int{22, 8000, 8001}) {
		t.Fatalf("ports = %v", ports)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatalf("expected error for missing config file")
	}
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			InventoryPath: "inv.csv",
			Probe:         ProbeConfig{Ports: "default", Timeout: time.Second, Workers: 1},
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "empty inventory", mutate: func(c *Config) { c.InventoryPath = " " }},
		{name: "bad ports", mutate: func(c *Config) { c.Probe.Ports = "http" }},
		{name: "zero timeout", mutate: func(c *Config) { c.Probe.Timeout = 0 }},
		{name: "zero workers", mutate: func(c *Config) { c.Probe.Workers = 0 }},
		{name: "negative reprompts", mutate: func(c *Config) { c.Menu.MaxReprompts = -1 }},
	}

	base := valid()
	if err := base.Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

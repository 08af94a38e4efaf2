package winsvc

import (
	"errors"
	"fmt"
	"time"
)

// ErrUnsupported is returned by service operations on platforms without a
// service control manager.
var ErrUnsupported = errors.New("windows services are not supported on this platform")

// Config describes a service registration.
type Config struct {
	Name        string
	DisplayName string
	Description string
	// ExePath is the binary the service control manager starts.
	ExePath string
	// Args are passed to ExePath on every start.
	Args []string
}

// Validate checks that a service can be registered from c.
func (c Config) Validate() error {
	if c.Name == "" {
		return errors.New("service name is required")
	}
	if c.ExePath == "" {
		return errors.New("executable path is required")
	}
	return nil
}

// CollectArgs returns the command line a service uses to run scheduled
// collection every interval, optionally with an explicit config file.
func CollectArgs(interval time.Duration, cfgFile string) ([]string, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("service interval must be positive, got %s", interval)
	}
	args := []string{"collect", "--interval", interval.String()}
	if cfgFile != "" {
		args = append(args, "--config", cfgFile)
	}
	return args, nil
}

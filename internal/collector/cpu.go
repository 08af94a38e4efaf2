package collector

import (
	"errors"
	"fmt"
	"runtime"
	"strings"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/siderolabs/go-smbios/smbios"
)

// processorModel reads the CPU model name, falling back to the SMBIOS
// processor version and finally to the architecture name.
func processorModel() (string, error) {
	var errs []error

	infos, err := cpu.Info()
	if err != nil {
		errs = append(errs, fmt.Errorf("cpu info: %w", err))
	}
	for _, info := range infos {
		if name := strings.TrimSpace(info.ModelName); name != "" {
			return name, nil
		}
	}

	name, err := smbiosProcessor()
	if err != nil {
		errs = append(errs, fmt.Errorf("smbios: %w", err))
	}
	if name != "" {
		return name, nil
	}

	return runtime.GOARCH, errors.Join(errs...)
}

func smbiosProcessor() (string, error) {
	s, err := smbios.New()
	if err != nil {
		return "", err
	}
	for _, p := range s.ProcessorInformation {
		if v := strings.TrimSpace(p.ProcessorVersion); v != "" {
			return v, nil
		}
	}
	return "", errors.New("no processor entry")
}

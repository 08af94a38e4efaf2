package collector

import (
	"net"
	"os"
	"time"

	"github.com/go-kratos/kratos/v2/log"
)

const unknown = "Unknown"

// Collect takes a snapshot of every fact p exposes.
func Collect(p Provider) *Facts {
	return &Facts{
		ComputerName:    p.ComputerName(),
		IPAddress:       p.IPAddress(),
		MACAddress:      p.MACAddress(),
		ProcessorModel:  p.ProcessorModel(),
		OperatingSystem: p.OSDescription(),
		SystemTime:      p.CurrentTimestamp(),
	}
}

// Host reads facts from the local machine. Lookup failures are logged and
// replaced by a fallback value so every fact is always a usable string.
type Host struct {
	log *log.Helper

	now        func() time.Time
	hostname   func() (string, error)
	lookupIP   func(host string) ([]net.IP, error)
	interfaces func() ([]iface, error)
	processor  func() (string, error)
	osRelease  func() (string, error)
}

// NewHost returns a Provider for the machine the process runs on.
func NewHost(logger log.Logger) *Host {
	return &Host{
		log:        log.NewHelper(log.With(logger, "module", "collector")),
		now:        time.Now,
		hostname:   os.Hostname,
		lookupIP:   net.LookupIP,
		interfaces: localInterfaces,
		processor:  processorModel,
		osRelease:  osDescription,
	}
}

// ComputerName returns the host name reported by the kernel.
func (h *Host) ComputerName() string {
	name, err := h.hostname()
	switch {
	case err != nil:
		h.log.Warnf("hostname: %v", err)
		return unknown
	case name == "":
		h.log.Warn("hostname: empty")
		return unknown
	}
	return name
}

// IPAddress returns the IPv4 address the host name resolves to, preferring
// non-loopback addresses and falling back to interface addresses.
func (h *Host) IPAddress() string {
	var resolved []net.IP
	if name, err := h.hostname(); err == nil {
		ips, err := h.lookupIP(name)
		if err != nil {
			h.log.Debugf("resolve %s: %v", name, err)
		}
		resolved = ips
	}

	ifaces, err := h.interfaces()
	if err != nil {
		h.log.Warnf("list interfaces: %v", err)
	}
	return pickIPv4(resolved, ifaces)
}

// MACAddress returns the hardware address of the first active, non-loopback
// interface as upper-case colon separated hex.
func (h *Host) MACAddress() string {
	ifaces, err := h.interfaces()
	if err != nil {
		h.log.Warnf("list interfaces: %v", err)
		return unknown
	}
	if mac := pickMAC(ifaces); mac != "" {
		return mac
	}
	return unknown
}

// ProcessorModel returns the CPU model name.
func (h *Host) ProcessorModel() string {
	model, err := h.processor()
	if err != nil {
		h.log.Warnf("processor: %v", err)
	}
	if model == "" {
		return unknown
	}
	return model
}

// OSDescription returns the operating system name and release.
func (h *Host) OSDescription() string {
	desc, err := h.osRelease()
	switch {
	case err != nil:
		h.log.Warnf("operating system: %v", err)
		return unknown
	case desc == "":
		h.log.Warn("operating system: empty")
		return unknown
	}
	return desc
}

// CurrentTimestamp returns the local time formatted with TimeLayout.
func (h *Host) CurrentTimestamp() string {
	return h.now().Format(TimeLayout)
}

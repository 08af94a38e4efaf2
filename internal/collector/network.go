package collector

import (
	"net"
	"strings"
)

// iface is the part of a network interface the collector needs.
type iface struct {
	Name  string
	Flags net.Flags
	MAC   net.HardwareAddr
	IPs   []net.IP
}

func localInterfaces() ([]iface, error) {
	nics, err := net.Interfaces()
	if err != nil {
		return nil, err
	}

	result := make([]iface, 0, len(nics))
	for _, n := range nics {
		entry := iface{Name: n.Name, Flags: n.Flags, MAC: n.HardwareAddr}
		addrs, err := n.Addrs()
		if err == nil {
			for _, a := range addrs {
				if ipn, ok := a.(*net.IPNet); ok {
					entry.IPs = append(entry.IPs, ipn.IP)
				}
			}
		}
		result = append(result, entry)
	}
	return result, nil
}

// pickIPv4 chooses the address reported for the machine: a resolved
// non-loopback IPv4, then an IPv4 on an active interface, then a resolved
// loopback, then 127.0.0.1.
func pickIPv4(resolved []net.IP, ifaces []iface) string {
	var loopback string
	for _, ip := range resolved {
		v4 := ip.To4()
		if v4 == nil {
			continue
		}
		if !v4.IsLoopback() {
			return v4.String()
		}
		if loopback == "" {
			loopback = v4.String()
		}
	}

	for _, n := range ifaces {
		if n.Flags&net.FlagUp == 0 || n.Flags&net.FlagLoopback != 0 {
			continue
		}
		for _, ip := range n.IPs {
			if v4 := ip.To4(); v4 != nil && !v4.IsLoopback() && !v4.IsLinkLocalUnicast() {
				return v4.String()
			}
		}
	}

	if loopback != "" {
		return loopback
	}
	return "127.0.0.1"
}

// pickMAC prefers active interfaces and falls back to any non-loopback
// interface with a hardware address.
func pickMAC(ifaces []iface) string {
	var fallback string
	for _, n := range ifaces {
		if n.Flags&net.FlagLoopback != 0 || len(n.MAC) == 0 {
			continue
		}
		if n.Flags&net.FlagUp != 0 {
			return formatMAC(n.MAC)
		}
		if fallback == "" {
			fallback = formatMAC(n.MAC)
		}
	}
	return fallback
}

func formatMAC(mac net.HardwareAddr) string {
	return strings.ToUpper(mac.String())
}

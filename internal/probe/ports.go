package probe

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// TopPorts is a wider preset of commonly exposed services.
var TopPorts = []int{21, 22, 25, 53, 80, 110, 143, 443, 3306, 3389, 5432, 6379, 8080, 8443, 27017}

var serviceNames = map[int]string{
	20: "FTP-data", 21: "FTP", 22: "SSH", 23: "Telnet",
	25: "SMTP", 53: "DNS", 80: "HTTP", 110: "POP3",
	143: "IMAP", 443: "HTTPS", 445: "SMB", 3306: "MySQL",
	3389: "RDP", 5432: "PostgreSQL", 6379: "Redis", 8080: "HTTP-Alt",
	8443: "HTTPS-Alt", 27017: "MongoDB",
}

// ServiceName returns the well-known service for port, or "unknown".
func ServiceName(port int) string {
	if name, ok := serviceNames[port]; ok {
		return name
	}
	return "unknown"
}

// ParsePorts turns a port specification into an ordered, de-duplicated list.
// It accepts the presets "default" and "top", or a comma separated list of
// ports and inclusive ranges such as "22,80,8000-8010".
func ParsePorts(raw string) ([]int, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	switch s {
	case "", "default":
		return slices.Clone(DefaultPorts), nil
	case "top":
		return slices.Clone(TopPorts), nil
	}

	seen := make(map[int]struct{})
	var ports []int
	add := func(p int) {
		if _, ok := seen[p]; ok {
			return
		}
		seen[p] = struct{}{}
		ports = append(ports, p)
	}

	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		lo, hi, isRange := strings.Cut(part, "-")
		start, err := parsePort(lo)
		if err != nil {
			return nil, err
		}
		end := start
		if isRange {
			if end, err = parsePort(hi); err != nil {
				return nil, err
			}
			if end < start {
				return nil, fmt.Errorf("invalid port range %q", part)
			}
		}
		for p := start; p <= end; p++ {
			add(p)
		}
	}

	if len(ports) == 0 {
		return nil, fmt.Errorf("no ports in %q", raw)
	}
	return ports, nil
}

func parsePort(raw string) (int, error) {
	p, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("invalid port %q: %w", raw, err)
	}
	if p < 1 || p > 65535 {
		return 0, fmt.Errorf("port %d out of range", p)
	}
	return p, nil
}

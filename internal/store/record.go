package store

import "errors"

// ErrEmptyKey is returned when a record has no computer name.
var ErrEmptyKey = errors.New("computer name is required")

// Record is one inventory row. Every value is stored as text.
type Record struct {
	ComputerName    string `json:"computer_name"`
	IPAddress       string `json:"ip_address"`
	MACAddress      string `json:"mac_address"`
	ProcessorModel  string `json:"processor_model"`
	OperatingSystem string `json:"operating_system"`
	SystemTime      string `json:"system_time"`
	InternetSpeed   string `json:"internet_speed"`
	ActivePorts     string `json:"active_ports"`
}

// Validate reports whether the record can be keyed.
func (r Record) Validate() error {
	if r.ComputerName == "" {
		return ErrEmptyKey
	}
	return nil
}

// Fields returns the record values in Header order.
func (r Record) Fields() []string {
	return []string{
		r.ComputerName,
		r.IPAddress,
		r.MACAddress,
		r.ProcessorModel,
		r.OperatingSystem,
		r.SystemTime,
		r.InternetSpeed,
		r.ActivePorts,
	}
}

func recordFromFields(f []string) Record {
	return Record{
		ComputerName:    f[0],
		IPAddress:       f[1],
		MACAddress:      f[2],
		ProcessorModel:  f[3],
		OperatingSystem: f[4],
		SystemTime:      f[5],
		InternetSpeed:   f[6],
		ActivePorts:     f[7],
	}
}

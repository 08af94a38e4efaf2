package collector

// Provider exposes the identity of a machine as display strings.
// No value is validated.
type Provider interface {
	ComputerName() string
	IPAddress() string
	MACAddress() string
	ProcessorModel() string
	OSDescription() string
	CurrentTimestamp() string
}

// Facts is a snapshot of every value a Provider exposes.
type Facts struct {
	ComputerName    string `json:"computer_name"`
	IPAddress       string `json:"ip_address"`
	MACAddress      string `json:"mac_address"`
	ProcessorModel  string `json:"processor_model"`
	OperatingSystem string `json:"operating_system"`
	SystemTime      string `json:"system_time"`
}

// TimeLayout is the format of CurrentTimestamp values.
const TimeLayout = "2006-01-02 15:04:05"

package store

// Column names of the inventory file, in file order.
const (
	ColComputerName    = "Computer Name"
	ColIPAddress       = "IP Address"
	ColMACAddress      = "MAC Address"
	ColProcessorModel  = "Processor Model"
	ColOperatingSystem = "Operating System"
	ColSystemTime      = "System Time"
	ColInternetSpeed   = "Internet Speed"
	ColActivePorts     = "Active Ports"
)

// Header is the fixed header row every inventory file starts with.
var Header = []string{
	ColComputerName,
	ColIPAddress,
	ColMACAddress,
	ColProcessorModel,
	ColOperatingSystem,
	ColSystemTime,
	ColInternetSpeed,
	ColActivePorts,
}

func headerMatches(row []string) bool {
	if len(row) != len(Header) {
		return false
	}
	for i, name := range Header {
		if row[i] != name {
			return false
		}
	}
	return true
}

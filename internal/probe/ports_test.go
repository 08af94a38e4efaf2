package probe

import (
	"reflect"
	"testing"
)

func TestParsePorts(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []int
		wantErr bool
	}{
		{name: "empty uses default", input: "", want: DefaultPorts},
		{name: "default preset", input: "Default", want: DefaultPorts},
		{name: "top preset", input: "top", want: TopPorts},
		{name: "list keeps order", input: "8080, 22,80", want: []int{8080, 22, 80}},
		{name: "dedupe", input: "22,22,80,,22", want: []int{22, 80}},
		{name: "range", input: "3306,8000-8002", want: []int{3306, 8000, 8001, 8002}},
		{name: "invalid integer", input: "ssh", wantErr: true},
		{name: "out of range", input: "70000", wantErr: true},
		{name: "zero", input: "0", wantErr: true},
		{name: "reversed range", input: "90-80", wantErr: true},
		{name: "only commas", input: ",,", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePorts(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParsePorts() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("ParsePorts() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParsePortsReturnsCopy(t *testing.T) {
	got, err := ParsePorts("default")
	if err != nil {
		t.Fatalf("ParsePorts: %v", err)
	}
	got[0] = 1
	if DefaultPorts[0] != 22 {
		t.Fatalf("DefaultPorts mutated: %v", DefaultPorts)
	}
}

func TestServiceName(t *testing.T) {
	if got := ServiceName(3306); got != "MySQL" {
		t.Fatalf("ServiceName(3306) = %q", got)
	}
	if got := ServiceName(1); got != "unknown" {
		t.Fatalf("ServiceName(1) = %q", got)
	}
}

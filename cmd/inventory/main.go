// Command inventory records this machine in the inventory file once and
// prints the stored row as JSON. It is meant for schedulers.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/go-tangra/go-tangra-fingerprint/internal/collector"
	"github.com/go-tangra/go-tangra-fingerprint/internal/logging"
	"github.com/go-tangra/go-tangra-fingerprint/internal/probe"
	"github.com/go-tangra/go-tangra-fingerprint/internal/scanner"
	"github.com/go-tangra/go-tangra-fingerprint/internal/speedtest"
)

func main() {
	outputFile := flag.String("o", "Computer_Info.csv", "inventory CSV file to upsert into")
	ports := flag.String("ports", "default", "candidate ports to check")
	timeout := flag.Duration("timeout", probe.DefaultTimeout, "per-port connection timeout")
	skipSpeed := flag.Bool("skip-speed", false, "skip the internet speed test")
	speedTimeout := flag.Duration("speed-timeout", time.Minute, "speed test timeout")
	flag.Parse()

	portList, err := probe.ParsePorts(*ports)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(2)
	}

	logger := logging.New(os.Stderr, os.Getenv("FINGERPRINT_LOG_LEVEL"))

	var measurer speedtest.Measurer = speedtest.NewClient(*speedTimeout, nil)
	if *skipSpeed {
		measurer = speedtest.Disabled{}
	}

	sc := scanner.New(
		scanner.Options{InventoryPath: *outputFile, Ports: portList},
		collector.NewHost(logger),
		probe.New(probe.WithTimeout(*timeout)),
		measurer,
		logger,
	)

	rec, _, err := sc.Collect(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rec); err != nil {
		fmt.Fprintf(os.Stderr, "error: encoding record: %v\n", err)
		os.Exit(1)
	}

	fmt.Fprintf(os.Stderr, "inventory written to %s\n", *outputFile)
}

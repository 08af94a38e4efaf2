package scanner

import (
	"context"
	"fmt"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"

	"github.com/go-tangra/go-tangra-fingerprint/internal/collector"
	"github.com/go-tangra/go-tangra-fingerprint/internal/probe"
	"github.com/go-tangra/go-tangra-fingerprint/internal/speedtest"
	"github.com/go-tangra/go-tangra-fingerprint/internal/store"
)

// Fact identifies a single value the scanner can report.
type Fact int

const (
	ComputerName Fact = iota + 1
	IPAddress
	MACAddress
	ProcessorModel
	OperatingSystem
	SystemTime
	InternetSpeed
	ActivePorts
)

// Label is the display name of a fact.
func (f Fact) Label() string {
	switch f {
	case ComputerName:
		return "Computer Name"
	case IPAddress:
		return "IP Address"
	case MACAddress:
		return "MAC Address"
	case ProcessorModel:
		return "Processor Model"
	case OperatingSystem:
		return "Operating System"
	case SystemTime:
		return "System Time"
	case InternetSpeed:
		return "Internet Speed"
	case ActivePorts:
		return "Active Ports"
	default:
		return fmt.Sprintf("Fact(%d)", int(f))
	}
}

// Options configures a Scanner.
type Options struct {
	InventoryPath string
	Ports         []int
}

// Scanner gathers the facts of the local machine and records them in the
// inventory file.
type Scanner struct {
	opts     Options
	facts    collector.Provider
	prober   *probe.Prober
	measurer speedtest.Measurer
	logger   log.Logger
	log      *log.Helper
}

// New returns a Scanner. A nil measurer disables the speed test.
func New(opts Options, facts collector.Provider, prober *probe.Prober, measurer speedtest.Measurer, logger log.Logger) *Scanner {
	if measurer == nil {
		measurer = speedtest.Disabled{}
	}
	if len(opts.Ports) == 0 {
		opts.Ports = probe.DefaultPorts
	}
	return &Scanner{
		opts:     opts,
		facts:    facts,
		prober:   prober,
		measurer: measurer,
		logger:   logger,
		log:      log.NewHelper(log.With(logger, "module", "scanner")),
	}
}

// Fact returns the current value of a single fact.
func (s *Scanner) Fact(ctx context.Context, f Fact) (string, error) {
	switch f {
	case ComputerName:
		return s.facts.ComputerName(), nil
	case IPAddress:
		return s.facts.IPAddress(), nil
	case MACAddress:
		return s.facts.MACAddress(), nil
	case ProcessorModel:
		return s.facts.ProcessorModel(), nil
	case OperatingSystem:
		return s.facts.OSDescription(), nil
	case SystemTime:
		return s.facts.CurrentTimestamp(), nil
	case InternetSpeed:
		return s.speedSummary(ctx, s.log), nil
	case ActivePorts:
		open := s.probe(ctx, s.log, s.facts.IPAddress())
		return probe.Format(open), nil
	default:
		return "", fmt.Errorf("unknown fact %d", int(f))
	}
}

// Facts returns a snapshot of the host facts without probing or measuring.
func (s *Scanner) Facts() *collector.Facts {
	return collector.Collect(s.facts)
}

// OpenPorts probes the machine's own address and returns the open ports.
func (s *Scanner) OpenPorts(ctx context.Context) (string, []int) {
	addr := s.facts.IPAddress()
	return addr, s.probe(ctx, s.log, addr)
}

// Collect gathers every fact, measures throughput, probes the candidate
// ports and upserts the resulting record into the inventory file.
func (s *Scanner) Collect(ctx context.Context) (store.Record, store.Outcome, error) {
	runLog := log.NewHelper(log.With(s.logger, "module", "scanner", "run", uuid.NewString()))

	facts := s.Facts()
	runLog.Debugf("Collected facts for %s", facts.ComputerName)

	rec := store.Record{
		ComputerName:    facts.ComputerName,
		IPAddress:       facts.IPAddress,
		MACAddress:      facts.MACAddress,
		ProcessorModel:  facts.ProcessorModel,
		OperatingSystem: facts.OperatingSystem,
		SystemTime:      facts.SystemTime,
		InternetSpeed:   s.speedSummary(ctx, runLog),
		ActivePorts:     probe.Format(s.probe(ctx, runLog, facts.IPAddress)),
	}

	outcome, err := store.Upsert(s.opts.InventoryPath, rec)
	if err != nil {
		return rec, 0, fmt.Errorf("store record: %w", err)
	}

	switch outcome {
	case store.Updated:
		runLog.Infof("Updating record for %s", rec.ComputerName)
	default:
		runLog.Infof("Adding a new record for %s", rec.ComputerName)
	}
	return rec, outcome, nil
}

func (s *Scanner) speedSummary(ctx context.Context, l *log.Helper) string {
	res, err := s.measurer.Measure(ctx)
	if err != nil {
		l.Warnf("Speed test failed: %v", err)
	} else {
		l.Debugf("Speed test via %s: latency %s", res.Server, res.Latency)
	}
	return speedtest.Summary(res, err)
}

func (s *Scanner) probe(ctx context.Context, l *log.Helper, addr string) []int {
	open := s.prober.Probe(ctx, addr, s.opts.Ports)
	l.Debugf("Probed %d ports on %s (timeout %s): %d open", len(s.opts.Ports), addr, s.prober.Timeout(), len(open))
	return open
}

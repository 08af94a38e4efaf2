package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/spf13/cobra"

	"github.com/go-tangra/go-tangra-fingerprint/internal/collector"
	"github.com/go-tangra/go-tangra-fingerprint/internal/config"
	"github.com/go-tangra/go-tangra-fingerprint/internal/logging"
	"github.com/go-tangra/go-tangra-fingerprint/internal/menu"
	"github.com/go-tangra/go-tangra-fingerprint/internal/probe"
	"github.com/go-tangra/go-tangra-fingerprint/internal/scanner"
	"github.com/go-tangra/go-tangra-fingerprint/internal/speedtest"
	"github.com/go-tangra/go-tangra-fingerprint/internal/store"
	"github.com/go-tangra/go-tangra-fingerprint/internal/winsvc"
)

const serviceName = "fingerprint"

var (
	version    = "dev"
	commitHash = "unknown"
	buildDate  = "unknown"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "fingerprint",
	Short: "Computer fingerprint scanner - records host identity in a CSV inventory",
	Long: `Fingerprint reads the identity of this machine (name, IP and MAC address,
processor, operating system, time), measures internet speed, checks a small set
of TCP ports and records the result in a CSV inventory keyed by computer name.

Run without a subcommand to open the interactive menu (equivalent to 'menu').`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runMenu,
}

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Open the interactive menu",
	RunE:  runMenu,
}

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Collect all facts and upsert them into the inventory file",
	RunE:  runCollect,
}

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the facts of this machine without storing them",
	RunE:  runShow,
}

var portsCmd = &cobra.Command{
	Use:   "ports [address]",
	Short: "Check which candidate TCP ports accept connections",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runPorts,
}

var speedCmd = &cobra.Command{
	Use:   "speed",
	Short: "Measure internet download and upload speed",
	RunE:  runSpeed,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the machines recorded in the inventory file",
	RunE:  runList,
}

var serviceCmd = &cobra.Command{
	Use:   "service",
	Short: "Manage the Windows service running scheduled collection",
}

var serviceInstallCmd = &cobra.Command{
	Use:   "install",
	Short: "Install as a Windows service that runs 'collect --interval'",
	RunE:  runServiceInstall,
}

var serviceUninstallCmd = &cobra.Command{
	Use:   "uninstall",
	Short: "Uninstall the Windows service",
	RunE:  runServiceUninstall,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("fingerprint %s (commit: %s, built: %s)\n", version, commitHash, buildDate)
	},
}

var (
	showJSON        bool
	collectInterval time.Duration
	serviceInterval time.Duration
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./fingerprint.yaml)")
	rootCmd.PersistentFlags().String("inventory", "", "inventory CSV path (default Computer_Info.csv)")
	rootCmd.PersistentFlags().String("ports", "", `candidate ports, e.g. "22,80,8000-8010", "default" or "top"`)
	rootCmd.PersistentFlags().Duration("timeout", 0, "per-port connection timeout (default 1s)")
	rootCmd.PersistentFlags().Int("workers", 0, "ports probed at once (default 1)")
	rootCmd.PersistentFlags().Bool("no-speedtest", false, "skip the internet speed test")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")

	showCmd.Flags().BoolVar(&showJSON, "json", false, "print facts as JSON")
	collectCmd.Flags().DurationVar(&collectInterval, "interval", 0, "keep running and collect again at this interval")
	serviceInstallCmd.Flags().DurationVar(&serviceInterval, "interval", time.Hour, "collection interval of the installed service")

	serviceCmd.AddCommand(serviceInstallCmd)
	serviceCmd.AddCommand(serviceUninstallCmd)

	rootCmd.AddCommand(menuCmd)
	rootCmd.AddCommand(collectCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(portsCmd)
	rootCmd.AddCommand(speedCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(serviceCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		reportError(os.Stderr, err)
		os.Exit(1)
	}
}

// reportError prints err unless the menu already showed it to the user.
func reportError(w io.Writer, err error) {
	if menu.Shown(err) {
		return
	}
	fmt.Fprintf(w, "Error: %v\n", err)
}

// app bundles everything a command needs.
type app struct {
	cfg     *config.Config
	logger  log.Logger
	scanner *scanner.Scanner
}

func setup(cmd *cobra.Command) (*app, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	// CLI flag overrides.
	if v, _ := cmd.Flags().GetString("inventory"); v != "" {
		cfg.InventoryPath = v
	}
	if v, _ := cmd.Flags().GetString("ports"); v != "" {
		cfg.Probe.Ports = v
	}
	if v, _ := cmd.Flags().GetDuration("timeout"); v > 0 {
		cfg.Probe.Timeout = v
	}
	if v, _ := cmd.Flags().GetInt("workers"); v > 0 {
		cfg.Probe.Workers = v
	}
	if v, _ := cmd.Flags().GetBool("no-speedtest"); v {
		cfg.SpeedTest.Enabled = false
	}
	if v, _ := cmd.Flags().GetString("log-level"); v != "" {
		cfg.Log.Level = v
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	ports, err := cfg.Ports()
	if err != nil {
		return nil, err
	}

	var logOut io.Writer = os.Stderr
	if winsvc.IsWindowsService() {
		if w, err := winsvc.EventLog(serviceName); err == nil {
			logOut = w
		}
	}
	logger := logging.New(logOut, cfg.Log.Level)

	var measurer speedtest.Measurer = speedtest.Disabled{}
	if cfg.SpeedTest.Enabled {
		measurer = speedtest.NewClient(cfg.SpeedTest.Timeout, cfg.SpeedTest.ServerIDs)
	}

	sc := scanner.New(
		scanner.Options{InventoryPath: cfg.InventoryPath, Ports: ports},
		collector.NewHost(logger),
		probe.New(probe.WithTimeout(cfg.Probe.Timeout), probe.WithWorkers(cfg.Probe.Workers)),
		measurer,
		logger,
	)

	return &app{cfg: cfg, logger: logger, scanner: sc}, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

func runMenu(cmd *cobra.Command, _ []string) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	m := menu.New(os.Stdin, os.Stdout, a.scanner, menu.Options{
		MaxReprompts: a.cfg.Menu.MaxReprompts,
		InvalidDelay: a.cfg.Menu.InvalidDelay,
	})
	return m.Run(ctx)
}

func runCollect(cmd *cobra.Command, _ []string) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}

	if winsvc.IsWindowsService() {
		return winsvc.RunService(serviceName, a.logger, func(ctx context.Context) error {
			return a.scanner.RunEvery(ctx, collectInterval)
		})
	}

	ctx, stop := signalContext()
	defer stop()

	if collectInterval > 0 {
		return a.scanner.RunEvery(ctx, collectInterval)
	}

	rec, outcome, err := a.scanner.Collect(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Data for %s collected and saved successfully (%s in %s).\n", rec.ComputerName, outcome, a.cfg.InventoryPath)
	return nil
}

func runShow(cmd *cobra.Command, _ []string) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}

	facts := a.scanner.Facts()

	if showJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(facts)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s:\t%s\n", scanner.ComputerName.Label(), facts.ComputerName)
	fmt.Fprintf(w, "%s:\t%s\n", scanner.IPAddress.Label(), facts.IPAddress)
	fmt.Fprintf(w, "%s:\t%s\n", scanner.MACAddress.Label(), facts.MACAddress)
	fmt.Fprintf(w, "%s:\t%s\n", scanner.ProcessorModel.Label(), facts.ProcessorModel)
	fmt.Fprintf(w, "%s:\t%s\n", scanner.OperatingSystem.Label(), facts.OperatingSystem)
	fmt.Fprintf(w, "%s:\t%s\n", scanner.SystemTime.Label(), facts.SystemTime)
	return w.Flush()
}

func runPorts(cmd *cobra.Command, args []string) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	if len(args) == 0 {
		_, open := a.scanner.OpenPorts(ctx)
		fmt.Println(probe.Format(open))
		return nil
	}

	ports, err := a.cfg.Ports()
	if err != nil {
		return err
	}
	p := probe.New(probe.WithTimeout(a.cfg.Probe.Timeout), probe.WithWorkers(a.cfg.Probe.Workers))
	open := p.Probe(ctx, args[0], ports)
	fmt.Println(probe.Format(open))
	for _, port := range open {
		fmt.Printf("  %d\t%s\n", port, probe.ServiceName(port))
	}
	return nil
}

func runSpeed(cmd *cobra.Command, _ []string) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	fmt.Println("Testing internet speeds...")
	start := time.Now()
	summary, err := a.scanner.Fact(ctx, scanner.InternetSpeed)
	if err != nil {
		return err
	}
	fmt.Println(summary)
	log.NewHelper(a.logger).Debugf("Speed test took %s", time.Since(start).Round(time.Millisecond))
	return nil
}

func runList(cmd *cobra.Command, _ []string) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}

	rows, err := store.Load(a.cfg.InventoryPath)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		fmt.Printf("No machines recorded in %s\n", a.cfg.InventoryPath)
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", store.ColComputerName, store.ColIPAddress, store.ColOperatingSystem, store.ColSystemTime, store.ColActivePorts)
	for _, r := range rows {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", r.ComputerName, r.IPAddress, r.OperatingSystem, r.SystemTime, r.ActivePorts)
	}
	return w.Flush()
}

func runServiceInstall(_ *cobra.Command, _ []string) error {
	exePath, err := os.Executable()
	if err != nil {
		return fmt.Errorf("locate executable: %w", err)
	}

	// The service starts in the system directory, so the config path must be absolute.
	cfg := cfgFile
	if cfg != "" {
		if cfg, err = filepath.Abs(cfg); err != nil {
			return fmt.Errorf("resolve config path: %w", err)
		}
	}
	args, err := winsvc.CollectArgs(serviceInterval, cfg)
	if err != nil {
		return err
	}

	logger := logging.New(os.Stderr, "info")
	if err := winsvc.Install(winsvc.Config{
		Name:        serviceName,
		DisplayName: "Computer Fingerprint Scanner",
		Description: "Records this machine's identity, speed and open ports in the CSV inventory.",
		ExePath:     exePath,
		Args:        args,
	}, logger); err != nil {
		return err
	}

	log.NewHelper(logger).Infof("Service %s installed (collect every %s)", serviceName, serviceInterval)
	return nil
}

func runServiceUninstall(_ *cobra.Command, _ []string) error {
	if err := winsvc.Uninstall(serviceName); err != nil {
		return err
	}
	log.NewHelper(logging.New(os.Stderr, "info")).Infof("Service %s uninstalled", serviceName)
	return nil
}

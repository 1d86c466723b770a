// Package cmd wires configuration, the engine, and the presentation modes.
package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/rafeeqops/rafeeq/config"
	"github.com/rafeeqops/rafeeq/engine"
	"github.com/rafeeqops/rafeeq/ledger"
	"github.com/rafeeqops/rafeeq/model"
	"github.com/rafeeqops/rafeeq/notify"
	"github.com/rafeeqops/rafeeq/sensor"
	"github.com/rafeeqops/rafeeq/ui"
)

// Version is set at build time via ldflags.
var Version = "0.3.0"

// cliConfig holds parsed command-line options.
type cliConfig struct {
	Interval   time.Duration
	History    int
	DataDir    string
	LedgerPath string
	WatchMode  bool
	WatchCount int
	RecordPath string
	ReplayPath string
	NoCall     bool
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `rafeeq v%s — patient vitals monitor with caregiver voice alerts

Usage:
  rafeeq [OPTIONS]

Modes:
  (default)         Interactive TUI (bubbletea, fullscreen)
  -watch            Headless mode — structured log output, no TUI
  -version          Print version and exit

Options:
  -interval N       Reading interval in seconds (default: 3)
  -history N        Readings to keep for trend display (default: 120)
  -datadir PATH     Data directory (default: ~/.rafeeq/)
  -ledger PATH      Ledger database path (default: <datadir>/ledger.db)
  -count N          Number of readings for -watch mode (0 = infinite)
  -record FILE      Record session frames to FILE (JSON lines)
  -replay FILE      Drive the monitor from a recorded session
  -no-call          Log voice calls instead of placing them (no credentials needed)

Credentials (environment or .env file):
  TWILIO_ACCOUNT_SID, TWILIO_AUTH_TOKEN, TWILIO_PHONE_NUMBER, CAREGIVER_PHONE

Examples:
  rafeeq                         Interactive TUI
  rafeeq -no-call                TUI without placing real calls
  rafeeq -watch -count 20        20 readings of headless output
  rafeeq -record session.jsonl   TUI while recording the session
  rafeeq -replay session.jsonl -no-call
`, Version)
}

// Run parses flags and starts the application.
func Run() error {
	fileCfg := config.Load()

	var cli cliConfig
	var intervalSec int
	var showVersion bool

	flag.IntVar(&intervalSec, "interval", fileCfg.IntervalSec, "Reading interval in seconds")
	flag.IntVar(&cli.History, "history", fileCfg.HistorySize, "Readings to keep for trend display")
	flag.StringVar(&cli.DataDir, "datadir", fileCfg.DataDir, "Data directory (default: ~/.rafeeq/)")
	flag.StringVar(&cli.LedgerPath, "ledger", fileCfg.LedgerPath, "Ledger database path")
	flag.BoolVar(&cli.WatchMode, "watch", false, "Headless mode (no TUI)")
	flag.IntVar(&cli.WatchCount, "count", 0, "Number of readings for -watch (0=infinite)")
	flag.StringVar(&cli.RecordPath, "record", "", "Record session frames to file")
	flag.StringVar(&cli.ReplayPath, "replay", "", "Replay a recorded session file")
	flag.BoolVar(&cli.NoCall, "no-call", false, "Log calls instead of placing them")
	flag.BoolVar(&showVersion, "version", false, "Print version and exit")

	flag.Usage = printUsage
	flag.Parse()

	if showVersion {
		fmt.Printf("rafeeq v%s\n", Version)
		return nil
	}

	if intervalSec <= 0 {
		intervalSec = 3
	}
	cli.Interval = time.Duration(intervalSec) * time.Second

	if cli.DataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		cli.DataDir = filepath.Join(home, ".rafeeq")
	}
	if err := os.MkdirAll(cli.DataDir, 0o700); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	if cli.LedgerPath == "" {
		cli.LedgerPath = filepath.Join(cli.DataDir, "ledger.db")
	}

	// In TUI mode the log goes to a file so the screen stays clean.
	logPath := ""
	if !cli.WatchMode {
		logPath = filepath.Join(cli.DataDir, "rafeeq.log")
	}
	logger, err := initLogger(fileCfg.LogFormat, logPath)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()

	// Missing credentials fail at startup, not on the first alert.
	var caller notify.Caller
	if cli.NoCall {
		caller = notify.NewLogCaller(logger)
	} else {
		creds := config.LoadCredentials()
		if err := config.ValidateCredentials(creds); err != nil {
			return err
		}
		caller = notify.NewTwilioCaller(creds, logger)
	}

	led, err := ledger.Open(cli.LedgerPath, logger)
	if err != nil {
		return err
	}
	defer led.Close()

	var source sensor.Source
	if cli.ReplayPath != "" {
		source, err = engine.OpenReplay(cli.ReplayPath)
		if err != nil {
			return fmt.Errorf("open replay file: %w", err)
		}
	} else {
		source = sensor.NewSimulator()
	}

	var recorder *engine.Recorder
	if cli.RecordPath != "" {
		f, err := os.Create(cli.RecordPath)
		if err != nil {
			return fmt.Errorf("create record file: %w", err)
		}
		defer f.Close()
		recorder = engine.NewRecorder(f)
	}

	// The dispatcher emits through the monitor's observer channel; the
	// closure resolves after the monitor is constructed below.
	var mon *engine.Monitor
	disp := engine.NewDispatcher(led, caller, logger, func(ev model.DisplayEvent) {
		mon.Emit(ev)
	})
	mon = engine.NewMonitor(engine.MonitorOptions{
		Source:      source,
		Ledger:      led,
		Dispatcher:  disp,
		Logger:      logger,
		Interval:    cli.Interval,
		HistorySize: cli.History,
		Recorder:    recorder,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runDone := make(chan struct{})
	go func() {
		defer close(runDone)
		if err := mon.Run(ctx); err != nil {
			logger.Error("monitor loop stopped", zap.Error(err))
		}
	}()

	if cli.WatchMode {
		return runWatch(ctx, mon, logger, cli.WatchCount, runDone)
	}

	p := tea.NewProgram(ui.NewModel(mon), tea.WithAltScreen())
	_, err = p.Run()
	stop()
	return err
}

// initLogger builds the zap logger: production JSON or development console,
// optionally redirected to a file.
func initLogger(format, path string) (*zap.Logger, error) {
	var cfg zap.Config
	if format == "json" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
	}
	if path != "" {
		cfg.OutputPaths = []string{path}
		cfg.ErrorOutputPaths = []string{path}
	}
	return cfg.Build()
}

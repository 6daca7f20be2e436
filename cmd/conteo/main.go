package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/emmett/conteo/internal/app"
	"github.com/emmett/conteo/internal/config"
	"github.com/emmett/conteo/internal/logging"
	"github.com/emmett/conteo/internal/models"
	"github.com/emmett/conteo/internal/obslog"
	"github.com/emmett/conteo/internal/output"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
	GitBranch = "unknown"
)

var (
	configFile      = flag.String("config", "", "Path to configuration file (default: ~/.conteorc or /etc/conteo/config.yaml)")
	mode            = flag.String("mode", "listen", "Operation mode: listen, mcp")
	listModels      = flag.Bool("list-models", false, "List all available models for download")
	listDownloaded  = flag.Bool("list-downloaded", false, "List all downloaded models")
	downloadModel   = flag.String("download-model", "", "Download a specific model by name")
	modelName       = flag.String("model", "", "Use a specific model (default: "+models.DefaultModelName+")")
	setDefault      = flag.String("set-default", "", "Set a model as the default")
	storePath       = flag.String("store", "", "Path to the observation database")
	timezone        = flag.String("timezone", "", "Recording timezone (IANA name, default: America/Guayaquil)")
	enableVAD       = flag.Bool("vad", true, "Enable Voice Activity Detection")
	vadThreshold    = flag.Float64("vad-threshold", 0.01, "VAD energy threshold (0.001-0.1, lower=more sensitive)")
	vadSilenceDelay = flag.Float64("vad-silence-delay", 0.8, "Seconds of silence that end an utterance")
	audioDevice     = flag.String("device", "", "Audio input device name (use --list-devices to see available devices)")
	listDevices     = flag.Bool("list-devices", false, "List all available audio input devices")
	exportFormat    = flag.String("export", "", "Export the observation log and exit: json, csv")
	outputFile      = flag.String("output", "", "Export destination file (default: stdout)")
	noFeedback      = flag.Bool("no-feedback", false, "Disable spoken confirmation of commands")
	hotkeyStr       = flag.String("hotkey", "", "Global hotkey to pause/resume listening (e.g. ctrl+shift+space)")
	showVersion     = flag.Bool("version", false, "Show version information")
	autoDownload    = flag.Bool("auto-download", false, "Automatically download default model if not found (no prompt)")
)

func main() {
	flag.Parse()

	// Load configuration file
	cfg, err := config.LoadWithFallback(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to load config: %v\n", err)
		cfg = config.DefaultConfig()
	}

	// Apply config values as defaults (CLI flags override if explicitly set)
	applyConfigDefaults(cfg)

	// Handle version flag
	if *showVersion {
		fmt.Printf("Conteo v%s\n", Version)
		fmt.Printf("  Commit:  %s\n", GitCommit)
		fmt.Printf("  Branch:  %s\n", GitBranch)
		fmt.Printf("  Built:   %s\n", BuildTime)
		os.Exit(0)
	}

	fmt.Printf("Conteo v%s (commit: %s, branch: %s, built: %s)\n",
		Version, GitCommit, GitBranch, BuildTime)
	fmt.Println("Hands-free field counting")
	fmt.Println()

	// Handle MCP server mode
	if *mode == "mcp" {
		handler := app.NewMCPHandler(*storePath, *timezone, Version, GitCommit)
		if err := handler.Run(); err != nil {
			fmt.Fprintf(os.Stderr, "MCP server error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// Handle list devices flag
	if *listDevices {
		dm := app.NewDeviceManager()
		if err := dm.ListDevices(); err != nil {
			os.Exit(1)
		}
		return
	}

	// Handle model management commands
	mgr := app.NewModelManager()

	if *listModels {
		if err := mgr.ListModels(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if *listDownloaded {
		if err := mgr.ListDownloaded(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if *downloadModel != "" {
		if err := mgr.Download(*downloadModel); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if *setDefault != "" {
		if err := mgr.SetDefault(*setDefault); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if *exportFormat != "" {
		if err := runExport(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// Run the counting session
	if err := run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// applyConfigDefaults applies configuration values as defaults
// CLI flags override config file values if explicitly set
func applyConfigDefaults(cfg *config.Config) {
	// Check if flags were explicitly set by user
	flagsSet := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) {
		flagsSet[f.Name] = true
	})

	// Apply config defaults only if flag was not explicitly set
	if !flagsSet["model"] && cfg.Model.Default != "" {
		*modelName = cfg.Model.Default
	}

	if !flagsSet["store"] && cfg.Store.Path != "" {
		*storePath = cfg.Store.Path
	}

	if !flagsSet["timezone"] && cfg.Recording.Timezone != "" {
		*timezone = cfg.Recording.Timezone
	}

	if !flagsSet["vad"] {
		*enableVAD = cfg.VAD.Enabled
	}

	if !flagsSet["vad-threshold"] && cfg.VAD.Threshold > 0 {
		*vadThreshold = cfg.VAD.Threshold
	}

	if !flagsSet["vad-silence-delay"] && cfg.VAD.SilenceDelay > 0 {
		*vadSilenceDelay = cfg.VAD.SilenceDelay
	}

	if !flagsSet["device"] && cfg.Audio.Device != "" {
		*audioDevice = cfg.Audio.Device
	}

	if !flagsSet["no-feedback"] {
		*noFeedback = !cfg.Feedback.Enabled
	}

	if !flagsSet["hotkey"] && cfg.Recording.Hotkey != "" {
		*hotkeyStr = cfg.Recording.Hotkey
	}
}

// runExport dumps the observation log in the requested format.
func runExport() error {
	dbPath := *storePath
	if dbPath == "" {
		dbPath = "observations.db"
	}
	store, err := obslog.Open(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open observation store: %w", err)
	}
	defer store.Close()

	writer := os.Stdout
	if *outputFile != "" {
		f, err := os.Create(*outputFile)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		writer = f
	}

	formatter, err := output.NewFormatter(*exportFormat, writer)
	if err != nil {
		return err
	}
	defer formatter.Close()

	observations, err := store.List(context.Background())
	if err != nil {
		return fmt.Errorf("failed to read observations: %w", err)
	}
	for _, o := range observations {
		if err := formatter.WriteObservation(o); err != nil {
			return fmt.Errorf("failed to write observation %s: %w", o.ID, err)
		}
	}
	return nil
}

func run(cfg *config.Config) error {
	rt, err := logging.New()
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	defer rt.Close()

	listenerCfg := app.ListenerConfigFromFile(cfg, rt.Logger)

	// Flag overrides on top of the file-derived settings
	listenerCfg.ModelName = *modelName
	listenerCfg.AudioDevice = *audioDevice
	listenerCfg.EnableVAD = *enableVAD
	listenerCfg.VADThreshold = *vadThreshold
	listenerCfg.VADSilenceDelay = *vadSilenceDelay
	listenerCfg.StorePath = *storePath
	listenerCfg.Timezone = *timezone
	listenerCfg.Hotkey = *hotkeyStr
	listenerCfg.FeedbackEnabled = !*noFeedback
	listenerCfg.AutoDownload = *autoDownload
	if listenerCfg.StorePath == "" {
		listenerCfg.StorePath = "observations.db"
	}
	if listenerCfg.Debounce <= 0 {
		listenerCfg.Debounce = 200 * time.Millisecond
	}

	listener := app.NewListener(listenerCfg)
	return listener.Run()
}

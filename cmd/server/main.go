package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/emmett/conteo/internal/config"
	"github.com/emmett/conteo/internal/gps"
	grpcserver "github.com/emmett/conteo/internal/server/grpc"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
	GitBranch = "unknown"
)

var (
	configFile  = flag.String("config", "", "Path to configuration file (default: ~/.conteorc or /etc/conteo/config.yaml)")
	host        = flag.String("host", "", "Listen address (default from config)")
	port        = flag.Int("port", 0, "gRPC server port (default from config)")
	storePath   = flag.String("store", "", "Path to the observation database")
	timezone    = flag.String("timezone", "", "Recording timezone for totals queries (IANA name)")
	showVersion = flag.Bool("version", false, "Show version information")
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Printf("Conteo Sync Server v%s\n", Version)
		fmt.Printf("  Commit:  %s\n", GitCommit)
		fmt.Printf("  Branch:  %s\n", GitBranch)
		fmt.Printf("  Built:   %s\n", BuildTime)
		os.Exit(0)
	}

	fmt.Printf("Conteo Sync Server v%s (commit: %s)\n", Version, GitCommit)

	cfg, err := config.LoadWithFallback(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to load config: %v\n", err)
		cfg = config.DefaultConfig()
	}

	if *host == "" {
		*host = cfg.Server.Host
	}
	if *port == 0 {
		*port = cfg.Server.Port
	}
	if *storePath == "" {
		*storePath = cfg.Store.Path
	}

	tzName := *timezone
	if tzName == "" {
		tzName = cfg.Recording.Timezone
	}
	if tzName == "" {
		tzName = gps.DefaultZone
	}
	tz, err := time.LoadLocation(tzName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: unknown timezone %q: %v\n", tzName, err)
		os.Exit(1)
	}

	// Create and start server
	serverCfg := grpcserver.Config{
		Host:      *host,
		Port:      *port,
		StorePath: *storePath,
		Timezone:  tz,
	}

	server, err := grpcserver.NewServer(serverCfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating server: %v\n", err)
		os.Exit(1)
	}

	// Handle shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\nShutting down...")
		server.Stop()
		os.Exit(0)
	}()

	// Start server
	if err := server.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}

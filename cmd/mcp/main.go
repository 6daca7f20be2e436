package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/emmett/conteo/internal/app"
	"github.com/emmett/conteo/internal/config"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
	GitBranch = "unknown"
)

var (
	configFile  = flag.String("config", "", "Path to configuration file (default: ~/.conteorc or /etc/conteo/config.yaml)")
	storePath   = flag.String("store", "", "Path to the observation database")
	timezone    = flag.String("timezone", "", "Recording timezone for totals queries (IANA name)")
	showVersion = flag.Bool("version", false, "Show version information")
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Printf("Conteo MCP v%s\n", Version)
		fmt.Printf("  Commit:  %s\n", GitCommit)
		fmt.Printf("  Branch:  %s\n", GitBranch)
		fmt.Printf("  Built:   %s\n", BuildTime)
		os.Exit(0)
	}

	cfg, err := config.LoadWithFallback(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to load config: %v\n", err)
		cfg = config.DefaultConfig()
	}

	if *storePath == "" {
		*storePath = cfg.Store.Path
	}
	if *timezone == "" {
		*timezone = cfg.Recording.Timezone
	}

	handler := app.NewMCPHandler(*storePath, *timezone, Version, GitCommit)
	if err := handler.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "MCP server error: %v\n", err)
		os.Exit(1)
	}
}

package app

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/emmett/conteo/internal/gps"
	"github.com/emmett/conteo/internal/server/mcp"
)

// MCPHandler handles MCP server operations
type MCPHandler struct {
	storePath string
	timezone  string
	version   string
	gitCommit string
}

// NewMCPHandler creates a new MCP handler
func NewMCPHandler(storePath, timezone, version, gitCommit string) *MCPHandler {
	return &MCPHandler{
		storePath: storePath,
		timezone:  timezone,
		version:   version,
		gitCommit: gitCommit,
	}
}

// Run starts the MCP server
func (h *MCPHandler) Run() error {
	fmt.Fprintf(os.Stderr, "Starting MCP server...\n")
	fmt.Fprintf(os.Stderr, "Protocol: Model Context Protocol (stdio transport)\n")
	fmt.Fprintf(os.Stderr, "Version: %s (commit: %s)\n\n", h.version, h.gitCommit)

	tzName := h.timezone
	if tzName == "" {
		tzName = gps.DefaultZone
	}
	tz, err := time.LoadLocation(tzName)
	if err != nil {
		return fmt.Errorf("unknown timezone %q: %w", tzName, err)
	}

	fmt.Fprintf(os.Stderr, "Observation store: %s\n", h.storePath)
	fmt.Fprintf(os.Stderr, "Recording timezone: %s\n\n", tz.String())

	// Get absolute path to the conteo binary
	execPath, err := os.Executable()
	if err != nil {
		execPath = "./build/conteo"
	}

	// Print MCP client configuration
	type MCPServerConfig struct {
		Command string   `json:"command"`
		Args    []string `json:"args"`
	}
	type MCPClientConfig struct {
		MCPServers map[string]MCPServerConfig `json:"mcpServers"`
	}

	clientConfig := MCPClientConfig{
		MCPServers: map[string]MCPServerConfig{
			"conteo": {
				Command: execPath,
				Args:    []string{"--mode", "mcp", "--store", h.storePath},
			},
		},
	}

	configJSON, err := json.MarshalIndent(clientConfig, "", "  ")
	if err == nil {
		fmt.Fprintf(os.Stderr, "MCP Client Configuration:\n%s\n\n", string(configJSON))
	}

	// Create MCP server
	serverConfig := mcp.Config{
		ServerName:    "conteo-mcp",
		ServerVersion: h.version,
		StorePath:     h.storePath,
		Timezone:      tz,
	}

	server, err := mcp.NewServer(serverConfig)
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}

	// Set up signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Start server in goroutine
	errChan := make(chan error, 1)
	go func() {
		errChan <- server.Start()
	}()

	fmt.Fprintf(os.Stderr, "MCP server ready. Listening on stdin/stdout...\n")
	fmt.Fprintf(os.Stderr, "Press Ctrl+C to stop.\n\n")

	// Wait for shutdown signal or error
	select {
	case <-sigChan:
		fmt.Fprintf(os.Stderr, "\nShutting down MCP server...\n")
		if err := server.Stop(); err != nil {
			return fmt.Errorf("error stopping server: %w", err)
		}
		return nil
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	}
}

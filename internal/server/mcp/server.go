// Package mcp exposes the command interpreter and the observation log
// as Model Context Protocol tools, so an assistant can replay captured
// transcripts and inspect tallies without touching the database.
package mcp

import (
	"context"
	"fmt"
	"time"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/emmett/conteo/internal/obslog"
)

type Config struct {
	ServerName    string
	ServerVersion string
	StorePath     string
	// Timezone defines the day boundary for totals queries
	Timezone *time.Location
}

type Server struct {
	config    Config
	mcpServer *sdk.Server
	store     *obslog.Store
	tz        *time.Location
}

func NewServer(cfg Config) (*Server, error) {
	tz := cfg.Timezone
	if tz == nil {
		tz = time.UTC
	}
	s := &Server{
		config: cfg,
		tz:     tz,
	}

	store, err := obslog.Open(cfg.StorePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open observation store: %w", err)
	}
	s.store = store

	// Create MCP server
	s.mcpServer = sdk.NewServer(&sdk.Implementation{
		Name:    cfg.ServerName,
		Version: cfg.ServerVersion,
	}, nil)

	// Register tools
	s.registerTools()

	return s, nil
}

func (s *Server) Start() error {
	return s.mcpServer.Run(context.Background(), &sdk.StdioTransport{})
}

func (s *Server) Stop() error {
	if s.store != nil {
		s.store.Close()
	}
	return nil
}

func (s *Server) registerTools() {
	sdk.AddTool(s.mcpServer, &sdk.Tool{
		Name:        "interpret_text",
		Description: "Interpret a Spanish voice-command transcript into location, count and control events",
	}, s.handleInterpretText)

	sdk.AddTool(s.mcpServer, &sdk.Tool{
		Name:        "query_totals",
		Description: "Per-stage observation totals for one bed on one recording day",
	}, s.handleQueryTotals)

	sdk.AddTool(s.mcpServer, &sdk.Tool{
		Name:        "list_models",
		Description: "List downloaded Vosk models",
	}, s.handleListModels)
}

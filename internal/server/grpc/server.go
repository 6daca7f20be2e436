// Package grpc exposes the observation log over gRPC so field devices
// can push their day's records to a shared collection point and query
// per-bed totals.
package grpc

import (
	"fmt"
	"net"
	"time"

	"google.golang.org/grpc"

	"github.com/emmett/conteo/internal/obslog"
)

// Server wraps the gRPC server and services
type Server struct {
	grpcServer *grpc.Server
	store      *obslog.Store
	host       string
	port       int
}

// Config holds server configuration
type Config struct {
	Host      string
	Port      int
	StorePath string
	// Timezone defines the day boundary for totals queries
	Timezone *time.Location
}

// NewServer creates a new gRPC sync server
func NewServer(cfg Config) (*Server, error) {
	store, err := obslog.Open(cfg.StorePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open observation store: %w", err)
	}

	s := &Server{
		grpcServer: grpc.NewServer(),
		store:      store,
		host:       cfg.Host,
		port:       cfg.Port,
	}

	// Register services
	syncService := NewSyncService(store, cfg.Timezone)
	RegisterSyncServer(s.grpcServer, syncService)

	return s, nil
}

// Start starts the gRPC server
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.host, s.port)
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	fmt.Printf("Sync server listening on %s\n", addr)
	return s.grpcServer.Serve(lis)
}

// Stop gracefully stops the server
func (s *Server) Stop() {
	s.grpcServer.GracefulStop()
	s.store.Close()
}

// RegisterSyncServer is a placeholder until proto is generated
func RegisterSyncServer(s *grpc.Server, srv *SyncService) {
	// Will be replaced by generated code: conteopb.RegisterSyncServer(s, srv)
}

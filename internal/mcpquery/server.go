// Copyright (c) 2024 Neomantra Corp
//
// Read-only Model Context Protocol query server over the base-data
// registry and archive store, combining the teacher's mcp_meta (registry
// discovery) and mcp_data (cached-data SQL) concerns into a single server
// since this domain has no billing boundary separating "safe" metadata
// tools from "costly" data tools (internal/mcp_meta/server.go,
// internal/mcp_data/cache.go).

package mcpquery

import (
	"database/sql"
	"log/slog"
	"sync"

	_ "github.com/duckdb/duckdb-go/v2"

	"wondertrader/basedata"
)

// Server holds shared state for the MCP tool handlers.
type Server struct {
	Registry *basedata.Registry
	Logger   *slog.Logger

	mu sync.Mutex
	db *sql.DB // lazily opened in-memory DuckDB connection for query_archive
}

// NewServer constructs a query server bound to registry. logger defaults to
// slog.Default() if nil.
func NewServer(registry *basedata.Registry, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{Registry: registry, Logger: logger}
}

func (s *Server) duckDB() (*sql.DB, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db != nil {
		return s.db, nil
	}
	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, err
	}
	s.db = db
	return db, nil
}

// Close releases the DuckDB connection, if one was opened.
func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

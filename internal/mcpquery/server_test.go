// Copyright (c) 2024 Neomantra Corp

package mcpquery

import (
	"log/slog"
	"strings"
	"testing"
)

func TestNewServer_DefaultsLogger(t *testing.T) {
	s := NewServer(nil, nil)
	if s.Logger == nil {
		t.Fatal("expected a default logger, got nil")
	}
}

func TestNewServer_KeepsProvidedLogger(t *testing.T) {
	logger := slog.Default()
	s := NewServer(nil, logger)
	if s.Logger != logger {
		t.Error("expected the provided logger to be kept as-is")
	}
}

func TestQueryDuckDB_RendersHeaderAndRows(t *testing.T) {
	s := NewServer(nil, nil)
	defer s.Close()

	out, err := s.queryDuckDB("select 1 as a, 'x' as b union all select 2, 'y' order by a")
	if err != nil {
		t.Fatalf("queryDuckDB failed: %s", err)
	}

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header + 2 rows, got %d lines: %q", len(lines), out)
	}
	if lines[0] != "a,b" {
		t.Errorf("header = %q, want %q", lines[0], "a,b")
	}
	if lines[1] != "1,x" {
		t.Errorf("row 1 = %q, want %q", lines[1], "1,x")
	}
}

func TestQueryDuckDB_ReusesConnectionAcrossCalls(t *testing.T) {
	s := NewServer(nil, nil)
	defer s.Close()

	if _, err := s.queryDuckDB("select 1"); err != nil {
		t.Fatalf("first query failed: %s", err)
	}
	first := s.db
	if _, err := s.queryDuckDB("select 2"); err != nil {
		t.Fatalf("second query failed: %s", err)
	}
	if s.db != first {
		t.Error("expected the lazily opened connection to be reused, not reopened")
	}
}

func TestQueryDuckDB_PropagatesSyntaxErrors(t *testing.T) {
	s := NewServer(nil, nil)
	defer s.Close()

	if _, err := s.queryDuckDB("not valid sql"); err == nil {
		t.Error("expected an error for invalid SQL, got nil")
	}
}

func TestServerClose_SucceedsWithoutAConnection(t *testing.T) {
	s := NewServer(nil, nil)
	if err := s.Close(); err != nil {
		t.Errorf("expected Close on an unopened server to succeed, got %s", err)
	}
}

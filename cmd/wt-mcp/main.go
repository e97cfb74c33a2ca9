// Copyright (c) 2024 Neomantra Corp
//
// wt-mcp is a read-only Model Context Protocol server over the base-data
// registry and archive store, combining the teacher's separate
// mcp-meta/mcp-data/mcp binaries into one agent-facing query tool since
// this domain has no billing boundary to keep them apart.

package main

import (
	"fmt"
	"log/slog"
	"os"

	mcp_server "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/pflag"

	"wondertrader/basedata"
	"wondertrader/config"
	"wondertrader/internal/mcpquery"
)

///////////////////////////////////////////////////////////////////////////////

const (
	mcpServerVersion = "0.0.1"

	defaultSSEHostPort = ":8889"

	serverInstructions = `wt-mcp provides read-only access to a WonderTrader base-data registry and its archived bar/tick stores.

Recommended workflow:
1. Use list_contracts to discover tradable instruments, optionally filtered by exchange.
2. Use get_contract for full contract terms (price tick, margin, cover mode).
3. Use get_session to see a contract's trading-section schedule.
4. Use inspect_archive to check a .dsb archive's record count and date range before loading it.
5. Use query_archive to run DuckDB SQL over Parquet files already produced by wt-export.

No tool in this server mutates state or incurs any external cost.`
)

type Config struct {
	config.BootstrapConfig

	Name    string
	Version string

	UseSSE      bool
	SSEHostPort string
}

var cfg Config
var logger *slog.Logger

///////////////////////////////////////////////////////////////////////////////

func main() {
	var showHelp bool
	var logFilename string

	pflag.StringVarP(&cfg.RegistryPath, "registry", "r", "", "Contract registry YAML path (or set WT_REGISTRY_PATH envvar)")
	pflag.StringVarP(&cfg.RegistryURL, "registry-url", "u", "", "Remote registry refresh URL (or set WT_REGISTRY_URL envvar)")
	pflag.StringVarP(&logFilename, "log-file", "l", "", "Log file destination (or MCP_LOG_FILE envvar). Default is stderr")
	pflag.StringVarP(&cfg.SSEHostPort, "port", "p", "", "host:port to listen to SSE connections")
	pflag.BoolVarP(&cfg.UseSSE, "sse", "", false, "Use SSE Transport (default is STDIO transport)")
	pflag.BoolVarP(&cfg.Verbose, "verbose", "v", false, "Verbose logging")
	pflag.BoolVarP(&showHelp, "help", "h", false, "Show help")
	pflag.Parse()

	if showHelp {
		fmt.Fprintf(os.Stdout, "usage: %s -r <registry.yaml> [opts]\n\n", os.Args[0])
		pflag.PrintDefaults()
		os.Exit(0)
	}

	if cfg.RegistryPath == "" && cfg.RegistryURL == "" {
		if err := cfg.SetFromEnv(); err != nil {
			fmt.Fprintf(os.Stderr, "error: %s\n", err.Error())
			os.Exit(1)
		}
	}

	if cfg.SSEHostPort == "" {
		cfg.SSEHostPort = defaultSSEHostPort
	}
	cfg.Name = "wt-mcp"
	cfg.Version = mcpServerVersion

	logWriter := os.Stderr
	if logFilename == "" {
		logFilename = os.Getenv("MCP_LOG_FILE")
	}
	if logFilename != "" {
		logFile, err := os.OpenFile(logFilename, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to open log file: %s\n", err.Error())
			os.Exit(1)
		}
		logWriter = logFile
		defer logFile.Close()
	}

	logLevel := slog.LevelInfo
	if cfg.Verbose {
		logLevel = slog.LevelDebug
	}
	logger = slog.New(slog.NewTextHandler(logWriter, &slog.HandlerOptions{Level: logLevel}))

	if err := run(); err != nil {
		logger.Error("run loop error", "error", err.Error())
		os.Exit(1)
	}
}

///////////////////////////////////////////////////////////////////////////////

func run() error {
	registry := basedata.NewRegistry(logger)
	if cfg.RegistryPath != "" {
		if err := registry.LoadFile(cfg.RegistryPath); err != nil {
			return fmt.Errorf("failed to load registry: %w", err)
		}
	} else if cfg.RegistryURL != "" {
		if err := registry.RefreshRemote(cfg.RegistryURL); err != nil {
			return fmt.Errorf("failed to fetch registry: %w", err)
		}
	}

	mcpServer := mcp_server.NewMCPServer(cfg.Name, cfg.Version,
		mcp_server.WithRecovery(),
		mcp_server.WithInstructions(serverInstructions),
	)

	srv := mcpquery.NewServer(registry, logger)
	defer srv.Close()
	srv.RegisterTools(mcpServer)

	if cfg.UseSSE {
		sseServer := mcp_server.NewSSEServer(mcpServer)
		logger.Info("MCP SSE server started", "hostPort", cfg.SSEHostPort)
		if err := sseServer.Start(cfg.SSEHostPort); err != nil {
			return fmt.Errorf("MCP SSE server error: %w", err)
		}
	} else {
		logger.Info("MCP STDIO server started")
		if err := mcp_server.ServeStdio(mcpServer); err != nil {
			return fmt.Errorf("MCP STDIO server error: %w", err)
		}
	}

	return nil
}

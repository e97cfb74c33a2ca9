// Copyright (c) 2024 Neomantra Corp

package mcpquery

import (
	"github.com/mark3labs/mcp-go/mcp"
	mcp_server "github.com/mark3labs/mcp-go/server"
)

///////////////////////////////////////////////////////////////////////////////

// RegisterTools registers every read-only MCP tool the server exposes.
func (s *Server) RegisterTools(mcpServer *mcp_server.MCPServer) {
	mcpServer.AddTool(
		mcp.NewTool("list_contracts",
			mcp.WithDescription("Lists tradable contracts known to the base-data registry, optionally filtered by exchange."),
			mcp.WithReadOnlyHintAnnotation(true),
			mcp.WithIdempotentHintAnnotation(true),
			mcp.WithString("exchange",
				mcp.Description("Optional exchange code to filter by (e.g. SHFE, DCE, CFFEX). If omitted, lists every contract."),
			),
		),
		s.listContractsHandler,
	)

	mcpServer.AddTool(
		mcp.NewTool("get_contract",
			mcp.WithDescription("Returns the full ContractInfo for a contract given its 'EXCHANGE.CODE' full code."),
			mcp.WithReadOnlyHintAnnotation(true),
			mcp.WithIdempotentHintAnnotation(true),
			mcp.WithString("full_code",
				mcp.Required(),
				mcp.Description("Canonical 'EXCHANGE.CODE' contract identifier, e.g. 'SHFE.au2412'."),
			),
		),
		s.getContractHandler,
	)

	mcpServer.AddTool(
		mcp.NewTool("get_session",
			mcp.WithDescription("Returns the trading-session schedule (sections, open/close offsets) for a session id, or for the session a contract belongs to."),
			mcp.WithReadOnlyHintAnnotation(true),
			mcp.WithIdempotentHintAnnotation(true),
			mcp.WithString("session_id",
				mcp.Description("Session schedule id, as found in ContractInfo.SessionID."),
			),
			mcp.WithString("full_code",
				mcp.Description("Alternative to session_id: look up the session via a contract's full code."),
			),
		),
		s.getSessionHandler,
	)

	mcpServer.AddTool(
		mcp.NewTool("inspect_archive",
			mcp.WithDescription("Reads a WonderTrader .dsb archive file (bar or tick) and reports its record count and date range. Does not load full contents into the response."),
			mcp.WithReadOnlyHintAnnotation(true),
			mcp.WithIdempotentHintAnnotation(true),
			mcp.WithString("path",
				mcp.Required(),
				mcp.Description("Filesystem path to the .dsb archive."),
			),
			mcp.WithString("kind",
				mcp.Description("Archive kind: 'bar' (default) or 'tick'."),
				mcp.Enum("bar", "tick"),
			),
		),
		s.inspectArchiveHandler,
	)

	mcpServer.AddTool(
		mcp.NewTool("query_archive",
			mcp.WithDescription("Runs a read-only DuckDB SQL query against one or more Parquet files exported by wt-export (reference them in the SQL via read_parquet('path/to/file.parquet'))."),
			mcp.WithReadOnlyHintAnnotation(true),
			mcp.WithIdempotentHintAnnotation(true),
			mcp.WithString("sql",
				mcp.Required(),
				mcp.Description("SQL query to execute, e.g. \"SELECT * FROM read_parquet('au.parquet') WHERE close > 400 LIMIT 10\"."),
			),
		),
		s.queryArchiveHandler,
	)
}

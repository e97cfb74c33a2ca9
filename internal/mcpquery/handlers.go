// Copyright (c) 2024 Neomantra Corp

package mcpquery

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"wondertrader/store"
	"wondertrader/wt"
)

///////////////////////////////////////////////////////////////////////////////

func (s *Server) listContractsHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	exchange, _ := request.RequireString("exchange")
	exchange = strings.ToUpper(exchange)

	contracts := s.Registry.ListContracts(exchange)
	jbytes, err := json.Marshal(contracts)
	if err != nil {
		return mcp.NewToolResultErrorf("failed to marshal results: %s", err), nil
	}

	s.Logger.Info("list_contracts", "exchange", exchange, "count", len(contracts))
	return mcp.NewToolResultText(string(jbytes)), nil
}

func (s *Server) getContractHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	fullCode, err := request.RequireString("full_code")
	if err != nil {
		return mcp.NewToolResultError("full_code must be set"), nil
	}

	contract, err := s.Registry.Contract(fullCode)
	if err != nil {
		return mcp.NewToolResultErrorf("contract not found: %s", err), nil
	}

	jbytes, err := json.Marshal(contract)
	if err != nil {
		return mcp.NewToolResultErrorf("failed to marshal result: %s", err), nil
	}

	s.Logger.Info("get_contract", "full_code", fullCode)
	return mcp.NewToolResultText(string(jbytes)), nil
}

func (s *Server) getSessionHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := request.RequireString("session_id")
	fullCode, _ := request.RequireString("full_code")

	var err error
	var result any
	switch {
	case sessionID != "":
		result, err = s.Registry.Session(sessionID)
	case fullCode != "":
		result, err = s.Registry.ContractSession(fullCode)
	default:
		return mcp.NewToolResultError("one of session_id or full_code must be set"), nil
	}
	if err != nil {
		return mcp.NewToolResultErrorf("session not found: %s", err), nil
	}

	jbytes, err := json.Marshal(result)
	if err != nil {
		return mcp.NewToolResultErrorf("failed to marshal result: %s", err), nil
	}

	s.Logger.Info("get_session", "session_id", sessionID, "full_code", fullCode)
	return mcp.NewToolResultText(string(jbytes)), nil
}

func (s *Server) inspectArchiveHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError("path must be set"), nil
	}
	kind, _ := request.RequireString("kind")

	var count int
	var firstDate, lastDate uint32
	if kind == "tick" {
		var ticks []wt.TickRecord
		ticks, err = store.ReadTickArchive(path)
		count = len(ticks)
		if count > 0 {
			firstDate, lastDate = ticks[0].TradingDate, ticks[count-1].TradingDate
		}
	} else {
		var bars []wt.BarRecord
		bars, err = store.ReadBarArchive(path)
		count = len(bars)
		if count > 0 {
			firstDate, lastDate = bars[0].Date, bars[count-1].Date
		}
	}
	if err != nil {
		return mcp.NewToolResultErrorf("failed to read archive: %s", err), nil
	}

	jbytes, err := json.Marshal(map[string]any{
		"path":       path,
		"kind":       kind,
		"records":    count,
		"first_date": firstDate,
		"last_date":  lastDate,
	})
	if err != nil {
		return mcp.NewToolResultErrorf("failed to marshal result: %s", err), nil
	}

	s.Logger.Info("inspect_archive", "path", path, "kind", kind, "records", count)
	return mcp.NewToolResultText(string(jbytes)), nil
}

func (s *Server) queryArchiveHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sqlStr, err := request.RequireString("sql")
	if err != nil {
		return mcp.NewToolResultError("sql must be set"), nil
	}

	result, err := s.queryDuckDB(sqlStr)
	if err != nil {
		return mcp.NewToolResultErrorf("query failed: %s", err), nil
	}

	s.Logger.Info("query_archive", "sql", sqlStr)
	return mcp.NewToolResultText(result), nil
}

///////////////////////////////////////////////////////////////////////////////

// queryDuckDB runs sqlStr against the lazily-opened DuckDB connection and
// renders the result set as CSV.
func (s *Server) queryDuckDB(sqlStr string) (string, error) {
	db, err := s.duckDB()
	if err != nil {
		return "", err
	}

	rows, err := db.Query(sqlStr)
	if err != nil {
		return "", err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString(strings.Join(cols, ","))
	sb.WriteByte('\n')

	vals := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return "", err
		}
		parts := make([]string, len(cols))
		for i, v := range vals {
			parts[i] = fmt.Sprintf("%v", v)
		}
		sb.WriteString(strings.Join(parts, ","))
		sb.WriteByte('\n')
	}
	return sb.String(), rows.Err()
}

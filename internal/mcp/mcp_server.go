// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/benchboard/benchboard/core"
	"github.com/benchboard/benchboard/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the benchboard MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, configs contract.ConfigLoader, mgr contract.StoreManager) *server.MCPServer {
	s := server.NewMCPServer(
		"Benchboard Leaderboard Server",
		contract.APIVersion,
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg:  baseCfg,
		configs:  configs,
		mgr:      mgr,
		composer: core.NewComposer(configs, mgr.GetSystemStore()),
	}

	// --- 1. Tool: list_benchmarks ---
	s.AddTool(mcp.NewTool("list_benchmarks",
		mcp.WithDescription("List the available benchmarks with their datasets, metrics and views."),
	), h.handleListBenchmarks)

	// --- 2. Tool: get_benchmark ---
	s.AddTool(mcp.NewTool("get_benchmark",
		mcp.WithDescription("Compose a benchmark and return its ranked view tables."),
		mcp.WithString("benchmark_id", mcp.Description("The benchmark id, e.g. 'glue'."), mcp.Required()),
		mcp.WithString("view", mcp.Description("Only return this view (defaults to every view, including 'orig').")),
		mcp.WithString("rank_by", mcp.Description("Column label to rank systems by (defaults to the row mean).")),
		mcp.WithNumber("limit", mcp.Description("Limit the number of systems per view.")),
	), h.handleGetBenchmark)

	// --- 3. Tool: list_systems ---
	s.AddTool(mcp.NewTool("list_systems",
		mcp.WithDescription("List public submitted systems, newest first unless sorted by a metric."),
		mcp.WithString("dataset", mcp.Description("Filter by dataset name.")),
		mcp.WithString("subdataset", mcp.Description("Filter by sub-dataset name (requires dataset).")),
		mcp.WithString("split", mcp.Description("Filter by dataset split (requires dataset).")),
		mcp.WithString("task", mcp.Description("Filter by task name.")),
		mcp.WithString("system_name", mcp.Description("Filter by a substring of the system name.")),
		mcp.WithString("sort_field", mcp.Description("'created_at' or an overall metric name.")),
		mcp.WithString("sort_direction", mcp.Description("Sort direction."), mcp.Enum("asc", "desc")),
		mcp.WithNumber("page_size", mcp.Description("Number of systems to return.")),
	), h.handleListSystems)

	// --- 4. Tool: get_system ---
	s.AddTool(mcp.NewTool("get_system",
		mcp.WithDescription("Return one public system with its evaluation results."),
		mcp.WithString("system_id", mcp.Description("The system id."), mcp.Required()),
	), h.handleGetSystem)

	return s
}

// StartMCPServer starts the benchboard MCP server over stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, configs contract.ConfigLoader, mgr contract.StoreManager) error {
	s := NewMCPServer(baseCfg, configs, mgr)
	return server.ServeStdio(s)
}

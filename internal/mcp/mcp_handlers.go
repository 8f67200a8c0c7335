package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/benchboard/benchboard/core"
	"github.com/benchboard/benchboard/internal/contract"
	"github.com/benchboard/benchboard/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg  *contract.Config
	configs  contract.ConfigLoader
	mgr      contract.StoreManager
	composer *core.Composer
}

func jsonResult(v any) *mcp.CallToolResult {
	jsonData, _ := json.MarshalIndent(v, "", "  ")
	return mcp.NewToolResultText(string(jsonData))
}

func (h *toolHandler) handleListBenchmarks(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	configs, err := h.configs.List(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list benchmarks: %v", err)), nil
	}
	return jsonResult(configs), nil
}

func (h *toolHandler) handleGetBenchmark(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := request.GetString("benchmark_id", "")
	if id == "" {
		return mcp.NewToolResultError("benchmark_id is required"), nil
	}
	cfg := h.baseCfg.Clone()
	if r := request.GetString("rank_by", ""); r != "" {
		cfg.RankBy = r
	}
	if l := request.GetInt("limit", 0); l > 0 {
		cfg.Limit = l
	}

	bm, err := h.composer.BuildBenchmark(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("benchmark failed: %v", err)), nil
	}
	ranked, err := core.RankBenchmark(bm, cfg.RankBy, cfg.Limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("benchmark failed: %v", err)), nil
	}

	if view := request.GetString("view", ""); view != "" {
		table, ok := ranked.Views[view]
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("benchmark failed: %v", &schema.NotFoundError{Kind: "view", ID: view})), nil
		}
		ranked.Views = map[string]schema.BenchmarkTable{view: table}
	}
	return jsonResult(ranked), nil
}

func (h *toolHandler) handleListSystems(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	dir := schema.SortDirection(request.GetString("sort_direction", string(schema.SortDesc)))
	if _, ok := schema.ValidSortDirections[dir]; !ok {
		return mcp.NewToolResultError("sort_direction needs to be one of asc or desc"), nil
	}
	pageSize := request.GetInt("page_size", h.baseCfg.PageSize)
	if pageSize < 1 || pageSize > contract.MaxPageSize {
		return mcp.NewToolResultError(fmt.Sprintf("page_size must be between 1 and %d", contract.MaxPageSize)), nil
	}

	// MCP clients are anonymous, so only public systems are listed
	anonymous := ""
	query := schema.SystemQuery{
		SystemName:    request.GetString("system_name", ""),
		Task:          request.GetString("task", ""),
		Viewer:        &anonymous,
		PageSize:      pageSize,
		SortField:     request.GetString("sort_field", schema.SortByCreatedAt),
		SortDirection: dir,
	}
	if dataset := request.GetString("dataset", ""); dataset != "" {
		query.Datasets = []schema.DatasetIdentity{{
			DatasetName:    dataset,
			SubDatasetName: request.GetString("subdataset", ""),
			DatasetSplit:   request.GetString("split", ""),
		}}
	}

	systems, total, err := h.mgr.GetSystemStore().FindSystems(ctx, query)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list systems: %v", err)), nil
	}
	return jsonResult(schema.SystemsPage{Systems: systems, Total: total}), nil
}

func (h *toolHandler) handleGetSystem(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := request.GetString("system_id", "")
	if id == "" {
		return mcp.NewToolResultError("system_id is required"), nil
	}
	sys, err := h.mgr.GetSystemStore().GetSystem(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to get system: %v", err)), nil
	}
	if !sys.VisibleTo("") {
		return mcp.NewToolResultError("system access denied"), nil
	}
	return jsonResult(sys), nil
}

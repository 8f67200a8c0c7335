// Package core has core logic for normalizing, aggregating and composing benchmarks.
package core

import (
	"context"
	"slices"
	"time"

	"github.com/benchboard/benchboard/internal/contract"
	"github.com/benchboard/benchboard/internal/outwriter"
	"github.com/benchboard/benchboard/schema"
)

// ExecuteBenchmark composes a benchmark and prints its views.
// It serves as the main entry point for the 'benchmark' command.
func ExecuteBenchmark(ctx context.Context, cfg *contract.Config, configs contract.ConfigLoader, mgr contract.StoreManager, benchmarkID string) error {
	start := time.Now()
	bm, err := NewComposer(configs, mgr.GetSystemStore()).BuildBenchmark(ctx, benchmarkID)
	if err != nil {
		return err
	}
	ranked, err := RankBenchmark(bm, cfg.RankBy, cfg.Limit)
	if err != nil {
		return err
	}
	duration := time.Since(start)
	return outwriter.NewOutWriter().WriteBenchmark(ranked, cfg, duration)
}

// ExecuteSystems prints one page of stored systems.
// It serves as the main entry point for the 'systems' command.
func ExecuteSystems(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager, query schema.SystemQuery) error {
	if query.PageSize == 0 {
		query.PageSize = cfg.PageSize
	}
	systems, total, err := mgr.GetSystemStore().FindSystems(ctx, query)
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WriteSystems(schema.SystemsPage{Systems: systems, Total: total}, cfg)
}

// ExecuteConfigs prints every available benchmark configuration.
// It serves as the main entry point for the 'benchmark list' command.
func ExecuteConfigs(ctx context.Context, cfg *contract.Config, configs contract.ConfigLoader) error {
	list, err := configs.List(ctx)
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WriteConfigs(list, cfg)
}

// RankBenchmark returns a copy of the benchmark whose views are ranked with RankTable.
// A column that no view has is reported as a LookupError. Views without the
// column are ranked by row mean with a warning.
func RankBenchmark(bm *schema.Benchmark, column string, limit int) (*schema.Benchmark, error) {
	if column != "" {
		found, anyColumns := false, false
		for _, table := range bm.Views {
			anyColumns = anyColumns || len(table.ColumnNames) > 0
			found = found || slices.Contains(table.ColumnNames, column)
		}
		if anyColumns && !found {
			return nil, &schema.LookupError{Kind: "column", Key: column}
		}
	}

	ranked := *bm
	ranked.Views = make(map[string]schema.BenchmarkTable, len(bm.Views))
	for name, table := range bm.Views {
		if column != "" && len(table.ColumnNames) > 0 && !slices.Contains(table.ColumnNames, column) {
			contract.LogWarn("Ranking view "+name+" by row mean",
				&schema.LookupError{Kind: "column", Key: column})
		}
		ranked.Views[name] = RankTable(table, column, limit)
	}
	return &ranked, nil
}

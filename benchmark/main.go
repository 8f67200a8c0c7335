// Package main provides a performance benchmarking tool for benchmark composition.
// It seeds a temporary SQLite store with synthetic systems for every bundled
// benchmark config, composes each benchmark several times, treating the first
// run as cold and averaging the rest as warm, and writes the timings as CSV.
//
// Usage: go run ./benchmark [config-dir]
//
//	config-dir: Directory containing benchmark configs (default: benchmark_configs)
package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/benchboard/benchboard/core"
	"github.com/benchboard/benchboard/internal/configs"
	"github.com/benchboard/benchboard/internal/contract"
	"github.com/benchboard/benchboard/internal/iocache"
	"github.com/benchboard/benchboard/schema"
)

// BenchmarkResult holds the timings of one benchmark at one store size.
type BenchmarkResult struct {
	BenchmarkID string
	Systems     int
	Submissions int
	ColdTime    string
	WarmTime    string
}

// RunConfig holds configuration for the benchmark run.
type RunConfig struct {
	ConfigDir string
	Sizes     []int // Distinct system names per store
	Runs      int
	Seed      uint64
}

func main() {
	configDir := contract.DefaultConfigDir
	if len(os.Args) == 2 {
		configDir = os.Args[1]
	} else if len(os.Args) > 2 {
		fmt.Printf("Usage: %s [config-dir]\n", os.Args[0])
		os.Exit(1)
	}

	config := RunConfig{
		ConfigDir: configDir,
		Sizes:     []int{10, 100, 1000},
		Runs:      4,
		Seed:      42,
	}

	results, err := runBenchmarks(context.Background(), config)
	if err != nil {
		fmt.Printf("Benchmark failed: %v\n", err)
		os.Exit(1)
	}

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results)
}

// runBenchmarks composes every config at every store size.
func runBenchmarks(ctx context.Context, config RunConfig) ([]BenchmarkResult, error) {
	loader := configs.NewFileLoader(config.ConfigDir)
	benchmarks, err := loader.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list benchmark configs: %w", err)
	}
	if len(benchmarks) == 0 {
		return nil, fmt.Errorf("no benchmark configs found in %s", config.ConfigDir)
	}

	fmt.Printf("Starting benchmark: %d configs, sizes %v, %d runs each\n", len(benchmarks), config.Sizes, config.Runs)

	var results []BenchmarkResult
	for _, size := range config.Sizes {
		result, err := runSize(ctx, config, loader, benchmarks, size)
		if err != nil {
			return nil, err
		}
		results = append(results, result...)
	}
	return results, nil
}

// runSize seeds a fresh store with size systems per config and times every config.
func runSize(ctx context.Context, config RunConfig, loader contract.ConfigLoader, benchmarks []*schema.BenchmarkConfig, size int) ([]BenchmarkResult, error) {
	dir, err := os.MkdirTemp("", "benchboard-benchmark-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer func() { _ = os.RemoveAll(dir) }()

	store, err := iocache.NewSystemStore(schema.SQLiteBackend, filepath.Join(dir, "bench.db"))
	if err != nil {
		return nil, err
	}
	defer func() { _ = store.Close() }()

	rng := rand.New(rand.NewPCG(config.Seed, uint64(size)))
	submissions := make(map[string]int, len(benchmarks))
	for _, bm := range benchmarks {
		n, err := seedSystems(ctx, store, bm, size, rng)
		if err != nil {
			return nil, err
		}
		submissions[bm.ID] = n
	}

	composer := core.NewComposer(loader, store)
	var results []BenchmarkResult
	for _, bm := range benchmarks {
		fmt.Printf("Composing %s with %d systems\n", bm.ID, size)
		cold, warm := timeComposition(ctx, composer, bm.ID, config.Runs)
		fmt.Printf("  Cold time: %s, Warm average: %s\n", cold, warm)
		results = append(results, BenchmarkResult{
			BenchmarkID: bm.ID,
			Systems:     size,
			Submissions: submissions[bm.ID],
			ColdTime:    cold,
			WarmTime:    warm,
		})
	}
	return results, nil
}

// seedSystems stores one submission per system and dataset with random scores.
func seedSystems(ctx context.Context, store contract.SystemStore, bm *schema.BenchmarkConfig, size int, rng *rand.Rand) (int, error) {
	created := 0
	start := time.Now().Add(-time.Duration(size) * time.Minute)
	for i := range size {
		name := bm.ID + "-system-" + strconv.Itoa(i)
		for _, d := range bm.Datasets {
			metrics, err := bm.EffectiveMetrics(d)
			if err != nil {
				return created, err
			}
			overall := make(map[string]schema.MetricValue, len(metrics))
			for _, m := range metrics {
				overall[m.Name] = schema.MetricValue{Value: rng.Float64()}
			}
			id := d.Identity()
			sys := schema.System{
				Creator:   "bench@example.com",
				CreatedAt: start.Add(time.Duration(created) * time.Second),
				SystemInfo: schema.SystemInfo{
					SystemName:     name,
					TaskName:       "benchmark",
					DatasetName:    id.DatasetName,
					SubDatasetName: id.SubDatasetName,
					DatasetSplit:   id.DatasetSplit,
					Results:        schema.SystemResults{Overall: overall},
				},
			}
			if _, err := store.CreateSystem(ctx, sys, nil); err != nil {
				return created, fmt.Errorf("failed to seed %s: %w", name, err)
			}
			created++
		}
	}
	return created, nil
}

// timeComposition builds the benchmark numRuns times and returns the cold time and warm average.
func timeComposition(ctx context.Context, composer *core.Composer, id string, numRuns int) (cold, warm string) {
	var times []float64
	for range numRuns {
		start := time.Now()
		if _, err := composer.BuildBenchmark(ctx, id); err != nil {
			fmt.Printf("  Warning: run failed: %v\n", err)
			continue
		}
		times = append(times, time.Since(start).Seconds())
	}

	cold, warm = "FAILED", "FAILED"
	if len(times) > 0 {
		cold = fmt.Sprintf("%.4fs", times[0])
	}
	if len(times) > 1 {
		var sum float64
		for _, t := range times[1:] {
			sum += t
		}
		warm = fmt.Sprintf("%.4fs", sum/float64(len(times)-1))
	}
	return cold, warm
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("/tmp/benchboard_benchmark_%s.csv", timestamp)

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{"benchmark", "systems", "submissions", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, r := range results {
		rec := []string{r.BenchmarkID, strconv.Itoa(r.Systems), strconv.Itoa(r.Submissions), r.ColdTime, r.WarmTime}
		if err := writer.Write(rec); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary
func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")
	for _, r := range results {
		fmt.Printf("  %-12s %6d systems (%7d submissions): Cold: %s, Warm: %s\n",
			r.BenchmarkID, r.Systems, r.Submissions, r.ColdTime, r.WarmTime)
	}
}

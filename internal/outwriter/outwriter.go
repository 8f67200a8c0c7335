// Package outwriter has output and writer logic.
package outwriter

import (
	"os"
	"time"

	"github.com/benchboard/benchboard/internal/contract"
	"github.com/benchboard/benchboard/schema"
	"golang.org/x/term"
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for the command layer.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteBenchmark prints the views of a benchmark using the configured output format.
func (ow *OutWriter) WriteBenchmark(bm *schema.Benchmark, cfg *contract.Config, duration time.Duration) error {
	return WriteBenchmarkResults(bm, cfg, duration)
}

// WriteSystems prints a page of systems using the configured output format.
func (ow *OutWriter) WriteSystems(page schema.SystemsPage, cfg *contract.Config) error {
	return WriteSystemResults(page, cfg)
}

// WriteConfigs prints the available benchmark configurations using the configured output format.
func (ow *OutWriter) WriteConfigs(configs []*schema.BenchmarkConfig, cfg *contract.Config) error {
	return WriteConfigResults(configs, cfg)
}

// terminalWidth returns the width override or the detected terminal width.
func terminalWidth(cfg *contract.Config) int {
	// Check for absolute width override from flag/env
	if cfg.Width > 0 {
		return cfg.Width
	}
	detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || detectedWidth <= 0 {
		// Fallback to conservative default if terminal size can't be detected
		return 80
	}
	return detectedWidth
}

// getMaxLabelWidth calculates the maximum width of a column label in table output,
// sharing the space left after the Rank and System columns between all score columns.
func getMaxLabelWidth(cfg *contract.Config, numColumns int) int {
	// Rank + System with borders/padding
	baseWidth := 30
	if numColumns < 1 {
		numColumns = 1
	}

	available := (terminalWidth(cfg) - baseWidth) / numColumns
	if available < 12 {
		// Minimum reasonable label width
		return 12
	}
	if available > 60 {
		return 60
	}
	return available
}

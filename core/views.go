package core

import (
	"fmt"

	"github.com/benchboard/benchboard/core/agg"
	"github.com/benchboard/benchboard/schema"
)

// BuildViewFrames builds the normalized frame and runs every configured view
// over it. The result always holds schema.OrigView with the unmodified frame.
func BuildViewFrames(cfg *schema.BenchmarkConfig, infos []schema.SystemInfo) (map[string]*agg.Frame, error) {
	frame, err := BuildTable(cfg, infos)
	if err != nil {
		return nil, err
	}

	frames := map[string]*agg.Frame{schema.OrigView: frame}
	for _, view := range cfg.Views {
		if _, ok := frames[view.Name]; ok {
			if view.Name == schema.OrigView {
				return nil, &schema.ConfigError{Benchmark: cfg.ID, Reason: fmt.Sprintf("view name %q is reserved", view.Name)}
			}
			return nil, &schema.ConfigError{Benchmark: cfg.ID, Reason: fmt.Sprintf("duplicate view %q", view.Name)}
		}
		out, err := agg.Pipeline(frame, view.Operations)
		if err != nil {
			return nil, fmt.Errorf("failed to build view %q: %w", view.Name, err)
		}
		frames[view.Name] = out
	}
	return frames, nil
}

// BuildViews renders every view of a benchmark, including schema.OrigView.
func BuildViews(cfg *schema.BenchmarkConfig, infos []schema.SystemInfo) (map[string]schema.BenchmarkTable, error) {
	frames, err := BuildViewFrames(cfg, infos)
	if err != nil {
		return nil, err
	}
	tables := make(map[string]schema.BenchmarkTable, len(frames))
	for name, f := range frames {
		table, err := RenderTable(f)
		if err != nil {
			return nil, fmt.Errorf("failed to render view %q: %w", name, err)
		}
		tables[name] = table
	}
	return tables, nil
}

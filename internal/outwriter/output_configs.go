package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/benchboard/benchboard/internal/contract"
	"github.com/benchboard/benchboard/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// configSummary is the flattened listing entry of a benchmark configuration.
type configSummary struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Datasets int      `json:"datasets"`
	Metrics  []string `json:"metrics"`
	Views    []string `json:"views"`
}

func summarizeConfigs(configs []*schema.BenchmarkConfig) []configSummary {
	out := make([]configSummary, len(configs))
	for i, c := range configs {
		s := configSummary{ID: c.ID, Name: c.Name, Datasets: len(c.Datasets), Metrics: []string{}, Views: []string{schema.OrigView}}
		for _, m := range c.Metrics {
			s.Metrics = append(s.Metrics, m.Name)
		}
		for _, v := range c.Views {
			s.Views = append(s.Views, v.Name)
		}
		out[i] = s
	}
	return out
}

// WriteConfigResults outputs the benchmark configurations, dispatching based on the output format configured.
// Parquet is not supported for configurations and falls back to JSON.
func WriteConfigResults(configs []*schema.BenchmarkConfig, cfg *contract.Config) error {
	summaries := summarizeConfigs(configs)

	switch cfg.Output {
	case schema.JSONOut, schema.ParquetOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, configs)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVWithHeader(w, []string{"id", "name", "datasets", "metrics", "views"}, func(cw *csv.Writer) error {
				for _, s := range summaries {
					rec := []string{s.ID, s.Name, strconv.Itoa(s.Datasets), strings.Join(s.Metrics, "|"), strings.Join(s.Views, "|")}
					if err := cw.Write(rec); err != nil {
						return err
					}
				}
				return nil
			})
		}, "Wrote CSV")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			table := tablewriter.NewWriter(w)
			table.Header([]string{"ID", "Name", "Datasets", "Metrics", "Views"})
			table.Configure(func(cfg *tablewriter.Config) {
				cfg.Row.Alignment.Global = tw.AlignLeft
			})
			var data [][]string
			for _, s := range summaries {
				data = append(data, []string{s.ID, s.Name, strconv.Itoa(s.Datasets), strings.Join(s.Metrics, ", "), strings.Join(s.Views, ", ")})
			}
			if err := table.Bulk(data); err != nil {
				return err
			}
			if err := table.Render(); err != nil {
				return err
			}
			_, err := fmt.Fprintf(w, "Showing %d benchmark configs from %s\n", len(summaries), cfg.ConfigDir)
			return err
		}, "Wrote table")
	}
}

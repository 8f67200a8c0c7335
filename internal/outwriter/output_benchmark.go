package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strconv"
	"time"

	"github.com/benchboard/benchboard/internal/contract"
	"github.com/benchboard/benchboard/internal/parquet"
	"github.com/benchboard/benchboard/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// namedView pairs a rendered table with its view name.
type namedView struct {
	Name  string
	Table schema.BenchmarkTable
}

// WriteBenchmarkResults outputs the benchmark views, dispatching based on the output format configured.
func WriteBenchmarkResults(bm *schema.Benchmark, cfg *contract.Config, duration time.Duration) error {
	views, err := selectViews(bm, cfg.View)
	if err != nil {
		return err
	}
	fmtFloat, _ := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeBenchmarkJSON(w, bm, views)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeBenchmarkCSV(w, views, fmtFloat)
		}, "Wrote CSV")
	case schema.ParquetOut:
		var cells []parquet.ScoreCell
		for _, v := range views {
			cells = append(cells, parquet.ConvertBenchmarkTable(v.Name, v.Table)...)
		}
		if err := parquet.WriteScoreCellsParquet(cells, cfg.OutputFile); err != nil {
			return fmt.Errorf("error writing parquet output: %w", err)
		}
		fmt.Fprintf(os.Stderr, "💾 Wrote Parquet to %s\n", cfg.OutputFile)
		return nil
	default:
		// Default to human-readable tables
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			for _, v := range views {
				if err := writeBenchmarkTable(w, v, cfg, fmtFloat); err != nil {
					return err
				}
			}
			_, err := fmt.Fprintf(w, "Benchmark %s composed from %d leaderboard records in %v\n",
				bm.Config.ID, len(bm.Leaderboard), duration)
			return err
		}, "Wrote table")
	}
}

// selectViews returns the requested view, or every view with "orig" first and the rest by name.
func selectViews(bm *schema.Benchmark, name string) ([]namedView, error) {
	if name != "" {
		table, ok := bm.Views[name]
		if !ok {
			return nil, &schema.NotFoundError{Kind: "view", ID: name}
		}
		return []namedView{{Name: name, Table: table}}, nil
	}

	names := slices.Sorted(maps.Keys(bm.Views))
	views := make([]namedView, 0, len(names))
	if table, ok := bm.Views[schema.OrigView]; ok {
		views = append(views, namedView{Name: schema.OrigView, Table: table})
	}
	for _, n := range names {
		if n != schema.OrigView {
			views = append(views, namedView{Name: n, Table: bm.Views[n]})
		}
	}
	return views, nil
}

// bestRows returns, per column, the row index holding the highest score.
func bestRows(table schema.BenchmarkTable) []int {
	best := make([]int, len(table.ColumnNames))
	for ci := range table.ColumnNames {
		for si := range table.SystemNames {
			if table.Scores[si][ci] > table.Scores[best[ci]][ci] {
				best[ci] = si
			}
		}
	}
	return best
}

// writeBenchmarkTable generates and writes one view as a human-readable table.
func writeBenchmarkTable(w io.Writer, v namedView, cfg *contract.Config, fmtFloat func(float64) string) error {
	title := fmt.Sprintf("View: %s", v.Name)
	if cfg.UseColors {
		title = contract.HeaderColor.Sprint(title)
	}
	if _, err := fmt.Fprintln(w, title); err != nil {
		return err
	}

	table := tablewriter.NewWriter(w)

	// 1. Define Headers
	labelWidth := getMaxLabelWidth(cfg, len(v.Table.ColumnNames))
	headers := []string{"Rank", "System"}
	for _, c := range v.Table.ColumnNames {
		headers = append(headers, contract.TruncateLabel(c, labelWidth))
	}
	table.Header(headers)
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	// 2. Populate Rows
	var best []int
	if len(v.Table.SystemNames) > 0 {
		best = bestRows(v.Table)
	}
	var data [][]string
	for si, system := range v.Table.SystemNames {
		row := []string{strconv.Itoa(si + 1), system}
		for ci := range v.Table.ColumnNames {
			cell := fmtFloat(v.Table.Scores[si][ci])
			if cfg.UseColors && best[ci] == si {
				cell = contract.BestColor.Sprint(cell)
			}
			row = append(row, cell)
		}
		data = append(data, row)
	}

	// 3. Render the table
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Showing %d systems across %d columns\n\n", len(v.Table.SystemNames), len(v.Table.ColumnNames))
	return err
}

// writeBenchmarkCSV writes every selected view in long format, one cell per line.
func writeBenchmarkCSV(w io.Writer, views []namedView, fmtFloat func(float64) string) error {
	header := []string{"view", "rank", "system_name", "column", "score"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, v := range views {
			for si, system := range v.Table.SystemNames {
				for ci, column := range v.Table.ColumnNames {
					rec := []string{v.Name, strconv.Itoa(si + 1), system, column, fmtFloat(v.Table.Scores[si][ci])}
					if err := cw.Write(rec); err != nil {
						return err
					}
				}
			}
		}
		return nil
	})
}

// writeBenchmarkJSON writes the benchmark payload restricted to the selected views.
func writeBenchmarkJSON(w io.Writer, bm *schema.Benchmark, views []namedView) error {
	out := schema.Benchmark{
		Config:      bm.Config,
		Leaderboard: bm.Leaderboard,
		Views:       make(map[string]schema.BenchmarkTable, len(views)),
	}
	for _, v := range views {
		out.Views[v.Name] = v.Table
	}
	return writeJSON(w, out)
}

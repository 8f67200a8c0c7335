package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/benchboard/benchboard/internal/contract"
	"github.com/benchboard/benchboard/internal/parquet"
	"github.com/benchboard/benchboard/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// shortIDLength is how much of a system id is shown in tables.
const shortIDLength = 8

// WriteSystemResults outputs a page of systems, dispatching based on the output format configured.
func WriteSystemResults(page schema.SystemsPage, cfg *contract.Config) error {
	fmtFloat, fmtTime := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, page)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeSystemsCSV(w, page.Systems, fmtFloat, fmtTime)
		}, "Wrote CSV")
	case schema.ParquetOut:
		rows, err := parquet.ConvertSystems(page.Systems)
		if err != nil {
			return err
		}
		if err := parquet.WriteSystemsParquet(rows, cfg.OutputFile); err != nil {
			return fmt.Errorf("error writing parquet output: %w", err)
		}
		fmt.Fprintf(os.Stderr, "💾 Wrote Parquet to %s\n", cfg.OutputFile)
		return nil
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeSystemsTable(w, page, cfg, fmtFloat, fmtTime)
		}, "Wrote table")
	}
}

// datasetLabel describes the dataset a system was evaluated on.
func datasetLabel(info schema.SystemInfo) string {
	if info.DatasetName == "" {
		return "(custom)"
	}
	return info.Identity().String()
}

// resultsSummary renders the overall results as "metric=value" pairs in reported order.
func resultsSummary(info schema.SystemInfo, fmtFloat func(float64) string) string {
	var parts []string
	for _, m := range info.ReportedMetrics() {
		if v, ok := info.MetricValue(m); ok {
			parts = append(parts, fmt.Sprintf("%s=%s", m, fmtFloat(v)))
		}
	}
	return strings.Join(parts, " ")
}

func shortID(id string) string {
	if len(id) > shortIDLength {
		return id[:shortIDLength]
	}
	return id
}

// writeSystemsTable generates and writes the human-readable systems table.
func writeSystemsTable(w io.Writer, page schema.SystemsPage, cfg *contract.Config, fmtFloat func(float64) string, fmtTime func(time.Time) string) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"ID", "System", "Task", "Dataset", "Results", "Creator", "Private", "Created"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignLeft
	})

	labelWidth := getMaxLabelWidth(cfg, 4)
	var data [][]string
	for _, s := range page.Systems {
		info := s.SystemInfo
		data = append(data, []string{
			shortID(s.SystemID),
			info.SystemName,
			info.TaskName,
			contract.TruncateLabel(datasetLabel(info), labelWidth),
			contract.TruncateLabel(resultsSummary(info, fmtFloat), labelWidth),
			s.Creator,
			strconv.FormatBool(s.IsPrivate),
			fmtTime(s.CreatedAt),
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Showing %d of %d systems. Store backend: %s\n", len(page.Systems), page.Total, cfg.StoreBackend)
	return err
}

// writeSystemsCSV writes the systems in CSV format with the full id and metric list.
func writeSystemsCSV(w io.Writer, systems []schema.System, fmtFloat func(float64) string, fmtTime func(time.Time) string) error {
	header := []string{
		"system_id",
		"system_name",
		"task_name",
		"dataset_name",
		"sub_dataset_name",
		"dataset_split",
		"source_language",
		"target_language",
		"results",
		"creator",
		"is_private",
		"created_at",
	}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, s := range systems {
			info := s.SystemInfo
			rec := []string{
				s.SystemID,
				info.SystemName,
				info.TaskName,
				info.DatasetName,
				info.SubDatasetName,
				info.DatasetSplit,
				info.SourceLanguage,
				info.TargetLanguage,
				resultsSummary(info, fmtFloat),
				s.Creator,
				strconv.FormatBool(s.IsPrivate),
				fmtTime(s.CreatedAt),
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

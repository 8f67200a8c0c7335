// Package parquet provides data structures and functions for exporting benchmark
// and system data to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/benchboard/benchboard/schema"
	"github.com/parquet-go/parquet-go"
)

// SystemRow represents one stored system.
// This struct maps to the benchboard_systems database table.
type SystemRow struct {
	// SystemID is the unique identifier of the system
	SystemID string `parquet:"system_id,snappy"`

	// SystemName is the display name chosen by the submitter
	SystemName string `parquet:"system_name,snappy"`

	// TaskName is the evaluated task (e.g. text-classification)
	TaskName string `parquet:"task_name,snappy"`

	// DatasetName is the evaluated dataset (nullable for custom datasets)
	DatasetName *string `parquet:"dataset_name,optional,snappy"`

	// SubDatasetName is the evaluated sub dataset (nullable)
	SubDatasetName *string `parquet:"sub_dataset_name,optional,snappy"`

	// DatasetSplit is the evaluated split (nullable)
	DatasetSplit *string `parquet:"dataset_split,optional,snappy"`

	// SourceLanguage is the input language (nullable)
	SourceLanguage *string `parquet:"source_language,optional,snappy"`

	// TargetLanguage is the output language (nullable)
	TargetLanguage *string `parquet:"target_language,optional,snappy"`

	// Creator is the submitting user
	Creator string `parquet:"creator,snappy"`

	// IsPrivate hides outputs from other users
	IsPrivate bool `parquet:"is_private,snappy"`

	// CreatedAt is when the system was submitted (stored as TIMESTAMP with nanosecond precision)
	CreatedAt time.Time `parquet:"created_at,snappy"`

	// Results contains the JSON-encoded overall results (nullable)
	Results *string `parquet:"results,optional,snappy"`
}

// NormalizedRow represents one (system, dataset, metric) score of a benchmark.
type NormalizedRow struct {
	SystemName     string  `parquet:"system_name,snappy"`
	DatasetName    string  `parquet:"dataset_name,snappy"`
	SubDatasetName *string `parquet:"sub_dataset_name,optional,snappy"`
	DatasetSplit   string  `parquet:"dataset_split,snappy"`
	Metric         string  `parquet:"metric,snappy"`
	MetricWeight   float64 `parquet:"metric_weight,snappy"`
	Score          float64 `parquet:"score,snappy"`
}

// ScoreCell represents one cell of a rendered benchmark view in long format.
type ScoreCell struct {
	// View is the name of the benchmark view
	View string `parquet:"view,snappy"`

	// SystemName is the row of the cell
	SystemName string `parquet:"system_name,snappy"`

	// Column is the composite column label of the cell
	Column string `parquet:"column,snappy"`

	// Score is the cell value
	Score float64 `parquet:"score,snappy"`
}

// writeParquet writes a slice of records to a Parquet file whose schema is
// derived from the struct tags of T.
func writeParquet[T any](data []T, outputPath string) error {
	// Create the output file
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[T](file)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to close parquet writer: %w", err)
	}
	return nil
}

// WriteSystemsParquet writes a slice of SystemRow structs to a Parquet file.
func WriteSystemsParquet(data []SystemRow, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteNormalizedRowsParquet writes a slice of NormalizedRow structs to a Parquet file.
func WriteNormalizedRowsParquet(data []NormalizedRow, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteScoreCellsParquet writes a slice of ScoreCell structs to a Parquet file.
func WriteScoreCellsParquet(data []ScoreCell, outputPath string) error {
	return writeParquet(data, outputPath)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// ConvertSystems converts stored systems to SystemRow for Parquet export.
func ConvertSystems(systems []schema.System) ([]SystemRow, error) {
	result := make([]SystemRow, len(systems))
	for i, sys := range systems {
		info := sys.SystemInfo
		var results *string
		if len(info.Results.Overall) > 0 {
			raw, err := json.Marshal(info.Results)
			if err != nil {
				return nil, fmt.Errorf("failed to encode results of %s: %w", sys.SystemID, err)
			}
			results = optional(string(raw))
		}
		result[i] = SystemRow{
			SystemID:       sys.SystemID,
			SystemName:     info.SystemName,
			TaskName:       info.TaskName,
			DatasetName:    optional(info.DatasetName),
			SubDatasetName: optional(info.SubDatasetName),
			DatasetSplit:   optional(info.DatasetSplit),
			SourceLanguage: optional(info.SourceLanguage),
			TargetLanguage: optional(info.TargetLanguage),
			Creator:        sys.Creator,
			IsPrivate:      sys.IsPrivate,
			CreatedAt:      sys.CreatedAt,
			Results:        results,
		}
	}
	return result, nil
}

// ConvertNormalizedRows converts normalized rows for Parquet export.
func ConvertNormalizedRows(rows []schema.NormalizedRow) []NormalizedRow {
	result := make([]NormalizedRow, len(rows))
	for i, r := range rows {
		result[i] = NormalizedRow{
			SystemName:     r.SystemName,
			DatasetName:    r.DatasetName,
			SubDatasetName: optional(r.SubDatasetName),
			DatasetSplit:   r.DatasetSplit,
			Metric:         r.Metric,
			MetricWeight:   r.MetricWeight,
			Score:          r.Score,
		}
	}
	return result
}

// ConvertBenchmarkTable flattens a rendered view into ScoreCell rows, system by system.
func ConvertBenchmarkTable(view string, table schema.BenchmarkTable) []ScoreCell {
	result := make([]ScoreCell, 0, len(table.SystemNames)*len(table.ColumnNames))
	for si, system := range table.SystemNames {
		for ci, column := range table.ColumnNames {
			result = append(result, ScoreCell{
				View:       view,
				SystemName: system,
				Column:     column,
				Score:      table.Scores[si][ci],
			})
		}
	}
	return result
}

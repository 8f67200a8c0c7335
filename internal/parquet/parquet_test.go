package parquet

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/benchboard/benchboard/schema"
	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// readAll reads every row of a Parquet file written with T's schema.
func readAll[T any](t *testing.T, path string) []T {
	t.Helper()
	file, err := os.Open(path)
	require.NoError(t, err, "Should be able to open output file")
	defer file.Close()

	reader := parquet.NewGenericReader[T](file)
	defer reader.Close()

	rows := make([]T, reader.NumRows())
	n, err := reader.Read(rows)
	if err != nil && err != io.EOF {
		require.NoError(t, err, "Should be able to read data")
	}
	return rows[:n]
}

func sampleSystems() []schema.System {
	now := time.Now()
	return []schema.System{
		{
			SystemID:  "2b1f0c4e-8f3a-4a55-9d0e-1c8a4c7e9f10",
			Creator:   "alice@example.com",
			CreatedAt: now.Add(-1 * time.Hour),
			SystemInfo: schema.SystemInfo{
				SystemName:     "bert-base",
				TaskName:       "text-classification",
				DatasetName:    "sst2",
				DatasetSplit:   "test",
				SourceLanguage: "en",
				TargetLanguage: "en",
				Results: schema.SystemResults{Overall: map[string]schema.MetricValue{
					"accuracy": {Value: 0.91},
				}},
			},
		},
		{
			SystemID:  "7d2e55a1-0b9c-4f1e-a3d4-6a0f2b8c1e33",
			Creator:   "bob@example.com",
			IsPrivate: true,
			CreatedAt: now,
			SystemInfo: schema.SystemInfo{
				SystemName: "custom-run",
				TaskName:   "text-classification",
			},
		},
	}
}

func TestStructTags(t *testing.T) {
	tests := []struct {
		name    string
		model   any
		columns []string
	}{
		{"SystemRow", new(SystemRow), []string{
			"system_id", "system_name", "task_name", "dataset_name", "sub_dataset_name", "dataset_split",
			"source_language", "target_language", "creator", "is_private", "created_at", "results",
		}},
		{"NormalizedRow", new(NormalizedRow), []string{
			"system_name", "dataset_name", "sub_dataset_name", "dataset_split", "metric", "metric_weight", "score",
		}},
		{"ScoreCell", new(ScoreCell), []string{"view", "system_name", "column", "score"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Verify struct tags are properly defined for parquet schema inference
			s := parquet.SchemaOf(tt.model)
			require.NotNil(t, s)
			for _, colName := range tt.columns {
				col, ok := s.Lookup(colName)
				require.True(t, ok, "Column %s should exist in schema", colName)
				require.NotNil(t, col, "Column %s should not be nil", colName)
			}
		})
	}
}

func TestWriteSystemsParquet(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "systems.parquet")

	data, err := ConvertSystems(sampleSystems())
	require.NoError(t, err)
	require.NoError(t, WriteSystemsParquet(data, outputPath), "Writing Parquet file should not produce error")

	readData := readAll[SystemRow](t, outputPath)
	require.Len(t, readData, 2, "Should read all records")

	assert.Equal(t, "bert-base", readData[0].SystemName)
	require.NotNil(t, readData[0].DatasetName)
	assert.Equal(t, "sst2", *readData[0].DatasetName)
	require.NotNil(t, readData[0].Results)
	assert.JSONEq(t, `{"overall":{"accuracy":{"value":0.91}}}`, *readData[0].Results)
	assert.WithinDuration(t, data[0].CreatedAt, readData[0].CreatedAt, time.Nanosecond)

	// Custom dataset systems carry no dataset fields
	assert.True(t, readData[1].IsPrivate)
	assert.Nil(t, readData[1].DatasetName)
	assert.Nil(t, readData[1].DatasetSplit)
	assert.Nil(t, readData[1].Results)
}

func TestWriteNormalizedRowsParquet(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "rows.parquet")
	rows := []schema.NormalizedRow{
		{SystemName: "A", DatasetName: "mnli", SubDatasetName: "matched", DatasetSplit: "test", Metric: "accuracy", MetricWeight: 1, Score: 0.8},
		{SystemName: "B", DatasetName: "sst2", DatasetSplit: "test", Metric: "accuracy", MetricWeight: 1, Score: 0},
	}

	require.NoError(t, WriteNormalizedRowsParquet(ConvertNormalizedRows(rows), outputPath))

	readData := readAll[NormalizedRow](t, outputPath)
	require.Len(t, readData, 2)
	require.NotNil(t, readData[0].SubDatasetName)
	assert.Equal(t, "matched", *readData[0].SubDatasetName)
	assert.Nil(t, readData[1].SubDatasetName)
	assert.InDelta(t, 0.8, readData[0].Score, 1e-9)
}

func TestConvertBenchmarkTable(t *testing.T) {
	table := schema.BenchmarkTable{
		SystemNames: []string{"A", "B"},
		ColumnNames: []string{"metric=f1", "metric=acc"},
		Scores:      [][]float64{{0.1, 0.2}, {0.3, 0.4}},
	}

	cells := ConvertBenchmarkTable("orig", table)
	require.Len(t, cells, 4)
	assert.Equal(t, ScoreCell{View: "orig", SystemName: "B", Column: "metric=f1", Score: 0.3}, cells[2])

	outputPath := filepath.Join(t.TempDir(), "scores.parquet")
	require.NoError(t, WriteScoreCellsParquet(cells, outputPath))
	assert.Equal(t, cells, readAll[ScoreCell](t, outputPath))
}

func TestWriteParquetEmptyData(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "empty.parquet")

	// Write empty data
	require.NoError(t, WriteSystemsParquet([]SystemRow{}, outputPath), "Writing empty data should not produce error")

	// Verify file was created
	info, err := os.Stat(outputPath)
	require.NoError(t, err, "Output file should exist")
	assert.Greater(t, info.Size(), int64(0), "Output file should contain schema even if empty")
}

func TestWriteParquetInvalidPath(t *testing.T) {
	err := WriteScoreCellsParquet([]ScoreCell{{View: "orig"}}, "/nonexistent/directory/output.parquet")
	require.Error(t, err, "Writing to invalid path should produce error")
}

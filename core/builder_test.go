package core

import (
	"testing"

	"github.com/benchboard/benchboard/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(f float64) *float64 { return &f }

// sst2Config is a single dataset benchmark scored on accuracy.
func sst2Config() *schema.BenchmarkConfig {
	return &schema.BenchmarkConfig{
		ID:       "sst2",
		Datasets: []schema.DatasetSpec{{DatasetName: "SST2", DatasetSplit: "test"}},
		Metrics:  []schema.MetricSpec{{Name: "accuracy", Default: 0.0}},
	}
}

func info(system, dataset string, results map[string]float64) schema.SystemInfo {
	overall := make(map[string]schema.MetricValue, len(results))
	for k, v := range results {
		overall[k] = schema.MetricValue{Value: v}
	}
	return schema.SystemInfo{
		SystemName:   system,
		TaskName:     "text-classification",
		DatasetName:  dataset,
		DatasetSplit: "test",
		Results:      schema.SystemResults{Overall: overall},
	}
}

func TestBuildRowsSingleSystem(t *testing.T) {
	rows, err := BuildRows(sst2Config(), []schema.SystemInfo{
		info("A", "SST2", map[string]float64{"accuracy": 0.9}),
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)

	assert.Equal(t, "A", rows[0].SystemName)
	assert.Equal(t, "SST2", rows[0].DatasetName)
	assert.Equal(t, "test", rows[0].DatasetSplit)
	assert.Equal(t, "accuracy", rows[0].Metric)
	assert.InDelta(t, 0.9, rows[0].Score, 1e-9)
	assert.InDelta(t, 1.0, rows[0].MetricWeight, 1e-9)
}

func TestBuildRowsUnlistedDataset(t *testing.T) {
	_, err := BuildRows(sst2Config(), []schema.SystemInfo{
		info("A", "SST2", map[string]float64{"accuracy": 0.9}),
		info("B", "SST3", map[string]float64{"accuracy": 0.7}),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, schema.ErrLookup)

	var lookupErr *schema.LookupError
	require.ErrorAs(t, err, &lookupErr)
	assert.Equal(t, "dataset", lookupErr.Kind)
	assert.Equal(t, "B", lookupErr.System)
}

func TestBuildRowsDuplicateDataset(t *testing.T) {
	cfg := sst2Config()
	// An omitted split defaults to test, so both specs share one identity
	cfg.Datasets = append(cfg.Datasets, schema.DatasetSpec{DatasetName: "SST2"})

	_, err := BuildRows(cfg, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, schema.ErrConfig)
}

func TestBuildRowsMissingMetrics(t *testing.T) {
	cfg := &schema.BenchmarkConfig{
		ID:       "nometrics",
		Datasets: []schema.DatasetSpec{{DatasetName: "SST2"}},
	}
	_, err := BuildRows(cfg, []schema.SystemInfo{info("A", "SST2", nil)})
	require.Error(t, err)
	assert.ErrorIs(t, err, schema.ErrConfig)
	assert.Contains(t, err.Error(), "SST2 --  -- test")
}

func TestBuildRowsRectangular(t *testing.T) {
	cfg := &schema.BenchmarkConfig{
		ID: "glue",
		Datasets: []schema.DatasetSpec{
			{DatasetName: "SST2"},
			{DatasetName: "CoLA"},
			{DatasetName: "MNLI", SubDatasetName: "matched"},
		},
		Metrics: []schema.MetricSpec{{Name: "accuracy"}, {Name: "f1", Default: 0.1}},
	}
	mnli := info("C", "MNLI", map[string]float64{"f1": 0.3})
	mnli.SubDatasetName = "matched"
	infos := []schema.SystemInfo{
		info("A", "SST2", map[string]float64{"accuracy": 0.9, "f1": 0.8}),
		info("A", "CoLA", map[string]float64{"accuracy": 0.5}),
		info("B", "SST2", map[string]float64{"accuracy": 0.4}),
		mnli,
	}

	rows, err := BuildRows(cfg, infos)
	require.NoError(t, err)

	// 3 systems x 3 datasets x 2 metrics
	assert.Len(t, rows, 3*3*2)

	perSystem := make(map[string]int)
	for _, r := range rows {
		perSystem[r.SystemName]++
		assert.InDelta(t, 0.5, r.MetricWeight, 1e-9)
	}
	assert.Equal(t, map[string]int{"A": 6, "B": 6, "C": 6}, perSystem)

	// A reported no f1 on CoLA, B submitted nothing to CoLA
	assert.Equal(t, schema.NormalizedRow{
		SystemName: "A", DatasetName: "CoLA", DatasetSplit: "test", Metric: "f1", MetricWeight: 0.5, Score: 0.1,
	}, rows[3])
	assert.Equal(t, schema.NormalizedRow{
		SystemName: "B", DatasetName: "CoLA", DatasetSplit: "test", Metric: "accuracy", MetricWeight: 0.5, Score: 0,
	}, rows[8])
	assert.InDelta(t, 0.3, rows[17].Score, 1e-9)
	assert.Equal(t, "matched", rows[17].SubDatasetName)
}

func TestBuildRowsNoSubmissions(t *testing.T) {
	rows, err := BuildRows(sst2Config(), nil)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestBuildRowsMetricOverrides(t *testing.T) {
	cfg := &schema.BenchmarkConfig{
		ID: "mixed",
		Datasets: []schema.DatasetSpec{
			{DatasetName: "SST2"},
			{DatasetName: "WMT", Metrics: []schema.MetricSpec{
				{Name: "bleu", Weight: ptr(0.7)},
				{Name: "chrf"},
				{Name: "ter"},
			}},
		},
		Metrics: []schema.MetricSpec{{Name: "accuracy"}},
	}
	rows, err := BuildRows(cfg, []schema.SystemInfo{info("A", "SST2", map[string]float64{"accuracy": 0.9})})
	require.NoError(t, err)
	require.Len(t, rows, 4)

	assert.Equal(t, "accuracy", rows[0].Metric)
	assert.InDelta(t, 1.0, rows[0].MetricWeight, 1e-9)
	assert.Equal(t, "bleu", rows[1].Metric)
	assert.InDelta(t, 0.7, rows[1].MetricWeight, 1e-9)
	assert.InDelta(t, 1.0/3, rows[2].MetricWeight, 1e-9)
}

func TestBuildRowsFirstSubmissionWins(t *testing.T) {
	rows, err := BuildRows(sst2Config(), []schema.SystemInfo{
		info("A", "SST2", map[string]float64{"accuracy": 0.9}),
		info("A", "SST2", map[string]float64{"accuracy": 0.1}),
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.InDelta(t, 0.9, rows[0].Score, 1e-9)
}

func TestBuildRowsIdempotent(t *testing.T) {
	cfg := &schema.BenchmarkConfig{
		ID: "glue",
		Datasets: []schema.DatasetSpec{
			{DatasetName: "SST2", Extra: map[string]any{"task": "classification", "language": "en"}},
			{DatasetName: "CoLA", Extra: map[string]any{"task": "acceptability"}},
		},
		Metrics: []schema.MetricSpec{{Name: "accuracy"}},
	}
	infos := []schema.SystemInfo{
		info("B", "CoLA", map[string]float64{"accuracy": 0.2}),
		info("A", "SST2", map[string]float64{"accuracy": 0.9}),
		info("B", "SST2", map[string]float64{"accuracy": 0.4}),
	}

	first, err := BuildTable(cfg, infos)
	require.NoError(t, err)
	second, err := BuildTable(cfg, infos)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	assert.Equal(t, []string{
		schema.ColSystemName, schema.ColDatasetName, schema.ColSubDatasetName, schema.ColDatasetSplit,
		"language", "task",
		schema.ColMetric, schema.ColMetricWeight, schema.ColScore,
	}, first.Columns)
	assert.Equal(t, []string{"B", "A"}, first.Groups(schema.ColSystemName))
	assert.Equal(t, "classification", first.Records[0]["task"])
	assert.Nil(t, first.Records[1]["language"])
}

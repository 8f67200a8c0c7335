package schema

// NormalizedRow is one (system, dataset, metric) score of the normalized table.
type NormalizedRow struct {
	SystemName     string
	DatasetName    string
	SubDatasetName string
	DatasetSplit   string
	Extra          map[string]any
	Metric         string
	MetricWeight   float64
	Score          float64
}

// LeaderboardRecord is one system's contribution to a benchmark.
type LeaderboardRecord struct {
	SystemName     string             `json:"system_name"`
	TaskName       string             `json:"task_name"`
	DatasetName    string             `json:"dataset_name"`
	SubDatasetName string             `json:"sub_dataset_name,omitempty"`
	DatasetSplit   string             `json:"dataset_split"`
	SourceLanguage string             `json:"source_language,omitempty"`
	TargetLanguage string             `json:"target_language,omitempty"`
	Metrics        map[string]float64 `json:"metrics"`
	MetricWeights  map[string]float64 `json:"metric_weights"`
	OpMetric       string             `json:"op_metric,omitempty"`

	DatasetWeight        float64 `json:"dataset_weight"`
	TaskWeight           float64 `json:"task_weight"`
	TargetLanguageWeight float64 `json:"target_language_weight"`
	SourceLanguageWeight float64 `json:"source_language_weight"`
}

// Leaderboard is the ordered list of records of a benchmark.
type Leaderboard []LeaderboardRecord

// BenchmarkTable is a dense systems by column score matrix.
type BenchmarkTable struct {
	SystemNames []string    `json:"system_names"`
	ColumnNames []string    `json:"column_names"`
	Scores      [][]float64 `json:"scores"`
}

// Score returns the cell for a system and column label.
func (t BenchmarkTable) Score(system, column string) (float64, bool) {
	si, ci := -1, -1
	for i, s := range t.SystemNames {
		if s == system {
			si = i
			break
		}
	}
	for i, c := range t.ColumnNames {
		if c == column {
			ci = i
			break
		}
	}
	if si < 0 || ci < 0 {
		return 0, false
	}
	return t.Scores[si][ci], true
}

// Benchmark is the payload served for a benchmark id.
type Benchmark struct {
	Config      *BenchmarkConfig          `json:"config"`
	Leaderboard Leaderboard               `json:"leaderboard"`
	Views       map[string]BenchmarkTable `json:"views"`
}

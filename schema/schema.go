package schema

import (
	"maps"
	"slices"
	"time"
)

// MetricValue is one overall metric result of a system.
type MetricValue struct {
	Value float64 `json:"value"`
}

// SystemResults holds the results computed by the evaluation library.
type SystemResults struct {
	Overall map[string]MetricValue `json:"overall"`
}

// SystemInfo is the evaluation record submitted with a system.
type SystemInfo struct {
	SystemName     string        `json:"system_name" validate:"required"`
	TaskName       string        `json:"task_name" validate:"required"`
	DatasetName    string        `json:"dataset_name,omitempty"`
	SubDatasetName string        `json:"sub_dataset_name,omitempty"`
	DatasetSplit   string        `json:"dataset_split,omitempty" validate:"required_with=DatasetName"`
	SourceLanguage string        `json:"source_language,omitempty"`
	TargetLanguage string        `json:"target_language,omitempty"`
	MetricNames    []string      `json:"metric_names,omitempty"`
	Results        SystemResults `json:"results"`
}

// Identity returns the dataset identity the info was submitted against.
func (s SystemInfo) Identity() DatasetIdentity {
	split := s.DatasetSplit
	if split == "" {
		split = DefaultSplit
	}
	return DatasetIdentity{
		DatasetName:    s.DatasetName,
		SubDatasetName: s.SubDatasetName,
		DatasetSplit:   split,
	}
}

// ReportedMetrics returns the metric names the system reports.
// When MetricNames is empty the overall result keys are used, sorted.
func (s SystemInfo) ReportedMetrics() []string {
	if len(s.MetricNames) > 0 {
		return s.MetricNames
	}
	return slices.Sorted(maps.Keys(s.Results.Overall))
}

// MetricValue returns the overall value of a metric, if present.
func (s SystemInfo) MetricValue(name string) (float64, bool) {
	v, ok := s.Results.Overall[name]
	return v.Value, ok
}

// System is the stored document for a submitted system.
type System struct {
	SystemID     string     `json:"system_id"`
	Creator      string     `json:"creator"`
	IsPrivate    bool       `json:"is_private"`
	SharedUsers  []string   `json:"shared_users,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	LastModified time.Time  `json:"last_modified"`
	SystemInfo   SystemInfo `json:"system_info"`
}

// VisibleTo reports whether the user may read the system's outputs.
func (s System) VisibleTo(user string) bool {
	if !s.IsPrivate {
		return true
	}
	if user == "" {
		return false
	}
	return user == s.Creator || slices.Contains(s.SharedUsers, user)
}

// SystemOutput is one stored example output of a system.
type SystemOutput struct {
	SystemID string `json:"system_id"`
	OutputID string `json:"output_id"`
	Data     string `json:"data"`
}

// SystemQuery filters, sorts and paginates stored systems.
// Zero values mean "no filter". PageSize 0 returns every match.
type SystemQuery struct {
	IDs           []string
	SystemName    string
	Task          string
	Datasets      []DatasetIdentity
	Creator       string
	Viewer        *string // When set, private systems are limited to the viewer's own and shared ones
	Page          int
	PageSize      int
	SortField     string
	SortDirection SortDirection
}

// SystemsPage is a page of systems plus the total match count.
type SystemsPage struct {
	Systems []System `json:"systems"`
	Total   int      `json:"total"`
}

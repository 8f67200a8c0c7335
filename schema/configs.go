package schema

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
)

// DatasetIdentity is the key of a dataset within a benchmark.
type DatasetIdentity struct {
	DatasetName    string `json:"dataset_name"`
	SubDatasetName string `json:"sub_dataset_name,omitempty"`
	DatasetSplit   string `json:"dataset_split"`
}

// String renders the identity for error messages.
func (d DatasetIdentity) String() string {
	return fmt.Sprintf("%s -- %s -- %s", d.DatasetName, d.SubDatasetName, d.DatasetSplit)
}

// MetricSpec describes one metric a benchmark scores.
type MetricSpec struct {
	Name string `json:"name" validate:"required"`

	// Weight is the metric's weight inside its dataset. Nil means 1/len(metrics in scope).
	Weight *float64 `json:"weight,omitempty" validate:"omitempty,gte=0"`

	// Default is the score used when a system did not report the metric.
	Default float64 `json:"default"`
}

// EffectiveWeight returns the explicit weight or an even share of n metrics.
func (m MetricSpec) EffectiveWeight(n int) float64 {
	if m.Weight != nil {
		return *m.Weight
	}
	if n == 0 {
		return 0
	}
	return 1.0 / float64(n)
}

// DatasetSpec describes one dataset a benchmark includes.
type DatasetSpec struct {
	DatasetName    string       `json:"dataset_name" validate:"required"`
	SubDatasetName string       `json:"sub_dataset_name,omitempty"`
	DatasetSplit   string       `json:"dataset_split,omitempty"`
	Metrics        []MetricSpec `json:"metrics,omitempty" validate:"omitempty,dive"`
	OpMetric       string       `json:"op_metric,omitempty"`

	// Extra holds any additional descriptive fields. Values are JSON scalars and
	// become columns of the normalized table.
	Extra map[string]any `json:"-"`
}

// datasetSpecKnownKeys are the JSON keys decoded into named DatasetSpec fields.
var datasetSpecKnownKeys = map[string]struct{}{
	ColDatasetName:    {},
	ColSubDatasetName: {},
	ColDatasetSplit:   {},
	"metrics":         {},
	"op_metric":       {},
}

// Identity returns the dataset identity with the split defaulted.
func (d DatasetSpec) Identity() DatasetIdentity {
	split := d.DatasetSplit
	if split == "" {
		split = DefaultSplit
	}
	return DatasetIdentity{
		DatasetName:    d.DatasetName,
		SubDatasetName: d.SubDatasetName,
		DatasetSplit:   split,
	}
}

// ExtraKeys returns the extra descriptive keys in sorted order.
func (d DatasetSpec) ExtraKeys() []string {
	return slices.Sorted(maps.Keys(d.Extra))
}

// UnmarshalJSON decodes the named fields and collects the rest into Extra.
func (d *DatasetSpec) UnmarshalJSON(data []byte) error {
	type plain DatasetSpec
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for key, value := range raw {
		if _, known := datasetSpecKnownKeys[key]; known {
			continue
		}
		switch value.(type) {
		case nil, string, float64, bool:
		default:
			return NewConfigError("dataset field %q must be a scalar value", key)
		}
		if p.Extra == nil {
			p.Extra = make(map[string]any)
		}
		p.Extra[key] = value
	}
	*d = DatasetSpec(p)
	return nil
}

// MarshalJSON flattens Extra next to the named fields.
func (d DatasetSpec) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(d.Extra)+5)
	maps.Copy(out, d.Extra)
	out[ColDatasetName] = d.DatasetName
	if d.SubDatasetName != "" {
		out[ColSubDatasetName] = d.SubDatasetName
	}
	if d.DatasetSplit != "" {
		out[ColDatasetSplit] = d.DatasetSplit
	}
	if len(d.Metrics) > 0 {
		out["metrics"] = d.Metrics
	}
	if d.OpMetric != "" {
		out["op_metric"] = d.OpMetric
	}
	return json.Marshal(out)
}

// ViewOperation is one step of a view pipeline. Op selects the variant;
// Other is only meaningful for OpMultiply.
type ViewOperation struct {
	Op    ViewOp `json:"op" validate:"required,oneof=mean sum multiply"`
	Other string `json:"other,omitempty" validate:"required_if=Op multiply"`
}

// Mean groups by system and averages every numeric column.
func Mean() ViewOperation { return ViewOperation{Op: OpMean} }

// Sum groups by system and sums every numeric column.
func Sum() ViewOperation { return ViewOperation{Op: OpSum} }

// Multiply scales the score by another column, row by row.
func Multiply(other string) ViewOperation { return ViewOperation{Op: OpMultiply, Other: other} }

// ViewConfig is a named sequence of operations.
type ViewConfig struct {
	Name       string          `json:"name" validate:"required"`
	Operations []ViewOperation `json:"operations" validate:"dive"`
}

// BenchmarkConfig is the declarative description of a benchmark.
// Once loaded it is treated as immutable.
type BenchmarkConfig struct {
	ID          string        `json:"id"`
	Name        string        `json:"name,omitempty"`
	Description string        `json:"description,omitempty"`
	Datasets    []DatasetSpec `json:"datasets" validate:"required,min=1,dive"`
	Metrics     []MetricSpec  `json:"metrics,omitempty" validate:"omitempty,dive"`
	Views       []ViewConfig  `json:"views,omitempty" validate:"omitempty,dive"`

	// AggregationWeights maps a dimension to a table of value weights.
	// Values missing from a table weigh 1.0.
	AggregationWeights map[WeightDimension]map[string]float64 `json:"aggregation_weights,omitempty"`
}

// EffectiveMetrics returns the dataset's own metric list, falling back to the
// config default. It fails with a ConfigError when neither is defined.
func (c *BenchmarkConfig) EffectiveMetrics(d DatasetSpec) ([]MetricSpec, error) {
	if len(d.Metrics) > 0 {
		return d.Metrics, nil
	}
	if len(c.Metrics) > 0 {
		return c.Metrics, nil
	}
	return nil, &ConfigError{
		Benchmark: c.ID,
		Reason: fmt.Sprintf("metrics must be specified either on a global or local level, but %s specified neither",
			d.Identity()),
	}
}

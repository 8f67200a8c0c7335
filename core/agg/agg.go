// Package agg has aggregation logic for benchmark score tables.
package agg

import (
	"fmt"
	"maps"
	"slices"

	"github.com/benchboard/benchboard/schema"
)

// Record is one row of a Frame, keyed by column name. A missing key reads as nil.
type Record map[string]any

// Frame is a small column-ordered table. Operations never mutate their input.
type Frame struct {
	Columns []string
	Records []Record
}

// NewFrame creates an empty frame with the given column order.
func NewFrame(columns ...string) *Frame {
	return &Frame{Columns: slices.Clone(columns)}
}

// Append adds a record to the frame.
func (f *Frame) Append(r Record) {
	f.Records = append(f.Records, r)
}

// Len returns the number of records.
func (f *Frame) Len() int {
	return len(f.Records)
}

// HasColumn reports whether the column is part of the frame schema.
func (f *Frame) HasColumn(name string) bool {
	return slices.Contains(f.Columns, name)
}

// Clone returns a deep copy of the frame.
func (f *Frame) Clone() *Frame {
	out := &Frame{
		Columns: slices.Clone(f.Columns),
		Records: make([]Record, len(f.Records)),
	}
	for i, r := range f.Records {
		out.Records[i] = maps.Clone(r)
	}
	return out
}

// typedNumeric holds the columns that carry numbers by construction, so they
// stay numeric in a frame without records.
var typedNumeric = map[string]bool{
	schema.ColMetricWeight: true,
	schema.ColScore:        true,
}

// IsNumeric reports whether every non-nil value of the column is a number.
// Other than score and metric_weight, a column also needs at least one value.
func (f *Frame) IsNumeric(column string) bool {
	if !f.HasColumn(column) {
		return false
	}
	seen := typedNumeric[column]
	for _, r := range f.Records {
		v := r[column]
		if v == nil {
			continue
		}
		if _, ok := ToFloat(v); !ok {
			return false
		}
		seen = true
	}
	return seen
}

// Values returns the column's values in record order.
func (f *Frame) Values(column string) []any {
	out := make([]any, len(f.Records))
	for i, r := range f.Records {
		out[i] = r[column]
	}
	return out
}

// Groups returns the distinct values of a column in first-seen order.
func (f *Frame) Groups(column string) []string {
	var keys []string
	seen := make(map[string]struct{})
	for _, r := range f.Records {
		k := fmt.Sprint(r[column])
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		keys = append(keys, k)
	}
	return keys
}

// ToFloat converts a numeric cell value to float64.
func ToFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

// reducer folds the non-nil values of one column within one group.
// count is the number of non-nil values; it returns nil when the result is undefined.
type reducer func(sum float64, count int) any

func meanReducer(sum float64, count int) any {
	if count == 0 {
		return nil
	}
	return sum / float64(count)
}

func sumReducer(sum float64, _ int) any {
	return sum
}

// groupBySystem groups records by system name and reduces every numeric column.
// Non-numeric columns are dropped. The system name stays an explicit first column
// and systems keep their first-seen order.
func groupBySystem(f *Frame, reduce reducer) (*Frame, error) {
	if !f.HasColumn(schema.ColSystemName) {
		return nil, &schema.LookupError{Kind: "column", Key: schema.ColSystemName}
	}

	numeric := make([]string, 0, len(f.Columns))
	for _, c := range f.Columns {
		if c != schema.ColSystemName && f.IsNumeric(c) {
			numeric = append(numeric, c)
		}
	}

	type accum struct {
		sums   []float64
		counts []int
	}
	order := f.Groups(schema.ColSystemName)
	groups := make(map[string]*accum, len(order))
	for _, key := range order {
		groups[key] = &accum{sums: make([]float64, len(numeric)), counts: make([]int, len(numeric))}
	}

	for _, r := range f.Records {
		a := groups[fmt.Sprint(r[schema.ColSystemName])]
		for i, c := range numeric {
			if v, ok := ToFloat(r[c]); ok {
				a.sums[i] += v
				a.counts[i]++
			}
		}
	}

	out := NewFrame(append([]string{schema.ColSystemName}, numeric...)...)
	for _, key := range order {
		a := groups[key]
		rec := Record{schema.ColSystemName: key}
		for i, c := range numeric {
			rec[c] = reduce(a.sums[i], a.counts[i])
		}
		out.Append(rec)
	}
	return out, nil
}

// Mean groups by system and averages every numeric column, skipping nil values.
func Mean(f *Frame) (*Frame, error) {
	return groupBySystem(f, meanReducer)
}

// Sum groups by system and sums every numeric column, counting nil as zero.
func Sum(f *Frame) (*Frame, error) {
	return groupBySystem(f, sumReducer)
}

// Multiply multiplies the score column by another column, row by row.
// A nil factor yields a nil score.
func Multiply(f *Frame, other string) (*Frame, error) {
	if !f.HasColumn(schema.ColScore) {
		return nil, &schema.LookupError{Kind: "column", Key: schema.ColScore}
	}
	if !f.HasColumn(other) {
		return nil, &schema.LookupError{Kind: "column", Key: other}
	}
	if !f.IsNumeric(other) {
		return nil, &schema.LookupError{Kind: "numeric column", Key: other}
	}

	out := f.Clone()
	for _, r := range out.Records {
		score, okScore := ToFloat(r[schema.ColScore])
		factor, okFactor := ToFloat(r[other])
		if !okScore || !okFactor {
			r[schema.ColScore] = nil
			continue
		}
		r[schema.ColScore] = score * factor
	}
	return out, nil
}

// Apply runs a single view operation.
func Apply(f *Frame, op schema.ViewOperation) (*Frame, error) {
	switch op.Op {
	case schema.OpMean:
		return Mean(f)
	case schema.OpSum:
		return Sum(f)
	case schema.OpMultiply:
		return Multiply(f, op.Other)
	default:
		return nil, schema.NewConfigError("unsupported view operation %q", op.Op)
	}
}

// Pipeline runs the operations in order, each consuming the previous output.
func Pipeline(f *Frame, ops []schema.ViewOperation) (*Frame, error) {
	cur := f
	for i, op := range ops {
		next, err := Apply(cur, op)
		if err != nil {
			return nil, fmt.Errorf("failed to apply operation %d (%s): %w", i, op.Op, err)
		}
		cur = next
	}
	if cur == f {
		return f.Clone(), nil
	}
	return cur, nil
}

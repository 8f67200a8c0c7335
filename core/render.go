package core

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/benchboard/benchboard/core/agg"
	"github.com/benchboard/benchboard/schema"
)

// RenderTable pivots a frame into a dense systems by column matrix.
//
// Each record's column label joins "key=value" for every descriptor column
// (all but system_name and score) with a truthy value, in frame column order.
// Systems and labels keep their first-seen order. Missing cells are 0.
// Two records with the same system and label are rejected with a ConfigError.
func RenderTable(f *agg.Frame) (schema.BenchmarkTable, error) {
	for _, c := range []string{schema.ColSystemName, schema.ColScore} {
		if !f.HasColumn(c) {
			return schema.BenchmarkTable{}, &schema.LookupError{Kind: "column", Key: c}
		}
	}

	descriptors := make([]string, 0, len(f.Columns))
	for _, c := range f.Columns {
		if c != schema.ColSystemName && c != schema.ColScore {
			descriptors = append(descriptors, c)
		}
	}

	table := schema.BenchmarkTable{SystemNames: []string{}, ColumnNames: []string{}}
	systemIndex := make(map[string]int)
	columnIndex := make(map[string]int)

	type cell struct {
		system, column int
		score          float64
	}
	cells := make([]cell, 0, len(f.Records))
	filled := make(map[[2]int]struct{}, len(f.Records))

	for _, r := range f.Records {
		system := fmt.Sprint(r[schema.ColSystemName])
		si, ok := systemIndex[system]
		if !ok {
			si = len(table.SystemNames)
			systemIndex[system] = si
			table.SystemNames = append(table.SystemNames, system)
		}

		label := ColumnLabel(descriptors, r)
		ci, ok := columnIndex[label]
		if !ok {
			ci = len(table.ColumnNames)
			columnIndex[label] = ci
			table.ColumnNames = append(table.ColumnNames, label)
		}

		key := [2]int{si, ci}
		if _, dup := filled[key]; dup {
			return schema.BenchmarkTable{}, schema.NewConfigError("duplicate cell for system %q and column %q", system, label)
		}
		filled[key] = struct{}{}

		score, _ := agg.ToFloat(r[schema.ColScore])
		cells = append(cells, cell{system: si, column: ci, score: score})
	}

	table.Scores = make([][]float64, len(table.SystemNames))
	for i := range table.Scores {
		table.Scores[i] = make([]float64, len(table.ColumnNames))
	}
	for _, c := range cells {
		table.Scores[c.system][c.column] = c.score
	}
	return table, nil
}

// ColumnLabel joins the truthy descriptor values of a record as "key=value" pairs.
func ColumnLabel(descriptors []string, r agg.Record) string {
	parts := make([]string, 0, len(descriptors))
	for _, c := range descriptors {
		v := r[c]
		if !truthy(v) {
			continue
		}
		parts = append(parts, c+"="+formatValue(v))
	}
	return strings.Join(parts, ", ")
}

// truthy reports whether a cell value counts as set: nil, empty strings,
// false and zero do not.
func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case string:
		return x != ""
	case bool:
		return x
	default:
		if n, ok := agg.ToFloat(v); ok {
			return n != 0
		}
		return true
	}
}

// formatValue renders a cell value for a label. Whole floats keep one decimal.
func formatValue(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		s := strconv.FormatFloat(x, 'f', -1, 64)
		if !strings.ContainsAny(s, ".eE") {
			s += ".0"
		}
		return s
	default:
		return fmt.Sprint(v)
	}
}

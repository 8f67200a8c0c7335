package core

import (
	"slices"

	"github.com/benchboard/benchboard/schema"
)

// RankTable returns a copy of the table with systems sorted by their score in
// the given column, highest first, keeping only the top 'limit' systems.
// An empty column ranks by the mean of each system's row. A limit of 0 or
// less keeps every system. Ties keep their original order.
func RankTable(table schema.BenchmarkTable, column string, limit int) schema.BenchmarkTable {
	ci := slices.Index(table.ColumnNames, column)

	key := func(row []float64) float64 {
		if ci >= 0 {
			return row[ci]
		}
		if len(row) == 0 {
			return 0
		}
		var sum float64
		for _, v := range row {
			sum += v
		}
		return sum / float64(len(row))
	}

	order := make([]int, len(table.SystemNames))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		ka, kb := key(table.Scores[a]), key(table.Scores[b])
		switch {
		case ka > kb:
			return -1
		case ka < kb:
			return 1
		default:
			return 0
		}
	})
	if limit > 0 && len(order) > limit {
		order = order[:limit]
	}

	out := schema.BenchmarkTable{
		SystemNames: make([]string, len(order)),
		ColumnNames: slices.Clone(table.ColumnNames),
		Scores:      make([][]float64, len(order)),
	}
	for i, src := range order {
		out.SystemNames[i] = table.SystemNames[src]
		out.Scores[i] = slices.Clone(table.Scores[src])
	}
	return out
}

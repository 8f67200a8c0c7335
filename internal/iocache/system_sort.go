package iocache

import (
	"cmp"
	"slices"

	"github.com/benchboard/benchboard/schema"
)

// SortByMetric orders systems by an overall metric value.
// Systems missing the metric always go last, keeping their relative order.
func SortByMetric(systems []schema.System, metric string, dir schema.SortDirection) {
	slices.SortStableFunc(systems, func(a, b schema.System) int {
		va, okA := a.SystemInfo.MetricValue(metric)
		vb, okB := b.SystemInfo.MetricValue(metric)
		switch {
		case !okA && !okB:
			return 0
		case !okA:
			return 1
		case !okB:
			return -1
		}
		if dir == schema.SortAsc {
			return cmp.Compare(va, vb)
		}
		return cmp.Compare(vb, va)
	})
}

// paginate returns the zero-based page of size pageSize. A non-positive size returns everything.
func paginate(systems []schema.System, page, pageSize int) []schema.System {
	if pageSize <= 0 {
		return systems
	}
	start := page * pageSize
	if start >= len(systems) || start < 0 {
		return []schema.System{}
	}
	end := min(start+pageSize, len(systems))
	return systems[start:end]
}

package core

import (
	"fmt"

	"github.com/benchboard/benchboard/core/agg"
	"github.com/benchboard/benchboard/schema"
)

// baseColumns lead every normalized table, in this order.
var baseColumns = []string{
	schema.ColSystemName,
	schema.ColDatasetName,
	schema.ColSubDatasetName,
	schema.ColDatasetSplit,
}

// tailColumns close every normalized table, in this order.
var tailColumns = []string{
	schema.ColMetric,
	schema.ColMetricWeight,
	schema.ColScore,
}

// indexDatasets maps each dataset identity to its position in the config.
func indexDatasets(cfg *schema.BenchmarkConfig) (map[schema.DatasetIdentity]int, error) {
	index := make(map[schema.DatasetIdentity]int, len(cfg.Datasets))
	for i, d := range cfg.Datasets {
		id := d.Identity()
		if prev, ok := index[id]; ok {
			return nil, &schema.ConfigError{
				Benchmark: cfg.ID,
				Reason:    fmt.Sprintf("duplicate dataset %s at positions %d and %d", id, prev, i),
			}
		}
		index[id] = i
	}
	return index, nil
}

// BuildRows converts system infos into normalized rows: one row per system,
// configured dataset and effective metric. Datasets a system did not submit to
// are filled with the metric defaults. When a system submitted more than once
// to the same dataset, the first info wins.
func BuildRows(cfg *schema.BenchmarkConfig, infos []schema.SystemInfo) ([]schema.NormalizedRow, error) {
	index, err := indexDatasets(cfg)
	if err != nil {
		return nil, err
	}

	metrics := make([][]schema.MetricSpec, len(cfg.Datasets))
	for i, d := range cfg.Datasets {
		if metrics[i], err = cfg.EffectiveMetrics(d); err != nil {
			return nil, err
		}
	}

	var order []string
	slots := make(map[string][]*schema.SystemInfo)
	for i := range infos {
		info := &infos[i]
		pos, ok := index[info.Identity()]
		if !ok {
			return nil, &schema.LookupError{Kind: "dataset", Key: info.Identity().String(), System: info.SystemName}
		}
		slot, ok := slots[info.SystemName]
		if !ok {
			slot = make([]*schema.SystemInfo, len(cfg.Datasets))
			slots[info.SystemName] = slot
			order = append(order, info.SystemName)
		}
		if slot[pos] == nil {
			slot[pos] = info
		}
	}

	rows := make([]schema.NormalizedRow, 0, len(order)*len(cfg.Datasets))
	for _, name := range order {
		for i, d := range cfg.Datasets {
			id := d.Identity()
			submitted := slots[name][i]
			for _, m := range metrics[i] {
				score := m.Default
				if submitted != nil {
					if v, ok := submitted.MetricValue(m.Name); ok {
						score = v
					}
				}
				rows = append(rows, schema.NormalizedRow{
					SystemName:     name,
					DatasetName:    id.DatasetName,
					SubDatasetName: id.SubDatasetName,
					DatasetSplit:   id.DatasetSplit,
					Extra:          d.Extra,
					Metric:         m.Name,
					MetricWeight:   m.EffectiveWeight(len(metrics[i])),
					Score:          score,
				})
			}
		}
	}
	return rows, nil
}

// extraColumns returns the extra dataset fields of the config in first-seen order.
func extraColumns(cfg *schema.BenchmarkConfig) []string {
	reserved := make(map[string]struct{}, len(baseColumns)+len(tailColumns))
	for _, c := range append(baseColumns, tailColumns...) {
		reserved[c] = struct{}{}
	}
	var cols []string
	for _, d := range cfg.Datasets {
		for _, k := range d.ExtraKeys() {
			if _, ok := reserved[k]; ok {
				continue
			}
			reserved[k] = struct{}{}
			cols = append(cols, k)
		}
	}
	return cols
}

// RowsToFrame lays normalized rows out as a frame whose columns are the base
// columns, the extra dataset fields and then metric, metric_weight and score.
func RowsToFrame(cfg *schema.BenchmarkConfig, rows []schema.NormalizedRow) *agg.Frame {
	extras := extraColumns(cfg)
	columns := make([]string, 0, len(baseColumns)+len(extras)+len(tailColumns))
	columns = append(columns, baseColumns...)
	columns = append(columns, extras...)
	columns = append(columns, tailColumns...)

	f := agg.NewFrame(columns...)
	for _, r := range rows {
		rec := agg.Record{
			schema.ColSystemName:     r.SystemName,
			schema.ColDatasetName:    r.DatasetName,
			schema.ColSubDatasetName: r.SubDatasetName,
			schema.ColDatasetSplit:   r.DatasetSplit,
			schema.ColMetric:         r.Metric,
			schema.ColMetricWeight:   r.MetricWeight,
			schema.ColScore:          r.Score,
		}
		for _, k := range extras {
			rec[k] = r.Extra[k]
		}
		f.Append(rec)
	}
	return f
}

// BuildTable builds the normalized frame for a config and its system infos.
func BuildTable(cfg *schema.BenchmarkConfig, infos []schema.SystemInfo) (*agg.Frame, error) {
	rows, err := BuildRows(cfg, infos)
	if err != nil {
		return nil, err
	}
	return RowsToFrame(cfg, rows), nil
}

package core

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/benchboard/benchboard/internal/contract"
	"github.com/benchboard/benchboard/schema"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Finalizer turns the systems of a benchmark into named view tables.
type Finalizer interface {
	Finalize(ctx context.Context, cfg *schema.BenchmarkConfig, systems []schema.System) (map[string]schema.BenchmarkTable, error)
}

// FinalizerFunc adapts a function to the Finalizer interface.
type FinalizerFunc func(ctx context.Context, cfg *schema.BenchmarkConfig, systems []schema.System) (map[string]schema.BenchmarkTable, error)

// Finalize implements the Finalizer interface.
func (f FinalizerFunc) Finalize(ctx context.Context, cfg *schema.BenchmarkConfig, systems []schema.System) (map[string]schema.BenchmarkTable, error) {
	return f(ctx, cfg, systems)
}

// ViewFinalizer builds the configured views with BuildViews. Systems submitted to
// datasets the config does not list are logged and left out.
type ViewFinalizer struct{}

var _ Finalizer = ViewFinalizer{} // Compile-time check

// Finalize implements the Finalizer interface.
func (ViewFinalizer) Finalize(_ context.Context, cfg *schema.BenchmarkConfig, systems []schema.System) (map[string]schema.BenchmarkTable, error) {
	index, err := indexDatasets(cfg)
	if err != nil {
		return nil, err
	}
	infos := make([]schema.SystemInfo, 0, len(systems))
	for _, sys := range systems {
		info := sys.SystemInfo
		if _, ok := index[info.Identity()]; !ok {
			contract.LogWarn("Skipping system "+sys.SystemID,
				&schema.LookupError{Kind: "dataset", Key: info.Identity().String(), System: info.SystemName})
			continue
		}
		infos = append(infos, info)
	}
	return BuildViews(cfg, infos)
}

// Composer builds leaderboards and benchmark payloads from stored systems.
// It holds no per-request state and is safe for concurrent use.
type Composer struct {
	configs   contract.ConfigLoader
	store     contract.SystemStore
	finalizer Finalizer
	tracer    trace.Tracer
}

// ComposerOption customizes a Composer.
type ComposerOption func(*Composer)

// WithFinalizer replaces the default ViewFinalizer.
func WithFinalizer(f Finalizer) ComposerOption {
	return func(c *Composer) { c.finalizer = f }
}

// WithTracer replaces the global otel tracer.
func WithTracer(t trace.Tracer) ComposerOption {
	return func(c *Composer) { c.tracer = t }
}

// NewComposer creates a Composer over a config source and a system store.
func NewComposer(configs contract.ConfigLoader, store contract.SystemStore, opts ...ComposerOption) *Composer {
	c := &Composer{
		configs:   configs,
		store:     store,
		finalizer: ViewFinalizer{},
		tracer:    otel.Tracer("benchmark-composer"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BuildLeaderboard composes the leaderboard records of a benchmark.
func (c *Composer) BuildLeaderboard(ctx context.Context, benchmarkID string) (schema.Leaderboard, error) {
	ctx, span := c.tracer.Start(ctx, "Composer.BuildLeaderboard",
		trace.WithAttributes(attribute.String("benchmark.id", benchmarkID)))
	defer span.End()

	cfg, systems, err := c.load(ctx, benchmarkID)
	if err != nil {
		recordError(span, err)
		return nil, err
	}
	lb, err := composeLeaderboard(cfg, systems)
	if err != nil {
		recordError(span, err)
		return nil, err
	}
	span.SetAttributes(attribute.Int("leaderboard.records", len(lb)))
	return lb, nil
}

// BuildBenchmark composes the leaderboard and finalizes it into view tables.
func (c *Composer) BuildBenchmark(ctx context.Context, benchmarkID string) (*schema.Benchmark, error) {
	ctx, span := c.tracer.Start(ctx, "Composer.BuildBenchmark",
		trace.WithAttributes(attribute.String("benchmark.id", benchmarkID)))
	defer span.End()

	cfg, systems, err := c.load(ctx, benchmarkID)
	if err != nil {
		recordError(span, err)
		return nil, err
	}
	lb, err := composeLeaderboard(cfg, systems)
	if err != nil {
		recordError(span, err)
		return nil, err
	}
	views, err := c.finalizer.Finalize(ctx, cfg, systems)
	if err != nil {
		recordError(span, err)
		return nil, fmt.Errorf("failed to finalize benchmark %s: %w", benchmarkID, err)
	}
	span.SetAttributes(
		attribute.Int("leaderboard.records", len(lb)),
		attribute.Int("benchmark.views", len(views)),
	)
	return &schema.Benchmark{Config: cfg, Leaderboard: lb, Views: views}, nil
}

// load fetches the config and every system submitted to one of its datasets
// with a single store query.
func (c *Composer) load(ctx context.Context, benchmarkID string) (*schema.BenchmarkConfig, []schema.System, error) {
	cfg, err := c.configs.Load(ctx, benchmarkID)
	if err != nil {
		return nil, nil, err
	}

	query := schema.SystemQuery{
		Datasets:      make([]schema.DatasetIdentity, 0, len(cfg.Datasets)),
		SortField:     schema.SortByCreatedAt,
		SortDirection: schema.SortDesc,
	}
	for _, d := range cfg.Datasets {
		query.Datasets = append(query.Datasets, d.Identity())
	}
	systems, _, err := c.store.FindSystems(ctx, query)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch systems for benchmark %s: %w", benchmarkID, err)
	}
	trace.SpanFromContext(ctx).SetAttributes(attribute.Int("benchmark.systems", len(systems)))
	return cfg, systems, nil
}

// composeLeaderboard builds one record per dataset spec and system whose reported
// metrics overlap the required ones. Systems arrive newest first and only the
// newest submission of a system name to a dataset is kept, as in the views.
// Systems failing a metric lookup are logged and skipped; config errors abort.
func composeLeaderboard(cfg *schema.BenchmarkConfig, systems []schema.System) (schema.Leaderboard, error) {
	type submission struct {
		dataset schema.DatasetIdentity
		name    string
	}
	seen := make(map[submission]struct{}, len(systems))
	byDataset := make(map[schema.DatasetIdentity][]schema.System)
	for _, sys := range systems {
		id := sys.SystemInfo.Identity()
		key := submission{dataset: id, name: sys.SystemInfo.SystemName}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		byDataset[id] = append(byDataset[id], sys)
	}

	lb := schema.Leaderboard{}
	for _, spec := range cfg.Datasets {
		metrics, err := cfg.EffectiveMetrics(spec)
		if err != nil {
			return nil, err
		}
		weights := make(map[string]float64, len(metrics))
		required := make([]string, 0, len(metrics))
		for _, m := range metrics {
			weights[m.Name] = m.EffectiveWeight(len(metrics))
			required = append(required, m.Name)
		}

		for _, sys := range byDataset[spec.Identity()] {
			rec, err := buildRecord(cfg, spec, sys.SystemInfo, required, weights)
			if errors.Is(err, schema.ErrLookup) {
				contract.LogWarn("Skipping system "+sys.SystemID, err)
				continue
			}
			if err != nil {
				return nil, err
			}
			if rec == nil {
				continue
			}
			lb = append(lb, *rec)
		}
	}
	return lb, nil
}

// buildRecord returns nil when the system reports none of the required metrics.
func buildRecord(cfg *schema.BenchmarkConfig, spec schema.DatasetSpec, info schema.SystemInfo, required []string, weights map[string]float64) (*schema.LeaderboardRecord, error) {
	reported := info.ReportedMetrics()
	common := make([]string, 0, len(required))
	for _, name := range required {
		if slices.Contains(reported, name) {
			common = append(common, name)
		}
	}
	if len(common) == 0 {
		return nil, nil
	}

	values := make(map[string]float64, len(common))
	for _, name := range common {
		v, ok := info.MetricValue(name)
		if !ok {
			return nil, &schema.LookupError{Kind: "metric", Key: name, System: info.SystemName}
		}
		values[name] = v
	}

	id := info.Identity()
	w := cfg.AggregationWeights
	return &schema.LeaderboardRecord{
		SystemName:           info.SystemName,
		TaskName:             info.TaskName,
		DatasetName:          id.DatasetName,
		SubDatasetName:       id.SubDatasetName,
		DatasetSplit:         id.DatasetSplit,
		SourceLanguage:       info.SourceLanguage,
		TargetLanguage:       info.TargetLanguage,
		Metrics:              values,
		MetricWeights:        maps.Clone(weights),
		OpMetric:             spec.OpMetric,
		DatasetWeight:        ResolveWeight(w, schema.DatasetDimension, id.DatasetName),
		TaskWeight:           ResolveWeight(w, schema.TaskDimension, info.TaskName),
		TargetLanguageWeight: ResolveWeight(w, schema.TargetLanguageDimension, info.TargetLanguage),
		SourceLanguageWeight: ResolveWeight(w, schema.SourceLanguageDimension, info.SourceLanguage),
	}, nil
}

func recordError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

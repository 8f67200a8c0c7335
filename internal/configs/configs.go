// Package configs loads benchmark configurations from a directory of
// config_<id>.json or config_<id>.yaml files.
package configs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/agnivade/levenshtein"
	"github.com/benchboard/benchboard/internal/contract"
	"github.com/benchboard/benchboard/schema"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const (
	// FilePrefix is the prefix of every benchmark config file name.
	FilePrefix = "config_"

	// DefaultTTL is how long a directory scan is reused before files are read again.
	DefaultTTL = 5 * time.Minute
)

var supportedExtensions = []string{".json", ".yaml", ".yml"}

// configCache holds the last directory scan.
type configCache struct {
	mu        sync.RWMutex
	configs   []*schema.BenchmarkConfig
	fetchedAt time.Time
	ttl       time.Duration
}

func (c *configCache) get() ([]*schema.BenchmarkConfig, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.configs == nil || c.ttl <= 0 || time.Since(c.fetchedAt) > c.ttl {
		return nil, false
	}
	return c.configs, true
}

func (c *configCache) set(configs []*schema.BenchmarkConfig) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.configs = configs
	c.fetchedAt = time.Now()
}

// FileLoader reads benchmark configurations from a directory.
type FileLoader struct {
	dir      string
	validate *validator.Validate
	cache    *configCache
}

var _ contract.ConfigLoader = &FileLoader{}

// Option customizes a FileLoader.
type Option func(*FileLoader)

// WithTTL sets how long a directory scan is cached. A non-positive TTL reads the
// directory on every call.
func WithTTL(ttl time.Duration) Option {
	return func(l *FileLoader) { l.cache.ttl = ttl }
}

// NewFileLoader creates a loader for the given directory.
func NewFileLoader(dir string, opts ...Option) *FileLoader {
	l := &FileLoader{
		dir:      dir,
		validate: validator.New(),
		cache:    &configCache{ttl: DefaultTTL},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load returns the configuration with the given id. The file named after the
// id is read on its own, so a broken sibling file never affects it. The
// directory is scanned only for ids declared inside a document and for the
// suggestion of an unknown id.
func (l *FileLoader) Load(ctx context.Context, id string) (*schema.BenchmarkConfig, error) {
	if configs, ok := l.cache.get(); ok {
		if cfg := findID(configs, id); cfg != nil {
			return cfg, nil
		}
	}

	cfg, err := l.loadByFileName(ctx, id)
	if err != nil || cfg != nil {
		return cfg, err
	}

	configs, err := l.all(ctx)
	if err != nil {
		return nil, err
	}
	if cfg := findID(configs, id); cfg != nil {
		return cfg, nil
	}
	ids := make([]string, len(configs))
	for i, c := range configs {
		ids[i] = c.ID
	}
	return nil, &schema.NotFoundError{Kind: "benchmark", ID: id, Suggestion: Suggest(id, ids)}
}

// loadByFileName parses config_<id> with any supported extension. It returns
// nil without error when no such file exists or the document declares another id.
func (l *FileLoader) loadByFileName(ctx context.Context, id string) (*schema.BenchmarkConfig, error) {
	if id == "" || id != filepath.Base(id) {
		return nil, nil
	}
	var paths []string
	for _, ext := range supportedExtensions {
		path := filepath.Join(l.dir, FilePrefix+id+ext)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			paths = append(paths, path)
		}
	}
	switch len(paths) {
	case 0:
		return nil, nil
	case 1:
	default:
		return nil, &schema.ConfigError{
			Benchmark: id,
			Reason:    fmt.Sprintf("id defined by both %s and %s", filepath.Base(paths[0]), filepath.Base(paths[1])),
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cfg, err := l.ParseFile(paths[0])
	if err != nil {
		return nil, err
	}
	if cfg.ID != id {
		return nil, nil
	}
	return cfg, nil
}

func findID(configs []*schema.BenchmarkConfig, id string) *schema.BenchmarkConfig {
	for _, c := range configs {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// List returns every configuration sorted by file name.
func (l *FileLoader) List(ctx context.Context) ([]*schema.BenchmarkConfig, error) {
	configs, err := l.all(ctx)
	if err != nil {
		return nil, err
	}
	return slices.Clone(configs), nil
}

func (l *FileLoader) all(ctx context.Context) ([]*schema.BenchmarkConfig, error) {
	if configs, ok := l.cache.get(); ok {
		return configs, nil
	}
	configs, err := l.scan(ctx)
	if err != nil {
		return nil, err
	}
	l.cache.set(configs)
	return configs, nil
}

// scan reads and validates every config file of the directory. Invalid files
// and repeated ids are logged and skipped.
func (l *FileLoader) scan(ctx context.Context) ([]*schema.BenchmarkConfig, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read config directory %s: %w", l.dir, err)
	}

	// os.ReadDir returns entries sorted by file name
	configs := []*schema.BenchmarkConfig{}
	seen := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() || !isConfigFile(entry.Name()) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		cfg, err := l.ParseFile(filepath.Join(l.dir, entry.Name()))
		if err != nil {
			contract.LogWarn("Skipping config file "+entry.Name(), err)
			continue
		}
		if other, dup := seen[cfg.ID]; dup {
			contract.LogWarn("Skipping config file "+entry.Name(), &schema.ConfigError{
				Benchmark: cfg.ID,
				Reason:    fmt.Sprintf("id already defined by %s", other),
			})
			continue
		}
		seen[cfg.ID] = entry.Name()
		configs = append(configs, cfg)
	}
	return configs, nil
}

func isConfigFile(name string) bool {
	return strings.HasPrefix(name, FilePrefix) && slices.Contains(supportedExtensions, filepath.Ext(name))
}

// IDFromFileName derives a benchmark id from a config file name.
func IDFromFileName(name string) string {
	base := filepath.Base(name)
	return strings.TrimPrefix(strings.TrimSuffix(base, filepath.Ext(base)), FilePrefix)
}

// ParseFile reads and validates a single config file.
func (l *FileLoader) ParseFile(path string) (*schema.BenchmarkConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	cfg, err := Parse(data, filepath.Ext(path), IDFromFileName(path))
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if err := Validate(l.validate, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes a JSON or YAML document into a configuration. The id is used
// when the document does not carry one.
func Parse(data []byte, ext string, id string) (*schema.BenchmarkConfig, error) {
	if ext == ".yaml" || ext == ".yml" {
		var doc any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, &schema.ConfigError{Benchmark: id, Reason: fmt.Sprintf("invalid yaml: %v", err)}
		}
		// Route YAML through JSON so dataset extras decode the same way for both formats
		converted, err := json.Marshal(doc)
		if err != nil {
			return nil, &schema.ConfigError{Benchmark: id, Reason: fmt.Sprintf("unsupported yaml value: %v", err)}
		}
		data = converted
	}

	var cfg schema.BenchmarkConfig
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&cfg); err != nil {
		return nil, &schema.ConfigError{Benchmark: id, Reason: fmt.Sprintf("invalid config document: %v", err)}
	}
	if cfg.ID == "" {
		cfg.ID = id
	}
	return &cfg, nil
}

// Validate checks struct tags and the cross-field rules of a configuration.
func Validate(v *validator.Validate, cfg *schema.BenchmarkConfig) error {
	if err := v.Struct(cfg); err != nil {
		return &schema.ConfigError{Benchmark: cfg.ID, Reason: fmt.Sprintf("validation failed: %v", err)}
	}

	identities := make(map[schema.DatasetIdentity]struct{}, len(cfg.Datasets))
	for _, d := range cfg.Datasets {
		if _, dup := identities[d.Identity()]; dup {
			return &schema.ConfigError{Benchmark: cfg.ID, Reason: fmt.Sprintf("duplicate dataset %s", d.Identity())}
		}
		identities[d.Identity()] = struct{}{}
		if _, err := cfg.EffectiveMetrics(d); err != nil {
			return err
		}
	}

	views := make(map[string]struct{}, len(cfg.Views))
	for _, view := range cfg.Views {
		if view.Name == schema.OrigView {
			return &schema.ConfigError{Benchmark: cfg.ID, Reason: fmt.Sprintf("view name %q is reserved", schema.OrigView)}
		}
		if _, dup := views[view.Name]; dup {
			return &schema.ConfigError{Benchmark: cfg.ID, Reason: fmt.Sprintf("duplicate view %q", view.Name)}
		}
		views[view.Name] = struct{}{}
	}

	for dim, table := range cfg.AggregationWeights {
		if !slices.Contains(schema.AllWeightDimensions, dim) {
			return &schema.ConfigError{Benchmark: cfg.ID, Reason: fmt.Sprintf("unknown weight dimension %q", dim)}
		}
		for value, w := range table {
			if w < 0 {
				return &schema.ConfigError{Benchmark: cfg.ID, Reason: fmt.Sprintf("negative %s weight for %q", dim, value)}
			}
		}
	}
	return nil
}

// Suggest returns the candidate closest to id, or "" when none is close enough.
func Suggest(id string, candidates []string) string {
	best, bestDist := "", max(2, len(id)/3)+1
	for _, c := range candidates {
		if d := levenshtein.ComputeDistance(id, c); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}

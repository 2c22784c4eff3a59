package repository

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"oilgas-dashboard/internal/cleaning"
	"oilgas-dashboard/internal/models"
	"oilgas-dashboard/pkg/logging"
	"oilgas-dashboard/pkg/metrics"
)

// DatasetRepository provides access to production data stored as CSV files
type DatasetRepository interface {
	// Discover returns the first candidate path that exists
	Discover(ctx context.Context, candidates []string) (string, error)
	// Load reads and cleans the file at path
	Load(ctx context.Context, path string) (*LoadedDataset, error)
	// HealthCheck reports whether the last discovered source is still readable
	HealthCheck(ctx context.Context) error
}

// LoadedDataset is a cleaned dataset together with where it came from
type LoadedDataset struct {
	Path        string
	ModTime     time.Time
	LoadedAt    time.Time
	Dataset     *models.Dataset
	Diagnostics models.Diagnostics
}

type loadEntry struct {
	modTime time.Time
	size    int64
	result  *LoadedDataset
}

// Cache memoizes discovery by candidate list and loads by (path, mod time).
// Loaded datasets are shared between callers and must not be modified.
type Cache struct {
	mu          sync.Mutex
	discoveries map[string]string
	loads       map[string]loadEntry
	group       singleflight.Group
}

// NewCache creates an empty cache
func NewCache() *Cache {
	return &Cache{
		discoveries: make(map[string]string),
		loads:       make(map[string]loadEntry),
	}
}

func (c *Cache) discovered(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	path, ok := c.discoveries[key]
	return path, ok
}

func (c *Cache) storeDiscovery(key, path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.discoveries[key] = path
}

func (c *Cache) loaded(path string, info fs.FileInfo) (*LoadedDataset, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.loads[path]
	if !ok || !entry.modTime.Equal(info.ModTime()) || entry.size != info.Size() {
		return nil, false
	}
	return entry.result, true
}

func (c *Cache) storeLoad(path string, info fs.FileInfo, result *LoadedDataset) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loads[path] = loadEntry{modTime: info.ModTime(), size: info.Size(), result: result}
}

// datasetRepository implements DatasetRepository over the local filesystem
type datasetRepository struct {
	cache   *Cache
	logger  *logging.StructuredLogger
	metrics *metrics.Collector

	mu       sync.Mutex
	lastPath string
}

// NewDatasetRepository creates a new file-backed dataset repository
func NewDatasetRepository(cache *Cache, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) DatasetRepository {
	return &datasetRepository{
		cache:   cache,
		logger:  logger,
		metrics: metricsCollector,
	}
}

// Discover returns the first existing path. Successful discoveries are cached
// per candidate list; a failed discovery is retried on the next call.
func (r *datasetRepository) Discover(ctx context.Context, candidates []string) (string, error) {
	key := strings.Join(candidates, "\x00")
	if path, ok := r.cache.discovered(key); ok {
		r.metrics.RecordCache("discover", true)
		r.remember(path)
		return path, nil
	}
	r.metrics.RecordCache("discover", false)

	for _, p := range candidates {
		info, err := os.Stat(p)
		if err != nil || info.IsDir() {
			continue
		}

		r.cache.storeDiscovery(key, p)
		r.remember(p)
		r.logger.Info(ctx, "[REPO_DISCOVER] Data source found", logging.Fields{
			"path":       p,
			"candidates": len(candidates),
		})
		return p, nil
	}

	r.metrics.RecordLoadError("source_not_found")
	return "", &models.SourceNotFoundError{Candidates: append([]string(nil), candidates...)}
}

// Load returns the cleaned dataset for path, reading the file only when
// it is not cached under its current modification time. Concurrent misses
// for the same file share one read.
func (r *datasetRepository) Load(ctx context.Context, path string) (*LoadedDataset, error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		r.metrics.RecordLoadError("source_not_found")
		return nil, &models.SourceNotFoundError{Candidates: []string{path}}
	}
	if err != nil {
		r.metrics.RecordLoadError("stat_error")
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	if cached, ok := r.cache.loaded(path, info); ok {
		r.metrics.RecordCache("load", true)
		return cached, nil
	}
	r.metrics.RecordCache("load", false)

	flightKey := fmt.Sprintf("%s@%d/%d", path, info.ModTime().UnixNano(), info.Size())
	v, err, shared := r.cache.group.Do(flightKey, func() (interface{}, error) {
		return r.read(ctx, path, info)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		r.logger.Debug(ctx, "[REPO_LOAD] Coalesced concurrent load", logging.Fields{"path": path})
	}
	return v.(*LoadedDataset), nil
}

func (r *datasetRepository) read(ctx context.Context, path string, info fs.FileInfo) (*LoadedDataset, error) {
	timer := r.metrics.NewTimer(r.metrics.LoadDuration)

	ds, diags, err := cleaning.LoadFile(path)
	duration := timer.ObserveDuration()
	if err != nil {
		var unreadable *models.UnreadableSourceError
		if errors.As(err, &unreadable) {
			r.metrics.RecordLoadError("unreadable_source")
		} else {
			r.metrics.RecordLoadError("read_error")
		}
		r.logger.Error(ctx, "[REPO_LOAD_ERROR] Failed to load dataset", logging.Fields{
			"path": path,
		}, err)
		return nil, fmt.Errorf("failed to load dataset: %w", err)
	}

	result := &LoadedDataset{
		Path:        path,
		ModTime:     info.ModTime(),
		LoadedAt:    time.Now().UTC(),
		Dataset:     ds,
		Diagnostics: diags,
	}
	r.cache.storeLoad(path, info, result)
	r.metrics.RecordLoad(ds.Len(), diags)

	r.logger.Info(ctx, "[REPO_LOAD] Dataset loaded", logging.Fields{
		"path":        path,
		"rows":        ds.Len(),
		"diagnostics": len(diags),
		"duration_ms": duration.Milliseconds(),
	})
	for _, d := range diags {
		r.logger.Warn(ctx, "[REPO_LOAD_DIAGNOSTIC] "+d.Message, logging.Fields{
			"kind":     d.Kind,
			"severity": d.Severity,
			"column":   d.Column,
		})
	}

	return result, nil
}

func (r *datasetRepository) remember(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastPath = path
}

// HealthCheck verifies the last discovered source can still be opened
func (r *datasetRepository) HealthCheck(ctx context.Context) error {
	r.mu.Lock()
	path := r.lastPath
	r.mu.Unlock()

	if path == "" {
		return errors.New("no data source discovered yet")
	}
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("data source unavailable: %w", err)
	}
	return f.Close()
}

package source

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ppiankov/incidentmerge/internal/cache"
	"github.com/ppiankov/incidentmerge/internal/worker"
	"go.uber.org/zap"
)

const csvExt = ".csv"

// File is a discovered source file
type File struct {
	Source string // lowercase base name without extension
	Path   string
}

// Failure records a source that was skipped
type Failure struct {
	File File
	Err  error
}

// Discover lists *.csv files directly under dir in name order
func Discover(dir string) ([]File, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read input dir: %w", err)
	}

	var files []File
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, csvExt) {
			continue
		}
		files = append(files, File{
			Source: strings.ToLower(strings.TrimSuffix(name, csvExt)),
			Path:   filepath.Join(dir, name),
		})
	}
	return files, nil
}

// Loader reads and decodes source files concurrently
type Loader struct {
	cache   cache.Cache
	workers int
	logger  *zap.Logger
}

// NewLoader creates a loader; a nil cache disables caching
func NewLoader(c cache.Cache, workers int, logger *zap.Logger) *Loader {
	if c == nil {
		c = cache.NopCache{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{cache: c, workers: workers, logger: logger}
}

// Load decodes every source under dir. Unreadable sources are returned as
// failures and skipped; only an unreadable directory fails the call.
func (l *Loader) Load(ctx context.Context, dir string) ([]*Table, []Failure, error) {
	files, err := Discover(dir)
	if err != nil {
		return nil, nil, err
	}

	jobs := make([]worker.Job, len(files))
	for i, f := range files {
		jobs[i] = &loadJob{file: f, loader: l}
	}

	results, err := worker.RunOrdered(ctx, l.workers, jobs)
	if err != nil {
		return nil, nil, fmt.Errorf("load sources: %w", err)
	}

	var tables []*Table
	var failures []Failure
	for i, r := range results {
		lr := r.(*loadResult)
		if lr.err != nil {
			failures = append(failures, Failure{File: files[i], Err: lr.err})
			l.logger.Warn("skipping source",
				zap.String("source", files[i].Source),
				zap.String("path", files[i].Path),
				zap.Error(lr.err),
			)
			continue
		}
		tables = append(tables, lr.table)
	}
	return tables, failures, nil
}

// ReadFile decodes one file, consulting the cache by content hash
func (l *Loader) ReadFile(f File) (*Table, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.Path, err)
	}

	key := cache.ContentKey(data)
	if cached, ok := l.cache.Get(key); ok {
		var t Table
		if err := json.Unmarshal(cached, &t); err == nil {
			t.Source = f.Source
			l.logger.Debug("source cache hit", zap.String("source", f.Source))
			return &t, nil
		}
		_ = l.cache.Delete(key)
	}

	t, err := Decode(f.Source, data)
	if err != nil {
		return nil, err
	}
	l.logger.Debug("decoded source",
		zap.String("source", f.Source),
		zap.String("encoding", t.Encoding),
		zap.Int("rows", t.Len()),
	)

	if encoded, err := json.Marshal(t); err == nil {
		if err := l.cache.Set(key, encoded, 0); err != nil {
			l.logger.Debug("source cache write failed", zap.String("source", f.Source), zap.Error(err))
		}
	}
	return t, nil
}

type loadJob struct {
	file   File
	loader *Loader
}

type loadResult struct {
	table *Table
	err   error
}

func (r *loadResult) GetError() error {
	return r.err
}

func (j *loadJob) Execute(ctx context.Context) worker.Result {
	t, err := j.loader.ReadFile(j.file)
	return &loadResult{table: t, err: err}
}

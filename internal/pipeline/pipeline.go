// Package pipeline runs the ingest, resolve and store stages end to end.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ppiankov/incidentmerge/internal/cache"
	"github.com/ppiankov/incidentmerge/internal/mapper"
	"github.com/ppiankov/incidentmerge/internal/merge"
	"github.com/ppiankov/incidentmerge/internal/model"
	"github.com/ppiankov/incidentmerge/internal/similarity"
	"github.com/ppiankov/incidentmerge/internal/source"
	"github.com/ppiankov/incidentmerge/internal/store"
)

// ErrNoRecords is returned when no source produced a record; nothing is written
var ErrNoRecords = errors.New("no records to write")

// Pipeline orchestrates a complete merge run
type Pipeline struct {
	loader    *source.Loader
	mapper    *mapper.Mapper
	fuzzy     *merge.FuzzyMerger
	openStore func(ctx context.Context) (store.Store, error)
	config    *model.Config
	logger    *zap.Logger
	now       func() time.Time
}

// NewPipeline creates a pipeline from cfg
func NewPipeline(cfg *model.Config, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}

	var c cache.Cache = cache.NopCache{}
	if cfg.Cache.Enabled {
		c = cache.NewLayeredCache(cfg.Cache.MemoryTTL, cfg.Cache.Dir, cfg.Cache.DiskTTL)
	}

	output := cfg.Output
	return &Pipeline{
		loader: source.NewLoader(c, cfg.Concurrency.Workers, logger.Named("source")),
		mapper: mapper.NewMapper(logger.Named("mapper")),
		fuzzy:  merge.NewFuzzyMerger(similarity.NewEvaluator(), cfg.Concurrency.Workers, logger.Named("merge")),
		openStore: func(ctx context.Context) (store.Store, error) {
			return store.Open(ctx, output)
		},
		config: cfg,
		logger: logger,
		now:    time.Now,
	}
}

// Summary describes one run
type Summary struct {
	RunID        string
	Sources      int
	Skipped      []source.Failure
	RowsRead     int
	BucketMerged int
	Final        int
	Output       string
	Duration     time.Duration
}

// Run loads every source under the input dir, resolves duplicates and writes the
// master table. ErrNoRecords is returned, with a summary, when there is nothing to write.
func (p *Pipeline) Run(ctx context.Context) (*Summary, error) {
	start := p.now()
	summary := &Summary{RunID: uuid.NewString()}
	log := p.logger.With(zap.String("run_id", summary.RunID))

	tables, failures, err := p.loader.Load(ctx, p.config.Input.Dir)
	if err != nil {
		return nil, err
	}
	summary.Sources = len(tables)
	summary.Skipped = failures

	records := p.MapTables(tables)
	summary.RowsRead = len(records)
	log.Info("sources loaded",
		zap.Int("sources", summary.Sources),
		zap.Int("skipped", len(failures)),
		zap.Int("rows", summary.RowsRead),
	)

	if len(records) == 0 {
		summary.Duration = p.now().Sub(start)
		return summary, ErrNoRecords
	}

	bucketed, resolved, err := p.Resolve(ctx, records)
	if err != nil {
		return nil, err
	}
	summary.BucketMerged = len(bucketed)
	summary.Final = len(resolved)
	log.Info("records resolved",
		zap.Int("bucket_merged", summary.BucketMerged),
		zap.Int("final", summary.Final),
	)

	location, err := p.write(ctx, resolved)
	if err != nil {
		return nil, err
	}
	summary.Output = location
	summary.Duration = p.now().Sub(start)
	log.Info("master table written", zap.String("output", location), zap.Duration("duration", summary.Duration))

	return summary, nil
}

// MapTables maps every row of every table into canonical records, in table then row order
func (p *Pipeline) MapTables(tables []*source.Table) []*model.Record {
	var records []*model.Record
	for _, t := range tables {
		t.Each(func(index int, row mapper.Row) {
			records = append(records, p.mapper.Map(t.Source, index, row))
		})
	}
	return records
}

// Resolve collapses exact fingerprint buckets, then fuzzy-merges the result.
// Records without a fingerprint get one assigned in place.
func (p *Pipeline) Resolve(ctx context.Context, records []*model.Record) (bucketed, resolved []*model.Record, err error) {
	bucketed = merge.MergeBuckets(records)

	resolved, err = p.fuzzy.Merge(ctx, bucketed)
	if err != nil {
		return nil, nil, fmt.Errorf("fuzzy merge: %w", err)
	}
	return bucketed, resolved, nil
}

func (p *Pipeline) write(ctx context.Context, records []*model.Record) (string, error) {
	rows, err := store.BuildRows(records, p.now())
	if err != nil {
		return "", fmt.Errorf("serialize records: %w", err)
	}

	s, err := p.openStore(ctx)
	if err != nil {
		return "", fmt.Errorf("open %s store: %w", p.config.Output.Driver, err)
	}
	defer func() {
		if cerr := s.Close(); cerr != nil {
			p.logger.Warn("close store", zap.Error(cerr))
		}
	}()

	if err := s.Write(ctx, rows); err != nil {
		return "", fmt.Errorf("write %s: %w", s.Location(), err)
	}
	return s.Location(), nil
}

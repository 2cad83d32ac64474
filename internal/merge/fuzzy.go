package merge

import (
	"context"
	"fmt"

	"github.com/ppiankov/incidentmerge/internal/model"
	"github.com/ppiankov/incidentmerge/internal/similarity"
	"github.com/ppiankov/incidentmerge/internal/worker"
	"go.uber.org/zap"
)

// Matcher decides whether two records describe the same incident
type Matcher interface {
	Evaluate(a, b *model.Record) similarity.Decision
}

// FuzzyMerger runs the single greedy clustering pass over bucket-merged records.
//
// The pass is non-transitive: each record A is compared against
// later unconsumed records using A's own fields, never the growing group, and
// merged groups are not re-evaluated afterwards.
type FuzzyMerger struct {
	matcher Matcher
	workers int
	logger  *zap.Logger
}

// NewFuzzyMerger creates a fuzzy merger; workers bounds the candidate scan
func NewFuzzyMerger(matcher Matcher, workers int, logger *zap.Logger) *FuzzyMerger {
	if matcher == nil {
		matcher = similarity.NewEvaluator()
	}
	if workers <= 0 {
		workers = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FuzzyMerger{matcher: matcher, workers: workers, logger: logger}
}

// candidate is a later record that matched
type candidate struct {
	index    int
	decision similarity.Decision
}

// scanJob finds every later record matching records[index]
type scanJob struct {
	index   int
	records []*model.Record
	matcher Matcher
}

type scanResult struct {
	matches []candidate
	err     error
}

func (r *scanResult) GetError() error {
	return r.err
}

func (j *scanJob) Execute(ctx context.Context) worker.Result {
	a := j.records[j.index]
	var matches []candidate
	for k := j.index + 1; k < len(j.records); k++ {
		if k%256 == 0 && ctx.Err() != nil {
			return &scanResult{err: ctx.Err()}
		}
		if d := j.matcher.Evaluate(a, j.records[k]); d.Merge {
			matches = append(matches, candidate{index: k, decision: d})
		}
	}
	return &scanResult{matches: matches}
}

// Merge returns one record per surviving group in first-occurrence order.
// Pair decisions are computed concurrently; absorption is applied by this
// goroutine alone in list order, so the result matches a sequential scan.
func (m *FuzzyMerger) Merge(ctx context.Context, records []*model.Record) ([]*model.Record, error) {
	jobs := make([]worker.Job, len(records))
	for i := range records {
		jobs[i] = &scanJob{index: i, records: records, matcher: m.matcher}
	}

	results, err := worker.RunOrdered(ctx, m.workers, jobs)
	if err != nil {
		return nil, fmt.Errorf("candidate scan: %w", err)
	}

	consumed := make([]bool, len(records))
	out := make([]*model.Record, 0, len(records))

	for i, a := range records {
		if consumed[i] {
			continue
		}
		consumed[i] = true

		res := results[i].(*scanResult)
		if res.err != nil {
			return nil, fmt.Errorf("candidate scan: %w", res.err)
		}

		g := NewGroup(a)
		for _, c := range res.matches {
			if consumed[c.index] {
				continue
			}
			b := records[c.index]
			g.Absorb(b, ownGroups(b))
			consumed[c.index] = true

			m.logger.Debug("fuzzy merge",
				zap.String("branch", string(c.decision.Branch)),
				zap.Any("into", a.Sources),
				zap.Any("absorbed", b.Sources),
				zap.Any("signals", c.decision.Signals),
			)
		}
		out = append(out, g.Record())
	}

	return out, nil
}

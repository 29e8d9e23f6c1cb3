// Package retrieval implements hybrid search over the incentives corpus:
// an ANN vector ranking and a lexical ranking fused by reciprocal rank,
// re-ranked by domain biases, then deduplicated and stitched per logical
// record.
package retrieval

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"partner-incentives-be/internal/entity"
	"partner-incentives-be/internal/pkg/logger"
)

const (
	// DefaultTopK is the result budget when the caller does not set one.
	DefaultTopK = 5

	// minCandidatePool guards recall: both rankings always draw from a pool
	// at least this large regardless of the requested budget.
	minCandidatePool = 600
	poolMultiplier   = 20
)

// ErrSearchFailed marks retrieval-backend unavailability. An empty result
// set is not an error; a backend fault always is.
var ErrSearchFailed = errors.New("retrieval: search failed")

// Filter narrows both rankings before scoring.
type Filter struct {
	DocName        string
	Field          string
	EngagementLike string
	Prefilter      string
}

// Query carries everything one retrieval pass needs. Vector and Text may be
// set independently: both present runs hybrid fusion, vector alone runs the
// ANN-only path, text alone runs lexical-only.
type Query struct {
	Text   string
	Vector []float32
	TopK   int
	Filter *Filter
}

// Searcher is the corpus access contract, implemented by the chunk
// repository.
type Searcher interface {
	SearchVector(ctx context.Context, vector []float32, limit int, filter *Filter) ([]entity.RetrievalHit, error)
	SearchLexical(ctx context.Context, text string, limit int, filter *Filter) ([]entity.RetrievalHit, error)
}

// Engine runs the full hybrid pipeline.
type Engine struct {
	searcher      Searcher
	log           logger.ILogger
	preferredKind string
	biases        []biasTransform
}

func NewEngine(searcher Searcher, log logger.ILogger, preferredKind string) *Engine {
	e := &Engine{
		searcher:      searcher,
		log:           log,
		preferredKind: preferredKind,
	}
	e.biases = []biasTransform{
		kindBias{kind: preferredKind},
		engagementBias{},
		formulaBias{},
	}
	return e
}

// Search returns the TopK highest-scoring deduplicated hits for q.
func (e *Engine) Search(ctx context.Context, q Query) ([]entity.RetrievalHit, error) {
	if q.TopK <= 0 {
		q.TopK = DefaultTopK
	}
	pool := q.TopK * poolMultiplier
	if pool < minCandidatePool {
		pool = minCandidatePool
	}

	candidates, err := e.rank(ctx, q, pool)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	for _, b := range e.biases {
		if !b.applicable(q) {
			e.log.Debug("retrieval", "bias skipped, precondition not met", map[string]interface{}{
				"bias": b.name(),
			})
			continue
		}
		b.apply(q, candidates)
	}

	results := dedupAndStitch(candidates)

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > q.TopK {
		results = results[:q.TopK]
	}
	return results, nil
}

// rank produces the fused candidate list. Hybrid runs both rankings
// concurrently; single-ranking paths keep their native scores and skip
// fusion.
func (e *Engine) rank(ctx context.Context, q Query, pool int) ([]entity.RetrievalHit, error) {
	hasVector := len(q.Vector) > 0
	hasText := q.Text != ""

	switch {
	case hasVector && hasText:
		var (
			wg          sync.WaitGroup
			vectorHits  []entity.RetrievalHit
			lexicalHits []entity.RetrievalHit
			vectorErr   error
			lexicalErr  error
		)
		wg.Add(2)
		go func() {
			defer wg.Done()
			vectorHits, vectorErr = e.searcher.SearchVector(ctx, q.Vector, pool, q.Filter)
		}()
		go func() {
			defer wg.Done()
			lexicalHits, lexicalErr = e.searcher.SearchLexical(ctx, q.Text, pool, q.Filter)
		}()
		wg.Wait()
		if vectorErr != nil {
			return nil, fmt.Errorf("%w: vector ranking: %v", ErrSearchFailed, vectorErr)
		}
		if lexicalErr != nil {
			return nil, fmt.Errorf("%w: lexical ranking: %v", ErrSearchFailed, lexicalErr)
		}
		return rrfFuse(vectorHits, lexicalHits), nil

	case hasVector:
		hits, err := e.searcher.SearchVector(ctx, q.Vector, pool, q.Filter)
		if err != nil {
			return nil, fmt.Errorf("%w: vector ranking: %v", ErrSearchFailed, err)
		}
		return hits, nil

	case hasText:
		hits, err := e.searcher.SearchLexical(ctx, q.Text, pool, q.Filter)
		if err != nil {
			return nil, fmt.Errorf("%w: lexical ranking: %v", ErrSearchFailed, err)
		}
		return hits, nil

	default:
		return nil, fmt.Errorf("%w: query has neither vector nor text", ErrSearchFailed)
	}
}

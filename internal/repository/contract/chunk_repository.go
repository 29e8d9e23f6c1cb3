package contract

import (
	"context"

	"partner-incentives-be/internal/entity"
	"partner-incentives-be/internal/repository/specification"
	"partner-incentives-be/pkg/retrieval"
)

// ChunkRepository reads the incentive corpus. It satisfies
// retrieval.Searcher; query paths never mutate chunks.
type ChunkRepository interface {
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ContentChunk, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ContentChunk, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)

	// SearchVector ranks by cosine similarity (score = 1 - distance).
	SearchVector(ctx context.Context, vector []float32, limit int, filter *retrieval.Filter) ([]entity.RetrievalHit, error)

	// SearchLexical ranks by full-text relevance (ts_rank over a websearch
	// query).
	SearchLexical(ctx context.Context, text string, limit int, filter *retrieval.Filter) ([]entity.RetrievalHit, error)
}

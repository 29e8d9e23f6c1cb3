package implementation

import (
	"context"
	"errors"

	"partner-incentives-be/internal/entity"
	"partner-incentives-be/internal/mapper"
	"partner-incentives-be/internal/model"
	"partner-incentives-be/internal/repository/contract"
	"partner-incentives-be/internal/repository/specification"
	"partner-incentives-be/pkg/retrieval"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type ChunkRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ChunkMapper
}

// scoredChunkRow carries a chunk row plus the per-query score column.
type scoredChunkRow struct {
	model.IncentiveChunk
	Score float64
}

func NewChunkRepository(db *gorm.DB) contract.ChunkRepository {
	return &ChunkRepositoryImpl{
		db:     db,
		mapper: mapper.NewChunkMapper(),
	}
}

func (r *ChunkRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

// filterSpecs translates the caller's WHERE-style filter into query
// specifications.
func filterSpecs(filter *retrieval.Filter) []specification.Specification {
	if filter == nil {
		return nil
	}
	var specs []specification.Specification
	if filter.DocName != "" {
		specs = append(specs, specification.ByDocName{DocName: filter.DocName})
	}
	if filter.Field != "" {
		specs = append(specs, specification.ByField{Field: filter.Field})
	}
	if filter.EngagementLike != "" {
		specs = append(specs, specification.ByEngagementLike{Engagement: filter.EngagementLike})
	}
	if filter.Prefilter != "" {
		specs = append(specs, specification.ByContentPrefilter{Text: filter.Prefilter})
	}
	return specs
}

func (r *ChunkRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ContentChunk, error) {
	var m model.IncentiveChunk
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *ChunkRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ContentChunk, error) {
	var models []*model.IncentiveChunk
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.ContentChunk, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}

func (r *ChunkRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	err := query.Model(&model.IncentiveChunk{}).Count(&count).Error
	return count, err
}

// SearchVector ranks the corpus by pgvector cosine distance. Cosine
// distance is 1 - cosine_similarity, so the exposed score is
// 1 - (embedding <=> query).
func (r *ChunkRepositoryImpl) SearchVector(ctx context.Context, vector []float32, limit int, filter *retrieval.Filter) ([]entity.RetrievalHit, error) {
	if limit <= 0 {
		limit = 5
	}

	var results []scoredChunkRow

	queryVector := pgvector.NewVector(vector)

	query := r.db.WithContext(ctx).
		Table("incentive_chunks").
		Select("incentive_chunks.*, 1 - (embedding <=> ?) AS score", queryVector)
	query = r.applySpecifications(query, filterSpecs(filter)...)

	err := query.
		Order(gorm.Expr("embedding <=> ?", queryVector)).
		Limit(limit).
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	return r.toHits(results), nil
}

// SearchLexical ranks by Postgres full-text relevance using a websearch
// query over title and content.
func (r *ChunkRepositoryImpl) SearchLexical(ctx context.Context, text string, limit int, filter *retrieval.Filter) ([]entity.RetrievalHit, error) {
	if limit <= 0 {
		limit = 5
	}

	var results []scoredChunkRow

	query := r.db.WithContext(ctx).
		Table("incentive_chunks").
		Select(
			"incentive_chunks.*, ts_rank(to_tsvector('english', coalesce(title,'') || ' ' || coalesce(content,'')), websearch_to_tsquery('english', ?)) AS score",
			text,
		).
		Where(
			"to_tsvector('english', coalesce(title,'') || ' ' || coalesce(content,'')) @@ websearch_to_tsquery('english', ?)",
			text,
		)
	query = r.applySpecifications(query, filterSpecs(filter)...)

	err := query.
		Order("score DESC").
		Limit(limit).
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	return r.toHits(results), nil
}

func (r *ChunkRepositoryImpl) toHits(results []scoredChunkRow) []entity.RetrievalHit {
	hits := make([]entity.RetrievalHit, len(results))
	for i, res := range results {
		hits[i] = entity.RetrievalHit{
			Chunk: *r.mapper.ToEntity(&res.IncentiveChunk),
			Score: res.Score,
		}
	}
	return hits
}

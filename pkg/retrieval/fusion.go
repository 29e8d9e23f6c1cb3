package retrieval

import (
	"sort"

	"partner-incentives-be/internal/entity"
)

// rrfK is the reciprocal-rank smoothing constant.
const rrfK = 60

// rrfFuse combines the two rankings by Reciprocal Rank Fusion: each record
// scores Σ 1/(rrfK + rank) over the rankings it appears in, absence
// contributing nothing. Output order is a pure function of the two input
// orders; discovery order (vector ranking first) breaks ties.
func rrfFuse(vectorHits, lexicalHits []entity.RetrievalHit) []entity.RetrievalHit {
	type fused struct {
		hit   entity.RetrievalHit
		score float64
	}

	byId := make(map[string]*fused, len(vectorHits)+len(lexicalHits))
	order := make([]string, 0, len(vectorHits)+len(lexicalHits))

	accumulate := func(hits []entity.RetrievalHit) {
		for rank, h := range hits {
			f, ok := byId[h.Chunk.Id]
			if !ok {
				f = &fused{hit: h}
				byId[h.Chunk.Id] = f
				order = append(order, h.Chunk.Id)
			}
			f.score += 1.0 / float64(rrfK+rank+1)
		}
	}
	accumulate(vectorHits)
	accumulate(lexicalHits)

	out := make([]entity.RetrievalHit, 0, len(order))
	for _, id := range order {
		f := byId[id]
		f.hit.Score = f.score
		out = append(out, f.hit)
	}

	// Stable sort keeps discovery order for equal scores.
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	return out
}

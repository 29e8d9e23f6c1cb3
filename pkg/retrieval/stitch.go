package retrieval

import (
	"sort"
	"strings"

	"partner-incentives-be/internal/entity"
)

// VariantFull tags chunk parts that reassemble into one logical body.
const VariantFull = "full"

// dedupAndStitch collapses candidates to one hit per logical key. When a
// group carries "full"-variant parts their contents are concatenated in
// ascending part_index order; otherwise the best-scoring member's content
// stands. Score is the group max, metadata comes from the best member.
// Group order follows each group's first appearance in the input.
func dedupAndStitch(candidates []entity.RetrievalHit) []entity.RetrievalHit {
	groups := make(map[string][]entity.RetrievalHit, len(candidates))
	order := make([]string, 0, len(candidates))

	for _, h := range candidates {
		key := h.Chunk.GroupKey()
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], h)
	}

	out := make([]entity.RetrievalHit, 0, len(order))
	for _, key := range order {
		out = append(out, stitchGroup(groups[key]))
	}
	return out
}

func stitchGroup(members []entity.RetrievalHit) entity.RetrievalHit {
	best := members[0]
	for _, m := range members[1:] {
		if m.Score > best.Score {
			best = m
		}
	}

	var parts []entity.RetrievalHit
	for _, m := range members {
		if m.Chunk.Variant == VariantFull {
			parts = append(parts, m)
		}
	}
	if len(parts) == 0 {
		return best
	}

	sort.SliceStable(parts, func(i, j int) bool {
		return parts[i].Chunk.PartIndex < parts[j].Chunk.PartIndex
	})
	contents := make([]string, len(parts))
	for i, p := range parts {
		contents[i] = p.Chunk.Content
	}

	stitched := best
	stitched.Chunk.Content = strings.Join(contents, "\n")
	return stitched
}

package retrieval

import (
	"sort"

	"news-engine/internal/domain"
)

// Merge unions the base and expanded search results by point id. A point hit
// by both passes keeps the maximum of the two scores and is flagged as a
// cross hit for the reranker. Output is ordered by raw semantic score so the
// merge alone already yields a usable ranking.
func Merge(baseHits, expandedHits []domain.VectorHit) []Candidate {
	byID := make(map[string]*Candidate, len(baseHits)+len(expandedHits))
	order := make([]string, 0, len(baseHits)+len(expandedHits))

	for _, h := range baseHits {
		c, ok := byID[h.ID]
		if !ok {
			c = &Candidate{Hit: h, Semantic: h.Score}
			byID[h.ID] = c
			order = append(order, h.ID)
		}
		c.BaseHit = true
		if h.Score > c.Semantic {
			c.Semantic = h.Score
			c.Hit = h
		}
	}
	for _, h := range expandedHits {
		c, ok := byID[h.ID]
		if !ok {
			c = &Candidate{Hit: h, Semantic: h.Score}
			byID[h.ID] = c
			order = append(order, h.ID)
		}
		c.ExpandedHit = true
		if h.Score > c.Semantic {
			c.Semantic = h.Score
			c.Hit = h
		}
	}

	out := make([]Candidate, 0, len(order))
	for _, id := range order {
		out = append(out, *byID[id])
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Semantic > out[j].Semantic
	})
	return out
}

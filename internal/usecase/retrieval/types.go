package retrieval

import (
	"news-engine/internal/domain"
)

// Candidate is one article surfaced by the vector searches, carrying the
// ranking signals accumulated across the pipeline. It exists only during
// ranking and is discarded after the response is built.
type Candidate struct {
	Hit domain.VectorHit

	// Article is the hydrated record from the structured store, filled in
	// before reranking so lexical overlap can see the description too.
	Article *domain.Article

	// Semantic is the best raw similarity score across the passes that hit.
	Semantic float32
	// BaseHit / ExpandedHit record which search pass surfaced the point.
	BaseHit     bool
	ExpandedHit bool

	// Combined is the fused ranking score computed by Rerank.
	Combined float64
}

// SearchWeights are the score-fusion coefficients.
type SearchWeights struct {
	// CrossHit is added when both the base and the expanded pass hit.
	CrossHit float64
	// TopicMatch is added per candidate topic intersecting the intent topics.
	TopicMatch float64
	// LexicalOverlap scales the fraction of query tokens found in the
	// candidate's title and description.
	LexicalOverlap float64
}

// DefaultSearchWeights returns the tuned fusion coefficients.
func DefaultSearchWeights() SearchWeights {
	return SearchWeights{
		CrossHit:       0.03,
		TopicMatch:     0.15,
		LexicalOverlap: 0.05,
	}
}

// Queries is the output of query building: the base query always, the
// expanded query only when cross-lingual hints were found.
type Queries struct {
	Base     string
	Expanded string
}

// HasExpanded reports whether a second search pass should run.
func (q Queries) HasExpanded() bool {
	return q.Expanded != ""
}

// CandidateLimit sizes each search pass so reranking has headroom over the
// requested page size without unbounded fan-out.
func CandidateLimit(limit int) int {
	n := limit * 6
	if floor := limit + 20; n < floor {
		n = floor
	}
	if n > 50 {
		n = 50
	}
	return n
}

package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// pointNamespace seeds the deterministic article-id -> point-id transform.
// Changing it orphans every existing point, so it is fixed for the lifetime of
// a collection.
var pointNamespace = uuid.MustParse("8f8ef3aa-42b1-4c1a-9c61-d6a3a8b25c10")

// PointID derives the stable vector point id for an article. The same article
// always maps to the same point, which is what makes Upsert replace instead of
// duplicate.
func PointID(articleID string) string {
	return uuid.NewSHA1(pointNamespace, []byte(articleID)).String()
}

// PointPayload is the metadata stored alongside a vector point. ArticleID is
// the back-reference into the structured store; PublishedAt is epoch seconds
// so the index can range-filter on it.
type PointPayload struct {
	ArticleID   string   `json:"articleId"`
	Title       string   `json:"title"`
	Source      string   `json:"source"`
	Category    Category `json:"category"`
	Topics      []Topic  `json:"topics"`
	PublishedAt int64    `json:"publishedAt"`
	URL         string   `json:"url"`
}

// VectorPoint is one embedded article plus payload. Exactly one point exists
// per article id.
type VectorPoint struct {
	ID      string
	Vector  []float32
	Payload PointPayload
}

// VectorHit is a ranked nearest-neighbor result.
type VectorHit struct {
	ID      string
	Score   float32
	Payload PointPayload
}

// VectorFilter narrows a nearest-neighbor search. Zero-valued fields are
// ignored. ExcludeArticleIDs turns into a must_not clause on the payload
// back-reference.
type VectorFilter struct {
	Category          Category
	Categories        []Category
	Source            string
	Topics            []Topic
	PublishedFrom     time.Time
	PublishedTo       time.Time
	ExcludeArticleIDs []string
}

// EmbedRole distinguishes query-side from passage-side embeddings; some
// multilingual models (E5 family) are trained with distinct instruction
// prefixes per role.
type EmbedRole string

const (
	RoleQuery   EmbedRole = "query"
	RolePassage EmbedRole = "passage"
)

// VectorEncoder produces fixed-dimension embeddings. Deterministic per
// (text, model). Implementations must reject vectors whose dimension does not
// match the configured index dimension.
type VectorEncoder interface {
	Embed(ctx context.Context, text string, role EmbedRole) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string, role EmbedRole) ([][]float32, error)
	Dimension() int
	Version() string
}

// VectorIndex is the external similarity index. Upsert replaces by point id;
// IsReachable is the circuit-breaker probe callers run before attempting any
// semantic operation.
type VectorIndex interface {
	EnsureCollection(ctx context.Context) error
	Upsert(ctx context.Context, points []VectorPoint) error
	Search(ctx context.Context, vector []float32, filter VectorFilter, limit, offset int) ([]VectorHit, error)
	IsReachable(ctx context.Context) bool
}

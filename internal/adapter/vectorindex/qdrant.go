package vectorindex

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"news-engine/internal/domain"
)

// QdrantIndex implements domain.VectorIndex against the Qdrant REST API.
type QdrantIndex struct {
	baseURL    string
	collection string
	dimension  int
	distance   string
	client     *http.Client
	logger     *slog.Logger
}

func NewQdrantIndex(baseURL, collection string, dimension int, distance string, client *http.Client, logger *slog.Logger) *QdrantIndex {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	if distance == "" {
		distance = "Cosine"
	}
	return &QdrantIndex{
		baseURL:    baseURL,
		collection: collection,
		dimension:  dimension,
		distance:   distance,
		client:     client,
		logger:     logger,
	}
}

// IsReachable probes the index readiness endpoint. A timeout counts as
// unreachable; callers use this as the circuit breaker before any semantic
// operation.
func (q *QdrantIndex) IsReachable(ctx context.Context) bool {
	probeCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(probeCtx, http.MethodGet, q.baseURL+"/readyz", nil)
	if err != nil {
		return false
	}
	resp, err := q.client.Do(req)
	if err != nil {
		return false
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode == http.StatusOK
}

// EnsureCollection creates the collection when absent. Safe to call
// repeatedly.
func (q *QdrantIndex) EnsureCollection(ctx context.Context) error {
	path := fmt.Sprintf("/collections/%s", q.collection)
	status, _, err := q.do(ctx, http.MethodGet, path, nil)
	if err == nil && status == http.StatusOK {
		return nil
	}
	if err != nil && status != http.StatusNotFound {
		return fmt.Errorf("failed to check collection: %w", err)
	}

	body := map[string]any{
		"vectors": map[string]any{
			"size":     q.dimension,
			"distance": q.distance,
		},
	}
	if _, _, err := q.do(ctx, http.MethodPut, path, body); err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	q.logger.Info("collection_created",
		slog.String("collection", q.collection),
		slog.Int("dimension", q.dimension),
		slog.String("distance", q.distance))
	return nil
}

// Upsert writes points by id, replacing any existing point with the same id.
func (q *QdrantIndex) Upsert(ctx context.Context, points []domain.VectorPoint) error {
	if len(points) == 0 {
		return nil
	}

	type pointBody struct {
		ID      string              `json:"id"`
		Vector  []float32           `json:"vector"`
		Payload domain.PointPayload `json:"payload"`
	}
	bodies := make([]pointBody, len(points))
	for i, p := range points {
		if len(p.Vector) != q.dimension {
			return fmt.Errorf("point %s: vector dimension %d does not match collection dimension %d",
				p.ID, len(p.Vector), q.dimension)
		}
		bodies[i] = pointBody{ID: p.ID, Vector: p.Vector, Payload: p.Payload}
	}

	path := fmt.Sprintf("/collections/%s/points?wait=true", q.collection)
	if _, _, err := q.do(ctx, http.MethodPut, path, map[string]any{"points": bodies}); err != nil {
		return fmt.Errorf("failed to upsert %d points: %w", len(points), err)
	}
	return nil
}

type searchResponse struct {
	Result []struct {
		ID      string              `json:"id"`
		Score   float32             `json:"score"`
		Payload domain.PointPayload `json:"payload"`
	} `json:"result"`
}

// Search runs a filtered nearest-neighbor query and returns hits best first.
func (q *QdrantIndex) Search(ctx context.Context, vector []float32, filter domain.VectorFilter, limit, offset int) ([]domain.VectorHit, error) {
	if len(vector) != q.dimension {
		return nil, fmt.Errorf("query vector dimension %d does not match collection dimension %d",
			len(vector), q.dimension)
	}
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}

	body := map[string]any{
		"vector":       vector,
		"limit":        limit,
		"offset":       offset,
		"with_payload": true,
	}
	if f := buildFilter(filter); f != nil {
		body["filter"] = f
	}

	path := fmt.Sprintf("/collections/%s/points/search", q.collection)
	_, raw, err := q.do(ctx, http.MethodPost, path, body)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	var resp searchResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	hits := make([]domain.VectorHit, 0, len(resp.Result))
	for _, r := range resp.Result {
		hits = append(hits, domain.VectorHit{ID: r.ID, Score: r.Score, Payload: r.Payload})
	}
	return hits, nil
}

// buildFilter translates a domain.VectorFilter into Qdrant filter grammar.
// Returns nil when every field is zero-valued.
func buildFilter(f domain.VectorFilter) map[string]any {
	var must []map[string]any
	var mustNot []map[string]any

	if f.Category != "" {
		must = append(must, map[string]any{
			"key":   "category",
			"match": map[string]any{"value": string(f.Category)},
		})
	}
	if len(f.Categories) > 0 {
		vals := make([]string, len(f.Categories))
		for i, c := range f.Categories {
			vals[i] = string(c)
		}
		must = append(must, map[string]any{
			"key":   "category",
			"match": map[string]any{"any": vals},
		})
	}
	if f.Source != "" {
		must = append(must, map[string]any{
			"key":   "source",
			"match": map[string]any{"value": f.Source},
		})
	}
	if len(f.Topics) > 0 {
		vals := make([]string, len(f.Topics))
		for i, t := range f.Topics {
			vals[i] = string(t)
		}
		must = append(must, map[string]any{
			"key":   "topics",
			"match": map[string]any{"any": vals},
		})
	}
	if !f.PublishedFrom.IsZero() || !f.PublishedTo.IsZero() {
		rng := map[string]any{}
		if !f.PublishedFrom.IsZero() {
			rng["gte"] = f.PublishedFrom.Unix()
		}
		if !f.PublishedTo.IsZero() {
			rng["lte"] = f.PublishedTo.Unix()
		}
		must = append(must, map[string]any{"key": "publishedAt", "range": rng})
	}
	if len(f.ExcludeArticleIDs) > 0 {
		mustNot = append(mustNot, map[string]any{
			"key":   "articleId",
			"match": map[string]any{"any": f.ExcludeArticleIDs},
		})
	}

	if len(must) == 0 && len(mustNot) == 0 {
		return nil
	}
	out := map[string]any{}
	if len(must) > 0 {
		out["must"] = must
	}
	if len(mustNot) > 0 {
		out["must_not"] = mustNot
	}
	return out
}

// do issues one JSON request and returns the status code and raw body.
// Non-2xx responses are returned as errors carrying the status code.
func (q *QdrantIndex) do(ctx context.Context, method, path string, body any) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return 0, nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, q.baseURL+path, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := q.client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp.StatusCode, raw, fmt.Errorf("qdrant %s %s returned status %d", method, path, resp.StatusCode)
	}
	return resp.StatusCode, raw, nil
}

var _ domain.VectorIndex = (*QdrantIndex)(nil)

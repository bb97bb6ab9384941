package embedder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"news-engine/internal/domain"
)

// queryCacheSize bounds the LRU of query-role embeddings. Search and
// recommendation traffic repeats queries far more often than passages, so
// only query-role results are cached.
const queryCacheSize = 512

// OllamaEmbedder calls an Ollama-compatible /api/embed endpoint. It enforces
// the configured vector dimension: a mismatch is a configuration error, never
// silently truncated or padded.
type OllamaEmbedder struct {
	baseURL   string
	model     string
	dimension int
	client    *http.Client
	logger    *slog.Logger

	queryCache *lru.Cache[string, []float32]
}

func NewOllamaEmbedder(baseURL, model string, dimension int, client *http.Client, logger *slog.Logger) *OllamaEmbedder {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	cache, _ := lru.New[string, []float32](queryCacheSize)
	return &OllamaEmbedder{
		baseURL:    baseURL,
		model:      model,
		dimension:  dimension,
		client:     client,
		logger:     logger,
		queryCache: cache,
	}
}

type embedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

// Embed returns the embedding for a single text.
func (e *OllamaEmbedder) Embed(ctx context.Context, text string, role domain.EmbedRole) ([]float32, error) {
	if role == domain.RoleQuery {
		if vec, ok := e.queryCache.Get(text); ok {
			return vec, nil
		}
	}

	vecs, err := e.EmbedBatch(ctx, []string{text}, role)
	if err != nil {
		return nil, err
	}
	if len(vecs) == 0 {
		return nil, fmt.Errorf("no embedding returned")
	}

	if role == domain.RoleQuery {
		e.queryCache.Add(text, vecs[0])
	}
	return vecs[0], nil
}

// EmbedBatch embeds texts in one call, preserving order.
func (e *OllamaEmbedder) EmbedBatch(ctx context.Context, texts []string, role domain.EmbedRole) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	start := time.Now()
	input := make([]string, len(texts))
	for i, t := range texts {
		input[i] = e.prepareText(t, role)
	}

	jsonData, err := json.Marshal(embedRequest{Model: e.model, Input: input})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/api/embed", e.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		e.logger.Error("embed_request_failed",
			slog.String("error", err.Error()),
			slog.Duration("elapsed", time.Since(start)))
		return nil, fmt.Errorf("failed to call embedder: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		e.logger.Error("embed_bad_status",
			slog.Int("status", resp.StatusCode),
			slog.Duration("elapsed", time.Since(start)))
		return nil, fmt.Errorf("embedder returned status: %d", resp.StatusCode)
	}

	var respBody embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&respBody); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(respBody.Embeddings) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(respBody.Embeddings))
	}

	for _, vec := range respBody.Embeddings {
		if len(vec) != e.dimension {
			return nil, fmt.Errorf(
				"embedding dimension mismatch: model %q returned %d, index configured for %d",
				e.model, len(vec), e.dimension)
		}
	}

	e.logger.Debug("embed_completed",
		slog.Int("text_count", len(texts)),
		slog.String("model", e.model),
		slog.Duration("elapsed", time.Since(start)))

	return respBody.Embeddings, nil
}

func (e *OllamaEmbedder) Dimension() int {
	return e.dimension
}

func (e *OllamaEmbedder) Version() string {
	return e.model
}

// prepareText applies the instruction prefix E5-family models are trained
// with; other models get the raw text.
func (e *OllamaEmbedder) prepareText(text string, role domain.EmbedRole) string {
	if !strings.Contains(strings.ToLower(e.model), "e5") {
		return text
	}
	if role == domain.RoleQuery {
		return "query: " + text
	}
	return "passage: " + text
}

var _ domain.VectorEncoder = (*OllamaEmbedder)(nil)

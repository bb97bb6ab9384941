package vectorindex_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"news-engine/internal/adapter/vectorindex"
	"news-engine/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestEnsureCollection_AlreadyExists(t *testing.T) {
	var created atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/collections/articles":
			w.WriteHeader(http.StatusOK)
		case r.Method == http.MethodPut:
			created.Store(true)
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	q := vectorindex.NewQdrantIndex(srv.URL, "articles", 4, "Cosine", srv.Client(), testLogger())
	require.NoError(t, q.EnsureCollection(context.Background()))
	assert.False(t, created.Load(), "existing collection must not be recreated")
}

func TestEnsureCollection_CreatesWhenMissing(t *testing.T) {
	var createBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			w.WriteHeader(http.StatusNotFound)
		case http.MethodPut:
			require.Equal(t, "/collections/articles", r.URL.Path)
			require.NoError(t, json.NewDecoder(r.Body).Decode(&createBody))
			w.WriteHeader(http.StatusOK)
		}
	}))
	defer srv.Close()

	q := vectorindex.NewQdrantIndex(srv.URL, "articles", 768, "", srv.Client(), testLogger())
	require.NoError(t, q.EnsureCollection(context.Background()))

	vectors, ok := createBody["vectors"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(768), vectors["size"])
	assert.Equal(t, "Cosine", vectors["distance"], "distance defaults to Cosine")
}

func TestUpsert_RejectsDimensionMismatch(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	q := vectorindex.NewQdrantIndex(srv.URL, "articles", 4, "Cosine", srv.Client(), testLogger())
	err := q.Upsert(context.Background(), []domain.VectorPoint{
		{ID: "p1", Vector: []float32{1, 0}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dimension")
	assert.Equal(t, int64(0), calls.Load(), "bad points must never reach the index")
}

func TestUpsert_WaitsForCommit(t *testing.T) {
	var gotWait string
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		require.Equal(t, "/collections/articles/points", r.URL.Path)
		gotWait = r.URL.Query().Get("wait")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	q := vectorindex.NewQdrantIndex(srv.URL, "articles", 2, "Cosine", srv.Client(), testLogger())
	err := q.Upsert(context.Background(), []domain.VectorPoint{
		{ID: "p1", Vector: []float32{1, 0}, Payload: domain.PointPayload{ArticleID: "a1"}},
	})

	require.NoError(t, err)
	assert.Equal(t, "true", gotWait)
	points, ok := body["points"].([]any)
	require.True(t, ok)
	require.Len(t, points, 1)
}

func TestSearch_FilterGrammar(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/collections/articles/points/search", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"result": []map[string]any{
				{"id": "p1", "score": 0.9, "payload": map[string]any{"articleId": "a1"}},
				{"id": "p2", "score": 0.7, "payload": map[string]any{"articleId": "a2"}},
			},
		})
	}))
	defer srv.Close()

	q := vectorindex.NewQdrantIndex(srv.URL, "articles", 2, "Cosine", srv.Client(), testLogger())
	filter := domain.VectorFilter{
		Categories:        []domain.Category{domain.CategorySports},
		Topics:            []domain.Topic{domain.TopicSports},
		PublishedFrom:     time.Unix(1000, 0),
		ExcludeArticleIDs: []string{"read-1"},
	}

	hits, err := q.Search(context.Background(), []float32{1, 0}, filter, 10, 0)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "a1", hits[0].Payload.ArticleID)
	assert.InDelta(t, 0.9, float64(hits[0].Score), 1e-6)

	f, ok := body["filter"].(map[string]any)
	require.True(t, ok)
	must, ok := f["must"].([]any)
	require.True(t, ok)
	assert.Len(t, must, 3, "categories, topics and published range")
	mustNot, ok := f["must_not"].([]any)
	require.True(t, ok)
	require.Len(t, mustNot, 1)
	excluded := mustNot[0].(map[string]any)
	assert.Equal(t, "articleId", excluded["key"])
}

func TestSearch_NoFilterOmitsClause(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_ = json.NewEncoder(w).Encode(map[string]any{"result": []map[string]any{}})
	}))
	defer srv.Close()

	q := vectorindex.NewQdrantIndex(srv.URL, "articles", 2, "Cosine", srv.Client(), testLogger())
	_, err := q.Search(context.Background(), []float32{1, 0}, domain.VectorFilter{}, 10, 0)
	require.NoError(t, err)

	_, present := body["filter"]
	assert.False(t, present)
	assert.Equal(t, true, body["with_payload"])
}

func TestSearch_RejectsWrongQueryDimension(t *testing.T) {
	q := vectorindex.NewQdrantIndex("http://unused", "articles", 4, "Cosine", nil, testLogger())
	_, err := q.Search(context.Background(), []float32{1, 0}, domain.VectorFilter{}, 10, 0)
	assert.Error(t, err)
}

func TestIsReachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/readyz" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))

	q := vectorindex.NewQdrantIndex(srv.URL, "articles", 4, "Cosine", srv.Client(), testLogger())
	assert.True(t, q.IsReachable(context.Background()))

	srv.Close()
	assert.False(t, q.IsReachable(context.Background()))
}

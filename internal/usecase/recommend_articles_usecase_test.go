package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"news-engine/internal/domain"
	"news-engine/internal/usecase"
)

// MockRebuilder
type MockRebuilder struct {
	mock.Mock
}

func (m *MockRebuilder) Rebuild(ctx context.Context, userID string) (*domain.PreferenceProfile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PreferenceProfile), args.Error(1)
}

func (m *MockRebuilder) RebuildActive(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

type recommendFixture struct {
	articles  *MockArticleStore
	history   *MockHistoryStore
	profiles  *MockProfileStore
	rebuilder *MockRebuilder
	enc       *MockVectorEncoder
	index     *MockVectorIndex
	uc        usecase.RecommendArticlesUsecase
}

func newRecommendFixture() *recommendFixture {
	f := &recommendFixture{
		articles:  new(MockArticleStore),
		history:   new(MockHistoryStore),
		profiles:  new(MockProfileStore),
		rebuilder: new(MockRebuilder),
		enc:       new(MockVectorEncoder),
		index:     new(MockVectorIndex),
	}
	f.uc = usecase.NewRecommendArticlesUsecase(
		f.articles, f.history, f.profiles, f.rebuilder, f.enc, f.index, testLogger())
	return f
}

func sportsProfile() *domain.PreferenceProfile {
	return &domain.PreferenceProfile{
		UserID:         "u1",
		CategoryScores: map[domain.Category]int{domain.CategorySports: 80},
		PreferredSources: []domain.SourceScore{
			{Source: "kantipur", Score: 60},
		},
		TopKeywords:       []domain.KeywordCount{{Keyword: "cricket", Count: 4}},
		TotalArticlesRead: 5,
	}
}

func TestRecommend_UnreachableIndexUsesHeuristicPath(t *testing.T) {
	f := newRecommendFixture()

	reads := []domain.ReadEvent{{ArticleID: "r1", ReadAt: time.Now()}}
	f.history.On("RecentReads", mock.Anything, "u1", mock.Anything).Return(reads, nil)
	f.rebuilder.On("Rebuild", mock.Anything, "u1").Return(sportsProfile(), nil)
	f.index.On("IsReachable", mock.Anything).Return(false)

	now := time.Now()
	f.articles.On("Find", mock.Anything, mock.Anything, domain.SortPublishedAtDesc, 0, mock.Anything).
		Return([]domain.Article{
			{ID: "a1", Category: domain.CategorySports, Source: "kantipur", PublishedAt: now},
			{ID: "a2", Category: domain.CategorySports, Source: "kantipur", PublishedAt: now},
			{ID: "a3", Category: domain.CategorySports, Source: "kantipur", PublishedAt: now},
			{ID: "a4", Category: domain.CategorySports, Source: "setopati", PublishedAt: now},
		}, nil)

	out := f.uc.Recommend(context.Background(), "u1", 4)

	assert.Equal(t, usecase.EngineStructuredFallback, out.Engine)
	// Diversity: kantipur may contribute at most two of the results.
	perSource := map[string]int{}
	for _, a := range out.Articles {
		perSource[a.Source]++
	}
	assert.LessOrEqual(t, perSource["kantipur"], 2)
	assert.Len(t, out.Articles, 3)
}

func TestRecommend_StoreFailureYieldsEmptyNotError(t *testing.T) {
	f := newRecommendFixture()

	f.history.On("RecentReads", mock.Anything, "u1", mock.Anything).
		Return(nil, assert.AnError)
	f.rebuilder.On("Rebuild", mock.Anything, "u1").Return(nil, assert.AnError)
	f.profiles.On("Get", mock.Anything, "u1").Return(nil, assert.AnError)
	f.articles.On("Find", mock.Anything, mock.Anything, domain.SortPublishedAtDesc, 0, mock.Anything).
		Return(nil, assert.AnError)

	out := f.uc.Recommend(context.Background(), "u1", 5)

	assert.Equal(t, usecase.EngineStructuredFallback, out.Engine)
	assert.Empty(t, out.Articles)
}

func TestRecommend_SemanticPath(t *testing.T) {
	f := newRecommendFixture()

	reads := []domain.ReadEvent{
		{ArticleID: "r1", ReadAt: time.Now().Add(-time.Hour)},
	}
	f.history.On("RecentReads", mock.Anything, "u1", mock.Anything).Return(reads, nil)
	f.rebuilder.On("Rebuild", mock.Anything, "u1").Return(sportsProfile(), nil)
	f.index.On("IsReachable", mock.Anything).Return(true)

	// Hydration of the read history for the interest query.
	f.articles.On("Find", mock.Anything, mock.MatchedBy(func(fl domain.ArticleFilter) bool {
		return len(fl.IDIn) == 1 && fl.IDIn[0] == "r1"
	}), domain.SortPublishedAtDesc, 0, 1).
		Return([]domain.Article{{ID: "r1", Title: "nepal cricket victory", Source: "kantipur"}}, nil)

	vec := []float32{1, 0, 0, 0}
	f.enc.On("Embed", mock.Anything, mock.Anything, domain.RoleQuery).Return(vec, nil)

	hits := []domain.VectorHit{
		{ID: "p1", Score: 0.9, Payload: domain.PointPayload{ArticleID: "n1", Source: "kantipur", Category: domain.CategorySports}},
		{ID: "p2", Score: 0.8, Payload: domain.PointPayload{ArticleID: "n2", Source: "setopati", Category: domain.CategoryBusiness}},
	}
	f.index.On("Search", mock.Anything, vec, mock.MatchedBy(func(fl domain.VectorFilter) bool {
		return len(fl.ExcludeArticleIDs) == 1
	}), mock.Anything, 0).Return(hits, nil)

	// Hydration of the recommended hits.
	f.articles.On("Find", mock.Anything, mock.MatchedBy(func(fl domain.ArticleFilter) bool {
		return len(fl.IDIn) == 2
	}), domain.SortPublishedAtDesc, 0, 2).
		Return([]domain.Article{
			{ID: "n1", Source: "kantipur", Category: domain.CategorySports},
			{ID: "n2", Source: "setopati", Category: domain.CategoryBusiness},
		}, nil)

	out := f.uc.Recommend(context.Background(), "u1", 5)

	assert.Equal(t, usecase.EngineVector, out.Engine)
	require.Len(t, out.Articles, 2)
	// Preferred source and top category push n1 first.
	assert.Equal(t, "n1", out.Articles[0].ID)
}

func TestRecommend_NormalizesLimit(t *testing.T) {
	f := newRecommendFixture()

	f.history.On("RecentReads", mock.Anything, "u1", mock.Anything).
		Return([]domain.ReadEvent{}, nil)
	f.rebuilder.On("Rebuild", mock.Anything, "u1").Return(nil, nil)
	f.articles.On("Find", mock.Anything, mock.Anything, domain.SortPublishedAtDesc, 0, 50).
		Return([]domain.Article{}, nil)

	out := f.uc.Recommend(context.Background(), "u1", 0)
	assert.NotNil(t, out)
	assert.Empty(t, out.Articles)
}

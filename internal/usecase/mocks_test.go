package usecase_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/mock"

	"news-engine/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// MockVectorEncoder
type MockVectorEncoder struct {
	mock.Mock
}

func (m *MockVectorEncoder) Embed(ctx context.Context, text string, role domain.EmbedRole) ([]float32, error) {
	args := m.Called(ctx, text, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]float32), args.Error(1)
}

func (m *MockVectorEncoder) EmbedBatch(ctx context.Context, texts []string, role domain.EmbedRole) ([][]float32, error) {
	args := m.Called(ctx, texts, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([][]float32), args.Error(1)
}

func (m *MockVectorEncoder) Dimension() int {
	return 4
}

func (m *MockVectorEncoder) Version() string {
	return "mock-v1"
}

// MockVectorIndex
type MockVectorIndex struct {
	mock.Mock
}

func (m *MockVectorIndex) EnsureCollection(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockVectorIndex) Upsert(ctx context.Context, points []domain.VectorPoint) error {
	return m.Called(ctx, points).Error(0)
}

func (m *MockVectorIndex) Search(ctx context.Context, vector []float32, filter domain.VectorFilter, limit, offset int) ([]domain.VectorHit, error) {
	args := m.Called(ctx, vector, filter, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.VectorHit), args.Error(1)
}

func (m *MockVectorIndex) IsReachable(ctx context.Context) bool {
	return m.Called(ctx).Bool(0)
}

// MockArticleStore
type MockArticleStore struct {
	mock.Mock
}

func (m *MockArticleStore) Find(ctx context.Context, filter domain.ArticleFilter, sort domain.ArticleSort, skip, limit int) ([]domain.Article, error) {
	args := m.Called(ctx, filter, sort, skip, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Article), args.Error(1)
}

func (m *MockArticleStore) FindByID(ctx context.Context, id string) (*domain.Article, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Article), args.Error(1)
}

func (m *MockArticleStore) Count(ctx context.Context, filter domain.ArticleFilter) (int, error) {
	args := m.Called(ctx, filter)
	return args.Int(0), args.Error(1)
}

func (m *MockArticleStore) UpdateTopics(ctx context.Context, id string, topics []domain.Topic) error {
	return m.Called(ctx, id, topics).Error(0)
}

// MockHistoryStore
type MockHistoryStore struct {
	mock.Mock
}

func (m *MockHistoryStore) RecentReads(ctx context.Context, userID string, limit int) ([]domain.ReadEvent, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ReadEvent), args.Error(1)
}

func (m *MockHistoryStore) ActiveUserIDs(ctx context.Context, withinDays int) ([]string, error) {
	args := m.Called(ctx, withinDays)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// MockProfileStore
type MockProfileStore struct {
	mock.Mock
}

func (m *MockProfileStore) Get(ctx context.Context, userID string) (*domain.PreferenceProfile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PreferenceProfile), args.Error(1)
}

func (m *MockProfileStore) Replace(ctx context.Context, profile *domain.PreferenceProfile) error {
	return m.Called(ctx, profile).Error(0)
}

// assertAllExpectations is a small helper so each test ends the same way.
func assertAllExpectations(t *testing.T, mocks ...interface{ AssertExpectations(mock.TestingT) bool }) {
	t.Helper()
	for _, m := range mocks {
		m.AssertExpectations(t)
	}
}

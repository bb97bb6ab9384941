package domain

import "context"

// ArticleStore is the structured article store. This engine never creates or
// deletes articles; UpdateTopics is its only write.
type ArticleStore interface {
	Find(ctx context.Context, filter ArticleFilter, sort ArticleSort, skip, limit int) ([]Article, error)
	FindByID(ctx context.Context, id string) (*Article, error)
	Count(ctx context.Context, filter ArticleFilter) (int, error)
	UpdateTopics(ctx context.Context, id string, topics []Topic) error
}

// HistoryStore reads a user's reading history, most recent first.
type HistoryStore interface {
	RecentReads(ctx context.Context, userID string, limit int) ([]ReadEvent, error)
	// ActiveUserIDs lists users with at least one read in the given window.
	ActiveUserIDs(ctx context.Context, withinDays int) ([]string, error)
}

// ProfileStore reads and replaces preference profiles. Get returns nil, nil
// when the user has no stored profile.
type ProfileStore interface {
	Get(ctx context.Context, userID string) (*PreferenceProfile, error)
	Replace(ctx context.Context, profile *PreferenceProfile) error
}

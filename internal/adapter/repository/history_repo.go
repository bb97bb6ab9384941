package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"news-engine/internal/domain"
)

type historyRepository struct {
	pool *pgxpool.Pool
}

// NewHistoryRepository creates the Postgres-backed reading history store.
func NewHistoryRepository(pool *pgxpool.Pool) domain.HistoryStore {
	return &historyRepository{pool: pool}
}

func (r *historyRepository) RecentReads(ctx context.Context, userID string, limit int) ([]domain.ReadEvent, error) {
	if limit <= 0 {
		limit = 200
	}
	rows, err := r.pool.Query(ctx, `
		SELECT article_id, read_at
		FROM user_read_history
		WHERE user_id = $1
		ORDER BY read_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query read history: %w", err)
	}
	defer rows.Close()

	var events []domain.ReadEvent
	for rows.Next() {
		var e domain.ReadEvent
		if err := rows.Scan(&e.ArticleID, &e.ReadAt); err != nil {
			return nil, fmt.Errorf("failed to scan read event: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return events, nil
}

func (r *historyRepository) ActiveUserIDs(ctx context.Context, withinDays int) ([]string, error) {
	if withinDays <= 0 {
		withinDays = 30
	}
	cutoff := time.Now().AddDate(0, 0, -withinDays)
	rows, err := r.pool.Query(ctx, `
		SELECT DISTINCT user_id
		FROM user_read_history
		WHERE read_at >= $1
	`, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to query active users: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan user id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return ids, nil
}

type profileRepository struct {
	pool *pgxpool.Pool
}

// NewProfileRepository creates the Postgres-backed preference profile store.
// Profiles are stored as one jsonb document per user and replaced wholesale.
func NewProfileRepository(pool *pgxpool.Pool) domain.ProfileStore {
	return &profileRepository{pool: pool}
}

func (r *profileRepository) Get(ctx context.Context, userID string) (*domain.PreferenceProfile, error) {
	rows, err := r.pool.Query(ctx,
		"SELECT profile FROM user_preferences WHERE user_id = $1", userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query profile: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("rows error: %w", err)
		}
		return nil, nil
	}

	var raw []byte
	if err := rows.Scan(&raw); err != nil {
		return nil, fmt.Errorf("failed to scan profile: %w", err)
	}
	var profile domain.PreferenceProfile
	if err := json.Unmarshal(raw, &profile); err != nil {
		return nil, fmt.Errorf("failed to decode profile: %w", err)
	}
	profile.UserID = userID
	return &profile, nil
}

func (r *profileRepository) Replace(ctx context.Context, profile *domain.PreferenceProfile) error {
	raw, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("failed to encode profile: %w", err)
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO user_preferences (user_id, profile, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE SET profile = $2, updated_at = $3
	`, profile.UserID, raw, profile.LastUpdated)
	if err != nil {
		return fmt.Errorf("failed to replace profile: %w", err)
	}
	return nil
}

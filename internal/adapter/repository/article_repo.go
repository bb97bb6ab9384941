package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"news-engine/internal/domain"
)

type articleRepository struct {
	pool *pgxpool.Pool
}

// NewArticleRepository creates the Postgres-backed structured article store.
func NewArticleRepository(pool *pgxpool.Pool) domain.ArticleStore {
	return &articleRepository{pool: pool}
}

const articleColumns = "id, title, description, content, category, topics, source, url, published_at"

func (r *articleRepository) Find(ctx context.Context, filter domain.ArticleFilter, sort domain.ArticleSort, skip, limit int) ([]domain.Article, error) {
	where, args := buildWhere(filter)

	order := "published_at DESC"
	if sort == domain.SortPublishedAtAsc {
		order = "published_at ASC"
	}

	query := fmt.Sprintf("SELECT %s FROM articles%s ORDER BY %s", articleColumns, where, order)
	if limit > 0 {
		args = append(args, limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if skip > 0 {
		args = append(args, skip)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query articles: %w", err)
	}
	defer rows.Close()

	var articles []domain.Article
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		articles = append(articles, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return articles, nil
}

func (r *articleRepository) FindByID(ctx context.Context, id string) (*domain.Article, error) {
	query := fmt.Sprintf("SELECT %s FROM articles WHERE id = $1", articleColumns)
	rows, err := r.pool.Query(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query article: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("rows error: %w", err)
		}
		return nil, nil
	}
	a, err := scanArticle(rows)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *articleRepository) Count(ctx context.Context, filter domain.ArticleFilter) (int, error) {
	where, args := buildWhere(filter)
	var count int
	err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM articles"+where, args...).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count articles: %w", err)
	}
	return count, nil
}

func (r *articleRepository) UpdateTopics(ctx context.Context, id string, topics []domain.Topic) error {
	tag, err := r.pool.Exec(ctx,
		"UPDATE articles SET topics = $2 WHERE id = $1",
		id, topicStrings(topics))
	if err != nil {
		return fmt.Errorf("failed to update topics: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("article %s not found", id)
	}
	return nil
}

// buildWhere assembles the WHERE clause for zero-or-more optional filters.
func buildWhere(f domain.ArticleFilter) (string, []any) {
	var conds []string
	var args []any

	add := func(cond string, value any) {
		args = append(args, value)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if f.Category != "" {
		add("category = $%d", string(f.Category))
	}
	if f.Source != "" {
		add("source = $%d", f.Source)
	}
	switch {
	case len(f.Categories) > 0 && len(f.Sources) > 0:
		// Recommendation fallback wants articles matching either list.
		args = append(args, categoryStrings(f.Categories), f.Sources)
		conds = append(conds, fmt.Sprintf("(category = ANY($%d) OR source = ANY($%d))", len(args)-1, len(args)))
	case len(f.Categories) > 0:
		add("category = ANY($%d)", categoryStrings(f.Categories))
	case len(f.Sources) > 0:
		add("source = ANY($%d)", f.Sources)
	}
	if len(f.Topics) > 0 {
		add("topics && $%d", topicStrings(f.Topics))
	}
	if !f.DateFrom.IsZero() {
		add("published_at >= $%d", f.DateFrom)
	}
	if !f.DateTo.IsZero() {
		add("published_at <= $%d", f.DateTo)
	}
	if len(f.IDIn) > 0 {
		add("id = ANY($%d)", f.IDIn)
	}
	if len(f.IDNotIn) > 0 {
		add("NOT (id = ANY($%d))", f.IDNotIn)
	}
	if f.TitleOrDescriptionLike != "" {
		args = append(args, "%"+escapeLike(f.TitleOrDescriptionLike)+"%")
		conds = append(conds, fmt.Sprintf("(title ILIKE $%d OR description ILIKE $%d)", len(args), len(args)))
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func escapeLike(s string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(s)
}

func scanArticle(rows pgx.Rows) (domain.Article, error) {
	var a domain.Article
	var topics []string
	var category string
	if err := rows.Scan(&a.ID, &a.Title, &a.Description, &a.Content, &category, &topics, &a.Source, &a.URL, &a.PublishedAt); err != nil {
		return domain.Article{}, fmt.Errorf("failed to scan article: %w", err)
	}
	a.Category = domain.Category(category)
	a.Topics = make([]domain.Topic, 0, len(topics))
	for _, t := range topics {
		if topic, ok := domain.ParseTopic(t); ok {
			a.Topics = append(a.Topics, topic)
		}
	}
	return a, nil
}

func topicStrings(topics []domain.Topic) []string {
	out := make([]string, len(topics))
	for i, t := range topics {
		out[i] = string(t)
	}
	return out
}

func categoryStrings(categories []domain.Category) []string {
	out := make([]string, len(categories))
	for i, c := range categories {
		out[i] = string(c)
	}
	return out
}

package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"golang.org/x/time/rate"

	"news-engine/internal/domain"
)

// IndexerConfig tunes the bulk indexing pipeline.
type IndexerConfig struct {
	// BatchSize is how many articles are embedded and upserted per round.
	BatchSize int
	// EmbedRatePerSec throttles calls to the embedding provider.
	EmbedRatePerSec float64
	// MaxRetryAttempts bounds the backoff retries per upsert.
	MaxRetryAttempts int
	// MaxBatchSplits bounds how often a persistently failing batch is halved
	// before giving up.
	MaxBatchSplits int
}

func DefaultIndexerConfig() IndexerConfig {
	return IndexerConfig{
		BatchSize:        32,
		EmbedRatePerSec:  8,
		MaxRetryAttempts: 4,
		MaxBatchSplits:   3,
	}
}

// IndexArticlesUsecase mirrors articles into the vector index: classify
// topics, embed, upsert. Upserting the same article twice replaces its point,
// so the whole pipeline is idempotent.
type IndexArticlesUsecase interface {
	// IndexArticles indexes the given articles and returns how many points
	// were written.
	IndexArticles(ctx context.Context, articles []domain.Article) (int, error)
	// IndexByIDs loads articles from the structured store and indexes them.
	IndexByIDs(ctx context.Context, ids []string) (int, error)
	// IndexAll walks the entire article store in batches.
	IndexAll(ctx context.Context) (int, error)
}

type indexArticlesUsecase struct {
	articles   domain.ArticleStore
	encoder    domain.VectorEncoder
	index      domain.VectorIndex
	classifier *TopicClassifier
	cfg        IndexerConfig
	limiter    *rate.Limiter
	logger     *slog.Logger
}

func NewIndexArticlesUsecase(
	articles domain.ArticleStore,
	encoder domain.VectorEncoder,
	index domain.VectorIndex,
	classifier *TopicClassifier,
	cfg IndexerConfig,
	logger *slog.Logger,
) IndexArticlesUsecase {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 32
	}
	if cfg.EmbedRatePerSec <= 0 {
		cfg.EmbedRatePerSec = 8
	}
	if cfg.MaxRetryAttempts <= 0 {
		cfg.MaxRetryAttempts = 4
	}
	if cfg.MaxBatchSplits < 0 {
		cfg.MaxBatchSplits = 0
	}
	return &indexArticlesUsecase{
		articles:   articles,
		encoder:    encoder,
		index:      index,
		classifier: classifier,
		cfg:        cfg,
		limiter:    rate.NewLimiter(rate.Limit(cfg.EmbedRatePerSec), 1),
		logger:     logger,
	}
}

func (u *indexArticlesUsecase) IndexArticles(ctx context.Context, articles []domain.Article) (int, error) {
	if err := u.index.EnsureCollection(ctx); err != nil {
		return 0, fmt.Errorf("failed to ensure collection: %w", err)
	}

	indexed := 0
	for start := 0; start < len(articles); start += u.cfg.BatchSize {
		end := start + u.cfg.BatchSize
		if end > len(articles) {
			end = len(articles)
		}
		n, err := u.indexBatch(ctx, articles[start:end])
		indexed += n
		if err != nil {
			return indexed, err
		}
	}
	return indexed, nil
}

func (u *indexArticlesUsecase) IndexByIDs(ctx context.Context, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	articles, err := u.articles.Find(ctx, domain.ArticleFilter{IDIn: ids}, domain.SortPublishedAtDesc, 0, len(ids))
	if err != nil {
		return 0, fmt.Errorf("failed to load articles: %w", err)
	}
	return u.IndexArticles(ctx, articles)
}

func (u *indexArticlesUsecase) IndexAll(ctx context.Context) (int, error) {
	if err := u.index.EnsureCollection(ctx); err != nil {
		return 0, fmt.Errorf("failed to ensure collection: %w", err)
	}

	indexed := 0
	skip := 0
	for {
		page, err := u.articles.Find(ctx, domain.ArticleFilter{}, domain.SortPublishedAtDesc, skip, u.cfg.BatchSize)
		if err != nil {
			return indexed, fmt.Errorf("failed to page articles: %w", err)
		}
		if len(page) == 0 {
			return indexed, nil
		}
		n, err := u.indexBatch(ctx, page)
		indexed += n
		if err != nil {
			return indexed, err
		}
		skip += len(page)
		u.logger.Info("index_progress", slog.Int("indexed", indexed))
	}
}

// indexBatch classifies, embeds and upserts one batch. Topic classification
// results are written back to articles that had none, so the structured store
// and the index payload stay in agreement.
func (u *indexArticlesUsecase) indexBatch(ctx context.Context, batch []domain.Article) (int, error) {
	texts := make([]string, len(batch))
	for i := range batch {
		a := &batch[i]
		if len(a.Topics) == 0 {
			topics := u.classifier.Classify(ctx, a.Title+" "+a.Description, a.Category)
			if len(topics) > 0 {
				a.Topics = topics
				if err := u.articles.UpdateTopics(ctx, a.ID, topics); err != nil {
					u.logger.Warn("topic_writeback_failed",
						slog.String("article_id", a.ID),
						slog.String("error", err.Error()))
				}
			}
		}
		texts[i] = embedText(*a)
	}

	if err := u.limiter.Wait(ctx); err != nil {
		return 0, err
	}
	vectors, err := u.encoder.EmbedBatch(ctx, texts, domain.RolePassage)
	if err != nil {
		return 0, fmt.Errorf("failed to embed batch: %w", err)
	}

	points := make([]domain.VectorPoint, len(batch))
	for i, a := range batch {
		points[i] = domain.VectorPoint{
			ID:     domain.PointID(a.ID),
			Vector: vectors[i],
			Payload: domain.PointPayload{
				ArticleID:   a.ID,
				Title:       a.Title,
				Source:      a.Source,
				Category:    a.Category,
				Topics:      a.Topics,
				PublishedAt: a.PublishedAt.Unix(),
				URL:         a.URL,
			},
		}
	}

	if err := u.upsertSplitting(ctx, points, u.cfg.MaxBatchSplits); err != nil {
		return 0, err
	}
	return len(points), nil
}

// embedText builds the weighted embedding input: title and description count
// double relative to the body.
func embedText(a domain.Article) string {
	parts := []string{a.Title, a.Title, a.Description, a.Description, a.Content}
	nonEmpty := parts[:0]
	for _, p := range parts {
		if p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.Join(nonEmpty, "\n")
}

// upsertSplitting retries the batch with backoff; when the whole batch keeps
// failing it is halved and each half retried, down to the split depth bound.
// A single point that still fails at depth zero is given up on.
func (u *indexArticlesUsecase) upsertSplitting(ctx context.Context, points []domain.VectorPoint, splitsLeft int) error {
	err := u.upsertWithBackoff(ctx, points)
	if err == nil {
		return nil
	}
	if splitsLeft <= 0 || len(points) <= 1 {
		return fmt.Errorf("upsert of %d points failed after retries: %w", len(points), err)
	}

	u.logger.Warn("upsert_batch_split",
		slog.Int("batch_size", len(points)),
		slog.Int("splits_left", splitsLeft),
		slog.String("error", err.Error()))

	mid := len(points) / 2
	if err := u.upsertSplitting(ctx, points[:mid], splitsLeft-1); err != nil {
		return err
	}
	return u.upsertSplitting(ctx, points[mid:], splitsLeft-1)
}

func (u *indexArticlesUsecase) upsertWithBackoff(ctx context.Context, points []domain.VectorPoint) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 500 * time.Millisecond
	bo.MaxInterval = 10 * time.Second

	var err error
	for attempt := 0; attempt < u.cfg.MaxRetryAttempts; attempt++ {
		if attempt > 0 {
			delay := bo.NextBackOff()
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		if err = u.index.Upsert(ctx, points); err == nil {
			return nil
		}
	}
	return err
}

package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"news-engine/internal/domain"
	"news-engine/internal/usecase/retrieval"
)

// Engine identifies which code path produced a result set.
const (
	EngineVector             = "vector"
	EngineStructured         = "structured"
	EngineStructuredFallback = "structured_fallback"
)

const (
	defaultSearchLimit = 12
	maxSearchLimit     = 50
)

// ErrInvalidDateRange is returned when dateFrom is after dateTo.
var ErrInvalidDateRange = errors.New("dateFrom must not be after dateTo")

// SearchInput carries the search request parameters. Query may be empty, in
// which case the structured store serves a filtered listing directly.
type SearchInput struct {
	Query    string
	Topics   []domain.Topic
	Category domain.Category
	Source   string
	DateFrom time.Time
	DateTo   time.Time
	Page     int
	Limit    int
}

// SearchOutput is the ranked result page plus provenance. Total is only
// populated on the structured paths, where a cheap exact count exists.
type SearchOutput struct {
	Engine   string
	Page     int
	Limit    int
	Total    int
	Articles []domain.Article
}

// SearchArticlesUsecase serves free-text and filtered article search.
type SearchArticlesUsecase interface {
	Execute(ctx context.Context, input SearchInput) (*SearchOutput, error)
}

type searchArticlesUsecase struct {
	articles domain.ArticleStore
	encoder  domain.VectorEncoder
	index    domain.VectorIndex
	weights  retrieval.SearchWeights
	logger   *slog.Logger
}

func NewSearchArticlesUsecase(
	articles domain.ArticleStore,
	encoder domain.VectorEncoder,
	index domain.VectorIndex,
	weights retrieval.SearchWeights,
	logger *slog.Logger,
) SearchArticlesUsecase {
	return &searchArticlesUsecase{
		articles: articles,
		encoder:  encoder,
		index:    index,
		weights:  weights,
		logger:   logger,
	}
}

func (u *searchArticlesUsecase) Execute(ctx context.Context, input SearchInput) (*SearchOutput, error) {
	if !input.DateFrom.IsZero() && !input.DateTo.IsZero() && input.DateFrom.After(input.DateTo) {
		return nil, ErrInvalidDateRange
	}
	if input.Page < 1 {
		input.Page = 1
	}
	if input.Limit <= 0 {
		input.Limit = defaultSearchLimit
	}
	if input.Limit > maxSearchLimit {
		input.Limit = maxSearchLimit
	}

	if input.Query == "" {
		return u.structured(ctx, input, EngineStructured)
	}

	if !u.index.IsReachable(ctx) {
		u.logger.Warn("vector_index_unreachable", slog.String("query", input.Query))
		return u.structured(ctx, input, EngineStructuredFallback)
	}

	out, err := u.semantic(ctx, input)
	if err != nil {
		u.logger.Warn("semantic_search_failed",
			slog.String("query", input.Query),
			slog.String("error", err.Error()))
		return u.structured(ctx, input, EngineStructuredFallback)
	}
	return out, nil
}

// semantic runs the two-pass vector search pipeline: expand, embed, search
// base and expanded in parallel, merge, hydrate, rerank, paginate.
func (u *searchArticlesUsecase) semantic(ctx context.Context, input SearchInput) (*SearchOutput, error) {
	queries, intent := retrieval.BuildQueries(input.Query, input.Topics)
	if queries.HasExpanded() {
		u.logger.Info("query_expanded",
			slog.String("base", queries.Base),
			slog.String("expanded", queries.Expanded))
	}

	filter := domain.VectorFilter{
		Category:      input.Category,
		Source:        input.Source,
		Topics:        input.Topics,
		PublishedFrom: input.DateFrom,
		PublishedTo:   input.DateTo,
	}
	candidateLimit := retrieval.CandidateLimit(input.Limit)

	var baseHits, expandedHits []domain.VectorHit
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		hits, err := u.searchPass(gctx, queries.Base, filter, candidateLimit)
		if err != nil {
			return fmt.Errorf("base search: %w", err)
		}
		baseHits = hits
		return nil
	})
	if queries.HasExpanded() {
		g.Go(func() error {
			hits, err := u.searchPass(gctx, queries.Expanded, filter, candidateLimit)
			if err != nil {
				return fmt.Errorf("expanded search: %w", err)
			}
			expandedHits = hits
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	candidates := retrieval.Merge(baseHits, expandedHits)
	if err := u.hydrate(ctx, candidates); err != nil {
		return nil, err
	}
	candidates = retrieval.Rerank(candidates, queries, intent, u.weights)

	skip := (input.Page - 1) * input.Limit
	articles := make([]domain.Article, 0, input.Limit)
	for _, c := range candidates {
		if c.Article == nil {
			continue
		}
		if skip > 0 {
			skip--
			continue
		}
		articles = append(articles, *c.Article)
		if len(articles) == input.Limit {
			break
		}
	}

	u.logger.Info("search_completed",
		slog.String("engine", EngineVector),
		slog.Int("candidates", len(candidates)),
		slog.Int("returned", len(articles)))

	return &SearchOutput{
		Engine:   EngineVector,
		Page:     input.Page,
		Limit:    input.Limit,
		Articles: articles,
	}, nil
}

func (u *searchArticlesUsecase) searchPass(ctx context.Context, query string, filter domain.VectorFilter, limit int) ([]domain.VectorHit, error) {
	vec, err := u.encoder.Embed(ctx, query, domain.RoleQuery)
	if err != nil {
		return nil, err
	}
	return u.index.Search(ctx, vec, filter, limit, 0)
}

// hydrate fills each candidate's Article from the structured store in one
// batched read. Candidates whose article has since been deleted keep a nil
// Article and are skipped at pagination time.
func (u *searchArticlesUsecase) hydrate(ctx context.Context, candidates []retrieval.Candidate) error {
	if len(candidates) == 0 {
		return nil
	}
	ids := make([]string, 0, len(candidates))
	for _, c := range candidates {
		ids = append(ids, c.Hit.Payload.ArticleID)
	}
	articles, err := u.articles.Find(ctx, domain.ArticleFilter{IDIn: ids}, domain.SortPublishedAtDesc, 0, len(ids))
	if err != nil {
		return fmt.Errorf("failed to hydrate candidates: %w", err)
	}
	byID := make(map[string]*domain.Article, len(articles))
	for i := range articles {
		byID[articles[i].ID] = &articles[i]
	}
	for i := range candidates {
		candidates[i].Article = byID[candidates[i].Hit.Payload.ArticleID]
	}
	return nil
}

// structured serves the request from the article store alone. With a query it
// degrades to a title/description substring match; without one it is the
// normal filtered listing. Engine records which case this was.
func (u *searchArticlesUsecase) structured(ctx context.Context, input SearchInput, engine string) (*SearchOutput, error) {
	filter := domain.ArticleFilter{
		Category: input.Category,
		Source:   input.Source,
		Topics:   input.Topics,
		DateFrom: input.DateFrom,
		DateTo:   input.DateTo,
	}
	if engine == EngineStructuredFallback {
		filter.TitleOrDescriptionLike = input.Query
	}

	skip := (input.Page - 1) * input.Limit
	articles, err := u.articles.Find(ctx, filter, domain.SortPublishedAtDesc, skip, input.Limit)
	if err != nil {
		return nil, fmt.Errorf("structured search failed: %w", err)
	}
	total, err := u.articles.Count(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("structured count failed: %w", err)
	}

	return &SearchOutput{
		Engine:   engine,
		Page:     input.Page,
		Limit:    input.Limit,
		Total:    total,
		Articles: articles,
	}, nil
}

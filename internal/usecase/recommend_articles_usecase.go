package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"news-engine/internal/domain"
	"news-engine/internal/usecase/recommend"
)

const (
	// maxExcludedReads bounds how many already-read article ids are pushed
	// into the index filter.
	maxExcludedReads = 200
	// recommendHistoryLimit is how many history rows feed one recommendation.
	recommendHistoryLimit = 200
)

// freshnessWindows are tried in order until a window yields candidates; a
// quiet news day widens to a week rather than returning nothing.
var freshnessWindows = []time.Duration{24 * time.Hour, 48 * time.Hour, 7 * 24 * time.Hour}

// RecommendOutput is a ranked, diversity-filtered article list plus the
// provenance of the path that produced it.
type RecommendOutput struct {
	Engine   string
	Articles []domain.Article
}

// RecommendArticlesUsecase produces personalized article lists. It never
// fails: every internal error degrades to the heuristic path, and an empty
// list is a valid outcome.
type RecommendArticlesUsecase interface {
	// Recommend serves recommendations for a stored user.
	Recommend(ctx context.Context, userID string, limit int) *RecommendOutput
	// RecommendForReads serves recommendations from an explicit reading
	// history, without touching the profile store. Used for offline
	// evaluation and anonymous sessions.
	RecommendForReads(ctx context.Context, reads []domain.ReadEvent, limit int) *RecommendOutput
}

type recommendArticlesUsecase struct {
	articles  domain.ArticleStore
	history   domain.HistoryStore
	profiles  domain.ProfileStore
	rebuilder RebuildProfileUsecase
	encoder   domain.VectorEncoder
	index     domain.VectorIndex
	bonuses   recommend.SemanticBonuses
	heuristic recommend.HeuristicWeights
	logger    *slog.Logger
}

func NewRecommendArticlesUsecase(
	articles domain.ArticleStore,
	history domain.HistoryStore,
	profiles domain.ProfileStore,
	rebuilder RebuildProfileUsecase,
	encoder domain.VectorEncoder,
	index domain.VectorIndex,
	logger *slog.Logger,
) RecommendArticlesUsecase {
	return &recommendArticlesUsecase{
		articles:  articles,
		history:   history,
		profiles:  profiles,
		rebuilder: rebuilder,
		encoder:   encoder,
		index:     index,
		bonuses:   recommend.DefaultSemanticBonuses(),
		heuristic: recommend.DefaultHeuristicWeights(),
		logger:    logger,
	}
}

func (u *recommendArticlesUsecase) Recommend(ctx context.Context, userID string, limit int) *RecommendOutput {
	if limit <= 0 {
		limit = 10
	}

	reads, err := u.history.RecentReads(ctx, userID, recommendHistoryLimit)
	if err != nil {
		u.logger.Warn("history_read_failed",
			slog.String("user_id", userID),
			slog.String("error", err.Error()))
		reads = nil
	}

	profile := u.profileFor(ctx, userID)
	return u.recommendCore(ctx, reads, profile, limit)
}

func (u *recommendArticlesUsecase) RecommendForReads(ctx context.Context, reads []domain.ReadEvent, limit int) *RecommendOutput {
	if limit <= 0 {
		limit = 10
	}

	var profile *domain.PreferenceProfile
	if len(reads) > 0 {
		if articles, err := u.loadReadArticles(ctx, reads); err == nil {
			profile = BuildProfile("", reads, articlesByID(articles))
		} else {
			u.logger.Warn("read_hydration_failed", slog.String("error", err.Error()))
		}
	}
	return u.recommendCore(ctx, reads, profile, limit)
}

// profileFor recomputes the profile on demand, falling back to the stored
// snapshot when the rebuild fails.
func (u *recommendArticlesUsecase) profileFor(ctx context.Context, userID string) *domain.PreferenceProfile {
	profile, err := u.rebuilder.Rebuild(ctx, userID)
	if err == nil {
		return profile
	}
	u.logger.Warn("profile_rebuild_failed_using_stored",
		slog.String("user_id", userID),
		slog.String("error", err.Error()))
	stored, err := u.profiles.Get(ctx, userID)
	if err != nil {
		return nil
	}
	return stored
}

// recommendCore is the shared engine behind both entry points: semantic path
// when possible, heuristic fallback otherwise, diversity selection on
// whichever list survives.
func (u *recommendArticlesUsecase) recommendCore(ctx context.Context, reads []domain.ReadEvent, profile *domain.PreferenceProfile, limit int) *RecommendOutput {
	if len(reads) > 0 && u.index.IsReachable(ctx) {
		articles, err := u.semanticPath(ctx, reads, profile, limit)
		if err != nil {
			u.logger.Warn("semantic_recommendation_failed",
				slog.String("error", err.Error()))
		} else if len(articles) > 0 {
			return &RecommendOutput{Engine: EngineVector, Articles: articles}
		}
	}

	articles := u.heuristicPath(ctx, reads, profile, limit)
	return &RecommendOutput{Engine: EngineStructuredFallback, Articles: articles}
}

func (u *recommendArticlesUsecase) semanticPath(ctx context.Context, reads []domain.ReadEvent, profile *domain.PreferenceProfile, limit int) ([]domain.Article, error) {
	readArticles, err := u.loadReadArticles(ctx, reads)
	if err != nil {
		return nil, err
	}
	query := recommend.BuildInterestQuery(readArticles)
	if query == "" {
		return nil, fmt.Errorf("no interest query could be built")
	}

	vec, err := u.encoder.Embed(ctx, query, domain.RoleQuery)
	if err != nil {
		return nil, err
	}

	hits, err := u.searchFresh(ctx, vec, reads, profile, limit)
	if err != nil {
		return nil, err
	}
	if len(hits) == 0 {
		return nil, nil
	}

	now := time.Now()
	scores := make(map[string]float64, len(hits))
	for _, h := range hits {
		scores[h.ID] = recommend.SemanticScore(h, profile, now, u.bonuses)
	}
	sort.SliceStable(hits, func(i, j int) bool {
		return scores[hits[i].ID] > scores[hits[j].ID]
	})

	ranked, err := u.hydrateHits(ctx, hits)
	if err != nil {
		return nil, err
	}
	return recommend.Diversify(ranked, limit), nil
}

// searchFresh widens the freshness window and loosens the preference filter
// until candidates appear: topics+categories first, then categories, then
// topics, then unfiltered.
func (u *recommendArticlesUsecase) searchFresh(ctx context.Context, vec []float32, reads []domain.ReadEvent, profile *domain.PreferenceProfile, limit int) ([]domain.VectorHit, error) {
	exclude := make([]string, 0, len(reads))
	for _, r := range reads {
		if len(exclude) == maxExcludedReads {
			break
		}
		exclude = append(exclude, r.ArticleID)
	}

	candidateLimit := limit * 8
	if candidateLimit < 30 {
		candidateLimit = 30
	}
	if candidateLimit > 50 {
		candidateLimit = 50
	}

	var topics []domain.Topic
	var categories []domain.Category
	if profile != nil {
		categories = profile.TopCategories(3)
		topicSet := make(map[domain.Topic]bool)
		for _, c := range categories {
			for _, t := range domain.CategoryTopicHints[c] {
				topicSet[t] = true
			}
		}
		for t := range topicSet {
			topics = append(topics, t)
		}
		sort.Slice(topics, func(i, j int) bool { return topics[i] < topics[j] })
	}

	var lastErr error
	for _, window := range freshnessWindows {
		from := time.Now().Add(-window)
		for _, filter := range filterVariants(categories, topics) {
			filter.PublishedFrom = from
			filter.ExcludeArticleIDs = exclude
			hits, err := u.index.Search(ctx, vec, filter, candidateLimit, 0)
			if err != nil {
				lastErr = err
				continue
			}
			if len(hits) > 0 {
				return hits, nil
			}
		}
	}
	return nil, lastErr
}

// filterVariants orders filter strictness from tight to loose, deduplicating
// the degenerate cases of a nil profile.
func filterVariants(categories []domain.Category, topics []domain.Topic) []domain.VectorFilter {
	variants := []domain.VectorFilter{}
	if len(categories) > 0 && len(topics) > 0 {
		variants = append(variants, domain.VectorFilter{Categories: categories, Topics: topics})
	}
	if len(categories) > 0 {
		variants = append(variants, domain.VectorFilter{Categories: categories})
	}
	if len(topics) > 0 {
		variants = append(variants, domain.VectorFilter{Topics: topics})
	}
	variants = append(variants, domain.VectorFilter{})
	return variants
}

func (u *recommendArticlesUsecase) heuristicPath(ctx context.Context, reads []domain.ReadEvent, profile *domain.PreferenceProfile, limit int) []domain.Article {
	filter := domain.ArticleFilter{
		DateFrom: time.Now().Add(-u.heuristic.RecencyWindow),
	}
	if profile != nil {
		filter.Categories = profile.TopCategories(3)
		filter.Sources = profile.TopSources(5)
	}
	if len(reads) > 0 {
		ids := make([]string, 0, len(reads))
		for _, r := range reads {
			if len(ids) == maxExcludedReads {
				break
			}
			ids = append(ids, r.ArticleID)
		}
		filter.IDNotIn = ids
	}

	candidates, err := u.articles.Find(ctx, filter, domain.SortPublishedAtDesc, 0, limit*5)
	if err != nil {
		u.logger.Warn("heuristic_query_failed", slog.String("error", err.Error()))
		return nil
	}

	now := time.Now()
	scores := make(map[string]float64, len(candidates))
	for _, a := range candidates {
		scores[a.ID] = recommend.HeuristicScore(a, profile, now, u.heuristic)
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return scores[candidates[i].ID] > scores[candidates[j].ID]
	})
	return recommend.Diversify(candidates, limit)
}

func (u *recommendArticlesUsecase) loadReadArticles(ctx context.Context, reads []domain.ReadEvent) ([]domain.Article, error) {
	ids := make([]string, 0, len(reads))
	for _, r := range reads {
		ids = append(ids, r.ArticleID)
	}
	found, err := u.articles.Find(ctx, domain.ArticleFilter{IDIn: ids}, domain.SortPublishedAtDesc, 0, len(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to load read articles: %w", err)
	}

	// Restore history order, most recent read first.
	byID := articlesByID(found)
	ordered := make([]domain.Article, 0, len(found))
	for _, r := range reads {
		if a, ok := byID[r.ArticleID]; ok {
			ordered = append(ordered, a)
		}
	}
	return ordered, nil
}

// hydrateHits resolves hits into articles, preserving hit order and dropping
// hits whose article no longer exists.
func (u *recommendArticlesUsecase) hydrateHits(ctx context.Context, hits []domain.VectorHit) ([]domain.Article, error) {
	ids := make([]string, 0, len(hits))
	for _, h := range hits {
		ids = append(ids, h.Payload.ArticleID)
	}
	found, err := u.articles.Find(ctx, domain.ArticleFilter{IDIn: ids}, domain.SortPublishedAtDesc, 0, len(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to hydrate recommendations: %w", err)
	}
	byID := articlesByID(found)
	ordered := make([]domain.Article, 0, len(hits))
	for _, h := range hits {
		if a, ok := byID[h.Payload.ArticleID]; ok {
			ordered = append(ordered, a)
		}
	}
	return ordered, nil
}

func articlesByID(articles []domain.Article) map[string]domain.Article {
	byID := make(map[string]domain.Article, len(articles))
	for _, a := range articles {
		byID[a.ID] = a
	}
	return byID
}

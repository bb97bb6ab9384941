package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"
	"time"

	"news-engine/internal/domain"
)

const (
	// profileWindowDays is how far back reading history counts toward a
	// profile.
	profileWindowDays = 30
	// profileHistoryLimit bounds how many history rows one rebuild reads.
	profileHistoryLimit = 500

	topSourceCount  = 10
	topKeywordCount = 20
	minKeywordLen   = 4
)

// stopWords are excluded from keyword extraction. Small set on purpose; the
// length filter already removes most function words.
var stopWords = map[string]bool{
	"this": true, "that": true, "with": true, "from": true, "have": true,
	"will": true, "been": true, "were": true, "they": true, "their": true,
	"about": true, "after": true, "into": true, "over": true, "under": true,
	"more": true, "most": true, "some": true, "such": true, "than": true,
	"then": true, "them": true, "these": true, "those": true, "when": true,
	"where": true, "which": true, "while": true, "would": true, "could": true,
	"should": true, "there": true, "here": true, "also": true, "just": true,
	"said": true, "says": true, "news": true, "year": true, "years": true,
}

// RebuildProfileUsecase recomputes preference profiles from reading history.
type RebuildProfileUsecase interface {
	// Rebuild recomputes and stores the profile for one user. Returns nil
	// without error when the user has no reads in the window; any stale
	// stored profile is left untouched in that case.
	Rebuild(ctx context.Context, userID string) (*domain.PreferenceProfile, error)
	// RebuildActive rebuilds every user active within the window and returns
	// how many profiles were written.
	RebuildActive(ctx context.Context) (int, error)
}

type rebuildProfileUsecase struct {
	history  domain.HistoryStore
	articles domain.ArticleStore
	profiles domain.ProfileStore
	logger   *slog.Logger
}

func NewRebuildProfileUsecase(
	history domain.HistoryStore,
	articles domain.ArticleStore,
	profiles domain.ProfileStore,
	logger *slog.Logger,
) RebuildProfileUsecase {
	return &rebuildProfileUsecase{
		history:  history,
		articles: articles,
		profiles: profiles,
		logger:   logger,
	}
}

func (u *rebuildProfileUsecase) Rebuild(ctx context.Context, userID string) (*domain.PreferenceProfile, error) {
	reads, err := u.history.RecentReads(ctx, userID, profileHistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}

	cutoff := time.Now().AddDate(0, 0, -profileWindowDays)
	var recent []domain.ReadEvent
	for _, r := range reads {
		if !r.ReadAt.Before(cutoff) {
			recent = append(recent, r)
		}
	}
	if len(recent) == 0 {
		return nil, nil
	}

	articles, err := u.loadArticles(ctx, recent)
	if err != nil {
		return nil, err
	}

	profile := BuildProfile(userID, recent, articles)
	if err := u.profiles.Replace(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to store profile: %w", err)
	}

	u.logger.Info("profile_rebuilt",
		slog.String("user_id", userID),
		slog.Int("total_reads", profile.TotalArticlesRead))
	return profile, nil
}

func (u *rebuildProfileUsecase) RebuildActive(ctx context.Context) (int, error) {
	userIDs, err := u.history.ActiveUserIDs(ctx, profileWindowDays)
	if err != nil {
		return 0, fmt.Errorf("failed to list active users: %w", err)
	}

	rebuilt := 0
	for _, id := range userIDs {
		profile, err := u.Rebuild(ctx, id)
		if err != nil {
			u.logger.Warn("profile_rebuild_failed",
				slog.String("user_id", id),
				slog.String("error", err.Error()))
			continue
		}
		if profile != nil {
			rebuilt++
		}
	}
	return rebuilt, nil
}

func (u *rebuildProfileUsecase) loadArticles(ctx context.Context, reads []domain.ReadEvent) (map[string]domain.Article, error) {
	ids := make([]string, 0, len(reads))
	for _, r := range reads {
		ids = append(ids, r.ArticleID)
	}
	found, err := u.articles.Find(ctx, domain.ArticleFilter{IDIn: ids}, domain.SortPublishedAtDesc, 0, len(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to load read articles: %w", err)
	}
	byID := make(map[string]domain.Article, len(found))
	for _, a := range found {
		byID[a.ID] = a
	}
	return byID, nil
}

// BuildProfile aggregates recent reads into a preference profile. Pure; reads
// whose article cannot be resolved still count toward the total so scores
// reflect actual reading volume.
func BuildProfile(userID string, recent []domain.ReadEvent, articles map[string]domain.Article) *domain.PreferenceProfile {
	total := len(recent)
	categoryCounts := make(map[domain.Category]int)
	sourceCounts := make(map[string]int)
	keywordCounts := make(map[string]int)

	for _, r := range recent {
		a, ok := articles[r.ArticleID]
		if !ok {
			continue
		}
		if domain.IsKnownCategory(a.Category) {
			categoryCounts[a.Category]++
		}
		if a.Source != "" {
			sourceCounts[a.Source]++
		}
		for _, kw := range extractKeywords(a.Title + " " + a.Description) {
			keywordCounts[kw]++
		}
	}

	categoryScores := make(map[domain.Category]int, len(categoryCounts))
	for c, n := range categoryCounts {
		categoryScores[c] = percentOf(n, total)
	}

	sources := make([]domain.SourceScore, 0, len(sourceCounts))
	for s, n := range sourceCounts {
		sources = append(sources, domain.SourceScore{Source: s, Score: percentOf(n, total)})
	}
	sort.Slice(sources, func(i, j int) bool {
		if sources[i].Score != sources[j].Score {
			return sources[i].Score > sources[j].Score
		}
		return sources[i].Source < sources[j].Source
	})
	if len(sources) > topSourceCount {
		sources = sources[:topSourceCount]
	}

	keywords := make([]domain.KeywordCount, 0, len(keywordCounts))
	for k, n := range keywordCounts {
		keywords = append(keywords, domain.KeywordCount{Keyword: k, Count: n})
	}
	sort.Slice(keywords, func(i, j int) bool {
		if keywords[i].Count != keywords[j].Count {
			return keywords[i].Count > keywords[j].Count
		}
		return keywords[i].Keyword < keywords[j].Keyword
	})
	if len(keywords) > topKeywordCount {
		keywords = keywords[:topKeywordCount]
	}

	return &domain.PreferenceProfile{
		UserID:            userID,
		CategoryScores:    categoryScores,
		PreferredSources:  sources,
		TopKeywords:       keywords,
		LastUpdated:       time.Now(),
		TotalArticlesRead: total,
	}
}

func percentOf(count, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(count) / float64(total) * 100))
}

// extractKeywords tokenizes latin text and keeps stop-word-filtered tokens of
// at least four characters, deduplicated per article.
func extractKeywords(text string) []string {
	normalized := domain.NormalizeLatinText(text)
	if normalized == "" {
		return nil
	}
	seen := make(map[string]bool)
	var out []string
	for _, tok := range strings.Fields(normalized) {
		if len(tok) < minKeywordLen || stopWords[tok] || seen[tok] {
			continue
		}
		seen[tok] = true
		out = append(out, tok)
	}
	return out
}

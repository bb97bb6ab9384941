package recommend_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"news-engine/internal/domain"
	"news-engine/internal/usecase/recommend"
)

func testProfile() *domain.PreferenceProfile {
	return &domain.PreferenceProfile{
		UserID: "u1",
		CategoryScores: map[domain.Category]int{
			domain.CategorySports:   60,
			domain.CategoryBusiness: 30,
		},
		PreferredSources: []domain.SourceScore{
			{Source: "kantipur", Score: 50},
			{Source: "setopati", Score: 30},
		},
		TopKeywords: []domain.KeywordCount{
			{Keyword: "cricket", Count: 4},
			{Keyword: "budget", Count: 2},
		},
	}
}

func TestSemanticScore_Bonuses(t *testing.T) {
	now := time.Now()
	bonuses := recommend.DefaultSemanticBonuses()

	// Old enough that no recency bonus applies.
	old := now.Add(-48 * time.Hour).Unix()

	plain := domain.VectorHit{
		Score:   0.5,
		Payload: domain.PointPayload{Source: "other", Category: domain.CategoryScience, PublishedAt: old},
	}
	preferred := domain.VectorHit{
		Score: 0.5,
		Payload: domain.PointPayload{
			Source:      "kantipur",
			Category:    domain.CategorySports,
			Topics:      []domain.Topic{domain.TopicSports},
			PublishedAt: old,
		},
	}

	base := recommend.SemanticScore(plain, testProfile(), now, bonuses)
	boosted := recommend.SemanticScore(preferred, testProfile(), now, bonuses)

	// Source 0.15 + category 0.10 + one topic 0.10.
	assert.InDelta(t, 0.35, boosted-base, 1e-9)
}

func TestSemanticScore_TopicBonusCapped(t *testing.T) {
	now := time.Now()
	bonuses := recommend.DefaultSemanticBonuses()
	old := now.Add(-48 * time.Hour).Unix()

	profile := &domain.PreferenceProfile{
		CategoryScores: map[domain.Category]int{
			domain.CategorySports:        50,
			domain.CategoryEntertainment: 40,
		},
	}
	// Three matching topics would be 0.30 uncapped; the cap holds it at 0.20.
	hit := domain.VectorHit{
		Score: 0.5,
		Payload: domain.PointPayload{
			Source:      "other",
			Topics:      []domain.Topic{domain.TopicSports, domain.TopicArt, domain.TopicCulture},
			PublishedAt: old,
		},
	}
	baseline := domain.VectorHit{
		Score:   0.5,
		Payload: domain.PointPayload{Source: "other", PublishedAt: old},
	}

	diff := recommend.SemanticScore(hit, profile, now, bonuses) -
		recommend.SemanticScore(baseline, profile, now, bonuses)
	assert.InDelta(t, 0.20, diff, 1e-9)
}

func TestSemanticScore_RecencyDecay(t *testing.T) {
	now := time.Now()
	bonuses := recommend.DefaultSemanticBonuses()

	fresh := domain.VectorHit{Score: 0.5, Payload: domain.PointPayload{PublishedAt: now.Unix()}}
	stale := domain.VectorHit{Score: 0.5, Payload: domain.PointPayload{PublishedAt: now.Add(-25 * time.Hour).Unix()}}

	freshScore := recommend.SemanticScore(fresh, nil, now, bonuses)
	staleScore := recommend.SemanticScore(stale, nil, now, bonuses)

	assert.InDelta(t, 0.05, freshScore-float64(fresh.Score), 1e-3)
	assert.Equal(t, float64(stale.Score), staleScore)
}

func TestHeuristicScore_RankBonuses(t *testing.T) {
	now := time.Now()
	weights := recommend.DefaultHeuristicWeights()
	old := now.Add(-48 * time.Hour)

	topPick := domain.Article{
		Title:       "cricket budget special",
		Category:    domain.CategorySports,
		Source:      "kantipur",
		PublishedAt: old,
	}
	score := recommend.HeuristicScore(topPick, testProfile(), now, weights)

	// Category rank 1 (90) + source rank 1 (50) + two keywords (10).
	assert.InDelta(t, 150, score, 1e-9)
}

func TestHeuristicScore_SecondRanks(t *testing.T) {
	now := time.Now()
	weights := recommend.DefaultHeuristicWeights()
	old := now.Add(-48 * time.Hour)

	second := domain.Article{
		Title:       "plain headline",
		Category:    domain.CategoryBusiness,
		Source:      "setopati",
		PublishedAt: old,
	}
	score := recommend.HeuristicScore(second, testProfile(), now, weights)
	// Category rank 2 (60) + source rank 2 (40).
	assert.InDelta(t, 100, score, 1e-9)
}

func TestHeuristicScore_NilProfileIsRecencyOnly(t *testing.T) {
	now := time.Now()
	weights := recommend.DefaultHeuristicWeights()

	fresh := domain.Article{PublishedAt: now}
	score := recommend.HeuristicScore(fresh, nil, now, weights)
	assert.InDelta(t, 24, score, 1e-3)
}

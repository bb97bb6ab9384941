package recommend

import (
	"strings"
	"time"

	"news-engine/internal/domain"
)

// SemanticBonuses are the preference bonuses added on top of the raw vector
// similarity score on the semantic recommendation path.
type SemanticBonuses struct {
	PreferredSource float64
	TopCategory     float64
	TopicMatch      float64
	TopicCap        float64
	RecencyMax      float64
	RecencyWindow   time.Duration
}

func DefaultSemanticBonuses() SemanticBonuses {
	return SemanticBonuses{
		PreferredSource: 0.15,
		TopCategory:     0.10,
		TopicMatch:      0.10,
		TopicCap:        0.20,
		RecencyMax:      0.05,
		RecencyWindow:   24 * time.Hour,
	}
}

// heuristicKeywordCount bounds how many top keywords earn KeywordPoint each.
const heuristicKeywordCount = 10

// HeuristicWeights score the structured-store fallback path. The scales are
// deliberately coarse: the fallback ranks by preference rank and freshness,
// not by similarity.
type HeuristicWeights struct {
	// CategoryRank is the bonus per preferred-category rank, best first.
	CategoryRank []float64
	// SourceRank is the bonus per preferred-source rank, best first.
	SourceRank []float64
	// KeywordPoint is added per top keyword found in title or description.
	KeywordPoint float64
	// RecencyMax is the bonus for a just-published article, decaying to zero
	// over RecencyWindow.
	RecencyMax    float64
	RecencyWindow time.Duration
}

func DefaultHeuristicWeights() HeuristicWeights {
	return HeuristicWeights{
		CategoryRank:  []float64{90, 60, 30},
		SourceRank:    []float64{50, 40, 30, 20, 10},
		KeywordPoint:  5,
		RecencyMax:    24,
		RecencyWindow: 24 * time.Hour,
	}
}

// SemanticScore fuses a vector hit's similarity with the user's preference
// profile. profile may be nil, in which case only similarity and recency
// contribute.
func SemanticScore(hit domain.VectorHit, profile *domain.PreferenceProfile, now time.Time, b SemanticBonuses) float64 {
	score := float64(hit.Score)
	score += recencyBonus(time.Unix(hit.Payload.PublishedAt, 0), now, b.RecencyMax, b.RecencyWindow)
	if profile == nil {
		return score
	}

	for _, s := range profile.TopSources(len(profile.PreferredSources)) {
		if s == hit.Payload.Source {
			score += b.PreferredSource
			break
		}
	}
	for _, c := range profile.TopCategories(3) {
		if c == hit.Payload.Category {
			score += b.TopCategory
			break
		}
	}

	topicBonus := 0.0
	profileTopics := profileTopicSet(profile)
	for _, t := range hit.Payload.Topics {
		if profileTopics[t] {
			topicBonus += b.TopicMatch
		}
	}
	if topicBonus > b.TopicCap {
		topicBonus = b.TopicCap
	}
	score += topicBonus

	return score
}

// HeuristicScore ranks a structured-store article against the profile on the
// fallback path. profile may be nil; recency still applies.
func HeuristicScore(a domain.Article, profile *domain.PreferenceProfile, now time.Time, w HeuristicWeights) float64 {
	score := recencyBonus(a.PublishedAt, now, w.RecencyMax, w.RecencyWindow)
	if profile == nil {
		return score
	}

	for rank, c := range profile.TopCategories(len(w.CategoryRank)) {
		if c == a.Category {
			score += w.CategoryRank[rank]
			break
		}
	}
	for rank, s := range profile.TopSources(len(w.SourceRank)) {
		if s == a.Source {
			score += w.SourceRank[rank]
			break
		}
	}

	haystack := strings.ToLower(a.Title + " " + a.Description)
	for _, kw := range profile.TopKeywordList(heuristicKeywordCount) {
		if strings.Contains(haystack, kw) {
			score += w.KeywordPoint
		}
	}
	return score
}

// profileTopicSet derives the topics a profile implies from its top
// categories' hint topics.
func profileTopicSet(profile *domain.PreferenceProfile) map[domain.Topic]bool {
	set := make(map[domain.Topic]bool)
	for _, c := range profile.TopCategories(3) {
		for _, t := range domain.CategoryTopicHints[c] {
			set[t] = true
		}
	}
	return set
}

func recencyBonus(publishedAt, now time.Time, max float64, window time.Duration) float64 {
	if window <= 0 {
		return 0
	}
	age := now.Sub(publishedAt)
	if age < 0 {
		age = 0
	}
	if age >= window {
		return 0
	}
	return max * (1 - float64(age)/float64(window))
}

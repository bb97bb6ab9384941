package domain

import (
	"sort"
	"strings"
)

// Topic is a broad cross-cutting tag, intentionally wider than Category.
type Topic string

const (
	TopicFinance       Topic = "finance"
	TopicSports        Topic = "sports"
	TopicPolitics      Topic = "politics"
	TopicArt           Topic = "art"
	TopicCulture       Topic = "culture"
	TopicInternational Topic = "international"
)

// KnownTopics lists every topic in a stable order.
var KnownTopics = []Topic{
	TopicFinance,
	TopicSports,
	TopicPolitics,
	TopicArt,
	TopicCulture,
	TopicInternational,
}

// ParseTopic returns the topic for s, or false when s is not a known topic.
func ParseTopic(s string) (Topic, bool) {
	t := Topic(strings.ToLower(strings.TrimSpace(s)))
	for _, k := range KnownTopics {
		if t == k {
			return k, true
		}
	}
	return "", false
}

// TopicRule scores one topic over normalized text.
// A strong keyword counts 2 points, a weak keyword 1; the topic is tagged when
// the accumulated score reaches Threshold. Keywords containing a space are
// phrases and matched as substrings; single tokens are matched exactly against
// the token set to avoid false positives like "important" -> "import".
type TopicRule struct {
	Threshold int
	Strong    []string
	Weak      []string
}

// TopicRules is the keyword rule table, one entry per topic.
var TopicRules = map[Topic]TopicRule{
	TopicFinance: {
		Threshold: 2,
		Strong: []string{
			"finance", "financial", "interest rate", "inflation", "deflation",
			"stock", "stocks", "ipo", "nasdaq", "dow", "s&p", "bond", "bonds",
			"dividend", "earnings", "revenue", "profit", "bitcoin", "crypto",
			"cryptocurrency", "forex",
		},
		Weak: []string{
			"market", "markets", "economy", "economic", "budget", "tax",
			"tariff", "investment", "investor", "currency", "trade", "import",
			"export", "loan", "credit",
			// "bank" is ambiguous; keep as weak only
			"bank", "banking",
		},
	},
	TopicSports: {
		Threshold: 2,
		Strong: []string{
			"sports", "match", "tournament", "league", "championship",
			"cricket", "football", "soccer", "basketball", "tennis",
			"olympics", "world cup",
		},
		Weak: []string{
			"game", "team", "player", "coach", "score", "goal",
		},
	},
	TopicPolitics: {
		Threshold: 2,
		Strong: []string{
			"politics", "election", "parliament", "congress", "senate",
			"prime minister", "president", "constitution", "supreme court",
		},
		Weak: []string{
			"government", "minister", "campaign", "vote", "voting", "bill",
			"policy", "law", "court", "diplomacy", "sanction", "sanctions",
		},
	},
	TopicArt: {
		Threshold: 2,
		Strong: []string{
			"gallery", "exhibition", "museum", "painting", "sculpture",
			"photography", "cinema", "theatre", "theater", "literature",
			"poetry",
		},
		Weak: []string{
			"art", "artist", "design", "illustration", "film",
		},
	},
	TopicCulture: {
		Threshold: 2,
		Strong: []string{
			"heritage", "festival", "tradition", "traditional", "dance",
			"language",
		},
		Weak: []string{
			"culture", "cultural", "community", "religion", "ritual",
			"celebration", "music",
		},
	},
	TopicInternational: {
		Threshold: 2,
		Strong: []string{
			"international", "united nations", "nato", "eu", "treaty",
			"summit", "ceasefire",
		},
		Weak: []string{
			"global", "world", "foreign", "overseas", "border", "war",
			"conflict", "sanctions",
		},
	},
}

// CategoryTopicHints maps categories to topics applied unconditionally,
// independent of keyword score.
var CategoryTopicHints = map[Category][]Topic{
	CategorySports:        {TopicSports},
	CategoryEntertainment: {TopicCulture, TopicArt},
}

// NormalizeLatinText lowercases and keeps basic latin letters, digits and
// whitespace, collapsing runs of anything else to a single space.
func NormalizeLatinText(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	lastSpace := true
	for _, r := range strings.ToLower(text) {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
			lastSpace = false
		default:
			if !lastSpace {
				b.WriteByte(' ')
				lastSpace = true
			}
		}
	}
	return strings.TrimSpace(b.String())
}

// ScoreTopicKeywords returns the keyword score of one rule against normalized
// text and its token set.
func ScoreTopicKeywords(normalized string, tokens map[string]bool, rule TopicRule) int {
	score := 0
	for _, kw := range rule.Strong {
		if matchesKeyword(normalized, tokens, kw) {
			score += 2
		}
	}
	for _, kw := range rule.Weak {
		if matchesKeyword(normalized, tokens, kw) {
			score++
		}
	}
	return score
}

func matchesKeyword(normalized string, tokens map[string]bool, keyword string) bool {
	if strings.Contains(keyword, " ") {
		return strings.Contains(normalized, keyword)
	}
	return tokens[keyword]
}

// KeywordTopics runs the keyword rule table plus category hints over the given
// text. Pure and deterministic; this is the floor every classifier mode can
// fall back to.
func KeywordTopics(text string, category Category) []Topic {
	set := make(map[Topic]bool)
	for _, t := range CategoryTopicHints[category] {
		set[t] = true
	}

	normalized := NormalizeLatinText(text)
	if normalized != "" {
		tokens := make(map[string]bool)
		for _, tok := range strings.Fields(normalized) {
			tokens[tok] = true
		}
		for topic, rule := range TopicRules {
			threshold := rule.Threshold
			if threshold <= 0 {
				threshold = 2
			}
			if ScoreTopicKeywords(normalized, tokens, rule) >= threshold {
				set[topic] = true
			}
		}
	}

	topics := make([]Topic, 0, len(set))
	for t := range set {
		topics = append(topics, t)
	}
	sort.Slice(topics, func(i, j int) bool { return topics[i] < topics[j] })
	return topics
}

// ContainsDevanagari reports whether s holds at least one Devanagari rune.
// Queries and articles in Nepali are written in this script.
func ContainsDevanagari(s string) bool {
	for _, r := range s {
		if r >= 'ऀ' && r <= 'ॿ' {
			return true
		}
	}
	return false
}

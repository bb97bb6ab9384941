package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"news-engine/internal/domain"
)

func TestKeywordTopics_Deterministic(t *testing.T) {
	text := "Nepal wins the cricket tournament after a thrilling match"
	first := domain.KeywordTopics(text, domain.CategorySports)
	second := domain.KeywordTopics(text, domain.CategorySports)
	assert.Equal(t, first, second)
}

func TestKeywordTopics_CategoryHints(t *testing.T) {
	// Hints apply regardless of keyword content.
	topics := domain.KeywordTopics("completely unrelated text", domain.CategorySports)
	assert.Contains(t, topics, domain.TopicSports)

	topics = domain.KeywordTopics("completely unrelated text", domain.CategoryEntertainment)
	assert.Contains(t, topics, domain.TopicArt)
	assert.Contains(t, topics, domain.TopicCulture)
}

func TestKeywordTopics_StrongKeywordReachesThreshold(t *testing.T) {
	// A single strong keyword scores 2, meeting the default threshold.
	topics := domain.KeywordTopics("the cricket season begins", domain.CategoryTechnology)
	assert.Contains(t, topics, domain.TopicSports)
}

func TestKeywordTopics_WeakKeywordsAccumulate(t *testing.T) {
	// One weak keyword is not enough.
	topics := domain.KeywordTopics("the team travelled home", "")
	assert.NotContains(t, topics, domain.TopicSports)

	// Two weak keywords reach the threshold.
	topics = domain.KeywordTopics("the team played a great game", "")
	assert.Contains(t, topics, domain.TopicSports)
}

func TestKeywordTopics_TokenMatchIsExact(t *testing.T) {
	// "important" must not match the weak finance keyword "import".
	topics := domain.KeywordTopics("an important announcement about exports", "")
	assert.NotContains(t, topics, domain.TopicFinance)
}

func TestKeywordTopics_PhraseMatchesAsSubstring(t *testing.T) {
	topics := domain.KeywordTopics("world cup qualifiers start today", "")
	assert.Contains(t, topics, domain.TopicSports)
}

func TestKeywordTopics_SortedOutput(t *testing.T) {
	topics := domain.KeywordTopics("election results move the stock market and inflation worries voters", "")
	for i := 1; i < len(topics); i++ {
		assert.Less(t, string(topics[i-1]), string(topics[i]))
	}
}

func TestNormalizeLatinText(t *testing.T) {
	assert.Equal(t, "nepal wins 3 0", domain.NormalizeLatinText("  Nepal wins, 3-0! "))
	assert.Equal(t, "", domain.NormalizeLatinText("---"))
}

func TestContainsDevanagari(t *testing.T) {
	assert.True(t, domain.ContainsDevanagari("नेपाल समाचार"))
	assert.True(t, domain.ContainsDevanagari("latest from काठमाडौं"))
	assert.False(t, domain.ContainsDevanagari("plain english query"))
}

func TestPointID_Deterministic(t *testing.T) {
	a := domain.PointID("article-123")
	b := domain.PointID("article-123")
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, domain.PointID("article-124"))
}

func TestParseTopic(t *testing.T) {
	topic, ok := domain.ParseTopic(" Sports ")
	assert.True(t, ok)
	assert.Equal(t, domain.TopicSports, topic)

	_, ok = domain.ParseTopic("astrology")
	assert.False(t, ok)
}

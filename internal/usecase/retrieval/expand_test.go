package retrieval_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"news-engine/internal/domain"
	"news-engine/internal/usecase/retrieval"
)

func TestBuildQueries_CrossLingualExpansion(t *testing.T) {
	q, intent := retrieval.BuildQueries("nepal loss match", nil)

	assert.Equal(t, "nepal loss match", q.Base)
	assert.True(t, q.HasExpanded())
	// Expanded query keeps the raw query and appends hint terms after a newline.
	assert.True(t, strings.HasPrefix(q.Expanded, "nepal loss match\n"))
	assert.Contains(t, q.Expanded, "नेपाल")
	assert.Contains(t, q.Expanded, "हार")
	assert.Contains(t, q.Expanded, "खेल")
	// "match" is a strong sports keyword, so sports is inferred as intent.
	assert.Contains(t, intent, domain.TopicSports)
}

func TestBuildQueries_NoExpansionForDevanagari(t *testing.T) {
	q, _ := retrieval.BuildQueries("नेपाल क्रिकेट", nil)
	assert.False(t, q.HasExpanded())
	assert.Equal(t, "नेपाल क्रिकेट", q.Base)
}

func TestBuildQueries_NoHintsNoExpansion(t *testing.T) {
	q, intent := retrieval.BuildQueries("quantum computing breakthrough", nil)
	assert.False(t, q.HasExpanded())
	assert.Empty(t, intent)
}

func TestBuildQueries_SelectedTopicsJoinIntent(t *testing.T) {
	_, intent := retrieval.BuildQueries("latest headlines", []domain.Topic{domain.TopicFinance})
	assert.Contains(t, intent, domain.TopicFinance)
}

func TestBuildQueries_TopicHintsWithoutTriggerTokens(t *testing.T) {
	// No literal trigger matches, but the selected topic pulls in its
	// vocabulary cluster.
	q, _ := retrieval.BuildQueries("latest headlines", []domain.Topic{domain.TopicSports})
	assert.True(t, q.HasExpanded())
	assert.Contains(t, q.Expanded, "खेलकुद")
}

func TestBuildQueries_HintCap(t *testing.T) {
	q, _ := retrieval.BuildQueries(
		"nepal kathmandu india china match loss win cricket football election government budget economy bank market price",
		[]domain.Topic{domain.TopicSports, domain.TopicFinance, domain.TopicPolitics})
	assert.True(t, q.HasExpanded())

	hintPart := strings.SplitN(q.Expanded, "\n", 2)[1]
	assert.LessOrEqual(t, len(strings.Fields(hintPart)), 12)
}

func TestCandidateLimit(t *testing.T) {
	// Small limits get the additive floor.
	assert.Equal(t, 23, retrieval.CandidateLimit(3))
	// Mid limits scale by six.
	assert.Equal(t, 30, retrieval.CandidateLimit(5))
	// Large limits hit the hard cap.
	assert.Equal(t, 50, retrieval.CandidateLimit(12))
}

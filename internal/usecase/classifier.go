package usecase

import (
	"context"
	"log/slog"
	"math"
	"sort"
	"sync"

	"news-engine/internal/domain"
)

// ClassifierMode selects how topics are derived.
type ClassifierMode string

const (
	// ModeKeyword uses only the keyword rule table.
	ModeKeyword ClassifierMode = "keyword"
	// ModeHybrid runs semantic refinement only when the keyword signal is
	// empty or the text is outside the keyword rules' script.
	ModeHybrid ClassifierMode = "hybrid"
	// ModeSemantic always runs semantic scoring on top of category hints.
	ModeSemantic ClassifierMode = "semantic"
)

// ClassifierConfig holds classifier tunables.
type ClassifierConfig struct {
	Mode ClassifierMode
	// SemanticThreshold is the minimum cosine similarity against a topic
	// centroid for the topic to be tagged.
	SemanticThreshold float64
	// MaxSemanticTopics caps how many topics semantic scoring may add.
	MaxSemanticTopics int
}

// DefaultClassifierConfig returns the defaults used when no explicit
// configuration is wired.
func DefaultClassifierConfig() ClassifierConfig {
	return ClassifierConfig{
		Mode:              ModeHybrid,
		SemanticThreshold: 0.38,
		MaxSemanticTopics: 3,
	}
}

// TopicClassifier tags text with zero or more topics. Classify is
// deterministic for fixed inputs and never returns an error: any embedding
// failure silently degrades to the keyword-only result.
type TopicClassifier struct {
	cfg     ClassifierConfig
	encoder domain.VectorEncoder
	logger  *slog.Logger

	// Centroids are built lazily on first semantic use. A failed build is
	// not memoized; the next call retries, so a transient embedder outage
	// cannot wedge classification permanently.
	centroidMu sync.Mutex
	centroids  map[domain.Topic][]float32
}

// NewTopicClassifier creates a classifier. encoder may be nil, in which case
// only keyword mode is effective regardless of configuration.
func NewTopicClassifier(cfg ClassifierConfig, encoder domain.VectorEncoder, logger *slog.Logger) *TopicClassifier {
	if cfg.SemanticThreshold <= 0 {
		cfg.SemanticThreshold = 0.38
	}
	if cfg.MaxSemanticTopics <= 0 {
		cfg.MaxSemanticTopics = 3
	}
	if cfg.Mode == "" {
		cfg.Mode = ModeHybrid
	}
	return &TopicClassifier{cfg: cfg, encoder: encoder, logger: logger}
}

// Classify derives topics for an article or query text. Category hints apply
// unconditionally; keyword scoring applies always; semantic scoring applies
// per the configured mode.
func (c *TopicClassifier) Classify(ctx context.Context, text string, category domain.Category) []domain.Topic {
	keywordTopics := domain.KeywordTopics(text, category)

	runSemantic := false
	switch c.cfg.Mode {
	case ModeSemantic:
		runSemantic = true
	case ModeHybrid:
		// The keyword rules only understand latin text; Devanagari input
		// carries no keyword signal at all.
		runSemantic = len(keywordTopics) == 0 || domain.ContainsDevanagari(text)
	}
	if !runSemantic || c.encoder == nil || text == "" {
		return keywordTopics
	}

	semanticTopics, err := c.semanticTopics(ctx, text)
	if err != nil {
		c.logger.Warn("semantic_classification_failed",
			slog.String("error", err.Error()))
		return keywordTopics
	}

	set := make(map[domain.Topic]bool, len(keywordTopics)+len(semanticTopics))
	for _, t := range keywordTopics {
		set[t] = true
	}
	for _, t := range semanticTopics {
		set[t] = true
	}
	merged := make([]domain.Topic, 0, len(set))
	for t := range set {
		merged = append(merged, t)
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i] < merged[j] })
	return merged
}

// semanticTopics embeds the text and tags topics whose centroid similarity
// clears the threshold, best-first, capped at MaxSemanticTopics.
func (c *TopicClassifier) semanticTopics(ctx context.Context, text string) ([]domain.Topic, error) {
	centroids, err := c.topicCentroids(ctx)
	if err != nil {
		return nil, err
	}

	vec, err := c.encoder.Embed(ctx, text, domain.RoleQuery)
	if err != nil {
		return nil, err
	}

	type scored struct {
		topic domain.Topic
		sim   float64
	}
	var candidates []scored
	for _, topic := range domain.KnownTopics {
		centroid, ok := centroids[topic]
		if !ok {
			continue
		}
		if sim := cosineSimilarity(vec, centroid); sim >= c.cfg.SemanticThreshold {
			candidates = append(candidates, scored{topic, sim})
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].sim != candidates[j].sim {
			return candidates[i].sim > candidates[j].sim
		}
		return candidates[i].topic < candidates[j].topic
	})
	if len(candidates) > c.cfg.MaxSemanticTopics {
		candidates = candidates[:c.cfg.MaxSemanticTopics]
	}

	topics := make([]domain.Topic, len(candidates))
	for i, s := range candidates {
		topics[i] = s.topic
	}
	return topics, nil
}

// topicCentroids returns the per-topic centroid vectors, building them on
// first use. Only a successful build is cached.
func (c *TopicClassifier) topicCentroids(ctx context.Context) (map[domain.Topic][]float32, error) {
	c.centroidMu.Lock()
	defer c.centroidMu.Unlock()

	if c.centroids != nil {
		return c.centroids, nil
	}

	centroids := make(map[domain.Topic][]float32, len(topicPrototypes))
	for topic, phrases := range topicPrototypes {
		vecs, err := c.encoder.EmbedBatch(ctx, phrases, domain.RolePassage)
		if err != nil {
			return nil, err
		}
		centroids[topic] = meanVector(vecs)
	}

	c.centroids = centroids
	c.logger.Info("topic_centroids_built", slog.Int("topics", len(centroids)))
	return centroids, nil
}

func meanVector(vecs [][]float32) []float32 {
	if len(vecs) == 0 {
		return nil
	}
	mean := make([]float32, len(vecs[0]))
	for _, v := range vecs {
		for i := range mean {
			mean[i] += v[i]
		}
	}
	n := float32(len(vecs))
	for i := range mean {
		mean[i] /= n
	}
	return mean
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

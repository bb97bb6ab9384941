package di

import (
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"news-engine/internal/adapter/embedder"
	"news-engine/internal/adapter/repository"
	"news-engine/internal/adapter/vectorindex"
	"news-engine/internal/domain"
	"news-engine/internal/infra/config"
	"news-engine/internal/infra/httpclient"
	"news-engine/internal/usecase"
	"news-engine/internal/usecase/retrieval"
	"news-engine/internal/worker"
)

// ApplicationComponents holds all wired dependencies for the application.
type ApplicationComponents struct {
	// Stores
	Articles domain.ArticleStore
	History  domain.HistoryStore
	Profiles domain.ProfileStore

	// Adapters
	Encoder domain.VectorEncoder
	Index   domain.VectorIndex

	// Usecases
	SearchUsecase    usecase.SearchArticlesUsecase
	RecommendUsecase usecase.RecommendArticlesUsecase
	IndexUsecase     usecase.IndexArticlesUsecase
	ProfileUsecase   usecase.RebuildProfileUsecase

	// Worker
	ProfileWorker *worker.ProfileWorker
}

// NewApplicationComponents wires all dependencies from config and database
// pool.
func NewApplicationComponents(cfg *config.Config, pool *pgxpool.Pool, log *slog.Logger) *ApplicationComponents {
	// Stores
	articles := repository.NewArticleRepository(pool)
	history := repository.NewHistoryRepository(pool)
	profiles := repository.NewProfileRepository(pool)

	// Shared HTTP clients with connection pooling
	embedderHTTP := httpclient.NewPooledClient(time.Duration(cfg.EmbedderTimeout) * time.Second)
	qdrantHTTP := httpclient.NewPooledClient(time.Duration(cfg.QdrantTimeout) * time.Second)

	// External adapters
	encoder := embedder.NewOllamaEmbedder(cfg.EmbedderURL, cfg.EmbeddingModel, cfg.VectorDimension, embedderHTTP, log)
	index := vectorindex.NewQdrantIndex(cfg.QdrantURL, cfg.QdrantCollection, cfg.VectorDimension, cfg.QdrantDistance, qdrantHTTP, log)

	// Classifier
	classifier := usecase.NewTopicClassifier(usecase.ClassifierConfig{
		Mode:              usecase.ClassifierMode(cfg.ClassifierMode),
		SemanticThreshold: cfg.SemanticThreshold,
		MaxSemanticTopics: cfg.MaxSemanticTopics,
	}, encoder, log)

	// Usecases
	searchUsecase := usecase.NewSearchArticlesUsecase(articles, encoder, index, retrieval.DefaultSearchWeights(), log)
	profileUsecase := usecase.NewRebuildProfileUsecase(history, articles, profiles, log)
	recommendUsecase := usecase.NewRecommendArticlesUsecase(articles, history, profiles, profileUsecase, encoder, index, log)
	indexUsecase := usecase.NewIndexArticlesUsecase(articles, encoder, index, classifier, usecase.IndexerConfig{
		BatchSize:        cfg.IndexBatchSize,
		EmbedRatePerSec:  float64(cfg.EmbedRatePerSec),
		MaxRetryAttempts: cfg.MaxRetryAttempts,
		MaxBatchSplits:   cfg.MaxBatchSplits,
	}, log)

	// Worker
	profileWorker := worker.NewProfileWorker(
		profileUsecase,
		time.Duration(cfg.ProfileRefreshMinutes)*time.Minute,
		log,
	)

	return &ApplicationComponents{
		Articles:         articles,
		History:          history,
		Profiles:         profiles,
		Encoder:          encoder,
		Index:            index,
		SearchUsecase:    searchUsecase,
		RecommendUsecase: recommendUsecase,
		IndexUsecase:     indexUsecase,
		ProfileUsecase:   profileUsecase,
		ProfileWorker:    profileWorker,
	}
}

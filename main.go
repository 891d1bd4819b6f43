package main

import (
	"context"
	"database/sql"
	"log"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"

	"github.com/nexusmarket/matcher-core/pkg/backlog"
	"github.com/nexusmarket/matcher-core/pkg/catalog"
	"github.com/nexusmarket/matcher-core/pkg/config"
	"github.com/nexusmarket/matcher-core/pkg/database"
	"github.com/nexusmarket/matcher-core/pkg/llm"
	"github.com/nexusmarket/matcher-core/pkg/logging"
	"github.com/nexusmarket/matcher-core/pkg/matcher"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Services bundles the composition root's two entry points: the interactive
// matcher controller and the backlog writer. A transport (HTTP, gRPC, a CLI)
// wires these to its own framing; building that transport is out of scope
// here.
type Services struct {
	Matcher matcher.Controller
	Backlog backlog.Writer
}

func main() {
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := newLogger(cfg.Env)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	logger.Info("starting matcher-core",
		zap.String("version", cfg.Version),
		zap.String("env", cfg.Env),
		zap.String("database", cfg.Database.Database),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := runMigrations(cfg, logger); err != nil {
		logger.Fatal("migrations failed", zap.Error(err))
	}

	db, err := database.NewConnection(ctx, &database.Config{
		URL:            cfg.Database.ConnectionString(),
		MaxConnections: cfg.Database.MaxConnections,
	})
	if err != nil {
		logger.Fatal("failed to connect to database", zap.String("error", logging.SanitizeError(err)))
	}
	defer db.Close()

	services, err := buildServices(cfg, db, logger)
	if err != nil {
		logger.Fatal("failed to build services", zap.Error(err))
	}

	logger.Info("matcher-core ready",
		zap.Bool("embedding_cache_enabled", cfg.LLM.EmbeddingCacheEnabled),
		zap.Int("backlog_match_threshold_percent", cfg.Backlog.MatchThresholdPercent),
	)

	// A transport layer (HTTP/gRPC/CLI) would call services.Matcher and
	// services.Backlog from here; wiring one is deliberately out of scope.
	_ = services
}

func newLogger(env string) (*zap.Logger, error) {
	if env == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

func runMigrations(cfg *config.Config, logger *zap.Logger) error {
	sqlDB, err := sql.Open("pgx", cfg.Database.ConnectionString())
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	return database.RunMigrations(sqlDB, cfg.MigrationsPath, logger)
}

// buildServices wires C1-C9 behind the two services a transport would call.
func buildServices(cfg *config.Config, db *database.DB, logger *zap.Logger) (*Services, error) {
	gateway, err := buildGateway(cfg, logger)
	if err != nil {
		return nil, err
	}

	catalogRepo := catalog.NewPostgresRepository(db, logger)
	backlogRepo := backlog.NewPostgresRepository(db, logger)

	validator := matcher.NewValidator(matcher.ValidatorConfig{
		MinLabelsRequired:       cfg.Matcher.MinLabelsRequired,
		MinTagsRequired:         cfg.Matcher.MinTagsRequired,
		MinIntegrationsRequired: cfg.Matcher.MinIntegrationsRequired,
	})
	parser := matcher.NewParser(gateway, logger)
	question := matcher.NewQuestionSynthesizer(gateway, logger)
	scorer := matcher.NewScorer()
	controller := matcher.NewController(gateway, catalogRepo, validator, parser, question, scorer, cfg.Matcher.DefaultTopK, cfg.Matcher.DefaultTopN, logger)

	seed := cfg.Backlog.SampleSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	sampler := backlog.NewRandomSampler(seed)
	backlogMatcher := backlog.NewMatcher(backlogRepo, gateway, sampler, logger)
	writer := backlog.NewWriter(backlogRepo, backlogMatcher, gateway, cfg.Backlog.MatchThresholdPercent, logger)

	return &Services{Matcher: controller, Backlog: writer}, nil
}

// buildGateway wires the configured chat provider, the OpenAI embedding
// client, rate limiting, circuit breaking, and an optional Redis-or-in-
// process embedding cache behind the llm.Gateway interface.
func buildGateway(cfg *config.Config, logger *zap.Logger) (llm.Gateway, error) {
	embeddingClient, err := llm.NewOpenAIClient(llm.ClientConfig{
		Endpoint: cfg.LLM.EmbeddingEndpoint,
		Model:    cfg.LLM.EmbeddingModel,
		APIKey:   cfg.LLM.EmbeddingAPIKey,
	}, logger)
	if err != nil {
		return nil, err
	}

	var chatClient llm.ChatClient
	switch cfg.LLM.ChatProvider {
	case "anthropic":
		chatClient = llm.NewAnthropicClient(llm.AnthropicConfig{
			Model:  cfg.LLM.ChatModel,
			APIKey: cfg.LLM.ChatAPIKey,
		}, logger)
	default:
		openaiChat, err := llm.NewOpenAIClient(llm.ClientConfig{
			Endpoint: cfg.LLM.ChatEndpoint,
			Model:    cfg.LLM.ChatModel,
			APIKey:   cfg.LLM.ChatAPIKey,
		}, logger)
		if err != nil {
			return nil, err
		}
		chatClient = openaiChat
	}

	embeddingCache, err := buildEmbeddingCache(cfg, logger)
	if err != nil {
		return nil, err
	}

	gateway := llm.NewDefaultGateway(chatClient, embeddingClient, llm.GatewayConfig{
		EmbeddingModel:          cfg.LLM.EmbeddingModel,
		RequestsPerSecond:       cfg.LLM.RequestsPerSecond,
		Burst:                   cfg.LLM.Burst,
		CircuitBreakerThreshold: cfg.LLM.CircuitBreakerThreshold,
	}, embeddingCache, logger)

	return gateway, nil
}

// buildEmbeddingCache prefers Redis when configured, falls back to an
// in-process LRU cache, and disables caching entirely when the feature flag
// is off.
func buildEmbeddingCache(cfg *config.Config, logger *zap.Logger) (llm.EmbeddingCache, error) {
	if !cfg.LLM.EmbeddingCacheEnabled {
		return nil, nil
	}

	redisClient, err := database.NewRedisClient(&cfg.Redis)
	if err != nil {
		return nil, err
	}
	if redisClient != nil {
		ttl := time.Duration(cfg.Redis.TTLSeconds) * time.Second
		return llm.NewRedisEmbeddingCache(redisClient, ttl, logger), nil
	}

	return llm.NewLRUEmbeddingCache(1024)
}

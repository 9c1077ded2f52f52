package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/janmasethu/sakhi/internal/config"
	"github.com/janmasethu/sakhi/internal/core"
	"github.com/janmasethu/sakhi/internal/providers/llm"
	"github.com/janmasethu/sakhi/internal/providers/rag"
	"github.com/janmasethu/sakhi/internal/service/classifier"
	"github.com/janmasethu/sakhi/internal/service/command"
	"github.com/janmasethu/sakhi/internal/service/generator"
	"github.com/janmasethu/sakhi/internal/service/retrieval"
	"github.com/janmasethu/sakhi/internal/service/router"
	"github.com/janmasethu/sakhi/internal/service/turn"
	"github.com/janmasethu/sakhi/internal/storage/sqlite"
	"github.com/janmasethu/sakhi/pkg/log"
	"github.com/joho/godotenv"
)

// App holds the wired turn core shared by every subcommand.
type App struct {
	AppCfg    *config.AppConfig
	RAGCfg    *config.RAGConfig
	RouterCfg *config.RouterConfig

	DB           *sql.DB
	Profiles     *sqlite.ProfileRepo
	Conversation *sqlite.ConversationRepo
	Knowledge    *sqlite.KnowledgeRepo

	Router   *router.Router
	Embedder core.Embedder
	Turns    *turn.Orchestrator
	Commands *command.Router
}

func NewApp(ctx context.Context) (*App, error) {
	if err := initEnv(ctx, config.GetEnvPath()); err != nil {
		return nil, fmt.Errorf("init env: %w", err)
	}

	// 1. Configuration
	appCfg := config.NewAppConfig(ctx)
	slmCfg := config.NewSLMConfig(ctx)
	llmCfg := config.NewLLMConfig(ctx)
	ragCfg := config.NewRAGConfig(ctx)
	routerCfg := config.NewRouterConfig(ctx)

	// 2. Storage
	if err := os.MkdirAll(appCfg.RuntimePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create runtime directory: %w", err)
	}
	db, err := sqlite.NewDB(ctx, appCfg.GetDatabasePath())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	a := &App{
		AppCfg:       appCfg,
		RAGCfg:       ragCfg,
		RouterCfg:    routerCfg,
		DB:           db,
		Profiles:     sqlite.NewProfileRepo(db),
		Conversation: sqlite.NewConversationRepo(db),
		Knowledge:    sqlite.NewKnowledgeRepo(db),
	}

	// 3. Routing policy
	r, err := newRouter(ctx, routerCfg)
	if err != nil {
		db.Close()
		return nil, err
	}
	a.Router = r

	// 4. Model backends
	slm := llm.NewSLMProvider(ctx, slmCfg)
	large, err := llm.NewProvider(ctx, llmCfg)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize LLM provider: %w", err)
	}

	a.Embedder, err = rag.NewEmbeddingModel(ctx, ragCfg)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize embedding model: %w", err)
	}
	if ragCfg.EmbeddingKey == "" {
		log.FromCtx(ctx).Warn().Msg("EMBEDDING_API_KEY is empty, retrieval will degrade")
	}

	// 5. Turn core
	var cls core.Classifier = classifier.NewLLM(slm, slmCfg.ClassifierTimeout)
	if slmCfg.IsMock() {
		cls = classifier.NewHeuristic()
	}

	a.Turns = turn.NewOrchestrator(
		cls,
		a.Router,
		retrieval.NewRetriever(a.Embedder, a.Knowledge, retrieval.ConfigFrom(ragCfg)),
		generator.NewDefaultSet(slm, large, slmCfg.Timeout, llmCfg.Timeout),
		a.Conversation,
		a.Profiles,
		turn.ConfigFrom(appCfg, ragCfg),
	)
	a.Commands = command.NewRouter(a.Router, a.Conversation, a.Profiles)

	return a, nil
}

func (a *App) Close() error {
	return a.DB.Close()
}

func newRouter(ctx context.Context, cfg *config.RouterConfig) (*router.Router, error) {
	if cfg.PolicyPath == "" {
		return router.New(nil), nil
	}
	p, err := router.LoadPolicy(cfg.PolicyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load routing policy: %w", err)
	}
	log.FromCtx(ctx).Info().Str("path", cfg.PolicyPath).Int("rules", len(p.Rules)).Msg("loaded routing policy")
	return router.New(p), nil
}

func initEnv(ctx context.Context, envFile string) error {
	logger := log.FromCtx(ctx)

	if _, err := os.Stat(envFile); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	if err := godotenv.Load(envFile); err != nil {
		logger.Warn().Err(err).Str("path", envFile).Msg("failed to load .env file")
		return err
	}

	logger.Debug().Str("path", envFile).Msg("loaded .env file")
	return nil
}

package turn

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/janmasethu/sakhi/internal/config"
	"github.com/janmasethu/sakhi/internal/core"
	"github.com/janmasethu/sakhi/internal/service/retrieval"
	"github.com/janmasethu/sakhi/pkg/log"
	"golang.org/x/sync/errgroup"
)

type ProfileReader interface {
	Get(ctx context.Context, userID string) (*core.Profile, error)
}

type Decider interface {
	DecideClassified(text string, cls core.Classification) core.RouteDecision
}

type Generators interface {
	For(route core.Route) (core.Generator, error)
}

type Config struct {
	HistoryLimit       int
	PersistenceTimeout time.Duration
	TokenBudget        int
}

func ConfigFrom(app *config.AppConfig, rag *config.RAGConfig) Config {
	return Config{
		HistoryLimit:       app.HistoryLimit,
		PersistenceTimeout: app.PersistenceTimeout,
		TokenBudget:        rag.TokenBudget,
	}
}

// Orchestrator runs one turn: classify, route, retrieve, generate and persist.
// It holds no per-turn state and is safe for concurrent use.
type Orchestrator struct {
	classifier core.Classifier
	router     Decider
	retriever  core.Retriever
	generators Generators
	log        core.ConversationLog
	profiles   ProfileReader
	cfg        Config
}

func NewOrchestrator(
	classifier core.Classifier,
	router Decider,
	retriever core.Retriever,
	generators Generators,
	conversation core.ConversationLog,
	profiles ProfileReader,
	cfg Config,
) *Orchestrator {
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = 5
	}
	if cfg.PersistenceTimeout <= 0 {
		cfg.PersistenceTimeout = 5 * time.Second
	}
	if cfg.TokenBudget <= 0 {
		cfg.TokenBudget = 1200
	}
	return &Orchestrator{
		classifier: classifier,
		router:     router,
		retriever:  retriever,
		generators: generators,
		log:        conversation,
		profiles:   profiles,
		cfg:        cfg,
	}
}

// Handle runs a turn. On a reply persistence failure it returns both the
// result and a persistence StageError; every other error comes with a nil result.
func (o *Orchestrator) Handle(ctx context.Context, req core.TurnRequest) (*core.TurnResult, error) {
	if strings.TrimSpace(req.UserID) == "" {
		return nil, fmt.Errorf("%w: user id is required", core.ErrInvalidRequest)
	}
	if strings.TrimSpace(req.Message) == "" {
		return nil, fmt.Errorf("%w: message is required", core.ErrInvalidRequest)
	}

	start := time.Now()
	ctx = log.WithFields(ctx, "turn_id", uuid.NewString(), "user_id", req.UserID)
	logger := log.FromCtx(ctx)

	// Classification is fatal; profile and history only enrich the prompt.
	var (
		cls      core.Classification
		userName string
		history  []core.Message
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		cls, err = o.classifier.Classify(gctx, req.Message, req.Language)
		return err
	})
	g.Go(func() error {
		userName = o.userName(gctx, req.UserID)
		return nil
	})
	g.Go(func() error {
		history = o.history(gctx, req.UserID)
		return nil
	})
	if err := g.Wait(); err != nil {
		logger.Error().Err(err).Msg("classification failed")
		return nil, core.NewStageError(core.StageClassification, "", err)
	}

	if err := o.persist(ctx, req.UserID, core.RoleUser, req.Message, cls.Language); err != nil {
		logger.Error().Err(err).Msg("failed to persist user message")
		return nil, core.NewStageError(core.StagePersistence, "", err)
	}

	decision := o.router.DecideClassified(req.Message, cls)
	logger.Debug().
		Str("route", string(decision.Route)).
		Str("rule", decision.Rule).
		Str("signal", string(cls.Signal)).
		Msg("route decided")

	in := core.GenerationInput{
		Message:  req.Message,
		Language: cls.Language,
		UserName: userName,
	}

	var (
		items    []core.RetrievalItem
		degraded bool
	)
	if decision.Route.NeedsRetrieval() {
		var err error
		items, err = o.retriever.Retrieve(ctx, req.Message)
		if err != nil {
			degraded = true
			items = nil
			logger.Warn().Err(err).Str("route", string(decision.Route)).Msg("retrieval failed, generating without context")
		}
		in.Context = retrieval.BuildContext(items, o.cfg.TokenBudget)
		in.History = history
	}

	gen, err := o.generators.For(decision.Route)
	if err != nil {
		return nil, core.NewStageError(core.StageGeneration, decision.Route, err)
	}

	reply, err := gen.Generate(ctx, in)
	if err != nil {
		logger.Error().Err(err).Str("route", string(decision.Route)).Msg("generation failed")
		var se *core.StageError
		if errors.As(err, &se) {
			return nil, err
		}
		return nil, core.NewStageError(core.StageGeneration, decision.Route, err)
	}

	media := retrieval.ExtractMedia(items)
	result := &core.TurnResult{
		Reply:          reply,
		Route:          decision.Route,
		Intent:         decision.Intent,
		Language:       cls.Language,
		Mode:           decision.Route.Mode(),
		InfographicURL: media.InfographicURL,
		YouTubeLink:    media.YouTubeLink,
		Degraded:       degraded,
	}

	if err := o.persist(ctx, req.UserID, core.RoleAssistant, reply, cls.Language); err != nil {
		logger.Error().Err(err).
			Bool("inconsistency", true).
			Str("route", string(decision.Route)).
			Str("reply", reply).
			Msg("reply generated but not persisted")
		return result, core.NewStageError(core.StagePersistence, decision.Route, err)
	}

	logger.Info().
		Str("route", string(result.Route)).
		Str("intent", result.Intent).
		Str("language", result.Language).
		Int("context_items", in.Context.Items).
		Bool("degraded", degraded).
		Dur("took", time.Since(start)).
		Msg("turn completed")

	return result, nil
}

// persist writes on a context detached from the caller so that a client
// disconnect cannot abort a write that has started.
func (o *Orchestrator) persist(ctx context.Context, userID string, role core.Role, content, language string) error {
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), o.cfg.PersistenceTimeout)
	defer cancel()
	return o.log.Append(pctx, userID, role, content, language)
}

func (o *Orchestrator) userName(ctx context.Context, userID string) string {
	if o.profiles == nil {
		return ""
	}
	p, err := o.profiles.Get(ctx, userID)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			log.FromCtx(ctx).Warn().Err(err).Msg("profile lookup failed, replying without name")
		}
		return ""
	}
	return p.Name
}

func (o *Orchestrator) history(ctx context.Context, userID string) []core.Message {
	msgs, err := o.log.LastN(ctx, userID, o.cfg.HistoryLimit)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			log.FromCtx(ctx).Warn().Err(err).Msg("history read failed, replying without history")
		}
		return nil
	}
	if len(msgs) > o.cfg.HistoryLimit {
		msgs = msgs[len(msgs)-o.cfg.HistoryLimit:]
	}
	return msgs
}

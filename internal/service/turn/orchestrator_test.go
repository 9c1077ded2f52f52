package turn

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/janmasethu/sakhi/internal/core"
	"github.com/janmasethu/sakhi/internal/service/router"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryLog struct {
	mu        sync.Mutex
	msgs      map[string][]core.Message
	failRole  core.Role
	readErr   error
	appendCtx []error
}

func newMemoryLog() *memoryLog {
	return &memoryLog{msgs: make(map[string][]core.Message)}
}

func (l *memoryLog) Append(ctx context.Context, userID string, role core.Role, content, language string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.appendCtx = append(l.appendCtx, ctx.Err())
	if role == l.failRole {
		return errors.New("disk full")
	}
	l.msgs[userID] = append(l.msgs[userID], core.Message{Role: role, Content: content, Language: language, CreatedAt: time.Now()})
	return nil
}

func (l *memoryLog) LastN(ctx context.Context, userID string, n int) ([]core.Message, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.readErr != nil {
		return nil, l.readErr
	}
	all := l.msgs[userID]
	if len(all) > n {
		all = all[len(all)-n:]
	}
	return append([]core.Message(nil), all...), nil
}

func (l *memoryLog) messages(userID string) []core.Message {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]core.Message(nil), l.msgs[userID]...)
}

type fakeClassifier struct {
	cls core.Classification
	err error
}

func (f *fakeClassifier) Classify(ctx context.Context, text, declared string) (core.Classification, error) {
	return f.cls, f.err
}

type fakeRetriever struct {
	mu    sync.Mutex
	items []core.RetrievalItem
	err   error
	calls int
}

func (f *fakeRetriever) Retrieve(ctx context.Context, query string) ([]core.RetrievalItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.items, f.err
}

type fakeGenerator struct {
	mu    sync.Mutex
	reply string
	err   error
	got   core.GenerationInput
}

func (f *fakeGenerator) Generate(ctx context.Context, in core.GenerationInput) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.got = in
	return f.reply, f.err
}

type fakeGenerators map[core.Route]*fakeGenerator

func (f fakeGenerators) For(route core.Route) (core.Generator, error) {
	g, ok := f[route]
	if !ok {
		return nil, fmt.Errorf("no generator for %s", route)
	}
	return g, nil
}

type fakeProfiles struct {
	profile *core.Profile
	err     error
}

func (f *fakeProfiles) Get(ctx context.Context, userID string) (*core.Profile, error) {
	return f.profile, f.err
}

type fixture struct {
	log        *memoryLog
	classifier *fakeClassifier
	retriever  *fakeRetriever
	gens       fakeGenerators
	profiles   *fakeProfiles
	orch       *Orchestrator
}

func newFixture() *fixture {
	f := &fixture{
		log:        newMemoryLog(),
		classifier: &fakeClassifier{cls: core.Classification{Language: "en", Signal: core.SignalYes, Confidence: 0.9}},
		retriever:  &fakeRetriever{},
		gens: fakeGenerators{
			core.RouteSLMDirect: {reply: "Hello Asha!"},
			core.RouteSLMRAG:    {reply: "Folic acid is a B vitamin."},
			core.RouteOpenAIRAG: {reply: "Please go to the hospital now."},
		},
		profiles: &fakeProfiles{profile: &core.Profile{UserID: "u1", Name: "Asha"}},
	}
	f.orch = NewOrchestrator(f.classifier, router.New(nil), f.retriever, f.gens, f.log, f.profiles, Config{})
	return f
}

func TestHandle_SmallTalk(t *testing.T) {
	f := newFixture()
	f.classifier.cls.Signal = core.SignalNo

	res, err := f.orch.Handle(context.Background(), core.TurnRequest{UserID: "u1", Message: "hello", Language: "en"})
	require.NoError(t, err)

	want := &core.TurnResult{
		Reply:    "Hello Asha!",
		Route:    core.RouteSLMDirect,
		Intent:   "greeting",
		Language: "en",
		Mode:     core.ModeGeneral,
	}
	if diff := cmp.Diff(want, res); diff != "" {
		t.Errorf("result mismatch (-want +got):\n%s", diff)
	}

	assert.Zero(t, f.retriever.calls)
	got := f.gens[core.RouteSLMDirect].got
	assert.Equal(t, "Asha", got.UserName)
	assert.Empty(t, got.History)
	assert.True(t, got.Context.Empty())

	msgs := f.log.messages("u1")
	require.Len(t, msgs, 2)
	assert.Equal(t, core.RoleUser, msgs[0].Role)
	assert.Equal(t, core.RoleAssistant, msgs[1].Role)
}

func TestHandle_RAGWithMediaFirstMatch(t *testing.T) {
	f := newFixture()
	f.retriever.items = []core.RetrievalItem{
		{SourceType: core.SourceArticle, Content: "no media"},
		{SourceType: core.SourceFAQ, Content: "folic", InfographicURL: "https://cdn/x.png"},
		{SourceType: core.SourceFAQ, Content: "video", YouTubeLink: "https://youtu.be/y"},
	}

	res, err := f.orch.Handle(context.Background(), core.TurnRequest{UserID: "u1", Message: "what is folic acid"})
	require.NoError(t, err)

	assert.Equal(t, core.RouteSLMRAG, res.Route)
	assert.Equal(t, core.ModeMedical, res.Mode)
	assert.Equal(t, "https://cdn/x.png", res.InfographicURL)
	assert.Empty(t, res.YouTubeLink)
	assert.False(t, res.Degraded)

	got := f.gens[core.RouteSLMRAG].got
	assert.Equal(t, 3, got.Context.Items)
	assert.Contains(t, got.Context.Text, "[FAQ] folic")
	assert.NotContains(t, got.Context.Text, "https://cdn/x.png")
}

func TestHandle_HistoryBoundedAndExcludesCurrentMessage(t *testing.T) {
	f := newFixture()
	for i := 0; i < 12; i++ {
		require.NoError(t, f.log.Append(context.Background(), "u1", core.RoleUser, fmt.Sprintf("old %d", i), "en"))
	}

	_, err := f.orch.Handle(context.Background(), core.TurnRequest{UserID: "u1", Message: "severe bleeding"})
	require.NoError(t, err)

	got := f.gens[core.RouteOpenAIRAG].got
	require.Len(t, got.History, 5)
	assert.Equal(t, "old 7", got.History[0].Content)
	assert.Equal(t, "old 11", got.History[4].Content)
}

func TestHandle_DurableUnderGenerationFailure(t *testing.T) {
	f := newFixture()
	f.gens[core.RouteOpenAIRAG].err = core.NewStageError(core.StageGeneration, core.RouteOpenAIRAG, context.DeadlineExceeded)

	res, err := f.orch.Handle(context.Background(), core.TurnRequest{UserID: "u1", Message: "baby not moving"})
	require.Error(t, err)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, core.ErrGeneration)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	msgs := f.log.messages("u1")
	require.Len(t, msgs, 1)
	assert.Equal(t, core.RoleUser, msgs[0].Role)
	assert.Equal(t, "baby not moving", msgs[0].Content)
}

func TestHandle_PlainGeneratorErrorIsWrapped(t *testing.T) {
	f := newFixture()
	f.gens[core.RouteSLMRAG].err = errors.New("upstream 500")

	_, err := f.orch.Handle(context.Background(), core.TurnRequest{UserID: "u1", Message: "what is folic acid"})
	assert.ErrorIs(t, err, core.ErrGeneration)
	stage, ok := core.StageOf(err)
	assert.True(t, ok)
	assert.Equal(t, core.StageGeneration, stage)
}

func TestHandle_RetrievalDegrades(t *testing.T) {
	f := newFixture()
	f.retriever.err = errors.New("vector store down")

	res, err := f.orch.Handle(context.Background(), core.TurnRequest{UserID: "u1", Message: "severe bleeding"})
	require.NoError(t, err)
	assert.Equal(t, core.RouteOpenAIRAG, res.Route)
	assert.NotEmpty(t, res.Reply)
	assert.True(t, res.Degraded)
	assert.True(t, f.gens[core.RouteOpenAIRAG].got.Context.Empty())
}

func TestHandle_ClassificationIsFatal(t *testing.T) {
	f := newFixture()
	f.classifier.err = errors.New("slm unavailable")

	res, err := f.orch.Handle(context.Background(), core.TurnRequest{UserID: "u1", Message: "hello"})
	assert.Nil(t, res)
	assert.ErrorIs(t, err, core.ErrClassification)
	assert.Empty(t, f.log.messages("u1"))
	assert.Empty(t, f.gens[core.RouteSLMDirect].got.Message, "generator must not run")
}

func TestHandle_UserPersistenceIsFatal(t *testing.T) {
	f := newFixture()
	f.log.failRole = core.RoleUser

	_, err := f.orch.Handle(context.Background(), core.TurnRequest{UserID: "u1", Message: "what is folic acid"})
	assert.ErrorIs(t, err, core.ErrPersistence)
	assert.Zero(t, f.retriever.calls)
}

func TestHandle_ReplyPersistenceFailureReturnsResult(t *testing.T) {
	f := newFixture()
	f.log.failRole = core.RoleAssistant

	res, err := f.orch.Handle(context.Background(), core.TurnRequest{UserID: "u1", Message: "what is folic acid"})
	assert.ErrorIs(t, err, core.ErrPersistence)
	require.NotNil(t, res)
	assert.Equal(t, "Folic acid is a B vitamin.", res.Reply)

	msgs := f.log.messages("u1")
	require.Len(t, msgs, 1)
	assert.Equal(t, core.RoleUser, msgs[0].Role)
}

func TestHandle_ProfileAndHistoryFailuresDegrade(t *testing.T) {
	f := newFixture()
	f.profiles.err = core.ErrNotFound
	f.log.readErr = errors.New("read failed")

	res, err := f.orch.Handle(context.Background(), core.TurnRequest{UserID: "u1", Message: "what is folic acid"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Reply)

	got := f.gens[core.RouteSLMRAG].got
	assert.Empty(t, got.UserName)
	assert.Empty(t, got.History)
}

func TestHandle_ClassifierSignalLiftsSmallTalk(t *testing.T) {
	f := newFixture()

	res, err := f.orch.Handle(context.Background(), core.TurnRequest{UserID: "u1", Message: "hello"})
	require.NoError(t, err)
	assert.Equal(t, core.RouteSLMRAG, res.Route)
	assert.Equal(t, 1, f.retriever.calls)
}

func TestHandle_PersistsDespiteCallerCancellation(t *testing.T) {
	f := newFixture()
	ctx, cancel := context.WithCancel(context.Background())
	f.gens[core.RouteSLMRAG].err = context.Canceled
	cancel()

	_, err := f.orch.Handle(ctx, core.TurnRequest{UserID: "u1", Message: "what is folic acid"})
	require.Error(t, err)

	// Classification fakes ignore ctx, so the turn reaches persistence with a cancelled caller.
	msgs := f.log.messages("u1")
	require.Len(t, msgs, 1)
	assert.NoError(t, f.log.appendCtx[0])
}

func TestHandle_InvalidRequest(t *testing.T) {
	f := newFixture()

	_, err := f.orch.Handle(context.Background(), core.TurnRequest{UserID: "u1", Message: "   "})
	assert.ErrorIs(t, err, core.ErrInvalidRequest)

	_, err = f.orch.Handle(context.Background(), core.TurnRequest{Message: "hello"})
	assert.ErrorIs(t, err, core.ErrInvalidRequest)
}

func TestHandle_ConcurrentUsers(t *testing.T) {
	f := newFixture()
	f.classifier.cls.Signal = core.SignalNo

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := f.orch.Handle(context.Background(), core.TurnRequest{UserID: fmt.Sprintf("u%d", i), Message: "hello"})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	for i := 0; i < 10; i++ {
		assert.Len(t, f.log.messages(fmt.Sprintf("u%d", i)), 2)
	}
}

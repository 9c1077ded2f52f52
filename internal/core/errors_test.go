package core

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStageError_MatchesSentinelAndCause(t *testing.T) {
	err := fmt.Errorf("turn: %w", NewStageError(StageGeneration, RouteOpenAIRAG, context.DeadlineExceeded))

	assert.ErrorIs(t, err, ErrGeneration)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.NotErrorIs(t, err, ErrRetrieval)

	stage, ok := StageOf(err)
	assert.True(t, ok)
	assert.Equal(t, StageGeneration, stage)
	assert.Contains(t, err.Error(), "openai_rag")
}

func TestStageOf_PlainError(t *testing.T) {
	_, ok := StageOf(errors.New("boom"))
	assert.False(t, ok)
}

func TestRoute(t *testing.T) {
	tests := []struct {
		route     Route
		retrieval bool
		mode      string
		rank      int
	}{
		{RouteSLMDirect, false, ModeGeneral, 0},
		{RouteSLMRAG, true, ModeMedical, 1},
		{RouteOpenAIRAG, true, ModeMedical, 2},
	}
	for _, tt := range tests {
		t.Run(string(tt.route), func(t *testing.T) {
			assert.True(t, tt.route.Valid())
			assert.Equal(t, tt.retrieval, tt.route.NeedsRetrieval())
			assert.Equal(t, tt.mode, tt.route.Mode())
			assert.Equal(t, tt.rank, tt.route.Rank())
		})
	}

	assert.False(t, Route("gpt").Valid())
	assert.Equal(t, RouteOpenAIRAG, Escalate(RouteOpenAIRAG, RouteSLMDirect))
	assert.Equal(t, RouteSLMRAG, Escalate(RouteSLMDirect, RouteSLMRAG))
}

func TestProfile_OnboardingComplete(t *testing.T) {
	assert.False(t, Profile{Name: "Asha"}.OnboardingComplete())
	assert.True(t, Profile{Name: "Asha", Gender: "female", Location: "Pune"}.OnboardingComplete())
}

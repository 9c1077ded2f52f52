package core

import (
	"errors"
	"fmt"
)

// Stage names the pipeline step a turn failed in.
type Stage string

const (
	StageClassification Stage = "classification"
	StageRetrieval      Stage = "retrieval"
	StageGeneration     Stage = "generation"
	StagePersistence    Stage = "persistence"
)

var (
	ErrClassification = errors.New("classification failed")
	ErrRetrieval      = errors.New("retrieval failed")
	ErrGeneration     = errors.New("generation failed")
	ErrPersistence    = errors.New("persistence failed")

	ErrInvalidRequest = errors.New("invalid request")
	ErrNotFound       = errors.New("not found")
	ErrOnboarding     = errors.New("onboarding incomplete")
	ErrEmptyOutput    = errors.New("empty model output")
)

func (s Stage) sentinel() error {
	switch s {
	case StageClassification:
		return ErrClassification
	case StageRetrieval:
		return ErrRetrieval
	case StageGeneration:
		return ErrGeneration
	default:
		return ErrPersistence
	}
}

// StageError is returned by the turn orchestrator. It matches both the
// stage sentinel and the underlying cause with errors.Is.
type StageError struct {
	Stage Stage
	Route Route
	Err   error
}

func NewStageError(stage Stage, route Route, err error) *StageError {
	return &StageError{Stage: stage, Route: route, Err: err}
}

func (e *StageError) Error() string {
	if e.Route != "" {
		return fmt.Sprintf("%s (route %s): %v", e.Stage, e.Route, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() []error {
	return []error{e.Stage.sentinel(), e.Err}
}

// StageOf extracts the failing stage from err, if any.
func StageOf(err error) (Stage, bool) {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage, true
	}
	return "", false
}

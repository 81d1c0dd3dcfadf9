package editor

import (
	"context"
	"errors"
	"fmt"

	"testdata-grafana-plugin/pkg/models"
)

// ErrNotLoaded is returned by handlers called before the scenario list is ready.
var ErrNotLoaded = errors.New("scenario list is not loaded")

// State is the scenario list lifecycle. It only moves forward:
// Loading → Ready, or Loading → Failed.
type State int

const (
	StateLoading State = iota
	StateReady
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return "loading"
	}
}

// MarshalText encodes the state by name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a state name written by MarshalText.
func (s *State) UnmarshalText(text []byte) error {
	switch string(text) {
	case "loading":
		*s = StateLoading
	case "ready":
		*s = StateReady
	case "failed":
		*s = StateFailed
	default:
		return fmt.Errorf("unknown editor state %q", string(text))
	}
	return nil
}

// ScenarioSource provides the scenarios offered by the datasource.
type ScenarioSource interface {
	GetScenarios(ctx context.Context) ([]models.Scenario, error)
}

// ScenarioSourceFunc adapts a function to ScenarioSource.
type ScenarioSourceFunc func(ctx context.Context) ([]models.Scenario, error)

// GetScenarios calls f.
func (f ScenarioSourceFunc) GetScenarios(ctx context.Context) ([]models.Scenario, error) {
	return f(ctx)
}

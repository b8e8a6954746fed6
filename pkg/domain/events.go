package domain

import (
	"context"
	"time"
)

// Stage names one step of the constrained build pipeline.
type Stage string

const (
	StageReplicate      Stage = "replicate"
	StageFilter         Stage = "filter"
	StageArcConsistency Stage = "arc_consistency"
	StageStart          Stage = "start"
	StageNormalize      Stage = "normalize"
)

// StageEvent is emitted after each pipeline stage.
type StageEvent struct {
	Timestamp  time.Time     `json:"timestamp"`
	Stage      Stage         `json:"stage"`
	Constraint string        `json:"constraint"`
	Duration   time.Duration `json:"duration"`
	Removed    int           `json:"removed,omitempty"`
	LayerSizes []int         `json:"layer_sizes,omitempty"`
}

// BuildEvent is emitted once per constrained build, successful or not.
type BuildEvent struct {
	Timestamp  time.Time     `json:"timestamp"`
	Constraint string        `json:"constraint"`
	Duration   time.Duration `json:"duration"`
	LayerSizes []int         `json:"layer_sizes,omitempty"`
	Trained    bool          `json:"trained"`
	Feasible   bool          `json:"feasible"`
	Err        error         `json:"-"`
}

// BuildHooks defines callbacks for build observability.
type BuildHooks struct {
	OnStage func(context.Context, *StageEvent)
	OnBuild func(context.Context, *BuildEvent)
}

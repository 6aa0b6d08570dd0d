// Package kitchen implements the application controller for the recipe
// workspace: generation, history, and session transitions. All state lives
// in the injected workspace store; this package owns every read and write.
package kitchen

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// StageMode classifies how a stage's failure is handled. The classification
// is a declared property of the stage, not control flow buried in the
// caller: Fatal failures abort the pipeline and propagate, BestEffort
// failures are swallowed after logging.
type StageMode int

const (
	Fatal StageMode = iota
	BestEffort
)

// String returns the mode name for logging
func (m StageMode) String() string {
	if m == BestEffort {
		return "best-effort"
	}
	return "fatal"
}

// Stage is one step of a sequential result-or-error chain
type Stage struct {
	Name string
	Mode StageMode
	Run  func(ctx context.Context) error
}

// ErrHalt stops pipeline execution early without treating the current
// stage as failed. Stages return it when continuing would apply results
// the user has already navigated away from.
var ErrHalt = errors.New("pipeline halted")

// StageError reports which fatal stage failed and why
type StageError struct {
	Stage string
	Err   error
}

// Error implements the error interface
func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s failed: %v", e.Stage, e.Err)
}

// Unwrap returns the underlying stage error
func (e *StageError) Unwrap() error {
	return e.Err
}

// Pipeline runs stages strictly in order, one outbound call at a time.
// Later stages depend on earlier results, so there is no concurrency here
// on purpose.
type Pipeline struct {
	stages []Stage
	logger *zap.Logger
}

// NewPipeline creates a pipeline over the given stages
func NewPipeline(logger *zap.Logger, stages ...Stage) *Pipeline {
	return &Pipeline{
		stages: stages,
		logger: logger,
	}
}

// Execute runs the stages in order. A Fatal stage error aborts execution
// and is returned wrapped in a StageError; a BestEffort stage error is
// handed to the best-effort wrapper, which swallows it, and execution
// continues. A stage returning ErrHalt ends execution silently.
func (p *Pipeline) Execute(ctx context.Context) error {
	for _, stage := range p.stages {
		if err := ctx.Err(); err != nil {
			return &StageError{Stage: stage.Name, Err: err}
		}

		var err error
		if stage.Mode == BestEffort {
			err = BestEffortFunc(stage.Run).Run(ctx, p.logger, stage.Name)
		} else {
			err = stage.Run(ctx)
		}
		if err == nil {
			continue
		}

		if errors.Is(err, ErrHalt) {
			p.logger.Debug("pipeline halted",
				zap.String("stage", stage.Name),
			)
			return nil
		}

		return &StageError{Stage: stage.Name, Err: err}
	}

	return nil
}

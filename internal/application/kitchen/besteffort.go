package kitchen

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

// BestEffortFunc wraps an operation whose failure must never surface to
// the user: tips generation, history persistence, logout bookkeeping. The
// type makes the recoverable-vs-fatal distinction explicit where the call
// is declared instead of leaving it implied by surrounding control flow.
type BestEffortFunc func(ctx context.Context) error

// Run executes the call. Any failure is logged for diagnostics and
// swallowed, so the returned error is always nil, with one exception:
// ErrHalt is a control signal rather than a failure and passes through
// untouched.
func (f BestEffortFunc) Run(ctx context.Context, logger *zap.Logger, op string) error {
	err := f(ctx)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrHalt):
		return err
	default:
		logger.Warn("best-effort call failed",
			zap.String("operation", op),
			zap.Error(err),
		)
		return nil
	}
}

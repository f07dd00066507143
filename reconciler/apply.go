package reconciler

import (
	"context"
	"errors"
	"log/slog"

	vppcfg "github.com/frobware/go-vppcfg"
	"github.com/frobware/go-vppcfg/directive"
)

// Executor issues a single CLI command against the dataplane. The
// dataplane client owns timeouts and retries; Apply treats Exec as an
// opaque synchronous call.
type Executor interface {
	Exec(ctx context.Context, command string) error
}

// ErrPartialPlan is returned when Apply is handed a plan that did not
// plan cleanly and the caller did not accept partial plans.
var ErrPartialPlan = errors.New("refusing to apply a plan produced by a failed run")

// ExecResult records the outcome of one directive during apply.
type ExecResult struct {
	Directive directive.Directive
	Err       error
}

// Apply replays the plan directive by directive, in recorded order.
// Execution stops at the first command the dataplane rejects; nothing
// is reordered, skipped or retried, and already-executed directives are
// not rolled back. The results cover every directive attempted,
// including the failing one.
//
// A plan whose outcome is not succeeded is refused unless acceptPartial
// is set.
func Apply(ctx context.Context, exec Executor, plan *directive.Plan, acceptPartial bool, logger *slog.Logger) ([]ExecResult, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "apply")

	if plan.Outcome != directive.OutcomeSucceeded && !acceptPartial {
		return nil, ErrPartialPlan
	}

	var results []ExecResult
	for _, d := range plan.Directives {
		res := ExecResult{Directive: d}
		for _, cmd := range d.Commands {
			logger.Info("exec", "object", d.Target.String(), "phase", d.Phase, "command", cmd)
			if err := exec.Exec(ctx, cmd); err != nil {
				res.Err = vppcfg.ExecutionError{Object: d.Target, Command: cmd, Err: err}
				break
			}
		}
		results = append(results, res)
		if res.Err != nil {
			return results, res.Err
		}
	}
	return results, nil
}

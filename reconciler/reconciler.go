// Package reconciler orchestrates a reconciliation run: precondition
// checks, then the prune, create and sync planning phases, each
// consulting the pure compute functions and appending rendered
// directives to the plan. Planning never touches the dataplane; Apply
// replays a finished plan against it.
package reconciler

import (
	"errors"
	"log/slog"

	vppcfg "github.com/frobware/go-vppcfg"
	"github.com/frobware/go-vppcfg/compute"
	"github.com/frobware/go-vppcfg/directive"
)

// Capabilities are the dataplane features probed before planning.
type Capabilities struct {
	// LinuxCP reports whether the dataplane advertises the linux-cp
	// plugin, required by any lcp object in the desired document.
	LinuxCP bool
}

// Options is the explicit run policy. Planning is a pure function of
// (desired, live, Options); nothing is read from ambient state.
type Options struct {
	// Force lets the run proceed to the next phase after a planning
	// failure. The run is still marked failed and the plan annotated.
	Force bool
	// LiveQueried is true when the live snapshot was read from a real
	// dataplane. Precondition checks only make sense then; a mock
	// snapshot skips them.
	LiveQueried bool
	// Capabilities as probed from the dataplane. Ignored unless
	// LiveQueried.
	Capabilities Capabilities
	// Logger for planning progress. Defaults to slog.Default.
	Logger *slog.Logger
}

// Reconciler plans the transformation of live state into desired state.
// Single-threaded and single-use: one Reconciler per run.
type Reconciler struct {
	desired *vppcfg.Snapshot
	live    *vppcfg.Snapshot
	opts    Options
	logger  *slog.Logger
}

// New creates a reconciler over one desired/live snapshot pair.
func New(desired, live *vppcfg.Snapshot, opts Options) *Reconciler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{
		desired: desired,
		live:    live,
		opts:    opts,
		logger:  logger.With("component", "reconciler"),
	}
}

// Preconditions verifies that the live physical inventory and
// capability set agree with the desired document. Only meaningful when
// the live snapshot was actually queried; returns nil otherwise.
//
// Any failure aborts the run before planning and is never subject to
// force-continue: planning against a dataplane whose physical inventory
// has drifted from the operator's view is not recoverable by policy.
func (r *Reconciler) Preconditions() error {
	if !r.opts.LiveQueried {
		return nil
	}

	for _, want := range r.desired.Kind(vppcfg.KindPhysical) {
		if !r.live.Has(want.Key) {
			return vppcfg.PreconditionError{
				Check:  vppcfg.CheckPhysInDataplane,
				Object: want.Key,
				Msg:    "physical interface in config does not exist in the dataplane",
			}
		}
	}

	for _, have := range r.live.Kind(vppcfg.KindPhysical) {
		if !r.desired.Has(have.Key) {
			return vppcfg.PreconditionError{
				Check:  vppcfg.CheckPhysInConfig,
				Object: have.Key,
				Msg:    "physical interface in the dataplane is not accounted for in config",
			}
		}
	}

	if lcps := r.desired.Kind(vppcfg.KindLCP); len(lcps) > 0 && !r.opts.Capabilities.LinuxCP {
		return vppcfg.PreconditionError{
			Check:  vppcfg.CheckLinuxCP,
			Object: lcps[0].Key,
			Msg:    "config declares linux control-plane bindings but the dataplane does not support linux-cp",
		}
	}

	return nil
}

// Plan runs the three phases in order and returns the accumulated plan.
// The plan is returned even on failure: aborted runs carry the
// directives planned so far, forced runs carry every phase's directives
// plus the recorded failures, with Outcome marking them unfit for an
// unconditional apply.
func (r *Reconciler) Plan() (*directive.Plan, error) {
	plan := &directive.Plan{}

	// Defensive re-verification: the validator guarantees the desired
	// graph is acyclic, but the live graph came from the dataplane.
	for _, s := range []*vppcfg.Snapshot{r.desired, r.live} {
		if err := compute.VerifyAcyclic(s); err != nil {
			plan.Outcome = directive.OutcomeFailedAborted
			plan.Failures = append(plan.Failures, err)
			return plan, err
		}
	}

	// Cascade enforces the destruction invariant: no object may be
	// destroyed while a live dependent outside the prune set still
	// needs it. Such dependents are recreated around the destruction.
	diff := compute.Cascade(compute.ComputeDiff(r.live, r.desired), r.live)
	r.logger.Debug("diff computed",
		"added", len(diff.Added),
		"removed", len(diff.Removed),
		"updatable", len(diff.Updatable),
		"recreate", len(diff.Recreate),
		"unchanged", len(diff.Unchanged),
	)

	var failures []error
	for _, phase := range []func(compute.Diff, *directive.Plan) error{
		r.prune, r.create, r.sync,
	} {
		err := phase(diff, plan)
		if err == nil {
			continue
		}
		var cycle vppcfg.CycleError
		if errors.As(err, &cycle) {
			// Internal invariant violation: never tolerated, not even
			// under force.
			plan.Outcome = directive.OutcomeFailedAborted
			plan.Failures = append(plan.Failures, err)
			return plan, err
		}
		if !r.opts.Force {
			plan.Outcome = directive.OutcomeFailedAborted
			plan.Failures = append(plan.Failures, err)
			return plan, err
		}
		r.logger.Warn("phase failed, continuing due to force", "error", err)
		failures = append(failures, err)
	}

	if len(failures) > 0 {
		plan.Outcome = directive.OutcomeFailedForced
		plan.Failures = failures
		return plan, errors.Join(failures...)
	}

	plan.Outcome = directive.OutcomeSucceeded
	return plan, nil
}

// prune plans one destroy directive for every removed object and for
// the live half of every recreate, dependents before dependencies.
// Physical interfaces are never pruned.
func (r *Reconciler) prune(diff compute.Diff, plan *directive.Plan) error {
	set := lifecycled(diff.Removed)
	set = append(set, lifecycled(compute.LiveOf(diff.Recreate))...)

	ordered, err := compute.Order(set, compute.Reverse)
	if err != nil {
		return err
	}
	for _, o := range ordered {
		cmds, err := directive.RenderDestroy(o)
		if err != nil {
			return vppcfg.PlanningError{Object: o.Key, Phase: string(directive.PhasePrune), Err: err}
		}
		r.logger.Debug("prune", "object", o.Key.String())
		plan.Append(directive.Directive{
			Target:   o.Key,
			Phase:    directive.PhasePrune,
			Op:       directive.OpDestroy,
			Commands: cmds,
		})
	}
	return nil
}

// create plans one create directive for every added object and for the
// desired half of every recreate, dependencies before dependents.
func (r *Reconciler) create(diff compute.Diff, plan *directive.Plan) error {
	set := lifecycled(diff.Added)
	set = append(set, lifecycled(compute.DesiredOf(diff.Recreate))...)

	ordered, err := compute.Order(set, compute.Forward)
	if err != nil {
		return err
	}
	for _, o := range ordered {
		cmds, err := directive.RenderCreate(o)
		if err != nil {
			return vppcfg.PlanningError{Object: o.Key, Phase: string(directive.PhaseCreate), Err: err}
		}
		r.logger.Debug("create", "object", o.Key.String())
		plan.Append(directive.Directive{
			Target:   o.Key,
			Phase:    directive.PhaseCreate,
			Op:       directive.OpCreate,
			Commands: cmds,
		})
	}
	return nil
}

// sync plans one update directive per in-place-updatable change. No
// cross-object dependency constrains updates; kind rank plus name order
// keeps the output deterministic (the diff already emits changes in
// that order).
func (r *Reconciler) sync(diff compute.Diff, plan *directive.Plan) error {
	for _, ch := range diff.Updatable {
		cmds, err := directive.RenderUpdate(ch.Live, ch.Desired, ch.Attrs)
		if err != nil {
			return vppcfg.PlanningError{Object: ch.Desired.Key, Phase: string(directive.PhaseSync), Err: err}
		}
		r.logger.Debug("sync", "object", ch.Desired.Key.String(), "attrs", ch.Attrs)
		plan.Append(directive.Directive{
			Target:   ch.Desired.Key,
			Phase:    directive.PhaseSync,
			Op:       directive.OpUpdate,
			Commands: cmds,
		})
	}
	return nil
}

// lifecycled filters out kinds the engine never creates or destroys.
func lifecycled(objs []vppcfg.Object) []vppcfg.Object {
	var out []vppcfg.Object
	for _, o := range objs {
		if o.Key.Kind.Lifecycled() {
			out = append(out, o)
		}
	}
	return out
}

// Package directive contains reified dataplane mutations - descriptions
// of what to do without doing it. A Directive is pure data: the target
// object, the phase that produced it, the operation, and the rendered
// VPP CLI payload. The Plan is the ordered accumulation of directives
// for one reconciliation run.
package directive

import (
	"fmt"
	"io"

	vppcfg "github.com/frobware/go-vppcfg"
)

// Op is the operation a directive performs on its target.
type Op uint8

const (
	OpCreate Op = iota
	OpDestroy
	OpUpdate
)

// String returns the string representation of the operation.
func (o Op) String() string {
	switch o {
	case OpCreate:
		return "create"
	case OpDestroy:
		return "destroy"
	case OpUpdate:
		return "update"
	default:
		return fmt.Sprintf("Op(%d)", o)
	}
}

// Phase identifies which planning phase produced a directive.
type Phase string

const (
	PhasePrune  Phase = "prune"
	PhaseCreate Phase = "create"
	PhaseSync   Phase = "sync"
)

// Directive is one imperative dataplane mutation. Commands is the
// kind-specific payload: one or more VPP CLI lines, executed in order.
type Directive struct {
	Target   vppcfg.Key `json:"target"`
	Phase    Phase      `json:"phase"`
	Op       Op         `json:"op"`
	Commands []string   `json:"commands"`
}

// Outcome is the terminal state of a reconciliation run.
type Outcome uint8

const (
	// OutcomeSucceeded means all three phases planned cleanly.
	OutcomeSucceeded Outcome = iota
	// OutcomeFailedForced means at least one phase failed but
	// force-continue carried the run through all phases. The plan is
	// partial and apply must not execute it unless the caller
	// explicitly accepts partial plans.
	OutcomeFailedForced
	// OutcomeFailedAborted means a phase failed without force-continue
	// and the run stopped immediately.
	OutcomeFailedAborted
)

// String returns the string representation of the outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeSucceeded:
		return "succeeded"
	case OutcomeFailedForced:
		return "failed-forced"
	case OutcomeFailedAborted:
		return "failed-aborted"
	default:
		return fmt.Sprintf("Outcome(%d)", o)
	}
}

// Plan is the ordered directive sequence produced by one reconciliation
// run, annotated with the run outcome and any planning failures.
type Plan struct {
	Directives []Directive
	Outcome    Outcome
	Failures   []error
}

// Append adds a directive to the end of the plan.
func (p *Plan) Append(d Directive) {
	p.Directives = append(p.Directives, d)
}

// Empty reports whether the plan contains no directives.
func (p *Plan) Empty() bool {
	return len(p.Directives) == 0
}

// Commands flattens the plan into its ordered CLI lines.
func (p *Plan) Commands() []string {
	var out []string
	for _, d := range p.Directives {
		out = append(out, d.Commands...)
	}
	return out
}

// Write serialises the plan as an ordered CLI listing. When emitOK is
// set, a trailing comment marks whether planning succeeded, so a
// consumer of the listing can tell a complete plan from a forced
// partial one.
func (p *Plan) Write(w io.Writer, emitOK bool) error {
	for _, d := range p.Directives {
		for _, cmd := range d.Commands {
			if _, err := fmt.Fprintln(w, cmd); err != nil {
				return err
			}
		}
	}
	if emitOK {
		marker := "comment { vppcfg: plan complete }"
		if p.Outcome != OutcomeSucceeded {
			marker = "comment { vppcfg: planning failed, plan is partial }"
		}
		if _, err := fmt.Fprintln(w, marker); err != nil {
			return err
		}
	}
	return nil
}

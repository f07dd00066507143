package vppcfg

import (
	"fmt"
	"strings"
)

// Precondition check names. Each maps to a distinct process exit code
// at the CLI layer.
const (
	CheckPhysInDataplane = "phys-in-dataplane"
	CheckPhysInConfig    = "phys-in-config"
	CheckLinuxCP         = "linux-cp"
)

// ValidationError is returned when the desired-state document fails a
// schema or semantic check. Fatal: no plan is produced.
type ValidationError struct {
	Path string // document location, e.g. "interfaces.GigabitEthernet3/0/0.mtu"
	Msg  string
}

func (e ValidationError) Error() string {
	if e.Path == "" {
		return e.Msg
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Msg)
}

// PreconditionError is returned when the live dataplane inventory or
// capability set disagrees with the desired document. Fatal before any
// phase runs; never subject to force-continue.
type PreconditionError struct {
	Check  string // one of the Check* constants
	Object Key    // offending identity, zero for capability checks
	Msg    string
}

func (e PreconditionError) Error() string {
	if e.Object.Name == "" {
		return fmt.Sprintf("precondition %s: %s", e.Check, e.Msg)
	}
	return fmt.Sprintf("precondition %s: %s: %s", e.Check, e.Object, e.Msg)
}

// CycleError reports a dependency cycle in the restricted graph at
// planning time. The validator rejects cyclic desired configurations
// upstream, so a cycle here is an internal invariant violation (a
// live-state anomaly or a validator gap) and always fatal.
type CycleError struct {
	Cycle []Key
}

func (e CycleError) Error() string {
	names := make([]string, len(e.Cycle))
	for i, k := range e.Cycle {
		names[i] = k.String()
	}
	return "dependency cycle: " + strings.Join(names, " -> ")
}

// PlanningError is returned when a specific object's directive could
// not be generated. Phase-scoped and subject to the force-continue
// policy.
type PlanningError struct {
	Object Key
	Phase  string
	Err    error
}

func (e PlanningError) Error() string {
	return fmt.Sprintf("planning %s in phase %s: %v", e.Object, e.Phase, e.Err)
}

func (e PlanningError) Unwrap() error { return e.Err }

// ExecutionError is returned when the dataplane rejects a directive
// during apply. Always fatal to the remaining plan; already-executed
// directives are not rolled back.
type ExecutionError struct {
	Object  Key
	Command string
	Err     error
}

func (e ExecutionError) Error() string {
	return fmt.Sprintf("executing %q for %s: %v", e.Command, e.Object, e.Err)
}

func (e ExecutionError) Unwrap() error { return e.Err }

package cli

import (
	"errors"

	vppcfg "github.com/frobware/go-vppcfg"
	"github.com/frobware/go-vppcfg/directive"
)

// ForcedPartialError marks a run that force-continued past planning
// failures. The plan was completed and written, but it is partial.
type ForcedPartialError struct {
	Err error
}

func (e ForcedPartialError) Error() string {
	return "planning failed, force-continued: " + e.Err.Error()
}

func (e ForcedPartialError) Unwrap() error { return e.Err }

// DataplaneError marks a failure to connect to or read from the
// dataplane, as opposed to the dataplane rejecting a mutation.
type DataplaneError struct {
	Err error
}

func (e DataplaneError) Error() string { return "dataplane: " + e.Err.Error() }

func (e DataplaneError) Unwrap() error { return e.Err }

// Exit codes, one per failure category so scripts can branch on the
// reason a run stopped.
const (
	ExitOK              = 0
	ExitInternal        = 1
	ExitValidation      = 2
	ExitDataplane       = 3
	ExitPhysNotInVPP    = 4
	ExitPhysNotInConfig = 5
	ExitNoLinuxCP       = 6
	ExitPruneFailed     = 10
	ExitCreateFailed    = 20
	ExitSyncFailed      = 30
	ExitForcedPartial   = 40
)

// ExitCode maps an error from a command onto the process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	var forced ForcedPartialError
	if errors.As(err, &forced) {
		return ExitForcedPartial
	}

	var pre vppcfg.PreconditionError
	if errors.As(err, &pre) {
		switch pre.Check {
		case vppcfg.CheckPhysInDataplane:
			return ExitPhysNotInVPP
		case vppcfg.CheckPhysInConfig:
			return ExitPhysNotInConfig
		case vppcfg.CheckLinuxCP:
			return ExitNoLinuxCP
		}
		return ExitInternal
	}

	var plan vppcfg.PlanningError
	if errors.As(err, &plan) {
		switch plan.Phase {
		case string(directive.PhasePrune):
			return ExitPruneFailed
		case string(directive.PhaseCreate):
			return ExitCreateFailed
		case string(directive.PhaseSync):
			return ExitSyncFailed
		}
		return ExitInternal
	}

	var val vppcfg.ValidationError
	var cycle vppcfg.CycleError
	if errors.As(err, &val) || errors.As(err, &cycle) {
		return ExitValidation
	}

	var exec vppcfg.ExecutionError
	var dp DataplaneError
	if errors.As(err, &exec) || errors.As(err, &dp) {
		return ExitDataplane
	}

	return ExitInternal
}

package cli

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	vppcfg "github.com/frobware/go-vppcfg"
	"github.com/frobware/go-vppcfg/directive"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: ExitOK},
		{name: "plain error", err: errors.New("boom"), want: ExitInternal},
		{
			name: "validation",
			err:  vppcfg.ValidationError{Path: "loopbacks.loop0.mtu", Msg: "out of range"},
			want: ExitValidation,
		},
		{
			name: "joined validation errors",
			err: errors.Join(
				vppcfg.ValidationError{Msg: "one"},
				vppcfg.ValidationError{Msg: "two"},
			),
			want: ExitValidation,
		},
		{
			name: "cycle",
			err:  vppcfg.CycleError{Cycle: []vppcfg.Key{{Kind: vppcfg.KindBridgeDomain, Name: "bd1"}}},
			want: ExitValidation,
		},
		{
			name: "dataplane connect",
			err:  DataplaneError{Err: errors.New("connection refused")},
			want: ExitDataplane,
		},
		{
			name: "execution halt",
			err:  vppcfg.ExecutionError{Command: "create bridge-domain 1", Err: errors.New("rejected")},
			want: ExitDataplane,
		},
		{
			name: "phys missing in dataplane",
			err:  vppcfg.PreconditionError{Check: vppcfg.CheckPhysInDataplane},
			want: ExitPhysNotInVPP,
		},
		{
			name: "phys unaccounted in config",
			err:  vppcfg.PreconditionError{Check: vppcfg.CheckPhysInConfig},
			want: ExitPhysNotInConfig,
		},
		{
			name: "linux-cp unavailable",
			err:  vppcfg.PreconditionError{Check: vppcfg.CheckLinuxCP},
			want: ExitNoLinuxCP,
		},
		{
			name: "prune planning failure",
			err:  vppcfg.PlanningError{Phase: string(directive.PhasePrune), Err: errors.New("render")},
			want: ExitPruneFailed,
		},
		{
			name: "create planning failure",
			err:  vppcfg.PlanningError{Phase: string(directive.PhaseCreate), Err: errors.New("render")},
			want: ExitCreateFailed,
		},
		{
			name: "sync planning failure",
			err:  vppcfg.PlanningError{Phase: string(directive.PhaseSync), Err: errors.New("render")},
			want: ExitSyncFailed,
		},
		{
			name: "forced partial wins over the underlying phase failure",
			err: ForcedPartialError{Err: fmt.Errorf("planning: %w",
				vppcfg.PlanningError{Phase: string(directive.PhaseCreate), Err: errors.New("render")})},
			want: ExitForcedPartial,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}

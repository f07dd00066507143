package journal_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vppcfg "github.com/frobware/go-vppcfg"
	"github.com/frobware/go-vppcfg/directive"
	"github.com/frobware/go-vppcfg/journal"
	"github.com/frobware/go-vppcfg/reconciler"
)

func openJournal(t *testing.T) *journal.Journal {
	t.Helper()
	j, err := journal.Open(filepath.Join(t.TempDir(), "journal.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })
	return j
}

func testPlan() *directive.Plan {
	return &directive.Plan{
		Directives: []directive.Directive{
			{
				Target:   vppcfg.Key{Kind: vppcfg.KindLoopback, Name: "loop0"},
				Phase:    directive.PhaseCreate,
				Op:       directive.OpCreate,
				Commands: []string{"create loopback interface instance 0", "set interface state loop0 up"},
			},
			{
				Target:   vppcfg.Key{Kind: vppcfg.KindBridgeDomain, Name: "bd1"},
				Phase:    directive.PhaseCreate,
				Op:       directive.OpCreate,
				Commands: []string{"create bridge-domain 1"},
			},
		},
		Outcome: directive.OutcomeSucceeded,
	}
}

func TestJournal_RecordAndListRuns(t *testing.T) {
	j := openJournal(t)
	ctx := context.Background()

	first, err := j.Record(ctx, "plan", "/etc/vppcfg/desired.yaml", testPlan(), nil)
	require.NoError(t, err)
	second, err := j.Record(ctx, "apply", "/etc/vppcfg/desired.yaml", testPlan(), nil)
	require.NoError(t, err)
	require.Greater(t, second, first)

	runs, err := j.ListRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	// Newest first.
	assert.Equal(t, second, runs[0].ID)
	assert.Equal(t, "apply", runs[0].Command)
	assert.Equal(t, "succeeded", runs[0].Outcome)
	assert.Equal(t, "plan", runs[1].Command)
	assert.False(t, runs[0].StartedAt.IsZero())
}

func TestJournal_ListRunsHonoursLimit(t *testing.T) {
	j := openJournal(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := j.Record(ctx, "plan", "x.yaml", testPlan(), nil)
		require.NoError(t, err)
	}

	runs, err := j.ListRuns(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, runs, 3)
}

func TestJournal_RunDirectivesPreservePlanOrder(t *testing.T) {
	j := openJournal(t)
	ctx := context.Background()

	id, err := j.Record(ctx, "plan", "x.yaml", testPlan(), nil)
	require.NoError(t, err)

	entries, err := j.RunDirectives(ctx, id)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, 0, entries[0].Seq)
	assert.Equal(t, "create", entries[0].Phase)
	assert.Equal(t, vppcfg.Key{Kind: vppcfg.KindLoopback, Name: "loop0"}, entries[0].Target)
	assert.Equal(t, []string{
		"create loopback interface instance 0",
		"set interface state loop0 up",
	}, entries[0].Commands)
	assert.False(t, entries[0].Executed)

	assert.Equal(t, 1, entries[1].Seq)
	assert.Equal(t, "bd1", entries[1].Target.Name)
}

func TestJournal_RecordsExecutionResults(t *testing.T) {
	j := openJournal(t)
	ctx := context.Background()

	plan := testPlan()
	results := []reconciler.ExecResult{
		{Directive: plan.Directives[0]},
		{Directive: plan.Directives[1], Err: errors.New("bridge domain already exists")},
	}

	id, err := j.Record(ctx, "apply", "x.yaml", plan, results)
	require.NoError(t, err)

	entries, err := j.RunDirectives(ctx, id)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.True(t, entries[0].Executed)
	assert.Empty(t, entries[0].Error)
	assert.True(t, entries[1].Executed)
	assert.Equal(t, "bridge domain already exists", entries[1].Error)
}

func TestJournal_RecordsForcedOutcomeAndFailures(t *testing.T) {
	j := openJournal(t)
	ctx := context.Background()

	plan := testPlan()
	plan.Outcome = directive.OutcomeFailedForced
	plan.Failures = []error{errors.New("create phase failed")}

	id, err := j.Record(ctx, "plan", "x.yaml", plan, nil)
	require.NoError(t, err)

	run, err := j.GetRun(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "failed-forced", run.Outcome)
	require.Len(t, run.Failures, 1)
	assert.Equal(t, "create phase failed", run.Failures[0])
}

func TestJournal_GetRunUnknownID(t *testing.T) {
	j := openJournal(t)
	_, err := j.GetRun(context.Background(), 999)
	assert.Error(t, err)
}

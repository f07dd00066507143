package directive_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vppcfg "github.com/frobware/go-vppcfg"
	"github.com/frobware/go-vppcfg/directive"
)

func testPlan() *directive.Plan {
	p := &directive.Plan{}
	p.Append(directive.Directive{
		Target:   vppcfg.Key{Kind: vppcfg.KindLoopback, Name: "loop0"},
		Phase:    directive.PhaseCreate,
		Op:       directive.OpCreate,
		Commands: []string{"create loopback interface instance 0", "set interface state loop0 up"},
	})
	p.Append(directive.Directive{
		Target:   vppcfg.Key{Kind: vppcfg.KindBridgeDomain, Name: "bd1"},
		Phase:    directive.PhaseCreate,
		Op:       directive.OpCreate,
		Commands: []string{"create bridge-domain 1"},
	})
	return p
}

func TestPlan_CommandsFlattenInOrder(t *testing.T) {
	p := testPlan()
	assert.Equal(t, []string{
		"create loopback interface instance 0",
		"set interface state loop0 up",
		"create bridge-domain 1",
	}, p.Commands())
}

func TestPlan_WriteMarksCompletePlan(t *testing.T) {
	p := testPlan()

	var buf bytes.Buffer
	require.NoError(t, p.Write(&buf, true))
	assert.Equal(t, "create loopback interface instance 0\n"+
		"set interface state loop0 up\n"+
		"create bridge-domain 1\n"+
		"comment { vppcfg: plan complete }\n", buf.String())
}

func TestPlan_WriteMarksPartialPlan(t *testing.T) {
	p := testPlan()
	p.Outcome = directive.OutcomeFailedForced

	var buf bytes.Buffer
	require.NoError(t, p.Write(&buf, true))
	assert.Contains(t, buf.String(), "comment { vppcfg: planning failed, plan is partial }\n")
}

func TestPlan_WriteWithoutMarker(t *testing.T) {
	p := testPlan()

	var buf bytes.Buffer
	require.NoError(t, p.Write(&buf, false))
	assert.NotContains(t, buf.String(), "comment")
}

func TestOutcomeAndOpStrings(t *testing.T) {
	assert.Equal(t, "succeeded", directive.OutcomeSucceeded.String())
	assert.Equal(t, "failed-forced", directive.OutcomeFailedForced.String())
	assert.Equal(t, "failed-aborted", directive.OutcomeFailedAborted.String())
	assert.Equal(t, "create", directive.OpCreate.String())
	assert.Equal(t, "destroy", directive.OpDestroy.String())
	assert.Equal(t, "update", directive.OpUpdate.String())
}

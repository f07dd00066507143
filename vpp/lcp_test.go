package vpp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vppcfg "github.com/frobware/go-vppcfg"
)

func TestParseLCPPairs(t *testing.T) {
	output := `lcp default netns dataplane
lcp lcp-auto-subint off
lcp lcp-sync on
itf-pair: [0] loop0 tap2 lo0 4 type tap netns dataplane
itf-pair: [1] GigabitEthernet3/0/0 tap3 e3-0-0 5 type tap netns dataplane
`
	pairs := parseLCPPairs(output)
	require.Len(t, pairs, 2)

	assert.Equal(t, vppcfg.Key{Kind: vppcfg.KindLCP, Name: "loop0"}, pairs[0].Key)
	assert.Equal(t, "lo0", pairs[0].Attr(vppcfg.AttrHostIf))
	assert.True(t, pairs[0].DependsOn(vppcfg.Key{Kind: vppcfg.KindLoopback, Name: "loop0"}))

	assert.Equal(t, "GigabitEthernet3/0/0", pairs[1].Key.Name)
	assert.Equal(t, "e3-0-0", pairs[1].Attr(vppcfg.AttrHostIf))
	assert.True(t, pairs[1].DependsOn(vppcfg.Key{Kind: vppcfg.KindPhysical, Name: "GigabitEthernet3/0/0"}))
}

func TestParseLCPPairs_NoPairs(t *testing.T) {
	assert.Empty(t, parseLCPPairs("lcp default netns dataplane\n"))
	assert.Empty(t, parseLCPPairs(""))
	// Truncated pair lines are skipped, not mangled.
	assert.Empty(t, parseLCPPairs("itf-pair: [0] loop0\n"))
}

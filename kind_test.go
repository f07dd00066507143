package vppcfg_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vppcfg "github.com/frobware/go-vppcfg"
)

var allKinds = []vppcfg.Kind{
	vppcfg.KindPhysical,
	vppcfg.KindBond,
	vppcfg.KindLoopback,
	vppcfg.KindSubInterface,
	vppcfg.KindVXLANTunnel,
	vppcfg.KindBridgeDomain,
	vppcfg.KindLCP,
}

func TestKind_StringParseRoundTrip(t *testing.T) {
	for _, k := range allKinds {
		parsed, ok := vppcfg.ParseKind(k.String())
		require.True(t, ok, k.String())
		assert.Equal(t, k, parsed)
	}

	_, ok := vppcfg.ParseKind("gadget")
	assert.False(t, ok)
}

func TestKind_TextMarshalling(t *testing.T) {
	text, err := vppcfg.KindBridgeDomain.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "bridge-domain", string(text))

	var k vppcfg.Kind
	require.NoError(t, k.UnmarshalText([]byte("sub-interface")))
	assert.Equal(t, vppcfg.KindSubInterface, k)
	assert.Error(t, k.UnmarshalText([]byte("gadget")))
}

func TestKind_RanksAreStrictlyIncreasing(t *testing.T) {
	for i := 1; i < len(allKinds); i++ {
		assert.Less(t, allKinds[i-1].Rank(), allKinds[i].Rank())
	}
}

func TestKind_OnlyPhysicalIsNotLifecycled(t *testing.T) {
	for _, k := range allKinds {
		assert.Equal(t, k != vppcfg.KindPhysical, k.Lifecycled(), k.String())
	}
}

func TestMutability(t *testing.T) {
	assert.True(t, vppcfg.Mutable(vppcfg.KindLoopback, vppcfg.AttrMTU))
	assert.True(t, vppcfg.Mutable(vppcfg.KindBond, vppcfg.AttrMembers))
	assert.True(t, vppcfg.Mutable(vppcfg.KindBridgeDomain, vppcfg.AttrMembers))
	assert.False(t, vppcfg.Mutable(vppcfg.KindBond, vppcfg.AttrMode))
	assert.False(t, vppcfg.Mutable(vppcfg.KindVXLANTunnel, vppcfg.AttrVNI))
	assert.False(t, vppcfg.Mutable(vppcfg.KindSubInterface, vppcfg.AttrParent))
	assert.False(t, vppcfg.Mutable(vppcfg.KindLCP, vppcfg.AttrHostIf))
}

func TestRequiresRecreate(t *testing.T) {
	assert.False(t, vppcfg.RequiresRecreate(vppcfg.KindLoopback, []string{vppcfg.AttrMTU, vppcfg.AttrState}))
	assert.True(t, vppcfg.RequiresRecreate(vppcfg.KindBond, []string{vppcfg.AttrMTU, vppcfg.AttrMode}))
	assert.True(t, vppcfg.RequiresRecreate(vppcfg.KindVXLANTunnel, []string{vppcfg.AttrVNI}))
}

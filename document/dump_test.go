package document_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frobware/go-vppcfg/document"
)

// A snapshot built by the validator must survive the trip through
// FromSnapshot, Write and Parse back to an equivalent snapshot: dump
// followed by check has to be a fixed point.
func TestFromSnapshot_RoundTrip(t *testing.T) {
	yml := `
interfaces:
  eth0:
    mtu: 9000
    addresses: [ "10.0.0.1/30" ]
    lcp: e0
    sub-interfaces:
      100:
        addresses: [ "10.1.0.1/30" ]
  eth1: {}
loopbacks:
  loop0:
    addresses: [ "10.2.0.1/32" ]
bondethernets:
  BondEthernet0:
    mode: xor
    interfaces: [ eth1 ]
vxlan_tunnels:
  vxlan_tunnel0:
    local: 192.0.2.1
    remote: 192.0.2.2
    vni: 10100
bridgedomains:
  bd1:
    interfaces: [ loop0 ]
`
	snap, errs := validate(t, yml)
	require.Empty(t, errs)

	var buf bytes.Buffer
	require.NoError(t, document.FromSnapshot(snap).Write(&buf))

	reparsed, err := document.Parse(&buf)
	require.NoError(t, err)
	again, errs := document.NewValidator(nil).Validate(reparsed)
	require.Empty(t, errs)

	require.Equal(t, snap.Len(), again.Len())
	for _, want := range snap.Objects() {
		have, ok := again.Get(want.Key)
		require.True(t, ok, "missing %s after round trip", want.Key)
		assert.True(t, want.Equal(have), "%s drifted: %v vs %v", want.Key, want.Attrs, have.Attrs)
	}
}

func TestFromSnapshot_ElidesDefaultEncapsulation(t *testing.T) {
	snap, errs := validate(t, `
interfaces:
  eth0:
    sub-interfaces:
      100: {}
      200:
        encapsulation:
          dot1q: 200
          inner-dot1q: 10
          exact-match: true
`)
	require.Empty(t, errs)

	doc := document.FromSnapshot(snap)
	subs := doc.Interfaces["eth0"].SubInterfaces
	require.Len(t, subs, 2)
	assert.Nil(t, subs[100].Encapsulation, "default dot1q encap is implied by the sub-interface id")
	require.NotNil(t, subs[200].Encapsulation)
	assert.Equal(t, 200, subs[200].Encapsulation.Dot1Q)
	assert.Equal(t, 10, subs[200].Encapsulation.InnerDot1Q)
	assert.True(t, subs[200].Encapsulation.ExactMatch)
}

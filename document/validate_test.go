package document_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vppcfg "github.com/frobware/go-vppcfg"
	"github.com/frobware/go-vppcfg/document"
)

func parse(t *testing.T, yml string) *document.Document {
	t.Helper()
	doc, err := document.Parse(strings.NewReader(yml))
	require.NoError(t, err)
	return doc
}

func validate(t *testing.T, yml string) (*vppcfg.Snapshot, []error) {
	t.Helper()
	return document.NewValidator(nil).Validate(parse(t, yml))
}

func TestParse_RejectsUnknownFields(t *testing.T) {
	_, err := document.Parse(strings.NewReader("interfacez: {}\n"))
	assert.Error(t, err)
}

func TestParse_EmptyDocument(t *testing.T) {
	doc, err := document.Parse(strings.NewReader(""))
	require.NoError(t, err)

	snap, errs := document.NewValidator(nil).Validate(doc)
	require.Empty(t, errs)
	assert.Equal(t, 0, snap.Len())
}

func TestValidate_DefaultsAndCanonicalAttributes(t *testing.T) {
	snap, errs := validate(t, `
interfaces:
  GigabitEthernet3/0/0:
    addresses: [ "2001:DB8::1/64" ]
`)
	require.Empty(t, errs)

	o, ok := snap.Get(vppcfg.Key{Kind: vppcfg.KindPhysical, Name: "GigabitEthernet3/0/0"})
	require.True(t, ok)
	assert.Equal(t, "1500", o.Attr(vppcfg.AttrMTU), "mtu defaults to 1500")
	assert.Equal(t, "up", o.Attr(vppcfg.AttrState), "state defaults to up")
	assert.Equal(t, "2001:db8::1/64", o.Attr(vppcfg.AttrAddresses), "addresses are canonicalized")
}

func TestValidate_SubInterfaceDependsOnParent(t *testing.T) {
	snap, errs := validate(t, `
interfaces:
  eth0:
    sub-interfaces:
      100:
        addresses: [ "10.0.0.1/30" ]
`)
	require.Empty(t, errs)

	sub, ok := snap.Get(vppcfg.Key{Kind: vppcfg.KindSubInterface, Name: "eth0.100"})
	require.True(t, ok)
	assert.True(t, sub.DependsOn(vppcfg.Key{Kind: vppcfg.KindPhysical, Name: "eth0"}))
	assert.Equal(t, "dot1q 100 exact-match", sub.Attr(vppcfg.AttrEncap))
}

func TestValidate_SubInterfaceMTUBoundedByParent(t *testing.T) {
	_, errs := validate(t, `
interfaces:
  eth0:
    mtu: 1500
    sub-interfaces:
      100:
        mtu: 9000
`)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "exceeds parent mtu")
}

func TestValidate_MTURange(t *testing.T) {
	_, errs := validate(t, `
loopbacks:
  loop0:
    mtu: 64
`)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "out of range")
}

func TestValidate_BondMembersMustBePhysicalAndUnique(t *testing.T) {
	_, errs := validate(t, `
interfaces:
  eth0: {}
bondethernets:
  BondEthernet0:
    interfaces: [ eth0 ]
  BondEthernet1:
    interfaces: [ eth0, eth9 ]
`)
	require.Len(t, errs, 2)
	joined := errs[0].Error() + errs[1].Error()
	assert.Contains(t, joined, "already belongs to BondEthernet0")
	assert.Contains(t, joined, "not a configured physical interface")
}

func TestValidate_BondDefaultsToLACPWithL34(t *testing.T) {
	snap, errs := validate(t, `
interfaces:
  eth0: {}
bondethernets:
  BondEthernet0:
    interfaces: [ eth0 ]
`)
	require.Empty(t, errs)

	bond, ok := snap.Get(vppcfg.Key{Kind: vppcfg.KindBond, Name: "BondEthernet0"})
	require.True(t, ok)
	assert.Equal(t, "lacp", bond.Attr(vppcfg.AttrMode))
	assert.Equal(t, "l34", bond.Attr(vppcfg.AttrLoadBal))
	assert.True(t, bond.DependsOn(vppcfg.Key{Kind: vppcfg.KindPhysical, Name: "eth0"}))
}

func TestValidate_LoadBalanceOnlyForHashedModes(t *testing.T) {
	_, errs := validate(t, `
bondethernets:
  BondEthernet0:
    mode: round-robin
    load-balance: l34
`)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "only valid for lacp and xor")
}

func TestValidate_VXLANTunnel(t *testing.T) {
	snap, errs := validate(t, `
vxlan_tunnels:
  vxlan_tunnel0:
    local: 192.0.2.1
    remote: 192.0.2.2
    vni: 10100
`)
	require.Empty(t, errs)

	o, ok := snap.Get(vppcfg.Key{Kind: vppcfg.KindVXLANTunnel, Name: "vxlan_tunnel0"})
	require.True(t, ok)
	assert.Equal(t, "10100", o.Attr(vppcfg.AttrVNI))
}

func TestValidate_VXLANTunnelErrors(t *testing.T) {
	tests := []struct {
		name string
		yml  string
		want string
	}{
		{
			name: "vni out of range",
			yml: `
vxlan_tunnels:
  vxlan_tunnel0:
    local: 192.0.2.1
    remote: 192.0.2.2
    vni: 16777216
`,
			want: "vni",
		},
		{
			name: "mixed address families",
			yml: `
vxlan_tunnels:
  vxlan_tunnel0:
    local: 192.0.2.1
    remote: 2001:db8::1
    vni: 100
`,
			want: "address families differ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, errs := validate(t, tt.yml)
			require.NotEmpty(t, errs)
			assert.Contains(t, errs[0].Error(), tt.want)
		})
	}
}

func TestValidate_BridgeMemberMustResolve(t *testing.T) {
	_, errs := validate(t, `
bridgedomains:
  bd1:
    interfaces: [ nosuch0 ]
`)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "does not resolve")
}

func TestValidate_InterfaceBelongsToAtMostOneBridge(t *testing.T) {
	_, errs := validate(t, `
interfaces:
  eth0: {}
bridgedomains:
  bd1:
    interfaces: [ eth0 ]
  bd2:
    interfaces: [ eth0 ]
`)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "already belongs to bd1")
}

func TestValidate_BridgeDependsOnEachMember(t *testing.T) {
	snap, errs := validate(t, `
interfaces:
  eth0: {}
loopbacks:
  loop0: {}
bridgedomains:
  bd1:
    interfaces: [ eth0, loop0 ]
`)
	require.Empty(t, errs)

	bd, ok := snap.Get(vppcfg.Key{Kind: vppcfg.KindBridgeDomain, Name: "bd1"})
	require.True(t, ok)
	assert.Equal(t, "1", bd.Attr(vppcfg.AttrBridgeID))
	assert.Equal(t, "eth0,loop0", bd.Attr(vppcfg.AttrMembers))
	assert.True(t, bd.DependsOn(vppcfg.Key{Kind: vppcfg.KindPhysical, Name: "eth0"}))
	assert.True(t, bd.DependsOn(vppcfg.Key{Kind: vppcfg.KindLoopback, Name: "loop0"}))
}

func TestValidate_LCPBinding(t *testing.T) {
	snap, errs := validate(t, `
loopbacks:
  loop0:
    lcp: lo0
`)
	require.Empty(t, errs)

	lcp, ok := snap.Get(vppcfg.Key{Kind: vppcfg.KindLCP, Name: "loop0"})
	require.True(t, ok)
	assert.Equal(t, "lo0", lcp.Attr(vppcfg.AttrHostIf))
	assert.True(t, lcp.DependsOn(vppcfg.Key{Kind: vppcfg.KindLoopback, Name: "loop0"}))
}

func TestValidate_LCPHostIfUnique(t *testing.T) {
	_, errs := validate(t, `
loopbacks:
  loop0:
    lcp: lo
  loop1:
    lcp: lo
`)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "already used by loop0")
}

func TestValidate_LCPHostIfNameSyntax(t *testing.T) {
	_, errs := validate(t, `
loopbacks:
  loop0:
    lcp: "this-name-is-way-too-long"
`)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "not a valid Linux interface name")
}

func TestValidate_NamePatterns(t *testing.T) {
	_, errs := validate(t, `
loopbacks:
  lo0: {}
bondethernets:
  bond0: {}
vxlan_tunnels:
  tun0:
    local: 192.0.2.1
    remote: 192.0.2.2
    vni: 1
bridgedomains:
  bridge1: {}
`)
	assert.Len(t, errs, 4, "every misnamed section member is reported")
}

func TestValidate_AllErrorsAreValidationErrors(t *testing.T) {
	_, errs := validate(t, `
loopbacks:
  loop0:
    mtu: 3
    state: sideways
    addresses: [ "not-cidr" ]
`)
	require.Len(t, errs, 3)
	for _, err := range errs {
		var verr vppcfg.ValidationError
		assert.ErrorAs(t, err, &verr)
	}
}

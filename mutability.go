package vppcfg

// Attribute names shared by the document builder, the diff, and the
// directive renderer. Attribute values are canonical strings: sorted
// comma-joined lists for set-valued attributes, decimal for numbers.
const (
	AttrMTU       = "mtu"
	AttrState     = "state"
	AttrAddresses = "addresses"
	AttrMembers   = "members"
	AttrMode      = "mode"
	AttrLoadBal   = "load-balance"
	AttrParent    = "parent"
	AttrEncap     = "encap"
	AttrLocal     = "local"
	AttrRemote    = "remote"
	AttrVNI       = "vni"
	AttrBridgeID  = "id"
	AttrHostIf    = "host-if"
)

// mutableAttrs is the static mutability table: for each kind, the
// attributes that can change in place via an update directive. A change
// to any attribute not listed here forces destroy-then-recreate of the
// object. The table is policy, shared by the diff engine (to partition
// changed objects) and the renderer (to emit update payloads).
var mutableAttrs = map[Kind]map[string]bool{
	KindPhysical: {
		AttrMTU:       true,
		AttrState:     true,
		AttrAddresses: true,
	},
	KindBond: {
		AttrMTU:       true,
		AttrState:     true,
		AttrAddresses: true,
		AttrMembers:   true,
		// mode and load-balance require recreating the bond
	},
	KindLoopback: {
		AttrMTU:       true,
		AttrState:     true,
		AttrAddresses: true,
	},
	KindSubInterface: {
		AttrMTU:       true,
		AttrState:     true,
		AttrAddresses: true,
		// parent and encapsulation are fixed at creation
	},
	KindVXLANTunnel: {
		// every tunnel attribute is baked into the tunnel; any change
		// is a recreate
	},
	KindBridgeDomain: {
		// membership changes are attribute updates, not lifecycle
		// events: members enter and leave a live bridge in place
		AttrMembers: true,
	},
	KindLCP: {
		// the host interface name is fixed at pair creation
	},
}

// Mutable reports whether the named attribute of the given kind can be
// updated in place.
func Mutable(kind Kind, attr string) bool {
	return mutableAttrs[kind][attr]
}

// RequiresRecreate reports whether any of the changed attributes is
// immutable for the kind, forcing destroy-then-recreate.
func RequiresRecreate(kind Kind, changed []string) bool {
	for _, attr := range changed {
		if !Mutable(kind, attr) {
			return true
		}
	}
	return false
}

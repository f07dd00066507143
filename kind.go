package vppcfg

import "fmt"

// Kind identifies the type of a network object. The set is closed:
// behaviour that varies by kind (mutability, rendering, ordering rank)
// lives in kind-indexed tables, not in per-instance logic.
type Kind uint8

const (
	KindUnspecified Kind = iota
	KindPhysical
	KindBond
	KindLoopback
	KindSubInterface
	KindVXLANTunnel
	KindBridgeDomain
	KindLCP
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindPhysical:
		return "physical"
	case KindBond:
		return "bond"
	case KindLoopback:
		return "loopback"
	case KindSubInterface:
		return "sub-interface"
	case KindVXLANTunnel:
		return "vxlan-tunnel"
	case KindBridgeDomain:
		return "bridge-domain"
	case KindLCP:
		return "lcp"
	default:
		return "unspecified"
	}
}

// MarshalText implements encoding.TextMarshaler so Kind serialises as
// its string name.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler so Kind can be
// parsed from its string name.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, ok := ParseKind(string(text))
	if !ok {
		return fmt.Errorf("invalid object kind: %q", string(text))
	}
	*k = parsed
	return nil
}

// ParseKind parses a string into a Kind.
// Returns the kind and true if valid, or KindUnspecified and false if not.
func ParseKind(s string) (Kind, bool) {
	switch s {
	case "physical":
		return KindPhysical, true
	case "bond":
		return KindBond, true
	case "loopback":
		return KindLoopback, true
	case "sub-interface":
		return KindSubInterface, true
	case "vxlan-tunnel":
		return KindVXLANTunnel, true
	case "bridge-domain":
		return KindBridgeDomain, true
	case "lcp":
		return KindLCP, true
	default:
		return KindUnspecified, false
	}
}

// Rank returns the fixed ordering precedence for the kind. Objects with
// no dependency constraint between them are planned in ascending
// (rank, name) order. The ranking is documented policy: changing it
// changes plan output byte-for-byte.
func (k Kind) Rank() int {
	switch k {
	case KindPhysical:
		return 0
	case KindBond:
		return 1
	case KindLoopback:
		return 2
	case KindSubInterface:
		return 3
	case KindVXLANTunnel:
		return 4
	case KindBridgeDomain:
		return 5
	case KindLCP:
		return 6
	default:
		return 7
	}
}

// Lifecycled reports whether objects of this kind are ever created or
// destroyed by the reconciler. Physical interfaces are hardware: they
// are only ever reconfigured, never pruned or created.
func (k Kind) Lifecycled() bool {
	return k != KindPhysical
}

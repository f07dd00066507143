package directive

import (
	"fmt"
	"strings"

	vppcfg "github.com/frobware/go-vppcfg"
)

// The renderer turns an object's attributes into its VPP CLI payload.
// It is driven by the same attribute names as the mutability table: the
// diff decides which attributes changed, the renderer decides what CLI
// that change costs.

// RenderCreate renders the full creation payload for an object: the
// create command followed by the attribute setup lines, so a freshly
// created object carries its entire desired configuration in one
// directive.
func RenderCreate(o vppcfg.Object) ([]string, error) {
	var cmds []string
	switch o.Key.Kind {
	case vppcfg.KindLoopback:
		n, err := instanceOf(o.Key.Name, "loop")
		if err != nil {
			return nil, err
		}
		cmds = append(cmds, fmt.Sprintf("create loopback interface instance %d", n))

	case vppcfg.KindBond:
		n, err := instanceOf(o.Key.Name, "BondEthernet")
		if err != nil {
			return nil, err
		}
		mode := o.Attr(vppcfg.AttrMode)
		if mode == "" {
			return nil, fmt.Errorf("bond %s has no mode", o.Key.Name)
		}
		cmd := fmt.Sprintf("create bond mode %s", mode)
		if lb := o.Attr(vppcfg.AttrLoadBal); lb != "" {
			cmd += " load-balance " + lb
		}
		cmds = append(cmds, fmt.Sprintf("%s id %d", cmd, n))
		for _, member := range splitSet(o.Attr(vppcfg.AttrMembers)) {
			cmds = append(cmds, fmt.Sprintf("bond add %s %s", o.Key.Name, member))
		}

	case vppcfg.KindSubInterface:
		parent := o.Attr(vppcfg.AttrParent)
		if parent == "" {
			return nil, fmt.Errorf("sub-interface %s has no parent", o.Key.Name)
		}
		subID, ok := strings.CutPrefix(o.Key.Name, parent+".")
		if !ok {
			return nil, fmt.Errorf("sub-interface %s is not named under parent %s", o.Key.Name, parent)
		}
		cmd := fmt.Sprintf("create sub-interfaces %s %s", parent, subID)
		if encap := o.Attr(vppcfg.AttrEncap); encap != "" && encap != "dot1q "+subID+" exact-match" {
			cmd += " " + encap
		}
		cmds = append(cmds, cmd)

	case vppcfg.KindVXLANTunnel:
		n, err := instanceOf(o.Key.Name, "vxlan_tunnel")
		if err != nil {
			return nil, err
		}
		local, remote, vni := o.Attr(vppcfg.AttrLocal), o.Attr(vppcfg.AttrRemote), o.Attr(vppcfg.AttrVNI)
		if local == "" || remote == "" || vni == "" {
			return nil, fmt.Errorf("vxlan tunnel %s is missing local/remote/vni", o.Key.Name)
		}
		cmds = append(cmds, fmt.Sprintf("create vxlan tunnel src %s dst %s vni %s instance %d",
			local, remote, vni, n))

	case vppcfg.KindBridgeDomain:
		id := o.Attr(vppcfg.AttrBridgeID)
		if id == "" {
			return nil, fmt.Errorf("bridge domain %s has no id", o.Key.Name)
		}
		cmds = append(cmds, fmt.Sprintf("create bridge-domain %s", id))
		for _, member := range splitSet(o.Attr(vppcfg.AttrMembers)) {
			cmds = append(cmds, fmt.Sprintf("set interface l2 bridge %s %s", member, id))
		}
		// bridge domains carry no interface attributes; members done
		return cmds, nil

	case vppcfg.KindLCP:
		host := o.Attr(vppcfg.AttrHostIf)
		if host == "" {
			return nil, fmt.Errorf("lcp for %s has no host interface name", o.Key.Name)
		}
		return []string{fmt.Sprintf("lcp create %s host-if %s", o.Key.Name, host)}, nil

	default:
		return nil, fmt.Errorf("cannot create objects of kind %s", o.Key.Kind)
	}

	cmds = append(cmds, renderInterfaceAttrs(o)...)
	return cmds, nil
}

// RenderDestroy renders the destruction payload for an object, using
// its live attributes where VPP requires them to identify the object.
func RenderDestroy(o vppcfg.Object) ([]string, error) {
	switch o.Key.Kind {
	case vppcfg.KindLoopback:
		return []string{fmt.Sprintf("delete loopback interface intfc %s", o.Key.Name)}, nil
	case vppcfg.KindBond:
		return []string{fmt.Sprintf("delete bond %s", o.Key.Name)}, nil
	case vppcfg.KindSubInterface:
		return []string{fmt.Sprintf("delete sub-interface %s", o.Key.Name)}, nil
	case vppcfg.KindVXLANTunnel:
		n, err := instanceOf(o.Key.Name, "vxlan_tunnel")
		if err != nil {
			return nil, err
		}
		return []string{fmt.Sprintf("create vxlan tunnel src %s dst %s vni %s instance %d del",
			o.Attr(vppcfg.AttrLocal), o.Attr(vppcfg.AttrRemote), o.Attr(vppcfg.AttrVNI), n)}, nil
	case vppcfg.KindBridgeDomain:
		id := o.Attr(vppcfg.AttrBridgeID)
		if id == "" {
			return nil, fmt.Errorf("bridge domain %s has no id", o.Key.Name)
		}
		var cmds []string
		// Return members to L3 before tearing down the domain.
		for _, member := range splitSet(o.Attr(vppcfg.AttrMembers)) {
			cmds = append(cmds, fmt.Sprintf("set interface l3 %s", member))
		}
		return append(cmds, fmt.Sprintf("create bridge-domain %s del", id)), nil
	case vppcfg.KindLCP:
		return []string{fmt.Sprintf("lcp delete %s", o.Key.Name)}, nil
	default:
		return nil, fmt.Errorf("cannot destroy objects of kind %s", o.Key.Kind)
	}
}

// RenderUpdate renders the in-place update payload for the changed
// attributes of an object present in both snapshots. Every attribute in
// changed must be mutable for the kind; an immutable attribute here
// means the diff misclassified the change.
func RenderUpdate(live, desired vppcfg.Object, changed []string) ([]string, error) {
	var cmds []string
	name := desired.Key.Name
	for _, attr := range changed {
		if !vppcfg.Mutable(desired.Key.Kind, attr) {
			return nil, fmt.Errorf("attribute %s of %s is not updatable in place", attr, desired.Key)
		}
		switch attr {
		case vppcfg.AttrMTU:
			cmds = append(cmds, fmt.Sprintf("set interface mtu %s %s", desired.Attr(vppcfg.AttrMTU), name))
		case vppcfg.AttrState:
			cmds = append(cmds, fmt.Sprintf("set interface state %s %s", name, desired.Attr(vppcfg.AttrState)))
		case vppcfg.AttrAddresses:
			have := splitSet(live.Attr(vppcfg.AttrAddresses))
			want := splitSet(desired.Attr(vppcfg.AttrAddresses))
			for _, addr := range setDiff(have, want) {
				cmds = append(cmds, fmt.Sprintf("set interface ip address del %s %s", name, addr))
			}
			for _, addr := range setDiff(want, have) {
				cmds = append(cmds, fmt.Sprintf("set interface ip address %s %s", name, addr))
			}
		case vppcfg.AttrMembers:
			have := splitSet(live.Attr(vppcfg.AttrMembers))
			want := splitSet(desired.Attr(vppcfg.AttrMembers))
			switch desired.Key.Kind {
			case vppcfg.KindBond:
				for _, member := range setDiff(have, want) {
					cmds = append(cmds, fmt.Sprintf("bond del %s", member))
				}
				for _, member := range setDiff(want, have) {
					cmds = append(cmds, fmt.Sprintf("bond add %s %s", name, member))
				}
			case vppcfg.KindBridgeDomain:
				id := desired.Attr(vppcfg.AttrBridgeID)
				for _, member := range setDiff(have, want) {
					cmds = append(cmds, fmt.Sprintf("set interface l3 %s", member))
				}
				for _, member := range setDiff(want, have) {
					cmds = append(cmds, fmt.Sprintf("set interface l2 bridge %s %s", member, id))
				}
			default:
				return nil, fmt.Errorf("kind %s has no members attribute", desired.Key.Kind)
			}
		default:
			return nil, fmt.Errorf("no update rendering for attribute %s of %s", attr, desired.Key)
		}
	}
	return cmds, nil
}

// renderInterfaceAttrs renders the common interface attribute lines
// (mtu, addresses, admin state) appended to creation payloads.
func renderInterfaceAttrs(o vppcfg.Object) []string {
	var cmds []string
	name := o.Key.Name
	if mtu := o.Attr(vppcfg.AttrMTU); mtu != "" {
		cmds = append(cmds, fmt.Sprintf("set interface mtu %s %s", mtu, name))
	}
	for _, addr := range splitSet(o.Attr(vppcfg.AttrAddresses)) {
		cmds = append(cmds, fmt.Sprintf("set interface ip address %s %s", name, addr))
	}
	if state := o.Attr(vppcfg.AttrState); state != "" {
		cmds = append(cmds, fmt.Sprintf("set interface state %s %s", name, state))
	}
	return cmds
}

// instanceOf extracts the numeric instance from names like loop0,
// BondEthernet1, vxlan_tunnel12.
func instanceOf(name, prefix string) (int, error) {
	rest, ok := strings.CutPrefix(name, prefix)
	if !ok || rest == "" {
		return 0, fmt.Errorf("name %q does not match %s<instance>", name, prefix)
	}
	n := 0
	for _, r := range rest {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("name %q does not match %s<instance>", name, prefix)
		}
		n = n*10 + int(r-'0')
	}
	return n, nil
}

// splitSet splits a canonical comma-joined set attribute.
func splitSet(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

// setDiff returns the elements of a not present in b, preserving a's
// order.
func setDiff(a, b []string) []string {
	in := make(map[string]bool, len(b))
	for _, x := range b {
		in[x] = true
	}
	var out []string
	for _, x := range a {
		if !in[x] {
			out = append(out, x)
		}
	}
	return out
}

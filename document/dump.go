package document

import (
	"strconv"
	"strings"

	vppcfg "github.com/frobware/go-vppcfg"
)

// FromSnapshot renders a live snapshot back into document form, the
// inverse of what the validator builds. Used by the dump command for
// state inspection; the reconciler never consumes its output.
func FromSnapshot(s *vppcfg.Snapshot) *Document {
	doc := &Document{}

	lcps := make(map[string]string)
	for _, o := range s.Kind(vppcfg.KindLCP) {
		lcps[o.Key.Name] = o.Attr(vppcfg.AttrHostIf)
	}

	for _, o := range s.Kind(vppcfg.KindPhysical) {
		if doc.Interfaces == nil {
			doc.Interfaces = make(map[string]Interface)
		}
		doc.Interfaces[o.Key.Name] = Interface{
			MTU:       atoi(o.Attr(vppcfg.AttrMTU)),
			State:     o.Attr(vppcfg.AttrState),
			Addresses: splitSet(o.Attr(vppcfg.AttrAddresses)),
			LCP:       lcps[o.Key.Name],
		}
	}

	for _, o := range s.Kind(vppcfg.KindSubInterface) {
		parent := o.Attr(vppcfg.AttrParent)
		intf, ok := doc.Interfaces[parent]
		if !ok {
			continue
		}
		idStr, ok := strings.CutPrefix(o.Key.Name, parent+".")
		if !ok {
			continue
		}
		id := atoi(idStr)
		if intf.SubInterfaces == nil {
			intf.SubInterfaces = make(map[int]SubInterface)
		}
		intf.SubInterfaces[id] = SubInterface{
			MTU:           atoi(o.Attr(vppcfg.AttrMTU)),
			State:         o.Attr(vppcfg.AttrState),
			Addresses:     splitSet(o.Attr(vppcfg.AttrAddresses)),
			LCP:           lcps[o.Key.Name],
			Encapsulation: parseEncap(o.Attr(vppcfg.AttrEncap), id),
		}
		doc.Interfaces[parent] = intf
	}

	for _, o := range s.Kind(vppcfg.KindLoopback) {
		if doc.Loopbacks == nil {
			doc.Loopbacks = make(map[string]Loopback)
		}
		doc.Loopbacks[o.Key.Name] = Loopback{
			MTU:       atoi(o.Attr(vppcfg.AttrMTU)),
			State:     o.Attr(vppcfg.AttrState),
			Addresses: splitSet(o.Attr(vppcfg.AttrAddresses)),
			LCP:       lcps[o.Key.Name],
		}
	}

	for _, o := range s.Kind(vppcfg.KindBond) {
		if doc.BondEthernets == nil {
			doc.BondEthernets = make(map[string]Bond)
		}
		doc.BondEthernets[o.Key.Name] = Bond{
			Mode:        o.Attr(vppcfg.AttrMode),
			LoadBalance: o.Attr(vppcfg.AttrLoadBal),
			Interfaces:  splitSet(o.Attr(vppcfg.AttrMembers)),
			MTU:         atoi(o.Attr(vppcfg.AttrMTU)),
			State:       o.Attr(vppcfg.AttrState),
			Addresses:   splitSet(o.Attr(vppcfg.AttrAddresses)),
			LCP:         lcps[o.Key.Name],
		}
	}

	for _, o := range s.Kind(vppcfg.KindVXLANTunnel) {
		if doc.VXLANTunnels == nil {
			doc.VXLANTunnels = make(map[string]VXLANTunnel)
		}
		doc.VXLANTunnels[o.Key.Name] = VXLANTunnel{
			Local:  o.Attr(vppcfg.AttrLocal),
			Remote: o.Attr(vppcfg.AttrRemote),
			VNI:    atoi(o.Attr(vppcfg.AttrVNI)),
		}
	}

	for _, o := range s.Kind(vppcfg.KindBridgeDomain) {
		if doc.BridgeDomains == nil {
			doc.BridgeDomains = make(map[string]BridgeDomain)
		}
		doc.BridgeDomains[o.Key.Name] = BridgeDomain{
			Interfaces: splitSet(o.Attr(vppcfg.AttrMembers)),
		}
	}

	return doc
}

func splitSet(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

// parseEncap turns the canonical encapsulation attribute back into
// document form, eliding the default dot1q <id> exact-match.
func parseEncap(encap string, subID int) *Encapsulation {
	if encap == "" || encap == "dot1q "+strconv.Itoa(subID)+" exact-match" {
		return nil
	}
	e := &Encapsulation{}
	fields := strings.Fields(encap)
	for i := 0; i < len(fields); i++ {
		switch fields[i] {
		case "dot1q":
			if i+1 < len(fields) {
				i++
				e.Dot1Q = atoi(fields[i])
			}
		case "dot1ad":
			if i+1 < len(fields) {
				i++
				e.Dot1AD = atoi(fields[i])
			}
		case "inner-dot1q":
			if i+1 < len(fields) {
				i++
				e.InnerDot1Q = atoi(fields[i])
			}
		case "exact-match":
			e.ExactMatch = true
		}
	}
	return e
}

package document

import (
	"fmt"
	"log/slog"
	"net/netip"
	"regexp"
	"slices"
	"strconv"
	"strings"

	vppcfg "github.com/frobware/go-vppcfg"
	"github.com/frobware/go-vppcfg/compute"
)

var (
	loopbackName = regexp.MustCompile(`^loop\d+$`)
	bondName     = regexp.MustCompile(`^BondEthernet\d+$`)
	vxlanName    = regexp.MustCompile(`^vxlan_tunnel\d+$`)
	bridgeName   = regexp.MustCompile(`^bd\d+$`)
	hostIfName   = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_-]{0,14}$`)
)

const (
	minMTU = 128
	maxMTU = 9216
	maxVNI = 1<<24 - 1
)

// Validator performs the semantic checks on a parsed document and
// builds the desired snapshot the reconciler consumes. All failures
// are reported together so an operator fixes the document in one pass.
type Validator struct {
	logger *slog.Logger
}

// NewValidator creates a validator.
func NewValidator(logger *slog.Logger) *Validator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Validator{logger: logger.With("component", "validator")}
}

// Validate checks the document and, when it is clean, returns the
// desired snapshot. On failure the snapshot is nil and every violation
// is returned as a vppcfg.ValidationError.
func (v *Validator) Validate(doc *Document) (*vppcfg.Snapshot, []error) {
	b := &builder{doc: doc}
	b.interfaces()
	b.loopbacks()
	b.bonds()
	b.tunnels()
	b.bridges()

	if len(b.errs) > 0 {
		v.logger.Debug("document invalid", "errors", len(b.errs))
		return nil, b.errs
	}

	snap, err := vppcfg.NewSnapshot(b.objects)
	if err != nil {
		return nil, []error{vppcfg.ValidationError{Msg: err.Error()}}
	}
	// The checks above make a cycle impossible (sub-interfaces hang off
	// interfaces, bridges off members), but the reconciler's contract
	// is an acyclic snapshot, so verify rather than assume.
	if err := compute.VerifyAcyclic(snap); err != nil {
		return nil, []error{vppcfg.ValidationError{Msg: err.Error()}}
	}

	v.logger.Debug("document valid", "objects", snap.Len())
	return snap, nil
}

// builder accumulates objects and validation errors while walking the
// document.
type builder struct {
	doc     *Document
	objects []vppcfg.Object
	errs    []error

	// cross-object bookkeeping
	bridgeMember map[string]string // member name -> bridge name
	bondMember   map[string]string // member name -> bond name
	hostIfs      map[string]string // host-if name -> owning interface
}

func (b *builder) errf(path, format string, args ...any) {
	b.errs = append(b.errs, vppcfg.ValidationError{Path: path, Msg: fmt.Sprintf(format, args...)})
}

func (b *builder) add(o vppcfg.Object) {
	b.objects = append(b.objects, o)
}

// interfaceNames returns every name that can carry an IP or be a
// member: physicals, sub-interfaces, loopbacks, bonds, tunnels.
func (b *builder) interfaceKey(name string) (vppcfg.Key, bool) {
	if _, ok := b.doc.Interfaces[name]; ok {
		return vppcfg.Key{Kind: vppcfg.KindPhysical, Name: name}, true
	}
	if parent, _, ok := strings.Cut(name, "."); ok {
		if intf, have := b.doc.Interfaces[parent]; have {
			for id := range intf.SubInterfaces {
				if name == fmt.Sprintf("%s.%d", parent, id) {
					return vppcfg.Key{Kind: vppcfg.KindSubInterface, Name: name}, true
				}
			}
		}
		return vppcfg.Key{}, false
	}
	if _, ok := b.doc.Loopbacks[name]; ok {
		return vppcfg.Key{Kind: vppcfg.KindLoopback, Name: name}, true
	}
	if _, ok := b.doc.BondEthernets[name]; ok {
		return vppcfg.Key{Kind: vppcfg.KindBond, Name: name}, true
	}
	if _, ok := b.doc.VXLANTunnels[name]; ok {
		return vppcfg.Key{Kind: vppcfg.KindVXLANTunnel, Name: name}, true
	}
	return vppcfg.Key{}, false
}

func (b *builder) interfaces() {
	for _, name := range sortedKeys(b.doc.Interfaces) {
		intf := b.doc.Interfaces[name]
		path := "interfaces." + name

		if name == "" || strings.Contains(name, ".") ||
			loopbackName.MatchString(name) || bondName.MatchString(name) ||
			vxlanName.MatchString(name) || bridgeName.MatchString(name) {
			b.errf(path, "not a valid physical interface name")
			continue
		}

		attrs := map[string]string{
			vppcfg.AttrMTU:   b.mtu(path, intf.MTU),
			vppcfg.AttrState: b.state(path, intf.State),
		}
		if s := b.addresses(path, intf.Addresses); s != "" {
			attrs[vppcfg.AttrAddresses] = s
		}
		phys := vppcfg.NewObject(vppcfg.KindPhysical, name, attrs)
		b.add(phys)
		b.lcp(path, phys.Key, intf.LCP)

		for _, id := range sortedIntKeys(intf.SubInterfaces) {
			b.subInterface(phys, id, intf.SubInterfaces[id])
		}
	}
}

func (b *builder) subInterface(parent vppcfg.Object, id int, sub SubInterface) {
	name := fmt.Sprintf("%s.%d", parent.Key.Name, id)
	path := fmt.Sprintf("interfaces.%s.sub-interfaces.%d", parent.Key.Name, id)

	if id < 1 || id > 1<<32-1 {
		b.errf(path, "sub-interface id out of range")
		return
	}

	attrs := map[string]string{
		vppcfg.AttrParent: parent.Key.Name,
		vppcfg.AttrEncap:  b.encap(path, id, sub.Encapsulation),
		vppcfg.AttrMTU:    b.mtu(path, sub.MTU),
		vppcfg.AttrState:  b.state(path, sub.State),
	}
	if s := b.addresses(path, sub.Addresses); s != "" {
		attrs[vppcfg.AttrAddresses] = s
	}

	if subMTU, parentMTU := atoi(attrs[vppcfg.AttrMTU]), atoi(parent.Attr(vppcfg.AttrMTU)); subMTU > parentMTU {
		b.errf(path, "mtu %d exceeds parent mtu %d", subMTU, parentMTU)
	}

	o := vppcfg.NewObject(vppcfg.KindSubInterface, name, attrs, parent.Key)
	b.add(o)
	b.lcp(path, o.Key, sub.LCP)
}

func (b *builder) loopbacks() {
	for _, name := range sortedKeys(b.doc.Loopbacks) {
		lo := b.doc.Loopbacks[name]
		path := "loopbacks." + name

		if !loopbackName.MatchString(name) {
			b.errf(path, "loopback name must be loop<instance>")
			continue
		}

		attrs := map[string]string{
			vppcfg.AttrMTU:   b.mtu(path, lo.MTU),
			vppcfg.AttrState: b.state(path, lo.State),
		}
		if s := b.addresses(path, lo.Addresses); s != "" {
			attrs[vppcfg.AttrAddresses] = s
		}
		o := vppcfg.NewObject(vppcfg.KindLoopback, name, attrs)
		b.add(o)
		b.lcp(path, o.Key, lo.LCP)
	}
}

func (b *builder) bonds() {
	for _, name := range sortedKeys(b.doc.BondEthernets) {
		bond := b.doc.BondEthernets[name]
		path := "bondethernets." + name

		if !bondName.MatchString(name) {
			b.errf(path, "bond name must be BondEthernet<instance>")
			continue
		}

		mode := bond.Mode
		if mode == "" {
			mode = "lacp"
		}
		switch mode {
		case "round-robin", "active-backup", "broadcast":
			if bond.LoadBalance != "" {
				b.errf(path+".load-balance", "load-balance is only valid for lacp and xor modes")
			}
		case "xor", "lacp":
		default:
			b.errf(path+".mode", "unknown bond mode %q", mode)
		}
		lb := bond.LoadBalance
		if lb == "" && (mode == "lacp" || mode == "xor") {
			lb = "l34"
		}
		if lb != "" && lb != "l2" && lb != "l34" && lb != "l23" {
			b.errf(path+".load-balance", "unknown load-balance %q", lb)
		}

		var members []string
		var deps []vppcfg.Key
		for _, member := range bond.Interfaces {
			if _, ok := b.doc.Interfaces[member]; !ok {
				b.errf(path+".interfaces", "member %q is not a configured physical interface", member)
				continue
			}
			if owner, taken := b.memberOfBond(member); taken {
				b.errf(path+".interfaces", "member %q already belongs to %s", member, owner)
				continue
			}
			b.claimBondMember(member, name)
			members = append(members, member)
			deps = append(deps, vppcfg.Key{Kind: vppcfg.KindPhysical, Name: member})
		}

		attrs := map[string]string{
			vppcfg.AttrMode:  mode,
			vppcfg.AttrMTU:   b.mtu(path, bond.MTU),
			vppcfg.AttrState: b.state(path, bond.State),
		}
		if lb != "" {
			attrs[vppcfg.AttrLoadBal] = lb
		}
		if s := canonSet(members); s != "" {
			attrs[vppcfg.AttrMembers] = s
		}
		if s := b.addresses(path, bond.Addresses); s != "" {
			attrs[vppcfg.AttrAddresses] = s
		}
		o := vppcfg.NewObject(vppcfg.KindBond, name, attrs, deps...)
		b.add(o)
		b.lcp(path, o.Key, bond.LCP)
	}
}

func (b *builder) tunnels() {
	for _, name := range sortedKeys(b.doc.VXLANTunnels) {
		t := b.doc.VXLANTunnels[name]
		path := "vxlan_tunnels." + name

		if !vxlanName.MatchString(name) {
			b.errf(path, "tunnel name must be vxlan_tunnel<instance>")
			continue
		}

		local, err := netip.ParseAddr(t.Local)
		if err != nil {
			b.errf(path+".local", "invalid address %q", t.Local)
		}
		remote, err := netip.ParseAddr(t.Remote)
		if err != nil {
			b.errf(path+".remote", "invalid address %q", t.Remote)
		}
		if local.IsValid() && remote.IsValid() && local.Is4() != remote.Is4() {
			b.errf(path, "local and remote address families differ")
		}
		if t.VNI < 1 || t.VNI > maxVNI {
			b.errf(path+".vni", "vni %d out of range 1..%d", t.VNI, maxVNI)
		}

		b.add(vppcfg.NewObject(vppcfg.KindVXLANTunnel, name, map[string]string{
			vppcfg.AttrLocal:  local.String(),
			vppcfg.AttrRemote: remote.String(),
			vppcfg.AttrVNI:    strconv.Itoa(t.VNI),
		}))
	}
}

func (b *builder) bridges() {
	for _, name := range sortedKeys(b.doc.BridgeDomains) {
		bd := b.doc.BridgeDomains[name]
		path := "bridgedomains." + name

		if !bridgeName.MatchString(name) {
			b.errf(path, "bridge domain name must be bd<id>")
			continue
		}
		id := strings.TrimPrefix(name, "bd")

		var members []string
		var deps []vppcfg.Key
		for _, member := range bd.Interfaces {
			key, ok := b.interfaceKey(member)
			if !ok {
				b.errf(path+".interfaces", "member %q does not resolve to a configured interface", member)
				continue
			}
			if owner, taken := b.memberOfBridge(member); taken {
				b.errf(path+".interfaces", "member %q already belongs to %s", member, owner)
				continue
			}
			b.claimBridgeMember(member, name)
			members = append(members, member)
			deps = append(deps, key)
		}

		attrs := map[string]string{vppcfg.AttrBridgeID: id}
		if s := canonSet(members); s != "" {
			attrs[vppcfg.AttrMembers] = s
		}
		b.add(vppcfg.NewObject(vppcfg.KindBridgeDomain, name, attrs, deps...))
	}
}

// lcp records a control-plane binding for the given interface, if one
// is declared.
func (b *builder) lcp(path string, owner vppcfg.Key, hostIf string) {
	if hostIf == "" {
		return
	}
	if !hostIfName.MatchString(hostIf) {
		b.errf(path+".lcp", "host interface name %q is not a valid Linux interface name", hostIf)
		return
	}
	if b.hostIfs == nil {
		b.hostIfs = make(map[string]string)
	}
	if other, dup := b.hostIfs[hostIf]; dup {
		b.errf(path+".lcp", "host interface name %q already used by %s", hostIf, other)
		return
	}
	b.hostIfs[hostIf] = owner.Name
	b.add(vppcfg.NewObject(vppcfg.KindLCP, owner.Name, map[string]string{
		vppcfg.AttrHostIf: hostIf,
	}, owner))
}

func (b *builder) mtu(path string, mtu int) string {
	if mtu == 0 {
		return "1500"
	}
	if mtu < minMTU || mtu > maxMTU {
		b.errf(path+".mtu", "mtu %d out of range %d..%d", mtu, minMTU, maxMTU)
	}
	return strconv.Itoa(mtu)
}

func (b *builder) state(path, state string) string {
	switch state {
	case "":
		return "up"
	case "up", "down":
		return state
	default:
		b.errf(path+".state", "state must be up or down, not %q", state)
		return state
	}
}

func (b *builder) addresses(path string, addrs []string) string {
	var canon []string
	for _, a := range addrs {
		p, err := netip.ParsePrefix(a)
		if err != nil {
			b.errf(path+".addresses", "invalid address %q: must be CIDR notation", a)
			continue
		}
		canon = append(canon, p.String())
	}
	if dup := firstDuplicate(canon); dup != "" {
		b.errf(path+".addresses", "duplicate address %s", dup)
	}
	return canonSet(canon)
}

func (b *builder) encap(path string, subID int, e *Encapsulation) string {
	if e == nil {
		if subID > 4094 {
			b.errf(path, "sub-interface id %d needs an explicit encapsulation (default dot1q is limited to 4094)", subID)
		}
		return fmt.Sprintf("dot1q %d exact-match", subID)
	}
	if (e.Dot1Q == 0) == (e.Dot1AD == 0) {
		b.errf(path+".encapsulation", "exactly one of dot1q or dot1ad is required")
		return ""
	}
	outer, tag := e.Dot1Q, "dot1q"
	if e.Dot1AD != 0 {
		outer, tag = e.Dot1AD, "dot1ad"
	}
	if outer < 1 || outer > 4094 {
		b.errf(path+".encapsulation", "outer vlan %d out of range 1..4094", outer)
	}
	s := fmt.Sprintf("%s %d", tag, outer)
	if e.InnerDot1Q != 0 {
		if e.InnerDot1Q < 1 || e.InnerDot1Q > 4094 {
			b.errf(path+".encapsulation", "inner vlan %d out of range 1..4094", e.InnerDot1Q)
		}
		s += fmt.Sprintf(" inner-dot1q %d", e.InnerDot1Q)
	}
	if e.ExactMatch {
		s += " exact-match"
	}
	return s
}

func (b *builder) memberOfBridge(name string) (string, bool) {
	owner, ok := b.bridgeMember[name]
	return owner, ok
}

func (b *builder) claimBridgeMember(name, bridge string) {
	if b.bridgeMember == nil {
		b.bridgeMember = make(map[string]string)
	}
	b.bridgeMember[name] = bridge
}

func (b *builder) memberOfBond(name string) (string, bool) {
	owner, ok := b.bondMember[name]
	return owner, ok
}

func (b *builder) claimBondMember(name, bond string) {
	if b.bondMember == nil {
		b.bondMember = make(map[string]string)
	}
	b.bondMember[name] = bond
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func sortedIntKeys[V any](m map[int]V) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// canonSet is the canonical encoding for set-valued attributes: sorted,
// comma-joined.
func canonSet(items []string) string {
	s := slices.Clone(items)
	slices.Sort(s)
	return strings.Join(s, ",")
}

func firstDuplicate(items []string) string {
	seen := make(map[string]bool, len(items))
	for _, x := range items {
		if seen[x] {
			return x
		}
		seen[x] = true
	}
	return ""
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

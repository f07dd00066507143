package vpp

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"go.fd.io/govpp"
	"go.fd.io/govpp/api"
	"go.fd.io/govpp/binapi/bond"
	interfaces "go.fd.io/govpp/binapi/interface"
	"go.fd.io/govpp/binapi/interface_types"
	"go.fd.io/govpp/binapi/ip"
	"go.fd.io/govpp/binapi/l2"
	"go.fd.io/govpp/binapi/vlib"
	"go.fd.io/govpp/binapi/vxlan"
	"go.fd.io/govpp/core"

	vppcfg "github.com/frobware/go-vppcfg"
)

const allInterfaces = interface_types.InterfaceIndex(^uint32(0))

// Dataplane is the govpp-backed client. It reads live state through the
// binary API dump services and executes directives through cli_inband,
// which is exactly the form the plan is rendered in.
type Dataplane struct {
	conn   *core.Connection
	ch     api.Channel
	logger *slog.Logger
}

var _ Client = (*Dataplane)(nil)

// Connect dials the VPP API socket.
func Connect(socket string, logger *slog.Logger) (*Dataplane, error) {
	if logger == nil {
		logger = slog.Default()
	}
	conn, err := govpp.Connect(socket)
	if err != nil {
		return nil, fmt.Errorf("connect to VPP at %s: %w", socket, err)
	}
	ch, err := conn.NewAPIChannel()
	if err != nil {
		conn.Disconnect()
		return nil, fmt.Errorf("open VPP API channel: %w", err)
	}
	return &Dataplane{
		conn:   conn,
		ch:     ch,
		logger: logger.With("component", "vpp"),
	}, nil
}

// Close tears down the API channel and connection.
func (d *Dataplane) Close() error {
	d.ch.Close()
	d.conn.Disconnect()
	return nil
}

// Exec runs one CLI command via cli_inband. VPP reports some failures
// through the reply text with a zero return value, so the reply is
// inspected as well.
func (d *Dataplane) Exec(ctx context.Context, command string) error {
	reply := &vlib.CliInbandReply{}
	if err := d.ch.SendRequest(&vlib.CliInband{Cmd: command}).ReceiveReply(reply); err != nil {
		return fmt.Errorf("cli_inband %q: %w", command, err)
	}
	if out := strings.TrimSpace(reply.Reply); out != "" {
		if strings.Contains(out, "unknown input") || strings.Contains(out, "error:") {
			return fmt.Errorf("cli_inband %q: %s", command, out)
		}
		d.logger.Debug("cli reply", "command", command, "reply", out)
	}
	return nil
}

// Capability probes a dataplane feature. linux-cp is detected by
// issuing its show command: a dataplane without the plugin answers
// "unknown input".
func (d *Dataplane) Capability(ctx context.Context, name string) (bool, error) {
	switch name {
	case CapabilityLinuxCP:
		reply := &vlib.CliInbandReply{}
		if err := d.ch.SendRequest(&vlib.CliInband{Cmd: "show lcp"}).ReceiveReply(reply); err != nil {
			return false, nil
		}
		return !strings.Contains(reply.Reply, "unknown input"), nil
	default:
		return false, fmt.Errorf("unknown capability %q", name)
	}
}

// ReadLive assembles the live snapshot from the dump services:
// sw_interface_dump classified into physicals, bonds, loopbacks,
// sub-interfaces and vxlan tunnels, plus bridge_domain_dump and the lcp
// pair listing.
func (d *Dataplane) ReadLive(ctx context.Context) (*vppcfg.Snapshot, error) {
	details, err := d.dumpInterfaces()
	if err != nil {
		return nil, err
	}

	names := make(map[interface_types.InterfaceIndex]string, len(details))
	for _, det := range details {
		names[det.SwIfIndex] = det.InterfaceName
	}

	addrs, err := d.dumpAddresses(details)
	if err != nil {
		return nil, err
	}

	tunnels, err := d.dumpVXLANTunnels()
	if err != nil {
		return nil, err
	}

	var objects []vppcfg.Object
	for _, det := range details {
		o, ok, err := d.classify(det, names, addrs, tunnels)
		if err != nil {
			return nil, err
		}
		if ok {
			objects = append(objects, o)
		}
	}

	bonds, err := d.dumpBonds(objects)
	if err != nil {
		return nil, err
	}
	objects = bonds

	bridges, err := d.dumpBridgeDomains(names)
	if err != nil {
		return nil, err
	}
	objects = append(objects, bridges...)

	lcps, err := d.readLCPPairs(ctx)
	if err != nil {
		return nil, err
	}
	objects = append(objects, lcps...)

	snap, err := vppcfg.NewSnapshot(objects)
	if err != nil {
		return nil, fmt.Errorf("assemble live snapshot: %w", err)
	}
	d.logger.Debug("live state read", "objects", snap.Len())
	return snap, nil
}

func (d *Dataplane) dumpInterfaces() ([]*interfaces.SwInterfaceDetails, error) {
	req := d.ch.SendMultiRequest(&interfaces.SwInterfaceDump{SwIfIndex: allInterfaces})
	var out []*interfaces.SwInterfaceDetails
	for {
		det := &interfaces.SwInterfaceDetails{}
		stop, err := req.ReceiveReply(det)
		if err != nil {
			return nil, fmt.Errorf("sw_interface_dump: %w", err)
		}
		if stop {
			return out, nil
		}
		out = append(out, det)
	}
}

func (d *Dataplane) dumpAddresses(details []*interfaces.SwInterfaceDetails) (map[interface_types.InterfaceIndex][]string, error) {
	out := make(map[interface_types.InterfaceIndex][]string)
	for _, det := range details {
		for _, v6 := range []bool{false, true} {
			req := d.ch.SendMultiRequest(&ip.IPAddressDump{SwIfIndex: det.SwIfIndex, IsIPv6: v6})
			for {
				addr := &ip.IPAddressDetails{}
				stop, err := req.ReceiveReply(addr)
				if err != nil {
					return nil, fmt.Errorf("ip_address_dump %s: %w", det.InterfaceName, err)
				}
				if stop {
					break
				}
				out[det.SwIfIndex] = append(out[det.SwIfIndex], addr.Prefix.String())
			}
		}
	}
	return out, nil
}

func (d *Dataplane) dumpVXLANTunnels() (map[interface_types.InterfaceIndex]*vxlan.VxlanTunnelDetails, error) {
	req := d.ch.SendMultiRequest(&vxlan.VxlanTunnelDump{SwIfIndex: allInterfaces})
	out := make(map[interface_types.InterfaceIndex]*vxlan.VxlanTunnelDetails)
	for {
		det := &vxlan.VxlanTunnelDetails{}
		stop, err := req.ReceiveReply(det)
		if err != nil {
			return nil, fmt.Errorf("vxlan_tunnel_dump: %w", err)
		}
		if stop {
			return out, nil
		}
		out[interface_types.InterfaceIndex(det.SwIfIndex)] = det
	}
}

// classify turns one interface dump record into an object, or reports
// it as handled elsewhere (bond attributes come from the bond dump).
func (d *Dataplane) classify(
	det *interfaces.SwInterfaceDetails,
	names map[interface_types.InterfaceIndex]string,
	addrs map[interface_types.InterfaceIndex][]string,
	tunnels map[interface_types.InterfaceIndex]*vxlan.VxlanTunnelDetails,
) (vppcfg.Object, bool, error) {
	name := det.InterfaceName
	attrs := map[string]string{
		vppcfg.AttrMTU:   strconv.Itoa(interfaceMTU(det)),
		vppcfg.AttrState: adminState(det.Flags),
	}
	if a := canonAddrs(addrs[det.SwIfIndex]); a != "" {
		attrs[vppcfg.AttrAddresses] = a
	}

	switch {
	case det.Type == interface_types.IF_API_TYPE_SUB && det.SubID != 0:
		parent, ok := names[interface_types.InterfaceIndex(det.SupSwIfIndex)]
		if !ok {
			return vppcfg.Object{}, false, fmt.Errorf("sub-interface %s has unknown parent index %d", name, det.SupSwIfIndex)
		}
		attrs[vppcfg.AttrParent] = parent
		attrs[vppcfg.AttrEncap] = subEncap(det)
		parentKind := vppcfg.KindPhysical
		if strings.HasPrefix(parent, "BondEthernet") {
			parentKind = vppcfg.KindBond
		}
		return vppcfg.NewObject(vppcfg.KindSubInterface, name, attrs,
			vppcfg.Key{Kind: parentKind, Name: parent}), true, nil

	case strings.HasPrefix(name, "loop"):
		return vppcfg.NewObject(vppcfg.KindLoopback, name, attrs), true, nil

	case strings.HasPrefix(name, "BondEthernet"):
		// mode, load-balance and members are filled in by dumpBonds
		return vppcfg.NewObject(vppcfg.KindBond, name, attrs), true, nil

	case strings.HasPrefix(name, "vxlan_tunnel"):
		t, ok := tunnels[det.SwIfIndex]
		if !ok {
			return vppcfg.Object{}, false, fmt.Errorf("vxlan interface %s missing from tunnel dump", name)
		}
		return vppcfg.NewObject(vppcfg.KindVXLANTunnel, name, map[string]string{
			vppcfg.AttrLocal:  t.SrcAddress.String(),
			vppcfg.AttrRemote: t.DstAddress.String(),
			vppcfg.AttrVNI:    strconv.FormatUint(uint64(t.Vni), 10),
		}), true, nil

	case strings.HasPrefix(name, "local"):
		// local0, the internal sink interface
		return vppcfg.Object{}, false, nil

	default:
		return vppcfg.NewObject(vppcfg.KindPhysical, name, attrs), true, nil
	}
}

// dumpBonds overlays bond mode, load-balance and membership onto the
// bond objects already classified from the interface dump.
func (d *Dataplane) dumpBonds(objects []vppcfg.Object) ([]vppcfg.Object, error) {
	req := d.ch.SendMultiRequest(&bond.SwInterfaceBondDump{})
	type bondInfo struct {
		mode, lb string
		idx      interface_types.InterfaceIndex
	}
	info := make(map[string]bondInfo)
	for {
		det := &bond.SwInterfaceBondDetails{}
		stop, err := req.ReceiveReply(det)
		if err != nil {
			return nil, fmt.Errorf("sw_interface_bond_dump: %w", err)
		}
		if stop {
			break
		}
		info[det.InterfaceName] = bondInfo{
			mode: bondMode(det.Mode),
			lb:   bondLoadBalance(det.Lb),
			idx:  det.SwIfIndex,
		}
	}

	out := objects[:0]
	for _, o := range objects {
		if o.Key.Kind != vppcfg.KindBond {
			out = append(out, o)
			continue
		}
		bi, ok := info[o.Key.Name]
		if !ok {
			return nil, fmt.Errorf("bond %s missing from bond dump", o.Key.Name)
		}
		members, err := d.dumpBondMembers(bi.idx)
		if err != nil {
			return nil, err
		}

		attrs := map[string]string{
			vppcfg.AttrMode: bi.mode,
		}
		if bi.lb != "" {
			attrs[vppcfg.AttrLoadBal] = bi.lb
		}
		if s := canonAddrs(members); s != "" {
			attrs[vppcfg.AttrMembers] = s
		}
		for _, k := range []string{vppcfg.AttrMTU, vppcfg.AttrState, vppcfg.AttrAddresses} {
			if v := o.Attr(k); v != "" {
				attrs[k] = v
			}
		}
		deps := make([]vppcfg.Key, len(members))
		for i, m := range members {
			deps[i] = vppcfg.Key{Kind: vppcfg.KindPhysical, Name: m}
		}
		out = append(out, vppcfg.NewObject(vppcfg.KindBond, o.Key.Name, attrs, deps...))
	}
	return out, nil
}

func (d *Dataplane) dumpBondMembers(bondIdx interface_types.InterfaceIndex) ([]string, error) {
	req := d.ch.SendMultiRequest(&bond.SwMemberInterfaceDump{SwIfIndex: bondIdx})
	var members []string
	for {
		det := &bond.SwMemberInterfaceDetails{}
		stop, err := req.ReceiveReply(det)
		if err != nil {
			return nil, fmt.Errorf("sw_member_interface_dump: %w", err)
		}
		if stop {
			return members, nil
		}
		members = append(members, det.InterfaceName)
	}
}

func (d *Dataplane) dumpBridgeDomains(names map[interface_types.InterfaceIndex]string) ([]vppcfg.Object, error) {
	req := d.ch.SendMultiRequest(&l2.BridgeDomainDump{BdID: ^uint32(0)})
	var out []vppcfg.Object
	for {
		det := &l2.BridgeDomainDetails{}
		stop, err := req.ReceiveReply(det)
		if err != nil {
			return nil, fmt.Errorf("bridge_domain_dump: %w", err)
		}
		if stop {
			return out, nil
		}
		name := "bd" + strconv.FormatUint(uint64(det.BdID), 10)
		var members []string
		var deps []vppcfg.Key
		for _, sw := range det.SwIfDetails {
			member, ok := names[sw.SwIfIndex]
			if !ok {
				continue
			}
			members = append(members, member)
			deps = append(deps, memberKey(member))
		}
		attrs := map[string]string{vppcfg.AttrBridgeID: strconv.FormatUint(uint64(det.BdID), 10)}
		if s := canonAddrs(members); s != "" {
			attrs[vppcfg.AttrMembers] = s
		}
		out = append(out, vppcfg.NewObject(vppcfg.KindBridgeDomain, name, attrs, deps...))
	}
}

// readLCPPairs lists linux-cp bindings. The lcp pair get API is paged
// and gated behind the plugin, so the CLI listing is used instead and
// parsed; a dataplane without the plugin simply has no pairs.
func (d *Dataplane) readLCPPairs(ctx context.Context) ([]vppcfg.Object, error) {
	reply := &vlib.CliInbandReply{}
	if err := d.ch.SendRequest(&vlib.CliInband{Cmd: "show lcp"}).ReceiveReply(reply); err != nil {
		return nil, nil
	}
	if strings.Contains(reply.Reply, "unknown input") {
		return nil, nil
	}
	return parseLCPPairs(reply.Reply), nil
}

func interfaceMTU(det *interfaces.SwInterfaceDetails) int {
	if len(det.Mtu) > 0 && det.Mtu[0] != 0 {
		return int(det.Mtu[0])
	}
	return int(det.LinkMtu)
}

func adminState(flags interface_types.IfStatusFlags) string {
	if flags&interface_types.IF_STATUS_API_FLAG_ADMIN_UP != 0 {
		return "up"
	}
	return "down"
}

func subEncap(det *interfaces.SwInterfaceDetails) string {
	tag := "dot1q"
	if det.SubIfFlags&interface_types.SUB_IF_API_FLAG_DOT1AD != 0 {
		tag = "dot1ad"
	}
	s := fmt.Sprintf("%s %d", tag, det.SubOuterVlanID)
	if det.SubNumberOfTags > 1 {
		s += fmt.Sprintf(" inner-dot1q %d", det.SubInnerVlanID)
	}
	if det.SubIfFlags&interface_types.SUB_IF_API_FLAG_EXACT_MATCH != 0 {
		s += " exact-match"
	}
	return s
}

func bondMode(m bond.BondMode) string {
	switch m {
	case bond.BOND_API_MODE_ROUND_ROBIN:
		return "round-robin"
	case bond.BOND_API_MODE_ACTIVE_BACKUP:
		return "active-backup"
	case bond.BOND_API_MODE_XOR:
		return "xor"
	case bond.BOND_API_MODE_BROADCAST:
		return "broadcast"
	case bond.BOND_API_MODE_LACP:
		return "lacp"
	default:
		return "unknown"
	}
}

func bondLoadBalance(lb bond.BondLbAlgo) string {
	switch lb {
	case bond.BOND_API_LB_ALGO_L2:
		return "l2"
	case bond.BOND_API_LB_ALGO_L34:
		return "l34"
	case bond.BOND_API_LB_ALGO_L23:
		return "l23"
	default:
		return ""
	}
}

// memberKey infers the object kind of a bridge member from its name.
func memberKey(name string) vppcfg.Key {
	switch {
	case strings.Contains(name, "."):
		return vppcfg.Key{Kind: vppcfg.KindSubInterface, Name: name}
	case strings.HasPrefix(name, "loop"):
		return vppcfg.Key{Kind: vppcfg.KindLoopback, Name: name}
	case strings.HasPrefix(name, "BondEthernet"):
		return vppcfg.Key{Kind: vppcfg.KindBond, Name: name}
	case strings.HasPrefix(name, "vxlan_tunnel"):
		return vppcfg.Key{Kind: vppcfg.KindVXLANTunnel, Name: name}
	default:
		return vppcfg.Key{Kind: vppcfg.KindPhysical, Name: name}
	}
}

// canonAddrs is the canonical set encoding: sorted, comma-joined.
func canonAddrs(items []string) string {
	s := slices.Clone(items)
	slices.Sort(s)
	return strings.Join(s, ",")
}

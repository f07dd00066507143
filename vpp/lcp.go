package vpp

import (
	"strings"

	vppcfg "github.com/frobware/go-vppcfg"
)

// parseLCPPairs extracts linux-cp bindings from "show lcp" output.
// Pair lines look like:
//
//	itf-pair: [0] loop0 tap2 lo0 4 type tap netns dataplane
//
// where the fields after the index are the dataplane interface, the
// host tap, and the Linux host interface name. Header lines (default
// netns, sync flags) carry no pairs and are skipped.
func parseLCPPairs(output string) []vppcfg.Object {
	var out []vppcfg.Object
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "itf-pair:") {
			continue
		}
		fields := strings.Fields(line)
		// "itf-pair:" "[N]" <interface> <tap> <host-if> ...
		if len(fields) < 5 {
			continue
		}
		name, hostIf := fields[2], fields[4]
		out = append(out, vppcfg.NewObject(vppcfg.KindLCP, name, map[string]string{
			vppcfg.AttrHostIf: hostIf,
		}, memberKey(name)))
	}
	return out
}

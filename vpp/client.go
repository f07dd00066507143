// Package vpp provides the dataplane client: reading live state into a
// snapshot, probing capabilities, and executing plan directives. Two
// implementations exist: a govpp-backed client speaking the VPP binary
// API over the API socket, and a mock that synthesizes a dataplane from
// a document for dependency-free planning.
package vpp

import (
	"context"

	vppcfg "github.com/frobware/go-vppcfg"
)

// CapabilityLinuxCP names the linux-cp plugin capability, required by
// control-plane bindings.
const CapabilityLinuxCP = "linux-cp"

// DefaultAPISocket is where VPP exposes its binary API by default.
const DefaultAPISocket = "/run/vpp/api.sock"

// Client is the dataplane contract the rest of the tool builds on.
// Calls are opaque and synchronous; timeouts and retries are the
// client's own concern, never the reconciler's.
type Client interface {
	// ReadLive reads the dataplane's current object set.
	ReadLive(ctx context.Context) (*vppcfg.Snapshot, error)
	// Capability reports whether the dataplane advertises the named
	// feature.
	Capability(ctx context.Context, name string) (bool, error)
	// Exec issues one CLI command. A non-nil error means the dataplane
	// rejected it.
	Exec(ctx context.Context, command string) error
	// Close releases the connection.
	Close() error
}

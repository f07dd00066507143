package vpp

import (
	"context"
	"fmt"

	vppcfg "github.com/frobware/go-vppcfg"
	"github.com/frobware/go-vppcfg/document"
)

// Mock is a synthetic dataplane for planning without a live VPP
// (the --novpp mode). Its live state contains only the document's
// physical interfaces, carrying factory-default attributes, so a plan
// against it emits the full configuration. Executed commands are
// recorded, which also makes Mock the test double for apply.
type Mock struct {
	snapshot *vppcfg.Snapshot

	// Commands records every Exec call in order.
	Commands []string
	// FailOn, when non-empty, makes Exec reject that exact command.
	FailOn string
}

var _ Client = (*Mock)(nil)

// NewMock builds a mock dataplane from the document's physical
// inventory.
func NewMock(doc *document.Document) (*Mock, error) {
	var objects []vppcfg.Object
	for name := range doc.Interfaces {
		objects = append(objects, vppcfg.NewObject(vppcfg.KindPhysical, name, map[string]string{
			vppcfg.AttrMTU:   "1500",
			vppcfg.AttrState: "down",
		}))
	}
	snap, err := vppcfg.NewSnapshot(objects)
	if err != nil {
		return nil, err
	}
	return &Mock{snapshot: snap}, nil
}

// NewMockSnapshot wraps an arbitrary snapshot as a mock dataplane.
func NewMockSnapshot(s *vppcfg.Snapshot) *Mock {
	return &Mock{snapshot: s}
}

// ReadLive returns the synthetic live state.
func (m *Mock) ReadLive(ctx context.Context) (*vppcfg.Snapshot, error) {
	return m.snapshot, nil
}

// Capability reports every capability as available: the mock never
// constrains planning.
func (m *Mock) Capability(ctx context.Context, name string) (bool, error) {
	return true, nil
}

// Exec records the command, failing it if FailOn matches.
func (m *Mock) Exec(ctx context.Context, command string) error {
	m.Commands = append(m.Commands, command)
	if m.FailOn != "" && command == m.FailOn {
		return fmt.Errorf("mock dataplane rejected %q", command)
	}
	return nil
}

// Close is a no-op.
func (m *Mock) Close() error { return nil }

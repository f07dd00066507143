package vppcfg

import (
	"fmt"
	"slices"
)

// Snapshot is an immutable point-in-time collection of network objects,
// representing either desired state (from a validated document) or live
// state (read from the dataplane). Snapshots are single-use: built at
// the start of a reconciliation run, consulted, then discarded.
type Snapshot struct {
	objects map[Key]Object
}

// NewSnapshot builds a snapshot from the given objects. Identity
// (kind, name) must be unique; a duplicate is a construction error.
func NewSnapshot(objects []Object) (*Snapshot, error) {
	m := make(map[Key]Object, len(objects))
	for _, o := range objects {
		if _, dup := m[o.Key]; dup {
			return nil, fmt.Errorf("duplicate object identity %s", o.Key)
		}
		m[o.Key] = o
	}
	return &Snapshot{objects: m}, nil
}

// EmptySnapshot returns a snapshot containing no objects.
func EmptySnapshot() *Snapshot {
	return &Snapshot{objects: map[Key]Object{}}
}

// Get returns the object with the given identity.
func (s *Snapshot) Get(k Key) (Object, bool) {
	o, ok := s.objects[k]
	return o, ok
}

// Has reports whether the identity exists in the snapshot.
func (s *Snapshot) Has(k Key) bool {
	_, ok := s.objects[k]
	return ok
}

// Len returns the number of objects.
func (s *Snapshot) Len() int {
	return len(s.objects)
}

// Objects returns all objects in (kind rank, name) order. Iteration
// over snapshot contents always goes through this method; map order
// must never leak into plan output.
func (s *Snapshot) Objects() []Object {
	out := make([]Object, 0, len(s.objects))
	for _, o := range s.objects {
		out = append(out, o)
	}
	slices.SortFunc(out, func(a, b Object) int { return a.Key.Compare(b.Key) })
	return out
}

// Kind returns the objects of one kind, in name order.
func (s *Snapshot) Kind(k Kind) []Object {
	var out []Object
	for _, o := range s.objects {
		if o.Key.Kind == k {
			out = append(out, o)
		}
	}
	slices.SortFunc(out, func(a, b Object) int { return a.Key.Compare(b.Key) })
	return out
}

// Keys returns every identity in (kind rank, name) order.
func (s *Snapshot) Keys() []Key {
	out := make([]Key, 0, len(s.objects))
	for k := range s.objects {
		out = append(out, k)
	}
	slices.SortFunc(out, Key.Compare)
	return out
}

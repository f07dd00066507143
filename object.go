package vppcfg

import (
	"fmt"
	"maps"
	"slices"
)

// Key is the identity of a network object: unique within a Snapshot.
type Key struct {
	Kind Kind   `json:"kind"`
	Name string `json:"name"`
}

// String returns the identity as "kind/name".
func (k Key) String() string {
	return k.Kind.String() + "/" + k.Name
}

// Compare orders keys by (kind rank, name). This is the tie-break order
// used everywhere a deterministic sequence is required.
func (k Key) Compare(o Key) int {
	if r := k.Kind.Rank() - o.Kind.Rank(); r != 0 {
		return r
	}
	switch {
	case k.Name < o.Name:
		return -1
	case k.Name > o.Name:
		return 1
	default:
		return 0
	}
}

// Object is one configurable network object. Attributes are canonical
// strings so that comparison is total: every attribute participates in
// equality, and two objects with equal attribute maps are
// indistinguishable to the diff.
//
// Objects are immutable after construction and owned by exactly one
// Snapshot. Deps lists the identities this object requires to exist
// before it can exist.
type Object struct {
	Key   Key               `json:"key"`
	Attrs map[string]string `json:"attrs"`
	Deps  []Key             `json:"deps,omitempty"`
}

// NewObject constructs an object, copying the attribute map and the
// dependency list so the caller cannot mutate them afterwards.
// Dependencies are stored in (kind rank, name) order.
func NewObject(kind Kind, name string, attrs map[string]string, deps ...Key) Object {
	a := make(map[string]string, len(attrs))
	maps.Copy(a, attrs)
	d := slices.Clone(deps)
	slices.SortFunc(d, Key.Compare)
	return Object{
		Key:   Key{Kind: kind, Name: name},
		Attrs: a,
		Deps:  d,
	}
}

// Attr returns the named attribute, or "" when absent.
func (o Object) Attr(name string) string {
	return o.Attrs[name]
}

// Equal reports whether both objects have the same identity and
// attribute map. Dependencies are derived from attributes and do not
// participate.
func (o Object) Equal(other Object) bool {
	return o.Key == other.Key && maps.Equal(o.Attrs, other.Attrs)
}

// ChangedAttrs returns the sorted names of attributes whose values
// differ between o and other. Attributes present on only one side count
// as changed.
func (o Object) ChangedAttrs(other Object) []string {
	var changed []string
	for name, v := range o.Attrs {
		if ov, ok := other.Attrs[name]; !ok || ov != v {
			changed = append(changed, name)
		}
	}
	for name := range other.Attrs {
		if _, ok := o.Attrs[name]; !ok {
			changed = append(changed, name)
		}
	}
	slices.Sort(changed)
	return changed
}

// DependsOn reports whether o lists k among its dependencies.
func (o Object) DependsOn(k Key) bool {
	return slices.Contains(o.Deps, k)
}

// String returns a short human-readable description.
func (o Object) String() string {
	return fmt.Sprintf("%s (%d attrs, %d deps)", o.Key, len(o.Attrs), len(o.Deps))
}

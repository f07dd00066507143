// Package compute contains pure functions for the reconciliation core.
// Functions in this package perform no I/O - they transform snapshots
// into partitions and orderings that the reconciler turns into a plan.
package compute

import (
	"slices"

	vppcfg "github.com/frobware/go-vppcfg"
)

// Change pairs the live and desired versions of an object whose
// attributes differ, with the sorted names of the attributes that
// changed.
type Change struct {
	Live    vppcfg.Object
	Desired vppcfg.Object
	Attrs   []string
}

// Diff partitions the union of identities in live and desired:
//
//	Added     - in desired, not in live
//	Removed   - in live, not in desired
//	Updatable - in both, differing only in mutable attributes
//	Recreate  - in both, differing in at least one immutable attribute
//	Unchanged - in both, attribute-identical
//
// Every identity lands in exactly one partition. Slices are ordered by
// (kind rank, name) so the diff is deterministic.
type Diff struct {
	Added     []vppcfg.Object
	Removed   []vppcfg.Object
	Updatable []Change
	Recreate  []Change
	Unchanged []vppcfg.Object
}

// ComputeDiff compares two snapshots. Pure: neither snapshot is
// mutated, and identical inputs always produce identical output.
func ComputeDiff(live, desired *vppcfg.Snapshot) Diff {
	var d Diff

	for _, want := range desired.Objects() {
		have, ok := live.Get(want.Key)
		if !ok {
			d.Added = append(d.Added, want)
			continue
		}
		changed := have.ChangedAttrs(want)
		if len(changed) == 0 {
			d.Unchanged = append(d.Unchanged, want)
			continue
		}
		ch := Change{Live: have, Desired: want, Attrs: changed}
		if vppcfg.RequiresRecreate(want.Key.Kind, changed) {
			d.Recreate = append(d.Recreate, ch)
		} else {
			d.Updatable = append(d.Updatable, ch)
		}
	}

	for _, have := range live.Objects() {
		if !desired.Has(have.Key) {
			d.Removed = append(d.Removed, have)
		}
	}

	return d
}

// Cascade promotes live dependents of destroyed objects into the
// recreate set. The diff classifies each identity in isolation, so an
// object scheduled for destruction can still carry live dependents the
// diff left untouched; destroying it underneath them would sever their
// attachment without any directive to restore it. Each such dependent
// is destroyed alongside its dependency in prune and rebuilt from its
// desired form in create. Promotion is transitive, and the recreate set
// stays in (kind rank, name) order.
func Cascade(d Diff, live *vppcfg.Snapshot) Diff {
	doomed := make(map[vppcfg.Key]bool)
	var queue []vppcfg.Key
	for _, o := range d.Removed {
		doomed[o.Key] = true
		queue = append(queue, o.Key)
	}
	for _, c := range d.Recreate {
		doomed[c.Live.Key] = true
		queue = append(queue, c.Live.Key)
	}

	dependents := make(map[vppcfg.Key][]vppcfg.Key)
	for _, o := range live.Objects() {
		for _, dep := range o.Deps {
			dependents[dep] = append(dependents[dep], o.Key)
		}
	}

	// Every promoted key survives in desired: a live dependent absent
	// from desired is already in Removed and therefore doomed.
	promoted := make(map[vppcfg.Key]bool)
	for len(queue) > 0 {
		k := queue[0]
		queue = queue[1:]
		for _, dk := range dependents[k] {
			if doomed[dk] {
				continue
			}
			doomed[dk] = true
			promoted[dk] = true
			queue = append(queue, dk)
		}
	}
	if len(promoted) == 0 {
		return d
	}

	out := Diff{
		Added:    d.Added,
		Removed:  d.Removed,
		Recreate: slices.Clone(d.Recreate),
	}
	for _, c := range d.Updatable {
		if promoted[c.Live.Key] {
			out.Recreate = append(out.Recreate, c)
		} else {
			out.Updatable = append(out.Updatable, c)
		}
	}
	for _, o := range d.Unchanged {
		if !promoted[o.Key] {
			out.Unchanged = append(out.Unchanged, o)
			continue
		}
		have, _ := live.Get(o.Key)
		out.Recreate = append(out.Recreate, Change{Live: have, Desired: o})
	}
	slices.SortFunc(out.Recreate, func(a, b Change) int {
		return a.Desired.Key.Compare(b.Desired.Key)
	})
	return out
}

// OfKind filters a slice of objects down to one kind, preserving order.
func OfKind(objs []vppcfg.Object, kind vppcfg.Kind) []vppcfg.Object {
	var out []vppcfg.Object
	for _, o := range objs {
		if o.Key.Kind == kind {
			out = append(out, o)
		}
	}
	return out
}

// DesiredOf extracts the desired halves of a change set, preserving
// order.
func DesiredOf(changes []Change) []vppcfg.Object {
	out := make([]vppcfg.Object, len(changes))
	for i, c := range changes {
		out[i] = c.Desired
	}
	return out
}

// LiveOf extracts the live halves of a change set, preserving order.
func LiveOf(changes []Change) []vppcfg.Object {
	out := make([]vppcfg.Object, len(changes))
	for i, c := range changes {
		out[i] = c.Live
	}
	return out
}

// SortByRank sorts objects in place by (kind rank, name).
func SortByRank(objs []vppcfg.Object) {
	slices.SortFunc(objs, func(a, b vppcfg.Object) int { return a.Key.Compare(b.Key) })
}

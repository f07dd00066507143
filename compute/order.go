package compute

import (
	"slices"

	vppcfg "github.com/frobware/go-vppcfg"
)

// Direction selects which way dependency edges constrain the order.
type Direction int

const (
	// Forward orders dependencies before dependents (create/update).
	Forward Direction = iota
	// Reverse orders dependents before dependencies (destroy).
	Reverse
)

// String returns the string representation of the direction.
func (d Direction) String() string {
	if d == Reverse {
		return "reverse"
	}
	return "forward"
}

// Order produces a topologically valid processing order for the working
// set. Dependency edges pointing at objects outside the set are treated
// as already satisfied and ignored.
//
// Ties between unconstrained objects break by ascending
// (kind rank, name). This is implemented with an explicitly sorted
// ready list: substituting map iteration order here would destroy plan
// determinism.
//
// Returns a CycleError if the restricted graph contains a cycle.
func Order(set []vppcfg.Object, dir Direction) ([]vppcfg.Object, error) {
	members := make(map[vppcfg.Key]vppcfg.Object, len(set))
	for _, o := range set {
		members[o.Key] = o
	}

	// blocks[k] lists the keys whose scheduling is blocked until k is
	// scheduled. In forward direction an object is blocked by its
	// dependencies; in reverse, by its dependents.
	blocked := make(map[vppcfg.Key]int, len(set))
	blocks := make(map[vppcfg.Key][]vppcfg.Key, len(set))
	for _, o := range set {
		for _, dep := range o.Deps {
			if _, in := members[dep]; !in {
				continue
			}
			switch dir {
			case Forward:
				blocked[o.Key]++
				blocks[dep] = append(blocks[dep], o.Key)
			case Reverse:
				blocked[dep]++
				blocks[o.Key] = append(blocks[o.Key], dep)
			}
		}
	}

	ready := make([]vppcfg.Key, 0, len(set))
	for _, o := range set {
		if blocked[o.Key] == 0 {
			ready = append(ready, o.Key)
		}
	}
	slices.SortFunc(ready, vppcfg.Key.Compare)

	out := make([]vppcfg.Object, 0, len(set))
	for len(ready) > 0 {
		next := ready[0]
		ready = ready[1:]
		out = append(out, members[next])

		var unblocked []vppcfg.Key
		for _, k := range blocks[next] {
			blocked[k]--
			if blocked[k] == 0 {
				unblocked = append(unblocked, k)
			}
		}
		if len(unblocked) > 0 {
			ready = append(ready, unblocked...)
			slices.SortFunc(ready, vppcfg.Key.Compare)
		}
	}

	if len(out) != len(set) {
		// Whatever could not be scheduled is in a cycle or depends on
		// one. Report the stuck set in deterministic order.
		var stuck []vppcfg.Key
		for k, n := range blocked {
			if n > 0 {
				stuck = append(stuck, k)
			}
		}
		slices.SortFunc(stuck, vppcfg.Key.Compare)
		return nil, vppcfg.CycleError{Cycle: stuck}
	}

	return out, nil
}

// VerifyAcyclic checks the dependency graph over the full snapshot.
// The validator rejects cyclic desired documents before a snapshot ever
// reaches the reconciler; this re-verification guards against live-state
// anomalies and validator gaps.
func VerifyAcyclic(s *vppcfg.Snapshot) error {
	_, err := Order(s.Objects(), Forward)
	return err
}

// Package vppcfg defines the network object model shared by every layer
// of the tool: object kinds and identities, immutable snapshots of
// desired or live dataplane state, the static per-kind mutability table,
// and the error taxonomy.
//
// The packages build on each other in one direction:
//
//	vppcfg (this package) - domain vocabulary, no dependencies
//	compute               - pure diff and ordering functions
//	directive             - reified plan entries and CLI rendering
//	reconciler            - prune/create/sync orchestration and apply
//	document              - YAML document parsing, validation, dumping
//	vpp                   - dataplane client (govpp-backed and mock)
//	journal               - SQLite run journal
package vppcfg

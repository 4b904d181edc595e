// Package sdst resolves sequence-dependent setup times: the minutes
// required to prepare a room for surgery B immediately after surgery
// A, depending on both types. The resolver is a thin, read-only view
// over an entity.SDSTMatrix snapshot and is safe for concurrent reads
// (spec.md §4.1).
package sdst

import "github.com/schedcu/surgical-scheduler/internal/entity"

// Resolver looks up setup minutes for a (from, to) transition,
// defaulting missing entries to a configured value (spec.md default
// 0).
type Resolver struct {
	matrix         entity.SDSTMatrix
	defaultMinutes int
}

// New builds a Resolver over matrix. defaultMinutes is returned for
// any transition not present in the matrix.
func New(matrix entity.SDSTMatrix, defaultMinutes int) *Resolver {
	return &Resolver{matrix: matrix, defaultMinutes: defaultMinutes}
}

// Minutes returns the setup minutes for the transition from -> to.
// from may be entity.NoneSurgeryTypeID to request the initial-setup
// row used when a room's sequence is empty.
func (r *Resolver) Minutes(from, to entity.SurgeryTypeID) int {
	if v, ok := r.matrix.Lookup(from, to); ok {
		return v
	}
	return r.defaultMinutes
}

// InitialSetup returns the setup minutes for placing to as the first
// surgery of a room's sequence.
func (r *Resolver) InitialSetup(to entity.SurgeryTypeID) int {
	return r.Minutes(entity.NoneSurgeryTypeID, to)
}

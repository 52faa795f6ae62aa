// Package dataflow provides a small generic fixed-point solver over basic
// blocks, reused by the reaching-definitions and dominance analyzers (and,
// within the register allocator, by live-variable analysis). Termination
// relies on each client's transfer function being monotone over a lattice
// of finite height; the solver itself just loops to a fixed point.
package dataflow

import "tacopt/src/cfg"

// Fragment is the opaque, analysis-specific per-block state a client
// maintains. Implementations should be pointer types so ComputeFragment can
// mutate them in place.
type Fragment interface{}

// Analyzer is implemented by a client of the iterative solver.
type Analyzer interface {
	// InitFragment returns the initial fragment value for b.
	InitFragment(b *cfg.Block) Fragment

	// ComputeFragment recomputes the fragment for b in place, consulting
	// frags for the current fragments of b's predecessors or successors (the
	// client decides which), and reports whether the fragment changed.
	ComputeFragment(frags map[cfg.BlockID]Fragment, b *cfg.Block) bool
}

// Solve runs a to a fixed point over g's blocks in ascending id order and
// returns the final fragment for every block.
func Solve(g *cfg.Graph, a Analyzer) map[cfg.BlockID]Fragment {
	order := g.Order()

	frags := make(map[cfg.BlockID]Fragment, len(order))
	for _, b := range order {
		frags[b.ID] = a.InitFragment(b)
	}

	for changed := true; changed; {
		changed = false
		for _, b := range order {
			if a.ComputeFragment(frags, b) {
				changed = true
			}
		}
	}

	return frags
}

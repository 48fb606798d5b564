// Package l4histogram owns Layer 4 (Histogram) of the descriptor model.
//
// A Channel keeps the gradient pairs of the current temporal stride and a
// ring of the last NtCells averaged integral stacks, and answers patch
// queries over that window.
//
// Dependency rule: L4 may depend on L1-L3, but never on L5+.
package l4histogram

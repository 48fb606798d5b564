// Package l3integral owns Layer 3 (Integral) of the descriptor model.
//
// Responsibilities: the per-feature histogram configuration, binning a
// gradient pair into per-orientation integral images, and reading spatial
// cell histograms for a rectangle with four lookups per bin.
// Key types: Config, Stack.
//
// Dependency rule: L3 may depend on L1-L2, but never on L4+.
// Build and Extract are pure functions; no state lives in this package.
package l3integral

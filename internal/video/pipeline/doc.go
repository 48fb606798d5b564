// Package pipeline runs descriptor extraction over a frame source.
//
// It wires the layer packages into one sequential loop: PTS filtering and
// the malformed-frame skip, region extraction, interpolation onto the
// descriptor grid, the engine update, and a dense scan per patch size
// whenever the engine completes a window. The pipeline owns no descriptor
// math; it delegates to l2regions, l1frames and l5descriptor.
package pipeline

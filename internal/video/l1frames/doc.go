// Package l1frames owns Layer 1 (Frames) of the video descriptor data model.
//
// Responsibilities: the decoded Frame model, frame sources (recorded frame
// logs and a synthetic generator), and resampling of motion fields onto the
// descriptor grid.
// Key types: Frame, Geometry, Source, Reader, Recorder, SyntheticSource.
//
// Dependency rule: L1 depends on no other video layer. Codec handling lives
// outside this module; frames arrive here already decoded.
package l1frames

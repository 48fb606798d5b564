// Package l5descriptor owns Layer 5 (Descriptor) of the descriptor model.
//
// Responsibilities: routing each frame to the enabled histogram channels,
// stride and readiness bookkeeping, the packed multi-channel descriptor and
// its layout, and the dense multi-position patch scan.
// Key types: Engine, Config, Span, Patch, Sink, Observer.
//
// Dependency rule: L5 may depend on L1-L4, but never on the pipeline or
// on output sinks. Sinks depend on this package, not the other way round.
package l5descriptor

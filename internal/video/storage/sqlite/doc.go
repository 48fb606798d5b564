// Package sqlite persists extraction runs and their descriptors.
//
// A run row records the configuration, packed layout and final counters of
// one extraction; descriptor rows hold the patch geometry, the PTS window
// and the descriptor as a little-endian float32 blob. The schema is managed
// by golang-migrate from embedded migrations.
package sqlite

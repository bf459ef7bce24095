// Copyright 2026 The Strata Authors
// SPDX-License-Identifier: Apache-2.0

// Package trackmeta defines music-track descriptor chunks: a concrete
// consumer of the container codec API. A track set records a display
// name id, a style niceness factor, the ride types the style suits,
// and per-track descriptors (name, composer, backing asset, playback
// pacing). The descriptor (name id, niceness, original style, tracks)
// and the ride-type list live in separate chunks, so readers that
// predate a chunk simply see zero values for its fields.
package trackmeta

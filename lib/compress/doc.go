// Copyright 2026 The Strata Authors
// SPDX-License-Identifier: Apache-2.0

// Package compress implements the whole-payload compression codecs used
// by the container envelope. Each codec is identified by a Tag stored
// in the container header; tag values are protocol constants and
// changing them breaks format compatibility.
//
// Tag 1 (gzip) is the canonical codec every reader must support. Tags
// 2 (zstd) and 3 (lz4) claim two of the reserved header values for
// implementations that prefer higher ratios or faster decode; readers
// that do not recognize a tag reject the container at open time.
package compress

// Copyright 2026 The Strata Authors
// SPDX-License-Identifier: Apache-2.0

// Package container implements a chunked binary container format and
// its symmetric serializer/deserializer.
//
// A container stores a set of independently addressable, numerically
// identified chunks. Each chunk is a freeform byte blob whose interior
// layout is determined by user-supplied codecs. The on-disk layout is
// a fixed 64-byte header, a chunk directory of (id, offset, length)
// entries, and a single payload blob that is hashed with SHA-1 and
// compressed as a whole (gzip by default).
//
// The central design is the bidirectional codec: a single user-written
// traversal function serves for both reading and writing, so the two
// directions cannot drift. The codec receives a [ChunkStream] whose
// primitives either consume or produce bytes depending on the stream's
// [Mode]:
//
//	found, err := stream.ReadWriteChunk(chunkSettings, func(cs *container.ChunkStream) error {
//		cs.Uint32(&s.Width)
//		cs.Uint32(&s.Height)
//		cs.String(&s.Title)
//		return container.Vector(cs, &s.Scores, func(cs *container.ChunkStream, v *uint16) error {
//			return cs.Uint16(v)
//		})
//	})
//
// Ordering of primitive calls inside the codec is the entire schema:
// there are no field names, tags, or type codes. Schema evolution is
// handled at the chunk boundary (chunks are optional; a missing chunk
// returns found=false) or by version fields the codec itself stores.
//
// Arrays are framed with a count and per-element stride recorded by
// the writer. Homogeneous-sized elements yield a nonzero stride so
// readers can seek past elements without decoding them; elements of
// differing sizes are recorded with stride zero and must be
// self-delimiting. See [Vector], [FixedArray], and the low-level
// [ChunkStream.BeginArray] protocol.
//
// All multi-byte integers are little-endian on disk regardless of
// host. The package is a pure library: single-threaded per container
// instance, no network or CLI surface.
package container

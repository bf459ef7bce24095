// Copyright 2026 The Strata Authors
// SPDX-License-Identifier: Apache-2.0

package container

import (
	"encoding/binary"

	"github.com/strata-format/strata/lib/compress"
)

const (
	// HeaderSize is the fixed on-disk size of the container header.
	HeaderSize = 64

	// ChunkEntrySize is the fixed on-disk size of one chunk directory
	// entry.
	ChunkEntrySize = 20
)

// Header is the fixed 64-byte container header. All fields are stored
// little-endian, tightly packed, in declaration order, followed by 8
// reserved bytes written as zero.
type Header struct {
	// Magic is a user-chosen constant identifying the file kind. The
	// envelope itself is magic-agnostic; Open verifies it against the
	// caller's expected value.
	Magic uint32

	// TargetVersion is the writer's current format version.
	TargetVersion uint32

	// MinVersion is the minimum reader version that can understand
	// the payload.
	MinVersion uint32

	// NumChunks is the number of entries in the chunk directory.
	NumChunks uint32

	// UncompressedSize is the payload length after decompression.
	UncompressedSize uint64

	// Compression names the codec applied to the payload.
	Compression compress.Tag

	// CompressedSize is the payload length as stored on the stream.
	CompressedSize uint64

	// Sha1 is the digest over the uncompressed payload.
	Sha1 [20]byte
}

// ChunkEntry is one chunk directory record: 20 bytes on disk, tightly
// packed little-endian.
type ChunkEntry struct {
	// ID is the chunk's numeric identifier. IDs are not required to
	// be unique; readers dispatch to the first matching entry.
	ID uint32

	// Offset is the chunk's byte offset into the uncompressed
	// payload.
	Offset uint64

	// Length is the chunk's byte length within the uncompressed
	// payload.
	Length uint64
}

func encodeHeader(h Header) [HeaderSize]byte {
	var raw [HeaderSize]byte
	binary.LittleEndian.PutUint32(raw[0:], h.Magic)
	binary.LittleEndian.PutUint32(raw[4:], h.TargetVersion)
	binary.LittleEndian.PutUint32(raw[8:], h.MinVersion)
	binary.LittleEndian.PutUint32(raw[12:], h.NumChunks)
	binary.LittleEndian.PutUint64(raw[16:], h.UncompressedSize)
	binary.LittleEndian.PutUint32(raw[24:], uint32(h.Compression))
	binary.LittleEndian.PutUint64(raw[28:], h.CompressedSize)
	copy(raw[36:56], h.Sha1[:])
	// raw[56:64] is reserved padding, left zero.
	return raw
}

func decodeHeader(raw [HeaderSize]byte) Header {
	var h Header
	h.Magic = binary.LittleEndian.Uint32(raw[0:])
	h.TargetVersion = binary.LittleEndian.Uint32(raw[4:])
	h.MinVersion = binary.LittleEndian.Uint32(raw[8:])
	h.NumChunks = binary.LittleEndian.Uint32(raw[12:])
	h.UncompressedSize = binary.LittleEndian.Uint64(raw[16:])
	h.Compression = compress.Tag(binary.LittleEndian.Uint32(raw[24:]))
	h.CompressedSize = binary.LittleEndian.Uint64(raw[28:])
	copy(h.Sha1[:], raw[36:56])
	return h
}

func encodeChunkEntry(e ChunkEntry) [ChunkEntrySize]byte {
	var raw [ChunkEntrySize]byte
	binary.LittleEndian.PutUint32(raw[0:], e.ID)
	binary.LittleEndian.PutUint64(raw[4:], e.Offset)
	binary.LittleEndian.PutUint64(raw[12:], e.Length)
	return raw
}

func decodeChunkEntry(raw [ChunkEntrySize]byte) ChunkEntry {
	var e ChunkEntry
	e.ID = binary.LittleEndian.Uint32(raw[0:])
	e.Offset = binary.LittleEndian.Uint64(raw[4:])
	e.Length = binary.LittleEndian.Uint64(raw[12:])
	return e
}

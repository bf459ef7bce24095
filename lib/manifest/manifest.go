// Copyright 2026 The Strata Authors
// SPDX-License-Identifier: Apache-2.0

package manifest

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/strata-format/strata/lib/container"
)

// ChunkInfo summarizes one chunk directory entry.
type ChunkInfo struct {
	ID     uint32 `cbor:"id" json:"id"`
	Offset uint64 `cbor:"offset" json:"offset"`
	Length uint64 `cbor:"length" json:"length"`
}

// Manifest describes a container without its chunk payloads.
type Manifest struct {
	Magic            uint32      `cbor:"magic" json:"magic"`
	TargetVersion    uint32      `cbor:"target_version" json:"target_version"`
	MinVersion       uint32      `cbor:"min_version" json:"min_version"`
	Compression      string      `cbor:"compression" json:"compression"`
	CompressionTag   uint32      `cbor:"compression_tag" json:"compression_tag"`
	UncompressedSize uint64      `cbor:"uncompressed_size" json:"uncompressed_size"`
	CompressedSize   uint64      `cbor:"compressed_size" json:"compressed_size"`
	Sha1             string      `cbor:"sha1" json:"sha1"`
	Chunks           []ChunkInfo `cbor:"chunks" json:"chunks"`
}

// FromStream builds a manifest from an open container stream. In
// Writing mode the directory reflects the chunks recorded so far and
// the size/digest fields are whatever finalization has (or has not
// yet) computed.
func FromStream(s *container.Stream) *Manifest {
	header := s.Header()
	entries := s.Entries()

	chunks := make([]ChunkInfo, len(entries))
	for i, entry := range entries {
		chunks[i] = ChunkInfo{ID: entry.ID, Offset: entry.Offset, Length: entry.Length}
	}

	return &Manifest{
		Magic:            header.Magic,
		TargetVersion:    header.TargetVersion,
		MinVersion:       header.MinVersion,
		Compression:      header.Compression.String(),
		CompressionTag:   uint32(header.Compression),
		UncompressedSize: header.UncompressedSize,
		CompressedSize:   header.CompressedSize,
		Sha1:             hex.EncodeToString(header.Sha1[:]),
		Chunks:           chunks,
	}
}

// encMode is the CBOR encoder configured with Core Deterministic
// Encoding (RFC 8949 §4.2): sorted map keys, smallest integer
// encoding, no indefinite-length items. The same manifest always
// produces identical bytes, so manifests can be compared or hashed.
var encMode cbor.EncMode

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("manifest: CBOR encoder initialization failed: " + err.Error())
	}
}

// EncodeCBOR serializes the manifest as deterministic CBOR.
func EncodeCBOR(m *Manifest) ([]byte, error) {
	data, err := encMode.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encoding manifest as CBOR: %w", err)
	}
	return data, nil
}

// DecodeCBOR parses a CBOR-encoded manifest. Unknown fields are
// ignored for forward compatibility.
func DecodeCBOR(data []byte) (*Manifest, error) {
	var m Manifest
	if err := cbor.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decoding manifest from CBOR: %w", err)
	}
	return &m, nil
}

// EncodeJSON serializes the manifest as indented JSON for human
// consumption.
func EncodeJSON(m *Manifest) ([]byte, error) {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding manifest as JSON: %w", err)
	}
	return data, nil
}

// Copyright 2026 The Strata Authors
// SPDX-License-Identifier: Apache-2.0

package trackmeta

import (
	"encoding/hex"
	"fmt"

	"github.com/zeebo/blake3"

	"github.com/strata-format/strata/lib/container"
)

// Chunk ids used by track metadata containers.
const (
	// ChunkDescriptor holds the style descriptor and track list.
	ChunkDescriptor uint32 = 0x4D455441 // "META"

	// ChunkRideTypes holds the ride-type compatibility list.
	ChunkRideTypes uint32 = 0x52494445 // "RIDE"
)

// NiceFactor rates how pleasant a music style is considered when the
// game picks a default. Stored on disk as a single byte.
type NiceFactor int8

const (
	NotNice NiceFactor = -1
	Neutral NiceFactor = 0
	Nice    NiceFactor = 1
)

// AssetHash is the 32-byte BLAKE3 keyed digest identifying a track's
// audio asset by content.
type AssetHash [32]byte

// assetDomainKey is the BLAKE3 key for asset hashing. Domain
// separation keeps asset hashes distinct from any other BLAKE3 use of
// the same bytes. The value is the ASCII domain name zero-padded to
// 32 bytes, so it is recognizable in hex dumps.
var assetDomainKey = [32]byte{
	's', 't', 'r', 'a', 't', 'a', '.', 't', 'r', 'a', 'c', 'k', 'm', 'e', 't', 'a',
	'.', 'a', 's', 's', 'e', 't', 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
}

// HashAsset computes the asset-domain digest of raw audio bytes.
func HashAsset(data []byte) AssetHash {
	hasher, err := blake3.NewKeyed(assetDomainKey[:])
	if err != nil {
		// NewKeyed only fails on a wrong key length, which the
		// fixed-size array rules out.
		panic("trackmeta: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	hasher.Write(data)
	var hash AssetHash
	copy(hash[:], hasher.Sum(nil))
	return hash
}

// String returns the hex encoding of the hash.
func (h AssetHash) String() string {
	return hex.EncodeToString(h[:])
}

// Asset identifies a track's audio data: where it came from and the
// content digest that pins exactly which bytes.
type Asset struct {
	// Source is the path or URI the asset was loaded from.
	Source string

	// Hash is the asset-domain content digest.
	Hash AssetHash

	// Size is the asset length in bytes.
	Size uint64
}

func (a *Asset) readWrite(cs *container.ChunkStream) error {
	cs.String(&a.Source)
	cs.Bytes(a.Hash[:])
	cs.Uint64(&a.Size)
	return cs.Err()
}

// Track describes one music track.
type Track struct {
	// Name is the display title.
	Name string

	// Composer credits the track's author; empty when unknown.
	Composer string

	// Asset is the backing audio content.
	Asset Asset

	// BytesPerTick is how many PCM bytes to seek per game tick while
	// the track plays offscreen.
	BytesPerTick uint64

	// Size is the PCM track length in bytes.
	Size uint64
}

func (t *Track) readWrite(cs *container.ChunkStream) error {
	cs.String(&t.Name)
	cs.String(&t.Composer)
	if err := t.Asset.readWrite(cs); err != nil {
		return err
	}
	cs.Uint64(&t.BytesPerTick)
	cs.Uint64(&t.Size)
	return cs.Err()
}

// Metadata is a complete track-set descriptor.
type Metadata struct {
	// NameStringID references the style's display name in the string
	// table.
	NameStringID uint16

	// NiceFactor rates the style for default selection.
	NiceFactor NiceFactor

	// OriginalStyleID is the legacy style slot this set replaces, or
	// nil when the set is original content.
	OriginalStyleID *uint8

	// RideTypes lists the ride types this style suits.
	RideTypes []uint8

	// Tracks are the style's tracks in play order.
	Tracks []Track
}

// ReadWriteChunks runs the metadata codecs against the container in
// the stream's direction. Missing chunks are not errors: the
// corresponding fields keep their zero values, which is how older
// containers remain readable.
func (m *Metadata) ReadWriteChunks(s *container.Stream) error {
	if _, err := s.ReadWriteChunk(ChunkDescriptor, m.readWriteDescriptor); err != nil {
		return fmt.Errorf("track descriptor: %w", err)
	}
	if _, err := s.ReadWriteChunk(ChunkRideTypes, m.readWriteRideTypes); err != nil {
		return fmt.Errorf("ride types: %w", err)
	}
	return nil
}

func (m *Metadata) readWriteDescriptor(cs *container.ChunkStream) error {
	cs.Uint16(&m.NameStringID)
	container.AsUint8(cs, &m.NiceFactor)

	// Optional legacy style id: presence byte, then the value.
	present := m.OriginalStyleID != nil
	cs.Bool(&present)
	if present {
		var id uint8
		if cs.Mode() == container.Writing {
			id = *m.OriginalStyleID
		}
		cs.Uint8(&id)
		if cs.Mode() == container.Reading {
			m.OriginalStyleID = &id
		}
	} else if cs.Mode() == container.Reading {
		m.OriginalStyleID = nil
	}

	return container.Vector(cs, &m.Tracks, func(cs *container.ChunkStream, t *Track) error {
		return t.readWrite(cs)
	})
}

func (m *Metadata) readWriteRideTypes(cs *container.ChunkStream) error {
	return container.Vector(cs, &m.RideTypes, func(cs *container.ChunkStream, v *uint8) error {
		return cs.Uint8(v)
	})
}

// SupportsRideType reports whether the style is suited to the given
// ride type.
func (m *Metadata) SupportsRideType(rideType uint8) bool {
	for _, t := range m.RideTypes {
		if t == rideType {
			return true
		}
	}
	return false
}

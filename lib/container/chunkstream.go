// Copyright 2026 The Strata Authors
// SPDX-License-Identifier: Apache-2.0

package container

import (
	"encoding/binary"
	"fmt"
	"strings"
)

// ChunkStream is the view a chunk codec sees: a cursor into the
// container's uncompressed payload plus the bidirectional primitives.
// Every primitive consumes bytes in Reading mode and produces them in
// Writing mode, so one traversal function serves both directions.
//
// Errors are sticky: after the first failure every subsequent
// operation is a no-op returning that same error. Codecs can therefore
// chain primitives without checking each call and return Err() (or any
// intermediate error) at the end — ReadWriteChunk also surfaces the
// sticky error if the codec returns nil.
type ChunkStream struct {
	buffer cursorBuffer
	mode   Mode
	frames []arrayFrame
	err    error
}

// cursorBuffer is the slice of the memstream API the chunk stream
// needs. Narrowing the dependency keeps the stream testable against a
// bare buffer.
type cursorBuffer interface {
	Read(dst []byte) error
	Write(src []byte)
	Position() int
	SetPosition(p int) error
	Len() int
}

// Mode returns the stream's direction.
func (cs *ChunkStream) Mode() Mode {
	return cs.mode
}

// Err returns the first error encountered by any primitive, or nil.
func (cs *ChunkStream) Err() error {
	return cs.err
}

// Position returns the cursor position within the payload buffer.
func (cs *ChunkStream) Position() int {
	return cs.buffer.Position()
}

func (cs *ChunkStream) fail(err error) error {
	if cs.err == nil {
		cs.err = err
	}
	return cs.err
}

// Bytes transfers len(p) raw bytes: into p when reading, from p when
// writing. This is the primitive underneath every scalar; use it
// directly for opaque blobs and fixed-size byte arrays.
func (cs *ChunkStream) Bytes(p []byte) error {
	if cs.err != nil {
		return cs.err
	}
	if cs.mode == Writing {
		cs.buffer.Write(p)
		return nil
	}
	if err := cs.buffer.Read(p); err != nil {
		return cs.fail(err)
	}
	return nil
}

// Scalar primitives. The on-disk encoding is little-endian regardless
// of host byte order.

// Uint8 transfers one byte.
func (cs *ChunkStream) Uint8(v *uint8) error {
	var raw [1]byte
	if cs.mode == Writing {
		raw[0] = *v
		return cs.Bytes(raw[:])
	}
	if err := cs.Bytes(raw[:]); err != nil {
		return err
	}
	*v = raw[0]
	return nil
}

// Uint16 transfers a little-endian uint16.
func (cs *ChunkStream) Uint16(v *uint16) error {
	var raw [2]byte
	if cs.mode == Writing {
		binary.LittleEndian.PutUint16(raw[:], *v)
		return cs.Bytes(raw[:])
	}
	if err := cs.Bytes(raw[:]); err != nil {
		return err
	}
	*v = binary.LittleEndian.Uint16(raw[:])
	return nil
}

// Uint32 transfers a little-endian uint32.
func (cs *ChunkStream) Uint32(v *uint32) error {
	var raw [4]byte
	if cs.mode == Writing {
		binary.LittleEndian.PutUint32(raw[:], *v)
		return cs.Bytes(raw[:])
	}
	if err := cs.Bytes(raw[:]); err != nil {
		return err
	}
	*v = binary.LittleEndian.Uint32(raw[:])
	return nil
}

// Uint64 transfers a little-endian uint64.
func (cs *ChunkStream) Uint64(v *uint64) error {
	var raw [8]byte
	if cs.mode == Writing {
		binary.LittleEndian.PutUint64(raw[:], *v)
		return cs.Bytes(raw[:])
	}
	if err := cs.Bytes(raw[:]); err != nil {
		return err
	}
	*v = binary.LittleEndian.Uint64(raw[:])
	return nil
}

// Int8 transfers one byte, two's complement.
func (cs *ChunkStream) Int8(v *int8) error {
	u := uint8(*v)
	if err := cs.Uint8(&u); err != nil {
		return err
	}
	*v = int8(u)
	return nil
}

// Int16 transfers a little-endian int16, two's complement.
func (cs *ChunkStream) Int16(v *int16) error {
	u := uint16(*v)
	if err := cs.Uint16(&u); err != nil {
		return err
	}
	*v = int16(u)
	return nil
}

// Int32 transfers a little-endian int32, two's complement.
func (cs *ChunkStream) Int32(v *int32) error {
	u := uint32(*v)
	if err := cs.Uint32(&u); err != nil {
		return err
	}
	*v = int32(u)
	return nil
}

// Int64 transfers a little-endian int64, two's complement.
func (cs *ChunkStream) Int64(v *int64) error {
	u := uint64(*v)
	if err := cs.Uint64(&u); err != nil {
		return err
	}
	*v = int64(u)
	return nil
}

// Bool transfers one byte: 1 for true, 0 for false. Reading treats any
// nonzero byte as true.
func (cs *ChunkStream) Bool(v *bool) error {
	var b uint8
	if *v {
		b = 1
	}
	if err := cs.Uint8(&b); err != nil {
		return err
	}
	*v = b != 0
	return nil
}

// String transfers a NUL-terminated UTF-8 string. Writing emits the
// string's bytes up to (but not including) any embedded NUL, followed
// by one terminator; a source string containing NUL is therefore
// truncated at the first NUL. Reading consumes bytes up to and
// including the first zero byte.
func (cs *ChunkStream) String(v *string) error {
	if cs.err != nil {
		return cs.err
	}
	if cs.mode == Writing {
		body := *v
		if i := strings.IndexByte(body, 0); i >= 0 {
			body = body[:i]
		}
		cs.buffer.Write([]byte(body))
		cs.buffer.Write([]byte{0})
		return nil
	}

	var body []byte
	var raw [1]byte
	for {
		if err := cs.buffer.Read(raw[:]); err != nil {
			return cs.fail(fmt.Errorf("reading string: %w", err))
		}
		if raw[0] == 0 {
			break
		}
		body = append(body, raw[0])
	}
	*v = string(body)
	return nil
}

// Write-only duals. In Writing mode these emit the given value; in
// Reading mode the field is consumed from the stream and discarded.
// The read-side consumption is intentional, not a no-op: the cursor
// must advance past the field either way.

// WriteUint8 emits v, or consumes and discards one byte.
func (cs *ChunkStream) WriteUint8(v uint8) error {
	return cs.Uint8(&v)
}

// WriteUint16 emits v, or consumes and discards a uint16.
func (cs *ChunkStream) WriteUint16(v uint16) error {
	return cs.Uint16(&v)
}

// WriteUint32 emits v, or consumes and discards a uint32.
func (cs *ChunkStream) WriteUint32(v uint32) error {
	return cs.Uint32(&v)
}

// WriteUint64 emits v, or consumes and discards a uint64.
func (cs *ChunkStream) WriteUint64(v uint64) error {
	return cs.Uint64(&v)
}

// WriteString emits v NUL-terminated, or consumes and discards a
// NUL-terminated string.
func (cs *ChunkStream) WriteString(v string) error {
	return cs.String(&v)
}

// Skip advances the cursor by n bytes without interpreting them. In
// Writing mode n zero bytes are emitted.
func (cs *ChunkStream) Skip(n int) error {
	if cs.err != nil {
		return cs.err
	}
	if cs.mode == Writing {
		cs.buffer.Write(make([]byte, n))
		return nil
	}
	if err := cs.buffer.SetPosition(cs.buffer.Position() + n); err != nil {
		return cs.fail(fmt.Errorf("skipping %d bytes: %w: %w", n, err, ErrUnexpectedEndOfStream))
	}
	return nil
}

// integer is the set of scalar types the As* helpers accept for the
// in-memory side of a narrowed field.
type integer interface {
	~int8 | ~int16 | ~int32 | ~int64 | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~int | ~uint
}

// AsUint8 transfers an in-memory integer through a one-byte on-disk
// representation. Writing narrows the value to a byte (two's
// complement truncation); reading widens the stored byte back to Mem.
// The caller must ensure the conversion is value-preserving for every
// value the codec produces or consumes — a signed Mem round-trips
// correctly only when Mem's underlying width is one byte or the
// stored values fit.
func AsUint8[Mem integer](cs *ChunkStream, v *Mem) error {
	var save uint8
	if cs.mode == Writing {
		save = uint8(*v)
	}
	if err := cs.Uint8(&save); err != nil {
		return err
	}
	if cs.mode == Reading {
		*v = Mem(save)
	}
	return nil
}

// AsUint16 transfers an in-memory integer through a two-byte
// little-endian on-disk representation. See AsUint8 for the
// conversion contract.
func AsUint16[Mem integer](cs *ChunkStream, v *Mem) error {
	var save uint16
	if cs.mode == Writing {
		save = uint16(*v)
	}
	if err := cs.Uint16(&save); err != nil {
		return err
	}
	if cs.mode == Reading {
		*v = Mem(save)
	}
	return nil
}

// AsUint32 transfers an in-memory integer through a four-byte
// little-endian on-disk representation. See AsUint8 for the
// conversion contract.
func AsUint32[Mem integer](cs *ChunkStream, v *Mem) error {
	var save uint32
	if cs.mode == Writing {
		save = uint32(*v)
	}
	if err := cs.Uint32(&save); err != nil {
		return err
	}
	if cs.mode == Reading {
		*v = Mem(save)
	}
	return nil
}

// AsUint64 transfers an in-memory integer through an eight-byte
// little-endian on-disk representation. See AsUint8 for the
// conversion contract.
func AsUint64[Mem integer](cs *ChunkStream, v *Mem) error {
	var save uint64
	if cs.mode == Writing {
		save = uint64(*v)
	}
	if err := cs.Uint64(&save); err != nil {
		return err
	}
	if cs.mode == Reading {
		*v = Mem(save)
	}
	return nil
}

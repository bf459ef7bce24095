// Copyright 2026 The Strata Authors
// SPDX-License-Identifier: Apache-2.0

package memstream

import (
	"errors"
	"fmt"
)

// ErrUnexpectedEndOfStream is returned when a read requests more bytes
// than remain between the cursor and the end of the buffer.
var ErrUnexpectedEndOfStream = errors.New("unexpected end of stream")

// Stream is a growable byte buffer with a position cursor. Reads and
// writes both advance the cursor; writing past the end grows the
// buffer. The zero value is an empty stream positioned at zero.
type Stream struct {
	data []byte
	pos  int
}

// New returns an empty stream.
func New() *Stream {
	return &Stream{}
}

// FromBytes returns a stream over the given bytes, positioned at zero.
// The stream takes ownership of the slice.
func FromBytes(data []byte) *Stream {
	return &Stream{data: data}
}

// Len returns the number of bytes in the buffer, independent of the
// cursor position.
func (s *Stream) Len() int {
	return len(s.data)
}

// Bytes returns the underlying buffer. The returned slice is aliased,
// not copied — it is valid until the next write or Clear.
func (s *Stream) Bytes() []byte {
	return s.data
}

// Position returns the current cursor position.
func (s *Stream) Position() int {
	return s.pos
}

// SetPosition seeks the cursor to p. The position must lie within
// [0, Len()]; seeking to Len() is valid and means subsequent writes
// append.
func (s *Stream) SetPosition(p int) error {
	if p < 0 || p > len(s.data) {
		return fmt.Errorf("position %d outside buffer of %d bytes", p, len(s.data))
	}
	s.pos = p
	return nil
}

// Read fills dst from the cursor and advances it. If fewer than
// len(dst) bytes remain, nothing is consumed and the error wraps
// ErrUnexpectedEndOfStream.
func (s *Stream) Read(dst []byte) error {
	if s.pos+len(dst) > len(s.data) {
		return fmt.Errorf("read of %d bytes at position %d exceeds %d-byte buffer: %w",
			len(dst), s.pos, len(s.data), ErrUnexpectedEndOfStream)
	}
	copy(dst, s.data[s.pos:])
	s.pos += len(dst)
	return nil
}

// Write copies src into the buffer at the cursor, overwriting existing
// bytes and growing the buffer as needed, then advances the cursor.
func (s *Stream) Write(src []byte) {
	end := s.pos + len(src)
	if end > len(s.data) {
		if end > cap(s.data) {
			grown := make([]byte, end, growCap(cap(s.data), end))
			copy(grown, s.data)
			s.data = grown
		} else {
			s.data = s.data[:end]
		}
	}
	copy(s.data[s.pos:], src)
	s.pos = end
}

// Clear empties the buffer and resets the cursor to zero. The
// underlying storage is retained for reuse.
func (s *Stream) Clear() {
	s.data = s.data[:0]
	s.pos = 0
}

// growCap doubles capacity until it covers need, starting from a small
// floor so tiny streams don't reallocate on every scalar.
func growCap(current, need int) int {
	next := current
	if next < 64 {
		next = 64
	}
	for next < need {
		next *= 2
	}
	return next
}

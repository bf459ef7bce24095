// Copyright 2026 The Strata Authors
// SPDX-License-Identifier: Apache-2.0

package container

import (
	"fmt"
)

// Array framing: every array is stored as an 8-byte frame header
// (Count uint32, ElementSize uint32) followed by Count element bodies.
// The writer records the per-element stride automatically: the first
// element's byte size becomes ElementSize, and any later element of a
// different size resets it to zero (variable stride). Readers of a
// fixed-stride array seek from element to element, so they can skip
// trailing bytes an old codec no longer understands; variable-stride
// elements must be self-delimiting.
//
// Frames nest. The frame stack lives on the ChunkStream, so it is
// scoped to a single chunk codec call and re-entrant across
// independent containers.

type arrayFrame struct {
	// startPos is the frame header's position, used by the writer to
	// back-patch Count and ElementSize.
	startPos int

	// lastPos is the cursor just past the most recently counted
	// element (or the frame header if none yet).
	lastPos int

	// count is remaining elements when reading, counted elements when
	// writing.
	count uint32

	// elementSize is the detected stride; zero means variable.
	elementSize uint32
}

// readerElementCap bounds the slice capacity preallocated from an
// untrusted element count. Larger arrays still decode; they just grow
// the slice as elements arrive.
const readerElementCap = 4096

// BeginArray opens an array frame. Reading parses the frame header and
// returns the stored element count; Writing emits an 8-byte
// placeholder that EndArray back-patches, and returns zero.
//
// Most codecs use [Vector] or [FixedArray] instead; the Begin/Next/End
// trio is exported for codecs with element layouts the generic
// helpers cannot express (conditional elements, parallel arrays).
// Every BeginArray must be paired with an EndArray before the chunk
// codec returns.
func (cs *ChunkStream) BeginArray() (uint32, error) {
	if cs.err != nil {
		return 0, cs.err
	}
	if cs.mode == Reading {
		var count, elementSize uint32
		if err := cs.Uint32(&count); err != nil {
			return 0, fmt.Errorf("reading array frame header: %w", err)
		}
		if err := cs.Uint32(&elementSize); err != nil {
			return 0, fmt.Errorf("reading array frame header: %w", err)
		}
		cs.frames = append(cs.frames, arrayFrame{
			lastPos:     cs.buffer.Position(),
			count:       count,
			elementSize: elementSize,
		})
		return count, nil
	}

	frame := arrayFrame{startPos: cs.buffer.Position()}
	if err := cs.WriteUint32(0); err != nil {
		return 0, err
	}
	if err := cs.WriteUint32(0); err != nil {
		return 0, err
	}
	frame.lastPos = cs.buffer.Position()
	cs.frames = append(cs.frames, frame)
	return 0, nil
}

// NextArrayElement marks the end of one element body.
//
// Writing measures the bytes emitted since the previous element to
// drive stride detection and increments the count. Reading seeks the
// cursor to the next element when the stride is fixed (recovering from
// an element codec that under- or over-read within the stride) and
// decrements the remaining count; with a variable stride the cursor
// stays wherever the element codec left it.
func (cs *ChunkStream) NextArrayElement() error {
	if cs.err != nil {
		return cs.err
	}
	if len(cs.frames) == 0 {
		return cs.fail(fmt.Errorf("NextArrayElement outside an array frame: %w", ErrMalformedArray))
	}
	frame := &cs.frames[len(cs.frames)-1]

	if cs.mode == Reading {
		if frame.count == 0 {
			return nil
		}
		if frame.elementSize != 0 {
			frame.lastPos += int(frame.elementSize)
			if err := cs.buffer.SetPosition(frame.lastPos); err != nil {
				return cs.fail(fmt.Errorf("seeking to next array element at %d: %w: %w",
					frame.lastPos, err, ErrUnexpectedEndOfStream))
			}
		}
		frame.count--
		return nil
	}

	elementSize := uint32(cs.buffer.Position() - frame.lastPos)
	if frame.count == 0 {
		// First element sets the stride.
		frame.elementSize = elementSize
	} else if frame.elementSize != elementSize {
		// Differing size: the array becomes variable-stride.
		frame.elementSize = 0
	}
	frame.count++
	frame.lastPos = cs.buffer.Position()
	return nil
}

// EndArray closes the innermost array frame. Writing back-patches the
// frame header with the final count and stride; closing a frame that
// had bytes written but no elements counted fails with
// ErrMalformedArray. Reading simply pops the frame — the caller is
// responsible for having consumed exactly the stored count.
func (cs *ChunkStream) EndArray() error {
	if cs.err != nil {
		return cs.err
	}
	if len(cs.frames) == 0 {
		return cs.fail(fmt.Errorf("EndArray without BeginArray: %w", ErrMalformedArray))
	}
	frame := cs.frames[len(cs.frames)-1]

	if cs.mode == Writing {
		endPos := cs.buffer.Position()
		if frame.count == 0 && endPos != frame.startPos+8 {
			return cs.fail(fmt.Errorf("array frame has %d bytes but no counted elements: %w",
				endPos-frame.startPos-8, ErrMalformedArray))
		}
		if err := cs.buffer.SetPosition(frame.startPos); err != nil {
			return cs.fail(fmt.Errorf("seeking to array frame header: %w", err))
		}
		if err := cs.WriteUint32(frame.count); err != nil {
			return err
		}
		if err := cs.WriteUint32(frame.elementSize); err != nil {
			return err
		}
		if err := cs.buffer.SetPosition(endPos); err != nil {
			return cs.fail(fmt.Errorf("restoring cursor after array frame patch: %w", err))
		}
	}

	cs.frames = cs.frames[:len(cs.frames)-1]
	return nil
}

// Vector transfers a variable-length slice through an array frame.
// Reading replaces *items with the stored elements, invoking the
// element codec once per stored element; an empty frame yields an
// empty slice with no codec invocations. Writing emits every element
// of *items.
func Vector[T any](cs *ChunkStream, items *[]T, element func(*ChunkStream, *T) error) error {
	if cs.err != nil {
		return cs.err
	}
	if cs.mode == Reading {
		count, err := cs.BeginArray()
		if err != nil {
			return err
		}
		capacity := count
		if capacity > readerElementCap {
			capacity = readerElementCap
		}
		result := make([]T, 0, capacity)
		for i := uint32(0); i < count; i++ {
			var el T
			if err := element(cs, &el); err != nil {
				return cs.fail(fmt.Errorf("array element %d: %w", i, err))
			}
			if err := cs.NextArrayElement(); err != nil {
				return err
			}
			result = append(result, el)
		}
		*items = result
		return cs.EndArray()
	}

	if _, err := cs.BeginArray(); err != nil {
		return err
	}
	for i := range *items {
		if err := element(cs, &(*items)[i]); err != nil {
			return cs.fail(fmt.Errorf("array element %d: %w", i, err))
		}
		if err := cs.NextArrayElement(); err != nil {
			return err
		}
	}
	return cs.EndArray()
}

// FixedArray transfers a fixed-capacity slot (a slice over an array,
// or any slice whose length is the capacity) through an array frame.
//
// Reading zeroes every slot first, then fills slots from the stored
// elements. A stored count larger than the capacity is legal: excess
// elements are consumed — by stride seek when the frame is
// fixed-stride, by running the element codec against a discarded
// scratch value when variable — but not kept. A count smaller than
// the capacity leaves the remaining slots zeroed. This lets a
// compile-time array shrink or grow across format versions.
//
// Writing gives the element function a say per slot: it returns true
// when it serialized the slot, false to skip it entirely. A skipping
// element function must not have written any bytes. (Vector has no
// such escape hatch — it always serializes every element.)
func FixedArray[T any](cs *ChunkStream, items []T, element func(*ChunkStream, *T) (bool, error)) error {
	if cs.err != nil {
		return cs.err
	}
	if cs.mode == Reading {
		count, err := cs.BeginArray()
		if err != nil {
			return err
		}
		var zero T
		for i := range items {
			items[i] = zero
		}
		variable := cs.frames[len(cs.frames)-1].elementSize == 0
		for i := uint32(0); i < count; i++ {
			if int(i) < len(items) {
				if _, err := element(cs, &items[i]); err != nil {
					return cs.fail(fmt.Errorf("array element %d: %w", i, err))
				}
			} else if variable {
				// Excess element in a variable-stride array: the
				// only way to advance is to decode and discard it.
				var scratch T
				if _, err := element(cs, &scratch); err != nil {
					return cs.fail(fmt.Errorf("discarding excess array element %d: %w", i, err))
				}
			}
			if err := cs.NextArrayElement(); err != nil {
				return err
			}
		}
		return cs.EndArray()
	}

	if _, err := cs.BeginArray(); err != nil {
		return err
	}
	for i := range items {
		wrote, err := element(cs, &items[i])
		if err != nil {
			return cs.fail(fmt.Errorf("array element %d: %w", i, err))
		}
		if !wrote {
			continue
		}
		if err := cs.NextArrayElement(); err != nil {
			return err
		}
	}
	return cs.EndArray()
}

// Copyright 2026 The Strata Authors
// SPDX-License-Identifier: Apache-2.0

package container

import (
	"errors"

	"github.com/strata-format/strata/lib/memstream"
)

// Error kinds surfaced by the container. Each is returned wrapped with
// context; test with errors.Is.
var (
	// ErrTruncated indicates the underlying stream ended before the
	// bytes declared by the header were available.
	ErrTruncated = errors.New("container truncated")

	// ErrBadMagic indicates the header magic did not match the value
	// the caller expects.
	ErrBadMagic = errors.New("bad container magic")

	// ErrVersionTooNew indicates the container's MinVersion exceeds
	// the version the caller supports.
	ErrVersionTooNew = errors.New("container version too new")

	// ErrInflate indicates payload decompression failed, including an
	// unrecognized compression tag.
	ErrInflate = errors.New("payload decompression failed")

	// ErrIntegrity indicates the stored SHA-1 digest does not match
	// the recomputed digest of the inflated payload. Only surfaced
	// when Options.VerifyIntegrity is set.
	ErrIntegrity = errors.New("payload integrity check failed")

	// ErrSizeMismatch indicates the inflated payload length differs
	// from the header's UncompressedSize. Only surfaced when
	// Options.StrictSize is set; otherwise the condition is logged
	// and the reader proceeds with the actually-inflated bytes.
	ErrSizeMismatch = errors.New("inflated size differs from header")

	// ErrMalformedArray indicates an array frame was closed on the
	// write side with bytes written but zero counted elements, or a
	// chunk codec returned with array frames still open.
	ErrMalformedArray = errors.New("malformed array frame")

	// ErrFinalization indicates a write-side I/O failure while
	// emitting the header, directory, or payload. The underlying
	// stream's state after this error is undefined.
	ErrFinalization = errors.New("container finalization failed")

	// ErrUnexpectedEndOfStream indicates a chunk codec read past the
	// end of the payload buffer.
	ErrUnexpectedEndOfStream = memstream.ErrUnexpectedEndOfStream
)

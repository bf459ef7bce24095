// Copyright 2026 The Strata Authors
// SPDX-License-Identifier: Apache-2.0

package container

import (
	"crypto/sha1"
	"fmt"
	"io"
	"log/slog"

	"github.com/strata-format/strata/lib/compress"
	"github.com/strata-format/strata/lib/memstream"
)

// Mode selects the direction of a container stream. Every codec
// primitive consumes bytes in Reading mode and produces them in
// Writing mode.
type Mode int

const (
	// Reading parses an existing container.
	Reading Mode = iota

	// Writing accumulates chunks for a new container.
	Writing
)

// String returns "reading" or "writing".
func (m Mode) String() string {
	if m == Reading {
		return "reading"
	}
	return "writing"
}

// payloadBlockSize is the block size used when reading the stored
// payload from the underlying stream.
const payloadBlockSize = 2048

// Options configures Open.
type Options struct {
	// Magic is the expected header magic. Zero skips the check (the
	// envelope is magic-agnostic; tooling that inspects arbitrary
	// containers passes zero and reports whatever it finds).
	Magic uint32

	// SupportedVersion is the highest format version this reader
	// understands. Containers whose MinVersion exceeds it fail with
	// ErrVersionTooNew.
	SupportedVersion uint32

	// VerifyIntegrity recomputes the payload SHA-1 after inflation
	// and fails with ErrIntegrity on mismatch. Off by default: the
	// digest is an integrity aid, not an authentication mechanism,
	// and hashing large payloads on every open is not free.
	VerifyIntegrity bool

	// StrictSize upgrades an inflated-size/header disagreement from a
	// logged warning to a fatal ErrSizeMismatch.
	StrictSize bool

	// Logger receives the size-mismatch warning and other non-fatal
	// diagnostics. Nil means slog.Default().
	Logger *slog.Logger
}

// Stream is one open container session over an underlying byte stream,
// parameterized by Mode. In Reading mode it is immutable after Open.
// In Writing mode it accumulates chunks into an in-memory payload
// buffer; Close finalizes the header, compresses the payload, and
// emits everything to the underlying writer.
//
// A Stream is not safe for concurrent use. The underlying reader or
// writer is borrowed for the Stream's lifetime.
type Stream struct {
	mode   Mode
	out    io.Writer
	header Header
	chunks []ChunkEntry
	buffer *memstream.Stream
	logger *slog.Logger
	closed bool
}

// Open parses a container from r: header, chunk directory, and the
// stored payload, which is read fully into memory and inflated. The
// reader is consumed exactly up to the end of the stored payload.
func Open(r io.Reader, opts Options) (*Stream, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var rawHeader [HeaderSize]byte
	if _, err := io.ReadFull(r, rawHeader[:]); err != nil {
		return nil, fmt.Errorf("reading container header: %w", truncated(err))
	}
	header := decodeHeader(rawHeader)

	if opts.Magic != 0 && header.Magic != opts.Magic {
		return nil, fmt.Errorf("magic 0x%08X, want 0x%08X: %w", header.Magic, opts.Magic, ErrBadMagic)
	}
	if header.MinVersion > opts.SupportedVersion {
		return nil, fmt.Errorf("container requires version %d, reader supports %d: %w",
			header.MinVersion, opts.SupportedVersion, ErrVersionTooNew)
	}

	chunks := make([]ChunkEntry, 0, header.NumChunks)
	for i := uint32(0); i < header.NumChunks; i++ {
		var rawEntry [ChunkEntrySize]byte
		if _, err := io.ReadFull(r, rawEntry[:]); err != nil {
			return nil, fmt.Errorf("reading chunk directory entry %d: %w", i, truncated(err))
		}
		chunks = append(chunks, decodeChunkEntry(rawEntry))
	}

	// Read the stored payload in blocks.
	buffer := memstream.New()
	block := make([]byte, payloadBlockSize)
	bytesLeft := header.CompressedSize
	for bytesLeft > 0 {
		readLen := uint64(len(block))
		if bytesLeft < readLen {
			readLen = bytesLeft
		}
		if _, err := io.ReadFull(r, block[:readLen]); err != nil {
			return nil, fmt.Errorf("reading payload (%d of %d bytes left): %w",
				bytesLeft, header.CompressedSize, truncated(err))
		}
		buffer.Write(block[:readLen])
		bytesLeft -= readLen
	}

	// Inflate. For an uncompressed payload the stored bytes are the
	// payload; the size policy still applies so a header that lies
	// about UncompressedSize is caught either way.
	payload := buffer.Bytes()
	if header.Compression != compress.None {
		if !compress.Supported(header.Compression) {
			return nil, fmt.Errorf("compression tag %d: %w", uint32(header.Compression), ErrInflate)
		}
		inflated, err := compress.Decompress(payload, header.Compression, int(header.UncompressedSize))
		if err != nil {
			return nil, fmt.Errorf("%s payload: %w (%w)", header.Compression, err, ErrInflate)
		}
		payload = inflated
	}

	if uint64(len(payload)) != header.UncompressedSize {
		if opts.StrictSize {
			return nil, fmt.Errorf("inflated to %d bytes, header declares %d: %w",
				len(payload), header.UncompressedSize, ErrSizeMismatch)
		}
		logger.Warn("container payload size differs from header, proceeding with inflated bytes",
			"inflated", len(payload),
			"declared", header.UncompressedSize)
	}

	if opts.VerifyIntegrity {
		digest := sha1.Sum(payload)
		if digest != header.Sha1 {
			return nil, fmt.Errorf("sha1 %x, header declares %x: %w", digest, header.Sha1, ErrIntegrity)
		}
	}

	return &Stream{
		mode:   Reading,
		header: header,
		chunks: chunks,
		buffer: memstream.FromBytes(payload),
		logger: logger,
	}, nil
}

// NewWriter creates a container stream in Writing mode. Nothing is
// emitted to w until Close. The default payload codec is gzip; callers
// can select another via Header().Compression before Close.
func NewWriter(w io.Writer, magic, targetVersion, minVersion uint32) *Stream {
	return &Stream{
		mode: Writing,
		out:  w,
		header: Header{
			Magic:         magic,
			TargetVersion: targetVersion,
			MinVersion:    minVersion,
			Compression:   compress.Gzip,
		},
		buffer: memstream.New(),
		logger: slog.Default(),
	}
}

// SetLogger replaces the logger used for non-fatal diagnostics (such
// as the compression-fallback warning during Close).
func (s *Stream) SetLogger(logger *slog.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// Mode returns the stream's direction.
func (s *Stream) Mode() Mode {
	return s.mode
}

// Header returns the container header. In Writing mode the header is
// mutable until Close: writers adjust Compression or version fields
// through it. The size, count, and digest fields are computed during
// Close and overwrite whatever is present.
func (s *Stream) Header() *Header {
	return &s.header
}

// Entries returns a copy of the chunk directory. In Writing mode it
// reflects the chunks recorded so far.
func (s *Stream) Entries() []ChunkEntry {
	entries := make([]ChunkEntry, len(s.chunks))
	copy(entries, s.chunks)
	return entries
}

// UncompressedLen returns the current length of the uncompressed
// payload buffer.
func (s *Stream) UncompressedLen() int {
	return s.buffer.Len()
}

// ReadWriteChunk runs a bidirectional codec against the chunk with the
// given id.
//
// In Reading mode it locates the first directory entry with a matching
// id; if none exists it returns (false, nil) without invoking the
// codec, so chunk presence is optional by construction. Otherwise the
// payload cursor seeks to the chunk's offset and the codec runs.
//
// In Writing mode the current payload position becomes the new chunk's
// offset, the codec runs, and a directory entry with the measured
// length is appended. Duplicate ids are not rejected — readers will
// dispatch to the first entry — so writers should not emit them.
//
// A codec must consume or produce its chunk with balanced array
// frames; returning with a frame still open fails with
// ErrMalformedArray. A codec must not call ReadWriteChunk itself:
// in Writing mode a nested call would interleave two chunks' bytes
// and corrupt both offsets.
//
// The returned error is the codec's error, or the chunk stream's
// first internal failure if the codec ignored primitive errors.
func (s *Stream) ReadWriteChunk(id uint32, codec func(*ChunkStream) error) (bool, error) {
	if s.mode == Reading {
		entry, ok := s.findChunk(id)
		if !ok {
			return false, nil
		}
		if err := s.buffer.SetPosition(int(entry.Offset)); err != nil {
			return true, fmt.Errorf("chunk 0x%X: seeking to offset %d: %w", id, entry.Offset, err)
		}
		return true, s.runCodec(id, codec)
	}

	offset := s.buffer.Position()
	if err := s.runCodec(id, codec); err != nil {
		return true, err
	}
	s.chunks = append(s.chunks, ChunkEntry{
		ID:     id,
		Offset: uint64(offset),
		Length: uint64(s.buffer.Position() - offset),
	})
	return true, nil
}

func (s *Stream) runCodec(id uint32, codec func(*ChunkStream) error) error {
	cs := &ChunkStream{buffer: s.buffer, mode: s.mode}
	err := codec(cs)
	if err == nil {
		err = cs.Err()
	}
	if err != nil {
		return fmt.Errorf("chunk 0x%X: %w", id, err)
	}
	if open := len(cs.frames); open != 0 {
		return fmt.Errorf("chunk 0x%X: codec returned with %d array frame(s) open: %w",
			id, open, ErrMalformedArray)
	}
	return nil
}

func (s *Stream) findChunk(id uint32) (ChunkEntry, bool) {
	for _, entry := range s.chunks {
		if entry.ID == id {
			return entry, true
		}
	}
	return ChunkEntry{}, false
}

// Close finalizes the stream. In Reading mode it is a no-op. In
// Writing mode it computes the final header (sizes, chunk count,
// SHA-1 of the uncompressed payload), compresses the payload, and
// emits header, directory, and payload to the underlying writer.
// Compression failure is not fatal: the payload is stored uncompressed
// and the header records Compression=none.
//
// Close runs at most once; subsequent calls return nil. A Writing
// stream that is dropped without Close produces no output.
func (s *Stream) Close() error {
	if s.closed || s.mode == Reading {
		s.closed = true
		return nil
	}
	s.closed = true

	payload := s.buffer.Bytes()
	s.header.NumChunks = uint32(len(s.chunks))
	s.header.UncompressedSize = uint64(len(payload))
	s.header.CompressedSize = uint64(len(payload))
	s.header.Sha1 = sha1.Sum(payload)

	stored := payload
	if s.header.Compression != compress.None {
		compressed, err := compress.Compress(payload, s.header.Compression)
		if err != nil {
			s.logger.Warn("payload compression failed, storing uncompressed",
				"codec", s.header.Compression.String(),
				"error", err)
			s.header.Compression = compress.None
		} else {
			stored = compressed
			s.header.CompressedSize = uint64(len(compressed))
		}
	}

	rawHeader := encodeHeader(s.header)
	if _, err := s.out.Write(rawHeader[:]); err != nil {
		return fmt.Errorf("writing header: %w (%w)", err, ErrFinalization)
	}
	for i, entry := range s.chunks {
		rawEntry := encodeChunkEntry(entry)
		if _, err := s.out.Write(rawEntry[:]); err != nil {
			return fmt.Errorf("writing chunk directory entry %d: %w (%w)", i, err, ErrFinalization)
		}
	}
	if _, err := s.out.Write(stored); err != nil {
		return fmt.Errorf("writing payload: %w (%w)", err, ErrFinalization)
	}
	return nil
}

// truncated maps short-read errors onto ErrTruncated, leaving other
// I/O errors untouched.
func truncated(err error) error {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return fmt.Errorf("%w: %w", ErrTruncated, err)
	}
	return err
}

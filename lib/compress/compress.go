// Copyright 2026 The Strata Authors
// SPDX-License-Identifier: Apache-2.0

package compress

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Tag identifies the compression algorithm applied to a container
// payload. The tag is stored as a uint32 in the container header.
// These values are protocol constants — changing them breaks container
// format compatibility.
type Tag uint32

const (
	// None indicates an uncompressed payload.
	None Tag = 0

	// Gzip indicates a gzip (RFC 1952) compressed payload. This is
	// the canonical codec: every conforming reader supports it, and
	// writers default to it.
	Gzip Tag = 1

	// Zstd indicates a zstd compressed payload at the default level.
	// Better ratios than gzip for text-like payloads at lower CPU
	// cost on decode.
	Zstd Tag = 2

	// LZ4 indicates an LZ4 frame compressed payload. Fastest decode;
	// used when open latency matters more than size.
	LZ4 Tag = 3
)

// String returns the human-readable name of a compression tag.
func (tag Tag) String() string {
	switch tag {
	case None:
		return "none"
	case Gzip:
		return "gzip"
	case Zstd:
		return "zstd"
	case LZ4:
		return "lz4"
	default:
		return fmt.Sprintf("unknown(%d)", uint32(tag))
	}
}

// ParseTag parses a compression tag from its string representation.
func ParseTag(name string) (Tag, error) {
	switch name {
	case "none":
		return None, nil
	case "gzip":
		return Gzip, nil
	case "zstd":
		return Zstd, nil
	case "lz4":
		return LZ4, nil
	default:
		return 0, fmt.Errorf("unknown compression tag: %q", name)
	}
}

// Supported reports whether this implementation can decode payloads
// carrying the given tag.
func Supported(tag Tag) bool {
	return tag <= LZ4
}

// Compress compresses data with the codec named by tag. For None the
// input is returned unchanged (no copy). The output is returned even
// when it is larger than the input — the container format stores
// whatever the codec produces, and small payloads routinely grow.
func Compress(data []byte, tag Tag) ([]byte, error) {
	switch tag {
	case None:
		return data, nil

	case Gzip:
		return compressGzip(data)

	case Zstd:
		return zstdEncoder.EncodeAll(data, nil), nil

	case LZ4:
		return compressLZ4(data)

	default:
		return nil, fmt.Errorf("unsupported compression tag: %d", tag)
	}
}

// Decompress decompresses data that was compressed with the codec
// named by tag and returns the inflated bytes. sizeHint is the
// expected inflated length and is used only to pre-size the output
// buffer; the actual inflated length may differ and is NOT enforced
// here — the caller owns the size-mismatch policy. A negative hint
// means unknown.
func Decompress(data []byte, tag Tag, sizeHint int) ([]byte, error) {
	switch tag {
	case None:
		return data, nil

	case Gzip:
		return decompressGzip(data, sizeHint)

	case Zstd:
		return decompressZstd(data, sizeHint)

	case LZ4:
		return decompressLZ4(data, sizeHint)

	default:
		return nil, fmt.Errorf("unsupported compression tag: %d", tag)
	}
}

// Gzip: stream codec from klauspost/compress, API-compatible with the
// standard library but considerably faster.

func compressGzip(data []byte) ([]byte, error) {
	var buffer bytes.Buffer
	writer := gzip.NewWriter(&buffer)
	if _, err := writer.Write(data); err != nil {
		return nil, fmt.Errorf("gzip compress: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("gzip compress: %w", err)
	}
	return buffer.Bytes(), nil
}

func decompressGzip(data []byte, sizeHint int) ([]byte, error) {
	reader, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("gzip decompress: %w", err)
	}
	defer reader.Close()

	result, err := readAllHinted(reader, sizeHint)
	if err != nil {
		return nil, fmt.Errorf("gzip decompress: %w", err)
	}
	return result, nil
}

// Zstd: encoder and decoder are reused across calls to avoid repeated
// initialization overhead. Both are safe for concurrent use.
var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil,
		zstd.WithEncoderLevel(zstd.SpeedDefault),
	)
	if err != nil {
		panic("compress: zstd encoder initialization failed: " + err.Error())
	}

	zstdDecoder, err = zstd.NewReader(nil)
	if err != nil {
		panic("compress: zstd decoder initialization failed: " + err.Error())
	}
}

func decompressZstd(data []byte, sizeHint int) ([]byte, error) {
	capacity := 0
	if sizeHint > 0 {
		capacity = sizeHint
	}
	result, err := zstdDecoder.DecodeAll(data, make([]byte, 0, capacity))
	if err != nil {
		return nil, fmt.Errorf("zstd decompress: %w", err)
	}
	return result, nil
}

// LZ4: frame format (not block), so the stream is self-describing and
// decode does not require the exact inflated size up front.

func compressLZ4(data []byte) ([]byte, error) {
	var buffer bytes.Buffer
	writer := lz4.NewWriter(&buffer)
	if _, err := writer.Write(data); err != nil {
		return nil, fmt.Errorf("lz4 compress: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("lz4 compress: %w", err)
	}
	return buffer.Bytes(), nil
}

func decompressLZ4(data []byte, sizeHint int) ([]byte, error) {
	reader := lz4.NewReader(bytes.NewReader(data))
	result, err := readAllHinted(reader, sizeHint)
	if err != nil {
		return nil, fmt.Errorf("lz4 decompress: %w", err)
	}
	return result, nil
}

// readAllHinted reads r to EOF into a buffer pre-sized to sizeHint
// when the hint is positive.
func readAllHinted(r io.Reader, sizeHint int) ([]byte, error) {
	capacity := 512
	if sizeHint > 0 {
		capacity = sizeHint
	}
	result := bytes.NewBuffer(make([]byte, 0, capacity))
	if _, err := result.ReadFrom(r); err != nil {
		return nil, err
	}
	return result.Bytes(), nil
}

// Copyright 2026 The Strata Authors
// SPDX-License-Identifier: Apache-2.0

package manifest

import (
	"bytes"
	"crypto/sha1"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/strata-format/strata/lib/container"
)

const testMagic = 0x4D414E49 // "INAM"

func buildContainer(t *testing.T) []byte {
	t.Helper()
	var out bytes.Buffer
	writer := container.NewWriter(&out, testMagic, 2, 1)
	if _, err := writer.ReadWriteChunk(0x100, func(cs *container.ChunkStream) error {
		v := uint32(1)
		return cs.Uint32(&v)
	}); err != nil {
		t.Fatalf("writing chunk failed: %v", err)
	}
	if _, err := writer.ReadWriteChunk(0x200, func(cs *container.ChunkStream) error {
		s := "payload"
		return cs.String(&s)
	}); err != nil {
		t.Fatalf("writing chunk failed: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	return out.Bytes()
}

func openContainer(t *testing.T, data []byte) *container.Stream {
	t.Helper()
	stream, err := container.Open(bytes.NewReader(data), container.Options{
		Magic:            testMagic,
		SupportedVersion: 2,
	})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	return stream
}

func TestFromStream(t *testing.T) {
	stream := openContainer(t, buildContainer(t))
	m := FromStream(stream)

	if m.Magic != testMagic {
		t.Errorf("Magic = 0x%X, want 0x%X", m.Magic, testMagic)
	}
	if m.TargetVersion != 2 || m.MinVersion != 1 {
		t.Errorf("versions = %d/%d, want 2/1", m.TargetVersion, m.MinVersion)
	}
	if m.Compression != "gzip" || m.CompressionTag != 1 {
		t.Errorf("compression = %s/%d, want gzip/1", m.Compression, m.CompressionTag)
	}
	if m.UncompressedSize != 4+8 { // uint32 + "payload\0"
		t.Errorf("UncompressedSize = %d, want 12", m.UncompressedSize)
	}

	if len(m.Chunks) != 2 {
		t.Fatalf("Chunks = %d, want 2", len(m.Chunks))
	}
	if m.Chunks[0] != (ChunkInfo{ID: 0x100, Offset: 0, Length: 4}) {
		t.Errorf("chunk 0 = %+v", m.Chunks[0])
	}
	if m.Chunks[1] != (ChunkInfo{ID: 0x200, Offset: 4, Length: 8}) {
		t.Errorf("chunk 1 = %+v", m.Chunks[1])
	}

	header := stream.Header()
	if m.Sha1 != hex.EncodeToString(header.Sha1[:]) {
		t.Errorf("Sha1 = %s, want header digest", m.Sha1)
	}
	if len(m.Sha1) != sha1.Size*2 {
		t.Errorf("Sha1 hex length = %d, want %d", len(m.Sha1), sha1.Size*2)
	}
}

func TestCBORRoundtrip(t *testing.T) {
	m := FromStream(openContainer(t, buildContainer(t)))

	encoded, err := EncodeCBOR(m)
	if err != nil {
		t.Fatalf("EncodeCBOR failed: %v", err)
	}

	decoded, err := DecodeCBOR(encoded)
	if err != nil {
		t.Fatalf("DecodeCBOR failed: %v", err)
	}

	if decoded.Magic != m.Magic || decoded.Sha1 != m.Sha1 ||
		decoded.Compression != m.Compression ||
		decoded.UncompressedSize != m.UncompressedSize ||
		len(decoded.Chunks) != len(m.Chunks) {
		t.Errorf("roundtrip mismatch:\n got %+v\nwant %+v", decoded, m)
	}
	for i := range m.Chunks {
		if decoded.Chunks[i] != m.Chunks[i] {
			t.Errorf("chunk %d = %+v, want %+v", i, decoded.Chunks[i], m.Chunks[i])
		}
	}
}

func TestCBORDeterministic(t *testing.T) {
	m := FromStream(openContainer(t, buildContainer(t)))

	first, err := EncodeCBOR(m)
	if err != nil {
		t.Fatalf("EncodeCBOR failed: %v", err)
	}
	second, err := EncodeCBOR(m)
	if err != nil {
		t.Fatalf("EncodeCBOR failed: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Error("identical manifests encoded to different CBOR")
	}
}

func TestDecodeCBORGarbage(t *testing.T) {
	if _, err := DecodeCBOR([]byte("not cbor at all")); err == nil {
		t.Error("DecodeCBOR of garbage should fail")
	}
}

func TestEncodeJSON(t *testing.T) {
	m := FromStream(openContainer(t, buildContainer(t)))

	data, err := EncodeJSON(m)
	if err != nil {
		t.Fatalf("EncodeJSON failed: %v", err)
	}
	text := string(data)
	for _, want := range []string{`"compression": "gzip"`, `"chunks"`, `"sha1"`} {
		if !strings.Contains(text, want) {
			t.Errorf("JSON output missing %s:\n%s", want, text)
		}
	}
}

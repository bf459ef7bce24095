// Copyright 2026 The Strata Authors
// SPDX-License-Identifier: Apache-2.0

package memstream

import (
	"bytes"
	"errors"
	"testing"
)

func TestWriteThenRead(t *testing.T) {
	s := New()
	s.Write([]byte("hello "))
	s.Write([]byte("world"))

	if s.Len() != 11 {
		t.Fatalf("Len = %d, want 11", s.Len())
	}
	if s.Position() != 11 {
		t.Fatalf("Position = %d, want 11", s.Position())
	}

	if err := s.SetPosition(0); err != nil {
		t.Fatalf("SetPosition(0) failed: %v", err)
	}
	got := make([]byte, 11)
	if err := s.Read(got); err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if !bytes.Equal(got, []byte("hello world")) {
		t.Errorf("Read = %q, want %q", got, "hello world")
	}
}

func TestReadPastEnd(t *testing.T) {
	s := FromBytes([]byte{1, 2, 3})

	got := make([]byte, 4)
	err := s.Read(got)
	if !errors.Is(err, ErrUnexpectedEndOfStream) {
		t.Fatalf("Read past end = %v, want ErrUnexpectedEndOfStream", err)
	}

	// A failed read must not consume anything.
	if s.Position() != 0 {
		t.Errorf("Position after failed read = %d, want 0", s.Position())
	}
	small := make([]byte, 3)
	if err := s.Read(small); err != nil {
		t.Errorf("Read of available bytes failed: %v", err)
	}
}

func TestOverwriteMidStream(t *testing.T) {
	s := New()
	s.Write([]byte("abcdef"))

	if err := s.SetPosition(2); err != nil {
		t.Fatalf("SetPosition failed: %v", err)
	}
	s.Write([]byte("XY"))

	if !bytes.Equal(s.Bytes(), []byte("abXYef")) {
		t.Errorf("Bytes = %q, want %q", s.Bytes(), "abXYef")
	}
	if s.Position() != 4 {
		t.Errorf("Position = %d, want 4", s.Position())
	}
}

func TestOverwriteGrowsPastEnd(t *testing.T) {
	s := New()
	s.Write([]byte("abcd"))

	if err := s.SetPosition(2); err != nil {
		t.Fatalf("SetPosition failed: %v", err)
	}
	s.Write([]byte("123456"))

	if !bytes.Equal(s.Bytes(), []byte("ab123456")) {
		t.Errorf("Bytes = %q, want %q", s.Bytes(), "ab123456")
	}
	if s.Len() != 8 {
		t.Errorf("Len = %d, want 8", s.Len())
	}
}

func TestSetPositionBounds(t *testing.T) {
	s := FromBytes([]byte{1, 2, 3})

	if err := s.SetPosition(3); err != nil {
		t.Errorf("SetPosition(Len()) should be valid: %v", err)
	}
	if err := s.SetPosition(4); err == nil {
		t.Error("SetPosition past end should fail")
	}
	if err := s.SetPosition(-1); err == nil {
		t.Error("SetPosition(-1) should fail")
	}
}

func TestAppendAtEndAfterSeek(t *testing.T) {
	s := FromBytes([]byte("ab"))
	if err := s.SetPosition(2); err != nil {
		t.Fatalf("SetPosition failed: %v", err)
	}
	s.Write([]byte("cd"))
	if !bytes.Equal(s.Bytes(), []byte("abcd")) {
		t.Errorf("Bytes = %q, want %q", s.Bytes(), "abcd")
	}
}

func TestClear(t *testing.T) {
	s := New()
	s.Write([]byte("data"))
	s.Clear()

	if s.Len() != 0 {
		t.Errorf("Len after Clear = %d, want 0", s.Len())
	}
	if s.Position() != 0 {
		t.Errorf("Position after Clear = %d, want 0", s.Position())
	}

	// Stream is reusable after Clear.
	s.Write([]byte("xy"))
	if !bytes.Equal(s.Bytes(), []byte("xy")) {
		t.Errorf("Bytes after reuse = %q, want %q", s.Bytes(), "xy")
	}
}

func TestZeroValue(t *testing.T) {
	var s Stream
	s.Write([]byte{42})
	if s.Len() != 1 || s.Bytes()[0] != 42 {
		t.Errorf("zero-value stream write: Len=%d Bytes=%v", s.Len(), s.Bytes())
	}
}

func TestLargeGrowth(t *testing.T) {
	s := New()
	chunk := bytes.Repeat([]byte{7}, 1000)
	for i := 0; i < 100; i++ {
		s.Write(chunk)
	}
	if s.Len() != 100000 {
		t.Fatalf("Len = %d, want 100000", s.Len())
	}
	for i, b := range s.Bytes() {
		if b != 7 {
			t.Fatalf("byte %d = %d, want 7", i, b)
		}
	}
}

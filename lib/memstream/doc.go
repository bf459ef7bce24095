// Copyright 2026 The Strata Authors
// SPDX-License-Identifier: Apache-2.0

// Package memstream provides a growable in-memory byte buffer with a
// position cursor. Unlike bytes.Buffer it supports seeking, and unlike
// bytes.Reader it supports writing: the container payload is built and
// re-read through the same buffer, with array framing seeking backwards
// to patch frame headers.
package memstream

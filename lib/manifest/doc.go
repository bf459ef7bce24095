// Copyright 2026 The Strata Authors
// SPDX-License-Identifier: Apache-2.0

// Package manifest builds self-describing summaries of a container —
// header fields plus the chunk directory — without decoding any chunk
// payloads. Manifests serialize to deterministic CBOR for tooling
// pipelines and to JSON for human inspection.
package manifest

// Package diag defines the diagnostic model shared by analysis phases.
//
// Diagnostic is the central record: severity, stable numeric code, message,
// a primary source span and optional notes. Producers emit through the
// Reporter interface; Bag accumulates with a cap and deterministic sort.
// Rendering lives in internal/diagfmt.
//
// The interior analysis itself has no user-facing error surface; the codes
// here cover artifact decoding and body validation, which run before it.
package diag

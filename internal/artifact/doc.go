// Package artifact provides the deterministic value model behind every
// rendered artifact: report JSON, chart payloads, and input fingerprints.
//
// This package imports nothing internal; every other internal package may
// import it. The value model is sealed so each encoder handles every type
// that can exist, and the two encodings (canonical compact and indented)
// share one traversal: byte-identical key order, string normalization, and
// float formatting everywhere.
//
// Key design constraints:
//   - Object keys sort by UTF-16 code units (RFC 8785), not UTF-8 bytes
//   - Strings NFC-normalize at the encoding boundary
//   - Floats must be finite; producers guard divisions before building values
//   - Counts are Int, never Float, so large extracts stay exact
package artifact

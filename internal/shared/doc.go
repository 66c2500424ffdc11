// Package shared groups helpers used across the board's packages.
//
// testutil holds test-only helpers: a capturing slog handler, the sample
// ERP exports used as fixtures and a helper to drop them into a watched
// directory with a chosen modification time. Nothing here is imported by
// production code.
package shared

// Package testutils provides testing utilities shared across packages:
// an in-memory slog handler for asserting on log output, HTTP helpers for
// driving handlers through httptest, and fakes for the startup dependencies.
package testutils

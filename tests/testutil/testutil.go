package testutil

import (
	"testing"
)

// MustSetTestEnvironment switches GO_ENV to test and points DATABASE_URL at
// an in-memory SQLite database for the duration of t, so config.Load never
// picks up a developer database
func MustSetTestEnvironment(t *testing.T) {
	t.Helper()
	t.Setenv("GO_ENV", "test")
	t.Setenv("DATABASE_URL", "sqlite://file::memory:?cache=shared")
}

package testutil

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/successar/multikeydb/internal/store"
)

// OpenStore opens a store in a temp directory and closes it when the test
// ends.
//
// Tests inside package store cannot use this helper (import cycle).
func OpenStore(t testing.TB, opts ...store.Option) *store.Store {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

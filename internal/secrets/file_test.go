package secrets

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeKeyFile(t *testing.T, dir, name, content string, mode os.FileMode) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o700))
	require.NoError(t, os.WriteFile(path, []byte(content), mode))
	require.NoError(t, os.Chmod(path, mode))
}

func TestKeyFileStoreReadsTrimmedValue(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeKeyFile(t, dir, "account/signer", "abcdef\n", 0o600)

	got, err := NewKeyFileStore(dir).Get(context.Background(), "account/signer")
	require.NoError(t, err)
	assert.Equal(t, "abcdef", got)
}

func TestKeyFileStoreRejectsPermissiveMode(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeKeyFile(t, dir, "signer", "abcdef", 0o644)

	_, err := NewKeyFileStore(dir).Get(context.Background(), "signer")
	require.Error(t, err)
	assert.ErrorContains(t, err, "0644")
	assert.NotContains(t, err.Error(), "abcdef")
}

func TestKeyFileStoreRejectsInvalidKeys(t *testing.T) {
	t.Parallel()

	store := NewKeyFileStore(t.TempDir())
	testCases := []struct {
		name    string
		key     string
		wantErr string
	}{
		{name: "empty", key: "", wantErr: "secret key is empty"},
		{name: "whitespace", key: "   ", wantErr: "secret key is empty"},
		{name: "absolute", key: "/absolute/path", wantErr: "escapes"},
		{name: "traversal", key: "../escape", wantErr: "escapes"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := store.Get(context.Background(), tc.key)
			require.Error(t, err)
			assert.ErrorContains(t, err, tc.wantErr)
		})
	}
}

func TestKeyFileStoreMissingOrEmptyIsNotFound(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeKeyFile(t, dir, "blank", "  \n", 0o600)
	store := NewKeyFileStore(dir)

	_, err := store.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = store.Get(context.Background(), "blank")
	assert.ErrorIs(t, err, ErrNotFound)
}

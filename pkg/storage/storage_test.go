package storage

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignerRoundTrip(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	signer := NewSigner("secret", time.Hour)
	signer.now = func() time.Time { return now }

	token, expiresAt, err := signer.Sign("mentor-1", "mentor-1/statement.csv")
	require.NoError(t, err)
	assert.Equal(t, now.Add(time.Hour), expiresAt)

	grant, err := signer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "mentor-1", grant.Owner)
	assert.Equal(t, "mentor-1/statement.csv", grant.Path)
}

func TestSignerRejectsTamperedAndExpired(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	signer := NewSigner("secret", time.Minute)
	signer.now = func() time.Time { return now }

	token, _, err := signer.Sign("mentor-1", "a.csv")
	require.NoError(t, err)

	other := NewSigner("other", time.Minute)
	other.now = signer.now
	_, err = other.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = signer.Verify("garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)

	signer.now = func() time.Time { return now.Add(2 * time.Minute) }
	_, err = signer.Verify(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestLocalStoreSaveOpenSweep(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Save("m1/s.csv", []byte("a,b")))
	f, err := store.Open("m1/s.csv")
	require.NoError(t, err)
	body, err := io.ReadAll(f)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	assert.Equal(t, "a,b", string(body))

	old := time.Now().Add(-2 * time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(store.baseDir, "m1", "s.csv"), old, old))
	removed, err := store.Sweep(time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, []string{"m1/s.csv"}, removed)

	require.NoError(t, store.Remove("m1/s.csv"))
}

func TestLocalStoreRejectsTraversal(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)
	assert.ErrorIs(t, store.Save("../escape.csv", nil), ErrInvalidPath)
	_, err = store.Open("/etc/passwd")
	assert.ErrorIs(t, err, ErrInvalidPath)
}

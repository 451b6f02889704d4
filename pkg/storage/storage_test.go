package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")

	fs, err := OpenFile(path)
	require.NoError(t, err)

	_, ok := fs.Get(KeyUser)
	assert.False(t, ok)

	require.NoError(t, fs.Set(KeyUser, `{"id":7}`))
	require.NoError(t, fs.Set(KeyToken, "t1"))

	// a fresh open sees what the first instance wrote
	fs2, err := OpenFile(path)
	require.NoError(t, err)
	v, ok := fs2.Get(KeyUser)
	require.True(t, ok)
	assert.Equal(t, `{"id":7}`, v)
	v, ok = fs2.Get(KeyToken)
	require.True(t, ok)
	assert.Equal(t, "t1", v)
}

func TestFileStoreRemove(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	fs, err := OpenFile(path)
	require.NoError(t, err)

	require.NoError(t, fs.Set(KeyToken, "t1"))
	require.NoError(t, fs.Remove(KeyToken))
	_, ok := fs.Get(KeyToken)
	assert.False(t, ok)

	require.NoError(t, fs.Remove("never-existed"))
}

func TestFileStoreCorruptFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0o600))

	fs, err := OpenFile(path)
	require.NoError(t, err)
	_, ok := fs.Get(KeyUser)
	assert.False(t, ok)

	// the next write replaces the corrupt file with valid JSON
	require.NoError(t, fs.Set(KeyUser, `{"id":1}`))
	fs2, err := OpenFile(path)
	require.NoError(t, err)
	_, ok = fs2.Get(KeyUser)
	assert.True(t, ok)
}

func TestFileStoreClearRemovesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	fs, err := OpenFile(path)
	require.NoError(t, err)
	require.NoError(t, fs.Set(KeyUser, "u"))

	require.NoError(t, fs.Clear())
	_, ok := fs.Get(KeyUser)
	assert.False(t, ok)
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestFileStoreCreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "session.json")
	fs, err := OpenFile(path)
	require.NoError(t, err)
	require.NoError(t, fs.Set(KeyToken, "t"))
	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestMemoryStore(t *testing.T) {
	m := NewMemory()
	require.NoError(t, m.Set(KeyUser, "u"))
	v, ok := m.Get(KeyUser)
	require.True(t, ok)
	assert.Equal(t, "u", v)

	require.NoError(t, m.Clear())
	_, ok = m.Get(KeyUser)
	assert.False(t, ok)
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.db")
	s, err := OpenSQLite(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	_, ok := s.Get(KeyToken)
	assert.False(t, ok)

	require.NoError(t, s.Set(KeyToken, "t1"))
	require.NoError(t, s.Set(KeyToken, "t2"), "upsert replaces")
	v, ok := s.Get(KeyToken)
	require.True(t, ok)
	assert.Equal(t, "t2", v)

	require.NoError(t, s.Remove(KeyToken))
	_, ok = s.Get(KeyToken)
	assert.False(t, ok)
}

func TestSQLiteStoreClear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.db")
	s, err := OpenSQLite(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.Set(KeyUser, "u"))
	require.NoError(t, s.Set(KeyToken, "t"))
	require.NoError(t, s.Clear())
	_, ok := s.Get(KeyUser)
	assert.False(t, ok)
	_, ok = s.Get(KeyToken)
	assert.False(t, ok)
}

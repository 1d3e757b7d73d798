package dedup

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddAndSeen(t *testing.T) {
	cache, err := Open(t.TempDir())
	require.NoError(t, err)

	assert.False(t, cache.Seen("https://board.test/job/1"))
	require.NoError(t, cache.Add([]string{"https://board.test/job/1", "https://board.test/job/2"}))
	assert.True(t, cache.Seen("https://board.test/job/1"))
	assert.True(t, cache.Seen("https://board.test/job/2"))
	assert.False(t, cache.Seen("https://board.test/job/3"))
}

func TestPersistsAcrossOpens(t *testing.T) {
	dir := t.TempDir()

	first, err := Open(dir)
	require.NoError(t, err)
	require.NoError(t, first.Add([]string{"job-a"}))

	second, err := Open(dir)
	require.NoError(t, err)
	assert.True(t, second.Seen("job-a"))
}

func TestExpiresOldEntries(t *testing.T) {
	dir := t.TempDir()
	stale, _ := json.Marshal([]entry{
		{Key: "old", SeenAt: time.Now().Add(-31 * 24 * time.Hour)},
		{Key: "fresh", SeenAt: time.Now().Add(-time.Hour)},
	})
	require.NoError(t, os.WriteFile(filepath.Join(dir, "seen_jobs.json"), stale, 0o644))

	cache, err := Open(dir)
	require.NoError(t, err)
	assert.False(t, cache.Seen("old"))
	assert.True(t, cache.Seen("fresh"))
	assert.Equal(t, 1, cache.Len())
}

func TestCorruptCacheFileIsAnError(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "seen_jobs.json"), []byte("{nope"), 0o644))
	_, err := Open(dir)
	assert.Error(t, err)
}

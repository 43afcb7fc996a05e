package metrics

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetSysHealth(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "caterpro.db")
	statePath := filepath.Join(dir, "state.json")

	require.NoError(t, os.WriteFile(dbPath, bytes.Repeat([]byte("x"), 2048), 0644))
	require.NoError(t, os.WriteFile(statePath, []byte(`{"version":2}`), 0644))

	health := GetSysHealth(dbPath, statePath)

	assert.Equal(t, "2.0 KB", health.DatabaseSize)
	assert.Equal(t, "13 B", health.StateSize)
	assert.Greater(t, health.Goroutines, 0)
}

func TestGetSysHealthMissingFiles(t *testing.T) {
	dir := t.TempDir()

	health := GetSysHealth(filepath.Join(dir, "absent.db"), filepath.Join(dir, "absent.json"))

	assert.Equal(t, "0 B", health.DatabaseSize)
	assert.Equal(t, "0 B", health.StateSize)
}

func TestHumanSize(t *testing.T) {
	cases := []struct {
		size int64
		want string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
		{5 * 1024 * 1024, "5.0 MB"},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, humanSize(tc.size))
	}
}

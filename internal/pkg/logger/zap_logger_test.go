package logger

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsolatedLoggerReadsBackNewestFirst(t *testing.T) {
	path := filepath.Join(t.TempDir(), "incidents.log")
	l := NewIsolatedLogger(path)

	l.Info(ModuleLedger, "first", map[string]interface{}{"n": 1})
	l.Error(ModuleLedger, "second", map[string]interface{}{"error": "boom"})
	l.Debug(ModuleLedger, "below threshold", nil)
	require.NoError(t, l.Sync())

	entries, err := l.GetLogs("", 10, 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "second", entries[0].Message)
	assert.Equal(t, "ERROR", entries[0].Level)
	assert.Equal(t, ModuleLedger, entries[0].Module)
	assert.Equal(t, "boom", entries[0].Details["error"])
	assert.NotEmpty(t, entries[0].Id)

	errorsOnly, err := l.GetLogs("ERROR", 10, 0)
	require.NoError(t, err)
	assert.Len(t, errorsOnly, 1)

	paged, err := l.GetLogs("", 1, 1)
	require.NoError(t, err)
	require.Len(t, paged, 1)
	assert.Equal(t, "first", paged[0].Message)
}

func TestGetLogsWithoutFile(t *testing.T) {
	entries, err := NewNop().GetLogs("", 10, 0)
	require.NoError(t, err)
	assert.Empty(t, entries)

	missing := NewIsolatedLogger(filepath.Join(t.TempDir(), "never-written.log"))
	entries, err = missing.GetLogs("", 10, 0)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

package history_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/choidage/daker/internal/adapters/outbound/history"
	"github.com/choidage/daker/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entry(file string, overall domain.GateStatus) domain.RunEntry {
	return domain.RunEntry{
		Timestamp: time.Date(2026, 2, 25, 10, 0, 0, 0, time.UTC),
		FilePath:  file,
		Mode:      domain.ModeQuick,
		Source:    "remote",
		Overall:   overall,
		Passed:    2,
		Total:     3,
		Glyphs:    "G1:✓ G2:✓ G3:✗",
	}
}

func TestHistory_SaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	h := history.New()

	e := entry("/w/app.py", domain.StatusFailed)
	e.CommitHash = "abc1234"
	require.NoError(t, h.Save(dir, e))

	entries, err := h.Load(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, e, entries[0])
}

func TestHistory_AppendMultiple(t *testing.T) {
	dir := t.TempDir()
	h := history.New()

	require.NoError(t, h.Save(dir, entry("a.py", domain.StatusFailed)))
	require.NoError(t, h.Save(dir, entry("b.py", domain.StatusWarning)))
	require.NoError(t, h.Save(dir, entry("c.py", domain.StatusPassed)))

	entries, err := h.Load(dir)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "a.py", entries[0].FilePath)
	assert.Equal(t, domain.StatusPassed, entries[2].Overall)
}

func TestHistory_TrimsOldest(t *testing.T) {
	dir := t.TempDir()
	h := history.New().WithLimit(2)

	for _, f := range []string{"a.py", "b.py", "c.py"} {
		require.NoError(t, h.Save(dir, entry(f, domain.StatusPassed)))
	}

	entries, err := h.Load(dir)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "b.py", entries[0].FilePath)
}

func TestHistory_LoadEmpty(t *testing.T) {
	entries, err := history.New().Load(t.TempDir())
	require.NoError(t, err)
	assert.Nil(t, entries)
}

func TestHistory_LoadCorrupt(t *testing.T) {
	dir := t.TempDir()
	fp := filepath.Join(dir, ".vibex", "history", "runs.json")
	require.NoError(t, os.MkdirAll(filepath.Dir(fp), 0755))
	require.NoError(t, os.WriteFile(fp, []byte("not json"), 0644))

	_, err := history.New().Load(dir)
	assert.Error(t, err)
}

func TestHistory_LoadFile(t *testing.T) {
	dir := t.TempDir()
	h := history.New()

	require.NoError(t, h.Save(dir, entry("/w/a.py", domain.StatusFailed)))
	require.NoError(t, h.Save(dir, entry("/w/b.py", domain.StatusPassed)))
	require.NoError(t, h.Save(dir, entry("/w/a.py", domain.StatusPassed)))

	entries, err := h.LoadFile(dir, "/w/./a.py")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, domain.StatusFailed, entries[0].Overall)
	assert.Equal(t, domain.StatusPassed, entries[1].Overall)

	entries, err = h.LoadFile(dir, "/w/c.py")
	require.NoError(t, err)
	assert.Empty(t, entries)

	_, err = os.Stat(filepath.Join(dir, ".vibex", "history", "runs.json.tmp"))
	assert.True(t, os.IsNotExist(err))
}

package preview

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWatcher_ErrorsWhenDirMissing(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "does-not-exist", "index.md")
	_, err := newWatcher([]string{missing}, time.Millisecond, func() {}, quietLogger())
	require.Error(t, err)
}

func TestNewWatcher_ResolvesAbsolutePaths(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile("site.yaml", []byte("site: {}"), 0o644))

	w, err := newWatcher([]string{"site.yaml", ""}, time.Millisecond, func() {}, quietLogger())
	require.NoError(t, err)
	defer func() { _ = w.Close() }()

	require.Len(t, w.files, 1)
	for p := range w.files {
		assert.True(t, filepath.IsAbs(p))
		assert.Equal(t, "site.yaml", filepath.Base(p))
	}
}

func TestWatcherDebouncesChanges(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "index.md")
	other := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(src, []byte("a"), 0o644))

	var fired atomic.Int32
	w, err := newWatcher([]string{src}, 50*time.Millisecond, func() { fired.Add(1) }, quietLogger())
	require.NoError(t, err)
	defer func() { _ = w.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.run(ctx)

	require.NoError(t, os.WriteFile(other, []byte("ignored"), 0o644))
	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(src, []byte{byte('b' + i)}, 0o644))
	}

	require.Eventually(t, func() bool { return fired.Load() >= 1 }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, int32(1), fired.Load())
}

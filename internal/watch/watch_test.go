package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taitai9847/prechecker/internal/logging"
)

func TestWatcher_RunsOnChange(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "data.csv")
	other := filepath.Join(dir, "other.csv")
	require.NoError(t, os.WriteFile(target, []byte("a\n"), 0o644))

	w, err := New([]string{target}, 50*time.Millisecond, logging.NewNop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls atomic.Int32
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(context.Context) error {
			calls.Add(1)
			return nil
		})
	}()

	// give the watcher time to register
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(other, []byte("ignored\n"), 0o644))
	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(target, []byte("a\n1\n"), 0o644))
	}

	assert.Eventually(t, func() bool { return calls.Load() >= 1 }, 2*time.Second, 20*time.Millisecond)
	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load(), "burst is debounced into one run")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}

func TestWatcher_Relevant(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "schema.sql")
	w, err := New([]string{target}, 0, logging.NewNop())
	require.NoError(t, err)
	assert.Equal(t, DefaultDebounce, w.debounce)

	assert.True(t, w.relevant(fsnotify.Event{Name: target, Op: fsnotify.Write}))
	assert.True(t, w.relevant(fsnotify.Event{Name: target, Op: fsnotify.Create}))
	assert.False(t, w.relevant(fsnotify.Event{Name: target, Op: fsnotify.Chmod}))
	assert.False(t, w.relevant(fsnotify.Event{Name: filepath.Join(dir, "x.sql"), Op: fsnotify.Write}))
}

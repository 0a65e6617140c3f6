package watcher_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/wasmbed/internal/adapters/watcher"
	"go.trai.ch/wasmbed/internal/core/ports"
	"go.trai.ch/wasmbed/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func TestWatcher_ReportsWatchedFilesOnly(t *testing.T) {
	ctrl := gomock.NewController(t)
	logger := mocks.NewMockLogger(ctrl)
	logger.EXPECT().Warn(gomock.Any()).AnyTimes()

	dir := t.TempDir()
	watched := filepath.Join(dir, "lib.wb.rs")
	other := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(watched, []byte("mod a {}"), 0o600))

	w, err := watcher.NewWatcher(logger)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx, []string{watched}))

	got := make(chan ports.WatchEvent, 1)
	go func() {
		for ev := range w.Events() {
			got <- ev
			return
		}
	}()

	require.NoError(t, os.WriteFile(other, []byte("ignored"), 0o600))
	require.NoError(t, os.WriteFile(watched, []byte("mod b {}"), 0o600))

	select {
	case ev := <-got:
		assert.Equal(t, watched, ev.Path)
	case <-time.After(5 * time.Second):
		t.Fatal("no event for the watched file")
	}

	require.NoError(t, w.Stop())
}

func TestWatcher_EventsEndAfterStop(t *testing.T) {
	w, err := watcher.NewWatcher(nil)
	require.NoError(t, err)

	dir := t.TempDir()
	require.NoError(t, w.Start(context.Background(), []string{filepath.Join(dir, "lib.wb.rs")}))

	done := make(chan struct{})
	go func() {
		for range w.Events() {
		}
		close(done)
	}()

	require.NoError(t, w.Stop())

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("events did not end after Stop")
	}
}

func TestWatcher_StartMissingDirectory(t *testing.T) {
	w, err := watcher.NewWatcher(nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Stop() })

	missing := filepath.Join(t.TempDir(), "absent", "lib.wb.rs")
	assert.Error(t, w.Start(context.Background(), []string{missing}))
}

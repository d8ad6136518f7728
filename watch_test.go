package logging

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestWatchLevel_AppliesChanges(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	console := &lockedBuffer{}
	h, _, _ := newTestHandle(t, WithFormat("{{.Level}} {{.Message}}"), WithLevel("info"), WithConsole(console))
	path := filepath.Join(t.TempDir(), "logging.yaml")
	require.NoError(t, os.WriteFile(path, []byte("level: info\n"), 0o644))

	w, err := WatchLevel(context.Background(), path, h, WithDebounce(20*time.Millisecond))
	require.NoError(t, err)
	defer func() { assert.NoError(t, w.Stop()) }()

	require.NoError(t, os.WriteFile(path, []byte("level: debug\n"), 0o644))
	assert.Eventually(t, func() bool { return h.Level() == LevelDebug }, 5*time.Second, 10*time.Millisecond)
	assert.Eventually(t, func() bool {
		return strings.Contains(console.String(), "INFO log level changed")
	}, time.Second, 10*time.Millisecond)

	// an unparsable level is reported and ignored
	require.NoError(t, os.WriteFile(path, []byte("level: loud\n"), 0o644))
	assert.Eventually(t, func() bool {
		return strings.Contains(console.String(), "WARNING config reload failed")
	}, 5*time.Second, 10*time.Millisecond)
	assert.Equal(t, LevelDebug, h.Level())

	// replacing the file also triggers a reload
	tmp := path + ".tmp"
	require.NoError(t, os.WriteFile(tmp, []byte("level: error\n"), 0o644))
	require.NoError(t, os.Rename(tmp, path))
	assert.Eventually(t, func() bool { return h.Level() == LevelError }, 5*time.Second, 10*time.Millisecond)
}

func TestWatchLevel_ContextCancel(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	h, _, _ := newTestHandle(t)
	path := filepath.Join(t.TempDir(), "logging.json")

	ctx, cancel := context.WithCancel(context.Background())
	w, err := WatchLevel(ctx, path, h)
	require.NoError(t, err)

	cancel()
	select {
	case <-w.done:
	case <-time.After(5 * time.Second):
		t.Fatal("watch goroutine did not exit")
	}
	assert.NoError(t, w.Stop())
	assert.NoError(t, w.Stop())
}

func TestWatchLevel_Errors(t *testing.T) {
	_, err := WatchLevel(context.Background(), "logging.yaml", nil)
	assert.True(t, IsConfigurationError(err))

	h, _, _ := newTestHandle(t)
	_, err = WatchLevel(context.Background(), filepath.Join(t.TempDir(), "missing", "logging.yaml"), h)
	require.Error(t, err)
	assert.True(t, IsIOError(err))
}

// lockedBuffer is read by the test while the watch goroutine writes to it.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

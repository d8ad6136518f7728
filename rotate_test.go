package logging

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeAll(t *testing.T, w interface{ Write([]byte) (int, error) }, lines ...string) {
	t.Helper()
	for _, l := range lines {
		n, err := w.Write([]byte(l))
		require.NoError(t, err)
		require.Equal(t, len(l), n)
	}
}

func TestNumberedRotator(t *testing.T) {
	t.Run("rolls over past the threshold", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "app.log")
		r, err := openNumberedRotator(path, 10, 2)
		require.NoError(t, err)
		t.Cleanup(func() { _ = r.Close() })

		writeAll(t, r, "aaaa\n", "bbbb\n") // exactly 10 bytes, no rollover
		assert.Equal(t, "aaaa\nbbbb\n", readFile(t, path))
		assert.NoFileExists(t, path+".1")

		writeAll(t, r, "cccc\n")
		assert.Equal(t, "cccc\n", readFile(t, path))
		assert.Equal(t, "aaaa\nbbbb\n", readFile(t, path+".1"))

		writeAll(t, r, "dddd\n", "eeee\n")
		assert.Equal(t, "eeee\n", readFile(t, path))
		assert.Equal(t, "cccc\ndddd\n", readFile(t, path+".1"))
		assert.Equal(t, "aaaa\nbbbb\n", readFile(t, path+".2"))

		writeAll(t, r, "ffff\n", "gggg\n")
		assert.Equal(t, "gggg\n", readFile(t, path))
		assert.Equal(t, "eeee\nffff\n", readFile(t, path+".1"))
		assert.Equal(t, "cccc\ndddd\n", readFile(t, path+".2"))
		assert.NoFileExists(t, path+".3", "oldest backup is dropped")
	})

	t.Run("oversized record goes into a fresh file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "big.log")
		r, err := openNumberedRotator(path, 4, 1)
		require.NoError(t, err)
		t.Cleanup(func() { _ = r.Close() })

		writeAll(t, r, "0123456789\n")
		assert.Equal(t, "0123456789\n", readFile(t, path), "empty file is never rotated")

		writeAll(t, r, "x\n")
		assert.Equal(t, "x\n", readFile(t, path))
		assert.Equal(t, "0123456789\n", readFile(t, path+".1"))
	})

	t.Run("zero backups keeps every line", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "keep.log")
		r, err := openNumberedRotator(path, 20, 0)
		require.NoError(t, err)
		t.Cleanup(func() { _ = r.Close() })

		writeAll(t, r, "first-line-0123\n", "second-line-012\n", "third-line-0123\n")
		require.NoError(t, r.Rotate())
		writeAll(t, r, "after-rotate-01\n")

		assert.Equal(t, "first-line-0123\nsecond-line-012\nthird-line-0123\nafter-rotate-01\n", readFile(t, path))
		entries, err := os.ReadDir(filepath.Dir(path))
		require.NoError(t, err)
		assert.Len(t, entries, 1, "no backups are created")
	})

	t.Run("rotate recovers after a failed rollover", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "recover.log")
		r, err := openNumberedRotator(path, DefaultMaxBytes, 1)
		require.NoError(t, err)
		t.Cleanup(func() { _ = r.Close() })

		// a non-empty directory where the oldest backup goes cannot be removed
		blocker := path + ".1"
		require.NoError(t, os.MkdirAll(filepath.Join(blocker, "child"), 0o755))

		writeAll(t, r, "kept\n")
		err = r.Rotate()
		require.Error(t, err)
		assert.True(t, IsIOError(err))

		require.NoError(t, os.RemoveAll(blocker))
		require.NoError(t, r.Rotate())
		writeAll(t, r, "fresh\n")

		assert.Equal(t, "kept\n", readFile(t, path+".1"))
		assert.Equal(t, "fresh\n", readFile(t, path))
	})

	t.Run("zero max bytes never rotates", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "grow.log")
		r, err := openNumberedRotator(path, 0, 3)
		require.NoError(t, err)
		t.Cleanup(func() { _ = r.Close() })

		for i := 0; i < 100; i++ {
			writeAll(t, r, "line\n")
		}
		assert.Equal(t, strings.Repeat("line\n", 100), readFile(t, path))
		assert.NoFileExists(t, path+".1")
	})

	t.Run("appends to an existing file and counts its size", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "existing.log")
		require.NoError(t, os.WriteFile(path, []byte("12345678\n"), fileMode))

		r, err := openNumberedRotator(path, 10, 1)
		require.NoError(t, err)
		t.Cleanup(func() { _ = r.Close() })

		writeAll(t, r, "ab\n")
		assert.Equal(t, "ab\n", readFile(t, path))
		assert.Equal(t, "12345678\n", readFile(t, path+".1"))
	})

	t.Run("forced rotate and close", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "forced.log")
		r, err := openNumberedRotator(path, DefaultMaxBytes, 3)
		require.NoError(t, err)

		writeAll(t, r, "before\n")
		require.NoError(t, r.Rotate())
		writeAll(t, r, "after\n")

		assert.Equal(t, "after\n", readFile(t, path))
		assert.Equal(t, "before\n", readFile(t, path+".1"))

		require.NoError(t, r.Close())
		require.NoError(t, r.Close())
		_, err = r.Write([]byte("late\n"))
		assert.ErrorIs(t, err, ErrClosed)
		assert.ErrorIs(t, r.Rotate(), ErrClosed)
	})
}

func TestNewRotator(t *testing.T) {
	t.Run("creates parent directories", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "a", "b", "c.log")
		cfg := defaultOptions()
		cfg.FilePath = path

		r, err := newRotator(cfg)
		require.NoError(t, err)
		t.Cleanup(func() { _ = r.Close() })

		assert.IsType(t, &numberedRotator{}, r)
		assert.FileExists(t, path)
	})

	t.Run("timestamped uses lumberjack", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "ts", "svc.log")
		cfg := defaultOptions()
		cfg.FilePath = path
		cfg.Rotation = RotationTimestamped
		cfg.MaxBytes = 3 * megabyte / 2
		cfg.BackupCount = 4
		cfg.MaxAgeDays = 7
		cfg.Compress = true

		r, err := newRotator(cfg)
		require.NoError(t, err)
		t.Cleanup(func() { _ = r.Close() })

		lj, ok := r.(*rollingFile)
		require.True(t, ok)
		assert.True(t, lj.rollover)
		assert.Equal(t, path, lj.Filename)
		assert.Equal(t, 2, lj.MaxSize, "megabytes round up")
		assert.Equal(t, 4, lj.MaxBackups)
		assert.Equal(t, 7, lj.MaxAge)
		assert.True(t, lj.Compress)
		assert.FileExists(t, path, "file is touched during setup")
	})

	t.Run("timestamped rotate", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "svc.log")
		cfg := defaultOptions()
		cfg.FilePath = path
		cfg.Rotation = RotationTimestamped

		r, err := newRotator(cfg)
		require.NoError(t, err)
		t.Cleanup(func() { _ = r.Close() })

		writeAll(t, r, "before\n")
		require.NoError(t, r.Rotate())
		writeAll(t, r, "after\n")
		assert.Equal(t, "after\n", readFile(t, path))

		matches, err := filepath.Glob(filepath.Join(filepath.Dir(path), "svc-*.log"))
		require.NoError(t, err)
		assert.NotEmpty(t, matches, "timestamped backup exists")
	})

	t.Run("timestamped with zero backups keeps every line", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "keep.log")
		cfg := defaultOptions()
		cfg.FilePath = path
		cfg.Rotation = RotationTimestamped
		cfg.MaxBytes = megabyte
		cfg.BackupCount = 0

		r, err := newRotator(cfg)
		require.NoError(t, err)
		t.Cleanup(func() { _ = r.Close() })

		writeAll(t, r, "one\n")
		for i := 0; i < 4; i++ {
			require.NoError(t, r.Rotate())
		}
		writeAll(t, r, "two\n")

		assert.Equal(t, "one\ntwo\n", readFile(t, path))
		entries, err := os.ReadDir(filepath.Dir(path))
		require.NoError(t, err)
		assert.Len(t, entries, 1)
		assert.Equal(t, math.MaxInt32, r.(*rollingFile).MaxSize, "size rotation is off")
	})

	t.Run("timestamped with zero max bytes", func(t *testing.T) {
		cfg := defaultOptions()
		cfg.FilePath = filepath.Join(t.TempDir(), "unbounded.log")
		cfg.MaxBytes = 0
		assert.Greater(t, newRollingFileLogger(cfg).MaxSize, 1<<20)
	})

	t.Run("directory creation failure is an io error", func(t *testing.T) {
		blocker := filepath.Join(t.TempDir(), "file")
		require.NoError(t, os.WriteFile(blocker, nil, fileMode))

		cfg := defaultOptions()
		cfg.FilePath = filepath.Join(blocker, "x.log")
		_, err := newRotator(cfg)
		require.Error(t, err)
		assert.True(t, IsIOError(err))
	})
}

func TestHandle_Rotate(t *testing.T) {
	h, _, path := newTestHandle(t, WithFormat("{{.Message}}"), WithoutConsole())

	h.InfoWith().Msg("first")
	require.NoError(t, h.Rotate())
	h.InfoWith().Msg("second")

	assert.Equal(t, "second\n", readFile(t, path))
	assert.Equal(t, "first\n", readFile(t, path+".1"))

	require.NoError(t, h.Close())
	err := h.Rotate()
	require.Error(t, err)
	assert.True(t, hasCause(err, ErrClosed))

	var nilHandle *Handle
	assert.True(t, IsConfigurationError(nilHandle.Rotate()))
}

func TestHandle_SizeRotationThroughSink(t *testing.T) {
	h, _, path := newTestHandle(t,
		WithFormat("{{.Message}}"),
		WithoutConsole(),
		WithMaxBytes(64),
		WithBackupCount(2),
	)

	for i := 0; i < 40; i++ {
		h.InfoWith().Msg("0123456789")
	}

	for _, p := range []string{path, path + ".1", path + ".2"} {
		info, err := os.Stat(p)
		require.NoError(t, err, p)
		assert.LessOrEqual(t, info.Size(), int64(64), p)
		assert.Zero(t, info.Size()%int64(len("0123456789\n")), "lines are never split")
	}
	assert.NoFileExists(t, path+".3")
}

package logging

import (
	"context"
	stderrs "errors"
	"path/filepath"
	"sync"
	"time"

	"github.com/Station-Manager/errors"
	"github.com/fsnotify/fsnotify"
)

const defaultWatchDebounce = 100 * time.Millisecond

// WatchOption configures a LevelWatcher.
type WatchOption func(*LevelWatcher)

// WithDebounce coalesces bursts of file events; editors often write a file in
// several steps.
func WithDebounce(d time.Duration) WatchOption {
	return func(w *LevelWatcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// LevelWatcher re-reads a config file whenever it changes and applies its
// level to a handle. Reload failures are logged through the handle itself
// and leave the current level in place.
type LevelWatcher struct {
	path     string
	handle   *Handle
	watcher  *fsnotify.Watcher
	debounce time.Duration

	cancel context.CancelFunc
	done   chan struct{}
	stop   sync.Once
}

// WatchLevel starts watching path until ctx is cancelled or Stop is called.
// The directory is watched rather than the file so that editors that replace
// the file on save keep triggering reloads.
func WatchLevel(ctx context.Context, path string, h *Handle, opts ...WatchOption) (*LevelWatcher, error) {
	const op errors.Op = "logging.WatchLevel"
	if h == nil {
		return nil, configError(op, ErrInvalidConfig, errMsgNilHandle)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, ioError(op, err, errMsgWatchConfig)
	}
	if err = fsw.Add(filepath.Dir(path)); err != nil {
		return nil, ioError(op, stderrs.Join(err, fsw.Close()), errMsgWatchConfig)
	}

	ctx, cancel := context.WithCancel(ctx)
	w := &LevelWatcher{
		path:     filepath.Clean(path),
		handle:   h,
		watcher:  fsw,
		debounce: defaultWatchDebounce,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(w)
		}
	}

	go w.run(ctx)
	return w, nil
}

func (w *LevelWatcher) run(ctx context.Context) {
	defer close(w.done)

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			w.reload()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.handle.WarnWith().Err(err).Str("path", w.path).Msg("config watcher error")
		}
	}
}

func (w *LevelWatcher) reload() {
	cfg, err := LoadConfig(w.path)
	if err != nil {
		w.handle.WarnWith().Err(err).Str("path", w.path).Msg("config reload failed")
		return
	}
	if cfg.Level == emptyString {
		return
	}
	before := w.handle.Level()
	if err = w.handle.SetLevel(cfg.Level); err != nil {
		w.handle.WarnWith().Err(err).Str("path", w.path).Msg("config reload failed")
		return
	}
	if after := w.handle.Level(); after != before {
		w.handle.InfoWith().Str("from", before.String()).Str("to", after.String()).Msg("log level changed")
	}
}

// Stop ends the watch and waits for the watch goroutine to exit.
func (w *LevelWatcher) Stop() error {
	var err error
	w.stop.Do(func() {
		w.cancel()
		err = w.watcher.Close()
		<-w.done
	})
	return err
}

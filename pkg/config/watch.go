package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounceInterval is the quiet period applied to file events before
// a reload is attempted. Editors often produce several writes per save.
const DefaultDebounceInterval = 100 * time.Millisecond

// Watcher hot-reloads the configuration file while the process runs.
// Only fields that are safe to change at runtime take effect (log level,
// auth secret, upstream timeout); changes to fields that are fixed at
// startup (credentials, upstream mode, proxy endpoints, listen address)
// are detected and logged as requiring a restart. The upstream client is
// never rebuilt in-process.
type Watcher struct {
	path     string
	logger   *slog.Logger
	watcher  *fsnotify.Watcher
	debounce *debouncer

	// OnReload, when set before Watch is called, runs after each successful
	// reload with the previous and current configuration.
	OnReload func(before, after *Config)

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewWatcher creates a watcher for the configuration file at path.
// The parent directory is watched rather than the file itself so that
// rename-based saves (the common editor strategy) keep being observed.
func NewWatcher(path string, logger *slog.Logger) (*Watcher, error) {
	if path == "" {
		return nil, fmt.Errorf("config watcher requires a file path")
	}
	if logger == nil {
		logger = slog.Default()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &Watcher{
		path:     path,
		logger:   logger,
		watcher:  fsw,
		debounce: newDebouncer(DefaultDebounceInterval),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Watch blocks processing file events until the context is cancelled or
// Stop is called. Each debounced change reloads the global configuration
// and reports fields that cannot be applied without a restart.
func (w *Watcher) Watch(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("watcher already running")
	}
	w.running = true
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		close(w.doneCh)
	}()

	dir := filepath.Dir(w.path)
	if err := w.watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %q: %w", dir, err)
	}

	w.logger.Info("Config watcher started",
		"path", w.path,
		"debounce_ms", DefaultDebounceInterval.Milliseconds(),
	)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Config watcher stopped (context cancelled)")
			return nil

		case <-w.stopCh:
			w.logger.Info("Config watcher stopped")
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}

			if !w.shouldProcessEvent(event) {
				continue
			}

			w.logger.Debug("Config file event detected",
				"path", event.Name,
				"op", event.Op.String(),
			)

			w.debounce.trigger(func() {
				w.reload()
			})

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}

			w.logger.Error("Config watcher error", "error", err)
			// Keep watching despite errors
		}
	}
}

// Stop stops the watcher and waits for the event loop to exit.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh

	w.debounce.stop()

	if err := w.watcher.Close(); err != nil {
		return fmt.Errorf("failed to close watcher: %w", err)
	}

	return nil
}

// reload swaps the global configuration and logs unapplied changes.
func (w *Watcher) reload() {
	before := GetConfig()

	if err := ReloadConfig(w.path); err != nil {
		w.logger.Error("Config reload failed, keeping previous configuration", "error", err)
		return
	}

	after := GetConfig()
	w.logger.Info("Configuration reloaded", "path", w.path)

	if before == nil || after == nil {
		return
	}
	for _, field := range frozenFieldChanges(before, after) {
		w.logger.Warn("Config change requires restart to take effect", "field", field)
	}

	if w.OnReload != nil {
		w.OnReload(before, after)
	}
}

// frozenFieldChanges lists startup-only fields that differ between two
// configurations. These fields feed the upstream client and listener built
// at process start.
func frozenFieldChanges(before, after *Config) []string {
	var changed []string

	if before.Upstream.APIKey != after.Upstream.APIKey {
		changed = append(changed, "upstream.api_key")
	}
	if before.Upstream.AccessToken != after.Upstream.AccessToken {
		changed = append(changed, "upstream.access_token")
	}
	if before.Upstream.BaseURL != after.Upstream.BaseURL {
		changed = append(changed, "upstream.base_url")
	}
	if before.Upstream.ReverseProxyURL != after.Upstream.ReverseProxyURL {
		changed = append(changed, "upstream.reverse_proxy_url")
	}
	if before.Upstream.Proxy != after.Upstream.Proxy {
		changed = append(changed, "upstream.proxy")
	}
	if before.Server.ListenAddress != after.Server.ListenAddress {
		changed = append(changed, "server.listen_address")
	}
	if before.Server.StaticDir != after.Server.StaticDir {
		changed = append(changed, "server.static_dir")
	}

	return changed
}

// shouldProcessEvent filters directory noise down to events on the config
// file itself.
func (w *Watcher) shouldProcessEvent(event fsnotify.Event) bool {
	if event.Op&fsnotify.Chmod == fsnotify.Chmod {
		return false
	}
	return filepath.Clean(event.Name) == filepath.Clean(w.path)
}

// debouncer collects rapid events and fires the callback only after a quiet
// period.
type debouncer struct {
	interval time.Duration
	timer    *time.Timer
	mu       sync.Mutex
	callback func()
	stopCh   chan struct{}
}

func newDebouncer(interval time.Duration) *debouncer {
	return &debouncer{
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// trigger arms the debounce timer with a new callback, replacing any
// pending one.
func (d *debouncer) trigger(callback func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.callback = callback

	if d.timer != nil {
		d.timer.Stop()
	}

	d.timer = time.AfterFunc(d.interval, func() {
		select {
		case <-d.stopCh:
			return
		default:
			d.mu.Lock()
			cb := d.callback
			d.mu.Unlock()

			if cb != nil {
				cb()
			}
		}
	})
}

// stop cancels any pending callback.
func (d *debouncer) stop() {
	close(d.stopCh)

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.callback = nil
}

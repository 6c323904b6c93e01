package racks

import (
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/artpar/racksdb/ports"
)

// DefaultDebounce is the delay between the last change of a watched file
// and the reload it triggers.
const DefaultDebounce = 500 * time.Millisecond

// Holder provides thread-safe access to a loaded inventory with hot reload
// support.
type Holder struct {
	mu       sync.RWMutex
	db       *DB
	opts     Options
	logger   zerolog.Logger
	recorder ports.ReloadRecorder
	debounce time.Duration

	watcher  *fsnotify.Watcher
	onChange []func(*DB)
	stopCh   chan struct{}
	stopOnce sync.Once
}

// HolderOption configures a Holder.
type HolderOption func(*Holder)

// WithRecorder sets the recorder of reload outcomes.
func WithRecorder(r ports.ReloadRecorder) HolderOption {
	return func(h *Holder) { h.recorder = r }
}

// WithDebounce sets the delay between a change and the reload.
func WithDebounce(d time.Duration) HolderOption {
	return func(h *Holder) { h.debounce = d }
}

// NewHolder loads the inventory located by opts.
func NewHolder(opts Options, logger zerolog.Logger, options ...HolderOption) (*Holder, error) {
	if opts.Database == "" {
		opts.Database = DefaultDatabase
	}
	d, err := Load(opts)
	if err != nil {
		return nil, fmt.Errorf("load database: %w", err)
	}

	h := &Holder{
		db:       d,
		opts:     opts,
		logger:   logger,
		debounce: DefaultDebounce,
		stopCh:   make(chan struct{}),
	}
	for _, opt := range options {
		opt(h)
	}
	return h, nil
}

// Get returns the current inventory.
func (h *Holder) Get() *DB {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.db
}

// Reload loads the schema and the database again. When loading fails the
// previous inventory is kept.
func (h *Holder) Reload() error {
	h.logger.Info().Str("path", h.opts.Database).Msg("reloading database")

	d, err := Load(h.opts)
	if h.recorder != nil {
		h.recorder.RecordReload(time.Now(), err)
	}
	if err != nil {
		h.logger.Error().Err(err).Msg("database reload failed, keeping old database")
		return fmt.Errorf("reload database: %w", err)
	}

	h.mu.Lock()
	old := h.db
	h.db = d
	callbacks := append([]func(*DB){}, h.onChange...)
	h.mu.Unlock()

	if old.Len() != d.Len() {
		h.logger.Info().Int("old", old.Len()).Int("new", d.Len()).Msg("objects count changed")
	}

	for _, fn := range callbacks {
		fn(d)
	}

	h.logger.Info().Str("load_id", d.LoadID()).Msg("database reloaded successfully")
	return nil
}

// OnChange registers a callback called with every reloaded inventory.
func (h *Holder) OnChange(fn func(*DB)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onChange = append(h.onChange, fn)
}

// Watch starts watching the database, the schema and the extensions files.
// Changes trigger a reload once no other change happened for the debounce
// delay.
func (h *Holder) Watch() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	h.watcher = watcher

	dirs, err := h.watchedDirs()
	if err != nil {
		watcher.Close()
		return err
	}
	for _, dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			watcher.Close()
			return fmt.Errorf("watch directory %s: %w", dir, err)
		}
	}

	go h.watchLoop()

	h.logger.Info().Strs("dirs", dirs).Msg("watching database for changes")
	return nil
}

// WatchSignals starts listening for SIGHUP to trigger reload.
func (h *Holder) WatchSignals() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGHUP)

	go func() {
		for {
			select {
			case <-sigCh:
				h.logger.Info().Msg("received SIGHUP, reloading database")
				if err := h.Reload(); err != nil {
					h.logger.Error().Err(err).Msg("SIGHUP reload failed")
				}
			case <-h.stopCh:
				signal.Stop(sigCh)
				return
			}
		}
	}()

	h.logger.Info().Msg("listening for SIGHUP to reload database")
}

// Stop stops watching for changes and signals.
func (h *Holder) Stop() {
	h.stopOnce.Do(func() {
		close(h.stopCh)
		if h.watcher != nil {
			h.watcher.Close()
		}
	})
}

// watchedDirs returns the directories holding the watched files: every
// directory of a split database, and the directories of the database file,
// the schema and the extensions.
func (h *Holder) watchedDirs() ([]string, error) {
	seen := make(map[string]bool)
	var dirs []string
	add := func(dir string) {
		if !seen[dir] {
			seen[dir] = true
			dirs = append(dirs, dir)
		}
	}

	dbPath, err := filepath.Abs(h.opts.Database)
	if err != nil {
		return nil, fmt.Errorf("absolute path: %w", err)
	}
	info, err := os.Stat(dbPath)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", dbPath, err)
	}
	if info.IsDir() {
		err := filepath.WalkDir(dbPath, func(path string, e fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if e.IsDir() {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", dbPath, err)
		}
	} else {
		add(filepath.Dir(dbPath))
	}

	for _, file := range []string{h.opts.Schema, h.opts.Extensions} {
		if file == "" {
			continue
		}
		abs, err := filepath.Abs(file)
		if err != nil {
			continue
		}
		if _, err := os.Stat(filepath.Dir(abs)); err == nil {
			add(filepath.Dir(abs))
		}
	}
	return dirs, nil
}

// relevant reports whether a change of path affects the inventory.
func (h *Holder) relevant(path string) bool {
	if strings.HasPrefix(filepath.Base(path), ".") {
		return false
	}
	for _, file := range []string{h.opts.Schema, h.opts.Extensions} {
		if file == "" {
			continue
		}
		if abs, err := filepath.Abs(file); err == nil && abs == path {
			return true
		}
	}
	dbPath, err := filepath.Abs(h.opts.Database)
	if err != nil {
		return false
	}
	return path == dbPath || strings.HasPrefix(path, dbPath+string(filepath.Separator))
}

func (h *Holder) watchLoop() {
	var timer *time.Timer
	reload := make(chan struct{}, 1)

	for {
		select {
		case event, ok := <-h.watcher.Events:
			if !ok {
				return
			}
			if !h.relevant(event.Name) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}

			h.logger.Debug().
				Str("event", event.Op.String()).
				Str("file", event.Name).
				Msg("database file changed")

			// new directories of a split database are watched too
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := h.watcher.Add(event.Name); err != nil {
						h.logger.Error().Err(err).Str("dir", event.Name).Msg("watch new directory failed")
					}
				}
			}

			if timer == nil {
				timer = time.AfterFunc(h.debounce, func() {
					select {
					case reload <- struct{}{}:
					default:
					}
				})
			} else {
				timer.Reset(h.debounce)
			}

		case <-reload:
			if err := h.Reload(); err != nil {
				h.logger.Error().Err(err).Msg("file watch reload failed")
			}

		case err, ok := <-h.watcher.Errors:
			if !ok {
				return
			}
			h.logger.Error().Err(err).Msg("file watcher error")

		case <-h.stopCh:
			if timer != nil {
				timer.Stop()
			}
			return
		}
	}
}

// Package watcher re-runs a conversion whenever a chat export changes.
package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/jasperwreed/chat2html/internal/logging"
)

// Event is a settled change to the watched chat file.
type Event struct {
	Path      string
	Op        fsnotify.Op
	Timestamp time.Time
}

// EventHandler processes change events
type EventHandler func(ctx context.Context, event Event) error

// ChatWatcher watches one export folder for changes to its chat file.
// The folder rather than the file is watched so that exporters which
// replace the file are still seen.
type ChatWatcher struct {
	watcher  *fsnotify.Watcher
	folder   string
	chatPath string
	debounce time.Duration
	logger   logging.Logger

	mu       sync.RWMutex
	handlers []EventHandler
}

// NewChatWatcher starts watching folder for changes to chatFile.
func NewChatWatcher(folder, chatFile string, debounce time.Duration, logger logging.Logger) (*ChatWatcher, error) {
	if logger == nil {
		logger = logging.Nop()
	}

	info, err := os.Stat(folder)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("directory does not exist: %s", folder)
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fs watcher: %w", err)
	}

	if err := fsWatcher.Add(folder); err != nil {
		fsWatcher.Close()
		return nil, fmt.Errorf("failed to watch directory %s: %w", folder, err)
	}

	return &ChatWatcher{
		watcher:  fsWatcher,
		folder:   folder,
		chatPath: filepath.Clean(filepath.Join(folder, chatFile)),
		debounce: debounce,
		logger:   logger.With(logging.F("folder", folder)),
	}, nil
}

// ChatPath is the file being watched.
func (w *ChatWatcher) ChatPath() string {
	return w.chatPath
}

// AddHandler adds an event handler
func (w *ChatWatcher) AddHandler(handler EventHandler) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.handlers = append(w.handlers, handler)
}

// Run delivers debounced change events until ctx is cancelled. It closes
// the underlying watcher before returning.
func (w *ChatWatcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	var (
		timer   *time.Timer
		fire    <-chan time.Time
		pending Event
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}

			pending = Event{Path: w.chatPath, Op: event.Op, Timestamp: time.Now()}
			w.logger.Debug("chat file changed", logging.F("op", event.Op.String()))

			if w.debounce <= 0 {
				w.notifyHandlers(ctx, pending)
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Stop()
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			w.notifyHandlers(ctx, pending)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", logging.Err(err))
		}
	}
}

func (w *ChatWatcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.chatPath {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create)
}

// notifyHandlers sends event to all registered handlers
func (w *ChatWatcher) notifyHandlers(ctx context.Context, event Event) {
	w.mu.RLock()
	handlers := make([]EventHandler, len(w.handlers))
	copy(handlers, w.handlers)
	w.mu.RUnlock()

	for _, handler := range handlers {
		if err := handler(ctx, event); err != nil {
			w.logger.Error("handler failed", logging.Err(err))
		}
	}
}

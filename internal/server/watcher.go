package server

import (
	"context"
	"log"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/jaakkos/blackboard/internal/app"
)

const (
	watchDebounce     = 200 * time.Millisecond
	watchPollInterval = 10 * time.Second
)

// changeWatcher watches the database files for writes by other processes
// and calls onNewMessages when the message log has grown. A periodic poll
// backs up fsnotify, which can miss WAL-side writes on some filesystems.
type changeWatcher struct {
	svc           *app.Service
	dbPath        string
	onNewMessages func(maxID int64)
	logger        *log.Logger

	mu            sync.Mutex
	lastMaxID     int64
	debounceTimer *time.Timer
	watcher       *fsnotify.Watcher
	useFsnotify   bool

	stopCh chan struct{}
	doneCh chan struct{}

	checkMu sync.Mutex
}

func newChangeWatcher(svc *app.Service, dbPath string, onNewMessages func(maxID int64), logger *log.Logger) *changeWatcher {
	return &changeWatcher{
		svc:           svc,
		dbPath:        dbPath,
		onNewMessages: onNewMessages,
		logger:        logger,
		lastMaxID:     -1,
		stopCh:        make(chan struct{}),
		doneCh:        make(chan struct{}),
	}
}

// Start watches until ctx is cancelled. Falls back to poll-only mode when
// fsnotify cannot be initialized.
func (w *changeWatcher) Start(ctx context.Context) {
	defer close(w.doneCh)

	// Seed the baseline so startup never pushes a notification.
	if id, err := w.svc.MaxMessageID(); err == nil {
		w.mu.Lock()
		w.lastMaxID = id
		w.mu.Unlock()
	}

	watchDir := filepath.Dir(w.dbPath)
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		w.logger.Printf("Watcher: fsnotify init failed (%v), using poll-only", err)
	} else {
		w.watcher = watcher
		w.useFsnotify = true
		if err := watcher.Add(watchDir); err != nil {
			w.logger.Printf("Watcher: fsnotify add %s failed (%v), using poll-only", watchDir, err)
			_ = watcher.Close()
			w.watcher = nil
			w.useFsnotify = false
		}
	}

	if w.useFsnotify {
		defer w.watcher.Close()
		go w.watchLoop(ctx)
	}

	w.pollLoop(ctx)
}

// Stop blocks until the watch loops have exited. Call after cancelling the
// context passed to Start.
func (w *changeWatcher) Stop() {
	close(w.stopCh)
	<-w.doneCh
}

func (w *changeWatcher) watchLoop(ctx context.Context) {
	dbBase := filepath.Base(w.dbPath)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			// The write may land in the main file or its WAL sidecar.
			if !strings.HasPrefix(filepath.Base(event.Name), dbBase) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			w.triggerDebounced()
		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
		}
	}
}

func (w *changeWatcher) triggerDebounced() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.debounceTimer = time.AfterFunc(watchDebounce, w.check)
}

func (w *changeWatcher) pollLoop(ctx context.Context) {
	ticker := time.NewTicker(watchPollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.check()
		}
	}
}

// check compares the current max message id with the last seen one and
// fires the callback when it grew. Serialized so the debounce timer and
// the poll loop cannot push duplicates.
func (w *changeWatcher) check() {
	w.checkMu.Lock()
	defer w.checkMu.Unlock()

	maxID, err := w.svc.MaxMessageID()
	if err != nil {
		w.logger.Printf("Watcher: max message id check failed: %v", err)
		return
	}

	w.mu.Lock()
	last := w.lastMaxID
	w.lastMaxID = maxID
	w.mu.Unlock()

	if last >= 0 && maxID > last {
		w.onNewMessages(maxID)
	}
}

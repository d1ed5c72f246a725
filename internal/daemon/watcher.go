package daemon

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/typdocs/internal/errors"
	"git.home.luguber.info/inful/typdocs/internal/logfields"
)

// ExportWatcher monitors the data directory for new or rewritten export
// files and triggers a debounced rebuild.
type ExportWatcher struct {
	dataDir      string
	jsonSlug     string
	watcher      *fsnotify.Watcher
	rebuildChan  chan struct{}
	debounceTime time.Duration
	onChange     func(ctx context.Context)
}

// NewExportWatcher creates a watcher over dataDir. onChange runs after export
// file activity settles.
func NewExportWatcher(dataDir, jsonSlug string, onChange func(ctx context.Context)) (*ExportWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryInternal, "failed to create file watcher")
	}

	absDir, err := filepath.Abs(dataDir)
	if err != nil {
		_ = watcher.Close()
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to resolve data directory")
	}

	return &ExportWatcher{
		dataDir:      absDir,
		jsonSlug:     jsonSlug,
		watcher:      watcher,
		rebuildChan:  make(chan struct{}, 1),
		debounceTime: 2 * time.Second,
		onChange:     onChange,
	}, nil
}

// Start begins watching until ctx is cancelled.
func (w *ExportWatcher) Start(ctx context.Context) error {
	if err := w.watcher.Add(w.dataDir); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to watch data directory").
			WithContext("path", w.dataDir)
	}

	slog.Info("Watching for export changes", logfields.Path(w.dataDir))

	go w.watchLoop(ctx)
	go w.rebuildLoop(ctx)
	return nil
}

// Stop closes the underlying watcher.
func (w *ExportWatcher) Stop() {
	if err := w.watcher.Close(); err != nil {
		slog.Error("Error closing export watcher", logfields.Error(err))
	}
}

func (w *ExportWatcher) watchLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.isExportFile(event.Name) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				slog.Debug("Export change detected", logfields.Path(event.Name))
				w.triggerRebuild()
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Error("Export watcher error", logfields.Error(err))
		}
	}
}

func (w *ExportWatcher) rebuildLoop(ctx context.Context) {
	var timer *time.Timer

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return
		case <-w.rebuildChan:
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.debounceTime, func() {
				w.onChange(ctx)
			})
		}
	}
}

func (w *ExportWatcher) triggerRebuild() {
	select {
	case w.rebuildChan <- struct{}{}:
	default:
	}
}

func (w *ExportWatcher) isExportFile(name string) bool {
	base := filepath.Base(name)
	return strings.HasPrefix(base, w.jsonSlug+"_") && strings.HasSuffix(base, ".json")
}

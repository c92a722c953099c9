package ingest

import (
	"context"
	"fmt"

	"github.com/SaiNageswarS/go-api-boot/logger"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher re-ingests course documents dropped into the docs folder while the
// process runs. Known course titles are skipped by the ingestor, so rewrites
// of already-ingested files are cheap no-ops.
type Watcher struct {
	watcher  *fsnotify.Watcher
	ingestor *Ingestor
}

func NewWatcher(ingestor *Ingestor) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	return &Watcher{watcher: w, ingestor: ingestor}, nil
}

// Watch monitors dir until ctx is cancelled. It returns after starting the
// event loop.
func (w *Watcher) Watch(ctx context.Context, dir string) error {
	if err := w.watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-w.watcher.Events:
				if !ok {
					return
				}
				if !shouldIngest(event) {
					continue
				}
				logger.Info("docs folder changed, ingesting",
					zap.String("file", event.Name), zap.String("op", event.Op.String()))
				if _, err := w.ingestor.IngestFile(ctx, event.Name); err != nil {
					logger.Error("watcher ingestion failed",
						zap.String("file", event.Name), zap.Error(err))
				}
			case err, ok := <-w.watcher.Errors:
				if !ok {
					return
				}
				logger.Error("file watcher error", zap.Error(err))
			}
		}
	}()

	return nil
}

func (w *Watcher) Stop() error {
	return w.watcher.Close()
}

// shouldIngest accepts only Write events. Create fires before the file has
// content; reacting to it can register a truncated course whose later Write is
// then skipped by the known-course check. Every non-empty file's Create is
// followed by a Write.
func shouldIngest(event fsnotify.Event) bool {
	if !IsCourseDocument(event.Name) {
		return false
	}
	return event.Op&fsnotify.Write != 0
}

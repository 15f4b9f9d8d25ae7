package filesystem

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/rootiq-ai/earnings-rag-app/internal/logger"
)

// settleDelay gives the writer time to finish before an artifact is handled.
const settleDelay = 500 * time.Millisecond

// ArtifactHandler receives the path of each newly written artifact.
type ArtifactHandler func(ctx context.Context, path string)

// Watcher observes an artifact directory and forwards new .json files
// to a handler, so documents dropped on disk get indexed without a
// manual ingest call.
type Watcher struct {
	dir     string
	handler ArtifactHandler
	log     *logger.Logger

	fsw    *fsnotify.Watcher
	wg     sync.WaitGroup
	closed sync.Once
}

// NewWatcher creates a watcher over the given directory. The handler is
// invoked sequentially, once per completed artifact write.
func NewWatcher(dir string, handler ArtifactHandler, log *logger.Logger) (*Watcher, error) {
	if handler == nil {
		return nil, fmt.Errorf("artifact handler is required")
	}
	if log == nil {
		log = logger.Discard()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating filesystem watcher: %w", err)
	}
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watching %s: %w", dir, err)
	}

	return &Watcher{
		dir:     dir,
		handler: handler,
		log:     log,
		fsw:     fsw,
	}, nil
}

// Start launches the event loop. It returns immediately; the loop runs
// until the context is cancelled or Close is called.
func (w *Watcher) Start(ctx context.Context) {
	w.wg.Add(1)
	go w.loop(ctx)
}

// Close stops the watcher and waits for the event loop to drain.
func (w *Watcher) Close() error {
	var err error
	w.closed.Do(func() {
		err = w.fsw.Close()
		w.wg.Wait()
	})
	return err
}

func (w *Watcher) loop(ctx context.Context) {
	defer w.wg.Done()

	// Pending paths settle before dispatch so partially written files
	// are not handled mid-write.
	pending := make(map[string]time.Time)
	ticker := time.NewTicker(settleDelay)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !strings.HasSuffix(event.Name, ".json") {
				continue
			}
			if event.Op.Has(fsnotify.Create) || event.Op.Has(fsnotify.Write) {
				pending[event.Name] = time.Now()
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Warn("Artifact watcher error: %v", err)

		case now := <-ticker.C:
			for path, last := range pending {
				if now.Sub(last) < settleDelay {
					continue
				}
				delete(pending, path)
				w.log.Info("New artifact detected: %s", path)
				w.handler(ctx, path)
			}
		}
	}
}

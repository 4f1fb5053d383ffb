package organizer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"

	"fastfox/internal/logging"
	"fastfox/internal/router"
	"fastfox/internal/services"
)

const watchTick = 100 * time.Millisecond

// Watch runs one pass over root and then keeps processing files that appear
// in it once they have been quiet for settle. Every outcome, including those
// of the first pass, is handed to emit. Watch returns nil when ctx is done.
func (o *Organizer) Watch(ctx context.Context, root string, opts RunOptions, settle time.Duration, emit func(Outcome)) error {
	if emit == nil {
		emit = func(Outcome) {}
	}
	absRoot, err := resolveRoot(root)
	if err != nil {
		return err
	}
	lock, err := acquireRootLock(o.lockDir, absRoot)
	if err != nil {
		return err
	}
	defer func() {
		if err := releaseLock(lock); err != nil {
			o.logger.Warn("failed to release organize lock", logging.Error(err))
		}
	}()

	rt, err := router.New(absRoot, o.collision, o.logger)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return services.Wrap(services.ErrTransient, "organize", "watch", "create watcher", err)
	}
	defer watcher.Close()
	// Watch before the first pass so files dropped during it are not missed.
	if err := watcher.Add(absRoot); err != nil {
		return services.Wrap(services.ErrTransient, "organize", "watch", "watch "+absRoot, err)
	}

	report, err := o.pass(ctx, absRoot, rt, opts)
	if report != nil {
		for _, outcome := range report.Outcomes {
			emit(outcome)
		}
	}
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	}

	ctx = services.WithRunID(ctx, report.RunID)
	logger := logging.WithContext(ctx, o.logger)
	logger.Info("watching for new files",
		logging.String("root", absRoot),
		logging.Duration("settle", settle),
	)

	pending := make(map[string]time.Time)
	ticker := time.NewTicker(watchTick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("watch stopped")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Dir(event.Name) != absRoot {
				continue
			}
			if event.Has(fsnotify.Create) || event.Has(fsnotify.Write) {
				pending[event.Name] = o.now()
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logging.WarnWithContext(logger, "watcher error", "watch_error",
				logging.Error(err),
				logging.String(logging.FieldImpact, "some file events may have been missed"),
			)

		case <-ticker.C:
			for _, path := range settled(pending, o.now(), settle) {
				if ctx.Err() != nil {
					return nil
				}
				info, err := os.Stat(path)
				if err != nil || !info.Mode().IsRegular() {
					continue
				}
				emit(o.processFile(ctx, rt, path, opts))
			}
		}
	}
}

// settled removes and returns, in name order, the pending paths whose last
// event is at least settle old.
func settled(pending map[string]time.Time, now time.Time, settle time.Duration) []string {
	var ready []string
	for path, at := range pending {
		if now.Sub(at) >= settle {
			ready = append(ready, path)
			delete(pending, path)
		}
	}
	sort.Strings(ready)
	return ready
}

package cmd

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ardnew/non/log"
)

// watch calls run once, then again each time the file at path changes,
// until ctx is done. Bursts of events closer together than interval
// trigger a single run.
//
// The parent directory is watched rather than the file itself, so editors
// that save by renaming a new file over the old one keep being followed.
// Errors returned by run are logged and do not stop the watch.
func watch(
	ctx context.Context,
	path string,
	interval time.Duration,
	run func(context.Context) error,
) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return ErrWatch.With(slog.String("path", path)).Wrap(err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return ErrWatch.With(slog.String("path", path)).Wrap(err)
	}
	defer w.Close()

	err = w.Add(filepath.Dir(abs))
	if err != nil {
		return ErrWatch.With(slog.String("path", path)).Wrap(err)
	}

	report := func() {
		if err := run(ctx); err != nil {
			log.ErrorContext(ctx, "compile failed", slog.Any("error", err))
		}
	}

	report()

	log.InfoContext(ctx, "watching source",
		slog.String("path", path),
		slog.Duration("debounce", interval),
	)

	// Stopped until the first relevant event.
	debounce := time.NewTimer(interval)
	debounce.Stop()

	defer debounce.Stop()

	for {
		select {
		case <-ctx.Done():
			log.DebugContext(ctx, "watch stopped", slog.String("path", path))

			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			if !affects(ev, abs) {
				continue
			}

			log.TraceContext(ctx, "source event",
				slog.String("path", ev.Name),
				slog.String("op", ev.Op.String()),
			)

			debounce.Reset(interval)

		case <-debounce.C:
			log.DebugContext(ctx, "source changed", slog.String("path", path))
			report()

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}

			log.WarnContext(ctx, "watch error", slog.Any("error", err))
		}
	}
}

// affects reports whether ev changes the contents of the file at abs.
func affects(ev fsnotify.Event, abs string) bool {
	if filepath.Clean(ev.Name) != abs {
		return false
	}

	return ev.Op != fsnotify.Chmod
}

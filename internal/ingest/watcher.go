package ingest

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

type WatchConfig struct {
	Root        string
	InitialScan bool          // emit documents already present
	Debounce    time.Duration // coalesce write bursts per file, default 500ms
	Logger      *slog.Logger
}

// Watch emits documents written under the type folders of cfg.Root until ctx is done.
// New type folders are picked up as they are created. Both channels close on return.
func Watch(ctx context.Context, cfg WatchConfig) (<-chan Document, <-chan error, error) {
	if cfg.Root == "" {
		return nil, nil, errors.New("watch root is required")
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = 500 * time.Millisecond
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, nil, err
	}
	if err := w.Add(cfg.Root); err != nil {
		_ = w.Close()
		return nil, nil, err
	}
	entries, err := os.ReadDir(cfg.Root)
	if err != nil {
		_ = w.Close()
		return nil, nil, err
	}
	for _, e := range entries {
		if e.IsDir() && !IsHidden(e.Name()) {
			if err := w.Add(filepath.Join(cfg.Root, e.Name())); err != nil {
				_ = w.Close()
				return nil, nil, err
			}
		}
	}

	docCh := make(chan Document, 64)
	errCh := make(chan error, 1)

	var initial []Document
	if cfg.InitialScan {
		docs, _, failed, err := Scan(cfg.Root)
		if err != nil {
			_ = w.Close()
			return nil, nil, err
		}
		for _, f := range failed {
			logger.Warn("ingest.watch.describe_failed", "path", f.Path, "err", f.Err)
		}
		initial = docs
	}

	go func() {
		var (
			mu      sync.Mutex
			pending = map[string]*time.Timer{}
			ready   = make(chan string, 64)
		)
		defer func() {
			mu.Lock()
			for _, t := range pending {
				t.Stop()
			}
			mu.Unlock()
			_ = w.Close()
			close(docCh)
			close(errCh)
		}()

		emit := func(d Document) bool {
			select {
			case docCh <- d:
				return true
			case <-ctx.Done():
				return false
			}
		}
		for _, d := range initial {
			if !emit(d) {
				return
			}
		}

		schedule := func(path string) {
			mu.Lock()
			defer mu.Unlock()
			if t, ok := pending[path]; ok {
				t.Reset(cfg.Debounce)
				return
			}
			pending[path] = time.AfterFunc(cfg.Debounce, func() {
				mu.Lock()
				delete(pending, path)
				mu.Unlock()
				select {
				case ready <- path:
				case <-ctx.Done():
				}
			})
		}

		for {
			select {
			case <-ctx.Done():
				return
			case e, ok := <-w.Events:
				if !ok {
					return
				}
				if IsHidden(e.Name) {
					continue
				}
				if e.Has(fsnotify.Create) && filepath.Dir(e.Name) == filepath.Clean(cfg.Root) {
					if info, err := os.Stat(e.Name); err == nil && info.IsDir() {
						if err := w.Add(e.Name); err != nil {
							logger.Warn("ingest.watch.add_failed", "path", e.Name, "err", err)
						}
						continue
					}
				}
				if (e.Has(fsnotify.Create) || e.Has(fsnotify.Write)) && Allowed(e.Name) && depthOf(cfg.Root, e.Name) == 2 {
					schedule(e.Name)
				}
			case path := <-ready:
				doc, err := Describe(cfg.Root, path)
				if err != nil {
					logger.Warn("ingest.watch.describe_failed", "path", path, "err", err)
					continue
				}
				if !emit(doc) {
					return
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				logger.Error("ingest.watch.error", "err", err)
				select {
				case errCh <- err:
				default:
				}
			}
		}
	}()

	return docCh, errCh, nil
}

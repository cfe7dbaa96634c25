package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/dshills/multibuf"
)

// watchFiles starts an fsnotify watcher over the directories containing
// the workspace's files. A write or create event on a tracked file
// reloads it and applies the new content as a whole-file replacement
// edit, which the engine propagates into the aggregate. The returned
// function stops the watcher.
//
// Directories are watched rather than the files themselves: editors
// that save via rename-and-replace would otherwise detach the watch.
func (ws *workspace) watchFiles(logger *slog.Logger) (func(), error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}

	dirs := make(map[string]bool)
	for path := range ws.buffers {
		dirs[filepath.Dir(path)] = true
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			watcher.Close()
			return nil, fmt.Errorf("watching %s: %w", dir, err)
		}
	}

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				buf, tracked := ws.buffers[event.Name]
				if !tracked {
					continue
				}
				if err := reload(buf, event.Name); err != nil {
					logger.Error("reload failed", "file", event.Name, "error", err)
					continue
				}
				logger.Info("file reloaded", "file", event.Name, "version", buf.Version())
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Error("watcher error", "error", err)
			}
		}
	}()

	return func() { watcher.Close() }, nil
}

// reload replaces the buffer's entire content with the file's current
// content in a single edit.
func reload(buf *multibuf.Buffer, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	_, err = buf.Apply(multibuf.Edit{
		Range:   multibuf.Range{Start: 0, End: buf.Len()},
		NewText: string(data),
	})
	return err
}

package config

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounceWindow coalesces the burst of write events most editors emit when
// saving a file.
const debounceWindow = 200 * time.Millisecond

// Watch reloads the store whenever its backing file changes, until ctx is
// done. Reload failures keep the last-good snapshot and are logged, never
// fatal. The parent directory is watched because many editors replace the
// file by rename, which drops a watch set on the file itself.
func (s *Store) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create config watcher: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("watch config dir %s: %w", dir, err)
	}

	target := filepath.Clean(s.path)
	go func() {
		defer watcher.Close()
		var pending *time.Timer
		reload := func() {
			if err := s.Reload(); err != nil {
				log.Printf("config reload failed, keeping previous table: %v", err)
				return
			}
			log.Printf("config reloaded from %s", target)
		}
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != target {
					continue
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
					continue
				}
				if pending != nil {
					pending.Stop()
				}
				pending = time.AfterFunc(debounceWindow, reload)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Printf("config watcher error: %v", err)
			}
		}
	}()
	return nil
}

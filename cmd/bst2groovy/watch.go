package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// watch recompiles a source file whenever it is written or replaced. It
// watches the directories of the files, since editors often save by
// renaming a new file over the old one.
func (b *builder) watch(ctx context.Context, files []string) error {
	w, wanted, err := watchFiles(files)
	if err != nil {
		return err
	}
	defer w.Close()
	fmt.Fprintf(os.Stderr, "Watching %d files\n", len(wanted))
	return b.watchLoop(ctx, w, wanted)
}

// watchFiles starts watching the directories of files. The returned set
// holds their absolute paths.
func watchFiles(files []string) (*fsnotify.Watcher, map[string]bool, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, nil, err
	}
	wanted := map[string]bool{}
	dirs := map[string]bool{}
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			w.Close()
			return nil, nil, err
		}
		wanted[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := w.Add(dir); err != nil {
			w.Close()
			return nil, nil, fmt.Errorf("watching %s: %w", dir, err)
		}
	}
	return w, wanted, nil
}

// watchLoop rebuilds wanted files on change until ctx is done.
func (b *builder) watchLoop(ctx context.Context, w *fsnotify.Watcher, wanted map[string]bool) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			abs, err := filepath.Abs(ev.Name)
			if err != nil || !wanted[abs] {
				continue
			}
			if _, err := os.Stat(abs); err != nil {
				continue
			}
			if err := b.buildFile(ev.Name); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				continue
			}
			fmt.Fprintf(os.Stderr, "Rebuilt %s\n", ev.Name)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "Watch error: %v\n", err)
		}
	}
}

package scanner

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads the rule file whenever it is written or recreated. The
// directory is watched rather than the file so editors that replace the file
// are picked up. A reload that fails keeps the current rule set.
//
// Watching stops when ctx is cancelled; the returned channel is closed once
// the watcher is released.
func (s *RuleScanner) Watch(ctx context.Context) (<-chan struct{}, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create rule watcher: %w", err)
	}

	target := filepath.Clean(s.path)
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch rule directory: %w", err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		defer watcher.Close()
		s.watchLoop(ctx, watcher, target)
	}()

	s.logger.Info("watching rule file", "path", target)
	return done, nil
}

func (s *RuleScanner) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, target string) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			s.reload()
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			s.logger.Warn("rule watcher error", "error", err)
		}
	}
}

func (s *RuleScanner) reload() {
	set, err := s.load()
	if err != nil {
		s.logger.Warn("failed to reload rules, keeping previous set", "path", s.path, "error", err)
		return
	}

	s.mu.Lock()
	s.rules = set
	s.mu.Unlock()

	s.logger.Info("rules reloaded", "path", s.path, "rules", len(set.rules))
}

package router

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/janmasethu/sakhi/pkg/log"
)

// PolicyWatcher reloads the router policy whenever the policy file changes.
// A file that fails to parse leaves the current policy in place.
type PolicyWatcher struct {
	router  *Router
	path    string
	watcher *fsnotify.Watcher
	once    sync.Once
}

func NewPolicyWatcher(router *Router, path string) (*PolicyWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create policy watcher: %w", err)
	}
	return &PolicyWatcher{
		router:  router,
		path:    filepath.Clean(path),
		watcher: w,
	}, nil
}

func (w *PolicyWatcher) Start(ctx context.Context) error {
	logger := log.FromCtx(ctx).With().Str("component", "policy_watcher").Str("path", w.path).Logger()

	// Editors often replace the file, so watch the directory.
	if err := w.watcher.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("watch policy dir: %w", err)
	}
	logger.Info().Msg("watching routing policy")

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path || !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if err := w.Reload(); err != nil {
				logger.Error().Err(err).Msg("routing policy reload failed, keeping previous policy")
				continue
			}
			logger.Info().Int("rules", len(w.router.Policy().Rules)).Msg("routing policy reloaded")
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn().Err(err).Msg("policy watcher error")
		}
	}
}

func (w *PolicyWatcher) Reload() error {
	p, err := LoadPolicy(w.path)
	if err != nil {
		return err
	}
	w.router.SetPolicy(p)
	return nil
}

func (w *PolicyWatcher) Shutdown(ctx context.Context) error {
	var err error
	w.once.Do(func() {
		err = w.watcher.Close()
	})
	return err
}

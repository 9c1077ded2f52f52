package router

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/janmasethu/sakhi/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPolicyWatcher_Reload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "policy.yaml")
	require.NoError(t, os.WriteFile(path, []byte("rules:\n  - name: hi\n    route: slm_direct\n    match: exact\n    phrases: [hello]\n"), 0644))

	r := New(nil)
	w, err := NewPolicyWatcher(r, path)
	require.NoError(t, err)
	require.NoError(t, w.Reload())
	assert.Equal(t, core.RouteSLMDirect, r.Decide("hello").Route)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- w.Start(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-errCh
		w.Shutdown(context.Background())
	})

	// Give the watcher time to register the directory.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("rules:\n  - name: all\n    route: openai_rag\n    phrases: [hello]\n"), 0644))

	assert.Eventually(t, func() bool {
		return r.Decide("hello").Route == core.RouteOpenAIRAG
	}, 3*time.Second, 20*time.Millisecond)

	// A broken file keeps the last good policy.
	require.NoError(t, os.WriteFile(path, []byte("rules: [\n"), 0644))
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, core.RouteOpenAIRAG, r.Decide("hello").Route)
}

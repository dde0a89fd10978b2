package watcher

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/mvp-joe/depgraph/internal/discovery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for Watcher:
// - New() fails for a missing directory and a nil filter
// - A single matching change fires the callback after the debounce period
// - Rapid changes to one file coalesce into one callback listing it once
// - Files rejected by the filter (non-.ts, .spec.ts) never fire
// - Removing a file is reported
// - Files in directories created after Start() are reported
// - Directories matching ignoreDirs, existing or new, are never watched
// - Context cancellation ends the watch goroutine
// - Stop() is idempotent and safe to call concurrently

func tsFilter(t *testing.T) Filter {
	t.Helper()
	c, err := discovery.NewCollector(regexp.MustCompile(`.ts$`), regexp.MustCompile(`.spec.ts$`), nil)
	require.NoError(t, err)
	return c
}

// recorder collects callback batches.
type recorder struct {
	mu      sync.Mutex
	batches [][]string
	called  chan struct{}
}

func newRecorder() *recorder {
	return &recorder{called: make(chan struct{}, 10)}
}

func (r *recorder) callback(files []string) {
	r.mu.Lock()
	r.batches = append(r.batches, files)
	r.mu.Unlock()
	r.called <- struct{}{}
}

func (r *recorder) wait(t *testing.T) {
	t.Helper()
	select {
	case <-r.called:
	case <-time.After(2 * time.Second):
		t.Fatal("callback not called after timeout")
	}
}

func (r *recorder) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var files []string
	for _, b := range r.batches {
		files = append(files, b...)
	}
	return files
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.batches)
}

func startWatcher(t *testing.T, dir string) (*Watcher, *recorder) {
	t.Helper()
	w, err := New(dir, tsFilter(t), WithDebounce(100*time.Millisecond))
	require.NoError(t, err)
	t.Cleanup(func() { w.Stop() })

	rec := newRecorder()
	require.NoError(t, w.Start(context.Background(), rec.callback))
	time.Sleep(50 * time.Millisecond)
	return w, rec
}

func TestNew_Errors(t *testing.T) {
	t.Parallel()

	_, err := New(filepath.Join(t.TempDir(), "missing"), tsFilter(t))
	assert.Error(t, err)

	_, err = New(t.TempDir(), nil)
	assert.Error(t, err)
}

func TestWatcher_SingleChange(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	_, rec := startWatcher(t, dir)

	file := filepath.Join(dir, "app.module.ts")
	require.NoError(t, os.WriteFile(file, []byte("export class AppModule {}"), 0644))

	rec.wait(t)
	assert.Equal(t, []string{file}, rec.all())
}

func TestWatcher_Debounce(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	_, rec := startWatcher(t, dir)

	file := filepath.Join(dir, "app.service.ts")
	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(file, []byte("// v"+string(rune('1'+i))), 0644))
		time.Sleep(20 * time.Millisecond)
	}

	rec.wait(t)
	time.Sleep(300 * time.Millisecond)

	assert.Equal(t, 1, rec.count(), "rapid writes should coalesce into one batch")
	assert.Equal(t, []string{file}, rec.all())
}

func TestWatcher_Filtering(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	_, rec := startWatcher(t, dir)

	included := filepath.Join(dir, "a.ts")
	specFile := filepath.Join(dir, "a.spec.ts")
	other := filepath.Join(dir, "notes.md")
	require.NoError(t, os.WriteFile(specFile, []byte("x"), 0644))
	require.NoError(t, os.WriteFile(other, []byte("x"), 0644))
	require.NoError(t, os.WriteFile(included, []byte("x"), 0644))

	rec.wait(t)
	files := rec.all()
	assert.Contains(t, files, included)
	assert.NotContains(t, files, specFile)
	assert.NotContains(t, files, other)
}

func TestWatcher_Remove(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	file := filepath.Join(dir, "gone.ts")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))

	_, rec := startWatcher(t, dir)
	require.NoError(t, os.Remove(file))

	rec.wait(t)
	assert.Contains(t, rec.all(), file)
}

func TestWatcher_NewDirectory(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	_, rec := startWatcher(t, dir)

	sub := filepath.Join(dir, "feature")
	require.NoError(t, os.Mkdir(sub, 0755))
	time.Sleep(200 * time.Millisecond)

	file := filepath.Join(sub, "feature.component.ts")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))

	rec.wait(t)
	assert.Contains(t, rec.all(), file)
}

func TestWatcher_ContextCancellation(t *testing.T) {
	t.Parallel()

	w, err := New(t.TempDir(), tsFilter(t))
	require.NoError(t, err)
	defer w.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, w.Start(ctx, func([]string) {}))
	cancel()

	select {
	case <-w.Done():
	case <-time.After(500 * time.Millisecond):
		t.Fatal("watch goroutine did not exit")
	}
}

func TestWatcher_StopIdempotent(t *testing.T) {
	t.Parallel()

	w, err := New(t.TempDir(), tsFilter(t))
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background(), func([]string) {}))

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.Stop()
		}()
	}
	wg.Wait()

	// Never started
	idle, err := New(t.TempDir(), tsFilter(t))
	require.NoError(t, err)
	require.NoError(t, idle.Stop())
	assert.NoError(t, idle.Stop())
}

func TestWatcher_IgnoredDirectories(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	vendor := filepath.Join(dir, "vendor")
	require.NoError(t, os.Mkdir(vendor, 0755))

	filter, err := discovery.NewCollector(regexp.MustCompile(`.ts$`), regexp.MustCompile(`.spec.ts$`), []string{"vendor", "generated"})
	require.NoError(t, err)
	w, err := New(dir, filter, WithDebounce(100*time.Millisecond))
	require.NoError(t, err)
	t.Cleanup(func() { w.Stop() })

	rec := newRecorder()
	require.NoError(t, w.Start(context.Background(), rec.callback))
	time.Sleep(50 * time.Millisecond)

	generated := filepath.Join(dir, "generated")
	require.NoError(t, os.Mkdir(generated, 0755))
	time.Sleep(200 * time.Millisecond)

	ignoredExisting := filepath.Join(vendor, "lib.ts")
	ignoredNew := filepath.Join(generated, "api.ts")
	watched := filepath.Join(dir, "app.ts")
	require.NoError(t, os.WriteFile(ignoredExisting, []byte("x"), 0644))
	require.NoError(t, os.WriteFile(ignoredNew, []byte("x"), 0644))
	require.NoError(t, os.WriteFile(watched, []byte("x"), 0644))

	rec.wait(t)
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, []string{watched}, rec.all())
}

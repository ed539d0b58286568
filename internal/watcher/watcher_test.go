package watcher

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestResolveSingleFile(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "app.log")
	writeFile(t, p, "line\n")

	files, err := Resolve(p)
	require.NoError(t, err)
	assert.Equal(t, []string{p}, files)
}

func TestResolveDirectorySortedFilesOnly(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "b.log"), "b\n")
	writeFile(t, filepath.Join(dir, "a.log"), "a\n")
	writeFile(t, filepath.Join(dir, "nested", "c.log"), "c\n")

	files, err := Resolve(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.log"), filepath.Join(dir, "b.log")}, files)
}

func TestResolveEmptyDirectory(t *testing.T) {
	files, err := Resolve(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestResolveGlob(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "x", "one.log"), "1\n")
	writeFile(t, filepath.Join(dir, "y", "z", "two.log"), "2\n")
	writeFile(t, filepath.Join(dir, "y", "skip.txt"), "3\n")

	files, err := Resolve(filepath.Join(dir, "**", "*.log"))
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "x", "one.log"),
		filepath.Join(dir, "y", "z", "two.log"),
	}, files)
}

func TestResolveMissing(t *testing.T) {
	_, err := Resolve(filepath.Join(t.TempDir(), "nope.log"))
	assert.True(t, errors.Is(err, ErrInputNotFound))

	_, err = Resolve(filepath.Join(t.TempDir(), "*.log"))
	assert.True(t, errors.Is(err, ErrInputNotFound))

	_, err = Resolve("")
	assert.True(t, errors.Is(err, ErrInputNotFound))
}

func TestOpenCompressed(t *testing.T) {
	dir := t.TempDir()
	const content = "01/02/2020 [alice]: build started\n"

	gzPath := filepath.Join(dir, "app.log.gz")
	f, err := os.Create(gzPath)
	require.NoError(t, err)
	zw := gzip.NewWriter(f)
	_, err = zw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	zstPath := filepath.Join(dir, "app.log.zst")
	f, err = os.Create(zstPath)
	require.NoError(t, err)
	enc, err := zstd.NewWriter(f)
	require.NoError(t, err)
	_, err = enc.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, enc.Close())
	require.NoError(t, f.Close())

	for _, p := range []string{gzPath, zstPath} {
		rc, err := Open(p)
		require.NoError(t, err, p)
		got, err := io.ReadAll(rc)
		require.NoError(t, err, p)
		require.NoError(t, rc.Close())
		assert.Equal(t, content, string(got), p)
	}
}

func TestOpenCorruptGzip(t *testing.T) {
	p := filepath.Join(t.TempDir(), "broken.gz")
	writeFile(t, p, "not gzip at all")

	_, err := Open(p)
	assert.Error(t, err)
}

func TestDebounceCoalesces(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	in := make(chan Event, 10)
	out := Debounce(ctx, in, 50*time.Millisecond)

	in <- Event{Path: "a"}
	in <- Event{Path: "b"}
	in <- Event{Path: "c"}

	select {
	case batch := <-out:
		assert.Len(t, batch, 3)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for batch")
	}

	close(in)
	_, ok := <-out
	assert.False(t, ok, "output should close with input")
}

func TestWatcherReportsWrites(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "test.log")
	outPath := filepath.Join(dir, "out.log")
	writeFile(t, logPath, "existing line\n")
	writeFile(t, outPath, "")

	w, err := New([]string{dir}, nil)
	require.NoError(t, err)
	w.Ignore(outPath)

	ctx, cancel := context.WithCancel(context.Background())
	go w.Start(ctx)

	// Give the watcher a moment to initialize.
	time.Sleep(200 * time.Millisecond)

	require.NoError(t, os.WriteFile(outPath, []byte("ignored\n"), 0644))
	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_WRONLY, 0644)
	require.NoError(t, err)
	_, _ = f.WriteString("hello from test\n")
	f.Close()

	select {
	case ev := <-w.Events:
		abs, _ := filepath.Abs(logPath)
		assert.Equal(t, abs, ev.Path)
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for event")
	}

	// Cancel and allow goroutines to stop before TempDir cleanup.
	cancel()
	time.Sleep(100 * time.Millisecond)
}

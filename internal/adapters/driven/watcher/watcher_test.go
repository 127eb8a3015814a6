package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatch_ReportsNewFileOnce(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	paths, err := New(40*time.Millisecond).Watch(ctx, dir)
	require.NoError(t, err)

	target := filepath.Join(dir, "Jane Doe.pdf")
	go func() {
		time.Sleep(20 * time.Millisecond)
		f, err := os.Create(target)
		if err != nil {
			return
		}
		for i := 0; i < 3; i++ {
			_, _ = f.WriteString("chunk")
			time.Sleep(5 * time.Millisecond)
		}
		f.Close()
	}()

	select {
	case path := <-paths:
		assert.Equal(t, target, path)
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for file")
	}

	select {
	case path := <-paths:
		t.Fatalf("file reported twice: %s", path)
	case <-time.After(150 * time.Millisecond):
	}
}

func TestWatch_ClosesOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	paths, err := New(0).Watch(ctx, t.TempDir())
	require.NoError(t, err)

	cancel()
	select {
	case _, ok := <-paths:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("channel did not close after context cancellation")
	}
}

func TestWatch_BadDirectory(t *testing.T) {
	_, err := New(0).Watch(context.Background(), "/non/existent/path")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "root path error")

	file := filepath.Join(t.TempDir(), "cv.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o600))
	_, err = New(0).Watch(context.Background(), file)
	assert.ErrorContains(t, err, "not a directory")
}

func TestHandleEvent(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "cv.docx")
	hidden := filepath.Join(dir, ".~lock.cv.docx")
	sub := filepath.Join(dir, "nested")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o600))
	require.NoError(t, os.WriteFile(hidden, []byte("x"), 0o600))
	require.NoError(t, os.Mkdir(sub, 0o755))

	tests := []struct {
		name string
		path string
		op   fsnotify.Op
		want bool
	}{
		{"create", file, fsnotify.Create, true},
		{"write", file, fsnotify.Write, true},
		{"write and chmod", file, fsnotify.Write | fsnotify.Chmod, true},
		{"chmod only", file, fsnotify.Chmod, false},
		{"remove", filepath.Join(dir, "gone.pdf"), fsnotify.Remove, false},
		{"rename", file, fsnotify.Rename, false},
		{"hidden", hidden, fsnotify.Create, false},
		{"directory", sub, fsnotify.Create, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path, ok := handleEvent(fsnotify.Event{Name: tt.path, Op: tt.op})
			assert.Equal(t, tt.want, ok)
			if tt.want {
				assert.Equal(t, tt.path, path)
			}
		})
	}
}

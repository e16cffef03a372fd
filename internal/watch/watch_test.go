package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestRun_ReportsWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "model.ass")
	require.NoError(t, os.WriteFile(path, []byte("albedo=a.png\n"), 0644))

	w, err := New(path, 20*time.Millisecond, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer w.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	changed := make(chan struct{}, 4)
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func() error {
			changed <- struct{}{}
			return nil
		})
	}()

	// Unrelated files in the same directory are ignored.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.ass"), []byte("x=y\n"), 0644))
	require.NoError(t, os.WriteFile(path, []byte("albedo=b.png\n"), 0644))

	select {
	case <-changed:
	case <-ctx.Done():
		t.Fatal("no change reported")
	}

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestRun_CallbackErrorStops(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.ass")
	require.NoError(t, os.WriteFile(path, nil, 0644))

	w, err := New(path, 10*time.Millisecond, nil)
	require.NoError(t, err)
	defer w.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	stop := errors.New("stop")
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func() error { return stop })
	}()

	require.NoError(t, os.WriteFile(path, []byte("a=b\n"), 0644))
	assert.ErrorIs(t, <-done, stop)
}

func TestNew_MissingDirectory(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing", "model.ass"), 0, nil)
	assert.Error(t, err)
}

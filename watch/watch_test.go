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
)

func TestWatcher_ReportsChangedFile(t *testing.T) {
	dir := t.TempDir()
	watched := filepath.Join(dir, "input.txt")
	other := filepath.Join(dir, "other.txt")
	require.NoError(t, os.WriteFile(watched, []byte("a"), 0o644))

	w, err := New(watched)
	require.NoError(t, err)
	defer w.Close()
	w.SetSettle(10 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	done := errors.New("done")
	var got []string
	go func() {
		time.Sleep(50 * time.Millisecond)
		os.WriteFile(other, []byte("ignored"), 0o644)
		os.WriteFile(watched, []byte("b"), 0o644)
	}()
	err = w.Run(ctx, func(changed []string) error {
		got = changed
		return done
	})

	require.ErrorIs(t, err, done)
	want, _ := filepath.Abs(watched)
	assert.Equal(t, []string{want}, got)
}

func TestWatcher_StopsWithContext(t *testing.T) {
	path := filepath.Join(t.TempDir(), "input.txt")
	require.NoError(t, os.WriteFile(path, nil, 0o644))
	w, err := New(path)
	require.NoError(t, err)
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = w.Run(ctx, func([]string) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNew_MissingDirectory(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "nope", "input.txt"))
	assert.Error(t, err)
}

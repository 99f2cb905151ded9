package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	godeck "github.com/bbiangul/go-deck"
)

const demo = "../../testdata/demo.md"

// run executes the CLI with args and returns its stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(&out)
	root.SetErr(io.Discard)
	err := root.Execute()
	return out.String(), err
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, 0},
		{godeck.ErrInputNotFound, 1},
		{fmt.Errorf("wrapped: %w", godeck.ErrInputNotFound), 1},
		{godeck.ErrEmptyDeck, 2},
		{errors.New("boom"), 2},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, exitCode(tt.err), "%v", tt.err)
	}
}

func TestRootConverts(t *testing.T) {
	out := filepath.Join(t.TempDir(), "demo.pptx")
	stdout, err := run(t, demo, out)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Created "+out+" (")
	assert.Contains(t, stdout, "with 9 slides")
	assert.FileExists(t, out)
}

func TestConvertCommand(t *testing.T) {
	out := filepath.Join(t.TempDir(), "demo.pptx")
	_, err := run(t, "convert", demo, out)
	require.NoError(t, err)

	stdout, err := run(t, "inspect", out)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Title:   My Awesome Presentation")
	assert.Contains(t, stdout, "Slides:  9")
	assert.Contains(t, stdout, "[2. Code]")
}

func TestRootMissingInput(t *testing.T) {
	_, err := run(t, filepath.Join(t.TempDir(), "missing.md"))
	require.ErrorIs(t, err, godeck.ErrInputNotFound)
	assert.Equal(t, 1, exitCode(err))
}

func TestRootDefaultsToSlidesMD(t *testing.T) {
	md, err := os.ReadFile(demo)
	require.NoError(t, err)
	dir := t.TempDir()
	t.Chdir(dir)

	_, err = run(t)
	require.ErrorIs(t, err, godeck.ErrInputNotFound)
	assert.Equal(t, 1, exitCode(err))

	require.NoError(t, os.WriteFile(filepath.Join(dir, defaultInput), md, 0o644))

	stdout, err := run(t)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Created slides.pptx (")
	assert.FileExists(t, filepath.Join(dir, "slides.pptx"))
}

func TestRootBadConfigFlag(t *testing.T) {
	_, err := run(t, "--config", filepath.Join(t.TempDir(), "nope.yaml"), demo, filepath.Join(t.TempDir(), "x.pptx"))
	require.ErrorIs(t, err, godeck.ErrInvalidConfig)
	assert.Equal(t, 2, exitCode(err))
}

func TestDumpJSON(t *testing.T) {
	stdout, err := run(t, "dump", demo)
	require.NoError(t, err)

	var deck struct {
		Meta   struct{ Title string }
		Slides []map[string]any
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &deck))
	assert.Equal(t, "My Awesome Presentation", deck.Meta.Title)
	assert.Len(t, deck.Slides, 9)
}

func TestDumpFormats(t *testing.T) {
	stdout, err := run(t, "dump", "--format", "yaml", demo)
	require.NoError(t, err)
	assert.Contains(t, stdout, "title: My Awesome Presentation")

	stdout, err = run(t, "dump", "-f", "pp", demo)
	require.NoError(t, err)
	assert.Contains(t, stdout, "My Awesome Presentation")

	_, err = run(t, "dump", "-f", "toml", demo)
	require.Error(t, err)
}

func TestOutlineCommand(t *testing.T) {
	out := filepath.Join(t.TempDir(), "outline.xlsx")
	stdout, err := run(t, "outline", demo, out)
	require.NoError(t, err)
	assert.Equal(t, "Created "+out+" with 9 slides\n", stdout)
	assert.FileExists(t, out)
}

func TestPreviewCommand(t *testing.T) {
	stdout, err := run(t, "preview", "--notes", demo)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Agenda")
	assert.Contains(t, stdout, "Notes: Welcome everyone.")
}

func TestRelevant(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "slides.md")
	tests := []struct {
		name string
		op   fsnotify.Op
		want bool
	}{
		{"slides.md", fsnotify.Write, true},
		{"slides.md", fsnotify.Create, true},
		{"slides.md", fsnotify.Rename, true},
		{"slides.md", fsnotify.Chmod, false},
		{"slides.md", fsnotify.Remove, false},
		{"config.yaml", fsnotify.Write, true},
		{"slides-config.json", fsnotify.Create, true},
		{"other.md", fsnotify.Write, false},
		{"notes.txt", fsnotify.Write, false},
	}
	for _, tt := range tests {
		ev := fsnotify.Event{Name: filepath.Join(dir, tt.name), Op: tt.op}
		assert.Equal(t, tt.want, relevant(ev, input), "%s %s", tt.name, tt.op)
	}
}

func TestWatchDebounces(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "slides.md")
	require.NoError(t, os.WriteFile(input, []byte("## One"), 0o644))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var calls atomic.Int32
	done := make(chan error, 1)
	go func() {
		done <- watch(ctx, input, 200*time.Millisecond, func() {
			calls.Add(1)
			cancel()
		})
	}()

	// Give the watcher time to register before writing.
	time.Sleep(200 * time.Millisecond)
	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(input, []byte(fmt.Sprintf("## One\n- %d", i)), 0o644))
	}

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(15 * time.Second):
		t.Fatal("watch did not return")
	}
	assert.Equal(t, int32(1), calls.Load())
}

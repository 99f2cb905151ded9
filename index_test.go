//go:build cgo && sqlite_fts5

package godeck

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLibrary(t *testing.T) *Library {
	t.Helper()
	cfg := DefaultConfig()
	cfg.DBPath = filepath.Join(t.TempDir(), "index.db")
	lib, err := OpenLibrary(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { lib.Close() })
	return lib
}

func TestIndexFile(t *testing.T) {
	lib := newTestLibrary(t)
	ctx := context.Background()

	res, err := lib.IndexFile(ctx, demoPath, false)
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.Equal(t, 9, res.Slides)
	assert.True(t, filepath.IsAbs(res.Path))

	decks, err := lib.ListDecks(ctx)
	require.NoError(t, err)
	require.Len(t, decks, 1)
	assert.Equal(t, "My Awesome Presentation", decks[0].Title)
	assert.Equal(t, "Jane Gopher", decks[0].Author)
	assert.Equal(t, 2, decks[0].SectionCount)
	assert.Contains(t, decks[0].Metadata, "markdown")

	stored, err := lib.Slides(ctx, demoPath)
	require.NoError(t, err)
	require.Len(t, stored, 9)
	assert.Equal(t, "1. Writing Slides", stored[2].Title)
	assert.True(t, stored[2].IsSection)
	assert.Equal(t, "go", stored[6].CodeLangs)
	assert.Contains(t, stored[1].Body, "Why Markdown")
}

func TestIndexFileSkipsUnchanged(t *testing.T) {
	lib := newTestLibrary(t)
	ctx := context.Background()

	first, err := lib.IndexFile(ctx, demoPath, false)
	require.NoError(t, err)

	again, err := lib.IndexFile(ctx, demoPath, false)
	require.NoError(t, err)
	assert.False(t, again.Changed)
	assert.Equal(t, first.DeckID, again.DeckID)
	assert.Equal(t, 9, again.Slides)

	forced, err := lib.IndexFile(ctx, demoPath, true)
	require.NoError(t, err)
	assert.True(t, forced.Changed)
	assert.Equal(t, first.DeckID, forced.DeckID)
}

func TestIndexFileReindexesChangedContent(t *testing.T) {
	lib := newTestLibrary(t)
	ctx := context.Background()

	in := filepath.Join(t.TempDir(), "talk.md")
	require.NoError(t, os.WriteFile(in, []byte("## One\n- mutexes"), 0o644))
	_, err := lib.IndexFile(ctx, in, false)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(in, []byte("## One\n- waitgroups\n\n---\n\n## Two"), 0o644))
	res, err := lib.IndexFile(ctx, in, false)
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.Equal(t, 2, res.Slides)

	hits, err := lib.Search(ctx, "mutexes", 10)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestIndexFileMissing(t *testing.T) {
	lib := newTestLibrary(t)
	_, err := lib.IndexFile(context.Background(), filepath.Join(t.TempDir(), "nope.md"), false)
	require.ErrorIs(t, err, ErrInputNotFound)
}

func TestLibrarySearch(t *testing.T) {
	lib := newTestLibrary(t)
	ctx := context.Background()
	_, err := lib.IndexFile(ctx, demoPath, false)
	require.NoError(t, err)

	hits, err := lib.Search(ctx, "audience", 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "Go example", hits[0].Title)
	assert.Equal(t, 7, hits[0].Slide)
	assert.Equal(t, "2. Code", hits[0].Section)
	assert.Equal(t, "demo.md", hits[0].Filename)
	assert.Contains(t, hits[0].Snippet, "audience")
	assert.Positive(t, hits[0].Score)

	hits, err = lib.Search(ctx, "repository", 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "Thanks", hits[0].Title)
	assert.Equal(t, "Share the repository link.", hits[0].Snippet)

	stats, err := lib.Store().Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Searches)
}

func TestLibraryRemove(t *testing.T) {
	lib := newTestLibrary(t)
	ctx := context.Background()
	_, err := lib.IndexFile(ctx, demoPath, false)
	require.NoError(t, err)

	require.NoError(t, lib.Remove(ctx, demoPath))
	_, err = lib.Slides(ctx, demoPath)
	require.ErrorIs(t, err, ErrNotIndexed)
	require.ErrorIs(t, lib.Remove(ctx, demoPath), ErrNotIndexed)
}

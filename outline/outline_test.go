package outline

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/bbiangul/go-deck/slides"
	"github.com/bbiangul/go-deck/theme"
)

const sampleDeck = "## Welcome\ntext with **bold**\n\n---\n\n# Part One\n### Why\n\n----\n\n## Details\n- a [link](http://x)\n  1. nested\n```go\nfmt.Println()\n```\nnote: say hi"

func TestRows(t *testing.T) {
	rows := Rows(slides.ParseDeck(sampleDeck))
	require.Len(t, rows, 3)

	assert.Equal(t, Row{Number: 1, Kind: "content", Title: "Welcome", Content: "text with bold"}, rows[0])
	assert.Equal(t, Row{Number: 2, Section: "Part One", Kind: "section", Title: "Part One", Subtitle: "Why"}, rows[1])

	assert.Equal(t, "Details", rows[2].Title)
	assert.Equal(t, "• a link\n  1. nested\n[code go, 1 lines]", rows[2].Content)
	assert.Equal(t, 1, rows[2].Code)
	assert.Equal(t, "say hi", rows[2].Notes)
}

func TestWriteWorkbook(t *testing.T) {
	out := filepath.Join(t.TempDir(), "outline.xlsx")
	require.NoError(t, Write(out, slides.ParseDeck(sampleDeck), theme.DefaultColors()))

	f, err := excelize.OpenFile(out)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SlidesSheet, SectionsSheet}, f.GetSheetList())

	rows, err := f.GetRows(SlidesSheet)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"#", "Section", "Kind", "Title", "Subtitle", "Content", "Code", "Notes"}, rows[0])
	assert.Equal(t, []string{"2", "Part One", "section", "Part One", "Why", "", "0"}, rows[2])

	sections, err := f.GetRows(SectionsSheet)
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"#", "Section", "Slides", "First slide"},
		{"0", "", "1", "1"},
		{"1", "Part One", "2", "2"},
	}, sections)
}

func TestWriteEmptyDeck(t *testing.T) {
	out := filepath.Join(t.TempDir(), "empty.xlsx")
	require.NoError(t, Write(out, slides.Deck{}, theme.Colors{}))

	f, err := excelize.OpenFile(out)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(SlidesSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

package pptx

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bbiangul/go-deck/slides"
)

func savedDeck(t *testing.T, n int) string {
	t.Helper()
	d := newTestDeck()
	for i := 0; i < n; i++ {
		d.AddContentSlide(slides.Slide{Title: "## Slide", Content: []slides.Item{{Kind: slides.Bullet, Text: "item"}}})
	}
	out := filepath.Join(t.TempDir(), "deck.pptx")
	require.NoError(t, d.Save(out))
	return out
}

func TestAddSections(t *testing.T) {
	out := savedDeck(t, 4)
	require.NoError(t, AddSections(out, []SectionInfo{
		{Name: "", Count: 1},
		{Name: "Section A", Count: 2},
		{Name: "Section B", Count: 1},
	}))

	sum, err := Inspect(out)
	require.NoError(t, err)
	require.Len(t, sum.Slides, 4)
	require.Len(t, sum.Sections, 2)

	assert.Equal(t, "Section A", sum.Sections[0].Name)
	assert.Equal(t, []int{257, 258}, sum.Sections[0].SlideIDs)
	assert.Equal(t, "Section B", sum.Sections[1].Name)
	assert.Equal(t, []int{259}, sum.Sections[1].SlideIDs)

	guid := regexp.MustCompile(`^\{[0-9A-F]{8}-[0-9A-F]{4}-[0-9A-F]{4}-[0-9A-F]{4}-[0-9A-F]{12}\}$`)
	assert.Regexp(t, guid, sum.Sections[0].ID)
	assert.NotEqual(t, sum.Sections[0].ID, sum.Sections[1].ID)

	pres := readPart(t, out, presentationPart)
	assert.Contains(t, pres, sectionExtURI)
	assert.Contains(t, pres, `xmlns:p14="`+nsP14+`"`)
}

func TestAddSectionsDeterministicIDs(t *testing.T) {
	infos := []SectionInfo{{Name: "Intro", Count: 1}, {Name: "Intro", Count: 1}}
	a := sectionEntries(infos)
	b := sectionEntries(infos)
	require.Len(t, a, 2)
	assert.Equal(t, a, b)
	assert.NotEqual(t, a[0].id, a[1].id)
}

func TestAddSectionsUnnamedIsNoop(t *testing.T) {
	out := savedDeck(t, 1)
	before, err := os.ReadFile(out)
	require.NoError(t, err)

	require.NoError(t, AddSections(out, []SectionInfo{{Name: "", Count: 1}}))
	require.NoError(t, AddSections(out, nil))

	after, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.NotContains(t, readPart(t, out, presentationPart), "sectionLst")
}

func TestAddSectionsTwice(t *testing.T) {
	out := savedDeck(t, 1)
	infos := []SectionInfo{{Name: "Only", Count: 1}}
	require.NoError(t, AddSections(out, infos))
	assert.ErrorIs(t, AddSections(out, infos), ErrSectionsExist)

	sum, err := Inspect(out)
	require.NoError(t, err)
	assert.Len(t, sum.Sections, 1)
}

func TestAddSectionsMissingFile(t *testing.T) {
	err := AddSections(filepath.Join(t.TempDir(), "nope.pptx"), []SectionInfo{{Name: "A", Count: 1}})
	assert.Error(t, err)
}

func TestPatchPresentation(t *testing.T) {
	entries := []sectionEntry{{name: "A & B", id: "{X}", slideIDs: []int{256}}}

	got, err := patchPresentation(`<p:presentation><p:extLst><p:ext uri="x"/></p:extLst></p:presentation>`, entries)
	require.NoError(t, err)
	assert.Equal(t, `<p:presentation><p:extLst><p:ext uri="x"/><p:ext uri="`+sectionExtURI+`"><p14:sectionLst xmlns:p14="`+nsP14+`"><p14:section name="A &amp; B" id="{X}"><p14:sldIdLst><p14:sldId id="256"/></p14:sldIdLst></p14:section></p14:sectionLst></p:ext></p:extLst></p:presentation>`, got)

	got, err = patchPresentation(`<p:presentation></p:presentation>`, entries)
	require.NoError(t, err)
	assert.Regexp(t, `^<p:presentation><p:extLst><p:ext .*</p:ext></p:extLst></p:presentation>$`, got)

	_, err = patchPresentation(`<broken/>`, entries)
	assert.Error(t, err)
}

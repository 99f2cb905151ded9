package preview

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bbiangul/go-deck/slides"
	"github.com/bbiangul/go-deck/theme"
)

const sample = "## Welcome\n### Subtitle here\n- first **point**\n  1. nested\nnote: hello audience\n\n---\n\n# Part One\n\n---\n\n## Code\n```go\nfunc main() {}\n```"

func render(t *testing.T, notes bool) string {
	t.Helper()
	return Render(slides.ParseDeck(sample), Options{Colors: theme.DefaultColors(), Width: 120, Notes: notes})
}

func TestRenderSlides(t *testing.T) {
	out := render(t, false)

	for _, want := range []string{"1/3", "Welcome", "Subtitle here", "•", "first", "point", "1.", "nested", "Part One", "main"} {
		assert.Contains(t, out, want)
	}
	assert.Contains(t, out, "2/3 · Part One")
	assert.Contains(t, out, "3/3 · Part One")
	assert.NotContains(t, out, "hello audience")
	assert.NotContains(t, out, "##")
}

func TestRenderNotes(t *testing.T) {
	out := render(t, true)
	assert.Contains(t, out, "Notes: hello audience")
}

func TestRenderFramesEverySlide(t *testing.T) {
	out := render(t, false)
	assert.Equal(t, 3, strings.Count(out, "╭"))
}

func TestRenderEmptyDeck(t *testing.T) {
	assert.Empty(t, Render(slides.Deck{}, Options{}))
}

func TestRenderNarrowWidth(t *testing.T) {
	out := Render(slides.ParseDeck("## Title\nsome text"), Options{Width: 1})
	assert.Contains(t, out, "Title")
}

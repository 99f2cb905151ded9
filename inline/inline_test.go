package inline

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func raw(segs []Segment) string {
	var b strings.Builder
	for _, s := range segs {
		b.WriteString(s.Raw)
	}
	return b.String()
}

func TestPlainText(t *testing.T) {
	segs := Parse("hello world")
	assert.Equal(t, []Segment{{Kind: Plain, Text: "hello world", Raw: "hello world"}}, segs)
}

func TestBold(t *testing.T) {
	segs := Parse("some **bold** text")
	require.Len(t, segs, 3)
	assert.Equal(t, Segment{Kind: Plain, Text: "some ", Raw: "some "}, segs[0])
	assert.Equal(t, Segment{Kind: Bold, Text: "bold", Raw: "**bold**"}, segs[1])
	assert.Equal(t, Segment{Kind: Plain, Text: " text", Raw: " text"}, segs[2])
}

func TestItalic(t *testing.T) {
	segs := Parse("some _italic_ text")
	require.Len(t, segs, 3)
	assert.Equal(t, Italic, segs[1].Kind)
	assert.Equal(t, "italic", segs[1].Text)
}

func TestCode(t *testing.T) {
	segs := Parse("use `pip install` here")
	require.Len(t, segs, 3)
	assert.Equal(t, Code, segs[1].Kind)
	assert.Equal(t, "pip install", segs[1].Text)
}

func TestLink(t *testing.T) {
	segs := Parse("click [here](https://example.com)")
	require.Len(t, segs, 2)
	assert.Equal(t, Link, segs[1].Kind)
	assert.Equal(t, "here", segs[1].Text)
	assert.Equal(t, "https://example.com", segs[1].URL)
}

func TestMixed(t *testing.T) {
	segs := Parse("**bold** and _italic_")
	kinds := make([]Kind, 0, len(segs))
	for _, s := range segs {
		kinds = append(kinds, s.Kind)
	}
	assert.Equal(t, []Kind{Bold, Plain, Italic}, kinds)
}

func TestNoNesting(t *testing.T) {
	segs := Parse("**a _b_ c**")
	require.Len(t, segs, 1)
	assert.Equal(t, Bold, segs[0].Kind)
	assert.Equal(t, "a _b_ c", segs[0].Text)

	segs = Parse("`**not bold**`")
	require.Len(t, segs, 1)
	assert.Equal(t, Code, segs[0].Kind)
}

func TestEarliestStartWins(t *testing.T) {
	segs := Parse("_x `y_ z`")
	require.NotEmpty(t, segs)
	assert.Equal(t, Italic, segs[0].Kind)
	assert.Equal(t, "x `y", segs[0].Text)
}

func TestEmptyString(t *testing.T) {
	assert.Equal(t, []Segment{{Kind: Plain}}, Parse(""))
}

func TestUnterminatedMarkupIsPlain(t *testing.T) {
	for _, in := range []string{"**open", "a _b", "`tick", "[text](no-close", "[only]"} {
		segs := Parse(in)
		require.Len(t, segs, 1, in)
		assert.Equal(t, Plain, segs[0].Kind, in)
		assert.Equal(t, in, segs[0].Text, in)
	}
}

func TestRawCoversInput(t *testing.T) {
	inputs := []string{
		"",
		"plain",
		"a **b** _c_ `d` [e](f) g",
		"****",
		"__",
		"snake_case_name and more_words_",
		"[a](b)[c](d)",
		"ünïcödé **bøld**",
	}
	for _, in := range inputs {
		assert.Equal(t, in, raw(Parse(in)), in)
	}
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "text", Plain.String())
	assert.Equal(t, "bold", Bold.String())
	assert.Equal(t, "link", Link.String())
}

func TestPlainTextHelper(t *testing.T) {
	assert.Equal(t, "see docs now", PlainText("see [docs](http://x) **now**"))
}

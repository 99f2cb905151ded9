package highlight

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testPalette = Palette{
	Text:     "1E293B",
	Keyword:  "7C3AED",
	String:   "059669",
	Comment:  "6B7280",
	Number:   "DC2626",
	Function: "2563EB",
	Type:     "D97706",
	DiffAdd:  "00AA00",
	DiffDel:  "AA0000",
}

func join(segs []Segment) string {
	var b strings.Builder
	for _, s := range segs {
		b.WriteString(s.Text)
	}
	return b.String()
}

func find(t *testing.T, segs []Segment, text string) Segment {
	t.Helper()
	for _, s := range segs {
		if s.Text == text {
			return s
		}
	}
	t.Fatalf("no segment with text %q in %+v", text, segs)
	return Segment{}
}

// ---------------------------------------------------------------------------
// Token classes
// ---------------------------------------------------------------------------

func TestKeyword(t *testing.T) {
	segs := Highlight("def foo", "python", testPalette)
	assert.Equal(t, testPalette.Keyword, find(t, segs, "def").Color)
}

func TestString(t *testing.T) {
	segs := Highlight(`"hello"`, "python", testPalette)
	require.Len(t, segs, 1)
	assert.Equal(t, testPalette.String, segs[0].Color)
}

func TestStringEscapes(t *testing.T) {
	segs := Highlight(`x = "a\"b" + y`, "python", testPalette)
	assert.Equal(t, testPalette.String, find(t, segs, `"a\"b"`).Color)
}

func TestUnterminatedStringRunsToEndOfLine(t *testing.T) {
	segs := Highlight("'open\nnext", "python", testPalette)
	assert.Equal(t, testPalette.String, segs[0].Color)
	assert.Equal(t, "'open", segs[0].Text)
}

func TestComment(t *testing.T) {
	segs := Highlight("# comment", "python", testPalette)
	require.Len(t, segs, 1)
	assert.Equal(t, testPalette.Comment, segs[0].Color)

	segs = Highlight("x := 1 // note", "go", testPalette)
	assert.Equal(t, testPalette.Comment, segs[len(segs)-1].Color)
	assert.Equal(t, "// note", segs[len(segs)-1].Text)
}

func TestStringTakesPrecedenceOverComment(t *testing.T) {
	segs := Highlight(`"# not a comment"`, "python", testPalette)
	require.Len(t, segs, 1)
	assert.Equal(t, testPalette.String, segs[0].Color)
}

func TestNumber(t *testing.T) {
	segs := Highlight("42", "python", testPalette)
	require.Len(t, segs, 1)
	assert.Equal(t, testPalette.Number, segs[0].Color)

	segs = Highlight("0x1F + 3.14", "go", testPalette)
	assert.Equal(t, testPalette.Number, find(t, segs, "0x1F").Color)
	assert.Equal(t, testPalette.Number, find(t, segs, "3.14").Color)
}

func TestFunctionCall(t *testing.T) {
	segs := Highlight("foo()", "python", testPalette)
	assert.Equal(t, testPalette.Function, find(t, segs, "foo").Color)
}

func TestTypeName(t *testing.T) {
	segs := Highlight("x: Widget", "python", testPalette)
	assert.Equal(t, testPalette.Type, find(t, segs, "Widget").Color)
}

func TestUpperCasedKeywordMatch(t *testing.T) {
	segs := Highlight("select id from users", "sql", testPalette)
	assert.Equal(t, testPalette.Keyword, find(t, segs, "select").Color)
	assert.Equal(t, testPalette.Keyword, find(t, segs, "from").Color)
}

// ---------------------------------------------------------------------------
// Fallbacks and diff
// ---------------------------------------------------------------------------

func TestUnknownLanguageFallback(t *testing.T) {
	segs := Highlight("some text", "brainfuck", testPalette)
	require.Len(t, segs, 1)
	assert.Equal(t, Segment{Text: "some text", Color: testPalette.Text}, segs[0])
}

func TestNoLanguage(t *testing.T) {
	segs := Highlight("some text", "", testPalette)
	require.Len(t, segs, 1)
	assert.Equal(t, Segment{Text: "some text", Color: testPalette.Text}, segs[0])
}

func TestDiff(t *testing.T) {
	segs := Highlight("+x\n-y\n z", "diff", testPalette)
	assert.Equal(t, []Segment{
		{Text: "+x\n", Color: testPalette.DiffAdd},
		{Text: "-y\n", Color: testPalette.DiffDel},
		{Text: " z", Color: testPalette.Text},
	}, segs)
}

func TestDiffMergesConsecutiveLines(t *testing.T) {
	segs := Highlight("+a\n+b\n c", "DIFF", testPalette)
	assert.Equal(t, []Segment{
		{Text: "+a\n+b\n", Color: testPalette.DiffAdd},
		{Text: " c", Color: testPalette.Text},
	}, segs)
}

// ---------------------------------------------------------------------------
// Merging and coverage
// ---------------------------------------------------------------------------

func TestMergeAdjacentSameColor(t *testing.T) {
	segs := Highlight("a b", "python", testPalette)
	require.Len(t, segs, 1)
	assert.Equal(t, "a b", segs[0].Text)
}

func TestCoverageAndNoAdjacentEqualColors(t *testing.T) {
	inputs := []struct{ code, lang string }{
		{"def f(x):\n    return \"é\" # done\n", "python"},
		{"func main() {\n\tfmt.Println(0xFF, 'c')\n}", "go"},
		{"SELECT * FROM t WHERE a = 'x\\'y'", "sql"},
		{"+added\n-removed\n+again\n", "diff"},
		{"", "rust"},
		{"\n\n", "js"},
		{"weird ∑ runes 🙂 _under", "ts"},
		{"unterminated \"string\\", "c++"},
	}
	for _, in := range inputs {
		segs := Highlight(in.code, in.lang, testPalette)
		assert.Equal(t, in.code, join(segs), "lang=%s", in.lang)
		for i := 1; i < len(segs); i++ {
			assert.NotEqual(t, segs[i-1].Color, segs[i].Color, "lang=%s index=%d", in.lang, i)
		}
	}
}

// ---------------------------------------------------------------------------
// Registry
// ---------------------------------------------------------------------------

func TestAliasEquivalence(t *testing.T) {
	code := "def x():\n    return Foo(1, 'a')  # c"
	pairs := [][2]string{
		{"python", "py"},
		{"javascript", "js"},
		{"javascript", "ts"},
		{"bash", "zsh"},
		{"ruby", "rb"},
		{"cpp", "C++"},
	}
	for _, p := range pairs {
		assert.Equal(t, Highlight(code, p[0], testPalette), Highlight(code, p[1], testPalette), "%s vs %s", p[0], p[1])
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"Python", "python", true},
		{" py ", "python", true},
		{"typescript", "javascript", true},
		{"shell", "bash", true},
		{"yml", "yaml", true},
		{"lhs", "haskell", true},
		{"diff", "", false},
		{"cobol", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := Resolve(tt.in)
		assert.Equal(t, tt.want, got, tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
	}
}

func TestLanguages(t *testing.T) {
	langs := Languages()
	assert.Len(t, langs, 17)
	assert.Contains(t, langs, "haskell")
	for alias, canonical := range Aliases() {
		assert.Contains(t, langs, canonical, alias)
	}
}

// Package inline splits a line of slide text into formatted segments.
package inline

import (
	"regexp"
	"strings"
)

// Kind classifies a segment.
type Kind int

const (
	Plain Kind = iota
	Bold
	Italic
	Code
	Link
)

func (k Kind) String() string {
	switch k {
	case Bold:
		return "bold"
	case Italic:
		return "italic"
	case Code:
		return "code"
	case Link:
		return "link"
	default:
		return "text"
	}
}

// Segment is one formatted run. Text is what gets displayed (markers
// removed); Raw is the exact source span it was produced from.
type Segment struct {
	Kind Kind
	Text string
	URL  string
	Raw  string
}

// markup matches the four span forms. Alternation is leftmost-first, so at a
// given start position bold wins over italic, code and link, in that order.
var markup = regexp.MustCompile(`\*\*[^*]+\*\*|_[^_]+_|` + "`[^`]+`" + `|\[[^\]]+\]\([^)]+\)`)

// Parse returns the segments of text, left to right, without gaps or
// overlaps. Unterminated markers stay plain text. Empty input yields a single
// empty plain segment.
func Parse(text string) []Segment {
	var segs []Segment
	last := 0
	for _, m := range markup.FindAllStringIndex(text, -1) {
		start, end := m[0], m[1]
		if start > last {
			segs = append(segs, plain(text[last:start]))
		}
		segs = append(segs, classify(text[start:end]))
		last = end
	}
	if last < len(text) {
		segs = append(segs, plain(text[last:]))
	}
	if len(segs) == 0 {
		segs = append(segs, plain(text))
	}
	return segs
}

// PlainText returns text with all markers removed, as it would be displayed.
func PlainText(text string) string {
	var b strings.Builder
	for _, s := range Parse(text) {
		b.WriteString(s.Text)
	}
	return b.String()
}

func plain(s string) Segment {
	return Segment{Kind: Plain, Text: s, Raw: s}
}

func classify(raw string) Segment {
	switch raw[0] {
	case '*':
		return Segment{Kind: Bold, Text: raw[2 : len(raw)-2], Raw: raw}
	case '_':
		return Segment{Kind: Italic, Text: raw[1 : len(raw)-1], Raw: raw}
	case '`':
		return Segment{Kind: Code, Text: raw[1 : len(raw)-1], Raw: raw}
	default:
		mid := strings.Index(raw, "](")
		return Segment{Kind: Link, Text: raw[1:mid], URL: raw[mid+2 : len(raw)-1], Raw: raw}
	}
}

// Package highlight colorizes code fragments with a small heuristic lexer.
//
// The lexer is deliberately not a grammar: every line is scanned left to
// right and each position is classified by a fixed precedence (string,
// comment, number, identifier, other). Ambiguous inputs such as a quote inside
// a comment resolve by that precedence, not by the rules of the language.
package highlight

import (
	"strings"
	"unicode"
)

// Palette holds the hex colors assigned to each token class.
type Palette struct {
	Text     string
	Keyword  string
	String   string
	Comment  string
	Number   string
	Function string
	Type     string
	DiffAdd  string
	DiffDel  string
}

// Segment is a run of code sharing one color.
type Segment struct {
	Text  string `json:"text"`
	Color string `json:"color"`
}

const numberRunes = ".xXabcdefABCDEF"

// Highlight splits code into colored segments. Concatenating the Text of the
// result reproduces code exactly, and no two adjacent segments share a color.
func Highlight(code, lang string, p Palette) []Segment {
	if strings.TrimSpace(lang) == "" {
		return []Segment{{Text: code, Color: p.Text}}
	}
	if strings.ToLower(strings.TrimSpace(lang)) == "diff" {
		return merge(highlightDiff(code, p))
	}
	key, ok := Resolve(lang)
	if !ok {
		return []Segment{{Text: code, Color: p.Text}}
	}

	var out []Segment
	lines := strings.Split(code, "\n")
	for idx, line := range lines {
		out = scanLine(out, []rune(line), key, p)
		if idx < len(lines)-1 {
			out = append(out, Segment{Text: "\n", Color: p.Text})
		}
	}
	return merge(out)
}

func highlightDiff(code string, p Palette) []Segment {
	lines := strings.Split(code, "\n")
	out := make([]Segment, 0, len(lines))
	for idx, line := range lines {
		color := p.Text
		switch {
		case strings.HasPrefix(line, "+"):
			color = p.DiffAdd
		case strings.HasPrefix(line, "-"):
			color = p.DiffDel
		}
		if idx < len(lines)-1 {
			line += "\n"
		}
		out = append(out, Segment{Text: line, Color: color})
	}
	return out
}

// scanLine appends the segments of a single line (without its newline).
func scanLine(out []Segment, line []rune, lang string, p Palette) []Segment {
	n := len(line)
	i := 0
	for i < n {
		c := line[i]

		// (a) string literal
		if c == '"' || c == '\'' {
			j := i + 1
			for j < n && line[j] != c {
				if line[j] == '\\' && j+1 < n {
					j += 2
				} else {
					j++
				}
			}
			if j < n {
				j++
			}
			out = append(out, Segment{Text: string(line[i:j]), Color: p.String})
			i = j
			continue
		}

		// (b) comment to end of line
		if c == '#' || (c == '/' && i+1 < n && line[i+1] == '/') {
			out = append(out, Segment{Text: string(line[i:]), Color: p.Comment})
			return out
		}

		// (c) number, permissive about hex and dots
		if unicode.IsDigit(c) {
			j := i
			for j < n && (unicode.IsDigit(line[j]) || strings.ContainsRune(numberRunes, line[j])) {
				j++
			}
			out = append(out, Segment{Text: string(line[i:j]), Color: p.Number})
			i = j
			continue
		}

		// (d) identifier
		if unicode.IsLetter(c) || c == '_' {
			j := i
			for j < n && (unicode.IsLetter(line[j]) || unicode.IsDigit(line[j]) || line[j] == '_') {
				j++
			}
			word := string(line[i:j])
			color := p.Text
			switch {
			case IsKeyword(lang, word) || IsKeyword(lang, strings.ToUpper(word)):
				color = p.Keyword
			case j < n && line[j] == '(':
				color = p.Function
			case unicode.IsUpper(c):
				color = p.Type
			}
			out = append(out, Segment{Text: word, Color: color})
			i = j
			continue
		}

		// (e) anything else
		out = append(out, Segment{Text: string(c), Color: p.Text})
		i++
	}
	return out
}

// merge joins adjacent segments of the same color.
func merge(in []Segment) []Segment {
	out := make([]Segment, 0, len(in))
	for _, seg := range in {
		if last := len(out) - 1; last >= 0 && out[last].Color == seg.Color {
			out[last].Text += seg.Text
			continue
		}
		out = append(out, seg)
	}
	return out
}

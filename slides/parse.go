package slides

import (
	"regexp"
	"strings"
	"unicode"
)

const (
	noteMarker = "note:"
	fence      = "```"

	uncheckedBox = "☐ "
	checkedBox   = "☑ "
)

var (
	bulletPattern   = regexp.MustCompile(`^(\s*)[-*]\s+(.+)`)
	numberedPattern = regexp.MustCompile(`^(\s*)(\d+)\.\s+(.+)`)
)

// slideParser carries the line state machine for a single slide.
type slideParser struct {
	slide Slide

	inNote bool
	notes  []string

	inCode   bool
	codeLang string
	code     []string
}

// ParseSlide parses one slide block. IsSection and the section fields are
// left at their zero values; Parse assigns them.
func ParseSlide(text string) Slide {
	p := &slideParser{}
	for _, line := range strings.Split(text, "\n") {
		p.line(line)
	}
	return p.finish()
}

func (p *slideParser) line(line string) {
	trimmed := strings.TrimSpace(line)

	// A note marker switches to note mode from any state, even inside a fence.
	if strings.HasPrefix(strings.ToLower(trimmed), noteMarker) {
		p.inNote = true
		lead := len(line) - len(strings.TrimLeftFunc(line, unicode.IsSpace))
		if rest := strings.TrimSpace(line[lead+len(noteMarker):]); rest != "" {
			p.notes = append(p.notes, rest)
		}
		return
	}
	if p.inNote {
		p.notes = append(p.notes, line)
		return
	}

	if strings.HasPrefix(trimmed, fence) {
		if !p.inCode {
			p.inCode = true
			p.codeLang = strings.TrimSpace(trimmed[len(fence):])
			p.code = nil
		} else {
			p.closeCode()
		}
		return
	}
	if p.inCode {
		p.code = append(p.code, line)
		return
	}

	switch {
	case strings.HasPrefix(line, "# "), strings.HasPrefix(line, "## "):
		p.slide.Title = line
		return
	case strings.HasPrefix(line, "### "):
		p.slide.Subtitle = strings.TrimSpace(line[4:])
		return
	}

	if m := bulletPattern.FindStringSubmatch(line); m != nil {
		p.slide.Content = append(p.slide.Content, Item{
			Kind:   Bullet,
			Text:   rewriteCheckbox(m[2]),
			Indent: len(m[1]) / 2,
		})
		return
	}
	if m := numberedPattern.FindStringSubmatch(line); m != nil {
		p.slide.Content = append(p.slide.Content, Item{
			Kind:   Numbered,
			Number: m[2],
			Text:   m[3],
			Indent: len(m[1]) / 2,
		})
		return
	}
	if trimmed != "" {
		p.slide.Content = append(p.slide.Content, Item{Kind: Text, Text: trimmed})
	}
}

func (p *slideParser) closeCode() {
	p.slide.Content = append(p.slide.Content, Item{
		Kind:    CodeBlock,
		Lang:    p.codeLang,
		Content: strings.Join(p.code, "\n"),
	})
	p.inCode = false
	p.codeLang = ""
	p.code = nil
}

func (p *slideParser) finish() Slide {
	// Code is emitted on the closing fence only; an open fence is dropped.
	if len(p.notes) > 0 {
		p.slide.Notes = strings.Join(p.notes, "\n")
	}
	return p.slide
}

func rewriteCheckbox(text string) string {
	switch {
	case strings.HasPrefix(text, "[ ] "):
		return uncheckedBox + text[4:]
	case strings.HasPrefix(text, "[x] "), strings.HasPrefix(text, "[X] "):
		return checkedBox + text[4:]
	}
	return text
}

// Package preview renders a parsed deck to the terminal.
package preview

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/bbiangul/go-deck/highlight"
	"github.com/bbiangul/go-deck/inline"
	"github.com/bbiangul/go-deck/slides"
	"github.com/bbiangul/go-deck/theme"
)

// DefaultWidth is used when Options.Width is not positive.
const DefaultWidth = 80

// Options configures rendering.
type Options struct {
	Colors theme.Colors
	Width  int
	// Notes includes speaker notes below each slide.
	Notes bool
}

type styles struct {
	header   lipgloss.Style
	frame    lipgloss.Style
	section  lipgloss.Style
	title    lipgloss.Style
	subtitle lipgloss.Style
	text     lipgloss.Style
	bold     lipgloss.Style
	italic   lipgloss.Style
	code     lipgloss.Style
	link     lipgloss.Style
	codeBox  lipgloss.Style
	notes    lipgloss.Style
}

func color(hex string) lipgloss.Color {
	return lipgloss.Color("#" + hex)
}

func newStyles(c theme.Colors, width int) styles {
	inner := width - 4 // border + padding
	if inner < 10 {
		inner = 10
	}
	frame := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(color(c.Primary)).
		Padding(0, 1).
		Width(inner)

	return styles{
		header: lipgloss.NewStyle().
			Foreground(color(c.MutedText)),
		frame: frame,
		section: frame.
			BorderForeground(color(c.Secondary)).
			Align(lipgloss.Center),
		title: lipgloss.NewStyle().
			Foreground(color(c.Primary)).
			Bold(true),
		subtitle: lipgloss.NewStyle().
			Foreground(color(c.Secondary)).
			Italic(true),
		text: lipgloss.NewStyle().
			Foreground(color(c.DarkText)),
		bold: lipgloss.NewStyle().
			Foreground(color(c.DarkText)).
			Bold(true),
		italic: lipgloss.NewStyle().
			Foreground(color(c.DarkText)).
			Italic(true),
		code: lipgloss.NewStyle().
			Foreground(color(c.Accent)),
		link: lipgloss.NewStyle().
			Foreground(color(c.Accent)).
			Underline(true),
		codeBox: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(color(c.CodeBorder)).
			Padding(0, 1),
		notes: lipgloss.NewStyle().
			Foreground(color(c.MutedText)).
			Italic(true),
	}
}

// Render draws every slide of deck as a framed box, separated by blank lines.
func Render(deck slides.Deck, opts Options) string {
	colors, _ := opts.Colors.Normalize()
	width := opts.Width
	if width <= 0 {
		width = DefaultWidth
	}
	st := newStyles(colors, width)
	palette := colors.Palette()

	blocks := make([]string, 0, len(deck.Slides))
	for i, s := range deck.Slides {
		blocks = append(blocks, renderSlide(s, i+1, len(deck.Slides), st, palette, opts.Notes))
	}
	return strings.Join(blocks, "\n\n")
}

func renderSlide(s slides.Slide, n, total int, st styles, p highlight.Palette, notes bool) string {
	label := fmt.Sprintf("%d/%d", n, total)
	if s.Section != "" {
		label += " · " + s.Section
	}

	var body []string
	if s.IsSection {
		body = append(body, st.title.Render(strings.TrimSpace(strings.TrimLeft(s.Title, "# "))))
		if s.Subtitle != "" {
			body = append(body, st.subtitle.Render(inline.PlainText(s.Subtitle)))
		}
		out := st.header.Render(label) + "\n" + st.section.Render(strings.Join(body, "\n"))
		return withNotes(out, s, st, notes)
	}

	if s.Title != "" {
		body = append(body, st.title.Render(inline.PlainText(strings.TrimSpace(strings.TrimLeft(s.Title, "# ")))))
	}
	if s.Subtitle != "" {
		body = append(body, st.subtitle.Render(inline.PlainText(s.Subtitle)))
	}
	if len(body) > 0 && len(s.Content) > 0 {
		body = append(body, "")
	}
	for _, it := range s.Content {
		indent := strings.Repeat("  ", it.Indent)
		switch it.Kind {
		case slides.CodeBlock:
			body = append(body, st.codeBox.Render(codeText(it, p)))
		case slides.Bullet:
			body = append(body, indent+"• "+st.runs(it.Text))
		case slides.Numbered:
			body = append(body, indent+it.Number+". "+st.runs(it.Text))
		default:
			body = append(body, st.runs(it.Text))
		}
	}

	out := st.header.Render(label) + "\n" + st.frame.Render(strings.Join(body, "\n"))
	return withNotes(out, s, st, notes)
}

func withNotes(out string, s slides.Slide, st styles, notes bool) string {
	if !notes || s.Notes == "" {
		return out
	}
	return out + "\n" + st.notes.Render("Notes: "+s.Notes)
}

// runs styles the inline segments of one line of text.
func (st styles) runs(text string) string {
	var b strings.Builder
	for _, seg := range inline.Parse(text) {
		switch seg.Kind {
		case inline.Bold:
			b.WriteString(st.bold.Render(seg.Text))
		case inline.Italic:
			b.WriteString(st.italic.Render(seg.Text))
		case inline.Code:
			b.WriteString(st.code.Render(seg.Text))
		case inline.Link:
			b.WriteString(st.link.Render(seg.Text))
		default:
			b.WriteString(st.text.Render(seg.Text))
		}
	}
	return b.String()
}

// codeText colors a code block line by line so styles never span a newline.
func codeText(it slides.Item, p highlight.Palette) string {
	var b strings.Builder
	for _, seg := range highlight.Highlight(it.Content, it.Lang, p) {
		style := lipgloss.NewStyle().Foreground(color(seg.Color))
		for i, part := range strings.Split(seg.Text, "\n") {
			if i > 0 {
				b.WriteByte('\n')
			}
			if part != "" {
				b.WriteString(style.Render(part))
			}
		}
	}
	return b.String()
}

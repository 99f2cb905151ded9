// Package outline exports a parsed deck as a spreadsheet: one row per slide
// and one row per section.
package outline

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/bbiangul/go-deck/inline"
	"github.com/bbiangul/go-deck/slides"
	"github.com/bbiangul/go-deck/theme"
)

const (
	SlidesSheet   = "Slides"
	SectionsSheet = "Sections"
)

var (
	slideHeader   = []any{"#", "Section", "Kind", "Title", "Subtitle", "Content", "Code", "Notes"}
	sectionHeader = []any{"#", "Section", "Slides", "First slide"}
)

// Row is the outline of one slide.
type Row struct {
	Number   int
	Section  string
	Kind     string
	Title    string
	Subtitle string
	Content  string
	Code     int
	Notes    string
}

// Rows flattens the deck into outline rows. Inline markup is reduced to its
// display text and list items keep their bullet or number.
func Rows(deck slides.Deck) []Row {
	rows := make([]Row, 0, len(deck.Slides))
	for i, s := range deck.Slides {
		r := Row{
			Number:   i + 1,
			Section:  s.Section,
			Kind:     "content",
			Title:    inline.PlainText(strings.TrimSpace(strings.TrimLeft(s.Title, "# "))),
			Subtitle: inline.PlainText(s.Subtitle),
			Notes:    s.Notes,
		}
		if s.IsSection {
			r.Kind = "section"
		}
		var lines []string
		for _, it := range s.Content {
			indent := strings.Repeat("  ", it.Indent)
			switch it.Kind {
			case slides.CodeBlock:
				r.Code++
				lines = append(lines, fmt.Sprintf("[code %s, %d lines]", codeLang(it.Lang), strings.Count(it.Content, "\n")+1))
			case slides.Bullet:
				lines = append(lines, indent+"• "+inline.PlainText(it.Text))
			case slides.Numbered:
				lines = append(lines, indent+it.Number+". "+inline.PlainText(it.Text))
			default:
				lines = append(lines, inline.PlainText(it.Text))
			}
		}
		r.Content = strings.Join(lines, "\n")
		rows = append(rows, r)
	}
	return rows
}

func codeLang(lang string) string {
	if lang == "" {
		return "plain"
	}
	return lang
}

// Write saves the outline workbook to path. Header rows use the deck's
// primary color.
func Write(path string, deck slides.Deck, colors theme.Colors) error {
	colors, _ = colors.Normalize()

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SlidesSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(SectionsSheet); err != nil {
		return fmt.Errorf("add sheet: %w", err)
	}

	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: colors.White},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{colors.Primary}},
	})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	wrap, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
	})
	if err != nil {
		return fmt.Errorf("wrap style: %w", err)
	}

	rows := Rows(deck)
	if err := writeSheet(f, SlidesSheet, slideHeader, len(rows), func(i int) []any {
		r := rows[i]
		return []any{r.Number, r.Section, r.Kind, r.Title, r.Subtitle, r.Content, r.Code, r.Notes}
	}, header); err != nil {
		return err
	}
	if len(rows) > 0 {
		last, _ := excelize.CoordinatesToCellName(len(slideHeader), len(rows)+1)
		if err := f.SetCellStyle(SlidesSheet, "A2", last, wrap); err != nil {
			return fmt.Errorf("style %s: %w", SlidesSheet, err)
		}
	}
	for col, width := range map[string]float64{"A": 5, "B": 20, "C": 10, "D": 36, "E": 24, "F": 60, "G": 6, "H": 40} {
		if err := f.SetColWidth(SlidesSheet, col, col, width); err != nil {
			return fmt.Errorf("column width: %w", err)
		}
	}

	groups := deck.Sections()
	first := 1
	firsts := make([]int, len(groups))
	for i, g := range groups {
		firsts[i] = first
		first += g.Count
	}
	if err := writeSheet(f, SectionsSheet, sectionHeader, len(groups), func(i int) []any {
		g := groups[i]
		return []any{g.Index, g.Name, g.Count, firsts[i]}
	}, header); err != nil {
		return err
	}
	if err := f.SetColWidth(SectionsSheet, "B", "B", 30); err != nil {
		return fmt.Errorf("column width: %w", err)
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving XLSX: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, header []any, n int, row func(int) []any, headerStyle int) error {
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("%s header: %w", sheet, err)
	}
	last, _ := excelize.CoordinatesToCellName(len(header), 1)
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("%s header style: %w", sheet, err)
	}
	for i := 0; i < n; i++ {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		values := row(i)
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("%s row %d: %w", sheet, i+1, err)
		}
	}
	if err := f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("%s panes: %w", sheet, err)
	}
	return nil
}

// Package pptx renders parsed slides into an Office Open XML presentation
// and reads generated presentations back for inspection.
package pptx

import (
	"archive/zip"
	"fmt"
	"io"
	"math"
	"net/url"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/bbiangul/go-deck/highlight"
	"github.com/bbiangul/go-deck/inline"
	"github.com/bbiangul/go-deck/slides"
	"github.com/bbiangul/go-deck/theme"
)

const (
	layoutTitle   = 1
	layoutContent = 2

	codeFontSize = 1100
	textFontSize = 1500
)

var (
	headingMarks = regexp.MustCompile(`^#+\s*`)
	numberPrefix = regexp.MustCompile(`^\d+\.\s*`)
)

// Options configure a Deck.
type Options struct {
	Colors theme.Colors
	Fonts  theme.Fonts
	Meta   slides.Meta

	// Created stamps the document properties. Zero means time.Now.
	Created time.Time
}

// Deck accumulates rendered slides until Save writes the package.
type Deck struct {
	colors  theme.Colors
	fonts   theme.Fonts
	meta    slides.Meta
	created time.Time

	slides       []*slidePart
	linkFailures int
}

type slidePart struct {
	layout int
	title  string
	body   string
	rels   []rel
	notes  string
}

// New returns an empty deck. Missing or invalid colors and fonts fall back
// to the defaults.
func New(opts Options) *Deck {
	colors, _ := opts.Colors.Normalize()
	created := opts.Created
	if created.IsZero() {
		created = time.Now()
	}
	return &Deck{
		colors:  colors,
		fonts:   opts.Fonts.Normalize(),
		meta:    opts.Meta,
		created: created.UTC(),
	}
}

// Len returns the number of slides added so far.
func (d *Deck) Len() int { return len(d.slides) }

// LinkFailures returns how many hyperlinks were rendered without a link
// relationship because their URL could not be used.
func (d *Deck) LinkFailures() int { return d.linkFailures }

// Add appends s using the layout its IsSection flag selects.
func (d *Deck) Add(s slides.Slide) {
	if s.IsSection {
		d.AddSectionSlide(s)
		return
	}
	d.AddContentSlide(s)
}

// AddSectionSlide appends a divider slide on the "Title Slide" layout.
func (d *Deck) AddSectionSlide(s slides.Slide) {
	b := d.newBuilder()
	title := strings.TrimSpace(strings.TrimLeft(s.Title, "# "))

	b.placeholder("Title 1", `<p:ph type="ctrTitle"/>`, func() { b.inlineParagraph("", title, 0) })
	b.placeholder("Subtitle 2", `<p:ph type="subTitle" idx="1"/>`, func() { b.inlineParagraph("", s.Subtitle, 0) })

	d.slides = append(d.slides, b.finish(layoutTitle, title, s.Notes))
}

// AddContentSlide appends a slide on the "Title and Content" layout. Slides
// with code blocks lay their content out as positioned shapes; all others
// use the body placeholder.
func (d *Deck) AddContentSlide(s slides.Slide) {
	b := d.newBuilder()
	title := contentTitle(s.Title)

	b.placeholder("Title 1", `<p:ph type="title"/>`, func() { b.inlineParagraph("", title, 0) })

	if !s.HasCode() {
		b.placeholder("Content Placeholder 2", `<p:ph idx="1"/>`, func() {
			if len(s.Content) == 0 {
				b.emptyParagraph()
			}
			for _, it := range s.Content {
				b.bodyItem(it)
			}
		})
	} else {
		b.placeholder("Content Placeholder 2", `<p:ph idx="1"/>`, b.emptyParagraph)
		y := 1.5
		for _, it := range s.Content {
			if it.Kind == slides.CodeBlock {
				y += b.codeBlock(it, y) + 0.15
				continue
			}
			b.textBox(it, y)
			y += 0.4
		}
	}

	d.slides = append(d.slides, b.finish(layoutContent, title, s.Notes))
}

// contentTitle strips heading markers and a leading "N." numbering prefix.
func contentTitle(title string) string {
	title = strings.TrimSpace(headingMarks.ReplaceAllString(title, ""))
	return numberPrefix.ReplaceAllString(title, "")
}

// ---------------------------------------------------------------------------
// Slide builder
// ---------------------------------------------------------------------------

type slideBuilder struct {
	d      *Deck
	buf    strings.Builder
	nextID int
	rels   []rel
}

func (d *Deck) newBuilder() *slideBuilder {
	return &slideBuilder{
		d:      d,
		nextID: 2,
		rels:   []rel{{id: "rId1", typ: relSlideLayout}},
	}
}

func (b *slideBuilder) shapeID() int {
	id := b.nextID
	b.nextID++
	return id
}

func (b *slideBuilder) finish(layout int, title, notes string) *slidePart {
	b.rels[0].target = fmt.Sprintf("../slideLayouts/slideLayout%d.xml", layout)
	return &slidePart{
		layout: layout,
		title:  title,
		body:   b.buf.String(),
		rels:   b.rels,
		notes:  notes,
	}
}

// link registers an external hyperlink relationship and returns its id.
func (b *slideBuilder) link(raw string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.String() == "" {
		b.d.linkFailures++
		log.Debug().Str("url", raw).AnErr("error", err).Msg("pptx: hyperlink skipped")
		return "", false
	}
	id := "rId" + strconv.Itoa(len(b.rels)+1)
	b.rels = append(b.rels, rel{id: id, typ: relHyperlink, target: u.String(), external: true})
	return id, true
}

func (b *slideBuilder) placeholder(name, ph string, body func()) {
	id := b.shapeID()
	fmt.Fprintf(&b.buf, `<p:sp><p:nvSpPr><p:cNvPr id="%d" name="%s"/><p:cNvSpPr><a:spLocks noGrp="1"/></p:cNvSpPr><p:nvPr>%s</p:nvPr></p:nvSpPr><p:spPr/><p:txBody><a:bodyPr/><a:lstStyle/>`, id, esc(name), ph)
	body()
	b.buf.WriteString(`</p:txBody></p:sp>`)
}

func (b *slideBuilder) emptyParagraph() {
	b.buf.WriteString(`<a:p><a:endParaRPr lang="en-US" dirty="0"/></a:p>`)
}

// inlineParagraph writes one paragraph of inline-formatted text. An empty
// text yields an empty paragraph.
func (b *slideBuilder) inlineParagraph(pPr, text string, size int) {
	if text == "" {
		b.buf.WriteString(`<a:p>` + pPr + `<a:endParaRPr lang="en-US" dirty="0"/></a:p>`)
		return
	}
	b.buf.WriteString(`<a:p>` + pPr)
	b.inlineRuns(text, size)
	b.buf.WriteString(`</a:p>`)
}

func (b *slideBuilder) inlineRuns(text string, size int) {
	for _, seg := range inline.Parse(text) {
		st := runStyle{size: size}
		switch seg.Kind {
		case inline.Bold:
			st.bold = true
		case inline.Italic:
			st.italic = true
		case inline.Code:
			st.font = b.d.fonts.Code
			st.color = b.d.colors.Accent
		case inline.Link:
			st.color = b.d.colors.Accent
			st.underline = true
			if id, ok := b.link(seg.URL); ok {
				st.link = id
			}
		}
		writeRun(&b.buf, seg.Text, st)
	}
}

func (b *slideBuilder) bodyItem(it slides.Item) {
	switch it.Kind {
	case slides.Bullet:
		b.inlineParagraph(levelPPr(it.Indent, false), it.Text, 0)
	case slides.Numbered:
		b.inlineParagraph(levelPPr(it.Indent, true), numberLabel(it)+it.Text, 0)
	default:
		b.inlineParagraph(`<a:pPr marL="0" indent="0"><a:buNone/></a:pPr>`, it.Text, 0)
	}
}

// levelPPr returns the paragraph properties for a list item. Numbered items
// carry their number in the text, so their bullet is suppressed.
func levelPPr(level int, noBullet bool) string {
	switch {
	case level > 0 && noBullet:
		return `<a:pPr lvl="` + strconv.Itoa(level) + `"><a:buNone/></a:pPr>`
	case level > 0:
		return `<a:pPr lvl="` + strconv.Itoa(level) + `"/>`
	case noBullet:
		return `<a:pPr><a:buNone/></a:pPr>`
	}
	return ""
}

func numberLabel(it slides.Item) string {
	n := it.Number
	if n == "" {
		n = "1"
	}
	return n + ". "
}

// codeBlock draws a filled rectangle with a highlighted text box on top and
// returns the block height in inches.
func (b *slideBuilder) codeBlock(it slides.Item, y float64) float64 {
	lines := strings.Count(it.Content, "\n") + 1
	h := math.Min(float64(lines)*0.22+0.3, 3.5)

	id := b.shapeID()
	fmt.Fprintf(&b.buf, `<p:sp><p:nvSpPr><p:cNvPr id="%d" name="Rectangle %d"/><p:cNvSpPr/><p:nvPr/></p:nvSpPr><p:spPr>%s<a:prstGeom prst="rect"><a:avLst/></a:prstGeom><a:solidFill><a:srgbClr val="%s"/></a:solidFill><a:ln><a:solidFill><a:srgbClr val="%s"/></a:solidFill></a:ln></p:spPr><p:txBody><a:bodyPr rtlCol="0" anchor="ctr"/><a:lstStyle/><a:p><a:endParaRPr lang="en-US" dirty="0"/></a:p></p:txBody></p:sp>`,
		id, id-1, xfrm(0.5, y, 9, h), b.d.colors.CodeBlock, b.d.colors.CodeBorder)

	b.openTextBox(0.6, y+0.1, 8.8, h-0.2)
	b.buf.WriteString(`<a:p>`)
	palette := b.d.colors.Palette()
	for _, seg := range highlight.Highlight(it.Content, it.Lang, palette) {
		st := runStyle{size: codeFontSize, font: b.d.fonts.Code, color: seg.Color}
		for i, part := range strings.Split(seg.Text, "\n") {
			if i > 0 {
				b.buf.WriteString(`<a:br>` + st.rPr() + `</a:br>`)
			}
			if part != "" {
				writeRun(&b.buf, part, st)
			}
		}
	}
	b.buf.WriteString(`</a:p>`)
	b.closeTextBox()
	return h
}

// textBox draws a non-code item as a single 15pt paragraph.
func (b *slideBuilder) textBox(it slides.Item, y float64) {
	text := it.Text
	switch it.Kind {
	case slides.Bullet:
		text = "• " + text
	case slides.Numbered:
		text = numberLabel(it) + text
	}
	b.openTextBox(0.5, y, 9, 0.5)
	b.inlineParagraph("", text, textFontSize)
	b.closeTextBox()
}

func (b *slideBuilder) openTextBox(x, y, w, h float64) {
	id := b.shapeID()
	fmt.Fprintf(&b.buf, `<p:sp><p:nvSpPr><p:cNvPr id="%d" name="TextBox %d"/><p:cNvSpPr txBox="1"/><p:nvPr/></p:nvSpPr><p:spPr>%s<a:prstGeom prst="rect"><a:avLst/></a:prstGeom><a:noFill/></p:spPr><p:txBody><a:bodyPr wrap="square" rtlCol="0"/><a:lstStyle/>`,
		id, id-1, xfrm(x, y, w, h))
}

func (b *slideBuilder) closeTextBox() {
	b.buf.WriteString(`</p:txBody></p:sp>`)
}

func xfrm(x, y, w, h float64) string {
	return fmt.Sprintf(`<a:xfrm><a:off x="%d" y="%d"/><a:ext cx="%d" cy="%d"/></a:xfrm>`, emu(x), emu(y), emu(w), emu(h))
}

func emu(inches float64) int64 {
	return int64(math.Round(inches * emuPerInch))
}

// ---------------------------------------------------------------------------
// Runs
// ---------------------------------------------------------------------------

type runStyle struct {
	size      int // hundredths of a point; 0 inherits
	font      string
	color     string
	bold      bool
	italic    bool
	underline bool
	link      string
}

func (st runStyle) rPr() string {
	var b strings.Builder
	b.WriteString(`<a:rPr lang="en-US"`)
	if st.size > 0 {
		b.WriteString(` sz="` + strconv.Itoa(st.size) + `"`)
	}
	if st.bold {
		b.WriteString(` b="1"`)
	}
	if st.italic {
		b.WriteString(` i="1"`)
	}
	if st.underline {
		b.WriteString(` u="sng"`)
	}
	b.WriteString(` dirty="0">`)
	if st.color != "" {
		b.WriteString(`<a:solidFill><a:srgbClr val="` + esc(st.color) + `"/></a:solidFill>`)
	}
	if st.font != "" {
		b.WriteString(`<a:latin typeface="` + esc(st.font) + `"/>`)
	}
	if st.link != "" {
		b.WriteString(`<a:hlinkClick r:id="` + st.link + `"/>`)
	}
	b.WriteString(`</a:rPr>`)
	return b.String()
}

func writeRun(w *strings.Builder, text string, st runStyle) {
	w.WriteString(`<a:r>` + st.rPr() + `<a:t>` + esc(text) + `</a:t></a:r>`)
}

// ---------------------------------------------------------------------------
// Package
// ---------------------------------------------------------------------------

// Save writes the presentation to path, replacing any existing file.
func (d *Deck) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := d.Write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Write writes the presentation package to w.
func (d *Deck) Write(w io.Writer) error {
	zw := zip.NewWriter(w)
	for _, p := range d.packageParts() {
		if p.err != nil {
			zw.Close()
			return fmt.Errorf("render %s: %w", p.name, p.err)
		}
		fw, err := zw.CreateHeader(&zip.FileHeader{
			Name:     p.name,
			Method:   zip.Deflate,
			Modified: d.created,
		})
		if err != nil {
			zw.Close()
			return fmt.Errorf("write %s: %w", p.name, err)
		}
		if _, err := io.WriteString(fw, p.data); err != nil {
			zw.Close()
			return fmt.Errorf("write %s: %w", p.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("finish package: %w", err)
	}
	return nil
}

type part struct {
	name string
	data string
	err  error
}

func (d *Deck) packageData() packageData {
	data := packageData{
		Colors:   d.colors,
		Header:   d.fonts.Header,
		Body:     d.fonts.Body,
		Code:     d.fonts.Code,
		Title:    d.meta.Title,
		Subject:  d.meta.Subject,
		Creator:  d.meta.Author,
		Keywords: strings.Join(d.meta.Keywords, ", "),
		Created:  d.created.Format(time.RFC3339),
		Levels:   bodyLevels,
	}
	if data.Title == "" {
		for _, s := range d.slides {
			if s.title != "" {
				data.Title = s.title
				break
			}
		}
	}
	for i, s := range d.slides {
		data.Slides = append(data.Slides, slideRef{
			Num:      i + 1,
			ID:       firstSlideID + i,
			RelID:    "rId" + strconv.Itoa(i+7),
			HasNotes: s.notes != "",
		})
		if s.notes != "" {
			data.Notes++
		}
	}
	return data
}

func (d *Deck) packageParts() []part {
	data := d.packageData()
	tpl := func(name, tmpl string) part {
		s, err := renderPart(tmpl, data)
		return part{name: name, data: s, err: err}
	}

	presRels := []rel{
		{id: "rId1", typ: relSlideMaster, target: "slideMasters/slideMaster1.xml"},
		{id: "rId2", typ: relNotesMaster, target: "notesMasters/notesMaster1.xml"},
		{id: "rId3", typ: relPresProps, target: "presProps.xml"},
		{id: "rId4", typ: relViewProps, target: "viewProps.xml"},
		{id: "rId5", typ: relTheme, target: "theme/theme1.xml"},
		{id: "rId6", typ: relTableStyles, target: "tableStyles.xml"},
	}
	for _, ref := range data.Slides {
		presRels = append(presRels, rel{id: ref.RelID, typ: relSlide, target: fmt.Sprintf("slides/slide%d.xml", ref.Num)})
	}

	out := []part{
		tpl("[Content_Types].xml", "contentTypes"),
		{name: "_rels/.rels", data: relsXML([]rel{
			{id: "rId1", typ: relOfficeDoc, target: "ppt/presentation.xml"},
			{id: "rId2", typ: relCoreProps, target: "docProps/core.xml"},
			{id: "rId3", typ: relExtProps, target: "docProps/app.xml"},
		})},
		tpl("docProps/core.xml", "core"),
		tpl("docProps/app.xml", "app"),
		tpl("ppt/presentation.xml", "presentation"),
		{name: "ppt/_rels/presentation.xml.rels", data: relsXML(presRels)},
		tpl("ppt/presProps.xml", "presProps"),
		tpl("ppt/viewProps.xml", "viewProps"),
		tpl("ppt/tableStyles.xml", "tableStyles"),
		tpl("ppt/slideMasters/slideMaster1.xml", "master"),
		{name: "ppt/slideMasters/_rels/slideMaster1.xml.rels", data: relsXML([]rel{
			{id: "rId1", typ: relSlideLayout, target: "../slideLayouts/slideLayout1.xml"},
			{id: "rId2", typ: relSlideLayout, target: "../slideLayouts/slideLayout2.xml"},
			{id: "rId3", typ: relTheme, target: "../theme/theme1.xml"},
		})},
		tpl("ppt/slideLayouts/slideLayout1.xml", "layoutTitle"),
		tpl("ppt/slideLayouts/slideLayout2.xml", "layoutContent"),
		tpl("ppt/theme/theme1.xml", "theme"),
		tpl("ppt/theme/theme2.xml", "theme"),
		tpl("ppt/notesMasters/notesMaster1.xml", "notesMaster"),
		{name: "ppt/notesMasters/_rels/notesMaster1.xml.rels", data: relsXML([]rel{
			{id: "rId1", typ: relTheme, target: "../theme/theme2.xml"},
		})},
	}
	layoutRels := []rel{{id: "rId1", typ: relSlideMaster, target: "../slideMasters/slideMaster1.xml"}}
	for i := 1; i <= 2; i++ {
		out = append(out, part{
			name: fmt.Sprintf("ppt/slideLayouts/_rels/slideLayout%d.xml.rels", i),
			data: relsXML(layoutRels),
		})
	}

	for i, s := range d.slides {
		n := i + 1
		rels := s.rels
		if s.notes != "" {
			rels = append(append([]rel(nil), rels...), rel{
				id:     "rId" + strconv.Itoa(len(rels)+1),
				typ:    relNotesSlide,
				target: fmt.Sprintf("../notesSlides/notesSlide%d.xml", n),
			})
		}
		out = append(out,
			part{name: fmt.Sprintf("ppt/slides/slide%d.xml", n), data: slideXML(s)},
			part{name: fmt.Sprintf("ppt/slides/_rels/slide%d.xml.rels", n), data: relsXML(rels)},
		)
		if s.notes != "" {
			out = append(out,
				part{name: fmt.Sprintf("ppt/notesSlides/notesSlide%d.xml", n), data: notesXML(s.notes)},
				part{name: fmt.Sprintf("ppt/notesSlides/_rels/notesSlide%d.xml.rels", n), data: relsXML([]rel{
					{id: "rId1", typ: relNotesMaster, target: "../notesMasters/notesMaster1.xml"},
					{id: "rId2", typ: relSlide, target: fmt.Sprintf("../slides/slide%d.xml", n)},
				})},
			)
		}
	}
	return out
}

const grpSpPr = `<p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr><p:grpSpPr><a:xfrm><a:off x="0" y="0"/><a:ext cx="0" cy="0"/><a:chOff x="0" y="0"/><a:chExt cx="0" cy="0"/></a:xfrm></p:grpSpPr>`

func slideXML(s *slidePart) string {
	return xmlHeader +
		`<p:sld xmlns:a="` + nsA + `" xmlns:r="` + nsR + `" xmlns:p="` + nsP + `">` +
		`<p:cSld><p:spTree>` + grpSpPr + s.body + `</p:spTree></p:cSld>` +
		`<p:clrMapOvr><a:masterClrMapping/></p:clrMapOvr></p:sld>`
}

// notesXML renders speaker notes with one paragraph per line.
func notesXML(notes string) string {
	var b strings.Builder
	b.WriteString(xmlHeader)
	b.WriteString(`<p:notes xmlns:a="` + nsA + `" xmlns:r="` + nsR + `" xmlns:p="` + nsP + `"><p:cSld><p:spTree>` + grpSpPr)
	b.WriteString(`<p:sp><p:nvSpPr><p:cNvPr id="2" name="Slide Image Placeholder 1"/><p:cNvSpPr><a:spLocks noGrp="1" noRot="1" noChangeAspect="1"/></p:cNvSpPr><p:nvPr><p:ph type="sldImg"/></p:nvPr></p:nvSpPr><p:spPr/></p:sp>`)
	b.WriteString(`<p:sp><p:nvSpPr><p:cNvPr id="3" name="Notes Placeholder 2"/><p:cNvSpPr><a:spLocks noGrp="1"/></p:cNvSpPr><p:nvPr><p:ph type="body" idx="1"/></p:nvPr></p:nvSpPr><p:spPr/><p:txBody><a:bodyPr/><a:lstStyle/>`)
	for _, line := range strings.Split(notes, "\n") {
		if line == "" {
			b.WriteString(`<a:p><a:endParaRPr lang="en-US" dirty="0"/></a:p>`)
			continue
		}
		b.WriteString(`<a:p><a:r><a:rPr lang="en-US" dirty="0"/><a:t>` + esc(line) + `</a:t></a:r></a:p>`)
	}
	b.WriteString(`</p:txBody></p:sp></p:spTree></p:cSld><p:clrMapOvr><a:masterClrMapping/></p:clrMapOvr></p:notes>`)
	return b.String()
}

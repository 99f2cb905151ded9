package pptx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"path"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

// Summary describes a presentation read back from disk.
type Summary struct {
	Title    string      `json:"title,omitempty"`
	Creator  string      `json:"creator,omitempty"`
	Width    int64       `json:"width"`
	Height   int64       `json:"height"`
	Slides   []SlideInfo `json:"slides"`
	Sections []Section   `json:"sections,omitempty"`
}

// SlideInfo is the text content of one slide.
type SlideInfo struct {
	Number     int         `json:"number"`
	ID         int         `json:"id"`
	Layout     string      `json:"layout"`
	Title      string      `json:"title"`
	Paragraphs []Paragraph `json:"paragraphs,omitempty"`
	Notes      string      `json:"notes,omitempty"`
	Shapes     int         `json:"shapes"`
}

// Paragraph is one non-empty paragraph outside the title placeholder.
type Paragraph struct {
	Level    int   `json:"level,omitempty"`
	NoBullet bool  `json:"no_bullet,omitempty"`
	Runs     []Run `json:"runs"`
}

// Text concatenates the paragraph's runs.
func (p Paragraph) Text() string {
	var b strings.Builder
	for _, r := range p.Runs {
		b.WriteString(r.Text)
	}
	return b.String()
}

// Run is a text run with its explicit formatting. A line break is a run
// whose Text is "\n".
type Run struct {
	Text      string `json:"text"`
	Bold      bool   `json:"bold,omitempty"`
	Italic    bool   `json:"italic,omitempty"`
	Underline bool   `json:"underline,omitempty"`
	Size      int    `json:"size,omitempty"`
	Font      string `json:"font,omitempty"`
	Color     string `json:"color,omitempty"`
	Link      string `json:"link,omitempty"`
}

// Section is a named group of slide ids.
type Section struct {
	Name     string `json:"name"`
	ID       string `json:"id"`
	SlideIDs []int  `json:"slide_ids"`
}

// Inspect opens a presentation and summarises its slides in presentation
// order, their notes, and the section list.
func Inspect(p string) (*Summary, error) {
	r, err := zip.OpenReader(p)
	if err != nil {
		return nil, fmt.Errorf("opening PPTX: %w", err)
	}
	defer r.Close()

	// Build file index for quick lookup
	fileIndex := make(map[string]*zip.File, len(r.File))
	for _, f := range r.File {
		fileIndex[f.Name] = f
	}

	presData, err := readIndexed(fileIndex, presentationPart)
	if err != nil {
		return nil, err
	}
	pres := parsePresentation(presData)
	presRels := parseRels(fileIndex, "ppt/_rels/presentation.xml.rels")

	sum := &Summary{
		Width:    pres.width,
		Height:   pres.height,
		Sections: pres.sections,
	}
	if data, err := readIndexed(fileIndex, "docProps/core.xml"); err == nil {
		var core coreProps
		if xml.Unmarshal(data, &core) == nil {
			sum.Title = core.Title
			sum.Creator = core.Creator
		}
	}

	for i, ref := range pres.slides {
		target, ok := presRels[ref.relID]
		if !ok {
			return nil, fmt.Errorf("slide %d: relationship %s not found", i+1, ref.relID)
		}
		slidePath := resolve("ppt", target.target)
		info, err := inspectSlide(fileIndex, slidePath)
		if err != nil {
			return nil, fmt.Errorf("slide %d: %w", i+1, err)
		}
		info.Number = i + 1
		info.ID = ref.id
		sum.Slides = append(sum.Slides, info)
	}
	return sum, nil
}

func inspectSlide(fileIndex map[string]*zip.File, slidePath string) (SlideInfo, error) {
	var info SlideInfo
	data, err := readIndexed(fileIndex, slidePath)
	if err != nil {
		return info, err
	}
	var slide pptxSlide
	if err := xml.Unmarshal(data, &slide); err != nil {
		return info, fmt.Errorf("decode %s: %w", slidePath, err)
	}

	rels := parseRels(fileIndex, relsPathFor(slidePath))
	tree := slide.CSld.SpTree
	info.Shapes = len(tree.SPs) + len(tree.Pics)

	for _, sp := range tree.SPs {
		if sp.TxBody == nil {
			continue
		}
		if ph := sp.NvSpPr.NvPr.Ph; ph != nil && (ph.Type == "title" || ph.Type == "ctrTitle") {
			var parts []string
			for _, para := range sp.TxBody.Paras {
				parts = append(parts, convertParagraph(para, rels).Text())
			}
			info.Title = strings.Join(parts, "\n")
			continue
		}
		for _, para := range sp.TxBody.Paras {
			if p := convertParagraph(para, rels); len(p.Runs) > 0 {
				info.Paragraphs = append(info.Paragraphs, p)
			}
		}
	}

	for _, r := range rels {
		switch {
		case strings.HasSuffix(r.typ, "/slideLayout"):
			info.Layout = layoutName(fileIndex, resolve(path.Dir(slidePath), r.target))
		case strings.HasSuffix(r.typ, "/notesSlide"):
			info.Notes = notesText(fileIndex, resolve(path.Dir(slidePath), r.target))
		}
	}
	return info, nil
}

func convertParagraph(para pptxAPara, rels map[string]relTarget) Paragraph {
	var p Paragraph
	if para.PPr != nil {
		p.Level = para.PPr.Lvl
		p.NoBullet = para.PPr.BuNone != nil
	}
	for _, item := range para.Items {
		switch item.XMLName.Local {
		case "br":
			p.Runs = append(p.Runs, Run{Text: "\n"})
		case "r":
			run := Run{Text: item.Text}
			if rp := item.RPr; rp != nil {
				run.Bold = rp.B == "1" || rp.B == "true"
				run.Italic = rp.I == "1" || rp.I == "true"
				run.Underline = rp.U != "" && rp.U != "none"
				run.Size = rp.Sz
				if rp.Latin != nil {
					run.Font = rp.Latin.Typeface
				}
				if rp.SolidFill != nil && rp.SolidFill.SrgbClr != nil {
					run.Color = rp.SolidFill.SrgbClr.Val
				}
				if rp.HlinkClick != nil {
					if t, ok := rels[rp.HlinkClick.ID]; ok {
						run.Link = t.target
					}
				}
			}
			p.Runs = append(p.Runs, run)
		}
	}
	return p
}

// notesText joins the paragraphs of the notes body placeholder.
func notesText(fileIndex map[string]*zip.File, notesPath string) string {
	data, err := readIndexed(fileIndex, notesPath)
	if err != nil {
		log.Debug().Err(err).Str("path", notesPath).Msg("pptx: notes slide not readable")
		return ""
	}
	var notes pptxSlide
	if err := xml.Unmarshal(data, &notes); err != nil {
		return ""
	}
	for _, sp := range notes.CSld.SpTree.SPs {
		ph := sp.NvSpPr.NvPr.Ph
		if sp.TxBody == nil || ph == nil || ph.Type != "body" {
			continue
		}
		lines := make([]string, 0, len(sp.TxBody.Paras))
		for _, para := range sp.TxBody.Paras {
			lines = append(lines, convertParagraph(para, nil).Text())
		}
		return strings.Join(lines, "\n")
	}
	return ""
}

func layoutName(fileIndex map[string]*zip.File, layoutPath string) string {
	data, err := readIndexed(fileIndex, layoutPath)
	if err != nil {
		return ""
	}
	var layout struct {
		CSld struct {
			Name string `xml:"name,attr"`
		} `xml:"cSld"`
	}
	if xml.Unmarshal(data, &layout) != nil {
		return ""
	}
	return layout.CSld.Name
}

// ---------------------------------------------------------------------------
// presentation.xml
// ---------------------------------------------------------------------------

type slideRefXML struct {
	id    int
	relID string
}

type presentationInfo struct {
	width, height int64
	slides        []slideRefXML
	sections      []Section
}

// parsePresentation walks presentation.xml tokens. Slide ids and their
// relationship ids share the local name "id", so attributes are matched on
// namespace as well.
func parsePresentation(data []byte) presentationInfo {
	var info presentationInfo
	decoder := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := decoder.Token()
		if err != nil {
			break
		}
		se, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		switch {
		case se.Name.Space == nsP && se.Name.Local == "sldSz":
			info.width, _ = strconv.ParseInt(attr(se, "", "cx"), 10, 64)
			info.height, _ = strconv.ParseInt(attr(se, "", "cy"), 10, 64)
		case se.Name.Space == nsP && se.Name.Local == "sldId":
			id, _ := strconv.Atoi(attr(se, "", "id"))
			info.slides = append(info.slides, slideRefXML{id: id, relID: attr(se, nsR, "id")})
		case se.Name.Space == nsP14 && se.Name.Local == "section":
			info.sections = append(info.sections, Section{Name: attr(se, "", "name"), ID: attr(se, "", "id")})
		case se.Name.Space == nsP14 && se.Name.Local == "sldId":
			if n := len(info.sections); n > 0 {
				id, _ := strconv.Atoi(attr(se, "", "id"))
				info.sections[n-1].SlideIDs = append(info.sections[n-1].SlideIDs, id)
			}
		}
	}
	return info
}

func attr(se xml.StartElement, space, local string) string {
	for _, a := range se.Attr {
		if a.Name.Local == local && a.Name.Space == space {
			return a.Value
		}
	}
	return ""
}

// ---------------------------------------------------------------------------
// Relationships and zip helpers
// ---------------------------------------------------------------------------

type relTarget struct {
	typ    string
	target string
}

type pptxRelationships struct {
	Rels []struct {
		ID     string `xml:"Id,attr"`
		Type   string `xml:"Type,attr"`
		Target string `xml:"Target,attr"`
	} `xml:"Relationship"`
}

// parseRels reads a .rels part and returns rId -> target.
func parseRels(fileIndex map[string]*zip.File, relsPath string) map[string]relTarget {
	data, err := readIndexed(fileIndex, relsPath)
	if err != nil {
		return nil
	}
	var rels pptxRelationships
	if err := xml.Unmarshal(data, &rels); err != nil {
		return nil
	}
	result := make(map[string]relTarget, len(rels.Rels))
	for _, rel := range rels.Rels {
		result[rel.ID] = relTarget{typ: rel.Type, target: rel.Target}
	}
	return result
}

// relsPathFor maps "ppt/slides/slide1.xml" to "ppt/slides/_rels/slide1.xml.rels".
func relsPathFor(part string) string {
	return path.Join(path.Dir(part), "_rels", path.Base(part)+".rels")
}

// resolve joins a relationship target onto the directory of its source part.
func resolve(dir, target string) string {
	return path.Clean(path.Join(dir, target))
}

func readIndexed(fileIndex map[string]*zip.File, name string) ([]byte, error) {
	f := fileIndex[name]
	if f == nil {
		return nil, fmt.Errorf("%s not found in package", name)
	}
	return readZipFile(f)
}

// ---------------------------------------------------------------------------
// Slide XML structures
// ---------------------------------------------------------------------------

type coreProps struct {
	Title   string `xml:"title"`
	Creator string `xml:"creator"`
}

// pptxSlide covers both slides and notes slides.
type pptxSlide struct {
	CSld struct {
		SpTree struct {
			SPs  []pptxSP   `xml:"sp"`
			Pics []struct{} `xml:"pic"`
		} `xml:"spTree"`
	} `xml:"cSld"`
}

type pptxSP struct {
	NvSpPr struct {
		NvPr struct {
			Ph *struct {
				Type string `xml:"type,attr"`
				Idx  string `xml:"idx,attr"`
			} `xml:"ph"`
		} `xml:"nvPr"`
	} `xml:"nvSpPr"`
	TxBody *pptxTxBody `xml:"txBody"`
}

type pptxTxBody struct {
	Paras []pptxAPara `xml:"p"`
}

type pptxAPara struct {
	PPr *struct {
		Lvl    int       `xml:"lvl,attr"`
		BuNone *struct{} `xml:"buNone"`
	} `xml:"pPr"`
	Items []pptxRunItem `xml:",any"`
}

// pptxRunItem is any paragraph child; only runs and breaks are used.
type pptxRunItem struct {
	XMLName xml.Name
	RPr     *pptxRPr `xml:"rPr"`
	Text    string   `xml:"t"`
}

type pptxRPr struct {
	B         string `xml:"b,attr"`
	I         string `xml:"i,attr"`
	U         string `xml:"u,attr"`
	Sz        int    `xml:"sz,attr"`
	SolidFill *struct {
		SrgbClr *struct {
			Val string `xml:"val,attr"`
		} `xml:"srgbClr"`
	} `xml:"solidFill"`
	Latin *struct {
		Typeface string `xml:"typeface,attr"`
	} `xml:"latin"`
	HlinkClick *struct {
		ID string `xml:"http://schemas.openxmlformats.org/officeDocument/2006/relationships id,attr"`
	} `xml:"hlinkClick"`
}

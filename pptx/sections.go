package pptx

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const presentationPart = "ppt/presentation.xml"

// ErrSectionsExist is returned when a presentation already carries a section list.
var ErrSectionsExist = errors.New("pptx: presentation already has sections")

// SectionInfo describes a run of consecutive slides. Runs without a name
// occupy slide ids but produce no section entry.
type SectionInfo struct {
	Name  string
	Count int
}

// sectionNamespace seeds the deterministic section GUIDs.
var sectionNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/bbiangul/go-deck/sections"))

type sectionEntry struct {
	name     string
	id       string
	slideIDs []int
}

func sectionEntries(infos []SectionInfo) []sectionEntry {
	var out []sectionEntry
	next := firstSlideID
	for i, info := range infos {
		if info.Name != "" && info.Count > 0 {
			ids := make([]int, info.Count)
			for j := range ids {
				ids[j] = next + j
			}
			guid := uuid.NewSHA1(sectionNamespace, []byte(strconv.Itoa(i)+"/"+info.Name))
			out = append(out, sectionEntry{
				name:     info.Name,
				id:       "{" + strings.ToUpper(guid.String()) + "}",
				slideIDs: ids,
			})
		}
		next += info.Count
	}
	return out
}

func sectionListXML(entries []sectionEntry) string {
	var b strings.Builder
	b.WriteString(`<p:ext uri="` + sectionExtURI + `"><p14:sectionLst xmlns:p14="` + nsP14 + `">`)
	for _, e := range entries {
		b.WriteString(`<p14:section name="` + esc(e.name) + `" id="` + e.id + `"><p14:sldIdLst>`)
		for _, id := range e.slideIDs {
			b.WriteString(`<p14:sldId id="` + strconv.Itoa(id) + `"/>`)
		}
		b.WriteString(`</p14:sldIdLst></p14:section>`)
	}
	b.WriteString(`</p14:sectionLst></p:ext>`)
	return b.String()
}

// patchPresentation inserts the section list into presentation.xml, inside
// an existing extLst or a new one closing the document element.
func patchPresentation(doc string, entries []sectionEntry) (string, error) {
	if strings.Contains(doc, "sectionLst") {
		return "", ErrSectionsExist
	}
	ext := sectionListXML(entries)
	if i := strings.LastIndex(doc, "</p:extLst>"); i >= 0 {
		return doc[:i] + ext + doc[i:], nil
	}
	i := strings.LastIndex(doc, "</p:presentation>")
	if i < 0 {
		return "", fmt.Errorf("%s: missing closing presentation element", presentationPart)
	}
	return doc[:i] + "<p:extLst>" + ext + "</p:extLst>" + doc[i:], nil
}

// AddSections records section groupings in a saved presentation. Slide ids
// are assigned from 256 in slide order. When no section has a name the file
// is left untouched. The rewritten package replaces path atomically.
func AddSections(path string, infos []SectionInfo) error {
	entries := sectionEntries(infos)
	if len(entries) == 0 {
		return nil
	}

	zr, err := zip.OpenReader(path)
	if err != nil {
		return fmt.Errorf("opening PPTX: %w", err)
	}
	defer zr.Close()

	var pres *zip.File
	for _, f := range zr.File {
		if f.Name == presentationPart {
			pres = f
			break
		}
	}
	if pres == nil {
		return fmt.Errorf("%s not found in %s", presentationPart, path)
	}
	doc, err := readZipFile(pres)
	if err != nil {
		return err
	}
	patched, err := patchPresentation(string(doc), entries)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".deck-*.pptx")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() {
		tmp.Close()
		os.Remove(tmpName)
	}

	zw := zip.NewWriter(tmp)
	for _, f := range zr.File {
		if f.Name != presentationPart {
			if err := zw.Copy(f); err != nil {
				cleanup()
				return fmt.Errorf("copy %s: %w", f.Name, err)
			}
			continue
		}
		hdr := f.FileHeader
		w, err := zw.CreateHeader(&zip.FileHeader{Name: hdr.Name, Method: zip.Deflate, Modified: hdr.Modified})
		if err == nil {
			_, err = io.WriteString(w, patched)
		}
		if err != nil {
			cleanup()
			return fmt.Errorf("write %s: %w", f.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		cleanup()
		return fmt.Errorf("finish package: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	zr.Close()
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace %s: %w", path, err)
	}

	log.Debug().Str("path", path).Int("sections", len(entries)).Msg("pptx: sections added")
	return nil
}

func readZipFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.Name, err)
	}
	return data, nil
}

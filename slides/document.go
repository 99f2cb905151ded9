package slides

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/adrg/frontmatter"
)

const frontMatterDelim = "---"

var (
	sectionSplit  = regexp.MustCompile(`\n---\n`)
	subSlideSplit = regexp.MustCompile(`\n----\n`)
)

// Parse converts a whole document into its slides, in document order.
func Parse(text string) []Slide {
	return ParseDeck(text).Slides
}

// ParseDeck converts a whole document into a Deck. Front matter is stripped
// before slide parsing and decoded into Meta; a front matter block that does
// not decode only produces a warning.
func ParseDeck(text string) Deck {
	var deck Deck

	text = normalizeNewlines(text)
	header, body := splitFrontMatter(text)
	if header != "" {
		meta, err := decodeFrontMatter(header)
		if err != nil {
			deck.Warnings = append(deck.Warnings, err.Error())
		}
		deck.Meta = meta
	}

	deck.Slides = parseBody(body)
	return deck
}

func parseBody(body string) []Slide {
	var (
		out          []Slide
		section      string
		sectionIndex int
	)
	for _, block := range sectionSplit.Split(body, -1) {
		for i, raw := range subSlideSplit.Split(block, -1) {
			slide := ParseSlide(strings.TrimSpace(raw))
			if slide.Empty() {
				continue
			}
			if i == 0 && strings.HasPrefix(slide.Title, "# ") && !hasListContent(slide) {
				slide.IsSection = true
				section = sectionName(slide.Title)
				sectionIndex++
			}
			slide.Section = section
			slide.SectionIndex = sectionIndex
			out = append(out, slide)
		}
	}
	return out
}

func hasListContent(s Slide) bool {
	for _, it := range s.Content {
		if it.IsList() {
			return true
		}
	}
	return false
}

// sectionName strips the heading markers from a level-1 title.
func sectionName(title string) string {
	return strings.TrimSpace(strings.TrimLeft(title, "# "))
}

// splitFrontMatter separates a leading front matter block from the body. The
// block runs from the opening "---" to the next "---"; without a closing
// delimiter the text is returned unchanged as body.
func splitFrontMatter(text string) (header, body string) {
	if !strings.HasPrefix(text, frontMatterDelim) {
		return "", text
	}
	end := strings.Index(text[len(frontMatterDelim):], frontMatterDelim)
	if end < 0 {
		return "", text
	}
	end += len(frontMatterDelim)
	return text[:end+len(frontMatterDelim)], strings.TrimSpace(text[end+len(frontMatterDelim):])
}

type frontMatterEnvelope struct {
	Title    string         `yaml:"title"`
	Author   string         `yaml:"author"`
	Subject  string         `yaml:"subject"`
	Keywords any            `yaml:"keywords"`
	Custom   map[string]any `yaml:",inline"`
}

func decodeFrontMatter(header string) (Meta, error) {
	var env frontMatterEnvelope
	if _, err := frontmatter.Parse(strings.NewReader(header+"\n"), &env); err != nil {
		return Meta{}, fmt.Errorf("parse front matter: %w", err)
	}
	meta := Meta{
		Title:    env.Title,
		Author:   env.Author,
		Subject:  env.Subject,
		Keywords: keywordList(env.Keywords),
	}
	if len(env.Custom) > 0 {
		meta.Custom = make(map[string]any, len(env.Custom))
		for k, v := range env.Custom {
			meta.Custom[k] = stringKeys(v)
		}
	}
	return meta, nil
}

// keywordList accepts either a YAML list or a comma separated string.
func keywordList(v any) []string {
	var out []string
	switch kw := v.(type) {
	case string:
		for _, k := range strings.Split(kw, ",") {
			if k = strings.TrimSpace(k); k != "" {
				out = append(out, k)
			}
		}
	case []any:
		for _, k := range kw {
			if s := strings.TrimSpace(fmt.Sprint(k)); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

// stringKeys converts YAML maps with interface keys into string-keyed maps
// so metadata can be encoded as JSON.
func stringKeys(v any) any {
	switch val := v.(type) {
	case map[any]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[fmt.Sprint(k)] = stringKeys(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = stringKeys(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = stringKeys(item)
		}
		return out
	}
	return v
}

func normalizeNewlines(s string) string {
	return strings.ReplaceAll(s, "\r\n", "\n")
}

// Package slides parses slide-oriented Markdown into an ordered list of
// slide records.
//
// A document is split into section blocks on "---" lines and each section
// block into sub-slides on "----" lines. Every sub-slide is parsed line by
// line into a title, an optional subtitle, content items and speaker notes.
package slides

import "strings"

// ItemKind tags a content item.
type ItemKind string

const (
	Bullet    ItemKind = "bullet"
	Numbered  ItemKind = "numbered"
	CodeBlock ItemKind = "codeblock"
	Text      ItemKind = "text"
)

// Item is one piece of slide content. Which fields are meaningful depends on
// Kind: Text and Indent for bullet, numbered and text items; Number for
// numbered items; Lang and Content for code blocks.
type Item struct {
	Kind    ItemKind `json:"type" yaml:"type"`
	Text    string   `json:"text,omitempty" yaml:"text,omitempty"`
	Indent  int      `json:"indent" yaml:"indent"`
	Number  string   `json:"number,omitempty" yaml:"number,omitempty"`
	Lang    string   `json:"lang,omitempty" yaml:"lang,omitempty"`
	Content string   `json:"content,omitempty" yaml:"content,omitempty"`
}

// IsList reports whether the item is list or code content, the kinds that
// keep a heading-only slide from being a section divider.
func (it Item) IsList() bool {
	return it.Kind == Bullet || it.Kind == Numbered || it.Kind == CodeBlock
}

// Slide is one output slide.
type Slide struct {
	// Title keeps its leading '#' markers; renderers strip them.
	Title    string `json:"title,omitempty" yaml:"title,omitempty"`
	Subtitle string `json:"subtitle,omitempty" yaml:"subtitle,omitempty"`
	Content  []Item `json:"content" yaml:"content"`
	Notes    string `json:"notes,omitempty" yaml:"notes,omitempty"`

	IsSection    bool   `json:"is_section" yaml:"is_section"`
	Section      string `json:"section,omitempty" yaml:"section,omitempty"`
	SectionIndex int    `json:"section_index" yaml:"section_index"`
}

// Empty reports whether the slide has neither a title nor content.
func (s Slide) Empty() bool {
	return s.Title == "" && len(s.Content) == 0
}

// HasCode reports whether any content item is a code block.
func (s Slide) HasCode() bool {
	for _, it := range s.Content {
		if it.Kind == CodeBlock {
			return true
		}
	}
	return false
}

// HeadingLevel returns the number of leading '#' characters of the title.
func (s Slide) HeadingLevel() int {
	return len(s.Title) - len(strings.TrimLeft(s.Title, "#"))
}

// Deck is a parsed document: its front-matter metadata and its slides.
type Deck struct {
	Meta     Meta     `json:"meta" yaml:"meta"`
	Slides   []Slide  `json:"slides" yaml:"slides"`
	Warnings []string `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// Meta is the subset of front matter the renderer uses for document
// properties. Custom holds every other key.
type Meta struct {
	Title    string         `json:"title,omitempty" yaml:"title,omitempty"`
	Author   string         `json:"author,omitempty" yaml:"author,omitempty"`
	Subject  string         `json:"subject,omitempty" yaml:"subject,omitempty"`
	Keywords []string       `json:"keywords,omitempty" yaml:"keywords,omitempty"`
	Custom   map[string]any `json:"custom,omitempty" yaml:"custom,omitempty"`
}

// Sections groups consecutive slides by section index, in slide order.
// Slides before the first section form a group with index 0 and no name.
func (d Deck) Sections() []SectionGroup {
	var groups []SectionGroup
	for _, s := range d.Slides {
		if n := len(groups); n > 0 && groups[n-1].Index == s.SectionIndex {
			groups[n-1].Count++
			continue
		}
		groups = append(groups, SectionGroup{Index: s.SectionIndex, Name: s.Section, Count: 1})
	}
	return groups
}

// SectionGroup is a run of slides sharing one section.
type SectionGroup struct {
	Index int    `json:"index" yaml:"index"`
	Name  string `json:"name,omitempty" yaml:"name,omitempty"`
	Count int    `json:"count" yaml:"count"`
}

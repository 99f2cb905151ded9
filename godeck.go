// Package godeck converts Markdown slide decks to PowerPoint files and keeps
// a searchable index of converted decks.
package godeck

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/bbiangul/go-deck/pptx"
	"github.com/bbiangul/go-deck/slides"
)

// Result reports the outcome of a conversion.
type Result struct {
	Output       string        `json:"output"`
	Slides       int           `json:"slides"`
	Sections     int           `json:"sections"`
	Bytes        int64         `json:"bytes"`
	LinkFailures int           `json:"link_failures"`
	Warnings     []string      `json:"warnings,omitempty"`
	Elapsed      time.Duration `json:"elapsed"`
}

// ReadDeck reads and parses a Markdown file.
func ReadDeck(input string) (slides.Deck, error) {
	data, err := os.ReadFile(input)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return slides.Deck{}, fmt.Errorf("%w: %s", ErrInputNotFound, input)
		}
		return slides.Deck{}, fmt.Errorf("reading input: %w", err)
	}
	return slides.ParseDeck(string(data)), nil
}

// Convert renders the Markdown file input to a .pptx file. When output is
// empty, cfg.Output is used, then the input path with its extension
// replaced. Section markers are best effort: a failure to add them leaves a
// valid deck and is reported in Result.Warnings.
func Convert(input, output string, cfg Config) (*Result, error) {
	start := time.Now()

	deck, err := ReadDeck(input)
	if err != nil {
		return nil, err
	}
	if len(deck.Slides) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyDeck, input)
	}

	if output == "" {
		output = cfg.Output
	}
	if output == "" {
		output = OutputPath(input)
	}

	res, err := Render(deck, output, cfg)
	if err != nil {
		return nil, err
	}
	res.Elapsed = time.Since(start)

	log.Debug().
		Str("input", input).
		Str("output", output).
		Int("slides", res.Slides).
		Int("sections", res.Sections).
		Dur("elapsed", res.Elapsed).
		Msg("converted deck")

	return res, nil
}

// Render writes an already parsed deck to output.
func Render(deck slides.Deck, output string, cfg Config) (*Result, error) {
	res := &Result{Output: output, Warnings: append([]string(nil), deck.Warnings...)}

	d := pptx.New(pptx.Options{
		Colors: cfg.Colors,
		Fonts:  cfg.Fonts,
		Meta:   deck.Meta,
	})
	for _, s := range deck.Slides {
		d.Add(s)
	}
	if err := d.Save(output); err != nil {
		return nil, fmt.Errorf("writing %s: %w", output, err)
	}
	res.Slides = d.Len()
	res.LinkFailures = d.LinkFailures()

	groups := deck.Sections()
	infos := make([]pptx.SectionInfo, len(groups))
	for i, g := range groups {
		infos[i] = pptx.SectionInfo{Name: g.Name, Count: g.Count}
		if g.Name != "" {
			res.Sections++
		}
	}
	if err := pptx.AddSections(output, infos); err != nil {
		log.Warn().Err(err).Str("path", output).Msg("could not add section markers")
		res.Warnings = append(res.Warnings, fmt.Sprintf("could not add section markers: %v", err))
		res.Sections = 0
	}

	if fi, err := os.Stat(output); err == nil {
		res.Bytes = fi.Size()
	}
	return res, nil
}

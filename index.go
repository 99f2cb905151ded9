package godeck

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/bbiangul/go-deck/inline"
	"github.com/bbiangul/go-deck/slides"
	"github.com/bbiangul/go-deck/store"
)

// Library is a searchable index of Markdown decks.
type Library struct {
	store *store.Store
}

// IndexResult reports the outcome of indexing one file.
type IndexResult struct {
	DeckID  int64  `json:"deck_id"`
	Path    string `json:"path"`
	Slides  int    `json:"slides"`
	Changed bool   `json:"changed"`
}

// Hit is one slide matching a search.
type Hit struct {
	Path     string  `json:"path"`
	Filename string  `json:"filename"`
	Slide    int     `json:"slide"`
	Title    string  `json:"title"`
	Section  string  `json:"section,omitempty"`
	Snippet  string  `json:"snippet,omitempty"`
	Score    float64 `json:"score"`
}

// OpenLibrary opens the slide index at the configured database path.
func OpenLibrary(cfg Config) (*Library, error) {
	s, err := store.New(cfg.resolveDBPath())
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}
	return &Library{store: s}, nil
}

// Close closes the underlying store.
func (l *Library) Close() error {
	return l.store.Close()
}

// Store returns the underlying store for diagnostic access.
func (l *Library) Store() *store.Store {
	return l.store
}

// IndexFile parses a Markdown deck and stores its slides. Unless force is
// set, a file whose content hash matches the stored one is skipped.
func (l *Library) IndexFile(ctx context.Context, path string, force bool) (*IndexResult, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrInputNotFound, path)
		}
		return nil, fmt.Errorf("reading input: %w", err)
	}
	sum := sha256.Sum256(data)
	hash := hex.EncodeToString(sum[:])

	// Check if deck already exists with same hash
	if !force {
		existing, err := l.store.GetDeckByPath(ctx, absPath)
		if err == nil && existing.ContentHash == hash {
			log.Debug().Str("path", absPath).Msg("index: unchanged, skipping")
			return &IndexResult{DeckID: existing.ID, Path: absPath, Slides: existing.SlideCount}, nil
		}
	}

	deck := slides.ParseDeck(string(data))

	var metadata string
	if len(deck.Meta.Keywords) > 0 || len(deck.Meta.Custom) > 0 || deck.Meta.Subject != "" {
		if b, err := json.Marshal(deck.Meta); err == nil {
			metadata = string(b)
		} else {
			log.Debug().Err(err).Str("path", absPath).Msg("index: metadata not serializable")
		}
	}

	title := deck.Meta.Title
	if title == "" && len(deck.Slides) > 0 {
		title = inline.PlainText(strings.TrimSpace(strings.TrimLeft(deck.Slides[0].Title, "# ")))
	}

	sections := 0
	for _, g := range deck.Sections() {
		if g.Name != "" {
			sections++
		}
	}

	id, err := l.store.SaveDeck(ctx, store.Deck{
		Path:         absPath,
		Filename:     filepath.Base(absPath),
		Title:        title,
		Author:       deck.Meta.Author,
		ContentHash:  hash,
		SectionCount: sections,
		Metadata:     metadata,
	}, storeSlides(deck.Slides))
	if err != nil {
		return nil, fmt.Errorf("saving deck: %w", err)
	}

	log.Info().Str("path", absPath).Int("slides", len(deck.Slides)).Msg("indexed deck")
	return &IndexResult{DeckID: id, Path: absPath, Slides: len(deck.Slides), Changed: true}, nil
}

// storeSlides flattens parsed slides to their searchable text.
func storeSlides(in []slides.Slide) []store.Slide {
	out := make([]store.Slide, len(in))
	for i, s := range in {
		var body []string
		var langs []string
		for _, it := range s.Content {
			if it.Kind == slides.CodeBlock {
				body = append(body, it.Content)
				if it.Lang != "" {
					langs = append(langs, it.Lang)
				}
				continue
			}
			body = append(body, inline.PlainText(it.Text))
		}
		out[i] = store.Slide{
			Title:        inline.PlainText(strings.TrimSpace(strings.TrimLeft(s.Title, "# "))),
			Subtitle:     inline.PlainText(s.Subtitle),
			Section:      s.Section,
			SectionIndex: s.SectionIndex,
			IsSection:    s.IsSection,
			Body:         strings.Join(body, "\n"),
			Notes:        s.Notes,
			CodeLangs:    strings.Join(langs, ","),
		}
	}
	return out
}

// Search returns slides matching every term of query, best first.
func (l *Library) Search(ctx context.Context, query string, limit int) ([]Hit, error) {
	results, err := l.store.Search(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	if err := l.store.LogSearch(ctx, query, len(results)); err != nil {
		log.Debug().Err(err).Msg("search: could not log query")
	}

	words := significantWords(query)
	hits := make([]Hit, len(results))
	for i, r := range results {
		text := r.Body
		if r.Notes != "" {
			text += "\n" + r.Notes
		}
		hits[i] = Hit{
			Path:     r.Path,
			Filename: r.Filename,
			Slide:    r.Position,
			Title:    r.Title,
			Section:  r.Section,
			Snippet:  extractSnippet(text, words),
			Score:    r.Score,
		}
	}
	return hits, nil
}

// Slides returns the indexed slides of the deck at path.
func (l *Library) Slides(ctx context.Context, path string) ([]store.Slide, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}
	d, err := l.store.GetDeckByPath(ctx, absPath)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotIndexed, path)
	}
	if err != nil {
		return nil, err
	}
	return l.store.GetSlides(ctx, d.ID)
}

// Remove drops the deck at path from the index.
func (l *Library) Remove(ctx context.Context, path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolving path: %w", err)
	}
	d, err := l.store.GetDeckByPath(ctx, absPath)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s", ErrNotIndexed, path)
	}
	if err != nil {
		return err
	}
	return l.store.DeleteDeck(ctx, d.ID)
}

// ListDecks returns all indexed decks.
func (l *Library) ListDecks(ctx context.Context) ([]store.Deck, error) {
	return l.store.ListDecks(ctx)
}

// Package store persists parsed decks in SQLite and searches their slides
// with FTS5.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Deck represents a row in the decks table.
type Deck struct {
	ID           int64  `json:"id"`
	Path         string `json:"path"`
	Filename     string `json:"filename"`
	Title        string `json:"title,omitempty"`
	Author       string `json:"author,omitempty"`
	ContentHash  string `json:"content_hash"`
	SlideCount   int    `json:"slide_count"`
	SectionCount int    `json:"section_count"`
	Metadata     string `json:"metadata,omitempty"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at"`
}

// Slide represents a row in the slides table.
type Slide struct {
	ID           int64  `json:"id"`
	DeckID       int64  `json:"deck_id"`
	Position     int    `json:"position"`
	Title        string `json:"title"`
	Subtitle     string `json:"subtitle,omitempty"`
	Section      string `json:"section,omitempty"`
	SectionIndex int    `json:"section_index"`
	IsSection    bool   `json:"is_section"`
	Body         string `json:"body"`
	Notes        string `json:"notes,omitempty"`
	CodeLangs    string `json:"code_langs,omitempty"`
}

// SearchResult holds a slide with its FTS score and deck info.
type SearchResult struct {
	SlideID  int64   `json:"slide_id"`
	DeckID   int64   `json:"deck_id"`
	Position int     `json:"position"`
	Title    string  `json:"title"`
	Section  string  `json:"section,omitempty"`
	Body     string  `json:"body"`
	Notes    string  `json:"notes,omitempty"`
	Filename string  `json:"filename"`
	Path     string  `json:"path"`
	Score    float64 `json:"score"`
}

// Stats holds row counts.
type Stats struct {
	Decks    int `json:"decks"`
	Slides   int `json:"slides"`
	Searches int `json:"searches"`
}

// Store wraps the SQLite database for slide indexing.
type Store struct {
	db *sql.DB
}

// New opens (or creates) a SQLite database at the given path and
// initialises the schema including the FTS5 virtual table.
func New(dbPath string) (*Store, error) {
	// Ensure parent directory exists
	dir := filepath.Dir(dbPath)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=30000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	// Connection pool settings for SQLite.
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)

	s := &Store{db: db}

	if err := s.Migrate(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for advanced queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// --- Deck operations ---

// SaveDeck upserts the deck record and replaces its slides in a single
// transaction. Returns the deck ID.
func (s *Store) SaveDeck(ctx context.Context, deck Deck, slides []Slide) (int64, error) {
	var id int64
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO decks (path, filename, title, author, content_hash, slide_count, section_count, metadata)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(path) DO UPDATE SET
				filename = excluded.filename,
				title = excluded.title,
				author = excluded.author,
				content_hash = excluded.content_hash,
				slide_count = excluded.slide_count,
				section_count = excluded.section_count,
				metadata = excluded.metadata,
				updated_at = CURRENT_TIMESTAMP
		`, deck.Path, deck.Filename, deck.Title, deck.Author, deck.ContentHash,
			len(slides), deck.SectionCount, nullString(deck.Metadata)); err != nil {
			return fmt.Errorf("upserting deck: %w", err)
		}

		// LastInsertId is unreliable after the UPDATE branch of an upsert.
		if err := tx.QueryRowContext(ctx, "SELECT id FROM decks WHERE path = ?", deck.Path).Scan(&id); err != nil {
			return fmt.Errorf("reading deck id: %w", err)
		}

		// Delete slides (triggers will clean up FTS)
		if _, err := tx.ExecContext(ctx, "DELETE FROM slides WHERE deck_id = ?", id); err != nil {
			return fmt.Errorf("clearing slides: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO slides (deck_id, position, title, subtitle, section, section_index,
				is_section, body, notes, code_langs)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for i, sl := range slides {
			if _, err := stmt.ExecContext(ctx,
				id, i+1, sl.Title, sl.Subtitle, sl.Section, sl.SectionIndex,
				sl.IsSection, sl.Body, sl.Notes, sl.CodeLangs); err != nil {
				return fmt.Errorf("inserting slide %d: %w", i+1, err)
			}
		}
		return nil
	})
	return id, err
}

const deckColumns = `id, path, filename, COALESCE(title, ''), COALESCE(author, ''), content_hash,
	slide_count, section_count, metadata, created_at, updated_at`

func scanDeck(row interface{ Scan(...any) error }) (*Deck, error) {
	d := &Deck{}
	var metadata sql.NullString
	if err := row.Scan(&d.ID, &d.Path, &d.Filename, &d.Title, &d.Author, &d.ContentHash,
		&d.SlideCount, &d.SectionCount, &metadata, &d.CreatedAt, &d.UpdatedAt); err != nil {
		return nil, err
	}
	d.Metadata = metadata.String
	return d, nil
}

// GetDeckByPath retrieves a deck by its source path. Returns sql.ErrNoRows
// when the path was never indexed.
func (s *Store) GetDeckByPath(ctx context.Context, path string) (*Deck, error) {
	return scanDeck(s.db.QueryRowContext(ctx, "SELECT "+deckColumns+" FROM decks WHERE path = ?", path))
}

// GetDeck retrieves a deck by ID.
func (s *Store) GetDeck(ctx context.Context, id int64) (*Deck, error) {
	return scanDeck(s.db.QueryRowContext(ctx, "SELECT "+deckColumns+" FROM decks WHERE id = ?", id))
}

// ListDecks returns all decks ordered by path.
func (s *Store) ListDecks(ctx context.Context) ([]Deck, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+deckColumns+" FROM decks ORDER BY path")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var decks []Deck
	for rows.Next() {
		d, err := scanDeck(rows)
		if err != nil {
			return nil, err
		}
		decks = append(decks, *d)
	}
	return decks, rows.Err()
}

// DeleteDeck removes a deck and cascades to its slides.
func (s *Store) DeleteDeck(ctx context.Context, id int64) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		// Explicit so the FTS delete trigger fires for each slide.
		if _, err := tx.ExecContext(ctx, "DELETE FROM slides WHERE deck_id = ?", id); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, "DELETE FROM decks WHERE id = ?", id)
		return err
	})
}

// --- Slide operations ---

// GetSlides returns the slides of a deck in order.
func (s *Store) GetSlides(ctx context.Context, deckID int64) ([]Slide, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, deck_id, position, title, subtitle, section, section_index,
			is_section, body, notes, code_langs
		FROM slides WHERE deck_id = ? ORDER BY position
	`, deckID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var slides []Slide
	for rows.Next() {
		var sl Slide
		if err := rows.Scan(&sl.ID, &sl.DeckID, &sl.Position, &sl.Title, &sl.Subtitle,
			&sl.Section, &sl.SectionIndex, &sl.IsSection, &sl.Body, &sl.Notes,
			&sl.CodeLangs); err != nil {
			return nil, err
		}
		slides = append(slides, sl)
	}
	return slides, rows.Err()
}

// Search performs a full-text search over slide titles, bodies and notes
// using FTS5 BM25 ranking. Each whitespace separated term of query must
// match; FTS query syntax in the input is treated as literal text.
func (s *Store) Search(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	match := ftsQuery(query)
	if match == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT f.rowid, f.rank,
			sl.deck_id, sl.position, sl.title, sl.section, sl.body, sl.notes,
			d.filename, d.path
		FROM slides_fts f
		JOIN slides sl ON sl.id = f.rowid
		JOIN decks d ON d.id = sl.deck_id
		WHERE slides_fts MATCH ?
		ORDER BY f.rank
		LIMIT ?
	`, match, limit)
	if err != nil {
		return nil, fmt.Errorf("searching slides: %w", err)
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		var r SearchResult
		var rank float64
		if err := rows.Scan(&r.SlideID, &rank,
			&r.DeckID, &r.Position, &r.Title, &r.Section, &r.Body, &r.Notes,
			&r.Filename, &r.Path); err != nil {
			return nil, err
		}
		// FTS5 rank is negative (lower = better), convert to positive score
		r.Score = -rank
		results = append(results, r)
	}
	return results, rows.Err()
}

// ftsQuery quotes every term so user input cannot use FTS operators.
// Embedded quotes are doubled, as FTS5 string literals require.
func ftsQuery(q string) string {
	var terms []string
	for _, t := range strings.Fields(q) {
		terms = append(terms, `"`+strings.ReplaceAll(t, `"`, `""`)+`"`)
	}
	return strings.Join(terms, " ")
}

// LogSearch records a search and its result count.
func (s *Store) LogSearch(ctx context.Context, query string, results int) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO search_log (query, results) VALUES (?, ?)", query, results)
	return err
}

// Stats returns row counts of decks, slides and logged searches.
func (s *Store) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}
	queries := []struct {
		query string
		dest  *int
	}{
		{"SELECT COUNT(*) FROM decks", &stats.Decks},
		{"SELECT COUNT(*) FROM slides", &stats.Slides},
		{"SELECT COUNT(*) FROM search_log", &stats.Searches},
	}
	for _, q := range queries {
		if err := s.db.QueryRowContext(ctx, q.query).Scan(q.dest); err != nil {
			return nil, fmt.Errorf("counting %s: %w", q.query, err)
		}
	}
	return stats, nil
}

// --- helpers ---

func (s *Store) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

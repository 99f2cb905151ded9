package store

// schemaSQL is the DDL for all tables. Full-text search needs the sqlite3
// driver built with the sqlite_fts5 tag.
const schemaSQL = `
-- Deck registry with hash-based change detection
CREATE TABLE IF NOT EXISTS decks (
    id INTEGER PRIMARY KEY,
    path TEXT NOT NULL UNIQUE,
    filename TEXT NOT NULL,
    title TEXT,
    author TEXT,
    content_hash TEXT NOT NULL,
    slide_count INTEGER NOT NULL DEFAULT 0,
    section_count INTEGER NOT NULL DEFAULT 0,
    metadata JSON,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- One row per rendered slide, in deck order
CREATE TABLE IF NOT EXISTS slides (
    id INTEGER PRIMARY KEY,
    deck_id INTEGER NOT NULL REFERENCES decks(id) ON DELETE CASCADE,
    position INTEGER NOT NULL,
    title TEXT NOT NULL DEFAULT '',
    subtitle TEXT NOT NULL DEFAULT '',
    section TEXT NOT NULL DEFAULT '',
    section_index INTEGER NOT NULL DEFAULT 0,
    is_section INTEGER NOT NULL DEFAULT 0,
    body TEXT NOT NULL DEFAULT '',
    notes TEXT NOT NULL DEFAULT ''
);

-- Full-text search via FTS5
CREATE VIRTUAL TABLE IF NOT EXISTS slides_fts USING fts5(
    title,
    body,
    notes,
    content='slides',
    content_rowid='id',
    tokenize='porter unicode61'
);

-- FTS triggers to keep index in sync
CREATE TRIGGER IF NOT EXISTS slides_ai AFTER INSERT ON slides BEGIN
    INSERT INTO slides_fts(rowid, title, body, notes) VALUES (new.id, new.title, new.body, new.notes);
END;
CREATE TRIGGER IF NOT EXISTS slides_ad AFTER DELETE ON slides BEGIN
    INSERT INTO slides_fts(slides_fts, rowid, title, body, notes) VALUES ('delete', old.id, old.title, old.body, old.notes);
END;
CREATE TRIGGER IF NOT EXISTS slides_au AFTER UPDATE ON slides BEGIN
    INSERT INTO slides_fts(slides_fts, rowid, title, body, notes) VALUES ('delete', old.id, old.title, old.body, old.notes);
    INSERT INTO slides_fts(rowid, title, body, notes) VALUES (new.id, new.title, new.body, new.notes);
END;

-- Search audit log
CREATE TABLE IF NOT EXISTS search_log (
    id INTEGER PRIMARY KEY,
    query TEXT NOT NULL,
    results INTEGER NOT NULL DEFAULT 0,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- Indexes
CREATE INDEX IF NOT EXISTS idx_slides_deck ON slides(deck_id, position);
CREATE INDEX IF NOT EXISTS idx_slides_section ON slides(section);
CREATE INDEX IF NOT EXISTS idx_decks_hash ON decks(content_hash);
`

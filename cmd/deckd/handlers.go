package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	godeck "github.com/bbiangul/go-deck"
	"github.com/bbiangul/go-deck/slides"
)

const (
	maxMarkdownBytes = 10 << 20
	pptxContentType  = "application/vnd.openxmlformats-officedocument.presentationml.presentation"
)

type handler struct {
	cfg godeck.Config
	lib *godeck.Library // nil when the index is disabled
}

func newHandler(cfg godeck.Config, lib *godeck.Library) *handler {
	return &handler{cfg: cfg, lib: lib}
}

func (h *handler) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /convert", h.handleConvert)
	mux.HandleFunc("POST /index", h.handleIndex)
	mux.HandleFunc("GET /search", h.handleSearch)
	mux.HandleFunc("GET /decks", h.handleListDecks)
	mux.HandleFunc("DELETE /decks/{id}", h.handleDeleteDeck)
	mux.HandleFunc("GET /health", h.handleHealth)
	return mux
}

// POST /convert
// Accepts a multipart upload in field "file" or the Markdown as the raw
// request body. Responds with the .pptx file.
func (h *handler) handleConvert(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxMarkdownBytes)

	name := "slides.md"
	var src io.Reader = r.Body
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		file, header, err := r.FormFile("file")
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid request: expected multipart field 'file'")
			return
		}
		defer file.Close()
		// Sanitise filename to prevent path traversal.
		name = filepath.Base(header.Filename)
		src = file
	}

	data, err := io.ReadAll(src)
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "markdown too large or unreadable")
		return
	}

	deck := slides.ParseDeck(string(data))
	if len(deck.Slides) == 0 {
		writeError(w, http.StatusUnprocessableEntity, godeck.ErrEmptyDeck.Error())
		return
	}

	tmpDir, err := os.MkdirTemp("", "deckd-*")
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to process file")
		log.Error().Err(err).Msg("creating temp dir")
		return
	}
	defer os.RemoveAll(tmpDir)

	out := filepath.Join(tmpDir, godeck.OutputPath(name))
	res, err := godeck.Render(deck, out, h.cfg)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "conversion failed")
		log.Error().Err(err).Str("name", name).Msg("convert error")
		return
	}

	f, err := os.Open(out)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "conversion failed")
		log.Error().Err(err).Msg("opening output")
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", pptxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filepath.Base(out)))
	w.Header().Set("Content-Length", strconv.FormatInt(res.Bytes, 10))
	w.Header().Set("X-Deck-Slides", strconv.Itoa(res.Slides))
	w.Header().Set("X-Deck-Sections", strconv.Itoa(res.Sections))
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, f); err != nil {
		log.Debug().Err(err).Msg("writing response")
	}
}

// POST /index
func (h *handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	if h.lib == nil {
		writeError(w, http.StatusNotImplemented, "index disabled")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Minute)
	defer cancel()

	var req struct {
		Path  string `json:"path"`
		Force bool   `json:"force,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Path == "" {
		writeError(w, http.StatusBadRequest, "path is required")
		return
	}

	// Validate that path is a real file (prevents directory traversal probing).
	absPath, err := filepath.Abs(req.Path)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid path")
		return
	}
	info, err := os.Stat(absPath)
	if err != nil || info.IsDir() {
		writeError(w, http.StatusBadRequest, "path must be an existing file")
		return
	}

	res, err := h.lib.IndexFile(ctx, absPath, req.Force)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "indexing failed")
		log.Error().Err(err).Str("path", absPath).Msg("index error")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// GET /search?q=...&limit=...
func (h *handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	if h.lib == nil {
		writeError(w, http.StatusNotImplemented, "index disabled")
		return
	}
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		writeError(w, http.StatusBadRequest, "q is required")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	// Bound parameters.
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	hits, err := h.lib.Search(r.Context(), q, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "search failed")
		log.Error().Err(err).Str("query", q).Msg("search error")
		return
	}
	if hits == nil {
		hits = []godeck.Hit{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"query": q, "hits": hits})
}

// GET /decks
func (h *handler) handleListDecks(w http.ResponseWriter, r *http.Request) {
	if h.lib == nil {
		writeError(w, http.StatusNotImplemented, "index disabled")
		return
	}
	decks, err := h.lib.ListDecks(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list decks")
		log.Error().Err(err).Msg("list decks error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"decks": decks})
}

// DELETE /decks/{id}
func (h *handler) handleDeleteDeck(w http.ResponseWriter, r *http.Request) {
	if h.lib == nil {
		writeError(w, http.StatusNotImplemented, "index disabled")
		return
	}
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid deck id")
		return
	}
	if _, err := h.lib.Store().GetDeck(r.Context(), id); err != nil {
		writeError(w, http.StatusNotFound, godeck.ErrNotIndexed.Error())
		return
	}
	if err := h.lib.Store().DeleteDeck(r.Context(), id); err != nil {
		writeError(w, http.StatusInternalServerError, "delete failed")
		log.Error().Err(err).Int64("deck_id", id).Msg("delete error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// GET /health
func (h *handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"index":  h.lib != nil,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

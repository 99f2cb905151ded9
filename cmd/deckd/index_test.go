//go:build cgo && sqlite_fts5

package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	godeck "github.com/bbiangul/go-deck"
)

func TestIndexSearchDelete(t *testing.T) {
	cfg := godeck.DefaultConfig()
	cfg.DBPath = filepath.Join(t.TempDir(), "index.db")
	lib, err := godeck.OpenLibrary(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { lib.Close() })
	srv := newTestServer(t, lib, "")

	abs, err := filepath.Abs(demo)
	require.NoError(t, err)
	resp, err := http.Post(srv.URL+"/index", "application/json", strings.NewReader(fmt.Sprintf(`{"path": %q}`, abs)))
	require.NoError(t, err)
	var indexed godeck.IndexResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&indexed))
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 9, indexed.Slides)
	assert.True(t, indexed.Changed)

	resp, err = http.Get(srv.URL + "/search?q=audience")
	require.NoError(t, err)
	var found struct {
		Query string       `json:"query"`
		Hits  []godeck.Hit `json:"hits"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&found))
	resp.Body.Close()
	require.Len(t, found.Hits, 1)
	assert.Equal(t, "Go example", found.Hits[0].Title)

	resp, err = http.Get(srv.URL + "/decks")
	require.NoError(t, err)
	var listed struct {
		Decks []struct {
			ID int64 `json:"id"`
		} `json:"decks"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&listed))
	resp.Body.Close()
	require.Len(t, listed.Decks, 1)

	req, err := http.NewRequest(http.MethodDelete, fmt.Sprintf("%s/decks/%d", srv.URL, listed.Decks[0].ID), nil)
	require.NoError(t, err)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestIndexBadRequests(t *testing.T) {
	cfg := godeck.DefaultConfig()
	cfg.DBPath = filepath.Join(t.TempDir(), "index.db")
	lib, err := godeck.OpenLibrary(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { lib.Close() })
	srv := newTestServer(t, lib, "")

	for _, body := range []string{"not json", `{"path": ""}`, `{"path": "/definitely/not/here.md"}`} {
		resp, err := http.Post(srv.URL+"/index", "application/json", strings.NewReader(body))
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, body)
	}

	resp, err := http.Get(srv.URL + "/search")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

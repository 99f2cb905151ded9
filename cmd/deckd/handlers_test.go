package main

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	godeck "github.com/bbiangul/go-deck"
)

const demo = "../../testdata/demo.md"

func newTestServer(t *testing.T, lib *godeck.Library, apiKey string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(chain(newHandler(godeck.DefaultConfig(), lib).routes(), apiKey, "https://slides.example"))
	t.Cleanup(srv.Close)
	return srv
}

func TestConvertRawBody(t *testing.T) {
	srv := newTestServer(t, nil, "")
	md, err := os.ReadFile(demo)
	require.NoError(t, err)

	resp, err := http.Post(srv.URL+"/convert", "text/markdown", bytes.NewReader(md))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, pptxContentType, resp.Header.Get("Content-Type"))
	assert.Equal(t, "9", resp.Header.Get("X-Deck-Slides"))
	assert.Equal(t, "2", resp.Header.Get("X-Deck-Sections"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), `filename="slides.pptx"`)

	var body bytes.Buffer
	_, err = body.ReadFrom(resp.Body)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(body.Bytes(), []byte("PK")), "expected a zip package")
}

func TestConvertMultipart(t *testing.T) {
	srv := newTestServer(t, nil, "")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "../../etc/talk.md")
	require.NoError(t, err)
	_, err = fw.Write([]byte("## Hello\n- world"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	resp, err := http.Post(srv.URL+"/convert", mw.FormDataContentType(), &buf)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), `filename="talk.pptx"`)
	assert.Equal(t, "1", resp.Header.Get("X-Deck-Slides"))
}

func TestConvertEmpty(t *testing.T) {
	srv := newTestServer(t, nil, "")
	resp, err := http.Post(srv.URL+"/convert", "text/markdown", strings.NewReader("\n---\n"))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestIndexDisabled(t *testing.T) {
	srv := newTestServer(t, nil, "")
	for _, path := range []string{"/search?q=go", "/decks"} {
		resp, err := http.Get(srv.URL + path)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusNotImplemented, resp.StatusCode, path)
	}
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, nil, "secret")
	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, false, body["index"])
}

func TestAuthMiddleware(t *testing.T) {
	srv := newTestServer(t, nil, "secret")

	resp, err := http.Post(srv.URL+"/convert", "text/markdown", strings.NewReader("## Hi"))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/convert", strings.NewReader("## Hi"))
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer secret")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCORSPreflight(t *testing.T) {
	srv := newTestServer(t, nil, "")
	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/convert", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "https://slides.example", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestRecoveryMiddleware(t *testing.T) {
	h := recoveryMiddleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "internal server error")
}

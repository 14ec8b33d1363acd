package net

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDownload(t *testing.T) {
	body := "encounter_id,age\ne-1,50\n"
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}))
	defer ts.Close()

	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, Download(ts.URL, path))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, body, string(b))
}

func TestDownload_NonOK(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	path := filepath.Join(t.TempDir(), "error.csv")
	err := Download(ts.URL, path)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrorURLNotFound)
}

func TestDownload_NotFound(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	path := filepath.Join(t.TempDir(), "missing.csv")
	err := Download(ts.URL, path)
	assert.ErrorIs(t, err, ErrorURLNotFound)
}

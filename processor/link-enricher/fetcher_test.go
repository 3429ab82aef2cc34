package linkenricher

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFetcher(t *testing.T, modify func(*Config)) *Fetcher {
	t.Helper()
	cfg := DefaultConfig()
	if modify != nil {
		modify(&cfg)
	}
	require.NoError(t, cfg.Validate())
	return NewFetcher(cfg, nil)
}

// redirectChain serves /hop/N redirecting to /hop/N-1, down to /hop/0 which
// serves a page.
func redirectChain() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/hop/", func(w http.ResponseWriter, r *http.Request) {
		var n int
		if _, err := fmt.Sscanf(r.URL.Path, "/hop/%d", &n); err != nil {
			http.NotFound(w, r)
			return
		}
		if n > 0 {
			http.Redirect(w, r, fmt.Sprintf("/hop/%d", n-1), http.StatusFound)
			return
		}
		fmt.Fprint(w, "<html><head><title>Landed</title></head></html>")
	})
	return mux
}

func TestFetcher_Fetch(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, "<html><head><title>Hello</title></head></html>")
	}))
	defer srv.Close()

	result, err := testFetcher(t, nil).Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, result.StatusCode)
	assert.Contains(t, string(result.Body), "<title>Hello</title>")
	assert.Equal(t, "text/html; charset=utf-8", result.ContentType)
	assert.Equal(t, DefaultUserAgent, gotUA)
}

func TestFetcher_Redirects(t *testing.T) {
	srv := httptest.NewServer(redirectChain())
	defer srv.Close()

	fetcher := testFetcher(t, func(c *Config) { c.MaxRedirects = 3 })

	t.Run("within limit", func(t *testing.T) {
		result, err := fetcher.Fetch(context.Background(), srv.URL+"/hop/3")
		require.NoError(t, err)
		assert.Contains(t, string(result.Body), "Landed")
		assert.Equal(t, srv.URL+"/hop/0", result.FinalURL)
	})

	t.Run("limit exceeded", func(t *testing.T) {
		result, err := fetcher.Fetch(context.Background(), srv.URL+"/hop/4")
		require.Error(t, err)
		assert.Nil(t, result)
		assert.True(t, IsRedirectLimit(err))
		assert.False(t, IsNetworkError(err))
	})
}

func TestFetcher_CookiesAcrossRedirects(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "abc", Path: "/"})
		http.Redirect(w, r, "/article", http.StatusFound)
	})
	mux.HandleFunc("/article", func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie("session"); err != nil || c.Value != "abc" {
			w.WriteHeader(http.StatusForbidden)
			fmt.Fprint(w, "<title>Consent required</title>")
			return
		}
		fmt.Fprint(w, "<title>Article</title>")
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	fetcher := testFetcher(t, nil)

	result, err := fetcher.Fetch(context.Background(), srv.URL+"/login")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, result.StatusCode)
	assert.Contains(t, string(result.Body), "Article")

	// A new call starts with an empty jar.
	result, err = fetcher.Fetch(context.Background(), srv.URL+"/article")
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, result.StatusCode)
	assert.Contains(t, string(result.Body), "Consent required")
}

func TestFetcher_NetworkErrors(t *testing.T) {
	t.Run("connection refused", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		_, err := testFetcher(t, nil).Fetch(context.Background(), url)
		require.Error(t, err)
		assert.True(t, IsNetworkError(err))
		assert.False(t, IsRedirectLimit(err))
	})

	t.Run("timeout", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
		}))
		defer srv.Close()

		start := time.Now()
		_, err := testFetcher(t, func(c *Config) { c.FetchTimeout = "50ms" }).Fetch(context.Background(), srv.URL)
		require.Error(t, err)
		assert.True(t, IsNetworkError(err))
		assert.Less(t, time.Since(start), time.Second)
	})

	t.Run("malformed link", func(t *testing.T) {
		_, err := testFetcher(t, nil).Fetch(context.Background(), "http//missing-colon")
		require.Error(t, err)
		assert.True(t, IsNetworkError(err))
	})

	t.Run("content too large", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, strings.Repeat("x", 100))
		}))
		defer srv.Close()

		_, err := testFetcher(t, func(c *Config) { c.MaxContentSize = 10 }).Fetch(context.Background(), srv.URL)
		require.Error(t, err)
		assert.True(t, IsNetworkError(err))
		assert.True(t, errors.Is(err, ErrContentTooLarge))
	})
}

func TestFetcher_BlockPrivateNetworks(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	_, err := testFetcher(t, func(c *Config) { c.BlockPrivateNetworks = true }).Fetch(context.Background(), srv.URL)
	require.Error(t, err)
	assert.True(t, IsNetworkError(err))
	assert.Zero(t, hits.Load())
}

func TestFetcher_ErrorStatusKeepsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, "<html><head><title>Not Found</title></head></html>")
	}))
	defer srv.Close()

	result, err := testFetcher(t, nil).Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, result.StatusCode)
	assert.Contains(t, string(result.Body), "Not Found")
}

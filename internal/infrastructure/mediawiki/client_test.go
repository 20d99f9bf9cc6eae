package mediawiki

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolvePageFollowsRedirect(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "query", q.Get("action"))
		assert.Equal(t, ":How to test", q.Get("titles"))
		assert.Equal(t, "1", q.Get("redirects"))

		_, _ = w.Write([]byte(`{
			"query": {
				"redirects": [{"to": "Test Moving"}],
				"pages": {
					"123": {
						"ns": 0,
						"title": "Test Moving",
						"revisions": [{"timestamp": "2011-04-28T12:30:00Z"}]
					}
				}
			}
		}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second)
	meta, err := client.ResolvePage(context.Background(), "How to test")
	require.NoError(t, err)
	require.NotNil(t, meta)

	assert.Equal(t, 0, meta.Namespace)
	assert.Equal(t, "Test Moving", meta.Title)
	assert.Equal(t, time.Date(2011, time.April, 28, 12, 30, 0, 0, time.UTC), meta.Timestamp)
}

func TestResolvePageEmptyResult(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second)
	meta, err := client.ResolvePage(context.Background(), "Gone forever")
	require.NoError(t, err)
	assert.Nil(t, meta)
}

func TestResolvePageMissingPage(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"query": {
				"pages": {
					"-1": {"ns": 0, "title": "Gone forever", "missing": true}
				}
			}
		}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second)
	meta, err := client.ResolvePage(context.Background(), "Gone forever")
	require.NoError(t, err)
	assert.Nil(t, meta)
}

func TestResolvePageServerError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "maintenance", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second)
	_, err := client.ResolvePage(context.Background(), "Anything")
	require.Error(t, err)
}

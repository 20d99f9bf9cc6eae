package metadata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectMetadata(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/wiki/Wikipedia:WikiProject_Test", r.URL.Path)
		_, _ = w.Write([]byte(`
		<html>
		  <head>
		    <link rel="canonical" href="https://en.example.org/wiki/Wikipedia:WikiProject_Test"/>
		  </head>
		  <body>
		    <h1 id="firstHeading">Wikipedia:WikiProject Test</h1>
		    <table class="infobox">
		      <tr><th>Shortcut</th><td>WP:TEST</td></tr>
		      <tr><th>Parent project</th><td>Nothing</td></tr>
		    </table>
		  </body>
		</html>`))
	}))
	defer server.Close()

	scraper := NewScraper(server.URL, 5*time.Second)
	meta, err := scraper.ProjectMetadata(context.Background(), "Test")
	require.NoError(t, err)

	assert.Equal(t, "/wiki/Wikipedia:WikiProject_Test", meta.Homepage)
	assert.Equal(t, "Test", meta.Shortname)
	assert.Equal(t, "Nothing", meta.Parent)
}

func TestProjectMetadataSparsePage(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><body><h1 id="firstHeading">Wikipedia:WikiProject Bare</h1></body></html>`))
	}))
	defer server.Close()

	scraper := NewScraper(server.URL, 5*time.Second)
	meta, err := scraper.ProjectMetadata(context.Background(), "Bare bones")
	require.NoError(t, err)

	assert.Equal(t, "/wiki/Wikipedia:WikiProject_Bare_bones", meta.Homepage)
	assert.Equal(t, "Bare", meta.Shortname)
	assert.Empty(t, meta.Parent)
}

func TestProjectMetadataNotFound(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	scraper := NewScraper(server.URL, 5*time.Second)
	_, err := scraper.ProjectMetadata(context.Background(), "Missing")
	require.Error(t, err)
}

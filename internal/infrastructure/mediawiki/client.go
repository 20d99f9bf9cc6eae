// Package mediawiki talks to the wiki's action API. It is consulted only
// when a rated article can no longer be found in the replica under its
// stored title, to resolve page moves via redirects.
package mediawiki

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"AssessmentTracker/internal/domain"
	"AssessmentTracker/internal/ports"
)

const revisionTimestampLayout = "2006-01-02T15:04:05Z"

// Client implements ports.PageResolver against a MediaWiki api.php endpoint.
type Client struct {
	endpoint   string
	httpClient *http.Client
}

var _ ports.PageResolver = (*Client)(nil)

// NewClient builds a resolver; timeout bounds each lookup call.
func NewClient(endpoint string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type apiResponse struct {
	Query struct {
		Redirects []struct {
			To string `json:"to"`
		} `json:"redirects"`
		Pages map[string]struct {
			NS        int    `json:"ns"`
			Title     string `json:"title"`
			Missing   *bool  `json:"missing"`
			Revisions []struct {
				Timestamp string `json:"timestamp"`
			} `json:"revisions"`
		} `json:"pages"`
	} `json:"query"`
}

// ResolvePage asks the API for the page behind ":<title>", following
// redirects, and returns its canonical namespace, title and last revision
// timestamp. A title the API cannot resolve yields (nil, nil).
func (c *Client) ResolvePage(ctx context.Context, title string) (*domain.PageMeta, error) {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("titles", ":"+title)
	params.Set("redirects", "1")
	params.Set("prop", "revisions")
	params.Set("rvprop", "timestamp")
	params.Set("format", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "AssessmentTracker/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("query page %s: %w", title, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("api error %s: %s", resp.Status, strings.TrimSpace(string(payload)))
	}

	var parsed apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	for _, page := range parsed.Query.Pages {
		if page.Title == "" || page.Missing != nil {
			continue
		}
		if len(page.Revisions) == 0 {
			continue
		}
		ts, err := time.Parse(revisionTimestampLayout, page.Revisions[0].Timestamp)
		if err != nil {
			return nil, fmt.Errorf("parse revision timestamp %q: %w", page.Revisions[0].Timestamp, err)
		}
		return &domain.PageMeta{
			Namespace: page.NS,
			Title:     page.Title,
			Timestamp: ts,
		}, nil
	}

	return nil, nil
}

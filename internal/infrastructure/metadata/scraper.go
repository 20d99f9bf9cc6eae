// Package metadata scrapes project metadata (homepage, shortname, parent)
// from the project's wiki page.
package metadata

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"AssessmentTracker/internal/domain"
	"AssessmentTracker/internal/ports"
)

// Scraper fetches and parses WikiProject pages.
type Scraper struct {
	baseURL    string
	httpClient *http.Client
}

var _ ports.MetadataSource = (*Scraper)(nil)

// NewScraper wires the wiki base URL (e.g. "https://en.wikipedia.org").
func NewScraper(baseURL string, timeout time.Duration) *Scraper {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Scraper{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// ProjectMetadata loads the project's wiki page and extracts its metadata.
// Missing pieces come back empty; the homepage falls back to the page path
// itself.
func (s *Scraper) ProjectMetadata(ctx context.Context, project string) (domain.ProjectMetadata, error) {
	path := s.projectPath(project)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+path, nil)
	if err != nil {
		return domain.ProjectMetadata{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "AssessmentTracker/1.0")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return domain.ProjectMetadata{}, fmt.Errorf("fetch project page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.ProjectMetadata{}, fmt.Errorf("project page returned %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return domain.ProjectMetadata{}, fmt.Errorf("parse project page: %w", err)
	}

	meta := domain.ProjectMetadata{Homepage: path}
	if canonical, ok := doc.Find(`link[rel="canonical"]`).Attr("href"); ok {
		if u, err := url.Parse(canonical); err == nil && u.Path != "" {
			meta.Homepage = u.Path
		}
	}

	heading := strings.TrimSpace(doc.Find("#firstHeading").Text())
	meta.Shortname = strings.TrimPrefix(heading, "Wikipedia:WikiProject ")
	meta.Shortname = strings.TrimPrefix(meta.Shortname, "WikiProject ")

	doc.Find("table.infobox tr").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		label := strings.TrimSpace(row.Find("th").First().Text())
		if !strings.EqualFold(label, "Parent project") {
			return true
		}
		meta.Parent = strings.TrimSpace(row.Find("td").First().Text())
		return false
	})

	return meta, nil
}

func (s *Scraper) projectPath(project string) string {
	title := "Wikipedia:WikiProject_" + strings.ReplaceAll(project, " ", "_")
	return "/wiki/" + url.PathEscape(title)
}

package domain

import "time"

// Project is one WikiProject whose assessments we track. The counts are
// cached aggregates recomputed after every reconciliation cycle.
type Project struct {
	Name      string
	Timestamp time.Time
	Wikipage  string
	Shortname string
	Parent    string
	Count     int
	QCount    int
	ICount    int
}

// ProjectMetadata is scraped from the project's wiki page and overwrites the
// project record unconditionally on every cycle.
type ProjectMetadata struct {
	Homepage  string
	Shortname string
	Parent    string
}

// ProjectCounts are the aggregate rating counts for a project.
type ProjectCounts struct {
	Total      int
	Quality    int
	Importance int
}

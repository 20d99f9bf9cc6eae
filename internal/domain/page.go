package domain

import (
	"fmt"
	"time"
)

// Wiki namespaces relevant to assessment tracking.
const (
	NamespaceArticle  = 0
	NamespaceCategory = 14
)

// Page is a row of the wiki's page table, read-only from our side.
// Linked carries the categorylink timestamp when the page was fetched as a
// member of a category; it is zero otherwise.
type Page struct {
	ID        int64
	Namespace int
	Title     string
	Linked    time.Time
}

// PageMeta is what the external page-metadata API reports for a title,
// after following redirects.
type PageMeta struct {
	Namespace int
	Title     string
	Timestamp time.Time
}

// PageRef builds the "namespace:title" key used to match wiki pages against
// stored ratings.
func PageRef(namespace int, title string) string {
	return fmt.Sprintf("%d:%s", namespace, title)
}

func (p Page) Ref() string {
	return PageRef(p.Namespace, p.Title)
}

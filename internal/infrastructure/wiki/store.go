// Package wiki reads the live wiki's page and categorylinks tables. All
// queries are read-only; the replica is the source of truth for category
// membership.
package wiki

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"

	"AssessmentTracker/internal/domain"
	"AssessmentTracker/internal/ports"
)

const qualityRootSuffix = "_articles_by_quality"

// Store queries the wiki replica database.
type Store struct {
	db      *sql.DB
	builder sq.StatementBuilderType
}

var _ ports.WikiStore = (*Store)(nil)

// NewStore wires a sql.DB connected to the replica.
func NewStore(db *sql.DB) *Store {
	return &Store{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// PagesInCategory returns the direct members of a category restricted to one
// namespace, each carrying its categorylink timestamp.
func (s *Store) PagesInCategory(ctx context.Context, category string, namespace int) ([]domain.Page, error) {
	query, args, err := s.builder.
		Select("page_id", "page_namespace", "page_title", "cl_timestamp").
		From("page").
		Join("categorylinks ON cl_from = page_id").
		Where(sq.Eq{"cl_to": category, "page_namespace": namespace}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build category members query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query members of %s: %w", category, err)
	}
	defer rows.Close()

	var pages []domain.Page
	for rows.Next() {
		var (
			page   domain.Page
			linked sql.NullTime
		)
		if err := rows.Scan(&page.ID, &page.Namespace, &page.Title, &linked); err != nil {
			return nil, fmt.Errorf("scan page: %w", err)
		}
		page.Linked = linked.Time
		pages = append(pages, page)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("members iteration: %w", err)
	}

	return pages, nil
}

// PageExists reports whether a page exists under the exact (namespace,
// title).
func (s *Store) PageExists(ctx context.Context, namespace int, title string) (bool, error) {
	query, args, err := s.builder.
		Select("1").
		From("page").
		Where(sq.Eq{"page_namespace": namespace, "page_title": title}).
		Limit(1).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build page exists query: %w", err)
	}

	var one int
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query page %s: %w", title, err)
	}
	return true, nil
}

// ProjectNames enumerates projects by scanning Category-namespace titles
// ending in "_articles_by_quality". Underscores in the LIKE pattern are
// escaped; they would otherwise match any character.
func (s *Store) ProjectNames(ctx context.Context) ([]string, error) {
	pattern := "%" + strings.ReplaceAll(qualityRootSuffix, "_", `\_`)
	query, args, err := s.builder.
		Select("DISTINCT page_title").
		From("page").
		Where(sq.Eq{"page_namespace": domain.NamespaceCategory}).
		Where(sq.Like{"page_title": pattern}).
		OrderBy("page_title").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build project names query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query project names: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var title string
		if err := rows.Scan(&title); err != nil {
			return nil, fmt.Errorf("scan project name: %w", err)
		}
		names = append(names, strings.TrimSuffix(title, qualityRootSuffix))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("project names iteration: %w", err)
	}

	return names, nil
}

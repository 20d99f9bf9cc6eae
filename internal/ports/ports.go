package ports

import (
	"context"
	"time"

	"AssessmentTracker/internal/domain"
)

// WikiStore answers read-only queries against the wiki's page and
// category-link tables.
type WikiStore interface {
	// PagesInCategory returns the direct members of a category restricted
	// to one namespace, with the categorylink timestamp on each page.
	PagesInCategory(ctx context.Context, category string, namespace int) ([]domain.Page, error)
	PageExists(ctx context.Context, namespace int, title string) (bool, error)
	// ProjectNames enumerates projects that have an articles_by_quality
	// root category.
	ProjectNames(ctx context.Context) ([]string, error)
}

// RatingStore is the CRUD surface of the secondary ratings database.
type RatingStore interface {
	GetProject(ctx context.Context, name string) (*domain.Project, error)
	SaveProject(ctx context.Context, project domain.Project) error

	SaveCategory(ctx context.Context, category domain.Category) error

	ProjectRatings(ctx context.Context, project string) ([]domain.Rating, error)
	SaveRating(ctx context.Context, rating domain.Rating) error
	DeleteRating(ctx context.Context, project string, namespace int, article string) error
	// DeleteUnassessed removes rows whose quality and importance are both
	// absent or equal to the sentinel.
	DeleteUnassessed(ctx context.Context, project, sentinel string) (int64, error)
	// NormalizeClass replaces values of one kind that are absent or not in
	// the recognized set with the sentinel, for rows that survive cleanup.
	NormalizeClass(ctx context.Context, project string, kind domain.Kind, recognized []string, sentinel string) (int64, error)
	RatingCounts(ctx context.Context, project string, uncounted []string) (domain.ProjectCounts, error)
}

// PageResolver looks up current page metadata for a title via the wiki's
// action API, following redirects. A (nil, nil) return means the title could
// not be resolved, which callers treat as "article not found".
type PageResolver interface {
	ResolvePage(ctx context.Context, title string) (*domain.PageMeta, error)
}

// MetadataSource fetches the homepage/shortname/parent metadata recorded on
// the project record after each cycle.
type MetadataSource interface {
	ProjectMetadata(ctx context.Context, project string) (domain.ProjectMetadata, error)
}

// UpdateQueue dispatches project update jobs and tracks their status in a
// key-value store.
type UpdateQueue interface {
	Enqueue(ctx context.Context, job domain.UpdateJob) error
	// Dequeue blocks until a job is available or ctx is done; it returns
	// (nil, nil) when no job arrived within the poll interval.
	Dequeue(ctx context.Context) (*domain.UpdateJob, error)
	Pending(ctx context.Context) (int64, error)
	SetJobStatus(ctx context.Context, project string, status domain.JobStatus) error
	JobStatus(ctx context.Context, project string) (*domain.JobStatus, error)
	// MarkManualUpdateTime records when the project may next be manually
	// updated and returns the recorded timestamp.
	MarkManualUpdateTime(ctx context.Context, project string) (string, error)
	NextUpdateTime(ctx context.Context, project string) (string, error)
}

// Scheduler controls when the recurring enqueue-all job executes.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}

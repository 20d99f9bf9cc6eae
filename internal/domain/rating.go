package domain

import "time"

// Kind is one of the two independent rating dimensions tracked per article.
type Kind string

const (
	KindQuality    Kind = "quality"
	KindImportance Kind = "importance"
)

// Kinds lists the dimensions in the order a full reconciliation cycle
// processes them.
func Kinds() []Kind {
	return []Kind{KindQuality, KindImportance}
}

// Rating is one (project, namespace, article) assessment record. An empty
// class string means the dimension is unassessed; a record with both
// dimensions unassessed is garbage-collected by project cleanup.
type Rating struct {
	Project             string
	Namespace           int
	Article             string
	Quality             string
	QualityTimestamp    time.Time
	Importance          string
	ImportanceTimestamp time.Time
	Score               int
}

func (r Rating) Ref() string {
	return PageRef(r.Namespace, r.Article)
}

// Value returns the class stored for the given dimension, empty when
// unassessed.
func (r *Rating) Value(kind Kind) string {
	if kind == KindImportance {
		return r.Importance
	}
	return r.Quality
}

// SetValue records a class and its observation timestamp for one dimension.
func (r *Rating) SetValue(kind Kind, class string, ts time.Time) {
	if kind == KindImportance {
		r.Importance = class
		r.ImportanceTimestamp = ts
		return
	}
	r.Quality = class
	r.QualityTimestamp = ts
}

// Category is one (project, kind, rating-class) to category-title mapping
// discovered during a category walk. Replacement folds legacy class names
// into canonical ones.
type Category struct {
	Project     string
	Kind        Kind
	Rating      string
	Category    string
	Ranking     int
	Replacement string
}

// UpdateJob is one unit of work on the project update queue.
type UpdateJob struct {
	ID         string    `json:"id"`
	Project    string    `json:"project"`
	Manual     bool      `json:"manual"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}

// Job states, mirroring the lifecycle the queue reports for a project update.
const (
	JobStateQueued   = "queued"
	JobStateStarted  = "started"
	JobStateFinished = "finished"
	JobStateFailed   = "failed"
)

// JobStatus is the queue-side status of the most recent update job for a
// project.
type JobStatus struct {
	JobID   string
	State   string
	EndedAt time.Time
}

package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"AssessmentTracker/internal/assessment"
	"AssessmentTracker/internal/domain"
	"AssessmentTracker/internal/ports"
)

// ProjectOverrides carries the per-project classification overrides, keyed
// by kind.
type ProjectOverrides map[domain.Kind]assessment.Overrides

// ReconcilerDeps wires the collaborators of the reconciliation core.
type ReconcilerDeps struct {
	Wiki        ports.WikiStore
	Ratings     ports.RatingStore
	Resolver    ports.PageResolver
	Metadata    ports.MetadataSource
	Assessments *assessment.Config
	Overrides   map[string]ProjectOverrides
	Logger      *slog.Logger
}

// Reconciler keeps the ratings database consistent with the wiki's live
// category graph, one project at a time.
type Reconciler struct {
	wiki        ports.WikiStore
	ratings     ports.RatingStore
	resolver    ports.PageResolver
	metadata    ports.MetadataSource
	assessments *assessment.Config
	overrides   map[string]ProjectOverrides
	logger      *slog.Logger
	now         func() time.Time
}

// NewReconciler constructs the reconciliation core.
func NewReconciler(deps ReconcilerDeps) *Reconciler {
	cfg := deps.Assessments
	if cfg == nil {
		cfg = assessment.Default()
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{
		wiki:        deps.Wiki,
		ratings:     deps.Ratings,
		resolver:    deps.Resolver,
		metadata:    deps.Metadata,
		assessments: cfg,
		overrides:   deps.Overrides,
		logger:      logger,
		now:         time.Now,
	}
}

// rootCategories resolves the kind-root category titles for a project.
// Importance also tries the legacy "priority" naming some projects use.
func rootCategories(project string, kind domain.Kind) []string {
	base := strings.ReplaceAll(project, " ", "_")
	if kind == domain.KindImportance {
		return []string{
			base + "_articles_by_importance",
			base + "_articles_by_priority",
		}
	}
	return []string{base + "_articles_by_quality"}
}

// recordCategory classifies one category page and, on a match, upserts its
// Category row and records the class in ratingToCategory. Titles that fail
// classification are skipped silently.
func (r *Reconciler) recordCategory(ctx context.Context, project *domain.Project, page domain.Page, extra assessment.Overrides, kind domain.Kind, ratingToCategory map[string]string) error {
	cl, ok := r.assessments.Classify(page.Title, kind, extra)
	if !ok {
		return nil
	}

	ratingToCategory[cl.Class] = page.Title

	category := domain.Category{
		Project:     project.Name,
		Kind:        kind,
		Rating:      cl.Class,
		Category:    page.Title,
		Ranking:     cl.Ranking,
		Replacement: cl.Replacement,
	}
	if err := r.ratings.SaveCategory(ctx, category); err != nil {
		return fmt.Errorf("save category %s: %w", page.Title, err)
	}
	return nil
}

// WalkCategories enumerates the per-class category pages under the project's
// kind-root categories, records each as a Category row, and returns the
// rating-to-category map. Later categories mapping to an already-seen class
// overwrite the earlier entry.
func (r *Reconciler) WalkCategories(ctx context.Context, project *domain.Project, kind domain.Kind, extra assessment.Overrides) (map[string]string, error) {
	ratingToCategory := map[string]string{}

	for _, root := range rootCategories(project.Name, kind) {
		pages, err := r.wiki.PagesInCategory(ctx, root, domain.NamespaceCategory)
		if err != nil {
			return nil, fmt.Errorf("pages in category %s: %w", root, err)
		}
		r.logger.Debug("walked root category",
			"project", project.Name, "kind", kind, "root", root, "members", len(pages))

		for _, page := range pages {
			if err := r.recordCategory(ctx, project, page, extra, kind, ratingToCategory); err != nil {
				return nil, err
			}
		}
	}

	return ratingToCategory, nil
}

// ReconcileAssessments runs one per-kind reconciliation pass: walk the
// category graph, upsert ratings for every observed article, then handle the
// previously-rated articles that were not observed this pass.
func (r *Reconciler) ReconcileAssessments(ctx context.Context, project *domain.Project, kind domain.Kind, extra assessment.Overrides) error {
	r.logger.Info("reconciling assessments", "project", project.Name, "kind", kind)

	stored, err := r.ratings.ProjectRatings(ctx, project.Name)
	if err != nil {
		return fmt.Errorf("load ratings for %s: %w", project.Name, err)
	}
	old := make(map[string]*domain.Rating, len(stored))
	for i := range stored {
		old[stored[i].Ref()] = &stored[i]
	}

	ratingToCategory, err := r.WalkCategories(ctx, project, kind, extra)
	if err != nil {
		return err
	}

	seen := map[string]bool{}
	for class, category := range ratingToCategory {
		pages, err := r.wiki.PagesInCategory(ctx, category, domain.NamespaceArticle)
		if err != nil {
			return fmt.Errorf("pages in category %s: %w", category, err)
		}

		for _, page := range pages {
			ref := page.Ref()
			seen[ref] = true

			rating := old[ref]
			if rating == nil {
				rating = &domain.Rating{
					Project:   project.Name,
					Namespace: page.Namespace,
					Article:   page.Title,
				}
				old[ref] = rating
			}
			if rating.Value(kind) == class {
				// Unchanged; avoid timestamp churn.
				continue
			}

			rating.SetValue(kind, class, page.Linked)
			if err := r.ratings.SaveRating(ctx, *rating); err != nil {
				return fmt.Errorf("save rating %s: %w", page.Title, err)
			}
		}
	}

	return r.reconcileUnseen(ctx, project, kind, old, seen)
}

// reconcileUnseen marks vanished articles for cleanup and resolves page
// moves. Articles that can be neither found nor resolved keep their stale
// rating until a later pass succeeds.
func (r *Reconciler) reconcileUnseen(ctx context.Context, project *domain.Project, kind domain.Kind, old map[string]*domain.Rating, seen map[string]bool) error {
	var unseen []string
	for ref, rating := range old {
		if !seen[ref] && rating.Value(kind) != "" {
			unseen = append(unseen, ref)
		}
	}
	sort.Strings(unseen)

	for _, ref := range unseen {
		rating := old[ref]

		exists, err := r.wiki.PageExists(ctx, rating.Namespace, rating.Article)
		if err != nil {
			return fmt.Errorf("page exists %s: %w", rating.Article, err)
		}
		if exists {
			// Still on the wiki, just not in any tracked category for
			// this kind anymore. Clear the value so cleanup can collect
			// the row once both kinds are gone.
			rating.SetValue(kind, "", time.Time{})
			if err := r.ratings.SaveRating(ctx, *rating); err != nil {
				return fmt.Errorf("save rating %s: %w", rating.Article, err)
			}
			continue
		}

		meta, err := r.resolver.ResolvePage(ctx, rating.Article)
		if err != nil {
			r.logger.Warn("page resolution failed, leaving rating stale",
				"project", project.Name, "article", rating.Article, "error", err)
			continue
		}
		if meta == nil {
			continue
		}

		newRef := domain.PageRef(meta.Namespace, meta.Title)
		if newRef == ref {
			continue
		}
		if seen[newRef] || old[newRef] != nil {
			// The canonical title is already tracked; the row under the
			// stale title is redundant.
			if err := r.ratings.DeleteRating(ctx, project.Name, rating.Namespace, rating.Article); err != nil {
				return fmt.Errorf("delete rating %s: %w", rating.Article, err)
			}
			delete(old, ref)
			continue
		}

		r.logger.Info("following page move",
			"project", project.Name, "from", rating.Article, "to", meta.Title)
		moved := *rating
		moved.Namespace = meta.Namespace
		moved.Article = meta.Title
		moved.SetValue(kind, rating.Value(kind), meta.Timestamp)

		if err := r.ratings.DeleteRating(ctx, project.Name, rating.Namespace, rating.Article); err != nil {
			return fmt.Errorf("delete rating %s: %w", rating.Article, err)
		}
		if err := r.ratings.SaveRating(ctx, moved); err != nil {
			return fmt.Errorf("save rating %s: %w", moved.Article, err)
		}
		delete(old, ref)
		old[newRef] = &moved
	}

	return nil
}

// CleanupProject is the final consistency pass: drop rating rows that carry
// no assessment at all, then replace unrecognized surviving values with the
// sentinel. Safe to re-run.
func (r *Reconciler) CleanupProject(ctx context.Context, project *domain.Project) error {
	sentinel := r.assessments.NotAClass()

	deleted, err := r.ratings.DeleteUnassessed(ctx, project.Name, sentinel)
	if err != nil {
		return fmt.Errorf("delete unassessed for %s: %w", project.Name, err)
	}
	if deleted > 0 {
		r.logger.Info("deleted unassessed ratings", "project", project.Name, "count", deleted)
	}

	for _, kind := range domain.Kinds() {
		recognized := r.assessments.Recognized(kind)
		replaced, err := r.ratings.NormalizeClass(ctx, project.Name, kind, recognized, sentinel)
		if err != nil {
			return fmt.Errorf("normalize %s classes for %s: %w", kind, project.Name, err)
		}
		if replaced > 0 {
			r.logger.Info("normalized unrecognized classes",
				"project", project.Name, "kind", kind, "count", replaced)
		}
	}

	return nil
}

// UpdateProjectRecord overwrites the project metadata and recomputes the
// cached aggregate counts from the current rating rows.
func (r *Reconciler) UpdateProjectRecord(ctx context.Context, project *domain.Project, meta domain.ProjectMetadata) error {
	counts, err := r.ratings.RatingCounts(ctx, project.Name, r.assessments.Uncounted())
	if err != nil {
		return fmt.Errorf("rating counts for %s: %w", project.Name, err)
	}

	project.Wikipage = meta.Homepage
	project.Shortname = meta.Shortname
	project.Parent = meta.Parent
	project.Count = counts.Total
	project.QCount = counts.Quality
	project.ICount = counts.Importance

	if err := r.ratings.SaveProject(ctx, *project); err != nil {
		return fmt.Errorf("save project %s: %w", project.Name, err)
	}
	return nil
}

// UpdateProject runs one full reconciliation cycle for a project:
// reconcile quality, reconcile importance, cleanup, record update.
func (r *Reconciler) UpdateProject(ctx context.Context, name string) error {
	started := r.now()
	r.logger.Info("updating project", "project", name)

	project, err := r.ratings.GetProject(ctx, name)
	if err != nil {
		return fmt.Errorf("load project %s: %w", name, err)
	}
	if project == nil {
		project = &domain.Project{Name: name}
	}

	for _, kind := range domain.Kinds() {
		if err := r.ReconcileAssessments(ctx, project, kind, r.projectOverrides(name, kind)); err != nil {
			return err
		}
	}

	if err := r.CleanupProject(ctx, project); err != nil {
		return err
	}

	meta, err := r.metadata.ProjectMetadata(ctx, name)
	if err != nil {
		return fmt.Errorf("project metadata for %s: %w", name, err)
	}

	project.Timestamp = r.now().UTC()
	if err := r.UpdateProjectRecord(ctx, project, meta); err != nil {
		return err
	}

	r.logger.Info("project updated",
		"project", name,
		"count", project.Count,
		"qcount", project.QCount,
		"icount", project.ICount,
		"elapsed", r.now().Sub(started).Round(time.Millisecond))
	return nil
}

// ProjectNamesToUpdate lists every project discoverable from the wiki's
// category graph.
func (r *Reconciler) ProjectNamesToUpdate(ctx context.Context) ([]string, error) {
	names, err := r.wiki.ProjectNames(ctx)
	if err != nil {
		return nil, fmt.Errorf("list project names: %w", err)
	}
	return names, nil
}

func (r *Reconciler) projectOverrides(name string, kind domain.Kind) assessment.Overrides {
	return r.overrides[name][kind]
}

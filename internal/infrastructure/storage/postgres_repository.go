package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"

	"AssessmentTracker/internal/domain"
	"AssessmentTracker/internal/ports"
	"AssessmentTracker/pkg/wikitime"
)

// PostgresRepository persists projects, categories and ratings. Timestamps
// cross the boundary as fixed YYYYMMDDHHMMSS strings; absent classes and
// timestamps are stored as NULL.
type PostgresRepository struct {
	db      *sql.DB
	builder sq.StatementBuilderType
}

var _ ports.RatingStore = (*PostgresRepository)(nil)

// NewPostgresRepository wires a sql.DB implementation.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// GetProject loads one project row; (nil, nil) when the project is unknown.
func (r *PostgresRepository) GetProject(ctx context.Context, name string) (*domain.Project, error) {
	query, args, err := r.builder.
		Select("p_project", "p_timestamp", "p_wikipage", "p_shortname", "p_parent",
			"p_count", "p_qcount", "p_icount").
		From("projects").
		Where(sq.Eq{"p_project": name}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build project query: %w", err)
	}

	var (
		project   domain.Project
		timestamp sql.NullString
		wikipage  sql.NullString
		shortname sql.NullString
		parent    sql.NullString
	)
	row := r.db.QueryRowContext(ctx, query, args...)
	err = row.Scan(&project.Name, &timestamp, &wikipage, &shortname, &parent,
		&project.Count, &project.QCount, &project.ICount)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan project: %w", err)
	}

	project.Timestamp, err = wikitime.Parse(timestamp.String)
	if err != nil {
		return nil, err
	}
	project.Wikipage = wikipage.String
	project.Shortname = shortname.String
	project.Parent = parent.String
	return &project, nil
}

// SaveProject upserts the project row.
func (r *PostgresRepository) SaveProject(ctx context.Context, project domain.Project) error {
	query, args, err := r.builder.
		Insert("projects").
		Columns("p_project", "p_timestamp", "p_wikipage", "p_shortname", "p_parent",
			"p_count", "p_qcount", "p_icount").
		Values(project.Name, nullString(wikitime.Stamp(project.Timestamp)),
			nullString(project.Wikipage), nullString(project.Shortname), nullString(project.Parent),
			project.Count, project.QCount, project.ICount).
		Suffix(`ON CONFLICT (p_project) DO UPDATE
			SET p_timestamp = EXCLUDED.p_timestamp,
			    p_wikipage = EXCLUDED.p_wikipage,
			    p_shortname = EXCLUDED.p_shortname,
			    p_parent = EXCLUDED.p_parent,
			    p_count = EXCLUDED.p_count,
			    p_qcount = EXCLUDED.p_qcount,
			    p_icount = EXCLUDED.p_icount`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build project upsert: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert project %s: %w", project.Name, err)
	}
	return nil
}

// SaveCategory upserts one category mapping keyed by (project, kind, title).
func (r *PostgresRepository) SaveCategory(ctx context.Context, category domain.Category) error {
	query, args, err := r.builder.
		Insert("categories").
		Columns("c_project", "c_type", "c_rating", "c_category", "c_ranking", "c_replacement").
		Values(category.Project, string(category.Kind), category.Rating,
			category.Category, category.Ranking, category.Replacement).
		Suffix(`ON CONFLICT (c_project, c_type, c_category) DO UPDATE
			SET c_rating = EXCLUDED.c_rating,
			    c_ranking = EXCLUDED.c_ranking,
			    c_replacement = EXCLUDED.c_replacement`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build category upsert: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert category %s: %w", category.Category, err)
	}
	return nil
}

// ProjectRatings loads every rating row of a project.
func (r *PostgresRepository) ProjectRatings(ctx context.Context, project string) ([]domain.Rating, error) {
	query, args, err := r.builder.
		Select("r_project", "r_namespace", "r_article", "r_quality", "r_quality_timestamp",
			"r_importance", "r_importance_timestamp", "r_score").
		From("ratings").
		Where(sq.Eq{"r_project": project}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build ratings query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query ratings: %w", err)
	}
	defer rows.Close()

	var ratings []domain.Rating
	for rows.Next() {
		var (
			rating     domain.Rating
			quality    sql.NullString
			qualityTS  sql.NullString
			importance sql.NullString
			importTS   sql.NullString
		)
		if err := rows.Scan(&rating.Project, &rating.Namespace, &rating.Article,
			&quality, &qualityTS, &importance, &importTS, &rating.Score); err != nil {
			return nil, fmt.Errorf("scan rating: %w", err)
		}

		rating.Quality = quality.String
		rating.Importance = importance.String
		if rating.QualityTimestamp, err = wikitime.Parse(qualityTS.String); err != nil {
			return nil, err
		}
		if rating.ImportanceTimestamp, err = wikitime.Parse(importTS.String); err != nil {
			return nil, err
		}
		ratings = append(ratings, rating)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ratings iteration: %w", err)
	}

	return ratings, nil
}

// SaveRating upserts the full rating row keyed by (project, namespace,
// article).
func (r *PostgresRepository) SaveRating(ctx context.Context, rating domain.Rating) error {
	query, args, err := r.builder.
		Insert("ratings").
		Columns("r_project", "r_namespace", "r_article", "r_quality", "r_quality_timestamp",
			"r_importance", "r_importance_timestamp", "r_score").
		Values(rating.Project, rating.Namespace, rating.Article,
			nullString(rating.Quality), nullString(wikitime.Stamp(rating.QualityTimestamp)),
			nullString(rating.Importance), nullString(wikitime.Stamp(rating.ImportanceTimestamp)),
			rating.Score).
		Suffix(`ON CONFLICT (r_project, r_namespace, r_article) DO UPDATE
			SET r_quality = EXCLUDED.r_quality,
			    r_quality_timestamp = EXCLUDED.r_quality_timestamp,
			    r_importance = EXCLUDED.r_importance,
			    r_importance_timestamp = EXCLUDED.r_importance_timestamp,
			    r_score = EXCLUDED.r_score`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build rating upsert: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert rating %s: %w", rating.Article, err)
	}
	return nil
}

// DeleteRating removes one rating row.
func (r *PostgresRepository) DeleteRating(ctx context.Context, project string, namespace int, article string) error {
	query, args, err := r.builder.
		Delete("ratings").
		Where(sq.Eq{"r_project": project, "r_namespace": namespace, "r_article": article}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build rating delete: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete rating %s: %w", article, err)
	}
	return nil
}

// DeleteUnassessed removes rows carrying no assessment in either dimension,
// counting the sentinel as no assessment.
func (r *PostgresRepository) DeleteUnassessed(ctx context.Context, project, sentinel string) (int64, error) {
	query, args, err := r.builder.
		Delete("ratings").
		Where(sq.And{
			sq.Eq{"r_project": project},
			sq.Or{sq.Eq{"r_quality": nil}, sq.Eq{"r_quality": sentinel}},
			sq.Or{sq.Eq{"r_importance": nil}, sq.Eq{"r_importance": sentinel}},
		}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build unassessed delete: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("delete unassessed: %w", err)
	}
	return result.RowsAffected()
}

// NormalizeClass replaces absent or unrecognized values of one kind with the
// sentinel.
func (r *PostgresRepository) NormalizeClass(ctx context.Context, project string, kind domain.Kind, recognized []string, sentinel string) (int64, error) {
	column := "r_quality"
	if kind == domain.KindImportance {
		column = "r_importance"
	}

	query, args, err := r.builder.
		Update("ratings").
		Set(column, sentinel).
		Where(sq.And{
			sq.Eq{"r_project": project},
			sq.Or{sq.Eq{column: nil}, sq.NotEq{column: recognized}},
		}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build %s normalize: %w", column, err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("normalize %s: %w", column, err)
	}
	return result.RowsAffected()
}

// RatingCounts recomputes the aggregate counts from the current rows.
func (r *PostgresRepository) RatingCounts(ctx context.Context, project string, uncounted []string) (domain.ProjectCounts, error) {
	var counts domain.ProjectCounts

	total := r.builder.
		Select("COUNT(*)").From("ratings").
		Where(sq.Eq{"r_project": project})
	if err := r.scanCount(ctx, total, &counts.Total); err != nil {
		return counts, fmt.Errorf("count ratings: %w", err)
	}

	quality := r.builder.
		Select("COUNT(*)").From("ratings").
		Where(sq.And{
			sq.Eq{"r_project": project},
			sq.NotEq{"r_quality": nil},
			sq.NotEq{"r_quality": uncounted},
		})
	if err := r.scanCount(ctx, quality, &counts.Quality); err != nil {
		return counts, fmt.Errorf("count quality ratings: %w", err)
	}

	importance := r.builder.
		Select("COUNT(*)").From("ratings").
		Where(sq.And{
			sq.Eq{"r_project": project},
			sq.NotEq{"r_importance": nil},
			sq.NotEq{"r_importance": uncounted},
		})
	if err := r.scanCount(ctx, importance, &counts.Importance); err != nil {
		return counts, fmt.Errorf("count importance ratings: %w", err)
	}

	return counts, nil
}

func (r *PostgresRepository) scanCount(ctx context.Context, b sq.SelectBuilder, dest *int) error {
	query, args, err := b.ToSql()
	if err != nil {
		return err
	}
	return r.db.QueryRowContext(ctx, query, args...).Scan(dest)
}

// nullString maps the empty string onto SQL NULL.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

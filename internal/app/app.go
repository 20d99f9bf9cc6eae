package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"AssessmentTracker/internal/assessment"
	"AssessmentTracker/internal/config"
	"AssessmentTracker/internal/domain"
	"AssessmentTracker/internal/infrastructure/mediawiki"
	"AssessmentTracker/internal/infrastructure/metadata"
	"AssessmentTracker/internal/infrastructure/queue"
	"AssessmentTracker/internal/infrastructure/scheduler"
	"AssessmentTracker/internal/infrastructure/storage"
	"AssessmentTracker/internal/infrastructure/wiki"
	"AssessmentTracker/internal/logging"
	"AssessmentTracker/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg        config.Config
	logger     *slog.Logger
	worker     *usecase.Worker
	dispatcher *usecase.Dispatcher
	scheduler  *scheduler.CronScheduler

	wikiDB    *sql.DB
	ratingsDB *sql.DB
	rdb       *redis.Client
}

// New builds a runnable application instance: two Postgres connections, the
// Redis queue, the reconciliation core, and the worker pool around it.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	wikiDB, err := sql.Open("postgres", cfg.Databases.WikiDSN)
	if err != nil {
		return nil, fmt.Errorf("open wiki database: %w", err)
	}

	ratingsDB, err := sql.Open("postgres", cfg.Databases.RatingsDSN)
	if err != nil {
		wikiDB.Close()
		return nil, fmt.Errorf("open ratings database: %w", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	reconciler := usecase.NewReconciler(usecase.ReconcilerDeps{
		Wiki:        wiki.NewStore(wikiDB),
		Ratings:     storage.NewPostgresRepository(ratingsDB),
		Resolver:    mediawiki.NewClient(cfg.API.Endpoint, cfg.API.Timeout),
		Metadata:    metadata.NewScraper(cfg.Metadata.BaseURL, cfg.Metadata.Timeout),
		Assessments: assessment.New(cfg.Assessments.Quality, cfg.Assessments.Importance, cfg.Assessments.NotAClass),
		Overrides:   projectOverrides(cfg.Projects),
		Logger:      baseLogger.With("component", "reconciler"),
	})

	updateQueue := queue.NewRedisQueue(rdb)

	worker := usecase.NewWorker(usecase.WorkerDeps{
		Queue:      updateQueue,
		Reconciler: reconciler,
		Workers:    cfg.Workers.Count,
		MaxRetries: cfg.Workers.MaxRetries,
		Logger:     baseLogger.With("component", "worker"),
	})

	dispatcher := usecase.NewDispatcher(updateQueue, reconciler, baseLogger.With("component", "dispatcher"))

	cronScheduler := scheduler.NewCronScheduler(
		cfg.Scheduler.CronExpression,
		cfg.Scheduler.Location(),
		baseLogger.With("component", "scheduler"),
	)

	return &Application{
		cfg:        cfg,
		logger:     baseLogger,
		worker:     worker,
		dispatcher: dispatcher,
		scheduler:  cronScheduler,
		wikiDB:     wikiDB,
		ratingsDB:  ratingsDB,
		rdb:        rdb,
	}, nil
}

// Run starts the cron trigger and the worker pool and blocks until ctx is
// done or the workers fail.
func (a *Application) Run(ctx context.Context) error {
	if err := a.scheduler.Start(ctx, func(at time.Time) {
		a.logger.Info("scheduled enqueue", "at", at)
		if err := a.dispatcher.EnqueueAll(ctx); err != nil {
			a.logger.Error("enqueue all failed", "error", err)
		}
	}); err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.worker.Run(ctx)
	})

	err := g.Wait()

	stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if stopErr := a.scheduler.Stop(stopCtx); stopErr != nil {
		a.logger.Error("scheduler stop failed", "error", stopErr)
	}
	a.close()

	return err
}

func (a *Application) close() {
	if err := a.rdb.Close(); err != nil {
		a.logger.Error("close redis", "error", err)
	}
	if err := a.ratingsDB.Close(); err != nil {
		a.logger.Error("close ratings database", "error", err)
	}
	if err := a.wikiDB.Close(); err != nil {
		a.logger.Error("close wiki database", "error", err)
	}
}

// projectOverrides converts the YAML override lists into the lookup shape
// the classifier consumes.
func projectOverrides(projects []config.ProjectConfig) map[string]usecase.ProjectOverrides {
	out := make(map[string]usecase.ProjectOverrides, len(projects))
	for _, p := range projects {
		po := usecase.ProjectOverrides{}
		if len(p.Quality) > 0 {
			po[domain.KindQuality] = overrideIndex(p.Quality)
		}
		if len(p.Importance) > 0 {
			po[domain.KindImportance] = overrideIndex(p.Importance)
		}
		out[p.Name] = po
	}
	return out
}

// overrideIndex keys the overrides by the category title Classify looks up.
func overrideIndex(list []config.OverrideConfig) assessment.Overrides {
	idx := make(assessment.Overrides, len(list))
	for _, o := range list {
		idx[o.Category] = o.Override
	}
	return idx
}

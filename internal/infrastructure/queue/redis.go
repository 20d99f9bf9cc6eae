// Package queue dispatches project update jobs through Redis lists and
// tracks per-project job status in Redis hashes.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"AssessmentTracker/internal/domain"
	"AssessmentTracker/internal/ports"
	"AssessmentTracker/pkg/wikitime"
)

const (
	updateQueueKey = "update"
	manualQueueKey = "manual-update"

	manualUpdateTTL  = time.Hour
	manualTimeLayout = "2006-01-02 15:04 MST"

	defaultPopTimeout = 5 * time.Second
)

// RedisQueue implements ports.UpdateQueue on a Redis connection. Manual jobs
// live on a separate list that is drained first.
type RedisQueue struct {
	rdb        *redis.Client
	popTimeout time.Duration
	now        func() time.Time
}

var _ ports.UpdateQueue = (*RedisQueue)(nil)

// NewRedisQueue wires a Redis client.
func NewRedisQueue(rdb *redis.Client) *RedisQueue {
	return &RedisQueue{rdb: rdb, popTimeout: defaultPopTimeout, now: time.Now}
}

func statusKey(project string) string {
	return "update_job_status:" + project
}

func manualKey(project string) string {
	return "manual_update_time:" + project
}

// Enqueue pushes the job and records it as the project's current job.
func (q *RedisQueue) Enqueue(ctx context.Context, job domain.UpdateJob) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}

	key := updateQueueKey
	if job.Manual {
		key = manualQueueKey
	}
	if err := q.rdb.LPush(ctx, key, payload).Err(); err != nil {
		return fmt.Errorf("push job for %s: %w", job.Project, err)
	}

	return q.SetJobStatus(ctx, job.Project, domain.JobStatus{
		JobID: job.ID,
		State: domain.JobStateQueued,
	})
}

// Dequeue blocks up to the poll interval for a job, manual queue first.
// It returns (nil, nil) when the interval elapses without work.
func (q *RedisQueue) Dequeue(ctx context.Context) (*domain.UpdateJob, error) {
	res, err := q.rdb.BRPop(ctx, q.popTimeout, manualQueueKey, updateQueueKey).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("pop job: %w", err)
	}

	var job domain.UpdateJob
	if err := json.Unmarshal([]byte(res[1]), &job); err != nil {
		return nil, fmt.Errorf("unmarshal job: %w", err)
	}
	return &job, nil
}

// Pending counts jobs waiting on both queues.
func (q *RedisQueue) Pending(ctx context.Context) (int64, error) {
	var total int64
	for _, key := range []string{updateQueueKey, manualQueueKey} {
		n, err := q.rdb.LLen(ctx, key).Result()
		if err != nil {
			return 0, fmt.Errorf("queue length %s: %w", key, err)
		}
		total += n
	}
	return total, nil
}

// SetJobStatus records the state of the project's current job.
func (q *RedisQueue) SetJobStatus(ctx context.Context, project string, status domain.JobStatus) error {
	fields := map[string]any{
		"job_id": status.JobID,
		"state":  status.State,
	}
	if !status.EndedAt.IsZero() {
		fields["ended_at"] = wikitime.Stamp(status.EndedAt)
	}
	if err := q.rdb.HSet(ctx, statusKey(project), fields).Err(); err != nil {
		return fmt.Errorf("set job status for %s: %w", project, err)
	}
	return nil
}

// JobStatus reads the project's current job status; (nil, nil) when no job
// was ever recorded.
func (q *RedisQueue) JobStatus(ctx context.Context, project string) (*domain.JobStatus, error) {
	fields, err := q.rdb.HGetAll(ctx, statusKey(project)).Result()
	if err != nil {
		return nil, fmt.Errorf("get job status for %s: %w", project, err)
	}
	if len(fields) == 0 || fields["job_id"] == "" {
		return nil, nil
	}

	status := &domain.JobStatus{JobID: fields["job_id"], State: fields["state"]}
	if status.EndedAt, err = wikitime.Parse(fields["ended_at"]); err != nil {
		return nil, err
	}
	return status, nil
}

// MarkManualUpdateTime records, with a one-hour expiry, the time before
// which the project must not be manually updated again.
func (q *RedisQueue) MarkManualUpdateTime(ctx context.Context, project string) (string, error) {
	ts := q.now().UTC().Add(manualUpdateTTL).Format(manualTimeLayout)
	if err := q.rdb.SetEx(ctx, manualKey(project), ts, manualUpdateTTL).Err(); err != nil {
		return "", fmt.Errorf("mark manual update for %s: %w", project, err)
	}
	return ts, nil
}

// NextUpdateTime reads the earliest allowed manual update time, empty when
// the project may be updated now.
func (q *RedisQueue) NextUpdateTime(ctx context.Context, project string) (string, error) {
	ts, err := q.rdb.Get(ctx, manualKey(project)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("next update time for %s: %w", project, err)
	}
	return ts, nil
}

// Package queue provides a Redis list-backed job queue with retry and dead-lettering.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/JaimeStill/veranstalter/pkg/lifecycle"
)

// Job is the envelope stored in Redis.
type Job struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	Attempt   int             `json:"attempt"`
	CreatedAt time.Time       `json:"created_at"`
}

// Decode unmarshals the job payload into v.
func (j *Job) Decode(v any) error {
	return json.Unmarshal(j.Payload, v)
}

// System enqueues and consumes jobs.
type System interface {
	// Start registers startup and shutdown hooks with the lifecycle coordinator.
	Start(lc *lifecycle.Coordinator) error
	// Ready reports whether the startup ping succeeded.
	Ready() bool
	// Enqueue appends a job of jobType carrying payload.
	Enqueue(ctx context.Context, jobType string, payload any) (*Job, error)
	// Dequeue blocks for up to the poll timeout. Returns nil, nil when no job arrived.
	Dequeue(ctx context.Context) (*Job, error)
	// Retry re-enqueues job with an incremented attempt, or moves it to the
	// dead-letter list once max retries are exhausted. Reports whether it was dead-lettered.
	Retry(ctx context.Context, job *Job) (bool, error)
}

type redisQueue struct {
	client      *redis.Client
	key         string
	deadLetter  string
	maxRetries  int
	pollTimeout time.Duration
	logger      *slog.Logger
	ready       atomic.Bool
}

// New creates a Redis-backed queue. No connection is made until Start or first use.
func New(cfg *Config, logger *slog.Logger) System {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	return &redisQueue{
		client:      client,
		key:         cfg.Key,
		deadLetter:  cfg.DeadLetter,
		maxRetries:  cfg.MaxRetries,
		pollTimeout: cfg.PollTimeoutDuration(),
		logger:      logger.With("system", "queue"),
	}
}

func (q *redisQueue) Start(lc *lifecycle.Coordinator) error {
	q.logger.Info("starting job queue", "key", q.key)

	lc.OnStartup(func() {
		ctx, cancel := context.WithTimeout(lc.Context(), 5*time.Second)
		defer cancel()

		if err := q.client.Ping(ctx).Err(); err != nil {
			q.logger.Error("redis ping failed", "error", err)
			return
		}

		q.ready.Store(true)
		q.logger.Info("redis connection established")
	})

	lc.OnShutdown(func() {
		<-lc.Context().Done()
		q.ready.Store(false)

		if err := q.client.Close(); err != nil {
			q.logger.Error("redis close failed", "error", err)
			return
		}

		q.logger.Info("redis connection closed")
	})

	return nil
}

func (q *redisQueue) Ready() bool {
	return q.ready.Load()
}

func (q *redisQueue) Enqueue(ctx context.Context, jobType string, payload any) (*Job, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	job := &Job{
		ID:        uuid.NewString(),
		Type:      jobType,
		Payload:   body,
		CreatedAt: time.Now().UTC(),
	}

	if err := q.push(ctx, q.key, job); err != nil {
		return nil, err
	}

	q.logger.Debug("job enqueued", "job_id", job.ID, "type", job.Type)
	return job, nil
}

func (q *redisQueue) Dequeue(ctx context.Context) (*Job, error) {
	result, err := q.client.BLPop(ctx, q.pollTimeout, q.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("blpop %s: %w", q.key, err)
	}
	if len(result) < 2 {
		return nil, nil
	}

	var job Job
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		q.logger.Warn("discarding malformed job", "raw", result[1], "error", err)
		return nil, nil
	}
	return &job, nil
}

func (q *redisQueue) Retry(ctx context.Context, job *Job) (bool, error) {
	job.Attempt++

	if job.Attempt > q.maxRetries {
		if err := q.push(ctx, q.deadLetter, job); err != nil {
			return false, err
		}
		q.logger.Warn("job moved to dead letter", "job_id", job.ID, "attempt", job.Attempt)
		return true, nil
	}

	if err := q.push(ctx, q.key, job); err != nil {
		return false, err
	}
	q.logger.Info("job retried", "job_id", job.ID, "attempt", job.Attempt)
	return false, nil
}

func (q *redisQueue) push(ctx context.Context, key string, job *Job) error {
	raw, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}
	if err := q.client.RPush(ctx, key, raw).Err(); err != nil {
		return fmt.Errorf("rpush %s: %w", key, err)
	}
	return nil
}

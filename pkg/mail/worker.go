package mail

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/JaimeStill/veranstalter/pkg/lifecycle"
	"github.com/JaimeStill/veranstalter/pkg/queue"
)

// JobType identifies mail jobs on the queue.
const JobType = "mail"

// Queued schedules messages on the job queue for delivery by a Worker.
type Queued struct {
	queue  queue.System
	logger *slog.Logger
}

// NewQueued creates a sender that enqueues instead of delivering.
func NewQueued(q queue.System, logger *slog.Logger) *Queued {
	return &Queued{queue: q, logger: logger.With("system", "mail")}
}

func (s *Queued) Send(ctx context.Context, msg Message) error {
	job, err := s.queue.Enqueue(ctx, JobType, msg)
	if err != nil {
		return fmt.Errorf("enqueue mail: %w", err)
	}
	s.logger.Debug("mail queued", "job_id", job.ID, "subject", msg.Subject)
	return nil
}

// Worker consumes mail jobs and delivers them with a Sender.
type Worker struct {
	queue    queue.System
	delivery Sender
	logger   *slog.Logger
	backoff  time.Duration
}

// NewWorker creates a worker delivering queued messages through delivery.
func NewWorker(q queue.System, delivery Sender, logger *slog.Logger) *Worker {
	return &Worker{
		queue:    q,
		delivery: delivery,
		logger:   logger.With("system", "mail-worker"),
		backoff:  time.Second,
	}
}

// Start runs the consume loop once startup completes and stops it on shutdown.
func (w *Worker) Start(lc *lifecycle.Coordinator) error {
	done := make(chan struct{})

	lc.OnStartup(func() {
		go func() {
			defer close(done)
			w.Run(lc.Context())
		}()
	})

	lc.OnShutdown(func() {
		<-lc.Context().Done()
		<-done
		w.logger.Info("mail worker stopped")
	})

	return nil
}

// Run processes jobs until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	w.logger.Info("mail worker started")

	for ctx.Err() == nil {
		job, err := w.queue.Dequeue(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				return
			}
			w.logger.Error("dequeue failed", "error", err)
			w.sleep(ctx)
			continue
		}
		if job == nil {
			continue
		}

		w.Process(ctx, job)
	}
}

// Process delivers a single job, retrying or dead-lettering it on failure.
func (w *Worker) Process(ctx context.Context, job *queue.Job) {
	if job.Type != JobType {
		w.logger.Warn("skipping job of unexpected type", "job_id", job.ID, "type", job.Type)
		return
	}

	var msg Message
	if err := job.Decode(&msg); err != nil {
		w.logger.Warn("dropping undecodable mail job", "job_id", job.ID, "error", err)
		return
	}

	err := w.delivery.Send(ctx, msg)
	if err == nil {
		return
	}

	w.logger.Warn("mail delivery failed", "job_id", job.ID, "attempt", job.Attempt, "error", err)

	if _, err := w.queue.Retry(ctx, job); err != nil {
		w.logger.Error("mail retry failed", "job_id", job.ID, "error", err)
	}
}

func (w *Worker) sleep(ctx context.Context) {
	t := time.NewTimer(w.backoff)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

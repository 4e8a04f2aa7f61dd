package jobs

import (
	"context"
	"encoding/json"
	"log"
	"math"
	"time"

	"areasense/internal/metrics"
)

// Queue is the part of Repo the worker drives.
type Queue interface {
	Claim(workerID string) (*Job, error)
	MarkDone(id uint64) error
	MarkFailed(id uint64, errMsg string) error
	RetryLater(id uint64, attempts int, runAt time.Time, errMsg string) error
}

type Rebuilder interface {
	Rebuild(ctx context.Context, trigger string) error
}

type Publisher interface {
	Publish(ctx context.Context, reason string) error
}

type Worker struct {
	ID       string
	Repo     Queue
	Resolver Rebuilder
	Notifier Publisher
	Poll     time.Duration
	now      func() time.Time
}

func (w *Worker) Run(ctx context.Context) {
	poll := w.Poll
	if poll <= 0 {
		poll = 800 * time.Millisecond
	}
	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			job, err := w.Repo.Claim(w.ID)
			if err != nil {
				log.Printf("ERROR: [JobWorker] claim: %v", err)
				continue
			}
			if job == nil {
				continue
			}
			w.handle(ctx, job)
		}
	}
}

func (w *Worker) handle(ctx context.Context, job *Job) {
	switch job.Type {
	case TypeAreaReindex:
		w.handleReindex(ctx, job)
	default:
		metrics.JobsProcessed.WithLabelValues(job.Type, "unknown").Inc()
		_ = w.Repo.MarkFailed(job.ID, "unknown job type")
	}
}

func (w *Worker) handleReindex(ctx context.Context, job *Job) {
	var p reindexPayload
	if err := json.Unmarshal(job.Payload, &p); err != nil {
		metrics.JobsProcessed.WithLabelValues(job.Type, "failed").Inc()
		_ = w.Repo.MarkFailed(job.ID, "bad payload")
		return
	}

	if err := w.Resolver.Rebuild(ctx, "job"); err != nil {
		log.Printf("WARN: [JobWorker] job %d rebuild: %v", job.ID, err)
		w.retry(job, err.Error())
		return
	}
	// other replicas rebuild from the broadcast
	if err := w.Notifier.Publish(ctx, p.Reason); err != nil {
		log.Printf("WARN: [JobWorker] job %d publish: %v", job.ID, err)
	}

	metrics.JobsProcessed.WithLabelValues(job.Type, "done").Inc()
	log.Printf("INFO: [JobWorker] job %d reindexed areas (reason=%s)", job.ID, p.Reason)
	_ = w.Repo.MarkDone(job.ID)
}

func (w *Worker) retry(job *Job, errMsg string) {
	attempts := job.Attempts + 1
	if attempts >= job.MaxAttempts {
		metrics.JobsProcessed.WithLabelValues(job.Type, "failed").Inc()
		_ = w.Repo.MarkFailed(job.ID, errMsg)
		return
	}
	metrics.JobsProcessed.WithLabelValues(job.Type, "retry").Inc()
	_ = w.Repo.RetryLater(job.ID, attempts, w.nextRun(attempts), errMsg)
}

// nextRun backs off exponentially, capped at ten minutes.
func (w *Worker) nextRun(attempts int) time.Time {
	now := time.Now
	if w.now != nil {
		now = w.now
	}
	sec := math.Min(math.Pow(2, float64(attempts)), 600)
	return now().Add(time.Duration(sec) * time.Second)
}

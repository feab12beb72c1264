package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"kecdesk/internal/notification"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueEmail   = "jobs:email"
	JobTypeEmail = "email"

	// MaxEmailAttempts bounds redelivery before a job goes to the DLQ.
	MaxEmailAttempts = 5
)

// Job is the generic envelope for all async tasks.
type Job struct {
	Type     string          `json:"type"`
	Payload  json.RawMessage `json:"payload"`
	Attempts int             `json:"attempts"`
}

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// Send queues msg for the email workers. It satisfies the notifier used by
// the daily run when EMAIL_DELIVERY=queue.
func (d *Dispatcher) Send(ctx context.Context, msg notification.Message) error {
	return d.EnqueueEmail(ctx, msg)
}

// EnqueueEmail pushes an email job to Redis.
func (d *Dispatcher) EnqueueEmail(ctx context.Context, msg notification.Message) error {
	return enqueue(ctx, d.rdb, QueueEmail, JobTypeEmail, msg, 0)
}

func encodeJob(jobType string, payload interface{}, attempts int) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Job{Type: jobType, Payload: data, Attempts: attempts})
}

func enqueue(ctx context.Context, rdb *redis.Client, queue, jobType string, payload interface{}, attempts int) error {
	encoded, err := encodeJob(jobType, payload, attempts)
	if err != nil {
		return err
	}
	if err := rdb.LPush(ctx, queue, encoded).Err(); err != nil {
		return fmt.Errorf("enqueue %s: %w", queue, err)
	}
	return nil
}

// queueClient is the slice of *redis.Client the pool uses.
type queueClient interface {
	BRPop(ctx context.Context, timeout time.Duration, keys ...string) *redis.StringSliceCmd
	LPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
}

// requeueGrace bounds the push that saves a delayed retry during shutdown.
const requeueGrace = 5 * time.Second

// WorkerPool consumes the email queue. Wait blocks until the workers and any
// pending retries have finished after ctx is cancelled.
type WorkerPool struct {
	rdb    queueClient
	emails *EmailWorker
	wg     sync.WaitGroup
}

// StartWorkerPool launches numWorkers goroutines consuming the email queue.
// Each goroutine blocks on BRPOP, so idle workers cost nothing.
func StartWorkerPool(ctx context.Context, rdb *redis.Client, numWorkers int, emails *EmailWorker) *WorkerPool {
	p := &WorkerPool{rdb: rdb, emails: emails}
	for i := 0; i < numWorkers; i++ {
		p.wg.Add(1)
		go func(id int) {
			defer p.wg.Done()
			p.runWorker(ctx, id)
		}(i)
	}
	log.Info().Msgf("worker pool started with %d workers", numWorkers)
	return p
}

// Wait is a no-op on a nil pool.
func (p *WorkerPool) Wait() {
	if p == nil {
		return
	}
	p.wg.Wait()
}

func (p *WorkerPool) runWorker(ctx context.Context, id int) {
	failures := 0
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d shutting down", id)
			return
		default:
			// waits up to 5s then loops to check ctx
			result, err := p.rdb.BRPop(ctx, 5*time.Second, QueueEmail).Result()
			if err != nil {
				if errors.Is(err, redis.Nil) || ctx.Err() != nil {
					continue
				}
				failures++
				wait := brpopBackoff(failures)
				log.Warn().Err(err).Int("worker", id).Dur("backoff", wait).Msg("email queue unreachable")
				sleepCtx(ctx, wait)
				continue
			}
			failures = 0
			if len(result) < 2 {
				continue
			}
			p.processJob(ctx, result[0], result[1])
		}
	}
}

// brpopBackoff doubles from 250ms per consecutive Redis failure, capped at 30s.
func brpopBackoff(failures int) time.Duration {
	const (
		base    = 250 * time.Millisecond
		ceiling = 30 * time.Second
	)
	if failures < 1 {
		return base
	}
	if failures > 8 {
		return ceiling
	}
	if d := base << (failures - 1); d < ceiling {
		return d
	}
	return ceiling
}

// sleepCtx reports false if ctx ended before d elapsed.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func (p *WorkerPool) processJob(ctx context.Context, queue, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		bury(ctx, p.rdb, newDeadLetter(queue, json.RawMessage(raw), ReasonUndecodable, err, 0, time.Now()))
		return
	}
	if job.Type != JobTypeEmail {
		bury(ctx, p.rdb, newDeadLetter(queue, job.Payload, ReasonUnknownJob, fmt.Errorf("job type %q", job.Type), job.Attempts, time.Now()))
		return
	}

	err := p.emails.Process(ctx, job.Payload)
	if err == nil {
		return
	}

	job.Attempts++
	next, retry := p.emails.retryPolicy(err, job.Attempts)
	if !retry {
		bury(ctx, p.rdb, newDeadLetter(queue, job.Payload, classifyFailure(err), err, job.Attempts, time.Now()))
		return
	}
	log.Warn().Err(err).Int("attempts", job.Attempts).Dur("backoff", next).Msg("email job failed, requeueing")

	// requeue after a pause without holding up this worker's loop
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		requeueAfter(ctx, p.rdb, queue, job, next)
	}()
}

// requeueAfter puts j back on queue once wait has passed. Shutdown cuts the
// wait short and the job is pushed back at once for the next process.
func requeueAfter(ctx context.Context, rdb queueClient, queue string, j Job, wait time.Duration) {
	pushCtx := ctx
	if !sleepCtx(ctx, wait) {
		var cancel context.CancelFunc
		pushCtx, cancel = context.WithTimeout(context.WithoutCancel(ctx), requeueGrace)
		defer cancel()
	}
	encoded, err := json.Marshal(j)
	if err == nil {
		err = rdb.LPush(pushCtx, queue, encoded).Err()
	}
	if err != nil {
		log.Error().Err(err).Msg("email job requeue failed")
		bury(pushCtx, rdb, newDeadLetter(queue, j.Payload, ReasonRequeueFailed, err, j.Attempts, time.Now()))
	}
}

// Package sender runs outbound Telegram calls on a bounded worker pool so
// handlers return before the API answers.
package sender

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/m3rciful/gamebot/core/logger"
	"github.com/m3rciful/gamebot/core/telegram/netutil"
)

var (
	ErrQueueClosed = errors.New("telegram sender: queue closed")
	ErrQueueFull   = errors.New("telegram sender: queue full")
	errNilRun      = errors.New("telegram sender: nil run function")
)

const component = "tg.sender"

// Options controls the outbound dispatcher. Zero values pick defaults.
type Options struct {
	QueueSize    int
	Workers      int
	MaxRetries   int
	RetryBackoff time.Duration
	// MaxDuration bounds one job including every retry and flood wait.
	MaxDuration time.Duration
}

func (o Options) normalize() Options {
	if o.QueueSize <= 0 {
		o.QueueSize = 256
	}
	if o.Workers <= 0 {
		o.Workers = 4
	}
	if o.MaxRetries < 0 {
		o.MaxRetries = 0
	}
	if o.RetryBackoff <= 0 {
		o.RetryBackoff = 2 * time.Second
	}
	if o.MaxDuration <= 0 {
		o.MaxDuration = 12 * time.Second
	}
	return o
}

type job struct {
	ctx      context.Context
	action   string
	endpoint string
	run      func() error
}

func (j job) attrs(extra ...slog.Attr) []slog.Attr {
	out := make([]slog.Attr, 0, 2+len(extra))
	out = append(out, slog.String("action", j.action))
	if j.endpoint != "" {
		out = append(out, slog.String("endpoint", j.endpoint))
	}
	return append(out, extra...)
}

// Dispatcher executes queued calls with retries on transient failures.
type Dispatcher struct {
	opts Options

	mu     sync.RWMutex
	closed bool
	jobs   chan job
	wg     sync.WaitGroup

	failed  atomic.Uint64
	retried atomic.Uint64
}

// NewDispatcher starts opts.Workers goroutines.
func NewDispatcher(opts Options) *Dispatcher {
	opts = opts.normalize()
	d := &Dispatcher{
		opts: opts,
		jobs: make(chan job, opts.QueueSize),
	}
	d.wg.Add(opts.Workers)
	for range opts.Workers {
		go func() {
			defer d.wg.Done()
			for j := range d.jobs {
				d.process(j)
			}
		}()
	}
	return d
}

// Enqueue schedules run without blocking. run may be called several times.
func (d *Dispatcher) Enqueue(ctx context.Context, action, endpoint string, run func() error) error {
	if run == nil {
		return errNilRun
	}
	if ctx == nil {
		ctx = context.Background()
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrQueueClosed
	}
	select {
	case d.jobs <- job{ctx: ctx, action: action, endpoint: endpoint, run: run}:
		return nil
	default:
		return ErrQueueFull
	}
}

// ErrorCount returns the number of jobs that failed for good.
func (d *Dispatcher) ErrorCount() uint64 { return d.failed.Load() }

// RetryCount returns the number of repeated attempts across all jobs.
func (d *Dispatcher) RetryCount() uint64 { return d.retried.Load() }

// Close drains the queue and waits for the workers. Later Enqueue calls fail
// with ErrQueueClosed.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.jobs)
	d.mu.Unlock()
	d.wg.Wait()
}

func (d *Dispatcher) process(j job) {
	ctx, cancel := context.WithTimeout(j.ctx, d.opts.MaxDuration)
	defer cancel()

	start := time.Now()
	attempts := d.opts.MaxRetries + 1
	logger.Debug(j.ctx, component, "send.start", j.attrs()...)

	var (
		err   error
		tried int
	)
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = ctx.Err(); err != nil {
			break
		}
		tried = attempt
		if err = j.run(); err == nil {
			if attempt > 1 {
				logger.Info(j.ctx, component, "send.retry",
					j.attrs(slog.String("status", "ok"), slog.Int("attempt", attempt))...)
			}
			logger.Debug(j.ctx, component, "send.done",
				j.attrs(slog.String("status", "ok"), slog.Duration("elapsed", time.Since(start)))...)
			return
		}
		if attempt == attempts || !netutil.Retryable(err) {
			break
		}

		delay, flood := netutil.RetryAfter(err)
		if !flood {
			delay = netutil.Backoff(d.opts.RetryBackoff, attempt)
		}
		if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) < delay {
			break
		}
		logger.Debug(j.ctx, component, "send.backoff",
			j.attrs(slog.Int("attempt", attempt), slog.Duration("delay", delay), slog.Bool("flood", flood))...)
		if waitErr := sleep(ctx, delay); waitErr != nil {
			err = waitErr
			break
		}
		d.retried.Add(1)
	}

	d.failed.Add(1)
	logger.Error(j.ctx, component, "send.done", j.attrs(
		slog.String("status", "fail"),
		slog.String("err", netutil.Redact(err)),
		slog.String("err_kind", string(netutil.Classify(err))),
		slog.Int("attempts", tried),
		slog.Duration("elapsed", time.Since(start)),
	)...)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

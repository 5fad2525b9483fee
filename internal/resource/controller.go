package resource

import (
	"context"
	"errors"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// ErrMemoryLimitExceeded is returned when memory limit would be exceeded.
var ErrMemoryLimitExceeded = errors.New("memory limit exceeded")

// Config holds resource limits.
type Config struct {
	// MaxConcurrency is the maximum number of concurrent store reads.
	// If 0, defaults to 1.
	MaxConcurrency int64

	// IOLimitBytesPerSec is the maximum read throughput.
	// If 0, unlimited.
	IOLimitBytesPerSec int64

	// MemoryLimitBytes bounds the raw bytes held in flight during a load.
	// If 0, no hard limit is enforced (only tracking).
	MemoryLimitBytes int64
}

// Controller throttles store reads by concurrency, throughput and
// in-flight memory.
type Controller struct {
	cfg Config

	sem *semaphore.Weighted

	memSem  *semaphore.Weighted // nil if unlimited
	memUsed atomic.Int64

	ioLimiter *rate.Limiter
}

// NewController creates a new resource controller.
func NewController(cfg Config) *Controller {
	if cfg.MaxConcurrency <= 0 {
		cfg.MaxConcurrency = 1
	}

	c := &Controller{
		cfg: cfg,
		sem: semaphore.NewWeighted(cfg.MaxConcurrency),
	}

	if cfg.MemoryLimitBytes > 0 {
		c.memSem = semaphore.NewWeighted(cfg.MemoryLimitBytes)
	}

	if cfg.IOLimitBytesPerSec > 0 {
		c.ioLimiter = rate.NewLimiter(rate.Limit(cfg.IOLimitBytesPerSec), int(cfg.IOLimitBytesPerSec))
	}

	return c
}

// Concurrency returns the configured number of concurrent slots.
func (c *Controller) Concurrency() int {
	if c == nil {
		return 1
	}
	return int(c.cfg.MaxConcurrency)
}

// Acquire reserves a worker slot, blocking while all slots are busy.
func (c *Controller) Acquire(ctx context.Context) error {
	if c == nil {
		return nil
	}
	return c.sem.Acquire(ctx, 1)
}

// TryAcquire reserves a worker slot without blocking.
func (c *Controller) TryAcquire() bool {
	if c == nil {
		return true
	}
	return c.sem.TryAcquire(1)
}

// Release releases a worker slot.
func (c *Controller) Release() {
	if c == nil {
		return
	}
	c.sem.Release(1)
}

// AcquireMemory attempts to reserve memory.
// Returns ErrMemoryLimitExceeded if limit would be exceeded.
// Non-blocking - callers control retry/backoff policy.
func (c *Controller) AcquireMemory(bytes int64) error {
	if c == nil || bytes <= 0 {
		return nil
	}

	if c.memSem != nil {
		if !c.memSem.TryAcquire(bytes) {
			return ErrMemoryLimitExceeded
		}
	}

	c.memUsed.Add(bytes)
	return nil
}

// ReleaseMemory releases reserved memory.
func (c *Controller) ReleaseMemory(bytes int64) {
	if c == nil || bytes <= 0 {
		return
	}

	if c.memSem != nil {
		c.memSem.Release(bytes)
	}
	c.memUsed.Add(-bytes)
}

// MemoryUsage returns the current memory usage in bytes.
func (c *Controller) MemoryUsage() int64 {
	if c == nil {
		return 0
	}
	return c.memUsed.Load()
}

// AcquireIO waits until the IO limit allows the specified number of bytes.
// Requests larger than one second of budget are split.
func (c *Controller) AcquireIO(ctx context.Context, bytes int) error {
	if c == nil || c.ioLimiter == nil {
		return nil
	}
	burst := c.ioLimiter.Burst()
	for bytes > 0 {
		n := min(bytes, burst)
		if err := c.ioLimiter.WaitN(ctx, n); err != nil {
			return err
		}
		bytes -= n
	}
	return nil
}

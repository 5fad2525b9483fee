// Package resource throttles store reads.
//
// A Controller combines three limits:
//
//   - Concurrency: a weighted semaphore bounding parallel reads
//   - IO: a token bucket bounding read throughput in bytes per second
//   - Memory: a fail-fast budget for raw bytes held in flight
//
// Usage:
//
//	rc := resource.NewController(resource.Config{
//	    MaxConcurrency:     8,
//	    IOLimitBytesPerSec: 64 << 20,
//	})
//
//	if err := rc.Acquire(ctx); err != nil {
//	    return err
//	}
//	defer rc.Release()
//
//	if err := rc.AcquireIO(ctx, size); err != nil {
//	    return err
//	}
//
// All Controller methods are safe for concurrent use. A nil Controller is
// valid and imposes no limits.
package resource

// Package resource governs the shared resources of pair counting.
//
// A Controller bounds three things:
//
//   - Workers: concurrent outer-row tasks across every engine sharing the
//     controller (weighted semaphore)
//   - Memory: bytes of buffered pair results held between dispatch and
//     consumption (hard limit, fail-fast or blocking)
//   - IO: throughput of row persistence (token bucket)
//
// Usage:
//
//	rc := resource.NewController(resource.Config{
//	    MaxWorkers:         8,
//	    MemoryLimitBytes:   256 << 20,
//	    IOLimitBytesPerSec: 64 << 20,
//	})
//
//	if err := rc.AcquireWorker(ctx); err != nil {
//	    return err
//	}
//	defer rc.ReleaseWorker()
//
// All methods are safe for concurrent use and treat a nil *Controller as
// "no limits".
package resource

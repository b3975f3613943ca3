package metrics

import (
	"context"
	"runtime"
	"time"
)

// CollectSystemMetrics samples memory, goroutine and GC statistics once.
// lastNumGC carries the GC cycle count seen by the previous call so only new
// pauses are observed; the updated count is returned.
func CollectSystemMetrics(lastNumGC uint32) uint32 {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	UpdateSystemMemoryUsage(ms.Alloc)
	UpdateSystemGoroutineCount(runtime.NumGoroutine())

	// PauseNs is a circular buffer of the most recent 256 pauses.
	newCycles := ms.NumGC - lastNumGC
	if newCycles > uint32(len(ms.PauseNs)) {
		newCycles = uint32(len(ms.PauseNs))
	}
	for i := uint32(0); i < newCycles; i++ {
		idx := (ms.NumGC - i + uint32(len(ms.PauseNs)) - 1) % uint32(len(ms.PauseNs))
		RecordSystemGCPauseTime(float64(ms.PauseNs[idx]) / float64(time.Millisecond))
	}
	return ms.NumGC
}

// RunSystemCollector samples system metrics every interval until ctx is done.
func RunSystemCollector(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return ErrInvalidInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	numGC := CollectSystemMetrics(0)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			numGC = CollectSystemMetrics(numGC)
		}
	}
}

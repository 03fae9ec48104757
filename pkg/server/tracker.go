package server

import "sync"

// UsageTracker counts successful downloads per file name. It is shared by all
// download workers and the stats broadcaster; every access is serialized
// through a read/write lock so counts are exact under concurrency.
type UsageTracker struct {
	mu     sync.RWMutex
	counts map[string]int64
}

// NewUsageTracker creates an empty tracker.
func NewUsageTracker() *UsageTracker {
	return &UsageTracker{counts: make(map[string]int64)}
}

// Record increments the download count for name and returns the new count. A
// name enters the tracker on its first recorded download, at count 1.
func (t *UsageTracker) Record(name string) int64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.counts[name]++
	return t.counts[name]
}

// Count returns the current count for name, zero if never downloaded.
func (t *UsageTracker) Count(name string) int64 {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.counts[name]
}

// Len returns the number of distinct files downloaded so far.
func (t *UsageTracker) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return len(t.counts)
}

// Seed loads persisted counts. Meant for startup, before serving begins;
// counts for names already present are overwritten.
func (t *UsageTracker) Seed(counts map[string]int64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for name, count := range counts {
		t.counts[name] = count
	}
}

// Top returns the most-downloaded file and its count, or ("", 0) when nothing
// has been downloaded. Ties resolve to the lexicographically smallest name so
// the result does not depend on map iteration order.
func (t *UsageTracker) Top() (string, int64) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var topName string
	var topCount int64
	for name, count := range t.counts {
		if count > topCount || (count == topCount && topCount > 0 && name < topName) {
			topName = name
			topCount = count
		}
	}
	return topName, topCount
}

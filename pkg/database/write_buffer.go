package database

import (
	"log"
	"sync"
	"time"
)

// WriteBuffer batches download-counter increments so a burst of downloads does
// not turn into a burst of single-row transactions. Increments are merged per
// file name and flushed on an interval and on Close.
type WriteBuffer struct {
	db            *DB
	flushInterval time.Duration

	mu      sync.Mutex
	pending map[string]int64 // file name -> buffered increment

	shutdown chan struct{}
	wg       sync.WaitGroup
}

// NewWriteBuffer creates a write buffer flushing at the given interval and
// starts its flush loop.
func NewWriteBuffer(db *DB, flushInterval time.Duration) *WriteBuffer {
	wb := &WriteBuffer{
		db:            db,
		flushInterval: flushInterval,
		pending:       make(map[string]int64),
		shutdown:      make(chan struct{}),
	}

	wb.wg.Add(1)
	go wb.flushLoop()

	return wb
}

// RecordDownload queues a counter increment for name.
func (wb *WriteBuffer) RecordDownload(name string) {
	wb.mu.Lock()
	wb.pending[name]++
	wb.mu.Unlock()
}

// Close flushes remaining increments and stops the flush loop.
func (wb *WriteBuffer) Close() {
	close(wb.shutdown)
	wb.wg.Wait()
}

// flushLoop periodically flushes buffered increments
func (wb *WriteBuffer) flushLoop() {
	defer wb.wg.Done()

	ticker := time.NewTicker(wb.flushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			wb.flush()
		case <-wb.shutdown:
			// Final flush on shutdown
			wb.flush()
			return
		}
	}
}

// flush writes all buffered increments to the database
func (wb *WriteBuffer) flush() {
	wb.mu.Lock()
	pending := wb.pending
	wb.pending = make(map[string]int64)
	wb.mu.Unlock()

	if len(pending) == 0 {
		return
	}

	for name, n := range pending {
		if err := wb.db.AddDownloads(name, n); err != nil {
			log.Printf("Failed to flush download count for %s: %v", name, err)
		}
	}
}

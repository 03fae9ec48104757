package server

import (
	"log"
	"time"

	"github.com/aeolun/fileserv/pkg/protocol"
)

// statsLoop periodically pushes a statistics message to every subscriber for
// the life of the server.
func (s *Server) statsLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.BroadcastInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.shutdown:
			return
		case <-ticker.C:
			s.broadcastStats()
		}
	}
}

// broadcastStats snapshots the current load and the most-downloaded file and
// writes one stats message to each subscriber, pruning any whose write fails.
// The two snapshots are taken back to back without a common lock; a download
// may start or finish between them.
func (s *Server) broadcastStats() {
	start := time.Now()

	active := s.gate.InUse()
	name, count := s.tracker.Top()
	if count == 0 {
		name = protocol.StatsNoFiles
	}

	msg := protocol.NewStatsMessage(active, name, count)
	sent, pruned := s.subscribers.Broadcast(msg)

	if pruned > 0 {
		log.Printf("Pruned %d dead statistics subscriber(s)", pruned)
	}
	if sent > 0 {
		debugLog.Printf("Sent stats to %d subscriber(s): active=%d top=%q count=%d",
			sent, msg.ActiveConnections, msg.TopFile, msg.TopCount)
	}

	if s.metrics != nil {
		s.metrics.RecordStatsSubscribers(s.subscribers.Count())
		if pruned > 0 {
			s.metrics.RecordSubscribersPruned(pruned)
		}
		s.metrics.RecordBroadcastDuration(time.Since(start).Seconds())
	}
}

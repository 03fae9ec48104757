package server

import (
	"net"
	"sync"

	"github.com/aeolun/fileserv/pkg/protocol"
)

// SubscriberRegistry tracks connections subscribed to statistics pushes.
// A connection enters the registry via the Statistics command and stays until
// a broadcast write to it fails, which is taken as the client disconnecting.
type SubscriberRegistry struct {
	mu     sync.RWMutex
	subs   map[uint64]net.Conn
	nextID uint64
}

// NewSubscriberRegistry creates an empty registry.
func NewSubscriberRegistry() *SubscriberRegistry {
	return &SubscriberRegistry{subs: make(map[uint64]net.Conn)}
}

// Add registers a subscriber connection and returns its id. Ids increase
// monotonically from 0.
func (r *SubscriberRegistry) Add(conn net.Conn) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.nextID
	r.nextID++
	r.subs[id] = conn
	return id
}

// Remove closes and drops the subscriber with the given id.
func (r *SubscriberRegistry) Remove(id uint64) {
	r.mu.Lock()
	conn, ok := r.subs[id]
	if ok {
		delete(r.subs, id)
	}
	r.mu.Unlock()

	if ok {
		conn.Close()
	}
}

// Count returns the number of live subscribers.
func (r *SubscriberRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.subs)
}

// Broadcast writes msg to every subscriber. Connections whose write fails are
// treated as disconnected and pruned after the scan; the failure does not
// affect the remaining subscribers. It returns how many messages were
// delivered and how many subscribers were pruned.
func (r *SubscriberRegistry) Broadcast(msg *protocol.StatsMessage) (sent, pruned int) {
	dead := make([]uint64, 0)

	r.mu.RLock()
	for id, conn := range r.subs {
		if err := msg.Encode(conn); err != nil {
			debugLog.Printf("Subscriber %d: stats write failed: %v", id, err)
			dead = append(dead, id)
			continue
		}
		sent++
	}
	r.mu.RUnlock()

	for _, id := range dead {
		r.Remove(id)
	}
	return sent, len(dead)
}

// CloseAll closes every subscriber connection and empties the registry.
func (r *SubscriberRegistry) CloseAll() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, conn := range r.subs {
		conn.Close()
	}
	r.subs = make(map[uint64]net.Conn)
}

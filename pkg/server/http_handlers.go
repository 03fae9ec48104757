package server

import (
	"encoding/json"
	"log"
	"net/http"
	"time"
)

// HealthHandler serves health check status
func (s *Server) HealthHandler(w http.ResponseWriter, r *http.Request) {
	health := map[string]interface{}{
		"status":             "healthy",
		"uptime_seconds":     int64(time.Since(s.startTime).Seconds()),
		"active_connections": s.gate.InUse(),
		"max_connections":    s.gate.Capacity(),
		"stats_subscribers":  s.subscribers.Count(),
		"files_tracked":      s.tracker.Len(),
		"persistence":        s.db != nil,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(health); err != nil {
		log.Printf("Error encoding health JSON: %v", err)
	}
}

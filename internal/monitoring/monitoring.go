// FilePath: internal/monitoring/monitoring.go
package monitoring

import (
	"sort"
	"strings"
	"sync"
	"time"

	nuts "github.com/vaudience/go-nuts"
)

// Service counts monitored events and logs each one
type Service struct {
	mu      sync.Mutex
	started time.Time
	counts  map[string]int64
}

// Snapshot is the metrics view served over HTTP
type Snapshot struct {
	UptimeSeconds int64            `json:"uptime_seconds"`
	Events        map[string]int64 `json:"events"`
}

// NewService creates a new monitoring service
func NewService() *Service {
	return &Service{
		started: time.Now(),
		counts:  make(map[string]int64),
	}
}

// RecordEvent records a monitored event with labels
func (s *Service) RecordEvent(eventName string, labels map[string]string) {
	s.mu.Lock()
	s.counts[eventName]++
	s.mu.Unlock()

	nuts.L.Debugf("[Monitoring] Event %s recorded with labels: %s", eventName, formatLabels(labels))
}

// Count returns how often an event has been recorded
func (s *Service) Count(eventName string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts[eventName]
}

// Snapshot copies the current counters
func (s *Service) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	events := make(map[string]int64, len(s.counts))
	for k, v := range s.counts {
		events[k] = v
	}
	return Snapshot{
		UptimeSeconds: int64(time.Since(s.started).Seconds()),
		Events:        events,
	}
}

func formatLabels(labels map[string]string) string {
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+labels[k])
	}
	return strings.Join(parts, " ")
}

// Package events provides the per-device bounded history log of
// ingested agent events.
package events

import (
	"sync"
	"time"

	"github.com/MRSt3Ss/rat2/internal/models"
)

const (
	// DefaultHighWatermark is the log length that triggers truncation.
	DefaultHighWatermark = 1000
	// DefaultLowWatermark is the number of entries retained by a trim.
	DefaultLowWatermark = 500
)

// Store keeps an append-only event log per device. Logs are trimmed in
// batches: once a log exceeds the high watermark it is cut back to the
// most recent low-watermark entries, so history queries right after a
// trim see a sharp gap rather than a sliding window.
type Store struct {
	mu   sync.RWMutex
	logs map[string][]models.Event
	high int
	low  int
}

// NewStore creates a Store with the default watermarks.
func NewStore() *Store {
	return NewStoreWithWatermarks(DefaultHighWatermark, DefaultLowWatermark)
}

// NewStoreWithWatermarks creates a Store with explicit trim thresholds.
func NewStoreWithWatermarks(high, low int) *Store {
	if high <= 0 {
		high = DefaultHighWatermark
	}
	if low <= 0 || low > high {
		low = high / 2
	}
	return &Store{
		logs: make(map[string][]models.Event),
		high: high,
		low:  low,
	}
}

// Append records an event for the device with the current timestamp and
// returns the stored event. The device's log never exceeds the high
// watermark past the duration of this call.
func (s *Store) Append(deviceID string, kind models.EventKind, payload map[string]any) models.Event {
	event := models.Event{
		Kind:      kind,
		Payload:   payload,
		Timestamp: time.Now(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	log := append(s.logs[deviceID], event)
	if len(log) > s.high {
		trimmed := make([]models.Event, s.low)
		copy(trimmed, log[len(log)-s.low:])
		log = trimmed
	}
	s.logs[deviceID] = log

	return event
}

// QueryLast returns up to limit events of the given kind for the device,
// newest first. An unknown device yields an empty result.
func (s *Store) QueryLast(deviceID string, kind models.EventKind, limit int) []models.Event {
	return s.QueryLastAny(deviceID, []models.EventKind{kind}, limit)
}

// QueryLastAny returns up to limit events whose kind is in kinds, newest
// first. Used for combined views such as shell plus file-manager results.
func (s *Store) QueryLastAny(deviceID string, kinds []models.EventKind, limit int) []models.Event {
	wanted := make(map[models.EventKind]struct{}, len(kinds))
	for _, k := range kinds {
		wanted[k] = struct{}{}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	log := s.logs[deviceID]
	results := make([]models.Event, 0, limit)
	for i := len(log) - 1; i >= 0 && len(results) < limit; i-- {
		if _, ok := wanted[log[i].Kind]; ok {
			results = append(results, log[i])
		}
	}
	return results
}

// Len reports the current log length for a device.
func (s *Store) Len(deviceID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.logs[deviceID])
}

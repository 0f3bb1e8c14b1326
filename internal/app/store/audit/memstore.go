package audit

import (
	"context"
	"sort"
	"sync"
)

// MemStore keeps audit events in memory, capped at max entries.
type MemStore struct {
	mu     sync.Mutex
	events []Event
	max    int
}

// NewMem returns a store that keeps the most recent max events.
func NewMem(max int) *MemStore {
	if max <= 0 {
		max = 1000
	}
	return &MemStore{max: max}
}

func (m *MemStore) Log(_ context.Context, event Event) error {
	stamp(&event)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	if over := len(m.events) - m.max; over > 0 {
		m.events = append([]Event(nil), m.events[over:]...)
	}
	return nil
}

func (m *MemStore) Query(_ context.Context, filter QueryFilter) ([]Event, error) {
	m.mu.Lock()
	var out []Event
	for _, e := range m.events {
		if filter.UserID != nil && (e.UserID == nil || *e.UserID != *filter.UserID) {
			continue
		}
		if filter.Category != "" && e.Category != filter.Category {
			continue
		}
		if filter.EventType != "" && e.EventType != filter.EventType {
			continue
		}
		if filter.District != "" && e.District != filter.District {
			continue
		}
		if filter.Since != nil && e.Timestamp.Before(*filter.Since) {
			continue
		}
		out = append(out, e)
	}
	m.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	if n := filter.limit(); int64(len(out)) > n {
		out = out[:n]
	}
	return out, nil
}

package notify

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nzali-fankem-vladimir/gestion-clinic-client/internal/store"
	"github.com/nzali-fankem-vladimir/gestion-clinic-client/pkg/logging"
)

const silentCap = 10

// SilentNotification is one coalesced entry on the low-visibility surface.
// Repeats of the same message bump Count instead of appending.
type SilentNotification struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Count     int       `json:"count"`
	Kind      Kind      `json:"type"`
}

// SilentSink absorbs noisy, non-critical signals without hiding that they
// occurred. The list persists across restarts.
type SilentSink struct {
	store  store.Store
	logger *logging.Logger
	now    func() time.Time

	mu        sync.Mutex
	list      []SilentNotification
	listeners []func([]SilentNotification)
}

// NewSilentSink restores any persisted entries from the store.
func NewSilentSink(ctx context.Context, st store.Store, logger *logging.Logger) *SilentSink {
	if logger == nil {
		logger = logging.Default()
	}
	s := &SilentSink{
		store:  st,
		logger: logger.Component("silent-sink"),
		now:    time.Now,
	}
	data, err := st.Get(ctx, store.KeySilentNotifications)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			s.logger.Error("failed to restore silent notifications", "error", err)
		}
		return s
	}
	if err := json.Unmarshal(data, &s.list); err != nil {
		s.logger.Error("discarding corrupt silent notifications", "error", err)
		s.list = nil
	}
	if len(s.list) > silentCap {
		s.list = s.list[:silentCap]
	}
	return s
}

// Subscribe registers a listener invoked with a snapshot after every
// mutation. Listeners must not mutate the slice.
func (s *SilentSink) Subscribe(fn func([]SilentNotification)) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

// Add records a non-critical message. A repeat of an existing message
// bumps its count and refreshes its timestamp in place.
func (s *SilentSink) Add(ctx context.Context, message string, kind Kind) {
	s.mu.Lock()
	found := false
	for i := range s.list {
		if s.list[i].Message == message {
			s.list[i].Count++
			s.list[i].Timestamp = s.now()
			found = true
			break
		}
	}
	if !found {
		entry := SilentNotification{
			ID:        uuid.NewString(),
			Message:   message,
			Timestamp: s.now(),
			Count:     1,
			Kind:      kind,
		}
		s.list = append([]SilentNotification{entry}, s.list...)
		if len(s.list) > silentCap {
			s.list = s.list[:silentCap]
		}
	}
	s.mu.Unlock()
	s.persistAndNotify(ctx)
}

// Remove drops one entry by id.
func (s *SilentSink) Remove(ctx context.Context, id string) {
	s.mu.Lock()
	kept := s.list[:0]
	for _, n := range s.list {
		if n.ID != id {
			kept = append(kept, n)
		}
	}
	s.list = kept
	s.mu.Unlock()
	s.persistAndNotify(ctx)
}

// ClearAll empties the surface.
func (s *SilentSink) ClearAll(ctx context.Context) {
	s.mu.Lock()
	s.list = nil
	s.mu.Unlock()
	s.persistAndNotify(ctx)
}

// Count is the badge total: the sum of every entry's count, not the
// number of distinct entries.
func (s *SilentSink) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, n := range s.list {
		total += n.Count
	}
	return total
}

// Notifications returns a snapshot of the current entries.
func (s *SilentSink) Notifications() []SilentNotification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]SilentNotification(nil), s.list...)
}

func (s *SilentSink) persistAndNotify(ctx context.Context) {
	s.mu.Lock()
	snapshot := append([]SilentNotification(nil), s.list...)
	listeners := append(([]func([]SilentNotification))(nil), s.listeners...)
	s.mu.Unlock()

	data, err := json.Marshal(snapshot)
	if err != nil {
		s.logger.Error("failed to encode silent notifications", "error", err)
	} else if err := s.store.Set(ctx, store.KeySilentNotifications, data); err != nil {
		s.logger.Error("failed to persist silent notifications", "error", err)
	}
	for _, fn := range listeners {
		fn(snapshot)
	}
}

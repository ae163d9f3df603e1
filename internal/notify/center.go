// Package notify holds the two user-facing notification surfaces of the
// clinic client (the primary bounded list and the silent low-visibility
// sink) together with the throttling policy that keeps noise off the
// primary one.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/nzali-fankem-vladimir/gestion-clinic-client/internal/observability/metrics"
	"github.com/nzali-fankem-vladimir/gestion-clinic-client/internal/push"
	"github.com/nzali-fankem-vladimir/gestion-clinic-client/internal/store"
	"github.com/nzali-fankem-vladimir/gestion-clinic-client/pkg/logging"
)

const (
	listCap    = 5
	persistCap = 20
)

// Notification is one entry on the primary surface.
type Notification struct {
	ID        string    `json:"id"`
	Kind      Kind      `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Read      bool      `json:"read"`
	RdvID     *int      `json:"rdvId,omitempty"`
	Category  string    `json:"objMessage,omitempty"`
}

// Center turns inbound system events and local calls into a bounded,
// human-readable notification list. Errors pass through the policy
// before they may become visible; non-critical ones land in the silent
// sink instead.
type Center struct {
	store   store.Store
	logger  *logging.Logger
	policy  *Policy
	silent  *SilentSink
	metrics *metrics.ClientMetrics

	dismissAfter time.Duration
	afterFunc    func(time.Duration, func())
	now          func() time.Time

	mu        sync.Mutex
	list      []Notification
	seq       uint64
	listeners []func([]Notification)
}

// NewCenter restores any persisted notifications and wires the policy and
// silent sink. dismissAfter <= 0 disables auto-dismiss of success/info
// notifications.
func NewCenter(ctx context.Context, st store.Store, policy *Policy, silent *SilentSink,
	dismissAfter time.Duration, logger *logging.Logger, m *metrics.ClientMetrics) *Center {
	if logger == nil {
		logger = logging.Default()
	}
	c := &Center{
		store:        st,
		logger:       logger.Component("notify"),
		policy:       policy,
		silent:       silent,
		metrics:      m,
		dismissAfter: dismissAfter,
		afterFunc:    func(d time.Duration, fn func()) { time.AfterFunc(d, fn) },
		now:          time.Now,
	}
	c.restore(ctx)
	return c
}

func (c *Center) restore(ctx context.Context) {
	data, err := c.store.Get(ctx, store.KeyNotifications)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			c.logger.Error("failed to restore notifications", "error", err)
		}
		return
	}
	if err := json.Unmarshal(data, &c.list); err != nil {
		c.logger.Error("discarding corrupt notifications", "error", err)
		c.list = nil
		return
	}
	if len(c.list) > listCap {
		c.list = c.list[:listCap]
	}
}

// Subscribe registers a listener invoked with a snapshot after every
// mutation.
func (c *Center) Subscribe(fn func([]Notification)) {
	c.mu.Lock()
	c.listeners = append(c.listeners, fn)
	c.mu.Unlock()
}

// Success surfaces a success notification.
func (c *Center) Success(ctx context.Context, title, message string) {
	c.Add(ctx, KindSuccess, title, message, nil, "")
}

// Error surfaces an error notification, subject to the policy.
func (c *Center) Error(ctx context.Context, title, message string) {
	c.Add(ctx, KindError, title, message, nil, "")
}

// Warning surfaces a warning notification.
func (c *Center) Warning(ctx context.Context, title, message string) {
	c.Add(ctx, KindWarning, title, message, nil, "")
}

// Info surfaces an info notification.
func (c *Center) Info(ctx context.Context, title, message string) {
	c.Add(ctx, KindInfo, title, message, nil, "")
}

// Add constructs a record and inserts it at the head of the list. Error
// kinds consult the policy first: non-critical messages go to the silent
// sink, throttled repeats are dropped entirely. An existing record with
// the same message is replaced rather than duplicated, and the list never
// exceeds its cap.
func (c *Center) Add(ctx context.Context, kind Kind, title, message string, rdvID *int, category string) {
	if kind == KindError {
		if c.policy.IsNonCritical(message) {
			c.metrics.ObserveSuppressed("silenced")
			c.logger.Info("non-critical error redirected to silent sink", "message", message)
			c.silent.Add(ctx, message, KindWarning)
			return
		}
		if !c.policy.AllowError(message) {
			c.metrics.ObserveSuppressed("throttled")
			c.logger.Debug("error throttled", "message", message)
			return
		}
	}

	c.mu.Lock()
	c.seq++
	n := Notification{
		ID:        strconv.FormatInt(c.now().UnixNano(), 10) + "-" + strconv.FormatUint(c.seq, 10),
		Kind:      kind,
		Title:     title,
		Message:   message,
		Timestamp: c.now(),
		RdvID:     rdvID,
		Category:  category,
	}

	// Dedup by replace: drop any prior record carrying the same message.
	kept := c.list[:0]
	for _, existing := range c.list {
		if existing.Message != message {
			kept = append(kept, existing)
		}
	}
	c.list = append([]Notification{n}, kept...)
	if len(c.list) > listCap {
		c.list = c.list[:listCap]
	}
	c.mu.Unlock()

	c.persistAndNotify(ctx)

	if c.dismissAfter > 0 && (kind == KindSuccess || kind == KindInfo) {
		id := n.ID
		c.afterFunc(c.dismissAfter, func() { c.Remove(context.Background(), id) })
	}
}

// HandleInbound is the push.Handler for system notification events.
func (c *Center) HandleInbound(body json.RawMessage) {
	var event push.SystemNotification
	if err := json.Unmarshal(body, &event); err != nil {
		c.logger.Error("dropping malformed notification event", "error", err)
		return
	}
	kind, title := Classify(event.ObjMessage)
	c.Add(context.Background(), kind, title, event.Message, event.RdvID, event.ObjMessage)
}

// Remove drops one record by id.
func (c *Center) Remove(ctx context.Context, id string) {
	c.mu.Lock()
	kept := c.list[:0]
	for _, n := range c.list {
		if n.ID != id {
			kept = append(kept, n)
		}
	}
	changed := len(kept) != len(c.list)
	c.list = kept
	c.mu.Unlock()
	if changed {
		c.persistAndNotify(ctx)
	}
}

// MarkAsRead flags one record as read.
func (c *Center) MarkAsRead(ctx context.Context, id string) {
	c.mu.Lock()
	for i := range c.list {
		if c.list[i].ID == id {
			c.list[i].Read = true
		}
	}
	c.mu.Unlock()
	c.persistAndNotify(ctx)
}

// MarkAllAsRead flags every record as read.
func (c *Center) MarkAllAsRead(ctx context.Context) {
	c.mu.Lock()
	for i := range c.list {
		c.list[i].Read = true
	}
	c.mu.Unlock()
	c.persistAndNotify(ctx)
}

// ClearAll empties the surface.
func (c *Center) ClearAll(ctx context.Context) {
	c.mu.Lock()
	c.list = nil
	c.mu.Unlock()
	c.persistAndNotify(ctx)
}

// FilterByCategory returns records whose backend category matches
// exactly, or every record when category is empty.
func (c *Center) FilterByCategory(category string) []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	if category == "" {
		return append([]Notification(nil), c.list...)
	}
	var out []Notification
	for _, n := range c.list {
		if n.Category == category {
			out = append(out, n)
		}
	}
	return out
}

// UnreadCount is the number of unread records.
func (c *Center) UnreadCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	count := 0
	for _, n := range c.list {
		if !n.Read {
			count++
		}
	}
	return count
}

// Notifications returns a snapshot of the current list.
func (c *Center) Notifications() []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Notification(nil), c.list...)
}

func (c *Center) persistAndNotify(ctx context.Context) {
	c.mu.Lock()
	snapshot := append([]Notification(nil), c.list...)
	listeners := append(([]func([]Notification))(nil), c.listeners...)
	c.mu.Unlock()

	persisted := snapshot
	if len(persisted) > persistCap {
		persisted = persisted[:persistCap]
	}
	data, err := json.Marshal(persisted)
	if err != nil {
		c.logger.Error("failed to encode notifications", "error", err)
	} else if err := c.store.Set(ctx, store.KeyNotifications, data); err != nil {
		c.logger.Error("failed to persist notifications", "error", err)
	}
	for _, fn := range listeners {
		fn(snapshot)
	}
}

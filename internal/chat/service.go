// Package chat keeps one coherent, ordered conversation view per
// counterpart, reconciling optimistic local sends with server-confirmed
// state and server-held read status.
package chat

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/nzali-fankem-vladimir/gestion-clinic-client/internal/clinicapi"
	"github.com/nzali-fankem-vladimir/gestion-clinic-client/internal/push"
	"github.com/nzali-fankem-vladimir/gestion-clinic-client/internal/session"
	"github.com/nzali-fankem-vladimir/gestion-clinic-client/pkg/logging"
)

// API is the REST surface the chat channel pulls from.
type API interface {
	GetConversation(ctx context.Context, otherUserID int) ([]clinicapi.ChatMessage, error)
	GetUnreadCounts(ctx context.Context) (map[int]int, error)
	MarkConversationRead(ctx context.Context, senderID int) error
}

// Transport is the push surface the chat channel publishes on.
type Transport interface {
	IsConnected() bool
	Connect(ctx context.Context) error
	Publish(destination string, payload any) error
	Subscribe(destination string, h push.Handler)
}

// Service is the chat channel. The message list always holds exactly one
// conversation, sorted ascending by timestamp; the unread map always
// mirrors the server, never local bookkeeping.
type Service struct {
	api       API
	transport Transport
	session   *session.Session
	logger    *logging.Logger
	now       func() time.Time

	mu              sync.Mutex
	messages        []Message
	unread          map[int]int
	msgListeners    []func([]Message)
	unreadListeners []func(map[int]int)
}

// NewService wires the channel to its REST and push collaborators and
// subscribes to the per-user chat queue.
func NewService(api API, transport Transport, sess *session.Session, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	s := &Service{
		api:       api,
		transport: transport,
		session:   sess,
		logger:    logger.Component("chat"),
		now:       time.Now,
		unread:    make(map[int]int),
	}
	transport.Subscribe(push.QueueChat, s.HandleInbound)
	return s
}

// SubscribeMessages registers a listener for conversation snapshots.
func (s *Service) SubscribeMessages(fn func([]Message)) {
	s.mu.Lock()
	s.msgListeners = append(s.msgListeners, fn)
	s.mu.Unlock()
}

// SubscribeUnreadCounts registers a listener for unread-count snapshots.
func (s *Service) SubscribeUnreadCounts(fn func(map[int]int)) {
	s.mu.Lock()
	s.unreadListeners = append(s.unreadListeners, fn)
	s.mu.Unlock()
}

// LoadConversation replaces the whole in-memory list with the REST-fetched
// history for one counterpart, sorted ascending by timestamp. A failed
// fetch leaves an empty conversation and logs; no error crosses the
// channel boundary.
func (s *Service) LoadConversation(ctx context.Context, counterpartID int) {
	history, err := s.api.GetConversation(ctx, counterpartID)
	if err != nil {
		s.logger.Error("failed to load conversation", "counterpart", counterpartID, "error", err)
		s.replaceMessages(nil)
		return
	}
	messages := make([]Message, 0, len(history))
	for _, m := range history {
		messages = append(messages, fromAPI(m))
	}
	s.replaceMessages(messages)
	s.RefreshUnreadCounts(ctx)
}

// SendMessage appends an optimistic pending copy and publishes it on the
// transport. Preconditions (non-empty content, resolved ids) are the
// caller's job; violations no-op with a log line. When the transport is
// down the message stays pending and a reconnect is attempted; it is not
// queued for replay.
func (s *Service) SendMessage(ctx context.Context, senderID, receiverID int, content string) {
	if content == "" || senderID == 0 || receiverID == 0 {
		s.logger.Warn("ignoring invalid send", "sender", senderID, "receiver", receiverID)
		return
	}

	senderName := ""
	if user, ok := s.session.CurrentUser(); ok {
		senderName = user.Name
	}
	optimistic := Message{
		SenderID:   senderID,
		SenderName: senderName,
		ReceiverID: receiverID,
		Content:    content,
		Timestamp:  s.now(),
		Pending:    true,
	}

	s.mu.Lock()
	s.messages = append(s.messages, optimistic)
	sortByTimestamp(s.messages)
	s.mu.Unlock()
	s.notifyMessages()

	if s.transport.IsConnected() {
		req := push.SendChatRequest{SenderID: senderID, ReceiverID: receiverID, Content: content}
		if err := s.transport.Publish(push.DestSendChatMessage, req); err != nil {
			s.logger.Error("publish failed, message stays pending", "error", err)
		}
	} else {
		s.logger.Warn("transport down, message stays pending", "status", "not connected")
		if err := s.transport.Connect(ctx); err != nil {
			s.logger.Error("reconnect attempt failed", "error", err)
		}
	}

	s.RefreshUnreadCounts(ctx)
}

// MarkAsRead marks every message from the counterpart as read, push-first
// with a REST fallback, and always refreshes the unread counts after.
func (s *Service) MarkAsRead(ctx context.Context, counterpartID int) {
	if s.transport.IsConnected() {
		if err := s.transport.Publish(push.DestMarkChatRead, push.MarkReadRequest{SenderID: counterpartID}); err != nil {
			s.logger.Error("mark-as-read publish failed", "error", err)
		}
	} else {
		if err := s.api.MarkConversationRead(ctx, counterpartID); err != nil {
			s.logger.Error("mark-as-read fallback failed", "counterpart", counterpartID, "error", err)
		}
	}
	s.RefreshUnreadCounts(ctx)
}

// HandleInbound is the push.Handler for the chat queue. Echoes of an
// optimistic append confirm the local copy instead of duplicating it;
// every genuine append triggers an unread refresh.
func (s *Service) HandleInbound(body json.RawMessage) {
	var event push.ChatMessage
	if err := json.Unmarshal(body, &event); err != nil {
		s.logger.Error("dropping malformed chat event", "error", err)
		return
	}
	incoming := fromPush(event)

	s.mu.Lock()
	duplicate := false
	for i := range s.messages {
		if s.messages[i].isDuplicateOf(incoming) {
			duplicate = true
			if s.messages[i].Pending {
				s.messages[i].Pending = false
				s.messages[i].ID = incoming.ID
				s.messages[i].IsRead = incoming.IsRead
			}
			break
		}
	}
	if !duplicate {
		s.messages = append(s.messages, incoming)
		sortByTimestamp(s.messages)
	}
	s.mu.Unlock()

	s.notifyMessages()
	s.RefreshUnreadCounts(context.Background())
}

// RefreshUnreadCounts pulls the per-counterpart unread counts and
// replaces the local map wholesale; the server is the source of truth
// because read-state can change from other sessions.
func (s *Service) RefreshUnreadCounts(ctx context.Context) {
	counts, err := s.api.GetUnreadCounts(ctx)
	if err != nil {
		s.logger.Warn("failed to refresh unread counts", "error", err)
		return
	}
	s.mu.Lock()
	s.unread = counts
	s.mu.Unlock()
	s.notifyUnread()
}

// RunUnreadRefresher refreshes the unread counts on a fixed cadence until
// the context is cancelled.
func (s *Service) RunUnreadRefresher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.RefreshUnreadCounts(ctx)
		}
	}
}

// Messages returns a snapshot of the loaded conversation.
func (s *Service) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Message(nil), s.messages...)
}

// UnreadCounts returns a snapshot of the per-counterpart unread counts.
func (s *Service) UnreadCounts() map[int]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[int]int, len(s.unread))
	for id, count := range s.unread {
		out[id] = count
	}
	return out
}

func (s *Service) replaceMessages(messages []Message) {
	sortByTimestamp(messages)
	s.mu.Lock()
	s.messages = messages
	s.mu.Unlock()
	s.notifyMessages()
}

func (s *Service) notifyMessages() {
	s.mu.Lock()
	snapshot := append([]Message(nil), s.messages...)
	listeners := append(([]func([]Message))(nil), s.msgListeners...)
	s.mu.Unlock()
	for _, fn := range listeners {
		fn(snapshot)
	}
}

func (s *Service) notifyUnread() {
	s.mu.Lock()
	snapshot := make(map[int]int, len(s.unread))
	for id, count := range s.unread {
		snapshot[id] = count
	}
	listeners := append(([]func(map[int]int))(nil), s.unreadListeners...)
	s.mu.Unlock()
	for _, fn := range listeners {
		fn(snapshot)
	}
}

func sortByTimestamp(messages []Message) {
	sort.SliceStable(messages, func(i, j int) bool {
		return messages[i].Timestamp.Before(messages[j].Timestamp)
	})
}

package chat

import (
	"time"

	"github.com/nzali-fankem-vladimir/gestion-clinic-client/internal/clinicapi"
	"github.com/nzali-fankem-vladimir/gestion-clinic-client/internal/push"
)

// Message is one entry in a conversation. Pending marks an optimistic
// local copy that has not been confirmed by a server echo yet.
type Message struct {
	ID           *int      `json:"id,omitempty"`
	SenderID     int       `json:"senderId"`
	SenderName   string    `json:"senderName"`
	ReceiverID   int       `json:"receiverId"`
	ReceiverName string    `json:"receiverName"`
	Content      string    `json:"content"`
	Timestamp    time.Time `json:"timestamp"`
	IsRead       bool      `json:"isRead"`
	Pending      bool      `json:"pending,omitempty"`
}

// duplicateWindow bounds how far apart two timestamps may be for a
// message to count as an echo of one already present.
const duplicateWindow = time.Second

// isDuplicateOf reports whether other is the same message seen again,
// e.g. the transport echoing back an optimistic local append.
func (m Message) isDuplicateOf(other Message) bool {
	if m.SenderID != other.SenderID || m.ReceiverID != other.ReceiverID || m.Content != other.Content {
		return false
	}
	delta := m.Timestamp.Sub(other.Timestamp)
	if delta < 0 {
		delta = -delta
	}
	return delta < duplicateWindow
}

func fromAPI(m clinicapi.ChatMessage) Message {
	return Message{
		ID:           m.ID,
		SenderID:     m.SenderID,
		SenderName:   m.SenderName,
		ReceiverID:   m.ReceiverID,
		ReceiverName: m.ReceiverName,
		Content:      m.Content,
		Timestamp:    m.Timestamp,
		IsRead:       m.IsRead,
	}
}

func fromPush(m push.ChatMessage) Message {
	return Message{
		ID:           m.ID,
		SenderID:     m.SenderID,
		SenderName:   m.SenderName,
		ReceiverID:   m.ReceiverID,
		ReceiverName: m.ReceiverName,
		Content:      m.Content,
		Timestamp:    m.Timestamp,
		IsRead:       m.IsRead,
	}
}

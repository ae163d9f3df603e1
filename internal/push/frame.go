package push

import (
	"encoding/json"
	"time"
)

// FrameType identifies a frame on the push connection.
type FrameType string

const (
	// Client -> Server
	TypeAuth      FrameType = "auth"
	TypeSubscribe FrameType = "subscribe"
	TypeSend      FrameType = "send"

	// Server -> Client
	TypeMessage FrameType = "message"
	TypeError   FrameType = "error"
)

// Frame wraps every message on the wire with a type and the logical
// destination it belongs to.
type Frame struct {
	Type        FrameType       `json:"type"`
	Destination string          `json:"destination,omitempty"`
	Body        json.RawMessage `json:"body,omitempty"`
}

// AuthFrame carries the bearer token during the handshake.
type AuthFrame struct {
	Token string `json:"token"`
}

// Logical destinations consumed and published by the client. Private
// queues are resolved per-user by the server after authentication.
const (
	TopicPublicNotifications  = "/topic/publicNotifications"
	QueuePrivateNotifications = "/user/queue/privateNotifications"
	QueueChat                 = "/user/queue/chat"

	DestSendChatMessage = "/app/chat.sendMessage"
	DestMarkChatRead    = "/app/chat.markAsRead"
)

// SystemNotification is the inbound payload on the notification topics.
type SystemNotification struct {
	ObjMessage    string `json:"objMessage"`
	Message       string `json:"message"`
	RdvID         *int   `json:"rdvId,omitempty"`
	Timestamp     string `json:"timestamp"`
	RecipientType string `json:"recipientType"`
	RecipientID   int    `json:"recipientId"`
}

// ChatMessage is the inbound payload on the chat queue.
type ChatMessage struct {
	ID           *int      `json:"id,omitempty"`
	SenderID     int       `json:"senderId"`
	SenderName   string    `json:"senderName"`
	ReceiverID   int       `json:"receiverId"`
	ReceiverName string    `json:"receiverName"`
	Content      string    `json:"content"`
	Timestamp    time.Time `json:"timestamp"`
	IsRead       bool      `json:"isRead"`
}

// SendChatRequest is published on DestSendChatMessage.
type SendChatRequest struct {
	SenderID   int    `json:"senderId"`
	ReceiverID int    `json:"receiverId"`
	Content    string `json:"content"`
}

// MarkReadRequest is published on DestMarkChatRead.
type MarkReadRequest struct {
	SenderID int `json:"senderId"`
}

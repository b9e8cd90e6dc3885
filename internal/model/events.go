package model

import (
	"bytes"
	"strconv"
	"time"
)

// Frame types carried over the websocket, both directions.
const (
	FrameMessage          = "message"
	FrameReadReceipt      = "read_receipt"
	FrameDeliveredReceipt = "delivered_receipt"
	FrameTyping           = "typing"
	FramePing             = "ping"
	FramePong             = "pong"
	FrameStatusUpdate     = "status_update"
	FrameUserStatus       = "user_status"
	FrameError            = "error"
)

const (
	PresenceOnline  = "online"
	PresenceOffline = "offline"
)

// InboundFrame is a single client frame. Type is the discriminator; a frame
// without one that names a receiver is treated as a plain message.
type InboundFrame struct {
	Type       string    `json:"type"`
	ReceiverID UserID    `json:"receiver_id"`
	Content    string    `json:"content"`
	MediaURL   string    `json:"media_url"`
	MediaType  string    `json:"media_type"`
	MessageID  MessageID `json:"message_id"`
	SenderID   UserID    `json:"sender_id"`
}

// IsMessage reports whether the frame should be processed as a plain chat
// message rather than a control frame.
func (f *InboundFrame) IsMessage() bool {
	switch f.Type {
	case FrameReadReceipt, FrameDeliveredReceipt, FrameTyping, FramePing:
		return false
	}
	return f.ReceiverID != 0
}

// MessageEvent is pushed to the receiver and echoed to the sender after a
// message persists.
type MessageEvent struct {
	Type       string         `json:"type"`
	ID         MessageID      `json:"id"`
	Content    string         `json:"content"`
	MediaURL   string         `json:"media_url,omitempty"`
	MediaType  string         `json:"media_type"`
	SenderID   UserID         `json:"sender_id"`
	ReceiverID UserID         `json:"receiver_id"`
	Timestamp  time.Time      `json:"timestamp"`
	Status     DeliveryStatus `json:"status"`
}

// StatusUpdateEvent tells the original sender a message advanced.
type StatusUpdateEvent struct {
	Type      string         `json:"type"`
	MessageID MessageID      `json:"message_id"`
	Status    DeliveryStatus `json:"status"`
}

// UserStatusEvent is the ephemeral presence notification; never persisted.
type UserStatusEvent struct {
	Type   string `json:"type"`
	UserID UserID `json:"user_id"`
	Status string `json:"status"`
}

type TypingEvent struct {
	Type     string `json:"type"`
	SenderID UserID `json:"sender_id"`
}

type PongEvent struct {
	Type string `json:"type"`
}

// ErrorEvent reports a failed action back to the originating connection only.
type ErrorEvent struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

func NewMessageEvent(m *Message) MessageEvent {
	return MessageEvent{
		Type:       FrameMessage,
		ID:         m.ID,
		Content:    m.Content,
		MediaURL:   m.MediaURL,
		MediaType:  m.MediaType,
		SenderID:   m.SenderID,
		ReceiverID: m.ReceiverID,
		Timestamp:  m.Timestamp,
		Status:     m.Status,
	}
}

func NewStatusUpdateEvent(id MessageID, status DeliveryStatus) StatusUpdateEvent {
	return StatusUpdateEvent{Type: FrameStatusUpdate, MessageID: id, Status: status}
}

func NewUserStatusEvent(user UserID, status string) UserStatusEvent {
	return UserStatusEvent{Type: FrameUserStatus, UserID: user, Status: status}
}

// Browser clients are sloppy about numeric fields in hand-built frames, so
// IDs accept both 42 and "42" on the wire.

func (id *UserID) UnmarshalJSON(data []byte) error {
	n, err := parseFlexibleID(data)
	if err != nil {
		return err
	}
	*id = UserID(n)
	return nil
}

func (id *MessageID) UnmarshalJSON(data []byte) error {
	n, err := parseFlexibleID(data)
	if err != nil {
		return err
	}
	*id = MessageID(n)
	return nil
}

func parseFlexibleID(data []byte) (int64, error) {
	data = bytes.Trim(data, `"`)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return 0, nil
	}
	return strconv.ParseInt(string(data), 10, 64)
}

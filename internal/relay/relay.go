package relay

import (
	"encoding/json"
	"fmt"

	"github.com/labstack/gommon/log"

	"github.com/Neeraj-0217/real-time-chat-app/internal/model"
	"github.com/Neeraj-0217/real-time-chat-app/internal/registry"
)

// Connection is one bidirectional client channel. registry.Conn satisfies it;
// tests substitute scripted fakes.
type Connection interface {
	SendJSON(v any) error
	ReadMessage() ([]byte, error)
	Close() error
}

type UserStore interface {
	SetOnline(id model.UserID, online bool) error
}

type MessageStore interface {
	CreateMessage(params *model.CreateMessageParams) (*model.Message, error)
	MessageByID(id model.MessageID) (*model.Message, error)
	UpdateMessageStatus(id model.MessageID, status model.DeliveryStatus) error
	PendingMessages(receiver model.UserID) ([]*model.Message, error)
}

type ContactStore interface {
	ContactExists(owner, contact model.UserID) (bool, error)
	CreateContactPair(a, b model.UserID) error
}

type Notifier interface {
	Announce(user model.UserID, status string) error
}

// Relay runs the receive loop for one connection at a time. A single Relay is
// shared by every connection; all per-connection state lives on the stack of
// Serve.
type Relay struct {
	registry *registry.Registry
	users    UserStore
	messages MessageStore
	contacts ContactStore
	presence Notifier
	logger   *log.Logger
}

func New(reg *registry.Registry, users UserStore, messages MessageStore, contacts ContactStore, presence Notifier, logger *log.Logger) *Relay {
	return &Relay{
		registry: reg,
		users:    users,
		messages: messages,
		contacts: contacts,
		presence: presence,
		logger:   logger,
	}
}

// Serve processes frames from conn until it closes or errors. It registers
// the connection, fires the online transition if this is the user's first
// connection, sweeps messages that accumulated while the user was offline,
// then reads frames strictly sequentially. The disconnect path runs on every
// exit, panics included.
func (r *Relay) Serve(user model.UserID, conn Connection) {
	first := r.registry.Register(user, conn)
	defer r.disconnect(user, conn)

	if first {
		if err := r.users.SetOnline(user, true); err != nil {
			r.logger.Errorf("relay: persisting online flag for user %d: %v", user, err)
		}
		if err := r.presence.Announce(user, model.PresenceOnline); err != nil {
			r.logger.Errorf("relay: announcing online for user %d: %v", user, err)
		}
	}

	r.sweepPending(user)

	for {
		data, err := conn.ReadMessage()
		if err != nil {
			return
		}

		frame := &model.InboundFrame{}
		if err := json.Unmarshal(data, frame); err != nil {
			r.logger.Warnf("relay: malformed frame from user %d: %v", user, err)
			continue
		}

		if err := r.handleFrame(user, conn, frame); err != nil {
			r.logger.Errorf("relay: handling %q frame from user %d: %v", frame.Type, user, err)
			conn.SendJSON(model.ErrorEvent{Type: model.FrameError, Error: "action failed"})
		}
	}
}

func (r *Relay) disconnect(user model.UserID, conn Connection) {
	if err := recover(); err != nil {
		r.logger.Errorf("relay: panic serving user %d: %v", user, err)
	}

	last := r.registry.Unregister(user, conn)
	conn.Close()

	if !last {
		return
	}
	if err := r.users.SetOnline(user, false); err != nil {
		r.logger.Errorf("relay: persisting offline flag for user %d: %v", user, err)
	}
	if err := r.presence.Announce(user, model.PresenceOffline); err != nil {
		r.logger.Errorf("relay: announcing offline for user %d: %v", user, err)
	}
}

// sweepPending advances every message still addressed to user in sent state
// to delivered and tells each original sender. This reconciles delivery state
// accumulated while the user was offline.
func (r *Relay) sweepPending(user model.UserID) {
	pending, err := r.messages.PendingMessages(user)
	if err != nil {
		r.logger.Errorf("relay: fetching pending messages for user %d: %v", user, err)
		return
	}

	for _, msg := range pending {
		next := model.NextStatus(msg.Status, model.EventReceiverOnline)
		if next == msg.Status {
			continue
		}
		if err := r.messages.UpdateMessageStatus(msg.ID, next); err != nil {
			r.logger.Errorf("relay: advancing message %d to %s: %v", msg.ID, next, err)
			continue
		}
		r.registry.FanOut(msg.SenderID, model.NewStatusUpdateEvent(msg.ID, next))
	}
}

func (r *Relay) handleFrame(user model.UserID, conn Connection, frame *model.InboundFrame) error {
	switch {
	case frame.Type == model.FramePing:
		return conn.SendJSON(model.PongEvent{Type: model.FramePong})

	case frame.Type == model.FrameTyping:
		if frame.ReceiverID == 0 {
			return fmt.Errorf("typing frame without receiver")
		}
		r.registry.FanOut(frame.ReceiverID, model.TypingEvent{Type: model.FrameTyping, SenderID: user})
		return nil

	case frame.Type == model.FrameReadReceipt:
		return r.handleReceipt(frame.MessageID, model.EventReadReceipt)

	case frame.Type == model.FrameDeliveredReceipt:
		return r.handleReceipt(frame.MessageID, model.EventDeliveredReceipt)

	case frame.IsMessage():
		return r.handleMessage(user, frame)
	}

	return fmt.Errorf("unrecognized frame")
}

// handleMessage persists a chat message and fans it out. Ordering is fixed:
// check the receiver's online state, persist with the derived status, then
// deliver. A receiver connecting in between picks the message up through its
// own pending sweep, so the race only ever resolves towards sent.
func (r *Relay) handleMessage(sender model.UserID, frame *model.InboundFrame) error {
	receiver := frame.ReceiverID

	if err := r.ensureContacts(sender, receiver); err != nil {
		return fmt.Errorf("ensuring contact pair: %w", err)
	}

	receiverOnline := r.registry.IsOnline(receiver)
	status := model.StatusSent
	if receiverOnline {
		status = model.NextStatus(status, model.EventReceiverOnline)
	}

	mediaType := frame.MediaType
	if mediaType == "" {
		mediaType = "text"
	}

	msg, err := r.messages.CreateMessage(&model.CreateMessageParams{
		SenderID:   sender,
		ReceiverID: receiver,
		Content:    frame.Content,
		MediaURL:   frame.MediaURL,
		MediaType:  mediaType,
		Status:     status,
	})
	if err != nil {
		return fmt.Errorf("persisting message: %w", err)
	}

	event := model.NewMessageEvent(msg)
	if receiverOnline {
		r.registry.FanOut(receiver, event)
	}
	// The sender always gets the echo, receiver reachable or not.
	r.registry.FanOut(sender, event)

	return nil
}

func (r *Relay) ensureContacts(sender, receiver model.UserID) error {
	exists, err := r.contacts.ContactExists(sender, receiver)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	return r.contacts.CreateContactPair(sender, receiver)
}

// handleReceipt advances a message's delivery status. Out-of-order and
// duplicate receipts fall out of NextStatus as no-ops and produce no
// notification, which is the idempotency guarantee.
func (r *Relay) handleReceipt(id model.MessageID, event model.DeliveryEvent) error {
	msg, err := r.messages.MessageByID(id)
	if err != nil {
		return fmt.Errorf("looking up message: %w", err)
	}

	next := model.NextStatus(msg.Status, event)
	if next == msg.Status {
		return nil
	}

	if err := r.messages.UpdateMessageStatus(msg.ID, next); err != nil {
		return fmt.Errorf("advancing message to %s: %w", next, err)
	}

	r.registry.FanOut(msg.SenderID, model.NewStatusUpdateEvent(msg.ID, next))
	return nil
}

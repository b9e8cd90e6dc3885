package relay

import (
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/labstack/gommon/log"
	"github.com/stretchr/testify/assert"

	"github.com/Neeraj-0217/real-time-chat-app/internal/model"
	"github.com/Neeraj-0217/real-time-chat-app/internal/registry"
)

// chanConn is a scripted connection: frames are fed through a channel and
// everything the relay sends back is recorded.
type chanConn struct {
	in   chan []byte
	once sync.Once

	mu   sync.Mutex
	sent []any
}

func newChanConn() *chanConn {
	return &chanConn{in: make(chan []byte, 16)}
}

func (c *chanConn) ReadMessage() ([]byte, error) {
	data, ok := <-c.in
	if !ok {
		return nil, io.EOF
	}
	return data, nil
}

func (c *chanConn) SendJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, v)
	return nil
}

func (c *chanConn) Close() error {
	c.once.Do(func() { close(c.in) })
	return nil
}

func (c *chanConn) feed(frame string) {
	c.in <- []byte(frame)
}

func (c *chanConn) countType(match func(any) bool) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, v := range c.sent {
		if match(v) {
			n++
		}
	}
	return n
}

func isMessageEvent(v any) bool {
	_, ok := v.(model.MessageEvent)
	return ok
}

func (c *chanConn) lastMessageEvent() (model.MessageEvent, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var event model.MessageEvent
	found := false
	for _, v := range c.sent {
		if e, ok := v.(model.MessageEvent); ok {
			event = e
			found = true
		}
	}
	return event, found
}

func isStatusUpdate(status model.DeliveryStatus) func(any) bool {
	return func(v any) bool {
		e, ok := v.(model.StatusUpdateEvent)
		return ok && e.Status == status
	}
}

func isPong(v any) bool {
	e, ok := v.(model.PongEvent)
	return ok && e.Type == model.FramePong
}

// memStore implements the relay's store interfaces in memory.
type memStore struct {
	mu       sync.Mutex
	nextID   model.MessageID
	messages map[model.MessageID]*model.Message
	contacts map[[2]model.UserID]bool
	online   map[model.UserID]bool
}

func newMemStore() *memStore {
	return &memStore{
		messages: make(map[model.MessageID]*model.Message),
		contacts: make(map[[2]model.UserID]bool),
		online:   make(map[model.UserID]bool),
	}
}

func (s *memStore) SetOnline(id model.UserID, online bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.online[id] = online
	return nil
}

func (s *memStore) isOnline(id model.UserID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.online[id]
}

func (s *memStore) CreateMessage(params *model.CreateMessageParams) (*model.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	msg := &model.Message{
		ID:         s.nextID,
		SenderID:   params.SenderID,
		ReceiverID: params.ReceiverID,
		Content:    params.Content,
		MediaURL:   params.MediaURL,
		MediaType:  params.MediaType,
		Status:     params.Status,
		Timestamp:  time.Now().UTC(),
	}
	s.messages[msg.ID] = msg
	return copyMessage(msg), nil
}

func (s *memStore) MessageByID(id model.MessageID) (*model.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg, ok := s.messages[id]
	if !ok {
		return nil, model.ErrorMessageNotFound
	}
	return copyMessage(msg), nil
}

func (s *memStore) UpdateMessageStatus(id model.MessageID, status model.DeliveryStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg, ok := s.messages[id]
	if !ok {
		return model.ErrorMessageNotFound
	}
	msg.Status = status
	return nil
}

func (s *memStore) PendingMessages(receiver model.UserID) ([]*model.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pending := []*model.Message{}
	for id := model.MessageID(1); id <= s.nextID; id++ {
		msg, ok := s.messages[id]
		if ok && msg.ReceiverID == receiver && msg.Status == model.StatusSent {
			pending = append(pending, copyMessage(msg))
		}
	}
	return pending, nil
}

func (s *memStore) status(id model.MessageID) model.DeliveryStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.messages[id].Status
}

func (s *memStore) ContactExists(owner, contact model.UserID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.contacts[[2]model.UserID{owner, contact}], nil
}

func (s *memStore) CreateContactPair(a, b model.UserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contacts[[2]model.UserID{a, b}] = true
	s.contacts[[2]model.UserID{b, a}] = true
	return nil
}

func (s *memStore) hasContact(owner, contact model.UserID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.contacts[[2]model.UserID{owner, contact}]
}

func copyMessage(m *model.Message) *model.Message {
	clone := *m
	return &clone
}

type presenceEvent struct {
	user   model.UserID
	status string
}

type recordNotifier struct {
	mu     sync.Mutex
	events []presenceEvent
}

func (n *recordNotifier) Announce(user model.UserID, status string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, presenceEvent{user, status})
	return nil
}

func (n *recordNotifier) count(user model.UserID, status string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	c := 0
	for _, e := range n.events {
		if e.user == user && e.status == status {
			c++
		}
	}
	return c
}

func newTestRelay() (*Relay, *registry.Registry, *memStore, *recordNotifier) {
	reg := registry.New()
	store := newMemStore()
	notifier := &recordNotifier{}
	logger := log.New("test")
	logger.SetLevel(log.OFF)
	return New(reg, store, store, store, notifier, logger), reg, store, notifier
}

const waitFor = 2 * time.Second
const tick = 5 * time.Millisecond

func TestPresenceTransitions(t *testing.T) {
	assert := assert.New(t)
	relay, reg, store, notifier := newTestRelay()
	user := model.UserID(1)

	conns := []*chanConn{newChanConn(), newChanConn(), newChanConn()}
	for _, c := range conns {
		c := c
		go relay.Serve(user, c)
	}

	assert.Eventually(func() bool {
		return reg.Stats().Users[user] == 3
	}, waitFor, tick)

	t.Run("one online announcement for three connects", func(t *testing.T) {
		assert.Equal(1, notifier.count(user, model.PresenceOnline))
		assert.True(store.isOnline(user))
	})

	t.Run("no offline while a connection remains", func(t *testing.T) {
		conns[0].Close()
		conns[1].Close()
		assert.Eventually(func() bool {
			return reg.Stats().Users[user] == 1
		}, waitFor, tick)
		assert.Equal(0, notifier.count(user, model.PresenceOffline))
		assert.True(store.isOnline(user))
	})

	t.Run("one offline announcement when the last connection closes", func(t *testing.T) {
		conns[2].Close()
		assert.Eventually(func() bool {
			return notifier.count(user, model.PresenceOffline) == 1
		}, waitFor, tick)
		assert.False(reg.IsOnline(user))
		assert.False(store.isOnline(user))
	})
}

func TestPresenceUnderConnectionBursts(t *testing.T) {
	assert := assert.New(t)
	relay, reg, store, notifier := newTestRelay()
	user := model.UserID(1)

	const bursts = 200
	for i := 0; i < bursts; i++ {
		conns := []*chanConn{newChanConn(), newChanConn()}

		var wg sync.WaitGroup
		for _, c := range conns {
			c := c
			wg.Add(1)
			go func() {
				defer wg.Done()
				relay.Serve(user, c)
			}()
		}
		assert.Eventually(func() bool {
			return reg.Stats().Users[user] == 2
		}, waitFor, tick)

		for _, c := range conns {
			go c.Close()
		}
		wg.Wait()

		assert.Equal(i+1, notifier.count(user, model.PresenceOnline), "burst %d", i)
		assert.Equal(i+1, notifier.count(user, model.PresenceOffline), "burst %d", i)
	}

	assert.False(reg.IsOnline(user))
	assert.False(store.isOnline(user))
}

func TestMessageToOnlineReceiver(t *testing.T) {
	assert := assert.New(t)
	relay, _, store, _ := newTestRelay()

	alice, bob := model.UserID(1), model.UserID(2)
	aliceConn := newChanConn()
	bobConn := newChanConn()
	go relay.Serve(alice, aliceConn)
	go relay.Serve(bob, bobConn)
	defer aliceConn.Close()
	defer bobConn.Close()

	// wait until both relays are past registration
	aliceConn.feed(`{"type": "ping"}`)
	bobConn.feed(`{"type": "ping"}`)
	assert.Eventually(func() bool {
		return aliceConn.countType(isPong) == 1 && bobConn.countType(isPong) == 1
	}, waitFor, tick)

	aliceConn.feed(`{"receiver_id": 2, "content": "hello bob"}`)

	assert.Eventually(func() bool {
		return bobConn.countType(isMessageEvent) == 1
	}, waitFor, tick)

	t.Run("receiver gets the message as delivered", func(t *testing.T) {
		event, ok := bobConn.lastMessageEvent()
		assert.True(ok)
		assert.Equal("hello bob", event.Content)
		assert.Equal(alice, event.SenderID)
		assert.Equal(model.StatusDelivered, event.Status)
		assert.Equal(model.StatusDelivered, store.status(event.ID))
	})

	t.Run("sender gets an echo with the same id", func(t *testing.T) {
		assert.Eventually(func() bool {
			return aliceConn.countType(isMessageEvent) == 1
		}, waitFor, tick)
		received, _ := bobConn.lastMessageEvent()
		echo, ok := aliceConn.lastMessageEvent()
		assert.True(ok)
		assert.Equal(received.ID, echo.ID)
	})

	t.Run("contact edges created in both directions", func(t *testing.T) {
		assert.True(store.hasContact(alice, bob))
		assert.True(store.hasContact(bob, alice))
	})
}

func TestMessageToOfflineReceiver(t *testing.T) {
	assert := assert.New(t)
	relay, _, store, _ := newTestRelay()

	alice, bob := model.UserID(1), model.UserID(2)
	aliceConn := newChanConn()
	go relay.Serve(alice, aliceConn)
	defer aliceConn.Close()

	aliceConn.feed(`{"receiver_id": 2, "content": "are you there?"}`)

	assert.Eventually(func() bool {
		return aliceConn.countType(isMessageEvent) == 1
	}, waitFor, tick)

	echo, ok := aliceConn.lastMessageEvent()
	assert.True(ok)

	t.Run("message persists as sent and sender still gets the echo", func(t *testing.T) {
		assert.Equal(model.StatusSent, echo.Status)
		assert.Equal(model.StatusSent, store.status(echo.ID))
	})

	t.Run("receiver connecting sweeps it to delivered", func(t *testing.T) {
		bobConn := newChanConn()
		go relay.Serve(bob, bobConn)
		defer bobConn.Close()

		assert.Eventually(func() bool {
			return aliceConn.countType(isStatusUpdate(model.StatusDelivered)) == 1
		}, waitFor, tick)
		assert.Equal(model.StatusDelivered, store.status(echo.ID))
	})
}

func TestReceiptIdempotency(t *testing.T) {
	assert := assert.New(t)
	relay, reg, store, _ := newTestRelay()

	alice, bob := model.UserID(1), model.UserID(2)
	aliceConn := newChanConn()
	bobConn := newChanConn()
	go relay.Serve(alice, aliceConn)
	go relay.Serve(bob, bobConn)
	defer aliceConn.Close()
	defer bobConn.Close()

	assert.Eventually(func() bool {
		return reg.IsOnline(alice) && reg.IsOnline(bob)
	}, waitFor, tick)

	msg, err := store.CreateMessage(&model.CreateMessageParams{
		SenderID:   alice,
		ReceiverID: bob,
		Content:    "read me",
		MediaType:  "text",
		Status:     model.StatusDelivered,
	})
	assert.Nil(err)

	receipt := fmt.Sprintf(`{"type": "read_receipt", "message_id": %d, "sender_id": %d}`, msg.ID, alice)
	bobConn.feed(receipt)

	assert.Eventually(func() bool {
		return aliceConn.countType(isStatusUpdate(model.StatusRead)) == 1
	}, waitFor, tick)
	assert.Equal(model.StatusRead, store.status(msg.ID))

	t.Run("duplicate receipt produces no second notification", func(t *testing.T) {
		bobConn.feed(receipt)
		bobConn.feed(`{"type": "ping"}`)
		assert.Eventually(func() bool {
			return bobConn.countType(isPong) == 1
		}, waitFor, tick)
		assert.Equal(1, aliceConn.countType(isStatusUpdate(model.StatusRead)))
		assert.Equal(model.StatusRead, store.status(msg.ID))
	})

	t.Run("delivered receipt after read is a no-op", func(t *testing.T) {
		bobConn.feed(fmt.Sprintf(`{"type": "delivered_receipt", "message_id": %d, "sender_id": %d}`, msg.ID, alice))
		bobConn.feed(`{"type": "ping"}`)
		assert.Eventually(func() bool {
			return bobConn.countType(isPong) == 2
		}, waitFor, tick)
		assert.Equal(0, aliceConn.countType(isStatusUpdate(model.StatusDelivered)))
		assert.Equal(model.StatusRead, store.status(msg.ID))
	})
}

func TestControlFrames(t *testing.T) {
	assert := assert.New(t)
	relay, reg, _, _ := newTestRelay()

	alice, bob := model.UserID(1), model.UserID(2)
	aliceConn := newChanConn()
	bobConn := newChanConn()
	go relay.Serve(alice, aliceConn)
	go relay.Serve(bob, bobConn)
	defer aliceConn.Close()
	defer bobConn.Close()

	assert.Eventually(func() bool {
		return reg.IsOnline(alice) && reg.IsOnline(bob)
	}, waitFor, tick)

	t.Run("ping answers pong on the originating connection only", func(t *testing.T) {
		aliceConn.feed(`{"type": "ping"}`)
		assert.Eventually(func() bool {
			return aliceConn.countType(isPong) == 1
		}, waitFor, tick)
		assert.Equal(0, bobConn.countType(isPong))
	})

	t.Run("typing fans out to the receiver without persistence", func(t *testing.T) {
		aliceConn.feed(`{"type": "typing", "receiver_id": 2}`)
		assert.Eventually(func() bool {
			return bobConn.countType(func(v any) bool {
				e, ok := v.(model.TypingEvent)
				return ok && e.SenderID == alice
			}) == 1
		}, waitFor, tick)
	})
}

func TestMalformedFramesAreSkipped(t *testing.T) {
	assert := assert.New(t)
	relay, _, _, _ := newTestRelay()

	conn := newChanConn()
	go relay.Serve(model.UserID(1), conn)
	defer conn.Close()

	conn.feed(`this is not json`)
	conn.feed(`{"receiver_id": "not-a-number"}`)
	conn.feed(`{"type": "ping"}`)

	assert.Eventually(func() bool {
		return conn.countType(isPong) == 1
	}, waitFor, tick)
}

package registry

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const defaultWriteTimeout = 10 * time.Second

// Conn wraps a websocket connection with serialized, deadline-bounded writes
// so a slow reader cannot stall fan-out to its siblings indefinitely.
type Conn struct {
	ws      *websocket.Conn
	timeout time.Duration

	writeMu   sync.Mutex
	closeOnce sync.Once
	closeErr  error
}

func NewConn(ws *websocket.Conn) *Conn {
	return &Conn{ws: ws, timeout: defaultWriteTimeout}
}

func (c *Conn) SendJSON(v any) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	c.ws.SetWriteDeadline(time.Now().Add(c.timeout))
	return c.ws.WriteJSON(v)
}

// ReadMessage blocks until the next frame arrives. Only the owning relay
// loop may call it.
func (c *Conn) ReadMessage() ([]byte, error) {
	_, data, err := c.ws.ReadMessage()
	return data, err
}

// Close is idempotent; fan-out pruning and the relay's unwind path may both
// end up here for the same connection.
func (c *Conn) Close() error {
	c.closeOnce.Do(func() {
		c.closeErr = c.ws.Close()
	})
	return c.closeErr
}

package ws

import (
	"sync"

	"github.com/gorilla/websocket"
)

// Conn wraps one websocket connection with a write lock. gorilla/websocket
// allows a single concurrent writer, but writes to a connection come from
// the hub's fan-out and from the read loop's error replies at the same time.
// Reads stay unlocked: the read loop is the only reader.
type Conn struct {
	ws *websocket.Conn
	mu sync.Mutex
}

// NewConn wraps ws.
func NewConn(ws *websocket.Conn) *Conn {
	return &Conn{ws: ws}
}

// WriteMessage writes one frame, serialized against concurrent writers.
func (c *Conn) WriteMessage(messageType int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ws.WriteMessage(messageType, data)
}

// ReadMessage reads the next frame. Only the read loop may call this.
func (c *Conn) ReadMessage() (int, []byte, error) {
	return c.ws.ReadMessage()
}

// Close closes the underlying connection.
func (c *Conn) Close() error {
	return c.ws.Close()
}

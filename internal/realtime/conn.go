package realtime

import (
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// ErrConnClosed is returned by Send after the connection shut down.
var ErrConnClosed = errors.New("connection closed")

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	sendBufferSize = 32
)

// wsConn adapts a gorilla websocket connection to the Conn interface. Writes
// go through a buffered channel drained by a single write pump, since gorilla
// connections allow only one concurrent writer.
type wsConn struct {
	id   string
	ws   *websocket.Conn
	send chan Event

	closeOnce sync.Once
	closed    chan struct{}
}

func newWSConn(id string, ws *websocket.Conn) *wsConn {
	return &wsConn{
		id:     id,
		ws:     ws,
		send:   make(chan Event, sendBufferSize),
		closed: make(chan struct{}),
	}
}

func (c *wsConn) ID() string { return c.id }

// Send enqueues the event for delivery. It returns ErrConnClosed once the
// socket is gone and when the outbound buffer is full, so a stalled client
// cannot block a fan-out.
func (c *wsConn) Send(e Event) error {
	select {
	case <-c.closed:
		return ErrConnClosed
	default:
	}
	select {
	case c.send <- e:
		return nil
	case <-c.closed:
		return ErrConnClosed
	default:
		return ErrConnClosed
	}
}

func (c *wsConn) close() {
	c.closeOnce.Do(func() {
		close(c.closed)
		c.ws.Close()
	})
}

// writePump drains the send channel onto the socket and keeps the connection
// alive with pings. It owns all writes.
func (c *wsConn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()
	for {
		select {
		case e := <-c.send:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteJSON(e); err != nil {
				return
			}
		case <-ticker.C:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.closed:
			return
		}
	}
}

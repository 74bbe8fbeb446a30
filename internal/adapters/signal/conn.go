package signal

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var (
	ErrBackpressure = errors.New("backpressure")
	ErrConnClosed   = errors.New("connection closed")
)

// writeWait bounds every single websocket write.
const writeWait = 5 * time.Second

// Conn wraps one websocket with a bounded outbound queue so a slow reader
// cannot stall whoever feeds it.
type Conn struct {
	ws   *websocket.Conn
	send chan []byte

	mu     sync.RWMutex
	closed bool
}

func newConn(ws *websocket.Conn, queue int) *Conn {
	return &Conn{ws: ws, send: make(chan []byte, queue)}
}

// TrySend queues data without blocking. A full queue is the caller's
// signal to apply its backpressure policy.
func (c *Conn) TrySend(data []byte) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return ErrConnClosed
	}
	select {
	case c.send <- data:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *Conn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.ws.Close()
	c.mu.Unlock()
}

func (c *Conn) writePump(ctx context.Context, ping time.Duration) {
	ticker := time.NewTicker(ping)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Debug().Str("module", "signal").Msg("writePump ctx done")
			return
		case <-ticker.C:
			if err := c.ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Debug().Err(err).Str("module", "signal").Msg("writePump ping")
				return
			}
		case data, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				return
			}
			if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump write error")
				return
			}
		}
	}
}

// readPump feeds inbound frames to handle until the connection dies. wait
// is how long we tolerate silence; pongs to our pings extend it.
func (c *Conn) readPump(ctx context.Context, limit int64, wait time.Duration, handle func([]byte)) {
	defer c.Close()

	c.ws.SetReadLimit(limit)
	_ = c.ws.SetReadDeadline(time.Now().Add(wait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(wait))
	})

	for {
		select {
		case <-ctx.Done():
			log.Debug().Str("module", "signal").Msg("readPump ctx done")
			return
		default:
			_, data, err := c.ws.ReadMessage()
			if err != nil {
				log.Debug().Err(err).Str("module", "signal").Msg("readPump read error")
				return
			}
			handle(data)
		}
	}
}

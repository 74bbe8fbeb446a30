package signal

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// Client is the program side of the relay: dial, join a room, then trade
// envelopes until one side hangs up.
type Client struct {
	ws    *websocket.Conn
	inbox chan Envelope

	mu sync.Mutex // serializes writes
}

// Dial connects to a relay endpoint (ws:// or wss://).
func Dial(ctx context.Context, url string) (*Client, error) {
	ws, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial signal relay: %w", err)
	}

	c := &Client{ws: ws, inbox: make(chan Envelope, 32)}
	go c.readLoop()
	return c, nil
}

func (c *Client) readLoop() {
	defer close(c.inbox)
	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			log.Debug().Err(err).Str("module", "signal").Msg("client read loop ended")
			return
		}
		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			log.Warn().Err(err).Str("module", "signal").Msg("client bad envelope")
			continue
		}
		c.inbox <- env
	}
}

// Send marshals and writes one envelope.
func (c *Client) Send(env Envelope) error {
	b, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	if err := c.ws.WriteMessage(websocket.TextMessage, b); err != nil {
		return fmt.Errorf("send envelope: %w", err)
	}
	return nil
}

// Join asks the relay to put this connection into a room.
func (c *Client) Join(room string) error {
	return c.Send(Envelope{Type: KindJoin, Room: room})
}

func (c *Client) Leave() error {
	return c.Send(Envelope{Type: KindLeave})
}

// Inbound delivers everything the relay pushes at us. The channel closes
// when the connection dies.
func (c *Client) Inbound() <-chan Envelope { return c.inbox }

func (c *Client) Close() error {
	return c.ws.Close()
}

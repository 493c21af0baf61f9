package telemetry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/gorilla/websocket"

	"train-simulator/internal/sim"
)

// Client is a connection to a viewer's telemetry endpoint.
type Client struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func Dial(ctx context.Context, url string) (*Client, error) {
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	return &Client{conn: conn}, nil
}

// Send asks the viewer to apply cmd.
func (c *Client) Send(cmd sim.Command) error {
	data, err := json.Marshal(CommandMessage{Ver: ProtocolVersion, Type: TypeCommand, Command: cmd.String()})
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// Follow calls fn for every snapshot until ctx is done or the connection
// closes. Cancellation and a normal close return nil.
func (c *Client) Follow(ctx context.Context, fn func(sim.Snapshot)) error {
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			c.conn.Close()
		case <-stop:
		}
	}()

	for {
		_, payload, err := c.conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("read snapshot: %w", err)
		}
		var msg SnapshotMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			return fmt.Errorf("decode snapshot: %w", err)
		}
		if msg.Type != TypeSnapshot {
			continue
		}
		if msg.Ver != ProtocolVersion {
			return errors.New("telemetry protocol version mismatch")
		}
		fn(msg.Snapshot)
	}
}

func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	return c.conn.Close()
}

// Follow dials url and streams snapshots to fn until ctx is done.
func Follow(ctx context.Context, url string, fn func(sim.Snapshot)) error {
	c, err := Dial(ctx, url)
	if err != nil {
		return err
	}
	defer c.Close()
	return c.Follow(ctx, fn)
}

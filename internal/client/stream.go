package client

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
)

// StreamEvent mirrors the server's activity event
type StreamEvent struct {
	Type      string    `json:"type"`
	Reason    string    `json:"reason,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// SubscribeActivity connects to the live activity stream. The returned
// channel yields activity_changed events and closes when the connection
// drops or ctx is cancelled.
func (c *Client) SubscribeActivity(ctx context.Context) (<-chan StreamEvent, error) {
	wsURL, err := c.ActivityStreamURL()
	if err != nil {
		return nil, err
	}

	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to activity stream: %w", err)
	}

	out := make(chan StreamEvent, 8)
	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()
	go func() {
		defer close(out)
		defer close(done)
		defer conn.Close()
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var ev StreamEvent
			if json.Unmarshal(data, &ev) != nil || ev.Type != "activity_changed" {
				continue
			}
			select {
			case out <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

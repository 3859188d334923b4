// Package toolcall implements a minimal correlated request/response protocol
// for invoking named remote tools over a persistent websocket channel.
//
// Wire format: JSON objects. A call is {"type": "<tool>", "payload": {...}},
// answered by {"type": "<tool>.result", "result": {...}} or
// {"type": "<tool>.error", "error": "..."}. The protocol is strictly
// request-then-consume: one in-flight call per channel.
package toolcall

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// ErrTransport marks channel-level failures (closed connection, stalled
// receive). Retry policy belongs to the caller.
var ErrTransport = errors.New("toolcall: transport failure")

const defaultCallTimeout = 60 * time.Second

// Client is one logical tool-call session. Calls are serialized: two
// in-flight calls on the same channel would race each other's replies.
type Client struct {
	conn    *websocket.Conn
	timeout time.Duration

	mu sync.Mutex
}

// Dial opens a websocket channel to a tool-call server.
func Dial(ctx context.Context, wsURL string) (*Client, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: dial %s: %v", ErrTransport, wsURL, err)
	}
	return &Client{conn: conn, timeout: defaultCallTimeout}, nil
}

// SetCallTimeout overrides the default per-call receive budget.
func (c *Client) SetCallTimeout(d time.Duration) {
	if d > 0 {
		c.timeout = d
	}
}

// Connect performs the session handshake. The server's "connected" reply is
// not awaited here; it is skipped by the correlation loop of the next call.
func (c *Client) Connect(agentName, version string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	msg := map[string]interface{}{
		"type":       "connect",
		"agent_name": agentName,
		"version":    version,
	}
	if err := c.conn.WriteJSON(msg); err != nil {
		return fmt.Errorf("%w: connect: %v", ErrTransport, err)
	}
	return nil
}

// Call invokes a named tool and reads replies until the matching
// "<tool>.result" or an error-bearing message arrives. Unrelated messages
// (stale "connected", notifications) are skipped, never treated as the
// answer.
func (c *Client) Call(ctx context.Context, toolType string, payload map[string]interface{}) (map[string]interface{}, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if payload == nil {
		payload = map[string]interface{}{}
	}

	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	_ = c.conn.SetWriteDeadline(deadline)
	req := map[string]interface{}{"type": toolType, "payload": payload}
	if err := c.conn.WriteJSON(req); err != nil {
		return nil, fmt.Errorf("%w: send %s: %v", ErrTransport, toolType, err)
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrTransport, toolType, err)
		}

		_ = c.conn.SetReadDeadline(deadline)
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			return nil, fmt.Errorf("%w: receive %s: %v", ErrTransport, toolType, err)
		}

		var msg map[string]interface{}
		if err := json.Unmarshal(raw, &msg); err != nil {
			return nil, fmt.Errorf("%w: %s: invalid reply: %v", ErrTransport, toolType, err)
		}

		mtype, _ := msg["type"].(string)
		if mtype == "connected" {
			continue
		}

		if mtype == toolType+".result" {
			if result, ok := msg["result"].(map[string]interface{}); ok {
				return result, nil
			}
		}

		if mtype == toolType+".error" || hasKey(msg, "error") {
			return nil, fmt.Errorf("tool call %s failed: %s", toolType, errorText(msg))
		}

		// Unrelated message type: skip and keep reading
	}
}

// Close tears down the channel.
func (c *Client) Close() error {
	return c.conn.Close()
}

func hasKey(msg map[string]interface{}, key string) bool {
	_, ok := msg[key]
	return ok
}

func errorText(msg map[string]interface{}) string {
	if s, ok := msg["error"].(string); ok && s != "" {
		return s
	}
	if result, ok := msg["result"].(map[string]interface{}); ok {
		if s, ok := result["error"].(string); ok && s != "" {
			return s
		}
	}
	return "unknown_error"
}

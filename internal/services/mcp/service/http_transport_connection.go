package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/jsonrpc"
)

// httpConnection implements mcp.Connection for HTTP-based communication.
// The MCP SDK expects a bidirectional connection model, so this adapter maps
// request/response flow and notification delivery onto separate buffered
// channels.
type httpConnection struct {
	sessionID   string
	reqChan     chan jsonrpc.Message
	respChan    chan jsonrpc.Message
	notifyChan  chan jsonrpc.Message // notifications are delivered over SSE
	closed      chan struct{}
	ready       chan struct{} // signaled once the MCP runtime starts reading
	readyOnce   sync.Once
	mu          sync.Mutex
	closedFlag  bool
	pendingReqs map[jsonrpc.ID]chan jsonrpc.Message // request ID to response channel
	pendingMu   sync.Mutex
}

func (c *httpConnection) Read(ctx context.Context) (jsonrpc.Message, error) {
	// Signal readiness on the first read, when the MCP runtime starts
	// consuming this connection.
	c.readyOnce.Do(func() {
		select {
		case c.ready <- struct{}{}:
		default:
		}
	})

	select {
	case msg, ok := <-c.reqChan:
		if !ok {
			return nil, fmt.Errorf("connection closed")
		}
		return msg, nil
	case <-c.closed:
		return nil, fmt.Errorf("connection closed")
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Write implements mcp.Connection.Write.
// Responses are routed to the pending request that is awaiting them; anything
// else goes to the notification channel. The split channel model avoids
// delivering unrelated notifications to callers awaiting a specific
// request/response exchange.
func (c *httpConnection) Write(ctx context.Context, msg jsonrpc.Message) error {
	c.mu.Lock()
	closed := c.closedFlag
	c.mu.Unlock()

	if closed {
		return fmt.Errorf("connection closed")
	}

	if resp, ok := msg.(*jsonrpc.Response); ok && resp.ID != (jsonrpc.ID{}) {
		c.pendingMu.Lock()
		respChan, exists := c.pendingReqs[resp.ID]
		c.pendingMu.Unlock()

		if exists {
			// Re-check closed before writing to avoid racing Close()
			c.mu.Lock()
			closed = c.closedFlag
			c.mu.Unlock()
			if closed {
				return fmt.Errorf("connection closed")
			}

			select {
			case respChan <- msg:
				return nil
			case <-c.closed:
				return fmt.Errorf("connection closed")
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		// No pending request: fall through and treat as a notification
	}

	c.mu.Lock()
	closed = c.closedFlag
	c.mu.Unlock()
	if closed {
		return fmt.Errorf("connection closed")
	}

	select {
	case c.notifyChan <- msg:
		return nil
	case <-c.closed:
		return fmt.Errorf("connection closed")
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close implements mcp.Connection.Close.
// Close drains all waiters and channels so a dropped session cannot leave
// goroutines blocked on per-session reads/writes.
func (c *httpConnection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closedFlag {
		return nil
	}

	c.closedFlag = true
	close(c.closed)

	close(c.reqChan)
	close(c.respChan)
	close(c.notifyChan)

	c.pendingMu.Lock()
	for _, respChan := range c.pendingReqs {
		close(respChan)
	}
	c.pendingReqs = nil
	c.pendingMu.Unlock()

	return nil
}

// SessionID implements mcp.Connection.SessionID.
func (c *httpConnection) SessionID() string {
	return c.sessionID
}

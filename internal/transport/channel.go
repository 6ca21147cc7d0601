// internal/transport/channel.go
package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"

	"github.com/user/tigerwatch/internal/types"
)

// Status is a transport-level connection notification.
type Status string

const (
	StatusConnected    Status = "connected"
	StatusDisconnected Status = "disconnected"
)

// Channel is a persistent duplex connection to the backend event stream.
// It delivers typed envelopes on Events and connection notifications on
// Statuses, reconnecting with exponential backoff until its context is
// cancelled. Malformed envelopes are logged and dropped; they never block
// subsequent valid ones.
type Channel struct {
	url      string
	dialer   *websocket.Dialer
	backoff  *Backoff
	events   chan types.Envelope
	statuses chan Status
}

// NewChannel creates a Channel for the given websocket URL. Run must be
// called to start delivery.
func NewChannel(url string) *Channel {
	return &Channel{
		url:      url,
		dialer:   websocket.DefaultDialer,
		backoff:  DefaultBackoff(),
		events:   make(chan types.Envelope, 64),
		statuses: make(chan Status, 4),
	}
}

// Events returns the envelope stream. Closed when Run returns.
func (c *Channel) Events() <-chan types.Envelope {
	return c.events
}

// Statuses returns connect/disconnect notifications. Best-effort: slow
// consumers miss intermediate transitions rather than stalling delivery.
func (c *Channel) Statuses() <-chan Status {
	return c.statuses
}

// Run dials the stream and keeps it alive until ctx is cancelled,
// reconnecting with backoff after failures. After a reconnect the backend
// may re-deliver events; consumers must handle duplicates.
func (c *Channel) Run(ctx context.Context) {
	defer close(c.events)

	attempt := 0
	for {
		if ctx.Err() != nil {
			return
		}

		conn, _, err := c.dialer.DialContext(ctx, c.url, nil)
		if err != nil {
			attempt++
			delay := c.backoff.Delay(attempt)
			slog.Warn("stream dial failed", "url", c.url, "attempt", attempt, "retry_in", delay, "error", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(delay):
			}
			continue
		}

		attempt = 0
		c.notify(StatusConnected)
		c.readLoop(ctx, conn)
		conn.Close()
		c.notify(StatusDisconnected)
	}
}

// readLoop reads envelopes from one connection until it errors or ctx is
// cancelled.
func (c *Channel) readLoop(ctx context.Context, conn *websocket.Conn) {
	// Unblock the pending read when the context is cancelled.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil && !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				slog.Warn("stream read error", "error", err)
			}
			return
		}

		env, err := parseEnvelope(data)
		if err != nil {
			slog.Warn("dropping malformed envelope", "error", err)
			continue
		}

		select {
		case c.events <- env:
		case <-ctx.Done():
			return
		}
	}
}

// notify sends a status without blocking; stale notifications are dropped.
func (c *Channel) notify(s Status) {
	select {
	case c.statuses <- s:
	default:
	}
}

// parseEnvelope decodes and validates one raw stream message.
func parseEnvelope(data []byte) (types.Envelope, error) {
	var env types.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return types.Envelope{}, fmt.Errorf("decode envelope: %w", err)
	}
	switch env.Type {
	case types.EnvelopeAgentActivity, types.EnvelopeApprovalRequired, types.EnvelopeInvestigationCompleted:
	case "":
		return types.Envelope{}, fmt.Errorf("envelope missing type")
	default:
		return types.Envelope{}, fmt.Errorf("unknown envelope type: %q", env.Type)
	}
	return env, nil
}

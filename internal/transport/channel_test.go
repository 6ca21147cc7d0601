// internal/transport/channel_test.go
package transport

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/user/tigerwatch/internal/types"
)

func TestParseEnvelope(t *testing.T) {
	env, err := parseEnvelope([]byte(`{"type": "agent_activity", "data": {"agent": "research_agent"}}`))
	if err != nil {
		t.Fatal(err)
	}
	if env.Type != types.EnvelopeAgentActivity {
		t.Errorf("unexpected type: %s", env.Type)
	}

	// Missing type
	if _, err := parseEnvelope([]byte(`{"data": {}}`)); err == nil {
		t.Error("expected error for missing type")
	}

	// Unknown type
	if _, err := parseEnvelope([]byte(`{"type": "heartbeat"}`)); err == nil {
		t.Error("expected error for unknown type")
	}

	// Not JSON
	if _, err := parseEnvelope([]byte(`not json`)); err == nil {
		t.Error("expected error for invalid JSON")
	}
}

func TestBackoffDelay(t *testing.T) {
	b := DefaultBackoff()

	if d := b.Delay(1); d != time.Second {
		t.Errorf("attempt 1: expected 1s, got %v", d)
	}
	if d := b.Delay(2); d != 2*time.Second {
		t.Errorf("attempt 2: expected 2s, got %v", d)
	}
	if d := b.Delay(20); d != 30*time.Second {
		t.Errorf("attempt 20: expected cap 30s, got %v", d)
	}
}

func TestChannelDeliversEnvelopes(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		// A malformed message must not block the valid one behind it.
		conn.WriteMessage(websocket.TextMessage, []byte(`{"type": "unexpected"}`))
		conn.WriteMessage(websocket.TextMessage, []byte(`{"type": "agent_activity", "data": {"agent": "research_agent", "status": "running"}}`))

		// Hold the connection open until the client goes away
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	ch := NewChannel(url)
	go ch.Run(ctx)

	select {
	case status := <-ch.Statuses():
		if status != StatusConnected {
			t.Errorf("expected connected status, got %s", status)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for connect status")
	}

	select {
	case env := <-ch.Events():
		if env.Type != types.EnvelopeAgentActivity {
			t.Errorf("unexpected envelope type: %s", env.Type)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for envelope")
	}
}

func TestChannelClosesEventsOnCancel(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	ch := NewChannel(url)

	done := make(chan struct{})
	go func() {
		ch.Run(ctx)
		close(done)
	}()

	select {
	case status := <-ch.Statuses():
		if status != StatusConnected {
			t.Fatalf("expected connected status, got %s", status)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for connect status")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("Run did not return after cancel")
	}

	if _, ok := <-ch.Events(); ok {
		t.Error("expected events channel to be closed")
	}
}

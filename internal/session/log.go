// internal/session/log.go
package session

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/user/tigerwatch/internal/types"
)

// MessageOption configures optional fields on an appended message.
type MessageOption func(*types.Message)

// WithToolUsed records the tool identifier that produced the message.
func WithToolUsed(name string) MessageOption {
	return func(m *types.Message) { m.ToolUsed = name }
}

// WithToolResult attaches an opaque structured tool result.
func WithToolResult(raw json.RawMessage) MessageOption {
	return func(m *types.Message) { m.ToolResult = raw }
}

// MessageLog is the append-only ordered conversation transcript. Entries
// are never mutated after creation. IDs are uuid-backed and each append
// also takes a strictly increasing sequence number, so entries created
// within the same tick stay unique and ordered.
type MessageLog struct {
	mu   sync.RWMutex
	seq  int64
	msgs []*types.Message
}

// NewMessageLog creates an empty log.
func NewMessageLog() *MessageLog {
	return &MessageLog{}
}

// Append creates a message and adds it to the log, returning the entry.
func (l *MessageLog) Append(role types.Role, content string, opts ...MessageOption) *types.Message {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.seq++
	msg := &types.Message{
		ID:      types.NewMessageID(),
		Seq:     l.seq,
		Role:    role,
		Content: content,
		At:      time.Now(),
	}
	for _, opt := range opts {
		opt(msg)
	}
	l.msgs = append(l.msgs, msg)
	return msg
}

// Messages returns the entries in append order.
func (l *MessageLog) Messages() []*types.Message {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]*types.Message, len(l.msgs))
	copy(out, l.msgs)
	return out
}

// Len returns the number of entries.
func (l *MessageLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.msgs)
}

// Last returns the most recent entry, or nil for an empty log.
func (l *MessageLog) Last() *types.Message {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if len(l.msgs) == 0 {
		return nil
	}
	return l.msgs[len(l.msgs)-1]
}

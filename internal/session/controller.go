// internal/session/controller.go

// Package session implements the investigation launch session: the message
// log plus the controller that sequences create/launch/continue requests,
// demultiplexes stream events, and enforces the session state machine.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/user/tigerwatch/internal/api"
	"github.com/user/tigerwatch/internal/approval"
	"github.com/user/tigerwatch/internal/progress"
	"github.com/user/tigerwatch/internal/toolset"
	"github.com/user/tigerwatch/internal/transport"
	"github.com/user/tigerwatch/internal/types"
)

// Phase is the controller's state machine position.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseCreating   Phase = "creating"
	PhaseLaunching  Phase = "launching"
	PhaseActive     Phase = "active"
	PhaseCompleting Phase = "completing"
)

var (
	// ErrBusy is returned when a submission arrives while a previous
	// request line is still in flight. Simple busy flag, not a queue.
	ErrBusy = errors.New("a request is already in flight")

	// ErrClosed is returned when the session has been torn down.
	ErrClosed = errors.New("session is closed")
)

// maxTitleLen bounds the investigation title derived from user input.
const maxTitleLen = 80

// defaultRedirectDelay gives the user time to read the completion summary
// before navigation.
const defaultRedirectDelay = 3 * time.Second

// Option configures a Controller.
type Option func(*Controller)

// WithRedirectDelay overrides the post-completion navigation delay.
func WithRedirectDelay(d time.Duration) Option {
	return func(c *Controller) { c.redirectDelay = d }
}

// WithOnComplete sets the navigation callback fired after the redirect
// delay. Never fired after Close.
func WithOnComplete(fn func(types.InvestigationID)) Option {
	return func(c *Controller) { c.onComplete = fn }
}

// WithStores enables local persistence of the session index and transcript.
func WithStores(sessions types.SessionStore, transcripts types.TranscriptStore) Option {
	return func(c *Controller) {
		c.sessions = sessions
		c.transcripts = transcripts
	}
}

// WithPriority sets the priority attached to the creation request.
func WithPriority(p string) Option {
	return func(c *Controller) { c.priority = p }
}

// Controller owns one launch session: the investigation identity, the
// message log, and the derived progress/approval views. It is the sole
// subscriber to the transport; all derived components receive updates only
// through its demultiplexing.
type Controller struct {
	api   types.InvestigationAPI
	tools *toolset.Selector
	log   *MessageLog
	prog  *progress.Tracker
	gate  *approval.Gate

	sessions    types.SessionStore
	transcripts types.TranscriptStore

	mu              sync.Mutex
	sessionID       types.SessionID
	investigationID types.InvestigationID
	phase           Phase
	inflight        bool
	completed       bool
	closed          bool
	connected       bool
	redirectTimer   *time.Timer

	priority      string
	redirectDelay time.Duration
	onComplete    func(types.InvestigationID)

	updates chan struct{}
}

// New creates a Controller in the Idle state.
func New(client types.InvestigationAPI, tools *toolset.Selector, opts ...Option) *Controller {
	c := &Controller{
		api:           client,
		tools:         tools,
		log:           NewMessageLog(),
		prog:          progress.NewTracker(),
		gate:          approval.NewGate(client),
		sessionID:     types.NewSessionID(),
		phase:         PhaseIdle,
		priority:      "high",
		redirectDelay: defaultRedirectDelay,
		updates:       make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SessionID returns this session's identity.
func (c *Controller) SessionID() types.SessionID {
	return c.sessionID
}

// Phase returns the current state machine position.
func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// InvestigationID returns the allocated identity, empty until the first
// successful creation call.
func (c *Controller) InvestigationID() types.InvestigationID {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.investigationID
}

// Connected reports the last known transport status.
func (c *Controller) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// Tools returns the selector constraining what the agent pool may invoke.
func (c *Controller) Tools() *toolset.Selector {
	return c.tools
}

// Messages returns the transcript in append order.
func (c *Controller) Messages() []*types.Message {
	return c.log.Messages()
}

// Steps returns the derived progress phases.
func (c *Controller) Steps() []types.ProgressStep {
	return c.prog.Steps()
}

// Recent returns the bounded agent activity buffer, most recent first.
func (c *Controller) Recent() []types.AgentActivity {
	return c.prog.Recent()
}

// PendingApproval returns the approval awaiting a decision, or nil.
func (c *Controller) PendingApproval() *types.PendingApproval {
	return c.gate.Pending()
}

// Updates returns a coalesced change-notification channel for renderers.
func (c *Controller) Updates() <-chan struct{} {
	return c.updates
}

// Submit handles one user turn. The first submission creates the
// investigation and launches it; later ones continue it. Request failures
// are surfaced as assistant entries in the log and leave the session
// retryable, so Submit returns an error only when the submission is
// rejected outright (busy or closed).
func (c *Controller) Submit(ctx context.Context, input string) error {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.inflight {
		c.mu.Unlock()
		return ErrBusy
	}
	c.inflight = true
	hasIdentity := c.investigationID != ""
	if !hasIdentity {
		c.phase = PhaseCreating
	}
	c.mu.Unlock()

	c.appendMessage(types.RoleUser, input)

	// Snapshot the selection at submit time; toggles made while the
	// request is in flight must not alter it.
	selected := c.tools.Snapshot()

	if hasIdentity {
		c.continueTurn(ctx, input, selected)
	} else {
		c.createAndLaunch(ctx, input, selected)
	}

	c.mu.Lock()
	c.inflight = false
	c.mu.Unlock()
	c.notify()
	return nil
}

// createAndLaunch sequences the two-step first submission:
// create identity, then launch with the same input and tool snapshot.
func (c *Controller) createAndLaunch(ctx context.Context, input string, selected []string) {
	title := deriveTitle(input)

	created, err := c.api.CreateInvestigation(ctx, &types.CreateRequest{
		Title:       title,
		Description: input,
		Priority:    c.priority,
	})
	if err != nil {
		c.mu.Lock()
		if c.closed {
			c.mu.Unlock()
			return
		}
		c.phase = PhaseIdle
		c.mu.Unlock()
		c.appendMessage(types.RoleAssistant, "Failed to create investigation: "+api.Message(err))
		return
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.investigationID = created.ID
	c.phase = PhaseLaunching
	c.mu.Unlock()

	c.appendMessage(types.RoleSystem, "Investigation created: "+title)
	c.recordSession(ctx, title, "active")
	c.notify()

	resp, err := c.api.LaunchInvestigation(ctx, &types.LaunchRequest{
		InvestigationID: created.ID,
		UserInput:       input,
		SelectedTools:   selected,
	})

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	// Identity exists either way; later submissions continue rather than
	// re-create, so the session stays retryable without double allocation.
	c.phase = PhaseActive
	c.mu.Unlock()

	if err != nil {
		c.appendMessage(types.RoleAssistant, "Failed to launch investigation: "+api.Message(err))
		return
	}
	// The immediate reply is not a completion; that only arrives on the
	// stream.
	c.appendMessage(types.RoleAssistant, resp.Response)
}

// continueTurn sends a follow-up turn against the existing identity.
func (c *Controller) continueTurn(ctx context.Context, input string, selected []string) {
	c.mu.Lock()
	id := c.investigationID
	c.mu.Unlock()

	resp, err := c.api.ContinueInvestigation(ctx, &types.LaunchRequest{
		InvestigationID: id,
		UserInput:       input,
		SelectedTools:   selected,
	})

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	if err != nil {
		c.appendMessage(types.RoleAssistant, api.Message(err))
		return
	}
	c.appendMessage(types.RoleAssistant, resp.Response)
}

// ResolveApproval resolves the pending approval, if any.
func (c *Controller) ResolveApproval(ctx context.Context, approved bool, message string) {
	if c.gate.Resolve(ctx, approved, message) {
		c.notify()
	}
}

// DismissApproval clears the pending approval without confirming.
func (c *Controller) DismissApproval() {
	c.gate.Dismiss()
	c.notify()
}

// Run consumes the transport until ctx is cancelled or the channel closes.
// Events are processed strictly in arrival order.
func (c *Controller) Run(ctx context.Context, ch *transport.Channel) {
	for {
		select {
		case <-ctx.Done():
			return
		case status, ok := <-ch.Statuses():
			if !ok {
				continue
			}
			c.setConnected(status == transport.StatusConnected)
		case env, ok := <-ch.Events():
			if !ok {
				return
			}
			c.HandleEnvelope(env)
		}
	}
}

// HandleEnvelope demultiplexes one stream envelope into the derived
// components. Malformed payloads are logged and dropped; they never crash
// the session or block later envelopes.
func (c *Controller) HandleEnvelope(env types.Envelope) {
	switch env.Type {
	case types.EnvelopeAgentActivity:
		var activity types.AgentActivity
		if err := json.Unmarshal(env.Data, &activity); err != nil {
			slog.Warn("dropping malformed agent activity", "error", err)
			return
		}
		c.prog.Observe(activity)
		c.notify()

	case types.EnvelopeApprovalRequired:
		var pending types.PendingApproval
		if err := json.Unmarshal(env.Data, &pending); err != nil || pending.ID == "" {
			slog.Warn("dropping malformed approval request", "error", err)
			return
		}
		c.gate.Set(&pending)
		c.notify()

	case types.EnvelopeInvestigationCompleted:
		var notice types.CompletionNotice
		if err := json.Unmarshal(env.Data, &notice); err != nil {
			slog.Warn("dropping malformed completion notice", "error", err)
			return
		}
		c.handleCompletion(notice)

	default:
		slog.Warn("dropping unexpected envelope", "type", env.Type)
	}
}

// handleCompletion processes the terminal event. Idempotent: after a
// reconnect the backend may re-deliver it, and the second receipt is a
// no-op.
func (c *Controller) handleCompletion(notice types.CompletionNotice) {
	c.mu.Lock()
	if c.closed || c.completed {
		c.mu.Unlock()
		return
	}
	c.completed = true
	c.phase = PhaseCompleting
	id := c.investigationID
	if id == "" {
		id = notice.InvestigationID
		c.investigationID = id
	}
	c.redirectTimer = time.AfterFunc(c.redirectDelay, func() {
		c.fireRedirect(id)
	})
	c.mu.Unlock()

	content := "Investigation complete."
	if notice.Summary != "" {
		content = notice.Summary
	}
	c.appendMessage(types.RoleSystem, content)
	c.recordSession(context.Background(), "", "completed")
	c.notify()
}

// fireRedirect invokes the navigation callback unless the session has been
// torn down since the timer was scheduled.
func (c *Controller) fireRedirect(id types.InvestigationID) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	fn := c.onComplete
	c.mu.Unlock()

	if fn != nil {
		fn(id)
	}
}

// Close tears the session down: the redirect timer is cancelled and late
// request completions no longer mutate state. Safe to call more than once.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	if c.redirectTimer != nil {
		c.redirectTimer.Stop()
		c.redirectTimer = nil
	}
	c.mu.Unlock()
}

// setConnected tracks transport status for the renderer.
func (c *Controller) setConnected(connected bool) {
	c.mu.Lock()
	changed := c.connected != connected
	c.connected = connected
	c.mu.Unlock()
	if changed {
		slog.Info("stream status changed", "connected", connected)
		c.notify()
	}
}

// appendMessage adds a transcript entry and persists it when a transcript
// store is configured. Persistence is best-effort.
func (c *Controller) appendMessage(role types.Role, content string, opts ...MessageOption) {
	msg := c.log.Append(role, content, opts...)
	if c.transcripts != nil {
		if err := c.transcripts.Append(context.Background(), c.sessionID, msg); err != nil {
			slog.Warn("transcript append failed", "session_id", c.sessionID, "error", err)
		}
	}
}

// recordSession creates or updates the local session index entry.
func (c *Controller) recordSession(ctx context.Context, title, status string) {
	if c.sessions == nil {
		return
	}

	c.mu.Lock()
	id := c.investigationID
	c.mu.Unlock()

	existing, err := c.sessions.Get(ctx, c.sessionID)
	if err != nil {
		record := &types.SessionRecord{
			SessionID:       c.sessionID,
			InvestigationID: id,
			Title:           title,
			Status:          status,
			CreatedAt:       time.Now(),
			UpdatedAt:       time.Now(),
		}
		if err := c.sessions.Create(ctx, record); err != nil {
			slog.Warn("session record create failed", "session_id", c.sessionID, "error", err)
		}
		return
	}

	existing.InvestigationID = id
	existing.Status = status
	if title != "" {
		existing.Title = title
	}
	if err := c.sessions.Update(ctx, existing); err != nil {
		slog.Warn("session record update failed", "session_id", c.sessionID, "error", err)
	}
}

// notify coalesces change notifications for the renderer.
func (c *Controller) notify() {
	select {
	case c.updates <- struct{}{}:
	default:
	}
}

// deriveTitle builds the investigation title from the first line of user
// input, truncated to a displayable length.
func deriveTitle(input string) string {
	line := input
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	line = strings.TrimSpace(line)
	runes := []rune(line)
	if len(runes) > maxTitleLen {
		return fmt.Sprintf("%s…", string(runes[:maxTitleLen-1]))
	}
	return line
}

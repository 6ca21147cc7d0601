// internal/approval/gate.go

// Package approval implements the human-in-the-loop checkpoint that pauses
// agent-initiated actions pending an explicit decision.
package approval

import (
	"context"
	"log/slog"
	"sync"

	"github.com/user/tigerwatch/internal/api"
	"github.com/user/tigerwatch/internal/types"
)

// Gate holds at most one pending approval (single slot). A second
// approval_required before the first is resolved overwrites the slot
// (last one wins); the backend is not expected to do this, but the client
// must tolerate it.
type Gate struct {
	mu      sync.Mutex
	pending *types.PendingApproval

	api   types.InvestigationAPI
	retry *api.RetryPolicy
	wg    sync.WaitGroup
}

// NewGate creates a Gate that confirms decisions through the given API.
func NewGate(client types.InvestigationAPI) *Gate {
	return &Gate{
		api:   client,
		retry: api.DefaultRetryPolicy(),
	}
}

// Set installs a pending approval, overwriting any existing one.
func (g *Gate) Set(p *types.PendingApproval) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.pending = p
}

// Pending returns the current pending approval, or nil.
func (g *Gate) Pending() *types.PendingApproval {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.pending == nil {
		return nil
	}
	p := *g.pending
	return &p
}

// Dismiss clears the slot without confirming anything to the backend.
func (g *Gate) Dismiss() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.pending = nil
}

// Resolve clears the slot immediately and confirms the decision to the
// backend in the background, so the UI unblocks without waiting on the
// round trip. The confirmation retries with backoff; terminal failure is
// logged rather than surfaced. Returns false if no approval was pending.
func (g *Gate) Resolve(ctx context.Context, approved bool, message string) bool {
	g.mu.Lock()
	if g.pending == nil {
		g.mu.Unlock()
		return false
	}
	id := g.pending.ID
	g.pending = nil
	g.mu.Unlock()

	decision := &types.ApprovalDecision{Approved: approved, Message: message}

	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		err := g.retry.Execute(func() error {
			return g.api.SubmitApproval(ctx, id, decision)
		})
		if err != nil {
			slog.Error("approval confirmation failed", "approval_id", id, "approved", approved, "error", err)
		}
	}()
	return true
}

// Wait blocks until in-flight confirmations finish. Used by headless
// sessions before exiting.
func (g *Gate) Wait() {
	g.wg.Wait()
}

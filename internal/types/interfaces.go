// internal/types/interfaces.go
package types

import (
	"context"
)

// CreateRequest is the body for creating a new investigation.
type CreateRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
}

// CreateResponse carries the allocated investigation identity.
type CreateResponse struct {
	ID InvestigationID `json:"id"`
}

// LaunchRequest is the body for launching or continuing an investigation.
// SelectedTools is omitted when empty, meaning no tool restriction.
type LaunchRequest struct {
	InvestigationID InvestigationID `json:"investigation_id"`
	UserInput       string          `json:"user_input"`
	SelectedTools   []string        `json:"selected_tools,omitempty"`
}

// LaunchResponse is the backend's immediate reply to a launch or continue.
// It is not a completion signal; completion arrives on the stream.
type LaunchResponse struct {
	Response string `json:"response"`
}

// ApprovalDecision resolves a pending approval.
type ApprovalDecision struct {
	Approved bool   `json:"approved"`
	Message  string `json:"message,omitempty"`
}

// ToolCatalog is the externally discovered tool set, grouped by server.
type ToolCatalog struct {
	Servers map[string]ToolServer `json:"servers"`
}

// ToolServer is one owning group of tools in the catalog.
type ToolServer struct {
	Description string     `json:"description"`
	Tools       []ToolInfo `json:"tools"`
}

// ToolInfo is a single tool entry within a server group.
type ToolInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// InvestigationAPI is the backend investigation surface consumed by the
// session controller.
type InvestigationAPI interface {
	CreateInvestigation(ctx context.Context, req *CreateRequest) (*CreateResponse, error)
	LaunchInvestigation(ctx context.Context, req *LaunchRequest) (*LaunchResponse, error)
	ContinueInvestigation(ctx context.Context, req *LaunchRequest) (*LaunchResponse, error)
	SubmitApproval(ctx context.Context, id ApprovalID, decision *ApprovalDecision) error
	GetTools(ctx context.Context) (*ToolCatalog, error)
}

type SessionStore interface {
	Create(ctx context.Context, record *SessionRecord) error
	Get(ctx context.Context, id SessionID) (*SessionRecord, error)
	List(ctx context.Context) ([]*SessionRecord, error)
	Update(ctx context.Context, record *SessionRecord) error
}

type TranscriptStore interface {
	Append(ctx context.Context, sessionID SessionID, msg *Message) error
	Tail(ctx context.Context, sessionID SessionID, limit int) ([]*Message, error)
	Count(ctx context.Context, sessionID SessionID) (int64, error)
}

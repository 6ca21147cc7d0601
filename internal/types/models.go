// internal/types/models.go
package types

import (
	"encoding/json"
	"time"
)

// Role identifies the author of a transcript message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Message is a single transcript entry. Messages are never mutated after
// creation, only appended. Seq is assigned by the log and increases strictly
// in append order, so entries created within the same tick remain ordered.
type Message struct {
	ID         MessageID       `json:"id"`
	Seq        int64           `json:"seq"`
	Role       Role            `json:"role"`
	Content    string          `json:"content"`
	At         time.Time       `json:"at"`
	ToolUsed   string          `json:"tool_used,omitempty"`
	ToolResult json.RawMessage `json:"tool_result,omitempty"`
}

// ToolDescriptor is one callable capability from the external tool catalog.
type ToolDescriptor struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Server      string `json:"server"`
}

// ActivityStatus is the status reported by an agent activity event.
type ActivityStatus string

const (
	ActivityRunning   ActivityStatus = "running"
	ActivityQueued    ActivityStatus = "queued"
	ActivityCompleted ActivityStatus = "completed"
	ActivityError     ActivityStatus = "error"
)

// AgentActivity is a transient event describing what one agent is doing.
type AgentActivity struct {
	Agent           string          `json:"agent"`
	Action          string          `json:"action"`
	Status          ActivityStatus  `json:"status"`
	InvestigationID InvestigationID `json:"investigation_id,omitempty"`
	Progress        *int            `json:"progress,omitempty"`
	Model           string          `json:"model,omitempty"`
}

// StepStatus is the lifecycle state of a progress step. Transitions are
// monotonic: pending -> running -> completed|error, never backwards.
type StepStatus string

const (
	StepPending   StepStatus = "pending"
	StepRunning   StepStatus = "running"
	StepCompleted StepStatus = "completed"
	StepError     StepStatus = "error"
)

// ProgressStep is one coarse user-visible stage of an investigation run.
type ProgressStep struct {
	Step   string     `json:"step"`
	Status StepStatus `json:"status"`
}

// PendingApproval is a human-in-the-loop checkpoint awaiting a decision.
// At most one is live at any time.
type PendingApproval struct {
	ID   ApprovalID      `json:"approval_id"`
	Type string          `json:"approval_type"`
	Data json.RawMessage `json:"data"`
}

// EnvelopeType discriminates stream envelopes.
type EnvelopeType string

const (
	EnvelopeAgentActivity          EnvelopeType = "agent_activity"
	EnvelopeApprovalRequired       EnvelopeType = "approval_required"
	EnvelopeInvestigationCompleted EnvelopeType = "investigation_completed"
)

// Envelope is one typed event from the backend stream. Data is decoded by
// the consumer according to Type.
type Envelope struct {
	Type EnvelopeType    `json:"type"`
	Data json.RawMessage `json:"data"`
}

// CompletionNotice is the payload of an investigation_completed envelope.
type CompletionNotice struct {
	InvestigationID InvestigationID `json:"investigation_id"`
	Summary         string          `json:"summary,omitempty"`
}

// SessionRecord is the index entry for one launch session.
type SessionRecord struct {
	SessionID       SessionID       `json:"session_id"`
	InvestigationID InvestigationID `json:"investigation_id,omitempty"`
	Title           string          `json:"title"`
	Status          string          `json:"status"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

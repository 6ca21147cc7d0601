// internal/progress/tracker.go

// Package progress derives user-visible phase steps from the stream of
// agent activity events.
package progress

import (
	"strings"
	"sync"

	"github.com/user/tigerwatch/internal/types"
)

// maxRecent caps the most-recent-first activity buffer kept for display.
const maxRecent = 20

// Display is the presentation tuple for one agent role.
type Display struct {
	Label string
	Icon  string
	Color string
}

// phases maps the closed set of known agent roles to their display tuples.
// Unknown agents fall back to defaultDisplay with the event's raw action as
// the label.
var phases = map[string]Display{
	"research_agent":     {Label: "Gathering evidence", Icon: "search", Color: "blue"},
	"analysis_agent":     {Label: "Analyzing findings", Icon: "chart", Color: "purple"},
	"verification_agent": {Label: "Verifying records", Icon: "check", Color: "amber"},
	"report_agent":       {Label: "Compiling report", Icon: "doc", Color: "green"},
}

var defaultDisplay = Display{Icon: "agent", Color: "gray"}

// Lookup returns the display tuple for an agent identifier. The second
// return value reports whether the agent is a known role.
func Lookup(agent string) (Display, bool) {
	d, ok := phases[agent]
	if !ok {
		return defaultDisplay, false
	}
	return d, true
}

// step is one tracked phase with the matching token recorded at creation.
type step struct {
	label  string
	token  string
	status types.StepStatus
}

// Tracker folds agent activity events into an ordered step list with
// monotonic status transitions, plus a bounded recent-activity buffer.
type Tracker struct {
	mu     sync.RWMutex
	steps  []step
	recent []types.AgentActivity
}

// NewTracker creates an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{}
}

// Observe folds one activity event into the step list.
//
// Completion matching is by leading phase token, first match in list order.
// When two agent roles share a leading token the wrong step may be marked
// complete; this is a known precision limit of the coarse phase view, kept
// deliberately loose.
func (t *Tracker) Observe(a types.AgentActivity) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.recent = append([]types.AgentActivity{a}, t.recent...)
	if len(t.recent) > maxRecent {
		t.recent = t.recent[:maxRecent]
	}

	token := leadingToken(a.Agent)
	label := labelFor(a)

	switch a.Status {
	case types.ActivityQueued:
		if t.find(label) < 0 {
			t.steps = append(t.steps, step{label: label, token: token, status: types.StepPending})
		}

	case types.ActivityRunning:
		if i := t.find(label); i >= 0 {
			if t.steps[i].status == types.StepPending {
				t.steps[i].status = types.StepRunning
			}
			return
		}
		t.steps = append(t.steps, step{label: label, token: token, status: types.StepRunning})

	case types.ActivityCompleted:
		t.finish(token, types.StepCompleted)

	case types.ActivityError:
		t.finish(token, types.StepError)
	}
}

// find returns the index of the step with the given label, or -1.
func (t *Tracker) find(label string) int {
	for i := range t.steps {
		if t.steps[i].label == label {
			return i
		}
	}
	return -1
}

// finish marks the first unfinished step sharing the token. Steps already
// in completed/error never regress.
func (t *Tracker) finish(token string, status types.StepStatus) {
	for i := range t.steps {
		if t.steps[i].token != token {
			continue
		}
		if t.steps[i].status == types.StepCompleted || t.steps[i].status == types.StepError {
			continue
		}
		t.steps[i].status = status
		return
	}
}

// Steps returns the ordered phase list.
func (t *Tracker) Steps() []types.ProgressStep {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]types.ProgressStep, len(t.steps))
	for i, s := range t.steps {
		out[i] = types.ProgressStep{Step: s.label, Status: s.status}
	}
	return out
}

// Recent returns the bounded activity buffer, most recent first.
func (t *Tracker) Recent() []types.AgentActivity {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]types.AgentActivity, len(t.recent))
	copy(out, t.recent)
	return out
}

// labelFor maps an event to its phase label: the role table for known
// agents, the raw action otherwise.
func labelFor(a types.AgentActivity) string {
	if d, ok := phases[a.Agent]; ok {
		return d.Label
	}
	if a.Action != "" {
		return a.Action
	}
	return a.Agent
}

// leadingToken returns the first underscore-separated token of an agent
// identifier ("research_agent" -> "research").
func leadingToken(agent string) string {
	if i := strings.IndexByte(agent, '_'); i > 0 {
		return agent[:i]
	}
	return agent
}

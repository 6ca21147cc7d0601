// internal/progress/tracker_test.go
package progress

import (
	"fmt"
	"testing"

	"github.com/user/tigerwatch/internal/types"
)

func TestObserveRunningThenCompleted(t *testing.T) {
	tr := NewTracker()

	tr.Observe(types.AgentActivity{Agent: "research_agent", Status: types.ActivityRunning})
	steps := tr.Steps()
	if len(steps) != 1 {
		t.Fatalf("expected 1 step, got %d", len(steps))
	}
	if steps[0].Step != "Gathering evidence" || steps[0].Status != types.StepRunning {
		t.Errorf("unexpected step: %+v", steps[0])
	}

	tr.Observe(types.AgentActivity{Agent: "research_agent", Status: types.ActivityCompleted})
	steps = tr.Steps()
	if len(steps) != 1 {
		t.Fatalf("expected 1 step after completion, got %d", len(steps))
	}
	if steps[0].Status != types.StepCompleted {
		t.Errorf("expected completed, got %s", steps[0].Status)
	}
}

func TestQueuedCreatesPendingStep(t *testing.T) {
	tr := NewTracker()

	tr.Observe(types.AgentActivity{Agent: "analysis_agent", Status: types.ActivityQueued})
	steps := tr.Steps()
	if len(steps) != 1 || steps[0].Status != types.StepPending {
		t.Fatalf("unexpected steps: %+v", steps)
	}

	// A second queued event for the same phase is a no-op
	tr.Observe(types.AgentActivity{Agent: "analysis_agent", Status: types.ActivityQueued})
	if len(tr.Steps()) != 1 {
		t.Error("duplicate queued event must not add a step")
	}

	tr.Observe(types.AgentActivity{Agent: "analysis_agent", Status: types.ActivityRunning})
	if got := tr.Steps()[0].Status; got != types.StepRunning {
		t.Errorf("expected running, got %s", got)
	}
}

func TestCompletedNeverRegresses(t *testing.T) {
	tr := NewTracker()

	tr.Observe(types.AgentActivity{Agent: "research_agent", Status: types.ActivityRunning})
	tr.Observe(types.AgentActivity{Agent: "research_agent", Status: types.ActivityCompleted})

	// A late or re-delivered running event must not reopen the step
	tr.Observe(types.AgentActivity{Agent: "research_agent", Status: types.ActivityRunning})
	if got := tr.Steps()[0].Status; got != types.StepCompleted {
		t.Errorf("step regressed to %s", got)
	}

	// Same for a duplicate completion after an error elsewhere
	tr.Observe(types.AgentActivity{Agent: "verification_agent", Status: types.ActivityRunning})
	tr.Observe(types.AgentActivity{Agent: "verification_agent", Status: types.ActivityError})
	tr.Observe(types.AgentActivity{Agent: "verification_agent", Status: types.ActivityCompleted})
	steps := tr.Steps()
	if steps[1].Status != types.StepError {
		t.Errorf("errored step changed to %s", steps[1].Status)
	}
}

func TestUnknownAgentUsesActionLabel(t *testing.T) {
	tr := NewTracker()

	tr.Observe(types.AgentActivity{Agent: "triage_agent", Action: "Sorting leads", Status: types.ActivityRunning})
	steps := tr.Steps()
	if len(steps) != 1 || steps[0].Step != "Sorting leads" {
		t.Fatalf("unexpected steps: %+v", steps)
	}

	// Agent identifier is the last resort
	tr.Observe(types.AgentActivity{Agent: "mystery_agent", Status: types.ActivityRunning})
	if got := tr.Steps()[1].Step; got != "mystery_agent" {
		t.Errorf("expected agent identifier label, got %q", got)
	}
}

func TestStepsAppendInArrivalOrder(t *testing.T) {
	tr := NewTracker()

	tr.Observe(types.AgentActivity{Agent: "research_agent", Status: types.ActivityRunning})
	tr.Observe(types.AgentActivity{Agent: "analysis_agent", Status: types.ActivityRunning})
	tr.Observe(types.AgentActivity{Agent: "report_agent", Status: types.ActivityQueued})

	steps := tr.Steps()
	want := []string{"Gathering evidence", "Analyzing findings", "Compiling report"}
	if len(steps) != len(want) {
		t.Fatalf("expected %d steps, got %d", len(want), len(steps))
	}
	for i, label := range want {
		if steps[i].Step != label {
			t.Errorf("position %d: expected %q, got %q", i, label, steps[i].Step)
		}
	}
}

func TestRecentBufferBounded(t *testing.T) {
	tr := NewTracker()

	for i := 0; i < maxRecent+5; i++ {
		tr.Observe(types.AgentActivity{
			Agent:  "research_agent",
			Action: fmt.Sprintf("query %d", i),
			Status: types.ActivityRunning,
		})
	}

	recent := tr.Recent()
	if len(recent) != maxRecent {
		t.Fatalf("expected %d entries, got %d", maxRecent, len(recent))
	}
	// Most recent first
	if recent[0].Action != fmt.Sprintf("query %d", maxRecent+4) {
		t.Errorf("unexpected head entry: %s", recent[0].Action)
	}
}

func TestLookup(t *testing.T) {
	d, ok := Lookup("research_agent")
	if !ok || d.Label != "Gathering evidence" || d.Icon != "search" {
		t.Errorf("unexpected display: %+v ok=%t", d, ok)
	}

	d, ok = Lookup("mystery_agent")
	if ok {
		t.Error("expected unknown agent to report not ok")
	}
	if d.Icon != "agent" || d.Color != "gray" {
		t.Errorf("unexpected fallback display: %+v", d)
	}
}

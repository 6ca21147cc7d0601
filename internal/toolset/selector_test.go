// internal/toolset/selector_test.go
package toolset

import (
	"testing"

	"github.com/user/tigerwatch/internal/types"
)

func catalog() *types.ToolCatalog {
	return &types.ToolCatalog{
		Servers: map[string]types.ToolServer{
			"records": {Tools: []types.ToolInfo{
				{Name: "permit_lookup", Description: "Look up facility permits"},
				{Name: "cites_query", Description: "Query the CITES trade database"},
			}},
			"geo": {Tools: []types.ToolInfo{
				{Name: "satellite_imagery", Description: "Fetch recent satellite imagery"},
			}},
		},
	}
}

func TestLoadFlattensDeterministically(t *testing.T) {
	s := NewSelector()
	s.Load(catalog())

	tools := s.Catalog()
	if len(tools) != 3 {
		t.Fatalf("expected 3 tools, got %d", len(tools))
	}

	// Ordered by server then tool name
	want := []string{"satellite_imagery", "cites_query", "permit_lookup"}
	for i, name := range want {
		if tools[i].Name != name {
			t.Errorf("position %d: expected %s, got %s", i, name, tools[i].Name)
		}
	}
}

func TestToggle(t *testing.T) {
	s := NewSelector()
	s.Load(catalog())

	if !s.Toggle("permit_lookup") {
		t.Error("expected toggle on to return true")
	}
	if !s.Selected("permit_lookup") {
		t.Error("expected permit_lookup selected")
	}
	if s.Toggle("permit_lookup") {
		t.Error("expected toggle off to return false")
	}
	if s.Selected("permit_lookup") {
		t.Error("expected permit_lookup deselected")
	}

	// Unknown names are ignored
	if s.Toggle("no_such_tool") {
		t.Error("expected toggle of unknown tool to return false")
	}
	if s.Selected("no_such_tool") {
		t.Error("unknown tool must never appear selected")
	}
}

func TestSnapshotIsolation(t *testing.T) {
	s := NewSelector()
	s.Load(catalog())
	s.Toggle("permit_lookup")

	snap := s.Snapshot()
	if len(snap) != 1 || snap[0] != "permit_lookup" {
		t.Fatalf("unexpected snapshot: %v", snap)
	}

	// Later toggles must not alter an existing snapshot
	s.Toggle("cites_query")
	if len(snap) != 1 || snap[0] != "permit_lookup" {
		t.Errorf("snapshot mutated by later toggle: %v", snap)
	}
}

func TestSnapshotNilWhenEmpty(t *testing.T) {
	s := NewSelector()
	s.Load(catalog())
	if snap := s.Snapshot(); snap != nil {
		t.Errorf("expected nil snapshot for empty selection, got %v", snap)
	}
}

func TestReloadDropsStaleSelections(t *testing.T) {
	s := NewSelector()
	s.Load(catalog())
	s.Toggle("permit_lookup")
	s.Toggle("satellite_imagery")

	// permit_lookup disappears across the reload
	s.Load(&types.ToolCatalog{
		Servers: map[string]types.ToolServer{
			"geo": {Tools: []types.ToolInfo{
				{Name: "satellite_imagery", Description: "Fetch recent satellite imagery"},
			}},
		},
	})

	if s.Selected("permit_lookup") {
		t.Error("expected stale selection to be dropped")
	}
	if !s.Selected("satellite_imagery") {
		t.Error("expected surviving selection to persist")
	}
	snap := s.Snapshot()
	if len(snap) != 1 || snap[0] != "satellite_imagery" {
		t.Errorf("unexpected snapshot after reload: %v", snap)
	}
}

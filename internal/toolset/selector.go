// internal/toolset/selector.go

// Package toolset holds the externally discovered tool catalog and the
// user's selection constraining what a launched agent pool may invoke.
package toolset

import (
	"sort"
	"sync"

	"github.com/user/tigerwatch/internal/types"
)

// Selector owns the tool catalog and the selected-tools set. The selection
// never contains names absent from the catalog; selections that disappear
// across a reload are dropped silently.
type Selector struct {
	mu       sync.RWMutex
	catalog  []types.ToolDescriptor
	byName   map[string]types.ToolDescriptor
	selected map[string]bool
}

// NewSelector creates an empty Selector. Load populates the catalog.
func NewSelector() *Selector {
	return &Selector{
		byName:   make(map[string]types.ToolDescriptor),
		selected: make(map[string]bool),
	}
}

// Load replaces the catalog with the given fetch result. The server map is
// flattened into a list ordered by server then tool name so snapshots are
// deterministic. Selections whose names are no longer present are dropped.
func (s *Selector) Load(cat *types.ToolCatalog) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.catalog = s.catalog[:0]
	s.byName = make(map[string]types.ToolDescriptor)
	if cat != nil {
		servers := make([]string, 0, len(cat.Servers))
		for name := range cat.Servers {
			servers = append(servers, name)
		}
		sort.Strings(servers)

		for _, server := range servers {
			group := cat.Servers[server]
			tools := make([]types.ToolInfo, len(group.Tools))
			copy(tools, group.Tools)
			sort.Slice(tools, func(i, j int) bool { return tools[i].Name < tools[j].Name })
			for _, t := range tools {
				desc := types.ToolDescriptor{
					Name:        t.Name,
					Description: t.Description,
					Server:      server,
				}
				s.catalog = append(s.catalog, desc)
				s.byName[t.Name] = desc
			}
		}
	}

	for name := range s.selected {
		if _, ok := s.byName[name]; !ok {
			delete(s.selected, name)
		}
	}
}

// Toggle flips membership of the named tool in the selected set. Names not
// in the catalog are ignored. Returns the new membership state.
func (s *Selector) Toggle(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byName[name]; !ok {
		return false
	}
	if s.selected[name] {
		delete(s.selected, name)
		return false
	}
	s.selected[name] = true
	return true
}

// Selected reports whether the named tool is currently selected.
func (s *Selector) Selected(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selected[name]
}

// Catalog returns the tools in deterministic order.
func (s *Selector) Catalog() []types.ToolDescriptor {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]types.ToolDescriptor, len(s.catalog))
	copy(out, s.catalog)
	return out
}

// Snapshot returns the selected tool names as an ordered list, or nil when
// nothing is selected (meaning: no tool restriction). The returned slice is
// a copy; later toggles do not affect it.
func (s *Selector) Snapshot() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.selected) == 0 {
		return nil
	}
	out := make([]string, 0, len(s.selected))
	for _, desc := range s.catalog {
		if s.selected[desc.Name] {
			out = append(out, desc.Name)
		}
	}
	return out
}

// Len returns the catalog size.
func (s *Selector) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.catalog)
}

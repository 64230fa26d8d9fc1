package lint

import (
	"fmt"
	"sort"
	"sync"
)

// registry is the global rule registry.
var registry = struct {
	mu    sync.RWMutex
	rules map[string]RuleDef
}{
	rules: make(map[string]RuleDef),
}

// Register adds a rule definition to the global registry. It panics on
// a duplicate ID; rules register once from init().
func Register(def RuleDef) {
	registry.mu.Lock()
	defer registry.mu.Unlock()

	if _, exists := registry.rules[def.ID]; exists {
		panic(fmt.Sprintf("lint: rule %s registered twice", def.ID))
	}
	registry.rules[def.ID] = def
}

// GetAll returns all registered rules sorted by ID.
func GetAll() []RuleDef {
	registry.mu.RLock()
	defer registry.mu.RUnlock()

	out := make([]RuleDef, 0, len(registry.rules))
	for _, def := range registry.rules {
		out = append(out, def)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// GetByID returns the rule with the given ID.
func GetByID(id string) (RuleDef, bool) {
	registry.mu.RLock()
	defer registry.mu.RUnlock()

	def, ok := registry.rules[id]
	return def, ok
}

// Clear removes all registered rules. Intended for tests.
func Clear() {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	registry.rules = make(map[string]RuleDef)
}

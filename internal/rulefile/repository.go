package rulefile

// Repository exposes lookup over a loaded rule set. The spec treats rule
// storage and deserialization details as external; Repository is the
// narrow contract the Evaluation Orchestrator depends on.
type Repository interface {
	FindAll() []RuleDefinition
	FindByID(id string) (RuleDefinition, bool)
	FindByCategory(cat Category) []RuleDefinition
	FindEnabled() []RuleDefinition
}

// MemoryRepository is the default Repository: an in-memory slice loaded
// once (typically via LoadDir) and queried many times. Grounded on the
// teacher's rulefinder.go, generalized from "index individual/bundle rule
// specs" to "index normalized RuleDefinitions".
type MemoryRepository struct {
	rules []RuleDefinition
	byID  map[string]RuleDefinition
}

// NewMemoryRepository builds a Repository over an already-loaded slice of
// rule definitions. A later rule with a duplicate ID overwrites an earlier
// one in byID lookups but both remain in FindAll/FindByCategory results;
// callers that care about duplicate IDs should check before constructing.
func NewMemoryRepository(rules []RuleDefinition) *MemoryRepository {
	byID := make(map[string]RuleDefinition, len(rules))
	for _, r := range rules {
		byID[r.ID] = r
	}
	return &MemoryRepository{rules: rules, byID: byID}
}

// FindAll returns every loaded rule definition, in load order.
func (r *MemoryRepository) FindAll() []RuleDefinition {
	return r.rules
}

// FindByID looks up a rule by its unique id.
func (r *MemoryRepository) FindByID(id string) (RuleDefinition, bool) {
	rd, ok := r.byID[id]
	return rd, ok
}

// FindByCategory returns every rule in the given category, in load order.
func (r *MemoryRepository) FindByCategory(cat Category) []RuleDefinition {
	var out []RuleDefinition
	for _, rd := range r.rules {
		if rd.Category == cat {
			out = append(out, rd)
		}
	}
	return out
}

// FindEnabled returns every rule with Enabled true, in load order.
func (r *MemoryRepository) FindEnabled() []RuleDefinition {
	var out []RuleDefinition
	for _, rd := range r.rules {
		if rd.Enabled {
			out = append(out, rd)
		}
	}
	return out
}

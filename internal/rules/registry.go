package rules

// Registry holds every compiled Parser, already ordered by agent priority
// descending, and selects the strongest match for a pane.
type Registry struct {
	parsers []*Parser
}

// NewRegistry compiles one Parser per AgentConfig and orders them by
// Priority descending; configs with equal priority keep their input order.
func NewRegistry(configs []AgentConfig) *Registry {
	sorted := make([]AgentConfig, len(configs))
	copy(sorted, configs)
	// stable insertion sort by priority descending — config lists are
	// small (tens of agents at most), so this is plenty fast and keeps
	// ties in authoring order.
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && sorted[j].Priority > sorted[j-1].Priority; j-- {
			sorted[j], sorted[j-1] = sorted[j-1], sorted[j]
		}
	}
	r := &Registry{}
	for _, c := range sorted {
		r.parsers = append(r.parsers, Compile(c))
	}
	return r
}

// FindParser returns the parser with the highest MatchStrength for ev. A
// Strong match short-circuits since parsers are already priority-ordered.
// Returns nil when no parser matches at all.
func (r *Registry) FindParser(ev Evidence) *Parser {
	var best *Parser
	bestStrength := StrengthNone
	for _, p := range r.parsers {
		strength := p.MatchStrength(ev)
		if strength > bestStrength {
			bestStrength = strength
			best = p
			if strength == StrengthStrong {
				return best
			}
		}
	}
	return best
}

// All returns every registered parser.
func (r *Registry) All() []*Parser { return r.parsers }

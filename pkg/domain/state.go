package domain

// ViewState is the user-driven portion of the tree view: which node is active
// and which nodes carry an explicit expand/collapse override.
//
// Expanded is sparse: a present true forces a node open, a present false
// forces it closed, and an absent entry defers to the default policy (nodes on
// the active trail expand implicitly, everything else stays collapsed).
// ActiveID == "" means no node is active.
//
// ViewState is a value. The With* transforms return a new state and never
// mutate the receiver's map, so a binding can hand snapshots to consumers
// without defensive copies.
type ViewState struct {
	ActiveID string          `json:"activeId,omitempty"`
	Expanded map[string]bool `json:"expanded,omitempty"`
}

// Transform computes the next view state from the current one. It is the
// single primitive through which every controller operation rewrites state.
type Transform func(ViewState) ViewState

// NewViewState creates an empty view state.
func NewViewState() ViewState {
	return ViewState{Expanded: make(map[string]bool)}
}

// Effective reports the effective expansion of id: an explicit true wins, and
// nodes on the active trail count as expanded unless explicitly collapsed.
func (s ViewState) Effective(id string, onActiveTrail bool) bool {
	if v, ok := s.Expanded[id]; ok {
		return v
	}
	return onActiveTrail
}

// cloneExpanded copies the override map so transforms stay value-semantic.
func (s ViewState) cloneExpanded() map[string]bool {
	next := make(map[string]bool, len(s.Expanded)+1)
	for k, v := range s.Expanded {
		next[k] = v
	}
	return next
}

// WithExpanded returns s with an explicit override for id. It ignores the
// current derived state: setting true on an already implicitly expanded node
// still records the override.
func WithExpanded(s ViewState, id string, expanded bool) ViewState {
	next := s
	next.Expanded = s.cloneExpanded()
	next.Expanded[id] = expanded
	return next
}

// WithToggled flips the current effective expansion of id. Toggling an
// implicitly expanded active-trail node records an explicit false, so the
// node actually closes instead of bouncing through true.
func WithToggled(s ViewState, id string, onActiveTrail bool) ViewState {
	return WithExpanded(s, id, !s.Effective(id, onActiveTrail))
}

// WithAllExpanded returns s with an explicit true for every id that known
// reports as materialized. Unknown ids are ignored silently.
func WithAllExpanded(s ViewState, ids []string, known func(string) bool) ViewState {
	next := s
	next.Expanded = s.cloneExpanded()
	for _, id := range ids {
		if known == nil || known(id) {
			next.Expanded[id] = true
		}
	}
	return next
}

// WithActiveID returns s with the active node replaced. Re-activating the
// current id is a no-op and returns s unchanged, so bindings comparing states
// by value skip the redundant write.
func WithActiveID(s ViewState, id string) ViewState {
	if s.ActiveID == id {
		return s
	}
	next := s
	next.ActiveID = id
	return next
}

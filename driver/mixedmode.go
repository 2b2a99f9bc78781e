package driver

import interdex "github.com/grittycedar/interdex"

// mixedModeInfo tracks the (at most one) mixed-mode bin's pending class
// names for one run. Classes are named, not resolved, until the driver
// looks them up against its class index — the same "names first, handles
// once indexed" approach as interdex.MixedModeConfig.
type mixedModeInfo struct {
	// order preserves insertion order; pending tracks current membership.
	// A name leaves pending as soon as it's decided (emitted or dropped)
	// but stays in order for iteration filtering.
	order   []string
	pending map[string]struct{}

	canTouchColdstartSet         bool
	canTouchColdstartExtendedSet bool
}

func newMixedModeInfo(cfg interdex.MixedModeConfig) *mixedModeInfo {
	order := append([]string(nil), cfg.PredefinedClassNames...)
	pending := make(map[string]struct{}, len(order))
	for _, n := range order {
		pending[n] = struct{}{}
	}
	return &mixedModeInfo{
		order:                        order,
		pending:                      pending,
		canTouchColdstartSet:         cfg.CanTouchColdstartSet,
		canTouchColdstartExtendedSet: cfg.CanTouchColdstartExtendedSet,
	}
}

func (m *mixedModeInfo) contains(name string) bool {
	_, ok := m.pending[name]
	return ok
}

func (m *mixedModeInfo) remove(name string) {
	delete(m.pending, name)
}

func (m *mixedModeInfo) canTouchInterdexOrder() bool {
	return m.canTouchColdstartSet || m.canTouchColdstartExtendedSet
}

// remainingInInsertionOrder returns the names still pending, in the order
// they first appeared in the mixed-mode config's predefined list.
func (m *mixedModeInfo) remainingInInsertionOrder() []string {
	out := make([]string, 0, len(m.pending))
	for _, n := range m.order {
		if _, ok := m.pending[n]; ok {
			out = append(out, n)
		}
	}
	return out
}

func (m *mixedModeInfo) clear() {
	m.pending = make(map[string]struct{})
}

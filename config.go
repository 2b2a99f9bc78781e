package interdex

// Hard caps on the number of distinct method and field references a
// single bin may carry. These are fixed by the underlying binary format,
// not configurable.
const (
	MethodRefCap = 65535
	FieldRefCap  = 65535
)

// Limits bundles the three capacity budgets a bin is admitted against.
type Limits struct {
	// LinearAllocLimit is the configurable per-bin byte budget.
	LinearAllocLimit int64
	// MethodRefCap and FieldRefCap are normally left at their package
	// defaults (MethodRefCap, FieldRefCap) but are broken out here so
	// tests can exercise the admission predicate at small values.
	MethodRefCap int
	FieldRefCap  int
}

// DefaultLimits returns the fixed 65535/65535 ref caps with the given
// linear-alloc budget.
func DefaultLimits(linearAllocLimit int64) Limits {
	return Limits{
		LinearAllocLimit: linearAllocLimit,
		MethodRefCap:     MethodRefCap,
		FieldRefCap:      FieldRefCap,
	}
}

// DexStatus is a placement status a mixed-mode bin can be flagged with.
type DexStatus int

const (
	FirstColdstartDex DexStatus = iota
	FirstExtendedDex
	ScrollDex
)

// MixedModeConfig is the run's mixed-mode placement policy, expressed in
// terms of class names (resolved to handles once the driver has built its
// name lookup) rather than live class handles, so it can be constructed
// before the universe is indexed.
type MixedModeConfig struct {
	// PredefinedClassNames names the classes that belong in the mixed-mode
	// bin, if one is emitted.
	PredefinedClassNames []string
	// Status is the set of placement statuses that make a bin eligible to
	// be the (single) mixed-mode bin.
	Status map[DexStatus]struct{}
	// CanTouchColdstartSet, if true, allows mixed-mode classes to be
	// moved out of the cold-start region into the mixed-mode bin.
	CanTouchColdstartSet bool
	// CanTouchColdstartExtendedSet, if true, allows mixed-mode classes to
	// be moved out of the extended region.
	CanTouchColdstartExtendedSet bool
}

// HasPredefinedClasses reports whether a mixed-mode bin should be
// produced at all.
func (m MixedModeConfig) HasPredefinedClasses() bool {
	return len(m.PredefinedClassNames) > 0
}

// HasStatus reports whether s is one of the statuses that makes a bin
// eligible for mixed-mode placement.
func (m MixedModeConfig) HasStatus(s DexStatus) bool {
	_, ok := m.Status[s]
	return ok
}

// BinConfig tracks the region flags accumulated for the bin currently
// being filled. It resets to its zero value on every bin transition;
// IsExtendedSet and HasScrollCls accumulate via logical OR across the
// classes admitted into one bin.
type BinConfig struct {
	IsColdstart    bool
	IsExtendedSet  bool
	HasScrollCls   bool
}

// Reset clears all region flags, as happens on a new-bin transition.
func (b *BinConfig) Reset() {
	*b = BinConfig{}
}

// Config bundles every run-time flag named in spec §6.
type Config struct {
	// LinearAllocLimit is the configurable per-bin byte budget (LA_LIMIT).
	LinearAllocLimit int64
	// EmitCanaries, when true, inserts a synthetic canary marker class
	// into every secondary bin.
	EmitCanaries bool
	// EmitScrollSetMarker, when true, forces a bin boundary at
	// ScrollListEnd and tracks how many bins carried scroll classes.
	EmitScrollSetMarker bool
	// StaticPruneClasses, when true, runs the cold-start liveness prune;
	// when false the prune is skipped entirely (no classes are dropped).
	StaticPruneClasses bool
	// NormalPrimaryDex selects which of the two primary-dex placement
	// strategies of spec §4.6 Phase 1 the driver uses.
	NormalPrimaryDex bool
	// MixedMode configures the (at most one) mixed-mode bin.
	MixedMode MixedModeConfig
}

// DefaultConfig returns a Config with canaries and scroll markers off, no
// pruning, the primary dex treated as a normal dex, and no mixed-mode
// classes — the least surprising starting point for a caller building one
// up field by field.
func DefaultConfig(linearAllocLimit int64) Config {
	return Config{
		LinearAllocLimit: linearAllocLimit,
		NormalPrimaryDex: true,
	}
}

// Limits derives the three-budget Limits from this Config.
func (c Config) Limits() Limits {
	return DefaultLimits(c.LinearAllocLimit)
}

package interdex

// Kind classifies a packer error so callers can branch on intent rather
// than message text. It mirrors the failure taxonomy of the packer's
// design: capacity-fatal and invariant-fatal conditions surface through an
// *Error of the matching Kind; lookup-missing, ref-undercount and
// synthesis-recovered conditions are recoverable and never returned as
// errors by this module — they go through Diagnostics instead (see
// diagnostics.go).
type Kind int

const (
	// KindCapacity marks a bin admission that would overflow a cap in a
	// context where overflow cannot be resolved by starting a new bin
	// (the primary bin, or the bin count ceiling).
	KindCapacity Kind = iota
	// KindInvariant marks a violation of a structural invariant the
	// driver relies on, such as emitting a second mixed-mode bin or
	// stranding a mixed-mode class that neither touch flag permits
	// moving.
	KindInvariant
	// KindLookup marks a priority-list entry that resolves to nothing.
	// Implementations should prefer routing this through Diagnostics
	// (it is recoverable, per spec), but the Kind exists so a caller
	// that does treat lookups as fatal has a home for it.
	KindLookup
)

// Error is a typed packer error with an optional underlying cause.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// Sentinels returned by the driver and flusher for the fatal conditions
// named in spec §7.
var (
	// ErrPrimaryOverflow indicates a class would overflow the primary
	// bin, which is never allowed to flush mid-admission.
	ErrPrimaryOverflow = &Error{Kind: KindCapacity, Msg: "class would overflow primary bin"}
	// ErrTooManyBins indicates a canary was needed for a bin whose index in
	// the output (primary bin included) is above MaxDexNum (99), which the
	// two-digit canary numbering scheme cannot encode.
	ErrTooManyBins = &Error{Kind: KindCapacity, Msg: "secondary bin count exceeds 99"}
	// ErrMixedModeReused indicates a second mixed-mode bin would be
	// emitted in the same run; at most one is ever allowed.
	ErrMixedModeReused = &Error{Kind: KindInvariant, Msg: "mixed-mode bin already emitted this run"}
	// ErrMixedModeStranded indicates a cold-start mixed-mode class would
	// land in extended territory with neither touch flag set, so it can
	// be neither kept in place nor moved.
	ErrMixedModeStranded = &Error{Kind: KindInvariant, Msg: "mixed-mode class stranded between coldstart and extended regions"}
)

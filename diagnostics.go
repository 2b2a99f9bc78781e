package interdex

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/exp/maps"
)

// DiagnosticKind labels a non-fatal event the packer wants to surface to
// whatever logging facility the host application uses. Logging itself is
// an external collaborator (see spec §1); the packer only ever produces
// these records.
type DiagnosticKind int

const (
	// DiagLookupMissing: a priority-list entry did not resolve to a
	// known class or marker and was skipped.
	DiagLookupMissing DiagnosticKind = iota
	// DiagRefUndercount: the sanity check found a ref in a sealed bin's
	// classes that the accumulated ref set never saw, meaning a plugin
	// under-reported refs during GatherRefs.
	DiagRefUndercount
	// DiagCanarySynthesized: no pre-existing class matched a bin's
	// expected canary name, so one was minted on the fly.
	DiagCanarySynthesized
	// DiagClassSkipped: a plugin's ShouldSkipClass vetoed a class. Classes
	// skipped because the pruner found them unreferenced are counted in
	// Counters.SkippedInSecondary instead and produce no record.
	DiagClassSkipped
	// DiagBinSealed: a bin was finalized; Detail carries a human summary.
	DiagBinSealed
	// DiagDexTerminatedByMarker: a DexEndMarker0/1 entry in the priority
	// list forced a bin boundary. Matches original_source's
	// TRACE(IDEX, 1, "Terminating dex due to DexEndMarker\n").
	DiagDexTerminatedByMarker
	// DiagMixedModeDexEmitted: the mixed-mode bin was emitted between the
	// cold-start set and the extended set at LDexEndMarker1;. Matches
	// original_source's TRACE(IDEX, 3, "Emitting the mixed mode dex...").
	DiagMixedModeDexEmitted
	// DiagScrollDexSeparated: LScrollListEnd; forced a dedicated bin
	// boundary for the scroll classes seen so far.
	DiagScrollDexSeparated
)

// Diagnostic is a single structured event.
type Diagnostic struct {
	Kind   DiagnosticKind
	Detail string
	// ClassName is the descriptor of the class the diagnostic concerns,
	// when applicable. Empty otherwise.
	ClassName string
}

// Diagnostics receives Diagnostic records as the packer produces them. A
// nil Diagnostics is legal everywhere it's accepted and discards records.
type Diagnostics interface {
	Record(Diagnostic)
}

// Record is a helper that tolerates a nil sink, since every call site in
// this module holds a Diagnostics field that may not have been set.
func Record(d Diagnostics, diag Diagnostic) {
	if d == nil {
		return
	}
	d.Record(diag)
}

// SliceDiagnostics accumulates every record into a slice. It's the
// simplest Diagnostics implementation and is what the test suite uses to
// assert on emitted diagnostics.
type SliceDiagnostics struct {
	Records []Diagnostic
}

func (s *SliceDiagnostics) Record(d Diagnostic) {
	s.Records = append(s.Records, d)
}

// Summarize renders a stable, one-line digest of every recorded
// diagnostic, grouped by kind and sorted for reproducible log output.
func (s *SliceDiagnostics) Summarize() string {
	counts := make(map[DiagnosticKind]int)
	for _, d := range s.Records {
		counts[d.Kind]++
	}
	kinds := maps.Keys(counts)
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })

	var b strings.Builder
	for i, k := range kinds {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s=%d", kindName(k), counts[k])
	}
	return b.String()
}

func kindName(k DiagnosticKind) string {
	switch k {
	case DiagLookupMissing:
		return "lookup_missing"
	case DiagRefUndercount:
		return "ref_undercount"
	case DiagCanarySynthesized:
		return "canary_synthesized"
	case DiagClassSkipped:
		return "class_skipped"
	case DiagBinSealed:
		return "bin_sealed"
	case DiagDexTerminatedByMarker:
		return "dex_terminated_by_marker"
	case DiagMixedModeDexEmitted:
		return "mixed_mode_dex_emitted"
	case DiagScrollDexSeparated:
		return "scroll_dex_separated"
	default:
		return "unknown"
	}
}

package interdex

import (
	"fmt"
	"strings"
)

// Marker name literals, matching the underlying binary format's naming
// convention exactly (see spec §6). These are the only priority-list
// entries that don't correspond to a real class.
const (
	DexEndMarker0   = "LDexEndMarker0;"
	DexEndMarker1   = "LDexEndMarker1;"
	ScrollListStart = "LScrollListStart;"
	ScrollListEnd   = "LScrollListEnd;"

	// dexEndMarkerSubstr is what the driver actually tests for when
	// deciding whether a missing priority-list entry should trigger a
	// bin flush: substring containment, not exact equality, per the
	// Design Notes. Both DexEndMarker0 and DexEndMarker1 contain it.
	dexEndMarkerSubstr = "DexEndMarker"

	// canaryPrefix identifies a synthetic canary class; emit_class
	// unconditionally skips any class whose name starts with this.
	canaryPrefix = "Lsecondary/dex"
	// canaryFormat is the printf-style template for a canary at a given
	// secondary bin index (0-based, matching the bin's position in the
	// output slice at flush time).
	canaryFormat = "Lsecondary/dex%02d/Canary;"
	// MaxDexNum is the largest bin index a canary name can encode.
	MaxDexNum = 99
)

// IsDexEndMarkerName reports whether name should be treated as a
// dex-end-marker flush signal. The driver uses substring containment here
// deliberately (see spec §9's Design Notes): both DexEndMarker0 and
// DexEndMarker1 match.
func IsDexEndMarkerName(name string) bool {
	return strings.Contains(name, dexEndMarkerSubstr)
}

// IsCanaryName reports whether name identifies a canary marker class.
func IsCanaryName(name string) bool {
	return strings.HasPrefix(name, canaryPrefix)
}

// CanaryName formats the canary class name for the bin that will occupy
// index outdexSize in the output slice at flush time.
func CanaryName(outdexSize int) string {
	return fmt.Sprintf(canaryFormat, outdexSize)
}

package interdex

import "github.com/grittycedar/interdex/class"

// Bin is one sealed output dex: an ordered, immutable list of classes.
// Bin index 0 in a Result's Bins is always the primary bin.
type Bin struct {
	Classes []class.Class
}

// Result is everything a packer run produces: the ordered bins plus the
// side-effect counters named in spec §6.
type Result struct {
	Bins     []Bin
	Counters Counters
}

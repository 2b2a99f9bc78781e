// Package flush finalizes a bin: it synthesizes and places a secondary
// bin's canary marker, gives plugins a last chance to append classes,
// runs the advisory ref sanity check, and seals the bin into the run's
// output.
package flush

// Package track holds the mutable state accumulated while filling a single
// bin: which classes have been admitted, the running ref-set and
// linear-alloc estimate (delegated to alloc.RefSet), and the run-wide
// name→class index and already-emitted set that survive across bins.
package track

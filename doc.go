// Package interdex holds the types shared across the packer's
// sub-packages: the typed error taxonomy, run configuration, diagnostic
// records, marker-name literals, and the output bin/counters shapes.
//
// It exists so that alloc, prune, track, flush, plugin, and driver can all
// depend on one small, cycle-free vocabulary instead of on each other.
package interdex

// Package driver implements the packer's main state machine: it walks the
// priority list, interprets region markers, applies primary-dex policy,
// emits the cold-start / extended / scroll / mixed-mode regions, and
// finally appends whatever classes never appeared in the priority list at
// all. It is the only package that wires alloc, prune, track, flush, and
// plugin together.
package driver

// Package prune implements the cold-start liveness fixed point: given a
// seed set of classes drawn from the priority list, it iteratively
// removes classes that no longer have any cold-to-cold reference,
// converging when a round finds nothing new to remove.
//
// The instruction-level scan at the heart of each round is embarrassingly
// parallel across the classes being scanned, and spec §5 explicitly
// allows the walker to exploit that internally as long as it presents a
// fully-observed result before returning. This package shards that scan
// across a bounded errgroup.Group.
package prune

package prune

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/grittycedar/interdex/class"
)

// Lookup resolves a descriptor name to its class, mirroring the driver's
// name→class index. It returns false for markers and for names with no
// backing declaration.
type Lookup func(name string) (class.Class, bool)

// Prune runs the cold-start liveness fixed point of spec §4.3 and returns
// the subset of the cold-start seed set that has no remaining cold-to-cold
// reference and is safe to drop. If staticPruneClasses is false, pruning
// is skipped entirely and an empty set is returned, matching the source's
// short-circuit.
func Prune(ctx context.Context, scope []class.Class, lookup Lookup, order []string, staticPruneClasses bool) (map[class.Class]struct{}, error) {
	result, _, err := pruneRounds(ctx, scope, lookup, order, staticPruneClasses)
	return result, err
}

// pruneRounds is Prune's fixed point with the round-by-round unreferenced
// count exposed alongside the final result, so the termination invariant
// (the count never shrinks between rounds) can be verified directly rather
// than inferred from end-state membership alone.
func pruneRounds(ctx context.Context, scope []class.Class, lookup Lookup, order []string, staticPruneClasses bool) (map[class.Class]struct{}, []int, error) {
	if !staticPruneClasses {
		return map[class.Class]struct{}{}, nil, nil
	}

	coldstart := make(map[class.Class]struct{})
	for _, name := range order {
		if c, ok := lookup(name); ok {
			coldstart[c] = struct{}{}
		}
	}

	inputScope := append([]class.Class(nil), scope...)
	unreferenced := make(map[class.Class]struct{})
	prevCount := -1
	var rounds []int

	for {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}

		coldRefs, err := gatherColdRefs(ctx, inputScope, coldstart, lookup)
		if err != nil {
			return nil, nil, err
		}

		// Anything reachable from outside the managed world is
		// conservatively live, regardless of coldstart membership.
		for _, k := range scope {
			if !k.Renameable() {
				coldRefs[k] = struct{}{}
			}
		}

		// Structural (non-instruction) type references propagate
		// liveness transitively, but only from classes still under
		// consideration this round.
		propagateStructuralRefs(inputScope, coldRefs, lookup)

		var nextInput []class.Class
		for k := range coldstart {
			if k.Renameable() {
				if _, live := coldRefs[k]; !live {
					unreferenced[k] = struct{}{}
					continue
				}
			}
			nextInput = append(nextInput, k)
		}

		newCount := len(unreferenced)
		rounds = append(rounds, newCount)
		if newCount == prevCount {
			return unreferenced, rounds, nil
		}
		prevCount = newCount
		inputScope = nextInput
	}
}

// gatherColdRefs performs one round's instruction scan: for every class in
// inputScope that is also in coldstart, walk its methods' instructions and
// record any cold-start class they reference other than their own
// declaring class. The scan is sharded across a bounded worker pool since
// each class's contribution is independent.
func gatherColdRefs(ctx context.Context, inputScope []class.Class, coldstart map[class.Class]struct{}, lookup Lookup) (map[class.Class]struct{}, error) {
	shards := shardCount(len(inputScope))
	partials := make([]map[class.Class]struct{}, shards)

	g, gctx := errgroup.WithContext(ctx)
	shardSize := (len(inputScope) + shards - 1) / shards
	for s := 0; s < shards; s++ {
		s := s
		start := s * shardSize
		end := start + shardSize
		if start >= len(inputScope) {
			continue
		}
		if end > len(inputScope) {
			end = len(inputScope)
		}
		g.Go(func() error {
			local := make(map[class.Class]struct{})
			for _, c := range inputScope[start:end] {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				if _, ok := coldstart[c]; !ok {
					continue
				}
				scanClassInstructions(c, coldstart, lookup, local)
			}
			partials[s] = local
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := make(map[class.Class]struct{})
	for _, p := range partials {
		for k := range p {
			merged[k] = struct{}{}
		}
	}
	return merged, nil
}

func scanClassInstructions(c class.Class, coldstart map[class.Class]struct{}, lookup Lookup, into map[class.Class]struct{}) {
	all := make([]class.Method, 0, len(c.DirectMethods())+len(c.VirtualMethods()))
	all = append(all, c.DirectMethods()...)
	all = append(all, c.VirtualMethods()...)

	for _, m := range all {
		for _, instr := range m.Instructions() {
			target, ok := resolveInstructionTarget(instr, lookup)
			if !ok || target == c {
				continue
			}
			if _, inColdstart := coldstart[target]; inColdstart {
				into[target] = struct{}{}
			}
		}
	}
}

func resolveInstructionTarget(instr class.Instruction, lookup Lookup) (class.Class, bool) {
	switch {
	case instr.HasMethod():
		return lookup(instr.Method().DeclaringType().Name())
	case instr.HasField():
		return lookup(instr.Field().DeclaringType().Name())
	case instr.HasType():
		return lookup(instr.TypeRef().Name())
	default:
		return nil, false
	}
}

// propagateStructuralRefs extends coldRefs with the classes structurally
// referenced (super, interfaces, field/method signatures — not
// instructions) by any class in inputScope that is itself already known
// live this round.
func propagateStructuralRefs(inputScope []class.Class, coldRefs map[class.Class]struct{}, lookup Lookup) {
	for _, k := range inputScope {
		if _, live := coldRefs[k]; !live {
			continue
		}
		for _, t := range k.GatherTypes() {
			if rc, ok := lookup(t.Name()); ok {
				coldRefs[rc] = struct{}{}
			}
		}
	}
}

func shardCount(n int) int {
	if n == 0 {
		return 1
	}
	max := runtime.GOMAXPROCS(0)
	if max < 1 {
		max = 1
	}
	if n < max {
		return n
	}
	return max
}

package prune

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/grittycedar/interdex/class"
)

type chainType struct{ name string }

func (t chainType) Name() string { return t.name }
func (t chainType) typ()         {}

type chainInstr struct{ target class.Type }

func (chainInstr) HasMethod() bool         { return false }
func (chainInstr) Method() class.MethodRef { return nil }
func (chainInstr) HasField() bool          { return false }
func (chainInstr) Field() class.FieldRef   { return nil }
func (i chainInstr) HasType() bool         { return true }
func (i chainInstr) TypeRef() class.Type   { return i.target }

type chainMethod struct{ instrs []class.Instruction }

func (m chainMethod) Static() bool                      { return false }
func (m chainMethod) Instructions() []class.Instruction { return m.instrs }

// chainClass references exactly one other class by name, letting a fixture
// wire up a strict linear reference chain: A -> B -> C -> D.
type chainClass struct {
	name string
	ref  string
}

func (c *chainClass) Name() string      { return c.name }
func (c *chainClass) Super() class.Type { return nil }
func (c *chainClass) Interface() bool   { return false }
func (c *chainClass) DirectMethods() []class.Method {
	if c.ref == "" {
		return nil
	}
	return []class.Method{chainMethod{instrs: []class.Instruction{chainInstr{target: chainType{name: c.ref}}}}}
}
func (c *chainClass) VirtualMethods() []class.Method   { return nil }
func (c *chainClass) InstanceFields() []class.Field    { return nil }
func (c *chainClass) GatherMethods() []class.MethodRef { return nil }
func (c *chainClass) GatherFields() []class.FieldRef   { return nil }
func (c *chainClass) GatherTypes() []class.Type        { return nil }
func (c *chainClass) Renameable() bool                 { return true }

// TestPruneRounds_UnreferencedCountIsMonotonicNonDecreasing exercises the
// fixed point's internal round trace directly. In a linear reference chain
// A -> B -> C -> D with nothing pointing into A from outside, a class only
// becomes unreferenced once the round before dropped its sole referrer, so
// the count climbs by exactly one for several consecutive rounds before
// flattening out at convergence. It must never fall.
func TestPruneRounds_UnreferencedCountIsMonotonicNonDecreasing(t *testing.T) {
	a := &chainClass{name: "LA;", ref: "LB;"}
	b := &chainClass{name: "LB;", ref: "LC;"}
	c := &chainClass{name: "LC;", ref: "LD;"}
	d := &chainClass{name: "LD;"}
	scope := []class.Class{a, b, c, d}

	byName := map[string]class.Class{"LA;": a, "LB;": b, "LC;": c, "LD;": d}
	lookup := func(name string) (class.Class, bool) {
		got, ok := byName[name]
		return got, ok
	}

	final, rounds, err := pruneRounds(context.Background(), scope, lookup, []string{"LA;", "LB;", "LC;", "LD;"}, true)

	require.NoError(t, err)
	require.Len(t, final, 4, "the whole chain is eventually unreferenced")
	require.GreaterOrEqual(t, len(rounds), 2, "a linear chain of this length must take more than one round to resolve")

	for i := 1; i < len(rounds); i++ {
		require.GreaterOrEqual(t, rounds[i], rounds[i-1], "unreferenced count must never shrink between rounds")
	}
	require.Equal(t, rounds[len(rounds)-1], rounds[len(rounds)-2], "the trace's final two rounds are the converged fixed point")
}

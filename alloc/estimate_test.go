package alloc_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/grittycedar/interdex/alloc"
	"github.com/grittycedar/interdex/class"
)

type fakeType struct{ name string }

func (t fakeType) Name() string { return t.name }
func (t fakeType) typ()         {}

type fakeMethod struct {
	static bool
}

func (m fakeMethod) Static() bool                       { return m.static }
func (m fakeMethod) Instructions() []class.Instruction  { return nil }

type fakeClass struct {
	name       string
	super      class.Type
	iface      bool
	direct     []class.Method
	virtual    []class.Method
	ifields    []class.Field
}

func (c fakeClass) Name() string                    { return c.name }
func (c fakeClass) Super() class.Type                { return c.super }
func (c fakeClass) Interface() bool                  { return c.iface }
func (c fakeClass) DirectMethods() []class.Method    { return c.direct }
func (c fakeClass) VirtualMethods() []class.Method   { return c.virtual }
func (c fakeClass) InstanceFields() []class.Field    { return c.ifields }
func (c fakeClass) GatherMethods() []class.MethodRef { return nil }
func (c fakeClass) GatherFields() []class.FieldRef   { return nil }
func (c fakeClass) GatherTypes() []class.Type        { return nil }
func (c fakeClass) Renameable() bool                 { return true }

func methods(n int) []class.Method {
	out := make([]class.Method, n)
	for i := range out {
		out[i] = fakeMethod{}
	}
	return out
}

func fields(n int) []class.Field {
	out := make([]class.Field, n)
	for i := range out {
		out[i] = nil
	}
	return out
}

func TestEstimateLinearAlloc_PlainClass(t *testing.T) {
	c := fakeClass{
		name:    "Lcom/example/Foo;",
		direct:  methods(2),
		virtual: methods(3),
		ifields: fields(4),
	}
	// vtable: 48 + 3*4 = 60; methods: (2+3)*52 = 260; fields: 4*16 = 64
	require.EqualValues(t, 60+260+64, alloc.EstimateLinearAlloc(c))
}

func TestEstimateLinearAlloc_Interface(t *testing.T) {
	c := fakeClass{
		name:    "Lcom/example/IFoo;",
		iface:   true,
		direct:  methods(1),
		virtual: methods(1),
	}
	// no vtable penalty for interfaces: (1+1)*52 = 104
	require.EqualValues(t, 104, alloc.EstimateLinearAlloc(c))
}

func TestEstimateLinearAlloc_OwnSuffixPenalty(t *testing.T) {
	c := fakeClass{name: "Lcom/example/MyView;"}
	require.EqualValues(t, 1500, alloc.EstimateLinearAlloc(c))
}

func TestEstimateLinearAlloc_ViewGroupBeatsView(t *testing.T) {
	c := fakeClass{name: "Lcom/example/MyViewGroup;"}
	require.EqualValues(t, 1800, alloc.EstimateLinearAlloc(c))
}

func TestEstimateLinearAlloc_FallsBackToSuperSuffix(t *testing.T) {
	c := fakeClass{
		name:  "Lcom/example/Unremarkable;",
		super: fakeType{name: "Landroid/app/Activity;"},
	}
	require.EqualValues(t, 1500, alloc.EstimateLinearAlloc(c))
}

func TestEstimateLinearAlloc_NoMatchNoSuper(t *testing.T) {
	c := fakeClass{name: "Lcom/example/Plain;"}
	require.EqualValues(t, 48, alloc.EstimateLinearAlloc(c))
}

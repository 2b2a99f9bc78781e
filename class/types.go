package class

// MethodRef, FieldRef, and Type are opaque, hashable handles. Two refs
// obtained from different classes compare equal (via ==) iff they refer to
// the same underlying declaration; implementations are expected to intern
// these so identity comparison is sufficient.
type (
	// MethodRef is a hashable handle onto a referenced method declaration.
	// DeclaringType lets the cold-start pruner map a reference back to the
	// class that declares it, the way the original tool's type_class()
	// resolves a DexType* through the global class registry — here it's
	// just a name away from the packer's own by-name lookup.
	MethodRef interface {
		DeclaringType() Type
		methodRef()
	}
	// FieldRef is a hashable handle onto a referenced field declaration.
	FieldRef interface {
		DeclaringType() Type
		fieldRef()
	}
)

// Type is a hashable handle onto a type reference. Unlike MethodRef and
// FieldRef, its descriptor name is observable: the linear-alloc estimator
// needs a class's super-class name to apply the vtable-penalty suffix
// table (spec §4.2).
type Type interface {
	Name() string
}

// Field is an opaque handle onto a declared instance field. The packer
// never inspects a field beyond counting it for the linear-alloc estimate.
type Field interface{}

// Instruction is the minimal capability the cold-start pruner needs from a
// single bytecode instruction. Enumerating a method's instructions is the
// job of the intermediate-code walker, an external collaborator; this
// module only inspects the references an already-produced instruction
// carries.
type Instruction interface {
	// HasMethod reports whether this instruction carries a method reference.
	HasMethod() bool
	// Method returns the referenced method. Only valid if HasMethod is true.
	Method() MethodRef

	// HasField reports whether this instruction carries a field reference.
	HasField() bool
	// Field returns the referenced field. Only valid if HasField is true.
	Field() FieldRef

	// HasType reports whether this instruction carries a bare type reference.
	HasType() bool
	// TypeRef returns the referenced type. Only valid if HasType is true.
	TypeRef() Type
}

// Method is a declared method, direct or virtual.
type Method interface {
	// Static reports whether this is a static direct method.
	Static() bool
	// Instructions yields the instructions of this method's code, in the
	// order they were emitted. A method with no code (abstract, native)
	// yields nothing.
	Instructions() []Instruction
}

// Class is an opaque handle onto a single class in the universe being
// packed. The packer mutates neither a Class's contents nor its identity.
type Class interface {
	// Name returns the fully-qualified descriptor of this class, e.g.
	// "Lcom/example/Foo;".
	Name() string

	// Super returns the super-class's type, or nil for a class with no
	// super (only java/lang/Object should ever lack one, and even that
	// case is normally represented with the Object type itself).
	Super() Type

	// Interface reports whether this class is an interface.
	Interface() bool

	// DirectMethods returns this class's direct (static + private +
	// constructor) methods.
	DirectMethods() []Method
	// VirtualMethods returns this class's virtual (dispatchable) methods.
	VirtualMethods() []Method
	// InstanceFields returns this class's declared instance fields.
	InstanceFields() []Field

	// GatherMethods returns every method reference this class's members
	// mention: method calls, invoked super calls, and the methods it
	// itself declares are all fair game for the underlying implementation
	// to include, since the packer only cares about the union.
	GatherMethods() []MethodRef
	// GatherFields returns every field reference this class's members
	// mention.
	GatherFields() []FieldRef
	// GatherTypes returns every type this class structurally references
	// (super, interfaces, field types, method signatures) — not the types
	// touched only by instructions inside method bodies.
	GatherTypes() []Type

	// Renameable reports whether this class is reachable exclusively from
	// managed call sites, and therefore safe to prune or reorder. false
	// means the class is reachable from outside the managed world (JNI,
	// reflection roots, manifest components, ...) and must be treated as
	// conservatively live.
	Renameable() bool
}

// AccessFlags is a bitmask of the Dalvik-style access flags a synthetic
// class can be created with.
type AccessFlags uint32

const (
	AccPublic    AccessFlags = 0x0001
	AccInterface AccessFlags = 0x0200
	AccAbstract  AccessFlags = 0x0400
)

// ClassFactory materializes classes that don't exist yet in the universe.
// The packer calls it exactly once per run at most, and only to mint a
// canary marker class whose name has no backing declaration.
type ClassFactory interface {
	MakeSyntheticClass(name string, flags AccessFlags, super Type) Class
}

// AssetWriter opens an append-only sink for a named side-channel asset
// file. The packer uses it solely to record which canary identifies the
// mixed-mode bin.
type AssetWriter interface {
	NewAssetFile(name string) (Appender, error)
}

// Appender is an append-only byte sink.
type Appender interface {
	Write(p []byte) (n int, err error)
}

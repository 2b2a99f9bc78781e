package plugin

import "github.com/grittycedar/interdex/class"

// Bin mirrors the shape the driver hands back to a plugin once a dex has
// been sealed. Plugins never see the root package's Bin directly, to keep
// this package free of an import cycle with the root package.
type Bin struct {
	Classes []class.Class
}

// RefGatherer contributes additional method/field refs a class implies
// beyond what class.Class.GatherMethods/GatherFields already report —
// refs a plugin's own transform will introduce once the class is written
// out, for example.
type RefGatherer interface {
	GatherRefs(c class.Class, mrefs *[]class.MethodRef, frefs *[]class.FieldRef)
}

// ClassSkipper vetoes placing a class into any bin at all.
type ClassSkipper interface {
	ShouldSkipClass(c class.Class) bool
}

// ClassAppender contributes classes of its own once a bin's ordinary
// placement pass is done, given the bins already sealed and the current
// bin's contents so far.
type ClassAppender interface {
	AdditionalClasses(outdexSoFar []Bin, currentOuts []class.Class) []class.Class
}

// LeftoverProvider supplies a final batch of classes once the priority
// list and the whole class universe have been walked. They join the last
// bin, whose AdditionalClasses pass runs after them when it is sealed.
// Used for classes a plugin only knows about after observing the whole run.
type LeftoverProvider interface {
	LeftoverClasses() []class.Class
}

// Plugin is the minimal identity every extension must carry. It grants no
// capability on its own — the driver recovers RefGatherer, ClassSkipper,
// ClassAppender, and LeftoverProvider from a Plugin value with independent
// type assertions, so a plugin implementing only one of the four need not
// stub the rest.
type Plugin interface {
	Name() string
}

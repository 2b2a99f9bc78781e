package driver

import (
	"context"

	interdex "github.com/grittycedar/interdex"
	"github.com/grittycedar/interdex/alloc"
	"github.com/grittycedar/interdex/class"
	"github.com/grittycedar/interdex/flush"
	"github.com/grittycedar/interdex/plugin"
	"github.com/grittycedar/interdex/prune"
	"github.com/grittycedar/interdex/track"
)

// Driver holds the collaborators a run needs but that don't themselves
// carry run-local state: the config, the plugin list, and the two
// facilities a canary/asset write requires. Everything that changes
// during a single Run call — counters, the class index, the mixed-mode
// working set — lives in a run built fresh by Run itself, never on Driver.
type Driver struct {
	Config      interdex.Config
	Plugins     []plugin.Plugin
	Factory     class.ClassFactory
	Assets      class.AssetWriter
	Diagnostics interdex.Diagnostics
}

// New builds a Driver from its run-independent collaborators.
func New(cfg interdex.Config, plugins []plugin.Plugin, factory class.ClassFactory, assets class.AssetWriter, diags interdex.Diagnostics) *Driver {
	return &Driver{
		Config:      cfg,
		Plugins:     plugins,
		Factory:     factory,
		Assets:      assets,
		Diagnostics: diags,
	}
}

// run bundles one Run call's mutable state.
type run struct {
	d            *Driver
	counters     *interdex.Counters
	flusher      *flush.Flusher
	clookup      map[string]class.Class
	unreferenced map[class.Class]struct{}
	mixedMode    *mixedModeInfo
}

// Run partitions dexen's flattened classes into an ordered sequence of
// bins according to priority, the configured policy, and the plugin set.
// dexen[0] is treated as the primary dex; every other entry's grouping is
// informational only once Phase 2 begins — the priority list and the
// three-budget admission rule (not the original partition) decide where
// classes actually land.
func (d *Driver) Run(ctx context.Context, dexen [][]class.Class, priority []string) (interdex.Result, error) {
	counters := &interdex.Counters{}
	r := &run{
		d:         d,
		counters:  counters,
		flusher:   flush.New(d.Factory, d.Assets, d.Plugins, d.Diagnostics, counters, d.Config),
		clookup:   make(map[string]class.Class),
		mixedMode: newMixedModeInfo(d.Config.MixedMode),
	}
	var scope []class.Class
	for _, dex := range dexen {
		for _, c := range dex {
			r.clookup[c.Name()] = c
			scope = append(scope, c)
		}
	}

	// A synthesized canary needs a super-class handle; borrow the Type
	// seen on any class that directly extends java/lang/Object rather
	// than requiring Object itself to appear in the universe as a Class.
	for _, c := range scope {
		if s := c.Super(); s != nil && s.Name() == "Ljava/lang/Object;" {
			r.flusher.ObjectSuper = s
			break
		}
	}

	unreferenced, err := prune.Prune(ctx, scope, func(name string) (class.Class, bool) {
		c, ok := r.clookup[name]
		return c, ok
	}, priority, d.Config.StaticPruneClasses)
	if err != nil {
		return interdex.Result{}, err
	}
	r.unreferenced = unreferenced

	lookup := r.clookup
	emitted := make(map[class.Class]struct{})
	mainTracker := track.New(lookup, emitted)

	var outdex []interdex.Bin
	var primaryDex []class.Class
	if len(dexen) > 0 {
		primaryDex = dexen[0]
	}

	// Phase 1 — primary bin.
	if !d.Config.NormalPrimaryDex {
		primarySet := make(map[class.Class]struct{}, len(primaryDex))
		for _, c := range primaryDex {
			primarySet[c] = struct{}{}
		}
		primaryEmitted := make(map[class.Class]struct{})
		primaryTracker := track.New(lookup, primaryEmitted)

		for _, name := range priority {
			c, ok := r.clookup[name]
			if !ok {
				continue
			}
			if _, isPrimary := primarySet[c]; !isPrimary {
				continue
			}
			if _, isUnref := unreferenced[c]; isUnref {
				counters.SkippedInPrimary++
				continue
			}
			if err := r.emitClass(primaryTracker, &outdex, c, interdex.BinConfig{}, true, false); err != nil {
				return interdex.Result{}, err
			}
		}
		for _, c := range primaryDex {
			if err := r.emitClass(primaryTracker, &outdex, c, interdex.BinConfig{}, true, false); err != nil {
				return interdex.Result{}, err
			}
		}
		if err := r.flusher.FlushPrimary(primaryTracker, &outdex); err != nil {
			return interdex.Result{}, err
		}
		for c := range primaryEmitted {
			mainTracker.Emitted[c] = struct{}{}
		}
		for _, c := range primaryDex {
			mainTracker.Emitted[c] = struct{}{}
		}
	} else if len(priority) > 0 {
		priority = rewritePriorityWithPrimary(priority, primaryDex)
	}

	// Locate the region-boundary markers once, against the (possibly
	// rewritten) priority list.
	lastEnd, lastEndFound := indexOf(priority, interdex.DexEndMarker1)
	if !lastEndFound {
		lastEnd = len(priority)
	}
	scrollStart, scrollStartFound := indexOf(priority, interdex.ScrollListStart)
	scrollEnd, scrollEndFound := indexOf(priority, interdex.ScrollListEnd)
	if !scrollStartFound {
		scrollStart = -1
	}
	if !scrollEndFound {
		scrollEnd = -1
	}

	// Phase 2 — priority walk.
	binCfg := interdex.BinConfig{IsColdstart: len(priority) > 0}
	previousDexCount := counters.SecondaryDexCount
	endMarkersPresent := false

	for pos, name := range priority {
		c, ok := r.clookup[name]
		if !ok {
			// original_source traces every lookup miss unconditionally
			// before branching on marker type; the two marker checks
			// below add their own trace on top of this one.
			interdex.Record(d.Diagnostics, interdex.Diagnostic{Kind: interdex.DiagLookupMissing, ClassName: name})

			if interdex.IsDexEndMarkerName(name) {
				interdex.Record(d.Diagnostics, interdex.Diagnostic{Kind: interdex.DiagDexTerminatedByMarker, ClassName: name})
				if err := r.flusher.FlushSecondary(mainTracker, &outdex, binCfg, false); err != nil {
					return interdex.Result{}, err
				}
				counters.ColdStartSetDexCount = len(outdex)
				endMarkersPresent = true

				if pos == lastEnd && d.Config.MixedMode.HasPredefinedClasses() {
					interdex.Record(d.Diagnostics, interdex.Diagnostic{Kind: interdex.DiagMixedModeDexEmitted})
					if err := r.emitMixedModeClasses(mainTracker, &outdex, priority); err != nil {
						return interdex.Result{}, err
					}
				}
			} else if d.Config.EmitScrollSetMarker && scrollEndFound && pos == scrollEnd {
				interdex.Record(d.Diagnostics, interdex.Diagnostic{Kind: interdex.DiagScrollDexSeparated})
				if err := r.flusher.FlushSecondary(mainTracker, &outdex, binCfg, false); err != nil {
					return interdex.Result{}, err
				}
				counters.ScrollSetDexCount = len(outdex) - counters.SecondaryDexCount
			}
			continue
		}

		if r.mixedMode.contains(name) && !r.mixedMode.canTouchColdstartSet {
			if pos <= lastEnd {
				r.mixedMode.remove(name)
			} else if !r.mixedMode.canTouchColdstartExtendedSet {
				return interdex.Result{}, interdex.ErrMixedModeStranded
			}
		}

		if _, isUnref := unreferenced[c]; isUnref {
			counters.SkippedInSecondary++
			continue
		}

		if counters.SecondaryDexCount != previousDexCount {
			binCfg.Reset()
			previousDexCount = counters.SecondaryDexCount
		}

		binCfg.IsColdstart = pos <= lastEnd
		binCfg.IsExtendedSet = binCfg.IsExtendedSet || pos > lastEnd
		binCfg.HasScrollCls = binCfg.HasScrollCls || (scrollStart >= 0 && scrollEnd >= 0 && pos > scrollStart && pos < scrollEnd)

		if err := r.emitClass(mainTracker, &outdex, c, binCfg, false, true); err != nil {
			return interdex.Result{}, err
		}
	}

	// Phase 3 — post-walk.
	if d.Config.MixedMode.HasPredefinedClasses() && !lastEndFound {
		if err := r.emitMixedModeClasses(mainTracker, &outdex, priority); err != nil {
			return interdex.Result{}, err
		}
	}

	emptyCfg := interdex.BinConfig{}

	// Re-emit priority-list entries that were pruned as unreferenced —
	// they're appended now, no longer skipped.
	for _, name := range priority {
		c, ok := r.clookup[name]
		if !ok {
			continue
		}
		if _, wasUnref := unreferenced[c]; !wasUnref {
			continue
		}
		if err := r.emitClass(mainTracker, &outdex, c, emptyCfg, false, true); err != nil {
			return interdex.Result{}, err
		}
	}

	if !endMarkersPresent {
		counters.ColdStartSetDexCount = len(outdex)
		counters.ScrollSetDexCount = 0
	}

	// Walk the whole universe in input order; the tracker's Emitted set
	// filters out anything already placed.
	for _, c := range scope {
		if err := r.emitClass(mainTracker, &outdex, c, emptyCfg, false, true); err != nil {
			return interdex.Result{}, err
		}
	}

	for _, p := range d.Plugins {
		leftover, ok := p.(plugin.LeftoverProvider)
		if !ok {
			continue
		}
		for _, c := range leftover.LeftoverClasses() {
			if err := r.emitClass(mainTracker, &outdex, c, emptyCfg, false, false); err != nil {
				return interdex.Result{}, err
			}
		}
	}

	if len(mainTracker.Outs) > 0 {
		if err := r.flusher.FlushSecondary(mainTracker, &outdex, emptyCfg, false); err != nil {
			return interdex.Result{}, err
		}
	}

	return interdex.Result{Bins: outdex, Counters: *counters}, nil
}

// emitClass implements spec §4.6's admission procedure: skip already-
// emitted classes and canaries, consult skip/mixed-mode vetoes, estimate
// cost, flush-then-admit on overflow (fatal in the primary bin), then fold
// the class into det.
func (r *run) emitClass(det *track.Tracker, outdex *[]interdex.Bin, c class.Class, cfg interdex.BinConfig, primary bool, skipCheck bool) error {
	if _, already := det.Emitted[c]; already {
		return nil
	}
	if interdex.IsCanaryName(c.Name()) {
		return nil
	}

	if skipCheck {
		for _, p := range r.d.Plugins {
			if skipper, ok := p.(plugin.ClassSkipper); ok && skipper.ShouldSkipClass(c) {
				interdex.Record(r.d.Diagnostics, interdex.Diagnostic{Kind: interdex.DiagClassSkipped, ClassName: c.Name()})
				return nil
			}
		}
	}

	if !primary && skipCheck && r.mixedMode.contains(c.Name()) {
		return nil
	}

	la := alloc.EstimateLinearAlloc(c)
	mrefs, frefs := r.gatherRefs(c)

	limits := r.d.Config.Limits()
	if det.Refs.WouldOverflow(mrefs, frefs, la, limits) {
		if primary {
			return interdex.ErrPrimaryOverflow
		}
		if err := r.flusher.FlushSecondary(det, outdex, cfg, false); err != nil {
			return err
		}
	}

	det.Admit(c, mrefs, frefs, la)
	interdex.UpdateClassStats(&r.counters.Stats, c)
	return nil
}

func (r *run) gatherRefs(c class.Class) ([]class.MethodRef, []class.FieldRef) {
	mrefs := append([]class.MethodRef(nil), c.GatherMethods()...)
	frefs := append([]class.FieldRef(nil), c.GatherFields()...)
	for _, p := range r.d.Plugins {
		if g, ok := p.(plugin.RefGatherer); ok {
			g.GatherRefs(c, &mrefs, &frefs)
		}
	}
	return mrefs, frefs
}

// emitMixedModeClasses implements spec §4.8: walk the priority list once,
// emitting (when the touch flags allow reordering) and unconditionally
// dropping each mixed-mode entry found; then sweep whatever's left in
// insertion order; then flush with mixed_mode=true if anything landed.
func (r *run) emitMixedModeClasses(det *track.Tracker, outdex *[]interdex.Bin, priority []string) error {
	canTouchOrder := r.mixedMode.canTouchInterdexOrder()
	emptyCfg := interdex.BinConfig{}

	for _, name := range priority {
		if !r.mixedMode.contains(name) {
			continue
		}
		if canTouchOrder {
			if c, ok := r.clookup[name]; ok {
				if err := r.emitClass(det, outdex, c, emptyCfg, false, false); err != nil {
					return err
				}
			}
		}
		r.mixedMode.remove(name)
	}

	for _, name := range r.mixedMode.remainingInInsertionOrder() {
		c, ok := r.clookup[name]
		if !ok {
			continue
		}
		if err := r.emitClass(det, outdex, c, emptyCfg, false, false); err != nil {
			return err
		}
	}

	if len(det.Outs) > 0 {
		if err := r.flusher.FlushSecondary(det, outdex, emptyCfg, true); err != nil {
			return err
		}
	}

	r.mixedMode.clear()
	return nil
}

// rewritePriorityWithPrimary prepends primary-dex classes that don't
// already appear before the first DexEndMarker0 entry, per spec §4.6
// Phase 1's normal_primary_dex branch.
func rewritePriorityWithPrimary(priority []string, primaryDex []class.Class) []string {
	boundary := len(priority)
	for i, name := range priority {
		if name == interdex.DexEndMarker0 {
			boundary = i
			break
		}
	}

	present := make(map[string]struct{}, boundary)
	for _, n := range priority[:boundary] {
		present[n] = struct{}{}
	}

	var prepend []string
	for _, c := range primaryDex {
		if _, ok := present[c.Name()]; !ok {
			prepend = append(prepend, c.Name())
		}
	}
	if len(prepend) == 0 {
		return priority
	}

	out := make([]string, 0, len(prepend)+len(priority))
	out = append(out, prepend...)
	out = append(out, priority...)
	return out
}

func indexOf(list []string, name string) (int, bool) {
	for i, n := range list {
		if n == name {
			return i, true
		}
	}
	return -1, false
}

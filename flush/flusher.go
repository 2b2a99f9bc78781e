package flush

import (
	interdex "github.com/grittycedar/interdex"
	"github.com/grittycedar/interdex/class"
	"github.com/grittycedar/interdex/plugin"
	"github.com/grittycedar/interdex/track"
)

// Flusher owns the run-local state a bin seal needs beyond the tracker
// itself: the synthetic-class and asset-file facilities, the plugin list,
// the diagnostics sink, and the mutable run counters.
type Flusher struct {
	Factory     class.ClassFactory
	Assets      class.AssetWriter
	Plugins     []plugin.Plugin
	Diagnostics interdex.Diagnostics
	Counters    *interdex.Counters
	Config      interdex.Config

	// ObjectSuper is the super-class handle used when synthesizing a
	// canary class, if the run's universe carries a resolvable
	// java/lang/Object. A nil value degrades gracefully — the synthetic
	// canary is simply created with no super.
	ObjectSuper class.Type

	mixedModeEmitted bool
}

// New builds a Flusher against a run's shared collaborators and counters.
func New(factory class.ClassFactory, assets class.AssetWriter, plugins []plugin.Plugin, diags interdex.Diagnostics, counters *interdex.Counters, cfg interdex.Config) *Flusher {
	return &Flusher{
		Factory:     factory,
		Assets:      assets,
		Plugins:     plugins,
		Diagnostics: diags,
		Counters:    counters,
		Config:      cfg,
	}
}

// IsMixedModeDex reports whether the bin currently described by cfg is the
// first bin of its kind (coldstart / extended-set / scroll) ever sealed
// this run, and the mixed-mode config has flagged that kind as eligible.
// It must be evaluated before FlushSecondary bumps the corresponding
// counters, since "first" is defined as "count is still zero".
func (f *Flusher) IsMixedModeDex(cfg interdex.BinConfig) bool {
	if f.Counters.ColdstartDexes == 0 && cfg.IsColdstart && f.Config.MixedMode.HasStatus(interdex.FirstColdstartDex) {
		return true
	}
	if f.Counters.ExtendedSetDexes == 0 && cfg.IsExtendedSet && f.Config.MixedMode.HasStatus(interdex.FirstExtendedDex) {
		return true
	}
	if f.Counters.ScrollDexes == 0 && cfg.HasScrollCls && f.Config.MixedMode.HasStatus(interdex.ScrollDex) {
		return true
	}
	return false
}

// FlushSecondary implements spec §4.5: an empty bin is a no-op, otherwise
// the run's dex-kind counters are bumped, a canary is synthesized and
// placed when enabled, and the sealed bin is handed to FlushAny.
//
// The canary is appended rather than prepended: original_source's
// flush_out_secondary push_backs the canary onto det.Outs immediately
// before flushing, so it ends up the last class in the bin, not the
// first, despite spec prose describing a prepend.
func (f *Flusher) FlushSecondary(det *track.Tracker, outdex *[]interdex.Bin, cfg interdex.BinConfig, mixedMode bool) error {
	if len(det.Outs) == 0 {
		return nil
	}

	mixedMode = mixedMode || f.IsMixedModeDex(cfg)

	f.Counters.SecondaryDexCount++
	if cfg.IsColdstart {
		f.Counters.ColdstartDexes++
	}
	if cfg.IsExtendedSet {
		f.Counters.ExtendedSetDexes++
	}
	if cfg.HasScrollCls {
		f.Counters.ScrollDexes++
	}

	if f.Config.EmitCanaries {
		idx := len(*outdex)
		if idx > interdex.MaxDexNum {
			return interdex.ErrTooManyBins
		}
		name := interdex.CanaryName(idx)
		canary, ok := det.Lookup[name]
		if !ok {
			canary = f.Factory.MakeSyntheticClass(name, class.AccPublic|class.AccInterface|class.AccAbstract, f.ObjectSuper)
			interdex.Record(f.Diagnostics, interdex.Diagnostic{Kind: interdex.DiagCanarySynthesized, ClassName: name})
		}
		det.Outs = append(det.Outs, canary)

		if mixedMode {
			if f.mixedModeEmitted {
				return interdex.ErrMixedModeReused
			}
			f.mixedModeEmitted = true
			f.Counters.NumMixedModeDexes++
			if f.Assets != nil {
				w, err := f.Assets.NewAssetFile("mixed_mode.txt")
				if err == nil {
					_, _ = w.Write([]byte(name + "\n"))
				}
			}
		}
	}

	return f.FlushAny(det, outdex)
}

// FlushPrimary seals the primary bin: no canary, no mixed-mode
// bookkeeping, per spec §4.5.
func (f *Flusher) FlushPrimary(det *track.Tracker, outdex *[]interdex.Bin) error {
	return f.FlushAny(det, outdex)
}

// FlushAny is the common tail of both flush paths: a final plugin
// AdditionalClasses pass, the advisory sanity check, sealing the bin, and
// resetting the tracker for the next one.
func (f *Flusher) FlushAny(det *track.Tracker, outdex *[]interdex.Bin) error {
	for _, p := range f.Plugins {
		appender, ok := p.(plugin.ClassAppender)
		if !ok {
			continue
		}
		for _, c := range appender.AdditionalClasses(toPluginBins(*outdex), det.Outs) {
			if _, already := det.Emitted[c]; already {
				continue
			}
			det.Outs = append(det.Outs, c)
			det.Emitted[c] = struct{}{}
		}
	}

	f.SanityCheck(det)
	interdex.UpdateDexStats(&f.Counters.Stats, len(det.Outs), len(det.Refs.MRefs), len(det.Refs.FRefs))

	sealed := append([]class.Class(nil), det.Outs...)
	*outdex = append(*outdex, interdex.Bin{Classes: sealed})
	interdex.Record(f.Diagnostics, interdex.Diagnostic{
		Kind:   interdex.DiagBinSealed,
		Detail: "sealed bin with class count",
	})

	det.StartNewBin()
	return nil
}

// SanityCheck implements spec §4.7: it recomputes method/field refs
// directly from the bin's final class list — ignoring whatever the
// tracker's accumulated RefSet says — and reports (never errors) any ref
// the accumulated set is missing. A shortfall means a plugin
// under-reported refs during GatherRefs earlier in the run.
func (f *Flusher) SanityCheck(det *track.Tracker) {
	recomputedM := make(map[class.MethodRef]struct{})
	recomputedF := make(map[class.FieldRef]struct{})
	for _, c := range det.Outs {
		for _, m := range c.GatherMethods() {
			recomputedM[m] = struct{}{}
		}
		for _, fld := range c.GatherFields() {
			recomputedF[fld] = struct{}{}
		}
	}

	for m := range recomputedM {
		if _, ok := det.Refs.MRefs[m]; !ok {
			interdex.Record(f.Diagnostics, interdex.Diagnostic{
				Kind:   interdex.DiagRefUndercount,
				Detail: "method ref present in sealed classes but missing from accumulated set",
			})
		}
	}
	for fld := range recomputedF {
		if _, ok := det.Refs.FRefs[fld]; !ok {
			interdex.Record(f.Diagnostics, interdex.Diagnostic{
				Kind:   interdex.DiagRefUndercount,
				Detail: "field ref present in sealed classes but missing from accumulated set",
			})
		}
	}
}

func toPluginBins(bins []interdex.Bin) []plugin.Bin {
	out := make([]plugin.Bin, len(bins))
	for i, b := range bins {
		out[i] = plugin.Bin{Classes: b.Classes}
	}
	return out
}

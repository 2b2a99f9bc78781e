package flush_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	interdex "github.com/grittycedar/interdex"
	"github.com/grittycedar/interdex/class"
	"github.com/grittycedar/interdex/flush"
	"github.com/grittycedar/interdex/plugin"
	"github.com/grittycedar/interdex/track"
)

type flushClass struct {
	name    string
	mrefs   []class.MethodRef
	frefs   []class.FieldRef
}

func (c *flushClass) Name() string                    { return c.name }
func (c *flushClass) Super() class.Type                { return nil }
func (c *flushClass) Interface() bool                  { return false }
func (c *flushClass) DirectMethods() []class.Method    { return nil }
func (c *flushClass) VirtualMethods() []class.Method   { return nil }
func (c *flushClass) InstanceFields() []class.Field    { return nil }
func (c *flushClass) GatherMethods() []class.MethodRef { return c.mrefs }
func (c *flushClass) GatherFields() []class.FieldRef   { return c.frefs }
func (c *flushClass) GatherTypes() []class.Type        { return nil }
func (c *flushClass) Renameable() bool                 { return true }

type fakeFactory struct{ made []string }

func (f *fakeFactory) MakeSyntheticClass(name string, flags class.AccessFlags, super class.Type) class.Class {
	f.made = append(f.made, name)
	return &flushClass{name: name}
}

type fakeAssets struct {
	files map[string]*bytes.Buffer
}

func newFakeAssets() *fakeAssets { return &fakeAssets{files: make(map[string]*bytes.Buffer)} }

func (a *fakeAssets) NewAssetFile(name string) (class.Appender, error) {
	buf := &bytes.Buffer{}
	a.files[name] = buf
	return buf, nil
}

type appenderPlugin struct {
	name  string
	extra []class.Class
}

func (p *appenderPlugin) Name() string { return p.name }
func (p *appenderPlugin) AdditionalClasses(_ []plugin.Bin, _ []class.Class) []class.Class {
	return p.extra
}

func newTrackerWith(classes ...class.Class) *track.Tracker {
	tr := track.New(make(map[string]class.Class), make(map[class.Class]struct{}))
	for _, c := range classes {
		tr.Admit(c, nil, nil, 0)
	}
	return tr
}

func TestFlushSecondary_EmptyBinIsNoOp(t *testing.T) {
	counters := &interdex.Counters{}
	f := flush.New(&fakeFactory{}, newFakeAssets(), nil, nil, counters, interdex.DefaultConfig(1000))
	tr := newTrackerWith()
	var outdex []interdex.Bin

	err := f.FlushSecondary(tr, &outdex, interdex.BinConfig{}, false)

	require.NoError(t, err)
	require.Empty(t, outdex)
	require.Zero(t, counters.SecondaryDexCount)
}

func TestFlushSecondary_SynthesizesAndAppendsCanary(t *testing.T) {
	counters := &interdex.Counters{}
	cfg := interdex.DefaultConfig(1000)
	cfg.EmitCanaries = true
	factory := &fakeFactory{}
	f := flush.New(factory, newFakeAssets(), nil, nil, counters, cfg)

	a := &flushClass{name: "LA;"}
	tr := newTrackerWith(a)
	var outdex []interdex.Bin

	err := f.FlushSecondary(tr, &outdex, interdex.BinConfig{}, false)

	require.NoError(t, err)
	require.Len(t, outdex, 1)
	require.Len(t, outdex[0].Classes, 2)
	require.Equal(t, "LA;", outdex[0].Classes[0].Name(), "canary is appended, not prepended")
	require.Equal(t, "Lsecondary/dex00/Canary;", outdex[0].Classes[1].Name())
	require.Equal(t, 1, counters.SecondaryDexCount)
}

func TestFlushSecondary_TooManyBinsIsFatal(t *testing.T) {
	counters := &interdex.Counters{}
	cfg := interdex.DefaultConfig(1000)
	cfg.EmitCanaries = true
	f := flush.New(&fakeFactory{}, newFakeAssets(), nil, nil, counters, cfg)

	outdex := make([]interdex.Bin, interdex.MaxDexNum+1)
	tr := newTrackerWith(&flushClass{name: "LA;"})

	err := f.FlushSecondary(tr, &outdex, interdex.BinConfig{}, false)

	require.ErrorIs(t, err, interdex.ErrTooManyBins)
}

func TestFlushSecondary_SecondMixedModeBinIsFatal(t *testing.T) {
	counters := &interdex.Counters{}
	cfg := interdex.DefaultConfig(1000)
	cfg.EmitCanaries = true
	f := flush.New(&fakeFactory{}, newFakeAssets(), nil, nil, counters, cfg)
	var outdex []interdex.Bin

	tr1 := newTrackerWith(&flushClass{name: "LA;"})
	require.NoError(t, f.FlushSecondary(tr1, &outdex, interdex.BinConfig{}, true))

	tr2 := newTrackerWith(&flushClass{name: "LB;"})
	err := f.FlushSecondary(tr2, &outdex, interdex.BinConfig{}, true)

	require.ErrorIs(t, err, interdex.ErrMixedModeReused)
}

func TestFlushSecondary_MixedModeWritesAssetFile(t *testing.T) {
	counters := &interdex.Counters{}
	cfg := interdex.DefaultConfig(1000)
	cfg.EmitCanaries = true
	assets := newFakeAssets()
	f := flush.New(&fakeFactory{}, assets, nil, nil, counters, cfg)
	var outdex []interdex.Bin

	tr := newTrackerWith(&flushClass{name: "LA;"})
	require.NoError(t, f.FlushSecondary(tr, &outdex, interdex.BinConfig{}, true))

	require.Contains(t, assets.files, "mixed_mode.txt")
	require.Equal(t, "Lsecondary/dex00/Canary;\n", assets.files["mixed_mode.txt"].String())
	require.Equal(t, 1, counters.NumMixedModeDexes)
}

func TestIsMixedModeDex_FirstColdstartOnly(t *testing.T) {
	cfg := interdex.DefaultConfig(1000)
	cfg.MixedMode.Status = map[interdex.DexStatus]struct{}{interdex.FirstColdstartDex: {}}
	counters := &interdex.Counters{}
	f := flush.New(&fakeFactory{}, newFakeAssets(), nil, nil, counters, cfg)

	require.True(t, f.IsMixedModeDex(interdex.BinConfig{IsColdstart: true}))

	// Sealing a coldstart bin bumps ColdstartDexes past zero, so no later
	// coldstart bin can be "first" again.
	counters.ColdstartDexes++
	require.False(t, f.IsMixedModeDex(interdex.BinConfig{IsColdstart: true}), "only the first coldstart bin is eligible")
}

func TestFlushAny_AppendsPluginAdditionalClasses(t *testing.T) {
	counters := &interdex.Counters{}
	extra := &flushClass{name: "LExtra;"}
	p := &appenderPlugin{name: "extra", extra: []class.Class{extra}}
	f := flush.New(&fakeFactory{}, newFakeAssets(), []plugin.Plugin{p}, nil, counters, interdex.DefaultConfig(1000))

	tr := newTrackerWith(&flushClass{name: "LA;"})
	var outdex []interdex.Bin

	err := f.FlushPrimary(tr, &outdex)

	require.NoError(t, err)
	require.Len(t, outdex[0].Classes, 2)
	require.Equal(t, "LExtra;", outdex[0].Classes[1].Name())
	require.True(t, tr.Admitted(extra))
}

func TestSanityCheck_ReportsMissingRefsWithoutErroring(t *testing.T) {
	diags := &interdex.SliceDiagnostics{}
	counters := &interdex.Counters{}
	f := flush.New(&fakeFactory{}, newFakeAssets(), nil, diags, counters, interdex.DefaultConfig(1000))

	a := &flushClass{name: "LA;", mrefs: mrefs("m1")}
	tr := track.New(make(map[string]class.Class), make(map[class.Class]struct{}))
	// Admit without folding the ref into Refs, simulating plugin under-report.
	tr.Outs = append(tr.Outs, a)
	tr.Emitted[a] = struct{}{}

	f.SanityCheck(tr)

	require.NotEmpty(t, diags.Records)
	require.Equal(t, interdex.DiagRefUndercount, diags.Records[0].Kind)
}

type fakeMethodRef struct{ id string }

func (fakeMethodRef) methodRef()                {}
func (fakeMethodRef) DeclaringType() class.Type { return nil }

func mrefs(ids ...string) []class.MethodRef {
	out := make([]class.MethodRef, len(ids))
	for i, id := range ids {
		out[i] = fakeMethodRef{id}
	}
	return out
}

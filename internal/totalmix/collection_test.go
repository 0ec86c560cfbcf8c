package totalmix

import (
	"errors"
	"math"
	"reflect"
	"testing"
)

func boolPtr(b bool) *bool { return &b }

func testSpecs() []ChannelSpec {
	return []ChannelSpec{
		{Name: "speakers", Address: "/1/volume1", Stereo: boolPtr(true)},
		{Name: "center", Address: "/1/volume2", Stereo: boolPtr(false)},
		{Name: "rear", Address: "/1/volume4", Stereo: boolPtr(true)},
	}
}

func newTestCollection(t *testing.T, specs []ChannelSpec, opts ...Option) *Collection {
	t.Helper()
	col, err := NewCollection(specs, opts...)
	if err != nil {
		t.Fatalf("NewCollection: %v", err)
	}
	return col
}

func setMutes(col *Collection, states ...float64) {
	for i, ch := range col.Channels() {
		col.Dispatch(Message{Address: ch.MuteAddress(), Value: states[i]})
	}
}

func setVolumes(col *Collection, vols ...float64) {
	for i, ch := range col.Channels() {
		col.Dispatch(Message{Address: ch.Address(), Value: vols[i]})
	}
}

func TestNewCollectionKeepsOrder(t *testing.T) {
	col := newTestCollection(t, testSpecs())
	var names []string
	for _, ch := range col.Channels() {
		names = append(names, ch.Name())
	}
	if want := []string{"speakers", "center", "rear"}; !reflect.DeepEqual(names, want) {
		t.Errorf("order = %v, want %v", names, want)
	}
}

func TestNewCollectionConfigErrors(t *testing.T) {
	tests := []struct {
		name  string
		spec  ChannelSpec
		field string
	}{
		{"missing name", ChannelSpec{Address: "/1/volume3", Stereo: boolPtr(false)}, "name"},
		{"missing address", ChannelSpec{Name: "lfe", Stereo: boolPtr(false)}, "address"},
		{"missing stereo", ChannelSpec{Name: "lfe", Address: "/1/volume3"}, "stereo"},
		{"duplicate", ChannelSpec{Name: "center", Address: "/1/volume3", Stereo: boolPtr(false)}, "name"},
		{"bad address", ChannelSpec{Name: "lfe", Address: "/1/volume", Stereo: boolPtr(false)}, "address"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			specs := append(testSpecs(), tt.spec)
			_, err := NewCollection(specs)
			var cfgErr *ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("error = %v, want *ConfigError", err)
			}
			if cfgErr.Index != 3 || cfgErr.Field != tt.field {
				t.Errorf("error = %+v, want index 3 field %q", cfgErr, tt.field)
			}
		})
	}
}

func TestNewCollectionUnknownRepresentative(t *testing.T) {
	_, err := NewCollection(testSpecs(), WithRepresentative("subwoofer"))
	if !errors.Is(err, ErrUnknownChannel) {
		t.Errorf("error = %v, want ErrUnknownChannel", err)
	}
}

func TestDispatch(t *testing.T) {
	col := newTestCollection(t, testSpecs())

	if n := col.Dispatch(Message{Address: "/1/volume2", Value: 0.25}); n != 1 {
		t.Errorf("Dispatch matched %d channels, want 1", n)
	}
	ch, _ := col.Channel("center")
	if v, _ := ch.Volume().Get(); v != 0.25 {
		t.Errorf("center volume = %v", v)
	}

	if n := col.Dispatch(Message{Address: "/1/busInput", Value: 1}); n != 0 {
		t.Errorf("unrelated address matched %d channels", n)
	}
}

func TestDispatchAppliesToAllMatches(t *testing.T) {
	specs := append(testSpecs(), ChannelSpec{Name: "alias", Address: "/1/volume2", Stereo: boolPtr(false)})
	col := newTestCollection(t, specs)
	if n := col.Dispatch(Message{Address: "/1/mute/1/2", Value: 1}); n != 2 {
		t.Fatalf("Dispatch matched %d channels, want 2", n)
	}
	for _, name := range []string{"center", "alias"} {
		ch, _ := col.Channel(name)
		if !ch.Mute().Or(false) {
			t.Errorf("%s not muted", name)
		}
	}
}

func TestMuteAllUndoRoundTrip(t *testing.T) {
	col := newTestCollection(t, testSpecs())
	setMutes(col, 1, 0, 0)
	r := &recorder{}

	col.MuteAll(r)
	want := []sent{{"/1/mute/1/1", 1}, {"/1/mute/1/2", 1}, {"/1/mute/1/4", 1}}
	if got := r.commands(); !reflect.DeepEqual(got, want) {
		t.Errorf("MuteAll sent %v, want %v", got, want)
	}
	states, armed := col.PreMuteStates()
	if !armed {
		t.Fatal("snapshot not armed")
	}
	var snap []bool
	for _, s := range states {
		snap = append(snap, s.Or(false))
	}
	if want := []bool{true, false, false}; !reflect.DeepEqual(snap, want) {
		t.Errorf("snapshot = %v, want %v", snap, want)
	}

	// The console echoes the mutes back.
	setMutes(col, 1, 1, 1)

	r.reset()
	col.UndoMuteAll(r)
	want = []sent{{"/1/mute/1/2", 0}, {"/1/mute/1/4", 0}}
	if got := r.commands(); !reflect.DeepEqual(got, want) {
		t.Errorf("UndoMuteAll sent %v, want %v", got, want)
	}

	r.reset()
	col.UndoMuteAll(r)
	if len(r.msgs) != 0 {
		t.Errorf("second UndoMuteAll sent %v", r.msgs)
	}
}

func TestMuteAllNoopWhenAllMuted(t *testing.T) {
	col := newTestCollection(t, testSpecs())
	setMutes(col, 1, 1, 1)
	r := &recorder{}
	col.MuteAll(r)
	if len(r.msgs) != 0 {
		t.Errorf("MuteAll sent %v", r.msgs)
	}
	if _, armed := col.PreMuteStates(); armed {
		t.Error("snapshot armed by no-op MuteAll")
	}
}

func TestMuteAllWithUnknownState(t *testing.T) {
	col := newTestCollection(t, testSpecs())
	r := &recorder{}
	col.MuteAll(r)
	if got := len(r.commands()); got != 3 {
		t.Errorf("MuteAll sent %d commands, want 3", got)
	}
	r.reset()
	col.UndoMuteAll(r)
	if len(r.msgs) != 0 {
		t.Errorf("UndoMuteAll with unknown snapshot sent %v", r.msgs)
	}
}

func TestUnmuteAll(t *testing.T) {
	col := newTestCollection(t, testSpecs())
	r := &recorder{}
	col.UnmuteAll(r)
	want := []sent{{"/1/mute/1/1", 0}, {"/1/mute/1/2", 0}, {"/1/mute/1/4", 0}}
	if got := r.commands(); !reflect.DeepEqual(got, want) {
		t.Errorf("UnmuteAll sent %v, want %v", got, want)
	}
}

func TestInvertMutes(t *testing.T) {
	col := newTestCollection(t, testSpecs())
	col.Dispatch(Message{Address: "/1/mute/1/1", Value: 1})
	col.Dispatch(Message{Address: "/1/mute/1/2", Value: 0})
	r := &recorder{}
	col.InvertMutes(r)
	want := []sent{{"/1/mute/1/1", 0}, {"/1/mute/1/2", 1}}
	if got := r.commands(); !reflect.DeepEqual(got, want) {
		t.Errorf("InvertMutes sent %v, want %v", got, want)
	}
}

func TestDimUndim(t *testing.T) {
	col := newTestCollection(t, testSpecs())
	col.Dispatch(Message{Address: "/1/volume1", Value: 0.8})
	col.Dispatch(Message{Address: "/1/volume4", Value: 1})
	r := &recorder{}

	col.Dim(r)
	got := r.commands()
	if len(got) != 2 {
		t.Fatalf("Dim sent %v, want two commands (center has no volume)", got)
	}
	if got[0].Address != "/1/volume1" || math.Abs(got[0].Value-0.8*DimFactor) > 1e-12 {
		t.Errorf("Dim speakers = %v", got[0])
	}
	if got[1].Address != "/1/volume4" || math.Abs(got[1].Value-DimFactor) > 1e-12 {
		t.Errorf("Dim rear = %v", got[1])
	}

	r.reset()
	col.Undim(r)
	got = r.commands()
	if len(got) != 2 || got[1].Value != 1 {
		t.Errorf("Undim sent %v, want clamped 1.0 for rear", got)
	}
	if math.Abs(got[0].Value-0.8/DimFactor) > 1e-12 {
		t.Errorf("Undim speakers = %v", got[0])
	}
}

func TestSilenceIdempotent(t *testing.T) {
	col := newTestCollection(t, testSpecs())
	setVolumes(col, 0.5, 0.5, 0.5)
	before := col.Snapshot()
	r := &recorder{}

	col.Silence(r)
	first := r.msgs
	r.reset()
	col.Silence(r)
	if !reflect.DeepEqual(first, r.msgs) {
		t.Errorf("second Silence sent %v, first %v", r.msgs, first)
	}
	want := []sent{{"/1/volume1", 0}, {"/1/volume2", 0}, {"/1/volume4", 0}}
	if got := r.commands(); !reflect.DeepEqual(got, want) {
		t.Errorf("Silence sent %v, want %v", got, want)
	}
	if !reflect.DeepEqual(before, col.Snapshot()) {
		t.Error("Silence changed the mirror")
	}
}

func TestHasUniformVolume(t *testing.T) {
	specs := append(testSpecs(), ChannelSpec{Name: "headphones", Address: "/1/volume5", Stereo: boolPtr(true)})
	col := newTestCollection(t, specs)
	setVolumes(col, 0.5, 0.5, 0.5, 0.9)
	if !col.HasUniformVolume() {
		t.Error("HasUniformVolume() = false with equal volumes and differing headphones")
	}

	col.Dispatch(Message{Address: "/1/volume2", Value: 0.3})
	if col.HasUniformVolume() {
		t.Error("HasUniformVolume() = true after changing center")
	}

	col.Dispatch(Message{Address: "/1/mute/1/2", Value: 1})
	if !col.HasUniformVolume() {
		t.Error("muted channel should be ignored")
	}
}

func TestVolumeDB(t *testing.T) {
	col := newTestCollection(t, testSpecs(), WithRepresentative("center"))
	if col.VolumeDB().Known() {
		t.Error("VolumeDB known before any update")
	}
	col.Dispatch(Message{Address: "/1/volume2", Value: 0.817})
	if db, ok := col.VolumeDB().Get(); !ok || db != 0 {
		t.Errorf("VolumeDB() = %v, %v, want 0", db, ok)
	}
}

func TestRepresentativeSkipsHeadphones(t *testing.T) {
	specs := append([]ChannelSpec{{Name: "headphones", Address: "/1/volume5", Stereo: boolPtr(true)}}, testSpecs()...)
	col := newTestCollection(t, specs)
	if got := col.Snapshot().Representative; got != "speakers" {
		t.Errorf("representative = %q, want speakers", got)
	}
}

func TestSoloUnsolo(t *testing.T) {
	col := newTestCollection(t, testSpecs())
	setMutes(col, 0, 1, 0)
	r := &recorder{}

	if err := col.Solo(r, "center"); err != nil {
		t.Fatal(err)
	}
	want := []sent{{"/1/mute/1/1", 1}, {"/1/mute/1/2", 0}, {"/1/mute/1/4", 1}}
	if got := r.commands(); !reflect.DeepEqual(got, want) {
		t.Errorf("Solo sent %v, want %v", got, want)
	}
	setMutes(col, 1, 0, 1)

	r.reset()
	if err := col.Solo(r, "rear"); err != nil {
		t.Fatal(err)
	}
	if target, active := col.SoloTarget(); !active || target != "rear" {
		t.Errorf("SoloTarget() = %q, %v", target, active)
	}

	r.reset()
	col.Unsolo(r)
	want = []sent{{"/1/mute/1/1", 0}, {"/1/mute/1/2", 1}, {"/1/mute/1/4", 0}}
	if got := r.commands(); !reflect.DeepEqual(got, want) {
		t.Errorf("Unsolo sent %v, want original states %v", got, want)
	}
	if _, active := col.SoloTarget(); active {
		t.Error("solo still active")
	}
}

func TestSoloUnknownChannel(t *testing.T) {
	col := newTestCollection(t, testSpecs())
	r := &recorder{}
	if err := col.Solo(r, "nope"); !errors.Is(err, ErrUnknownChannel) {
		t.Errorf("Solo() error = %v", err)
	}
	if len(r.msgs) != 0 {
		t.Errorf("Solo sent %v", r.msgs)
	}
}

func TestSetVolumeDB(t *testing.T) {
	col := newTestCollection(t, testSpecs())
	r := &recorder{}
	if err := col.SetVolumeDB(r, "rear", -12.1); err != nil {
		t.Fatal(err)
	}
	if got := r.commands(); len(got) != 1 || got[0] != (sent{"/1/volume4", 0.5}) {
		t.Errorf("sent %v", got)
	}
	if err := col.SetVolumeDB(r, "nope", 0); !errors.Is(err, ErrUnknownChannel) {
		t.Errorf("error = %v", err)
	}
}

func TestAdjustVolume(t *testing.T) {
	specs := append(testSpecs(), ChannelSpec{Name: "headphones", Address: "/1/volume5", Stereo: boolPtr(true)})
	col := newTestCollection(t, specs)
	col.Dispatch(Message{Address: "/1/volume1", Value: 0.5})   // -12.1 dB
	col.Dispatch(Message{Address: "/1/volume5", Value: 0.817}) // headphones untouched
	r := &recorder{}

	col.AdjustVolume(r, 12.1)
	got := r.commands()
	if len(got) != 1 || got[0].Address != "/1/volume1" {
		t.Fatalf("AdjustVolume sent %v", got)
	}
	if math.Abs(got[0].Value-0.817) > 1e-9 {
		t.Errorf("AdjustVolume value = %v, want ~0.817", got[0].Value)
	}
}

func TestSnapshot(t *testing.T) {
	col := newTestCollection(t, testSpecs())
	col.Dispatch(Message{Address: "/1/volume1", Value: 1})
	col.Dispatch(Message{Address: "/1/volume1Val", Text: "+6.0"})
	s := col.Snapshot()
	st, ok := s.Channel("speakers")
	if !ok {
		t.Fatal("speakers missing from snapshot")
	}
	if db, _ := st.VolumeDB.Get(); db != 6 {
		t.Errorf("VolumeDB = %v", db)
	}
	if st.Label != "SPEA" || !st.Stereo {
		t.Errorf("state = %+v", st)
	}
	if c, _ := s.Channel("center"); c.Volume.Known() {
		t.Error("center volume known")
	}
}

func TestNonFiniteVolumeChanges(t *testing.T) {
	col := newTestCollection(t, testSpecs())
	for _, ch := range col.Channels() {
		col.Dispatch(Message{Address: ch.Address(), Value: 0.3})
	}
	r := &recorder{}

	for _, d := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		col.AdjustVolume(r, d)
		if err := col.SetVolumeDB(r, "center", d); !errors.Is(err, ErrNotFinite) {
			t.Errorf("SetVolumeDB(%v) error = %v", d, err)
		}
	}
	if len(r.msgs) != 0 {
		t.Errorf("sent %v", r.msgs)
	}
}

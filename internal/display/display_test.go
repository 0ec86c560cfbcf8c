package display

import (
	"strings"
	"testing"

	"totalmixctl/internal/totalmix"
)

func TestVolumeText(t *testing.T) {
	tests := []struct {
		in   totalmix.Opt[float64]
		want string
	}{
		{totalmix.Opt[float64]{}, "n.a."},
		{totalmix.Some(0.0), " 0.0"},
		{totalmix.Some(-65.0), "-∞"},
		{totalmix.Some(-80.0), "-∞"},
		{totalmix.Some(3.04), "+3.0"},
		{totalmix.Some(-12.1), "-12.1"},
	}
	for _, tt := range tests {
		if got := VolumeText(tt.in); got != tt.want {
			t.Errorf("VolumeText(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSummaryMarksMixedVolume(t *testing.T) {
	s := totalmix.Snapshot{VolumeDB: totalmix.Some(-6.0), UniformVolume: true}
	if got := Summary(s); got != "-6.0" {
		t.Errorf("Summary() = %q", got)
	}
	s.UniformVolume = false
	if got := Summary(s); got != "-6.0 *" {
		t.Errorf("Summary() = %q", got)
	}
}

func TestRow(t *testing.T) {
	st := totalmix.ChannelState{
		Name:        "speakers",
		Stereo:      true,
		DisplayText: totalmix.Some("-6.0"),
		Mute:        totalmix.Some(true),
		Levels:      totalmix.Levels{Left: totalmix.Some(0.5)},
	}
	got := Row(st)
	want := []string{"speakers:", "-6.0", "0.50/-", "MUTE"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Row()[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	mono := totalmix.ChannelState{Name: "lfe"}
	if got := Row(mono); got[1] != "n.a." || got[2] != "-" || got[3] != "-" {
		t.Errorf("Row(mono) = %q", got)
	}
}

func TestTable(t *testing.T) {
	s := totalmix.Snapshot{
		VolumeDB:      totalmix.Some(0.0),
		UniformVolume: true,
		Channels: []totalmix.ChannelState{
			{Name: "speakers", Stereo: true},
			{Name: "center", Mute: totalmix.Some(true)},
		},
	}
	out := Table(s)
	lines := strings.Split(out, "\n")
	if len(lines) != 3 {
		t.Fatalf("Table() has %d lines:\n%s", len(lines), out)
	}
	if !strings.Contains(lines[2], "center:") || !strings.Contains(lines[2], "MUTE") {
		t.Errorf("center line = %q", lines[2])
	}
}

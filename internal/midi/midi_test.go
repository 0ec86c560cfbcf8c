package midi

import (
	"bytes"
	"testing"

	gomidi "gitlab.com/gomidi/midi/v2"

	"totalmixctl/internal/logger"
	"totalmixctl/internal/mixer"
	"totalmixctl/internal/totalmix"
)

type recordCtrl struct{ actions []mixer.Action }

func (r *recordCtrl) Do(a mixer.Action) error {
	r.actions = append(r.actions, a)
	return nil
}

func newSurface(t *testing.T, ctrl Controller) (*Surface, *[]gomidi.Message) {
	t.Helper()
	s, err := New(logger.Discard(), Conf{Channel: 2}, ctrl, Keymap{
		Outputs: map[string]uint8{"speakers": 1, "center": 2},
		Group:   map[uint8]mixer.Action{84: {Op: mixer.OpMuteAll}},
	})
	if err != nil {
		t.Fatal(err)
	}
	var sent []gomidi.Message
	s.send = func(msg gomidi.Message) error {
		sent = append(sent, msg)
		return nil
	}
	return s, &sent
}

func expect(t *testing.T, got, want gomidi.Message) {
	t.Helper()
	if !bytes.Equal(got, want) {
		t.Errorf("sent % X, want % X", []byte(got), []byte(want))
	}
}

func snapshot(speakers, center totalmix.Opt[bool]) totalmix.Snapshot {
	return totalmix.Snapshot{Channels: []totalmix.ChannelState{
		{Name: "speakers", Mute: speakers},
		{Name: "center", Mute: center},
		{Name: "lfe", Mute: totalmix.Some(false)},
	}}
}

func TestNewRejectsSharedNotes(t *testing.T) {
	_, err := New(logger.Discard(), Conf{}, &recordCtrl{}, Keymap{
		Outputs: map[string]uint8{"speakers": 1},
		Group:   map[uint8]mixer.Action{1: {Op: mixer.OpDim}},
	})
	if err == nil {
		t.Error("expected error for note used twice")
	}
}

func TestPressFollowsLED(t *testing.T) {
	ctrl := &recordCtrl{}
	s, _ := newSurface(t, ctrl)

	// Nothing known yet: the LED is dark, so the button unmutes.
	s.Press(1)
	s.Update(snapshot(totalmix.Some(false), totalmix.Some(true)))
	s.Press(1)
	s.Press(2)
	s.Press(84)
	s.Press(99)

	want := []mixer.Action{
		{Op: mixer.OpUnmute, Channel: "speakers"},
		{Op: mixer.OpMute, Channel: "speakers"},
		{Op: mixer.OpUnmute, Channel: "center"},
		{Op: mixer.OpMuteAll},
	}
	if len(ctrl.actions) != len(want) {
		t.Fatalf("actions = %v", ctrl.actions)
	}
	for i := range want {
		if ctrl.actions[i] != want[i] {
			t.Errorf("action[%d] = %v, want %v", i, ctrl.actions[i], want[i])
		}
	}
}

func TestLEDsOnlyOnChange(t *testing.T) {
	s, sent := newSurface(t, &recordCtrl{})

	s.Update(snapshot(totalmix.Some(false), totalmix.Opt[bool]{}))
	if len(*sent) != 2 {
		t.Fatalf("first update sent %d messages", len(*sent))
	}
	expect(t, (*sent)[0], gomidi.NoteOn(2, 1, ledOn))
	expect(t, (*sent)[1], gomidi.NoteOn(2, 2, ledOff))

	s.Update(snapshot(totalmix.Some(false), totalmix.Opt[bool]{}))
	if len(*sent) != 2 {
		t.Errorf("unchanged update sent %d more messages", len(*sent)-2)
	}

	s.Update(snapshot(totalmix.Some(true), totalmix.Opt[bool]{}))
	if len(*sent) != 3 {
		t.Fatalf("sent %d messages", len(*sent))
	}
	expect(t, (*sent)[2], gomidi.NoteOn(2, 1, ledOff))
}

func TestOnMessageFiltersChannel(t *testing.T) {
	ctrl := &recordCtrl{}
	s, _ := newSurface(t, ctrl)

	s.onMessage(gomidi.NoteOn(0, 84, 100), 0)
	s.onMessage(gomidi.NoteOn(2, 84, 0), 0)
	s.onMessage(gomidi.NoteOff(2, 84), 0)
	s.onMessage(gomidi.NoteOn(2, 84, 100), 0)

	if len(ctrl.actions) != 1 || ctrl.actions[0].Op != mixer.OpMuteAll {
		t.Errorf("actions = %v", ctrl.actions)
	}
}

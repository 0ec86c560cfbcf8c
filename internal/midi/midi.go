// Package midi drives the mixer from a MIDI button box and mirrors the mute
// states back on its LEDs.
package midi

import (
	"context"
	"fmt"
	"sync"

	gomidi "gitlab.com/gomidi/midi/v2"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // MIDI backend.

	"totalmixctl/internal/logger"
	"totalmixctl/internal/mixer"
	"totalmixctl/internal/totalmix"
)

const (
	ledOn  = 127
	ledOff = 0
)

// Controller is the part of mixer.Controller the surface needs.
type Controller interface {
	Do(a mixer.Action) error
}

// Conf параметры MIDI портов.
type Conf struct {
	InPort  string // InPort - часть имени входного порта.
	OutPort string // OutPort - часть имени выходного порта, пусто - без светодиодов.
	Channel uint8  // Channel - MIDI канал (0-15).
}

// Keymap binds notes to outputs and to group actions.
type Keymap struct {
	Outputs map[string]uint8 // имя выхода -> нота кнопки со светодиодом.
	Group   map[uint8]mixer.Action
}

// Surface is a button box with one lit button per output.
type Surface struct {
	log  logger.Logger
	cfg  Conf
	ctrl Controller

	outputs map[uint8]string
	group   map[uint8]mixer.Action
	leds    map[string]uint8

	mu   sync.Mutex
	lit  map[uint8]bool
	send func(msg gomidi.Message) error
	stop func()
}

// New конструктор.
func New(log logger.Logger, cfg Conf, ctrl Controller, keys Keymap) (*Surface, error) {
	s := &Surface{
		log:     log,
		cfg:     cfg,
		ctrl:    ctrl,
		outputs: map[uint8]string{},
		group:   map[uint8]mixer.Action{},
		leds:    map[string]uint8{},
		lit:     map[uint8]bool{},
	}
	for name, note := range keys.Outputs {
		if other, dup := s.outputs[note]; dup {
			return nil, fmt.Errorf("note %d is used by %s and %s", note, other, name)
		}
		s.outputs[note] = name
		s.leds[name] = note
	}
	for note, a := range keys.Group {
		if name, dup := s.outputs[note]; dup {
			return nil, fmt.Errorf("note %d is used by %s and %s", note, name, a.Op)
		}
		s.group[note] = a
	}
	return s, nil
}

// Start opens the ports. The listener runs until Stop.
func (s *Surface) Start(_ context.Context) error {
	in, err := gomidi.FindInPort(s.cfg.InPort)
	if err != nil {
		return fmt.Errorf("midi in %q: %w", s.cfg.InPort, err)
	}

	if s.cfg.OutPort != "" {
		out, err := gomidi.FindOutPort(s.cfg.OutPort)
		if err != nil {
			return fmt.Errorf("midi out %q: %w", s.cfg.OutPort, err)
		}
		send, err := gomidi.SendTo(out)
		if err != nil {
			return fmt.Errorf("midi out %q: %w", s.cfg.OutPort, err)
		}
		s.mu.Lock()
		s.send = send
		s.mu.Unlock()
	}

	stop, err := gomidi.ListenTo(in, s.onMessage, gomidi.HandleError(func(err error) {
		s.log.Module("midi").Warnf("listener: %v", err)
	}))
	if err != nil {
		return fmt.Errorf("midi listen %q: %w", s.cfg.InPort, err)
	}
	s.stop = stop

	s.log.Module("midi").Infof("listening on %s", in)
	return nil
}

// Stop closes the listener and the driver.
func (s *Surface) Stop() {
	if s.stop != nil {
		s.stop()
	}
	gomidi.CloseDriver()
}

func (s *Surface) onMessage(msg gomidi.Message, _ int32) {
	var ch, key, vel uint8
	if !msg.GetNoteOn(&ch, &key, &vel) || vel == 0 || ch != s.cfg.Channel {
		return
	}
	s.Press(key)
}

// Press handles one button. An output button mutes when its LED is lit and
// unmutes when it is dark, so the LED always shows what will be undone.
func (s *Surface) Press(note uint8) {
	a, ok := s.action(note)
	if !ok {
		s.log.Module("midi").Tracef("note %d not mapped", note)
		return
	}
	if err := s.ctrl.Do(a); err != nil {
		s.log.Module("midi").Errorf("note %d: %v", note, err)
	}
}

func (s *Surface) action(note uint8) (mixer.Action, bool) {
	if a, ok := s.group[note]; ok {
		return a, true
	}
	name, ok := s.outputs[note]
	if !ok {
		return mixer.Action{}, false
	}

	s.mu.Lock()
	lit := s.lit[note]
	s.mu.Unlock()

	if lit {
		return mixer.Action{Op: mixer.OpMute, Channel: name}, true
	}
	return mixer.Action{Op: mixer.OpUnmute, Channel: name}, true
}

// Update lights the buttons of unmuted outputs. It implements mixer.Observer.
func (s *Surface) Update(snap totalmix.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, msg := range s.changes(snap) {
		if s.send == nil {
			continue
		}
		if err := s.send(msg); err != nil {
			s.log.Module("midi").Warnf("led: %v", err)
		}
	}
}

// changes returns LED messages for buttons whose state differs from what was
// sent last. Called with mu held.
func (s *Surface) changes(snap totalmix.Snapshot) []gomidi.Message {
	var msgs []gomidi.Message
	for _, st := range snap.Channels {
		note, ok := s.leds[st.Name]
		if !ok {
			continue
		}
		on := !st.Mute.Or(true)
		if prev, seen := s.lit[note]; seen && prev == on {
			continue
		}
		s.lit[note] = on
		vel := uint8(ledOff)
		if on {
			vel = ledOn
		}
		msgs = append(msgs, gomidi.NoteOn(s.cfg.Channel, note, vel))
	}
	return msgs
}

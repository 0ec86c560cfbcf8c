package totalmix

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Bank selection preamble. TotalMix ignores per-channel output commands
// until the output bus of the first bank is selected.
const (
	AddressBankStart = "/setBankStart"
	AddressBusOutput = "/1/busOutput"
)

// ErrUnknownChannel is returned when a channel name is not configured.
var ErrUnknownChannel = errors.New("unknown channel")

// ErrNotFinite rejects NaN and infinite volume values.
var ErrNotFinite = errors.New("value is not a finite number")

// Sink is the outbound side of the OSC transport. Sending is fire-and-forget:
// a lost datagram is reconciled by the console's own periodic broadcast.
type Sink interface {
	SendMessage(address string, value float64)
}

// Message is one inbound OSC message. Text carries string arguments
// (the console's formatted display value), Value numeric ones.
type Message struct {
	Address string
	Value   float64
	Text    string
}

// Opt is a value that may not have been reported by the console yet.
type Opt[T any] struct {
	v  T
	ok bool
}

// Some returns a known value.
func Some[T any](v T) Opt[T] { return Opt[T]{v: v, ok: true} }

// Get returns the value and whether it is known.
func (o Opt[T]) Get() (T, bool) { return o.v, o.ok }

// Known reports whether a value was received.
func (o Opt[T]) Known() bool { return o.ok }

// Or returns the value or def when unknown.
func (o Opt[T]) Or(def T) T {
	if !o.ok {
		return def
	}
	return o.v
}

func (o Opt[T]) String() string {
	if !o.ok {
		return "n.a."
	}
	return fmt.Sprint(o.v)
}

// MarshalJSON encodes an unknown value as null.
func (o Opt[T]) MarshalJSON() ([]byte, error) {
	if !o.ok {
		return []byte("null"), nil
	}
	return json.Marshal(o.v)
}

// Kind is the role of an OSC address relative to a channel.
type Kind int

const (
	KindControl Kind = iota
	KindDisplay
	KindMute
	KindLevelLeft
	KindLevelRight
)

func (k Kind) String() string {
	switch k {
	case KindControl:
		return "control"
	case KindDisplay:
		return "display"
	case KindMute:
		return "mute"
	case KindLevelLeft:
		return "level-left"
	case KindLevelRight:
		return "level-right"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ChannelSpec describes one configured output. Stereo is a pointer so a
// missing flag can be told apart from false.
type ChannelSpec struct {
	Name    string
	Address string
	Stereo  *bool
}

// ConfigError reports an invalid channel specification.
type ConfigError struct {
	Index int
	Name  string
	Field string
	Msg   string
}

func (e *ConfigError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("output %d (%s): %s: %s", e.Index, e.Name, e.Field, e.Msg)
	}
	return fmt.Sprintf("output %d: %s: %s", e.Index, e.Field, e.Msg)
}

// Levels are the meter readings of a channel in fader units. Mono channels
// only use Left.
type Levels struct {
	Left  Opt[float64] `json:"left"`
	Right Opt[float64] `json:"right"`
}

// Peak returns the higher known side.
func (l Levels) Peak() (float64, bool) {
	left, lok := l.Left.Get()
	right, rok := l.Right.Get()
	switch {
	case lok && rok:
		if right > left {
			return right, true
		}
		return left, true
	case lok:
		return left, true
	case rok:
		return right, true
	}
	return 0, false
}

// ChannelState is an immutable copy of a channel handed to observers.
type ChannelState struct {
	Name        string       `json:"name"`
	Label       string       `json:"label"`
	Address     string       `json:"address"`
	Stereo      bool         `json:"stereo"`
	Volume      Opt[float64] `json:"volume"`
	VolumeDB    Opt[float64] `json:"volume_db"`
	DisplayText Opt[string]  `json:"display_text"`
	Mute        Opt[bool]    `json:"mute"`
	Levels      Levels       `json:"levels"`
}

// Snapshot is the whole mirror at one instant.
type Snapshot struct {
	Channels       []ChannelState `json:"channels"`
	VolumeDB       Opt[float64]   `json:"volume_db"`
	UniformVolume  bool           `json:"uniform_volume"`
	MuteAllArmed   bool           `json:"mute_all_armed"`
	SoloActive     bool           `json:"solo_active"`
	SoloTarget     string         `json:"solo_target,omitempty"`
	Representative string         `json:"representative"`
}

// Channel returns the state of the named channel.
func (s Snapshot) Channel(name string) (ChannelState, bool) {
	for _, c := range s.Channels {
		if c.Name == name {
			return c, true
		}
	}
	return ChannelState{}, false
}

package totalmix

import (
	"fmt"
	"math"

	"totalmixctl/internal/curve"
)

const (
	// DimFactor lowers a fader position by roughly 6 dB.
	DimFactor = 0.7746

	// DefaultHeadphones is excluded from the uniform volume check.
	DefaultHeadphones = "headphones"

	uniformTolerance = 1e-6
)

// Collection is the ordered set of mirrored outputs. It is not safe for
// concurrent use; the mixer controller serialises access.
type Collection struct {
	channels       []*Channel
	curve          *curve.Curve
	headphones     string
	representative string

	preMute   []Opt[bool]
	muteArmed bool

	preSolo    []Opt[bool]
	soloActive bool
	soloTarget string
}

// Option configures a Collection.
type Option func(*Collection)

// WithCurve replaces the default TotalMix curve.
func WithCurve(c *curve.Curve) Option {
	return func(col *Collection) { col.curve = c }
}

// WithHeadphones names the channel ignored by HasUniformVolume and AdjustVolume.
func WithHeadphones(name string) Option {
	return func(col *Collection) { col.headphones = name }
}

// WithRepresentative names the channel whose volume is shown as the summary.
func WithRepresentative(name string) Option {
	return func(col *Collection) { col.representative = name }
}

// NewCollection builds one channel per spec, keeping the order.
func NewCollection(specs []ChannelSpec, opts ...Option) (*Collection, error) {
	col := &Collection{headphones: DefaultHeadphones}
	for _, o := range opts {
		o(col)
	}
	if col.curve == nil {
		col.curve = curve.Default()
	}

	seen := make(map[string]bool, len(specs))
	for i, s := range specs {
		switch {
		case s.Name == "":
			return nil, &ConfigError{Index: i, Field: "name", Msg: "missing"}
		case s.Address == "":
			return nil, &ConfigError{Index: i, Name: s.Name, Field: "address", Msg: "missing"}
		case s.Stereo == nil:
			return nil, &ConfigError{Index: i, Name: s.Name, Field: "stereo", Msg: "missing"}
		case seen[s.Name]:
			return nil, &ConfigError{Index: i, Name: s.Name, Field: "name", Msg: "duplicate"}
		}
		seen[s.Name] = true

		ch, err := NewChannel(s.Name, s.Address, *s.Stereo)
		if err != nil {
			return nil, &ConfigError{Index: i, Name: s.Name, Field: "address", Msg: err.Error()}
		}
		col.channels = append(col.channels, ch)
	}

	if col.representative == "" {
		for _, ch := range col.channels {
			if ch.name != col.headphones {
				col.representative = ch.name
				break
			}
		}
	} else if !seen[col.representative] {
		return nil, fmt.Errorf("representative channel %q: %w", col.representative, ErrUnknownChannel)
	}

	col.preMute = make([]Opt[bool], len(col.channels))
	col.preSolo = make([]Opt[bool], len(col.channels))
	return col, nil
}

func (col *Collection) Len() int { return len(col.channels) }

// Channels returns the channels in configuration order.
func (col *Collection) Channels() []*Channel {
	out := make([]*Channel, len(col.channels))
	copy(out, col.channels)
	return out
}

// Channel looks a channel up by name.
func (col *Collection) Channel(name string) (*Channel, bool) {
	for _, ch := range col.channels {
		if ch.name == name {
			return ch, true
		}
	}
	return nil, false
}

func (col *Collection) Curve() *curve.Curve { return col.curve }

// Dispatch applies msg to every matching channel and returns the match count.
func (col *Collection) Dispatch(msg Message) int {
	n := 0
	for _, ch := range col.channels {
		if ch.Matches(msg.Address) {
			ch.Apply(msg)
			n++
		}
	}
	return n
}

// MuteAll mutes every channel and remembers the previous mute states for
// UndoMuteAll. Nothing happens when all channels are already muted.
func (col *Collection) MuteAll(sink Sink) {
	all := true
	for _, ch := range col.channels {
		if !ch.mute.Or(false) {
			all = false
			break
		}
	}
	if all {
		return
	}

	for i, ch := range col.channels {
		col.preMute[i] = ch.mute
	}
	col.muteArmed = true
	for _, ch := range col.channels {
		ch.SetMute(sink)
	}
}

// UndoMuteAll unmutes the channels that were unmuted before the last MuteAll.
// Channels that were muted, or whose state was unknown, stay muted.
func (col *Collection) UndoMuteAll(sink Sink) {
	if !col.muteArmed {
		return
	}
	for i, ch := range col.channels {
		if muted, ok := col.preMute[i].Get(); ok && !muted {
			ch.SetUnmute(sink)
		}
	}
	col.muteArmed = false
}

// PreMuteStates returns the states captured by the last MuteAll.
func (col *Collection) PreMuteStates() ([]Opt[bool], bool) {
	out := make([]Opt[bool], len(col.preMute))
	copy(out, col.preMute)
	return out, col.muteArmed
}

func (col *Collection) UnmuteAll(sink Sink) {
	for _, ch := range col.channels {
		ch.SetUnmute(sink)
	}
}

// InvertMutes toggles each channel with a known mute state.
func (col *Collection) InvertMutes(sink Sink) {
	for _, ch := range col.channels {
		if ch.mute.Known() {
			ch.ToggleMute(sink)
		}
	}
}

// Dim lowers every channel with a known volume by about 6 dB.
func (col *Collection) Dim(sink Sink) {
	col.scale(sink, DimFactor)
}

// Undim reverses Dim.
func (col *Collection) Undim(sink Sink) {
	col.scale(sink, 1/DimFactor)
}

func (col *Collection) scale(sink Sink, f float64) {
	for _, ch := range col.channels {
		if v, ok := ch.volume.Get(); ok {
			ch.SetVolume(sink, v*f)
		}
	}
}

// Silence pulls every fader to zero.
func (col *Collection) Silence(sink Sink) {
	for _, ch := range col.channels {
		ch.SetVolume(sink, 0)
	}
}

// Solo mutes all channels except name. The mute states seen on the first
// Solo are restored by Unsolo; switching the solo target keeps them.
func (col *Collection) Solo(sink Sink, name string) error {
	target, ok := col.Channel(name)
	if !ok {
		return fmt.Errorf("solo %q: %w", name, ErrUnknownChannel)
	}
	if !col.soloActive {
		for i, ch := range col.channels {
			col.preSolo[i] = ch.mute
		}
		col.soloActive = true
	}
	col.soloTarget = name
	for _, ch := range col.channels {
		if ch == target {
			ch.SetUnmute(sink)
			continue
		}
		ch.SetMute(sink)
	}
	return nil
}

// Unsolo restores the mute states captured by Solo.
func (col *Collection) Unsolo(sink Sink) {
	if !col.soloActive {
		return
	}
	for i, ch := range col.channels {
		muted, ok := col.preSolo[i].Get()
		switch {
		case !ok:
		case muted:
			ch.SetMute(sink)
		default:
			ch.SetUnmute(sink)
		}
	}
	col.soloActive = false
	col.soloTarget = ""
}

// SoloTarget returns the soloed channel, if any.
func (col *Collection) SoloTarget() (string, bool) {
	return col.soloTarget, col.soloActive
}

// SetVolumeDB moves the named channel to db.
func (col *Collection) SetVolumeDB(sink Sink, name string, db float64) error {
	ch, ok := col.Channel(name)
	if !ok {
		return fmt.Errorf("set volume %q: %w", name, ErrUnknownChannel)
	}
	if !finite(db) {
		return fmt.Errorf("set volume %q to %v dB: %w", name, db, ErrNotFinite)
	}
	ch.SetVolume(sink, col.curve.DecibelToFader(db))
	return nil
}

// AdjustVolume moves every non-headphone channel with a known volume by
// delta dB along the fader curve. A non-finite delta does nothing.
func (col *Collection) AdjustVolume(sink Sink, delta float64) {
	if !finite(delta) {
		return
	}
	for _, ch := range col.channels {
		if ch.name == col.headphones {
			continue
		}
		if v, ok := ch.volume.Get(); ok {
			db := col.curve.FaderToDecibel(v) + delta
			ch.SetVolume(sink, col.curve.DecibelToFader(db))
		}
	}
}

// HasUniformVolume reports whether all unmuted, non-headphone channels with a
// known volume share the same fader position.
func (col *Collection) HasUniformVolume() bool {
	first, have := 0.0, false
	for _, ch := range col.channels {
		if ch.name == col.headphones || ch.mute.Or(false) {
			continue
		}
		v, ok := ch.volume.Get()
		if !ok {
			continue
		}
		if !have {
			first, have = v, true
			continue
		}
		if math.Abs(v-first) > uniformTolerance {
			return false
		}
	}
	return true
}

// VolumeDB is the representative channel's volume in dB.
func (col *Collection) VolumeDB() Opt[float64] {
	ch, ok := col.Channel(col.representative)
	if !ok {
		return Opt[float64]{}
	}
	v, ok := ch.volume.Get()
	if !ok {
		return Opt[float64]{}
	}
	return Some(col.curve.FaderToDecibel(v))
}

// Snapshot copies the mirror for readers outside the controller lock.
func (col *Collection) Snapshot() Snapshot {
	s := Snapshot{
		Channels:       make([]ChannelState, len(col.channels)),
		VolumeDB:       col.VolumeDB(),
		UniformVolume:  col.HasUniformVolume(),
		MuteAllArmed:   col.muteArmed,
		SoloActive:     col.soloActive,
		SoloTarget:     col.soloTarget,
		Representative: col.representative,
	}
	for i, ch := range col.channels {
		st := ChannelState{
			Name:        ch.name,
			Label:       ch.ShortLabel(),
			Address:     ch.address,
			Stereo:      ch.stereo,
			Volume:      ch.volume,
			DisplayText: ch.display,
			Mute:        ch.mute,
			Levels:      ch.levels,
		}
		if v, ok := ch.volume.Get(); ok {
			st.VolumeDB = Some(col.curve.FaderToDecibel(v))
		}
		s.Channels[i] = st
	}
	return s
}

package totalmix

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"
)

// Channel mirrors one TotalMix output. Its fields change only when the
// console reports them; the emitters never touch local state.
type Channel struct {
	name    string
	address string
	stereo  bool
	number  int

	displayAddr string
	muteAddr    string
	leftAddr    string
	rightAddr   string
	kinds       map[string]Kind

	volume  Opt[float64]
	display Opt[string]
	mute    Opt[bool]
	levels  Levels
}

// NewChannel builds a channel bound to a control address such as "/1/volume4".
func NewChannel(name, address string, stereo bool) (*Channel, error) {
	if address == "" {
		return nil, fmt.Errorf("empty address")
	}
	last := address[len(address)-1]
	if last < '0' || last > '9' {
		return nil, fmt.Errorf("address %q does not end with a channel number", address)
	}

	c := &Channel{
		name:    name,
		address: address,
		stereo:  stereo,
		number:  int(last - '0'),
	}
	c.displayAddr = address + "Val"
	c.muteAddr = fmt.Sprintf("/1/mute/1/%d", c.number)
	c.leftAddr = fmt.Sprintf("/1/level%dLeft", c.number)
	c.kinds = map[string]Kind{
		c.address:     KindControl,
		c.displayAddr: KindDisplay,
		c.muteAddr:    KindMute,
		c.leftAddr:    KindLevelLeft,
	}
	if stereo {
		c.rightAddr = fmt.Sprintf("/1/level%dRight", c.number)
		c.kinds[c.rightAddr] = KindLevelRight
	}
	return c, nil
}

func (c *Channel) Name() string    { return c.name }
func (c *Channel) Address() string { return c.address }
func (c *Channel) Stereo() bool    { return c.stereo }
func (c *Channel) Number() int     { return c.number }

// DisplayAddress is where the console sends its own formatted value.
func (c *Channel) DisplayAddress() string { return c.displayAddr }

func (c *Channel) MuteAddress() string { return c.muteAddr }

// LevelAddresses returns the meter addresses, left first.
func (c *Channel) LevelAddresses() []string {
	if c.stereo {
		return []string{c.leftAddr, c.rightAddr}
	}
	return []string{c.leftAddr}
}

func (c *Channel) Volume() Opt[float64]     { return c.volume }
func (c *Channel) DisplayText() Opt[string] { return c.display }
func (c *Channel) Mute() Opt[bool]          { return c.mute }
func (c *Channel) Levels() Levels           { return c.levels }

// Kind returns the role of addr for this channel.
func (c *Channel) Kind(addr string) (Kind, bool) {
	k, ok := c.kinds[addr]
	return k, ok
}

// Matches reports whether addr belongs to this channel.
func (c *Channel) Matches(addr string) bool {
	_, ok := c.kinds[addr]
	return ok
}

// Apply updates the mirror from an inbound message. Messages for other
// channels are ignored.
func (c *Channel) Apply(msg Message) {
	kind, ok := c.kinds[msg.Address]
	if !ok {
		return
	}
	if kind != KindDisplay && !finite(msg.Value) {
		return
	}
	switch kind {
	case KindControl:
		c.volume = Some(msg.Value)
	case KindDisplay:
		c.display = Some(msg.Text)
	case KindMute:
		c.mute = Some(msg.Value == 1.0)
	case KindLevelLeft:
		c.levels.Left = Some(msg.Value)
	case KindLevelRight:
		c.levels.Right = Some(msg.Value)
	}
}

// ShortLabel is the name as shown on narrow displays.
func (c *Channel) ShortLabel() string {
	if c.name == "" {
		return "--"
	}
	label := strings.ToUpper(c.name)
	if utf8.RuneCountInString(label) > 4 {
		label = string([]rune(label)[:4])
	}
	return label
}

func (c *Channel) String() string {
	return fmt.Sprintf("Output (%s @ %s): volume=%v (%v), mute=%v, levels=%v/%v",
		c.name, c.address, c.volume, c.display, c.mute, c.levels.Left, c.levels.Right)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func selectBus(sink Sink) {
	sink.SendMessage(AddressBankStart, 1.0)
	sink.SendMessage(AddressBusOutput, 1.0)
}

// SetVolume asks the console to move the fader to v (clamped to [0,1]).
// NaN and infinities are dropped.
func (c *Channel) SetVolume(sink Sink, v float64) {
	if !finite(v) {
		return
	}
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	selectBus(sink)
	sink.SendMessage(c.address, v)
}

func (c *Channel) SetMute(sink Sink) {
	selectBus(sink)
	sink.SendMessage(c.muteAddr, 1.0)
}

func (c *Channel) SetUnmute(sink Sink) {
	selectBus(sink)
	sink.SendMessage(c.muteAddr, 0.0)
}

// ToggleMute flips the mirrored mute state. An unknown state counts as
// unmuted, so the first toggle before any update mutes the channel.
func (c *Channel) ToggleMute(sink Sink) {
	if c.mute.Or(false) {
		c.SetUnmute(sink)
		return
	}
	c.SetMute(sink)
}

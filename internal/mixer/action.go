package mixer

import (
	"fmt"
	"math"
	"strings"

	"totalmixctl/internal/totalmix"
)

// Op is a local control request: a button press, an MQTT command or an
// HTTP call.
type Op int

const (
	OpMuteAll Op = iota + 1
	OpUndoMuteAll
	OpUnmuteAll
	OpInvertMutes
	OpDim
	OpUndim
	OpSilence
	OpUnsolo
	OpAdjustVolume // Value: delta dB

	// Per channel.
	OpMute
	OpUnmute
	OpToggleMute
	OpSolo
	OpSetVolume   // Value: fader position
	OpSetVolumeDB // Value: dB
)

var opNames = map[Op]string{
	OpMuteAll:      "mute_all",
	OpUndoMuteAll:  "undo_mute_all",
	OpUnmuteAll:    "unmute_all",
	OpInvertMutes:  "invert",
	OpDim:          "dim",
	OpUndim:        "undim",
	OpSilence:      "silence",
	OpUnsolo:       "unsolo",
	OpAdjustVolume: "adjust",
	OpMute:         "mute",
	OpUnmute:       "unmute",
	OpToggleMute:   "toggle",
	OpSolo:         "solo",
	OpSetVolume:    "volume",
	OpSetVolumeDB:  "volume_db",
}

func (o Op) String() string {
	if s, ok := opNames[o]; ok {
		return s
	}
	return fmt.Sprintf("op(%d)", int(o))
}

// PerChannel reports whether the op needs a channel name.
func (o Op) PerChannel() bool {
	return o >= OpMute
}

// ParseOp accepts the names used on MQTT and HTTP.
func ParseOp(s string) (Op, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for op, name := range opNames {
		if name == s {
			return op, nil
		}
	}
	return 0, fmt.Errorf("unknown action %q", s)
}

// Action is one request for the controller.
type Action struct {
	Op      Op
	Channel string
	Value   float64
}

func (a Action) String() string {
	switch {
	case a.Op.PerChannel() && (a.Op == OpSetVolume || a.Op == OpSetVolumeDB):
		return fmt.Sprintf("%s %s=%.3f", a.Op, a.Channel, a.Value)
	case a.Op.PerChannel():
		return fmt.Sprintf("%s %s", a.Op, a.Channel)
	case a.Op == OpAdjustVolume:
		return fmt.Sprintf("%s %+.1f dB", a.Op, a.Value)
	}
	return a.Op.String()
}

// Validate rejects NaN and infinite values for the ops that carry one.
func (a Action) Validate() error {
	switch a.Op {
	case OpAdjustVolume, OpSetVolume, OpSetVolumeDB:
		if math.IsNaN(a.Value) || math.IsInf(a.Value, 0) {
			return fmt.Errorf("%s: %w", a.Op, totalmix.ErrNotFinite)
		}
	}
	return nil
}

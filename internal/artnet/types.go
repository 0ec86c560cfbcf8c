package artnet

import (
	"fmt"
	"strings"
)

// Conf параметры вывода на Art-Net.
type Conf struct {
	Network  string // Network - подсеть Art-Net (CIDR).
	Universe uint16 // Universe: старший байт - SubUni, младший байт - Net.
	MaxFPS   int    // MaxFPS - ограничение частоты отправки.
}

// Patch binds a mixer output to two DMX slots: the mute tally at Channel and
// the peak meter at Channel+1. Channel is 1-based like on a lighting desk.
type Patch struct {
	Name    string
	Channel int
}

// ChannelValue defines an ArtNet Universe and the value of the DMX channel.
type ChannelValue struct {
	Universe uint16 // Universe: старший байт - SubUni, младший байт - Net.
	Channel  uint16 // Channel: номер байта (канал).
	Value    uint8  // Value: значение для канала.
}

// Universe wraps the 512 byte array for convenience.
type Universe [512]byte

func (u Universe) toByteSlice() [512]byte {
	return u
}

// UniverseStateMap holds the state of all used universes.
type UniverseStateMap map[uint16]Universe

type NodeTopic struct {
	Name      string
	OutputStr []string
	Output    []uint16
}

func (n NodeTopic) String() string {
	if len(n.OutputStr) == 0 {
		return fmt.Sprintf("node %s has no outputs", n.Name)
	}
	return fmt.Sprintf("node %s outputs: %s", n.Name, strings.Join(n.OutputStr, ", "))
}

type IpsType struct {
	Ips    []string
	Topics []NodeTopic
}

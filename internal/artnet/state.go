package artnet

import "sync"

// State is the last value written to every DMX slot.
type State struct {
	mu        sync.Mutex
	universes UniverseStateMap
}

// NewState конструктор.
func NewState() *State {
	return &State{universes: UniverseStateMap{}}
}

// SetChannel stores one value and reports whether it changed.
func (s *State) SetChannel(universe, channel uint16, value uint8) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.set(universe, channel, value)
}

// SetChannelValues stores all values and reports whether any changed.
func (s *State) SetChannelValues(values []ChannelValue) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed := false
	for _, v := range values {
		if s.set(v.Universe, v.Channel, v.Value) {
			changed = true
		}
	}
	return changed
}

func (s *State) set(universe, channel uint16, value uint8) bool {
	if int(channel) >= len(Universe{}) {
		return false
	}
	u, ok := s.universes[universe]
	if ok && u[channel] == value {
		return false
	}
	u[channel] = value
	s.universes[universe] = u
	return true
}

// Get returns a copy of all universes.
func (s *State) Get() UniverseStateMap {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(UniverseStateMap, len(s.universes))
	for k, v := range s.universes {
		out[k] = v
	}
	return out
}

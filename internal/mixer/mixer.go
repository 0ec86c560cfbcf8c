// Package mixer owns the mirrored TotalMix state. Inbound OSC updates and
// local actions share one lock, so a group operation never sees a partial
// update and no update lands between a snapshot capture and its commands.
package mixer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"totalmixctl/internal/logger"
	"totalmixctl/internal/totalmix"
)

// Observer receives a copy of the mirror after it changed. It is called from
// the refresh loop, outside the lock.
type Observer interface {
	Update(s totalmix.Snapshot)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(s totalmix.Snapshot)

func (f ObserverFunc) Update(s totalmix.Snapshot) { f(s) }

// Controller is the application context shared by the transport, the
// control surfaces and the displays.
type Controller struct {
	log      *logger.Log
	interval time.Duration

	mu    sync.Mutex
	col   *totalmix.Collection
	sink  totalmix.Sink
	dirty bool

	obsMu     sync.Mutex
	observers []Observer
}

// New конструктор.
func New(log logger.Logger, col *totalmix.Collection, sink totalmix.Sink, interval time.Duration) *Controller {
	return &Controller{
		log:      log.Module("mixer"),
		interval: interval,
		col:      col,
		sink:     sink,
		dirty:    true,
	}
}

// Observe registers o for snapshots produced by Run.
func (c *Controller) Observe(o Observer) {
	c.obsMu.Lock()
	c.observers = append(c.observers, o)
	c.obsMu.Unlock()
}

// Dispatch applies one inbound message to the mirror.
func (c *Controller) Dispatch(msg totalmix.Message) {
	c.mu.Lock()
	n := c.col.Dispatch(msg)
	if n > 0 {
		c.dirty = true
	}
	c.mu.Unlock()

	if n == 0 {
		c.log.Tracef("ignored %s", msg.Address)
	}
}

// Do runs a local action against the console.
func (c *Controller) Do(a Action) error {
	if err := a.Validate(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.do(a); err != nil {
		return err
	}
	c.log.Debugf("action %s", a)
	return nil
}

func (c *Controller) do(a Action) error {
	col, sink := c.col, c.sink

	if a.Op.PerChannel() {
		ch, ok := col.Channel(a.Channel)
		if !ok {
			return fmt.Errorf("%s %q: %w", a.Op, a.Channel, totalmix.ErrUnknownChannel)
		}
		switch a.Op {
		case OpMute:
			ch.SetMute(sink)
		case OpUnmute:
			ch.SetUnmute(sink)
		case OpToggleMute:
			ch.ToggleMute(sink)
		case OpSolo:
			return col.Solo(sink, a.Channel)
		case OpSetVolume:
			ch.SetVolume(sink, a.Value)
		case OpSetVolumeDB:
			return col.SetVolumeDB(sink, a.Channel, a.Value)
		default:
			return fmt.Errorf("unsupported action %s", a.Op)
		}
		return nil
	}

	switch a.Op {
	case OpMuteAll:
		col.MuteAll(sink)
	case OpUndoMuteAll:
		col.UndoMuteAll(sink)
	case OpUnmuteAll:
		col.UnmuteAll(sink)
	case OpInvertMutes:
		col.InvertMutes(sink)
	case OpDim:
		col.Dim(sink)
	case OpUndim:
		col.Undim(sink)
	case OpSilence:
		col.Silence(sink)
	case OpUnsolo:
		col.Unsolo(sink)
	case OpAdjustVolume:
		col.AdjustVolume(sink, a.Value)
	default:
		return fmt.Errorf("unsupported action %s", a.Op)
	}
	return nil
}

// Snapshot returns a copy of the current mirror.
func (c *Controller) Snapshot() totalmix.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.col.Snapshot()
}

// Run publishes snapshots to the observers every interval while the mirror
// keeps changing. It returns when ctx is done.
func (c *Controller) Run(ctx context.Context) error {
	t := time.NewTicker(c.interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			c.refresh()
		}
	}
}

func (c *Controller) refresh() {
	c.mu.Lock()
	if !c.dirty {
		c.mu.Unlock()
		return
	}
	c.dirty = false
	s := c.col.Snapshot()
	c.mu.Unlock()

	c.obsMu.Lock()
	obs := make([]Observer, len(c.observers))
	copy(obs, c.observers)
	c.obsMu.Unlock()

	for _, o := range obs {
		o.Update(s)
	}
}

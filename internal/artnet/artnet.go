package artnet

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"github.com/Haba1234/go-artnet"

	"totalmixctl/internal/logger"
	"totalmixctl/internal/totalmix"
)

const (
	tallyOn  = 255
	tallyOff = 0
)

// ArtNet is transport for the ArtNet protocol (DMX over UDP/IP). It mirrors
// the mute state and the meters of the patched outputs.
type ArtNet struct {
	logger      logger.Logger
	sender      *artnet.Controller
	state       *State
	sendTrigger chan UniverseStateMap
	ctx         context.Context
	universe    uint16
	patch       []Patch
}

// NewController returns the Art-Net tally for the given patch.
func NewController(log logger.Logger, cfg Conf, patch []Patch) (*ArtNet, error) {
	ip, err := FindArtNetIP(cfg.Network)
	if err != nil {
		return nil, fmt.Errorf("failed to find the art-net IP: %w", err)
	}

	if len(ip) == 0 {
		return nil, errors.New("failed to find the art-net IP: No interface found")
	}

	host, err := os.Hostname()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve hostname: %w", err)
	}

	host = strings.ToLower(strings.Split(host, ".")[0])
	log.Module("art-net").Infof("Using ArtNet IP %s and hostname %s", ip.String(), host)

	senderLogger := artnet.NewDefaultLogger("info")

	fps := cfg.MaxFPS
	if fps <= 0 {
		fps = 30
	}

	control := &ArtNet{
		logger:      log,
		sender:      artnet.NewController(host, ip, senderLogger, artnet.MaxFPS(fps)),
		state:       NewState(),
		sendTrigger: make(chan UniverseStateMap, 100),
		universe:    cfg.Universe,
		patch:       patch,
	}

	return control, nil
}

// Start the ArtNet.
func (c *ArtNet) Start(ctx context.Context) error {
	if err := c.sender.Start(); err != nil {
		return fmt.Errorf("failed to start Controller: %w", err)
	}

	c.ctx = ctx
	go c.sendBackground()
	go c.debugDevices()
	return nil
}

// Stop the ArtNet.
func (c *ArtNet) Stop() {
	c.sender.Stop()
}

// Update maps a snapshot to DMX values. It implements mixer.Observer.
func (c *ArtNet) Update(s totalmix.Snapshot) {
	if c.state.SetChannelValues(TallyValues(c.universe, c.patch, s)) {
		c.triggerSend()
	}
}

func (c *ArtNet) triggerSend() {
	select {
	case c.sendTrigger <- c.state.Get():
	default:
		c.logger.Module("art-net").Debug("DMX. Очередь отправки заполнена")
	}
}

func (c *ArtNet) sendBackground() {
	for {
		select {
		case <-c.ctx.Done():
			return
		case data := <-c.sendTrigger:
			for u, dmx := range data {
				// u - адрес.
				// dmx - массив данных до 512 байт.
				c.logger.Module("art-net").Tracef("DMX. Отправка в контроллер по адресу %v", u)
				c.sender.SendDMXToAddress(dmx.toByteSlice(), universeToAddress(u))
			}
		}
	}
}

// TallyValues returns two slots per patched output: 255 at Channel while the
// output is known to be unmuted, and the peak meter scaled to 0..255 at
// Channel+1. Outputs missing from the snapshot are skipped.
func TallyValues(universe uint16, patch []Patch, s totalmix.Snapshot) []ChannelValue {
	values := make([]ChannelValue, 0, 2*len(patch))
	for _, p := range patch {
		st, ok := s.Channel(p.Name)
		if !ok || p.Channel < 1 || p.Channel >= len(Universe{}) {
			continue
		}
		tally := uint8(tallyOff)
		if mute, known := st.Mute.Get(); known && !mute {
			tally = tallyOn
		}
		slot := uint16(p.Channel - 1)
		values = append(values,
			ChannelValue{Universe: universe, Channel: slot, Value: tally},
			ChannelValue{Universe: universe, Channel: slot + 1, Value: meter(st.Levels)},
		)
	}
	return values
}

func meter(l totalmix.Levels) uint8 {
	p, ok := l.Peak()
	if !ok {
		return 0
	}
	return uint8(math.Round(math.Max(0, math.Min(1, p)) * 255))
}

// universeToAddress converts a dmx universe to art-net address
// universe: старший байт - SubUni, младший байт - Net.
func universeToAddress(universe uint16) artnet.Address {
	v := make([]uint8, 2)
	binary.BigEndian.PutUint16(v, universe)

	return artnet.Address{
		Net:    v[0],
		SubUni: v[1],
	}
}

// NodeToString returns a string representation of the given Node.
func NodeToString(n *artnet.ControlledNode) (string, NodeTopic) {
	var inputs, outputs []string
	var out []uint16
	var outStr []string
	for _, p := range n.Node.InputPorts {
		inputs = append(inputs, fmt.Sprintf("%s: %s", p.Address.String(), p.Type.String()))
	}

	for _, p := range n.Node.OutputPorts {
		outputs = append(outputs, fmt.Sprintf("%s: %s", p.Address.String(), p.Type.String()))
		out = append(out, uint16(p.Address.Integer()))
		outStr = append(outStr, p.Address.String())
	}

	return fmt.Sprintf(
			" | IP=%s name=%q type=%q manufacturer=%q desc=%q inputs=%q outputs=%q",
			n.UDPAddress.String(), n.Node.Name, n.Node.Type,
			n.Node.Manufacturer, n.Node.Description,
			strings.Join(inputs, "; "), strings.Join(outputs, "; "),
		), NodeTopic{
			Name:      n.Node.Name,
			OutputStr: outStr,
			Output:    out,
		}
}

func ips(nodes []*artnet.ControlledNode) (ips IpsType) {
	ips = IpsType{}
	for _, n := range nodes {
		node, out := NodeToString(n)
		ips.Ips = append(ips.Ips, node)
		ips.Topics = append(ips.Topics, out)
	}
	return ips
}

// debugDevices reports the nodes that listen on our universe.
func (c *ArtNet) debugDevices() {
	t := time.NewTicker(30 * time.Second)
	defer t.Stop()

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-t.C:
		}
		dev := ips(c.sender.Nodes)
		c.logger.Module("art-net").Debugf("Currently %d devices are registered: %v", len(c.sender.Nodes), dev.Ips)
		for _, top := range dev.Topics {
			c.logger.Module("art-net").Debug(top.String())
			for _, out := range top.Output {
				if out == c.universe {
					c.logger.Module("art-net").Infof("node %s receives universe %d", top.Name, out)
				}
			}
		}
	}
}

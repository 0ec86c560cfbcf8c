// Package osc is the UDP transport to TotalMix.
package osc

import (
	"fmt"

	goosc "github.com/hypebeast/go-osc/osc"

	"totalmixctl/internal/logger"
	"totalmixctl/internal/totalmix"
)

type packetSender interface {
	Send(packet goosc.Packet) error
}

// Client sends commands to the console. It implements totalmix.Sink.
type Client struct {
	log    logger.Logger
	sender packetSender
	addr   string
}

// NewClient конструктор.
func NewClient(log logger.Logger, ip string, port int) *Client {
	return &Client{
		log:    log,
		sender: goosc.NewClient(ip, port),
		addr:   fmt.Sprintf("%s:%d", ip, port),
	}
}

// SendMessage sends one float argument. TotalMix expects float32.
func (c *Client) SendMessage(address string, value float64) {
	msg := goosc.NewMessage(address)
	msg.Append(float32(value))
	if err := c.sender.Send(msg); err != nil {
		c.log.Module("osc").Warnf("send %s=%v to %s: %v", address, value, c.addr, err)
		return
	}
	c.log.Module("osc").Tracef("TX %s %v", address, value)
}

// Prime selects the output bus so the console starts broadcasting output
// channel state.
func (c *Client) Prime() {
	c.SendMessage(totalmix.AddressBankStart, 1.0)
	c.SendMessage(totalmix.AddressBusOutput, 1.0)
}

package osc

import (
	"context"
	"errors"
	"fmt"
	"net"

	goosc "github.com/hypebeast/go-osc/osc"

	"totalmixctl/internal/logger"
	"totalmixctl/internal/totalmix"
)

const maxPacketSize = 65535

// Handler receives inbound messages in arrival order.
type Handler func(msg totalmix.Message)

// Server reads OSC packets sent by TotalMix.
type Server struct {
	log     logger.Logger
	addr    string
	handler Handler
	conn    net.PacketConn
}

// NewServer конструктор.
func NewServer(log logger.Logger, addr string, handler Handler) *Server {
	return &Server{log: log, addr: addr, handler: handler}
}

// Start opens the socket and serves until ctx is done.
func (s *Server) Start(ctx context.Context) error {
	conn, err := net.ListenPacket("udp", s.addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.addr, err)
	}
	s.conn = conn
	s.log.Module("osc").Infof("listening on %s", conn.LocalAddr())

	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()
	go s.serve(ctx)
	return nil
}

// LocalAddr is the bound address (useful with port 0).
func (s *Server) LocalAddr() net.Addr {
	if s.conn == nil {
		return nil
	}
	return s.conn.LocalAddr()
}

func (s *Server) serve(ctx context.Context) {
	buf := make([]byte, maxPacketSize)
	for {
		n, from, err := s.conn.ReadFrom(buf)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return
			}
			s.log.Module("osc").Errorf("read: %v", err)
			continue
		}
		packet, err := goosc.ParsePacket(string(buf[:n]))
		if err != nil {
			s.log.Module("osc").Debugf("malformed packet from %s: %v", from, err)
			continue
		}
		s.deliver(packet)
	}
}

func (s *Server) deliver(p goosc.Packet) {
	switch p := p.(type) {
	case *goosc.Message:
		if msg, ok := convert(p); ok {
			s.handler(msg)
		}
	case *goosc.Bundle:
		for _, m := range p.Messages {
			s.deliver(m)
		}
		for _, b := range p.Bundles {
			s.deliver(b)
		}
	}
}

// convert keeps the first argument. Numbers go to Value, strings to Text.
func convert(m *goosc.Message) (totalmix.Message, bool) {
	msg := totalmix.Message{Address: m.Address}
	if len(m.Arguments) == 0 {
		return msg, false
	}
	switch v := m.Arguments[0].(type) {
	case float32:
		msg.Value = float64(v)
	case float64:
		msg.Value = v
	case int32:
		msg.Value = float64(v)
	case int64:
		msg.Value = float64(v)
	case bool:
		if v {
			msg.Value = 1
		}
	case string:
		msg.Text = v
	default:
		return msg, false
	}
	return msg, true
}

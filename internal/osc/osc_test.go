package osc

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	goosc "github.com/hypebeast/go-osc/osc"

	"totalmixctl/internal/logger"
	"totalmixctl/internal/totalmix"
)

type fakeSender struct {
	packets []goosc.Packet
	err     error
}

func (f *fakeSender) Send(p goosc.Packet) error {
	f.packets = append(f.packets, p)
	return f.err
}

func TestClientSendsFloat32(t *testing.T) {
	f := &fakeSender{}
	c := &Client{log: logger.Discard(), sender: f}

	c.SendMessage("/1/volume4", 0.5)
	if len(f.packets) != 1 {
		t.Fatalf("sent %d packets", len(f.packets))
	}
	m := f.packets[0].(*goosc.Message)
	if m.Address != "/1/volume4" || len(m.Arguments) != 1 {
		t.Fatalf("message = %v", m)
	}
	if v, ok := m.Arguments[0].(float32); !ok || v != 0.5 {
		t.Errorf("argument = %#v, want float32(0.5)", m.Arguments[0])
	}
}

func TestClientPrime(t *testing.T) {
	f := &fakeSender{}
	c := &Client{log: logger.Discard(), sender: f}
	c.Prime()
	if len(f.packets) != 2 {
		t.Fatalf("sent %d packets", len(f.packets))
	}
	if a := f.packets[0].(*goosc.Message).Address; a != totalmix.AddressBankStart {
		t.Errorf("first = %q", a)
	}
	if a := f.packets[1].(*goosc.Message).Address; a != totalmix.AddressBusOutput {
		t.Errorf("second = %q", a)
	}
}

func TestClientSendErrorIsNotFatal(t *testing.T) {
	f := &fakeSender{err: errors.New("network unreachable")}
	c := &Client{log: logger.Discard(), sender: f}
	c.SendMessage("/1/mute/1/1", 1)
	c.SendMessage("/1/mute/1/2", 1)
	if len(f.packets) != 2 {
		t.Errorf("sent %d packets after error", len(f.packets))
	}
}

func TestConvert(t *testing.T) {
	tests := []struct {
		name string
		args []interface{}
		want totalmix.Message
		ok   bool
	}{
		{"float32", []interface{}{float32(0.25)}, totalmix.Message{Address: "/a", Value: 0.25}, true},
		{"int32", []interface{}{int32(1)}, totalmix.Message{Address: "/a", Value: 1}, true},
		{"string", []interface{}{"-6.0"}, totalmix.Message{Address: "/a", Text: "-6.0"}, true},
		{"bool", []interface{}{true}, totalmix.Message{Address: "/a", Value: 1}, true},
		{"empty", nil, totalmix.Message{Address: "/a"}, false},
		{"blob", []interface{}{[]byte{1}}, totalmix.Message{Address: "/a"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := convert(goosc.NewMessage("/a", tt.args...))
			if ok != tt.ok || got != tt.want {
				t.Errorf("convert() = %+v, %v, want %+v, %v", got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestServerDeliversInOrder(t *testing.T) {
	got := make(chan totalmix.Message, 8)
	s := NewServer(logger.Discard(), "127.0.0.1:0", func(m totalmix.Message) { got <- m })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := s.Start(ctx); err != nil {
		t.Fatal(err)
	}

	port := s.LocalAddr().(*net.UDPAddr).Port
	client := goosc.NewClient("127.0.0.1", port)
	if err := client.Send(goosc.NewMessage("/1/volume1", float32(0.5))); err != nil {
		t.Fatal(err)
	}
	if err := client.Send(goosc.NewMessage("/1/volume1Val", "-12.1")); err != nil {
		t.Fatal(err)
	}

	want := []totalmix.Message{
		{Address: "/1/volume1", Value: 0.5},
		{Address: "/1/volume1Val", Text: "-12.1"},
	}
	for _, w := range want {
		select {
		case m := <-got:
			if m != w {
				t.Errorf("received %+v, want %+v", m, w)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("timeout waiting for %s", w.Address)
		}
	}
}

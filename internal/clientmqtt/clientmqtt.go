package clientmqtt

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"totalmixctl/internal/logger"
	"totalmixctl/internal/mixer"
	"totalmixctl/internal/totalmix"
)

const allTopic = "all"

// Controller is the part of mixer.Controller the bridge needs.
type Controller interface {
	Do(a mixer.Action) error
}

// ClientMQTT структура клиента MQTT.
type ClientMQTT struct {
	ctx       context.Context
	log       logger.Logger
	cfgClient MQTTConf
	client    mqtt.Client
	opts      *mqtt.ClientOptions
	ctrl      Controller

	mu   sync.Mutex
	sent map[string][]byte
}

// NewClient конструктор.
func NewClient(log logger.Logger, cfgClient MQTTConf, ctrl Controller) *ClientMQTT {
	return &ClientMQTT{
		log:       log,
		cfgClient: cfgClient,
		ctrl:      ctrl,
		sent:      map[string][]byte{},
	}
}

func (c *ClientMQTT) Start(ctx context.Context) error {
	if c.log.GetLevel() == "debug" || c.log.GetLevel() == "trace" {
		mqtt.ERROR = log.New(os.Stdout, "[ERROR] ", 0)
		mqtt.CRITICAL = log.New(os.Stdout, "[CRIT] ", 0)
		mqtt.WARN = log.New(os.Stdout, "[WARN]  ", 0)
	}

	c.ctx = ctx

	c.opts = mqtt.NewClientOptions().
		AddBroker(fmt.Sprintf("%s://%s:%s", c.cfgClient.Schema, c.cfgClient.Host, c.cfgClient.Port)).
		SetUsername(c.cfgClient.User).
		SetPassword(c.cfgClient.Password).
		SetDefaultPublishHandler(c.messageHandler).
		SetOnConnectHandler(c.connectHandler).
		SetConnectionLostHandler(c.connectLostHandler).
		SetClientID(c.cfgClient.ClientID).
		SetOrderMatters(false).
		SetCleanSession(true).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetMaxReconnectInterval(5 * time.Second).
		SetKeepAlive(30 * time.Second).
		SetWill(c.topic("status"), "offline", c.cfgClient.Qos, true)

	c.client = mqtt.NewClient(c.opts)

	token := c.client.Connect()
	select {
	case <-token.Done():
		if token.Error() != nil {
			return token.Error()
		}
	case <-c.ctx.Done():
		return errors.New("context canceled")
	}

	c.log.Module("mqtt").Infof("Status: %v", c.client.IsConnected())
	return nil
}

func (c *ClientMQTT) Stop() error {
	if c.client != nil && c.client.IsConnected() {
		c.client.Publish(c.topic("status"), c.cfgClient.Qos, true, "offline").WaitTimeout(time.Second)
		c.client.Disconnect(500)
	}
	return nil
}

func (c *ClientMQTT) topic(parts ...string) string {
	return strings.Join(append([]string{c.cfgClient.Prefix}, parts...), "/")
}

func (c *ClientMQTT) connectHandler(client mqtt.Client) {
	c.log.Module("mqtt").Info("client connected to server")

	c.mu.Lock()
	c.sent = map[string][]byte{}
	c.mu.Unlock()

	client.Publish(c.topic("status"), c.cfgClient.Qos, true, "online")
	c.sub(c.topic("+", "set"))
}

func (c *ClientMQTT) connectLostHandler(_ mqtt.Client, err error) {
	c.log.Module("mqtt").Errorf("server connect lost: %v", err)
}

func (c *ClientMQTT) messageHandler(_ mqtt.Client, msg mqtt.Message) {
	c.log.Module("mqtt").Debugf("received message: %s from topic: %s", msg.Payload(), msg.Topic())

	action, err := ParseCommand(c.cfgClient.Prefix, msg.Topic(), msg.Payload())
	if err != nil {
		c.log.Module("mqtt").Errorf("message could not be parsed (%s): %v", msg.Payload(), err)
		return
	}
	if err := c.ctrl.Do(action); err != nil {
		c.log.Module("mqtt").Errorf("action %s: %v", action, err)
	}
}

func (c *ClientMQTT) sub(topic string) {
	token := c.client.Subscribe(topic, c.cfgClient.Qos, c.messageHandler)
	go func() {
		select {
		case <-c.ctx.Done():
			return
		case <-token.Done():
			if token.Error() != nil {
				c.log.Module("mqtt").Errorf("topic %s subscription error. %v", topic, token.Error())
				return
			}
		}
		c.log.Module("mqtt").Debugf("topic %s subscribed", topic)
	}()
}

// Update publishes the parts of the snapshot that changed since the last
// call. It implements mixer.Observer.
func (c *ClientMQTT) Update(s totalmix.Snapshot) {
	if c.client == nil || !c.client.IsConnected() {
		return
	}
	for topic, payload := range Payloads(c.cfgClient.Prefix, s) {
		c.publish(topic, payload)
	}
}

func (c *ClientMQTT) publish(topic string, payload []byte) {
	c.mu.Lock()
	if bytes.Equal(c.sent[topic], payload) {
		c.mu.Unlock()
		return
	}
	c.sent[topic] = payload
	c.mu.Unlock()

	token := c.client.Publish(topic, c.cfgClient.Qos, true, payload)
	go func() {
		select {
		case <-c.ctx.Done():
		case <-token.Done():
			if token.Error() != nil {
				c.log.Module("mqtt").Errorf("error publish topic %s. %v", topic, token.Error())
			}
		}
	}()
}

// Payloads renders the retained state topics for a snapshot.
func Payloads(prefix string, s totalmix.Snapshot) map[string][]byte {
	out := make(map[string][]byte, len(s.Channels)+1)
	for _, st := range s.Channels {
		b, err := json.Marshal(ChannelPayload{
			Name:        st.Name,
			Volume:      st.Volume,
			VolumeDB:    st.VolumeDB,
			DisplayText: st.DisplayText,
			Mute:        st.Mute,
		})
		if err != nil {
			continue
		}
		out[prefix+"/"+st.Name+"/state"] = b
	}
	b, err := json.Marshal(SummaryPayload{
		VolumeDB:      s.VolumeDB,
		UniformVolume: s.UniformVolume,
		MuteAllArmed:  s.MuteAllArmed,
		SoloActive:    s.SoloActive,
		SoloTarget:    s.SoloTarget,
	})
	if err == nil {
		out[prefix+"/summary"] = b
	}
	return out
}

// ParseCommand turns <prefix>/<name>/set or <prefix>/all/set into an action.
//
// Channel payloads: mute, unmute, toggle, solo, or JSON {"volume": f} /
// {"volume_db": x}. Group payloads: any group op name, "solo:<name>" and
// "adjust:<dB>".
func ParseCommand(prefix, topic string, payload []byte) (mixer.Action, error) {
	rest := strings.TrimPrefix(topic, prefix+"/")
	parts := strings.Split(rest, "/")
	if rest == topic || len(parts) != 2 || parts[1] != "set" || parts[0] == "" {
		return mixer.Action{}, fmt.Errorf("unexpected topic %q", topic)
	}
	target := parts[0]
	body := strings.TrimSpace(string(payload))

	if target == allTopic {
		name, arg, hasArg := strings.Cut(body, ":")
		op, err := mixer.ParseOp(name)
		if err != nil {
			return mixer.Action{}, err
		}
		switch {
		case op == mixer.OpSolo && hasArg:
			return mixer.Action{Op: op, Channel: strings.TrimSpace(arg)}, nil
		case op == mixer.OpAdjustVolume && hasArg:
			v, err := strconv.ParseFloat(strings.TrimSpace(arg), 64)
			if err != nil {
				return mixer.Action{}, fmt.Errorf("adjust: %w", err)
			}
			a := mixer.Action{Op: op, Value: v}
			return a, a.Validate()
		case op.PerChannel() || op == mixer.OpAdjustVolume:
			return mixer.Action{}, fmt.Errorf("%s needs an argument", op)
		}
		return mixer.Action{Op: op}, nil
	}

	if strings.HasPrefix(body, "{") {
		var cmd VolumeCommand
		if err := json.Unmarshal(payload, &cmd); err != nil {
			return mixer.Action{}, err
		}
		a := mixer.Action{Channel: target}
		switch {
		case cmd.VolumeDB != nil:
			a.Op, a.Value = mixer.OpSetVolumeDB, *cmd.VolumeDB
		case cmd.Volume != nil:
			a.Op, a.Value = mixer.OpSetVolume, *cmd.Volume
		default:
			return mixer.Action{}, errors.New("volume command without value")
		}
		return a, a.Validate()
	}

	op, err := mixer.ParseOp(body)
	if err != nil {
		return mixer.Action{}, err
	}
	switch op {
	case mixer.OpMute, mixer.OpUnmute, mixer.OpToggleMute, mixer.OpSolo:
		return mixer.Action{Op: op, Channel: target}, nil
	}
	return mixer.Action{}, fmt.Errorf("%s is not a channel action", op)
}

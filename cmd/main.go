package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"totalmixctl/internal/artnet"
	"totalmixctl/internal/clientmqtt"
	"totalmixctl/internal/config"
	"totalmixctl/internal/display"
	"totalmixctl/internal/httpapi"
	"totalmixctl/internal/logger"
	"totalmixctl/internal/midi"
	"totalmixctl/internal/mixer"
	"totalmixctl/internal/osc"
	"totalmixctl/internal/totalmix"
)

var (
	configFile = pflag.StringP("config", "c", "configs/conf.toml", "Path to configuration file")
	initConfig = pflag.Bool("init", false, "Write an example configuration to --config and exit")
	checkOnly  = pflag.Bool("check", false, "Validate the configuration and exit")
)

func main() {
	pflag.Parse()

	if *initConfig {
		if err := config.WriteExample(*configFile); err != nil {
			fmt.Printf("failed to write configuration: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("configuration written to %s\n", *configFile)
		return
	}

	cfg, err := config.NewConfig(*configFile)
	if err != nil {
		fmt.Printf("configuration file read error: %v\n", err)
		os.Exit(1)
	}
	if *checkOnly {
		fmt.Println("configuration ok")
		return
	}

	log, err := logger.NewLogger(cfg.Logger)
	if err != nil {
		fmt.Printf("failed to create a logger: %v\n", err)
		os.Exit(1)
	}

	log.Module("logger").Debug("newLogger created ok")

	col, err := totalmix.NewCollection(cfg.ChannelSpecs(),
		totalmix.WithHeadphones(cfg.Display.Headphones),
		totalmix.WithRepresentative(cfg.Display.Representative),
	)
	if err != nil {
		log.Module("totalmix").Errorf("invalid outputs: %v", err)
		os.Exit(1)
	}

	client := osc.NewClient(log, cfg.Client.IP, cfg.Client.Port)
	ctrl := mixer.New(log, col, client, cfg.Display.Refresh.Duration)
	server := osc.NewServer(log, cfg.ServerAddr(), ctrl.Dispatch)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer cancel()

	if err = server.Start(ctx); err != nil {
		log.Module("osc").Errorf("failed to start OSC server: %v", err)
		os.Exit(1)
	}
	client.Prime()
	log.Module("osc").Infof("talking to TotalMix at %s, listening on %s", cfg.ClientAddr(), server.LocalAddr())

	if cfg.Display.Console {
		ctrl.Observe(display.NewConsole(log))
	}

	var mqttClient *clientmqtt.ClientMQTT
	if cfg.MQTT.Enabled {
		mqttClient = clientmqtt.NewClient(log, ConvertConfigClientMQTT(cfg.MQTT), ctrl)
		if err = mqttClient.Start(ctx); err != nil {
			log.Module("mqtt").Errorf("failed to start MQTT service: %v", err)
			cancel()
		} else {
			ctrl.Observe(mqttClient)
		}
	}

	var a *artnet.ArtNet
	if cfg.ArtNet.Enabled {
		a, err = artnet.NewController(log, ConvertConfigArtNet(cfg.ArtNet), ArtNetPatch(cfg.Output))
		if err != nil {
			log.Module("art-net").Errorf("error while creating a new controller art-net. %v", err)
		} else if err = a.Start(ctx); err != nil {
			log.Module("art-net").Errorf("failed to start art-net service: %v", err)
			a = nil
		} else {
			ctrl.Observe(a)
		}
	}

	var surface *midi.Surface
	if cfg.MIDI.Enabled {
		conf, keys := ConvertConfigMIDI(cfg.MIDI, cfg.Output, cfg.Display.StepDB)
		surface, err = midi.New(log, conf, ctrl, keys)
		if err == nil {
			err = surface.Start(ctx)
		}
		if err != nil {
			log.Module("midi").Errorf("failed to start MIDI surface: %v", err)
			surface = nil
		} else {
			ctrl.Observe(surface)
		}
	}

	var api *httpapi.Server
	if cfg.HTTP.Enabled {
		api = httpapi.New(log, cfg.HTTP.Listen, ctrl)
		if err = api.Start(ctx); err != nil {
			log.Module("http").Errorf("failed to start HTTP API: %v", err)
			api = nil
		}
	}

	if err = ctrl.Run(ctx); err != nil {
		log.Module("mixer").Errorf("refresh loop: %v", err)
	}

	if api != nil {
		stopCtx, stop := context.WithTimeout(context.Background(), 2*time.Second)
		if err := api.Stop(stopCtx); err != nil {
			log.Module("http").Errorf("failed to stop HTTP API: %v", err)
		}
		stop()
	}
	if surface != nil {
		surface.Stop()
	}
	if a != nil {
		a.Stop()
	}
	if mqttClient != nil {
		if err := mqttClient.Stop(); err != nil {
			log.Module("mqtt").Errorf("failed to stop MQTT service: %v", err)
		}
	}

	log.Info("shutdown complete")
}

// ConvertConfigClientMQTT преобразует структуры.
func ConvertConfigClientMQTT(cfg config.MQTTConf) clientmqtt.MQTTConf {
	return clientmqtt.MQTTConf{
		ClientID: cfg.ClientID,
		Schema:   "tcp",
		Host:     cfg.Host,
		Port:     cfg.Port,
		User:     cfg.User,
		Password: cfg.Password,
		Qos:      cfg.Qos,
		Prefix:   cfg.Prefix,
	}
}

// ConvertConfigArtNet преобразует структуры.
func ConvertConfigArtNet(cfg config.ArtNetConf) artnet.Conf {
	return artnet.Conf{
		Network:  cfg.Network,
		Universe: cfg.Universe,
		MaxFPS:   cfg.MaxFPS,
	}
}

// ArtNetPatch собирает DMX каналы выходов.
func ArtNetPatch(outputs []config.OutputConf) []artnet.Patch {
	var patch []artnet.Patch
	for _, o := range outputs {
		if o.DMXChannel != nil {
			patch = append(patch, artnet.Patch{Name: o.Name, Channel: *o.DMXChannel})
		}
	}
	return patch
}

// ConvertConfigMIDI собирает раскладку кнопок.
func ConvertConfigMIDI(cfg config.MIDIConf, outputs []config.OutputConf, stepDB float64) (midi.Conf, midi.Keymap) {
	keys := midi.Keymap{
		Outputs: map[string]uint8{},
		Group:   map[uint8]mixer.Action{},
	}
	for _, o := range outputs {
		if o.MIDINote != nil {
			keys.Outputs[o.Name] = *o.MIDINote
		}
	}

	group := []struct {
		note *uint8
		a    mixer.Action
	}{
		{cfg.MuteAllNote, mixer.Action{Op: mixer.OpMuteAll}},
		{cfg.UndoNote, mixer.Action{Op: mixer.OpUndoMuteAll}},
		{cfg.DimNote, mixer.Action{Op: mixer.OpDim}},
		{cfg.SilenceNote, mixer.Action{Op: mixer.OpSilence}},
		{cfg.VolumeUp, mixer.Action{Op: mixer.OpAdjustVolume, Value: stepDB}},
		{cfg.VolumeDown, mixer.Action{Op: mixer.OpAdjustVolume, Value: -stepDB}},
	}
	for _, g := range group {
		if g.note != nil {
			keys.Group[*g.note] = g.a
		}
	}

	return midi.Conf{InPort: cfg.InPort, OutPort: cfg.OutPort, Channel: cfg.Channel}, keys
}

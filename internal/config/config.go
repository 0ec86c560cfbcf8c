package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"

	"totalmixctl/internal/totalmix"
)

// Config структура конфигурации.
type Config struct {
	Logger  LogConf      // Logger - конфигурация регистратора.
	Client  ClientConf   // Client - адрес TotalMix (OSC вход пульта).
	Server  ServerConf   // Server - адрес, на котором слушаем ответы пульта.
	Display DisplayConf  // Display - параметры индикации.
	MQTT    MQTTConf     // MQTT - конфигурация MQTT клиента.
	ArtNet  ArtNetConf   // ArtNet - вывод состояния на DMX.
	MIDI    MIDIConf     // MIDI - кнопки и светодиоды.
	HTTP    HTTPConf     // HTTP - API состояния.
	Output  []OutputConf // Output - выходы пульта в порядке отображения.
}

// LogConf структура конфигурации.
type LogConf struct {
	Level  string `toml:"log-level"` // Level - уровень логирования.
	Format string `toml:"format"`   // Format - text или json.
}

// ClientConf адрес, куда отправляются OSC команды.
type ClientConf struct {
	IP   string `toml:"ip"`
	Port int    `toml:"port"`
}

// ServerConf адрес, на котором принимаются OSC сообщения.
type ServerConf struct {
	IP   string `toml:"ip"`
	Port int    `toml:"port"`
}

// DisplayConf структура конфигурации.
type DisplayConf struct {
	Representative string   `toml:"representative"` // Representative - канал для общей громкости.
	Headphones     string   `toml:"headphones"`     // Headphones - канал, исключённый из проверки громкости.
	Refresh        Duration `toml:"refresh"`        // Refresh - период обновления.
	Console        bool     `toml:"console"`        // Console - выводить таблицу в лог.
	StepDB         float64  `toml:"step-db"`        // StepDB - шаг регулятора громкости.
}

// MQTTConf структура конфигурации.
type MQTTConf struct {
	Enabled  bool   `toml:"enabled"`
	ClientID string `toml:"clientID"` // ClientID - имя клиента.
	Host     string `toml:"server"`   // Host - адрес MQTT сервера.
	Port     string `toml:"port"`     // Port - порт MQTT сервера.
	User     string `toml:"user"`     // User - логин для подключения к MQTT серверу.
	Password string `toml:"password"` // Password - пароль для подключения к MQTT серверу.
	Qos      byte   `toml:"qos"`      // Qos - качество обслуживания.
	Prefix   string `toml:"prefix"`   // Prefix - корень топиков.
}

// ArtNetConf структура конфигурации.
type ArtNetConf struct {
	Enabled  bool   `toml:"enabled"`
	Network  string `toml:"network"`  // Network - подсеть Art-Net (CIDR).
	Universe uint16 `toml:"universe"` // Universe: старший байт - SubUni, младший байт - Net.
	MaxFPS   int    `toml:"max-fps"`
}

// MIDIConf структура конфигурации.
type MIDIConf struct {
	Enabled     bool   `toml:"enabled"`
	InPort      string `toml:"in-port"`
	OutPort     string `toml:"out-port"`
	Channel     uint8  `toml:"channel"`
	MuteAllNote *uint8 `toml:"mute-all-note"`
	UndoNote    *uint8 `toml:"undo-mute-all-note"`
	DimNote     *uint8 `toml:"dim-note"`
	SilenceNote *uint8 `toml:"silence-note"`
	VolumeUp    *uint8 `toml:"volume-up-note"`
	VolumeDown  *uint8 `toml:"volume-down-note"`
}

// HTTPConf структура конфигурации.
type HTTPConf struct {
	Enabled bool   `toml:"enabled"`
	Listen  string `toml:"listen"`
}

// OutputConf один выход пульта.
type OutputConf struct {
	Name       string `toml:"name"`
	Address    string `toml:"address"`
	Stereo     *bool  `toml:"stereo"`
	MIDINote   *uint8 `toml:"midi_note"`
	DMXChannel *int   `toml:"dmx_channel"`
}

// Duration decodes "250ms" style strings.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// NewConfig конструктор. Значения из файла перекрываются переменными
// окружения с префиксом TOTALMIX_.
func NewConfig(path string) (*Config, error) {
	cfg := defaults()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return cfg, err
	}
	if err := applyEnv(cfg); err != nil {
		return cfg, fmt.Errorf("environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Decode reads configuration from a string (used by tests and --check).
func Decode(data string) (*Config, error) {
	cfg := defaults()
	if _, err := toml.Decode(data, cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// envOverrides перекрывает параметры развёртывания.
type envOverrides struct {
	LogLevel    string `env:"LOG_LEVEL"`
	LogFormat   string `env:"LOG_FORMAT"`
	ClientIP    string `env:"CLIENT_IP"`
	ClientPort  int    `env:"CLIENT_PORT"`
	ServerIP    string `env:"SERVER_IP"`
	ServerPort  int    `env:"SERVER_PORT"`
	MQTTEnabled *bool  `env:"MQTT_ENABLED"`
	MQTTServer  string `env:"MQTT_SERVER"`
	MQTTUser    string `env:"MQTT_USER"`
	MQTTPass    string `env:"MQTT_PASSWORD"`
	HTTPEnabled *bool  `env:"HTTP_ENABLED"`
	HTTPListen  string `env:"HTTP_LISTEN"`
}

func applyEnv(cfg *Config) error {
	var o envOverrides
	if err := env.ParseWithOptions(&o, env.Options{Prefix: "TOTALMIX_"}); err != nil {
		return err
	}
	setString(&cfg.Logger.Level, o.LogLevel)
	setString(&cfg.Logger.Format, o.LogFormat)
	setString(&cfg.Client.IP, o.ClientIP)
	setString(&cfg.Server.IP, o.ServerIP)
	setString(&cfg.MQTT.Host, o.MQTTServer)
	setString(&cfg.MQTT.User, o.MQTTUser)
	setString(&cfg.MQTT.Password, o.MQTTPass)
	setString(&cfg.HTTP.Listen, o.HTTPListen)
	if o.ClientPort != 0 {
		cfg.Client.Port = o.ClientPort
	}
	if o.ServerPort != 0 {
		cfg.Server.Port = o.ServerPort
	}
	if o.MQTTEnabled != nil {
		cfg.MQTT.Enabled = *o.MQTTEnabled
	}
	if o.HTTPEnabled != nil {
		cfg.HTTP.Enabled = *o.HTTPEnabled
	}
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func defaults() *Config {
	return &Config{
		Logger:  LogConf{Level: "info", Format: "text"},
		Server:  ServerConf{IP: "0.0.0.0", Port: 9001},
		Display: DisplayConf{Headphones: totalmix.DefaultHeadphones, Refresh: Duration{10 * time.Millisecond}, StepDB: 1},
		MQTT:    MQTTConf{ClientID: "totalmixctl", Port: "1883", Prefix: "totalmix"},
		ArtNet:  ArtNetConf{Network: "2.0.0.0/8", MaxFPS: 30},
		HTTP:    HTTPConf{Listen: ":8080"},
	}
}

// Validate reports every missing required field at once.
func (c *Config) Validate() error {
	var errs []error
	if c.Client.IP == "" {
		errs = append(errs, errors.New(`missing field "ip" in section [Client]`))
	}
	if c.Client.Port == 0 {
		errs = append(errs, errors.New(`missing field "port" in section [Client]`))
	}
	if c.Server.Port == 0 {
		errs = append(errs, errors.New(`missing field "port" in section [Server]`))
	}
	if len(c.Output) == 0 {
		errs = append(errs, errors.New("missing section [[Output]]"))
	}
	for i, o := range c.Output {
		if o.Name == "" {
			errs = append(errs, fmt.Errorf(`missing field "name" in [[Output]] %d`, i))
		}
		if o.Address == "" {
			errs = append(errs, fmt.Errorf(`missing field "address" in [[Output]] %d`, i))
		}
		if o.Stereo == nil {
			errs = append(errs, fmt.Errorf(`missing field "stereo" in [[Output]] %d`, i))
		}
		if o.DMXChannel != nil && (*o.DMXChannel < 1 || *o.DMXChannel > 511) {
			errs = append(errs, fmt.Errorf(`field "dmx_channel" in [[Output]] %d must be 1..511`, i))
		}
	}
	if c.MQTT.Enabled && c.MQTT.Host == "" {
		errs = append(errs, errors.New(`missing field "server" in section [MQTT]`))
	}
	if c.MIDI.Enabled && c.MIDI.InPort == "" {
		errs = append(errs, errors.New(`missing field "in-port" in section [MIDI]`))
	}
	if c.Display.Refresh.Duration <= 0 {
		errs = append(errs, errors.New(`field "refresh" in section [Display] must be positive`))
	}
	return errors.Join(errs...)
}

// ChannelSpecs converts the outputs for totalmix.NewCollection.
func (c *Config) ChannelSpecs() []totalmix.ChannelSpec {
	specs := make([]totalmix.ChannelSpec, len(c.Output))
	for i, o := range c.Output {
		specs[i] = totalmix.ChannelSpec{Name: o.Name, Address: o.Address, Stereo: o.Stereo}
	}
	return specs
}

// ClientAddr returns host:port of the console.
func (c *Config) ClientAddr() string {
	return fmt.Sprintf("%s:%d", c.Client.IP, c.Client.Port)
}

// ServerAddr returns the local listen address.
func (c *Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.IP, c.Server.Port)
}

// WriteExample writes the default configuration unless path already exists.
func WriteExample(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(strings.TrimLeft(Example, "\n")), 0o644)
}

package clientmqtt

import "totalmixctl/internal/totalmix"

type MQTTConf struct {
	ClientID string // ClientID - уникальное имя клиента для брокеров.
	Schema   string // Schema - тип подключения.
	Host     string // Host - адрес MQTT сервера.
	Port     string // Port - порт MQTT сервера.
	User     string // User - логин для подключения к MQTT серверу.
	Password string // Password - пароль для подключения к MQTT серверу.
	Qos      byte   // Qos - качество обслуживания.
	Prefix   string // Prefix - корень топиков.
}

// ChannelPayload is published retained to <prefix>/<name>/state.
// Meter levels are left out; they change on every refresh.
type ChannelPayload struct {
	Name        string                `json:"name"`
	Volume      totalmix.Opt[float64] `json:"volume"`
	VolumeDB    totalmix.Opt[float64] `json:"volume_db"`
	DisplayText totalmix.Opt[string]  `json:"display_text"`
	Mute        totalmix.Opt[bool]    `json:"mute"`
}

// SummaryPayload is published retained to <prefix>/summary.
type SummaryPayload struct {
	VolumeDB      totalmix.Opt[float64] `json:"volume_db"`
	UniformVolume bool                  `json:"uniform_volume"`
	MuteAllArmed  bool                  `json:"mute_all_armed"`
	SoloActive    bool                  `json:"solo_active"`
	SoloTarget    string                `json:"solo_target,omitempty"`
}

// VolumeCommand is the JSON form of a set command.
type VolumeCommand struct {
	Volume   *float64 `json:"volume"`
	VolumeDB *float64 `json:"volume_db"`
}

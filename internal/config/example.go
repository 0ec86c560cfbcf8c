package config

// Example is written by --init.
const Example = `
# ======= TOTALMIXCTL CONFIGURATION FILE =======
# totalmixctl talks to RME TotalMix via OSC and controls its outputs.

[Logger]
log-level = "info"
format = "text"

[Client]
# TotalMix OSC "Port incoming"
ip = "192.168.178.81"
port = 7001

[Server]
# TotalMix OSC "Port outgoing"
ip = "0.0.0.0"
port = 9001

[Display]
representative = "speakers"
headphones = "headphones"
refresh = "10ms"
console = false
step-db = 1.0

[MQTT]
enabled = false
clientID = "totalmixctl"
server = "localhost"
port = "1883"
prefix = "totalmix"

[ArtNet]
enabled = false
network = "2.0.0.0/8"
universe = 0
max-fps = 30

[MIDI]
enabled = false
in-port = "APC MINI"
out-port = "APC MINI"
channel = 0
mute-all-note = 82
undo-mute-all-note = 83
dim-note = 84
silence-note = 85
volume-up-note = 86
volume-down-note = 87

[HTTP]
enabled = false
listen = ":8080"

# Add or remove [[Output]] blocks as needed.

[[Output]]
name = "headphones"
address = "/1/volume5"
stereo = true
midi_note = 0
dmx_channel = 1

[[Output]]
name = "speakers"
address = "/1/volume1"
stereo = true
midi_note = 1
dmx_channel = 3

[[Output]]
name = "center"
address = "/1/volume2"
stereo = false
midi_note = 2
dmx_channel = 5

[[Output]]
name = "lfe"
address = "/1/volume3"
stereo = false
midi_note = 3
dmx_channel = 7

[[Output]]
name = "rear"
address = "/1/volume4"
stereo = true
midi_note = 4
dmx_channel = 9
`

// Package display formats the mirror for small screens and the console.
package display

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"totalmixctl/internal/logger"
	"totalmixctl/internal/totalmix"
)

// FloorDB is shown as minus infinity.
const FloorDB = -65.0

// VolumeText formats the summary volume like the console does.
func VolumeText(db totalmix.Opt[float64]) string {
	v, ok := db.Get()
	switch {
	case !ok:
		return "n.a."
	case v == 0:
		return " 0.0"
	case v <= FloorDB:
		return "-∞"
	case v > 0:
		return fmt.Sprintf("+%.1f", v)
	}
	return fmt.Sprintf("%.1f", v)
}

// Summary is the main readout with a marker when the outputs differ.
func Summary(s totalmix.Snapshot) string {
	text := VolumeText(s.VolumeDB)
	if !s.UniformVolume {
		text += " *"
	}
	return text
}

// LevelText renders a meter reading.
func LevelText(st totalmix.ChannelState) string {
	if st.Stereo {
		return fmt.Sprintf("%s/%s", level(st.Levels.Left), level(st.Levels.Right))
	}
	return level(st.Levels.Left)
}

func level(v totalmix.Opt[float64]) string {
	f, ok := v.Get()
	if !ok {
		return "-"
	}
	return fmt.Sprintf("%.2f", f)
}

// Row is one channel line: name, console display value, levels, mute.
func Row(st totalmix.ChannelState) []string {
	mute := "-"
	if st.Mute.Or(false) {
		mute = "MUTE"
	}
	return []string{st.Name + ":", st.DisplayText.Or("n.a."), LevelText(st), mute}
}

var (
	cellRight  = lipgloss.NewStyle().Width(15).Align(lipgloss.Right)
	cellCenter = lipgloss.NewStyle().Width(15).Align(lipgloss.Center)
	muted      = lipgloss.NewStyle().Bold(true)
)

// Table renders all channels, one line each.
func Table(s totalmix.Snapshot) string {
	lines := make([]string, 0, len(s.Channels)+1)
	lines = append(lines, cellRight.Render("volume")+" "+cellRight.Render(Summary(s)))
	for _, st := range s.Channels {
		r := Row(st)
		m := cellCenter.Render(r[3])
		if st.Mute.Or(false) {
			m = muted.Render(m)
		}
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top,
			cellRight.Render(r[0]), " ",
			cellRight.Render(r[1]), " ",
			cellRight.Render(r[2]), " ",
			m))
	}
	return strings.Join(lines, "\n")
}

// Console logs the table at debug level when it changes. It implements
// mixer.Observer.
type Console struct {
	log  logger.Logger
	last string
}

// NewConsole конструктор.
func NewConsole(log logger.Logger) *Console {
	return &Console{log: log}
}

func (c *Console) Update(s totalmix.Snapshot) {
	t := Table(s)
	if t == c.last {
		return
	}
	c.last = t
	c.log.Module("display").Debug("\n" + t)
}

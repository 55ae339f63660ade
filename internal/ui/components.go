package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// formatDuration formats a duration as m:ss.
func formatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d.Seconds())
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

// renderPosition shows elapsed time, and the total when it is known.
func renderPosition(pos, dur time.Duration) string {
	if dur <= 0 {
		return formatDuration(pos) + " live"
	}
	return formatDuration(pos) + " / " + formatDuration(dur)
}

func renderVolumePercent(vol float64) string {
	return fmt.Sprintf("vol %d%%", int(vol*100+0.5))
}

// truncate cuts s to at most width cells.
func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return runewidth.Truncate(s, width, "…")
}

func (m Model) renderSidebar(height int) string {
	th := m.theme()
	accent := lipgloss.NewStyle().Foreground(lipgloss.Color(th.Accent))
	inner := sidebarWidth - 3

	var b strings.Builder
	line := func(s string) {
		b.WriteString(s)
		b.WriteByte('\n')
	}

	line(accent.Bold(true).Render("orbviz"))
	line("")
	line(labelStyle.Render("NOW PLAYING"))
	label := m.ctrl.Label()
	if label == "" {
		label = "nothing"
	}
	line(titleStyle.Render(truncate(label, inner)))
	line(statusStyle.Render(m.playState()))
	if p := m.playback(); p != nil {
		line(labelStyle.Render(renderPosition(p.Position(), p.Duration())))
	}
	line("")
	line(labelStyle.Render("THEME"))
	line(accent.Render(truncate(th.Name, inner)))
	line(labelStyle.Render("MODE"))
	line(statusStyle.Render(truncate(m.mode().Name, inner)))
	line(labelStyle.Render("RAIN"))
	if m.rainOn {
		line(statusStyle.Render("on"))
	} else {
		line(statusStyle.Render("off"))
	}

	if presets := m.catalog.Presets; len(presets) > 0 {
		line("")
		line(labelStyle.Render("PRESETS"))
		for i, p := range presets {
			name := truncate(p.Name, inner-2)
			if i == m.presetIdx {
				line(accent.Render("› " + name))
			} else {
				line(helpStyle.Render("  " + name))
			}
		}
	}

	line("")
	meter := m.meter
	meter.FullColor = th.Accent
	line(labelStyle.Render("LEVELS"))
	line(meter.ViewAs(m.set.Sphere.Bass.Value) + labelStyle.Render(" bass"))
	line(meter.ViewAs(m.set.Sphere.Mid.Value) + labelStyle.Render(" mid"))
	line(meter.ViewAs(m.set.Sphere.High.Value) + labelStyle.Render(" high"))
	line(meter.ViewAs(m.volume) + labelStyle.Render(" vol"))
	b.WriteString(statusStyle.Render(renderVolumePercent(m.volume)))

	return sidebarStyle.
		BorderForeground(lipgloss.Color(th.Accent)).
		Height(max(height, 1)).
		MaxHeight(max(height, 1)).
		Render(b.String())
}

func newMeter() progress.Model {
	return progress.New(
		progress.WithSolidFill("#888888"),
		progress.WithoutPercentage(),
		progress.WithWidth(sidebarWidth-9),
	)
}

func (m Model) playState() string {
	switch {
	case m.pending > 0:
		return m.spinner.View() + " loading"
	case !m.ctrl.Active():
		return "idle"
	case m.paused:
		return "❚❚ paused"
	default:
		return "▶ playing"
	}
}

func (m Model) renderStatus(width int) string {
	if m.status == "" {
		return ""
	}
	s := truncate(m.status, width-2)
	if m.statusErr {
		return errorStyle.Render(s)
	}
	return statusStyle.Render(s)
}

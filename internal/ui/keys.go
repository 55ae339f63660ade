package ui

import tea "github.com/charmbracelet/bubbletea"

const volumeStep = 0.05

func isQuit(msg tea.KeyMsg) bool {
	switch msg.String() {
	case "q", "ctrl+c":
		return true
	}
	return false
}

func helpText(hasPresets bool) string {
	s := "space pause  x stop  t/T theme  m/M mode  r rain  +/- volume  o open"
	if hasPresets {
		s += "  n/p preset"
	}
	s += "  q quit"
	return s
}

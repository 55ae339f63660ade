package ui

import (
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/olivier-w/orbviz/internal/media"
)

type fileItem struct {
	name string
	ext  string
}

func (i fileItem) Title() string       { return i.name }
func (i fileItem) Description() string { return i.ext }
func (i fileItem) FilterValue() string { return i.name }

type urlItem struct{}

func (i urlItem) Title() string       { return "Play from URL..." }
func (i urlItem) Description() string { return "enter a URL to stream" }
func (i urlItem) FilterValue() string { return "url" }

// BrowserModel picks a file in a directory or a URL to stream. It reports
// the outcome to its parent as a message.
type BrowserModel struct {
	dir     string
	list    list.Model
	input   textinput.Model
	urlMode bool
	err     error
}

// NewBrowser lists the playable files in dir.
func NewBrowser(dir string, width, height int) BrowserModel {
	items := []list.Item{urlItem{}}
	names, err := media.Scan(dir)
	for _, name := range names {
		ext := filepath.Ext(name)
		items = append(items, fileItem{name: strings.TrimSuffix(name, ext), ext: strings.ToLower(ext)})
	}

	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.
		Foreground(lipgloss.AdaptiveColor{Light: "#333333", Dark: "#FFFFFF"}).
		BorderLeftForeground(lipgloss.AdaptiveColor{Light: "#555555", Dark: "#AAAAAA"})
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.
		Foreground(lipgloss.AdaptiveColor{Light: "#666666", Dark: "#888888"}).
		BorderLeftForeground(lipgloss.AdaptiveColor{Light: "#555555", Dark: "#AAAAAA"})

	if width <= 0 {
		width = 80
	}
	if height <= 0 {
		height = 20
	}
	l := list.New(items, delegate, width, height)
	l.Title = "open"
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.Styles.Title = headerStyle

	ti := textinput.New()
	ti.Placeholder = "https://..."
	ti.CharLimit = 2048
	ti.Width = 60

	return BrowserModel{dir: dir, list: l, input: ti, err: err}
}

// Error returns the directory scan error, if any.
func (m BrowserModel) Error() error {
	return m.err
}

func (m BrowserModel) Init() tea.Cmd {
	return tea.SetWindowTitle("orbviz — open")
}

func (m BrowserModel) Update(msg tea.Msg) (BrowserModel, tea.Cmd) {
	if m.urlMode {
		return m.updateURLInput(msg)
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.list.FilterState() == list.Filtering {
			break
		}

		switch msg.String() {
		case "enter":
			switch item := m.list.SelectedItem().(type) {
			case urlItem:
				m.urlMode = true
				m.input.Focus()
				return m, textinput.Blink
			case fileItem:
				return m, selected(filepath.Join(m.dir, item.name+item.ext))
			}
		case "q", "esc", "ctrl+c":
			return m, cancelled
		}

	case tea.WindowSizeMsg:
		m.list.SetWidth(msg.Width)
		m.list.SetHeight(msg.Height)
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m BrowserModel) updateURLInput(msg tea.Msg) (BrowserModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "enter":
			if url := strings.TrimSpace(m.input.Value()); url != "" {
				return m, selected(url)
			}
			return m, nil
		case "esc":
			m.urlMode = false
			m.input.Reset()
			m.input.Blur()
			return m, nil
		case "ctrl+c":
			return m, cancelled
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m BrowserModel) View() string {
	if m.urlMode {
		s := "\n"
		s += "  " + headerStyle.Render("orbviz") + "\n"
		s += "\n"
		s += "  " + statusStyle.Render("Enter URL:") + "\n"
		s += "  " + m.input.View() + "\n"
		s += "\n"
		s += "  " + helpStyle.Render("enter confirm  esc back  ctrl+c close") + "\n"
		return s
	}
	if m.err != nil {
		return m.list.View() + "\n  " + errorStyle.Render(m.err.Error())
	}
	return m.list.View()
}

func selected(loc string) tea.Cmd {
	return func() tea.Msg { return browserSelectedMsg{loc: loc} }
}

func cancelled() tea.Msg { return browserCancelledMsg{} }

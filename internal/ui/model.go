package ui

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/olivier-w/orbviz/internal/drivers"
	"github.com/olivier-w/orbviz/internal/media"
	"github.com/olivier-w/orbviz/internal/observe"
	"github.com/olivier-w/orbviz/internal/render"
	"github.com/olivier-w/orbviz/internal/session"
	"github.com/olivier-w/orbviz/internal/theme"
)

const defaultFPS = 30

// Options configures a Model.
type Options struct {
	FPS      int
	Theme    string
	Mode     string
	Rain     bool
	Volume   float64
	MusicDir string
	Drivers  drivers.Config
	Metrics  *observe.Metrics

	// Initial, when set, is started as soon as the program runs.
	Initial *session.Source
}

// playback is the part of a player the keys can reach.
type playback interface {
	TogglePause()
	Paused() bool
	AdjustVolume(delta float64)
	Volume() float64
	Position() time.Duration
	Duration() time.Duration
}

// Model is the Bubbletea model for the orbviz TUI.
type Model struct {
	ctx     context.Context
	cancel  context.CancelFunc
	ctrl    *session.Controller
	sampler *session.Sampler
	catalog *theme.Catalog
	set     *drivers.Set
	scene   *render.Scene
	metrics *observe.Metrics

	fps       int
	epoch     time.Time
	t         float64
	themeIdx  int
	modeIdx   int
	presetIdx int
	rainOn    bool
	musicDir  string
	initial   *session.Source

	width  int
	height int
	dots   []drivers.Dot
	frame  string

	pending   int
	spinner   spinner.Model
	meter     progress.Model
	paused    bool
	volume    float64
	status    string
	statusErr bool

	browsing bool
	browser  BrowserModel
	quitting bool
}

// New creates a Model driving ctrl with the tables in catalog.
func New(ctrl *session.Controller, catalog *theme.Catalog, opts Options) Model {
	fps := opts.FPS
	if fps <= 0 {
		fps = defaultFPS
	}
	s := spinner.New()
	s.Spinner = spinner.Dot

	ctx, cancel := context.WithCancel(context.Background())
	m := Model{
		ctx:      ctx,
		cancel:   cancel,
		ctrl:     ctrl,
		sampler:  ctrl.Sampler(),
		catalog:  catalog,
		set:      drivers.NewSet(opts.Drivers),
		scene:    render.NewScene(fps),
		metrics:  opts.Metrics,
		fps:      fps,
		epoch:    time.Now(),
		themeIdx: max(catalog.ThemeIndex(opts.Theme), 0),
		modeIdx:  max(catalog.ModeIndex(opts.Mode), 0),
		rainOn:   opts.Rain,
		musicDir: opts.MusicDir,
		volume:   opts.Volume,
		spinner:  s,
		meter:    newMeter(),
		width:    80,
		height:   24,
	}
	if opts.Initial != nil {
		src := *opts.Initial
		m.initial = &src
		m.pending = 1
		for i, p := range catalog.Presets {
			if media.Resolve(p.Name, p.Location, opts.MusicDir) == src {
				m.presetIdx = i
				break
			}
		}
	}
	return m
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		frameCmd(m.fps),
		waitEvent(m.ctrl.Events()),
		tea.SetWindowTitle(windowTitle("")),
	}
	if m.initial != nil {
		cmds = append(cmds, startCmd(m.ctx, m.ctrl, *m.initial), m.spinner.Tick)
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	return m.handleMsg(msg)
}

func (m Model) handleMsg(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case frameMsg:
		m.t = max(time.Time(msg).Sub(m.epoch).Seconds(), 0)
		begin := time.Now()
		m.renderFrame()
		m.metrics.RecordFrame(m.ctx, m.mode().ID, time.Since(begin))
		return m, frameCmd(m.fps)

	case sessionEventMsg:
		return m.handleEvent(session.Event(msg))

	case startDoneMsg:
		m.pending = max(m.pending-1, 0)
		if msg.err != nil {
			m.setError("could not start " + msg.label + ": " + msg.err.Error())
		}
		return m, nil

	case spinner.TickMsg:
		if m.pending == 0 {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case browserSelectedMsg:
		m.browsing = false
		return m.open(msg.loc)

	case browserCancelledMsg:
		m.browsing = false
		return m, nil

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		if m.browsing {
			m.browser, _ = m.browser.Update(msg)
		}
		return m, nil
	}

	if m.browsing {
		var cmd tea.Cmd
		m.browser, cmd = m.browser.Update(msg)
		return m, cmd
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if msg.Paste {
		return m.open(string(msg.Runes))
	}
	if isQuit(msg) {
		m.quitting = true
		m.cancel()
		m.ctrl.Close()
		return m, tea.Sequence(tea.SetWindowTitle(""), tea.Quit)
	}

	switch msg.String() {
	case " ":
		if p := m.playback(); p != nil {
			p.TogglePause()
			m.paused = p.Paused()
		}
	case "x":
		m.ctrl.Stop()
		m.paused = false
	case "n", "p":
		if len(m.catalog.Presets) == 0 {
			return m, nil
		}
		delta := 1
		if msg.String() == "p" {
			delta = -1
		}
		m.presetIdx = theme.Cycle(m.presetIdx, delta, len(m.catalog.Presets))
		pr := m.catalog.Presets[m.presetIdx]
		return m.start(media.Resolve(pr.Name, pr.Location, m.musicDir))
	case "t", "T":
		m.themeIdx = theme.Cycle(m.themeIdx, direction(msg.String(), "t"), len(m.catalog.Themes))
	case "m", "M":
		m.modeIdx = theme.Cycle(m.modeIdx, direction(msg.String(), "m"), len(m.catalog.Modes))
		m.scene.Camera.Kick()
	case "r":
		m.rainOn = !m.rainOn
	case "o":
		m.browsing = true
		m.browser = NewBrowser(".", m.width, m.height)
		return m, m.browser.Init()
	case "+", "=":
		m.adjustVolume(volumeStep)
	case "-", "_":
		m.adjustVolume(-volumeStep)
	}
	return m, nil
}

func (m Model) handleEvent(ev session.Event) (Model, tea.Cmd) {
	next := waitEvent(m.ctrl.Events())
	switch ev.Kind {
	case session.EventStarted:
		m.paused = false
		m.setStatus("")
		if p := m.playback(); p != nil {
			m.volume = p.Volume()
		}
	case session.EventEnded:
		m.setStatus("finished " + ev.Label)
	case session.EventStopped:
		m.setStatus("stopped")
	case session.EventFailed:
		slog.Debug("session event", "kind", ev.Kind, "label", ev.Label, "error", ev.Err)
	}
	return m, tea.Batch(next, tea.SetWindowTitle(windowTitle(m.ctrl.Label())))
}

// open starts a session from a pasted or picked location.
func (m Model) open(text string) (Model, tea.Cmd) {
	loc, ok := media.ParseDrop(text)
	if !ok {
		m.setError("not a playable file or URL (supported: " + media.SupportedExtsList() + ")")
		return m, nil
	}
	if !session.IsURL(loc) {
		if err := media.CheckPath(loc); err != nil {
			m.setError(err.Error())
			return m, nil
		}
	}
	return m.start(media.Resolve("", loc, ""))
}

func (m Model) start(src session.Source) (Model, tea.Cmd) {
	m.pending++
	m.setStatus("")
	cmds := []tea.Cmd{startCmd(m.ctx, m.ctrl, src)}
	if m.pending == 1 {
		cmds = append(cmds, m.spinner.Tick)
	}
	return m, tea.Batch(cmds...)
}

func (m *Model) renderFrame() {
	cols, rows := m.sceneSize()
	f := drivers.Frame{
		T:      m.t,
		Theme:  m.theme(),
		Mode:   m.mode(),
		RainOn: m.rainOn,
	}

	m.sampler.Tick()
	m.set.Rain.Resize(cols, rows)
	m.set.Update(m.sampler, f)
	m.dots = m.set.Emit(m.dots[:0], f)
	m.scene.Draw(m.dots, f.Theme, cols, rows, f.T)

	var rain *drivers.Rain
	if f.RainOn {
		rain = m.set.Rain
	}
	m.frame = m.scene.Compose(rain, f.Theme)
}

// sceneSize is the cell area left for the scene after the sidebar and the
// two footer lines.
func (m Model) sceneSize() (cols, rows int) {
	cols = m.width
	if m.showSidebar() {
		cols -= sidebarWidth
	}
	return max(cols, 0), max(m.height-2, 0)
}

func (m Model) showSidebar() bool {
	return m.width >= 2*sidebarWidth
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.browsing {
		return m.browser.View()
	}

	_, rows := m.sceneSize()
	body := m.frame
	if m.showSidebar() {
		body = lipgloss.JoinHorizontal(lipgloss.Top, body, m.renderSidebar(rows))
	}

	var b strings.Builder
	b.WriteString(body)
	b.WriteString("\n ")
	b.WriteString(m.renderStatus(m.width))
	b.WriteString("\n ")
	b.WriteString(helpStyle.Render(truncate(helpText(len(m.catalog.Presets) > 0), m.width-2)))
	return b.String()
}

func (m Model) theme() theme.Theme { return m.catalog.Themes[m.themeIdx] }

func (m Model) mode() theme.Mode { return m.catalog.Modes[m.modeIdx] }

func (m Model) playback() playback {
	p, _ := m.ctrl.Stream().(playback)
	return p
}

func (m *Model) adjustVolume(delta float64) {
	if p := m.playback(); p != nil {
		p.AdjustVolume(delta)
		m.volume = p.Volume()
	}
}

func (m *Model) setStatus(s string) {
	m.status, m.statusErr = s, false
}

func (m *Model) setError(s string) {
	m.status, m.statusErr = s, true
}

func direction(key, forward string) int {
	if key == forward {
		return 1
	}
	return -1
}

func windowTitle(label string) string {
	if label == "" {
		return "orbviz"
	}
	return "▶ " + label + " — orbviz"
}

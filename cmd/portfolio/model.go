package main

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	scrollspy "github.com/grindlemire/go-scrollspy"
	"github.com/grindlemire/go-scrollspy/internal/config"
	"github.com/grindlemire/go-scrollspy/internal/debug"
	"github.com/grindlemire/go-scrollspy/page"
)

const (
	headerHeight = 1
	wheelStep    = 3

	defaultWidth  = 80
	defaultHeight = 24
)

type (
	frameMsg     struct{}
	configMsg    struct{ cfg config.Config }
	configErrMsg struct{ err error }
)

// model is the bubbletea model of the portfolio page. The page host and
// the tracking session are driven from Update, so every callback the
// session makes runs on the program goroutine.
type model struct {
	cfg    config.Config
	logger scrollspy.Logger

	page    *page.Page
	session *scrollspy.Session
	unbind  scrollspy.Unbind
	active  string

	width, height int
}

func newModel(cfg config.Config, logger scrollspy.Logger) (*model, error) {
	m := &model{
		logger: logger,
		width:  defaultWidth,
		height: defaultHeight,
	}
	if err := m.restart(cfg); err != nil {
		return nil, err
	}
	return m, nil
}

// restart rebuilds the page from cfg and starts a new tracking session,
// keeping the current scroll offset where the new content allows.
func (m *model) restart(cfg config.Config) error {
	band, err := cfg.Band()
	if err != nil {
		return err
	}

	p := page.New(m.width, m.bodyHeight())
	for _, s := range cfg.Sections {
		if _, err := p.AddSection(s.ID, s.Height); err != nil {
			return err
		}
	}
	regions, err := p.Regions()
	if err != nil {
		return err
	}

	opts := []scrollspy.Option{
		scrollspy.WithActivationBand(band),
		scrollspy.WithInitialFallback(cfg.Fallback),
	}
	// Sessions keep their own debug log when one is open.
	if !debug.Enabled() {
		opts = append(opts, scrollspy.WithLogger(m.logger))
	}
	session, err := scrollspy.Track(p, regions, opts...)
	if err != nil {
		return err
	}

	scrollY := 0
	if m.page != nil {
		scrollY = m.page.ScrollY()
	}
	m.stop()

	m.cfg = cfg
	m.page = p
	m.session = session
	m.active = ""
	m.unbind = session.Active().Bind(func(id string) {
		m.active = id
	})

	p.MountAll()
	p.ScrollTo(scrollY)
	return nil
}

func (m *model) stop() {
	if m.unbind != nil {
		m.unbind()
		m.unbind = nil
	}
	if m.session != nil {
		m.session.Stop()
		m.session = nil
	}
}

func (m *model) bodyHeight() int {
	return max(0, m.height-headerHeight)
}

func (m *model) frame() tea.Cmd {
	interval := time.Second / time.Duration(max(1, m.cfg.FrameRate))
	return tea.Tick(interval, func(time.Time) tea.Msg {
		return frameMsg{}
	})
}

func (m *model) Init() tea.Cmd {
	return m.frame()
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case frameMsg:
		m.page.Tick()
		return m, m.frame()

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.page.Resize(m.width, m.bodyHeight())
		return m, nil

	case tea.KeyMsg:
		return m, m.handleKey(msg)

	case tea.MouseMsg:
		m.handleMouse(msg)
		return m, nil

	case configMsg:
		if err := m.restart(msg.cfg); err != nil {
			m.logger.Warn("config reload rejected", "error", err)
			return m, nil
		}
		m.logger.Info("config reloaded", "session", m.session.ID(), "root_margin", msg.cfg.RootMargin)
		return m, nil

	case configErrMsg:
		m.logger.Warn("config reload failed", "error", msg.err)
		return m, nil
	}
	return m, nil
}

func (m *model) handleKey(msg tea.KeyMsg) tea.Cmd {
	p := m.page
	switch key := msg.String(); key {
	case "ctrl+c", "q":
		return tea.Quit
	case "up", "k":
		p.ScrollBy(-1)
	case "down", "j":
		p.ScrollBy(1)
	case "pgup":
		p.ScrollBy(-m.bodyHeight())
	case "pgdown", " ":
		p.ScrollBy(m.bodyHeight())
	case "home", "g":
		p.ScrollTo(0)
	case "end", "G":
		p.ScrollTo(p.MaxScroll())
	case "tab":
		m.jump(1)
	case "shift+tab":
		m.jump(-1)
	default:
		if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
			m.navigate(int(key[0] - '1'))
		}
	}
	return nil
}

func (m *model) handleMouse(msg tea.MouseMsg) {
	switch {
	case msg.Button == tea.MouseButtonWheelUp:
		m.page.ScrollBy(-wheelStep)
	case msg.Button == tea.MouseButtonWheelDown:
		m.page.ScrollBy(wheelStep)
	case msg.Button == tea.MouseButtonLeft && msg.Action == tea.MouseActionPress && msg.Y < headerHeight:
		if i := m.linkAt(msg.X); i >= 0 {
			m.navigate(i)
		}
	}
}

// navigate scrolls to the i-th section, like following its header link.
func (m *model) navigate(i int) {
	if i < 0 || i >= len(m.cfg.Sections) {
		return
	}
	id := m.cfg.Sections[i].ID
	if err := m.page.ScrollToSection(id); err != nil {
		m.logger.Warn("navigate", "section", id, "error", err)
	}
}

// jump moves to the section delta positions away from the active one.
func (m *model) jump(delta int) {
	i := m.sectionIndex(m.active)
	if i < 0 {
		i = 0
	} else {
		i += delta
	}
	m.navigate(max(0, min(i, len(m.cfg.Sections)-1)))
}

func (m *model) sectionIndex(id string) int {
	for i, s := range m.cfg.Sections {
		if s.ID == id {
			return i
		}
	}
	return -1
}

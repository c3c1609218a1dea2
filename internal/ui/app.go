package ui

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/five82/hoverdeck/internal/prefs"
	"github.com/five82/hoverdeck/internal/state"
)

// View represents the current active view.
type View int

const (
	ViewOverview View = iota
	ViewLogs
	ViewState
)

// noticeTTL is how long a command notice stays in the footer.
const noticeTTL = 5 * time.Second

var viewOrder = []View{ViewOverview, ViewLogs, ViewState}

func (v View) String() string {
	switch v {
	case ViewLogs:
		return "Logs"
	case ViewState:
		return "State"
	default:
		return "Overview"
	}
}

func viewFromName(name string) View {
	switch strings.ToLower(name) {
	case "logs":
		return ViewLogs
	case "state":
		return ViewState
	default:
		return ViewOverview
	}
}

// Commands are the operator actions the UI can issue. Implementations must
// return immediately; outcomes arrive through the store.
type Commands interface {
	Refresh()
	ClearCache()
	Shutdown()
	SetLogsFrom(from *time.Time)
}

// Options configures the UI.
type Options struct {
	Context   context.Context
	Store     *state.Store
	Commands  Commands
	AdminURL  string
	Prefs     prefs.Prefs
	PrefsPath string
	Logger    logrus.FieldLogger
}

// Model is the root application state for Bubble Tea.
type Model struct {
	ctx         context.Context
	store       *state.Store
	commands    Commands
	log         logrus.FieldLogger
	adminURL    string
	prefs       prefs.Prefs
	prefsPath   string
	changes     <-chan struct{}
	unsubscribe func()

	keys        keyMap
	theme       Theme
	currentView View
	width       int
	height      int
	ready       bool

	snapshot    state.Snapshot
	lastUpdated time.Time
	now         time.Time

	showHelp    bool
	modal       Modal
	notice      string
	noticeUntil time.Time

	logViewport viewport.Model
	follow      bool
	filtering   bool
	filterInput textinput.Model
	filterErr   string
	logsFrom    *time.Time
}

// New creates a new Bubble Tea model and subscribes it to the store.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	ti := textinput.New()
	ti.Placeholder = "HH:MM or YYYY-MM-DD HH:MM, empty for all"
	ti.CharLimit = 40

	m := Model{
		ctx:         ctx,
		store:       opts.Store,
		commands:    opts.Commands,
		log:         logger,
		adminURL:    opts.AdminURL,
		prefs:       opts.Prefs,
		prefsPath:   prefsPath,
		unsubscribe: func() {},
		keys:        DefaultKeyMap(),
		theme:       GetTheme(opts.Prefs.Theme),
		currentView: viewFromName(opts.Prefs.StartView),
		now:         time.Now(),
		follow:      true,
		filterInput: ti,
	}
	if m.store != nil {
		m.changes, m.unsubscribe = m.store.Subscribe()
		m.snapshot = m.store.Snapshot()
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tickCmd(time.Second)}
	if m.store != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.store), waitForChangeCmd(m.ctx, m.changes))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.updateLogViewport()
		return m, nil

	case tickMsg:
		m.now = time.Time(msg)
		if m.notice != "" && !m.now.Before(m.noticeUntil) {
			m.notice = ""
		}
		return m, tickCmd(time.Second)

	case snapshotMsg:
		m.applySnapshot(state.Snapshot(msg))
		return m, nil

	case storeChangedMsg:
		if m.store == nil {
			return m, nil
		}
		m.applySnapshot(m.store.Snapshot())
		return m, waitForChangeCmd(m.ctx, m.changes)
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Connecting to " + m.adminURL + "..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	if m.modal != nil {
		return m.modal.View(m.theme, m.width, m.height)
	}
	return m.renderMain()
}

func (m *Model) applySnapshot(snap state.Snapshot) {
	m.snapshot = snap
	m.lastUpdated = time.Now()
	m.now = m.lastUpdated
	m.updateLogViewport()
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}

	if m.modal != nil {
		next, cmd, done := m.modal.Update(msg, m.keys)
		if done {
			m.modal = nil
		} else {
			m.modal = next
		}
		return m, cmd
	}

	if m.filtering {
		return m.handleFilterKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.prefs.Theme = m.theme.Name
		if err := prefs.Save(m.prefsPath, m.prefs); err != nil {
			m.log.WithError(err).Warn("save preferences failed")
		}
		m.updateLogViewport()
		return m, nil

	case key.Matches(msg, m.keys.Tab):
		m.switchView(1)
		return m, nil

	case key.Matches(msg, m.keys.ShiftTab):
		m.switchView(-1)
		return m, nil

	case key.Matches(msg, m.keys.Escape):
		m.currentView = ViewOverview
		return m, nil

	case key.Matches(msg, m.keys.ViewOverview):
		m.currentView = ViewOverview
		return m, nil

	case key.Matches(msg, m.keys.ViewLogs):
		m.currentView = ViewLogs
		m.updateLogViewport()
		return m, nil

	case key.Matches(msg, m.keys.ViewState):
		m.currentView = ViewState
		return m, nil

	case key.Matches(msg, m.keys.Refresh):
		if m.commands != nil {
			m.commands.Refresh()
			m.setNotice("refreshing")
		}
		return m, nil

	case key.Matches(msg, m.keys.ClearCache):
		m.ask("Clear cache", "Delete every cached response on the proxy?", func(c Commands) { c.ClearCache() })
		return m, nil

	case key.Matches(msg, m.keys.Shutdown):
		m.ask("Shut down", "Stop the proxy? It will have to be restarted by hand.", func(c Commands) { c.Shutdown() })
		return m, nil

	case key.Matches(msg, m.keys.SetFilter):
		m.currentView = ViewLogs
		m.filtering = true
		m.filterErr = ""
		m.filterInput.SetValue("")
		return m, m.filterInput.Focus()

	case key.Matches(msg, m.keys.ResetFilter):
		m.setLogsFrom(nil)
		return m, nil
	}

	if m.currentView == ViewLogs {
		return m.handleLogsKey(msg)
	}
	return m, nil
}

// ask runs action after confirmation, or immediately when prompts are off.
func (m *Model) ask(title, prompt string, action func(Commands)) {
	if m.commands == nil {
		return
	}
	commands := m.commands
	m.notice = ""
	if !m.prefs.Confirm {
		action(commands)
		return
	}
	m.modal = confirmModal{
		title:  title,
		prompt: prompt,
		onYes:  func() { action(commands) },
	}
}

func (m *Model) setNotice(msg string) {
	m.notice = msg
	m.noticeUntil = time.Now().Add(noticeTTL)
}

func (m *Model) switchView(step int) {
	for i, v := range viewOrder {
		if v == m.currentView {
			m.currentView = viewOrder[(i+step+len(viewOrder))%len(viewOrder)]
			break
		}
	}
	if m.currentView == ViewLogs {
		m.updateLogViewport()
	}
}

func (m *Model) setLogsFrom(from *time.Time) {
	m.logsFrom = from
	if m.commands != nil {
		m.commands.SetLogsFrom(from)
	}
	if from == nil {
		m.setNotice("logs filter cleared")
	} else {
		m.setNotice("logs from " + from.Format("2006-01-02 15:04"))
	}
}

// renderMain renders the full UI.
func (m Model) renderMain() string {
	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderTabs())
	b.WriteString("\n")
	b.WriteString(m.renderContent())
	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

// renderContent renders the main content area based on current view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewLogs:
		return m.renderLogs()
	case ViewState:
		return m.renderState()
	default:
		return m.renderOverview()
	}
}

// contentHeight is the room left between the header rows and the footer.
func (m Model) contentHeight() int {
	return max(m.height-3, 1)
}

// Messages

type tickMsg time.Time

type snapshotMsg state.Snapshot

type storeChangedMsg struct{}

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchSnapshotCmd(store *state.Store) tea.Cmd {
	return func() tea.Msg {
		return snapshotMsg(store.Snapshot())
	}
}

// waitForChangeCmd blocks until the store signals a transition.
func waitForChangeCmd(ctx context.Context, changes <-chan struct{}) tea.Cmd {
	if changes == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-changes:
			if !ok {
				return nil
			}
			return storeChangedMsg{}
		}
	}
}

// Run starts the Bubble Tea program and blocks until the user quits or the
// context is cancelled.
func Run(opts Options) error {
	m := New(opts)
	defer m.unsubscribe()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(m.ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && m.ctx.Err() != nil {
		return nil
	}
	return err
}

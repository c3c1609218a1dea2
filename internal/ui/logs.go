package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/five82/hoverdeck/internal/hoverfly"
	"github.com/five82/hoverdeck/internal/state"
)

// updateLogViewport sizes the viewport and refreshes its content.
func (m *Model) updateLogViewport() {
	if m.width == 0 || m.height == 0 {
		return
	}
	// Box inner height leaves room for header, tabs, footer, status line and borders.
	width := max(m.width-4, 10)
	height := max(m.height-6, 1)
	if m.logViewport.Width == 0 {
		m.logViewport = viewport.New(width, height)
	}
	m.logViewport.Width = width
	m.logViewport.Height = height

	m.logViewport.SetContent(m.renderLogContent())
	if m.follow {
		m.logViewport.GotoBottom()
	}
}

// renderLogs renders the log view.
func (m Model) renderLogs() string {
	styles := m.theme.Styles()
	status := m.renderLogStatus(styles)

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.theme.BorderFocus)).
		Width(max(m.width-2, 10)).
		Height(max(m.height-6, 1))

	return status + "\n" + box.Render(m.logViewport.View())
}

func (m Model) renderLogStatus(styles Styles) string {
	var parts []string

	if m.logsFrom != nil {
		parts = append(parts, styles.AccentText.Render("from "+m.logsFrom.Format("2006-01-02 15:04")))
	} else {
		parts = append(parts, styles.MutedText.Render("all entries"))
	}

	if v, ok := m.snapshot.Logs.Value(); ok {
		parts = append(parts, styles.Text.Render(humanize.Comma(int64(len(v.Logs)))+" entries"))
	}

	switch m.snapshot.Logs.Status() {
	case state.StatusLoading:
		parts = append(parts, styles.WarningText.Render("loading..."))
	case state.StatusError:
		parts = append(parts, styles.DangerText.Render("error: "+classifyError(m.snapshot.Logs.Err())))
	}

	if !m.snapshot.Online {
		parts = append(parts, styles.WarningText.Render("paused while offline"))
	}

	if m.follow {
		parts = append(parts, styles.SuccessText.Render("following"))
	} else {
		parts = append(parts, styles.MutedText.Render("paused"))
	}

	return " " + strings.Join(parts, styles.FaintText.Render(" · "))
}

// renderLogContent formats the log entries for the viewport.
func (m *Model) renderLogContent() string {
	styles := m.theme.Styles()
	v, ok := m.snapshot.Logs.Value()
	if !ok {
		if m.snapshot.Logs.Status() == state.StatusIdle {
			return styles.FaintText.Render("waiting for the proxy...")
		}
		return ""
	}
	if len(v.Logs) == 0 {
		return styles.FaintText.Render("no log entries")
	}

	lines := make([]string, 0, len(v.Logs))
	for _, item := range v.Logs {
		lines = append(lines, colorizeLogItem(item, styles))
	}
	return strings.Join(lines, "\n")
}

func colorizeLogItem(item hoverfly.LogsItem, styles Styles) string {
	ts, level, msg, ctx := logItemParts(item)
	line := styles.FaintText.Render(ts) + " " +
		styles.LevelStyle(strings.ToLower(item.Level)).Render(level) + " " +
		styles.Text.Render(msg)
	if ctx != "" {
		line += "  " + styles.MutedText.Render(ctx)
	}
	return line
}

// formatLogItem renders a log entry as plain text.
func formatLogItem(item hoverfly.LogsItem) string {
	ts, level, msg, ctx := logItemParts(item)
	line := ts + " " + level + " " + msg
	if ctx != "" {
		line += "  " + ctx
	}
	return line
}

func logItemParts(item hoverfly.LogsItem) (ts, level, msg, ctx string) {
	if t := item.ParsedTime(); !t.IsZero() {
		ts = t.Local().Format("2006-01-02 15:04:05")
	} else {
		ts = fmt.Sprintf("%-19s", item.Time)
	}
	level = fmt.Sprintf("%-5s", strings.ToUpper(strings.TrimSpace(item.Level)))
	msg = strings.TrimSpace(item.Msg)
	if c := item.Context(); c.Kind != hoverfly.LogContextNone {
		ctx = c.String()
	}
	return ts, level, msg, ctx
}

// handleLogsKey processes navigation keys in the logs view.
func (m Model) handleLogsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.ToggleFollow):
		m.follow = !m.follow
		if m.follow {
			m.logViewport.GotoBottom()
		}

	case key.Matches(msg, m.keys.Top):
		m.logViewport.GotoTop()
		m.follow = false

	case key.Matches(msg, m.keys.Bottom):
		m.logViewport.GotoBottom()
		m.follow = true

	case key.Matches(msg, m.keys.Down):
		m.logViewport.ScrollDown(1)
		m.follow = m.logViewport.AtBottom()

	case key.Matches(msg, m.keys.Up):
		m.logViewport.ScrollUp(1)
		m.follow = false

	case key.Matches(msg, m.keys.PageDown):
		m.logViewport.PageDown()
		m.follow = m.logViewport.AtBottom()

	case key.Matches(msg, m.keys.PageUp):
		m.logViewport.PageUp()
		m.follow = false
	}
	return m, nil
}

// handleFilterKey edits the logs from filter.
func (m Model) handleFilterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.filtering = false
		m.filterErr = ""
		m.filterInput.Blur()
		return m, nil

	case tea.KeyEnter:
		from, err := parseFrom(m.filterInput.Value(), time.Now())
		if err != nil {
			m.filterErr = err.Error()
			return m, nil
		}
		m.filtering = false
		m.filterErr = ""
		m.filterInput.Blur()
		m.setLogsFrom(from)
		return m, nil
	}

	var cmd tea.Cmd
	m.filterInput, cmd = m.filterInput.Update(msg)
	return m, cmd
}

package ui

import (
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/five82/hoverdeck/internal/hoverfly"
	"github.com/five82/hoverdeck/internal/state"
)

type row struct {
	label string
	value string
}

// overviewRows lists the proxy configuration shown on the overview tab.
func overviewRows(info hoverfly.MainInfo) []row {
	rows := []row{
		{"Mode", info.Mode},
		{"Version", info.Version},
		{"Destination", info.Destination},
		{"Matching", info.Arguments.MatchingStrategy},
		{"Webserver", yesNo(info.IsWebServer)},
		{"Upstream proxy", orNone(info.UpstreamProxy)},
		{"CORS", corsLabel(info.Cors)},
		{"Middleware", middlewareLabel(info.Middleware)},
	}
	return rows
}

// usageRows lists the per-mode request counters and their total.
func usageRows(c hoverfly.Counters) []row {
	return []row{
		{"capture", humanize.Comma(c.Capture)},
		{"diff", humanize.Comma(c.Diff)},
		{"modify", humanize.Comma(c.Modify)},
		{"simulate", humanize.Comma(c.Simulate)},
		{"spy", humanize.Comma(c.Spy)},
		{"synthesize", humanize.Comma(c.Synthesize)},
		{"total", humanize.Comma(c.Total())},
	}
}

func corsLabel(c hoverfly.CorsInfo) string {
	if !c.Enabled {
		return "disabled"
	}
	if c.AllowOrigin == "" {
		return "enabled"
	}
	return "enabled (" + c.AllowOrigin + ")"
}

func middlewareLabel(m *hoverfly.Middleware) string {
	if m.IsZero() {
		return "none"
	}
	var parts []string
	if m.Binary != "" {
		parts = append(parts, "binary="+m.Binary)
	}
	if m.Script != "" {
		parts = append(parts, "script="+truncate(firstLine(m.Script), 40))
	}
	if m.Remote != "" {
		parts = append(parts, "remote="+m.Remote)
	}
	return strings.Join(parts, " ")
}

// renderOverview renders main info and usage counters side by side.
func (m Model) renderOverview() string {
	styles := m.theme.Styles()
	height := max(m.contentHeight()-1, 1)

	info, ok := m.snapshot.Main.Value()
	if !ok {
		return lipgloss.NewStyle().Height(height).Render(m.resourcePlaceholder(m.snapshot.Main.Status(), m.snapshot.Main.Err()))
	}

	left := styles.Panel.Render(
		styles.AccentText.Bold(true).Render("Proxy") + "\n" + renderRows(overviewRows(info), styles),
	)
	right := styles.Panel.Render(
		styles.AccentText.Bold(true).Render("Requests") + "\n" + renderRows(usageRows(info.Usage.Counters), styles),
	)

	var body string
	if m.width >= 80 {
		body = lipgloss.JoinHorizontal(lipgloss.Top, left, " ", right)
	} else {
		body = lipgloss.JoinVertical(lipgloss.Left, left, right)
	}
	if m.snapshot.Main.Status() == state.StatusError {
		body += "\n" + styles.DangerText.Render("last refresh failed: "+classifyError(m.snapshot.Main.Err()))
	}
	return lipgloss.NewStyle().Height(height).Render(body)
}

// renderState renders the proxy's state store.
func (m Model) renderState() string {
	styles := m.theme.Styles()
	height := max(m.contentHeight()-1, 1)

	v, ok := m.snapshot.ServerState.Value()
	if !ok {
		return lipgloss.NewStyle().Height(height).Render(m.resourcePlaceholder(m.snapshot.ServerState.Status(), m.snapshot.ServerState.Err()))
	}
	rows := stateRows(v.State)
	if len(rows) == 0 {
		return lipgloss.NewStyle().Height(height).Render(styles.FaintText.Render(" state store is empty"))
	}
	return lipgloss.NewStyle().Height(height).Render(
		styles.Panel.Render(styles.AccentText.Bold(true).Render("State") + "\n" + renderRows(rows, styles)),
	)
}

// stateRows sorts the state store by key.
func stateRows(st map[string]string) []row {
	keys := make([]string, 0, len(st))
	for k := range st {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	rows := make([]row, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, row{label: k, value: st[k]})
	}
	return rows
}

func renderRows(rows []row, styles Styles) string {
	width := 0
	for _, r := range rows {
		width = max(width, lipgloss.Width(r.label))
	}
	label := styles.MutedText.Width(width + 2)
	lines := make([]string, 0, len(rows))
	for _, r := range rows {
		lines = append(lines, label.Render(r.label)+styles.Text.Render(r.value))
	}
	return strings.Join(lines, "\n")
}

func (m Model) resourcePlaceholder(status state.Status, err error) string {
	styles := m.theme.Styles()
	switch status {
	case state.StatusError:
		return styles.DangerText.Render(" unavailable: " + classifyError(err))
	case state.StatusLoading:
		return styles.WarningText.Render(" loading...")
	default:
		return styles.FaintText.Render(" waiting for the proxy...")
	}
}

package ui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/five82/hoverdeck/internal/hoverfly"
	"github.com/five82/hoverdeck/internal/state"
)

type connState int

const (
	connConnecting connState = iota
	connOnline
	connOffline
)

// connection derives the indicator from the settled status fetch, so a poll
// in flight keeps the proxy online.
func connection(snap state.Snapshot) connState {
	switch {
	case snap.Online:
		return connOnline
	case snap.Status.Status() == state.StatusError:
		return connOffline
	default:
		return connConnecting
	}
}

// renderHeader renders the status bar.
func (m Model) renderHeader() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	parts := []string{bg.Render("hoverdeck", styles.Logo)}

	switch connection(m.snapshot) {
	case connOnline:
		parts = append(parts, bg.Render("● ONLINE", styles.SuccessText))
	case connOffline:
		parts = append(parts,
			bg.Render("● OFFLINE", styles.DangerText),
			bg.Render(classifyError(m.snapshot.Status.Err()), styles.WarningText),
		)
	default:
		parts = append(parts, bg.Render("● CONNECTING", styles.WarningText.Bold(true)))
	}

	if mode := m.currentMode(); mode != "" {
		parts = append(parts, bg.Render("Mode:", styles.MutedText)+bg.Space()+bg.Render(mode, styles.AccentText.Bold(true)))
	}
	if info, ok := m.snapshot.Main.Value(); ok && info.Version != "" {
		parts = append(parts, bg.Render(info.Version, styles.MutedText))
	}
	if m.width >= 90 && m.adminURL != "" {
		parts = append(parts, bg.Render(m.adminURL, styles.FaintText))
	}
	if !m.lastUpdated.IsZero() {
		parts = append(parts, bg.Render("updated "+updatedAgo(m.lastUpdated, m.now), styles.FaintText))
	}

	return styles.Header.Width(m.width).Render(bg.Join(parts, "  "))
}

// currentMode prefers the status poll, which is fetched more often than
// main info.
func (m Model) currentMode() string {
	if v, ok := m.snapshot.Status.Value(); ok && v.Mode != "" {
		return v.Mode
	}
	if info, ok := m.snapshot.Main.Value(); ok {
		return info.Mode
	}
	return ""
}

// renderTabs renders the view switcher.
func (m Model) renderTabs() string {
	styles := m.theme.Styles()
	tabs := make([]string, 0, len(viewOrder))
	for i, v := range viewOrder {
		label := fmt.Sprintf(" %d %s ", i+1, v)
		if v == m.currentView {
			tabs = append(tabs, styles.Selected.Bold(true).Render(label))
			continue
		}
		tabs = append(tabs, styles.MutedText.Render(label))
	}
	return lipgloss.NewStyle().Width(m.width).Render(strings.Join(tabs, " "))
}

// renderFooter shows the filter prompt, the last command notice, or key hints.
func (m Model) renderFooter() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	if m.filtering {
		line := bg.Render("Logs from:", styles.AccentText) + bg.Space() + m.filterInput.View()
		if m.filterErr != "" {
			line += bg.Spaces(2) + bg.Render(m.filterErr, styles.DangerText)
		}
		return styles.Footer.Width(m.width).Render(line)
	}

	var parts []string
	if msg := m.commandStatus(); msg != "" {
		parts = append(parts, msg)
	}
	hints := []string{"? help", "tab views", "r refresh", "c clear cache", "S shutdown", "/ logs from", "e quit"}
	parts = append(parts, bg.Render(strings.Join(hints, " · "), styles.MutedText))
	return styles.Footer.Width(m.width).Render(bg.Join(parts, "  "))
}

// commandStatus reports the latest notice, else the outcome of the last
// cache or shutdown command.
func (m Model) commandStatus() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	switch {
	case m.notice != "":
		return bg.Render(m.notice, styles.InfoText)
	case m.snapshot.Shutdown.Status() == state.StatusLoading:
		return bg.Render("shutting down...", styles.WarningText)
	case m.snapshot.Shutdown.Status() == state.StatusError:
		return bg.Render("shutdown failed: "+classifyError(m.snapshot.Shutdown.Err()), styles.DangerText)
	case m.snapshot.Shutdown.Status() == state.StatusSuccess:
		return bg.Render("shutdown requested", styles.WarningText)
	case m.snapshot.Cache.Status() == state.StatusLoading:
		return bg.Render("clearing cache...", styles.WarningText)
	case m.snapshot.Cache.Status() == state.StatusError:
		return bg.Render("clear cache failed: "+classifyError(m.snapshot.Cache.Err()), styles.DangerText)
	case m.snapshot.Cache.Status() == state.StatusSuccess:
		v, _ := m.snapshot.Cache.Value()
		return bg.Render(cacheLabel(v), styles.SuccessText)
	}
	return ""
}

func cacheLabel(v hoverfly.DeleteCache) string {
	if v.Cache == nil || *v.Cache == "" {
		return "cache cleared"
	}
	return "cache cleared: " + *v.Cache
}

// classifyError shortens request failures for the status bar.
func classifyError(err error) string {
	if err == nil {
		return ""
	}
	var statusErr *hoverfly.StatusError
	if errors.As(err, &statusErr) {
		return fmt.Sprintf("HTTP %d", statusErr.Status)
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "connection refused"):
		return "connection refused"
	case strings.Contains(msg, "deadline exceeded"), strings.Contains(msg, "Client.Timeout"):
		return "timed out"
	case strings.Contains(msg, "no such host"):
		return "unknown host"
	}
	return truncate(msg, 60)
}

func updatedAgo(then, now time.Time) string {
	if now.Sub(then) < time.Second {
		return "just now"
	}
	return humanize.RelTime(then, now, "ago", "from now")
}

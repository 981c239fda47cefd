// Package tui renders the navigation panel in a terminal. Navigation runs as
// background commands so the locator's retry loop never blocks the UI.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/iota-uz/orgnav/modules/orgnav/presentation/mappers"
	"github.com/iota-uz/orgnav/modules/orgnav/presentation/viewmodels"
	"github.com/iota-uz/orgnav/modules/orgnav/services"
)

type view int

const (
	viewSearch view = iota
	viewLevels
	viewFilter
	viewMinimap
	viewCount
)

var viewTitles = [...]string{"Search", "Levels", "Filter", "Minimap"}

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00FFFF")).
			MarginLeft(1)

	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#5A56E0")).
			Padding(0, 1)

	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#666666")).
				Padding(0, 1)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#FF00FF"))

	subtleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888"))

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00FF00")).
			MarginTop(1)

	panelStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#5A56E0")).
			Padding(0, 1)
)

// navigatedMsg reports the end of a background navigation. seq identifies the
// request so a superseded navigation does not overwrite the status.
type navigatedMsg struct {
	seq     int
	target  string
	focused bool
}

type Model struct {
	ctx    context.Context
	engine *services.Engine

	input textinput.Model
	help  help.Model
	keys  keyMap

	view    view
	cursor  int
	levels  []viewmodels.LevelRow
	outline []viewmodels.OutlineRow
	status  string
	navSeq  int
}

func New(ctx context.Context, engine *services.Engine) Model {
	ti := textinput.New()
	ti.Placeholder = "unit, position, person or document"
	ti.CharLimit = 120
	ti.Width = 48

	return Model{
		ctx:    ctx,
		engine: engine,
		input:  ti,
		help:   help.New(),
		keys:   keys,
	}
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		return m, nil

	case navigatedMsg:
		if msg.seq != m.navSeq {
			return m, nil
		}
		if msg.focused {
			m.status = "Focused " + msg.target
		} else {
			m.status = "Could not locate " + msg.target
		}
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			return m, tea.Quit
		}
		panel := m.engine.Panel
		if !panel.Mode().Open() {
			switch {
			case key.Matches(msg, m.keys.Open):
				return m.switchView(viewSearch)
			case msg.String() == "q":
				return m, tea.Quit
			}
			return m, nil
		}
		switch {
		case key.Matches(msg, m.keys.Close):
			panel.Close()
			m.input.Blur()
			m.input.SetValue("")
			m.view = viewSearch
			m.cursor = 0
			return m, nil
		case key.Matches(msg, m.keys.NextView):
			return m.switchView((m.view + 1) % viewCount)
		}

		switch m.view {
		case viewLevels:
			return m.updateLevels(msg)
		case viewFilter:
			return m.updateFilter(msg)
		case viewMinimap:
			return m.updateMinimap(msg)
		default:
			return m.updateSearch(msg)
		}
	}

	if m.view == viewSearch && m.input.Focused() {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) switchView(v view) (tea.Model, tea.Cmd) {
	panel := m.engine.Panel
	m.view = v
	m.cursor = 0
	m.input.Blur()

	switch v {
	case viewSearch:
		panel.Open()
		panel.SetQuery(m.ctx, m.input.Value())
		cmd := m.input.Focus()
		return m, cmd
	case viewLevels:
		m.input.SetValue("")
		panel.SetQuery(m.ctx, "")
		m.levels = mappers.LevelStatsToRows(panel.LevelStats(m.ctx))
	case viewFilter:
		panel.OpenFilter()
		m.outline = mappers.DatasetToOutline(m.engine.Catalog.Dataset(), nil, nil).Rows
	case viewMinimap:
		panel.OpenMinimap()
	}
	return m, nil
}

func (m *Model) moveCursor(msg tea.KeyMsg, n int) bool {
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		return true
	case key.Matches(msg, m.keys.Down):
		if m.cursor < n-1 {
			m.cursor++
		}
		return true
	}
	return false
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	panel := m.engine.Panel
	results := panel.State().Results

	if m.moveCursor(msg, len(results)) {
		return m, nil
	}
	if key.Matches(msg, m.keys.Enter) {
		if m.cursor >= len(results) {
			return m, nil
		}
		r := results[m.cursor]
		// a newer selection supersedes this one inside the locator
		done := panel.SelectResultAsync(m.ctx, r)
		m.navSeq++
		seq := m.navSeq
		m.status = "Locating " + r.Name + "..."
		return m, func() tea.Msg {
			return navigatedMsg{seq: seq, target: r.Name, focused: <-done}
		}
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() != before {
		panel.SetQuery(m.ctx, m.input.Value())
		m.cursor = 0
	}
	return m, cmd
}

func (m Model) updateLevels(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.moveCursor(msg, len(m.levels)) {
		return m, nil
	}
	if key.Matches(msg, m.keys.Enter) && m.cursor < len(m.levels) {
		level := m.levels[m.cursor].Level
		panel := m.engine.Panel
		ctx := m.ctx
		m.navSeq++
		seq := m.navSeq
		m.status = fmt.Sprintf("Going to level %d...", level)
		return m, func() tea.Msg {
			return navigatedMsg{seq: seq, target: fmt.Sprintf("level %d", level), focused: panel.GoToLevel(ctx, level)}
		}
	}
	return m, nil
}

func (m Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	panel := m.engine.Panel
	if m.moveCursor(msg, len(m.outline)) {
		return m, nil
	}
	switch {
	case key.Matches(msg, m.keys.Toggle):
		if m.cursor < len(m.outline) {
			panel.ToggleUnit(m.outline[m.cursor].UnitID)
		}
	case key.Matches(msg, m.keys.All):
		panel.SelectAll()
	case key.Matches(msg, m.keys.Clear):
		panel.ClearSelection()
	case key.Matches(msg, m.keys.Enter):
		n := len(panel.Selection())
		panel.ApplyFilter(m.ctx)
		if n == 0 {
			m.status = "Filter cleared"
		} else {
			m.status = fmt.Sprintf("Filter applied to %d units", n)
		}
		return m.switchView(viewSearch)
	}
	return m, nil
}

func (m Model) updateMinimap(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	panel := m.engine.Panel
	switch {
	case key.Matches(msg, m.keys.Up):
		panel.PanMinimap(m.ctx, services.DirectionUp)
	case key.Matches(msg, m.keys.Down):
		panel.PanMinimap(m.ctx, services.DirectionDown)
	case key.Matches(msg, m.keys.Left):
		panel.PanMinimap(m.ctx, services.DirectionLeft)
	case key.Matches(msg, m.keys.Right):
		panel.PanMinimap(m.ctx, services.DirectionRight)
	case key.Matches(msg, m.keys.ZoomIn):
		panel.ZoomMinimap(m.ctx, services.MinimapZoomStep)
	case key.Matches(msg, m.keys.ZoomOut):
		panel.ZoomMinimap(m.ctx, 1/services.MinimapZoomStep)
	case key.Matches(msg, m.keys.Fit):
		panel.FitMinimap(m.ctx)
	default:
		return m, nil
	}
	if v, ok := m.engine.Viewport.Viewport(); ok {
		m.status = fmt.Sprintf("Viewport x=%.0f y=%.0f zoom=%.2f", v.X, v.Y, v.Zoom)
	}
	return m, nil
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("orgnav"))
	b.WriteString("\n")

	panel := m.engine.Panel
	if !panel.Mode().Open() {
		stats := panel.Stats(m.ctx)
		b.WriteString(subtleStyle.Render(fmt.Sprintf(" %d units · %d positions · %d people. Press / to navigate.",
			stats.Units, stats.Positions, stats.People)))
		b.WriteString("\n")
		b.WriteString(m.footer())
		return b.String()
	}

	tabs := make([]string, 0, len(viewTitles))
	for i, title := range viewTitles {
		if view(i) == m.view {
			tabs = append(tabs, activeTabStyle.Render(title))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(title))
		}
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, tabs...))
	b.WriteString("\n")

	var body string
	switch m.view {
	case viewLevels:
		body = m.levelsView()
	case viewFilter:
		body = m.filterView()
	case viewMinimap:
		body = m.minimapView()
	default:
		body = m.searchView()
	}
	b.WriteString(panelStyle.Render(body))
	b.WriteString("\n")
	b.WriteString(m.footer())
	return b.String()
}

func (m Model) footer() string {
	var b strings.Builder
	if m.status != "" {
		b.WriteString(statusStyle.Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m Model) searchView() string {
	state := m.engine.Panel.State()
	lines := []string{m.input.View()}

	switch {
	case len(state.Results) > 0:
		for i, r := range state.Results {
			line := fmt.Sprintf("%-8s %s  %s", r.Type, r.Name, subtleStyle.Render(r.Subtitle))
			lines = append(lines, m.row(i, line))
		}
	case strings.TrimSpace(state.Query) != "":
		lines = append(lines, subtleStyle.Render("No results."))
		if len(state.Suggestions) > 0 {
			names := make([]string, 0, len(state.Suggestions))
			for _, s := range state.Suggestions {
				names = append(names, s.Name)
			}
			lines = append(lines, subtleStyle.Render("Did you mean: "+strings.Join(names, ", ")))
		}
	}
	return strings.Join(lines, "\n")
}

func (m Model) levelsView() string {
	if len(m.levels) == 0 {
		return subtleStyle.Render("No visible units.")
	}
	lines := make([]string, 0, len(m.levels))
	for i, l := range m.levels {
		line := fmt.Sprintf("Level %d  %3d units  %3d positions  %3d people", l.Level, l.Units, l.Positions, l.People)
		lines = append(lines, m.row(i, line))
	}
	return strings.Join(lines, "\n")
}

func (m Model) filterView() string {
	selected := make(map[int]struct{})
	for _, id := range m.engine.Panel.Selection() {
		selected[id] = struct{}{}
	}
	lines := make([]string, 0, len(m.outline))
	for i, r := range m.outline {
		box := "[ ]"
		if _, ok := selected[r.UnitID]; ok {
			box = "[x]"
		}
		line := fmt.Sprintf("%s %s%s", box, strings.Repeat("  ", r.Depth), r.Name)
		lines = append(lines, m.row(i, line))
	}
	return strings.Join(lines, "\n")
}

func (m Model) minimapView() string {
	v, ok := m.engine.Viewport.Viewport()
	if !ok {
		return subtleStyle.Render("No diagram mounted.")
	}
	return fmt.Sprintf("x=%.0f  y=%.0f  zoom=%.2f\n%s", v.X, v.Y, v.Zoom,
		subtleStyle.Render("arrows pan · +/- zoom · f fits the whole chart"))
}

func (m Model) row(i int, line string) string {
	if i == m.cursor {
		return selectedStyle.Render("> " + line)
	}
	return "  " + line
}

// Package tui is an interactive route browser: a bubbletea
// Model/Update/View trio over the routes a search run already computed,
// with a ranked list, a detail pane for the selected route, and
// up/down/quit keys.
package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"wayfarer/internal/tradecalc"
	"wayfarer/internal/tradedb"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// NameLookup resolves station/system IDs to display names; the search
// engine only carries IDs, so the TUI layer supplies this from whatever
// catalog backed the search.
type NameLookup interface {
	StationName(tradedb.StationID) string
	SystemName(tradedb.SystemID) string
}

// Model is the bubbletea model for the route browser screen.
type Model struct {
	routes   []tradecalc.Route
	selected int
	names    NameLookup
	width    int
}

// New constructs a Model over a completed search's routes, best score
// first (callers typically pass tradecalc's own Route.Less ordering).
func New(routes []tradecalc.Route, names NameLookup) Model {
	return Model{routes: routes, names: names, width: 100}
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "up", "k":
			if m.selected > 0 {
				m.selected--
			}
		case "down", "j":
			if m.selected < len(m.routes)-1 {
				m.selected++
			}
		}
	}
	return m, nil
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("═══ TRADE ROUTES ═══") + "\n\n")

	if len(m.routes) == 0 {
		b.WriteString(dimStyle.Render("No routes found.") + "\n")
		return b.String()
	}

	b.WriteString(headerStyle.Render(fmt.Sprintf("%-4s %-22s %-22s %10s %6s %8s\n",
		"#", "From", "To", "Gain", "Hops", "Gpt")))
	b.WriteString(strings.Repeat("─", 80) + "\n")

	maxDisplay := 20
	if len(m.routes) < maxDisplay {
		maxDisplay = len(m.routes)
	}
	for i := 0; i < maxDisplay; i++ {
		r := m.routes[i]
		style := lipgloss.NewStyle()
		cursor := "  "
		if i == m.selected {
			style = selectedStyle
			cursor = "→ "
		}
		line := fmt.Sprintf("%s%-4d %-22s %-22s %10s %6d %8d",
			cursor, i+1,
			truncate(m.names.StationName(r.FirstStation()), 20),
			truncate(m.names.StationName(r.LastStation()), 20),
			humanize.Comma(int64(r.GainCr)),
			len(r.Hops),
			r.GainPerTon(),
		)
		b.WriteString(style.Render(line) + "\n")
	}

	b.WriteString("\n")
	b.WriteString(m.renderDetail(m.routes[m.selected]))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("[↑/↓] Select  [Q] Quit") + "\n")
	return b.String()
}

func (m Model) renderDetail(r tradecalc.Route) string {
	detailStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		Padding(0, 1).
		Width(80)

	var b strings.Builder
	fmt.Fprintf(&b, "Start: %s credits  Gain: %s credits  Avg gpt: %d\n",
		humanize.Comma(int64(r.StartCr)), humanize.Comma(int64(r.GainCr)), r.AvgGainPerTon())
	for i, stID := range r.Stations {
		if i > 0 {
			hop := r.Hops[i-1]
			fmt.Fprintf(&b, "  -> (%s units, %s cr gain) -> ", humanize.Comma(hop.Units), humanize.Comma(int64(hop.GainCr)))
		}
		b.WriteString(m.names.StationName(stID))
		if i < len(r.Stations)-1 {
			b.WriteString("\n")
		}
	}
	return detailStyle.Render(b.String())
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 1 {
		return s[:n]
	}
	return s[:n-1] + "…"
}

// Run starts the bubbletea program. It blocks until the user quits.
func Run(routes []tradecalc.Route, names NameLookup) error {
	_, err := tea.NewProgram(New(routes, names)).Run()
	return err
}

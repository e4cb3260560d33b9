package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"wayfarer/internal/tradecalc"
	"wayfarer/internal/tradedb"
)

type fakeNames map[tradedb.StationID]string

func (f fakeNames) StationName(id tradedb.StationID) string {
	if n, ok := f[id]; ok {
		return n
	}
	return "?"
}
func (f fakeNames) SystemName(tradedb.SystemID) string { return "?" }

func sampleRoute(t *testing.T) tradecalc.Route {
	t.Helper()
	r := tradecalc.NewRoute(tradedb.StationID(1), tradedb.SystemID(1), 1000)
	return r.Plus(tradedb.StationID(2), tradedb.SystemID(2),
		tradecalc.TradeLoad{GainCr: 500, CostCr: 200, Units: 10}, nil, 500)
}

func TestModel_ViewListsRoutesAndDetail(t *testing.T) {
	names := fakeNames{1: "Sol Hub", 2: "Alpha Dock"}
	m := New([]tradecalc.Route{sampleRoute(t)}, names)

	out := m.View()
	if !strings.Contains(out, "Sol Hub") || !strings.Contains(out, "Alpha Dock") {
		t.Errorf("View() missing station names:\n%s", out)
	}
	if !strings.Contains(out, "TRADE ROUTES") {
		t.Errorf("View() missing title:\n%s", out)
	}
}

func TestModel_EmptyRoutesShowsMessage(t *testing.T) {
	m := New(nil, fakeNames{})
	out := m.View()
	if !strings.Contains(out, "No routes found") {
		t.Errorf("View() = %q, want 'No routes found' message", out)
	}
}

func TestModel_UpDownNavigatesSelection(t *testing.T) {
	names := fakeNames{1: "A", 2: "B", 3: "C"}
	routes := []tradecalc.Route{sampleRoute(t), sampleRoute(t), sampleRoute(t)}
	m := New(routes, names)

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m = next.(Model)
	if m.selected != 1 {
		t.Errorf("selected = %d, want 1", m.selected)
	}

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyUp})
	m = next.(Model)
	if m.selected != 0 {
		t.Errorf("selected = %d, want 0", m.selected)
	}
}

func TestModel_QuitReturnsQuitCmd(t *testing.T) {
	m := New(nil, fakeNames{})
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if cmd == nil {
		t.Fatal("expected a tea.Cmd on quit key")
	}
}

func TestTruncate(t *testing.T) {
	cases := map[string]string{
		"short":          "short",
		"exactlyTenChar": "exactlyTenChar",
	}
	for in, want := range cases {
		if got := truncate(in, 100); got != want {
			t.Errorf("truncate(%q, 100) = %q, want %q", in, got, want)
		}
	}
	if got := truncate("abcdefghij", 5); got != "abcd…" {
		t.Errorf("truncate long string = %q, want abcd…", got)
	}
}

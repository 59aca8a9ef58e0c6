package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/legendpack/pkg/legend"
)

func stubLayers() []*legend.Block {
	return []*legend.Block{
		{ID: "a", Kind: legend.KindLayer, Height: 4},
		{ID: "b", Kind: legend.KindLayer, Height: 2},
		{ID: "c", Kind: legend.KindLayer, Height: 2},
		{ID: "d", Kind: legend.KindLayer, Height: 4},
	}
}

func newTestBrowser(t *testing.T, n int) SectionBrowserModel {
	t.Helper()
	layers := stubLayers()
	repack := func(n int) (legend.Result, error) {
		return legend.MakeLegend(layers, n)
	}
	res, err := repack(n)
	if err != nil {
		t.Fatal(err)
	}
	return NewSectionBrowserModel(res, n, repack)
}

func key(s string) tea.KeyMsg {
	switch s {
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(m SectionBrowserModel, keys ...string) SectionBrowserModel {
	for _, k := range keys {
		next, _ := m.Update(key(k))
		m = next.(SectionBrowserModel)
	}
	return m
}

func TestSectionBrowserNavigation(t *testing.T) {
	m := newTestBrowser(t, 3)
	if got := len(m.Result.Sections); got != 3 {
		t.Fatalf("sections = %d, want 3", got)
	}

	tests := []struct {
		keys []string
		want int
	}{
		{nil, 0},
		{[]string{"left"}, 0},
		{[]string{"right"}, 1},
		{[]string{"right", "right", "right"}, 2},
		{[]string{"right", "right", "left"}, 1},
		{[]string{"l", "l", "h"}, 1},
	}
	for _, tt := range tests {
		if got := press(m, tt.keys...).Cursor; got != tt.want {
			t.Errorf("keys %v: cursor = %d, want %d", tt.keys, got, tt.want)
		}
	}
}

func TestSectionBrowserRepack(t *testing.T) {
	m := press(newTestBrowser(t, 3), "right", "right")

	m = press(m, "-")
	if m.MaxSections != 2 || m.Result.SectionsUsed != 2 {
		t.Fatalf("after -: max %d used %d, want 2/2", m.MaxSections, m.Result.SectionsUsed)
	}
	if m.Cursor != 1 {
		t.Errorf("cursor not clamped: %d", m.Cursor)
	}

	m = press(m, "-", "-")
	if m.MaxSections != 1 {
		t.Errorf("max sections went below 1: %d", m.MaxSections)
	}

	m = press(m, "+", "+")
	if m.MaxSections != 3 || m.Result.SectionsUsed != 3 {
		t.Errorf("after ++: max %d used %d, want 3/3", m.MaxSections, m.Result.SectionsUsed)
	}
}

func TestSectionBrowserWithoutRepack(t *testing.T) {
	res, err := legend.MakeLegend(stubLayers(), 2)
	if err != nil {
		t.Fatal(err)
	}
	m := press(NewSectionBrowserModel(res, 2, nil), "+")
	if m.MaxSections != 2 {
		t.Errorf("repack without a func changed max sections to %d", m.MaxSections)
	}
}

func TestSectionBrowserQuit(t *testing.T) {
	m := newTestBrowser(t, 2)
	if _, cmd := m.Update(key("q")); cmd == nil {
		t.Error("q should return a quit command")
	}
}

func TestSectionBrowserView(t *testing.T) {
	m := press(newTestBrowser(t, 3), "right")
	view := m.View()
	for _, want := range []string{"3 of max 3 sections", "optimal", "b"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}

	empty, err := legend.MakeLegend(nil, 2)
	if err != nil {
		t.Fatal(err)
	}
	if v := NewSectionBrowserModel(empty, 2, nil).View(); !strings.Contains(v, "empty legend") {
		t.Errorf("empty view:\n%s", v)
	}
}

func TestFormatSeq(t *testing.T) {
	if got := formatSeq([]bool{true, false, false, true}); got != "1001" {
		t.Errorf("formatSeq = %q", got)
	}
	if got := formatSeq(nil); got != "" {
		t.Errorf("formatSeq(nil) = %q", got)
	}
}

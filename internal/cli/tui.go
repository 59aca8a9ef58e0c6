package cli

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/legendpack/pkg/legend"
	"github.com/matzehuels/legendpack/pkg/render"
)

var (
	listDimStyle    = lipgloss.NewStyle().Foreground(colorDim)
	segmentStyle    = lipgloss.NewStyle().Foreground(colorGray)
	segmentSelStyle = lipgloss.NewStyle().Foreground(colorCyan).Bold(true)
	errStyle        = lipgloss.NewStyle().Foreground(colorRed)
)

// repackFunc packs the legend again into at most n sections.
type repackFunc func(n int) (legend.Result, error)

// SectionBrowserModel is the bubbletea model behind `legendpack preview`.
// Left and right move between sections; + and - repack with one section
// more or less.
type SectionBrowserModel struct {
	Result      legend.Result
	MaxSections int
	Cursor      int
	Height      int
	Offset      int
	Err         error

	rows   []render.Row
	repack repackFunc
}

// NewSectionBrowserModel creates a browser over res. repack may be nil, in
// which case + and - do nothing.
func NewSectionBrowserModel(res legend.Result, maxSections int, repack repackFunc) SectionBrowserModel {
	return SectionBrowserModel{
		Result:      res,
		MaxSections: maxSections,
		Height:      15,
		rows:        render.Flatten(res.Layers),
		repack:      repack,
	}
}

func (m SectionBrowserModel) Init() tea.Cmd {
	return nil
}

func (m SectionBrowserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "left", "h", "shift+tab":
			if m.Cursor > 0 {
				m.Cursor--
				m.Offset = 0
			}
		case "right", "l", "tab":
			if m.Cursor < len(m.Result.Sections)-1 {
				m.Cursor++
				m.Offset = 0
			}
		case "up", "k":
			if m.Offset > 0 {
				m.Offset--
			}
		case "down", "j":
			if m.Offset < len(m.sectionRows())-m.Height {
				m.Offset++
			}
		case "+", "=":
			return m.withSections(m.MaxSections + 1), nil
		case "-", "_":
			if m.MaxSections > 1 {
				return m.withSections(m.MaxSections - 1), nil
			}
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-10, 5)
	}
	return m, nil
}

func (m SectionBrowserModel) withSections(n int) SectionBrowserModel {
	if m.repack == nil {
		return m
	}
	res, err := m.repack(n)
	if err != nil {
		m.Err = err
		return m
	}
	m.Result, m.MaxSections, m.Err = res, n, nil
	m.rows = render.Flatten(res.Layers)
	m.Cursor = min(m.Cursor, max(len(res.Sections)-1, 0))
	m.Offset = 0
	return m
}

// sectionRows returns the rows of the selected section.
func (m SectionBrowserModel) sectionRows() []render.Row {
	var out []render.Row
	for _, r := range m.rows {
		if r.Section == m.Cursor {
			out = append(out, r)
		}
	}
	return out
}

func (m SectionBrowserModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(fmt.Sprintf("Legend preview · %d of max %d sections · %s",
		m.Result.SectionsUsed, m.MaxSections, m.Result.Strategy)))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("←/→ section  ↑/↓ scroll  +/- sections  q quit"))
	b.WriteString("\n\n")

	if len(m.Result.Sections) == 0 {
		b.WriteString(listDimStyle.Render("  (empty legend)"))
		return b.String()
	}

	b.WriteString(m.segmentBar())
	b.WriteString("\n\n")

	rows := m.sectionRows()
	end := min(m.Offset+m.Height, len(rows))
	cells := make([][]string, 0, end-m.Offset)
	for _, r := range rows[m.Offset:end] {
		label := strings.Repeat("  ", r.Depth) + r.Block.Label()
		if r.Opens {
			label += " ◂"
		}
		cells = append(cells, []string{label, string(kindOf(r.Block)), strconv.FormatFloat(r.Block.Extent(), 'f', -1, 64)})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Block", "Type", "Height").
		Rows(cells...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return styleHeader
			case col == 2:
				return StyleNumber
			case col == 1:
				return listDimStyle
			}
			return StyleValue
		})
	b.WriteString(t.Render())
	b.WriteString("\n")

	s := m.Result.Sections[m.Cursor]
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  section %d/%d · %s from %s · rows %d-%d of %d",
		m.Cursor+1, len(m.Result.Sections), fmtPx(s.Height), fmtPx(s.Start), m.Offset+1, end, len(rows))))
	if m.Err != nil {
		b.WriteString("\n")
		b.WriteString(errStyle.Render("  " + m.Err.Error()))
	}
	return b.String()
}

// segmentBar draws one block per section, widths proportional to height.
func (m SectionBrowserModel) segmentBar() string {
	const width = 48
	var parts []string
	for i, s := range m.Result.Sections {
		n := 1
		if m.Result.TotalHeight > 0 {
			n = max(int(s.Height/m.Result.TotalHeight*width), 1)
		}
		style := segmentStyle
		if i == m.Cursor {
			style = segmentSelStyle
		}
		parts = append(parts, style.Render(strings.Repeat("█", n)))
	}
	return "  " + strings.Join(parts, " ")
}

func kindOf(b *legend.Block) legend.Kind {
	if b.Kind != "" {
		return b.Kind
	}
	if b.IsContainer() {
		return legend.KindGroup
	}
	return legend.KindItem
}

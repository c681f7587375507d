package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/lightlayer/pkg/core/lights"
	"github.com/matzehuels/lightlayer/pkg/engine"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

const (
	// dashboardRefresh is the redraw interval of the dashboard.
	dashboardRefresh = 200 * time.Millisecond

	// previewLights is the number of virtual lights shown in the color strip.
	previewLights = 64
)

// =============================================================================
// DashboardModel - Live engine view
// =============================================================================

type refreshMsg time.Time

// DashboardModel is the bubbletea model for the live engine dashboard.
type DashboardModel struct {
	eng      *engine.Engine
	Snapshot engine.Snapshot
	Preview  []lights.RGB
	Cursor   int
	Status   string
}

// NewDashboardModel creates a dashboard for eng.
func NewDashboardModel(eng *engine.Engine) DashboardModel {
	m := DashboardModel{eng: eng}
	m.refresh()
	return m
}

func (m DashboardModel) Init() tea.Cmd {
	return refresh()
}

func refresh() tea.Cmd {
	return tea.Tick(dashboardRefresh, func(t time.Time) tea.Msg { return refreshMsg(t) })
}

func (m *DashboardModel) refresh() {
	m.Snapshot = m.eng.Snapshot()
	n := 0
	if len(m.Snapshot.Report.Layers) > 0 {
		n = min(m.Snapshot.Report.Layers[0].Lights, previewLights)
	}
	m.Preview = m.Preview[:0]
	for i := range n {
		m.Preview = append(m.Preview, m.eng.RGB(i))
	}
	m.Cursor = min(m.Cursor, max(len(m.Snapshot.Nodes)-1, 0))
}

func (m DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case refreshMsg:
		m.refresh()
		return m, refresh()
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
			}
		case "down", "j":
			if m.Cursor < len(m.Snapshot.Nodes)-1 {
				m.Cursor++
			}
		case "x", "delete":
			if len(m.Snapshot.Nodes) == 0 {
				return m, nil
			}
			n := m.Snapshot.Nodes[m.Cursor]
			if err := m.eng.RemoveNode(context.Background(), n.Index); err != nil {
				m.Status = "remove failed: " + err.Error()
			} else {
				m.Status = fmt.Sprintf("removed %s from slot %d", n.Name, n.Index)
			}
			m.refresh()
		case "r":
			if err := m.eng.MapLayout(context.Background()); err != nil {
				m.Status = "layout failed: " + err.Error()
			} else {
				m.Status = "layout remapped"
			}
			m.refresh()
		}
	}
	return m, nil
}

func (m DashboardModel) View() string {
	var b strings.Builder
	r := m.Snapshot.Report

	b.WriteString(StyleTitle.Render("Lightlayer"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  x remove  r remap  q quit"))
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "%s lights  %s size  %s pins  %s frames\n",
		StyleNumber.Render(strconv.Itoa(r.Lights)),
		StyleNumber.Render(r.Size.String()),
		StyleNumber.Render(strconv.Itoa(len(r.Pins))),
		StyleNumber.Render(strconv.FormatUint(m.Snapshot.Frames, 10)))
	if r.PackedLights < r.Lights {
		b.WriteString(StyleWarning.Render(fmt.Sprintf("only %d of %d lights fit the buffer", r.PackedLights, r.Lights)))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if len(m.Snapshot.Nodes) == 0 {
		b.WriteString(listDimStyle.Render("  no nodes"))
		b.WriteString("\n")
	}
	for i, n := range m.Snapshot.Nodes {
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		line := fmt.Sprintf("%s%2d  %-20s %s", cursor, n.Index, n.Name, styleCategory(n.Category))
		if i == m.Cursor {
			b.WriteString(listSelectedStyle.Render(line))
		} else {
			b.WriteString(listNormalStyle.Render(line))
		}
		b.WriteString("\n")
	}

	if len(m.Preview) > 0 {
		b.WriteString("\n")
		b.WriteString(renderStrip(m.Preview))
		b.WriteString("\n")
	}
	if m.Status != "" {
		b.WriteString("\n")
		b.WriteString(listDimStyle.Render(m.Status))
		b.WriteString("\n")
	}
	return b.String()
}

// renderStrip draws one block per light in its current color.
func renderStrip(colors []lights.RGB) string {
	var b strings.Builder
	for _, c := range colors {
		hex := colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}.Hex()
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(hex)).Render("█"))
	}
	return b.String()
}

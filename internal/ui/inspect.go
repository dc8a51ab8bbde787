package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// NodeSummary is one row of the inspector's node pane.
type NodeSummary struct {
	Name      string
	Qubits    int
	Inputs    int
	Outputs   int
	Width     int
	Depth     int
	Uncompute bool
}

type inspectModel struct {
	title        string
	nodes        []NodeSummary
	registerSize int
	program      string

	cursor   int
	viewport viewport.Model
	width    int
	height   int
	ready    bool
}

// NewInspectModel returns a Bubble Tea model that browses a compiled request:
// the node pane on the left in merge order, the merged program on the right.
func NewInspectModel(title string, nodes []NodeSummary, registerSize int, program string) tea.Model {
	return &inspectModel{
		title:        title,
		nodes:        nodes,
		registerSize: registerSize,
		program:      program,
		width:        80,
		height:       24,
	}
}

func (m *inspectModel) Init() tea.Cmd {
	return nil
}

func (m *inspectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil
		case "down", "j":
			if m.cursor < len(m.nodes)-1 {
				m.cursor++
			}
			return m, nil
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		w, h := m.paneSize()
		if !m.ready {
			m.viewport = viewport.New(w, h)
			m.viewport.SetContent(m.program)
			m.ready = true
		} else {
			m.viewport.Width = w
			m.viewport.Height = h
		}
		return m, nil
	}
	if m.ready {
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *inspectModel) View() string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	header := fmt.Sprintf("%s  (register: %d qubits, %d nodes)", m.title, m.registerSize, len(m.nodes))

	var b strings.Builder
	b.WriteString(titleStyle.Render(header))
	b.WriteString("\n\n")

	left := m.renderNodes()
	right := m.program
	if m.ready {
		right = m.viewport.View()
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, "  ", right))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render("j/k move, pgup/pgdn scroll, q quit"))
	b.WriteString("\n")
	return b.String()
}

func (m *inspectModel) renderNodes() string {
	nameWidth := m.width/3 - 4
	if nameWidth < 12 {
		nameWidth = 12
	}
	selected := lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true)
	plain := lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	uncStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("3"))

	var b strings.Builder
	for i, node := range m.nodes {
		marker := "  "
		style := plain
		if i == m.cursor {
			marker = "> "
			style = selected
		}
		line := fmt.Sprintf("%s%s", marker, truncate(node.Name, nameWidth))
		b.WriteString(style.Render(line))
		if node.Uncompute {
			b.WriteString(uncStyle.Render(" [unc]"))
		}
		b.WriteString("\n")
		if i == m.cursor {
			detail := fmt.Sprintf("    %d qubits, %d in, %d out, width %d, depth %d",
				node.Qubits, node.Inputs, node.Outputs, node.Width, node.Depth)
			b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render(detail))
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (m *inspectModel) paneSize() (int, int) {
	w := m.width - m.width/3 - 6
	if w < 30 {
		w = 30
	}
	h := m.height - 5
	if h < 5 {
		h = 5
	}
	return w, h
}

func truncate(value string, width int) string {
	if width <= 0 {
		return value
	}
	if runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width-3, "...")
}

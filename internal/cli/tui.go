package cli

import (
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/cvtopo/pkg/topology"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// RootPickerModel - Interactive subtree root selection
// =============================================================================

// pickerItem is one selectable container.
type pickerItem struct {
	Name    string
	Depth   int
	Devices int
}

// RootPickerModel is the bubbletea model for choosing the container to
// extract. Typing narrows the list to names containing the filter text.
type RootPickerModel struct {
	Items    []pickerItem
	Filter   string
	Cursor   int
	Offset   int
	Height   int
	Selected string
}

// NewRootPickerModel lists every container of t in pre-order. Shadowed
// duplicate declarations are left out since their name resolves elsewhere.
func NewRootPickerModel(t *topology.Tree) RootPickerModel {
	var items []pickerItem
	for _, id := range t.Subtree(t.Root()) {
		n, _ := t.Node(id)
		if n.IsRoot() {
			continue
		}
		if current, _ := t.Lookup(n.Name); current != id {
			continue
		}
		items = append(items, pickerItem{
			Name:    n.Name,
			Depth:   n.Depth - 1,
			Devices: len(t.Devices(n.Name)),
		})
	}
	return RootPickerModel{Items: items, Height: 15}
}

// visible returns the items matching the filter.
func (m RootPickerModel) visible() []pickerItem {
	if m.Filter == "" {
		return m.Items
	}
	needle := strings.ToLower(m.Filter)
	var out []pickerItem
	for _, it := range m.Items {
		if strings.Contains(strings.ToLower(it.Name), needle) {
			out = append(out, it)
		}
	}
	return out
}

func (m RootPickerModel) Init() tea.Cmd {
	return nil
}

func (m RootPickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyUp:
			m.move(-1)
		case tea.KeyDown:
			m.move(1)
		case tea.KeyEnter:
			items := m.visible()
			if len(items) == 0 {
				return m, nil
			}
			m.Selected = items[m.Cursor].Name
			return m, tea.Quit
		case tea.KeyBackspace:
			if m.Filter != "" {
				m.Filter = m.Filter[:len(m.Filter)-1]
				m.Cursor, m.Offset = 0, 0
			}
		case tea.KeyRunes:
			m.Filter += string(msg.Runes)
			m.Cursor, m.Offset = 0, 0
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-7, 5)
	}
	return m, nil
}

func (m *RootPickerModel) move(delta int) {
	n := len(m.visible())
	if n == 0 {
		return
	}
	m.Cursor = min(max(m.Cursor+delta, 0), n-1)
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
}

func (m RootPickerModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Container"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  type to filter  esc quit"))
	b.WriteString("\n")
	if m.Filter != "" {
		b.WriteString(StyleHighlight.Render("filter: " + m.Filter))
	}
	b.WriteString("\n\n")

	items := m.visible()
	end := min(m.Offset+m.Height, len(items))
	for i := m.Offset; i < end; i++ {
		it := items[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		indent := ""
		if m.Filter == "" {
			indent = strings.Repeat("  ", it.Depth)
		}
		line := cursor + indent + it.Name
		count := listDimStyle.Render(fmt.Sprintf("  %d devices", it.Devices))

		if i == m.Cursor {
			b.WriteString(listSelectedStyle.Render(line))
		} else {
			b.WriteString(listNormalStyle.Render(line))
		}
		b.WriteString(count)
		b.WriteString("\n")
	}
	if len(items) == 0 {
		b.WriteString(listDimStyle.Render("  no matching containers"))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", min(m.Cursor+1, len(items)), len(items))))
	return b.String()
}

// pickRoot runs the picker on the terminal and returns the chosen name, or
// "" when the user quit.
func pickRoot(t *topology.Tree) (string, error) {
	p := tea.NewProgram(NewRootPickerModel(t), tea.WithOutput(os.Stderr))
	final, err := p.Run()
	if err != nil {
		return "", fmt.Errorf("root picker: %w", err)
	}
	return final.(RootPickerModel).Selected, nil
}

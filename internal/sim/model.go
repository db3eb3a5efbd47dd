package sim

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"macropad-service/internal/config"
	"macropad-service/internal/display"
	"macropad-service/internal/keys"
)

type styles struct {
	screen lipgloss.Style
	status lipgloss.Style
	light  lipgloss.Style
}

func defaultStyles() styles {
	return styles{
		screen: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#7D56F4")).
			Padding(0, 1),
		status: lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		light:  lipgloss.NewStyle().Padding(0, 1),
	}
}

// Model is the simulator's bubbletea model.
type Model struct {
	pad        *Pad
	keys       KeyMap
	help       help.Model
	styles     styles
	frame      display.Frame
	lastStroke string
}

func NewModel(pad *Pad) Model {
	h := help.New()
	h.ShowAll = false
	return Model{
		pad:    pad,
		keys:   DefaultKeyMap(),
		help:   h,
		styles: defaultStyles(),
		frame:  pad.Frame(),
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case frameMsg:
		m.frame = display.Frame(msg)
	case keystrokeMsg:
		m.lastStroke = string(msg)
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Previous):
		m.pad.Tap(keys.Previous)
	case key.Matches(msg, m.keys.Select):
		m.pad.Tap(keys.Select)
	case key.Matches(msg, m.keys.Next):
		m.pad.Tap(keys.Next)
	case key.Matches(msg, m.keys.TurnDown):
		m.pad.Turn(-1)
	case key.Matches(msg, m.keys.TurnUp):
		m.pad.Turn(1)
	case key.Matches(msg, m.keys.Push):
		m.pad.ToggleSwitch()
	default:
		for i, b := range m.keys.Actions {
			if key.Matches(msg, b) {
				k, _ := keys.ByCode(keys.SpecialCount + i)
				m.pad.Tap(k)
				break
			}
		}
	}
	return m, nil
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.styles.screen.Render(m.frame.String()))
	b.WriteString("\n")
	b.WriteString(m.lightsView())
	b.WriteString("\n")

	sw := "released"
	if m.pad.EncoderSwitch() {
		sw = "pushed"
	}
	status := fmt.Sprintf("encoder %d (%s)", m.pad.EncoderPosition(), sw)
	if m.lastStroke != "" {
		status += "  sent " + m.lastStroke
	}
	b.WriteString(m.styles.status.Render(status))
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

// lightsView draws the three navigation lights on one row and the action
// lights as a 3x3 grid below.
func (m Model) lightsView() string {
	swatch := func(i int) string {
		c := m.frame.Scaled(i)
		return m.styles.light.Foreground(lipgloss.Color(hexColor(c))).Render("■")
	}

	var rows []string
	var row []string
	for i := 0; i < keys.SpecialCount; i++ {
		row = append(row, swatch(i))
	}
	rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))

	for r := 0; r < 3; r++ {
		row = row[:0]
		for c := 0; c < 3; c++ {
			row = append(row, swatch(keys.SpecialCount+r*3+c))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func hexColor(c config.Color) string {
	return fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2])
}

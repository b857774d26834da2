package models

import (
	"strings"

	"github.com/Vicious806/TrueCircleNewVersion-sub000/internal/tui/styles"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ServerDownModel shows a centered message when the API server is unreachable.
type ServerDownModel struct {
	reason string
	width  int
	height int
}

func NewServerDownModel(reason string) ServerDownModel {
	return ServerDownModel{reason: reason}
}

func (m ServerDownModel) Init() tea.Cmd { return GetSizeCmd() }

func (m ServerDownModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m ServerDownModel) View() string {
	cw := min(max(m.width-8, 20), 64)

	lines := []string{
		lipgloss.PlaceHorizontal(cw, lipgloss.Center, styles.TitleStyle.Render("Meetups")),
		"",
		lipgloss.PlaceHorizontal(cw, lipgloss.Center, styles.MutedTextStyle.Render("We can't reach the server right now. Please try again later.")),
	}
	if m.reason != "" {
		lines = append(lines, "", lipgloss.PlaceHorizontal(cw, lipgloss.Center, styles.ErrorStyle.Render(m.reason)))
	}
	lines = append(lines, "", lipgloss.PlaceHorizontal(cw, lipgloss.Center, styles.RenderKeyBinding("q", "Quit")))

	card := styles.CardStyle.Width(cw).Render(strings.Join(lines, "\n"))
	if m.width > 0 && m.height > 0 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, card)
	}
	return styles.AppStyle.Render(card)
}

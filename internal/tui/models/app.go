package models

import (
	"os"

	"github.com/Vicious806/TrueCircleNewVersion-sub000/internal/tui/client"
	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"
)

// App is shared by every screen of one TUI session.
type App struct {
	API      *client.APIClient
	UserID   uint
	Username string
	width    int
	height   int
}

func (a *App) resize(msg tea.WindowSizeMsg) {
	a.width = msg.Width
	a.height = msg.Height
}

// GetSizeCmd reports the current terminal size as a WindowSizeMsg.
func GetSizeCmd() tea.Cmd {
	return func() tea.Msg {
		w, h, _ := term.GetSize(int(os.Stdout.Fd()))
		return tea.WindowSizeMsg{Width: w, Height: h}
	}
}

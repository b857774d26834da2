package models

import (
	"strings"

	"github.com/Vicious806/TrueCircleNewVersion-sub000/internal/tui/client"
	"github.com/Vicious806/TrueCircleNewVersion-sub000/internal/tui/styles"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// RegisterModel creates a profile when no saved session exists.
type RegisterModel struct {
	app           *App
	inputs        []textinput.Model
	focusIndex    int
	submitting    bool
	statusMessage string
}

type registeredMsg struct {
	userID   uint
	username string
	token    string
	err      error
}

func NewRegisterModel(app *App) RegisterModel {
	username := textinput.New()
	username.Placeholder = "Username"
	username.CharLimit = 32
	username.Prompt = "> "
	username.PromptStyle = styles.InputPromptFocusedStyle
	username.Width = 36
	username.Focus()

	email := textinput.New()
	email.Placeholder = "Email"
	email.CharLimit = 255
	email.Prompt = "> "
	email.PromptStyle = styles.InputPromptStyle
	email.Width = 36

	return RegisterModel{
		app:           app,
		inputs:        []textinput.Model{username, email},
		statusMessage: "Pick a username to start meeting people.",
	}
}

func (m RegisterModel) Init() tea.Cmd { return textinput.Blink }

func (m RegisterModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.app.resize(msg)
		return m, nil
	case registeredMsg:
		m.submitting = false
		if msg.err != nil {
			m.statusMessage = msg.err.Error()
			return m, nil
		}
		m.app.UserID = msg.userID
		m.app.Username = msg.username
		if err := client.SaveSession(client.Session{Token: msg.token, UserID: msg.userID, Username: msg.username}); err != nil {
			m.statusMessage = "could not save session: " + err.Error()
		}
		next := NewMainMeetupModel(m.app)
		return next, next.Init()
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "tab", "shift+tab", "up", "down":
			m.inputs[m.focusIndex].Blur()
			m.inputs[m.focusIndex].PromptStyle = styles.InputPromptStyle
			m.focusIndex = (m.focusIndex + 1) % len(m.inputs)
			m.inputs[m.focusIndex].PromptStyle = styles.InputPromptFocusedStyle
			return m, m.inputs[m.focusIndex].Focus()
		case "enter":
			if m.submitting {
				return m, nil
			}
			username := strings.TrimSpace(m.inputs[0].Value())
			email := strings.TrimSpace(m.inputs[1].Value())
			if username == "" || email == "" {
				m.statusMessage = "Username and email are required."
				return m, nil
			}
			m.submitting = true
			m.statusMessage = "Creating profile..."
			return m, registerCmd(m.app.API, username, email)
		}
	}

	var cmd tea.Cmd
	m.inputs[m.focusIndex], cmd = m.inputs[m.focusIndex].Update(msg)
	return m, cmd
}

func registerCmd(api *client.APIClient, username, email string) tea.Cmd {
	return func() tea.Msg {
		user, token, err := api.Register(username, email)
		if err != nil {
			return registeredMsg{err: err}
		}
		return registeredMsg{userID: user.ID, username: user.Username, token: token}
	}
}

func (m RegisterModel) View() string {
	return styles.AppStyle.Render(strings.Join([]string{
		styles.TitleStyle.Render("Welcome to Meetups"),
		m.inputs[0].View(),
		m.inputs[1].View(),
		styles.StatusStyle.Render(m.statusMessage),
		styles.HelpStyle.Render(strings.Join([]string{
			styles.RenderKeyBinding("Tab", "Next field"),
			styles.RenderKeyBinding("Enter", "Create profile"),
			styles.RenderKeyBinding("Esc", "Quit"),
		}, "  ")),
	}, "\n\n"))
}

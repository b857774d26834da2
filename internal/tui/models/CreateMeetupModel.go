package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/Vicious806/TrueCircleNewVersion-sub000/internal/models"
	"github.com/Vicious806/TrueCircleNewVersion-sub000/internal/services"
	"github.com/Vicious806/TrueCircleNewVersion-sub000/internal/tui/client"
	"github.com/Vicious806/TrueCircleNewVersion-sub000/internal/tui/styles"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

const scheduleLayout = "2006-01-02 15:04"

var meetupTypes = []models.MeetupType{models.MeetupOneOnOne, models.MeetupSmallGroup, models.MeetupLargeGroup}

type CreateMeetupModel struct {
	app        *App
	inputs     []textinput.Model // title, when, venue
	focusIndex int
	typeIndex  int
	submitting bool
	status     string
}

type createdMeetupMsg struct {
	meetup models.Meetup
	err    error
}

func NewCreateMeetupModel(app *App) CreateMeetupModel {
	title := textinput.New()
	title.Prompt = "Title: "
	title.CharLimit = 100
	title.PromptStyle = styles.InputPromptFocusedStyle
	title.Focus()

	when := textinput.New()
	when.Prompt = "When: "
	when.Placeholder = time.Now().Add(24 * time.Hour).Format(scheduleLayout)
	when.PromptStyle = styles.InputPromptStyle

	venue := textinput.New()
	venue.Prompt = "Venue: "
	venue.CharLimit = 255
	venue.PromptStyle = styles.InputPromptStyle

	return CreateMeetupModel{
		app:       app,
		inputs:    []textinput.Model{title, when, venue},
		typeIndex: 1,
	}
}

func (m CreateMeetupModel) Init() tea.Cmd { return textinput.Blink }

func (m CreateMeetupModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.app.resize(msg)
		return m, nil
	case createdMeetupMsg:
		m.submitting = false
		if msg.err != nil {
			m.status = msg.err.Error()
			return m, nil
		}
		next := NewMeetupChatModel(m.app, msg.meetup)
		return next, next.Init()
	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			next := NewMainMeetupModel(m.app)
			return next, next.Init()
		case "ctrl+c":
			return m, tea.Quit
		case "tab", "down":
			return m, m.focus((m.focusIndex + 1) % len(m.inputs))
		case "shift+tab", "up":
			return m, m.focus((m.focusIndex + len(m.inputs) - 1) % len(m.inputs))
		case "ctrl+t":
			m.typeIndex = (m.typeIndex + 1) % len(meetupTypes)
			return m, nil
		case "enter":
			if m.submitting {
				return m, nil
			}
			in, err := m.input()
			if err != "" {
				m.status = err
				return m, nil
			}
			m.submitting = true
			m.status = "Creating..."
			return m, createMeetupCmd(m.app.API, in)
		}
	}

	var cmd tea.Cmd
	m.inputs[m.focusIndex], cmd = m.inputs[m.focusIndex].Update(msg)
	return m, cmd
}

func (m *CreateMeetupModel) focus(i int) tea.Cmd {
	m.inputs[m.focusIndex].Blur()
	m.inputs[m.focusIndex].PromptStyle = styles.InputPromptStyle
	m.focusIndex = i
	m.inputs[i].PromptStyle = styles.InputPromptFocusedStyle
	return m.inputs[i].Focus()
}

func (m CreateMeetupModel) input() (services.CreateMeetupInput, string) {
	title := strings.TrimSpace(m.inputs[0].Value())
	if title == "" {
		return services.CreateMeetupInput{}, "Title is required"
	}
	whenRaw := strings.TrimSpace(m.inputs[1].Value())
	if whenRaw == "" {
		whenRaw = m.inputs[1].Placeholder
	}
	when, err := time.ParseInLocation(scheduleLayout, whenRaw, time.Local)
	if err != nil {
		return services.CreateMeetupInput{}, "When must look like " + scheduleLayout
	}
	return services.CreateMeetupInput{
		Title:       title,
		Type:        meetupTypes[m.typeIndex],
		ScheduledAt: when,
		VenueName:   strings.TrimSpace(m.inputs[2].Value()),
	}, ""
}

func createMeetupCmd(api *client.APIClient, in services.CreateMeetupInput) tea.Cmd {
	return func() tea.Msg {
		meetup, err := api.CreateMeetup(in)
		return createdMeetupMsg{meetup: meetup, err: err}
	}
}

func (m CreateMeetupModel) View() string {
	t := meetupTypes[m.typeIndex]
	return styles.AppStyle.Render(strings.Join([]string{
		styles.TitleStyle.Render("New Meetup"),
		m.inputs[0].View(),
		m.inputs[1].View(),
		m.inputs[2].View(),
		styles.StatusStyle.Render(fmt.Sprintf("Type: %s (up to %d people)", t, t.MaxParticipants())),
		styles.ErrorStyle.Render(m.status),
		styles.HelpStyle.Render(strings.Join([]string{
			styles.RenderKeyBinding("Tab", "Next field"),
			styles.RenderKeyBinding("Ctrl+T", "Change type"),
			styles.RenderKeyBinding("Enter", "Create"),
			styles.RenderKeyBinding("Esc", "Back"),
		}, "  ")),
	}, "\n\n"))
}

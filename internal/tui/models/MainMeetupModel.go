package models

import (
	"fmt"
	"strings"

	"github.com/Vicious806/TrueCircleNewVersion-sub000/internal/models"
	"github.com/Vicious806/TrueCircleNewVersion-sub000/internal/tui/client"
	"github.com/Vicious806/TrueCircleNewVersion-sub000/internal/tui/styles"
	tea "github.com/charmbracelet/bubbletea"
)

type meetupTab int

const (
	tabMine meetupTab = iota
	tabOpen
)

// MainMeetupModel lists the user's meetups and the open ones they can join.
type MainMeetupModel struct {
	app         *App
	tab         meetupTab
	mine        []models.Meetup
	open        []models.Meetup
	selectedIdx int
	loading     bool
	status      string
	statusErr   bool
}

type meetupsLoadedMsg struct {
	mine []models.Meetup
	open []models.Meetup
	err  error
}

type membershipChangedMsg struct {
	meetup models.Meetup
	joined bool
	err    error
}

func NewMainMeetupModel(app *App) MainMeetupModel {
	return MainMeetupModel{app: app, loading: true}
}

func (m MainMeetupModel) Init() tea.Cmd {
	return tea.Batch(loadMeetupsCmd(m.app.API), GetSizeCmd())
}

func loadMeetupsCmd(api *client.APIClient) tea.Cmd {
	return func() tea.Msg {
		mine, err := api.MyMeetups()
		if err != nil {
			return meetupsLoadedMsg{err: err}
		}
		open, err := api.OpenMeetups("")
		return meetupsLoadedMsg{mine: mine, open: open, err: err}
	}
}

func (m MainMeetupModel) current() []models.Meetup {
	if m.tab == tabMine {
		return m.mine
	}
	return m.open
}

func (m MainMeetupModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.app.resize(msg)
	case meetupsLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.setStatus(msg.err.Error(), true)
			return m, nil
		}
		m.mine, m.open = msg.mine, msg.open
		m.selectedIdx = min(m.selectedIdx, max(len(m.current())-1, 0))
	case membershipChangedMsg:
		if msg.err != nil {
			m.setStatus(msg.err.Error(), true)
			return m, nil
		}
		if msg.joined {
			m.setStatus(fmt.Sprintf("Joined %s", msg.meetup.Title), false)
		} else {
			m.setStatus(fmt.Sprintf("Left %s", msg.meetup.Title), false)
		}
		m.loading = true
		return m, loadMeetupsCmd(m.app.API)
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m MainMeetupModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	items := m.current()
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "tab", "left", "right", "h":
		if m.tab == tabMine {
			m.tab = tabOpen
		} else {
			m.tab = tabMine
		}
		m.selectedIdx = 0
	case "up", "k":
		if m.selectedIdx > 0 {
			m.selectedIdx--
		}
	case "down", "j":
		if m.selectedIdx < len(items)-1 {
			m.selectedIdx++
		}
	case "r":
		m.loading = true
		return m, loadMeetupsCmd(m.app.API)
	case "n":
		next := NewCreateMeetupModel(m.app)
		return next, next.Init()
	case "enter":
		if len(items) == 0 {
			return m, nil
		}
		selected := items[m.selectedIdx]
		if m.tab == tabOpen {
			return m, joinCmd(m.app.API, selected.ID)
		}
		next := NewMeetupChatModel(m.app, selected)
		return next, next.Init()
	case "l":
		if m.tab == tabMine && len(items) > 0 {
			return m, leaveCmd(m.app.API, items[m.selectedIdx].ID)
		}
	}
	return m, nil
}

func joinCmd(api *client.APIClient, meetupID uint) tea.Cmd {
	return func() tea.Msg {
		meetup, err := api.JoinMeetup(meetupID)
		return membershipChangedMsg{meetup: meetup, joined: true, err: err}
	}
}

func leaveCmd(api *client.APIClient, meetupID uint) tea.Cmd {
	return func() tea.Msg {
		meetup, err := api.LeaveMeetup(meetupID)
		return membershipChangedMsg{meetup: meetup, err: err}
	}
}

func (m *MainMeetupModel) setStatus(s string, isErr bool) {
	m.status = s
	m.statusErr = isErr
}

func (m MainMeetupModel) View() string {
	var sb strings.Builder

	sb.WriteString(styles.TitleStyle.Render(fmt.Sprintf("Welcome %s", m.app.Username)) + "\n\n")

	mineTab, openTab := styles.ActiveTabStyle, styles.TabStyle
	if m.tab == tabOpen {
		mineTab, openTab = styles.TabStyle, styles.ActiveTabStyle
	}
	sb.WriteString(mineTab.Render("My meetups") + " " + openTab.Render("Open meetups") + "\n")
	sb.WriteString(strings.Repeat("-", 40) + "\n")

	items := m.current()
	switch {
	case m.loading && len(items) == 0:
		sb.WriteString(styles.MutedTextStyle.Render("Loading...") + "\n")
	case len(items) == 0 && m.tab == tabMine:
		sb.WriteString(styles.MutedTextStyle.Render("No meetups yet. Join one from the Open tab or press n.") + "\n")
	case len(items) == 0:
		sb.WriteString(styles.MutedTextStyle.Render("No open meetups right now.") + "\n")
	}
	for i, meetup := range items {
		line := fmt.Sprintf("%s  %d/%d  %s  %s",
			meetup.Title,
			meetup.CurrentParticipants, meetup.MaxParticipants,
			meetup.ScheduledAt.Local().Format("Mon Jan 2 15:04"),
			styles.RenderStatus(string(meetup.Status)),
		)
		if i == m.selectedIdx {
			sb.WriteString(styles.SelectedItemStyle.Render("> "+line) + "\n")
		} else {
			sb.WriteString(styles.ItemStyle.Render("  "+line) + "\n")
		}
	}

	if m.status != "" {
		style := styles.StatusStyle
		if m.statusErr {
			style = styles.ErrorStyle
		}
		sb.WriteString("\n" + style.Render(m.status) + "\n")
	}

	enter := "Open chat"
	if m.tab == tabOpen {
		enter = "Join"
	}
	sb.WriteString(styles.HelpStyle.Render(strings.Join([]string{
		styles.RenderKeyBinding("Tab", "Switch list"),
		styles.RenderKeyBinding("Enter", enter),
		styles.RenderKeyBinding("l", "Leave"),
		styles.RenderKeyBinding("n", "New"),
		styles.RenderKeyBinding("r", "Refresh"),
		styles.RenderKeyBinding("q", "Quit"),
	}, "  ")))

	return styles.ContainerStyle.Render(sb.String())
}

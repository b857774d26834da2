package models

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/Vicious806/TrueCircleNewVersion-sub000/internal/api/ws"
	"github.com/Vicious806/TrueCircleNewVersion-sub000/internal/models"
	"github.com/Vicious806/TrueCircleNewVersion-sub000/internal/tui/client"
	"github.com/Vicious806/TrueCircleNewVersion-sub000/internal/tui/styles"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

const historyLimit = 100

// MeetupChatModel is the live chat of one meetup.
type MeetupChatModel struct {
	app      *App
	meetup   models.Meetup
	messages []models.ChatMessage
	typing   []string
	input    textarea.Model
	viewport viewport.Model

	events    <-chan ws.WsEvent
	cancel    func()
	send      func(client.Frame) error
	connected bool
	isTyping  bool
	status    string
}

type historyLoadedMsg struct {
	messages []models.ChatMessage
	err      error
}

type socketOpenedMsg struct {
	events <-chan ws.WsEvent
	cancel func()
	send   func(client.Frame) error
	err    error
}

type wsEventMsg struct{ evt ws.WsEvent }

type socketClosedMsg struct{}

type httpSentMsg struct {
	message models.ChatMessage
	err     error
}

func NewMeetupChatModel(app *App, meetup models.Meetup) MeetupChatModel {
	input := textarea.New()
	input.Placeholder = "Type a message..."
	input.ShowLineNumbers = false
	input.CharLimit = 2000
	input.SetWidth(80)
	input.SetHeight(3)
	input.KeyMap.InsertNewline.SetEnabled(false)
	input.Focus()

	return MeetupChatModel{
		app:      app,
		meetup:   meetup,
		input:    input,
		viewport: viewport.New(80, 15),
		status:   "Connecting...",
	}
}

func (m MeetupChatModel) Init() tea.Cmd {
	return tea.Batch(
		textarea.Blink,
		GetSizeCmd(),
		loadHistoryCmd(m.app.API, m.meetup.ID),
		openSocketCmd(m.app.API),
	)
}

func loadHistoryCmd(api *client.APIClient, meetupID uint) tea.Cmd {
	return func() tea.Msg {
		messages, err := api.GetMessages(meetupID, historyLimit)
		return historyLoadedMsg{messages: messages, err: err}
	}
}

func openSocketCmd(api *client.APIClient) tea.Cmd {
	return func() tea.Msg {
		events, cancel, send, err := api.Subscribe()
		return socketOpenedMsg{events: events, cancel: cancel, send: send, err: err}
	}
}

func waitForEvent(events <-chan ws.WsEvent) tea.Cmd {
	return func() tea.Msg {
		evt, ok := <-events
		if !ok {
			return socketClosedMsg{}
		}
		return wsEventMsg{evt: evt}
	}
}

func sendHTTPCmd(api *client.APIClient, meetupID uint, text string) tea.Cmd {
	return func() tea.Msg {
		msg, err := api.SendMessage(meetupID, text)
		return httpSentMsg{message: msg, err: err}
	}
}

func (m MeetupChatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.app.resize(msg)
		m.viewport.Width = max(msg.Width-6, 20)
		m.viewport.Height = max(msg.Height-14, 5)
		m.input.SetWidth(max(msg.Width-8, 20))
		m.refresh()
		return m, nil

	case historyLoadedMsg:
		if msg.err != nil {
			m.status = "history: " + msg.err.Error()
			return m, nil
		}
		for _, cm := range msg.messages {
			m.addMessage(cm)
		}
		m.refresh()
		return m, nil

	case socketOpenedMsg:
		if msg.err != nil {
			m.status = "offline, messages go over HTTP: " + msg.err.Error()
			return m, nil
		}
		m.events, m.cancel, m.send = msg.events, msg.cancel, msg.send
		if err := m.send(client.JoinRoom(m.meetup.ID)); err != nil {
			m.status = err.Error()
		}
		return m, waitForEvent(m.events)

	case wsEventMsg:
		m.handleEvent(msg.evt)
		return m, waitForEvent(m.events)

	case socketClosedMsg:
		m.connected = false
		m.send = nil
		m.typing = nil
		m.status = "disconnected, messages go over HTTP"
		return m, nil

	case httpSentMsg:
		if msg.err != nil {
			m.status = msg.err.Error()
			return m, nil
		}
		m.addMessage(msg.message)
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.close()
			return m, tea.Quit
		case "esc":
			m.close()
			next := NewMainMeetupModel(m.app)
			return next, next.Init()
		case "enter":
			return m, m.submit()
		case "pgup", "pgdown":
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		m.syncTyping()
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *MeetupChatModel) submit() tea.Cmd {
	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		return nil
	}
	m.input.Reset()
	m.syncTyping()

	if m.connected && m.send != nil {
		if err := m.send(client.ChatMessage(m.meetup.ID, m.app.UserID, text)); err == nil {
			return nil
		}
	}
	return sendHTTPCmd(m.app.API, m.meetup.ID, text)
}

// syncTyping tells the room when the input goes from empty to non-empty and back.
func (m *MeetupChatModel) syncTyping() {
	if !m.connected || m.send == nil {
		return
	}
	typing := strings.TrimSpace(m.input.Value()) != ""
	if typing == m.isTyping {
		return
	}
	if err := m.send(client.Typing(typing)); err == nil {
		m.isTyping = typing
	}
}

func (m *MeetupChatModel) handleEvent(evt ws.WsEvent) {
	switch evt.Type {
	case ws.TypeRoomJoined:
		m.connected = true
		m.status = ""
	case ws.TypeNewMessage, ws.TypeMessageSent:
		var cm models.ChatMessage
		if err := json.Unmarshal(evt.Data, &cm); err != nil || cm.MeetupID != m.meetup.ID {
			return
		}
		m.addMessage(cm)
		m.refresh()
	case ws.TypeTypingQueue:
		var names []string
		if err := json.Unmarshal(evt.Data, &names); err != nil {
			return
		}
		m.typing = slices.DeleteFunc(names, func(n string) bool { return n == m.app.Username })
	case ws.TypeError:
		m.status = evt.Message
	}
}

// addMessage inserts cm keeping messages ordered by time and free of duplicates.
func (m *MeetupChatModel) addMessage(cm models.ChatMessage) {
	if slices.ContainsFunc(m.messages, func(x models.ChatMessage) bool { return x.ID == cm.ID }) {
		return
	}
	i, _ := slices.BinarySearchFunc(m.messages, cm, func(a, b models.ChatMessage) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return int(a.ID) - int(b.ID)
	})
	m.messages = slices.Insert(m.messages, i, cm)
}

func (m *MeetupChatModel) refresh() {
	var sb strings.Builder
	for _, cm := range m.messages {
		name := styles.UsernameStyle.Render(cm.Username)
		if cm.UserID == m.app.UserID {
			name = styles.OwnUsernameStyle.Render(cm.Username)
		}
		sb.WriteString(fmt.Sprintf("%s %s\n", name, styles.TimestampStyle.Render(cm.CreatedAt.Local().Format("15:04"))))
		sb.WriteString(styles.MessageStyle.Render(cm.Message) + "\n")
	}
	m.viewport.SetContent(sb.String())
	m.viewport.GotoBottom()
}

func (m *MeetupChatModel) close() {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
}

func (m MeetupChatModel) View() string {
	var sb strings.Builder

	header := fmt.Sprintf("%s  %d/%d", m.meetup.Title, m.meetup.CurrentParticipants, m.meetup.MaxParticipants)
	sb.WriteString(styles.TitleStyle.Render(header) + "\n\n")
	sb.WriteString(m.viewport.View() + "\n")

	switch len(m.typing) {
	case 0:
		sb.WriteString("\n")
	case 1:
		sb.WriteString(styles.TypingStyle.Render(m.typing[0]+" is typing...") + "\n")
	default:
		sb.WriteString(styles.TypingStyle.Render(strings.Join(m.typing, ", ")+" are typing...") + "\n")
	}

	sb.WriteString(styles.InputStyle.Render(m.input.View()) + "\n")
	if m.status != "" {
		sb.WriteString(styles.ErrorStyle.Render(m.status) + "\n")
	}
	sb.WriteString(styles.HelpStyle.Render(strings.Join([]string{
		styles.RenderKeyBinding("Enter", "Send"),
		styles.RenderKeyBinding("PgUp/PgDn", "Scroll"),
		styles.RenderKeyBinding("Esc", "Back"),
	}, "  ")))
	return styles.ContainerStyle.Render(sb.String())
}

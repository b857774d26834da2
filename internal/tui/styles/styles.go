package styles

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

type ColorType struct {
	value lipgloss.Color
}

func (c ColorType) Value() lipgloss.Color {
	return c.value
}

var (
	PrimaryColor   = ColorType{lipgloss.Color("#D12182")}
	SecondaryColor = ColorType{lipgloss.Color("#874BFD")}
	AccentColor    = ColorType{lipgloss.Color("#FFFFFF")}
	MutedColor     = ColorType{lipgloss.Color("#71717a")}

	RedColor  = ColorType{lipgloss.Color("9")}
	AquaColor = ColorType{lipgloss.Color("86")}
	LimeColor = ColorType{lipgloss.Color("#00FF77")}

	AppStyle = lipgloss.NewStyle().Padding(1, 2)

	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(PrimaryColor.Value())

	CardStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(SecondaryColor.Value()).
			Padding(1, 2)

	ContainerStyle = lipgloss.NewStyle().
			Padding(1, 2).
			Margin(1, 0, 1, 2)

	SelectedItemStyle = lipgloss.NewStyle().
				Foreground(AccentColor.Value()).
				Background(lipgloss.Color("#7D56F4")).
				Bold(true).
				Padding(0, 1)

	ItemStyle = lipgloss.NewStyle().Padding(0, 1)

	TabStyle       = lipgloss.NewStyle().Foreground(MutedColor.Value()).Padding(0, 1)
	ActiveTabStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor.Value()).
			Bold(true).
			Underline(true).
			Padding(0, 1)

	MessageStyle = lipgloss.NewStyle().
			Foreground(AccentColor.Value()).
			PaddingLeft(2)

	UsernameStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor.Value()).
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(PrimaryColor.Value()).
			BorderLeft(true).
			PaddingLeft(1)

	OwnUsernameStyle = lipgloss.NewStyle().
				Foreground(LimeColor.Value()).
				BorderStyle(lipgloss.NormalBorder()).
				BorderForeground(LimeColor.Value()).
				BorderLeft(true).
				PaddingLeft(1)

	TimestampStyle = lipgloss.NewStyle().Foreground(MutedColor.Value()).Italic(true)
	MutedTextStyle = lipgloss.NewStyle().Foreground(MutedColor.Value())
	TypingStyle    = lipgloss.NewStyle().Foreground(AquaColor.Value()).Italic(true)
	ErrorStyle     = lipgloss.NewStyle().Foreground(RedColor.Value())
	StatusStyle    = lipgloss.NewStyle().Foreground(AquaColor.Value())

	InputStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(MutedColor.Value()).
			MarginTop(1)

	InputPromptStyle        = lipgloss.NewStyle().Foreground(MutedColor.Value())
	InputPromptFocusedStyle = lipgloss.NewStyle().Foreground(PrimaryColor.Value()).Bold(true)

	HelpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262")).
			MarginTop(1)

	KeyStyle = lipgloss.NewStyle().Foreground(SecondaryColor.Value()).Bold(true)
)

// RenderKeyBinding renders "[key] action" for help lines.
func RenderKeyBinding(key, action string) string {
	return fmt.Sprintf("%s %s", KeyStyle.Render("["+key+"]"), action)
}

// RenderStatus colors a meetup status badge.
func RenderStatus(status string) string {
	switch status {
	case "open":
		return lipgloss.NewStyle().Foreground(LimeColor.Value()).Render(status)
	case "full":
		return lipgloss.NewStyle().Foreground(AquaColor.Value()).Render(status)
	default:
		return MutedTextStyle.Render(status)
	}
}

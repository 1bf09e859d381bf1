package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	Black    = lipgloss.Color("#111111")
	Gray     = lipgloss.Color("#3e3e3e")
	GrayDark = lipgloss.Color("#2f3030")
	White    = lipgloss.Color("#cccccc")

	Red = lipgloss.Color("#B8383B")
	CT  = lipgloss.Color("#5885A2")
	T   = lipgloss.Color("#d9a441")

	ColourStrange = lipgloss.Color("#cf6a32")
	ColourLimited = lipgloss.Color("#ffd700")
	ColourGenuine = lipgloss.Color("#4d7455")
	ColourVintage = lipgloss.Color("#476291")

	TitleBar = lipgloss.NewStyle().Bold(true).Align(lipgloss.Center).Background(Black).Foreground(ColourStrange)

	LogLine   = lipgloss.NewStyle().Foreground(White)
	LogError  = lipgloss.NewStyle().Foreground(Red)
	LogInfo   = lipgloss.NewStyle().Foreground(ColourVintage)
	LogHeader = lipgloss.NewStyle().Foreground(ColourLimited).Bold(true)
	LogCT     = lipgloss.NewStyle().Foreground(CT).Bold(true)
	LogT      = lipgloss.NewStyle().Foreground(T).Bold(true)

	InputPrompt = lipgloss.NewStyle().Foreground(ColourVintage).Background(GrayDark).Inline(true)

	StatusMatch   = lipgloss.NewStyle().Foreground(ColourStrange).PaddingRight(2).PaddingLeft(1).Bold(true)
	StatusUpdated = lipgloss.NewStyle().Foreground(ColourGenuine).PaddingRight(2).PaddingLeft(1)
	StatusError   = lipgloss.NewStyle().Foreground(Red).Align(lipgloss.Right).Bold(true).PaddingRight(2)
	StatusMessage = lipgloss.NewStyle().Foreground(ColourGenuine).Align(lipgloss.Right).Bold(true).PaddingRight(2)
	StatusHelp    = lipgloss.NewStyle().Foreground(Gray).Bold(true).Align(lipgloss.Center)
	StatusVersion = lipgloss.NewStyle().Foreground(ColourGenuine).Bold(true).Align(lipgloss.Center).PaddingLeft(1).PaddingRight(1)
)

// WrapX will wrap a centered string with the supplied character up to the lenth specified.
func WrapX(width int, value string, character string) string {
	all := max(width-lipgloss.Width(value), 0)

	return strings.Repeat(character, all/2) + value + strings.Repeat(character, all/2)
}

package output

import (
	"github.com/charmbracelet/lipgloss"
)

// Styles bundles the lipgloss styles used across commands.
type Styles struct {
	Header1 lipgloss.Style
	Header2 lipgloss.Style
	Bold    lipgloss.Style
	Muted   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Info    lipgloss.Style
	// Label styles canonical target labels.
	Label lipgloss.Style
	// Kind styles rule kinds.
	Kind lipgloss.Style
}

// newStyles builds the style set; without color every style is a
// passthrough.
func newStyles(colored bool) *Styles {
	if !colored {
		plain := lipgloss.NewStyle()
		return &Styles{
			Header1: plain, Header2: plain, Bold: plain, Muted: plain,
			Success: plain, Warning: plain, Error: plain, Info: plain,
			Label: plain, Kind: plain,
		}
	}
	return &Styles{
		Header1: lipgloss.NewStyle().Bold(true).Underline(true),
		Header2: lipgloss.NewStyle().Bold(true),
		Bold:    lipgloss.NewStyle().Bold(true),
		Muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		Warning: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		Info:    lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
		Label:   lipgloss.NewStyle().Foreground(lipgloss.Color("81")),
		Kind:    lipgloss.NewStyle().Foreground(lipgloss.Color("177")),
	}
}

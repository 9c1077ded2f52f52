package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/janmasethu/sakhi/internal/core"
)

var (
	TitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true).MarginBottom(1)
	UsageStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	DescStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	FlagStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	ErrorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)

	// Tier badges, cheapest to most expensive.
	routeStyles = map[core.Route]lipgloss.Style{
		core.RouteSLMDirect: lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true),
		core.RouteSLMRAG:    lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Bold(true),
		core.RouteOpenAIRAG: lipgloss.NewStyle().Foreground(lipgloss.Color("5")).Bold(true),
	}
)

func RouteBadge(r core.Route) string {
	s, ok := routeStyles[r]
	if !ok {
		return ErrorStyle.Render(string(r))
	}
	return s.Render(string(r))
}

// Copyright (c) 2024 Neomantra Corp

package tui

import (
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

var (
	// WonderTrader color palette
	colorDarkPurple  = lipgloss.Color("#3F3080")
	colorLightPurple = lipgloss.Color("#655BA7")
	colorRed         = lipgloss.Color("#E24F36")
	colorGrue        = lipgloss.Color("#4495AA")
	colorGreen       = lipgloss.Color("#4CAF50")
	colorYellow      = lipgloss.Color("#FBF4A5")
	colorWhite       = lipgloss.Color("#FFFFFF")
	colorBlack       = lipgloss.Color("#000000")

	wtBorderStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), true).
			BorderForeground(colorLightPurple)

	wtTableStyles = table.Styles{
		Header:   lipgloss.NewStyle().Bold(true).Foreground(colorRed).Padding(0, 1),
		Selected: lipgloss.NewStyle().Bold(true).Foreground(colorGrue),
		Cell:     lipgloss.NewStyle().Padding(0, 1),
	}
)

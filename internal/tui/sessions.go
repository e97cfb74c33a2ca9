// Copyright (c) 2024 Neomantra Corp
//
// Sessions page, adapted from the teacher's publishers.go: same
// single-table lookup shape, retargeted from Databento's publisher
// directory onto the registry's trading-session schedules.

package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"wondertrader/basedata"
)

// Sessions page
type SessionsPageModel struct {
	config    Config
	sessions  []*basedata.SessionInfo
	lastError error

	table  table.Model
	width  int
	height int
}

func NewSessionsPage(config Config) SessionsPageModel {
	table := table.New(table.WithColumns([]table.Column{
		{Title: "ID", Width: 16},
		{Title: "Name", Width: 24},
		{Title: "Sections", Width: 10},
		{Title: "Open", Width: 8},
		{Title: "Close", Width: 8},
	}), table.WithStyles(wtTableStyles),
		table.WithFocused(true))

	return SessionsPageModel{
		config: config,
		table:  table,
		width:  20,
		height: 10,
	}
}

//////////////////////////////////////////////////////////////////////////////
// BubbleTea interface

func (m SessionsPageModel) Init() tea.Cmd {
	if len(m.sessions) == 0 {
		return getSessions(m.config.Registry)
	}
	return nil
}

func (m SessionsPageModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table.SetWidth(msg.Width - 2)
		m.table.SetHeight(msg.Height - 4)

	case SessionsMsg:
		m.lastError = msg.Error
		m.sessions = msg.Sessions

		var rows []table.Row
		for _, s := range m.sessions {
			var open, close int
			if len(s.Sections) > 0 {
				open = s.Sections[0].Open
				close = s.Sections[len(s.Sections)-1].Close
			}
			rows = append(rows, table.Row{
				s.ID,
				s.Name,
				niceInt(len(s.Sections)),
				niceInt(open),
				niceInt(close),
			})
		}
		m.table.SetRows(rows)

	default:
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m SessionsPageModel) View() string {
	var pane string
	if m.lastError == nil {
		pane = m.table.View()
	} else {
		pane = lipgloss.NewStyle().Width(m.table.Width()).Render(
			fmt.Sprintf("Error: %s", m.lastError.Error()))
	}
	return wtBorderStyle.Render(pane)
}

//////////////////////////////////////////////////////////////////////////////

type SessionsMsg struct {
	Sessions []*basedata.SessionInfo
	Error    error
}

func getSessions(registry *basedata.Registry) tea.Cmd {
	return func() tea.Msg {
		if registry == nil {
			return SessionsMsg{}
		}
		var sessions []*basedata.SessionInfo
		seen := map[string]bool{}
		for _, c := range registry.ListContracts("") {
			if seen[c.SessionID] {
				continue
			}
			seen[c.SessionID] = true
			if s, err := registry.Session(c.SessionID); err == nil {
				sessions = append(sessions, s)
			}
		}
		return SessionsMsg{Sessions: sessions}
	}
}

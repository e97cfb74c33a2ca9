// Copyright (c) 2024 Neomantra Corp
//
// Live ticks page, adapted from the teacher's downloads.go: same
// progress-channel-listener table shape, retargeted from HTTP download
// progress rows onto a scrolling window of recently received ticks.

package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
)

const maxTickRows = 500

// Ticks page
type TicksPageModel struct {
	config Config

	feed     *FeedManager
	received int
	dropped  int

	width  int
	height int

	ticksTable table.Model
	lastError  error
	help       help.Model
	keyMap     TicksPageKeyMap
}

func NewTicksPage(config Config) TicksPageModel {
	ticksTable := table.New(table.WithColumns([]table.Column{
		{Title: "Code", Width: 16},
		{Title: "Price", Width: 10},
		{Title: "Volume", Width: 10},
		{Title: "Bid", Width: 10},
		{Title: "Ask", Width: 10},
		{Title: "Action Time", Width: 12},
	}), table.WithStyles(wtTableStyles),
		table.WithFocused(true))

	return TicksPageModel{
		config:     config,
		ticksTable: ticksTable,
		width:      20,
		height:     10,
		help:       help.New(),
		keyMap:     DefaultTicksPageKeyMap(),
	}
}

///////////////////////////////////////////////////////////////////////////////
// TicksPageKeyMap

type TicksPageKeyMap struct {
	Clear key.Binding
}

func DefaultTicksPageKeyMap() TicksPageKeyMap {
	return TicksPageKeyMap{
		Clear: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "clear"),
		),
	}
}

func (m *TicksPageKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{m.Clear}}
}

func (m TicksPageKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{m.Clear}
}

//////////////////////////////////////////////////////////////////////////////
// BubbleTea interface

func (m TicksPageModel) Init() tea.Cmd {
	if m.feed == nil && m.config.FeedPath != "" {
		return func() tea.Msg {
			return startFeedMsg{}
		}
	}
	return nil
}

func (m TicksPageModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateSizes()
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keyMap.Clear) {
			m.ticksTable.SetRows(nil)
			m.received = 0
			m.dropped = 0
			return m, nil
		}
		var cmd tea.Cmd
		m.ticksTable, cmd = m.ticksTable.Update(msg)
		return m, cmd

	case startFeedMsg:
		m.feed = NewFeedManager(m.config.FeedPath)
		return m, m.listenForEvents()

	case FeedEventMsg:
		return m, m.onFeedEvent(msg)
	}
	return m, nil
}

func (m TicksPageModel) View() string {
	viewStr := wtBorderStyle.Render(m.ticksTable.View()) + "\n"
	if m.lastError != nil {
		viewStr += fmt.Sprintf("Error: %s ", m.lastError)
	} else {
		viewStr += fmt.Sprintf("received=%d dropped=%d ", m.received, m.dropped)
	}
	viewStr += m.help.View(&m.keyMap)
	return viewStr
}

///////////////////////////////////////////////////////////////////////////////

func (m *TicksPageModel) updateSizes() {
	availHeight := m.height - 2 - 2 - 2 // app header/footer, pane border, status line
	m.ticksTable.SetHeight(maxInt(1, availHeight))
	m.ticksTable.SetWidth(m.width - 2)
	m.help.Width = m.width - 2
}

type startFeedMsg struct{}

// listenForEvents is a command that waits for the next tick/error on the feed channel.
func (m *TicksPageModel) listenForEvents() tea.Cmd {
	feed := m.feed
	return func() tea.Msg {
		return <-feed.EventChannel()
	}
}

func (m *TicksPageModel) onFeedEvent(msg FeedEventMsg) tea.Cmd {
	if msg.Error != nil {
		m.dropped++
		m.lastError = msg.Error
	}
	if msg.Tick != nil {
		m.received++
		rows := append(m.ticksTable.Rows(), table.Row{
			msg.Tick.Code,
			fmt.Sprintf("%.4f", msg.Tick.Price),
			fmt.Sprintf("%.0f", msg.Tick.Volume),
			fmt.Sprintf("%.4f", msg.Tick.BidPrice[0]),
			fmt.Sprintf("%.4f", msg.Tick.AskPrice[0]),
			fmt.Sprintf("%06d", msg.Tick.ActionTime),
		})
		if len(rows) > maxTickRows {
			rows = rows[len(rows)-maxTickRows:]
		}
		m.ticksTable.SetRows(rows)
		m.ticksTable.SetCursor(len(rows) - 1)
	}
	if msg.Done {
		return nil // feed closed, stop listening
	}
	return m.listenForEvents()
}

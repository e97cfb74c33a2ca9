// Copyright (c) 2024 Neomantra Corp
//
// Archives page, adapted from the teacher's jobs.go: a two-pane
// list-plus-detail layout with a tab-cycling focus
// model, retargeted from Databento batch-job polling onto a local
// filesystem walk of WonderTrader .dsb archives under the data root, with
// inspect-style record-count/date-range detail in place of job metadata.
// There is no download action here: archives already live on disk.

package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"wondertrader/store"
)

const (
	archivesFocusCount  = 2
	archivesFocusList   = 0
	archivesFocusDetail = 1
)

// ArchiveDesc is one discovered .dsb archive file under the data root.
type ArchiveDesc struct {
	Path string
	Size int64
}

// Archives page
type ArchivesPageModel struct {
	config Config

	archives      []ArchiveDesc
	lastListError error

	selected     int
	focusIndex   int
	archiveTable table.Model
	detailTable  table.Model

	width  int
	height int
	help   help.Model
	keyMap ArchivesPageKeyMap
}

func NewArchivesPage(config Config) ArchivesPageModel {
	archiveTable := table.New(table.WithColumns([]table.Column{
		{Title: "Path", Width: 50},
		{Title: "Size", Width: 10},
	}), table.WithStyles(wtTableStyles),
		table.WithFocused(true))

	detailTable := table.New(table.WithColumns([]table.Column{
		{Title: "Field", Width: 16},
		{Title: "Value", Width: 24},
	}), table.WithStyles(wtTableStyles),
		table.WithFocused(false))

	return ArchivesPageModel{
		config:       config,
		selected:     -1,
		archiveTable: archiveTable,
		detailTable:  detailTable,
		width:        20,
		height:       10,
		help:         help.New(),
		keyMap:       DefaultArchivesPageKeyMap(),
	}
}

///////////////////////////////////////////////////////////////////////////////
// ArchivesPageKeyMap

type ArchivesPageKeyMap struct {
	NextFocus key.Binding
	Refresh   key.Binding
}

func DefaultArchivesPageKeyMap() ArchivesPageKeyMap {
	return ArchivesPageKeyMap{
		NextFocus: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "focus->"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
	}
}

func (m *ArchivesPageKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{m.NextFocus, m.Refresh}}
}

func (m ArchivesPageKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{m.NextFocus, m.Refresh}
}

//////////////////////////////////////////////////////////////////////////////
// BubbleTea interface

func (m ArchivesPageModel) Init() tea.Cmd {
	return scanArchives(m.config.DataRoot)
}

func (m ArchivesPageModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateSizes()
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keyMap.NextFocus):
			m.focusIndex = (m.focusIndex + 1) % archivesFocusCount
			m.updateFocus()
			return m, nil
		case key.Matches(msg, m.keyMap.Refresh):
			return m, scanArchives(m.config.DataRoot)
		}

		var cmd tea.Cmd
		switch m.focusIndex {
		case archivesFocusList:
			m.archiveTable, cmd = m.archiveTable.Update(msg)
			m.onArchiveSelection()
		case archivesFocusDetail:
			m.detailTable, cmd = m.detailTable.Update(msg)
		}
		return m, cmd

	case ArchivesMsg:
		m.lastListError = msg.Error
		m.archives = msg.Archives

		var rows []table.Row
		for _, a := range m.archives {
			rows = append(rows, table.Row{a.Path, humanize.Bytes(uint64(a.Size))})
		}
		m.archiveTable.SetRows(rows)
		m.archiveTable.SetCursor(0)
		m.selected = -1
		m.onArchiveSelection()
	}
	return m, nil
}

func (m ArchivesPageModel) View() string {
	var listPane, detailPane string

	if m.lastListError != nil {
		listPane = lipgloss.NewStyle().Width(m.archiveTable.Width()).Render(
			fmt.Sprintf(" %s", m.lastListError.Error()))
	} else {
		listPane = m.archiveTable.View()
	}
	detailPane = m.detailTable.View()

	switch m.focusIndex {
	case archivesFocusList:
		listPane = wtBorderStyle.BorderStyle(lipgloss.ThickBorder()).Render(listPane)
		detailPane = wtBorderStyle.Render(detailPane)
	case archivesFocusDetail:
		listPane = wtBorderStyle.Render(listPane)
		detailPane = wtBorderStyle.BorderStyle(lipgloss.ThickBorder()).Render(detailPane)
	}

	viewStr := lipgloss.JoinHorizontal(lipgloss.Top, listPane, detailPane) + "\n"
	viewStr += m.help.View(&m.keyMap)
	return viewStr
}

///////////////////////////////////////////////////////////////////////////////

func (m *ArchivesPageModel) updateFocus() {
	switch m.focusIndex {
	case archivesFocusList:
		m.archiveTable.Focus()
		m.detailTable.Blur()
	case archivesFocusDetail:
		m.archiveTable.Blur()
		m.detailTable.Focus()
	}
}

func (m *ArchivesPageModel) updateSizes() {
	helpView := m.help.View(&m.keyMap)
	availHeight := maxInt(1, m.height-2-lipgloss.Height(helpView))
	m.archiveTable.SetHeight(availHeight)
	m.detailTable.SetHeight(availHeight)

	m.help.Width = m.width
	availWidth := m.width - 4
	m.archiveTable.SetWidth(availWidth * 2 / 3)
	m.detailTable.SetWidth(availWidth - m.archiveTable.Width())
}

func (m *ArchivesPageModel) onArchiveSelection() {
	cursor := m.archiveTable.Cursor()
	if cursor < 0 || cursor >= len(m.archives) || cursor == m.selected {
		return
	}
	m.selected = cursor
	archive := m.archives[m.selected]

	kind := "bar"
	if strings.Contains(archive.Path, string(filepath.Separator)+"ticks"+string(filepath.Separator)) {
		kind = "tick"
	}

	var rows []table.Row
	rows = append(rows, table.Row{"Path", archive.Path})
	rows = append(rows, table.Row{"Size", humanize.Bytes(uint64(archive.Size))})
	rows = append(rows, table.Row{"Kind", kind})

	if kind == "tick" {
		ticks, err := store.ReadTickArchive(archive.Path)
		if err != nil {
			rows = append(rows, table.Row{"Error", err.Error()})
		} else {
			rows = append(rows, table.Row{"Records", niceInt(len(ticks))})
			if len(ticks) > 0 {
				rows = append(rows, table.Row{"First Date", niceInt(ticks[0].TradingDate)})
				rows = append(rows, table.Row{"Last Date", niceInt(ticks[len(ticks)-1].TradingDate)})
			}
		}
	} else {
		bars, err := store.ReadBarArchive(archive.Path)
		if err != nil {
			rows = append(rows, table.Row{"Error", err.Error()})
		} else {
			rows = append(rows, table.Row{"Records", niceInt(len(bars))})
			if len(bars) > 0 {
				rows = append(rows, table.Row{"First Date", niceInt(bars[0].Date)})
				rows = append(rows, table.Row{"Last Date", niceInt(bars[len(bars)-1].Date)})
			}
		}
	}
	m.detailTable.SetRows(rows)
	m.detailTable.SetCursor(0)
}

///////////////////////////////////////////////////////////////////////////////

type ArchivesMsg struct {
	Archives []ArchiveDesc
	Error    error
}

// scanArchives walks dataRoot for ".dsb" archive files.
func scanArchives(dataRoot string) tea.Cmd {
	return func() tea.Msg {
		if dataRoot == "" {
			return ArchivesMsg{}
		}
		var archives []ArchiveDesc
		err := filepath.WalkDir(dataRoot, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return nil // skip unreadable entries, keep walking
			}
			if d.IsDir() || filepath.Ext(path) != ".dsb" {
				return nil
			}
			info, err := d.Info()
			if err != nil {
				return nil
			}
			archives = append(archives, ArchiveDesc{Path: path, Size: info.Size()})
			return nil
		})
		sort.Slice(archives, func(i, j int) bool { return archives[i].Path < archives[j].Path })
		return ArchivesMsg{Archives: archives, Error: err}
	}
}

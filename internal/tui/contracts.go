// Copyright (c) 2024 Neomantra Corp
//
// Contracts page, adapted from the teacher's datasets.go: same
// two-pane master/detail table shape (left: selectable list, right: detail
// rows for the current selection), retargeted from Databento
// dataset/schema discovery onto the base-data registry's contract/session
// lookup.

package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"wondertrader/basedata"
)

// Contracts page
type ContractsPageModel struct {
	config Config

	contracts        []*basedata.ContractInfo
	contractStrlen   int
	selectedContract int
	lastError        error

	width          int
	height         int
	contractsTable table.Model
	detailTable    table.Model
}

func NewContractsPage(config Config) ContractsPageModel {
	contractsTable := table.New(table.WithColumns([]table.Column{
		{Title: "Contract", Width: 16},
	}), table.WithStyles(wtTableStyles),
		table.WithFocused(true))

	detailStyle := wtTableStyles
	detailStyle.Selected = lipgloss.NewStyle()
	detailTable := table.New(table.WithColumns([]table.Column{
		{Title: "Field", Width: 16},
		{Title: "Value", Width: 16},
	}), table.WithStyles(detailStyle),
		table.WithFocused(false))

	m := ContractsPageModel{
		config:           config,
		selectedContract: -1,
		contractsTable:   contractsTable,
		detailTable:      detailTable,
		width:            20,
		height:           10,
	}
	m.updateSizes()
	return m
}

//////////////////////////////////////////////////////////////////////////////
// BubbleTea interface

func (m ContractsPageModel) Init() tea.Cmd {
	if len(m.contracts) == 0 {
		return getContracts(m.config.Registry)
	}
	return nil
}

func (m ContractsPageModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateSizes()

	case ContractsMsg:
		m.lastError = msg.Error
		m.contracts = msg.Contracts

		var rows []table.Row
		var strlen int
		for _, c := range m.contracts {
			rows = append(rows, table.Row{c.FullCode()})
			strlen = maxInt(strlen, len(c.FullCode()))
		}
		m.contractsTable.SetRows(rows)
		m.contractStrlen = strlen
		m.updateSizes()
		m.onContractSelection()

	default:
		var cmd tea.Cmd
		m.contractsTable, cmd = m.contractsTable.Update(msg)
		m.onContractSelection()
		return m, cmd
	}
	return m, nil
}

func (m *ContractsPageModel) onContractSelection() {
	cursor := m.contractsTable.Cursor()
	if cursor < 0 || cursor >= len(m.contracts) || cursor == m.selectedContract {
		return
	}
	m.selectedContract = cursor
	c := m.contracts[m.selectedContract]

	session, _ := m.config.Registry.Session(c.SessionID)
	var sections int
	if session != nil {
		sections = len(session.Sections)
	}

	m.detailTable.SetRows([]table.Row{
		{"Exchange", c.Exchange},
		{"Code", c.Code},
		{"Product", c.Product},
		{"PriceTick", fmt.Sprintf("%g", c.PriceTick)},
		{"VolumeScale", fmt.Sprintf("%g", c.VolumeScale)},
		{"MarginRate", fmt.Sprintf("%g", c.MarginRate)},
		{"FeeRate", fmt.Sprintf("%g", c.FeeRate)},
		{"SessionID", c.SessionID},
		{"Sections", niceInt(sections)},
		{"CoverMode", niceInt(int(c.CoverMode))},
		{"IsT1", niceBool(c.IsT1)},
		{"CanShort", niceBool(c.CanShort)},
	})
}

func (m ContractsPageModel) View() string {
	if m.lastError != nil {
		return fmt.Sprintf("Error: %s", m.lastError.Error())
	}
	return lipgloss.JoinHorizontal(lipgloss.Top,
		wtBorderStyle.Render(m.contractsTable.View()),
		wtBorderStyle.Render(m.detailTable.View()),
	)
}

//////////////////////////////////////////////////////////////////////////////

func (m *ContractsPageModel) updateSizes() {
	availHeight := m.height - 2 - 2
	m.contractsTable.SetHeight(availHeight)
	m.detailTable.SetHeight(availHeight)

	availWidth := m.width - 2
	contractWidth := clampInt(m.contractStrlen+3, 0, availWidth)
	m.contractsTable.SetWidth(contractWidth)
	m.contractsTable.Columns()[0].Width = contractWidth - 1

	availWidth -= m.contractsTable.Width() + 3
	m.detailTable.SetWidth(maxInt(0, availWidth))
}

//////////////////////////////////////////////////////////////////////////////

type ContractsMsg struct {
	Contracts []*basedata.ContractInfo
	Error     error
}

func getContracts(registry *basedata.Registry) tea.Cmd {
	return func() tea.Msg {
		if registry == nil {
			return ContractsMsg{}
		}
		return ContractsMsg{Contracts: registry.ListContracts("")}
	}
}

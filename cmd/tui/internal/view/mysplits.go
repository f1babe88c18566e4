package view

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/easysplit/internal/client"
	"github.com/MrJamesThe3rd/easysplit/internal/localstore"
)

type mySplitRow struct {
	code    string
	split   *client.Split
	missing bool
	err     error
}

// MySplitsModel lists splits saved from this device with their open/closed status.
type MySplitsModel struct {
	CommonModel
	deps Deps

	table    table.Model
	rows     []mySplitRow
	openOnly bool
	loading  bool
	status   string
}

func NewMySplitsModel(deps Deps) MySplitsModel {
	columns := []table.Column{
		{Title: "Code", Width: 10},
		{Title: "Name", Width: 24},
		{Title: "People", Width: 7},
		{Title: "Total", Width: 11},
		{Title: "Status", Width: 8},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return MySplitsModel{deps: deps, table: t, loading: true}
}

func (m MySplitsModel) Title() string { return "My Splits" }

func (m MySplitsModel) ShortHelp() string {
	return "Esc: back | Enter: view | t: toggle open/closed | o: open only | x: forget | r: refresh"
}

func (m MySplitsModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m MySplitsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case mySplitsLoadedMsg:
		m.loading = false
		m.rows = msg.rows
		m.refreshTable()

		return m, nil

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		case "o":
			m.openOnly = !m.openOnly
			m.refreshTable()

			return m, nil
		case "enter":
			if row, ok := m.selected(); ok && !row.missing {
				return m, func() tea.Msg { return OpenViewerMsg{Code: row.code} }
			}

			return m, nil
		case "t":
			row, ok := m.selected()
			if !ok {
				return m, nil
			}

			next := localstore.StatusClosed
			if m.deps.Store.SplitStatus(row.code) == localstore.StatusClosed {
				next = localstore.StatusOpen
			}

			if err := m.deps.Store.SetSplitStatus(row.code, next); err != nil {
				m.status = errorStyle(err.Error())
			}

			m.refreshTable()

			return m, nil
		case "x":
			row, ok := m.selected()
			if !ok {
				return m, nil
			}

			if err := m.deps.Store.RemoveMySplit(row.code); err != nil {
				m.status = errorStyle(err.Error())
				return m, nil
			}

			if err := m.deps.Store.RemoveSplitStatus(row.code); err != nil {
				m.status = errorStyle(err.Error())
			}

			m.status = fmt.Sprintf("Forgot %s on this device.", row.code)

			return m, m.loadCmd()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m MySplitsModel) visible() []mySplitRow {
	if !m.openOnly {
		return m.rows
	}

	var out []mySplitRow

	for _, r := range m.rows {
		if m.deps.Store.SplitStatus(r.code) == localstore.StatusOpen {
			out = append(out, r)
		}
	}

	return out
}

func (m MySplitsModel) selected() (mySplitRow, bool) {
	rows := m.visible()

	idx := m.table.Cursor()
	if idx < 0 || idx >= len(rows) {
		return mySplitRow{}, false
	}

	return rows[idx], true
}

func (m *MySplitsModel) refreshTable() {
	visible := m.visible()
	rows := make([]table.Row, 0, len(visible))

	for _, r := range visible {
		status := string(m.deps.Store.SplitStatus(r.code))

		switch {
		case r.missing:
			rows = append(rows, table.Row{r.code, faint("(deleted)"), "", "", status})
		case r.err != nil:
			rows = append(rows, table.Row{r.code, faint("(unavailable)"), "", "", status})
		default:
			var total float64
			for _, t := range r.split.Totals {
				total += t.Total
			}

			name := r.split.Name
			if name == "" {
				name = "Untitled"
			}

			rows = append(rows, table.Row{
				r.code,
				name,
				fmt.Sprintf("%d", len(r.split.People)),
				FormatMoney(r.split.Currency, total),
				status,
			})
		}
	}

	m.table.SetRows(rows)
}

func (m MySplitsModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading your splits...")
	}

	if len(m.rows) == 0 {
		return lipgloss.NewStyle().Padding(2).Render("No splits saved on this device yet.\n\n(Esc to go back)")
	}

	filter := "all"
	if m.openOnly {
		filter = "open only"
	}

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render("Showing: "+activeStyle(filter)),
		tableView,
	)

	if m.status != "" {
		content = faint(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

// Messages

type mySplitsLoadedMsg struct {
	rows []mySplitRow
}

func (m MySplitsModel) loadCmd() tea.Cmd {
	codes := m.deps.Store.MySplits()

	return func() tea.Msg {
		rows := make([]mySplitRow, len(codes))

		for i, code := range codes {
			ctx, cancel := APICtx()
			sp, err := m.deps.Client.GetSplit(ctx, code)
			cancel()

			rows[i] = mySplitRow{code: code, split: sp, missing: errors.Is(err, client.ErrNotFound)}
			if err != nil && !rows[i].missing {
				rows[i].err = err
			}
		}

		return mySplitsLoadedMsg{rows: rows}
	}
}

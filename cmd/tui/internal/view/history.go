package view

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/easysplit/internal/client"
)

// HistoryModel lists past splits created from a menu.
type HistoryModel struct {
	CommonModel
	deps Deps

	form     *huh.Form
	codeText *string
	code     string

	table     table.Model
	summaries []client.SplitSummary
	loading   bool
	err       error
}

func NewHistoryModel(deps Deps) HistoryModel {
	m := HistoryModel{deps: deps, codeText: new(string)}

	options := []huh.Option[string]{}
	for _, code := range deps.Store.OwnedMenus() {
		options = append(options, huh.NewOption(code, code))
	}

	var field huh.Field = huh.NewInput().
		Title("Menu code").
		Value(m.codeText).
		Validate(required("menu code"))

	if len(options) > 0 {
		field = huh.NewSelect[string]().Title("Your menus").Options(options...).Value(m.codeText)
	}

	m.form = huh.NewForm(huh.NewGroup(field)).WithWidth(45).WithShowHelp(false)

	m.table = table.New(
		table.WithColumns([]table.Column{
			{Title: "Code", Width: 10},
			{Title: "Name", Width: 24},
			{Title: "People", Width: 24},
			{Title: "Total", Width: 11},
			{Title: "Created", Width: 17},
		}),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	return m
}

func (m HistoryModel) Title() string { return "Menu History" }

func (m HistoryModel) ShortHelp() string {
	if m.form != nil {
		return "Enter: select | Esc: back"
	}

	return "Esc: back | Enter: view split"
}

func (m HistoryModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m HistoryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		return m, Back
	}

	if loaded, ok := msg.(historyLoadedMsg); ok {
		m.loading = false
		m.err = loaded.err
		m.summaries = loaded.summaries

		rows := make([]table.Row, len(m.summaries))
		for i, s := range m.summaries {
			names := make([]string, len(s.People))
			for j, p := range s.People {
				names[j] = p.Name
			}

			rows[i] = table.Row{
				s.Code,
				s.Name,
				strings.Join(names, ", "),
				FormatMoney(s.Currency, s.GrandTotal),
				s.CreatedAt.Local().Format("2006-01-02 15:04"),
			}
		}

		m.table.SetRows(rows)

		return m, nil
	}

	if m.form != nil {
		form, cmd := m.form.Update(msg)
		if f, ok := form.(*huh.Form); ok {
			m.form = f
		}

		if m.form.State != huh.StateCompleted {
			return m, cmd
		}

		m.form = nil
		m.code = strings.ToUpper(strings.TrimSpace(*m.codeText))
		m.loading = true

		return m, m.loadCmd()
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.String() == "enter" {
		idx := m.table.Cursor()
		if idx >= 0 && idx < len(m.summaries) {
			code := m.summaries[idx].Code
			return m, func() tea.Msg { return OpenViewerMsg{Code: code} }
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m HistoryModel) View() string {
	style := lipgloss.NewStyle().Padding(1)

	switch {
	case m.form != nil:
		return style.Render("Past splits from a menu\n\n" + m.form.View())
	case m.loading:
		return style.Render("Loading splits for menu " + m.code + "...")
	case m.err != nil:
		return style.Render(errorStyle(fmt.Sprintf("Error: %v", m.err)) + "\n\n(Esc to go back)")
	case len(m.summaries) == 0:
		return style.Render("No splits have been created from menu " + m.code + " yet.\n\n(Esc to go back)")
	}

	return style.Render(fmt.Sprintf("Splits from menu %s\n\n%s", activeStyle(m.code), m.table.View()))
}

// Messages

type historyLoadedMsg struct {
	summaries []client.SplitSummary
	err       error
}

func (m HistoryModel) loadCmd() tea.Cmd {
	code := m.code

	return func() tea.Msg {
		ctx, cancel := APICtx()
		defer cancel()

		summaries, err := m.deps.Client.MenuSplits(ctx, code)
		if errors.Is(err, client.ErrNotFound) {
			err = fmt.Errorf("menu %s was not found", code)
		}

		return historyLoadedMsg{summaries: summaries, err: err}
	}
}

package view

import (
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/easysplit/internal/client"
	"github.com/MrJamesThe3rd/easysplit/internal/live"
	"github.com/MrJamesThe3rd/easysplit/internal/localstore"
)

// ViewerModel shows a split and keeps it fresh by polling while the terminal has focus.
type ViewerModel struct {
	CommonModel
	deps Deps

	code     string
	form     *huh.Form
	codeText *string

	snapshot *live.Snapshot
	table    table.Model

	focused   bool
	gen       int64
	loading   bool
	notFound  bool
	fetchErr  error
	lastFetch time.Time
}

// NewViewerModel watches code. An empty code asks for one first.
func NewViewerModel(deps Deps, code string) ViewerModel {
	columns := []table.Column{
		{Title: "Person", Width: 18},
		{Title: "Subtotal", Width: 10},
		{Title: "Service", Width: 9},
		{Title: "Tip", Width: 9},
		{Title: "Extra", Width: 9},
		{Title: "Total", Width: 10},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(12),
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

	m := ViewerModel{
		deps:     deps,
		code:     strings.ToUpper(strings.TrimSpace(code)),
		codeText: new(string),
		snapshot: &live.Snapshot{},
		table:    t,
		focused:  true,
		gen:      nextGen(),
		loading:  code != "",
	}

	if m.code == "" {
		m.form = huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("Split code").
					Value(m.codeText).
					Validate(func(s string) error {
						if n := len(strings.TrimSpace(s)); n < 6 || n > 8 {
							return fmt.Errorf("codes are 6 to 8 characters")
						}

						return nil
					}),
			),
		).WithWidth(45).WithShowHelp(false)
	}

	return m
}

func (m ViewerModel) Title() string { return "Split " + m.code }

func (m ViewerModel) ShortHelp() string {
	if m.form != nil {
		return "Enter: open | Esc: back"
	}

	return "Esc: back | e: edit | r: refresh | t: toggle open/closed"
}

func (m ViewerModel) Init() tea.Cmd {
	if m.form != nil {
		return m.form.Init()
	}

	return tea.Batch(m.fetchCmd(), m.tickCmd())
}

// pollGen numbers polling loops across every viewer. Ticks from an abandoned loop carry
// an old generation and are dropped.
var pollGen atomic.Int64

func nextGen() int64 {
	return pollGen.Add(1)
}

// start begins a new polling loop.
func (m *ViewerModel) start() tea.Cmd {
	m.gen = nextGen()
	m.loading = true

	return tea.Batch(m.fetchCmd(), m.tickCmd())
}

func (m ViewerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.FocusMsg:
		m.focused = true
		if m.form == nil {
			return m, m.fetchCmd()
		}

		return m, nil

	case tea.BlurMsg:
		m.focused = false
		return m, nil

	case pollTickMsg:
		if msg.gen != m.gen {
			return m, nil
		}

		if m.focused && !m.notFound {
			return m, tea.Batch(m.fetchCmd(), m.tickCmd())
		}

		return m, m.tickCmd()

	case fetchedMsg:
		m.loading = false
		m.lastFetch = time.Now()

		switch {
		case errors.Is(msg.err, client.ErrNotFound):
			m.notFound = true
		case msg.err != nil:
			m.fetchErr = msg.err
		default:
			m.notFound = false
			m.fetchErr = nil

			if shown, replaced := m.snapshot.Accept(msg.split); replaced {
				m.refreshTable(shown)
			}
		}

		return m, nil
	}

	if m.form != nil {
		return m.updateForm(msg)
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.String() {
	case "esc":
		m.gen = 0
		return m, Back
	case "r":
		m.notFound = false
		cmd := m.start()

		return m, cmd
	case "e":
		if sp := m.snapshot.Current(); sp != nil {
			m.gen = 0
			return m, func() tea.Msg { return OpenEditorMsg{Split: sp} }
		}
	case "t":
		status := localstore.StatusClosed
		if m.deps.Store.SplitStatus(m.code) == localstore.StatusClosed {
			status = localstore.StatusOpen
		}

		if err := m.deps.Store.SetSplitStatus(m.code, status); err != nil {
			m.fetchErr = err
		}

		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(keyMsg)

	return m, cmd
}

func (m ViewerModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		return m, Back
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	m.form = nil
	m.code = strings.ToUpper(strings.TrimSpace(*m.codeText))
	start := m.start()

	return m, start
}

func (m *ViewerModel) refreshTable(sp *client.Split) {
	rows := make([]table.Row, 0, len(sp.Totals))
	for _, t := range sp.Totals {
		extra := ""
		if t.ExtraContribution > 0 {
			extra = FormatMoney(sp.Currency, t.ExtraContribution)
		}

		rows = append(rows, table.Row{
			t.Person.Name,
			FormatMoney(sp.Currency, t.Subtotal),
			FormatMoney(sp.Currency, t.Service),
			FormatMoney(sp.Currency, t.Tip),
			extra,
			FormatMoney(sp.Currency, t.Total),
		})
	}

	m.table.SetRows(rows)
}

func (m ViewerModel) View() string {
	if m.form != nil {
		return lipgloss.NewStyle().Padding(1).Render("Open a shared split\n\n" + m.form.View())
	}

	if m.notFound {
		return lipgloss.NewStyle().Padding(2).Render(
			errorStyle(fmt.Sprintf("Split %s was not found.", m.code)) + "\n\n" +
				faint("It may have been mistyped or deleted. r: retry | Esc: back"),
		)
	}

	sp := m.snapshot.Current()
	if sp == nil {
		if m.fetchErr != nil {
			return lipgloss.NewStyle().Padding(2).Render(errorStyle(fmt.Sprintf("Error: %v", m.fetchErr)))
		}

		return lipgloss.NewStyle().Padding(2).Render("Loading split " + m.code + "...")
	}

	var grand float64
	for _, t := range sp.Totals {
		grand += t.Total
	}

	title := sp.Name
	if title == "" {
		title = "Split " + sp.Code
	}

	status := m.deps.Store.SplitStatus(sp.Code)

	header := fmt.Sprintf("%s | code %s | %s | service %g%% | tip %g%%",
		lipgloss.NewStyle().Bold(true).Render(title), activeStyle(sp.Code), status, sp.ServiceCharge, sp.TipPercent)

	mode := "live"
	if !m.focused {
		mode = "paused while unfocused"
	}

	footer := faint(fmt.Sprintf("Updated %s (%s)", m.lastFetch.Format(time.Kitchen), mode))
	if m.fetchErr != nil {
		footer += "\n" + errorStyle(fmt.Sprintf("Refresh failed: %v", m.fetchErr))
	}

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	return lipgloss.NewStyle().Padding(1).Render(lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		tableView,
		lipgloss.NewStyle().PaddingTop(1).Render("Grand total "+activeStyle(FormatMoney(sp.Currency, grand))),
		footer,
	))
}

// Messages

type pollTickMsg struct {
	gen int64
}

type fetchedMsg struct {
	split *client.Split
	err   error
}

func (m ViewerModel) tickCmd() tea.Cmd {
	gen := m.gen

	return tea.Tick(m.deps.PollInterval, func(time.Time) tea.Msg {
		return pollTickMsg{gen: gen}
	})
}

func (m ViewerModel) fetchCmd() tea.Cmd {
	code := m.code

	return func() tea.Msg {
		ctx, cancel := APICtx()
		defer cancel()

		sp, err := m.deps.Client.GetSplit(ctx, code)

		return fetchedMsg{split: sp, err: err}
	}
}

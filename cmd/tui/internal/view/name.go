package view

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// NameModel edits the name added as the first person of every new split.
type NameModel struct {
	CommonModel
	deps Deps

	form *huh.Form
	name *string
	err  error
}

func NewNameModel(deps Deps) NameModel {
	name := deps.Store.UserName()
	m := NameModel{deps: deps, name: &name}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Your name").
				Description("Leave empty to stop adding yourself to new splits.").
				Value(m.name),
		),
	).WithWidth(50).WithShowHelp(false)

	return m
}

func (m NameModel) Title() string { return "Your Name" }

func (m NameModel) ShortHelp() string { return "Enter: save | Esc: back" }

func (m NameModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m NameModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
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

	if err := m.deps.Store.SetUserName(strings.TrimSpace(*m.name)); err != nil {
		m.err = err
		return m, nil
	}

	return m, Back
}

func (m NameModel) View() string {
	body := m.form.View()
	if m.err != nil {
		body += "\n" + errorStyle("Error: "+m.err.Error())
	}

	return lipgloss.NewStyle().Padding(1).Render(body)
}

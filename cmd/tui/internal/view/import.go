package view

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/easysplit/internal/client"
)

const importTimeout = 30 * time.Second

type importState int

const (
	importStateDetails importState = iota
	importStateFilePick
	importStateImporting
	importStateResult
)

type importFields struct {
	name     string
	currency string
}

// ImportModel uploads a name,price CSV as a new menu.
type ImportModel struct {
	CommonModel
	deps Deps

	state      importState
	form       *huh.Form
	fields     *importFields
	filePicker filepicker.Model

	code   string
	menu   *client.MenuWithItems
	status string
	err    error
}

func NewImportModel(deps Deps) ImportModel {
	fp := filepicker.New()
	fp.CurrentDirectory, _ = os.Getwd()
	fp.AllowedTypes = []string{".csv", ".txt"}
	fp.ShowHidden = false
	fp.DirAllowed = false
	fp.FileAllowed = true
	fp.SetHeight(15)

	m := ImportModel{deps: deps, filePicker: fp, fields: &importFields{currency: "£"}}
	m.form = m.detailsForm()

	return m
}

func (m ImportModel) detailsForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Menu name").
				Placeholder("optional").
				Value(&m.fields.name),
			huh.NewInput().
				Title("Currency symbol").
				Value(&m.fields.currency).
				Validate(func(s string) error {
					if len(strings.TrimSpace(s)) > 8 {
						return fmt.Errorf("currency must be at most 8 characters")
					}

					return nil
				}),
		),
	).WithWidth(45).WithShowHelp(false)
}

func (m ImportModel) Title() string { return "Import Menu" }

func (m ImportModel) ShortHelp() string {
	if m.state == importStateFilePick {
		return "Esc: back | Enter: select file"
	}

	return "Esc: back"
}

func (m ImportModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m ImportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m.handleEsc()
		}

	case importResultMsg:
		m.state = importStateResult
		if msg.err != nil {
			m.err = msg.err
			m.status = fmt.Sprintf("Error: %v", msg.err)

			return m, nil
		}

		m.code = msg.code
		m.menu = msg.menu
		m.status = fmt.Sprintf("Menu %s created with %d items.", msg.code, len(msg.menu.Items))

		if err := m.deps.Store.AddOwnedMenu(msg.code); err != nil {
			m.status += faint(fmt.Sprintf(" (not remembered locally: %v)", err))
		}

		return m, nil
	}

	switch m.state {
	case importStateDetails:
		form, cmd := m.form.Update(msg)
		if f, ok := form.(*huh.Form); ok {
			m.form = f
		}

		if m.form.State != huh.StateCompleted {
			return m, cmd
		}

		m.state = importStateFilePick

		return m, m.filePicker.Init()

	case importStateFilePick:
		var cmd tea.Cmd
		m.filePicker, cmd = m.filePicker.Update(msg)

		if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
			m.state = importStateImporting
			m.status = fmt.Sprintf("Uploading %s...", filepath.Base(path))

			return m, m.importCmd(path)
		}

		return m, cmd
	}

	return m, nil
}

func (m ImportModel) handleEsc() (tea.Model, tea.Cmd) {
	switch m.state {
	case importStateFilePick:
		m.state = importStateDetails
		m.form = m.detailsForm()

		return m, m.form.Init()
	case importStateResult:
		if m.err != nil {
			m.state = importStateFilePick
			m.err = nil
			m.status = ""

			return m, nil
		}
	}

	return m, Back
}

func (m ImportModel) View() string {
	switch m.state {
	case importStateDetails:
		return lipgloss.NewStyle().Padding(1).Render("New menu from CSV\n\n" + m.form.View())
	case importStateFilePick:
		return lipgloss.NewStyle().Padding(1).Render(
			fmt.Sprintf("Select a CSV of name,price rows:\n\n%s", m.filePicker.View()),
		)
	case importStateImporting:
		return lipgloss.NewStyle().Padding(2).Render(m.status)
	case importStateResult:
		return m.viewResult()
	}

	return ""
}

func (m ImportModel) viewResult() string {
	style := lipgloss.NewStyle().Padding(2)
	if m.err != nil {
		return style.Render(errorStyle(m.status) + "\n\n(Esc to pick another file)")
	}

	var b strings.Builder

	b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("46")).Render(m.status))
	b.WriteString("\n\n")

	for _, it := range m.menu.Items {
		fmt.Fprintf(&b, "  %-30s %s\n", it.Name, FormatMoney(m.menu.Menu.Currency, it.Price))
	}

	b.WriteString("\nShare code: " + activeStyle(m.code) + "\n\n(Esc to go back)")

	return style.Render(b.String())
}

// Messages

type importResultMsg struct {
	code string
	menu *client.MenuWithItems
	err  error
}

func (m ImportModel) importCmd(path string) tea.Cmd {
	name := strings.TrimSpace(m.fields.name)
	currency := strings.TrimSpace(m.fields.currency)

	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return importResultMsg{err: err}
		}
		defer f.Close()

		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		code, menu, err := m.deps.Client.ImportMenu(ctx, filepath.Base(path), f, name, currency)
		if err != nil {
			return importResultMsg{err: err}
		}

		return importResultMsg{code: code, menu: menu}
	}
}

package view

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/easysplit/internal/client"
	"github.com/MrJamesThe3rd/easysplit/internal/localstore"
)

const apiTimeout = 10 * time.Second

// View is the interface that all TUI screens implement.
type View interface {
	tea.Model
	Title() string
	ShortHelp() string
}

// Deps are shared by every screen.
type Deps struct {
	Client       *client.Client
	Store        *localstore.Store
	PollInterval time.Duration
	SaveDebounce time.Duration
}

// CommonModel is embedded by all views.
type CommonModel struct {
	Width  int
	Height int
}

type BackMsg struct{}

func Back() tea.Msg {
	return BackMsg{}
}

// OpenEditorMsg asks the root model to edit sp, or a fresh split when sp is nil.
type OpenEditorMsg struct {
	Split *client.Split
}

// OpenViewerMsg asks the root model to watch the split with Code.
type OpenViewerMsg struct {
	Code string
}

// APICtx returns a context with a standard timeout for API calls.
func APICtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), apiTimeout)
}

// FormatMoney renders an amount with its currency symbol.
func FormatMoney(currency string, amount float64) string {
	return fmt.Sprintf("%s%.2f", currency, amount)
}

func activeStyle(s string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Render(s)
}

func errorStyle(s string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render(s)
}

func faint(s string) string {
	return lipgloss.NewStyle().Faint(true).Render(s)
}

var panelStyle = lipgloss.NewStyle().
	Padding(0, 1).
	BorderStyle(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color("240"))

var focusedPanelStyle = panelStyle.BorderForeground(lipgloss.Color("63"))

package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/easysplit/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/easysplit/internal/client"
	"github.com/MrJamesThe3rd/easysplit/internal/config"
	"github.com/MrJamesThe3rd/easysplit/internal/localstore"
	"github.com/MrJamesThe3rd/easysplit/internal/logging"
)

type model struct {
	deps view.Deps

	// current is nil on the home menu.
	current view.View

	width  int
	height int
}

func initialModel(deps view.Deps) model {
	return model{deps: deps}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) open(v view.View) (tea.Model, tea.Cmd) {
	m.current = v

	cmd := v.Init()
	if m.width > 0 {
		sized, sizeCmd := v.Update(tea.WindowSizeMsg{Width: m.width, Height: m.height})
		m.current = sized.(view.View)
		cmd = tea.Batch(cmd, sizeCmd)
	}

	return m, cmd
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		if m.current == nil {
			return m.updateHome(msg)
		}
	case view.BackMsg:
		m.current = nil
		return m, nil
	case view.OpenEditorMsg:
		return m.open(view.NewEditorModel(m.deps, msg.Split))
	case view.OpenViewerMsg:
		return m.open(view.NewViewerModel(m.deps, msg.Code))
	}

	if m.current == nil {
		return m, nil
	}

	next, cmd := m.current.Update(msg)
	m.current = next.(view.View)

	return m, cmd
}

func (m model) updateHome(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "1":
		return m.open(view.NewEditorModel(m.deps, nil))
	case "2":
		return m.open(view.NewViewerModel(m.deps, ""))
	case "3":
		return m.open(view.NewMySplitsModel(m.deps))
	case "4":
		return m.open(view.NewImportModel(m.deps))
	case "5":
		return m.open(view.NewHistoryModel(m.deps))
	case "6":
		return m.open(view.NewNameModel(m.deps))
	}

	return m, nil
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	helpStyle  = lipgloss.NewStyle().Faint(true)
)

func (m model) View() string {
	if m.current != nil {
		return titleStyle.Padding(1, 1, 0).Render(m.current.Title()) + "\n" +
			m.current.View() + "\n" +
			helpStyle.Padding(0, 1).Render(m.current.ShortHelp())
	}

	greeting := "EasySplit"
	if name := m.deps.Store.UserName(); name != "" {
		greeting = fmt.Sprintf("EasySplit | Hi, %s", name)
	}

	return lipgloss.NewStyle().Padding(2).Render(
		titleStyle.Render(greeting) + "\n\n" +
			"1. New Split\n" +
			"2. View Split by Code\n" +
			"3. My Splits\n" +
			"4. Import Menu CSV\n" +
			"5. Menu History\n" +
			"6. Set Your Name\n\n" +
			"q. Quit",
	)
}

// setupLogging sends logs to path, or discards them, so they never draw over the UI.
func setupLogging(cfg *config.Config) (io.Closer, error) {
	if cfg.Client.LogFile == "" {
		logging.SetupWith(io.Discard, cfg.Log.Level, cfg.Log.Format)
		return io.NopCloser(nil), nil
	}

	f, err := os.OpenFile(cfg.Client.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}

	logging.SetupWith(f, cfg.Log.Level, cfg.Log.Format)

	return f, nil
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logFile, err := setupLogging(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logFile.Close()

	statePath := cfg.Client.StatePath
	if statePath == "" {
		if statePath, err = localstore.DefaultPath(); err != nil {
			fmt.Fprintf(os.Stderr, "failed to resolve state path: %v\n", err)
			os.Exit(1)
		}
	}

	store, err := localstore.Open(statePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open local state: %v\n", err)
		os.Exit(1)
	}

	deps := view.Deps{
		Client:       client.New(cfg.Client.BaseURL),
		Store:        store,
		PollInterval: cfg.Client.PollInterval,
		SaveDebounce: cfg.Client.SaveDebounce,
	}

	slog.Info("starting tui", "api", cfg.Client.BaseURL, "state", statePath)

	p := tea.NewProgram(initialModel(deps), tea.WithAltScreen(), tea.WithReportFocus())
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		fmt.Fprintf(os.Stderr, "failed to run TUI: %v\n", err)
		os.Exit(1)
	}
}

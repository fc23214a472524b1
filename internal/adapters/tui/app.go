// Package tui is an interactive browser for a typed information package
package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"ipmgraph/internal/adapters/editor"
	"ipmgraph/internal/adapters/tui/views"
	"ipmgraph/internal/application/commands"
	"ipmgraph/internal/domain"
	"ipmgraph/internal/workspace"
)

// ViewState represents the current view
type ViewState int

const (
	ViewBrowser ViewState = iota
	ViewSetType
	ViewHelp
)

// App is the main TUI application model
type App struct {
	opener *editor.Opener

	state   ViewState
	browser *views.BrowserModel
	setType *views.SetTypeModel
	help    *views.HelpModel

	width  int
	height int
}

// NewApp creates a new TUI application over w. opener may be nil.
func NewApp(w *workspace.Workspace, opener *editor.Opener) *App {
	return newApp(workspaceBackend{w}, opener)
}

func newApp(backend views.Backend, opener *editor.Opener) *App {
	return &App{
		opener:  opener,
		state:   ViewBrowser,
		browser: views.NewBrowserModel(backend),
		setType: views.NewSetTypeModel(backend.Profile()),
		help:    views.NewHelpModel(),
	}
}

// Init initializes the application
func (a *App) Init() tea.Cmd {
	return a.browser.Init()
}

// Update handles messages for the application
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.browser.SetSize(msg.Width, msg.Height)
		a.setType.SetSize(msg.Width, msg.Height)
		a.help.SetSize(msg.Width, msg.Height)
		return a, nil

	// View switching messages
	case views.SwitchToSetTypeMsg:
		a.state = ViewSetType
		a.setType.SetNode(msg.Node)
		return a, a.setType.Init()

	case views.SwitchToHelpMsg:
		a.state = ViewHelp
		return a, nil

	case views.SwitchToBrowserMsg:
		a.state = ViewBrowser
		return a, nil

	case views.SetTypeMsg:
		a.state = ViewBrowser
		_, cmd := a.browser.Update(msg)
		return a, cmd

	case views.OpenFileMsg:
		return a, a.openFile(msg.Path, msg.MIME)

	case openFinishedMsg:
		if msg.err != nil {
			a.browser.SetMessage(msg.err.Error(), true)
		}
		return a, nil
	}

	// Delegate to current view
	var cmd tea.Cmd
	switch a.state {
	case ViewBrowser:
		_, cmd = a.browser.Update(msg)
	case ViewSetType:
		_, cmd = a.setType.Update(msg)
	case ViewHelp:
		_, cmd = a.help.Update(msg)
	}

	return a, cmd
}

type openFinishedMsg struct{ err error }

func (a *App) openFile(path, mime string) tea.Cmd {
	if a.opener == nil {
		return nil
	}

	cmd, err := a.opener.Command(path, mime)
	if err != nil {
		return func() tea.Msg {
			return openFinishedMsg{err: err}
		}
	}

	return tea.ExecProcess(cmd, func(err error) tea.Msg {
		return openFinishedMsg{err: err}
	})
}

// View renders the current view
func (a *App) View() string {
	switch a.state {
	case ViewSetType:
		return a.setType.View()
	case ViewHelp:
		return a.help.View()
	default:
		return a.browser.View()
	}
}

// workspaceBackend adapts a workspace to the views
type workspaceBackend struct {
	w *workspace.Workspace
}

func (b workspaceBackend) Load(ctx context.Context) (*commands.ScanResult, *commands.AssignResult, error) {
	return b.w.Typed(ctx)
}

func (b workspaceBackend) Sync(ctx context.Context, edit func(root *domain.Node) error) (*commands.SyncResult, error) {
	return b.w.Sync(ctx, edit)
}

func (b workspaceBackend) Profile() *domain.Profile {
	return b.w.Profile
}

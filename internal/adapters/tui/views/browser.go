package views

import (
	"context"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"ipmgraph/internal/adapters/tui/styles"
	"ipmgraph/internal/application/assign"
	"ipmgraph/internal/application/commands"
	"ipmgraph/internal/domain"
)

// BrowserKeyMap defines key bindings for the browser view
type BrowserKeyMap struct {
	Up      key.Binding
	Down    key.Binding
	Left    key.Binding
	Right   key.Binding
	Enter   key.Binding
	Sync    key.Binding
	SetType key.Binding
	Unlock  key.Binding
	CopyURI key.Binding
	Open    key.Binding
	Reload  key.Binding
	Help    key.Binding
	Quit    key.Binding
}

var BrowserKeys = BrowserKeyMap{
	Up: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("k/↑", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j/↓", "down"),
	),
	Left: key.NewBinding(
		key.WithKeys("h", "left"),
		key.WithHelp("h/←", "collapse"),
	),
	Right: key.NewBinding(
		key.WithKeys("l", "right"),
		key.WithHelp("l/→", "expand"),
	),
	Enter: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "toggle"),
	),
	Sync: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "sync"),
	),
	SetType: key.NewBinding(
		key.WithKeys("t"),
		key.WithHelp("t", "set type"),
	),
	Unlock: key.NewBinding(
		key.WithKeys("u"),
		key.WithHelp("u", "unlock"),
	),
	CopyURI: key.NewBinding(
		key.WithKeys("y"),
		key.WithHelp("y", "copy URI"),
	),
	Open: key.NewBinding(
		key.WithKeys("o"),
		key.WithHelp("o", "open"),
	),
	Reload: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "rescan"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// BrowserModel is the model for the tree browser view
type BrowserModel struct {
	ViewState
	backend    Backend
	root       *domain.Node
	violations []assign.Violation
	expanded   map[domain.NodeID]bool
	flatNodes  []*domain.Node
	cursor     int
	busy       bool
	spinner    spinner.Model
	copy       func(string) error
}

// NewBrowserModel creates a new browser model
func NewBrowserModel(backend Backend) *BrowserModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(styles.Primary)
	return &BrowserModel{
		backend:  backend,
		expanded: make(map[domain.NodeID]bool),
		spinner:  s,
		copy:     clipboard.WriteAll,
	}
}

// Init initializes the browser
func (m *BrowserModel) Init() tea.Cmd {
	return m.Reload()
}

type treeLoadedMsg struct {
	root       *domain.Node
	violations []assign.Violation
	message    string
}

type errMsg struct {
	err error
}

type syncedMsg struct {
	message string
}

// Update handles messages for the browser
func (m *BrowserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case spinner.TickMsg:
		if m.busy {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case treeLoadedMsg:
		m.busy = false
		m.setRoot(msg.root)
		m.violations = msg.violations
		if msg.message != "" {
			m.SetMessage(msg.message, len(msg.violations) > 0)
		}
		return m, nil

	case syncedMsg:
		m.SetMessage(msg.message, false)
		return m, m.load(false)

	case errMsg:
		m.busy = false
		m.SetMessage(msg.err.Error(), true)
		return m, nil

	case SetTypeMsg:
		return m, m.setType(msg.Path, msg.TypeID)

	case tea.KeyMsg:
		if m.busy {
			if key.Matches(msg, BrowserKeys.Quit) {
				return m, tea.Quit
			}
			return m, nil
		}
		m.ClearMessage()

		switch {
		case key.Matches(msg, BrowserKeys.Quit):
			return m, tea.Quit

		case key.Matches(msg, BrowserKeys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil

		case key.Matches(msg, BrowserKeys.Down):
			if m.cursor < len(m.flatNodes)-1 {
				m.cursor++
			}
			return m, nil

		case key.Matches(msg, BrowserKeys.Left):
			if node := m.SelectedNode(); node != nil {
				if node.IsDir() && m.expanded[node.ID] {
					m.expanded[node.ID] = false
					m.refreshFlatNodes()
				} else if node.Parent != nil {
					m.selectNode(node.Parent)
				}
			}
			return m, nil

		case key.Matches(msg, BrowserKeys.Right), key.Matches(msg, BrowserKeys.Enter):
			if node := m.SelectedNode(); node != nil && node.IsDir() {
				if !m.expanded[node.ID] {
					m.expanded[node.ID] = true
				} else if key.Matches(msg, BrowserKeys.Enter) {
					m.expanded[node.ID] = false
				}
				m.refreshFlatNodes()
			}
			return m, nil

		case key.Matches(msg, BrowserKeys.Sync):
			return m, m.sync()

		case key.Matches(msg, BrowserKeys.Reload):
			return m, m.Reload()

		case key.Matches(msg, BrowserKeys.SetType):
			if node := m.SelectedNode(); node != nil {
				return m, func() tea.Msg {
					return SwitchToSetTypeMsg{Node: node}
				}
			}
			return m, nil

		case key.Matches(msg, BrowserKeys.Unlock):
			if node := m.SelectedNode(); node != nil && node.TypeLocked {
				return m, m.setType(node.RelPath(), "")
			}
			return m, nil

		case key.Matches(msg, BrowserKeys.CopyURI):
			if node := m.SelectedNode(); node != nil {
				if node.ObjectURI == "" {
					m.SetMessage("Not materialized yet; press s to sync", true)
				} else if err := m.copy(node.ObjectURI); err != nil {
					m.SetMessage(fmt.Sprintf("Copy failed: %v", err), true)
				} else {
					m.SetMessage("Copied "+node.ObjectURI, false)
				}
			}
			return m, nil

		case key.Matches(msg, BrowserKeys.Open):
			if node := m.SelectedNode(); node != nil && node.IsFile() {
				mime := ""
				if f, ok := node.Info.PrimaryFormat(); ok {
					mime = f.MIME
				}
				return m, func() tea.Msg {
					return OpenFileMsg{Path: node.Info.Path, MIME: mime}
				}
			}
			return m, nil

		case key.Matches(msg, BrowserKeys.Help):
			return m, func() tea.Msg {
				return SwitchToHelpMsg{}
			}
		}
	}

	return m, nil
}

// Reload rescans the package and reassigns types
func (m *BrowserModel) Reload() tea.Cmd {
	return m.load(true)
}

func (m *BrowserModel) load(announce bool) tea.Cmd {
	m.busy = true
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		scan, assigned, err := m.backend.Load(context.Background())
		if err != nil {
			return errMsg{err}
		}
		msg := treeLoadedMsg{root: scan.Root, violations: assigned.Violations}
		if announce || !assigned.Assigned {
			msg.message = assigned.Message
		}
		return msg
	})
}

func (m *BrowserModel) sync() tea.Cmd {
	m.busy = true
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		result, err := m.backend.Sync(context.Background(), nil)
		if err != nil {
			return errMsg{err}
		}
		return syncedMsg{result.Message}
	})
}

func (m *BrowserModel) setType(path, typeID string) tea.Cmd {
	m.busy = true
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		var message string
		_, err := m.backend.Sync(context.Background(), func(root *domain.Node) error {
			res, err := commands.NewSetTypeCommand(m.backend.Profile(), root, path, typeID).Execute(context.Background())
			if err != nil {
				return err
			}
			message = res.Message
			return nil
		})
		if err != nil {
			return errMsg{err}
		}
		return syncedMsg{message}
	})
}

// setRoot swaps in a freshly scanned tree, keeping expansion and the
// selected path where they still exist
func (m *BrowserModel) setRoot(root *domain.Node) {
	var selected string
	if node := m.SelectedNode(); node != nil {
		selected = node.RelPath()
	}
	if m.root == nil && root != nil {
		m.expanded[root.ID] = true
	}
	m.root = root
	m.refreshFlatNodes()
	if selected != "" && root != nil {
		if node := root.FindPath(selected); node != nil {
			m.selectNode(node)
		}
	}
}

// SelectedNode returns the node under the cursor
func (m *BrowserModel) SelectedNode() *domain.Node {
	if m.cursor >= 0 && m.cursor < len(m.flatNodes) {
		return m.flatNodes[m.cursor]
	}
	return nil
}

func (m *BrowserModel) selectNode(n *domain.Node) {
	for i, f := range m.flatNodes {
		if f == n {
			m.cursor = i
			return
		}
	}
}

// refreshFlatNodes lists the visible nodes: children of collapsed
// directories are hidden
func (m *BrowserModel) refreshFlatNodes() {
	m.flatNodes = m.flatNodes[:0]
	if m.root != nil {
		domain.Walk(m.root, domain.PreOrder, func(n *domain.Node) error {
			for p := n.Parent; p != nil; p = p.Parent {
				if !m.expanded[p.ID] {
					return nil
				}
			}
			m.flatNodes = append(m.flatNodes, n)
			return nil
		})
	}
	// Clamp cursor
	if m.cursor >= len(m.flatNodes) {
		m.cursor = len(m.flatNodes) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// View renders the browser
func (m *BrowserModel) View() string {
	if m.root == nil {
		if m.busy {
			return styles.App.Render(m.spinner.View() + " Scanning...")
		}
		return styles.App.Render(status(m.Message, m.MessageErr))
	}

	var b strings.Builder

	// Title
	b.WriteString(styles.Title.Render("ipmgraph"))
	b.WriteString("\n")
	profile := m.backend.Profile()
	b.WriteString(styles.Subtitle.Render(fmt.Sprintf("%s · profile %s", m.root.Info.Path, profile.ID())))
	b.WriteString("\n\n")

	// Tree
	for i, node := range m.flatNodes {
		b.WriteString(m.renderNode(node, i == m.cursor))
		b.WriteString("\n")
	}

	// Details
	b.WriteString("\n")
	b.WriteString(styles.Detail.Render(RenderDetails(m.SelectedNode())))
	b.WriteString("\n")

	// Status
	if m.busy {
		b.WriteString("\n")
		b.WriteString(m.spinner.View() + " Working...")
		b.WriteString("\n")
	} else if m.Message != "" {
		b.WriteString("\n")
		b.WriteString(status(m.Message, m.MessageErr))
		b.WriteString("\n")
	}

	// Help line
	b.WriteString("\n")
	b.WriteString(keyHints(
		BrowserKeys.Sync, BrowserKeys.SetType, BrowserKeys.CopyURI,
		BrowserKeys.Open, BrowserKeys.Help, BrowserKeys.Quit,
	))

	return styles.App.Render(b.String())
}

func (m *BrowserModel) renderNode(node *domain.Node, selected bool) string {
	indent := strings.Repeat("  ", node.Depth())

	// Prefix (expand indicator)
	var prefix string
	switch {
	case !node.IsDir() || len(node.Children) == 0:
		prefix = styles.TreeLeaf
	case m.expanded[node.ID]:
		prefix = styles.TreeExpanded
	default:
		prefix = styles.TreeCollapsed
	}

	name := node.Name()
	style := styles.NodeFile
	if node.IsDir() {
		name += "/"
		style = styles.NodeDirectory
	}
	text := style.Render(name)
	if selected {
		text = styles.NodeSelected.Render(name)
	}

	return fmt.Sprintf("%s%s%s %s", indent, styles.TreeBranch.Render(prefix), text, typeTag(node))
}

// Violations returns the rule violations of the last failed assignment
func (m *BrowserModel) Violations() []assign.Violation {
	return m.violations
}

package views

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"ipmgraph/internal/adapters/tui/styles"
	"ipmgraph/internal/domain"
)

// closeHelp leaves the help screen
var closeHelp = key.NewBinding(
	key.WithKeys("esc", "q", "?"),
	key.WithHelp("esc/q/?", "close"),
)

// helpSection groups bindings under a heading. Each row lists keys that
// share one description.
type helpSection struct {
	title string
	rows  [][]key.Binding
}

func helpSections() []helpSection {
	k := BrowserKeys
	return []helpSection{
		{"Tree", [][]key.Binding{{k.Up, k.Down}, {k.Left}, {k.Right}, {k.Enter}}},
		{"Store", [][]key.Binding{{k.Sync}, {k.Reload}}},
		{"Selected entry", [][]key.Binding{{k.SetType}, {k.Unlock}, {k.CopyURI}, {k.Open}}},
		{"Type picker", [][]key.Binding{{SetTypeKeys.Next}, {SetTypeKeys.Submit}, {SetTypeKeys.Cancel}}},
		{"General", [][]key.Binding{{k.Help}, {k.Quit}}},
	}
}

// legendEntry pairs a sample node with what its tag means
type legendEntry struct {
	node    *domain.Node
	meaning string
}

// typeLegend returns the tag samples. They are rendered by typeTag so they
// look exactly as in the tree.
func typeLegend() []legendEntry {
	file := &domain.NodeType{ID: "file"}
	return []legendEntry{
		{&domain.Node{Type: file}, "assigned by the engine"},
		{&domain.Node{Type: file, TypeLocked: true}, "locked with set type"},
		{&domain.Node{}, "no type; the profile has no valid assignment"},
	}
}

// HelpModel lists every key binding and the type tag legend
type HelpModel struct {
	ViewState
}

// NewHelpModel creates a new help view model
func NewHelpModel() *HelpModel {
	return &HelpModel{}
}

// Init initializes the help view
func (m *HelpModel) Init() tea.Cmd {
	return nil
}

// Update closes the help screen on esc, q or ?
func (m *HelpModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
	case tea.KeyMsg:
		if key.Matches(msg, closeHelp) {
			return m, func() tea.Msg { return SwitchToBrowserMsg{} }
		}
	}
	return m, nil
}

// View renders the help view
func (m *HelpModel) View() string {
	var b strings.Builder

	b.WriteString(styles.Title.Render("ipmgraph Help"))
	b.WriteString("\n\n")

	for _, s := range helpSections() {
		b.WriteString(styles.InputLabel.Render(s.title))
		b.WriteString("\n")
		for _, row := range s.rows {
			b.WriteString(helpRow(row))
		}
		b.WriteString("\n")
	}

	b.WriteString(styles.InputLabel.Render("Type tags"))
	b.WriteString("\n")
	for _, l := range typeLegend() {
		tag := typeTag(l.node)
		pad := max(1, 9-lipgloss.Width(tag))
		b.WriteString("  " + tag + strings.Repeat(" ", pad) + styles.MutedText.Render(l.meaning) + "\n")
	}
	b.WriteString("\n")

	b.WriteString(keyHints(closeHelp))
	return styles.App.Render(b.String())
}

func helpRow(bindings []key.Binding) string {
	keys := make([]string, len(bindings))
	descs := make([]string, len(bindings))
	for i, b := range bindings {
		keys[i] = b.Help().Key
		descs[i] = b.Help().Desc
	}
	return "  " + styles.HelpKey.Render(padRight(strings.Join(keys, " / "), 20)) +
		styles.HelpDesc.Render(strings.Join(descs, ", ")) + "\n"
}

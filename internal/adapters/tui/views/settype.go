package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"ipmgraph/internal/adapters/tui/styles"
	"ipmgraph/internal/domain"
)

// SetTypeKeyMap defines key bindings for the type picker
type SetTypeKeyMap struct {
	Submit key.Binding
	Cancel key.Binding
	Next   key.Binding
}

var SetTypeKeys = SetTypeKeyMap{
	Submit: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "lock"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "cancel"),
	),
	Next: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "next candidate"),
	),
}

// SetTypeModel lets the user pick a node type for one node
type SetTypeModel struct {
	ViewState
	profile    *domain.Profile
	node       *domain.Node
	input      textinput.Model
	candidates []*domain.NodeType
	next       int
}

// NewSetTypeModel creates a new type picker
func NewSetTypeModel(profile *domain.Profile) *SetTypeModel {
	input := textinput.New()
	input.Placeholder = "node type ID"
	input.CharLimit = 64
	return &SetTypeModel{profile: profile, input: input}
}

// SetNode prepares the picker for n, listing the types whose bearing and
// name pattern fit it
func (m *SetTypeModel) SetNode(n *domain.Node) {
	m.node = n
	m.next = 0
	m.ClearMessage()
	m.candidates = m.candidates[:0]
	for _, t := range m.profile.Types() {
		if m.profile.Compatible(t, n) {
			m.candidates = append(m.candidates, t)
		}
	}
	m.input.SetValue("")
	if n.Type != nil {
		m.input.SetValue(n.Type.ID)
	}
	m.input.Focus()
}

// Candidates returns the types that fit the current node
func (m *SetTypeModel) Candidates() []*domain.NodeType {
	return m.candidates
}

// Init initializes the picker
func (m *SetTypeModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages for the picker
func (m *SetTypeModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, SetTypeKeys.Cancel):
			return m, func() tea.Msg {
				return SwitchToBrowserMsg{}
			}

		case key.Matches(msg, SetTypeKeys.Next):
			if len(m.candidates) > 0 {
				m.input.SetValue(m.candidates[m.next%len(m.candidates)].ID)
				m.input.CursorEnd()
				m.next++
			}
			return m, nil

		case key.Matches(msg, SetTypeKeys.Submit):
			typeID := strings.TrimSpace(m.input.Value())
			if typeID == "" {
				m.SetMessage("Enter a type ID", true)
				return m, nil
			}
			if _, ok := m.profile.Type(typeID); !ok {
				m.SetMessage(fmt.Sprintf("Unknown type %q", typeID), true)
				return m, nil
			}
			path := m.node.RelPath()
			return m, tea.Sequence(
				func() tea.Msg { return SwitchToBrowserMsg{} },
				func() tea.Msg { return SetTypeMsg{Path: path, TypeID: typeID} },
			)
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the picker
func (m *SetTypeModel) View() string {
	if m.node == nil {
		return ""
	}
	var b strings.Builder

	b.WriteString(styles.Title.Render("Set node type"))
	b.WriteString("\n")
	b.WriteString(styles.Subtitle.Render(m.node.RelPath() + " " + typeTag(m.node)))
	b.WriteString("\n\n")

	b.WriteString(styles.InputLabel.Render("Type"))
	b.WriteString("\n")
	b.WriteString(styles.InputFocused.Render(m.input.View()))
	b.WriteString("\n\n")

	if len(m.candidates) == 0 {
		b.WriteString(styles.MutedText.Render("No type of this profile fits this entry"))
		b.WriteString("\n")
	} else {
		b.WriteString(styles.InputLabel.Render("Fitting types"))
		b.WriteString("\n")
		typed := strings.TrimSpace(m.input.Value())
		for _, t := range m.candidates {
			marker := "  "
			if t.ID == typed {
				marker = "> "
			}
			fmt.Fprintf(&b, "%s%s %s\n", marker, styles.HelpKey.Render(t.ID), styles.MutedText.Render(t.Label))
		}
	}
	b.WriteString("\n")

	if msg := status(m.Message, m.MessageErr); msg != "" {
		b.WriteString(msg)
		b.WriteString("\n\n")
	}
	b.WriteString(keyHints(SetTypeKeys.Next, SetTypeKeys.Submit, SetTypeKeys.Cancel))

	return styles.App.Render(b.String())
}

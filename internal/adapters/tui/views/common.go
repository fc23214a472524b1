package views

import (
	"context"

	"ipmgraph/internal/application/commands"
	"ipmgraph/internal/domain"
)

// Backend is what the views need from a workspace
type Backend interface {
	// Load scans the package and assigns types
	Load(ctx context.Context) (*commands.ScanResult, *commands.AssignResult, error)
	// Sync rescans, applies edit to the scanned tree and reconciles the store
	Sync(ctx context.Context, edit func(root *domain.Node) error) (*commands.SyncResult, error)
	Profile() *domain.Profile
}

// ViewState contains common state shared by all view models.
// Embed this struct in view models to get width/height and message handling.
type ViewState struct {
	Width      int
	Height     int
	Message    string
	MessageErr bool
}

// SetSize updates the view dimensions
func (s *ViewState) SetSize(width, height int) {
	s.Width = width
	s.Height = height
}

// SetMessage sets a message to display in the view
func (s *ViewState) SetMessage(msg string, isErr bool) {
	s.Message = msg
	s.MessageErr = isErr
}

// ClearMessage clears the current message
func (s *ViewState) ClearMessage() {
	s.Message = ""
	s.MessageErr = false
}

// Messages for view switching

// SwitchToSetTypeMsg opens the type picker for a node
type SwitchToSetTypeMsg struct {
	Node *domain.Node
}

// SwitchToHelpMsg opens the help view
type SwitchToHelpMsg struct{}

// SwitchToBrowserMsg returns to the browser
type SwitchToBrowserMsg struct{}

// SetTypeMsg asks for a node to be locked to TypeID, or unlocked when
// TypeID is empty
type SetTypeMsg struct {
	Path   string
	TypeID string
}

// OpenFileMsg asks for a file to be opened outside the TUI
type OpenFileMsg struct {
	Path string
	MIME string
}

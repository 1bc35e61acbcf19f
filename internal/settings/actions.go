package settings

import "github.com/merrow/brim/internal/catalog"

// Action describes what activating a row does. The settings screen
// switches on the concrete type; rows without an action are inert.
type Action interface {
	isAction()
}

// ToggleAction flips a boolean preference and updates the row's toggle.
type ToggleAction struct {
	// Key is the preference key the toggle is bound to.
	Key string
}

// PickAction pushes an option picker over a catalog enumeration.
type PickAction struct {
	// Key is the enum preference key the picker writes to.
	Key string

	// Title is the picker screen heading.
	Title string

	// Options are the selectable variants, in display order.
	Options []catalog.Option
}

// EditStringAction opens the inline text editor for a string preference.
type EditStringAction struct {
	// Key is the string preference key the editor writes to.
	Key string

	// Prompt is the editor's placeholder/label text.
	Prompt string
}

// NavigateAction pushes a named sub-screen.
type NavigateAction struct {
	// Screen names the destination (see the tui Screen constants).
	Screen string
}

// OpenURLAction opens a documentation page. Fire-and-forget: no result
// is consumed.
type OpenURLAction struct {
	URL string
}

// CopyAction copies text to the system clipboard. Fire-and-forget.
type CopyAction struct {
	Text string
}

// SyncAction pushes the current preferences to a running brim instance.
type SyncAction struct{}

func (ToggleAction) isAction()     {}
func (PickAction) isAction()       {}
func (EditStringAction) isAction() {}
func (NavigateAction) isAction()   {}
func (OpenURLAction) isAction()    {}
func (CopyAction) isAction()       {}
func (SyncAction) isAction()       {}

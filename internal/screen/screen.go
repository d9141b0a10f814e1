package screen

import (
	tea "charm.land/bubbletea/v2"

	"github.com/eddge/learnengine/internal/ui/layout"
)

// Screen is one page of the terminal player.
type Screen interface {
	// Init returns the first command, run when the screen is pushed.
	Init() tea.Cmd

	Update(msg tea.Msg) (Screen, tea.Cmd)

	// View renders the content area, without header or footer.
	View(width, height int) string

	// Title is shown in the header.
	Title() string
}

// KeyHintProvider lets a screen replace the default footer hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// Resumer is implemented by screens that reload state when they become
// active again after the screen above them is popped.
type Resumer interface {
	Resume() tea.Cmd
}

// EscapeCapturer is implemented by screens that handle Esc themselves
// while CapturesEscape reports true. Otherwise Esc goes back.
type EscapeCapturer interface {
	CapturesEscape() bool
}

package components

import (
	"strconv"
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/eddge/learnengine/internal/ui/theme"
)

// TextInput wraps bubbles/textinput. In numeric mode only characters that
// can appear in a decimal number are accepted, plus letters for a unit.
type TextInput struct {
	Model     textinput.Model
	Numeric   bool
	submitted bool
	valid     bool
}

func NewTextInput(placeholder string, numeric bool, charLimit int) TextInput {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Focus()
	if charLimit > 0 {
		ti.CharLimit = charLimit
	}
	return TextInput{Model: ti, Numeric: numeric}
}

func (t TextInput) Init() tea.Cmd {
	return t.Model.Focus()
}

func (t TextInput) Update(msg tea.Msg) (TextInput, tea.Cmd) {
	if t.submitted {
		return t, nil
	}
	if t.Numeric {
		if kmsg, ok := msg.(tea.KeyPressMsg); ok && len(kmsg.Text) == 1 && !numericRune(rune(kmsg.Text[0])) {
			return t, nil
		}
	}
	var cmd tea.Cmd
	t.Model, cmd = t.Model.Update(msg)
	return t, cmd
}

func numericRune(r rune) bool {
	switch {
	case r >= '0' && r <= '9', r == '.', r == '-', r == '+', r == 'e', r == 'E', r == ' ', r == '/', r == '^':
		return true
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		return true
	}
	return false
}

func (t TextInput) View() string {
	view := t.Model.View()
	if t.submitted {
		if t.valid {
			view += " " + lipgloss.NewStyle().Foreground(theme.Success).Render("✓")
		} else {
			view += " " + lipgloss.NewStyle().Foreground(theme.Error).Render("✗")
		}
	}
	return view
}

func (t TextInput) Value() string {
	return strings.TrimSpace(t.Model.Value())
}

// NumericValue parses the input as a float, ignoring any trailing text.
func (t TextInput) NumericValue() (float64, error) {
	fields := strings.Fields(t.Value())
	if len(fields) == 0 {
		return 0, strconv.ErrSyntax
	}
	return strconv.ParseFloat(fields[0], 64)
}

// Submit freezes the input and shows a tick or cross.
func (t *TextInput) Submit(valid bool) {
	t.submitted = true
	t.valid = valid
}

func (t TextInput) Submitted() bool { return t.submitted }

// Reset clears the value and unfreezes the input.
func (t *TextInput) Reset() {
	t.Model.SetValue("")
	t.submitted = false
	t.valid = false
}

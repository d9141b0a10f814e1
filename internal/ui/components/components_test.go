package components

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
)

func key(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func TestMultiChoice_Arrows(t *testing.T) {
	mc := NewMultiChoice("Pick", []string{"a", "b", "c"}, 1)
	mc, _ = mc.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	mc, _ = mc.Update(tea.KeyPressMsg{Code: tea.KeyEnter})

	if !mc.Submitted || mc.ChosenIndex != 1 || !mc.IsCorrect() {
		t.Fatalf("state = %+v", mc)
	}

	// Frozen after submit.
	mc, _ = mc.Update(tea.KeyPressMsg{Code: tea.KeyUp})
	if mc.Selected != 1 {
		t.Error("selection should not move after submit")
	}
}

func TestMultiChoice_DirectKeys(t *testing.T) {
	tests := []struct {
		key  rune
		want int
	}{
		{'1', 0},
		{'3', 2},
		{'b', 1},
		{'d', 3},
	}
	for _, tt := range tests {
		mc := NewMultiChoice("Pick", []string{"a", "b", "c", "d"}, 0)
		mc, _ = mc.Update(key(tt.key))
		if !mc.Submitted || mc.ChosenIndex != tt.want {
			t.Errorf("key %q: chosen %d submitted %v", tt.key, mc.ChosenIndex, mc.Submitted)
		}
	}

	mc := NewMultiChoice("Pick", []string{"a", "b"}, 0)
	mc, _ = mc.Update(key('7'))
	if mc.Submitted {
		t.Error("out of range key should be ignored")
	}
}

func TestMultiChoice_View(t *testing.T) {
	mc := NewMultiChoice("Which is a vector?", []string{"speed", "velocity"}, 1)
	view := mc.View()
	for _, want := range []string{"Which is a vector?", "A)  speed", "B)  velocity"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestMenu_SkipsDisabled(t *testing.T) {
	picked := ""
	m := NewMenu([]MenuItem{
		{Label: "locked", Disabled: true},
		{Label: "one", Action: func() tea.Cmd { picked = "one"; return nil }},
		{Label: "two", Disabled: true},
		{Label: "three", Action: func() tea.Cmd { picked = "three"; return nil }},
	})
	if m.Selected != 1 {
		t.Fatalf("initial selection = %d, want 1", m.Selected)
	}
	m, _ = m.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	if m.Selected != 3 {
		t.Fatalf("selection = %d, want 3", m.Selected)
	}
	m.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if picked != "three" {
		t.Errorf("picked = %q", picked)
	}
}

func TestTextInput_NumericValue(t *testing.T) {
	ti := NewTextInput("", true, 20)
	ti.Model.SetValue(" 9.8 m/s^2 ")
	v, err := ti.NumericValue()
	if err != nil || v != 9.8 {
		t.Errorf("NumericValue = %v, %v", v, err)
	}

	ti.Model.SetValue("")
	if _, err := ti.NumericValue(); err == nil {
		t.Error("empty input should not parse")
	}
}

func TestTextInput_NumericFilter(t *testing.T) {
	ti := NewTextInput("", true, 20)
	ti, _ = ti.Update(key('4'))
	ti, _ = ti.Update(key('!'))
	if ti.Value() != "4" {
		t.Errorf("value = %q, want 4", ti.Value())
	}
}

func TestProgressBar(t *testing.T) {
	view := NewProgressBar("Mastery", 0.4, true, 30).View()
	if !strings.Contains(view, "Mastery") || !strings.Contains(view, "40%") {
		t.Errorf("view = %q", view)
	}
}

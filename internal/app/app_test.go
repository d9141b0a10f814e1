package app

import (
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/eddge/learnengine/internal/catalog"
	"github.com/eddge/learnengine/internal/platform/logger"
	"github.com/eddge/learnengine/internal/progress"
	"github.com/eddge/learnengine/internal/router"
	"github.com/eddge/learnengine/internal/screen"
	"github.com/eddge/learnengine/internal/store"
)

// panelScreen captures Esc while open and counts the keys it receives.
type panelScreen struct {
	open bool
	keys int
}

func (p *panelScreen) Init() tea.Cmd                 { return nil }
func (p *panelScreen) View(width, height int) string { return "panel" }
func (p *panelScreen) Title() string                 { return "Panel" }
func (p *panelScreen) CapturesEscape() bool          { return p.open }

func (p *panelScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if _, ok := msg.(tea.KeyPressMsg); ok {
		p.keys++
	}
	return p, nil
}

var esc = tea.KeyPressMsg{Code: tea.KeyEscape}

func newModel() Model {
	ps := progress.NewService(catalog.Default(), store.NewMemoryPathRepo(), store.NewMemoryEventRepo(), logger.Nop(), progress.DefaultConfig())
	return New(ps, nil)
}

func TestNew_DoubtsOffStatus(t *testing.T) {
	m := newModel()
	if m.status != "doubts off" {
		t.Errorf("status = %q", m.status)
	}
	if m.router.Depth() != 1 {
		t.Errorf("depth = %d", m.router.Depth())
	}
}

func TestUpdate_CtrlCQuits(t *testing.T) {
	m := newModel()
	_, cmd := m.Update(tea.KeyPressMsg{Code: 'c', Mod: tea.ModCtrl})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("ctrl+c should quit")
	}
}

func TestUpdate_EscOnBottomScreenIsIgnored(t *testing.T) {
	m := newModel()
	if _, cmd := m.Update(esc); cmd != nil {
		t.Error("esc on the bottom screen should do nothing")
	}
}

func TestUpdate_EscPopsUnlessCaptured(t *testing.T) {
	m := newModel()
	p := &panelScreen{open: true}
	m.router.Push(p)

	_, _ = m.Update(esc)
	if p.keys != 1 {
		t.Errorf("open panel should receive esc, got %d keys", p.keys)
	}
	if m.router.Depth() != 2 {
		t.Fatalf("depth = %d", m.router.Depth())
	}

	p.open = false
	_, cmd := m.Update(esc)
	if cmd == nil {
		t.Fatal("expected pop command")
	}
	if _, ok := cmd().(router.PopScreenMsg); !ok {
		t.Error("esc should pop the screen")
	}
	if p.keys != 1 {
		t.Error("closed panel should not see esc")
	}
}

func TestUpdate_WindowSize(t *testing.T) {
	m := newModel()
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	got := next.(Model)
	if got.width != 100 || got.height != 30 {
		t.Errorf("size = %dx%d", got.width, got.height)
	}
}

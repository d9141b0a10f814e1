package router

import (
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/eddge/learnengine/internal/screen"
)

type stubScreen struct {
	title   string
	initRan bool
	resumed int
}

func (s *stubScreen) Init() tea.Cmd {
	s.initRan = true
	return nil
}
func (s *stubScreen) Update(tea.Msg) (screen.Screen, tea.Cmd) { return s, nil }
func (s *stubScreen) View(int, int) string                    { return s.title }
func (s *stubScreen) Title() string                           { return s.title }

type resumingScreen struct {
	stubScreen
}

type resumedMsg struct{}

func (s *resumingScreen) Resume() tea.Cmd {
	s.resumed++
	return func() tea.Msg { return resumedMsg{} }
}

func TestPush(t *testing.T) {
	r := New(&stubScreen{title: "topics"})

	s2 := &stubScreen{title: "path"}
	r.Push(s2)

	if r.Depth() != 2 {
		t.Errorf("depth = %d, want 2", r.Depth())
	}
	if r.Active().Title() != "path" {
		t.Errorf("active = %q, want path", r.Active().Title())
	}
	if !s2.initRan {
		t.Error("Init should run on push")
	}
}

func TestPop(t *testing.T) {
	r := New(&stubScreen{title: "topics"})
	r.Push(&stubScreen{title: "path"})
	r.Pop()

	if r.Depth() != 1 || r.Active().Title() != "topics" {
		t.Errorf("depth %d active %q", r.Depth(), r.Active().Title())
	}
}

func TestPopNoopAtBottom(t *testing.T) {
	r := New(&stubScreen{title: "topics"})
	if cmd := r.Pop(); cmd != nil {
		t.Error("pop at bottom should return no command")
	}
	if r.Depth() != 1 {
		t.Errorf("depth = %d, want 1", r.Depth())
	}
}

func TestPopResumesScreenBelow(t *testing.T) {
	below := &resumingScreen{stubScreen{title: "path"}}
	r := New(&stubScreen{title: "topics"})
	r.Push(below)
	r.Push(&stubScreen{title: "learn"})

	cmd := r.Update(PopScreenMsg{})
	if below.resumed != 1 {
		t.Fatalf("resumed = %d, want 1", below.resumed)
	}
	if cmd == nil {
		t.Fatal("expected the resume command")
	}
	if _, ok := cmd().(resumedMsg); !ok {
		t.Error("unexpected resume message")
	}
}

func TestReplace(t *testing.T) {
	r := New(&stubScreen{title: "topics"})
	r.Push(&stubScreen{title: "path"})

	s3 := &stubScreen{title: "learn"}
	r.Update(ReplaceScreenMsg{Screen: s3})

	if r.Depth() != 2 {
		t.Errorf("depth = %d, want 2", r.Depth())
	}
	if r.Active().Title() != "learn" {
		t.Errorf("active = %q, want learn", r.Active().Title())
	}
	if !s3.initRan {
		t.Error("Init should run on replace")
	}
}

func TestCommandHelpers(t *testing.T) {
	s := &stubScreen{title: "x"}
	if msg, ok := Push(s)().(PushScreenMsg); !ok || msg.Screen != s {
		t.Error("Push should produce PushScreenMsg")
	}
	if _, ok := Pop().(PopScreenMsg); !ok {
		t.Error("Pop should produce PopScreenMsg")
	}
	if msg, ok := Replace(s)().(ReplaceScreenMsg); !ok || msg.Screen != s {
		t.Error("Replace should produce ReplaceScreenMsg")
	}
}

func TestUpdateForwardsToActive(t *testing.T) {
	r := New(&stubScreen{title: "topics"})
	if cmd := r.Update(tea.KeyPressMsg{Code: 'j', Text: "j"}); cmd != nil {
		t.Error("stub screen returns no command")
	}
	if r.View(80, 24) != "topics" {
		t.Errorf("view = %q", r.View(80, 24))
	}
}

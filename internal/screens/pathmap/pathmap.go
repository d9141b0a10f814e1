// Package pathmap shows the five nodes of a topic's learning path.
package pathmap

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/eddge/learnengine/internal/doubts"
	"github.com/eddge/learnengine/internal/learnpath"
	"github.com/eddge/learnengine/internal/progress"
	"github.com/eddge/learnengine/internal/router"
	"github.com/eddge/learnengine/internal/screen"
	"github.com/eddge/learnengine/internal/screens/learn"
	"github.com/eddge/learnengine/internal/ui/components"
	"github.com/eddge/learnengine/internal/ui/layout"
	"github.com/eddge/learnengine/internal/ui/theme"
)

type pathMsg struct {
	path learnpath.Path
	err  error
}

// PathMapScreen lists the nodes of one path with their status.
type PathMapScreen struct {
	progress *progress.Service
	doubts   *doubts.Service
	topicID  string
	path     *learnpath.Path
	cursor   int
	notice   string
	err      error
}

var (
	_ screen.Screen          = (*PathMapScreen)(nil)
	_ screen.KeyHintProvider = (*PathMapScreen)(nil)
	_ screen.Resumer         = (*PathMapScreen)(nil)
)

func New(ps *progress.Service, ds *doubts.Service, topicID string) *PathMapScreen {
	return &PathMapScreen{progress: ps, doubts: ds, topicID: topicID}
}

func (s *PathMapScreen) Init() tea.Cmd   { return s.load() }
func (s *PathMapScreen) Resume() tea.Cmd { return s.load() }

func (s *PathMapScreen) load() tea.Cmd {
	return func() tea.Msg {
		p, err := s.progress.Path(context.Background(), s.topicID)
		return pathMsg{path: p, err: err}
	}
}

func (s *PathMapScreen) Title() string {
	if s.path != nil {
		return s.path.TopicName
	}
	return "Learning Path"
}

func (s *PathMapScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Learn"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *PathMapScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case pathMsg:
		s.err = msg.err
		if msg.err == nil {
			s.path = &msg.path
			if s.notice == "" {
				s.cursor = s.currentIndex()
			}
		}
		return s, nil

	case tea.KeyPressMsg:
		if s.path == nil {
			return s, nil
		}
		switch msg.String() {
		case "up", "k":
			if s.cursor > 0 {
				s.cursor--
			}
			s.notice = ""
		case "down", "j":
			if s.cursor < len(s.path.Nodes)-1 {
				s.cursor++
			}
			s.notice = ""
		case "enter":
			return s, s.open()
		}
	}
	return s, nil
}

func (s *PathMapScreen) currentIndex() int {
	for i, n := range s.path.Nodes {
		if n.ID == s.path.CurrentNodeID {
			return i
		}
	}
	return 0
}

func (s *PathMapScreen) open() tea.Cmd {
	n := s.path.Nodes[s.cursor]
	if n.Status == learnpath.StatusLocked {
		var missing []string
		for _, id := range n.PrerequisiteNodeIDs {
			if pre, ok := s.path.Node(id); ok && !pre.Status.IsDone() {
				missing = append(missing, fmt.Sprintf("step %d", pre.Order+1))
			}
		}
		s.notice = "Locked. Finish " + strings.Join(missing, ", ") + " first."
		return nil
	}
	s.notice = ""
	return router.Push(learn.New(s.progress, s.doubts, *s.path, n.ID))
}

func (s *PathMapScreen) View(width, height int) string {
	if s.err != nil {
		return theme.Incorrect.Render("Could not load path: " + s.err.Error())
	}
	if s.path == nil {
		return theme.Hint.Render("Loading path...")
	}
	p := s.path

	var b strings.Builder
	b.WriteString("\n")
	bar := components.NewProgressBar("Mastery", float64(p.MasteryScore)/100, true, min(width-4, 60))
	b.WriteString("  " + bar.View() + "\n")
	b.WriteString(theme.Subtitle.Render(fmt.Sprintf("  %d of %d steps done", p.CompletedNodeCount, p.TotalNodeCount)) + "\n\n")

	for i, n := range p.Nodes {
		cursor := "  "
		if i == s.cursor {
			cursor = theme.Selected.Render("▸ ")
		}
		line := fmt.Sprintf("%s %d. %-9s %s", n.Status.Icon(), n.Order+1, n.Type, n.SkillGoal)
		b.WriteString(cursor + theme.Status(n.Status).Render(line) + "\n")
		if i < len(p.Nodes)-1 {
			b.WriteString(theme.Subtitle.Render("      │") + "\n")
		}
	}

	n := p.Nodes[s.cursor]
	b.WriteString("\n")
	info := fmt.Sprintf("  %s · %d frames", n.Status, n.TotalFrames)
	if n.ConfidenceScore != nil {
		info += fmt.Sprintf(" · last score %d%%", *n.ConfidenceScore)
	}
	b.WriteString(theme.Hint.Render(info) + "\n")
	if s.notice != "" {
		b.WriteString("\n  " + theme.Incorrect.Render(s.notice) + "\n")
	}
	return b.String()
}

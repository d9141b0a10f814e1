// Package topics lists catalog topics with their progress.
package topics

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/eddge/learnengine/internal/doubts"
	"github.com/eddge/learnengine/internal/progress"
	"github.com/eddge/learnengine/internal/router"
	"github.com/eddge/learnengine/internal/screen"
	"github.com/eddge/learnengine/internal/screens/pathmap"
	"github.com/eddge/learnengine/internal/ui/components"
	"github.com/eddge/learnengine/internal/ui/layout"
	"github.com/eddge/learnengine/internal/ui/theme"
)

type overviewMsg struct {
	rows []progress.TopicProgress
	err  error
}

// TopicsScreen is the start screen.
type TopicsScreen struct {
	progress *progress.Service
	doubts   *doubts.Service
	rows     []progress.TopicProgress
	menu     components.Menu
	loaded   bool
	err      error
}

var (
	_ screen.Screen          = (*TopicsScreen)(nil)
	_ screen.KeyHintProvider = (*TopicsScreen)(nil)
	_ screen.Resumer         = (*TopicsScreen)(nil)
)

// New builds the screen. ds may be nil.
func New(ps *progress.Service, ds *doubts.Service) *TopicsScreen {
	return &TopicsScreen{progress: ps, doubts: ds}
}

func (s *TopicsScreen) Init() tea.Cmd   { return s.load() }
func (s *TopicsScreen) Resume() tea.Cmd { return s.load() }

func (s *TopicsScreen) Title() string { return "Topics" }

func (s *TopicsScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Open path"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

func (s *TopicsScreen) load() tea.Cmd {
	return func() tea.Msg {
		rows, err := s.progress.Overview(context.Background())
		return overviewMsg{rows: rows, err: err}
	}
}

func (s *TopicsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case overviewMsg:
		s.loaded = true
		s.err = msg.err
		if msg.err == nil {
			selected := s.menu.Selected
			s.rows = msg.rows
			s.menu = components.NewMenu(s.items())
			if selected < len(s.rows) {
				s.menu.Selected = selected
			}
		}
		return s, nil
	case tea.KeyPressMsg:
		var cmd tea.Cmd
		s.menu, cmd = s.menu.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *TopicsScreen) items() []components.MenuItem {
	items := make([]components.MenuItem, len(s.rows))
	for i, row := range s.rows {
		topicID := row.Topic.ID
		items[i] = components.MenuItem{
			Label:  fmt.Sprintf("%-32s", row.Topic.Name),
			Detail: detail(row),
			Action: func() tea.Cmd {
				return router.Push(pathmap.New(s.progress, s.doubts, topicID))
			},
		}
	}
	return items
}

func detail(row progress.TopicProgress) string {
	parts := []string{row.Topic.SubjectID}
	if row.Topic.Difficulty != "" {
		parts = append(parts, string(row.Topic.Difficulty))
	}
	if row.Started {
		parts = append(parts, fmt.Sprintf("%d/%d nodes  %d%%", row.CompletedNodes, row.TotalNodes, row.MasteryScore))
	} else {
		parts = append(parts, "not started")
	}
	return strings.Join(parts, " · ")
}

func (s *TopicsScreen) View(width, height int) string {
	switch {
	case s.err != nil:
		return theme.Incorrect.Render("Could not load topics: " + s.err.Error())
	case !s.loaded:
		return theme.Hint.Render("Loading topics...")
	case len(s.rows) == 0:
		return theme.Hint.Render("The catalog is empty.")
	}
	return "\n" + theme.Title.Render("  Pick a topic") + "\n\n" + s.menu.View()
}

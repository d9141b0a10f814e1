// Package learn plays the frames of one node and records the outcome.
package learn

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/eddge/learnengine/internal/catalog"
	"github.com/eddge/learnengine/internal/doubts"
	"github.com/eddge/learnengine/internal/engine"
	"github.com/eddge/learnengine/internal/frames"
	"github.com/eddge/learnengine/internal/learnpath"
	"github.com/eddge/learnengine/internal/progress"
	"github.com/eddge/learnengine/internal/router"
	"github.com/eddge/learnengine/internal/screen"
	"github.com/eddge/learnengine/internal/ui/components"
	"github.com/eddge/learnengine/internal/ui/layout"
)

type phase int

const (
	phasePlaying phase = iota
	phaseSaving
	phaseDone
)

// completeMsg carries the result of progress.Service.Complete.
type completeMsg struct {
	res progress.CompleteResult
	err error
}

// doubtMsg carries the answer to an asked doubt.
type doubtMsg struct {
	question string
	answer   *doubts.Answer
	err      error
}

// LearnScreen walks one node frame by frame.
type LearnScreen struct {
	progress *progress.Service
	doubts   *doubts.Service
	path     learnpath.Path
	session  *engine.Session
	phase    phase
	err      error

	// per-frame state, reset by prepare
	mc       components.MultiChoice
	input    components.TextInput
	answered bool
	correct  bool
	revealed bool
	hint     string

	outcome learnpath.Outcome
	result  *progress.CompleteResult

	doubt doubtPanel
}

type doubtPanel struct {
	open     bool
	pending  bool
	input    components.TextInput
	answer   *doubts.Answer
	err      error
	previous []doubts.Exchange
}

var (
	_ screen.Screen          = (*LearnScreen)(nil)
	_ screen.KeyHintProvider = (*LearnScreen)(nil)
	_ screen.EscapeCapturer  = (*LearnScreen)(nil)
)

// New starts a session on nodeID. ds may be nil, which disables doubts.
func New(ps *progress.Service, ds *doubts.Service, p learnpath.Path, nodeID string) *LearnScreen {
	s := &LearnScreen{progress: ps, doubts: ds, path: p}
	s.session, s.err = engine.NewSession(p, nodeID)
	if s.err == nil {
		s.prepare()
	}
	return s
}

func (s *LearnScreen) Init() tea.Cmd {
	return s.focusInput()
}

// focusInput starts the cursor of the numerical answer box when the
// current frame has one.
func (s *LearnScreen) focusInput() tea.Cmd {
	if s.session == nil {
		return nil
	}
	if f, ok := s.session.Current(); ok && f.Type == frames.TypeNumerical {
		return s.input.Init()
	}
	return nil
}

func (s *LearnScreen) Title() string {
	if s.session == nil {
		return "Learn"
	}
	i, n := s.session.Position()
	if s.session.Done() {
		return "Summary"
	}
	return fmt.Sprintf("Step %s · frame %d/%d", strings.TrimPrefix(s.session.NodeID, s.session.TopicID+"-n"), i+1, n)
}

func (s *LearnScreen) CapturesEscape() bool { return s.doubt.open }

func (s *LearnScreen) KeyHints() []layout.KeyHint {
	if s.doubt.open {
		return []layout.KeyHint{
			{Key: "Enter", Description: "Ask"},
			{Key: "Esc", Description: "Close"},
		}
	}
	if s.phase == phaseDone || s.err != nil {
		return []layout.KeyHint{{Key: "Enter", Description: "Back to path"}}
	}
	hints := []layout.KeyHint{{Key: "Enter", Description: "Continue"}}
	if f, ok := s.session.Current(); ok && f.IsAssessment() && !s.answered {
		hints = append(hints, layout.KeyHint{Key: "Tab", Description: "Hint"})
	}
	if s.doubts != nil {
		hints = append(hints, layout.KeyHint{Key: "Ctrl+D", Description: "Ask a doubt"})
	}
	return append(hints, layout.KeyHint{Key: "Esc", Description: "Leave"})
}

// prepare resets per-frame state for the frame under the cursor.
func (s *LearnScreen) prepare() {
	s.answered, s.correct, s.revealed, s.hint = false, false, false, ""
	f, ok := s.session.Current()
	if !ok {
		return
	}
	switch c := f.Content.(type) {
	case frames.MCQContent:
		s.mc = components.NewMultiChoice(c.Question, c.Options, c.CorrectAnswer)
	case frames.NumericalContent:
		placeholder := "Type a number"
		if c.Unit != "" {
			placeholder += " in " + c.Unit
		}
		s.input = components.NewTextInput(placeholder, true, 24)
	}
}

func (s *LearnScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case completeMsg:
		s.phase = phaseDone
		if msg.err != nil {
			s.err = msg.err
			return s, nil
		}
		s.result = &msg.res
		return s, nil

	case doubtMsg:
		s.doubt.pending = false
		s.doubt.err = msg.err
		if msg.err == nil {
			s.doubt.answer = msg.answer
			s.doubt.previous = append(s.doubt.previous, doubts.Exchange{Question: msg.question, Answer: msg.answer.Explanation})
			s.doubt.input.Reset()
		}
		return s, nil

	case tea.KeyPressMsg:
		if s.doubt.open {
			return s, s.updateDoubt(msg)
		}
		return s, s.handleKey(msg)
	}

	if s.doubt.open {
		var cmd tea.Cmd
		s.doubt.input, cmd = s.doubt.input.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *LearnScreen) handleKey(msg tea.KeyPressMsg) tea.Cmd {
	key := msg.String()
	if s.err != nil || s.phase == phaseDone {
		if key == "enter" || key == "esc" {
			return router.Pop
		}
		return nil
	}
	if s.phase == phaseSaving {
		return nil
	}

	switch key {
	case "ctrl+d":
		if s.doubts != nil {
			s.doubt.open = true
			s.doubt.err = nil
			s.doubt.input = components.NewTextInput("What is confusing you?", false, 500)
			return s.doubt.input.Init()
		}
		return nil
	case "tab":
		if s.answered {
			return nil
		}
		if h, err := s.session.UseHint(); err == nil {
			s.hint = h
		}
		return nil
	}

	f, _ := s.session.Current()
	switch f.Content.(type) {
	case frames.MCQContent:
		if !s.answered {
			s.mc, _ = s.mc.Update(msg)
			if s.mc.Submitted {
				s.correct, _ = s.session.AnswerMCQ(s.mc.ChosenIndex)
				s.answered = true
			}
			return nil
		}

	case frames.NumericalContent:
		if !s.answered {
			if key != "enter" {
				var cmd tea.Cmd
				s.input, cmd = s.input.Update(msg)
				return cmd
			}
			if s.input.Value() == "" {
				return nil
			}
			s.correct, _ = s.session.AnswerNumerical(s.input.Value())
			s.input.Submit(s.correct)
			s.answered = true
			return nil
		}

	case frames.ShortExplainContent:
		if !s.revealed {
			if key == "enter" || key == "space" {
				s.revealed = true
			}
			return nil
		}
		if !s.answered {
			switch key {
			case "y":
				s.correct, _ = s.session.AnswerShort(true)
				s.answered = true
			case "n":
				s.correct, _ = s.session.AnswerShort(false)
				s.answered = true
			}
			return nil
		}
	}

	switch key {
	case "enter", "space", "right", "l":
		return s.advance()
	}
	return nil
}

// advance moves to the next frame, or scores the session after the last.
func (s *LearnScreen) advance() tea.Cmd {
	s.session.Next()
	if !s.session.Done() {
		s.prepare()
		return s.focusInput()
	}

	s.phase = phaseSaving
	s.outcome = s.session.Finish(s.progress.Config().Scoring)
	topicID, nodeID, sessionID, outcome := s.session.TopicID, s.session.NodeID, s.session.ID, s.outcome
	return func() tea.Msg {
		res, err := s.progress.Complete(context.Background(), topicID, nodeID, outcome, sessionID)
		return completeMsg{res: res, err: err}
	}
}

func (s *LearnScreen) updateDoubt(msg tea.KeyPressMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		s.doubt.open = false
		s.doubt.answer = nil
		return nil
	case "enter":
		if s.doubt.pending {
			return nil
		}
		q := s.doubt.input.Value()
		if q == "" {
			return nil
		}
		s.doubt.pending = true
		s.doubt.answer = nil
		return s.ask(q)
	}
	if s.doubt.pending {
		return nil
	}
	var cmd tea.Cmd
	s.doubt.input, cmd = s.doubt.input.Update(msg)
	return cmd
}

func (s *LearnScreen) ask(question string) tea.Cmd {
	node, _ := s.path.Node(s.session.NodeID)
	in := doubts.Input{
		Topic:    s.topic(),
		Node:     node,
		Question: question,
		Previous: append([]doubts.Exchange(nil), s.doubt.previous...),
	}
	if f, ok := s.session.Current(); ok {
		in.Frame = &f
	}
	svc := s.doubts
	return func() tea.Msg {
		ans, err := svc.Ask(context.Background(), in)
		return doubtMsg{question: question, answer: ans, err: err}
	}
}

func (s *LearnScreen) topic() catalog.Topic {
	if t, err := s.progress.Topic(s.path.TopicID); err == nil {
		return t
	}
	return catalog.Topic{ID: s.path.TopicID, Name: s.path.TopicName}
}

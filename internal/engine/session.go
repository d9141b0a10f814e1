// Package engine runs a single learning session over one node's frames and
// turns the learner's answers into a learnpath.Outcome.
package engine

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/eddge/learnengine/internal/frames"
	"github.com/eddge/learnengine/internal/learnpath"
)

var (
	ErrNodeNotFound    = errors.New("node not found")
	ErrNodeLocked      = errors.New("node is locked")
	ErrNotAssessment   = errors.New("current frame is not an assessment")
	ErrAlreadyAnswered = errors.New("frame already answered")
	ErrSessionDone     = errors.New("session has no more frames")
)

// Answer records the learner's response to one assessment frame.
type Answer struct {
	FrameID  string
	Response string
	Correct  bool
}

// Tally summarizes the answers given so far.
type Tally struct {
	Correct   int
	Answered  int
	Total     int // assessment frames in the session
	HintsUsed int
}

// Accuracy returns Correct/Total, or 0 for a session with no assessments.
func (t Tally) Accuracy() float64 {
	if t.Total == 0 {
		return 0
	}
	return float64(t.Correct) / float64(t.Total)
}

// Session walks the frames of one node in order.
type Session struct {
	ID        string
	TopicID   string
	NodeID    string
	NodeType  learnpath.NodeType
	SkillGoal string
	Frames    []frames.Frame
	StartedAt time.Time

	cursor  int
	answers map[int]Answer
	hints   map[int]bool
}

// NewSession starts a session on nodeID. Locked nodes cannot be played;
// completed and partial nodes can be replayed.
func NewSession(p learnpath.Path, nodeID string) (*Session, error) {
	node, ok := p.Node(nodeID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, nodeID)
	}
	if node.Status == learnpath.StatusLocked {
		return nil, fmt.Errorf("%w: %s", ErrNodeLocked, nodeID)
	}

	return &Session{
		ID:        uuid.NewString(),
		TopicID:   p.TopicID,
		NodeID:    node.ID,
		NodeType:  node.Type,
		SkillGoal: node.SkillGoal,
		Frames:    append([]frames.Frame(nil), node.Frames...),
		StartedAt: time.Now(),
		answers:   make(map[int]Answer),
		hints:     make(map[int]bool),
	}, nil
}

// Current returns the frame under the cursor.
func (s *Session) Current() (frames.Frame, bool) {
	if s.Done() {
		return frames.Frame{}, false
	}
	return s.Frames[s.cursor], true
}

// Position returns the 0-based cursor and the number of frames.
func (s *Session) Position() (int, int) {
	return s.cursor, len(s.Frames)
}

// Next advances to the following frame. Unanswered assessments are left
// unanswered and count as incorrect when the session finishes.
func (s *Session) Next() {
	if s.cursor < len(s.Frames) {
		s.cursor++
	}
}

// Done reports whether every frame has been shown.
func (s *Session) Done() bool {
	return s.cursor >= len(s.Frames)
}

// Answered returns the recorded answer for the current frame, if any.
func (s *Session) Answered() (Answer, bool) {
	a, ok := s.answers[s.cursor]
	return a, ok
}

// AnswerMCQ records a choice for the current multiple-choice frame.
func (s *Session) AnswerMCQ(choice int) (bool, error) {
	f, err := s.assessment()
	if err != nil {
		return false, err
	}
	mcq, ok := f.Content.(frames.MCQContent)
	if !ok {
		return false, fmt.Errorf("frame %s is %s, not multiple choice", f.ID, f.Type)
	}
	return s.record(f, fmt.Sprint(choice), mcq.IsCorrect(choice)), nil
}

// AnswerNumerical records a typed answer for the current numerical frame.
func (s *Session) AnswerNumerical(input string) (bool, error) {
	f, err := s.assessment()
	if err != nil {
		return false, err
	}
	num, ok := f.Content.(frames.NumericalContent)
	if !ok {
		return false, fmt.Errorf("frame %s is %s, not numerical", f.ID, f.Type)
	}
	return s.record(f, strings.TrimSpace(input), num.IsCorrect(input)), nil
}

// AnswerShort records the learner's self-grade for a short-explain frame,
// after they have compared their answer with the sample answer.
func (s *Session) AnswerShort(selfGraded bool) (bool, error) {
	f, err := s.assessment()
	if err != nil {
		return false, err
	}
	if _, ok := f.Content.(frames.ShortExplainContent); !ok {
		return false, fmt.Errorf("frame %s is %s, not short explain", f.ID, f.Type)
	}
	return s.record(f, fmt.Sprint(selfGraded), selfGraded), nil
}

// UseHint returns the hint for the current assessment frame and counts it
// once per frame.
func (s *Session) UseHint() (string, error) {
	f, ok := s.Current()
	if !ok {
		return "", ErrSessionDone
	}
	if !f.IsAssessment() {
		return "", ErrNotAssessment
	}
	s.hints[s.cursor] = true
	return frames.Hint(f.Content), nil
}

func (s *Session) assessment() (frames.Frame, error) {
	f, ok := s.Current()
	if !ok {
		return frames.Frame{}, ErrSessionDone
	}
	if !f.IsAssessment() {
		return frames.Frame{}, ErrNotAssessment
	}
	if _, done := s.answers[s.cursor]; done {
		return frames.Frame{}, ErrAlreadyAnswered
	}
	return f, nil
}

func (s *Session) record(f frames.Frame, response string, correct bool) bool {
	s.answers[s.cursor] = Answer{FrameID: f.ID, Response: response, Correct: correct}
	return correct
}

// Tally counts the answers recorded so far.
func (s *Session) Tally() Tally {
	var t Tally
	for i, f := range s.Frames {
		if !f.IsAssessment() {
			continue
		}
		t.Total++
		if a, ok := s.answers[i]; ok {
			t.Answered++
			if a.Correct {
				t.Correct++
			}
		}
		if s.hints[i] {
			t.HintsUsed++
		}
	}
	return t
}

// Finish scores the session. Leaning on hints for more than half of the
// assessments flags the learner for support even when the answers are right.
func (s *Session) Finish(cfg learnpath.ScoringConfig) learnpath.Outcome {
	t := s.Tally()
	out := learnpath.ScoreAnswers(t.Correct, t.Total, cfg)
	if out.Completed && t.HintsUsed*2 > t.Total {
		out.NeedsSupport = true
	}
	return out
}

// Elapsed returns the time since the session started.
func (s *Session) Elapsed() time.Duration {
	return time.Since(s.StartedAt)
}

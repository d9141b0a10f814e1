package frames

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Content is the payload of a frame. The concrete type is fixed by the
// frame's FrameType (see FrameType.ContentKind).
type Content interface {
	Kind() ContentKind
	content()
}

// TextContent is a title and body, used by teaching and exit frames.
type TextContent struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// MCQContent is a multiple-choice question. CorrectAnswer is a zero-based
// index into Options.
type MCQContent struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correctAnswer"`
	Hint          string   `json:"hint"`
	Explanation   string   `json:"explanation"`
}

// NumericalContent is a question answered with a number.
type NumericalContent struct {
	Question    string  `json:"question"`
	Answer      float64 `json:"answer"`
	Tolerance   float64 `json:"tolerance"`
	Unit        string  `json:"unit,omitempty"`
	Hint        string  `json:"hint"`
	Explanation string  `json:"explanation"`
}

// ShortExplainContent asks for a free-text explanation. It is self-graded
// against SampleAnswer.
type ShortExplainContent struct {
	Prompt       string `json:"prompt"`
	SampleAnswer string `json:"sampleAnswer"`
	Hint         string `json:"hint"`
}

func (TextContent) Kind() ContentKind         { return KindText }
func (MCQContent) Kind() ContentKind          { return KindMCQ }
func (NumericalContent) Kind() ContentKind    { return KindNumerical }
func (ShortExplainContent) Kind() ContentKind { return KindShortExplain }

func (TextContent) content()         {}
func (MCQContent) content()          {}
func (NumericalContent) content()    {}
func (ShortExplainContent) content() {}

// IsCorrect reports whether choice is the correct option.
func (c MCQContent) IsCorrect(choice int) bool {
	return choice == c.CorrectAnswer
}

// IsCorrect parses input as a number and compares it to Answer within
// Tolerance. A trailing unit is ignored.
func (c NumericalContent) IsCorrect(input string) bool {
	s := strings.TrimSpace(input)
	if c.Unit != "" {
		s = strings.TrimSpace(strings.TrimSuffix(s, c.Unit))
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return false
	}
	return math.Abs(v-c.Answer) <= c.Tolerance
}

// Hint returns the hint of an assessment payload, or "" for text content.
func Hint(c Content) string {
	switch v := c.(type) {
	case MCQContent:
		return v.Hint
	case NumericalContent:
		return v.Hint
	case ShortExplainContent:
		return v.Hint
	}
	return ""
}

type frameJSON struct {
	ID      string          `json:"id"`
	Type    FrameType       `json:"type"`
	Stage   Stage           `json:"stage"`
	Order   int             `json:"order"`
	Content json.RawMessage `json:"content"`
}

// MarshalJSON encodes the frame with its content inline under "content".
func (f Frame) MarshalJSON() ([]byte, error) {
	if f.Content != nil && f.Content.Kind() != f.Type.ContentKind() {
		return nil, fmt.Errorf("frame %s: %s content on %s frame", f.ID, f.Content.Kind(), f.Type)
	}
	raw, err := json.Marshal(f.Content)
	if err != nil {
		return nil, fmt.Errorf("marshal content: %w", err)
	}
	return json.Marshal(frameJSON{
		ID:      f.ID,
		Type:    f.Type,
		Stage:   f.Stage,
		Order:   f.Order,
		Content: raw,
	})
}

// UnmarshalJSON decodes the content payload according to the frame type.
func (f *Frame) UnmarshalJSON(data []byte) error {
	var fj frameJSON
	if err := json.Unmarshal(data, &fj); err != nil {
		return err
	}

	content, err := decodeContent(fj.Type, fj.Content)
	if err != nil {
		return fmt.Errorf("frame %s: %w", fj.ID, err)
	}

	*f = Frame{
		ID:      fj.ID,
		Type:    fj.Type,
		Stage:   fj.Stage,
		Order:   fj.Order,
		Content: content,
	}
	return nil
}

func decodeContent(t FrameType, raw json.RawMessage) (Content, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	dec := func(v any) error {
		d := json.NewDecoder(strings.NewReader(string(raw)))
		d.DisallowUnknownFields()
		return d.Decode(v)
	}

	switch t.ContentKind() {
	case KindText:
		var c TextContent
		if err := dec(&c); err != nil {
			return nil, fmt.Errorf("decode text content: %w", err)
		}
		return c, nil
	case KindMCQ:
		var c MCQContent
		if err := dec(&c); err != nil {
			return nil, fmt.Errorf("decode mcq content: %w", err)
		}
		if c.CorrectAnswer < 0 || c.CorrectAnswer >= len(c.Options) {
			return nil, fmt.Errorf("correctAnswer %d out of range for %d options", c.CorrectAnswer, len(c.Options))
		}
		return c, nil
	case KindNumerical:
		var c NumericalContent
		if err := dec(&c); err != nil {
			return nil, fmt.Errorf("decode numerical content: %w", err)
		}
		return c, nil
	case KindShortExplain:
		var c ShortExplainContent
		if err := dec(&c); err != nil {
			return nil, fmt.Errorf("decode short-explain content: %w", err)
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unknown frame type %q", t)
	}
}

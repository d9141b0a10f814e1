// Package doubts answers a learner's free-form question about the node and
// frame they are looking at.
package doubts

import (
	"errors"

	"github.com/eddge/learnengine/internal/catalog"
	"github.com/eddge/learnengine/internal/frames"
	"github.com/eddge/learnengine/internal/learnpath"
)

// ErrEmptyQuestion is returned for a blank question.
var ErrEmptyQuestion = errors.New("question is empty")

// maxQuestionLen caps, in runes, what is forwarded to the model.
const maxQuestionLen = 1000

// Input is everything the solver knows about the doubt. Frame is nil when
// the question is about the node as a whole.
type Input struct {
	Topic    catalog.Topic
	Node     learnpath.Node
	Frame    *frames.Frame
	Question string

	// Previous holds earlier exchanges in the same conversation, oldest
	// first.
	Previous []Exchange
}

// Exchange is one earlier question and the explanation given for it.
type Exchange struct {
	Question string
	Answer   string
}

// Answer is the solver's reply.
type Answer struct {
	Explanation   string   `json:"explanation"`
	Steps         []string `json:"steps"`
	CheckQuestion string   `json:"checkQuestion"`
}

type Config struct {
	MaxTokens   int
	Temperature float64
	// MaxPrevious bounds how many earlier exchanges are replayed.
	MaxPrevious int
}

func DefaultConfig() Config {
	return Config{
		MaxTokens:   700,
		Temperature: 0.3,
		MaxPrevious: 3,
	}
}

package doubts

import (
	"context"
	"fmt"
	"strings"

	"github.com/eddge/learnengine/internal/llm"
)

// Service answers doubts with an LLM provider.
type Service struct {
	provider llm.Provider
	cfg      Config
}

func NewService(provider llm.Provider, cfg Config) *Service {
	return &Service{provider: provider, cfg: cfg}
}

type answerOutput struct {
	Explanation   string   `json:"explanation"`
	Steps         []string `json:"steps"`
	CheckQuestion string   `json:"check_question"`
}

// Ask sends one doubt to the model and returns its structured answer.
func (s *Service) Ask(ctx context.Context, in Input) (*Answer, error) {
	q := strings.TrimSpace(in.Question)
	if q == "" {
		return nil, ErrEmptyQuestion
	}
	if r := []rune(q); len(r) > maxQuestionLen {
		q = string(r[:maxQuestionLen])
	}
	if n := s.cfg.MaxPrevious; len(in.Previous) > n {
		in.Previous = in.Previous[len(in.Previous)-n:]
	}

	req := llm.UserPrompt(systemPrompt, buildUserMessage(in, q))
	req.Schema = DoubtSchema
	req.MaxTokens = s.cfg.MaxTokens
	req.Temperature = s.cfg.Temperature

	resp, err := s.provider.Generate(llm.WithPurpose(ctx, llm.PurposeDoubt), req)
	if err != nil {
		return nil, fmt.Errorf("answer doubt on %s: %w", in.Node.ID, err)
	}

	var out answerOutput
	if err := resp.Decode(&out); err != nil {
		return nil, fmt.Errorf("parse doubt answer: %w", err)
	}
	steps := make([]string, 0, len(out.Steps))
	for _, st := range out.Steps {
		if st = strings.TrimSpace(st); st != "" {
			steps = append(steps, st)
		}
	}
	return &Answer{
		Explanation:   strings.TrimSpace(out.Explanation),
		Steps:         steps,
		CheckQuestion: strings.TrimSpace(out.CheckQuestion),
	}, nil
}

package learn

import (
	"fmt"
	"strings"

	"github.com/eddge/learnengine/internal/frames"
	"github.com/eddge/learnengine/internal/learnpath"
	"github.com/eddge/learnengine/internal/ui/components"
	"github.com/eddge/learnengine/internal/ui/layout"
	"github.com/eddge/learnengine/internal/ui/theme"
)

func (s *LearnScreen) View(width, height int) string {
	textWidth := min(width-6, 90)

	var body string
	switch {
	case s.err != nil:
		body = theme.Incorrect.Render(s.err.Error()) + "\n\n" + theme.Hint.Render("Press Enter to go back.")
	case s.phase == phaseSaving:
		body = theme.Hint.Render("Saving your progress...")
	case s.phase == phaseDone:
		body = s.renderSummary(textWidth)
	default:
		body = s.renderFrame(textWidth)
	}

	if s.doubt.open {
		body += "\n\n" + s.renderDoubt(textWidth)
	}
	return indent(body)
}

func (s *LearnScreen) renderFrame(width int) string {
	f, ok := s.session.Current()
	if !ok {
		return ""
	}
	i, n := s.session.Position()

	var b strings.Builder
	bar := components.NewProgressBar("", float64(i)/float64(n), false, min(width, 40))
	b.WriteString(bar.View() + "  " + theme.Subtitle.Render(fmt.Sprintf("%s · %s", stageLabel(f.Stage), f.Type.Label())) + "\n\n")

	switch c := f.Content.(type) {
	case frames.TextContent:
		b.WriteString(theme.Title.Render(c.Title) + "\n\n")
		b.WriteString(theme.Body.Render(layout.Wrap(c.Body, width)) + "\n")

	case frames.MCQContent:
		b.WriteString(s.mc.View())
		if s.answered {
			b.WriteString("\n" + verdict(s.correct) + "\n" + theme.Body.Render(layout.Wrap(c.Explanation, width)) + "\n")
		}

	case frames.NumericalContent:
		b.WriteString(theme.Body.Bold(true).Render(layout.Wrap(c.Question, width)) + "\n\n")
		b.WriteString(s.input.View() + "\n")
		if s.answered {
			answer := fmt.Sprintf("Answer: %g", c.Answer)
			if c.Unit != "" {
				answer += " " + c.Unit
			}
			b.WriteString("\n" + verdict(s.correct) + "  " + theme.Subtitle.Render(answer) + "\n")
			b.WriteString(theme.Body.Render(layout.Wrap(c.Explanation, width)) + "\n")
		}

	case frames.ShortExplainContent:
		b.WriteString(theme.Body.Bold(true).Render(layout.Wrap(c.Prompt, width)) + "\n\n")
		if !s.revealed {
			b.WriteString(theme.Hint.Render("Say or write your answer, then press Enter to compare.") + "\n")
			break
		}
		b.WriteString(theme.Subtitle.Render("Sample answer") + "\n")
		b.WriteString(theme.Body.Render(layout.Wrap(c.SampleAnswer, width)) + "\n\n")
		if !s.answered {
			b.WriteString(theme.Selected.Render("Did yours cover the same points? (y/n)") + "\n")
		} else {
			b.WriteString(verdict(s.correct) + "\n")
		}
	}

	if s.hint != "" {
		b.WriteString("\n" + theme.Hint.Render("Hint: "+s.hint) + "\n")
	}
	return b.String()
}

func (s *LearnScreen) renderSummary(width int) string {
	t := s.session.Tally()
	o := s.outcome

	var b strings.Builder
	b.WriteString(theme.Title.Render("Session complete") + "\n\n")
	b.WriteString(theme.Body.Render(fmt.Sprintf("Score: %d of %d correct (%d%%)", t.Correct, t.Total, o.ConfidenceScore)) + "\n")
	if t.HintsUsed > 0 {
		b.WriteString(theme.Subtitle.Render(fmt.Sprintf("Hints used: %d", t.HintsUsed)) + "\n")
	}

	switch {
	case !o.Completed:
		b.WriteString("\n" + theme.Hint.Render("No answers were recorded, so this step stays open.") + "\n")
	case o.Partial:
		b.WriteString("\n" + theme.Status(learnpath.StatusPartial).Render("Partly done. The next step is open, but come back to firm this one up.") + "\n")
	default:
		b.WriteString("\n" + theme.Correct.Render("Step completed.") + "\n")
	}
	if o.NeedsSupport {
		b.WriteString(theme.Hint.Render("Consider revisiting the concept frames or asking a doubt.") + "\n")
	}

	if s.result != nil {
		if unlocked := unlockedNodes(s.result.Transitions); len(unlocked) > 0 {
			b.WriteString("\n" + theme.Selected.Render("Unlocked: "+strings.Join(unlocked, ", ")) + "\n")
		}
		bar := components.NewProgressBar("Mastery", float64(s.result.Path.MasteryScore)/100, true, min(width, 50))
		b.WriteString("\n" + bar.View() + "\n")
	}
	b.WriteString("\n" + theme.Hint.Render("Press Enter to return to the path.") + "\n")
	return b.String()
}

func unlockedNodes(ts []learnpath.Transition) []string {
	var out []string
	for _, tr := range ts {
		if tr.From == learnpath.StatusLocked && tr.To == learnpath.StatusAvailable {
			out = append(out, tr.NodeID)
		}
	}
	return out
}

func (s *LearnScreen) renderDoubt(width int) string {
	var b strings.Builder
	b.WriteString(theme.Selected.Render("Ask a doubt") + "\n")
	b.WriteString(s.doubt.input.View() + "\n")
	switch {
	case s.doubt.pending:
		b.WriteString(theme.Hint.Render("Thinking...") + "\n")
	case s.doubt.err != nil:
		b.WriteString(theme.Incorrect.Render("Could not answer: "+s.doubt.err.Error()) + "\n")
	case s.doubt.answer != nil:
		a := s.doubt.answer
		b.WriteString("\n" + theme.Body.Render(layout.Wrap(a.Explanation, width)) + "\n")
		for i, step := range a.Steps {
			b.WriteString(theme.Body.Render(layout.Wrap(fmt.Sprintf("%d. %s", i+1, step), width)) + "\n")
		}
		if a.CheckQuestion != "" {
			b.WriteString("\n" + theme.Hint.Render("Check yourself: "+a.CheckQuestion) + "\n")
		}
	}
	return theme.Card.Width(width).Render(strings.TrimRight(b.String(), "\n"))
}

func verdict(correct bool) string {
	if correct {
		return theme.Correct.Render("✓ Correct")
	}
	return theme.Incorrect.Render("✗ Not quite")
}

func stageLabel(st frames.Stage) string {
	switch st {
	case frames.StageFoundation:
		return "Foundation"
	case frames.StageConcept:
		return "Concept"
	case frames.StageAce:
		return "Ace it"
	case frames.StageExit:
		return "Wrap up"
	}
	return string(st)
}

func indent(s string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		if l != "" {
			lines[i] = "  " + l
		}
	}
	return "\n" + strings.Join(lines, "\n")
}

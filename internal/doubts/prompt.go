package doubts

import (
	"fmt"
	"strings"

	"github.com/eddge/learnengine/internal/frames"
)

const systemPrompt = `You are a patient tutor for students preparing for competitive science and maths exams. A student is studying one step of a learning path and has a doubt. Answer exactly what was asked, at the level of the step they are on.`

func buildUserMessage(in Input, question string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Topic: %s (%s)\n", in.Topic.Name, in.Topic.SubjectID)
	if in.Topic.Difficulty != "" {
		fmt.Fprintf(&b, "Difficulty: %s\n", in.Topic.Difficulty)
	}
	fmt.Fprintf(&b, "Step: %s [%s]\n", in.Node.SkillGoal, in.Node.Type)

	if in.Frame != nil {
		fmt.Fprintf(&b, "\nThe student is looking at a %q frame:\n", in.Frame.Type.Label())
		b.WriteString(describeFrame(*in.Frame))
	}

	if len(in.Previous) > 0 {
		b.WriteString("\nEarlier in this conversation:\n")
		for _, e := range in.Previous {
			fmt.Fprintf(&b, "Q: %s\nA: %s\n", e.Question, e.Answer)
		}
	}

	fmt.Fprintf(&b, "\nDoubt: %s\n", question)
	b.WriteString(`
Instructions:
1. Explain in plain language first, then give worked steps if the doubt needs working.
2. If the frame is a question, do not reveal the final answer; guide the student towards it.
3. End with one short check question the student can answer in a line.
4. Use plain ASCII for maths. No LaTeX. Write powers as x^2 and fractions as a/b.`)
	return b.String()
}

func describeFrame(f frames.Frame) string {
	switch c := f.Content.(type) {
	case frames.TextContent:
		return fmt.Sprintf("%s\n%s\n", c.Title, c.Body)
	case frames.MCQContent:
		var b strings.Builder
		fmt.Fprintf(&b, "%s\n", c.Question)
		for i, o := range c.Options {
			fmt.Fprintf(&b, "  %c) %s\n", 'A'+i, o)
		}
		return b.String()
	case frames.NumericalContent:
		if c.Unit != "" {
			return fmt.Sprintf("%s (answer in %s)\n", c.Question, c.Unit)
		}
		return c.Question + "\n"
	case frames.ShortExplainContent:
		return c.Prompt + "\n"
	}
	return ""
}

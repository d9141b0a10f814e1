package frames

import "fmt"

type template struct {
	typ   FrameType
	build func(goal string) Content
}

func text(title, body string) func(string) Content {
	return func(goal string) Content {
		return TextContent{
			Title: fmt.Sprintf(title, goal),
			Body:  fmt.Sprintf(body, goal),
		}
	}
}

var foundationTemplates = []template{
	{TypeWhat, text(
		"What it means to %s",
		"In this node you will learn to %s. We start from the plain-language idea before any symbols appear.",
	)},
	{TypeWhyReal, text(
		"Why you need to %s in real life",
		"Engineers, doctors and everyday decisions rely on being able to %s. Look for it around you this week.",
	)},
	{TypeWhyExam, text(
		"Why exams ask you to %s",
		"Board papers regularly test whether you can %s, usually as a short question followed by a numerical.",
	)},
	{TypeCuriosity, text(
		"A puzzle before you %s",
		"Before reading on, guess: what would change if you could not %s? Keep your guess in mind.",
	)},
}

// The second example frame repeats the first slot on purpose: concept
// nodes show two worked examples around the equation and intuition frames.
var conceptTemplates = []template{
	{TypeDefinition, text(
		"Definition: what it takes to %s",
		"Formally, to %s means applying a precise rule to a well-defined quantity. Each term in the rule has a unit.",
	)},
	{TypeExample, text(
		"Worked example: how to %s",
		"Step 1: write down what is given. Step 2: pick the rule needed to %s. Step 3: substitute and simplify.",
	)},
	{TypeEquation, text(
		"The key equation you need to %s",
		"Every quantity needed to %s appears in one relation. Learn which symbol stands for what before memorising it.",
	)},
	{TypeIntuition, text(
		"Intuition: what happens when you %s",
		"Picture the idea as a balance: when you %s, changing one side forces a matching change on the other.",
	)},
	{TypeExample, text(
		"Another example: how to %s",
		"Try the same three steps on a harder case to %s. Compare each step with the first example.",
	)},
}

var aceTemplates = []template{
	{TypeMCQ, func(goal string) Content {
		return MCQContent{
			Question:      fmt.Sprintf("Which statement best describes how to %s?", goal),
			Options:       []string{"Apply the defining rule to the given quantities", "Guess and check without a rule", "Memorise the final answer", "Ignore the units"},
			CorrectAnswer: 0,
			Hint:          "Go back to the definition frame.",
			Explanation:   "The defining rule is what connects the given quantities to the answer.",
		}
	}},
	{TypeMCQ, func(goal string) Content {
		return MCQContent{
			Question:      fmt.Sprintf("What is the most common first step when you %s?", goal),
			Options:       []string{"Write the final answer", "List what is given and what is asked", "Draw a graph", "Convert everything to percentages"},
			CorrectAnswer: 1,
			Hint:          "Both worked examples started the same way.",
			Explanation:   "Listing knowns and unknowns tells you which rule to use.",
		}
	}},
	{TypeNumerical, func(goal string) Content {
		return NumericalContent{
			Question:    fmt.Sprintf("Using the key relation to %s: if each of 4 equal parts is 12.5, what is the total?", goal),
			Answer:      50,
			Tolerance:   0.01,
			Hint:        "Multiply the size of one part by the number of parts.",
			Explanation: "4 x 12.5 = 50.",
		}
	}},
	{TypeShortExplain, func(goal string) Content {
		return ShortExplainContent{
			Prompt:       fmt.Sprintf("In two sentences, explain to a friend how to %s.", goal),
			SampleAnswer: "State the rule, then say what each quantity in it means and how you substitute values.",
			Hint:         "Use the words from the definition frame.",
		}
	}},
}

var exitTemplates = []template{
	{TypeTakeaway, text(
		"Takeaway: you can %s",
		"You can now %s. Revisit the worked examples before moving to the next node.",
	)},
	{TypeFormulas, text(
		"Formulas to remember to %s",
		"Write the key relation needed to %s on your revision sheet with the unit of every symbol.",
	)},
	{TypeMistakes, text(
		"Common mistakes when you %s",
		"Students often drop units, mix up given and asked quantities, or skip the first step when they %s.",
	)},
}

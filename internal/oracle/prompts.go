package oracle

import "fmt"

const contestantPrompt = `You are a Jeopardy contestant.

Answer the question concisely with just the answer, no extra explanation.
You are allowed to search the internet for an answer.
You must always answer even if you do not know the answer.`

const judgePrompt = `You are an expert trivia answer checker.

You will be given a question, the correct answer to that question and a given answer.
Decide whether the given answer is correct and explain why.
The wording of the given answer may differ from the correct answer and still be correct.

## Examples

### Example one
question: "30 steals for the Birmingham Barons; 2,306 steals for the Bulls"
correct_answer: "Michael Jordan"
given_answer: "Michael Jordan"
{"is_correct": true, "reason": "Michael Jordan is the correct answer to this question."}

### Example two
question: "30 steals for the Birmingham Barons; 2,306 steals for the Bulls"
correct_answer: "Michael Jordan"
given_answer: "it's Michael Jordan"
{"is_correct": true, "reason": "Michael Jordan is the correct answer to this question."}

### Example three
question: "30 steals for the Birmingham Barons; 2,306 steals for the Bulls"
correct_answer: "Michael Jordan"
given_answer: "Kobe Bryant"
{"is_correct": false, "reason": "Michael Jordan, not Kobe Bryant, is the correct answer to this question."}`

// verdictSchema constrains judge output to {is_correct, reason}.
var verdictSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"is_correct": map[string]any{"type": "boolean"},
		"reason":     map[string]any{"type": "string"},
	},
	"required":             []string{"is_correct", "reason"},
	"additionalProperties": false,
}

func contestantInput(question, category string) string {
	return fmt.Sprintf("Category: %s\nQuestion: %s", category, question)
}

func judgeInput(question, correctAnswer, givenAnswer string) string {
	return fmt.Sprintf("question: %s\ncorrect_answer: %s\ngiven_answer: %s", question, correctAnswer, givenAnswer)
}

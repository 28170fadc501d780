// Package oracle decides trivia answers and their correctness by delegating
// to an external language model. It holds no correctness logic of its own.
package oracle

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/jeopardy/internal/model"
)

// Oracle generates and judges Jeopardy! answers.
type Oracle interface {
	// GenerateAnswer produces a short candidate answer for a clue.
	GenerateAnswer(ctx context.Context, question, category string) (string, error)

	// JudgeAnswer decides whether givenAnswer matches correctAnswer for the
	// clue, tolerating paraphrase.
	JudgeAnswer(ctx context.Context, question, correctAnswer, givenAnswer string) (model.Verdict, error)
}

var (
	// ErrNoAnswer is returned when the provider response carries no usable text.
	ErrNoAnswer = eris.New("oracle: no answer in response")

	// ErrUndetermined is returned when the provider response cannot be read
	// as a verdict.
	ErrUndetermined = eris.New("oracle: unable to determine correctness")
)

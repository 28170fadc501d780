// Package store provides read access to trivia questions and the bulk write
// path used by ingestion.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/jeopardy/internal/model"
)

// ErrNotFound is returned when no question matches a lookup.
var ErrNotFound = eris.New("store: question not found")

// Table is the name of the questions table in both drivers.
const Table = "jeopardy_questions"

// insertColumns are the columns written by InsertQuestions; id is assigned
// by the database.
var insertColumns = []string{"show_number", "air_date", "round", "category", "value_in_dollars", "question", "answer"}

// Store defines persistence for trivia questions.
type Store interface {
	// FindRandom returns one question chosen uniformly at random among all
	// questions with exactly this round and value.
	FindRandom(ctx context.Context, round string, value model.DollarValue) (*model.Question, error)
	FindByID(ctx context.Context, id int64) (*model.Question, error)
	// ListBoards returns every distinct (round, value) pair with its count.
	ListBoards(ctx context.Context) ([]model.Board, error)

	// InsertQuestions writes one batch atomically and returns the number of
	// rows inserted. On error nothing from the batch is persisted.
	InsertQuestions(ctx context.Context, questions []model.Question) (int64, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}

// nullableValue converts a DollarValue to a driver argument (nil for no
// value).
func nullableValue(v model.DollarValue) any {
	if !v.Valid {
		return nil
	}
	return v.Amount
}

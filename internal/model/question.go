package model

import "time"

// AirDateLayout is the on-disk and wire format of a show's air date.
const AirDateLayout = "2006-01-02"

// Question is a single trivia clue as stored in jeopardy_questions.
// Rows are written by ingestion only and are never mutated afterwards.
// Callers expose it through QuestionView, which omits Answer.
type Question struct {
	ID         int64
	ShowNumber int
	AirDate    time.Time
	Round      string
	Category   string
	Value      DollarValue
	Text       string
	Answer     string
}

// Verdict is the oracle's judgment of a candidate answer.
type Verdict struct {
	IsCorrect bool
	Reason    string
}

// AgentPlay is the outcome of one autonomous play round.
type AgentPlay struct {
	AgentName string
	Question  Question
	AIAnswer  string
	Verdict   Verdict
}

// Board is a distinct (round, value) pair together with the number of
// clues available for it.
type Board struct {
	Round string      `json:"round"`
	Value DollarValue `json:"value"`
	Count int64       `json:"count"`
}

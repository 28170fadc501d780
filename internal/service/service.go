// Package service implements the trivia operations shared by every
// transport: fetching a question, verifying an answer and autonomous play.
package service

import (
	"context"
	"errors"
	"math/rand/v2"

	"go.uber.org/zap"

	"github.com/sells-group/jeopardy/internal/model"
	"github.com/sells-group/jeopardy/internal/oracle"
	"github.com/sells-group/jeopardy/internal/store"
)

// AgentName identifies autonomous play in its outcome.
const AgentName = "AI-Bot"

// AgentRounds and AgentValues are the boards autonomous play draws from.
var (
	AgentRounds = []string{"Jeopardy!", "Double Jeopardy!"}
	AgentValues = []string{"$200", "$400", "$600", "$800", "$1000"}
)

// Service orchestrates the question store and the judgment oracle. It holds
// no per-request state and is safe for concurrent use.
type Service struct {
	store  store.Store
	oracle oracle.Oracle
	intn   func(n int) int
}

// Option configures a Service.
type Option func(*Service)

// WithRand makes autonomous play draw from r. The caller must not share r
// across goroutines, since *rand.Rand is not safe for concurrent use.
func WithRand(r *rand.Rand) Option {
	return func(s *Service) {
		s.intn = r.IntN
	}
}

// New creates a Service.
func New(st store.Store, or oracle.Oracle, opts ...Option) *Service {
	s := &Service{
		store:  st,
		oracle: or,
		intn:   rand.IntN,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FetchQuestion returns a random question for the exact (round, value) pair.
// value is "None" or a dollar amount such as "$200" or "$1,000".
func (s *Service) FetchQuestion(ctx context.Context, round, value string) (*model.Question, error) {
	v, err := model.ParseDollarValue(value)
	if err != nil {
		zap.L().Debug("service: bad value selector", zap.String("value", value))
		return nil, &Error{Kind: KindBadInput, Message: MsgInvalidValue, Err: err}
	}

	q, err := s.store.FindRandom(ctx, round, v)
	if errors.Is(err, store.ErrNotFound) {
		zap.L().Debug("service: no question for pair",
			zap.String("round", round),
			zap.String("value", value),
		)
		return nil, notFoundForPair(round, value, err)
	}
	if err != nil {
		zap.L().Error("service: find random question",
			zap.String("round", round),
			zap.String("value", value),
			zap.Error(err),
		)
		return nil, internal(err)
	}
	return q, nil
}

// VerifyAnswer judges userAnswer against the stored answer of questionID.
// The verdict is the oracle's, unmodified.
func (s *Service) VerifyAnswer(ctx context.Context, questionID int64, userAnswer string) (model.Verdict, error) {
	q, err := s.store.FindByID(ctx, questionID)
	if errors.Is(err, store.ErrNotFound) {
		zap.L().Debug("service: unknown question id", zap.Int64("question_id", questionID))
		return model.Verdict{}, notFoundForID(questionID, err)
	}
	if err != nil {
		zap.L().Error("service: find question by id",
			zap.Int64("question_id", questionID),
			zap.Error(err),
		)
		return model.Verdict{}, internal(err)
	}

	return s.judge(ctx, q, userAnswer)
}

func (s *Service) judge(ctx context.Context, q *model.Question, answer string) (model.Verdict, error) {
	verdict, err := s.oracle.JudgeAnswer(ctx, q.Text, q.Answer, answer)
	if err != nil {
		zap.L().Warn("service: judging failed",
			zap.Int64("question_id", q.ID),
			zap.Error(err),
		)
		return model.Verdict{}, &Error{Kind: KindJudgingUnavailable, Message: MsgJudgingUnavailable, Err: err}
	}
	return verdict, nil
}

// AgentPlay picks a board uniformly at random, has the oracle answer a
// question from it and judges that answer.
func (s *Service) AgentPlay(ctx context.Context) (*model.AgentPlay, error) {
	round := AgentRounds[s.intn(len(AgentRounds))]
	value := AgentValues[s.intn(len(AgentValues))]

	q, err := s.FetchQuestion(ctx, round, value)
	if err != nil {
		if KindOf(err) == KindNotFound {
			zap.L().Info("service: agent drew an empty board",
				zap.String("round", round),
				zap.String("value", value),
			)
		}
		return nil, err
	}

	answer, err := s.oracle.GenerateAnswer(ctx, q.Text, q.Category)
	if err != nil {
		zap.L().Error("service: generate answer",
			zap.Int64("question_id", q.ID),
			zap.Error(err),
		)
		return nil, &Error{Kind: KindGenerationFailed, Message: MsgGenerationFailed, Err: err}
	}

	verdict, err := s.judge(ctx, q, answer)
	if err != nil {
		return nil, err
	}

	return &model.AgentPlay{
		AgentName: AgentName,
		Question:  *q,
		AIAnswer:  answer,
		Verdict:   verdict,
	}, nil
}

// Boards lists every (round, value) pair that has questions.
func (s *Service) Boards(ctx context.Context) ([]model.Board, error) {
	boards, err := s.store.ListBoards(ctx)
	if err != nil {
		zap.L().Error("service: list boards", zap.Error(err))
		return nil, internal(err)
	}
	return boards, nil
}

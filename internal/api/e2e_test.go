package api

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/jeopardy/internal/model"
	"github.com/sells-group/jeopardy/internal/service"
	"github.com/sells-group/jeopardy/internal/store"
)

// stubOracle returns canned results; it never compares answers itself.
type stubOracle struct {
	answer      string
	answerErr   error
	verdict     model.Verdict
	verdictErr  error
	judgedGiven []string
}

func (o *stubOracle) GenerateAnswer(_ context.Context, _, _ string) (string, error) {
	return o.answer, o.answerErr
}

func (o *stubOracle) JudgeAnswer(_ context.Context, _, _, given string) (model.Verdict, error) {
	o.judgedGiven = append(o.judgedGiven, given)
	return o.verdict, o.verdictErr
}

func newSQLiteStore(t *testing.T) *store.SQLiteStore {
	t.Helper()
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func galileoRow() model.Question {
	return model.Question{
		ShowNumber: 4680,
		AirDate:    time.Date(2004, 12, 31, 0, 0, 0, 0, time.UTC),
		Round:      "Jeopardy!",
		Category:   "HISTORY",
		Value:      model.Dollars(200),
		Text:       "For the last 8 years of his life, Galileo was under house arrest for espousing this man's theory",
		Answer:     "Copernicus",
	}
}

func newE2ERouter(t *testing.T, or *stubOracle, rows ...model.Question) http.Handler {
	t.Helper()
	st := newSQLiteStore(t)
	if len(rows) > 0 {
		_, err := st.InsertQuestions(context.Background(), rows)
		require.NoError(t, err)
	}
	return NewRouter(RouterConfig{Trivia: service.New(st, or), Health: st})
}

func TestE2E_FetchQuestion(t *testing.T) {
	h := newE2ERouter(t, &stubOracle{}, galileoRow())

	rec, body := do(t, h, http.MethodGet, "/question?round=Jeopardy!&value=$200", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, body["question_id"])
	assert.Equal(t, "$200", body["value"])

	rec, body = do(t, h, http.MethodGet, "/question?round=Jeopardy!&value=$9999", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "No question found for round 'Jeopardy!' and value '$9999'", body["detail"])

	rec, body = do(t, h, http.MethodGet, "/question?round=Jeopardy!&value=bogus", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid value format", body["detail"])
}

func TestE2E_VerifyAnswer(t *testing.T) {
	or := &stubOracle{verdict: model.Verdict{IsCorrect: true, Reason: "matches"}}
	h := newE2ERouter(t, or, galileoRow())

	rec, body := do(t, h, http.MethodPost, "/verify-answer", `{"question_id": 1, "user_answer": "Copernicus"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["is_correct"])
	assert.Equal(t, "matches", body["ai_response"])

	rec, body = do(t, h, http.MethodPost, "/verify-answer", `{"question_id": 999, "user_answer": "x"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "No question found for ID 999", body["detail"])

	rec, _ = do(t, h, http.MethodPost, "/verify-answer", `{"user_answer": "x"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	assert.Equal(t, []string{"Copernicus"}, or.judgedGiven)
}

func TestE2E_AgentPlay_GenerationFailed(t *testing.T) {
	rows := make([]model.Question, 0, 10)
	for _, round := range service.AgentRounds {
		for _, v := range []int64{200, 400, 600, 800, 1000} {
			q := galileoRow()
			q.Round = round
			q.Value = model.Dollars(v)
			rows = append(rows, q)
		}
	}
	h := newE2ERouter(t, &stubOracle{answerErr: errors.New("provider down")}, rows...)

	rec, body := do(t, h, http.MethodPost, "/agent-play", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Failed to generate answer", body["detail"])
}

func TestE2E_AgentPlay_EmptyDataset(t *testing.T) {
	h := newE2ERouter(t, &stubOracle{answer: "x"})

	rec, body := do(t, h, http.MethodPost, "/agent-play", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, body["detail"], "No question found for round")
}

func TestE2E_Health(t *testing.T) {
	h := newE2ERouter(t, &stubOracle{})
	rec, body := do(t, h, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body["status"])
}

//go:build cucumber

package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/cucumber/godog"

	"github.com/sells-group/jeopardy/internal/model"
	"github.com/sells-group/jeopardy/internal/service"
	"github.com/sells-group/jeopardy/internal/store"
)

// TestTriviaFeatures executes the trivia API feature scenarios via godog.
func TestTriviaFeatures(t *testing.T) {
	suite := godog.TestSuite{
		Name:                "trivia-api",
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:    "pretty",
			Paths:     []string{filepath.Join("testdata", "trivia.feature")},
			Strict:    true,
			TestingT:  t,
			Randomize: 0,
		},
	}
	if suite.Run() != 0 {
		t.Fatalf("non-zero godog status")
	}
}

// InitializeScenario wires step definitions for the trivia feature tests.
func InitializeScenario(ctx *godog.ScenarioContext) {
	state := &triviaState{}
	ctx.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
		return ctx, state.reset()
	})
	ctx.After(func(ctx context.Context, _ *godog.Scenario, _ error) (context.Context, error) {
		state.close()
		return ctx, nil
	})

	ctx.Step(`^the dataset contains a "([^"]+)" clue in round "([^"]+)" worth "([^"]+)" with answer "([^"]+)"$`, state.givenClue)
	ctx.Step(`^the dataset contains every agent board$`, state.givenEveryAgentBoard)
	ctx.Step(`^the oracle judges every answer (correct|incorrect) because "([^"]*)"$`, state.givenVerdict)
	ctx.Step(`^the oracle generates the answer "([^"]*)"$`, state.givenAnswer)
	ctx.Step(`^the oracle cannot generate answers$`, state.givenGenerationFailure)
	ctx.Step(`^I GET "([^"]*)"$`, state.whenGet)
	ctx.Step(`^I POST "([^"]*)" with body:$`, state.whenPostBody)
	ctx.Step(`^I POST "([^"]*)"$`, state.whenPost)
	ctx.Step(`^the response status is (\d+)$`, state.thenStatus)
	ctx.Step(`^the JSON field "([^"]+)" is "([^"]*)"$`, state.thenField)
	ctx.Step(`^the response does not contain "([^"]*)"$`, state.thenNotContains)
	ctx.Step(`^the oracle was asked to judge "([^"]*)"$`, state.thenJudged)
}

// triviaState holds scenario state for the feature tests.
type triviaState struct {
	dir      string
	store    *store.SQLiteStore
	oracle   *stubOracle
	response *httptest.ResponseRecorder
}

func (s *triviaState) reset() error {
	s.close()
	dir, err := os.MkdirTemp("", "trivia-feature-*")
	if err != nil {
		return err
	}
	st, err := store.NewSQLite(filepath.Join(dir, "trivia.db"))
	if err != nil {
		return err
	}
	if err := st.Migrate(context.Background()); err != nil {
		return err
	}
	s.dir = dir
	s.store = st
	s.oracle = &stubOracle{}
	s.response = nil
	return nil
}

func (s *triviaState) close() {
	if s.store != nil {
		s.store.Close() //nolint:errcheck
		s.store = nil
	}
	if s.dir != "" {
		os.RemoveAll(s.dir) //nolint:errcheck
		s.dir = ""
	}
}

func (s *triviaState) insert(qs ...model.Question) error {
	_, err := s.store.InsertQuestions(context.Background(), qs)
	return err
}

func (s *triviaState) givenClue(category, round, value, answer string) error {
	v, err := model.ParseDollarValue(value)
	if err != nil {
		return err
	}
	return s.insert(model.Question{
		ShowNumber: 4680,
		AirDate:    time.Date(2004, 12, 31, 0, 0, 0, 0, time.UTC),
		Round:      round,
		Category:   category,
		Value:      v,
		Text:       "For the last 8 years of his life, Galileo was under house arrest for espousing this man's theory",
		Answer:     answer,
	})
}

func (s *triviaState) givenEveryAgentBoard() error {
	for _, round := range service.AgentRounds {
		for _, value := range service.AgentValues {
			if err := s.givenClue("HISTORY", round, value, "Copernicus"); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *triviaState) givenVerdict(outcome, reason string) error {
	s.oracle.verdict = model.Verdict{IsCorrect: outcome == "correct", Reason: reason}
	return nil
}

func (s *triviaState) givenAnswer(answer string) error {
	s.oracle.answer = answer
	return nil
}

func (s *triviaState) givenGenerationFailure() error {
	s.oracle.answerErr = errors.New("provider unavailable")
	return nil
}

func (s *triviaState) serve(req *http.Request) {
	h := NewRouter(RouterConfig{Trivia: service.New(s.store, s.oracle), Health: s.store})
	s.response = httptest.NewRecorder()
	h.ServeHTTP(s.response, req)
}

func (s *triviaState) whenGet(path string) error {
	s.serve(httptest.NewRequest(http.MethodGet, "http://example.com"+path, nil))
	return nil
}

func (s *triviaState) whenPostBody(path string, body *godog.DocString) error {
	req := httptest.NewRequest(http.MethodPost, "http://example.com"+path, strings.NewReader(body.Content))
	req.Header.Set("Content-Type", "application/json")
	s.serve(req)
	return nil
}

func (s *triviaState) whenPost(path string) error {
	s.serve(httptest.NewRequest(http.MethodPost, "http://example.com"+path, nil))
	return nil
}

func (s *triviaState) thenStatus(expected int) error {
	if s.response == nil {
		return fmt.Errorf("response not recorded")
	}
	if s.response.Code != expected {
		return fmt.Errorf("expected status %d, got %d: %s", expected, s.response.Code, s.response.Body.String())
	}
	return nil
}

func (s *triviaState) thenField(field, expected string) error {
	if s.response == nil {
		return fmt.Errorf("response not recorded")
	}
	var body map[string]any
	if err := json.Unmarshal(s.response.Body.Bytes(), &body); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	got, ok := body[field]
	if !ok {
		return fmt.Errorf("field %q missing from %s", field, s.response.Body.String())
	}
	if fmt.Sprint(got) != expected {
		return fmt.Errorf("expected %s=%q, got %q", field, expected, fmt.Sprint(got))
	}
	return nil
}

func (s *triviaState) thenNotContains(snippet string) error {
	if strings.Contains(s.response.Body.String(), snippet) {
		return fmt.Errorf("response unexpectedly contains %q", snippet)
	}
	return nil
}

func (s *triviaState) thenJudged(given string) error {
	if !slices.Contains(s.oracle.judgedGiven, given) {
		return fmt.Errorf("oracle never judged %q (judged %v)", given, s.oracle.judgedGiven)
	}
	return nil
}

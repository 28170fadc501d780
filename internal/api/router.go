// Package api exposes the trivia service over HTTP.
package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/sells-group/jeopardy/internal/model"
)

// Trivia is the service surface the handlers call.
type Trivia interface {
	FetchQuestion(ctx context.Context, round, value string) (*model.Question, error)
	VerifyAnswer(ctx context.Context, questionID int64, userAnswer string) (model.Verdict, error)
	AgentPlay(ctx context.Context) (*model.AgentPlay, error)
	Boards(ctx context.Context) ([]model.Board, error)
}

// Pinger reports backend health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// RouterConfig holds the router's dependencies.
type RouterConfig struct {
	Trivia         Trivia
	Health         Pinger
	AllowedOrigins []string
	// ServiceName names the server spans.
	ServiceName string
}

// Handler serves the trivia endpoints.
type Handler struct {
	trivia   Trivia
	health   Pinger
	validate *validator.Validate
}

// NewRouter builds the HTTP handler with middleware and routes mounted.
func NewRouter(cfg RouterConfig) http.Handler {
	h := &Handler{
		trivia:   cfg.Trivia,
		health:   cfg.Health,
		validate: newValidator(),
	}

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(middleware.StripSlashes)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		MaxAge:         300,
	}))

	r.Get("/health", h.Health)
	r.Get("/question", h.GetQuestion)
	r.Post("/verify-answer", h.VerifyAnswer)
	r.Post("/agent-play", h.AgentPlay)
	r.Get("/boards", h.Boards)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeDetail(w, http.StatusNotFound, "Not Found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeDetail(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	})

	name := cfg.ServiceName
	if name == "" {
		name = "jeopardy-api"
	}
	return otelhttp.NewHandler(r, name,
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
	)
}

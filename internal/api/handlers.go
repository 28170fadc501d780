package api

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/sells-group/jeopardy/internal/model"
)

// verifyRequest uses pointers so a missing field is distinguishable from
// a zero value.
type verifyRequest struct {
	QuestionID *int64  `json:"question_id" validate:"required"`
	UserAnswer *string `json:"user_answer" validate:"required"`
}

// Health reports whether the store is reachable.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if h.health != nil {
		if err := h.health.Ping(r.Context()); err != nil {
			zap.L().Warn("api: health check failed", zap.Error(err))
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetQuestion handles GET /question?round=...&value=...
func (h *Handler) GetQuestion(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	if !query.Has("round") || !query.Has("value") {
		writeDetail(w, http.StatusBadRequest, "Query parameters 'round' and 'value' are required")
		return
	}

	q, err := h.trivia.FetchQuestion(r.Context(), query.Get("round"), query.Get("value"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, model.NewQuestionView(q))
}

// VerifyAnswer handles POST /verify-answer.
func (h *Handler) VerifyAnswer(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		zap.L().Debug("api: malformed verify body", zap.Error(err))
		writeDetail(w, http.StatusUnprocessableEntity, "Malformed request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, validationDetail(err))
		return
	}

	verdict, err := h.trivia.VerifyAnswer(r.Context(), *req.QuestionID, *req.UserAnswer)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, model.NewVerdictView(verdict))
}

// AgentPlay handles POST /agent-play.
func (h *Handler) AgentPlay(w http.ResponseWriter, r *http.Request) {
	play, err := h.trivia.AgentPlay(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, model.NewAgentPlayView(play))
}

// Boards handles GET /boards.
func (h *Handler) Boards(w http.ResponseWriter, r *http.Request) {
	boards, err := h.trivia.Boards(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if boards == nil {
		boards = []model.Board{}
	}
	writeJSON(w, http.StatusOK, boards)
}

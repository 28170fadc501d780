package model

// QuestionView is the public shape of a question. The correct answer is
// never exposed.
type QuestionView struct {
	QuestionID int64  `json:"question_id"`
	Round      string `json:"round"`
	Category   string `json:"category"`
	Value      string `json:"value"`
	Question   string `json:"question"`
}

// VerdictView is the public shape of a verdict.
type VerdictView struct {
	IsCorrect  bool   `json:"is_correct"`
	AIResponse string `json:"ai_response"`
}

// AgentPlayView is the public shape of an autonomous play outcome.
type AgentPlayView struct {
	AgentName  string `json:"agent_name"`
	QuestionID int64  `json:"question_id"`
	Round      string `json:"round"`
	Category   string `json:"category"`
	Value      string `json:"value"`
	Question   string `json:"question"`
	AIAnswer   string `json:"ai_answer"`
	IsCorrect  bool   `json:"is_correct"`
	AIResponse string `json:"ai_response"`
}

// NewQuestionView renders q for callers.
func NewQuestionView(q *Question) QuestionView {
	return QuestionView{
		QuestionID: q.ID,
		Round:      q.Round,
		Category:   q.Category,
		Value:      q.Value.String(),
		Question:   q.Text,
	}
}

// NewVerdictView renders v for callers.
func NewVerdictView(v Verdict) VerdictView {
	return VerdictView{IsCorrect: v.IsCorrect, AIResponse: v.Reason}
}

// NewAgentPlayView renders p for callers.
func NewAgentPlayView(p *AgentPlay) AgentPlayView {
	return AgentPlayView{
		AgentName:  p.AgentName,
		QuestionID: p.Question.ID,
		Round:      p.Question.Round,
		Category:   p.Question.Category,
		Value:      p.Question.Value.String(),
		Question:   p.Question.Text,
		AIAnswer:   p.AIAnswer,
		IsCorrect:  p.Verdict.IsCorrect,
		AIResponse: p.Verdict.Reason,
	}
}

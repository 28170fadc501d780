// Package mcpserver exposes the trivia service as Model Context Protocol
// tools so assistants can play Jeopardy! directly.
package mcpserver

import (
	"context"
	"math"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/jeopardy/internal/api"
	"github.com/sells-group/jeopardy/internal/model"
	"github.com/sells-group/jeopardy/internal/service"
)

// Tool names.
const (
	ToolFetchQuestion = "fetch_question"
	ToolVerifyAnswer  = "verify_answer"
	ToolAgentPlay     = "agent_play"
	ToolListBoards    = "list_boards"
)

// New builds an MCP server whose tools call trivia.
func New(trivia api.Trivia, version string) *server.MCPServer {
	s := server.NewMCPServer("jeopardy", version,
		server.WithToolCapabilities(false),
		server.WithInstructions("Fetch Jeopardy! clues by round and value, then submit answers to be judged."),
	)
	t := &tools{trivia: trivia}

	s.AddTool(mcp.NewTool(ToolFetchQuestion,
		mcp.WithDescription("Fetch a random clue for an exact round and dollar value. The answer is not included."),
		mcp.WithString("round", mcp.Required(), mcp.Description(`Round name, e.g. "Jeopardy!" or "Double Jeopardy!"`)),
		mcp.WithString("value", mcp.Required(), mcp.Description(`Dollar value such as "$200" or "$1,000", or "None"`)),
	), t.fetchQuestion)

	s.AddTool(mcp.NewTool(ToolVerifyAnswer,
		mcp.WithDescription("Judge an answer to a previously fetched clue."),
		mcp.WithNumber("question_id", mcp.Required(), mcp.Description("question_id returned by fetch_question")),
		mcp.WithString("user_answer", mcp.Required(), mcp.Description("The answer to judge")),
	), t.verifyAnswer)

	s.AddTool(mcp.NewTool(ToolAgentPlay,
		mcp.WithDescription("Let the built-in agent draw a clue, answer it and have the answer judged."),
	), t.agentPlay)

	s.AddTool(mcp.NewTool(ToolListBoards,
		mcp.WithDescription("List every round and value that has clues, with counts."),
	), t.listBoards)

	return s
}

// Serve runs s over stdin/stdout until the input closes.
func Serve(s *server.MCPServer) error {
	return server.ServeStdio(s)
}

type tools struct {
	trivia api.Trivia
}

func (t *tools) fetchQuestion(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	round, err := req.RequireString("round")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	value, err := req.RequireString("value")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	q, err := t.trivia.FetchQuestion(ctx, round, value)
	if err != nil {
		return toolError(ToolFetchQuestion, err), nil
	}
	return mcp.NewToolResultJSON(model.NewQuestionView(q))
}

func (t *tools) verifyAnswer(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := questionID(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	answer, err := req.RequireString("user_answer")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	verdict, err := t.trivia.VerifyAnswer(ctx, id, answer)
	if err != nil {
		return toolError(ToolVerifyAnswer, err), nil
	}
	return mcp.NewToolResultJSON(model.NewVerdictView(verdict))
}

// questionID reads question_id as a whole number. JSON numbers arrive as
// float64, so fractional values are rejected rather than truncated.
func questionID(req mcp.CallToolRequest) (int64, error) {
	f, err := req.RequireFloat("question_id")
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, eris.Errorf("question_id must be an integer, got %v", f)
	}
	return int64(f), nil
}

func (t *tools) agentPlay(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	play, err := t.trivia.AgentPlay(ctx)
	if err != nil {
		return toolError(ToolAgentPlay, err), nil
	}
	return mcp.NewToolResultJSON(model.NewAgentPlayView(play))
}

func (t *tools) listBoards(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	boards, err := t.trivia.Boards(ctx)
	if err != nil {
		return toolError(ToolListBoards, err), nil
	}
	if boards == nil {
		boards = []model.Board{}
	}
	return mcp.NewToolResultJSON(map[string]any{"boards": boards})
}

// toolError reports a service failure as a tool error carrying the same
// message HTTP callers see.
func toolError(tool string, err error) *mcp.CallToolResult {
	zap.L().Debug("mcp: tool failed",
		zap.String("tool", tool),
		zap.Stringer("kind", service.KindOf(err)),
		zap.Error(err),
	)
	return mcp.NewToolResultError(service.MessageOf(err))
}

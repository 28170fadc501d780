package anthropic

import (
	"context"
	"net/http"
	"testing"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockClient implements Client for testing.
type MockClient struct {
	mock.Mock
}

func (m *MockClient) CreateMessage(ctx context.Context, req MessageRequest) (*MessageResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*MessageResponse), args.Error(1)
}

func TestCreateMessage_MockClient(t *testing.T) {
	mc := new(MockClient)
	ctx := context.Background()

	req := MessageRequest{
		Model:     "claude-sonnet-4-5-20250929",
		MaxTokens: 1024,
		Messages:  []Message{{Role: "user", Content: "This 'Father of Our Country' didn't really chop down a cherry tree"}},
		WebSearch: &WebSearch{MaxUses: 3},
	}

	expected := &MessageResponse{
		ID:         "msg_123",
		Model:      "claude-sonnet-4-5-20250929",
		Content:    []ContentBlock{{Type: "text", Text: "Who is George Washington?"}},
		StopReason: "end_turn",
		Usage:      TokenUsage{InputTokens: 10, OutputTokens: 5},
	}

	mc.On("CreateMessage", ctx, req).Return(expected, nil)

	resp, err := mc.CreateMessage(ctx, req)
	require.NoError(t, err)
	text, ok := resp.FirstText()
	assert.True(t, ok)
	assert.Equal(t, "Who is George Washington?", text)

	mc.AssertExpectations(t)
}

func TestFirstText(t *testing.T) {
	tests := []struct {
		name   string
		resp   *MessageResponse
		want   string
		wantOK bool
	}{
		{
			name:   "nil response",
			resp:   nil,
			wantOK: false,
		},
		{
			name:   "no content",
			resp:   &MessageResponse{},
			wantOK: false,
		},
		{
			name: "skips tool blocks",
			resp: &MessageResponse{Content: []ContentBlock{
				{Type: "server_tool_use"},
				{Type: "web_search_tool_result"},
				{Type: "text", Text: "What is the Nile?"},
			}},
			want:   "What is the Nile?",
			wantOK: true,
		},
		{
			name: "skips blank text",
			resp: &MessageResponse{Content: []ContentBlock{
				{Type: "text", Text: "  \n"},
				{Type: "text", Text: " Who is Michael Jordan? "},
			}},
			want:   "Who is Michael Jordan?",
			wantOK: true,
		},
		{
			name: "only blank text",
			resp: &MessageResponse{Content: []ContentBlock{
				{Type: "text", Text: ""},
			}},
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.resp.FirstText()
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFinalText(t *testing.T) {
	tests := []struct {
		name   string
		resp   *MessageResponse
		want   string
		wantOK bool
	}{
		{
			name:   "nil response",
			resp:   nil,
			wantOK: false,
		},
		{
			name: "plain reply",
			resp: &MessageResponse{Content: []ContentBlock{
				{Type: "text", Text: " Who is Nikola Tesla? "},
			}},
			want:   "Who is Nikola Tesla?",
			wantOK: true,
		},
		{
			name: "drops preamble before search",
			resp: &MessageResponse{Content: []ContentBlock{
				{Type: "text", Text: "I'll search for who proposed a heliocentric model."},
				{Type: "server_tool_use"},
				{Type: "web_search_tool_result"},
				{Type: "text", Text: "Copernicus"},
			}},
			want:   "Copernicus",
			wantOK: true,
		},
		{
			name: "joins cited blocks after last search",
			resp: &MessageResponse{Content: []ContentBlock{
				{Type: "server_tool_use"},
				{Type: "web_search_tool_result"},
				{Type: "text", Text: "Let me narrow that down."},
				{Type: "server_tool_use"},
				{Type: "web_search_tool_result"},
				{Type: "text", Text: "Mount "},
				{Type: "text", Text: "Kilimanjaro"},
			}},
			want:   "Mount Kilimanjaro",
			wantOK: true,
		},
		{
			name: "ends on a tool block",
			resp: &MessageResponse{Content: []ContentBlock{
				{Type: "text", Text: "Searching now."},
				{Type: "server_tool_use"},
			}},
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.resp.FinalText()
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStatusCode(t *testing.T) {
	apiErr := &sdk.Error{StatusCode: http.StatusTooManyRequests}

	assert.Equal(t, http.StatusTooManyRequests, StatusCode(apiErr))
	assert.Equal(t, http.StatusTooManyRequests, StatusCode(eris.Wrap(apiErr, "anthropic: create message")))
	assert.Equal(t, 0, StatusCode(eris.New("boom")))
	assert.Equal(t, 0, StatusCode(nil))
}

func TestEstimateCost_Haiku(t *testing.T) {
	u := TokenUsage{InputTokens: 1_000_000, OutputTokens: 1_000_000}
	assert.InDelta(t, 6.00, u.EstimateCost("claude-haiku-4-5-20251001"), 0.001)
}

func TestEstimateCost_Sonnet(t *testing.T) {
	u := TokenUsage{InputTokens: 1_000_000, OutputTokens: 1_000_000}
	assert.InDelta(t, 18.00, u.EstimateCost("claude-sonnet-4-5-20250929"), 0.001)
}

func TestEstimateCost_WithCache(t *testing.T) {
	u := TokenUsage{
		CacheCreationInputTokens: 1_000_000,
		CacheReadInputTokens:     1_000_000,
	}
	// write: 3.00 * 1.25, read: 3.00 * 0.1
	assert.InDelta(t, 4.05, u.EstimateCost("claude-sonnet-4-5-20250929"), 0.001)
}

func TestEstimateCost_WebSearch(t *testing.T) {
	u := TokenUsage{WebSearchRequests: 3}
	assert.InDelta(t, 0.03, u.EstimateCost("claude-sonnet-4-5-20250929"), 0.0001)
}

func TestEstimateCost_UnknownModel(t *testing.T) {
	u := TokenUsage{InputTokens: 1_000_000, OutputTokens: 1_000_000, WebSearchRequests: 1}
	assert.InDelta(t, 0.01, u.EstimateCost("gpt-4o-mini"), 0.0001)
}

func TestEstimateCost_ZeroTokens(t *testing.T) {
	assert.Zero(t, TokenUsage{}.EstimateCost("claude-sonnet-4-5-20250929"))
}

func TestLogCost_DoesNotPanic(t *testing.T) {
	u := TokenUsage{InputTokens: 1000, OutputTokens: 500, WebSearchRequests: 2}
	assert.NotPanics(t, func() {
		u.LogCost("claude-sonnet-4-5-20250929", "generate_answer")
	})
}

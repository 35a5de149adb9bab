package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smhanov/wikifacts"
)

func newOpenRouterTest(t *testing.T, handler http.HandlerFunc) *OpenRouter {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := NewOpenRouter(Config{BaseURL: srv.URL, Model: "openai/gpt-4o-mini", APIKey: "sk-test"})
	require.NoError(t, err)
	return c
}

func TestOpenRouterChat(t *testing.T) {
	c := newOpenRouterTest(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get("HTTP-Referer"))

		var req orChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "openai/gpt-4o-mini", req.Model)
		assert.False(t, req.Stream)

		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{
				"message": map[string]any{
					"role": "assistant",
					"tool_calls": []map[string]any{{
						"id":   "call_abc",
						"type": "function",
						"function": map[string]any{
							"name": "record_fact",
							// Arguments arrive as a JSON-encoded string.
							"arguments": `{"fact": "f", "source_ids": ["source_1"], "category": "other"}`,
						},
					}},
				},
				"finish_reason": "tool_calls",
			}},
		})
	})

	reply, err := c.Chat(context.Background(), wikifacts.ChatRequest{
		Messages: []wikifacts.ChatMessage{{Role: wikifacts.RoleUser, Content: "hi"}},
	})
	require.NoError(t, err)

	require.Len(t, reply.ToolCalls, 1)
	assert.Equal(t, "call_abc", reply.ToolCalls[0].ID)
	assert.Equal(t, "record_fact", reply.ToolCalls[0].Name)
	assert.JSONEq(t, `{"fact": "f", "source_ids": ["source_1"], "category": "other"}`,
		string(reply.ToolCalls[0].Arguments))
}

func TestOpenRouterChatSendsToolResults(t *testing.T) {
	c := newOpenRouterTest(t, func(w http.ResponseWriter, r *http.Request) {
		var req orChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		require.Len(t, req.Messages, 3)
		assert.Equal(t, "assistant", req.Messages[1].Role)
		require.Len(t, req.Messages[1].ToolCalls, 1)
		assert.Equal(t, `{"fact": "f"}`, req.Messages[1].ToolCalls[0].Function.Arguments)
		assert.Equal(t, "tool", req.Messages[2].Role)
		assert.Equal(t, "call_abc", req.Messages[2].ToolCallID)

		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{
				"message": map[string]any{"role": "assistant", "content": "done"},
			}},
		})
	})

	call := wikifacts.ToolCall{ID: "call_abc", Name: "record_fact", Arguments: json.RawMessage(`{"fact": "f"}`)}
	reply, err := c.Chat(context.Background(), wikifacts.ChatRequest{
		Messages: []wikifacts.ChatMessage{
			{Role: wikifacts.RoleUser, Content: "hi"},
			{Role: wikifacts.RoleAssistant, ToolCalls: []wikifacts.ToolCall{call}},
			{Role: wikifacts.RoleTool, Content: "Fact recorded", ToolCallID: "call_abc"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "done", reply.Content)
}

func TestOpenRouterChatPassesResponseFormat(t *testing.T) {
	schema := json.RawMessage(`{"type": "object"}`)
	c := newOpenRouterTest(t, func(w http.ResponseWriter, r *http.Request) {
		var req orChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.NotNil(t, req.ResponseFormat)
		assert.Equal(t, "json_schema", req.ResponseFormat.Type)
		assert.True(t, req.ResponseFormat.JSONSchema.Strict)
		assert.JSONEq(t, string(schema), string(req.ResponseFormat.JSONSchema.Schema))

		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{
				"message": map[string]any{"role": "assistant", "content": `{"query": "q"}`},
			}},
		})
	})

	reply, err := c.Chat(context.Background(), wikifacts.ChatRequest{
		Messages:       []wikifacts.ChatMessage{{Role: wikifacts.RoleUser, Content: "go"}},
		ResponseSchema: schema,
	})
	require.NoError(t, err)
	assert.Equal(t, `{"query": "q"}`, reply.Content)
}

func TestOpenRouterChatStream(t *testing.T) {
	c := newOpenRouterTest(t, func(w http.ResponseWriter, r *http.Request) {
		var req orChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.True(t, req.Stream)

		w.Header().Set("Content-Type", "text/event-stream")
		for _, chunk := range []string{"Hello", ", ", "world"} {
			fmt.Fprintf(w, "data: {\"choices\": [{\"delta\": {\"content\": %q}}]}\n\n", chunk)
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
	})

	var deltas []string
	reply, err := c.ChatStream(context.Background(), wikifacts.ChatRequest{
		Messages: []wikifacts.ChatMessage{{Role: wikifacts.RoleUser, Content: "hi"}},
	}, func(d string) { deltas = append(deltas, d) })
	require.NoError(t, err)

	assert.Equal(t, "Hello, world", reply.Content)
	assert.Equal(t, []string{"Hello", ", ", "world"}, deltas)
}

func TestOpenRouterAPIError(t *testing.T) {
	c := newOpenRouterTest(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"message": "insufficient credits"},
		})
	})

	_, err := c.Chat(context.Background(), wikifacts.ChatRequest{
		Messages: []wikifacts.ChatMessage{{Role: wikifacts.RoleUser, Content: "hi"}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insufficient credits")
}

func TestOpenRouterPing(t *testing.T) {
	c := newOpenRouterTest(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/models", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		w.Write([]byte(`{"data": []}`))
	})
	assert.NoError(t, c.Ping(context.Background()))
}

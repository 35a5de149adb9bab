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

func TestOllamaChat(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/chat", r.URL.Path)

		var req ollamaChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "llama3.1", req.Model)
		assert.False(t, req.Stream)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)
		require.Len(t, req.Tools, 1)
		assert.Equal(t, "record_fact", req.Tools[0].Function.Name)
		require.NotNil(t, req.Options)
		assert.InDelta(t, 0.7, req.Options.Temperature, 1e-9)

		json.NewEncoder(w).Encode(map[string]any{
			"message": map[string]any{
				"role":    "assistant",
				"content": "",
				"tool_calls": []map[string]any{
					{"function": map[string]any{
						"name":      "record_fact",
						"arguments": map[string]any{"fact": "f", "source_ids": []string{"source_1"}, "category": "other"},
					}},
				},
			},
			"done": true,
		})
	}))
	defer srv.Close()

	c := NewOllama(Config{BaseURL: srv.URL, Model: "llama3.1"})
	reply, err := c.Chat(context.Background(), wikifacts.ChatRequest{
		Messages: []wikifacts.ChatMessage{
			{Role: wikifacts.RoleSystem, Content: "sys"},
			{Role: wikifacts.RoleUser, Content: "hi"},
		},
		Tools: []wikifacts.ToolSpec{{
			Name:       "record_fact",
			Parameters: json.RawMessage(`{"type": "object"}`),
		}},
	})
	require.NoError(t, err)

	require.Len(t, reply.ToolCalls, 1)
	assert.Equal(t, "record_fact", reply.ToolCalls[0].Name)
	assert.JSONEq(t, `{"fact": "f", "source_ids": ["source_1"], "category": "other"}`,
		string(reply.ToolCalls[0].Arguments))
}

func TestOllamaChatHonorsExplicitZeroTemperature(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Options map[string]any `json:"options"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		temp, ok := req.Options["temperature"]
		require.True(t, ok, "temperature must be sent on the wire")
		assert.InDelta(t, 0.0, temp, 1e-9)

		json.NewEncoder(w).Encode(map[string]any{
			"message": map[string]any{"role": "assistant", "content": "ok"},
			"done":    true,
		})
	}))
	defer srv.Close()

	zero := 0.0
	c := NewOllama(Config{BaseURL: srv.URL, Model: "llama3.1", Temperature: &zero})
	_, err := c.Chat(context.Background(), wikifacts.ChatRequest{
		Messages: []wikifacts.ChatMessage{{Role: wikifacts.RoleUser, Content: "hi"}},
	})
	require.NoError(t, err)
}

func TestOllamaChatPassesResponseSchema(t *testing.T) {
	schema := json.RawMessage(`{"type": "object", "required": ["query"]}`)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req ollamaChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.JSONEq(t, string(schema), string(req.Format))

		json.NewEncoder(w).Encode(map[string]any{
			"message": map[string]any{"role": "assistant", "content": `{"query": "q"}`},
			"done":    true,
		})
	}))
	defer srv.Close()

	c := NewOllama(Config{BaseURL: srv.URL, Model: "llama3.1"})
	reply, err := c.Chat(context.Background(), wikifacts.ChatRequest{
		Messages:       []wikifacts.ChatMessage{{Role: wikifacts.RoleUser, Content: "go"}},
		ResponseSchema: schema,
	})
	require.NoError(t, err)
	assert.Equal(t, `{"query": "q"}`, reply.Content)
}

func TestOllamaChatStream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req ollamaChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.True(t, req.Stream)

		w.Header().Set("Content-Type", "application/x-ndjson")
		for _, chunk := range []string{"Hello", ", ", "world"} {
			fmt.Fprintf(w, `{"message": {"role": "assistant", "content": %q}, "done": false}`+"\n", chunk)
		}
		fmt.Fprintln(w, `{"message": {"role": "assistant", "content": ""}, "done": true}`)
	}))
	defer srv.Close()

	c := NewOllama(Config{BaseURL: srv.URL, Model: "llama3.1"})
	var deltas []string
	reply, err := c.ChatStream(context.Background(), wikifacts.ChatRequest{
		Messages: []wikifacts.ChatMessage{{Role: wikifacts.RoleUser, Content: "hi"}},
	}, func(d string) { deltas = append(deltas, d) })
	require.NoError(t, err)

	assert.Equal(t, "Hello, world", reply.Content)
	assert.Equal(t, []string{"Hello", ", ", "world"}, deltas)
}

func TestOllamaChatHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "model not found"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewOllama(Config{BaseURL: srv.URL, Model: "nope"})
	_, err := c.Chat(context.Background(), wikifacts.ChatRequest{
		Messages: []wikifacts.ChatMessage{{Role: wikifacts.RoleUser, Content: "hi"}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ollama http 404")
	assert.Contains(t, err.Error(), "model not found")
}

func TestOllamaPing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/tags", r.URL.Path)
		w.Write([]byte(`{"models": []}`))
	}))
	defer srv.Close()

	c := NewOllama(Config{BaseURL: srv.URL})
	assert.NoError(t, c.Ping(context.Background()))

	srv.Close()
	assert.Error(t, c.Ping(context.Background()))
}

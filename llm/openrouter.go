package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/smhanov/wikifacts"
)

// DefaultOpenRouterURL is the OpenRouter API base.
const DefaultOpenRouterURL = "https://openrouter.ai/api/v1"

// OpenRouter implements wikifacts.LLMClient against OpenRouter's
// OpenAI-compatible chat completions API.
type OpenRouter struct {
	baseURL     string
	apiKey      string
	model       string
	temperature float64
	client      *http.Client
}

var _ wikifacts.LLMClient = (*OpenRouter)(nil)

// NewOpenRouter creates an OpenRouter client. The API key is required.
func NewOpenRouter(cfg Config) (*OpenRouter, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("openrouter: API key is required")
	}
	cfg.applyDefaults()
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultOpenRouterURL
	}
	return &OpenRouter{
		baseURL:     baseURL,
		apiKey:      cfg.APIKey,
		model:       cfg.Model,
		temperature: *cfg.Temperature,
		client:      cfg.Client,
	}, nil
}

type orMessage struct {
	Role       string       `json:"role"`
	Content    string       `json:"content"`
	ToolCalls  []orToolCall `json:"tool_calls,omitempty"`
	ToolCallID string       `json:"tool_call_id,omitempty"`
}

type orToolCall struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Function struct {
		Name string `json:"name"`
		// Arguments is a JSON-encoded string per the OpenAI wire format.
		Arguments string `json:"arguments"`
	} `json:"function"`
}

type orTool struct {
	Type     string `json:"type"`
	Function struct {
		Name        string          `json:"name"`
		Description string          `json:"description"`
		Parameters  json.RawMessage `json:"parameters"`
	} `json:"function"`
}

type orResponseFormat struct {
	Type       string `json:"type"`
	JSONSchema struct {
		Name   string          `json:"name"`
		Strict bool            `json:"strict"`
		Schema json.RawMessage `json:"schema"`
	} `json:"json_schema"`
}

type orChatRequest struct {
	Model          string            `json:"model"`
	Messages       []orMessage       `json:"messages"`
	Temperature    float64           `json:"temperature"`
	Stream         bool              `json:"stream"`
	Tools          []orTool          `json:"tools,omitempty"`
	ResponseFormat *orResponseFormat `json:"response_format,omitempty"`
}

type orChatResponse struct {
	Choices []struct {
		Message      orMessage `json:"message"`
		FinishReason string    `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

type orStreamChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

func (o *OpenRouter) buildRequest(req wikifacts.ChatRequest, stream bool) orChatRequest {
	messages := make([]orMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		om := orMessage{Role: m.Role, Content: m.Content, ToolCallID: m.ToolCallID}
		for _, call := range m.ToolCalls {
			var oc orToolCall
			oc.ID = call.ID
			oc.Type = "function"
			oc.Function.Name = call.Name
			oc.Function.Arguments = string(call.Arguments)
			om.ToolCalls = append(om.ToolCalls, oc)
		}
		messages = append(messages, om)
	}

	out := orChatRequest{
		Model:       o.model,
		Messages:    messages,
		Temperature: o.temperature,
		Stream:      stream,
	}
	for _, t := range req.Tools {
		var ot orTool
		ot.Type = "function"
		ot.Function.Name = t.Name
		ot.Function.Description = t.Description
		ot.Function.Parameters = t.Parameters
		out.Tools = append(out.Tools, ot)
	}
	if req.ResponseSchema != nil {
		rf := &orResponseFormat{Type: "json_schema"}
		rf.JSONSchema.Name = "research_document"
		rf.JSONSchema.Strict = true
		rf.JSONSchema.Schema = req.ResponseSchema
		out.ResponseFormat = rf
	}
	return out
}

func fromORMessage(m orMessage) wikifacts.ChatMessage {
	msg := wikifacts.ChatMessage{Role: m.Role, Content: m.Content}
	for _, call := range m.ToolCalls {
		msg.ToolCalls = append(msg.ToolCalls, wikifacts.ToolCall{
			ID:        call.ID,
			Name:      call.Function.Name,
			Arguments: json.RawMessage(call.Function.Arguments),
		})
	}
	return msg
}

// Chat sends a single non-streaming chat request.
func (o *OpenRouter) Chat(ctx context.Context, req wikifacts.ChatRequest) (wikifacts.ChatMessage, error) {
	resp, err := o.post(ctx, o.buildRequest(req, false))
	if err != nil {
		return wikifacts.ChatMessage{}, err
	}
	defer resp.Body.Close()

	var out orChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return wikifacts.ChatMessage{}, fmt.Errorf("openrouter: decode response: %w", err)
	}
	if out.Error != nil {
		return wikifacts.ChatMessage{}, fmt.Errorf("openrouter: %s", out.Error.Message)
	}
	if len(out.Choices) == 0 {
		return wikifacts.ChatMessage{}, errors.New("openrouter: empty choices")
	}
	return fromORMessage(out.Choices[0].Message), nil
}

// ChatStream sends a streaming chat request, forwarding content deltas to
// onDelta. OpenRouter streams Server-Sent Events terminated by [DONE].
func (o *OpenRouter) ChatStream(ctx context.Context, req wikifacts.ChatRequest, onDelta func(string)) (wikifacts.ChatMessage, error) {
	resp, err := o.post(ctx, o.buildRequest(req, true))
	if err != nil {
		return wikifacts.ChatMessage{}, err
	}
	defer resp.Body.Close()

	var full strings.Builder
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		data := strings.TrimPrefix(line, "data: ")
		if data == "[DONE]" {
			break
		}
		var chunk orStreamChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			continue
		}
		if len(chunk.Choices) == 0 {
			continue
		}
		delta := chunk.Choices[0].Delta.Content
		if delta == "" {
			continue
		}
		full.WriteString(delta)
		if onDelta != nil {
			onDelta(delta)
		}
	}
	if err := scanner.Err(); err != nil {
		return wikifacts.ChatMessage{}, fmt.Errorf("openrouter: read stream: %w", err)
	}

	return wikifacts.ChatMessage{Role: wikifacts.RoleAssistant, Content: full.String()}, nil
}

// Ping checks that the OpenRouter API accepts the configured credentials.
func (o *OpenRouter) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.baseURL+"/models", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+o.apiKey)
	resp, err := o.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("openrouter http %d", resp.StatusCode)
	}
	return nil
}

func (o *OpenRouter) post(ctx context.Context, payload orChatRequest) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+o.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("HTTP-Referer", "https://github.com/smhanov/wikifacts")

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, fmt.Errorf("openrouter http %d: %s", resp.StatusCode, string(msg))
	}
	return resp, nil
}

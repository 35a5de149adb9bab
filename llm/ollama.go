package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/smhanov/wikifacts"
)

// DefaultOllamaURL is the local Ollama endpoint.
const DefaultOllamaURL = "http://localhost:11434"

// Ollama implements wikifacts.LLMClient against the Ollama chat API.
type Ollama struct {
	baseURL     string
	model       string
	temperature float64
	client      *http.Client
}

var _ wikifacts.LLMClient = (*Ollama)(nil)

// NewOllama creates an Ollama client. Missing fields fall back to defaults.
func NewOllama(cfg Config) *Ollama {
	cfg.applyDefaults()
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultOllamaURL
	}
	return &Ollama{
		baseURL:     baseURL,
		model:       cfg.Model,
		temperature: *cfg.Temperature,
		client:      cfg.Client,
	}
}

type ollamaMessage struct {
	Role      string           `json:"role"`
	Content   string           `json:"content"`
	ToolCalls []ollamaToolCall `json:"tool_calls,omitempty"`
}

type ollamaToolCall struct {
	Function struct {
		Name      string          `json:"name"`
		Arguments json.RawMessage `json:"arguments"`
	} `json:"function"`
}

type ollamaTool struct {
	Type     string `json:"type"`
	Function struct {
		Name        string          `json:"name"`
		Description string          `json:"description"`
		Parameters  json.RawMessage `json:"parameters"`
	} `json:"function"`
}

type ollamaChatRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
	Tools    []ollamaTool    `json:"tools,omitempty"`
	// Format carries a JSON schema for constrained output.
	Format  json.RawMessage `json:"format,omitempty"`
	Options *ollamaOptions  `json:"options,omitempty"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature"`
}

type ollamaChatResponse struct {
	Message ollamaMessage `json:"message"`
	Done    bool          `json:"done"`
}

func (o *Ollama) buildRequest(req wikifacts.ChatRequest, stream bool) ollamaChatRequest {
	messages := make([]ollamaMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		om := ollamaMessage{Role: m.Role, Content: m.Content}
		for _, call := range m.ToolCalls {
			var oc ollamaToolCall
			oc.Function.Name = call.Name
			oc.Function.Arguments = call.Arguments
			om.ToolCalls = append(om.ToolCalls, oc)
		}
		messages = append(messages, om)
	}

	out := ollamaChatRequest{
		Model:    o.model,
		Messages: messages,
		Stream:   stream,
		Format:   req.ResponseSchema,
		Options:  &ollamaOptions{Temperature: o.temperature},
	}
	for _, t := range req.Tools {
		var ot ollamaTool
		ot.Type = "function"
		ot.Function.Name = t.Name
		ot.Function.Description = t.Description
		ot.Function.Parameters = t.Parameters
		out.Tools = append(out.Tools, ot)
	}
	return out
}

func fromOllamaMessage(m ollamaMessage) wikifacts.ChatMessage {
	msg := wikifacts.ChatMessage{Role: m.Role, Content: m.Content}
	for _, call := range m.ToolCalls {
		msg.ToolCalls = append(msg.ToolCalls, wikifacts.ToolCall{
			Name:      call.Function.Name,
			Arguments: call.Function.Arguments,
		})
	}
	return msg
}

// Chat sends a single non-streaming chat request.
func (o *Ollama) Chat(ctx context.Context, req wikifacts.ChatRequest) (wikifacts.ChatMessage, error) {
	body, err := json.Marshal(o.buildRequest(req, false))
	if err != nil {
		return wikifacts.ChatMessage{}, err
	}

	resp, err := o.post(ctx, body)
	if err != nil {
		return wikifacts.ChatMessage{}, err
	}
	defer resp.Body.Close()

	var out ollamaChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return wikifacts.ChatMessage{}, fmt.Errorf("ollama: decode response: %w", err)
	}
	return fromOllamaMessage(out.Message), nil
}

// ChatStream sends a streaming chat request, forwarding content deltas to
// onDelta. Ollama streams newline-delimited JSON objects.
func (o *Ollama) ChatStream(ctx context.Context, req wikifacts.ChatRequest, onDelta func(string)) (wikifacts.ChatMessage, error) {
	body, err := json.Marshal(o.buildRequest(req, true))
	if err != nil {
		return wikifacts.ChatMessage{}, err
	}

	resp, err := o.post(ctx, body)
	if err != nil {
		return wikifacts.ChatMessage{}, err
	}
	defer resp.Body.Close()

	var full strings.Builder
	var toolCalls []wikifacts.ToolCall
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var chunk ollamaChatResponse
		if err := json.Unmarshal(line, &chunk); err != nil {
			continue
		}
		if chunk.Message.Content != "" {
			full.WriteString(chunk.Message.Content)
			if onDelta != nil {
				onDelta(chunk.Message.Content)
			}
		}
		for _, call := range chunk.Message.ToolCalls {
			toolCalls = append(toolCalls, wikifacts.ToolCall{
				Name:      call.Function.Name,
				Arguments: call.Function.Arguments,
			})
		}
		if chunk.Done {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return wikifacts.ChatMessage{}, fmt.Errorf("ollama: read stream: %w", err)
	}

	return wikifacts.ChatMessage{
		Role:      wikifacts.RoleAssistant,
		Content:   full.String(),
		ToolCalls: toolCalls,
	}, nil
}

// Ping checks that the Ollama server is reachable.
func (o *Ollama) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.baseURL+"/api/tags", nil)
	if err != nil {
		return err
	}
	resp, err := o.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ollama http %d", resp.StatusCode)
	}
	return nil
}

func (o *Ollama) post(ctx context.Context, body []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, fmt.Errorf("ollama http %d: %s", resp.StatusCode, string(msg))
	}
	return resp, nil
}

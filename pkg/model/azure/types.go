package azure

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	modelpkg "github.com/cexll/llmadapter-go/pkg/model"
)

const (
	deploymentsPathPrefix = "/openai/deployments/"
	chatCompletionsPath   = "/chat/completions"
	apiVersionQueryKey    = "api-version"
	defaultHTTPTimeout    = 60 // seconds
	userAgent             = "llmadapter-go/azure"
	maxStreamLineBytes    = 1024 * 1024
	initialStreamBufSize  = 64 * 1024
)

// ChatCompletionRequest models the Azure OpenAI Chat Completions payload.
// The deployment rides in the URL path, not the body.
type ChatCompletionRequest struct {
	Messages         []ChatMessageParam   `json:"messages"`
	MaxTokens        int                  `json:"max_tokens,omitempty"`
	Temperature      *float64             `json:"temperature,omitempty"`
	TopP             *float64             `json:"top_p,omitempty"`
	PresencePenalty  *float64             `json:"presence_penalty,omitempty"`
	FrequencyPenalty *float64             `json:"frequency_penalty,omitempty"`
	Stop             []string             `json:"stop,omitempty"`
	Seed             *int                 `json:"seed,omitempty"`
	User             string               `json:"user,omitempty"`
	Functions        []FunctionDefinition `json:"functions,omitempty"`
	FunctionCall     *ForcedFunctionCall  `json:"function_call,omitempty"`
	Stream           bool                 `json:"stream,omitempty"`

	// Extra carries merged generation parameters with no typed field above;
	// they are flattened into the request object so caller-supplied defaults
	// always reach the wire.
	Extra map[string]any `json:"-"`
}

// MarshalJSON flattens Extra into the request object. Typed fields win on a
// key collision.
func (r ChatCompletionRequest) MarshalJSON() ([]byte, error) {
	type plain ChatCompletionRequest
	data, err := json.Marshal(plain(r))
	if err != nil {
		return nil, err
	}
	if len(r.Extra) == 0 {
		return data, nil
	}
	var obj map[string]any
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, err
	}
	for k, v := range r.Extra {
		if _, exists := obj[k]; !exists {
			obj[k] = v
		}
	}
	return json.Marshal(obj)
}

// ChatMessageParam describes a single request message.
type ChatMessageParam struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// FunctionDefinition is the wire form of a callable function.
type FunctionDefinition struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Parameters  json.RawMessage `json:"parameters,omitempty"`
}

// ForcedFunctionCall directs the service to respond with a call to exactly
// one named function instead of free text.
type ForcedFunctionCall struct {
	Name string `json:"name"`
}

func newFunctionDefinition(fn modelpkg.Function) (FunctionDefinition, error) {
	def := FunctionDefinition{
		Name:        fn.Name,
		Description: fn.Description,
	}
	if fn.Parameters != nil {
		data, err := json.Marshal(fn.Parameters)
		if err != nil {
			return FunctionDefinition{}, fmt.Errorf("marshal parameter schema for %q: %w", fn.Name, err)
		}
		def.Parameters = data
	}
	return def, nil
}

// ChatCompletionResponse captures the response schema subset this adapter
// reads.
type ChatCompletionResponse struct {
	ID      string                 `json:"id"`
	Model   string                 `json:"model"`
	Object  string                 `json:"object"`
	Choices []ChatCompletionChoice `json:"choices"`
	Usage   UsageBlock             `json:"usage"`
}

// ChatCompletionChoice wraps a single assistant message.
type ChatCompletionChoice struct {
	Index        int                           `json:"index"`
	Message      ChatCompletionResponseMessage `json:"message"`
	FinishReason string                        `json:"finish_reason"`
}

// ChatCompletionResponseMessage is the assistant payload.
type ChatCompletionResponseMessage struct {
	Role         string            `json:"role"`
	Content      MessageContent    `json:"content"`
	FunctionCall *FunctionCallBody `json:"function_call,omitempty"`
}

// FunctionCallBody carries the structured call emitted by the assistant.
// Arguments is a JSON-encoded object.
type FunctionCallBody struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// UsageBlock is the token accounting attached to a completion.
type UsageBlock struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// MessageContent normalizes string vs array payloads.
type MessageContent []MessageContentPart

// MessageContentPart is a single segment of assistant output.
type MessageContentPart struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// Text collapses all text parts into a single string.
func (c MessageContent) Text() string {
	if len(c) == 0 {
		return ""
	}
	var b strings.Builder
	for _, part := range c {
		if part.Type == "text" && part.Text != "" {
			b.WriteString(part.Text)
		}
	}
	return b.String()
}

// UnmarshalJSON accepts either a simple string or array payload.
func (c *MessageContent) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*c = nil
		return nil
	}
	if data[0] == '[' {
		var parts []MessageContentPart
		if err := json.Unmarshal(data, &parts); err != nil {
			return err
		}
		*c = MessageContent(parts)
		return nil
	}
	if data[0] == '"' {
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
		*c = MessageContent{{Type: "text", Text: text}}
		return nil
	}
	return fmt.Errorf("unsupported content payload: %s", string(data))
}

// ChatCompletionStreamChunk represents a streaming delta envelope.
type ChatCompletionStreamChunk struct {
	Choices []ChatCompletionStreamChoice `json:"choices"`
}

// ChatCompletionStreamChoice carries delta updates.
type ChatCompletionStreamChoice struct {
	Index        int                 `json:"index"`
	Delta        ChatCompletionDelta `json:"delta"`
	FinishReason string              `json:"finish_reason"`
}

// ChatCompletionDelta provides incremental tokens.
type ChatCompletionDelta struct {
	Role    string         `json:"role"`
	Content MessageContent `json:"content"`
}

// ErrorResponse models service error payloads.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody contains the API error details.
type ErrorBody struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Param   string `json:"param"`
	Code    string `json:"code"`
}

// APIError surfaces HTTP metadata along with API error info. It is the
// transport-layer failure of a call; the adapter never retries it.
type APIError struct {
	StatusCode int
	Type       string
	Code       string
	Message    string
}

func (e APIError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "azure openai API error (%d", e.StatusCode)
	if e.Type != "" {
		b.WriteString(", ")
		b.WriteString(e.Type)
	}
	b.WriteString(")")
	if e.Code != "" {
		b.WriteString(" code=")
		b.WriteString(e.Code)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	return b.String()
}

package azure

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/google/uuid"

	modelpkg "github.com/cexll/llmadapter-go/pkg/model"
)

// Ensure Model implements the shared interfaces.
var (
	_ modelpkg.Model          = (*Model)(nil)
	_ modelpkg.StreamingModel = (*Model)(nil)
)

// Model talks to one Azure OpenAI deployment over its Chat Completions
// endpoint. It holds no mutable state after construction, so a single
// instance is safe for concurrent calls. The adapter performs no retries;
// wrap it with a retry policy if transient transport errors should be
// re-attempted.
type Model struct {
	client     *http.Client
	endpoint   string
	deployment string
	apiVersion string
	headers    map[string]string
	defaults   modelpkg.Params
}

// NewModel validates the configuration and builds the adapter. Missing
// required values fail here with *model.ConfigError so a partially
// configured adapter can never issue a request.
func NewModel(cfg Config) (*Model, error) {
	resolved, err := cfg.resolve()
	if err != nil {
		return nil, err
	}

	headers := map[string]string{
		"api-key":      resolved.apiKey,
		"Content-Type": "application/json",
		"Accept":       "application/json",
		"User-Agent":   userAgent,
	}
	for k, v := range cfg.Headers {
		if k == "" || v == "" {
			continue
		}
		headers[k] = v
	}

	return &Model{
		client:     cfg.httpClient(),
		endpoint:   resolved.endpoint,
		deployment: resolved.deployment,
		apiVersion: resolved.apiVersion,
		headers:    headers,
		defaults:   cfg.Params.Clone(),
	}, nil
}

// Deployment reports the deployment name this adapter targets.
func (m *Model) Deployment() string { return m.deployment }

// DefaultParams returns a copy of the construction-time generation
// parameters.
func (m *Model) DefaultParams() modelpkg.Params { return m.defaults.Clone() }

// ChatCompletion performs a blocking chat completion request.
func (m *Model) ChatCompletion(ctx context.Context, messages []modelpkg.Message, opts ...modelpkg.CallOption) (*modelpkg.ChatResponse, error) {
	payload := m.buildPayload(messages, modelpkg.ApplyCallOptions(opts), false)
	completion, err := m.complete(ctx, payload)
	if err != nil {
		return nil, err
	}

	if len(completion.Choices) == 0 {
		return nil, &modelpkg.MalformedResponseError{Reason: "response contains no choices"}
	}
	choice := completion.Choices[0]
	role := choice.Message.Role
	if role == "" {
		role = modelpkg.RoleAssistant
	}
	return &modelpkg.ChatResponse{
		ID:    completion.ID,
		Model: completion.Model,
		Message: modelpkg.Message{
			Role:    role,
			Content: choice.Message.Content.Text(),
		},
		Usage: modelpkg.TokenUsage{
			InputTokens:  completion.Usage.PromptTokens,
			OutputTokens: completion.Usage.CompletionTokens,
			TotalTokens:  completion.Usage.TotalTokens,
		},
	}, nil
}

// EnforcedFunctionCall forces the service to respond with a structured call
// to fn and returns the decoded arguments once they validate against fn's
// parameter schema. Exactly one request is issued; malformed responses and
// schema violations surface to the caller unrecovered.
func (m *Model) EnforcedFunctionCall(ctx context.Context, messages []modelpkg.Message, fn modelpkg.Function, opts ...modelpkg.CallOption) (map[string]any, error) {
	if err := fn.Validate(); err != nil {
		return nil, err
	}
	def, err := newFunctionDefinition(fn)
	if err != nil {
		return nil, err
	}

	payload := m.buildPayload(messages, modelpkg.ApplyCallOptions(opts), false)
	payload.Functions = []FunctionDefinition{def}
	payload.FunctionCall = &ForcedFunctionCall{Name: fn.Name}

	completion, err := m.complete(ctx, payload)
	if err != nil {
		return nil, err
	}

	call, err := extractFunctionCall(completion)
	if err != nil {
		return nil, err
	}

	var args map[string]any
	if err := json.Unmarshal([]byte(call.Arguments), &args); err != nil {
		return nil, &modelpkg.MalformedResponseError{
			Reason: "function call arguments are not valid JSON",
			Err:    err,
		}
	}
	if err := fn.ValidateArguments(args); err != nil {
		return nil, err
	}
	return args, nil
}

// ChatCompletionAsync is not supported by this adapter.
func (m *Model) ChatCompletionAsync(ctx context.Context, messages []modelpkg.Message, opts ...modelpkg.CallOption) (<-chan modelpkg.StreamResult, error) {
	return nil, modelpkg.ErrUnsupported
}

func (m *Model) buildPayload(messages []modelpkg.Message, settings modelpkg.CallSettings, stream bool) ChatCompletionRequest {
	payload := ChatCompletionRequest{
		Messages: toWireMessages(messages),
		Stream:   stream,
	}
	applyParams(&payload, m.defaults.Merge(settings.Params))
	if settings.MaxTokens > 0 {
		payload.MaxTokens = settings.MaxTokens
	}
	if settings.User != "" {
		payload.User = settings.User
	}
	return payload
}

func (m *Model) complete(ctx context.Context, payload ChatCompletionRequest) (*ChatCompletionResponse, error) {
	resp, err := m.doRequest(ctx, payload)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		return nil, readAPIError(resp)
	}

	var completion ChatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return nil, &modelpkg.MalformedResponseError{Reason: "decode completion body", Err: err}
	}
	return &completion, nil
}

func (m *Model) doRequest(ctx context.Context, payload ChatCompletionRequest) (*http.Response, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		return nil, fmt.Errorf("encode chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.completionsURL(), &buf)
	if err != nil {
		return nil, fmt.Errorf("create chat request: %w", err)
	}

	for k, v := range m.headers {
		req.Header.Set(k, v)
	}
	req.Header.Set("x-ms-client-request-id", uuid.NewString())

	return m.client.Do(req)
}

func (m *Model) completionsURL() string {
	return m.endpoint +
		deploymentsPathPrefix + url.PathEscape(m.deployment) +
		chatCompletionsPath + "?" + apiVersionQueryKey + "=" + url.QueryEscape(m.apiVersion)
}

// extractFunctionCall pulls the first choice's structured call out of a
// completion, mapping every missing piece to MalformedResponseError.
func extractFunctionCall(completion *ChatCompletionResponse) (*FunctionCallBody, error) {
	if len(completion.Choices) == 0 {
		return nil, &modelpkg.MalformedResponseError{Reason: "response contains no choices"}
	}
	call := completion.Choices[0].Message.FunctionCall
	if call == nil {
		return nil, &modelpkg.MalformedResponseError{Reason: "response choice carries no function call"}
	}
	if call.Name == "" {
		return nil, &modelpkg.MalformedResponseError{Reason: "function call is missing its name"}
	}
	return call, nil
}

func toWireMessages(messages []modelpkg.Message) []ChatMessageParam {
	if len(messages) == 0 {
		return nil
	}
	out := make([]ChatMessageParam, 0, len(messages))
	for _, msg := range messages {
		role := msg.Role
		if role == "" {
			role = modelpkg.RoleUser
		}
		out = append(out, ChatMessageParam{Role: role, Content: msg.Content})
	}
	return out
}

func readAPIError(resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("azure openai api status %d: %w", resp.StatusCode, err)
	}
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return APIError{StatusCode: resp.StatusCode, Message: resp.Status}
	}
	var apiErr ErrorResponse
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Message != "" {
		return APIError{
			StatusCode: resp.StatusCode,
			Type:       apiErr.Error.Type,
			Code:       apiErr.Error.Code,
			Message:    apiErr.Error.Message,
		}
	}
	return APIError{StatusCode: resp.StatusCode, Message: string(body)}
}

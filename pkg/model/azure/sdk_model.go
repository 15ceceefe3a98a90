package azure

import (
	"context"
	"encoding/json"
	"fmt"

	openaisdk "github.com/openai/openai-go/v3"
	azuresdk "github.com/openai/openai-go/v3/azure"
	"github.com/openai/openai-go/v3/option"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	modelpkg "github.com/cexll/llmadapter-go/pkg/model"
	"github.com/cexll/llmadapter-go/pkg/telemetry"
)

// Ensure SDKModel implements the shared interface.
var _ modelpkg.Model = (*SDKModel)(nil)

// SDKModel is the same adapter contract on top of the official OpenAI SDK
// configured for Azure. Construction applies the same fail-fast resolution
// as NewModel.
type SDKModel struct {
	client     openaisdk.Client
	deployment string
	defaults   modelpkg.Params
}

// NewSDKModel resolves cfg and builds an SDK-backed adapter.
func NewSDKModel(cfg Config) (*SDKModel, error) {
	resolved, err := cfg.resolve()
	if err != nil {
		return nil, err
	}

	opts := []option.RequestOption{
		azuresdk.WithEndpoint(resolved.endpoint, resolved.apiVersion),
		azuresdk.WithAPIKey(resolved.apiKey),
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}

	return &SDKModel{
		client:     openaisdk.NewClient(opts...),
		deployment: resolved.deployment,
		defaults:   cfg.Params.Clone(),
	}, nil
}

// Deployment reports the deployment name this adapter targets.
func (m *SDKModel) Deployment() string { return m.deployment }

// ChatCompletion performs a blocking chat completion request.
func (m *SDKModel) ChatCompletion(ctx context.Context, messages []modelpkg.Message, opts ...modelpkg.CallOption) (_ *modelpkg.ChatResponse, err error) {
	ctx, span := telemetry.StartSpan(ctx, "model.azure.sdk.chat_completion",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(telemetry.SanitizeAttributes(
			attribute.String("llm.provider", "azure_openai"),
			attribute.String("llm.deployment", m.deployment),
		)...),
	)
	defer func() { telemetry.EndSpan(span, err) }()

	params, reqOpts := m.buildParams(messages, modelpkg.ApplyCallOptions(opts))
	completion, err := m.client.Chat.Completions.New(ctx, params, reqOpts...)
	if err != nil {
		return nil, fmt.Errorf("azure openai sdk call: %w", err)
	}
	if len(completion.Choices) == 0 {
		return nil, &modelpkg.MalformedResponseError{Reason: "response contains no choices"}
	}

	msg := completion.Choices[0].Message
	role := string(msg.Role)
	if role == "" {
		role = modelpkg.RoleAssistant
	}
	return &modelpkg.ChatResponse{
		ID:    completion.ID,
		Model: completion.Model,
		Message: modelpkg.Message{
			Role:    role,
			Content: msg.Content,
		},
		Usage: modelpkg.TokenUsage{
			InputTokens:  int(completion.Usage.PromptTokens),
			OutputTokens: int(completion.Usage.CompletionTokens),
			TotalTokens:  int(completion.Usage.TotalTokens),
		},
	}, nil
}

// EnforcedFunctionCall mirrors Model.EnforcedFunctionCall on the SDK
// client: one request with the function descriptor and a forced-call
// directive naming it, then local decode and schema validation.
func (m *SDKModel) EnforcedFunctionCall(ctx context.Context, messages []modelpkg.Message, fn modelpkg.Function, opts ...modelpkg.CallOption) (_ map[string]any, err error) {
	if err := fn.Validate(); err != nil {
		return nil, err
	}

	ctx, span := telemetry.StartSpan(ctx, "model.azure.sdk.enforced_function_call",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(telemetry.SanitizeAttributes(
			attribute.String("llm.provider", "azure_openai"),
			attribute.String("llm.deployment", m.deployment),
			attribute.String("llm.function", fn.Name),
		)...),
	)
	defer func() { telemetry.EndSpan(span, err) }()

	fnParam, err := sdkFunctionParam(fn)
	if err != nil {
		return nil, err
	}

	params, reqOpts := m.buildParams(messages, modelpkg.ApplyCallOptions(opts))
	params.Functions = []openaisdk.ChatCompletionNewParamsFunction{fnParam}
	params.FunctionCall = openaisdk.ChatCompletionNewParamsFunctionCallUnion{
		OfFunctionCallOption: &openaisdk.ChatCompletionFunctionCallOptionParam{Name: fn.Name},
	}

	completion, err := m.client.Chat.Completions.New(ctx, params, reqOpts...)
	if err != nil {
		return nil, fmt.Errorf("azure openai sdk call: %w", err)
	}
	if len(completion.Choices) == 0 {
		return nil, &modelpkg.MalformedResponseError{Reason: "response contains no choices"}
	}

	call := completion.Choices[0].Message.FunctionCall
	if call.Name == "" {
		return nil, &modelpkg.MalformedResponseError{Reason: "response choice carries no function call"}
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

// GenerateQueries issues an enforced call of the query_knowledgebase
// function over the conversation and maps the result to queries.
func (m *SDKModel) GenerateQueries(ctx context.Context, messages []modelpkg.Message, opts ...modelpkg.CallOption) ([]modelpkg.Query, error) {
	args, err := m.EnforcedFunctionCall(ctx, messages, queryFunction, opts...)
	if err != nil {
		return nil, err
	}
	return queriesFromArguments(args)
}

// ChatCompletionAsync is not supported by this adapter.
func (m *SDKModel) ChatCompletionAsync(ctx context.Context, messages []modelpkg.Message, opts ...modelpkg.CallOption) (<-chan modelpkg.StreamResult, error) {
	return nil, modelpkg.ErrUnsupported
}

// GenerateQueriesAsync is not supported by this adapter.
func (m *SDKModel) GenerateQueriesAsync(ctx context.Context, messages []modelpkg.Message, opts ...modelpkg.CallOption) (<-chan []modelpkg.Query, error) {
	return nil, modelpkg.ErrUnsupported
}

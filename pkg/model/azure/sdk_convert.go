package azure

import (
	"encoding/json"
	"fmt"
	"strings"

	openaisdk "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	modelpkg "github.com/cexll/llmadapter-go/pkg/model"
)

// buildParams assembles the SDK request from the history, the adapter
// defaults, and the per-call settings. Generation parameters without a
// typed SDK field are injected into the request body so nothing a caller
// sets is dropped.
func (m *SDKModel) buildParams(messages []modelpkg.Message, settings modelpkg.CallSettings) (openaisdk.ChatCompletionNewParams, []option.RequestOption) {
	params := openaisdk.ChatCompletionNewParams{
		Messages: sdkMessages(messages),
		Model:    openaisdk.ChatModel(m.deployment),
	}

	var reqOpts []option.RequestOption
	for key, val := range m.defaults.Merge(settings.Params) {
		switch strings.ToLower(strings.TrimSpace(key)) {
		case "max_tokens":
			if v, ok := toInt(val); ok && v > 0 {
				params.MaxTokens = openaisdk.Int(int64(v))
			}
		case "temperature":
			if v, ok := toFloat(val); ok {
				params.Temperature = openaisdk.Float(v)
			}
		case "top_p":
			if v, ok := toFloat(val); ok {
				params.TopP = openaisdk.Float(v)
			}
		case "presence_penalty":
			if v, ok := toFloat(val); ok {
				params.PresencePenalty = openaisdk.Float(v)
			}
		case "frequency_penalty":
			if v, ok := toFloat(val); ok {
				params.FrequencyPenalty = openaisdk.Float(v)
			}
		case "seed":
			if v, ok := toInt(val); ok {
				params.Seed = openaisdk.Int(int64(v))
			}
		case "user":
			if s, ok := val.(string); ok && s != "" {
				params.User = openaisdk.String(s)
			}
		default:
			reqOpts = append(reqOpts, option.WithJSONSet(key, val))
		}
	}

	if settings.MaxTokens > 0 {
		params.MaxTokens = openaisdk.Int(int64(settings.MaxTokens))
	}
	if settings.User != "" {
		params.User = openaisdk.String(settings.User)
	}
	return params, reqOpts
}

func sdkMessages(messages []modelpkg.Message) []openaisdk.ChatCompletionMessageParamUnion {
	out := make([]openaisdk.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, msg := range messages {
		switch strings.ToLower(msg.Role) {
		case modelpkg.RoleSystem:
			out = append(out, openaisdk.SystemMessage(msg.Content))
		case modelpkg.RoleAssistant:
			out = append(out, openaisdk.AssistantMessage(msg.Content))
		default:
			out = append(out, openaisdk.UserMessage(msg.Content))
		}
	}
	return out
}

func sdkFunctionParam(fn modelpkg.Function) (openaisdk.ChatCompletionNewParamsFunction, error) {
	param := openaisdk.ChatCompletionNewParamsFunction{Name: fn.Name}
	if fn.Description != "" {
		param.Description = openaisdk.String(fn.Description)
	}
	if fn.Parameters != nil {
		schema, err := schemaToMap(fn.Parameters)
		if err != nil {
			return openaisdk.ChatCompletionNewParamsFunction{}, err
		}
		param.Parameters = openaisdk.FunctionParameters(schema)
	}
	return param, nil
}

func schemaToMap(schema any) (map[string]any, error) {
	data, err := json.Marshal(schema)
	if err != nil {
		return nil, fmt.Errorf("marshal parameter schema: %w", err)
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("unmarshal parameter schema: %w", err)
	}
	return out, nil
}

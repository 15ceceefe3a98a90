package azure

import (
	"encoding/json"
	"strconv"
	"strings"

	modelpkg "github.com/cexll/llmadapter-go/pkg/model"
)

// applyParams maps the merged generation parameters onto the request
// payload. Known keys get typed fields; everything else rides in Extra so
// no caller-supplied parameter is dropped.
func applyParams(payload *ChatCompletionRequest, params modelpkg.Params) {
	for key, val := range params {
		switch strings.ToLower(strings.TrimSpace(key)) {
		case "max_tokens":
			if v, ok := toInt(val); ok && v > 0 {
				payload.MaxTokens = v
			}
		case "temperature":
			if v, ok := toFloat(val); ok {
				payload.Temperature = &v
			}
		case "top_p":
			if v, ok := toFloat(val); ok {
				payload.TopP = &v
			}
		case "presence_penalty":
			if v, ok := toFloat(val); ok {
				payload.PresencePenalty = &v
			}
		case "frequency_penalty":
			if v, ok := toFloat(val); ok {
				payload.FrequencyPenalty = &v
			}
		case "stop":
			payload.Stop = parseStop(val)
		case "seed":
			if v, ok := toInt(val); ok {
				payload.Seed = &v
			}
		case "user":
			if s, ok := val.(string); ok && s != "" {
				payload.User = s
			}
		default:
			if payload.Extra == nil {
				payload.Extra = map[string]any{}
			}
			payload.Extra[key] = val
		}
	}
}

func parseStop(val any) []string {
	switch v := val.(type) {
	case string:
		if v == "" {
			return nil
		}
		return []string{v}
	case []string:
		return append([]string(nil), v...)
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		if len(out) == 0 {
			return nil
		}
		return out
	default:
		return nil
	}
}

func toInt(val any) (int, bool) {
	switch v := val.(type) {
	case int:
		return v, true
	case int32:
		return int(v), true
	case int64:
		return int(v), true
	case float32:
		return int(v), true
	case float64:
		return int(v), true
	case json.Number:
		i, err := v.Int64()
		return int(i), err == nil
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(v))
		return i, err == nil
	default:
		return 0, false
	}
}

func toFloat(val any) (float64, bool) {
	switch v := val.(type) {
	case float32:
		return float64(v), true
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

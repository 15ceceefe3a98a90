package azure

import (
	"context"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"

	modelpkg "github.com/cexll/llmadapter-go/pkg/model"
)

// queryFunction is the built-in descriptor used to turn a conversation into
// knowledge-base search queries.
var queryFunction = modelpkg.Function{
	Name:        "query_knowledgebase",
	Description: "Query search engine for relevant information",
	Parameters: &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"queries": {
				Type:        "array",
				Description: "List of queries to send to the search engine.",
				Items:       &jsonschema.Schema{Type: "string"},
			},
		},
		Required: []string{"queries"},
	},
}

// GenerateQueries issues an enforced call of the query_knowledgebase
// function over the conversation and maps the result to queries.
func (m *Model) GenerateQueries(ctx context.Context, messages []modelpkg.Message, opts ...modelpkg.CallOption) ([]modelpkg.Query, error) {
	args, err := m.EnforcedFunctionCall(ctx, messages, queryFunction, opts...)
	if err != nil {
		return nil, err
	}
	return queriesFromArguments(args)
}

// GenerateQueriesAsync is not supported by this adapter.
func (m *Model) GenerateQueriesAsync(ctx context.Context, messages []modelpkg.Message, opts ...modelpkg.CallOption) (<-chan []modelpkg.Query, error) {
	return nil, modelpkg.ErrUnsupported
}

// queriesFromArguments converts a validated argument map into queries. The
// schema guarantees queries is an array of strings, so anything else is a
// malformed response.
func queriesFromArguments(args map[string]any) ([]modelpkg.Query, error) {
	raw, ok := args["queries"].([]any)
	if !ok {
		return nil, &modelpkg.MalformedResponseError{Reason: "queries argument is not an array"}
	}
	out := make([]modelpkg.Query, 0, len(raw))
	for i, item := range raw {
		text, ok := item.(string)
		if !ok {
			return nil, &modelpkg.MalformedResponseError{
				Reason: fmt.Sprintf("queries[%d] is not a string", i),
			}
		}
		out = append(out, modelpkg.Query{Text: text})
	}
	return out, nil
}

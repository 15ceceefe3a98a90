package model

import "context"

// Model describes the behavior every chat-model backend must support.
// ChatCompletion is a unary request/response call. EnforcedFunctionCall
// forces the service to answer with a structured call to the supplied
// function and returns its validated arguments. GenerateQueries turns a
// conversation into search queries via an enforced call.
type Model interface {
	ChatCompletion(ctx context.Context, messages []Message, opts ...CallOption) (*ChatResponse, error)
	EnforcedFunctionCall(ctx context.Context, messages []Message, fn Function, opts ...CallOption) (map[string]any, error)
	GenerateQueries(ctx context.Context, messages []Message, opts ...CallOption) ([]Query, error)
}

// StreamingModel is an optional interface for backends that can deliver
// incremental completion output through a callback.
type StreamingModel interface {
	ChatCompletionStream(ctx context.Context, messages []Message, cb StreamCallback, opts ...CallOption) error
}

// StreamCallback consumes incremental output produced by a streaming
// completion. Implementations should call the callback in order, using
// StreamResult.Final to signal completion.
type StreamCallback func(StreamResult) error

// StreamResult wraps a partial or final model response. When Final is true
// the stream is complete and no more chunks will be delivered.
type StreamResult struct {
	Message Message
	Final   bool
}

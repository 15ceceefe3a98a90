package model

// Chat roles understood by the adapters.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single role-tagged conversational turn. An ordered slice of
// messages forms the chat history; adapters must serialize the history in
// the order given, unchanged.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Query is one search query generated from a conversation.
type Query struct {
	Text string `json:"text"`
}

// ChatResponse is the result of a unary chat completion.
type ChatResponse struct {
	ID      string     `json:"id,omitempty"`
	Model   string     `json:"model,omitempty"`
	Message Message    `json:"message"`
	Usage   TokenUsage `json:"usage"`
}

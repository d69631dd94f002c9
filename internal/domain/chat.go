package domain

import "context"

// Chat roles as exchanged with the presentation layer.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is a single turn of an assistant conversation.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Completion is a chat model answer with its token usage.
type Completion struct {
	Text             string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// ChatModel answers a question given a system prompt and prior turns.
type ChatModel interface {
	Complete(ctx context.Context, system string, history []ChatMessage, question string) (Completion, error)
	Model() string
}

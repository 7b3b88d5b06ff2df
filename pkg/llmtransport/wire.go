package llmtransport

// generateRequest is the single request message sent on the Generate
// stream. Fields mirror the ConversationMessage/Generate
// request shape (pkg/agent/llm_client.go) collapsed to AAv3's single
// system+user prompt pair (spec.md §4.1).
type generateRequest struct {
	Model        string `json:"model"`
	SystemPrompt string `json:"system_prompt"`
	UserPrompt   string `json:"user_prompt"`
	MaxTokens    int    `json:"max_tokens"`
}

// generateChunk is one server-streamed response chunk. Done marks the
// final chunk; Error carries a server-reported failure message instead
// of content.
type generateChunk struct {
	Content string `json:"content"`
	Done    bool   `json:"done"`
	Error   string `json:"error,omitempty"`
}

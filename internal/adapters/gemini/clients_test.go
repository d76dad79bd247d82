package gemini

// The CLI binaries probe provider clients for a Close method before
// shutdown; both Gemini clients hold a genai.Client and must expose it.
var (
	_ interface{ Close() error } = (*EmbeddingClient)(nil)
	_ interface{ Close() error } = (*ReasoningClient)(nil)
)

package pipeline

// EmbedFunc is a function that generates embeddings for text
type EmbedFunc func(text string) ([]float32, error)

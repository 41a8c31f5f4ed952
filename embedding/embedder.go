package embedding

import "context"

// Embedder maps text to a fixed-dimension float vector. Deterministic
// for a fixed model version; the dimension is fixed per deployment.
type Embedder interface {
	// Embed embeds a single query string.
	Embed(ctx context.Context, text string) ([]float64, error)

	// EmbedBatch embeds document chunks, batching upstream calls for
	// throughput. The result has one vector per input, in order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float64, error)

	// Dimension reports the vector length every call returns.
	Dimension() int
}

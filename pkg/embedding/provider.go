// Package embedding turns query text into vectors for ANN search.
package embedding

import "context"

// Provider defines the interface for generating text embeddings.
type Provider interface {
	// Embed returns the vector for text. The length always matches the
	// dimension the provider was configured with.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Dimensions reports the configured vector width.
	Dimensions() int
}

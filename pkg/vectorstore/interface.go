package vectorstore

import "context"

// VectorStore is a technology-agnostic interface for vector similarity search.
type VectorStore interface {
	// Search performs vector similarity search with optional filtering.
	Search(ctx context.Context, vector []float32, filter SearchFilter, limit int) ([]SearchResult, error)

	// Close releases any resources held by the vector store.
	Close() error
}

// SearchFilter defines filtering options for vector search.
type SearchFilter struct {
	// Metadata filters results by payload key-value pairs.
	Metadata map[string]any

	// MinScore drops results below this similarity threshold.
	MinScore float32
}

// SearchResult represents a single hit.
type SearchResult struct {
	ID       string
	Score    float32
	Content  string
	Metadata map[string]any
}

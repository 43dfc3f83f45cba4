package model

// GenerationState stores per-invocation state for the generation graph.
// Concurrency model:
//   - Registered as graph local state via compose.WithGenLocalState.
//   - Read and written only inside eino state handlers or compose.ProcessState,
//     which serialize access, so no extra locking is needed.
type GenerationState struct {
	Input GenerationInput

	// SafetyCategory is set by the screen when the message must not be coached.
	SafetyCategory string

	RetrievalFailed bool
	ContextDocs     int

	// Accumulated LLM cost (USD) for this generation
	TotalCostUSD float64
}

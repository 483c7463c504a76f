// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - DocumentStore: Durable document rows, the source of truth for rebuilds
//   - ArtifactStore: Raw uploaded files, keyed by document name
//   - VectorIndex: Exact nearest-neighbour search over chunk embeddings
//   - EmbeddingService: Maps chunk text to fixed-dimension vectors
//   - NormaliserRegistry: Extracts text from uploaded bytes
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - LLMService: Answer generation. Without it, ask returns the fallback answer.
//   - PromptStore: Editable prompts. Without it, built-in defaults are used.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or normaliser package
package driven

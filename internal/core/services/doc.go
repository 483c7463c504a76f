// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The ingest, answer and document services share a Corpus, which pairs
// the vector index with the lock that keeps it consistent with the
// document store.
package services

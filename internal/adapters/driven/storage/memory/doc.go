// Package memory provides in-memory implementations of driven stores.
// They back unit tests and ephemeral sessions; nothing is persisted.
package memory

// Package sqlite provides a SQLite-based implementation of the document store.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
// Applied versions are recorded in schema_migrations.
//
// The documents table mirrors the persisted record of the original tool:
// an auto-increment id, a unique name, the upload date as
// "YYYY-MM-DD HH:MM:SS" text, and the cleaned content. A protected flag
// marks the bootstrap document.
//
// # Data Location
//
// By default, the database is stored at ~/.ragdesk/data/documents.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode.
package sqlite

// Package sqlite provides a SQLite-backed implementation of driven.ChunkStore.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. Stores and their embedded chunks survive
// process restarts, so a store built by one analysis can be searched by a later
// `fixpath search` invocation.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// Embeddings are stored as little-endian float32 blobs. Chunk order within a
// store is insertion order; replacing a chunk by ID keeps its position.
//
// # Data Location
//
// By default, the database is stored at ~/.fixpath/data/chunks.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode.
package sqlite

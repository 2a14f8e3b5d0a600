// Package history persists routed price and trade updates to
// PostgreSQL. Writes are append-only: batches insert with ON CONFLICT
// DO NOTHING, so replayed records are counted as conflicts rather
// than updated.
package history

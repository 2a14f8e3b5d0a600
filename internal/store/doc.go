// Package store implements the Topic Store component.
//
// The Topic Store:
//   - Holds at most max_size topics keyed by market ID
//   - Evicts the entry least recently inserted-or-updated when full
//     (upserts refresh recency, reads and price updates do not)
//   - Maintains an additive keyword index over question, description,
//     and categories
//   - Serves case-insensitive substring search as a linear scan in
//     store order
//
// Every public operation is atomic; a single mutex guards the map, the
// recency list, and the index. No operation spans multiple calls.
package store

// Package topic serves topic queries from the in-memory store and
// keeps the store synced with the opinion.trade REST API.
//
// The service performs a blocking initial bulk load on Start, then
// reconciles in the background on a fixed interval. Queries (list,
// search, filter) operate on store snapshots and never block the
// streaming write path.
package topic

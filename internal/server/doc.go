// Package server exposes the topic cache over HTTP: topic listing,
// keyword search, advanced filtering, single-topic lookup, a health
// endpoint reflecting stream state, and cache diagnostics.
package server

// Package api provides the opinion.trade REST client used for the
// initial bulk load and the periodic topic reconcile.
//
// Endpoints:
//   - GET /markets (limit/offset paging)
//   - GET /markets/{id}
//
// Wire fields are camelCase; conversion to internal models happens in
// convert.go.
package api

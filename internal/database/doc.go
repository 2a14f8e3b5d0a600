// Package database provides the PostgreSQL connection pool for the
// optional price history writer.
package database

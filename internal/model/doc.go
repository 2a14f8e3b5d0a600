// Package model defines shared data types used across the opinion-data service.
//
// Conventions:
//   - Prices: decimal-valued strings exactly as received from the exchange
//     (never converted to floats, so no rounding of quoted prices)
//   - Volume: arbitrary-precision decimal
//   - Timestamps: time.Time in UTC
//   - IDs: int64 market IDs for stream subscriptions, string topic IDs for
//     the external API, uuid.UUID for history rows
package model

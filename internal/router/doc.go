// Package router implements the Message Router component.
//
// The router consumes raw frames from the Connection Manager's channel,
// decodes the msgType discriminator, validates the typed payload, and
// applies last-price and last-trade updates to the Topic Store. Depth
// diffs are accepted but do not mutate the price view; PONG and unknown
// kinds are dropped at low severity. Malformed frames are logged and
// dropped without ever failing the connection.
//
// A single consumer goroutine drains the input channel, so frame
// handling is serialized: updates are applied in arrival order and no
// per-frame goroutines are spawned.
package router

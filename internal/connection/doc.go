// Package connection implements the Connection Manager component.
//
// The Connection Manager:
//   - Owns a single WebSocket connection to the opinion.trade realtime feed
//   - Runs an explicit state machine: Disconnected, Connecting, Connected, Backoff
//   - Sends a subscribe frame for every cached topic on each (re)connect
//   - Sends an application-level heartbeat frame on a fixed interval
//   - Hands inbound frames to the Message Router over a single channel
//   - Reconnects with exponential backoff, doubling from a base delay up
//     to a cap and resetting on any successful connect
//
// Transport errors are contained: they drive backoff and are never
// surfaced to the caller of Start. The only externally observable
// failure signal is Status().Connected == false.
package connection

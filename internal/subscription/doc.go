// Package subscription derives the subscribe frames the realtime feed
// needs to start delivering updates for every cached topic.
//
// The derivation is pure: no I/O, no state. The Connection Manager calls
// FramesFor on every successful (re)connect and sends the result, so the
// subscription set is always recomputed from current store contents
// rather than persisted.
package subscription

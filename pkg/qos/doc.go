// Package qos defines the quality-of-service descriptor attached to
// outgoing publications and replies.
//
// A QoS value is a triple of congestion control mode (drop or block under
// backpressure), priority (REAL_TIME down to BACKGROUND), and the express
// flag (bypass batching). Values are built once, via Builder or Default,
// and immutable afterwards.
package qos

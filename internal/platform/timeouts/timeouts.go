// Package timeouts defines shared timeout constants used across the server.
// Centralizing these values prevents drift between boundaries and makes the
// durations discoverable.
package timeouts

import "time"

// ReadHeader limits how long the HTTP server waits for request headers.
const ReadHeader = 5 * time.Second

// Shutdown limits how long the server waits for in-flight requests and
// websocket drains during graceful shutdown.
const Shutdown = 5 * time.Second

// WebsocketWrite caps a single websocket frame write to a participant.
const WebsocketWrite = 10 * time.Second

// WebsocketPong is how long a participant connection may go silent before
// it is considered dead.
const WebsocketPong = 60 * time.Second

// Package server runs the authoritative snake game: it accepts TCP and
// WebSocket clients, applies their steering through a single dispatcher
// goroutine and advances the world on a fixed tick, broadcasting each step.
//
// The implementation is organized into specialized files for configuration,
// the connection registry, sessions, the dispatcher, the tick scheduler and
// the HTTP side-car to keep the codebase maintainable and testable.
package server

// Package server constructs the HTTP side-car with timeouts suitable for
// production use.
package server

import (
	"net/http"
	"time"
)

// CreateServer creates and configures an HTTP server for addr and handler.
// WebSocket connections are hijacked, so the timeouts only bound plain requests
// and the upgrade handshake.
func CreateServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}

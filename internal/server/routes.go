// Package server wires the side-car's HTTP handlers into a ServeMux.
package server

import "net/http"

// SetupRoutes returns a ServeMux with the health check, the WebSocket gateway
// and the stats endpoint for s.
func SetupRoutes(s *Server) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/", HealthHandler)
	mux.HandleFunc("/ws", s.WebSocketHandler)
	mux.HandleFunc("/stats", s.StatsHandler)
	return mux
}

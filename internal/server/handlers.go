// Package server exposes HTTP handlers for the side-car: health checks, the
// WebSocket gateway and the stats snapshot.
package server

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/vmihailenco/msgpack/v5"
)

const msgpackContentType = "application/msgpack"

// HealthHandler provides a simple health check endpoint that returns server status.
func HealthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	_, _ = fmt.Fprintf(w, "Snake server is running!")
}

// WebSocketHandler upgrades GET requests to WebSocket and hands the
// connection to the dispatcher as if it had arrived on the game listener.
func (s *Server) WebSocketHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed. WebSocket endpoint only accepts GET requests.", http.StatusMethodNotAllowed)
		return
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.origins.checkOrigin,
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	s.submit(newWSTransport(conn))
}

// StatsHandler reports a Stats snapshot as JSON, or as MessagePack when the
// request asks for it with ?format=msgpack or an Accept header.
func (s *Server) StatsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed. Stats endpoint only accepts GET requests.", http.StatusMethodNotAllowed)
		return
	}

	stats := s.Stats()

	if wantsMsgpack(r) {
		data, err := msgpack.Marshal(&stats)
		if err != nil {
			log.Printf("Error encoding stats: %v", err)
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", msgpackContentType)
		if _, err := w.Write(data); err != nil {
			log.Printf("Error writing stats response: %v", err)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(stats); err != nil {
		log.Printf("Error writing stats response: %v", err)
	}
}

func wantsMsgpack(r *http.Request) bool {
	if strings.EqualFold(r.URL.Query().Get("format"), "msgpack") {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), msgpackContentType)
}

package server

import (
	"time"
)

// SnakeStats describes one live snake and the session driving it.
type SnakeStats struct {
	ID         uint8  `json:"id" msgpack:"id"`
	SessionKey string `json:"session_key,omitempty" msgpack:"session_key,omitempty"`
	Addr       string `json:"addr,omitempty" msgpack:"addr,omitempty"`
	Length     int    `json:"length" msgpack:"length"`
	HeadX      int    `json:"head_x" msgpack:"head_x"`
	HeadY      int    `json:"head_y" msgpack:"head_y"`
	Direction  string `json:"direction" msgpack:"direction"`
}

// Stats is a point-in-time snapshot of the server.
type Stats struct {
	UptimeSeconds  float64      `json:"uptime_seconds" msgpack:"uptime_seconds"`
	Ticks          uint64       `json:"ticks" msgpack:"ticks"`
	Connections    int          `json:"connections" msgpack:"connections"`
	MaxConnections int          `json:"max_connections" msgpack:"max_connections"`
	FoodX          int          `json:"food_x" msgpack:"food_x"`
	FoodY          int          `json:"food_y" msgpack:"food_y"`
	Snakes         []SnakeStats `json:"snakes" msgpack:"snakes"`
}

// Stats snapshots the world and the connection table.
func (s *Server) Stats() Stats {
	s.gameMu.RLock()
	defer s.gameMu.RUnlock()

	food := s.engine.Food()
	stats := Stats{
		Ticks:          s.ticks.Load(),
		Connections:    s.registry.Len(),
		MaxConnections: s.registry.Capacity(),
		FoodX:          food.X,
		FoodY:          food.Y,
		Snakes:         make([]SnakeStats, 0, s.engine.Len()),
	}
	if !s.startedAt.IsZero() {
		stats.UptimeSeconds = time.Since(s.startedAt).Seconds()
	}

	for _, id := range s.engine.IDs() {
		snake, _ := s.engine.Snake(id)
		entry := SnakeStats{
			ID:        id,
			Length:    snake.Len(),
			HeadX:     snake.Head.X,
			HeadY:     snake.Head.Y,
			Direction: snake.Direction.String(),
		}
		if sess, ok := s.registry.Get(id); ok {
			entry.SessionKey = sess.key.String()
			entry.Addr = sess.addr
		}
		stats.Snakes = append(stats.Snakes, entry)
	}
	return stats
}

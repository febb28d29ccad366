package server

import (
	"log"
	"time"
)

// runScheduler advances the world once per tick interval until shutdown.
func (s *Server) runScheduler() {
	ticker := time.NewTicker(s.cfg.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.tick()
		case <-s.ctx.Done():
			return
		}
	}
}

// tick runs one Update and broadcasts its outcome. The engine lock is held
// until the frames are queued so a client joining concurrently sees either
// the world before this tick or after it, never half of it.
func (s *Server) tick() {
	s.gameMu.Lock()
	defer s.gameMu.Unlock()

	result, err := s.engine.Update()
	s.ticks.Add(1)
	if err != nil {
		log.Printf("Tick %d: %v", s.ticks.Load(), err)
	}

	// Killed snakes leave through the dispatcher's disconnect path.
	for _, id := range result.Killed {
		if s.registry.Close(id) {
			log.Printf("Snake %d died; closing its connection", id)
		}
	}

	if result.Ate {
		frame, err := foodUpdateFrame(result.Eater, s.engine.Food())
		if err != nil {
			log.Printf("Failed to encode food update: %v", err)
		} else {
			s.registry.Broadcast(frame, 0)
		}
	}

	frame, err := headUpdateFrame(s.engine)
	if err != nil {
		log.Printf("Failed to encode head update: %v", err)
		return
	}
	s.registry.Broadcast(frame, 0)
}

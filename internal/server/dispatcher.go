package server

import (
	"log"
	"time"

	"github.com/Tyrowin/gosnake/internal/game"
	"github.com/Tyrowin/gosnake/internal/protocol"
)

// rejectTimeout bounds how long writing a rejection may block the dispatcher.
const rejectTimeout = time.Second

// runDispatcher is the only goroutine that adds sessions to or removes them
// from the registry. It runs until the server is shut down.
func (s *Server) runDispatcher() {
	for {
		select {
		case ev := <-s.events:
			switch ev.kind {
			case eventAccept:
				s.handleAccept(ev.transport)
			case eventFrame:
				s.handleFrame(ev.session, ev.body)
			case eventDisconnect:
				s.handleDisconnect(ev.session, ev.err)
			}
		case <-s.ctx.Done():
			return
		}
	}
}

// handleAccept admits a new connection: it spawns the snake, announces it to
// everyone else, sends the newcomer the world, and only then registers it.
func (s *Server) handleAccept(t Transport) {
	if s.ctx.Err() != nil {
		_ = t.Close()
		return
	}

	id, err := s.registry.NextID()
	if err != nil {
		log.Printf("Rejecting connection from %s: %v", t.RemoteAddr(), err)
		reject(t)
		return
	}

	sess := newSession(id, t, s.cfg)

	s.gameMu.Lock()
	snake, err := s.engine.SpawnSnake(id)
	if err != nil {
		s.gameMu.Unlock()
		log.Printf("Rejecting connection from %s: %v", sess.addr, err)
		reject(t)
		return
	}

	connect, err := snakeConnectFrame(id, snake)
	if err == nil {
		var info []byte
		info, err = infoFrame(s.engine, id)
		if err == nil {
			s.registry.Broadcast(connect, id)
			sess.enqueue(info)
			s.registry.Add(sess)
		}
	}
	if err != nil {
		s.engine.KillSnake(id)
		s.gameMu.Unlock()
		log.Printf("Failed to encode join frames for snake %d: %v", id, err)
		reject(t)
		return
	}
	s.gameMu.Unlock()

	sess.start(&s.wg, s.events, s.ctx.Done())
	log.Printf("Client %s connected as snake %d (session %s, %d connected)", sess.addr, id, sess.key, s.registry.Len())
}

// handleFrame applies a frame read from a registered session. Anything other
// than a well-formed DirectionUpdate is logged and dropped.
func (s *Server) handleFrame(sess *Session, body []byte) {
	if current, ok := s.registry.Get(sess.id); !ok || current != sess {
		return
	}

	packet, err := protocol.Decode(body)
	if err != nil {
		log.Printf("Warning: discarding frame from snake %d: %v", sess.id, err)
		return
	}

	update, ok := packet.(protocol.DirectionUpdate)
	if !ok {
		log.Printf("Warning: unexpected %s frame from snake %d; ignoring", packet.Type(), sess.id)
		return
	}

	s.gameMu.Lock()
	s.engine.ChangeDirection(sess.id, game.Direction(update.Direction))
	s.gameMu.Unlock()
}

// handleDisconnect removes a session whose transport ended, kills its snake
// and tells the remaining clients.
func (s *Server) handleDisconnect(sess *Session, cause error) {
	s.gameMu.Lock()
	if !s.registry.Remove(sess) {
		s.gameMu.Unlock()
		sess.Close()
		return
	}
	s.engine.KillSnake(sess.id)

	frame, err := protocol.Marshal(protocol.SnakeDisconnect{ID: sess.id})
	if err == nil {
		s.registry.Broadcast(frame, sess.id)
	}
	s.gameMu.Unlock()

	sess.Close()

	if err != nil {
		log.Printf("Failed to encode disconnect for snake %d: %v", sess.id, err)
	}
	if cause != nil && !isExpectedCloseError(cause) {
		log.Printf("Client %s disconnected, snake %d removed (session %s): %v", sess.addr, sess.id, sess.key, cause)
	} else {
		log.Printf("Client %s disconnected, snake %d removed (session %s)", sess.addr, sess.id, sess.key)
	}
}

// reject writes the ConnRejected frame and closes the transport.
func reject(t Transport) {
	if err := t.SetWriteDeadline(time.Now().Add(rejectTimeout)); err == nil {
		if _, err := t.Write(rejectedFrame); err != nil && !isExpectedCloseError(err) {
			log.Printf("Error writing rejection to %s: %v", t.RemoteAddr(), err)
		}
	}
	if err := t.Close(); err != nil && !isExpectedCloseError(err) {
		log.Printf("Error closing rejected connection %s: %v", t.RemoteAddr(), err)
	}
}

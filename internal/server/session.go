// Package server manages individual game sessions, handling the read and
// write pumps, rate limiting and lifecycle control for each connection.
package server

import (
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Tyrowin/gosnake/internal/protocol"
)

// Session is one connected client. Its id doubles as the id of the snake it controls.
type Session struct {
	id          uint8
	key         uuid.UUID
	transport   Transport
	addr        string
	connectedAt time.Time

	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once

	writeTimeout time.Duration
	rateLimiter  *rateLimiter
	rateLimit    RateLimitConfig
}

// newSession wraps an accepted transport. The pumps are not started until start.
func newSession(id uint8, transport Transport, cfg Config) *Session {
	return &Session{
		id:           id,
		key:          uuid.New(),
		transport:    transport,
		addr:         transport.RemoteAddr().String(),
		connectedAt:  time.Now(),
		send:         make(chan []byte, cfg.SendBuffer),
		done:         make(chan struct{}),
		writeTimeout: cfg.WriteTimeout,
		rateLimiter:  newRateLimiter(cfg.RateLimit),
		rateLimit:    cfg.RateLimit,
	}
}

// ID returns the connection id.
func (s *Session) ID() uint8 {
	return s.id
}

// Key returns the session's unique correlation key.
func (s *Session) Key() uuid.UUID {
	return s.key
}

// Addr returns the remote address of the client.
func (s *Session) Addr() string {
	return s.addr
}

// start launches the read and write pumps. Reads are reported to events until
// stop is closed.
func (s *Session) start(wg *sync.WaitGroup, events chan<- event, stop <-chan struct{}) {
	wg.Add(2)
	go func() {
		defer wg.Done()
		s.writePump()
	}()
	go func() {
		defer wg.Done()
		s.readPump(events, stop)
	}()
}

// enqueue queues a frame for the write pump without blocking. A session whose
// queue is full is closed; its reader then reports the disconnect.
func (s *Session) enqueue(frame []byte) bool {
	select {
	case <-s.done:
		return false
	default:
	}

	select {
	case s.send <- frame:
		return true
	default:
		log.Printf("Send buffer full for snake %d (%s); closing connection", s.id, s.addr)
		s.Close()
		return false
	}
}

// Close shuts the transport down. It is safe to call more than once and from
// any goroutine; it never touches the registry.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		if err := s.transport.Close(); err != nil && !isExpectedCloseError(err) {
			log.Printf("Error closing connection for snake %d (%s): %v", s.id, s.addr, err)
		}
	})
}

// closed reports whether Close has been called.
func (s *Session) closed() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

// report hands an event to the dispatcher unless the server is stopping.
func (s *Session) report(events chan<- event, stop <-chan struct{}, ev event) bool {
	select {
	case events <- ev:
		return true
	case <-stop:
		return false
	}
}

// checkRateLimit verifies if the client has exceeded rate limits
// and returns true if the frame should be processed
func (s *Session) checkRateLimit() bool {
	if s.rateLimiter != nil && !s.rateLimiter.allow() {
		log.Printf("Rate limit exceeded for snake %d (%d frames per %s); discarding frame", s.id, s.rateLimit.Burst, s.rateLimit.RefillInterval)
		return false
	}
	return true
}

func (s *Session) readPump(events chan<- event, stop <-chan struct{}) {
	for {
		body, err := protocol.ReadFrame(s.transport)
		if errors.Is(err, protocol.ErrEmptyFrame) {
			log.Printf("Zero-length frame from snake %d (%s); ignoring", s.id, s.addr)
			continue
		}
		if err != nil {
			s.report(events, stop, event{kind: eventDisconnect, session: s, err: err})
			return
		}

		if !s.checkRateLimit() {
			continue
		}

		if !s.report(events, stop, event{kind: eventFrame, session: s, body: body}) {
			return
		}
	}
}

func (s *Session) writePump() {
	for {
		select {
		case frame := <-s.send:
			if !s.write(frame) {
				s.Close()
				return
			}
		case <-s.done:
			return
		}
	}
}

// write sends one frame with the configured deadline and returns false if the
// connection should be closed.
func (s *Session) write(frame []byte) bool {
	if err := s.transport.SetWriteDeadline(time.Now().Add(s.writeTimeout)); err != nil {
		if !isExpectedCloseError(err) {
			log.Printf("Error setting write deadline for snake %d (%s): %v", s.id, s.addr, err)
		}
		return false
	}
	if _, err := s.transport.Write(frame); err != nil {
		if !isExpectedCloseError(err) {
			log.Printf("Error writing to snake %d (%s): %v", s.id, s.addr, err)
		}
		return false
	}
	return true
}

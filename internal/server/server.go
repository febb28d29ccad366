// Package server constructs the snake server and manages its lifecycle.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Tyrowin/gosnake/internal/game"
)

// Server owns the world and every connection to it.
//
// Two locks guard the shared state: gameMu guards the engine and the
// registry guards the connection table. Whenever both are needed gameMu is
// taken first.
type Server struct {
	cfg     Config
	origins *originPolicy

	gameMu sync.RWMutex
	engine *game.Engine

	registry *Registry
	events   chan event

	listener     net.Listener
	httpServer   *http.Server
	httpListener net.Listener

	ctx            context.Context
	cancel         context.CancelFunc
	wg             sync.WaitGroup
	dispatcherDone chan struct{}

	startedAt time.Time
	ticks     atomic.Uint64
}

// New creates a server from cfg. Passing nil uses the defaults. Nothing
// listens until Start.
func New(cfg *Config) *Server {
	if cfg == nil {
		cfg = NewConfig()
	}
	sanitized := sanitizeConfig(*cfg)

	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		cfg:            sanitized,
		origins:        newOriginPolicy(sanitized.AllowedOrigins),
		engine:         game.NewEngine(sanitized.Seed),
		registry:       NewRegistry(sanitized.MaxConnections),
		events:         make(chan event, 64),
		ctx:            ctx,
		cancel:         cancel,
		dispatcherDone: make(chan struct{}),
	}
}

// Start binds the game listener and, if configured, the HTTP side-car, then
// runs the dispatcher, the tick scheduler and the accept loops in the
// background.
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.cfg.Addr, err)
	}
	s.listener = listener

	if s.cfg.HTTPAddr != "" {
		httpListener, err := net.Listen("tcp", s.cfg.HTTPAddr)
		if err != nil {
			_ = listener.Close()
			return fmt.Errorf("listen on %s: %w", s.cfg.HTTPAddr, err)
		}
		s.httpListener = httpListener
		s.httpServer = CreateServer(s.cfg.HTTPAddr, SetupRoutes(s))
	}

	s.startedAt = time.Now()

	go func() {
		defer close(s.dispatcherDone)
		s.runDispatcher()
	}()

	s.wg.Add(2)
	go func() {
		defer s.wg.Done()
		s.runScheduler()
	}()
	go func() {
		defer s.wg.Done()
		s.acceptLoop()
	}()

	log.Printf("Snake server listening on %s (max %d connections, tick %s)", listener.Addr(), s.cfg.MaxConnections, s.cfg.TickInterval)

	if s.httpServer != nil {
		go func() {
			log.Printf("HTTP side-car listening on %s", s.httpListener.Addr())
			if err := s.httpServer.Serve(s.httpListener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Printf("HTTP server error: %v", err)
			}
		}()
	}

	return nil
}

// Addr returns the address of the game listener, or nil before Start.
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// HTTPAddr returns the address of the HTTP side-car, or nil if it is disabled.
func (s *Server) HTTPAddr() net.Addr {
	if s.httpListener == nil {
		return nil
	}
	return s.httpListener.Addr()
}

// Registry returns the connection registry.
func (s *Server) Registry() *Registry {
	return s.registry
}

// submit hands an accepted transport to the dispatcher, closing it instead if
// the server is stopping.
func (s *Server) submit(t Transport) {
	select {
	case s.events <- event{kind: eventAccept, transport: t}:
	case <-s.ctx.Done():
		_ = t.Close()
	}
}

func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if s.ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return
			}
			log.Printf("Accept call failed: %v", err)
			continue
		}
		s.submit(conn)
	}
}

// Shutdown stops accepting, closes every session and waits for the server's
// goroutines to finish, or until the timeout is reached.
func (s *Server) Shutdown(timeout time.Duration) error {
	log.Println("Initiating server shutdown...")

	s.cancel()
	if s.listener != nil {
		if err := s.listener.Close(); err != nil && !isExpectedCloseError(err) {
			log.Printf("Error closing game listener: %v", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			log.Printf("HTTP server shutdown error: %v", err)
		}
	}

	// The dispatcher is the only goroutine that registers sessions, so once
	// it has exited no session can appear after CloseAll.
	if s.listener != nil {
		select {
		case <-s.dispatcherDone:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	s.drainEvents()
	closed := s.registry.CloseAll()
	log.Printf("Closed %d client connections", closed)

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Println("Server shutdown completed successfully")
		return nil
	case <-ctx.Done():
		log.Println("Server shutdown timeout reached, some goroutines may still be running")
		return context.DeadlineExceeded
	}
}

// drainEvents closes transports that were accepted but never admitted.
func (s *Server) drainEvents() {
	for {
		select {
		case ev := <-s.events:
			if ev.kind == eventAccept {
				_ = ev.transport.Close()
			}
		default:
			return
		}
	}
}

// Package server defines the sentinel errors, transport abstraction and
// dispatcher events shared by the registry, sessions and loops.
package server

import (
	"errors"
	"io"
	"net"
	"strings"
	"time"
)

var (
	// ErrServerFull is returned when the registry already holds MaxConnections sessions.
	ErrServerFull = errors.New("server: connection limit reached")
	// ErrNoFreeID is returned when every connection id is taken.
	ErrNoFreeID = errors.New("server: no free connection id")
)

// Transport is a byte stream carrying frames. A TCP connection satisfies it
// directly; WebSocket connections are adapted to it.
type Transport interface {
	io.ReadWriteCloser
	SetWriteDeadline(t time.Time) error
	RemoteAddr() net.Addr
}

type eventKind int

const (
	// eventAccept carries a freshly accepted transport.
	eventAccept eventKind = iota
	// eventFrame carries one frame body read from a session.
	eventFrame
	// eventDisconnect reports that a session's transport ended or failed.
	eventDisconnect
)

// event is what the accept loops and session readers hand to the dispatcher.
type event struct {
	kind      eventKind
	transport Transport
	session   *Session
	body      []byte
	err       error
}

// isExpectedCloseError checks if an error is expected during connection closure.
func isExpectedCloseError(err error) bool {
	if err == nil {
		return true
	}
	if errors.Is(err, net.ErrClosed) || errors.Is(err, io.EOF) {
		return true
	}
	errStr := err.Error()
	return strings.Contains(errStr, "use of closed network connection") ||
		strings.Contains(errStr, "websocket: close sent") ||
		strings.Contains(errStr, "connection reset by peer") ||
		strings.Contains(errStr, "broken pipe")
}

package server

import (
	"errors"
	"io"
	"net"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// maxWSMessageSize caps a single inbound WebSocket message. Clients only ever
// send DirectionUpdate frames, which are four bytes long.
const maxWSMessageSize = 512

const wsCloseGrace = time.Second

// wsTransport presents a WebSocket connection as a frame byte stream so that
// browser clients share the TCP session code. Binary message boundaries carry
// no meaning; frames may span or share messages.
type wsTransport struct {
	conn      *websocket.Conn
	reader    io.Reader
	closeOnce sync.Once
	closeErr  error
}

func newWSTransport(conn *websocket.Conn) *wsTransport {
	conn.SetReadLimit(maxWSMessageSize)
	return &wsTransport{conn: conn}
}

// Read reads from the current binary message, advancing to the next one when
// it is exhausted. Text messages are skipped. A normal close reads as io.EOF.
func (t *wsTransport) Read(p []byte) (int, error) {
	for {
		if t.reader == nil {
			messageType, r, err := t.conn.NextReader()
			if err != nil {
				return 0, translateWSError(err)
			}
			if messageType != websocket.BinaryMessage {
				continue
			}
			t.reader = r
		}

		n, err := t.reader.Read(p)
		if errors.Is(err, io.EOF) {
			t.reader = nil
			if n > 0 {
				return n, nil
			}
			continue
		}
		return n, err
	}
}

// Write sends p as one binary message. Only the session's write pump calls it.
func (t *wsTransport) Write(p []byte) (int, error) {
	if err := t.conn.WriteMessage(websocket.BinaryMessage, p); err != nil {
		return 0, err
	}
	return len(p), nil
}

// Close sends a close message and tears down the connection.
func (t *wsTransport) Close() error {
	t.closeOnce.Do(func() {
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		_ = t.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(wsCloseGrace))
		t.closeErr = t.conn.Close()
	})
	return t.closeErr
}

func (t *wsTransport) SetWriteDeadline(deadline time.Time) error {
	return t.conn.SetWriteDeadline(deadline)
}

func (t *wsTransport) RemoteAddr() net.Addr {
	return t.conn.RemoteAddr()
}

func translateWSError(err error) error {
	if websocket.IsCloseError(err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway,
		websocket.CloseNoStatusReceived) {
		return io.EOF
	}
	return err
}

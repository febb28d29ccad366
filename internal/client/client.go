package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"

	"github.com/Tyrowin/gosnake/internal/game"
	"github.com/Tyrowin/gosnake/internal/protocol"
)

// Client is one player's connection to the server together with its mirror.
// Next and Steer may run on different goroutines; Next itself must not be
// called concurrently.
type Client struct {
	conn  io.ReadWriteCloser
	World *World

	mu        sync.Mutex
	direction game.Direction
}

// Dial connects to a server over TCP.
func Dial(ctx context.Context, addr string) (*Client, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	return New(conn), nil
}

// New wraps an established byte stream. Any transport carrying the frame
// stream works, TCP or otherwise.
func New(conn io.ReadWriteCloser) *Client {
	return &Client{
		conn:      conn,
		World:     NewWorld(),
		direction: game.Right,
	}
}

// Next reads the next frame, applies it to the mirror and returns it.
// Zero-length frames are skipped. It returns ErrRejected when the server is
// full and io.EOF when the server closed the stream. Decode failures are
// returned without closing anything, so the caller may keep reading.
func (c *Client) Next() (protocol.Packet, error) {
	for {
		body, err := protocol.ReadFrame(c.conn)
		if errors.Is(err, protocol.ErrEmptyFrame) {
			continue
		}
		if err != nil {
			return nil, err
		}

		p, err := protocol.Decode(body)
		if err != nil {
			return nil, err
		}
		if err := c.World.Apply(p); err != nil {
			return p, err
		}
		return p, nil
	}
}

// WaitJoined reads frames until the Info frame has been applied.
func (c *Client) WaitJoined() error {
	for !c.World.Joined {
		if _, err := c.Next(); err != nil {
			return err
		}
	}
	return nil
}

// Steer asks the server to turn the snake. Nothing is sent when d is the
// current direction or its direct reversal; the return value reports whether
// a frame went out.
func (c *Client) Steer(d game.Direction) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !d.Valid() || d == c.direction || d == c.direction.Opposite() {
		return false, nil
	}

	err := protocol.WriteFrame(c.conn, protocol.DirectionUpdate{Direction: protocol.Direction(d)})
	if err != nil {
		return false, err
	}
	c.direction = d
	return true, nil
}

// Direction returns the last direction sent to the server.
func (c *Client) Direction() game.Direction {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.direction
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

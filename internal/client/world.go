// Package client is the client half of the snake protocol: a local mirror of
// the server's world built from received frames, and a connection wrapper
// that keeps the mirror current and sends steering input.
package client

import (
	"errors"
	"fmt"

	"github.com/Tyrowin/gosnake/internal/game"
	"github.com/Tyrowin/gosnake/internal/protocol"
)

var (
	// ErrRejected is returned when the server refuses the connection because it is full.
	ErrRejected = errors.New("client: connection rejected, server full")
	// ErrUnexpectedFrame is returned for frames a server never sends.
	ErrUnexpectedFrame = errors.New("client: unexpected frame")
)

// Snake is the mirrored state of one snake.
type Snake struct {
	Body []game.Point
	Head game.Point

	// oldTail is the segment dropped by the last HeadUpdate. A FoodUpdate puts
	// it back, which is how growth reaches the mirror.
	oldTail game.Point
}

// Len is the number of cells the snake covers.
func (s *Snake) Len() int {
	return len(s.Body) + 1
}

// World mirrors the server's world as seen through the frames it broadcasts.
type World struct {
	OwnID  uint8
	Snakes map[uint8]*Snake
	Food   game.Point
	// Joined is set once the Info frame has been applied.
	Joined bool
}

// NewWorld returns an empty mirror waiting for its Info frame.
func NewWorld() *World {
	return &World{Snakes: make(map[uint8]*Snake)}
}

// Own returns the snake controlled by this client, if it is alive.
func (w *World) Own() (*Snake, bool) {
	s, ok := w.Snakes[w.OwnID]
	return s, ok
}

// Apply folds one received frame into the mirror.
func (w *World) Apply(p protocol.Packet) error {
	switch p := p.(type) {
	case protocol.Info:
		w.OwnID = p.OwnID
		w.Snakes = make(map[uint8]*Snake, len(p.Snakes))
		for _, s := range p.Snakes {
			w.Snakes[s.ID] = newSnake(s)
		}
		w.Food = toPoint(p.Food)
		w.Joined = true
	case protocol.SnakeConnect:
		w.Snakes[p.Snake.ID] = newSnake(p.Snake)
	case protocol.SnakeDisconnect:
		delete(w.Snakes, p.ID)
	case protocol.HeadUpdate:
		for _, h := range p.Heads {
			s, ok := w.Snakes[h.ID]
			if !ok {
				continue
			}
			s.Body = append(s.Body, s.Head)
			s.Head = toPoint(h.Head)
			s.oldTail = s.Body[0]
			s.Body = s.Body[1:]
		}
	case protocol.FoodUpdate:
		if s, ok := w.Snakes[p.EaterID]; ok {
			s.Body = append([]game.Point{s.oldTail}, s.Body...)
		}
		w.Food = toPoint(p.Food)
	case protocol.ConnRejected:
		return ErrRejected
	default:
		return fmt.Errorf("%w: %s", ErrUnexpectedFrame, p.Type())
	}
	return nil
}

func newSnake(s protocol.Snake) *Snake {
	body := make([]game.Point, 0, len(s.Body))
	for _, p := range s.Body {
		body = append(body, toPoint(p))
	}
	head := toPoint(s.Head)
	tail := head
	if len(body) > 0 {
		tail = body[0]
	}
	return &Snake{Body: body, Head: head, oldTail: tail}
}

func toPoint(p protocol.Point) game.Point {
	return game.Point{X: int(p.X), Y: int(p.Y)}
}

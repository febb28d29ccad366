package server

import (
	"github.com/Tyrowin/gosnake/internal/game"
	"github.com/Tyrowin/gosnake/internal/protocol"
)

// Frame builders translate engine state into encoded frames. All of them read
// the engine, so callers must hold gameMu.

func wirePoint(p game.Point) protocol.Point {
	return protocol.Point{X: uint8(p.X), Y: uint8(p.Y)}
}

func wireSnake(id uint8, s *game.Snake) protocol.Snake {
	ws := protocol.Snake{ID: id, Head: wirePoint(s.Head)}
	if len(s.Body) > 0 {
		ws.Body = make([]protocol.Point, len(s.Body))
		for i, b := range s.Body {
			ws.Body[i] = wirePoint(b)
		}
	}
	return ws
}

func infoFrame(e *game.Engine, own uint8) ([]byte, error) {
	info := protocol.Info{OwnID: own, Food: wirePoint(e.Food())}
	for _, id := range e.IDs() {
		s, _ := e.Snake(id)
		info.Snakes = append(info.Snakes, wireSnake(id, s))
	}
	return protocol.Marshal(info)
}

func snakeConnectFrame(id uint8, s *game.Snake) ([]byte, error) {
	return protocol.Marshal(protocol.SnakeConnect{Snake: wireSnake(id, s)})
}

func headUpdateFrame(e *game.Engine) ([]byte, error) {
	var update protocol.HeadUpdate
	for _, id := range e.IDs() {
		s, _ := e.Snake(id)
		update.Heads = append(update.Heads, protocol.Head{ID: id, Head: wirePoint(s.Head)})
	}
	return protocol.Marshal(update)
}

func foodUpdateFrame(eater uint8, food game.Point) ([]byte, error) {
	return protocol.Marshal(protocol.FoodUpdate{EaterID: eater, Food: wirePoint(food)})
}

var rejectedFrame = mustMarshal(protocol.ConnRejected{})

func mustMarshal(p protocol.Packet) []byte {
	frame, err := protocol.Marshal(p)
	if err != nil {
		panic(err)
	}
	return frame
}

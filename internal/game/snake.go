// Package game holds the authoritative snake simulation. It knows nothing about
// connections or frames; callers serialise access to an Engine themselves.
package game

import "fmt"

// Board dimensions. Coordinates travel as single bytes on the wire, so these
// are fixed rather than configurable.
const (
	Width  = 80
	Height = 60
)

// Point is a board cell.
type Point struct {
	X int
	Y int
}

// Add returns p moved by d without wrapping.
func (p Point) Add(d Point) Point {
	return Point{X: p.X + d.X, Y: p.Y + d.Y}
}

// Wrap folds a point that stepped one cell off the board back onto the
// opposite edge. Each axis wraps independently.
func (p Point) Wrap() Point {
	switch p.X {
	case -1:
		p.X = Width - 1
	case Width:
		p.X = 0
	}
	switch p.Y {
	case -1:
		p.Y = Height - 1
	case Height:
		p.Y = 0
	}
	return p
}

func (p Point) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Direction is a movement direction. The values match the wire codes.
type Direction uint8

// Directions.
const (
	Up    Direction = 1
	Down  Direction = 2
	Left  Direction = 3
	Right Direction = 4
)

// Valid reports whether d is one of the four directions.
func (d Direction) Valid() bool {
	return d >= Up && d <= Right
}

// Offset is the one-cell step d moves a head by.
func (d Direction) Offset() Point {
	switch d {
	case Up:
		return Point{Y: -1}
	case Down:
		return Point{Y: 1}
	case Left:
		return Point{X: -1}
	case Right:
		return Point{X: 1}
	}
	return Point{}
}

// Opposite returns the reverse of d.
func (d Direction) Opposite() Direction {
	switch d {
	case Up:
		return Down
	case Down:
		return Up
	case Left:
		return Right
	case Right:
		return Left
	}
	return d
}

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	case Left:
		return "left"
	case Right:
		return "right"
	}
	return fmt.Sprintf("direction(%d)", uint8(d))
}

// Snake is one player's snake. Body runs from the tail to the segment right
// behind the head and never contains Head.
type Snake struct {
	Body      []Point
	Head      Point
	Direction Direction
}

// Len is the number of cells the snake covers, head included.
func (s *Snake) Len() int {
	return len(s.Body) + 1
}

// Occupies reports whether p is one of the snake's cells.
func (s *Snake) Occupies(p Point) bool {
	if s.Head == p {
		return true
	}
	for _, b := range s.Body {
		if b == p {
			return true
		}
	}
	return false
}

// advance pushes the current head onto the body and steps the head one cell.
func (s *Snake) advance() {
	s.Body = append(s.Body, s.Head)
	s.Head = s.Head.Add(s.Direction.Offset()).Wrap()
}

// dropTail removes the oldest body segment.
func (s *Snake) dropTail() {
	if len(s.Body) == 0 {
		return
	}
	copy(s.Body, s.Body[1:])
	s.Body = s.Body[:len(s.Body)-1]
}

package game

import (
	"errors"
	"fmt"
	"math/rand"
	"slices"
	"time"
)

var (
	// ErrNoSpace is returned when no free cell (or pair of cells) is left on the board.
	ErrNoSpace = errors.New("game: no free space on the board")
	// ErrSnakeExists is returned when spawning an id that already has a snake.
	ErrSnakeExists = errors.New("game: snake already exists")
)

// placementAttempts bounds the random draws made before falling back to a
// full board scan.
const placementAttempts = Width * Height

// initialFood is where food sits before anything has been eaten.
var initialFood = Point{X: 10, Y: 4}

// Tick is the outcome of one Update.
type Tick struct {
	// Eater is the id of the snake that ate this tick; only meaningful when Ate is set.
	Eater uint8
	Ate   bool
	// Killed lists the snakes removed by collisions, in ascending id order. Nil when none died.
	Killed []uint8
}

// Engine owns the world: every snake, the food and the random source.
// It is not safe for concurrent use.
type Engine struct {
	snakes map[uint8]*Snake
	food   Point
	rng    *rand.Rand
}

// NewEngine creates an empty world. A zero seed seeds from the clock.
func NewEngine(seed int64) *Engine {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Engine{
		snakes: make(map[uint8]*Snake),
		food:   initialFood,
		rng:    rand.New(rand.NewSource(seed)),
	}
}

// Food returns the current food cell.
func (e *Engine) Food() Point {
	return e.food
}

// Len returns the number of live snakes.
func (e *Engine) Len() int {
	return len(e.snakes)
}

// IDs returns the ids of all live snakes in ascending order.
func (e *Engine) IDs() []uint8 {
	ids := make([]uint8, 0, len(e.snakes))
	for id := range e.snakes {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Snake returns the snake with the given id. The returned value must only be
// read while the caller still holds whatever guards the engine.
func (e *Engine) Snake(id uint8) (*Snake, bool) {
	s, ok := e.snakes[id]
	return s, ok
}

// SpawnSnake places a two-cell snake facing right, with its body one cell left
// of its head, on cells free of food and other snakes.
func (e *Engine) SpawnSnake(id uint8) (*Snake, error) {
	if _, ok := e.snakes[id]; ok {
		return nil, fmt.Errorf("%w: %d", ErrSnakeExists, id)
	}

	occupied := e.occupiedCells()
	occupied[e.food] = true

	head, ok := e.findCell(func(p Point) bool {
		return !occupied[p] && !occupied[tailOf(p)]
	})
	if !ok {
		return nil, fmt.Errorf("spawn snake %d: %w", id, ErrNoSpace)
	}

	s := &Snake{
		Body:      []Point{tailOf(head)},
		Head:      head,
		Direction: Right,
	}
	e.snakes[id] = s
	return s, nil
}

func tailOf(head Point) Point {
	return head.Add(Left.Offset()).Wrap()
}

// KillSnake removes a snake. Removing an unknown id is a no-op.
func (e *Engine) KillSnake(id uint8) bool {
	if _, ok := e.snakes[id]; !ok {
		return false
	}
	delete(e.snakes, id)
	return true
}

// ChangeDirection sets the direction a snake moves on the next tick. Reversals
// are accepted. It reports false for an unknown id or invalid direction.
func (e *Engine) ChangeDirection(id uint8, d Direction) bool {
	s, ok := e.snakes[id]
	if !ok || !d.Valid() {
		return false
	}
	s.Direction = d
	return true
}

// Update advances the world by one tick.
//
// Heads move first, then eaters keep their tail while everyone else drops
// one, and only then are collisions counted over the settled positions. A head
// sharing its cell with any other segment, its own included, kills that
// snake; killed snakes are removed before Update returns. Food respawns when
// something ate. The returned error is non-nil only when food could not be
// placed; the Tick is still valid in that case.
func (e *Engine) Update() (Tick, error) {
	var tick Tick
	if len(e.snakes) == 0 {
		return tick, nil
	}

	ids := e.IDs()
	for _, id := range ids {
		e.snakes[id].advance()
	}

	for _, id := range ids {
		s := e.snakes[id]
		if s.Head == e.food {
			if !tick.Ate {
				tick.Eater = id
				tick.Ate = true
			}
			continue
		}
		s.dropTail()
	}

	counts := make(map[Point]int)
	for _, s := range e.snakes {
		counts[s.Head]++
		for _, b := range s.Body {
			counts[b]++
		}
	}
	for _, id := range ids {
		if counts[e.snakes[id].Head] > 1 {
			tick.Killed = append(tick.Killed, id)
		}
	}
	for _, id := range tick.Killed {
		delete(e.snakes, id)
	}

	if tick.Ate {
		if err := e.respawnFood(); err != nil {
			return tick, err
		}
	}
	return tick, nil
}

func (e *Engine) respawnFood() error {
	occupied := e.occupiedCells()
	p, ok := e.findCell(func(p Point) bool { return !occupied[p] })
	if !ok {
		return fmt.Errorf("respawn food: %w", ErrNoSpace)
	}
	e.food = p
	return nil
}

func (e *Engine) occupiedCells() map[Point]bool {
	cells := make(map[Point]bool)
	for _, s := range e.snakes {
		cells[s.Head] = true
		for _, b := range s.Body {
			cells[b] = true
		}
	}
	return cells
}

// findCell draws uniformly random cells until accept passes. After
// placementAttempts misses it scans the board in order, so a cell is found
// whenever one exists.
func (e *Engine) findCell(accept func(Point) bool) (Point, bool) {
	for i := 0; i < placementAttempts; i++ {
		p := Point{X: e.rng.Intn(Width), Y: e.rng.Intn(Height)}
		if accept(p) {
			return p, true
		}
	}
	for y := 0; y < Height; y++ {
		for x := 0; x < Width; x++ {
			if p := (Point{X: x, Y: y}); accept(p) {
				return p, true
			}
		}
	}
	return Point{}, false
}

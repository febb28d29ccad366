package game

import (
	"errors"
	"slices"
	"testing"
)

func newTestEngine() *Engine {
	return NewEngine(42)
}

func placeSnake(e *Engine, id uint8, head Point, d Direction, body ...Point) *Snake {
	s := &Snake{Body: append([]Point(nil), body...), Head: head, Direction: d}
	e.snakes[id] = s
	return s
}

func TestUpdateEmptyWorld(t *testing.T) {
	e := newTestEngine()
	food := e.Food()

	tick, err := e.Update()
	if err != nil {
		t.Fatalf("Update() error: %v", err)
	}
	if tick.Ate || tick.Killed != nil {
		t.Errorf("Expected empty tick, got %+v", tick)
	}
	if e.Food() != food {
		t.Errorf("Food moved on an empty world: %v -> %v", food, e.Food())
	}
}

// TestWrapAtEveryEdge steps a snake off each edge of the board and checks the
// head reappears on the opposite side, and that interior steps never wrap.
func TestWrapAtEveryEdge(t *testing.T) {
	tests := []struct {
		name string
		head Point
		dir  Direction
		want Point
	}{
		{name: "right edge", head: Point{X: Width - 1, Y: 10}, dir: Right, want: Point{X: 0, Y: 10}},
		{name: "left edge", head: Point{X: 0, Y: 10}, dir: Left, want: Point{X: Width - 1, Y: 10}},
		{name: "top edge", head: Point{X: 7, Y: 0}, dir: Up, want: Point{X: 7, Y: Height - 1}},
		{name: "bottom edge", head: Point{X: 7, Y: Height - 1}, dir: Down, want: Point{X: 7, Y: 0}},
		{name: "corner right", head: Point{X: Width - 1, Y: Height - 1}, dir: Right, want: Point{X: 0, Y: Height - 1}},
		{name: "corner down", head: Point{X: Width - 1, Y: Height - 1}, dir: Down, want: Point{X: Width - 1, Y: 0}},
		{name: "next to right edge", head: Point{X: Width - 2, Y: 3}, dir: Right, want: Point{X: Width - 1, Y: 3}},
		{name: "next to left edge", head: Point{X: 1, Y: 3}, dir: Left, want: Point{X: 0, Y: 3}},
		{name: "next to top edge", head: Point{X: 3, Y: 1}, dir: Up, want: Point{X: 3, Y: 0}},
		{name: "next to bottom edge", head: Point{X: 3, Y: Height - 2}, dir: Down, want: Point{X: 3, Y: Height - 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine()
			e.food = Point{X: 40, Y: 30}
			placeSnake(e, 1, tt.head, tt.dir, tt.head.Add(tt.dir.Opposite().Offset()).Wrap())

			if _, err := e.Update(); err != nil {
				t.Fatalf("Update() error: %v", err)
			}

			s, ok := e.Snake(1)
			if !ok {
				t.Fatal("Snake died while moving")
			}
			if s.Head != tt.want {
				t.Errorf("Expected head %v, got %v", tt.want, s.Head)
			}
			if s.Len() != 2 {
				t.Errorf("Expected length 2, got %d", s.Len())
			}
		})
	}
}

// TestWrapOnlyOffBoard checks Wrap leaves every on-board coordinate alone.
func TestWrapOnlyOffBoard(t *testing.T) {
	for x := 0; x < Width; x++ {
		for y := 0; y < Height; y++ {
			p := Point{X: x, Y: y}
			if got := p.Wrap(); got != p {
				t.Fatalf("Wrap(%v) = %v, expected unchanged", p, got)
			}
		}
	}
}

func TestSnakeEatsFood(t *testing.T) {
	e := newTestEngine()
	placeSnake(e, 1, Point{X: 5, Y: 5}, Right, Point{X: 4, Y: 5})
	e.food = Point{X: 6, Y: 5}

	tick, err := e.Update()
	if err != nil {
		t.Fatalf("Update() error: %v", err)
	}

	if !tick.Ate || tick.Eater != 1 {
		t.Errorf("Expected snake 1 to eat, got %+v", tick)
	}
	if tick.Killed != nil {
		t.Errorf("Expected no deaths, got %v", tick.Killed)
	}

	s, _ := e.Snake(1)
	if s.Head != (Point{X: 6, Y: 5}) {
		t.Errorf("Expected head (6,5), got %v", s.Head)
	}
	want := []Point{{X: 4, Y: 5}, {X: 5, Y: 5}}
	if !slices.Equal(s.Body, want) {
		t.Errorf("Expected body %v, got %v", want, s.Body)
	}
	if s.Occupies(e.Food()) {
		t.Errorf("Food respawned on the snake at %v", e.Food())
	}
}

func TestSnakeMovesWithoutGrowing(t *testing.T) {
	e := newTestEngine()
	e.food = Point{X: 50, Y: 50}
	placeSnake(e, 1, Point{X: 5, Y: 5}, Down, Point{X: 5, Y: 3}, Point{X: 5, Y: 4})

	tick, err := e.Update()
	if err != nil {
		t.Fatalf("Update() error: %v", err)
	}
	if tick.Ate {
		t.Error("Expected no eater")
	}

	s, _ := e.Snake(1)
	want := []Point{{X: 5, Y: 4}, {X: 5, Y: 5}}
	if !slices.Equal(s.Body, want) || s.Head != (Point{X: 5, Y: 6}) {
		t.Errorf("Unexpected snake after move: body %v head %v", s.Body, s.Head)
	}
	if e.Food() != (Point{X: 50, Y: 50}) {
		t.Errorf("Food moved without being eaten")
	}
}

// TestGrowthOverManyTicks feeds a snake repeatedly and checks each meal adds
// exactly one segment and food always lands off the snake.
func TestGrowthOverManyTicks(t *testing.T) {
	e := newTestEngine()
	s := placeSnake(e, 1, Point{X: 1, Y: 20}, Right, Point{X: 0, Y: 20})

	for i := 0; i < 30; i++ {
		before := s.Len()
		e.food = s.Head.Add(Right.Offset()).Wrap()

		tick, err := e.Update()
		if err != nil {
			t.Fatalf("Update() error: %v", err)
		}
		if !tick.Ate {
			t.Fatalf("Tick %d: expected snake to eat", i)
		}
		if s.Len() != before+1 {
			t.Fatalf("Tick %d: expected length %d, got %d", i, before+1, s.Len())
		}
		if s.Occupies(e.Food()) {
			t.Fatalf("Tick %d: food at %v is on the snake", i, e.Food())
		}
	}
}

func TestHeadOnCollisionKillsBoth(t *testing.T) {
	e := newTestEngine()
	e.food = Point{X: 40, Y: 40}
	placeSnake(e, 1, Point{X: 9, Y: 10}, Right, Point{X: 8, Y: 10})
	placeSnake(e, 2, Point{X: 11, Y: 10}, Left, Point{X: 12, Y: 10})

	tick, err := e.Update()
	if err != nil {
		t.Fatalf("Update() error: %v", err)
	}

	if !slices.Equal(tick.Killed, []uint8{1, 2}) {
		t.Errorf("Expected both snakes killed, got %v", tick.Killed)
	}
	if e.Len() != 0 {
		t.Errorf("Expected killed snakes to be removed, %d remain", e.Len())
	}
}

func TestHeadIntoBodyKillsOnlyMover(t *testing.T) {
	e := newTestEngine()
	e.food = Point{X: 40, Y: 40}
	placeSnake(e, 1, Point{X: 10, Y: 9}, Down, Point{X: 10, Y: 8})
	placeSnake(e, 2, Point{X: 12, Y: 10}, Right, Point{X: 9, Y: 10}, Point{X: 10, Y: 10}, Point{X: 11, Y: 10})

	tick, err := e.Update()
	if err != nil {
		t.Fatalf("Update() error: %v", err)
	}

	if !slices.Equal(tick.Killed, []uint8{1}) {
		t.Errorf("Expected only snake 1 killed, got %v", tick.Killed)
	}
	if _, ok := e.Snake(2); !ok {
		t.Error("Snake 2 should survive")
	}
}

func TestSelfCollision(t *testing.T) {
	e := newTestEngine()
	e.food = Point{X: 40, Y: 40}
	placeSnake(e, 3, Point{X: 5, Y: 6}, Up,
		Point{X: 4, Y: 5}, Point{X: 5, Y: 5}, Point{X: 6, Y: 5}, Point{X: 6, Y: 6})

	tick, err := e.Update()
	if err != nil {
		t.Fatalf("Update() error: %v", err)
	}
	if !slices.Equal(tick.Killed, []uint8{3}) {
		t.Errorf("Expected self collision to kill snake 3, got %v", tick.Killed)
	}
}

// TestFollowingOwnTailSurvives checks the tail is dropped before collisions
// are counted: a head may enter the cell the tail leaves in the same tick.
func TestFollowingOwnTailSurvives(t *testing.T) {
	e := newTestEngine()
	e.food = Point{X: 40, Y: 40}
	placeSnake(e, 1, Point{X: 5, Y: 6}, Up, Point{X: 5, Y: 5}, Point{X: 6, Y: 5}, Point{X: 6, Y: 6})

	tick, err := e.Update()
	if err != nil {
		t.Fatalf("Update() error: %v", err)
	}
	if tick.Killed != nil {
		t.Errorf("Expected snake to survive, killed %v", tick.Killed)
	}
}

// TestEaterGrowsIntoCollision checks growth is applied before collisions: a
// snake that eats keeps its tail, so another snake entering that cell dies.
func TestEaterGrowsIntoCollision(t *testing.T) {
	e := newTestEngine()
	placeSnake(e, 1, Point{X: 21, Y: 10}, Right, Point{X: 20, Y: 10})
	e.food = Point{X: 22, Y: 10}
	placeSnake(e, 2, Point{X: 20, Y: 9}, Down, Point{X: 20, Y: 8})

	tick, err := e.Update()
	if err != nil {
		t.Fatalf("Update() error: %v", err)
	}
	if !tick.Ate || tick.Eater != 1 {
		t.Errorf("Expected snake 1 to eat, got %+v", tick)
	}
	if !slices.Equal(tick.Killed, []uint8{2}) {
		t.Errorf("Expected snake 2 killed by the kept tail, got %v", tick.Killed)
	}
}

func TestSpawnSnake(t *testing.T) {
	e := newTestEngine()

	for id := uint8(1); id <= 8; id++ {
		s, err := e.SpawnSnake(id)
		if err != nil {
			t.Fatalf("SpawnSnake(%d) error: %v", id, err)
		}
		if s.Direction != Right {
			t.Errorf("Expected direction right, got %v", s.Direction)
		}
		if len(s.Body) != 1 || s.Body[0] != tailOf(s.Head) {
			t.Errorf("Expected single body segment left of head, got %v head %v", s.Body, s.Head)
		}
	}

	if _, err := e.SpawnSnake(3); !errors.Is(err, ErrSnakeExists) {
		t.Errorf("Expected ErrSnakeExists, got %v", err)
	}
}

// TestSpawnAvoidsOccupiedCells fills all but one horizontal pair of the board
// and checks the new snake lands exactly there.
func TestSpawnAvoidsOccupiedCells(t *testing.T) {
	e := newTestEngine()
	freeHead := Point{X: 31, Y: 17}
	freeTail := tailOf(freeHead)

	var body []Point
	for y := 0; y < Height; y++ {
		for x := 0; x < Width; x++ {
			p := Point{X: x, Y: y}
			if p != freeHead && p != freeTail {
				body = append(body, p)
			}
		}
	}
	e.food = body[len(body)-1]
	placeSnake(e, 1, body[len(body)-2], Right, body[:len(body)-2]...)

	s, err := e.SpawnSnake(2)
	if err != nil {
		t.Fatalf("SpawnSnake() error: %v", err)
	}
	if s.Head != freeHead || s.Body[0] != freeTail {
		t.Errorf("Expected snake at %v/%v, got %v/%v", freeHead, freeTail, s.Head, s.Body[0])
	}
}

func TestSpawnNoSpace(t *testing.T) {
	e := newTestEngine()

	var body []Point
	for y := 0; y < Height; y++ {
		for x := 0; x < Width; x += 2 {
			body = append(body, Point{X: x, Y: y})
		}
	}
	placeSnake(e, 1, body[len(body)-1], Right, body[:len(body)-1]...)

	if _, err := e.SpawnSnake(2); !errors.Is(err, ErrNoSpace) {
		t.Errorf("Expected ErrNoSpace, got %v", err)
	}
	if _, ok := e.Snake(2); ok {
		t.Error("Failed spawn must not insert a snake")
	}
}

func TestSpawnRandomisedPlacementNeverOverlaps(t *testing.T) {
	e := newTestEngine()

	for id := uint8(1); id <= 200; id++ {
		if _, err := e.SpawnSnake(id); err != nil {
			t.Fatalf("SpawnSnake(%d) error: %v", id, err)
		}
	}

	seen := make(map[Point]uint8)
	for _, id := range e.IDs() {
		s, _ := e.Snake(id)
		for _, p := range append([]Point{s.Head}, s.Body...) {
			if other, dup := seen[p]; dup {
				t.Fatalf("Snakes %d and %d overlap at %v", other, id, p)
			}
			seen[p] = id
		}
	}
	if _, onSnake := seen[e.Food()]; onSnake {
		t.Errorf("Food %v is covered by a snake", e.Food())
	}
}

func TestKillSnakeIdempotent(t *testing.T) {
	e := newTestEngine()
	if _, err := e.SpawnSnake(5); err != nil {
		t.Fatalf("SpawnSnake() error: %v", err)
	}

	if !e.KillSnake(5) {
		t.Error("Expected first kill to remove the snake")
	}
	if e.KillSnake(5) {
		t.Error("Expected second kill to be a no-op")
	}
	if e.Len() != 0 {
		t.Errorf("Expected empty world, got %d snakes", e.Len())
	}
}

func TestChangeDirectionAcceptsReversal(t *testing.T) {
	e := newTestEngine()
	if _, err := e.SpawnSnake(1); err != nil {
		t.Fatalf("SpawnSnake() error: %v", err)
	}

	if !e.ChangeDirection(1, Left) {
		t.Fatal("ChangeDirection() rejected a reversal")
	}
	s, _ := e.Snake(1)
	if s.Direction != Left {
		t.Errorf("Expected direction left, got %v", s.Direction)
	}

	if e.ChangeDirection(9, Up) {
		t.Error("ChangeDirection() accepted an unknown snake")
	}
	if e.ChangeDirection(1, Direction(0)) {
		t.Error("ChangeDirection() accepted an invalid direction")
	}
}

func TestIDsSorted(t *testing.T) {
	e := newTestEngine()
	for _, id := range []uint8{9, 2, 200, 4} {
		if _, err := e.SpawnSnake(id); err != nil {
			t.Fatalf("SpawnSnake(%d) error: %v", id, err)
		}
	}
	if got := e.IDs(); !slices.Equal(got, []uint8{2, 4, 9, 200}) {
		t.Errorf("Expected sorted ids, got %v", got)
	}
}

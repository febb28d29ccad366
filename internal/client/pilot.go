package client

import "github.com/Tyrowin/gosnake/internal/game"

var moves = [...]game.Direction{game.Up, game.Down, game.Left, game.Right}

// NextMove picks a direction for the own snake: of the moves that are not a
// reversal of current and lead onto a free cell, the one closest to the food
// on the torus. Ties keep current. It returns current when the own snake is
// unknown or every move is blocked.
func (w *World) NextMove(current game.Direction) game.Direction {
	own, ok := w.Own()
	if !ok {
		return current
	}

	occupied := make(map[game.Point]bool)
	for _, s := range w.Snakes {
		occupied[s.Head] = true
		for _, b := range s.Body {
			occupied[b] = true
		}
	}

	best, bestDist := current, -1
	if current.Valid() {
		if next := own.Head.Add(current.Offset()).Wrap(); !occupied[next] {
			bestDist = torusDistance(next, w.Food)
		}
	}
	for _, d := range moves {
		if d == current || d == current.Opposite() {
			continue
		}
		next := own.Head.Add(d.Offset()).Wrap()
		if occupied[next] {
			continue
		}
		if dist := torusDistance(next, w.Food); bestDist < 0 || dist < bestDist {
			best, bestDist = d, dist
		}
	}
	return best
}

func torusDistance(a, b game.Point) int {
	return axisDistance(a.X, b.X, game.Width) + axisDistance(a.Y, b.Y, game.Height)
}

func axisDistance(a, b, size int) int {
	d := a - b
	if d < 0 {
		d = -d
	}
	if size-d < d {
		return size - d
	}
	return d
}
